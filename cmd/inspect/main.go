package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/skanelabs/skane-engine/internal/session"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to skane.db")
	owner := flag.String("owner", "", "list sessions for this owner ref")
	sessionID := flag.String("session", "", "show single session detail with decision log")
	last := flag.Int("last", 20, "show N most recent sessions in list mode")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || (*owner == "" && *sessionID == "") {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/skane.db --owner ref [--last N] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --db path/to/skane.db --session id [--json]")
		os.Exit(2)
	}

	store, err := session.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *sessionID != "" {
		err = runDetailMode(store, *sessionID, *jsonOut)
	} else {
		err = runListMode(store, *owner, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(store *session.Store, owner string, last int, jsonOut bool) error {
	sessions, err := store.ListByOwner(owner, last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	if jsonOut {
		return printJSON(sessions)
	}

	fmt.Printf("%-10s  %-18s  %-18s  %-16s  %-8s  %6s  %s\n",
		"Session", "Status", "Action", "Before", "Feedback", "Index", "Created")
	fmt.Printf("%-10s+-%-18s+-%-18s+-%-16s+-%-8s+-%6s+-%s\n",
		"----------", "------------------", "------------------",
		"----------------", "--------", "------", "--------------------")

	for _, s := range sessions {
		band := fmt.Sprintf("[%.1f, %.1f]", s.BeforeScore.Min, s.BeforeScore.Max)
		idx := "—"
		if s.SkaneIndex != nil {
			idx = fmt.Sprintf("%.1f", *s.SkaneIndex)
		}
		fb := "—"
		if s.Feedback != "" {
			fb = string(s.Feedback)
		}
		fmt.Printf("%-10s  %-18s  %-18s  %-16s  %-8s  %6s  %s\n",
			shortID(s.ID), s.Status, s.ChosenAction, band, fb, idx,
			s.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Session   session.Session `json:"session"`
	Decisions []decisionRow   `json:"decisions"`
}

type decisionRow struct {
	Stage     string `json:"stage"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
	Inputs    string `json:"inputs,omitempty"`
	CreatedAt string `json:"created_at"`
}

func runDetailMode(store *session.Store, id string, jsonOut bool) error {
	sess, err := store.Get(id)
	if err != nil {
		return err
	}
	entries, err := store.ListDecisions(id)
	if err != nil {
		return err
	}

	out := detailOutput{Session: sess, Decisions: make([]decisionRow, len(entries))}
	for i, e := range entries {
		out.Decisions[i] = decisionRow{
			Stage:     e.Stage,
			Decision:  e.Decision,
			Reason:    e.Reason,
			Inputs:    e.InputsJSON,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:   %s\n", sess.ID)
	fmt.Printf("Owner:     %s\n", sess.OwnerRef)
	fmt.Printf("Status:    %s\n", sess.Status)
	fmt.Printf("Action:    %s\n", sess.ChosenAction)
	fmt.Printf("Before:    [%.1f, %.1f]\n", sess.BeforeScore.Min, sess.BeforeScore.Max)
	if sess.AfterScore != nil {
		fmt.Printf("After:     [%.1f, %.1f]\n", sess.AfterScore.Min, sess.AfterScore.Max)
	}
	if sess.SkaneIndex != nil {
		fmt.Printf("Index:     %.1f\n", *sess.SkaneIndex)
	}
	if sess.Feedback != "" {
		fmt.Printf("Feedback:  %s\n", sess.Feedback)
	}
	if sess.Unresolved {
		fmt.Printf("Unresolved: true\n")
	}
	if sess.MigratedFrom != "" {
		fmt.Printf("Migrated:  from %s\n", sess.MigratedFrom)
	}
	fmt.Printf("Created:   %s\n", sess.CreatedAt.Format("2006-01-02T15:04:05Z"))
	if sess.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", sess.CompletedAt.Format("2006-01-02T15:04:05Z"))
	}

	if len(out.Decisions) > 0 {
		fmt.Printf("\nDecision log:\n")
		for _, d := range out.Decisions {
			fmt.Printf("  %-9s %-40s %s\n", d.Stage, d.Decision, d.CreatedAt)
			if d.Reason != "" && d.Reason != d.Decision {
				fmt.Printf("            %s\n", d.Reason)
			}
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
