package ritual

import (
	"fmt"
	"time"

	"github.com/skanelabs/skane-engine/internal/feedback"
	"github.com/skanelabs/skane-engine/internal/session"
)

// #region config

// Config holds the eligibility thresholds.
type Config struct {
	MinActionedSessions int
	MinPositiveRatio    float64
	MinDaysSinceFirst   int
	MinDistinctDays     int
}

// DefaultConfig returns the product thresholds.
func DefaultConfig() Config {
	return Config{
		MinActionedSessions: 5,
		MinPositiveRatio:    0.6,
		MinDaysSinceFirst:   3,
		MinDistinctDays:     2,
	}
}

// #endregion config

// #region result

// Check is one named eligibility criterion with its measured value.
type Check struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// Result is the eligibility verdict. All checks must pass.
type Result struct {
	Eligible bool    `json:"eligible"`
	Checks   []Check `json:"checks"`
	Reason   string  `json:"reason,omitempty"`
}

// #endregion result

// #region evaluate

// Evaluate runs the ritual eligibility predicate over a user's session
// history. Pure and idempotent; safe to re-run. The caller owns
// suppression after a permanent dismissal.
func Evaluate(sessions []session.Session, now time.Time, cfg Config) Result {
	var checks []Check
	passed := true
	var failReasons []string

	// 1. Actioned session count.
	actioned := 0
	for _, s := range sessions {
		if s.ChosenAction != "" {
			actioned++
		}
	}
	actionedPass := actioned >= cfg.MinActionedSessions
	checks = append(checks, Check{Name: "actioned_sessions", Value: float64(actioned), Pass: actionedPass})
	if !actionedPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d actioned sessions, need %d", actioned, cfg.MinActionedSessions))
	}

	// 2. Positive feedback ratio among sessions with recorded feedback.
	// Better is positive, same is neutral-positive, worse is negative.
	recorded, positive := 0, 0
	for _, s := range sessions {
		if s.Feedback == feedback.Unknown {
			continue
		}
		recorded++
		if s.Feedback.Positive() {
			positive++
		}
	}
	ratio := 0.0
	if recorded > 0 {
		ratio = float64(positive) / float64(recorded)
	}
	ratioPass := recorded > 0 && ratio >= cfg.MinPositiveRatio
	checks = append(checks, Check{Name: "positive_ratio", Value: ratio, Pass: ratioPass})
	if !ratioPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("positive ratio %.2f below %.2f", ratio, cfg.MinPositiveRatio))
	}

	// 3. Calendar days since the first session.
	// 4. Distinct calendar days spanned.
	days := make(map[string]bool)
	var first time.Time
	for _, s := range sessions {
		days[s.CreatedAt.UTC().Format("2006-01-02")] = true
		if first.IsZero() || s.CreatedAt.Before(first) {
			first = s.CreatedAt
		}
	}

	sinceFirst := 0
	if !first.IsZero() {
		sinceFirst = calendarDaysBetween(first.UTC(), now.UTC())
	}
	sincePass := sinceFirst >= cfg.MinDaysSinceFirst
	checks = append(checks, Check{Name: "days_since_first", Value: float64(sinceFirst), Pass: sincePass})
	if !sincePass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d days since first session, need %d", sinceFirst, cfg.MinDaysSinceFirst))
	}

	distinctPass := len(days) >= cfg.MinDistinctDays
	checks = append(checks, Check{Name: "distinct_days", Value: float64(len(days)), Pass: distinctPass})
	if !distinctPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d distinct days, need %d", len(days), cfg.MinDistinctDays))
	}

	res := Result{Eligible: passed, Checks: checks}
	if !passed {
		res.Reason = failReasons[0]
	}
	return res
}

// calendarDaysBetween counts whole calendar-day boundaries crossed
// between two instants, not 24h periods.
func calendarDaysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}

// #endregion evaluate
