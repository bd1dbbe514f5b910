package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("verbose", false, "print every diff, not just the first per case")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--verbose]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *verbose))
}

// #endregion main

// #region run

func run(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, sum, err := replay.Run(f, catalog.DefaultCatalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}
	printTable(results, verbose)
	fmt.Printf("\nSummary: %d total, %d pass, %d diverge\n", sum.Total, sum.Passed, sum.Failed)

	if sum.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion run

// #region output

func printTable(results []replay.CaseResult, verbose bool) {
	fmt.Printf("%-24s| %-16s| %-18s| %-16s| %s\n", "Case", "State", "Action", "Band", "Match")
	fmt.Printf("%-24s+%-17s+%-19s+%-17s+%s\n",
		"------------------------", "-----------------", "-------------------",
		"-----------------", "------")

	for _, r := range results {
		match := "OK"
		if !r.Passed {
			match = "DIFF"
		}
		band := fmt.Sprintf("[%.1f, %.1f]", r.Before.Min, r.Before.Max)
		fmt.Printf("%-24s| %-16s| %-18s| %-16s| %s\n", r.Name, r.State, r.ActionID, band, match)

		if r.Passed {
			continue
		}
		diffs := r.Diffs
		if !verbose && len(diffs) > 1 {
			diffs = diffs[:1]
		}
		for _, d := range diffs {
			fmt.Printf("    %s\n", d)
		}
	}
}

// #endregion output
