package replay

import (
	"fmt"

	"github.com/skanelabs/skane-engine/internal/action"
	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/classify"
	"github.com/skanelabs/skane-engine/internal/feedback"
	"github.com/skanelabs/skane-engine/internal/index"
)

// #region types

// PipelineConfig bundles the stage configs for a replay run.
type PipelineConfig struct {
	Classify classify.Config
	Index    index.Config
	Feedback feedback.Policy
}

// DefaultPipelineConfig returns the engine defaults for all stages.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Classify: classify.DefaultConfig(),
		Index:    index.DefaultConfig(),
		Feedback: feedback.DefaultPolicy(),
	}
}

// applyOverrides folds non-zero fixture knobs onto the defaults.
func (f FixtureConfig) applyOverrides(cfg PipelineConfig) PipelineConfig {
	if f.LowCut != 0 {
		cfg.Classify.LowCut = f.LowCut
	}
	if f.HighCut != 0 {
		cfg.Classify.HighCut = f.HighCut
	}
	if f.MaxHalfWidth != 0 {
		cfg.Index.MaxHalfWidth = f.MaxHalfWidth
	}
	return cfg
}

// CaseResult is the outcome of replaying one recorded case.
type CaseResult struct {
	Name   string
	Passed bool
	Diffs  []string // human-readable expected-vs-actual mismatches

	State    classify.State
	ActionID string
	Before   index.Band
}

// Summary aggregates a replay run.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion types

// #region run

// Run replays every fixture case through classify → select → score and
// diffs the outputs against the recorded expectations. Errors abort the
// run; mismatches do not.
func Run(f *Fixture, cat *catalog.Catalog) ([]CaseResult, Summary, error) {
	cfg := f.Config.applyOverrides(DefaultPipelineConfig())

	results := make([]CaseResult, 0, len(f.Cases))
	var sum Summary

	for _, c := range f.Cases {
		res, err := runCase(c, cat, cfg)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("case %s: %w", c.Name, err)
		}
		results = append(results, res)
		sum.Total++
		if res.Passed {
			sum.Passed++
		} else {
			sum.Failed++
		}
	}
	return results, sum, nil
}

func runCase(c FixtureCase, cat *catalog.Catalog, cfg PipelineConfig) (CaseResult, error) {
	snap, err := c.Snapshot.Resolve(cat.Bounds)
	if err != nil {
		return CaseResult{}, fmt.Errorf("resolve snapshot: %w", err)
	}

	act, err := classify.Classify(snap, cat.Bounds, cfg.Classify)
	if err != nil {
		return CaseResult{}, fmt.Errorf("classify: %w", err)
	}

	chosen, err := action.Select(cat, act, action.DeriveHints(act, snap))
	if err != nil {
		chosen = cat.Default()
	}

	before := index.ComputeBefore(act, cfg.Index)

	res := CaseResult{
		Name:     c.Name,
		State:    act.Primary,
		ActionID: chosen.ID,
		Before:   before,
	}

	res.Diffs = diffCase(c, act, chosen, before, cfg)
	res.Passed = len(res.Diffs) == 0
	return res, nil
}

func diffCase(c FixtureCase, act classify.Activation, chosen catalog.MicroAction, before index.Band, cfg PipelineConfig) []string {
	var diffs []string

	if string(act.Primary) != c.Expected.State {
		diffs = append(diffs, fmt.Sprintf("state: expected %s, got %s", c.Expected.State, act.Primary))
	}
	if chosen.ID != c.Expected.ActionID {
		diffs = append(diffs, fmt.Sprintf("action: expected %s, got %s", c.Expected.ActionID, chosen.ID))
	}
	if !closeEnough(before.Min, c.Expected.BandMin) || !closeEnough(before.Max, c.Expected.BandMax) {
		diffs = append(diffs, fmt.Sprintf("band: expected [%.2f, %.2f], got [%.2f, %.2f]",
			c.Expected.BandMin, c.Expected.BandMax, before.Min, before.Max))
	}

	if c.Feedback == "" {
		return diffs
	}

	fb, err := feedback.Normalize(c.Feedback, cfg.Feedback)
	if err != nil {
		diffs = append(diffs, fmt.Sprintf("feedback: %v", err))
		return diffs
	}
	outcome := index.ApplyFeedback(before, fb, cfg.Index)
	if c.Expected.SkaneIndex != nil && !closeEnough(outcome.SkaneIndex, *c.Expected.SkaneIndex) {
		diffs = append(diffs, fmt.Sprintf("skane index: expected %.2f, got %.2f",
			*c.Expected.SkaneIndex, outcome.SkaneIndex))
	}
	if c.Expected.ShouldOfferShare != nil && outcome.ShouldOfferShare != *c.Expected.ShouldOfferShare {
		diffs = append(diffs, fmt.Sprintf("share prompt: expected %t, got %t",
			*c.Expected.ShouldOfferShare, outcome.ShouldOfferShare))
	}
	return diffs
}

// closeEnough absorbs float formatting drift in recorded fixtures.
func closeEnough(a, b float64) bool {
	d := a - b
	return d < 0.01 && d > -0.01
}

// #endregion run
