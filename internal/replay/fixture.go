package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skanelabs/skane-engine/internal/signal"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a set
// of recorded snapshots with the pipeline outputs they must reproduce.
type Fixture struct {
	Description string        `json:"description"`
	Config      FixtureConfig `json:"config"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded scan and its expected pipeline outcome.
type FixtureCase struct {
	Name     string               `json:"name"`
	Snapshot signal.SnapshotInput `json:"snapshot"`
	Feedback string               `json:"feedback,omitempty"`
	Expected ExpectedOutcome      `json:"expected"`
}

// ExpectedOutcome pins the classification, selection, and scoring the
// pipeline must produce for the case's snapshot.
type ExpectedOutcome struct {
	State    string  `json:"state"`
	ActionID string  `json:"action_id"`
	BandMin  float64 `json:"band_min"`
	BandMax  float64 `json:"band_max"`

	// Post-feedback expectations, checked only when Feedback is set.
	SkaneIndex       *float64 `json:"skane_index,omitempty"`
	ShouldOfferShare *bool    `json:"should_offer_share,omitempty"`
}

// FixtureConfig carries the tunable cuts and widths for a replay run.
// Zero values fall back to the engine defaults.
type FixtureConfig struct {
	LowCut       float64 `json:"low_cut,omitempty"`
	HighCut      float64 `json:"high_cut,omitempty"`
	MaxHalfWidth float64 `json:"max_half_width,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("fixture %s has no cases", path)
	}
	return &f, nil
}

// #endregion fixture-loader
