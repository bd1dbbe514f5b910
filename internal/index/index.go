package index

import (
	"github.com/skanelabs/skane-engine/internal/classify"
	"github.com/skanelabs/skane-engine/internal/feedback"
)

// #region band

// Band is an inclusive [Min, Max] score range on the 0-100 scale. The
// index is always reported as a band, never collapsed to a point before
// display: band width carries the classifier's uncertainty.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid returns the band midpoint.
func (b Band) Mid() float64 {
	return (b.Min + b.Max) / 2
}

// Width returns the band width.
func (b Band) Width() float64 {
	return b.Max - b.Min
}

// #endregion band

// #region config

// Config holds the scoring knobs.
type Config struct {
	// MaxHalfWidth is the band half-width at zero confidence. The band
	// narrows linearly as confidence rises.
	MaxHalfWidth float64

	// BetterDrop is how far below the pre-action band floor a full
	// reduction may reach.
	BetterDrop float64

	// MinShareDelta is the minimum before/after midpoint improvement
	// required before a share prompt is offered.
	MinShareDelta float64
}

// DefaultConfig returns the standard scoring knobs.
func DefaultConfig() Config {
	return Config{
		MaxHalfWidth:  15,
		BetterDrop:    10,
		MinShareDelta: 10,
	}
}

// #endregion config

// #region compute-before

// ComputeBefore scales the activation scalar to [0,100] and widens it
// into a band proportional to (1 - confidence): the less certain the
// classification, the wider the reported range.
func ComputeBefore(act classify.Activation, cfg Config) Band {
	center := act.Level * 100
	halfWidth := cfg.MaxHalfWidth * (1 - act.Confidence)
	return Band{
		Min: clamp100(center - halfWidth),
		Max: clamp100(center + halfWidth),
	}
}

// #endregion compute-before

// #region apply-feedback

// Result is the post-feedback scoring outcome.
type Result struct {
	After            Band    `json:"after"`
	SkaneIndex       float64 `json:"skane_index"`
	ShouldOfferShare bool    `json:"should_offer_share"`
	Unresolved       bool    `json:"unresolved"`
}

// ApplyFeedback computes the after band and Skane Index from the
// pre-action band and the user's feedback. Pure and exhaustive over the
// feedback enum: worse keeps the band and flags the session unresolved,
// same takes the partial midpoint reduction, better reduces fully
// toward the low end of the pre-action band.
func ApplyFeedback(before Band, fb feedback.Value, cfg Config) Result {
	var after Band
	unresolved := false

	switch fb {
	case feedback.Worse:
		after = before
		unresolved = true
	case feedback.Better:
		after = Band{
			Min: clamp100(before.Min - cfg.BetterDrop),
			Max: before.Min,
		}
	default:
		// Partial reduction: the lower half of the pre-action band.
		after = Band{Min: before.Min, Max: before.Mid()}
	}

	delta := before.Mid() - after.Mid()
	share := fb == feedback.Better && delta >= cfg.MinShareDelta

	return Result{
		After:            after,
		SkaneIndex:       after.Mid(),
		ShouldOfferShare: share,
		Unresolved:       unresolved,
	}
}

// #endregion apply-feedback

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
