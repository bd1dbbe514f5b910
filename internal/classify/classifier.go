package classify

import (
	"gonum.org/v1/gonum/stat"

	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/signal"
)

// #region classify

// Classify maps a validated snapshot to an activation state. Pure:
// identical input yields identical output. Returns
// *signal.InvalidSignalError when the snapshot violates bounds.
func Classify(snap signal.Snapshot, bounds catalog.SignalBounds, cfg Config) (Activation, error) {
	if err := signal.Validate(snap, bounds); err != nil {
		return Activation{}, err
	}

	level := ActivationLevel(snap, cfg)
	primary := threshold(level, cfg)
	confidence := confidenceFor(level, primary, cfg)

	return Activation{
		Primary:    primary,
		Confidence: confidence,
		Level:      level,
	}, nil
}

// ActivationLevel combines the three group sub-scores into a single
// scalar in [0,1]. Higher means more activated.
func ActivationLevel(snap signal.Snapshot, cfg Config) float64 {
	groups := []float64{
		FacialScore(snap.Facial),
		PosturalScore(snap.Postural),
		RespiratoryScore(snap.Respiratory),
	}
	weights := []float64{cfg.FacialWeight, cfg.PosturalWeight, cfg.RespiratoryWeight}
	return clamp01(stat.Mean(groups, weights))
}

// #endregion classify

// #region group-scores

// FacialScore computes the facial contribution. Tension terms push the
// score up; moisture and symmetry are calm indicators and enter inverted.
func FacialScore(f signal.Facial) float64 {
	vals := []float64{
		f.ForeheadTension,
		f.JawTension,
		f.LipCompression,
		f.BrowPosition,
		f.BlinkFrequency,
		f.EyeOpenness,
		1 - f.EyeMoisture,
		1 - f.FacialSymmetry,
	}
	return stat.Mean(vals, nil)
}

// PosturalScore computes the postural contribution. All four terms are
// tension or misalignment measures.
func PosturalScore(p signal.Postural) float64 {
	vals := []float64{
		p.ShoulderTension,
		p.NeckTension,
		p.HeadForward,
		p.HeadTilt,
	}
	return stat.Mean(vals, nil)
}

// RespiratoryScore computes the breathing contribution. Fast shallow
// breathing raises activation; depth enters inverted.
func RespiratoryScore(r signal.Respiratory) float64 {
	vals := []float64{
		r.BreathingRate,
		r.ChestMovement,
		1 - r.BreathingDepth,
	}
	return stat.Mean(vals, nil)
}

// #endregion group-scores

// #region threshold

// threshold resolves the scalar into a state. A value exactly on either
// cut point resolves to the calmer adjacent state (REGULATED) so that a
// boundary reading never over-triggers an intervention.
func threshold(level float64, cfg Config) State {
	switch {
	case level < cfg.LowCut:
		return LowEnergy
	case level > cfg.HighCut:
		return HighActivation
	default:
		return Regulated
	}
}

// confidenceFor derives confidence from the scalar's distance to the
// nearest cut point: 0 exactly on a cut, approaching 1 at the extremes
// and at the center of the regulated band.
func confidenceFor(level float64, primary State, cfg Config) float64 {
	switch primary {
	case LowEnergy:
		if cfg.LowCut == 0 {
			return 1
		}
		return clamp01((cfg.LowCut - level) / cfg.LowCut)
	case HighActivation:
		if cfg.HighCut >= 1 {
			return 1
		}
		return clamp01((level - cfg.HighCut) / (1 - cfg.HighCut))
	default:
		half := (cfg.HighCut - cfg.LowCut) / 2
		if half == 0 {
			return 0
		}
		nearest := level - cfg.LowCut
		if d := cfg.HighCut - level; d < nearest {
			nearest = d
		}
		return clamp01(nearest / half)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion threshold
