package classify

// #region state

// State is the classified physiological activation state.
type State string

const (
	HighActivation State = "HIGH_ACTIVATION"
	LowEnergy      State = "LOW_ENERGY"
	Regulated      State = "REGULATED"
)

// #endregion state

// #region activation

// Activation is the classifier output: a primary state, a confidence in
// [0,1], and the underlying activation scalar in [0,1].
type Activation struct {
	Primary    State   `json:"primary_state"`
	Confidence float64 `json:"confidence"`
	Level      float64 `json:"activation_level"`
}

// #endregion activation

// #region config

// Config holds the group weights and cut points for classification.
type Config struct {
	FacialWeight      float64
	PosturalWeight    float64
	RespiratoryWeight float64

	// LowCut and HighCut split the activation scalar into the three
	// states: below LowCut is LOW_ENERGY, above HighCut is
	// HIGH_ACTIVATION, the band between is REGULATED. A scalar exactly
	// on a cut resolves to REGULATED.
	LowCut  float64
	HighCut float64
}

// DefaultConfig returns the standard weights and cut points.
func DefaultConfig() Config {
	return Config{
		FacialWeight:      0.4,
		PosturalWeight:    0.3,
		RespiratoryWeight: 0.3,
		LowCut:            0.35,
		HighCut:           0.65,
	}
}

// #endregion config
