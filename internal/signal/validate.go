package signal

import (
	"fmt"
	"strings"

	"github.com/skanelabs/skane-engine/internal/catalog"
)

// #region invalid-signal-error

// FieldViolation records one rejected snapshot field.
type FieldViolation struct {
	Field  string  `json:"field"`
	Reason string  `json:"reason"` // "missing" | "out_of_range"
	Value  float64 `json:"value,omitempty"`
}

// InvalidSignalError rejects a snapshot whose values fall outside the
// declared bounds or whose required fields are absent. The engine never
// clamps input; the caller must supply valid data.
type InvalidSignalError struct {
	Violations []FieldViolation
}

func (e *InvalidSignalError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = fmt.Sprintf("%s (%s)", v.Field, v.Reason)
	}
	return fmt.Sprintf("invalid signal snapshot: %s", strings.Join(fields, ", "))
}

// #endregion invalid-signal-error

// #region validate

// Validate checks every snapshot field against the catalog bounds.
// Returns *InvalidSignalError listing all violations, or nil.
func Validate(s Snapshot, bounds catalog.SignalBounds) error {
	var violations []FieldViolation
	for _, f := range fields(s) {
		if !bounds.Contains(f.value) {
			violations = append(violations, FieldViolation{
				Field:  f.name,
				Reason: "out_of_range",
				Value:  f.value,
			})
		}
	}
	if len(violations) > 0 {
		return &InvalidSignalError{Violations: violations}
	}
	return nil
}

type namedField struct {
	name  string
	value float64
}

func fields(s Snapshot) []namedField {
	return []namedField{
		{"facial.eye_openness", s.Facial.EyeOpenness},
		{"facial.blink_frequency", s.Facial.BlinkFrequency},
		{"facial.eye_moisture", s.Facial.EyeMoisture},
		{"facial.forehead_tension", s.Facial.ForeheadTension},
		{"facial.brow_position", s.Facial.BrowPosition},
		{"facial.jaw_tension", s.Facial.JawTension},
		{"facial.lip_compression", s.Facial.LipCompression},
		{"facial.facial_symmetry", s.Facial.FacialSymmetry},
		{"postural.head_tilt", s.Postural.HeadTilt},
		{"postural.head_forward", s.Postural.HeadForward},
		{"postural.shoulder_tension", s.Postural.ShoulderTension},
		{"postural.neck_tension", s.Postural.NeckTension},
		{"respiratory.breathing_depth", s.Respiratory.BreathingDepth},
		{"respiratory.breathing_rate", s.Respiratory.BreathingRate},
		{"respiratory.chest_movement", s.Respiratory.ChestMovement},
	}
}

// #endregion validate
