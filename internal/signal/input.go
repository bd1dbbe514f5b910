package signal

import "github.com/skanelabs/skane-engine/internal/catalog"

// #region input-groups

// FacialInput mirrors Facial with pointer fields so absent JSON keys
// can be told apart from explicit zeros at the wire boundary.
type FacialInput struct {
	EyeOpenness     *float64 `json:"eye_openness"`
	BlinkFrequency  *float64 `json:"blink_frequency"`
	EyeMoisture     *float64 `json:"eye_moisture"`
	ForeheadTension *float64 `json:"forehead_tension"`
	BrowPosition    *float64 `json:"brow_position"`
	JawTension      *float64 `json:"jaw_tension"`
	LipCompression  *float64 `json:"lip_compression"`
	FacialSymmetry  *float64 `json:"facial_symmetry"`
}

// PosturalInput mirrors Postural with pointer fields.
type PosturalInput struct {
	HeadTilt        *float64 `json:"head_tilt"`
	HeadForward     *float64 `json:"head_forward"`
	ShoulderTension *float64 `json:"shoulder_tension"`
	NeckTension     *float64 `json:"neck_tension"`
}

// RespiratoryInput mirrors Respiratory with pointer fields.
type RespiratoryInput struct {
	BreathingDepth *float64 `json:"breathing_depth"`
	BreathingRate  *float64 `json:"breathing_rate"`
	ChestMovement  *float64 `json:"chest_movement"`
}

// SnapshotInput is the wire form of a snapshot.
type SnapshotInput struct {
	Facial      FacialInput      `json:"facial"`
	Postural    PosturalInput    `json:"postural"`
	Respiratory RespiratoryInput `json:"respiratory"`
}

// #endregion input-groups

// #region resolve

// Resolve materializes the input into a Snapshot, collecting a missing
// violation per absent field and range violations against bounds.
// Returns the snapshot and nil only when the input is fully valid.
func (in SnapshotInput) Resolve(bounds catalog.SignalBounds) (Snapshot, error) {
	var snap Snapshot
	var violations []FieldViolation

	set := func(name string, src *float64, dst *float64) {
		if src == nil {
			violations = append(violations, FieldViolation{Field: name, Reason: "missing"})
			return
		}
		*dst = *src
	}

	set("facial.eye_openness", in.Facial.EyeOpenness, &snap.Facial.EyeOpenness)
	set("facial.blink_frequency", in.Facial.BlinkFrequency, &snap.Facial.BlinkFrequency)
	set("facial.eye_moisture", in.Facial.EyeMoisture, &snap.Facial.EyeMoisture)
	set("facial.forehead_tension", in.Facial.ForeheadTension, &snap.Facial.ForeheadTension)
	set("facial.brow_position", in.Facial.BrowPosition, &snap.Facial.BrowPosition)
	set("facial.jaw_tension", in.Facial.JawTension, &snap.Facial.JawTension)
	set("facial.lip_compression", in.Facial.LipCompression, &snap.Facial.LipCompression)
	set("facial.facial_symmetry", in.Facial.FacialSymmetry, &snap.Facial.FacialSymmetry)
	set("postural.head_tilt", in.Postural.HeadTilt, &snap.Postural.HeadTilt)
	set("postural.head_forward", in.Postural.HeadForward, &snap.Postural.HeadForward)
	set("postural.shoulder_tension", in.Postural.ShoulderTension, &snap.Postural.ShoulderTension)
	set("postural.neck_tension", in.Postural.NeckTension, &snap.Postural.NeckTension)
	set("respiratory.breathing_depth", in.Respiratory.BreathingDepth, &snap.Respiratory.BreathingDepth)
	set("respiratory.breathing_rate", in.Respiratory.BreathingRate, &snap.Respiratory.BreathingRate)
	set("respiratory.chest_movement", in.Respiratory.ChestMovement, &snap.Respiratory.ChestMovement)

	if len(violations) > 0 {
		return Snapshot{}, &InvalidSignalError{Violations: violations}
	}
	if err := Validate(snap, bounds); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// #endregion resolve
