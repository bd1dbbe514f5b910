package signal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/skanelabs/skane-engine/internal/catalog"
)

func validSnapshot() Snapshot {
	return Snapshot{
		Facial: Facial{
			EyeOpenness: 0.6, BlinkFrequency: 0.4, EyeMoisture: 0.5,
			ForeheadTension: 0.3, BrowPosition: 0.5, JawTension: 0.4,
			LipCompression: 0.3, FacialSymmetry: 0.8,
		},
		Postural: Postural{
			HeadTilt: 0.2, HeadForward: 0.3, ShoulderTension: 0.4, NeckTension: 0.3,
		},
		Respiratory: Respiratory{
			BreathingDepth: 0.6, BreathingRate: 0.4, ChestMovement: 0.5,
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validSnapshot(), catalog.DefaultBounds()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	snap := validSnapshot()
	snap.Facial.JawTension = 1.5
	snap.Postural.NeckTension = -0.1

	err := Validate(snap, catalog.DefaultBounds())
	var sigErr *InvalidSignalError
	if !errors.As(err, &sigErr) {
		t.Fatalf("expected InvalidSignalError, got %v", err)
	}
	if len(sigErr.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(sigErr.Violations))
	}
	if sigErr.Violations[0].Field != "facial.jaw_tension" {
		t.Fatalf("unexpected first violation: %+v", sigErr.Violations[0])
	}
	if sigErr.Violations[0].Reason != "out_of_range" {
		t.Fatalf("expected out_of_range, got %s", sigErr.Violations[0].Reason)
	}
}

func TestResolveMissingFields(t *testing.T) {
	// Decode a payload with an absent respiratory group
	raw := `{"facial":{"eye_openness":0.6,"blink_frequency":0.4,"eye_moisture":0.5,
		"forehead_tension":0.3,"brow_position":0.5,"jaw_tension":0.4,
		"lip_compression":0.3,"facial_symmetry":0.8},
		"postural":{"head_tilt":0.2,"head_forward":0.3,"shoulder_tension":0.4,"neck_tension":0.3}}`

	var in SnapshotInput
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	_, err := in.Resolve(catalog.DefaultBounds())
	var sigErr *InvalidSignalError
	if !errors.As(err, &sigErr) {
		t.Fatalf("expected InvalidSignalError, got %v", err)
	}
	if len(sigErr.Violations) != 3 {
		t.Fatalf("expected 3 missing violations, got %d", len(sigErr.Violations))
	}
	for _, v := range sigErr.Violations {
		if v.Reason != "missing" {
			t.Fatalf("expected missing reason, got %s for %s", v.Reason, v.Field)
		}
	}
}

func TestResolveValid(t *testing.T) {
	v := 0.5
	in := SnapshotInput{
		Facial: FacialInput{
			EyeOpenness: &v, BlinkFrequency: &v, EyeMoisture: &v,
			ForeheadTension: &v, BrowPosition: &v, JawTension: &v,
			LipCompression: &v, FacialSymmetry: &v,
		},
		Postural: PosturalInput{
			HeadTilt: &v, HeadForward: &v, ShoulderTension: &v, NeckTension: &v,
		},
		Respiratory: RespiratoryInput{
			BreathingDepth: &v, BreathingRate: &v, ChestMovement: &v,
		},
	}
	snap, err := in.Resolve(catalog.DefaultBounds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Facial.EyeOpenness != 0.5 || snap.Respiratory.ChestMovement != 0.5 {
		t.Fatalf("values not carried over: %+v", snap)
	}
}
