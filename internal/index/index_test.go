package index

import (
	"testing"

	"github.com/skanelabs/skane-engine/internal/classify"
	"github.com/skanelabs/skane-engine/internal/feedback"
)

func TestComputeBeforeWidensWithUncertainty(t *testing.T) {
	cfg := DefaultConfig()

	confident := ComputeBefore(classify.Activation{Level: 0.5, Confidence: 0.9}, cfg)
	uncertain := ComputeBefore(classify.Activation{Level: 0.5, Confidence: 0.2}, cfg)

	if uncertain.Width() <= confident.Width() {
		t.Fatalf("lower confidence should widen the band: %.2f vs %.2f",
			uncertain.Width(), confident.Width())
	}
	if confident.Mid() != 50 || uncertain.Mid() != 50 {
		t.Fatalf("band centers should match the scaled level: %.2f, %.2f",
			confident.Mid(), uncertain.Mid())
	}
}

func TestComputeBeforeStaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	for _, act := range []classify.Activation{
		{Level: 0.0, Confidence: 0.0},
		{Level: 1.0, Confidence: 0.0},
		{Level: 0.05, Confidence: 0.3},
		{Level: 0.98, Confidence: 0.1},
	} {
		b := ComputeBefore(act, cfg)
		if b.Min < 0 || b.Max > 100 || b.Min > b.Max {
			t.Fatalf("band out of range for %+v: %+v", act, b)
		}
	}
}

func TestApplyFeedbackWorse(t *testing.T) {
	before := Band{Min: 40, Max: 70}
	res := ApplyFeedback(before, feedback.Worse, DefaultConfig())

	if res.After != before {
		t.Fatalf("worse must not reduce the band: %+v", res.After)
	}
	if !res.Unresolved {
		t.Fatal("worse must flag the session unresolved")
	}
	if res.ShouldOfferShare {
		t.Fatal("share must never be offered on worse")
	}
}

func TestApplyFeedbackSame(t *testing.T) {
	before := Band{Min: 40, Max: 70}
	res := ApplyFeedback(before, feedback.Same, DefaultConfig())

	want := Band{Min: 40, Max: 55}
	if res.After != want {
		t.Fatalf("expected partial reduction %+v, got %+v", want, res.After)
	}
	if res.Unresolved {
		t.Fatal("same should not flag unresolved")
	}
	if res.ShouldOfferShare {
		t.Fatal("share requires better feedback")
	}
	if res.SkaneIndex != res.After.Mid() {
		t.Fatalf("index should be the after midpoint: %.2f", res.SkaneIndex)
	}
}

func TestApplyFeedbackBetter(t *testing.T) {
	before := Band{Min: 40, Max: 70}
	res := ApplyFeedback(before, feedback.Better, DefaultConfig())

	if res.After.Max != before.Min {
		t.Fatalf("full reduction should reach the pre-action floor: %+v", res.After)
	}
	if res.After.Min != 30 {
		t.Fatalf("expected after min 30, got %.2f", res.After.Min)
	}
	if !res.ShouldOfferShare {
		t.Fatal("large improvement with better feedback should offer share")
	}
}

func TestApplyFeedbackBetterSmallDelta(t *testing.T) {
	// A narrow low band leaves little room to improve: no share prompt.
	before := Band{Min: 8, Max: 12}
	res := ApplyFeedback(before, feedback.Better, DefaultConfig())

	if res.ShouldOfferShare {
		t.Fatalf("delta %.2f below minimum should not offer share",
			before.Mid()-res.After.Mid())
	}
	if res.After.Min < 0 {
		t.Fatalf("after band clamps at zero: %+v", res.After)
	}
}

func TestApplyFeedbackExhaustive(t *testing.T) {
	before := Band{Min: 30, Max: 60}
	for _, fb := range []feedback.Value{feedback.Worse, feedback.Same, feedback.Better} {
		res := ApplyFeedback(before, fb, DefaultConfig())
		if res.After.Min < 0 || res.After.Max > 100 || res.After.Min > res.After.Max {
			t.Fatalf("after band out of range for %s: %+v", fb, res.After)
		}
		if res.SkaneIndex < 0 || res.SkaneIndex > 100 {
			t.Fatalf("index out of range for %s: %.2f", fb, res.SkaneIndex)
		}
	}
}

func TestApplyFeedbackUnknownTakesNeutralBranch(t *testing.T) {
	// An unnormalized zero value lands on the same/reduced branch.
	before := Band{Min: 40, Max: 70}
	res := ApplyFeedback(before, feedback.Unknown, DefaultConfig())
	same := ApplyFeedback(before, feedback.Same, DefaultConfig())
	if res != same {
		t.Fatalf("unknown value should behave like same: %+v vs %+v", res, same)
	}
}
