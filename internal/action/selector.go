package action

import (
	"fmt"
	"sort"

	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/classify"
	"github.com/skanelabs/skane-engine/internal/signal"
)

// #region hints

// Urgency levels for recommendation hints.
const (
	UrgencyImmediate = "immediate"
	UrgencyRoutine   = "routine"
)

// Hints carry the recommendation context used to rank candidates.
type Hints struct {
	Urgency     string `json:"urgency"`
	PrimaryNeed string `json:"primary_need"`
	BodyArea    string `json:"body_area_priority"`
}

// DeriveHints builds hints from a classification and the snapshot that
// produced it, for callers that do not supply their own.
func DeriveHints(act classify.Activation, snap signal.Snapshot) Hints {
	h := Hints{Urgency: UrgencyRoutine}
	if act.Primary == classify.HighActivation && act.Confidence >= 0.6 {
		h.Urgency = UrgencyImmediate
	}

	switch act.Primary {
	case classify.HighActivation:
		h.PrimaryNeed = "calm"
	case classify.LowEnergy:
		h.PrimaryNeed = "energy"
	default:
		h.PrimaryNeed = "focus"
	}

	// Body area priority follows the dominant tension reading.
	jaw := (snap.Facial.JawTension + snap.Facial.LipCompression) / 2
	face := (snap.Facial.ForeheadTension + snap.Facial.BrowPosition) / 2
	shoulders := snap.Postural.ShoulderTension
	neck := snap.Postural.NeckTension
	chest := snap.Respiratory.BreathingRate

	h.BodyArea = "chest"
	top := chest
	for _, c := range []struct {
		area  string
		value float64
	}{
		{"jaw", jaw}, {"face", face}, {"shoulders", shoulders}, {"neck", neck},
	} {
		if c.value > top {
			top = c.value
			h.BodyArea = c.area
		}
	}
	return h
}

// #endregion hints

// #region error

// NoEligibleActionError signals a catalog with no entry for the state.
// This is a configuration defect, not a user-facing error; callers fall
// back to the catalog default action.
type NoEligibleActionError struct {
	State classify.State
}

func (e *NoEligibleActionError) Error() string {
	return fmt.Sprintf("no eligible action for state %s", e.State)
}

// #endregion error

// #region select

// Select returns the best matching catalog action for the activation
// state and hints. Deterministic: identical inputs yield the same pick.
func Select(cat *catalog.Catalog, act classify.Activation, hints Hints) (catalog.MicroAction, error) {
	candidates := cat.ForState(string(act.Primary))
	if len(candidates) == 0 {
		return catalog.MicroAction{}, &NoEligibleActionError{State: act.Primary}
	}

	scored := make([]scoredAction, len(candidates))
	for i, a := range candidates {
		scored[i] = scoredAction{action: a, score: matchScore(a, hints)}
	}

	// Rank by score, then catalog priority, then lexical id.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].action.Priority != scored[j].action.Priority {
			return scored[i].action.Priority < scored[j].action.Priority
		}
		return scored[i].action.ID < scored[j].action.ID
	})

	return scored[0].action, nil
}

type scoredAction struct {
	action catalog.MicroAction
	score  float64
}

// matchScore combines tag overlap with an urgency-weighted duration
// preference. Shorter actions win ties when urgency is immediate.
func matchScore(a catalog.MicroAction, hints Hints) float64 {
	var score float64
	for _, tag := range a.NeedTags {
		if tag == hints.PrimaryNeed {
			score += 2
		}
	}
	for _, area := range a.BodyAreas {
		if area == hints.BodyArea {
			score += 1
		}
	}
	if hints.Urgency == UrgencyImmediate {
		// Normalize against a 2-minute ceiling so shorter runs score higher.
		minutes := a.Duration.Minutes()
		if minutes > 2 {
			minutes = 2
		}
		score += 1 - minutes/2
	}
	return score
}

// #endregion select
