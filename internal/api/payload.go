package api

import (
	"github.com/skanelabs/skane-engine/internal/catalog"
)

// #region action-payload

// actionPayload is the wire shape of a micro-action. Durations go out
// in whole seconds rather than nanoseconds.
type actionPayload struct {
	ID           string               `json:"id"`
	Category     string               `json:"category"`
	DurationSec  int                  `json:"duration_seconds"`
	Instructions []instructionPayload `json:"instructions"`
}

type instructionPayload struct {
	Text        string `json:"text"`
	DurationSec int    `json:"duration_seconds"`
	Type        string `json:"type"`
}

func newActionPayload(a catalog.MicroAction) actionPayload {
	steps := make([]instructionPayload, 0, len(a.Instructions))
	for _, ins := range a.Instructions {
		steps = append(steps, instructionPayload{
			Text:        ins.Text,
			DurationSec: int(ins.Duration.Seconds()),
			Type:        string(ins.Type),
		})
	}
	return actionPayload{
		ID:           a.ID,
		Category:     string(a.Category),
		DurationSec:  int(a.Duration.Seconds()),
		Instructions: steps,
	}
}

// #endregion action-payload
