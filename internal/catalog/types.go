package catalog

import "time"

// #region signal-bounds

// SignalBounds declares the valid range for every snapshot measurement.
type SignalBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultBounds returns the canonical normalized range.
func DefaultBounds() SignalBounds {
	return SignalBounds{Min: 0, Max: 1}
}

// Contains reports whether v falls inside the declared range.
func (b SignalBounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// #endregion signal-bounds

// #region instruction

// InstructionType categorizes a single step within a micro-action.
type InstructionType string

const (
	StepBreath   InstructionType = "breath"
	StepMovement InstructionType = "movement"
	StepHold     InstructionType = "hold"
	StepRelease  InstructionType = "release"
)

// Instruction is one timed step of a micro-action.
type Instruction struct {
	Text     string          `json:"text"`
	Duration time.Duration   `json:"duration"`
	Type     InstructionType `json:"type"`
}

// #endregion instruction

// #region micro-action

// ActionCategory groups micro-actions by the mechanism they work through.
type ActionCategory string

const (
	CategoryBreathing ActionCategory = "breathing"
	CategoryRelease   ActionCategory = "release"
	CategoryPosture   ActionCategory = "posture"
	CategoryEnergize  ActionCategory = "energize"
)

// MicroAction is a catalog entry: a short, timed instruction sequence
// recommended to shift activation state. Static, read-only at runtime.
type MicroAction struct {
	ID           string          `json:"id"`
	Category     ActionCategory  `json:"category"`
	Duration     time.Duration   `json:"duration"`
	Instructions []Instruction   `json:"instructions"`
	States       []string        `json:"states"`     // activation states this action applies to
	NeedTags     []string        `json:"need_tags"`  // calm, energy, focus, release
	BodyAreas    []string        `json:"body_areas"` // face, jaw, shoulders, neck, chest
	Priority     int             `json:"priority"`   // lower ranks first on ties
}

// AppliesTo reports whether the action is tagged for the given state.
func (a MicroAction) AppliesTo(state string) bool {
	for _, s := range a.States {
		if s == state {
			return true
		}
	}
	return false
}

// #endregion micro-action
