package catalog

import "time"

// #region catalog

// Catalog bundles the signal bounds and the micro-action library.
type Catalog struct {
	Bounds  SignalBounds
	Actions []MicroAction

	// DefaultActionID names the fallback action used when selection
	// finds no eligible entry. Must exist in Actions.
	DefaultActionID string
}

// ForState returns the actions tagged for the given activation state.
func (c *Catalog) ForState(state string) []MicroAction {
	var out []MicroAction
	for _, a := range c.Actions {
		if a.AppliesTo(state) {
			out = append(out, a)
		}
	}
	return out
}

// Get looks up an action by ID.
func (c *Catalog) Get(id string) (MicroAction, bool) {
	for _, a := range c.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return MicroAction{}, false
}

// Default returns the designated fallback action.
func (c *Catalog) Default() MicroAction {
	a, _ := c.Get(c.DefaultActionID)
	return a
}

// #endregion catalog

// #region default-catalog

// DefaultCatalog returns the built-in action library.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Bounds:          DefaultBounds(),
		DefaultActionID: "box-breath",
		Actions: []MicroAction{
			{
				ID:       "box-breath",
				Category: CategoryBreathing,
				Duration: 60 * time.Second,
				Instructions: []Instruction{
					{Text: "Inhale through the nose", Duration: 4 * time.Second, Type: StepBreath},
					{Text: "Hold", Duration: 4 * time.Second, Type: StepHold},
					{Text: "Exhale slowly through the mouth", Duration: 4 * time.Second, Type: StepBreath},
					{Text: "Hold empty", Duration: 4 * time.Second, Type: StepHold},
				},
				States:    []string{"HIGH_ACTIVATION", "REGULATED"},
				NeedTags:  []string{"calm", "focus"},
				BodyAreas: []string{"chest"},
				Priority:  1,
			},
			{
				ID:       "long-exhale",
				Category: CategoryBreathing,
				Duration: 45 * time.Second,
				Instructions: []Instruction{
					{Text: "Inhale for four counts", Duration: 4 * time.Second, Type: StepBreath},
					{Text: "Exhale for eight counts", Duration: 8 * time.Second, Type: StepBreath},
				},
				States:    []string{"HIGH_ACTIVATION"},
				NeedTags:  []string{"calm"},
				BodyAreas: []string{"chest"},
				Priority:  2,
			},
			{
				ID:       "jaw-release",
				Category: CategoryRelease,
				Duration: 30 * time.Second,
				Instructions: []Instruction{
					{Text: "Let the jaw hang open slightly", Duration: 10 * time.Second, Type: StepRelease},
					{Text: "Slide the jaw gently side to side", Duration: 10 * time.Second, Type: StepMovement},
					{Text: "Rest the tongue on the floor of the mouth", Duration: 10 * time.Second, Type: StepRelease},
				},
				States:    []string{"HIGH_ACTIVATION"},
				NeedTags:  []string{"release"},
				BodyAreas: []string{"jaw", "face"},
				Priority:  3,
			},
			{
				ID:       "brow-smooth",
				Category: CategoryRelease,
				Duration: 30 * time.Second,
				Instructions: []Instruction{
					{Text: "Raise the eyebrows high", Duration: 5 * time.Second, Type: StepHold},
					{Text: "Release and let the forehead soften", Duration: 10 * time.Second, Type: StepRelease},
					{Text: "Smooth the brow with two fingers", Duration: 15 * time.Second, Type: StepMovement},
				},
				States:    []string{"HIGH_ACTIVATION", "REGULATED"},
				NeedTags:  []string{"release", "calm"},
				BodyAreas: []string{"face"},
				Priority:  4,
			},
			{
				ID:       "shoulder-drop",
				Category: CategoryPosture,
				Duration: 40 * time.Second,
				Instructions: []Instruction{
					{Text: "Lift the shoulders toward the ears", Duration: 5 * time.Second, Type: StepHold},
					{Text: "Drop them on a long exhale", Duration: 5 * time.Second, Type: StepRelease},
					{Text: "Roll the shoulders back three times", Duration: 15 * time.Second, Type: StepMovement},
					{Text: "Let the arms hang heavy", Duration: 15 * time.Second, Type: StepRelease},
				},
				States:    []string{"HIGH_ACTIVATION", "REGULATED"},
				NeedTags:  []string{"release"},
				BodyAreas: []string{"shoulders", "neck"},
				Priority:  2,
			},
			{
				ID:       "neck-lengthen",
				Category: CategoryPosture,
				Duration: 45 * time.Second,
				Instructions: []Instruction{
					{Text: "Tuck the chin slightly and grow tall", Duration: 10 * time.Second, Type: StepMovement},
					{Text: "Tilt the head gently to each side", Duration: 20 * time.Second, Type: StepMovement},
					{Text: "Return to center and breathe", Duration: 15 * time.Second, Type: StepBreath},
				},
				States:    []string{"REGULATED", "LOW_ENERGY"},
				NeedTags:  []string{"focus", "release"},
				BodyAreas: []string{"neck"},
				Priority:  3,
			},
			{
				ID:       "energizing-breath",
				Category: CategoryEnergize,
				Duration: 30 * time.Second,
				Instructions: []Instruction{
					{Text: "Take three quick inhales through the nose", Duration: 5 * time.Second, Type: StepBreath},
					{Text: "One long exhale", Duration: 5 * time.Second, Type: StepBreath},
					{Text: "Repeat three rounds", Duration: 20 * time.Second, Type: StepBreath},
				},
				States:    []string{"LOW_ENERGY"},
				NeedTags:  []string{"energy"},
				BodyAreas: []string{"chest"},
				Priority:  1,
			},
			{
				ID:       "posture-reset",
				Category: CategoryEnergize,
				Duration: 40 * time.Second,
				Instructions: []Instruction{
					{Text: "Stand or sit tall, crown lifting", Duration: 10 * time.Second, Type: StepMovement},
					{Text: "Open the chest, hands behind the back", Duration: 15 * time.Second, Type: StepHold},
					{Text: "Release and take two full breaths", Duration: 15 * time.Second, Type: StepBreath},
				},
				States:    []string{"LOW_ENERGY"},
				NeedTags:  []string{"energy", "focus"},
				BodyAreas: []string{"shoulders", "chest"},
				Priority:  2,
			},
			{
				ID:       "eye-rest",
				Category: CategoryRelease,
				Duration: 60 * time.Second,
				Instructions: []Instruction{
					{Text: "Close the eyes and cover them with warm palms", Duration: 30 * time.Second, Type: StepRelease},
					{Text: "Blink slowly ten times", Duration: 15 * time.Second, Type: StepMovement},
					{Text: "Gaze at a distant point", Duration: 15 * time.Second, Type: StepHold},
				},
				States:    []string{"LOW_ENERGY", "REGULATED"},
				NeedTags:  []string{"focus", "calm"},
				BodyAreas: []string{"face"},
				Priority:  4,
			},
		},
	}
}

// #endregion default-catalog
