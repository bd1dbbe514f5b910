package session

import (
	"time"

	"github.com/skanelabs/skane-engine/internal/feedback"
	"github.com/skanelabs/skane-engine/internal/index"
)

// #region status

// Status is the session lifecycle state. Sessions move
// CREATED → SCORED → AWAITING_FEEDBACK → COMPLETED; the first three
// transitions happen within a single scan request, so only the last
// two statuses are ever observable in the store.
type Status string

const (
	StatusCreated          Status = "CREATED"
	StatusScored           Status = "SCORED"
	StatusAwaitingFeedback Status = "AWAITING_FEEDBACK"
	StatusCompleted        Status = "COMPLETED"
)

// #endregion status

// #region session

// Session is the aggregate root: one scan, one chosen action, at most
// one feedback submission. Rows are append-only; feedback completion is
// the only mutation and it happens exactly once.
type Session struct {
	ID            string         `json:"id"`
	OwnerRef      string         `json:"owner_ref"` // user id or guest token
	Status        Status         `json:"status"`
	BeforeScore   index.Band     `json:"before_score"`
	AfterScore    *index.Band    `json:"after_score,omitempty"`
	ChosenAction  string         `json:"chosen_action"`
	Feedback      feedback.Value `json:"feedback,omitempty"`
	SkaneIndex    *float64       `json:"skane_index,omitempty"`
	SharePrompted bool           `json:"share_prompted"`
	Unresolved    bool           `json:"unresolved"`
	MigratedFrom  string         `json:"migrated_from,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// Completed reports whether feedback has been recorded.
func (s Session) Completed() bool {
	return s.Status == StatusCompleted
}

// #endregion session

// #region feedback-result

// FeedbackResult is the committed outcome of a feedback submission.
// Repeat submissions return the same result unchanged.
type FeedbackResult struct {
	AfterScore       index.Band     `json:"after_score"`
	SkaneIndex       float64        `json:"skane_index"`
	ShouldOfferShare bool           `json:"should_offer_share"`
	Feedback         feedback.Value `json:"feedback"`
}

// #endregion feedback-result

// #region decision-entry

// DecisionEntry is one audit row linking a session to the pipeline
// decision that produced or completed it.
type DecisionEntry struct {
	SessionID  string
	Stage      string // "classify" | "select" | "score" | "feedback" | "migrate"
	InputsJSON string
	Decision   string
	Reason     string
	CreatedAt  time.Time
}

// #endregion decision-entry

// #region cooldown

// Cooldown reports whether a new session may start for an owner.
type Cooldown struct {
	CanReset        bool `json:"can_reset"`
	HoursUntilReset int  `json:"hours_until_reset"`
}

// #endregion cooldown

// #region guest-summary

// GuestSummary is the device-local session data supplied at signup when
// no pending guest session exists server-side.
type GuestSummary struct {
	SessionID    string         `json:"session_id"`
	ChosenAction string         `json:"chosen_action"`
	BeforeScore  index.Band     `json:"before_score"`
	Feedback     feedback.Value `json:"feedback,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// #endregion guest-summary
