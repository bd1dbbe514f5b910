package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skanelabs/skane-engine/internal/action"
	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/classify"
	"github.com/skanelabs/skane-engine/internal/feedback"
	"github.com/skanelabs/skane-engine/internal/index"
	"github.com/skanelabs/skane-engine/internal/signal"
)

// #region config

// Config bundles the pipeline knobs and lifecycle policy.
type Config struct {
	Classify classify.Config
	Index    index.Config
	Feedback feedback.Policy

	// CooldownWindow is the fixed duration after a session during
	// which a new one may not start.
	CooldownWindow time.Duration

	// MigrationWindow bounds how old a pending guest session may be
	// and still be re-owned at signup.
	MigrationWindow time.Duration
}

// DefaultConfig returns the standard lifecycle policy.
func DefaultConfig() Config {
	return Config{
		Classify:        classify.DefaultConfig(),
		Index:           index.DefaultConfig(),
		Feedback:        feedback.DefaultPolicy(),
		CooldownWindow:  24 * time.Hour,
		MigrationWindow: 48 * time.Hour,
	}
}

// #endregion config

// #region manager

// Manager owns session lifecycle: creation behind the cooldown gate,
// the classify→select→score pipeline, exactly-once feedback, and
// guest→account migration.
type Manager struct {
	store   *Store
	catalog *catalog.Catalog
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager wires a manager over a store and catalog.
func NewManager(store *Store, cat *catalog.Catalog, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   store,
		catalog: cat,
		config:  cfg,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Bounds exposes the catalog's signal bounds for input validation at
// the edge.
func (m *Manager) Bounds() catalog.SignalBounds {
	return m.catalog.Bounds
}

// #endregion manager

// #region start-session

// StartResult is the outcome of a scan: the persisted session plus the
// chosen action in full for display.
type StartResult struct {
	Session Session
	Action  catalog.MicroAction
	State   classify.Activation
}

// StartSession runs the scan pipeline for an owner. Enforces the
// cooldown against the owner's most recent session, classifies the
// snapshot, selects an action (falling back to the catalog default on a
// configuration defect), computes the before band, and persists the row
// awaiting feedback.
func (m *Manager) StartSession(ownerRef string, snap signal.Snapshot) (StartResult, error) {
	cd, err := m.CheckCooldown(ownerRef)
	if err != nil {
		return StartResult{}, err
	}
	if !cd.CanReset {
		return StartResult{}, &CooldownActiveError{HoursUntilReset: cd.HoursUntilReset}
	}

	act, err := classify.Classify(snap, m.catalog.Bounds, m.config.Classify)
	if err != nil {
		return StartResult{}, err
	}

	hints := action.DeriveHints(act, snap)
	chosen, err := action.Select(m.catalog, act, hints)
	if err != nil {
		var noAction *action.NoEligibleActionError
		if !errors.As(err, &noAction) {
			return StartResult{}, err
		}
		// Configuration defect: log loudly, answer with the default.
		m.logger.Error("catalog has no action for state",
			zap.String("state", string(act.Primary)))
		chosen = m.catalog.Default()
	}

	before := index.ComputeBefore(act, m.config.Index)
	now := m.now()

	sess := Session{
		ID:           uuid.New().String(),
		OwnerRef:     ownerRef,
		Status:       StatusAwaitingFeedback,
		BeforeScore:  before,
		ChosenAction: chosen.ID,
		CreatedAt:    now,
	}
	if err := m.store.Insert(sess); err != nil {
		return StartResult{}, err
	}

	m.audit(sess.ID, "classify", act,
		fmt.Sprintf("state=%s level=%.4f confidence=%.4f", act.Primary, act.Level, act.Confidence))
	m.audit(sess.ID, "select", hints, fmt.Sprintf("action=%s", chosen.ID))
	m.audit(sess.ID, "score", before, fmt.Sprintf("band=[%.1f,%.1f]", before.Min, before.Max))

	return StartResult{Session: sess, Action: chosen, State: act}, nil
}

// #endregion start-session

// #region submit-feedback

// SubmitFeedback records the at-most-one feedback transition. A repeat
// submission on a completed session is idempotent-rejected: it returns
// the committed result unchanged. Two racing submissions resolve to
// exactly one winner via the store's conditional update; the loser also
// receives the committed result.
func (m *Manager) SubmitFeedback(sessionID, token string) (FeedbackResult, error) {
	fb, err := feedback.Normalize(token, m.config.Feedback)
	if err != nil {
		return FeedbackResult{}, err
	}

	sess, err := m.store.Get(sessionID)
	if err != nil {
		return FeedbackResult{}, err
	}
	if sess.Completed() {
		return committedResult(sess), nil
	}

	res := index.ApplyFeedback(sess.BeforeScore, fb, m.config.Index)
	won, err := m.store.CompleteFeedback(sessionID, fb, res, m.now())
	if err != nil {
		return FeedbackResult{}, err
	}
	if !won {
		// Lost the race: read back what the winner committed.
		sess, err = m.store.Get(sessionID)
		if err != nil {
			return FeedbackResult{}, err
		}
		return committedResult(sess), nil
	}

	m.audit(sessionID, "feedback", res,
		fmt.Sprintf("feedback=%s index=%.1f share=%v", fb, res.SkaneIndex, res.ShouldOfferShare))

	return FeedbackResult{
		AfterScore:       res.After,
		SkaneIndex:       res.SkaneIndex,
		ShouldOfferShare: res.ShouldOfferShare,
		Feedback:         fb,
	}, nil
}

func committedResult(sess Session) FeedbackResult {
	res := FeedbackResult{
		ShouldOfferShare: sess.SharePrompted,
		Feedback:         sess.Feedback,
	}
	if sess.AfterScore != nil {
		res.AfterScore = *sess.AfterScore
	}
	if sess.SkaneIndex != nil {
		res.SkaneIndex = *sess.SkaneIndex
	}
	return res
}

// #endregion submit-feedback

// #region cooldown

// CheckCooldown reads the owner's most recent session and applies the
// fixed window. Owners with no history can always start. Tolerant of a
// stale read: missing a brand-new row permits one extra reset, which is
// an accepted bounded inconsistency.
func (m *Manager) CheckCooldown(ownerRef string) (Cooldown, error) {
	last, err := m.store.LatestByOwner(ownerRef)
	if errors.Is(err, ErrUnknownSession) {
		return Cooldown{CanReset: true}, nil
	}
	if err != nil {
		return Cooldown{}, err
	}

	elapsed := m.now().Sub(last.CreatedAt)
	if elapsed >= m.config.CooldownWindow {
		return Cooldown{CanReset: true}, nil
	}
	remaining := m.config.CooldownWindow - elapsed
	return Cooldown{
		CanReset:        false,
		HoursUntilReset: int(math.Ceil(remaining.Hours())),
	}, nil
}

// #endregion cooldown

// #region migrate

// MigrateGuest merges a guest token into an account, at most once per
// token. The most recent pending guest session inside the migration
// window is re-owned; failing that, the supplied summary constructs a
// session record directly.
func (m *Manager) MigrateGuest(guestRef, ownerRef string, summary *GuestSummary) (Session, error) {
	migrated, err := m.store.HasMigration(guestRef)
	if err != nil {
		return Session{}, err
	}
	if migrated {
		return Session{}, ErrGuestAlreadyMigrated
	}

	now := m.now()
	sess, ok, err := m.store.Reown(guestRef, ownerRef, m.config.MigrationWindow, now)
	if err != nil {
		return Session{}, err
	}
	if ok {
		m.audit(sess.ID, "migrate", nil, fmt.Sprintf("reowned from %s", guestRef))
		return sess, nil
	}

	if summary == nil {
		return Session{}, ErrUnknownSession
	}

	// No pending server-side session: build one from the guest summary.
	sess = Session{
		ID:           uuid.New().String(),
		OwnerRef:     ownerRef,
		Status:       StatusAwaitingFeedback,
		BeforeScore:  summary.BeforeScore,
		ChosenAction: summary.ChosenAction,
		MigratedFrom: guestRef,
		CreatedAt:    summary.CreatedAt,
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if summary.Feedback != feedback.Unknown {
		res := index.ApplyFeedback(summary.BeforeScore, summary.Feedback, m.config.Index)
		sess.Status = StatusCompleted
		sess.AfterScore = &res.After
		sess.Feedback = summary.Feedback
		sess.SkaneIndex = &res.SkaneIndex
		sess.SharePrompted = res.ShouldOfferShare
		sess.Unresolved = res.Unresolved
		completed := now
		sess.CompletedAt = &completed
	}
	if err := m.store.Insert(sess); err != nil {
		return Session{}, err
	}
	m.audit(sess.ID, "migrate", summary, fmt.Sprintf("constructed from guest summary %s", guestRef))
	return sess, nil
}

// #endregion migrate

// #region history

// History returns an owner's sessions, most recent first.
func (m *Manager) History(ownerRef string, limit int) ([]Session, error) {
	return m.store.ListByOwner(ownerRef, limit)
}

// #endregion history

// #region audit

func (m *Manager) audit(sessionID, stage string, inputs any, reason string) {
	var inputsJSON string
	if inputs != nil {
		if b, err := json.Marshal(inputs); err == nil {
			inputsJSON = string(b)
		}
	}
	err := m.store.LogDecision(DecisionEntry{
		SessionID:  sessionID,
		Stage:      stage,
		InputsJSON: inputsJSON,
		Decision:   "commit",
		Reason:     reason,
		CreatedAt:  m.now(),
	})
	if err != nil {
		m.logger.Warn("decision log write failed", zap.String("stage", stage), zap.Error(err))
	}
}

// #endregion audit
