package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skanelabs/skane-engine/internal/catalog"
	"github.com/skanelabs/skane-engine/internal/feedback"
	"github.com/skanelabs/skane-engine/internal/index"
	"github.com/skanelabs/skane-engine/internal/signal"
)

func newTestManager(t *testing.T) (*Manager, *time.Time) {
	t.Helper()
	store := newTestStore(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	m := NewManager(store, catalog.DefaultCatalog(), DefaultConfig(), nil)
	m.now = func() time.Time { return now }
	return m, &now
}

func calmSnapshot() signal.Snapshot {
	v := 0.5
	return signal.Snapshot{
		Facial: signal.Facial{
			EyeOpenness: v, BlinkFrequency: v, EyeMoisture: v,
			ForeheadTension: v, BrowPosition: v, JawTension: v,
			LipCompression: v, FacialSymmetry: v,
		},
		Postural: signal.Postural{
			HeadTilt: v, HeadForward: v, ShoulderTension: v, NeckTension: v,
		},
		Respiratory: signal.Respiratory{
			BreathingDepth: v, BreathingRate: v, ChestMovement: v,
		},
	}
}

func tenseSnapshot() signal.Snapshot {
	snap := calmSnapshot()
	snap.Facial.ForeheadTension = 0.95
	snap.Facial.JawTension = 0.95
	snap.Facial.LipCompression = 0.9
	snap.Facial.EyeMoisture = 0.1
	snap.Postural.ShoulderTension = 0.95
	snap.Postural.NeckTension = 0.9
	snap.Postural.HeadForward = 0.8
	snap.Respiratory.BreathingRate = 0.95
	snap.Respiratory.BreathingDepth = 0.1
	snap.Respiratory.ChestMovement = 0.9
	return snap
}

func TestStartSessionPipeline(t *testing.T) {
	m, _ := newTestManager(t)

	res, err := m.StartSession("user-1", tenseSnapshot())
	require.NoError(t, err)
	require.Equal(t, StatusAwaitingFeedback, res.Session.Status)
	require.Equal(t, res.Action.ID, res.Session.ChosenAction)
	require.True(t, res.Action.AppliesTo(string(res.State.Primary)))
	require.GreaterOrEqual(t, res.Session.BeforeScore.Min, 0.0)
	require.LessOrEqual(t, res.Session.BeforeScore.Max, 100.0)

	// Pipeline decisions are audited.
	entries, err := m.store.ListDecisions(res.Session.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestStartSessionCooldown(t *testing.T) {
	m, now := newTestManager(t)

	_, err := m.StartSession("user-1", calmSnapshot())
	require.NoError(t, err)

	// Immediately again: blocked for the full window.
	_, err = m.StartSession("user-1", calmSnapshot())
	var cdErr *CooldownActiveError
	require.ErrorAs(t, err, &cdErr)
	require.Equal(t, 24, cdErr.HoursUntilReset)

	// 23h later: still blocked, one hour remaining (rounded up).
	*now = now.Add(23*time.Hour + 30*time.Minute)
	cd, err := m.CheckCooldown("user-1")
	require.NoError(t, err)
	require.False(t, cd.CanReset)
	require.Equal(t, 1, cd.HoursUntilReset)

	// Exactly 24h after creation: eligible.
	*now = now.Add(30 * time.Minute)
	cd, err = m.CheckCooldown("user-1")
	require.NoError(t, err)
	require.True(t, cd.CanReset)

	_, err = m.StartSession("user-1", calmSnapshot())
	require.NoError(t, err)
}

func TestCheckCooldownNoHistory(t *testing.T) {
	m, _ := newTestManager(t)
	cd, err := m.CheckCooldown("fresh-user")
	require.NoError(t, err)
	require.True(t, cd.CanReset)
	require.Zero(t, cd.HoursUntilReset)
}

func TestSubmitFeedbackOnce(t *testing.T) {
	m, _ := newTestManager(t)

	start, err := m.StartSession("user-1", tenseSnapshot())
	require.NoError(t, err)

	first, err := m.SubmitFeedback(start.Session.ID, "better")
	require.NoError(t, err)
	require.Equal(t, feedback.Better, first.Feedback)
	require.LessOrEqual(t, first.AfterScore.Max, start.Session.BeforeScore.Min+0.0001)

	// Re-submission returns the committed result, not an error.
	second, err := m.SubmitFeedback(start.Session.ID, "worse")
	require.NoError(t, err)
	require.Equal(t, first, second)

	sess, err := m.store.Get(start.Session.ID)
	require.NoError(t, err)
	require.Equal(t, feedback.Better, sess.Feedback)
}

func TestSubmitFeedbackUnknownTokenCoerces(t *testing.T) {
	m, _ := newTestManager(t)

	start, err := m.StartSession("user-1", calmSnapshot())
	require.NoError(t, err)

	res, err := m.SubmitFeedback(start.Session.ID, "not-a-real-token")
	require.NoError(t, err)
	require.Equal(t, feedback.Same, res.Feedback)
	require.False(t, res.ShouldOfferShare)
}

func TestSubmitFeedbackUnknownSession(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.SubmitFeedback("no-such-id", "better")
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestSubmitFeedbackWorseUnresolved(t *testing.T) {
	m, _ := newTestManager(t)

	start, err := m.StartSession("user-1", tenseSnapshot())
	require.NoError(t, err)

	res, err := m.SubmitFeedback(start.Session.ID, "still_high")
	require.NoError(t, err)
	require.Equal(t, feedback.Worse, res.Feedback)
	require.False(t, res.ShouldOfferShare)

	sess, err := m.store.Get(start.Session.ID)
	require.NoError(t, err)
	require.True(t, sess.Unresolved)
}

func TestStartSessionFallbackOnConfigDefect(t *testing.T) {
	store := newTestStore(t)
	// Catalog with no LOW_ENERGY entry but a valid default.
	cat := &catalog.Catalog{
		Bounds:          catalog.DefaultBounds(),
		DefaultActionID: "fallback",
		Actions: []catalog.MicroAction{
			{ID: "fallback", Duration: time.Minute, States: []string{"HIGH_ACTIVATION"}},
		},
	}
	m := NewManager(store, cat, DefaultConfig(), nil)

	snap := calmSnapshot()
	snap.Facial.ForeheadTension = 0.05
	snap.Facial.JawTension = 0.05
	snap.Facial.BlinkFrequency = 0.05
	snap.Facial.EyeOpenness = 0.1
	snap.Facial.BrowPosition = 0.05
	snap.Facial.LipCompression = 0.05
	snap.Postural = signal.Postural{HeadTilt: 0.05, HeadForward: 0.05, ShoulderTension: 0.05, NeckTension: 0.05}
	snap.Respiratory = signal.Respiratory{BreathingDepth: 0.9, BreathingRate: 0.1, ChestMovement: 0.1}

	res, err := m.StartSession("user-1", snap)
	require.NoError(t, err)
	require.Equal(t, "fallback", res.Session.ChosenAction)
}

func TestMigrateGuestReowns(t *testing.T) {
	m, now := newTestManager(t)

	start, err := m.StartSession("guest-token", calmSnapshot())
	require.NoError(t, err)

	sess, err := m.MigrateGuest("guest-token", "user-1", nil)
	require.NoError(t, err)
	require.Equal(t, start.Session.ID, sess.ID)
	require.Equal(t, "user-1", sess.OwnerRef)

	// At-most-once per token.
	_, err = m.MigrateGuest("guest-token", "user-2", nil)
	require.ErrorIs(t, err, ErrGuestAlreadyMigrated)

	_ = now
}

func TestMigrateGuestFromSummary(t *testing.T) {
	m, now := newTestManager(t)

	summary := &GuestSummary{
		SessionID:    "device-local",
		ChosenAction: "box-breath",
		BeforeScore:  index.Band{Min: 50, Max: 70},
		Feedback:     feedback.Better,
		CreatedAt:    now.Add(-2 * time.Hour),
	}
	sess, err := m.MigrateGuest("guest-token", "user-1", summary)
	require.NoError(t, err)
	require.Equal(t, "user-1", sess.OwnerRef)
	require.Equal(t, StatusCompleted, sess.Status)
	require.Equal(t, feedback.Better, sess.Feedback)
	require.NotNil(t, sess.AfterScore)

	// Second merge attempt for the same token fails.
	_, err = m.MigrateGuest("guest-token", "user-1", summary)
	require.ErrorIs(t, err, ErrGuestAlreadyMigrated)
}

func TestMigrateGuestNothingToMerge(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.MigrateGuest("empty-token", "user-1", nil)
	require.True(t, errors.Is(err, ErrUnknownSession))
}
