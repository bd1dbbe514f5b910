package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skanelabs/skane-engine/internal/perception"
	"github.com/skanelabs/skane-engine/internal/ratelimit"
	"github.com/skanelabs/skane-engine/internal/ritual"
	"github.com/skanelabs/skane-engine/internal/session"
	"github.com/skanelabs/skane-engine/internal/signal"
)

// #region server

// Server exposes the session engine over HTTP JSON.
type Server struct {
	manager    *session.Manager
	perception perception.Provider // nil when snapshots arrive inline only
	limiter    *ratelimit.Limiter  // nil disables throttling
	ritualCfg  ritual.Config
	logger     *zap.Logger
}

// NewServer wires the handlers.
func NewServer(manager *session.Manager, prov perception.Provider, limiter *ratelimit.Limiter, ritualCfg ritual.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		manager:    manager,
		perception: prov,
		limiter:    limiter,
		ritualCfg:  ritualCfg,
		logger:     logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /v1/sessions", s.handleStartSession)
	mux.HandleFunc("POST /v1/sessions/{id}/feedback", s.handleSubmitFeedback)
	mux.HandleFunc("GET /v1/cooldown", s.handleCooldown)
	mux.HandleFunc("GET /v1/ritual", s.handleRitual)
	mux.HandleFunc("POST /v1/migrate", s.handleMigrate)
	return s.throttle(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// #endregion server

// #region start-session

type startSessionRequest struct {
	OwnerRef   string                `json:"owner_ref"`
	Snapshot   *signal.SnapshotInput `json:"snapshot,omitempty"`
	CaptureRef string                `json:"capture_ref,omitempty"`
}

type startSessionResponse struct {
	Session session.Session `json:"session"`
	Action  actionPayload   `json:"action"`
	State   statePayload    `json:"state"`
}

type statePayload struct {
	Primary    string  `json:"primary_state"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	if req.OwnerRef == "" {
		s.writeError(w, http.StatusBadRequest, "validation", "owner_ref is required",
			[]signal.FieldViolation{{Field: "owner_ref", Reason: "missing"}})
		return
	}

	snap, ok := s.resolveSnapshot(w, r.Context(), req)
	if !ok {
		return
	}

	res, err := s.manager.StartSession(req.OwnerRef, snap)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{
		Session: res.Session,
		Action:  newActionPayload(res.Action),
		State: statePayload{
			Primary:    string(res.State.Primary),
			Confidence: res.State.Confidence,
		},
	})
}

// resolveSnapshot takes the inline snapshot when present, otherwise
// asks the perception provider to extract one for the capture ref.
func (s *Server) resolveSnapshot(w http.ResponseWriter, ctx context.Context, req startSessionRequest) (signal.Snapshot, bool) {
	if req.Snapshot != nil {
		snap, err := req.Snapshot.Resolve(s.manager.Bounds())
		if err != nil {
			s.writeEngineError(w, err)
			return signal.Snapshot{}, false
		}
		return snap, true
	}

	if req.CaptureRef == "" {
		s.writeError(w, http.StatusBadRequest, "validation", "snapshot or capture_ref is required",
			[]signal.FieldViolation{{Field: "snapshot", Reason: "missing"}})
		return signal.Snapshot{}, false
	}
	if s.perception == nil {
		s.writeError(w, http.StatusBadRequest, "validation", "capture_ref requires a configured perception provider", nil)
		return signal.Snapshot{}, false
	}

	snap, err := s.perception.Capture(ctx, req.CaptureRef)
	if err != nil {
		s.writeDependencyError(w, "perception provider", err)
		return signal.Snapshot{}, false
	}
	return snap, true
}

// #endregion start-session

// #region feedback

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}

	res, err := s.manager.SubmitFeedback(sessionID, req.Feedback)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// #endregion feedback

// #region cooldown

func (s *Server) handleCooldown(w http.ResponseWriter, r *http.Request) {
	ownerRef := r.URL.Query().Get("owner_ref")
	if ownerRef == "" {
		s.writeError(w, http.StatusBadRequest, "validation", "owner_ref is required", nil)
		return
	}

	cd, err := s.manager.CheckCooldown(ownerRef)
	if err != nil {
		s.writeDependencyError(w, "session store", err)
		return
	}
	writeJSON(w, http.StatusOK, cd)
}

// #endregion cooldown

// #region ritual

func (s *Server) handleRitual(w http.ResponseWriter, r *http.Request) {
	ownerRef := r.URL.Query().Get("owner_ref")
	if ownerRef == "" {
		s.writeError(w, http.StatusBadRequest, "validation", "owner_ref is required", nil)
		return
	}

	history, err := s.manager.History(ownerRef, 100)
	if err != nil {
		s.writeDependencyError(w, "session store", err)
		return
	}
	res := ritual.Evaluate(history, time.Now().UTC(), s.ritualCfg)
	writeJSON(w, http.StatusOK, res)
}

// #endregion ritual

// #region migrate

type migrateRequest struct {
	GuestRef string                `json:"guest_ref"`
	OwnerRef string                `json:"owner_ref"`
	Summary  *session.GuestSummary `json:"summary,omitempty"`
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	if req.GuestRef == "" || req.OwnerRef == "" {
		var fields []signal.FieldViolation
		if req.GuestRef == "" {
			fields = append(fields, signal.FieldViolation{Field: "guest_ref", Reason: "missing"})
		}
		if req.OwnerRef == "" {
			fields = append(fields, signal.FieldViolation{Field: "owner_ref", Reason: "missing"})
		}
		s.writeError(w, http.StatusBadRequest, "validation", "guest_ref and owner_ref are required", fields)
		return
	}

	sess, err := s.manager.MigrateGuest(req.GuestRef, req.OwnerRef, req.Summary)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// #endregion migrate

// #region throttle

func (s *Server) throttle(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get("X-Client-Id")
		if clientID == "" {
			clientID = r.RemoteAddr
		}
		ok, err := s.limiter.Allow(r.Context(), clientID)
		if err != nil {
			s.logger.Warn("rate limit store failure", zap.Error(err))
		}
		if !ok {
			s.writeError(w, http.StatusTooManyRequests, "throttled", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// #endregion throttle

// #region error-mapping

type errorResponse struct {
	Error         string                  `json:"error"`
	Code          string                  `json:"code"`
	Fields        []signal.FieldViolation `json:"fields,omitempty"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
}

// writeEngineError maps the engine's error taxonomy onto HTTP:
// validation failures carry a field list, state errors are distinct
// from them, and anything else is a generic dependency failure with a
// correlation id.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var sigErr *signal.InvalidSignalError
	if errors.As(err, &sigErr) {
		s.writeError(w, http.StatusBadRequest, "validation", "invalid signal snapshot", sigErr.Violations)
		return
	}
	if errors.Is(err, session.ErrUnknownSession) {
		s.writeError(w, http.StatusNotFound, "unknown_session", "session not found", nil)
		return
	}
	var cdErr *session.CooldownActiveError
	if errors.As(err, &cdErr) {
		writeJSON(w, http.StatusConflict, struct {
			errorResponse
			HoursUntilReset int `json:"hours_until_reset"`
		}{
			errorResponse:   errorResponse{Error: cdErr.Error(), Code: "cooldown_active"},
			HoursUntilReset: cdErr.HoursUntilReset,
		})
		return
	}
	if errors.Is(err, session.ErrGuestAlreadyMigrated) {
		s.writeError(w, http.StatusConflict, "already_migrated", err.Error(), nil)
		return
	}
	s.writeDependencyError(w, "session engine", err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg string, fields []signal.FieldViolation) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code, Fields: fields})
}

// writeDependencyError answers with a generic failure and a correlation
// id; the detail goes to the log only. Retry policy belongs to the
// caller, not this layer.
func (s *Server) writeDependencyError(w http.ResponseWriter, dependency string, err error) {
	corrID := uuid.New().String()
	s.logger.Error("dependency failure",
		zap.String("dependency", dependency),
		zap.String("correlation_id", corrID),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:         "internal error",
		Code:          "dependency",
		CorrelationID: corrID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// #endregion error-mapping
