package session

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skanelabs/skane-engine/internal/feedback"
	"github.com/skanelabs/skane-engine/internal/index"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id     TEXT PRIMARY KEY,
	owner_ref      TEXT NOT NULL,
	status         TEXT NOT NULL,
	before_min     REAL NOT NULL,
	before_max     REAL NOT NULL,
	after_min      REAL,
	after_max      REAL,
	chosen_action  TEXT,
	feedback       TEXT,
	skane_index    REAL,
	share_prompted INTEGER NOT NULL DEFAULT 0,
	unresolved     INTEGER NOT NULL DEFAULT 0,
	migrated_from  TEXT,
	created_at     TEXT NOT NULL,
	completed_at   TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_owner_created
ON sessions(owner_ref, created_at DESC);

CREATE INDEX IF NOT EXISTS idx_sessions_migrated_from
ON sessions(migrated_from);

CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	stage       TEXT NOT NULL,
	inputs_json TEXT,
	decision    TEXT NOT NULL,
	reason      TEXT,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store-struct
// Store persists session rows in SQLite. Rows are append-only: the only
// UPDATE is the guarded feedback completion and guest re-owning.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region insert
// Insert persists a new session row.
func (s *Store) Insert(sess Session) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions
		 (session_id, owner_ref, status, before_min, before_max, after_min, after_max,
		  chosen_action, feedback, skane_index, share_prompted, unresolved,
		  migrated_from, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.OwnerRef, string(sess.Status),
		sess.BeforeScore.Min, sess.BeforeScore.Max,
		nullBandMin(sess.AfterScore), nullBandMax(sess.AfterScore),
		nullIfEmpty(sess.ChosenAction), nullIfEmpty(string(sess.Feedback)),
		nullFloat(sess.SkaneIndex), boolInt(sess.SharePrompted), boolInt(sess.Unresolved),
		nullIfEmpty(sess.MigratedFrom),
		sess.CreatedAt.Format(time.RFC3339Nano), nullTime(sess.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// #endregion insert

// #region get
// Get retrieves a session by id. Returns ErrUnknownSession when absent.
func (s *Store) Get(id string) (Session, error) {
	row := s.db.QueryRow(selectColumns+` FROM sessions WHERE session_id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return Session{}, ErrUnknownSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// LatestByOwner returns the most recent session for an owner, or
// ErrUnknownSession when the owner has none.
func (s *Store) LatestByOwner(ownerRef string) (Session, error) {
	row := s.db.QueryRow(
		selectColumns+` FROM sessions WHERE owner_ref = ? ORDER BY created_at DESC LIMIT 1`,
		ownerRef,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return Session{}, ErrUnknownSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("latest session for %s: %w", ownerRef, err)
	}
	return sess, nil
}

// ListByOwner returns an owner's sessions, most recent first.
func (s *Store) ListByOwner(ownerRef string, limit int) ([]Session, error) {
	rows, err := s.db.Query(
		selectColumns+` FROM sessions WHERE owner_ref = ? ORDER BY created_at DESC LIMIT ?`,
		ownerRef, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// #endregion get

// #region complete-feedback
// CompleteFeedback applies the feedback transition with a conditional
// update guarded on AWAITING_FEEDBACK. Exactly one concurrent caller
// wins; the return value reports whether this caller was it.
func (s *Store) CompleteFeedback(id string, fb feedback.Value, res index.Result, completedAt time.Time) (bool, error) {
	out, err := s.db.Exec(
		`UPDATE sessions
		 SET status = ?, feedback = ?, after_min = ?, after_max = ?,
		     skane_index = ?, share_prompted = ?, unresolved = ?, completed_at = ?
		 WHERE session_id = ? AND status = ?`,
		string(StatusCompleted), string(fb), res.After.Min, res.After.Max,
		res.SkaneIndex, boolInt(res.ShouldOfferShare), boolInt(res.Unresolved),
		completedAt.Format(time.RFC3339Nano),
		id, string(StatusAwaitingFeedback),
	)
	if err != nil {
		return false, fmt.Errorf("complete feedback: %w", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// #endregion complete-feedback

// #region reown
// Reown transfers the most recent pending guest session to a new owner.
// The window bounds how old a pending session may be. At-most-once: a
// re-owned row no longer matches the guest ref.
func (s *Store) Reown(guestRef, ownerRef string, window time.Duration, now time.Time) (Session, bool, error) {
	cutoff := now.Add(-window).Format(time.RFC3339Nano)

	var id string
	err := s.db.QueryRow(
		`SELECT session_id FROM sessions
		 WHERE owner_ref = ? AND created_at >= ?
		 ORDER BY created_at DESC LIMIT 1`,
		guestRef, cutoff,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("find guest session: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE sessions SET owner_ref = ?, migrated_from = ? WHERE session_id = ?`,
		ownerRef, guestRef, id,
	)
	if err != nil {
		return Session{}, false, fmt.Errorf("reown session: %w", err)
	}

	sess, err := s.Get(id)
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// HasMigration reports whether a guest token was already merged, either
// by re-owning a row or by constructing one from summary data.
func (s *Store) HasMigration(guestRef string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE migrated_from = ?`, guestRef,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration: %w", err)
	}
	return count > 0, nil
}

// #endregion reown

// #region decision-log
// LogDecision appends an audit row to the decision_log table.
func (s *Store) LogDecision(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO decision_log (session_id, stage, inputs_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.Stage, nullIfEmpty(entry.InputsJSON),
		entry.Decision, nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// ListDecisions returns the audit rows for a session in insert order.
func (s *Store) ListDecisions(sessionID string) ([]DecisionEntry, error) {
	rows, err := s.db.Query(
		`SELECT session_id, stage, inputs_json, decision, reason, created_at
		 FROM decision_log WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var inputs, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.SessionID, &e.Stage, &inputs, &e.Decision, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.InputsJSON = inputs.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion decision-log

// #region scan-helpers

const selectColumns = `SELECT session_id, owner_ref, status, before_min, before_max,
	after_min, after_max, chosen_action, feedback, skane_index,
	share_prompted, unresolved, migrated_from, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var status string
	var afterMin, afterMax, skaneIdx sql.NullFloat64
	var chosenAction, fb, migratedFrom, completedStr sql.NullString
	var sharePrompted, unresolved int
	var createdStr string

	err := row.Scan(
		&sess.ID, &sess.OwnerRef, &status,
		&sess.BeforeScore.Min, &sess.BeforeScore.Max,
		&afterMin, &afterMax, &chosenAction, &fb, &skaneIdx,
		&sharePrompted, &unresolved, &migratedFrom, &createdStr, &completedStr,
	)
	if err != nil {
		return Session{}, err
	}

	sess.Status = Status(status)
	if afterMin.Valid && afterMax.Valid {
		sess.AfterScore = &index.Band{Min: afterMin.Float64, Max: afterMax.Float64}
	}
	sess.ChosenAction = chosenAction.String
	sess.Feedback = feedback.Value(fb.String)
	if skaneIdx.Valid {
		sess.SkaneIndex = &skaneIdx.Float64
	}
	sess.SharePrompted = sharePrompted == 1
	sess.Unresolved = unresolved == 1
	sess.MigratedFrom = migratedFrom.String
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if completedStr.Valid {
		t, _ := time.Parse(time.RFC3339Nano, completedStr.String)
		sess.CompletedAt = &t
	}
	return sess, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullBandMin(b *index.Band) any {
	if b == nil {
		return nil
	}
	return b.Min
}

func nullBandMax(b *index.Band) any {
	if b == nil {
		return nil
	}
	return b.Max
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion scan-helpers
