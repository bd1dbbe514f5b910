package session

import (
	"errors"
	"fmt"
)

// #region errors

// ErrUnknownSession signals a lookup for a session id or owner with no
// matching row. A state error, distinct from validation failures.
var ErrUnknownSession = errors.New("unknown session")

// CooldownActiveError rejects a new session inside the cooldown window.
type CooldownActiveError struct {
	HoursUntilReset int
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %dh until reset", e.HoursUntilReset)
}

// ErrGuestAlreadyMigrated signals a second merge attempt for the same
// guest token. The merge is at-most-once.
var ErrGuestAlreadyMigrated = errors.New("guest token already migrated")

// #endregion errors
