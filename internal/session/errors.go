package session

import (
	"errors"
	"fmt"

	"github.com/stemsi/exstem-prep/internal/catalog"
)

var (
	// ErrNoActiveSession marks a mutation attempted outside Active. It is only
	// logged; the mutation is a no-op.
	ErrNoActiveSession = errors.New("no active session")

	// ErrModuleNotFound is returned by Start for ids missing from the catalog.
	// It is the catalog's sentinel, so errors.Is matches either name.
	ErrModuleNotFound = catalog.ErrModuleNotFound

	// ErrSessionInProgress is returned by Resume while a session is loaded.
	ErrSessionInProgress = errors.New("session already loaded")

	// ErrNoCheckpoint is returned by Resume when there is nothing to restore.
	ErrNoCheckpoint = errors.New("no checkpoint to resume")
)

// RecoveryError describes a checkpoint that could not be restored. It is
// swallowed by Recover and results in a fresh, unstarted engine.
type RecoveryError struct {
	Reason string
	Err    error
}

func (e *RecoveryError) Error() string {
	if e.Err == nil {
		return "recover session: " + e.Reason
	}
	return fmt.Sprintf("recover session: %s: %v", e.Reason, e.Err)
}

func (e *RecoveryError) Unwrap() error { return e.Err }
