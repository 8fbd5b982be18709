package cascade

import (
	"errors"
	"fmt"
)

var (
	// ErrBadInput means the batch had nothing usable to work on.
	ErrBadInput = errors.New("no valid identifiers provided")
	// ErrTooMany means the batch exceeded the configured size limit.
	ErrTooMany = errors.New("too many identifiers")
	// ErrNoValidTargets means no identifier resolved to a deletable entity.
	ErrNoValidTargets = errors.New("no valid targets found")
	// ErrActorUnknown means the caller's own record could not be loaded.
	ErrActorUnknown = errors.New("could not verify admin identity")
	// ErrActorForbidden means the caller's stored role is no longer admin.
	ErrActorForbidden = errors.New("actor is not an admin")
)

// Phases reported in StoreError.
const (
	PhaseActor     = "actor"
	PhaseResolve   = "resolve"
	PhaseAggregate = "aggregate"
	PhaseDelete    = "delete"
)

// StoreError is a failure of the underlying store during one phase.
type StoreError struct {
	Phase    string
	Category string
	Err      error
}

func (e *StoreError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Category, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
