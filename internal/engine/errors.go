package engine

import (
	"errors"
	"fmt"
)

// Phase identifies which stage of the transition pipeline produced an error,
// so callers can tell "rejected as invalid" from "broke an invariant while
// mutating".
type Phase uint8

const (
	PhasePreValidate Phase = iota
	PhaseApply
	PhasePostValidate
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePreValidate:
		return "pre_validate"
	case PhaseApply:
		return "apply"
	case PhasePostValidate:
		return "post_validate"
	default:
		return "unknown"
	}
}

// PhaseError wraps a transition failure with the phase that raised it.
type PhaseError struct {
	Phase Phase
	Err   error
}

// Error implements error.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *PhaseError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the error is a normal pre-validation
// rejection rather than a mutation-phase invariant break.
func IsValidation(err error) bool {
	var phaseErr *PhaseError
	if errors.As(err, &phaseErr) {
		return phaseErr.Phase == PhasePreValidate
	}
	return false
}

// Validation sentinel errors. These are expected, frequent outcomes surfaced
// to the action's originator, not failures worth logging.
var (
	ErrActorNotFound  = errors.New("actor does not exist")
	ErrEntityNotFound = errors.New("entity does not exist")
	ErrNotCurrentTurn = errors.New("actor does not own the current turn")
	ErrOffMap         = errors.New("actor has no map position")
	ErrOutOfBounds    = errors.New("position outside map bounds")
	ErrImpassable     = errors.New("destination tile is impassable")
	ErrOccupied       = errors.New("destination tile is occupied")
	ErrOutOfRange     = errors.New("target is out of range")
	ErrTargetDead     = errors.New("target is already dead")
	ErrInsufficient   = errors.New("insufficient resources")
	ErrAbilityLocked  = errors.New("ability disabled or cooling down")
	ErrUnknownItem    = errors.New("item definition not found")
	ErrNotConsumable  = errors.New("item cannot be consumed")
	ErrNotScheduled   = errors.New("actor is not scheduled")
	ErrAlreadyActive  = errors.New("actor is already active")
	ErrNothingToDo    = errors.New("no active actor is schedulable")
	ErrSystemOnly     = errors.New("action is reserved for the system actor")
	ErrCharacterOnly  = errors.New("system actor cannot submit character actions")
	ErrMissingParams  = errors.New("action parameters missing for kind")
	ErrUnknownAction  = errors.New("unknown action kind")
)
