// Package engine drives actions through the three-phase transition contract
// and produces state deltas. It is the sole mutation entry point for game
// state: pre-validate catches every precondition before any write, apply
// mutates with sub-step rollback, post-validate asserts the invariants the
// mutation must preserve.
package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// Transition is the capability every executable action kind implements.
type Transition interface {
	// PreValidate must be side-effect free and reject every precondition
	// violation before Apply runs.
	PreValidate(s *state.GameState, env oracle.Env) error
	// Apply performs the mutation. It may assume PreValidate passed; if a
	// sub-step fails mid-mutation it must roll back what it already wrote
	// before returning.
	Apply(s *state.GameState, env oracle.Env) error
	// PostValidate asserts invariants that must hold after the mutation.
	PostValidate(s *state.GameState, env oracle.Env) error
}

// Engine executes transitions against a single owned GameState.
type Engine struct {
	state *state.GameState
	env   oracle.Env
}

// New wraps the provided state and environment. The engine takes ownership
// of the state pointer; callers needing isolation pass a clone.
func New(st *state.GameState, env oracle.Env) *Engine {
	return &Engine{state: st, env: env}
}

// State exposes the owned state for read access.
func (e *Engine) State() *state.GameState {
	return e.state
}

// Env returns the oracle environment.
func (e *Engine) Env() oracle.Env {
	return e.env
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *state.GameState {
	return e.state.Clone()
}

// Execute drives one action through its transition: snapshot the before
// state, dispatch, run the three phases short-circuiting at first failure,
// and on success bump the action nonce and return the computed delta. Any
// failure restores the before snapshot so the engine's state never holds a
// half-applied transition.
func (e *Engine) Execute(act action.Action) (delta.StateDelta, error) {
	tr, err := transitionFor(act)
	if err != nil {
		return delta.StateDelta{}, &PhaseError{Phase: PhasePreValidate, Err: err}
	}

	before := e.state.Clone()

	if err := tr.PreValidate(e.state, e.env); err != nil {
		return delta.StateDelta{}, &PhaseError{Phase: PhasePreValidate, Err: err}
	}
	if err := tr.Apply(e.state, e.env); err != nil {
		*e.state = *before.Clone()
		return delta.StateDelta{}, &PhaseError{Phase: PhaseApply, Err: err}
	}
	if err := tr.PostValidate(e.state, e.env); err != nil {
		*e.state = *before.Clone()
		return delta.StateDelta{}, &PhaseError{Phase: PhasePostValidate, Err: err}
	}

	e.state.Turn.Nonce = before.Turn.Nonce + 1
	return delta.Compute(act, before, e.state), nil
}

// transitionFor is the total dispatch over the action union. Every variant
// routes to exactly one handler; an unhandled kind is a hard error.
func transitionFor(act action.Action) (Transition, error) {
	if act.Kind.IsSystem() && act.Actor != state.SystemActorID {
		return nil, fmt.Errorf("%w: %s from actor %d", ErrSystemOnly, act.Kind, act.Actor)
	}
	if !act.Kind.IsSystem() && act.Actor == state.SystemActorID {
		return nil, fmt.Errorf("%w: %s", ErrCharacterOnly, act.Kind)
	}

	switch act.Kind {
	case action.KindMove:
		if act.Move == nil {
			return nil, ErrMissingParams
		}
		return &moveTransition{actor: act.Actor, params: *act.Move}, nil
	case action.KindAttack:
		if act.Attack == nil {
			return nil, ErrMissingParams
		}
		return &attackTransition{actor: act.Actor, params: *act.Attack}, nil
	case action.KindUseItem:
		if act.UseItem == nil {
			return nil, ErrMissingParams
		}
		return &useItemTransition{actor: act.Actor, params: *act.UseItem}, nil
	case action.KindInteract:
		if act.Interact == nil {
			return nil, ErrMissingParams
		}
		return &interactTransition{actor: act.Actor, params: *act.Interact}, nil
	case action.KindWait:
		return &waitTransition{actor: act.Actor}, nil
	case action.KindPrepareTurn:
		return &prepareTurnTransition{}, nil
	case action.KindActionCost:
		if act.Cost == nil {
			return nil, ErrMissingParams
		}
		return &actionCostTransition{params: *act.Cost}, nil
	case action.KindActivation:
		if act.Activate == nil {
			return nil, ErrMissingParams
		}
		return &activationTransition{params: *act.Activate}, nil
	case action.KindDeactivate:
		if act.Deact == nil {
			return nil, ErrMissingParams
		}
		return &deactivateTransition{params: *act.Deact}, nil
	case action.KindRemoveFromWorld:
		if act.Remove == nil {
			return nil, ErrMissingParams
		}
		return &removeTransition{params: *act.Remove}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, act.Kind)
	}
}

// requireCurrentActor resolves the acting character and checks turn
// ownership. Shared by every character transition.
func requireCurrentActor(s *state.GameState, id state.EntityID) (*state.Actor, error) {
	actor, ok := s.Entities.ActorByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrActorNotFound, id)
	}
	if s.Turn.Current != id {
		return nil, fmt.Errorf("%w: actor %d, current %d", ErrNotCurrentTurn, id, s.Turn.Current)
	}
	return actor, nil
}
