package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// prepareTurnTransition selects the next actor to act: the minimum
// (ready_at, entity_id) pair over the active set, entity id breaking ties.
// The clock advances to the winner's ready tick.
type prepareTurnTransition struct{}

func (t *prepareTurnTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	if _, _, ok := nextScheduled(s); !ok {
		return ErrNothingToDo
	}
	return nil
}

func (t *prepareTurnTransition) Apply(s *state.GameState, env oracle.Env) error {
	id, readyAt, ok := nextScheduled(s)
	if !ok {
		return ErrNothingToDo
	}
	s.Turn.Clock = readyAt
	s.Turn.Current = id
	expireStatuses(s)
	return nil
}

func (t *prepareTurnTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(s.Turn.Current)
	if !ok {
		return fmt.Errorf("%w: current actor %d", ErrActorNotFound, s.Turn.Current)
	}
	if !actor.ReadyAt.Valid {
		return fmt.Errorf("current actor %d is not scheduled", s.Turn.Current)
	}
	if s.Turn.Clock < actor.ReadyAt.Tick {
		return fmt.Errorf("clock %d behind current actor ready_at %d", s.Turn.Clock, actor.ReadyAt.Tick)
	}
	return nil
}

// nextScheduled scans the active set for the minimum (ready_at, id) pair.
// The active set is sorted by id, so walking it in order and keeping strict
// less-than on ready_at yields the id tie-break for free.
func nextScheduled(s *state.GameState) (state.EntityID, state.Tick, bool) {
	var (
		bestID   state.EntityID
		bestTick state.Tick
		found    bool
	)
	for _, id := range s.Turn.ActiveActors {
		actor, ok := s.Entities.ActorByID(id)
		if !ok || !actor.ReadyAt.Valid {
			continue
		}
		if !found || actor.ReadyAt.Tick < bestTick {
			bestID = id
			bestTick = actor.ReadyAt.Tick
			found = true
		}
	}
	return bestID, bestTick, found
}

// expireStatuses drops status effects whose expiry tick has passed. Actors
// are visited in deterministic order: player first, then NPCs by slice
// position.
func expireStatuses(s *state.GameState) {
	expire := func(actor *state.Actor) {
		if len(actor.Statuses) == 0 {
			return
		}
		kept := actor.Statuses[:0]
		for _, status := range actor.Statuses {
			if status.ExpiresAt > s.Turn.Clock {
				kept = append(kept, status)
			}
		}
		if len(kept) == 0 {
			actor.Statuses = nil
		} else {
			actor.Statuses = kept
		}
	}
	expire(&s.Entities.Player)
	for i := range s.Entities.NPCs {
		expire(&s.Entities.NPCs[i])
	}
}

// actionCostTransition pushes an actor's next eligibility into the future by
// a precomputed, speed-scaled cost.
type actionCostTransition struct {
	params action.ActionCostParams
}

func (t *actionCostTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	// Charging an unscheduled actor is a contract violation by the caller,
	// not a recoverable input.
	if !actor.ReadyAt.Valid {
		return fmt.Errorf("%w: %d", ErrNotScheduled, t.params.Target)
	}
	return nil
}

func (t *actionCostTransition) Apply(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	actor.ReadyAt = state.SomeTick(actor.ReadyAt.Tick + t.params.Cost)
	return nil
}

func (t *actionCostTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	if !actor.ReadyAt.Valid {
		return fmt.Errorf("actor %d lost ready_at during cost application", t.params.Target)
	}
	return nil
}
