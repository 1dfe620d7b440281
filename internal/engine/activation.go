package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// activationTransition wakes an actor inside the activation radius: it joins
// the active set and receives a speed-scaled initial ready tick.
type activationTransition struct {
	params action.ActivationParams
}

func (t *activationTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	if s.Turn.IsActive(t.params.Target) {
		return fmt.Errorf("%w: %d", ErrAlreadyActive, t.params.Target)
	}
	if !actor.Position.Valid {
		return fmt.Errorf("%w: actor %d", ErrOffMap, t.params.Target)
	}
	player := &s.Entities.Player
	if !player.Position.Valid {
		return fmt.Errorf("%w: player", ErrOffMap)
	}
	radius := env.Rules.Rules().ActivationRadius
	if state.Chebyshev(player.Position.Pos, actor.Position.Pos) > radius {
		return fmt.Errorf("%w: actor %d outside activation radius %d", ErrOutOfRange, t.params.Target, radius)
	}
	return nil
}

func (t *activationTransition) Apply(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	delay := stats.ScaleCost(uint64(env.Rules.Rules().WakeDelay), actor.SpeedScalar())
	actor.ReadyAt = state.SomeTick(s.Turn.Clock + state.Tick(delay))
	s.Turn.AddActive(t.params.Target)
	return nil
}

func (t *activationTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	if !s.Turn.IsActive(t.params.Target) || !actor.ReadyAt.Valid {
		return fmt.Errorf("actor %d not fully activated", t.params.Target)
	}
	return nil
}

// deactivateTransition retires an actor from scheduling: ready_at cleared,
// id removed from the active set. Deactivating an already-inactive actor is
// an idempotent no-op, since death cleanup can race a radius exit inside one
// cascade.
type deactivateTransition struct {
	params action.DeactivateParams
}

func (t *deactivateTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	if _, ok := s.Entities.ActorByID(t.params.Target); !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	return nil
}

func (t *deactivateTransition) Apply(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	actor.ReadyAt = state.OptionalTick{}
	s.Turn.RemoveActive(t.params.Target)
	return nil
}

func (t *deactivateTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.params.Target)
	}
	if actor.ReadyAt.Valid || s.Turn.IsActive(t.params.Target) {
		return fmt.Errorf("actor %d still scheduled after deactivation", t.params.Target)
	}
	return nil
}

// removeTransition clears an entity's position and tile occupancy without
// touching turn scheduling. Death cleanup composes this with Deactivate; the
// two stay decoupled so either can run alone.
type removeTransition struct {
	params action.RemoveParams
}

func (t *removeTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	if !s.Entities.Exists(t.params.Target) {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, t.params.Target)
	}
	return nil
}

func (t *removeTransition) Apply(s *state.GameState, env oracle.Env) error {
	id := t.params.Target
	if actor, ok := s.Entities.ActorByID(id); ok {
		if actor.Position.Valid {
			s.World.RemoveOccupant(actor.Position.Pos, id)
			actor.Position = state.OptionalPosition{}
		}
		return nil
	}
	if prop, ok := s.Entities.PropByID(id); ok {
		if prop.Position.Valid {
			s.World.RemoveOccupant(prop.Position.Pos, id)
			prop.Position = state.OptionalPosition{}
		}
		return nil
	}
	if item, ok := s.Entities.GroundItemByID(id); ok {
		if item.Position.Valid {
			s.World.RemoveOccupant(item.Position.Pos, id)
		}
		for i := range s.Entities.GroundItems {
			if s.Entities.GroundItems[i].ID == id {
				s.Entities.GroundItems = append(s.Entities.GroundItems[:i], s.Entities.GroundItems[i+1:]...)
				break
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
}

func (t *removeTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	if pos, ok := s.EntityPosition(t.params.Target); ok && pos.Valid {
		return fmt.Errorf("entity %d still holds a position after removal", t.params.Target)
	}
	for pos, occupants := range s.World.Occupancy {
		for _, occupant := range occupants {
			if occupant == t.params.Target {
				return fmt.Errorf("entity %d still occupies (%d,%d)", t.params.Target, pos.X, pos.Y)
			}
		}
	}
	return nil
}
