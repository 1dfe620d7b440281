package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// moveTransition steps the acting character to an adjacent tile.
type moveTransition struct {
	actor  state.EntityID
	params action.MoveParams
}

func (t *moveTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	actor, err := requireCurrentActor(s, t.actor)
	if err != nil {
		return err
	}
	if !actor.Position.Valid {
		return fmt.Errorf("%w: actor %d", ErrOffMap, t.actor)
	}
	to := t.params.To
	if !env.Map.InBounds(to) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, to.X, to.Y)
	}
	if !env.Map.Passable(to) {
		return fmt.Errorf("%w: (%d,%d)", ErrImpassable, to.X, to.Y)
	}
	if state.Chebyshev(actor.Position.Pos, to) != 1 {
		return fmt.Errorf("%w: move from (%d,%d) to (%d,%d)", ErrOutOfRange,
			actor.Position.Pos.X, actor.Position.Pos.Y, to.X, to.Y)
	}
	for _, occupant := range s.World.OccupantsAt(to) {
		if blocksMovement(s, occupant) {
			return fmt.Errorf("%w: (%d,%d) by entity %d", ErrOccupied, to.X, to.Y, occupant)
		}
	}
	return nil
}

func (t *moveTransition) Apply(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.actor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.actor)
	}
	origin := actor.Position.Pos
	to := t.params.To

	if !s.World.RemoveOccupant(origin, t.actor) {
		return fmt.Errorf("occupancy desync: actor %d absent from origin (%d,%d)", t.actor, origin.X, origin.Y)
	}
	if s.World.Occupies(to, t.actor) {
		// Destination write would double-place the actor; restore origin.
		s.World.PlaceOccupant(origin, t.actor)
		return fmt.Errorf("occupancy desync: actor %d already at (%d,%d)", t.actor, to.X, to.Y)
	}
	s.World.PlaceOccupant(to, t.actor)
	actor.Position = state.SomePosition(to)
	return nil
}

func (t *moveTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.actor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.actor)
	}
	if !actor.Position.Valid || actor.Position.Pos != t.params.To {
		return fmt.Errorf("actor %d did not land on (%d,%d)", t.actor, t.params.To.X, t.params.To.Y)
	}
	if !s.World.Occupies(t.params.To, t.actor) {
		return fmt.Errorf("actor %d missing from destination occupancy", t.actor)
	}
	return nil
}

// blocksMovement reports whether the occupant prevents another entity from
// entering its tile. Living actors and unopened doors block; ground items and
// activated props do not.
func blocksMovement(s *state.GameState, id state.EntityID) bool {
	if actor, ok := s.Entities.ActorByID(id); ok {
		return actor.Alive()
	}
	if prop, ok := s.Entities.PropByID(id); ok {
		if prop.Kind == state.PropDoor {
			return !prop.Activated
		}
		return prop.Kind == state.PropChest
	}
	return false
}
