package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// interactTransition toggles an adjacent prop: doors open/close, levers flip,
// chests spill their contents onto the tile as a ground item.
type interactTransition struct {
	actor  state.EntityID
	params action.InteractParams
}

func (t *interactTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	actor, err := requireCurrentActor(s, t.actor)
	if err != nil {
		return err
	}
	if !actor.Position.Valid {
		return fmt.Errorf("%w: actor %d", ErrOffMap, t.actor)
	}
	prop, ok := s.Entities.PropByID(t.params.Prop)
	if !ok {
		return fmt.Errorf("%w: prop %d", ErrEntityNotFound, t.params.Prop)
	}
	if !prop.Position.Valid {
		return fmt.Errorf("%w: prop %d", ErrOffMap, t.params.Prop)
	}
	if state.Chebyshev(actor.Position.Pos, prop.Position.Pos) > 1 {
		return fmt.Errorf("%w: prop %d", ErrOutOfRange, t.params.Prop)
	}
	if prop.Kind == state.PropChest && prop.Activated {
		return fmt.Errorf("%w: chest %d already looted", ErrTargetDead, t.params.Prop)
	}
	if prop.Kind == state.PropChest && len(s.Entities.GroundItems) >= state.MaxGroundItems {
		return fmt.Errorf("%w: ground item capacity reached", ErrInsufficient)
	}
	return nil
}

func (t *interactTransition) Apply(s *state.GameState, env oracle.Env) error {
	prop, ok := s.Entities.PropByID(t.params.Prop)
	if !ok {
		return fmt.Errorf("%w: prop %d", ErrEntityNotFound, t.params.Prop)
	}
	switch prop.Kind {
	case state.PropDoor:
		prop.Activated = !prop.Activated
		if prop.Activated {
			s.World.Overlays[prop.Position.Pos] = state.OverlayDoorOpen
		} else {
			delete(s.World.Overlays, prop.Position.Pos)
		}
	case state.PropLever:
		prop.Activated = !prop.Activated
	case state.PropChest:
		prop.Activated = true
		if prop.Contents != nil {
			id := s.Entities.AllocateID()
			item := state.GroundItem{
				ID:       id,
				Position: prop.Position,
				Item:     prop.Contents.Item,
				Quantity: prop.Contents.Quantity,
			}
			s.Entities.GroundItems = append(s.Entities.GroundItems, item)
			s.World.PlaceOccupant(prop.Position.Pos, id)
		}
	default:
		return fmt.Errorf("prop %d has unknown kind %q", t.params.Prop, prop.Kind)
	}
	return nil
}

func (t *interactTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	prop, ok := s.Entities.PropByID(t.params.Prop)
	if !ok {
		return fmt.Errorf("%w: prop %d", ErrEntityNotFound, t.params.Prop)
	}
	if prop.Kind == state.PropChest && !prop.Activated {
		return fmt.Errorf("chest %d not marked looted after interact", t.params.Prop)
	}
	if len(s.Entities.GroundItems) > state.MaxGroundItems {
		return fmt.Errorf("ground item collection exceeds cap %d", state.MaxGroundItems)
	}
	return nil
}

// waitTransition is the built-in no-op: it validates turn ownership and
// changes nothing.
type waitTransition struct {
	actor state.EntityID
}

func (t *waitTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	_, err := requireCurrentActor(s, t.actor)
	return err
}

func (t *waitTransition) Apply(s *state.GameState, env oracle.Env) error {
	return nil
}

func (t *waitTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	return nil
}
