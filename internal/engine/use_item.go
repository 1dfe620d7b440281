package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// useItemTransition consumes one inventory item and applies its effect to
// the acting character.
type useItemTransition struct {
	actor  state.EntityID
	params action.UseItemParams
}

func (t *useItemTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	actor, err := requireCurrentActor(s, t.actor)
	if err != nil {
		return err
	}
	if actor.Inventory.Quantity(t.params.Item) < 1 {
		return fmt.Errorf("%w: item %q", ErrInsufficient, t.params.Item)
	}
	def, ok := env.Items.Item(t.params.Item)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, t.params.Item)
	}
	if def.Kind != oracle.ItemConsumable {
		return fmt.Errorf("%w: %q is %s", ErrNotConsumable, t.params.Item, def.Kind)
	}
	return nil
}

func (t *useItemTransition) Apply(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.actor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.actor)
	}
	def, ok := env.Items.Item(t.params.Item)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, t.params.Item)
	}
	if !actor.Inventory.Remove(t.params.Item, 1) {
		return fmt.Errorf("%w: item %q vanished mid-apply", ErrInsufficient, t.params.Item)
	}
	if def.Heal > 0 {
		actor.Resources.Health += def.Heal
		if max := actor.Bonuses[stats.DerivedMaxHealth]; actor.Resources.Health > max {
			actor.Resources.Health = max
		}
	}
	return nil
}

func (t *useItemTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	actor, ok := s.Entities.ActorByID(t.actor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.actor)
	}
	if actor.Resources.Health > actor.Bonuses[stats.DerivedMaxHealth] {
		return fmt.Errorf("actor %d health %d exceeds max %d",
			t.actor, actor.Resources.Health, actor.Bonuses[stats.DerivedMaxHealth])
	}
	return nil
}
