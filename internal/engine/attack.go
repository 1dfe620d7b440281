package engine

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// attackTransition resolves one ability use against a target actor.
type attackTransition struct {
	actor  state.EntityID
	params action.AttackParams
}

func (t *attackTransition) PreValidate(s *state.GameState, env oracle.Env) error {
	attacker, err := requireCurrentActor(s, t.actor)
	if err != nil {
		return err
	}
	if !attacker.Position.Valid {
		return fmt.Errorf("%w: attacker %d", ErrOffMap, t.actor)
	}
	target, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: target %d", ErrActorNotFound, t.params.Target)
	}
	if !target.Alive() {
		return fmt.Errorf("%w: %d", ErrTargetDead, t.params.Target)
	}
	if !target.Position.Valid {
		return fmt.Errorf("%w: target %d", ErrOffMap, t.params.Target)
	}
	rule, ok := env.Rules.Rules().Ability(t.params.Ability)
	if !ok {
		return fmt.Errorf("%w: ability %q", ErrAbilityLocked, t.params.Ability)
	}
	ability, ok := attacker.Ability(t.params.Ability)
	if !ok || !ability.Enabled {
		return fmt.Errorf("%w: ability %q", ErrAbilityLocked, t.params.Ability)
	}
	if ability.ReadyAt > s.Turn.Clock {
		return fmt.Errorf("%w: ability %q cooling until %d", ErrAbilityLocked, t.params.Ability, ability.ReadyAt)
	}
	if attacker.Resources.Focus < rule.FocusCost {
		return fmt.Errorf("%w: focus %d < %d", ErrInsufficient, attacker.Resources.Focus, rule.FocusCost)
	}
	if state.Chebyshev(attacker.Position.Pos, target.Position.Pos) > rule.Range {
		return fmt.Errorf("%w: target %d beyond range %d", ErrOutOfRange, t.params.Target, rule.Range)
	}
	return nil
}

func (t *attackTransition) Apply(s *state.GameState, env oracle.Env) error {
	attacker, ok := s.Entities.ActorByID(t.actor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.actor)
	}
	target, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: target %d", ErrActorNotFound, t.params.Target)
	}
	rule, _ := env.Rules.Rules().Ability(t.params.Ability)

	attacker.Resources.Focus -= rule.FocusCost
	if ability, ok := attacker.Ability(t.params.Ability); ok && rule.Cooldown > 0 {
		ability.ReadyAt = s.Turn.Clock + rule.Cooldown
	}

	damage := attacker.Bonuses[stats.DerivedAttackPower] + rule.Bonus + weaponDamage(attacker, env)
	if damage < 1 {
		damage = 1
	}
	target.Resources.Health -= damage
	if target.Resources.Health < 0 {
		target.Resources.Health = 0
	}
	return nil
}

func (t *attackTransition) PostValidate(s *state.GameState, env oracle.Env) error {
	attacker, ok := s.Entities.ActorByID(t.actor)
	if !ok {
		return fmt.Errorf("%w: %d", ErrActorNotFound, t.actor)
	}
	if attacker.Resources.Focus < 0 {
		return fmt.Errorf("attacker %d focus negative after attack", t.actor)
	}
	target, ok := s.Entities.ActorByID(t.params.Target)
	if !ok {
		return fmt.Errorf("%w: target %d", ErrActorNotFound, t.params.Target)
	}
	if target.Resources.Health < 0 || target.Resources.Health > target.Bonuses[stats.DerivedMaxHealth] {
		return fmt.Errorf("target %d health %d outside [0,%d]",
			t.params.Target, target.Resources.Health, target.Bonuses[stats.DerivedMaxHealth])
	}
	return nil
}

// weaponDamage looks up the equipped weapon's damage contribution.
func weaponDamage(actor *state.Actor, env oracle.Env) int {
	for _, equipped := range actor.Equipment {
		if equipped.Slot != state.EquipSlotWeapon {
			continue
		}
		if def, ok := env.Items.Item(equipped.Item); ok {
			return def.Damage
		}
	}
	return 0
}
