// Package oracle declares the read-only environment interfaces the engine
// queries during a transition. Content loading lives behind these interfaces;
// the engine never mutates oracle data.
package oracle

import (
	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// MapOracle answers map geometry and passability queries.
type MapOracle interface {
	InBounds(pos state.Position) bool
	Passable(pos state.Position) bool
}

// ItemKind classifies item definitions.
type ItemKind string

const (
	ItemConsumable ItemKind = "consumable"
	ItemWeapon     ItemKind = "weapon"
	ItemArmor      ItemKind = "armor"
	ItemCurrency   ItemKind = "currency"
)

// ItemDefinition describes one item type.
type ItemDefinition struct {
	ID     state.ItemID
	Name   string
	Kind   ItemKind
	Slot   state.EquipSlot
	Heal   int
	Damage int
	Bonus  stats.ValueSet
}

// ItemOracle resolves item definitions.
type ItemOracle interface {
	Item(id state.ItemID) (ItemDefinition, bool)
}

// AbilityRule describes the combat table entry for one ability.
type AbilityRule struct {
	ID        string
	Range     int
	FocusCost int
	Bonus     int
	Cooldown  state.Tick
}

// Ruleset bundles the movement, combat, and scheduling rule tables.
type Ruleset struct {
	ActivationRadius int
	WakeDelay        state.Tick
	MoveCost         state.Tick
	AttackCost       state.Tick
	UseItemCost      state.Tick
	InteractCost     state.Tick
	WaitCost         state.Tick
	// HealthThresholds are descending percentages whose crossing is
	// surfaced as an event.
	HealthThresholds []int
	Abilities        map[string]AbilityRule
}

// BaseCost returns the unscaled tick cost for a character action kind.
func (r Ruleset) BaseCost(kind action.Kind) state.Tick {
	switch kind {
	case action.KindMove:
		return r.MoveCost
	case action.KindAttack:
		return r.AttackCost
	case action.KindUseItem:
		return r.UseItemCost
	case action.KindInteract:
		return r.InteractCost
	case action.KindWait:
		return r.WaitCost
	default:
		return 0
	}
}

// Ability resolves an ability rule entry.
func (r Ruleset) Ability(id string) (AbilityRule, bool) {
	rule, ok := r.Abilities[id]
	return rule, ok
}

// RuleOracle exposes the rule tables.
type RuleOracle interface {
	Rules() Ruleset
}

// NPCTemplate seeds a spawned NPC.
type NPCTemplate struct {
	ID        string
	Archetype stats.Archetype
	Abilities []string
	Inventory []state.ItemStack
}

// NPCOracle resolves NPC templates.
type NPCOracle interface {
	Template(id string) (NPCTemplate, bool)
}

// Env bundles every oracle the engine consumes.
type Env struct {
	Map   MapOracle
	Items ItemOracle
	Rules RuleOracle
	NPCs  NPCOracle
}
