package content

import (
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// Default returns the built-in content pack: a small walled room with a few
// undead, a chest, and a door. Used when no content directory is configured
// and as the fixture for tests.
func Default() *Pack {
	grid := &gridMap{
		width:  16,
		height: 16,
		walls: map[state.Position]struct{}{
			{X: 7, Y: 3}: {},
			{X: 7, Y: 4}: {},
			{X: 7, Y: 5}: {},
			{X: 8, Y: 8}: {},
		},
	}

	items, err := newItemTable([]itemDoc{
		{ID: "minor_healing_potion", Name: "Minor Healing Potion", Kind: "consumable", Heal: 8},
		{ID: "rusty_sword", Name: "Rusty Sword", Kind: "weapon", Slot: "weapon", Damage: 2},
		{ID: "bone_charm", Name: "Bone Charm", Kind: "armor", Slot: "armor", Bonus: statsDoc{Focus: 1}},
		{ID: "gold_coin", Name: "Gold Coin", Kind: "currency"},
	})
	if err != nil {
		panic(err)
	}

	rules := newRuleTable(rulesDoc{
		ActivationRadius: 2,
		WakeDelay:        10,
		MoveCost:         100,
		AttackCost:       120,
		UseItemCost:      80,
		InteractCost:     80,
		WaitCost:         50,
		HealthThresholds: []int{75, 50, 25, 10},
		Abilities: []abilityDoc{
			{ID: "strike", Range: 1, FocusCost: 1, Bonus: 0, Cooldown: 0},
			{ID: "lunge", Range: 2, FocusCost: 2, Bonus: 2, Cooldown: 200},
		},
	})

	npcs, err := newNPCTable([]npcDoc{
		{ID: "skeleton_guard", Archetype: "skeleton", Abilities: []string{"strike"},
			Inventory: []stackDoc{{Item: "gold_coin", Quantity: 3}}},
		{ID: "ghoul", Archetype: "ghoul", Abilities: []string{"strike", "lunge"}},
		{ID: "giant_rat", Archetype: "rat", Abilities: []string{"strike"}},
	})
	if err != nil {
		panic(err)
	}

	chestLoot := state.ItemStack{Item: "minor_healing_potion", Quantity: 2}
	return &Pack{
		Env: envFor(grid, items, rules, npcs),
		Scenario: Scenario{
			PlayerStart:     state.Position{X: 2, Y: 2},
			PlayerItems:     []state.ItemStack{{Item: "minor_healing_potion", Quantity: 1}},
			PlayerAbilities: []string{"strike", "lunge"},
			NPCs: []NPCSpawn{
				{Template: "skeleton_guard", Position: state.Position{X: 10, Y: 4}},
				{Template: "ghoul", Position: state.Position{X: 12, Y: 10}},
				{Template: "giant_rat", Position: state.Position{X: 4, Y: 12}},
			},
			Props: []PropSpawn{
				{Kind: state.PropDoor, Position: state.Position{X: 7, Y: 6}},
				{Kind: state.PropChest, Position: state.Position{X: 14, Y: 2}, Contents: &chestLoot},
				{Kind: state.PropLever, Position: state.Position{X: 1, Y: 14}},
			},
		},
	}
}
