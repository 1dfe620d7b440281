package content

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// gridMap is a rectangular map with explicit wall tiles.
type gridMap struct {
	width  int
	height int
	walls  map[state.Position]struct{}
}

func newGridMap(doc mapDoc) (*gridMap, error) {
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("content: map dimensions %dx%d invalid", doc.Width, doc.Height)
	}
	walls := make(map[state.Position]struct{}, len(doc.Walls))
	for _, wall := range doc.Walls {
		pos := wall.position()
		if pos.X < 0 || pos.X >= doc.Width || pos.Y < 0 || pos.Y >= doc.Height {
			return nil, fmt.Errorf("content: wall (%d,%d) outside %dx%d map", pos.X, pos.Y, doc.Width, doc.Height)
		}
		walls[pos] = struct{}{}
	}
	return &gridMap{width: doc.Width, height: doc.Height, walls: walls}, nil
}

// InBounds implements oracle.MapOracle.
func (g *gridMap) InBounds(pos state.Position) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

// Passable implements oracle.MapOracle.
func (g *gridMap) Passable(pos state.Position) bool {
	if !g.InBounds(pos) {
		return false
	}
	_, wall := g.walls[pos]
	return !wall
}

// itemTable resolves item definitions by id.
type itemTable struct {
	items map[state.ItemID]oracle.ItemDefinition
}

func newItemTable(docs []itemDoc) (*itemTable, error) {
	items := make(map[state.ItemID]oracle.ItemDefinition, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("content: item with empty id")
		}
		id := state.ItemID(doc.ID)
		if _, dup := items[id]; dup {
			return nil, fmt.Errorf("content: duplicate item %q", doc.ID)
		}
		kind := oracle.ItemKind(doc.Kind)
		switch kind {
		case oracle.ItemConsumable, oracle.ItemWeapon, oracle.ItemArmor, oracle.ItemCurrency:
		default:
			return nil, fmt.Errorf("content: item %q has unknown kind %q", doc.ID, doc.Kind)
		}
		items[id] = oracle.ItemDefinition{
			ID:     id,
			Name:   doc.Name,
			Kind:   kind,
			Slot:   state.EquipSlot(doc.Slot),
			Heal:   doc.Heal,
			Damage: doc.Damage,
			Bonus:  doc.Bonus.valueSet(),
		}
	}
	return &itemTable{items: items}, nil
}

// Item implements oracle.ItemOracle.
func (t *itemTable) Item(id state.ItemID) (oracle.ItemDefinition, bool) {
	def, ok := t.items[id]
	return def, ok
}

// ruleTable holds the resolved rule constants.
type ruleTable struct {
	rules oracle.Ruleset
}

func newRuleTable(doc rulesDoc) *ruleTable {
	abilities := make(map[string]oracle.AbilityRule, len(doc.Abilities))
	for _, ability := range doc.Abilities {
		abilities[ability.ID] = oracle.AbilityRule{
			ID:        ability.ID,
			Range:     ability.Range,
			FocusCost: ability.FocusCost,
			Bonus:     ability.Bonus,
			Cooldown:  state.Tick(ability.Cooldown),
		}
	}
	return &ruleTable{rules: oracle.Ruleset{
		ActivationRadius: doc.ActivationRadius,
		WakeDelay:        state.Tick(doc.WakeDelay),
		MoveCost:         state.Tick(doc.MoveCost),
		AttackCost:       state.Tick(doc.AttackCost),
		UseItemCost:      state.Tick(doc.UseItemCost),
		InteractCost:     state.Tick(doc.InteractCost),
		WaitCost:         state.Tick(doc.WaitCost),
		HealthThresholds: doc.HealthThresholds,
		Abilities:        abilities,
	}}
}

// Rules implements oracle.RuleOracle.
func (t *ruleTable) Rules() oracle.Ruleset {
	return t.rules
}

// npcTable resolves NPC templates by id.
type npcTable struct {
	templates map[string]oracle.NPCTemplate
}

func newNPCTable(docs []npcDoc) (*npcTable, error) {
	templates := make(map[string]oracle.NPCTemplate, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("content: npc template with empty id")
		}
		if _, dup := templates[doc.ID]; dup {
			return nil, fmt.Errorf("content: duplicate npc template %q", doc.ID)
		}
		archetype, err := parseArchetype(doc.Archetype)
		if err != nil {
			return nil, fmt.Errorf("content: npc template %q: %w", doc.ID, err)
		}
		template := oracle.NPCTemplate{
			ID:        doc.ID,
			Archetype: archetype,
			Abilities: doc.Abilities,
		}
		for _, stack := range doc.Inventory {
			template.Inventory = append(template.Inventory, stack.stack())
		}
		templates[doc.ID] = template
	}
	return &npcTable{templates: templates}, nil
}

// Template implements oracle.NPCOracle.
func (t *npcTable) Template(id string) (oracle.NPCTemplate, bool) {
	template, ok := t.templates[id]
	return template, ok
}

func envFor(grid *gridMap, items *itemTable, rules *ruleTable, npcs *npcTable) oracle.Env {
	return oracle.Env{Map: grid, Items: items, Rules: rules, NPCs: npcs}
}
