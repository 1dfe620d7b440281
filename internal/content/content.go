// Package content loads the static game data behind the oracle interfaces:
// map geometry, item and ability tables, rule constants, NPC templates, and
// the starting scenario. Data comes from YAML files; a built-in pack covers
// running without a content directory.
package content

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// Pack bundles the loaded oracles with the starting scenario.
type Pack struct {
	Env      oracle.Env
	Scenario Scenario
}

// Scenario describes the initial world layout.
type Scenario struct {
	PlayerStart     state.Position
	PlayerItems     []state.ItemStack
	PlayerAbilities []string
	NPCs            []NPCSpawn
	Props           []PropSpawn
}

// NPCSpawn places one templated NPC.
type NPCSpawn struct {
	Template string
	Position state.Position
}

// PropSpawn places one prop.
type PropSpawn struct {
	Kind     state.PropKind
	Position state.Position
	Contents *state.ItemStack
}

type positionDoc struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (d positionDoc) position() state.Position {
	return state.Position{X: d.X, Y: d.Y}
}

type statsDoc struct {
	Might     int `yaml:"might"`
	Resonance int `yaml:"resonance"`
	Focus     int `yaml:"focus"`
	Speed     int `yaml:"speed"`
}

func (d statsDoc) valueSet() stats.ValueSet {
	var set stats.ValueSet
	set[stats.StatMight] = d.Might
	set[stats.StatResonance] = d.Resonance
	set[stats.StatFocus] = d.Focus
	set[stats.StatSpeed] = d.Speed
	return set
}

type stackDoc struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

func (d stackDoc) stack() state.ItemStack {
	return state.ItemStack{Item: state.ItemID(d.Item), Quantity: d.Quantity}
}

type mapDoc struct {
	Width  int           `yaml:"width"`
	Height int           `yaml:"height"`
	Walls  []positionDoc `yaml:"walls"`
}

type itemDoc struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Slot   string   `yaml:"slot"`
	Heal   int      `yaml:"heal"`
	Damage int      `yaml:"damage"`
	Bonus  statsDoc `yaml:"bonus"`
}

type abilityDoc struct {
	ID        string `yaml:"id"`
	Range     int    `yaml:"range"`
	FocusCost int    `yaml:"focus_cost"`
	Bonus     int    `yaml:"bonus"`
	Cooldown  uint64 `yaml:"cooldown"`
}

type rulesDoc struct {
	ActivationRadius int          `yaml:"activation_radius"`
	WakeDelay        uint64       `yaml:"wake_delay"`
	MoveCost         uint64       `yaml:"move_cost"`
	AttackCost       uint64       `yaml:"attack_cost"`
	UseItemCost      uint64       `yaml:"use_item_cost"`
	InteractCost     uint64       `yaml:"interact_cost"`
	WaitCost         uint64       `yaml:"wait_cost"`
	HealthThresholds []int        `yaml:"health_thresholds"`
	Abilities        []abilityDoc `yaml:"abilities"`
}

type npcDoc struct {
	ID        string     `yaml:"id"`
	Archetype string     `yaml:"archetype"`
	Abilities []string   `yaml:"abilities"`
	Inventory []stackDoc `yaml:"inventory"`
}

type scenarioDoc struct {
	Player struct {
		Start     positionDoc `yaml:"start"`
		Items     []stackDoc  `yaml:"items"`
		Abilities []string    `yaml:"abilities"`
	} `yaml:"player"`
	NPCs []struct {
		Template string `yaml:"template"`
		X        int    `yaml:"x"`
		Y        int    `yaml:"y"`
	} `yaml:"npcs"`
	Props []struct {
		Kind     string    `yaml:"kind"`
		X        int       `yaml:"x"`
		Y        int       `yaml:"y"`
		Contents *stackDoc `yaml:"contents"`
	} `yaml:"props"`
}

// Load reads a content pack from dir. The directory must hold map.yaml,
// items.yaml, rules.yaml, npcs.yaml, and scenario.yaml.
func Load(dir string) (*Pack, error) {
	var mapData mapDoc
	if err := readYAML(filepath.Join(dir, "map.yaml"), &mapData); err != nil {
		return nil, err
	}
	grid, err := newGridMap(mapData)
	if err != nil {
		return nil, err
	}

	var itemDocs []itemDoc
	if err := readYAML(filepath.Join(dir, "items.yaml"), &itemDocs); err != nil {
		return nil, err
	}
	items, err := newItemTable(itemDocs)
	if err != nil {
		return nil, err
	}

	var rulesData rulesDoc
	if err := readYAML(filepath.Join(dir, "rules.yaml"), &rulesData); err != nil {
		return nil, err
	}
	rules := newRuleTable(rulesData)

	var npcDocs []npcDoc
	if err := readYAML(filepath.Join(dir, "npcs.yaml"), &npcDocs); err != nil {
		return nil, err
	}
	npcs, err := newNPCTable(npcDocs)
	if err != nil {
		return nil, err
	}

	var scenarioData scenarioDoc
	if err := readYAML(filepath.Join(dir, "scenario.yaml"), &scenarioData); err != nil {
		return nil, err
	}
	scenario, err := buildScenario(scenarioData, npcs)
	if err != nil {
		return nil, err
	}

	return &Pack{
		Env: oracle.Env{
			Map:   grid,
			Items: items,
			Rules: rules,
			NPCs:  npcs,
		},
		Scenario: scenario,
	}, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("content: parse %s: %w", path, err)
	}
	return nil
}

func buildScenario(doc scenarioDoc, npcs *npcTable) (Scenario, error) {
	scenario := Scenario{
		PlayerStart:     doc.Player.Start.position(),
		PlayerAbilities: doc.Player.Abilities,
	}
	for _, stack := range doc.Player.Items {
		scenario.PlayerItems = append(scenario.PlayerItems, stack.stack())
	}
	for _, spawn := range doc.NPCs {
		if _, ok := npcs.Template(spawn.Template); !ok {
			return Scenario{}, fmt.Errorf("content: scenario spawns unknown template %q", spawn.Template)
		}
		scenario.NPCs = append(scenario.NPCs, NPCSpawn{
			Template: spawn.Template,
			Position: state.Position{X: spawn.X, Y: spawn.Y},
		})
	}
	for _, prop := range doc.Props {
		kind := state.PropKind(prop.Kind)
		switch kind {
		case state.PropDoor, state.PropChest, state.PropLever:
		default:
			return Scenario{}, fmt.Errorf("content: scenario places unknown prop kind %q", prop.Kind)
		}
		spawn := PropSpawn{Kind: kind, Position: state.Position{X: prop.X, Y: prop.Y}}
		if prop.Contents != nil {
			stack := prop.Contents.stack()
			spawn.Contents = &stack
		}
		scenario.Props = append(scenario.Props, spawn)
	}
	return scenario, nil
}

func parseArchetype(name string) (stats.Archetype, error) {
	switch name {
	case "adventurer":
		return stats.ArchetypeAdventurer, nil
	case "skeleton":
		return stats.ArchetypeSkeleton, nil
	case "ghoul":
		return stats.ArchetypeGhoul, nil
	case "rat":
		return stats.ArchetypeRat, nil
	default:
		return 0, fmt.Errorf("content: unknown archetype %q", name)
	}
}
