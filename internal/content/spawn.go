package content

import (
	"fmt"

	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// NewState builds the initial game state for the pack's scenario: the player
// placed and scheduled at tick zero, NPCs spawned dormant, props installed.
// Dormant NPCs join the turn order later through activation.
func NewState(pack *Pack) (*state.GameState, error) {
	player := newActor(state.PlayerID, stats.ArchetypeAdventurer,
		pack.Scenario.PlayerAbilities, pack.Scenario.PlayerItems, pack.Scenario.PlayerStart)
	st := state.NewGameState(player)
	st.World.PlaceOccupant(pack.Scenario.PlayerStart, state.PlayerID)

	st.Entities.Player.ReadyAt = state.SomeTick(0)
	st.Turn.AddActive(state.PlayerID)
	st.Turn.Current = state.PlayerID

	for _, spawn := range pack.Scenario.NPCs {
		template, ok := pack.Env.NPCs.Template(spawn.Template)
		if !ok {
			return nil, fmt.Errorf("content: scenario spawns unknown template %q", spawn.Template)
		}
		if len(st.Entities.NPCs) >= state.MaxNPCs {
			return nil, fmt.Errorf("content: scenario exceeds %d NPCs", state.MaxNPCs)
		}
		if !pack.Env.Map.Passable(spawn.Position) {
			return nil, fmt.Errorf("content: npc %q spawn (%d,%d) not passable",
				spawn.Template, spawn.Position.X, spawn.Position.Y)
		}
		id := st.Entities.AllocateID()
		npc := newActor(id, template.Archetype, template.Abilities, template.Inventory, spawn.Position)
		st.Entities.NPCs = append(st.Entities.NPCs, npc)
		st.World.PlaceOccupant(spawn.Position, id)
	}

	for _, spawn := range pack.Scenario.Props {
		if len(st.Entities.Props) >= state.MaxProps {
			return nil, fmt.Errorf("content: scenario exceeds %d props", state.MaxProps)
		}
		if !pack.Env.Map.InBounds(spawn.Position) {
			return nil, fmt.Errorf("content: prop %s spawn (%d,%d) out of bounds",
				spawn.Kind, spawn.Position.X, spawn.Position.Y)
		}
		id := st.Entities.AllocateID()
		prop := state.Prop{ID: id, Kind: spawn.Kind, Position: state.SomePosition(spawn.Position)}
		if spawn.Contents != nil {
			contents := *spawn.Contents
			prop.Contents = &contents
		}
		st.Entities.Props = append(st.Entities.Props, prop)
		st.World.PlaceOccupant(spawn.Position, id)
	}

	if err := st.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("content: scenario produced inconsistent state: %w", err)
	}
	return st, nil
}

func newActor(id state.EntityID, archetype stats.Archetype, abilities []string, inventory []state.ItemStack, pos state.Position) state.Actor {
	derived := stats.DefaultDerived(archetype)
	actor := state.Actor{
		ID:        id,
		Archetype: archetype,
		Position:  state.SomePosition(pos),
		Stats:     stats.DefaultBase(archetype),
		Bonuses:   derived,
		Resources: state.ResourceSet{
			Health: derived[stats.DerivedMaxHealth],
			Mana:   derived[stats.DerivedMaxMana],
			Focus:  derived[stats.DerivedMaxFocus],
		},
	}
	for _, ability := range abilities {
		actor.Abilities = append(actor.Abilities, state.AbilityState{ID: ability, Enabled: true})
	}
	for _, stack := range inventory {
		actor.Inventory.Add(stack.Item, stack.Quantity)
	}
	return actor
}
