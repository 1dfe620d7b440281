package delta

import (
	"testing"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

func fixtureState() *state.GameState {
	derived := stats.DefaultDerived(stats.ArchetypeAdventurer)
	player := state.Actor{
		ID:        state.PlayerID,
		Position:  state.SomePosition(state.Position{X: 2, Y: 2}),
		Stats:     stats.DefaultBase(stats.ArchetypeAdventurer),
		Bonuses:   derived,
		Resources: state.ResourceSet{Health: derived[stats.DerivedMaxHealth]},
		ReadyAt:   state.SomeTick(0),
	}
	s := state.NewGameState(player)
	s.World.PlaceOccupant(state.Position{X: 2, Y: 2}, state.PlayerID)
	s.Turn.AddActive(state.PlayerID)

	skeleton := stats.DefaultDerived(stats.ArchetypeSkeleton)
	npc := state.Actor{
		ID:        2,
		Archetype: stats.ArchetypeSkeleton,
		Position:  state.SomePosition(state.Position{X: 5, Y: 5}),
		Stats:     stats.DefaultBase(stats.ArchetypeSkeleton),
		Bonuses:   skeleton,
		Resources: state.ResourceSet{Health: skeleton[stats.DerivedMaxHealth]},
	}
	s.Entities.NPCs = append(s.Entities.NPCs, npc)
	s.World.PlaceOccupant(state.Position{X: 5, Y: 5}, 2)
	s.Entities.NextID = 3
	return s
}

func TestComputeIdenticalStatesIsEmpty(t *testing.T) {
	before := fixtureState()
	after := before.Clone()
	d := Compute(action.NewWait(state.PlayerID), before, after)
	if !d.IsEmpty() {
		t.Fatalf("identical snapshots produced non-empty delta: %+v", d)
	}
}

func TestComputeMove(t *testing.T) {
	before := fixtureState()
	after := before.Clone()
	from := state.Position{X: 2, Y: 2}
	to := state.Position{X: 3, Y: 2}
	after.Entities.Player.Position = state.SomePosition(to)
	after.World.RemoveOccupant(from, state.PlayerID)
	after.World.PlaceOccupant(to, state.PlayerID)
	after.Turn.Nonce = 1

	d := Compute(action.NewMove(state.PlayerID, to), before, after)
	if d.Entities.Player == nil || !d.Entities.Player.Position.Changed {
		t.Fatalf("player position change not captured: %+v", d.Entities)
	}
	if got := d.Entities.Player.Position.Value; !got.Valid || got.Pos != to {
		t.Fatalf("player position = %+v, want %v", got, to)
	}
	if d.Entities.Player.Resources.Changed {
		t.Fatalf("resources flagged without a change")
	}
	if !d.Turn.Nonce.Changed || d.Turn.Nonce.Value != 1 {
		t.Fatalf("nonce change not captured: %+v", d.Turn.Nonce)
	}
	if len(d.World.Tiles) != 2 {
		t.Fatalf("tile changes = %d, want 2 (origin cleared, destination set)", len(d.World.Tiles))
	}
	// Tiles sort by Y then X: (3,2) follows (2,2).
	if d.World.Tiles[0].Pos != from || len(d.World.Tiles[0].Occupants) != 0 {
		t.Fatalf("origin tile change = %+v", d.World.Tiles[0])
	}
	if d.World.Tiles[1].Pos != to || len(d.World.Tiles[1].Occupants) != 1 {
		t.Fatalf("destination tile change = %+v", d.World.Tiles[1])
	}
}

func TestComputeActiveSetDiff(t *testing.T) {
	before := fixtureState()
	after := before.Clone()
	after.Turn.AddActive(2)
	after.Turn.RemoveActive(state.PlayerID)

	d := Compute(action.NewActivation(2), before, after)
	if len(d.Turn.Activated) != 1 || d.Turn.Activated[0] != 2 {
		t.Fatalf("activated = %v, want [2]", d.Turn.Activated)
	}
	if len(d.Turn.Deactivated) != 1 || d.Turn.Deactivated[0] != state.PlayerID {
		t.Fatalf("deactivated = %v, want [1]", d.Turn.Deactivated)
	}
}

func TestComputeNPCRemoval(t *testing.T) {
	before := fixtureState()
	extra := before.Entities.NPCs[0].Clone()
	extra.ID = 7
	before.Entities.NPCs = append(before.Entities.NPCs, extra)

	after := before.Clone()
	after.Entities.NPCs = after.Entities.NPCs[:1]

	d := Compute(action.NewRemoveFromWorld(7), before, after)
	if len(d.Entities.NPCs.Removed) != 1 || d.Entities.NPCs.Removed[0] != 7 {
		t.Fatalf("removed = %v, want [7]", d.Entities.NPCs.Removed)
	}
	if len(d.Entities.NPCs.Added) != 0 || len(d.Entities.NPCs.Updated) != 0 {
		t.Fatalf("unexpected add/update buckets: %+v", d.Entities.NPCs)
	}
}

func TestComputeOverlayChanges(t *testing.T) {
	before := fixtureState()
	after := before.Clone()
	doorPos := state.Position{X: 7, Y: 6}
	after.World.Overlays[doorPos] = state.OverlayDoorOpen

	d := Compute(action.NewInteract(state.PlayerID, 3), before, after)
	if len(d.World.Overlays) != 1 {
		t.Fatalf("overlay changes = %d, want 1", len(d.World.Overlays))
	}
	change := d.World.Overlays[0]
	if change.Pos != doorPos || change.Kind != state.OverlayDoorOpen || change.Cleared {
		t.Fatalf("overlay change = %+v", change)
	}

	// Clearing produces a Cleared marker.
	cleared := Compute(action.NewInteract(state.PlayerID, 3), after, before)
	if len(cleared.World.Overlays) != 1 || !cleared.World.Overlays[0].Cleared {
		t.Fatalf("overlay clear not captured: %+v", cleared.World.Overlays)
	}
}

func TestDiffActorTracksCooldownsStatusesEquipment(t *testing.T) {
	before := fixtureState()
	before.Entities.Player.Abilities = []state.AbilityState{
		{ID: "lunge", Enabled: true},
	}

	after := before.Clone()
	after.Entities.Player.Abilities[0].ReadyAt = 200
	after.Entities.Player.Statuses = append(after.Entities.Player.Statuses,
		state.StatusEffect{ID: "stunned", ExpiresAt: 120})
	after.Entities.Player.Equipment = append(after.Entities.Player.Equipment,
		state.EquippedItem{Slot: state.EquipSlotWeapon, Item: "rusty_sword"})

	d := Compute(action.NewWait(state.PlayerID), before, after)
	if d.IsEmpty() {
		t.Fatalf("cooldown, status, and equipment changes produced an empty delta")
	}
	patch := d.Entities.Player
	if patch == nil {
		t.Fatalf("player patch missing")
	}
	if !patch.Abilities.Changed || patch.Abilities.Value[0].ReadyAt != 200 {
		t.Fatalf("ability cooldown not captured: %+v", patch.Abilities)
	}
	if !patch.Statuses.Changed || len(patch.Statuses.Value) != 1 {
		t.Fatalf("status change not captured: %+v", patch.Statuses)
	}
	if !patch.Equipment.Changed || len(patch.Equipment.Value) != 1 {
		t.Fatalf("equipment change not captured: %+v", patch.Equipment)
	}
	if patch.Position.Changed || patch.Resources.Changed {
		t.Fatalf("untouched fields flagged: %+v", patch)
	}

	// Patch slices are copies of the after state, not aliases.
	after.Entities.Player.Abilities[0].ReadyAt = 999
	if patch.Abilities.Value[0].ReadyAt != 200 {
		t.Fatalf("ability patch aliases the after state")
	}
}

func TestDiffActorInventory(t *testing.T) {
	before := fixtureState()
	after := before.Clone()
	after.Entities.Player.Inventory.Add("potion", 1)

	patch := DiffActor(&before.Entities.Player, &after.Entities.Player)
	if patch == nil || !patch.Inventory.Changed {
		t.Fatalf("inventory change not captured: %+v", patch)
	}
	if patch.Position.Changed || patch.Stats.Changed {
		t.Fatalf("untouched fields flagged: %+v", patch)
	}
}
