package state

import (
	"testing"

	"github.com/0xwonj/dungeon-sub001/stats"
)

func testActor(id EntityID, pos Position) Actor {
	derived := stats.DefaultDerived(stats.ArchetypeAdventurer)
	return Actor{
		ID:        id,
		Archetype: stats.ArchetypeAdventurer,
		Position:  SomePosition(pos),
		Stats:     stats.DefaultBase(stats.ArchetypeAdventurer),
		Bonuses:   derived,
		Resources: ResourceSet{Health: derived[stats.DerivedMaxHealth]},
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewGameState(testActor(PlayerID, Position{X: 1, Y: 1}))
	s.World.PlaceOccupant(Position{X: 1, Y: 1}, PlayerID)
	s.Entities.Player.ReadyAt = SomeTick(5)
	s.Turn.AddActive(PlayerID)
	s.Entities.Player.Inventory.Add("gold_coin", 3)

	clone := s.Clone()
	clone.Entities.Player.Resources.Health = 1
	clone.Entities.Player.Inventory.Add("gold_coin", 7)
	clone.Turn.AddActive(9)
	clone.World.PlaceOccupant(Position{X: 4, Y: 4}, 9)

	if s.Entities.Player.Resources.Health == 1 {
		t.Fatalf("clone shares player resources")
	}
	if s.Entities.Player.Inventory.Quantity("gold_coin") != 3 {
		t.Fatalf("clone shares inventory slots")
	}
	if s.Turn.IsActive(9) {
		t.Fatalf("clone shares active set")
	}
	if len(s.World.OccupantsAt(Position{X: 4, Y: 4})) != 0 {
		t.Fatalf("clone shares occupancy map")
	}
}

func TestOccupantListsStaySorted(t *testing.T) {
	w := NewWorldState()
	pos := Position{X: 3, Y: 3}
	for _, id := range []EntityID{9, 2, 5, 2} {
		w.PlaceOccupant(pos, id)
	}
	occupants := w.OccupantsAt(pos)
	want := []EntityID{2, 5, 9}
	if len(occupants) != len(want) {
		t.Fatalf("occupants = %v, want %v", occupants, want)
	}
	for i := range want {
		if occupants[i] != want[i] {
			t.Fatalf("occupants = %v, want %v", occupants, want)
		}
	}

	if !w.RemoveOccupant(pos, 5) {
		t.Fatalf("remove reported absent for present occupant")
	}
	if w.RemoveOccupant(pos, 5) {
		t.Fatalf("remove reported present for absent occupant")
	}
	w.RemoveOccupant(pos, 2)
	w.RemoveOccupant(pos, 9)
	if _, exists := w.Occupancy[pos]; exists {
		t.Fatalf("emptied tile still has a map entry")
	}
}

func TestActiveSetStaysSorted(t *testing.T) {
	turn := TurnState{}
	for _, id := range []EntityID{7, 1, 4, 4} {
		turn.AddActive(id)
	}
	want := []EntityID{1, 4, 7}
	if len(turn.ActiveActors) != len(want) {
		t.Fatalf("active = %v, want %v", turn.ActiveActors, want)
	}
	for i := range want {
		if turn.ActiveActors[i] != want[i] {
			t.Fatalf("active = %v, want %v", turn.ActiveActors, want)
		}
	}
}

func TestCheckInvariants(t *testing.T) {
	s := NewGameState(testActor(PlayerID, Position{X: 1, Y: 1}))
	s.World.PlaceOccupant(Position{X: 1, Y: 1}, PlayerID)
	s.Entities.Player.ReadyAt = SomeTick(0)
	s.Turn.AddActive(PlayerID)
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("consistent state rejected: %v", err)
	}

	broken := s.Clone()
	broken.Turn.AddActive(42)
	if err := broken.CheckInvariants(); err == nil {
		t.Fatalf("dangling active id accepted")
	}

	broken = s.Clone()
	broken.Turn.RemoveActive(PlayerID)
	if err := broken.CheckInvariants(); err == nil {
		t.Fatalf("inactive actor with ready_at accepted")
	}

	broken = s.Clone()
	broken.World.PlaceOccupant(Position{X: 2, Y: 2}, 42)
	if err := broken.CheckInvariants(); err == nil {
		t.Fatalf("occupancy referencing missing entity accepted")
	}
}

func TestChebyshev(t *testing.T) {
	cases := []struct {
		a, b Position
		want int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{0, 0}, Position{1, 1}, 1},
		{Position{2, 2}, Position{5, 3}, 3},
		{Position{5, 3}, Position{2, 2}, 3},
	}
	for _, tc := range cases {
		if got := Chebyshev(tc.a, tc.b); got != tc.want {
			t.Fatalf("Chebyshev(%v,%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestInventoryRemove(t *testing.T) {
	inv := Inventory{}
	inv.Add("potion", 2)
	if inv.Remove("potion", 3) {
		t.Fatalf("removed more than held")
	}
	if !inv.Remove("potion", 2) {
		t.Fatalf("failed to remove held quantity")
	}
	if len(inv.Slots) != 0 {
		t.Fatalf("emptied stack not dropped: %v", inv.Slots)
	}
}
