// Package state defines the canonical, serializable snapshot of the
// simulation world. It is pure data: every mutation flows through the engine
// transition pipeline, and every other component receives read-only
// references or full clones.
package state

import "fmt"

// GameState is the root snapshot the engine treats as ground truth.
type GameState struct {
	Turn     TurnState  `json:"turn"`
	Entities Entities   `json:"entities"`
	World    WorldState `json:"world"`
}

// NewGameState constructs an empty state with the player installed.
func NewGameState(player Actor) *GameState {
	player.ID = PlayerID
	return &GameState{
		Entities: Entities{Player: player, NextID: FirstDynamicID},
		World:    NewWorldState(),
	}
}

// Clone returns a deep copy. The engine stages transitions against clones so
// a failed action never touches the authoritative snapshot.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	return &GameState{
		Turn:     s.Turn.Clone(),
		Entities: s.Entities.Clone(),
		World:    s.World.Clone(),
	}
}

// CheckInvariants verifies the cross-structure consistency rules: every
// active actor id resolves to an actor with a valid ReadyAt, no inactive
// actor holds a ReadyAt, and every tile occupant resolves to an existing
// entity standing on that tile.
func (s *GameState) CheckInvariants() error {
	for _, id := range s.Turn.ActiveActors {
		actor, ok := s.Entities.ActorByID(id)
		if !ok {
			return fmt.Errorf("active actor %d does not resolve to an entity", id)
		}
		if !actor.ReadyAt.Valid {
			return fmt.Errorf("active actor %d has no ready_at", id)
		}
	}
	checkInactive := func(actor *Actor) error {
		if actor.ReadyAt.Valid && !s.Turn.IsActive(actor.ID) {
			return fmt.Errorf("inactive actor %d holds ready_at %d", actor.ID, actor.ReadyAt.Tick)
		}
		return nil
	}
	if err := checkInactive(&s.Entities.Player); err != nil {
		return err
	}
	for i := range s.Entities.NPCs {
		if err := checkInactive(&s.Entities.NPCs[i]); err != nil {
			return err
		}
	}
	for pos, occupants := range s.World.Occupancy {
		for _, id := range occupants {
			if !s.Entities.Exists(id) {
				return fmt.Errorf("tile (%d,%d) references missing entity %d", pos.X, pos.Y, id)
			}
		}
	}
	return nil
}

// EntityPosition reports the recorded position for any entity kind.
func (s *GameState) EntityPosition(id EntityID) (OptionalPosition, bool) {
	if actor, ok := s.Entities.ActorByID(id); ok {
		return actor.Position, true
	}
	if prop, ok := s.Entities.PropByID(id); ok {
		return prop.Position, true
	}
	if item, ok := s.Entities.GroundItemByID(id); ok {
		return item.Position, true
	}
	return OptionalPosition{}, false
}
