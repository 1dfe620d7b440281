package state

import "sort"

// OverlayKind marks tile-level overlay data layered on top of map geometry.
type OverlayKind string

const (
	OverlayDoorOpen OverlayKind = "door_open"
	OverlayHazard   OverlayKind = "hazard"
)

// WorldState tracks tile occupancy and overlay data. Occupant lists are kept
// sorted by entity id so serialization and diffing never depend on insertion
// order.
type WorldState struct {
	Occupancy map[Position][]EntityID  `json:"occupancy,omitempty"`
	Overlays  map[Position]OverlayKind `json:"overlays,omitempty"`
}

// NewWorldState returns an empty world.
func NewWorldState() WorldState {
	return WorldState{
		Occupancy: make(map[Position][]EntityID),
		Overlays:  make(map[Position]OverlayKind),
	}
}

// OccupantsAt returns the occupant list for a tile. The returned slice is the
// internal one; callers must not mutate it.
func (w *WorldState) OccupantsAt(pos Position) []EntityID {
	return w.Occupancy[pos]
}

// Occupies reports whether the entity is recorded on the tile.
func (w *WorldState) Occupies(pos Position, id EntityID) bool {
	for _, occupant := range w.Occupancy[pos] {
		if occupant == id {
			return true
		}
	}
	return false
}

// PlaceOccupant inserts the entity into the tile's occupant list, keeping the
// list sorted. Placing an already-present occupant is a no-op.
func (w *WorldState) PlaceOccupant(pos Position, id EntityID) {
	if w.Occupancy == nil {
		w.Occupancy = make(map[Position][]EntityID)
	}
	occupants := w.Occupancy[pos]
	idx := sort.Search(len(occupants), func(i int) bool { return occupants[i] >= id })
	if idx < len(occupants) && occupants[idx] == id {
		return
	}
	occupants = append(occupants, 0)
	copy(occupants[idx+1:], occupants[idx:])
	occupants[idx] = id
	w.Occupancy[pos] = occupants
}

// RemoveOccupant deletes the entity from the tile's occupant list, dropping
// the map entry when it empties. It reports whether the entity was present.
func (w *WorldState) RemoveOccupant(pos Position, id EntityID) bool {
	occupants := w.Occupancy[pos]
	for i, occupant := range occupants {
		if occupant != id {
			continue
		}
		occupants = append(occupants[:i], occupants[i+1:]...)
		if len(occupants) == 0 {
			delete(w.Occupancy, pos)
		} else {
			w.Occupancy[pos] = occupants
		}
		return true
	}
	return false
}

// SortedPositions returns the occupancy key set in deterministic order.
func (w *WorldState) SortedPositions() []Position {
	positions := make([]Position, 0, len(w.Occupancy))
	for pos := range w.Occupancy {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})
	return positions
}

// Clone returns a deep copy of the world state.
func (w WorldState) Clone() WorldState {
	cloned := WorldState{
		Occupancy: make(map[Position][]EntityID, len(w.Occupancy)),
		Overlays:  make(map[Position]OverlayKind, len(w.Overlays)),
	}
	for pos, occupants := range w.Occupancy {
		cloned.Occupancy[pos] = append([]EntityID(nil), occupants...)
	}
	for pos, overlay := range w.Overlays {
		cloned.Overlays[pos] = overlay
	}
	return cloned
}
