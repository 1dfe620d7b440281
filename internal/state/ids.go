package state

// Tick is the integer unit of in-game time used to schedule actor readiness.
type Tick uint64

// EntityID identifies any entity tracked by the simulation. IDs are assigned
// once at creation and never reused within a session; ordering by ID is the
// deterministic tie-break everywhere the engine needs one.
type EntityID uint32

const (
	// SystemActorID is the reserved actor attributed to bookkeeping
	// actions. It never resolves to an entity.
	SystemActorID EntityID = 0
	// PlayerID is the fixed id of the player actor.
	PlayerID EntityID = 1
	// FirstDynamicID is the lowest id handed out to scenario entities.
	FirstDynamicID EntityID = 2
)

// ItemID identifies an item definition in the content oracle.
type ItemID string

// Position is a tile coordinate on the map grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev returns the Chebyshev (king-move) distance between two tiles.
func Chebyshev(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// OptionalTick is a tick value with an explicit presence flag. The zero value
// means "absent"; the struct stays comparable so snapshots diff with ==.
type OptionalTick struct {
	Valid bool `json:"valid"`
	Tick  Tick `json:"tick,omitempty"`
}

// SomeTick wraps a present tick value.
func SomeTick(t Tick) OptionalTick {
	return OptionalTick{Valid: true, Tick: t}
}

// OptionalPosition is a position with an explicit presence flag. Absent means
// the entity is off-map.
type OptionalPosition struct {
	Valid bool     `json:"valid"`
	Pos   Position `json:"pos,omitempty"`
}

// SomePosition wraps a present position value.
func SomePosition(p Position) OptionalPosition {
	return OptionalPosition{Valid: true, Pos: p}
}
