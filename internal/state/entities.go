package state

// Collection caps. The proof layer requires bounded witnesses, so entity
// collections never grow past these sizes.
const (
	MaxNPCs        = 32
	MaxProps       = 64
	MaxGroundItems = 64
)

// PropKind enumerates the interactable prop archetypes.
type PropKind string

const (
	PropDoor  PropKind = "door"
	PropChest PropKind = "chest"
	PropLever PropKind = "lever"
)

// Prop is a stationary interactable fixture.
type Prop struct {
	ID       EntityID         `json:"id"`
	Kind     PropKind         `json:"kind"`
	Position OptionalPosition `json:"position"`
	// Activated is the toggled state: open for doors, pulled for levers,
	// looted for chests.
	Activated bool `json:"activated,omitempty"`
	// Contents is granted to the world as a ground item the first time a
	// chest is activated.
	Contents *ItemStack `json:"contents,omitempty"`
}

// GroundItem is a stack of items lying on a tile.
type GroundItem struct {
	ID       EntityID         `json:"id"`
	Position OptionalPosition `json:"position"`
	Item     ItemID           `json:"item"`
	Quantity int              `json:"quantity"`
}

// Entities is the root entity container: one player, bounded NPC, prop, and
// ground item collections, and the allocation cursor for new ids.
type Entities struct {
	Player      Actor        `json:"player"`
	NPCs        []Actor      `json:"npcs,omitempty"`
	Props       []Prop       `json:"props,omitempty"`
	GroundItems []GroundItem `json:"groundItems,omitempty"`
	NextID      EntityID     `json:"nextId"`
}

// AllocateID hands out the next entity id.
func (e *Entities) AllocateID() EntityID {
	if e.NextID < FirstDynamicID {
		e.NextID = FirstDynamicID
	}
	id := e.NextID
	e.NextID++
	return id
}

// ActorByID resolves the player or an NPC by id.
func (e *Entities) ActorByID(id EntityID) (*Actor, bool) {
	if id == e.Player.ID {
		return &e.Player, true
	}
	for i := range e.NPCs {
		if e.NPCs[i].ID == id {
			return &e.NPCs[i], true
		}
	}
	return nil, false
}

// PropByID resolves a prop by id.
func (e *Entities) PropByID(id EntityID) (*Prop, bool) {
	for i := range e.Props {
		if e.Props[i].ID == id {
			return &e.Props[i], true
		}
	}
	return nil, false
}

// GroundItemByID resolves a ground item by id.
func (e *Entities) GroundItemByID(id EntityID) (*GroundItem, bool) {
	for i := range e.GroundItems {
		if e.GroundItems[i].ID == id {
			return &e.GroundItems[i], true
		}
	}
	return nil, false
}

// Exists reports whether any entity carries the given id.
func (e *Entities) Exists(id EntityID) bool {
	if _, ok := e.ActorByID(id); ok {
		return true
	}
	if _, ok := e.PropByID(id); ok {
		return true
	}
	if _, ok := e.GroundItemByID(id); ok {
		return true
	}
	return false
}

// Clone returns a deep copy of the entity container.
func (e Entities) Clone() Entities {
	cloned := Entities{
		Player: e.Player.Clone(),
		NextID: e.NextID,
	}
	if len(e.NPCs) > 0 {
		cloned.NPCs = make([]Actor, len(e.NPCs))
		for i := range e.NPCs {
			cloned.NPCs[i] = e.NPCs[i].Clone()
		}
	}
	if len(e.Props) > 0 {
		cloned.Props = make([]Prop, len(e.Props))
		for i, prop := range e.Props {
			cloned.Props[i] = prop
			if prop.Contents != nil {
				contents := *prop.Contents
				cloned.Props[i].Contents = &contents
			}
		}
	}
	if len(e.GroundItems) > 0 {
		cloned.GroundItems = append([]GroundItem(nil), e.GroundItems...)
	}
	return cloned
}
