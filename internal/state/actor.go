package state

import "github.com/0xwonj/dungeon-sub001/stats"

// ResourceSet holds an actor's current expendable pools.
type ResourceSet struct {
	Health int `json:"health"`
	Mana   int `json:"mana"`
	Focus  int `json:"focus"`
}

// ItemStack is a quantity of a single item type held in an inventory.
type ItemStack struct {
	Item     ItemID `json:"item"`
	Quantity int    `json:"quantity"`
}

// Inventory is an ordered list of item stacks. Order is part of the
// authoritative state, so diffs compare slices positionally.
type Inventory struct {
	Slots []ItemStack `json:"slots,omitempty"`
}

// Quantity reports the total quantity held for the given item.
func (inv Inventory) Quantity(item ItemID) int {
	total := 0
	for _, slot := range inv.Slots {
		if slot.Item == item {
			total += slot.Quantity
		}
	}
	return total
}

// Add merges quantity into an existing stack or appends a new one.
func (inv *Inventory) Add(item ItemID, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range inv.Slots {
		if inv.Slots[i].Item == item {
			inv.Slots[i].Quantity += quantity
			return
		}
	}
	inv.Slots = append(inv.Slots, ItemStack{Item: item, Quantity: quantity})
}

// Remove deducts quantity from the matching stack, dropping the stack when it
// reaches zero. It reports whether the inventory held enough.
func (inv *Inventory) Remove(item ItemID, quantity int) bool {
	if quantity <= 0 {
		return true
	}
	for i := range inv.Slots {
		if inv.Slots[i].Item != item {
			continue
		}
		if inv.Slots[i].Quantity < quantity {
			return false
		}
		inv.Slots[i].Quantity -= quantity
		if inv.Slots[i].Quantity == 0 {
			inv.Slots = append(inv.Slots[:i], inv.Slots[i+1:]...)
		}
		return true
	}
	return false
}

// Equal reports whether two inventories hold the same stacks in the same
// order.
func (inv Inventory) Equal(other Inventory) bool {
	if len(inv.Slots) != len(other.Slots) {
		return false
	}
	for i := range inv.Slots {
		if inv.Slots[i] != other.Slots[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the inventory.
func (inv Inventory) Clone() Inventory {
	if len(inv.Slots) == 0 {
		return Inventory{}
	}
	return Inventory{Slots: append([]ItemStack(nil), inv.Slots...)}
}

// EquipSlot names an equipment position on an actor.
type EquipSlot string

const (
	EquipSlotWeapon EquipSlot = "weapon"
	EquipSlotArmor  EquipSlot = "armor"
)

// EquippedItem binds an item definition to an equipment slot.
type EquippedItem struct {
	Slot EquipSlot `json:"slot"`
	Item ItemID    `json:"item"`
}

// StatusEffect is an active timed condition on an actor.
type StatusEffect struct {
	ID        string `json:"id"`
	Magnitude int    `json:"magnitude,omitempty"`
	ExpiresAt Tick   `json:"expiresAt"`
}

// AbilityState tracks availability of one action ability.
type AbilityState struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	// ReadyAt is the earliest tick the ability can fire again. Zero means
	// no cooldown pending.
	ReadyAt Tick `json:"readyAt,omitempty"`
}

// Actor captures the full authoritative state of a player or NPC.
type Actor struct {
	ID        EntityID         `json:"id"`
	Archetype stats.Archetype  `json:"archetype"`
	Position  OptionalPosition `json:"position"`
	Stats     stats.ValueSet   `json:"stats"`
	Resources ResourceSet      `json:"resources"`
	Equipment []EquippedItem   `json:"equipment,omitempty"`
	Statuses  []StatusEffect   `json:"statuses,omitempty"`
	Abilities []AbilityState   `json:"abilities,omitempty"`
	Bonuses   stats.DerivedSet `json:"bonuses"`
	Inventory Inventory        `json:"inventory"`
	ReadyAt   OptionalTick     `json:"readyAt"`
}

// Alive reports whether the actor still has health remaining.
func (a *Actor) Alive() bool {
	return a.Resources.Health > 0
}

// Ability returns the ability state with the given id.
func (a *Actor) Ability(id string) (*AbilityState, bool) {
	for i := range a.Abilities {
		if a.Abilities[i].ID == id {
			return &a.Abilities[i], true
		}
	}
	return nil, false
}

// SpeedScalar returns the cached speed cost scalar for the actor.
func (a *Actor) SpeedScalar() int {
	return a.Bonuses[stats.DerivedSpeedScalar]
}

// RefreshBonuses recomputes the cached derived set from base stats plus
// equipment contributions supplied by the caller.
func (a *Actor) RefreshBonuses(equipment stats.ValueSet) {
	comp := stats.NewComponent(a.Stats)
	comp.SetLayer(stats.LayerEquipment, equipment)
	a.Bonuses = comp.DerivedValues()
}

// Clone returns a deep copy of the actor.
func (a Actor) Clone() Actor {
	cloned := a
	if len(a.Equipment) > 0 {
		cloned.Equipment = append([]EquippedItem(nil), a.Equipment...)
	}
	if len(a.Statuses) > 0 {
		cloned.Statuses = append([]StatusEffect(nil), a.Statuses...)
	}
	if len(a.Abilities) > 0 {
		cloned.Abilities = append([]AbilityState(nil), a.Abilities...)
	}
	cloned.Inventory = a.Inventory.Clone()
	return cloned
}
