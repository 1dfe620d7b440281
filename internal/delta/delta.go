// Package delta computes minimal structural diffs between two game state
// snapshots. A delta records only what changed; callers treat an empty delta
// as a no-op.
package delta

import (
	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// Change wraps a tracked field value with an explicit changed marker, so
// "field did not change" and "field changed to its zero value" stay
// distinguishable without nesting optionals.
type Change[T any] struct {
	Changed bool `json:"changed"`
	Value   T    `json:"value,omitempty"`
}

// Changed marks a field as updated to value.
func Changed[T any](value T) Change[T] {
	return Change[T]{Changed: true, Value: value}
}

// TurnDelta captures scheduler bookkeeping changes. Activation set changes
// are tracked separately from the scalar fields because they matter to
// scheduler consistency checks even when the clock does not move.
type TurnDelta struct {
	Clock       Change[state.Tick]     `json:"clock"`
	Current     Change[state.EntityID] `json:"current"`
	Nonce       Change[uint64]         `json:"nonce"`
	Activated   []state.EntityID       `json:"activated,omitempty"`
	Deactivated []state.EntityID       `json:"deactivated,omitempty"`
}

// IsEmpty reports whether nothing in the turn bookkeeping changed.
func (d TurnDelta) IsEmpty() bool {
	return !d.Clock.Changed && !d.Current.Changed && !d.Nonce.Changed &&
		len(d.Activated) == 0 && len(d.Deactivated) == 0
}

// ActorPatch records the tracked actor fields that changed. Every field a
// transition can mutate is covered, so an actor with no patch is guaranteed
// unchanged. A patch is only emitted when at least one field differs.
type ActorPatch struct {
	ID        state.EntityID                 `json:"id"`
	Position  Change[state.OptionalPosition] `json:"position"`
	Stats     Change[stats.ValueSet]         `json:"stats"`
	Resources Change[state.ResourceSet]      `json:"resources"`
	Equipment Change[[]state.EquippedItem]   `json:"equipment"`
	Statuses  Change[[]state.StatusEffect]   `json:"statuses"`
	Abilities Change[[]state.AbilityState]   `json:"abilities"`
	Bonuses   Change[stats.DerivedSet]       `json:"bonuses"`
	Inventory Change[state.Inventory]        `json:"inventory"`
	ReadyAt   Change[state.OptionalTick]     `json:"readyAt"`
}

// IsEmpty reports whether no tracked field changed.
func (p ActorPatch) IsEmpty() bool {
	return !p.Position.Changed && !p.Stats.Changed && !p.Resources.Changed &&
		!p.Equipment.Changed && !p.Statuses.Changed && !p.Abilities.Changed &&
		!p.Bonuses.Changed && !p.Inventory.Changed && !p.ReadyAt.Changed
}

// PropPatch records prop field changes.
type PropPatch struct {
	ID        state.EntityID                 `json:"id"`
	Position  Change[state.OptionalPosition] `json:"position"`
	Activated Change[bool]                   `json:"activated"`
}

// IsEmpty reports whether no prop field changed.
func (p PropPatch) IsEmpty() bool {
	return !p.Position.Changed && !p.Activated.Changed
}

// GroundItemPatch records ground item field changes.
type GroundItemPatch struct {
	ID       state.EntityID                 `json:"id"`
	Position Change[state.OptionalPosition] `json:"position"`
	Quantity Change[int]                    `json:"quantity"`
}

// IsEmpty reports whether no ground item field changed.
func (p GroundItemPatch) IsEmpty() bool {
	return !p.Position.Changed && !p.Quantity.Changed
}

// ActorsDelta is the keyed diff of an actor collection.
type ActorsDelta struct {
	Added   []state.Actor    `json:"added,omitempty"`
	Removed []state.EntityID `json:"removed,omitempty"`
	Updated []ActorPatch     `json:"updated,omitempty"`
}

// IsEmpty reports whether the collection is unchanged.
func (d ActorsDelta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// PropsDelta is the keyed diff of the prop collection.
type PropsDelta struct {
	Added   []state.Prop     `json:"added,omitempty"`
	Removed []state.EntityID `json:"removed,omitempty"`
	Updated []PropPatch      `json:"updated,omitempty"`
}

// IsEmpty reports whether the collection is unchanged.
func (d PropsDelta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// GroundItemsDelta is the keyed diff of the ground item collection.
type GroundItemsDelta struct {
	Added   []state.GroundItem `json:"added,omitempty"`
	Removed []state.EntityID   `json:"removed,omitempty"`
	Updated []GroundItemPatch  `json:"updated,omitempty"`
}

// IsEmpty reports whether the collection is unchanged.
func (d GroundItemsDelta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// EntitiesDelta bundles the per-collection diffs. Player is nil when the
// player patch came out empty.
type EntitiesDelta struct {
	Player      *ActorPatch      `json:"player,omitempty"`
	NPCs        ActorsDelta      `json:"npcs"`
	Props       PropsDelta       `json:"props"`
	GroundItems GroundItemsDelta `json:"groundItems"`
}

// IsEmpty reports whether no entity changed.
func (d EntitiesDelta) IsEmpty() bool {
	return d.Player == nil && d.NPCs.IsEmpty() && d.Props.IsEmpty() && d.GroundItems.IsEmpty()
}

// TileChange records the new occupant list for a tile whose occupancy
// changed. An empty Occupants slice means the tile cleared.
type TileChange struct {
	Pos       state.Position   `json:"pos"`
	Occupants []state.EntityID `json:"occupants,omitempty"`
}

// WorldDelta lists the tiles whose occupancy or overlay changed.
type WorldDelta struct {
	Tiles    []TileChange    `json:"tiles,omitempty"`
	Overlays []OverlayChange `json:"overlays,omitempty"`
}

// OverlayChange records a tile overlay update. Cleared is set when the
// overlay was removed.
type OverlayChange struct {
	Pos     state.Position    `json:"pos"`
	Kind    state.OverlayKind `json:"kind,omitempty"`
	Cleared bool              `json:"cleared,omitempty"`
}

// IsEmpty reports whether no tile changed.
func (d WorldDelta) IsEmpty() bool {
	return len(d.Tiles) == 0 && len(d.Overlays) == 0
}

// StateDelta summarizes one transition: the action that caused it plus the
// turn, entity, and world diffs. Deltas are derived, never mutated.
type StateDelta struct {
	Action   action.Action `json:"action"`
	Turn     TurnDelta     `json:"turn"`
	Entities EntitiesDelta `json:"entities"`
	World    WorldDelta    `json:"world"`
}

// IsEmpty reports whether the transition changed nothing at all.
func (d StateDelta) IsEmpty() bool {
	return d.Turn.IsEmpty() && d.Entities.IsEmpty() && d.World.IsEmpty()
}
