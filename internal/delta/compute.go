package delta

import (
	"slices"
	"sort"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// Compute diffs two snapshots into a StateDelta attributed to act. Both
// snapshots must be fully materialized; Compute never mutates them.
func Compute(act action.Action, before, after *state.GameState) StateDelta {
	return StateDelta{
		Action:   act,
		Turn:     computeTurn(&before.Turn, &after.Turn),
		Entities: computeEntities(&before.Entities, &after.Entities),
		World:    computeWorld(&before.World, &after.World),
	}
}

func computeTurn(before, after *state.TurnState) TurnDelta {
	d := TurnDelta{}
	if before.Clock != after.Clock {
		d.Clock = Changed(after.Clock)
	}
	if before.Current != after.Current {
		d.Current = Changed(after.Current)
	}
	if before.Nonce != after.Nonce {
		d.Nonce = Changed(after.Nonce)
	}
	d.Activated, d.Deactivated = activeSetDiff(before.ActiveActors, after.ActiveActors)
	return d
}

// activeSetDiff computes the symmetric difference of two sorted id slices.
func activeSetDiff(before, after []state.EntityID) (added, removed []state.EntityID) {
	i, j := 0, 0
	for i < len(before) && j < len(after) {
		switch {
		case before[i] == after[j]:
			i++
			j++
		case before[i] < after[j]:
			removed = append(removed, before[i])
			i++
		default:
			added = append(added, after[j])
			j++
		}
	}
	removed = append(removed, before[i:]...)
	added = append(added, after[j:]...)
	return added, removed
}

// DiffActor builds a patch covering every tracked actor field, returning nil
// when nothing changed.
func DiffActor(before, after *state.Actor) *ActorPatch {
	patch := ActorPatch{ID: after.ID}
	if before.Position != after.Position {
		patch.Position = Changed(after.Position)
	}
	if before.Stats != after.Stats {
		patch.Stats = Changed(after.Stats)
	}
	if before.Resources != after.Resources {
		patch.Resources = Changed(after.Resources)
	}
	if !slices.Equal(before.Equipment, after.Equipment) {
		patch.Equipment = Changed(append([]state.EquippedItem(nil), after.Equipment...))
	}
	if !slices.Equal(before.Statuses, after.Statuses) {
		patch.Statuses = Changed(append([]state.StatusEffect(nil), after.Statuses...))
	}
	if !slices.Equal(before.Abilities, after.Abilities) {
		patch.Abilities = Changed(append([]state.AbilityState(nil), after.Abilities...))
	}
	if before.Bonuses != after.Bonuses {
		patch.Bonuses = Changed(after.Bonuses)
	}
	if !before.Inventory.Equal(after.Inventory) {
		patch.Inventory = Changed(after.Inventory.Clone())
	}
	if before.ReadyAt != after.ReadyAt {
		patch.ReadyAt = Changed(after.ReadyAt)
	}
	if patch.IsEmpty() {
		return nil
	}
	return &patch
}

func computeEntities(before, after *state.Entities) EntitiesDelta {
	d := EntitiesDelta{
		Player: DiffActor(&before.Player, &after.Player),
		NPCs:   diffNPCs(before.NPCs, after.NPCs),
	}
	d.Props = diffProps(before.Props, after.Props)
	d.GroundItems = diffGroundItems(before.GroundItems, after.GroundItems)
	return d
}

func diffNPCs(before, after []state.Actor) ActorsDelta {
	d := ActorsDelta{}
	prior := make(map[state.EntityID]*state.Actor, len(before))
	for i := range before {
		prior[before[i].ID] = &before[i]
	}
	seen := make(map[state.EntityID]struct{}, len(after))
	for i := range after {
		seen[after[i].ID] = struct{}{}
		old, ok := prior[after[i].ID]
		if !ok {
			d.Added = append(d.Added, after[i].Clone())
			continue
		}
		if patch := DiffActor(old, &after[i]); patch != nil {
			d.Updated = append(d.Updated, *patch)
		}
	}
	for i := range before {
		if _, ok := seen[before[i].ID]; !ok {
			d.Removed = append(d.Removed, before[i].ID)
		}
	}
	sortIDs(d.Removed)
	return d
}

func diffProps(before, after []state.Prop) PropsDelta {
	d := PropsDelta{}
	prior := make(map[state.EntityID]*state.Prop, len(before))
	for i := range before {
		prior[before[i].ID] = &before[i]
	}
	seen := make(map[state.EntityID]struct{}, len(after))
	for i := range after {
		seen[after[i].ID] = struct{}{}
		old, ok := prior[after[i].ID]
		if !ok {
			d.Added = append(d.Added, after[i])
			continue
		}
		patch := PropPatch{ID: after[i].ID}
		if old.Position != after[i].Position {
			patch.Position = Changed(after[i].Position)
		}
		if old.Activated != after[i].Activated {
			patch.Activated = Changed(after[i].Activated)
		}
		if !patch.IsEmpty() {
			d.Updated = append(d.Updated, patch)
		}
	}
	for i := range before {
		if _, ok := seen[before[i].ID]; !ok {
			d.Removed = append(d.Removed, before[i].ID)
		}
	}
	sortIDs(d.Removed)
	return d
}

func diffGroundItems(before, after []state.GroundItem) GroundItemsDelta {
	d := GroundItemsDelta{}
	prior := make(map[state.EntityID]*state.GroundItem, len(before))
	for i := range before {
		prior[before[i].ID] = &before[i]
	}
	seen := make(map[state.EntityID]struct{}, len(after))
	for i := range after {
		seen[after[i].ID] = struct{}{}
		old, ok := prior[after[i].ID]
		if !ok {
			d.Added = append(d.Added, after[i])
			continue
		}
		patch := GroundItemPatch{ID: after[i].ID}
		if old.Position != after[i].Position {
			patch.Position = Changed(after[i].Position)
		}
		if old.Quantity != after[i].Quantity {
			patch.Quantity = Changed(after[i].Quantity)
		}
		if !patch.IsEmpty() {
			d.Updated = append(d.Updated, patch)
		}
	}
	for i := range before {
		if _, ok := seen[before[i].ID]; !ok {
			d.Removed = append(d.Removed, before[i].ID)
		}
	}
	sortIDs(d.Removed)
	return d
}

// computeWorld re-compares only the positions present in either occupancy key
// set, never the full tile grid.
func computeWorld(before, after *state.WorldState) WorldDelta {
	d := WorldDelta{}
	positions := make(map[state.Position]struct{}, len(before.Occupancy)+len(after.Occupancy))
	for pos := range before.Occupancy {
		positions[pos] = struct{}{}
	}
	for pos := range after.Occupancy {
		positions[pos] = struct{}{}
	}
	for pos := range positions {
		if !idsEqual(before.Occupancy[pos], after.Occupancy[pos]) {
			d.Tiles = append(d.Tiles, TileChange{
				Pos:       pos,
				Occupants: append([]state.EntityID(nil), after.Occupancy[pos]...),
			})
		}
	}
	sort.Slice(d.Tiles, func(i, j int) bool {
		if d.Tiles[i].Pos.Y != d.Tiles[j].Pos.Y {
			return d.Tiles[i].Pos.Y < d.Tiles[j].Pos.Y
		}
		return d.Tiles[i].Pos.X < d.Tiles[j].Pos.X
	})

	overlayKeys := make(map[state.Position]struct{}, len(before.Overlays)+len(after.Overlays))
	for pos := range before.Overlays {
		overlayKeys[pos] = struct{}{}
	}
	for pos := range after.Overlays {
		overlayKeys[pos] = struct{}{}
	}
	for pos := range overlayKeys {
		oldKind, hadOld := before.Overlays[pos]
		newKind, hasNew := after.Overlays[pos]
		if hadOld == hasNew && oldKind == newKind {
			continue
		}
		change := OverlayChange{Pos: pos, Kind: newKind, Cleared: !hasNew}
		d.Overlays = append(d.Overlays, change)
	}
	sort.Slice(d.Overlays, func(i, j int) bool {
		if d.Overlays[i].Pos.Y != d.Overlays[j].Pos.Y {
			return d.Overlays[i].Pos.Y < d.Overlays[j].Pos.Y
		}
		return d.Overlays[i].Pos.X < d.Overlays[j].Pos.X
	})
	return d
}

func idsEqual(a, b []state.EntityID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortIDs(ids []state.EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
