package state

import "sort"

// TurnState carries the scheduler bookkeeping: the clock, the actor whose
// turn it is, the active set, and the action nonce. ActiveActors is kept
// sorted by id.
type TurnState struct {
	Clock        Tick       `json:"clock"`
	Current      EntityID   `json:"current"`
	ActiveActors []EntityID `json:"activeActors,omitempty"`
	Nonce        uint64     `json:"nonce"`
}

// IsActive reports whether the id is in the active set.
func (t *TurnState) IsActive(id EntityID) bool {
	for _, active := range t.ActiveActors {
		if active == id {
			return true
		}
	}
	return false
}

// AddActive inserts the id into the active set, keeping it sorted. Adding an
// already-active id is a no-op.
func (t *TurnState) AddActive(id EntityID) {
	idx := sort.Search(len(t.ActiveActors), func(i int) bool { return t.ActiveActors[i] >= id })
	if idx < len(t.ActiveActors) && t.ActiveActors[idx] == id {
		return
	}
	t.ActiveActors = append(t.ActiveActors, 0)
	copy(t.ActiveActors[idx+1:], t.ActiveActors[idx:])
	t.ActiveActors[idx] = id
}

// RemoveActive deletes the id from the active set, reporting whether it was
// present.
func (t *TurnState) RemoveActive(id EntityID) bool {
	for i, active := range t.ActiveActors {
		if active == id {
			t.ActiveActors = append(t.ActiveActors[:i], t.ActiveActors[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the turn state.
func (t TurnState) Clone() TurnState {
	cloned := t
	if len(t.ActiveActors) > 0 {
		cloned.ActiveActors = append([]EntityID(nil), t.ActiveActors...)
	}
	return cloned
}
