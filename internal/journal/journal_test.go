package journal

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

func entryBatch(session uuid.UUID, start uint64, count int) []Entry {
	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		nonce := start + uint64(i)
		entries = append(entries, Entry{
			Session: session,
			Nonce:   nonce,
			Tick:    state.Tick(nonce * 10),
			Time:    time.Unix(int64(nonce), 0),
			Action:  action.NewWait(state.PlayerID),
			Delta:   delta.StateDelta{},
		})
	}
	return entries
}

func emptyState() *state.GameState {
	return state.NewGameState(state.Actor{ID: state.PlayerID})
}

func TestCommitRetainsEntriesInOrder(t *testing.T) {
	session := uuid.New()
	j := New(session, Config{MaxEntries: 100, KeyframeInterval: 1000})

	j.Commit(entryBatch(session, 1, 3), emptyState())
	j.Commit(entryBatch(session, 4, 2), emptyState())

	entries := j.Entries()
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}
	for i, entry := range entries {
		if entry.Nonce != uint64(i+1) {
			t.Fatalf("entries[%d].Nonce = %d, want %d", i, entry.Nonce, i+1)
		}
	}

	since := j.EntriesSince(3)
	if len(since) != 2 || since[0].Nonce != 4 {
		t.Fatalf("EntriesSince(3) = %+v", since)
	}
}

func TestEvictionKeepsNewest(t *testing.T) {
	session := uuid.New()
	j := New(session, Config{MaxEntries: 4, KeyframeInterval: 1000})

	j.Commit(entryBatch(session, 1, 6), emptyState())

	stats := j.Stats()
	if stats.Entries != 4 {
		t.Fatalf("entries = %d, want 4", stats.Entries)
	}
	if stats.EvictedEntries != 2 {
		t.Fatalf("evicted = %d, want 2", stats.EvictedEntries)
	}
	if stats.OldestNonce != 3 || stats.NewestNonce != 6 {
		t.Fatalf("retained range = [%d,%d], want [3,6]", stats.OldestNonce, stats.NewestNonce)
	}
}

func TestKeyframeInterval(t *testing.T) {
	session := uuid.New()
	j := New(session, Config{MaxEntries: 100, MaxKeyframes: 2, KeyframeInterval: 3})

	current := emptyState()
	j.Commit(entryBatch(session, 1, 2), current)
	if _, ok := j.LatestKeyframe(); ok {
		t.Fatalf("keyframe taken before interval elapsed")
	}

	j.Commit(entryBatch(session, 3, 1), current)
	frame, ok := j.LatestKeyframe()
	if !ok {
		t.Fatalf("keyframe missing after interval elapsed")
	}
	if frame.Nonce != 3 {
		t.Fatalf("keyframe nonce = %d, want 3", frame.Nonce)
	}

	// The snapshot is a clone: later state mutations do not reach it.
	current.Entities.Player.Resources.Health = 42
	if frame.State.Entities.Player.Resources.Health == 42 {
		t.Fatalf("keyframe shares state with the live snapshot")
	}

	// Ring keeps only the newest MaxKeyframes frames.
	j.Commit(entryBatch(session, 4, 3), current)
	j.Commit(entryBatch(session, 7, 3), current)
	j.Commit(entryBatch(session, 10, 3), current)
	if got := j.Stats().Keyframes; got != 2 {
		t.Fatalf("keyframes = %d, want ring cap 2", got)
	}
	frame, _ = j.LatestKeyframe()
	if frame.Nonce != 12 {
		t.Fatalf("latest keyframe nonce = %d, want 12", frame.Nonce)
	}
}

func TestStagingDrainAndReset(t *testing.T) {
	session := uuid.New()
	staging := NewStaging(session)
	staging.Append(1, 10, time.Unix(1, 0), action.NewWait(state.PlayerID), delta.StateDelta{})
	staging.Append(2, 10, time.Unix(2, 0), action.NewPrepareTurn(), delta.StateDelta{})

	if staging.Len() != 2 {
		t.Fatalf("staged = %d, want 2", staging.Len())
	}
	drained := staging.Drain()
	if len(drained) != 2 || drained[0].Session != session {
		t.Fatalf("drained = %+v", drained)
	}
	if staging.Len() != 0 {
		t.Fatalf("staging not empty after drain")
	}

	staging.Append(3, 20, time.Unix(3, 0), action.NewWait(state.PlayerID), delta.StateDelta{})
	staging.Reset()
	if staging.Len() != 0 {
		t.Fatalf("staging not empty after reset")
	}
}

func TestCommitEmptyBatchIsNoop(t *testing.T) {
	j := New(uuid.New(), Config{})
	j.Commit(nil, emptyState())
	if stats := j.Stats(); stats.Entries != 0 || stats.Keyframes != 0 {
		t.Fatalf("empty commit changed stats: %+v", stats)
	}
}
