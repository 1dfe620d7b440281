// Package journal records the delta history of a session. Entries accumulate
// in a staging buffer during a commit attempt and move into the retained log
// only when the whole attempt succeeds, so a failed cascade leaves no trace.
// Periodic keyframes hold full snapshots for replay without walking the
// entire delta chain.
package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// Entry is one committed transition in a session's history.
type Entry struct {
	Session uuid.UUID        `json:"session"`
	Nonce   uint64           `json:"nonce"`
	Tick    state.Tick       `json:"tick"`
	Time    time.Time        `json:"time"`
	Action  action.Action    `json:"action"`
	Delta   delta.StateDelta `json:"delta"`
}

// Keyframe pairs a nonce with a full state snapshot.
type Keyframe struct {
	Nonce uint64
	Tick  state.Tick
	State *state.GameState
}

// Config controls retention.
type Config struct {
	// MaxEntries caps the retained delta log. Zero selects a default.
	MaxEntries int
	// MaxKeyframes caps the snapshot ring. Zero selects a default.
	MaxKeyframes int
	// KeyframeInterval is the number of entries between snapshots. Zero
	// selects a default.
	KeyframeInterval int
}

const (
	defaultMaxEntries       = 4096
	defaultMaxKeyframes     = 16
	defaultKeyframeInterval = 64
)

func (c Config) withDefaults() Config {
	if c.MaxEntries <= 0 {
		c.MaxEntries = defaultMaxEntries
	}
	if c.MaxKeyframes <= 0 {
		c.MaxKeyframes = defaultMaxKeyframes
	}
	if c.KeyframeInterval <= 0 {
		c.KeyframeInterval = defaultKeyframeInterval
	}
	return c
}

// Stats reports retention bookkeeping.
type Stats struct {
	Entries         int
	Keyframes       int
	EvictedEntries  uint64
	OldestNonce     uint64
	NewestNonce     uint64
	SinceKeyframe   int
	LastKeyframeAge int
}

// Journal owns the retained history for one session. It is not safe for
// concurrent use; the simulation worker is its only caller.
type Journal struct {
	session uuid.UUID
	cfg     Config

	entries       []Entry
	keyframes     []Keyframe
	evicted       uint64
	sinceKeyframe int
}

// New creates an empty journal for the session.
func New(session uuid.UUID, cfg Config) *Journal {
	return &Journal{session: session, cfg: cfg.withDefaults()}
}

// Session returns the session id entries are stamped with.
func (j *Journal) Session() uuid.UUID {
	return j.session
}

// Commit appends a batch of staged entries and snapshots a keyframe when the
// interval elapsed. The batch is all-or-nothing by construction: callers only
// pass batches whose transitions all committed.
func (j *Journal) Commit(staged []Entry, current *state.GameState) {
	if len(staged) == 0 {
		return
	}
	j.entries = append(j.entries, staged...)
	j.sinceKeyframe += len(staged)

	if j.sinceKeyframe >= j.cfg.KeyframeInterval {
		last := staged[len(staged)-1]
		j.keyframes = append(j.keyframes, Keyframe{
			Nonce: last.Nonce,
			Tick:  last.Tick,
			State: current.Clone(),
		})
		j.sinceKeyframe = 0
		if len(j.keyframes) > j.cfg.MaxKeyframes {
			overflow := len(j.keyframes) - j.cfg.MaxKeyframes
			j.keyframes = append(j.keyframes[:0], j.keyframes[overflow:]...)
		}
	}

	if len(j.entries) > j.cfg.MaxEntries {
		overflow := len(j.entries) - j.cfg.MaxEntries
		j.evicted += uint64(overflow)
		j.entries = append(j.entries[:0], j.entries[overflow:]...)
	}
}

// Entries returns a copy of the retained log, oldest first.
func (j *Journal) Entries() []Entry {
	return append([]Entry(nil), j.entries...)
}

// EntriesSince returns retained entries with nonce strictly greater than the
// given value.
func (j *Journal) EntriesSince(nonce uint64) []Entry {
	for i, entry := range j.entries {
		if entry.Nonce > nonce {
			return append([]Entry(nil), j.entries[i:]...)
		}
	}
	return nil
}

// LatestKeyframe returns the newest snapshot, if any. The returned state is
// owned by the journal; callers clone before mutating.
func (j *Journal) LatestKeyframe() (Keyframe, bool) {
	if len(j.keyframes) == 0 {
		return Keyframe{}, false
	}
	return j.keyframes[len(j.keyframes)-1], true
}

// Stats reports current retention bookkeeping.
func (j *Journal) Stats() Stats {
	stats := Stats{
		Entries:        len(j.entries),
		Keyframes:      len(j.keyframes),
		EvictedEntries: j.evicted,
		SinceKeyframe:  j.sinceKeyframe,
	}
	if len(j.entries) > 0 {
		stats.OldestNonce = j.entries[0].Nonce
		stats.NewestNonce = j.entries[len(j.entries)-1].Nonce
	}
	if len(j.keyframes) > 0 {
		stats.LastKeyframeAge = len(j.entries) - j.sinceKeyframe
	}
	return stats
}

// Staging accumulates entries for one commit attempt. Drain empties it into
// the journal on success; Reset discards it on failure.
type Staging struct {
	session uuid.UUID
	pending []Entry
}

// NewStaging creates an empty staging buffer stamping entries with the
// session id.
func NewStaging(session uuid.UUID) *Staging {
	return &Staging{session: session}
}

// Append stages one committed transition.
func (s *Staging) Append(nonce uint64, tick state.Tick, at time.Time, act action.Action, d delta.StateDelta) {
	s.pending = append(s.pending, Entry{
		Session: s.session,
		Nonce:   nonce,
		Tick:    tick,
		Time:    at,
		Action:  act,
		Delta:   d,
	})
}

// Len reports how many entries are staged.
func (s *Staging) Len() int {
	return len(s.pending)
}

// Drain returns the staged entries and empties the buffer.
func (s *Staging) Drain() []Entry {
	pending := s.pending
	s.pending = nil
	return pending
}

// Reset discards the staged entries.
func (s *Staging) Reset() {
	s.pending = nil
}
