// Package events derives observer-facing events from committed state deltas.
// Extraction is pure: it reads the delta and its surrounding snapshots and
// never touches game state.
package events

import (
	"strconv"
	"time"

	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/logging"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// Event types emitted by extraction.
const (
	TypeActionCompleted   logging.EventType = "action.completed"
	TypeEntityMoved       logging.EventType = "entity.moved"
	TypeDamageTaken       logging.EventType = "combat.damage_taken"
	TypeHealthThreshold   logging.EventType = "combat.health_threshold"
	TypeEntityDied        logging.EventType = "entity.died"
	TypeReadyAtUpdated    logging.EventType = "turn.ready_at_updated"
	TypeActivated         logging.EventType = "turn.activated"
	TypeRemovedFromActive logging.EventType = "turn.removed_from_active"
	TypeWorldRemoved      logging.EventType = "world.removed"
)

// MovePayload carries a position change.
type MovePayload struct {
	From state.Position `json:"from"`
	To   state.Position `json:"to"`
}

// DamagePayload carries a health loss.
type DamagePayload struct {
	Amount    int `json:"amount"`
	Remaining int `json:"remaining"`
}

// ThresholdPayload carries a crossed health threshold.
type ThresholdPayload struct {
	Percent   int `json:"percent"`
	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
}

// ReadyAtPayload carries a scheduling update.
type ReadyAtPayload struct {
	ReadyAt state.Tick `json:"readyAt"`
}

// Extract derives the event list for one committed delta. Events come out in
// a fixed order per delta: the action completion first, then per-entity
// observations in patch order, then scheduling changes. Nonce and tick come
// from the delta itself, so each event is attributed to the transition that
// produced it even when several deltas commit together.
func Extract(d delta.StateDelta, before, after *state.GameState, rules oracle.Ruleset, now time.Time) []logging.Event {
	nonce := before.Turn.Nonce
	if d.Turn.Nonce.Changed {
		nonce = d.Turn.Nonce.Value
	}
	tick := before.Turn.Clock
	if d.Turn.Clock.Changed {
		tick = d.Turn.Clock.Value
	}
	ex := extractor{
		d:      d,
		before: before,
		after:  after,
		rules:  rules,
		now:    now,
		nonce:  nonce,
		tick:   uint64(tick),
	}
	return ex.run()
}

type extractor struct {
	d      delta.StateDelta
	before *state.GameState
	after  *state.GameState
	rules  oracle.Ruleset
	now    time.Time
	nonce  uint64
	tick   uint64
	out    []logging.Event
}

func (ex *extractor) run() []logging.Event {
	ex.emit(logging.Event{
		Type:     TypeActionCompleted,
		Actor:    ex.ref(ex.d.Action.Actor),
		Severity: logging.SeverityDebug,
		Payload:  ex.d.Action.Kind.String(),
	})

	if patch := ex.d.Entities.Player; patch != nil {
		ex.actorPatch(*patch)
	}
	for _, patch := range ex.d.Entities.NPCs.Updated {
		ex.actorPatch(patch)
	}
	for _, id := range ex.d.Entities.GroundItems.Removed {
		ex.emit(logging.Event{
			Type:     TypeWorldRemoved,
			Actor:    logging.EntityRef{ID: formatID(id), Kind: logging.EntityKindItem},
			Severity: logging.SeverityInfo,
		})
	}

	for _, id := range ex.d.Turn.Activated {
		ex.emit(logging.Event{
			Type:     TypeActivated,
			Actor:    ex.ref(id),
			Severity: logging.SeverityInfo,
		})
	}
	for _, id := range ex.d.Turn.Deactivated {
		ex.emit(logging.Event{
			Type:     TypeRemovedFromActive,
			Actor:    ex.ref(id),
			Severity: logging.SeverityInfo,
		})
	}

	return ex.out
}

func (ex *extractor) actorPatch(patch delta.ActorPatch) {
	ref := ex.ref(patch.ID)

	if patch.Position.Changed {
		beforePos, beforeOK := actorPosition(ex.before, patch.ID)
		afterPos := patch.Position.Value
		switch {
		case beforeOK && afterPos.Valid:
			ex.emit(logging.Event{
				Type:     TypeEntityMoved,
				Actor:    ref,
				Severity: logging.SeverityDebug,
				Payload:  MovePayload{From: beforePos, To: afterPos.Pos},
			})
		case beforeOK && !afterPos.Valid:
			ex.emit(logging.Event{
				Type:     TypeWorldRemoved,
				Actor:    ref,
				Severity: logging.SeverityInfo,
			})
		}
	}

	if patch.Resources.Changed {
		ex.resourceEvents(patch, ref)
	}

	if patch.ReadyAt.Changed && patch.ReadyAt.Value.Valid {
		ex.emit(logging.Event{
			Type:     TypeReadyAtUpdated,
			Actor:    ref,
			Severity: logging.SeverityDebug,
			Payload:  ReadyAtPayload{ReadyAt: patch.ReadyAt.Value.Tick},
		})
	}
}

func (ex *extractor) resourceEvents(patch delta.ActorPatch, ref logging.EntityRef) {
	beforeActor, ok := ex.before.Entities.ActorByID(patch.ID)
	if !ok {
		return
	}
	beforeHealth := beforeActor.Resources.Health
	afterHealth := patch.Resources.Value.Health
	if afterHealth >= beforeHealth {
		return
	}

	maxHealth := beforeActor.Bonuses[stats.DerivedMaxHealth]
	if afterActor, ok := ex.after.Entities.ActorByID(patch.ID); ok {
		maxHealth = afterActor.Bonuses[stats.DerivedMaxHealth]
	}

	ex.emit(logging.Event{
		Type:     TypeDamageTaken,
		Actor:    ref,
		Severity: logging.SeverityInfo,
		Payload:  DamagePayload{Amount: beforeHealth - afterHealth, Remaining: afterHealth},
	})

	if maxHealth > 0 {
		for _, percent := range crossedThresholds(beforeHealth, afterHealth, maxHealth, ex.rules.HealthThresholds) {
			ex.emit(logging.Event{
				Type:     TypeHealthThreshold,
				Actor:    ref,
				Severity: logging.SeverityWarn,
				Payload:  ThresholdPayload{Percent: percent, Health: afterHealth, MaxHealth: maxHealth},
			})
		}
	}

	if afterHealth <= 0 {
		ex.emit(logging.Event{
			Type:     TypeEntityDied,
			Actor:    ref,
			Severity: logging.SeverityWarn,
		})
	}
}

// crossedThresholds returns the configured percentages, in the order given,
// that health fell through during this change. A threshold is crossed when
// health moves from strictly above it to at-or-below it.
func crossedThresholds(before, after, max int, thresholds []int) []int {
	var crossed []int
	for _, percent := range thresholds {
		boundary := max * percent / 100
		if before > boundary && after <= boundary {
			crossed = append(crossed, percent)
		}
	}
	return crossed
}

func (ex *extractor) emit(event logging.Event) {
	event.Tick = ex.tick
	event.Nonce = ex.nonce
	event.Time = ex.now
	ex.out = append(ex.out, event)
}

func (ex *extractor) ref(id state.EntityID) logging.EntityRef {
	kind := logging.EntityKindUnknown
	switch {
	case id == state.SystemActorID:
		kind = logging.EntityKindSystem
	case id == state.PlayerID:
		kind = logging.EntityKindPlayer
	default:
		if _, ok := ex.after.Entities.ActorByID(id); ok {
			kind = logging.EntityKindNPC
		} else if _, ok := ex.after.Entities.PropByID(id); ok {
			kind = logging.EntityKindProp
		} else if _, ok := ex.after.Entities.GroundItemByID(id); ok {
			kind = logging.EntityKindItem
		} else if _, ok := ex.before.Entities.ActorByID(id); ok {
			kind = logging.EntityKindNPC
		} else if _, ok := ex.before.Entities.PropByID(id); ok {
			kind = logging.EntityKindProp
		} else if _, ok := ex.before.Entities.GroundItemByID(id); ok {
			kind = logging.EntityKindItem
		}
	}
	return logging.EntityRef{ID: formatID(id), Kind: kind}
}

func actorPosition(s *state.GameState, id state.EntityID) (state.Position, bool) {
	actor, ok := s.Entities.ActorByID(id)
	if !ok || !actor.Position.Valid {
		return state.Position{}, false
	}
	return actor.Position.Pos, true
}

func formatID(id state.EntityID) string {
	return strconv.FormatUint(uint64(id), 10)
}
