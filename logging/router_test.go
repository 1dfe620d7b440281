package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/0xwonj/dungeon-sub001/logging"
	"github.com/0xwonj/dungeon-sub001/logging/sinks"
)

func event(kind logging.EventType, severity logging.Severity, tick uint64) logging.Event {
	return logging.Event{
		Type:     kind,
		Tick:     tick,
		Time:     time.Unix(int64(tick), 0),
		Actor:    logging.EntityRef{ID: "1", Kind: logging.EntityKindPlayer},
		Severity: severity,
	}
}

func TestRouterDeliversInOrder(t *testing.T) {
	router := logging.NewRouter(logging.Config{QueueSize: 16}, nil)
	memory := sinks.NewMemory(0)
	if err := router.Attach(memory); err != nil {
		t.Fatalf("attach: %v", err)
	}

	ctx := context.Background()
	for i := uint64(1); i <= 3; i++ {
		router.Publish(ctx, event("turn.ready_at_updated", logging.SeverityInfo, i))
	}
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 3 {
		t.Fatalf("delivered = %d, want 3", len(events))
	}
	for i, got := range events {
		if got.Tick != uint64(i+1) {
			t.Fatalf("events[%d].Tick = %d, want %d", i, got.Tick, i+1)
		}
	}
}

func TestRouterSeverityFilter(t *testing.T) {
	router := logging.NewRouter(logging.Config{MinSeverity: logging.SeverityWarn}, nil)
	memory := sinks.NewMemory(0)
	if err := router.Attach(memory); err != nil {
		t.Fatalf("attach: %v", err)
	}

	ctx := context.Background()
	router.Publish(ctx, event("a", logging.SeverityDebug, 1))
	router.Publish(ctx, event("b", logging.SeverityWarn, 2))
	router.Publish(ctx, event("c", logging.SeverityError, 3))
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	events := memory.Events()
	if len(events) != 2 {
		t.Fatalf("delivered = %d, want 2 at or above warn", len(events))
	}
}

func TestRouterRejectsDuplicateSink(t *testing.T) {
	router := logging.NewRouter(logging.Config{}, nil)
	if err := router.Attach(sinks.NewMemory(0)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := router.Attach(sinks.NewMemory(0)); err == nil {
		t.Fatalf("duplicate sink name accepted")
	}
	router.Close(context.Background())
}

func TestRouterCloseIsIdempotent(t *testing.T) {
	router := logging.NewRouter(logging.Config{}, nil)
	ctx := context.Background()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := router.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// Publishing after close is a silent no-op.
	router.Publish(ctx, event("late", logging.SeverityInfo, 1))
}

func TestMemorySinkRetentionLimit(t *testing.T) {
	memory := sinks.NewMemory(2)
	ctx := context.Background()
	for i := uint64(1); i <= 4; i++ {
		if err := memory.Deliver(ctx, event("x", logging.SeverityInfo, i)); err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}
	events := memory.Events()
	if len(events) != 2 || events[0].Tick != 3 || events[1].Tick != 4 {
		t.Fatalf("retained = %+v, want ticks 3 and 4", events)
	}
}
