package logging

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// Sink receives events from the router on a dedicated worker goroutine.
// Deliver must not block indefinitely; the router drops the oldest queued
// event when a sink falls behind.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
	Close(ctx context.Context) error
}

// Config sizes the per-sink queues.
type Config struct {
	// QueueSize is the per-sink buffer depth. Zero selects a default.
	QueueSize int
	// MinSeverity filters events below the threshold before queueing.
	MinSeverity Severity
}

const defaultQueueSize = 256

func (c Config) queueSize() int {
	if c.QueueSize <= 0 {
		return defaultQueueSize
	}
	return c.QueueSize
}

type sinkWorker struct {
	sink    Sink
	queue   chan Event
	done    chan struct{}
	dropped atomic.Uint64
}

// Router fans events out to named sinks. Each sink runs on its own goroutine
// with a bounded queue; when the queue is full the oldest event is dropped so
// the publisher never stalls the simulation worker.
type Router struct {
	cfg     Config
	logger  *charmlog.Logger
	mu      sync.RWMutex
	workers map[string]*sinkWorker
	closed  bool
}

// NewRouter builds an empty router. The logger records sink lifecycle and
// drop diagnostics; pass nil to silence them.
func NewRouter(cfg Config, logger *charmlog.Logger) *Router {
	if logger == nil {
		logger = charmlog.New(nil)
	}
	return &Router{
		cfg:     cfg,
		logger:  logger,
		workers: make(map[string]*sinkWorker),
	}
}

// Attach registers a sink and starts its delivery worker.
func (r *Router) Attach(sink Sink) error {
	if sink == nil {
		return fmt.Errorf("logging: nil sink")
	}
	name := sink.Name()
	if name == "" {
		return fmt.Errorf("logging: sink has empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("logging: router closed")
	}
	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("logging: sink %q already attached", name)
	}
	worker := &sinkWorker{
		sink:  sink,
		queue: make(chan Event, r.cfg.queueSize()),
		done:  make(chan struct{}),
	}
	r.workers[name] = worker
	go r.run(worker)
	r.logger.Debug("sink attached", "sink", name)
	return nil
}

// Publish implements Publisher. Events below the severity threshold are
// discarded; full queues shed their oldest entry.
func (r *Router) Publish(_ context.Context, event Event) {
	if event.Severity < r.cfg.MinSeverity {
		return
	}
	cloned := cloneEvent(event)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	for name, worker := range r.workers {
		select {
		case worker.queue <- cloned:
		default:
			select {
			case <-worker.queue:
				worker.dropped.Add(1)
			default:
			}
			select {
			case worker.queue <- cloned:
			default:
				worker.dropped.Add(1)
			}
			r.logger.Warn("sink queue full, dropping oldest",
				"sink", name, "dropped", worker.dropped.Load())
		}
	}
}

// Dropped reports how many events a sink has shed so far.
func (r *Router) Dropped(name string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	worker, ok := r.workers[name]
	if !ok {
		return 0
	}
	return worker.dropped.Load()
}

// Close stops accepting events, flushes the queues, and closes every sink.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	workers := make([]*sinkWorker, 0, len(r.workers))
	for _, worker := range r.workers {
		workers = append(workers, worker)
	}
	r.mu.Unlock()

	var firstErr error
	for _, worker := range workers {
		close(worker.queue)
		select {
		case <-worker.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := worker.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("logging: close sink %q: %w", worker.sink.Name(), err)
		}
	}
	return firstErr
}

func (r *Router) run(worker *sinkWorker) {
	defer close(worker.done)
	for event := range worker.queue {
		if err := worker.sink.Deliver(context.Background(), event); err != nil {
			r.logger.Warn("sink delivery failed", "sink", worker.sink.Name(), "error", err)
		}
	}
}
