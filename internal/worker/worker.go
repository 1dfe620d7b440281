// Package worker owns the authoritative game state. A single goroutine
// serializes every command; callers talk to it over channels and never touch
// the state directly. Each submitted action runs against a cloned working
// state together with its full hook cascade, and the clone replaces the
// authoritative state only when the whole attempt succeeds.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/engine"
	"github.com/0xwonj/dungeon-sub001/internal/events"
	"github.com/0xwonj/dungeon-sub001/internal/hooks"
	"github.com/0xwonj/dungeon-sub001/internal/journal"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/logging"
)

// ErrStopped is returned for commands submitted after shutdown.
var ErrStopped = errors.New("worker: stopped")

// Config sizes the worker.
type Config struct {
	// QueueSize bounds pending commands. Zero selects a default.
	QueueSize int
	// MaxCascadeDepth bounds hook chains. Zero selects the hooks default.
	MaxCascadeDepth int
}

const defaultQueueSize = 64

// Result reports one committed action: the delta of the action itself plus
// every cascade-generated delta, in execution order, and the events derived
// from them.
type Result struct {
	Deltas []delta.StateDelta
	Events []logging.Event
}

type commandKind uint8

const (
	cmdExecute commandKind = iota
	cmdSnapshot
	cmdStats
)

type command struct {
	kind  commandKind
	act   action.Action
	reply chan reply
}

type reply struct {
	result   Result
	snapshot *state.GameState
	stats    journal.Stats
	err      error
}

// Worker drives a session. Construct with New, start with Start, stop with
// Stop; every other method is safe for concurrent use.
type Worker struct {
	cfg       Config
	env       oracle.Env
	registry  *hooks.Registry
	journal   *journal.Journal
	staging   *journal.Staging
	publisher logging.Publisher
	clock     logging.Clock
	logger    *charmlog.Logger

	commands chan command
	stopOnce sync.Once
	stopping chan struct{}
	done     chan struct{}

	// state is touched only by the run goroutine.
	state *state.GameState
}

// New builds a worker around an initial state. The worker takes ownership of
// the state pointer. Nil publisher, clock, and logger fall back to no-ops.
func New(initial *state.GameState, env oracle.Env, registry *hooks.Registry, jnl *journal.Journal, publisher logging.Publisher, clock logging.Clock, logger *charmlog.Logger, cfg Config) *Worker {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if clock == nil {
		clock = logging.SystemClock{}
	}
	if logger == nil {
		logger = charmlog.New(nil)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	session := uuid.Nil
	if jnl != nil {
		session = jnl.Session()
	}
	return &Worker{
		cfg:       cfg,
		env:       env,
		registry:  registry,
		journal:   jnl,
		staging:   journal.NewStaging(session),
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		commands:  make(chan command, cfg.QueueSize),
		stopping:  make(chan struct{}),
		done:      make(chan struct{}),
		state:     initial,
	}
}

// Start launches the command loop.
func (w *Worker) Start() {
	go w.run()
}

// Stop shuts the loop down and waits for it to drain.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopping) })
	<-w.done
}

// SubmitAction executes one action plus its cascade and commits the result.
// A validation or cascade failure leaves the authoritative state untouched.
func (w *Worker) SubmitAction(ctx context.Context, act action.Action) (Result, error) {
	rep, err := w.send(ctx, command{kind: cmdExecute, act: act})
	if err != nil {
		return Result{}, err
	}
	return rep.result, rep.err
}

// PrepareNext advances the scheduler to the next ready actor.
func (w *Worker) PrepareNext(ctx context.Context) (Result, error) {
	return w.SubmitAction(ctx, action.NewPrepareTurn())
}

// Activate wakes an actor inside the activation radius.
func (w *Worker) Activate(ctx context.Context, target state.EntityID) (Result, error) {
	return w.SubmitAction(ctx, action.NewActivation(target))
}

// Deactivate retires an actor from scheduling.
func (w *Worker) Deactivate(ctx context.Context, target state.EntityID) (Result, error) {
	return w.SubmitAction(ctx, action.NewDeactivate(target))
}

// Snapshot returns a deep copy of the authoritative state.
func (w *Worker) Snapshot(ctx context.Context) (*state.GameState, error) {
	rep, err := w.send(ctx, command{kind: cmdSnapshot})
	if err != nil {
		return nil, err
	}
	return rep.snapshot, rep.err
}

// JournalStats reports retention bookkeeping for the session journal.
func (w *Worker) JournalStats(ctx context.Context) (journal.Stats, error) {
	rep, err := w.send(ctx, command{kind: cmdStats})
	if err != nil {
		return journal.Stats{}, err
	}
	return rep.stats, rep.err
}

func (w *Worker) send(ctx context.Context, cmd command) (reply, error) {
	cmd.reply = make(chan reply, 1)
	select {
	case w.commands <- cmd:
	case <-w.stopping:
		return reply{}, ErrStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case rep := <-cmd.reply:
		return rep, nil
	case <-w.done:
		return reply{}, ErrStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stopping:
			w.drain()
			return
		case cmd := <-w.commands:
			w.handle(cmd)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case cmd := <-w.commands:
			cmd.reply <- reply{err: ErrStopped}
		default:
			return
		}
	}
}

func (w *Worker) handle(cmd command) {
	switch cmd.kind {
	case cmdExecute:
		result, err := w.execute(cmd.act)
		cmd.reply <- reply{result: result, err: err}
	case cmdSnapshot:
		cmd.reply <- reply{snapshot: w.state.Clone()}
	case cmdStats:
		var stats journal.Stats
		if w.journal != nil {
			stats = w.journal.Stats()
		}
		cmd.reply <- reply{stats: stats}
	default:
		cmd.reply <- reply{err: fmt.Errorf("worker: unknown command %d", cmd.kind)}
	}
}

// execute stages the attempt on a clone. The authoritative state is replaced
// only after the action and its entire cascade commit; any failure discards
// the clone.
func (w *Worker) execute(act action.Action) (Result, error) {
	before := w.state
	working := w.state.Clone()
	eng := engine.New(working, w.env)
	cascade := hooks.NewCascade(w.registry, eng, w.cfg.MaxCascadeDepth, w.logger)

	first, err := eng.Execute(act)
	if err != nil {
		w.logger.Debug("action rejected", "action", act.Kind.String(), "error", err)
		return Result{}, err
	}

	deltas := []delta.StateDelta{first}
	chained, err := cascade.Run(first, before)
	if err != nil {
		w.logger.Warn("cascade aborted, discarding attempt",
			"action", act.Kind.String(), "error", err)
		return Result{}, err
	}
	deltas = append(deltas, chained...)

	w.state = working
	now := w.clock.Now()

	rules := w.env.Rules.Rules()
	result := Result{Deltas: deltas}
	tick := before.Turn.Clock
	for _, d := range deltas {
		if d.Turn.Clock.Changed {
			tick = d.Turn.Clock.Value
		}
		nonce := uint64(0)
		if d.Turn.Nonce.Changed {
			nonce = d.Turn.Nonce.Value
		}
		w.staging.Append(nonce, tick, now, d.Action, d)
		result.Events = append(result.Events, events.Extract(d, before, w.state, rules, now)...)
	}
	if w.journal != nil {
		w.journal.Commit(w.staging.Drain(), w.state)
	} else {
		w.staging.Reset()
	}

	for _, event := range result.Events {
		w.publisher.Publish(context.Background(), event)
	}
	return result, nil
}
