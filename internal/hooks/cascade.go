package hooks

import (
	"errors"
	"fmt"

	charmlog "github.com/charmbracelet/log"

	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/engine"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// ErrDepthExceeded aborts a cascade whose chain grew past the configured
// bound. It always propagates, regardless of hook criticality.
var ErrDepthExceeded = errors.New("hooks: cascade depth exceeded")

// DefaultMaxDepth bounds chains generously; well-formed cascades stay far
// below it.
const DefaultMaxDepth = 8

// Cascade executes hook-generated actions against an engine, feeding each
// resulting delta to the hooks chained behind the one that produced it.
type Cascade struct {
	registry *Registry
	engine   *engine.Engine
	maxDepth int
	logger   *charmlog.Logger
}

// NewCascade wires a registry to an engine. A non-positive maxDepth selects
// DefaultMaxDepth; a nil logger silences hook diagnostics.
func NewCascade(registry *Registry, eng *engine.Engine, maxDepth int, logger *charmlog.Logger) *Cascade {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = charmlog.New(nil)
	}
	return &Cascade{
		registry: registry,
		engine:   eng,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// Run reacts to the delta of a committed action. Before is the state snapshot
// the action started from. The returned deltas are every hook-generated
// transition that committed, in execution order; on error the engine may hold
// partial cascade effects and the caller decides whether to keep or discard
// its staged state.
func (c *Cascade) Run(trigger delta.StateDelta, before *state.GameState) ([]delta.StateDelta, error) {
	var out []delta.StateDelta
	err := c.runHooks(c.registry.Roots(), trigger, before, 1, &out)
	return out, err
}

func (c *Cascade) runHooks(hooks []Hook, trigger delta.StateDelta, before *state.GameState, depth int, out *[]delta.StateDelta) error {
	for _, hook := range hooks {
		ctx := Context{
			Delta:  trigger,
			Before: before,
			After:  c.engine.State(),
			Env:    c.engine.Env(),
		}
		if !hook.ShouldTrigger(ctx) {
			continue
		}
		if depth > c.maxDepth {
			return fmt.Errorf("%w: hook %q at depth %d", ErrDepthExceeded, hook.Name, depth)
		}
		for _, act := range hook.CreateActions(ctx) {
			pre := c.engine.Snapshot()
			d, err := c.engine.Execute(act)
			if err != nil {
				switch hook.Criticality {
				case CriticalityCritical:
					return fmt.Errorf("hooks: %s: %s: %w", hook.Name, act.Kind, err)
				case CriticalityImportant:
					c.logger.Warn("hook action failed",
						"hook", hook.Name, "action", act.Kind.String(), "error", err)
				default:
					c.logger.Debug("hook action failed",
						"hook", hook.Name, "action", act.Kind.String(), "error", err)
				}
				continue
			}
			*out = append(*out, d)
			if len(hook.Next) == 0 {
				continue
			}
			next := make([]Hook, 0, len(hook.Next))
			for _, name := range hook.Next {
				chained, ok := c.registry.Hook(name)
				if !ok {
					// Unreachable after BuildRegistry validation.
					return fmt.Errorf("hooks: %s chains to unknown hook %q", hook.Name, name)
				}
				next = append(next, chained)
			}
			if err := c.runHooks(next, d, pre, depth+1, out); err != nil {
				return err
			}
		}
	}
	return nil
}
