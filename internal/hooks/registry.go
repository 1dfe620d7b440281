// Package hooks runs the post-execution cascade: registered hooks inspect the
// delta of a committed action and generate follow-up system actions, which
// execute through the same engine and may trigger chained hooks in turn. The
// cascade is depth-bounded so a cycle cannot run away.
package hooks

import (
	"fmt"
	"sort"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/delta"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
)

// Criticality decides what a failed hook action does to the cascade.
type Criticality int

const (
	// CriticalityOptional failures are logged at debug and ignored.
	CriticalityOptional Criticality = iota
	// CriticalityImportant failures are logged at warn; the cascade
	// continues and earlier effects stand.
	CriticalityImportant
	// CriticalityCritical failures abort the cascade with an error.
	CriticalityCritical
)

// String returns the display name for the criticality level.
func (c Criticality) String() string {
	switch c {
	case CriticalityOptional:
		return "optional"
	case CriticalityImportant:
		return "important"
	case CriticalityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Context is what a hook sees when deciding whether to fire: the delta being
// reacted to, the state snapshots around it, and the oracle environment.
type Context struct {
	Delta  delta.StateDelta
	Before *state.GameState
	After  *state.GameState
	Env    oracle.Env
}

// Hook reacts to a committed delta by generating follow-up actions. Root
// hooks run against every externally submitted action's delta; chained hooks
// run only when named in a parent's Next list.
type Hook struct {
	Name        string
	Priority    int
	Root        bool
	Criticality Criticality
	// ShouldTrigger inspects the context; a false return skips the hook.
	ShouldTrigger func(ctx Context) bool
	// CreateActions produces the follow-up actions, executed in order.
	CreateActions func(ctx Context) []action.Action
	// Next names the hooks that react to this hook's own deltas.
	Next []string
}

// Registry holds the validated hook set. Roots are kept sorted by
// (Priority, Name) so cascade order is deterministic.
type Registry struct {
	hooks map[string]Hook
	roots []Hook
}

// BuildRegistry validates the hook set: names must be unique and non-empty,
// trigger and action functions present, and every Next reference must
// resolve. Dangling references fail here rather than mid-cascade.
func BuildRegistry(hooks []Hook) (*Registry, error) {
	byName := make(map[string]Hook, len(hooks))
	for _, hook := range hooks {
		if hook.Name == "" {
			return nil, fmt.Errorf("hooks: hook with empty name")
		}
		if _, dup := byName[hook.Name]; dup {
			return nil, fmt.Errorf("hooks: duplicate hook %q", hook.Name)
		}
		if hook.ShouldTrigger == nil {
			return nil, fmt.Errorf("hooks: hook %q has no trigger", hook.Name)
		}
		if hook.CreateActions == nil {
			return nil, fmt.Errorf("hooks: hook %q has no action factory", hook.Name)
		}
		byName[hook.Name] = hook
	}
	for _, hook := range hooks {
		for _, next := range hook.Next {
			if _, ok := byName[next]; !ok {
				return nil, fmt.Errorf("hooks: hook %q chains to unknown hook %q", hook.Name, next)
			}
		}
	}

	var roots []Hook
	for _, hook := range hooks {
		if hook.Root {
			roots = append(roots, hook)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Priority != roots[j].Priority {
			return roots[i].Priority < roots[j].Priority
		}
		return roots[i].Name < roots[j].Name
	})

	return &Registry{hooks: byName, roots: roots}, nil
}

// Hook resolves a hook by name.
func (r *Registry) Hook(name string) (Hook, bool) {
	hook, ok := r.hooks[name]
	return hook, ok
}

// Roots returns the root hooks in cascade order.
func (r *Registry) Roots() []Hook {
	return r.roots
}
