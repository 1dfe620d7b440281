package hooks

import (
	"sort"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

// Builtin hook names.
const (
	HookActionCost       = "action_cost"
	HookActivationRadius = "activation_radius"
	HookDeathCheck       = "death_check"
	HookOnDeath          = "on_death"
)

// Builtins returns the standard hook set: turn-cost charging, activation
// radius maintenance, and death cleanup. The set is valid input for
// BuildRegistry as-is; callers may append their own hooks before building.
func Builtins() []Hook {
	return []Hook{
		actionCostHook(),
		activationRadiusHook(),
		deathCheckHook(),
		onDeathHook(),
	}
}

// actionCostHook charges the acting character its speed-scaled turn cost
// after every character action. Charging must succeed; a scheduling gap here
// would stall the turn order.
func actionCostHook() Hook {
	return Hook{
		Name:        HookActionCost,
		Priority:    10,
		Root:        true,
		Criticality: CriticalityCritical,
		ShouldTrigger: func(ctx Context) bool {
			return !ctx.Delta.Action.Kind.IsSystem()
		},
		CreateActions: func(ctx Context) []action.Action {
			act := ctx.Delta.Action
			base := ctx.Env.Rules.Rules().BaseCost(act.Kind)
			scalar := 100
			if actor, ok := ctx.After.Entities.ActorByID(act.Actor); ok {
				scalar = actor.SpeedScalar()
			}
			cost := state.Tick(stats.ScaleCost(uint64(base), scalar))
			return []action.Action{action.NewActionCost(act.Actor, cost)}
		},
	}
}

// activationRadiusHook keeps the active set consistent with the activation
// radius around the player: NPCs entering it wake, NPCs leaving it go
// dormant. Fires on any move that changed an actor position, since an NPC
// stepping across the boundary shifts its own status just as a player move
// does.
func activationRadiusHook() Hook {
	return Hook{
		Name:        HookActivationRadius,
		Priority:    20,
		Root:        true,
		Criticality: CriticalityImportant,
		ShouldTrigger: func(ctx Context) bool {
			if ctx.Delta.Action.Kind != action.KindMove {
				return false
			}
			if patch := ctx.Delta.Entities.Player; patch != nil && patch.Position.Changed {
				return true
			}
			for _, patch := range ctx.Delta.Entities.NPCs.Updated {
				if patch.Position.Changed {
					return true
				}
			}
			return false
		},
		CreateActions: func(ctx Context) []action.Action {
			player := ctx.After.Entities.Player
			if !player.Position.Valid {
				return nil
			}
			radius := ctx.Env.Rules.Rules().ActivationRadius

			type pending struct {
				id   state.EntityID
				wake bool
			}
			var changes []pending
			for i := range ctx.After.Entities.NPCs {
				npc := &ctx.After.Entities.NPCs[i]
				if !npc.Position.Valid {
					continue
				}
				inside := state.Chebyshev(player.Position.Pos, npc.Position.Pos) <= radius
				active := ctx.After.Turn.IsActive(npc.ID)
				switch {
				case inside && !active && npc.Alive():
					changes = append(changes, pending{id: npc.ID, wake: true})
				case !inside && active:
					changes = append(changes, pending{id: npc.ID, wake: false})
				}
			}
			sort.Slice(changes, func(i, j int) bool { return changes[i].id < changes[j].id })

			actions := make([]action.Action, 0, len(changes))
			for _, change := range changes {
				if change.wake {
					actions = append(actions, action.NewActivation(change.id))
				} else {
					actions = append(actions, action.NewDeactivate(change.id))
				}
			}
			return actions
		},
	}
}

// deathCheckHook deactivates actors whose health reached zero during the
// triggering action, then hands each deactivation delta to on_death for map
// cleanup.
func deathCheckHook() Hook {
	return Hook{
		Name:        HookDeathCheck,
		Priority:    30,
		Root:        true,
		Criticality: CriticalityCritical,
		Next:        []string{HookOnDeath},
		ShouldTrigger: func(ctx Context) bool {
			return len(newlyDead(ctx)) > 0
		},
		CreateActions: func(ctx Context) []action.Action {
			dead := newlyDead(ctx)
			actions := make([]action.Action, 0, len(dead))
			for _, id := range dead {
				actions = append(actions, action.NewDeactivate(id))
			}
			return actions
		},
	}
}

// onDeathHook is chained-only: it reacts to a death_check deactivation by
// clearing the corpse from the map.
func onDeathHook() Hook {
	return Hook{
		Name:        HookOnDeath,
		Priority:    0,
		Root:        false,
		Criticality: CriticalityCritical,
		ShouldTrigger: func(ctx Context) bool {
			return ctx.Delta.Action.Kind == action.KindDeactivate && ctx.Delta.Action.Deact != nil
		},
		CreateActions: func(ctx Context) []action.Action {
			return []action.Action{action.NewRemoveFromWorld(ctx.Delta.Action.Deact.Target)}
		},
	}
}

// newlyDead lists actors alive before the triggering action and dead after
// it, in ascending id order. Only actors whose resources changed in the delta
// are considered.
func newlyDead(ctx Context) []state.EntityID {
	var dead []state.EntityID

	check := func(id state.EntityID) {
		before, ok := ctx.Before.Entities.ActorByID(id)
		if !ok || !before.Alive() {
			return
		}
		after, ok := ctx.After.Entities.ActorByID(id)
		if !ok || after.Alive() {
			return
		}
		dead = append(dead, id)
	}

	if patch := ctx.Delta.Entities.Player; patch != nil && patch.Resources.Changed {
		check(patch.ID)
	}
	for _, patch := range ctx.Delta.Entities.NPCs.Updated {
		if patch.Resources.Changed {
			check(patch.ID)
		}
	}

	sort.Slice(dead, func(i, j int) bool { return dead[i] < dead[j] })
	return dead
}
