// Package action defines the tagged union of executable actions. Character
// actions carry player/NPC intent; system actions are bookkeeping attributed
// to the reserved SYSTEM actor. The engine dispatches on Kind with an
// exhaustive switch, so adding a kind is a compile-visible change.
package action

import "github.com/0xwonj/dungeon-sub001/internal/state"

// Kind enumerates the supported action variants.
type Kind uint8

const (
	KindMove Kind = iota
	KindAttack
	KindUseItem
	KindInteract
	KindWait

	KindPrepareTurn
	KindActionCost
	KindActivation
	KindDeactivate
	KindRemoveFromWorld
)

// String returns the wire name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindAttack:
		return "attack"
	case KindUseItem:
		return "use_item"
	case KindInteract:
		return "interact"
	case KindWait:
		return "wait"
	case KindPrepareTurn:
		return "prepare_turn"
	case KindActionCost:
		return "action_cost"
	case KindActivation:
		return "activation"
	case KindDeactivate:
		return "deactivate"
	case KindRemoveFromWorld:
		return "remove_from_world"
	default:
		return "unknown"
	}
}

// IsSystem reports whether the kind belongs to the system family.
func (k Kind) IsSystem() bool {
	return k >= KindPrepareTurn
}

// MoveParams targets an adjacent tile.
type MoveParams struct {
	To state.Position `json:"to"`
}

// AttackParams identifies a target actor and the ability used.
type AttackParams struct {
	Target  state.EntityID `json:"target"`
	Ability string         `json:"ability"`
}

// UseItemParams identifies the inventory item consumed.
type UseItemParams struct {
	Item state.ItemID `json:"item"`
}

// InteractParams identifies the prop acted on.
type InteractParams struct {
	Prop state.EntityID `json:"prop"`
}

// ActionCostParams pushes an actor's next eligibility into the future. Cost
// is precomputed (already speed-scaled) by the caller.
type ActionCostParams struct {
	Target state.EntityID `json:"target"`
	Cost   state.Tick     `json:"cost"`
}

// ActivationParams adds an actor to the active set.
type ActivationParams struct {
	Target state.EntityID `json:"target"`
}

// DeactivateParams removes an actor from the active set.
type DeactivateParams struct {
	Target state.EntityID `json:"target"`
}

// RemoveParams clears an entity from the map.
type RemoveParams struct {
	Target state.EntityID `json:"target"`
}

// Action is the tagged union submitted to the engine. Exactly the params
// pointer matching Kind is set.
type Action struct {
	Kind  Kind           `json:"kind"`
	Actor state.EntityID `json:"actor"`

	Move     *MoveParams       `json:"move,omitempty"`
	Attack   *AttackParams     `json:"attack,omitempty"`
	UseItem  *UseItemParams    `json:"useItem,omitempty"`
	Interact *InteractParams   `json:"interact,omitempty"`
	Cost     *ActionCostParams `json:"cost,omitempty"`
	Activate *ActivationParams `json:"activate,omitempty"`
	Deact    *DeactivateParams `json:"deactivate,omitempty"`
	Remove   *RemoveParams     `json:"remove,omitempty"`
}

// IsSystem reports whether this is a system-family action.
func (a Action) IsSystem() bool {
	return a.Kind.IsSystem()
}

// NewMove builds a character move action.
func NewMove(actor state.EntityID, to state.Position) Action {
	return Action{Kind: KindMove, Actor: actor, Move: &MoveParams{To: to}}
}

// NewAttack builds a character attack action.
func NewAttack(actor, target state.EntityID, ability string) Action {
	return Action{Kind: KindAttack, Actor: actor, Attack: &AttackParams{Target: target, Ability: ability}}
}

// NewUseItem builds a character item-use action.
func NewUseItem(actor state.EntityID, item state.ItemID) Action {
	return Action{Kind: KindUseItem, Actor: actor, UseItem: &UseItemParams{Item: item}}
}

// NewInteract builds a character interact action.
func NewInteract(actor, prop state.EntityID) Action {
	return Action{Kind: KindInteract, Actor: actor, Interact: &InteractParams{Prop: prop}}
}

// NewWait builds the no-op character action.
func NewWait(actor state.EntityID) Action {
	return Action{Kind: KindWait, Actor: actor}
}

// NewPrepareTurn builds the system action that selects the next actor.
func NewPrepareTurn() Action {
	return Action{Kind: KindPrepareTurn, Actor: state.SystemActorID}
}

// NewActionCost builds the system action that charges turn cost.
func NewActionCost(target state.EntityID, cost state.Tick) Action {
	return Action{Kind: KindActionCost, Actor: state.SystemActorID, Cost: &ActionCostParams{Target: target, Cost: cost}}
}

// NewActivation builds the system action that wakes an actor.
func NewActivation(target state.EntityID) Action {
	return Action{Kind: KindActivation, Actor: state.SystemActorID, Activate: &ActivationParams{Target: target}}
}

// NewDeactivate builds the system action that retires an actor from
// scheduling.
func NewDeactivate(target state.EntityID) Action {
	return Action{Kind: KindDeactivate, Actor: state.SystemActorID, Deact: &DeactivateParams{Target: target}}
}

// NewRemoveFromWorld builds the system action that clears an entity from the
// map.
func NewRemoveFromWorld(target state.EntityID) Action {
	return Action{Kind: KindRemoveFromWorld, Actor: state.SystemActorID, Remove: &RemoveParams{Target: target}}
}
