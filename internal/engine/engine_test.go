package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/0xwonj/dungeon-sub001/internal/action"
	"github.com/0xwonj/dungeon-sub001/internal/oracle"
	"github.com/0xwonj/dungeon-sub001/internal/state"
	"github.com/0xwonj/dungeon-sub001/stats"
)

type gridStub struct {
	width, height int
	walls         map[state.Position]bool
}

func (g gridStub) InBounds(pos state.Position) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

func (g gridStub) Passable(pos state.Position) bool {
	return g.InBounds(pos) && !g.walls[pos]
}

type itemStub map[state.ItemID]oracle.ItemDefinition

func (m itemStub) Item(id state.ItemID) (oracle.ItemDefinition, bool) {
	def, ok := m[id]
	return def, ok
}

type ruleStub struct{ rules oracle.Ruleset }

func (r ruleStub) Rules() oracle.Ruleset { return r.rules }

type npcStub struct{}

func (npcStub) Template(string) (oracle.NPCTemplate, bool) {
	return oracle.NPCTemplate{}, false
}

func testEnv() oracle.Env {
	return oracle.Env{
		Map: gridStub{width: 10, height: 10, walls: map[state.Position]bool{
			{X: 2, Y: 1}: true,
		}},
		Items: itemStub{
			"potion": {ID: "potion", Kind: oracle.ItemConsumable, Heal: 8},
			"sword":  {ID: "sword", Kind: oracle.ItemWeapon, Slot: state.EquipSlotWeapon, Damage: 2},
		},
		Rules: ruleStub{rules: oracle.Ruleset{
			ActivationRadius: 2,
			WakeDelay:        10,
			MoveCost:         100,
			AttackCost:       120,
			UseItemCost:      80,
			InteractCost:     80,
			WaitCost:         50,
			HealthThresholds: []int{50, 25},
			Abilities: map[string]oracle.AbilityRule{
				"strike": {ID: "strike", Range: 1, FocusCost: 1},
				"lunge":  {ID: "lunge", Range: 2, FocusCost: 2, Bonus: 2, Cooldown: 200},
			},
		}},
		NPCs: npcStub{},
	}
}

func buildActor(id state.EntityID, archetype stats.Archetype, pos state.Position) state.Actor {
	derived := stats.DefaultDerived(archetype)
	return state.Actor{
		ID:        id,
		Archetype: archetype,
		Position:  state.SomePosition(pos),
		Stats:     stats.DefaultBase(archetype),
		Bonuses:   derived,
		Resources: state.ResourceSet{
			Health: derived[stats.DerivedMaxHealth],
			Mana:   derived[stats.DerivedMaxMana],
			Focus:  derived[stats.DerivedMaxFocus],
		},
		Abilities: []state.AbilityState{
			{ID: "strike", Enabled: true},
			{ID: "lunge", Enabled: true},
		},
	}
}

// testState builds the standard fixture: the player at (2,2) owning the turn,
// a skeleton at (3,2), a door at (2,3), and a chest at (1,2).
func testState() *state.GameState {
	s := state.NewGameState(buildActor(state.PlayerID, stats.ArchetypeAdventurer, state.Position{X: 2, Y: 2}))
	s.World.PlaceOccupant(state.Position{X: 2, Y: 2}, state.PlayerID)
	s.Entities.Player.ReadyAt = state.SomeTick(0)
	s.Turn.AddActive(state.PlayerID)
	s.Turn.Current = state.PlayerID

	skeleton := buildActor(2, stats.ArchetypeSkeleton, state.Position{X: 3, Y: 2})
	skeleton.ReadyAt = state.SomeTick(10)
	s.Entities.NPCs = append(s.Entities.NPCs, skeleton)
	s.World.PlaceOccupant(state.Position{X: 3, Y: 2}, 2)
	s.Turn.AddActive(2)

	s.Entities.Props = append(s.Entities.Props,
		state.Prop{ID: 3, Kind: state.PropDoor, Position: state.SomePosition(state.Position{X: 2, Y: 3})},
		state.Prop{ID: 4, Kind: state.PropChest, Position: state.SomePosition(state.Position{X: 1, Y: 2}),
			Contents: &state.ItemStack{Item: "potion", Quantity: 2}},
	)
	s.World.PlaceOccupant(state.Position{X: 2, Y: 3}, 3)
	s.World.PlaceOccupant(state.Position{X: 1, Y: 2}, 4)
	s.Entities.NextID = 5
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestMoveUpdatesPositionAndOccupancy(t *testing.T) {
	eng := New(testState(), testEnv())
	to := state.Position{X: 1, Y: 1}

	d, err := eng.Execute(action.NewMove(state.PlayerID, to))
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	s := eng.State()
	if s.Entities.Player.Position.Pos != to {
		t.Fatalf("player at %v, want %v", s.Entities.Player.Position.Pos, to)
	}
	if !s.World.Occupies(to, state.PlayerID) {
		t.Fatalf("destination occupancy missing player")
	}
	if s.World.Occupies(state.Position{X: 2, Y: 2}, state.PlayerID) {
		t.Fatalf("origin occupancy still holds player")
	}
	if d.Entities.Player == nil || !d.Entities.Player.Position.Changed {
		t.Fatalf("delta missing position change: %+v", d.Entities)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("invariants broken after move: %v", err)
	}
}

func TestMoveRejections(t *testing.T) {
	cases := []struct {
		name string
		act  action.Action
		want error
	}{
		{"not adjacent", action.NewMove(state.PlayerID, state.Position{X: 5, Y: 2}), ErrOutOfRange},
		{"wall", action.NewMove(state.PlayerID, state.Position{X: 2, Y: 1}), ErrImpassable},
		{"out of bounds", action.NewMove(state.PlayerID, state.Position{X: -1, Y: 2}), ErrOutOfBounds},
		{"occupied by living actor", action.NewMove(state.PlayerID, state.Position{X: 3, Y: 2}), ErrOccupied},
		{"closed door blocks", action.NewMove(state.PlayerID, state.Position{X: 2, Y: 3}), ErrOccupied},
		{"chest blocks", action.NewMove(state.PlayerID, state.Position{X: 1, Y: 2}), ErrOccupied},
		{"not current turn", action.NewMove(2, state.Position{X: 3, Y: 3}), ErrNotCurrentTurn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := New(testState(), testEnv())
			snapshot := mustJSON(t, eng.State())
			_, err := eng.Execute(tc.act)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if !IsValidation(err) {
				t.Fatalf("rejection not tagged as pre-validation: %v", err)
			}
			if after := mustJSON(t, eng.State()); after != snapshot {
				t.Fatalf("rejected action mutated state")
			}
		})
	}
}

func TestMoveThroughOpenDoor(t *testing.T) {
	s := testState()
	door, _ := s.Entities.PropByID(3)
	door.Activated = true
	eng := New(s, testEnv())
	if _, err := eng.Execute(action.NewMove(state.PlayerID, state.Position{X: 2, Y: 3})); err != nil {
		t.Fatalf("move through open door failed: %v", err)
	}
}

func TestMoveOntoDeadActor(t *testing.T) {
	s := testState()
	npc, _ := s.Entities.ActorByID(2)
	npc.Resources.Health = 0
	eng := New(s, testEnv())
	if _, err := eng.Execute(action.NewMove(state.PlayerID, state.Position{X: 3, Y: 2})); err != nil {
		t.Fatalf("move onto dead actor's tile failed: %v", err)
	}
}

func TestAttackAppliesDamageAndFocus(t *testing.T) {
	eng := New(testState(), testEnv())
	d, err := eng.Execute(action.NewAttack(state.PlayerID, 2, "strike"))
	if err != nil {
		t.Fatalf("attack failed: %v", err)
	}
	// Adventurer attack power 18, no weapon, strike bonus 0.
	npc, _ := eng.State().Entities.ActorByID(2)
	if npc.Resources.Health != 52 {
		t.Fatalf("target health = %d, want 52", npc.Resources.Health)
	}
	player := &eng.State().Entities.Player
	if player.Resources.Focus != 27 {
		t.Fatalf("attacker focus = %d, want 27", player.Resources.Focus)
	}
	updated := d.Entities.NPCs.Updated
	if len(updated) != 1 || !updated[0].Resources.Changed {
		t.Fatalf("delta missing target resource change: %+v", d.Entities.NPCs)
	}
}

func TestAttackWithWeaponAndBonus(t *testing.T) {
	s := testState()
	s.Entities.Player.Equipment = []state.EquippedItem{{Slot: state.EquipSlotWeapon, Item: "sword"}}
	eng := New(s, testEnv())
	d, err := eng.Execute(action.NewAttack(state.PlayerID, 2, "lunge"))
	if err != nil {
		t.Fatalf("lunge failed: %v", err)
	}
	// 18 attack power + 2 ability bonus + 2 weapon damage.
	npc, _ := eng.State().Entities.ActorByID(2)
	if npc.Resources.Health != 48 {
		t.Fatalf("target health = %d, want 48", npc.Resources.Health)
	}
	ability, _ := eng.State().Entities.Player.Ability("lunge")
	if ability.ReadyAt != 200 {
		t.Fatalf("lunge cooldown ready_at = %d, want 200", ability.ReadyAt)
	}
	// The committed delta carries the cooldown alongside the focus spend.
	patch := d.Entities.Player
	if patch == nil || !patch.Abilities.Changed {
		t.Fatalf("delta missing attacker ability change: %+v", patch)
	}
	for _, st := range patch.Abilities.Value {
		if st.ID == "lunge" && st.ReadyAt != 200 {
			t.Fatalf("patched lunge ready_at = %d, want 200", st.ReadyAt)
		}
	}

	// Cooling ability is rejected until the clock catches up.
	if _, err := eng.Execute(action.NewAttack(state.PlayerID, 2, "lunge")); !errors.Is(err, ErrAbilityLocked) {
		t.Fatalf("cooling ability err = %v, want %v", err, ErrAbilityLocked)
	}
}

func TestAttackRejections(t *testing.T) {
	s := testState()
	far := buildActor(6, stats.ArchetypeRat, state.Position{X: 8, Y: 8})
	s.Entities.NPCs = append(s.Entities.NPCs, far)
	s.World.PlaceOccupant(state.Position{X: 8, Y: 8}, 6)
	s.Entities.NextID = 7

	eng := New(s, testEnv())
	if _, err := eng.Execute(action.NewAttack(state.PlayerID, 6, "strike")); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("out of range err = %v, want %v", err, ErrOutOfRange)
	}

	npc, _ := s.Entities.ActorByID(2)
	npc.Resources.Health = 0
	if _, err := eng.Execute(action.NewAttack(state.PlayerID, 2, "strike")); !errors.Is(err, ErrTargetDead) {
		t.Fatalf("dead target err = %v, want %v", err, ErrTargetDead)
	}

	s.Entities.Player.Resources.Focus = 0
	npc.Resources.Health = 10
	if _, err := eng.Execute(action.NewAttack(state.PlayerID, 2, "strike")); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("no focus err = %v, want %v", err, ErrInsufficient)
	}
}

func TestUseItemHealsAndClamps(t *testing.T) {
	s := testState()
	s.Entities.Player.Inventory.Add("potion", 2)
	s.Entities.Player.Resources.Health = 95 // max is 100
	eng := New(s, testEnv())

	if _, err := eng.Execute(action.NewUseItem(state.PlayerID, "potion")); err != nil {
		t.Fatalf("use item failed: %v", err)
	}
	player := &eng.State().Entities.Player
	if player.Resources.Health != 100 {
		t.Fatalf("health = %d, want clamp at 100", player.Resources.Health)
	}
	if got := player.Inventory.Quantity("potion"); got != 1 {
		t.Fatalf("potions remaining = %d, want 1", got)
	}

	if _, err := eng.Execute(action.NewUseItem(state.PlayerID, "sword")); !errors.Is(err, ErrNotConsumable) {
		t.Fatalf("weapon consumption err = %v, want %v", err, ErrNotConsumable)
	}
	if _, err := eng.Execute(action.NewUseItem(state.PlayerID, "scroll")); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("absent item err = %v, want %v", err, ErrInsufficient)
	}
}

func TestInteractDoorTogglesOverlay(t *testing.T) {
	eng := New(testState(), testEnv())
	doorPos := state.Position{X: 2, Y: 3}

	if _, err := eng.Execute(action.NewInteract(state.PlayerID, 3)); err != nil {
		t.Fatalf("open door failed: %v", err)
	}
	if eng.State().World.Overlays[doorPos] != state.OverlayDoorOpen {
		t.Fatalf("door overlay missing after open")
	}

	if _, err := eng.Execute(action.NewInteract(state.PlayerID, 3)); err != nil {
		t.Fatalf("close door failed: %v", err)
	}
	if _, present := eng.State().World.Overlays[doorPos]; present {
		t.Fatalf("door overlay still present after close")
	}
}

func TestInteractChestSpillsContents(t *testing.T) {
	eng := New(testState(), testEnv())
	d, err := eng.Execute(action.NewInteract(state.PlayerID, 4))
	if err != nil {
		t.Fatalf("open chest failed: %v", err)
	}
	s := eng.State()
	chest, _ := s.Entities.PropByID(4)
	if !chest.Activated {
		t.Fatalf("chest not marked looted")
	}
	if len(s.Entities.GroundItems) != 1 {
		t.Fatalf("ground items = %d, want 1", len(s.Entities.GroundItems))
	}
	spilled := s.Entities.GroundItems[0]
	if spilled.Item != "potion" || spilled.Quantity != 2 || spilled.Position.Pos != chest.Position.Pos {
		t.Fatalf("spilled stack = %+v", spilled)
	}
	if !s.World.Occupies(chest.Position.Pos, spilled.ID) {
		t.Fatalf("spilled stack missing from occupancy")
	}
	if len(d.Entities.GroundItems.Added) != 1 {
		t.Fatalf("delta missing ground item add: %+v", d.Entities.GroundItems)
	}

	// Second interaction is rejected: the chest is spent.
	if _, err := eng.Execute(action.NewInteract(state.PlayerID, 4)); err == nil {
		t.Fatalf("looted chest accepted a second interact")
	}
}

func TestWaitProducesNonceOnlyDelta(t *testing.T) {
	eng := New(testState(), testEnv())
	d, err := eng.Execute(action.NewWait(state.PlayerID))
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if !d.Turn.Nonce.Changed {
		t.Fatalf("wait did not bump the nonce")
	}
	if !d.Entities.IsEmpty() || !d.World.IsEmpty() {
		t.Fatalf("wait changed entities or world: %+v", d)
	}
}

func TestSystemActionGuards(t *testing.T) {
	eng := New(testState(), testEnv())
	if _, err := eng.Execute(action.Action{Kind: action.KindActivation, Actor: state.PlayerID,
		Activate: &action.ActivationParams{Target: 2}}); !errors.Is(err, ErrSystemOnly) {
		t.Fatalf("character submitting system action err = %v, want %v", err, ErrSystemOnly)
	}
	if _, err := eng.Execute(action.Action{Kind: action.KindMove, Actor: state.SystemActorID,
		Move: &action.MoveParams{To: state.Position{X: 1, Y: 1}}}); !errors.Is(err, ErrCharacterOnly) {
		t.Fatalf("system submitting character action err = %v, want %v", err, ErrCharacterOnly)
	}
	if _, err := eng.Execute(action.Action{Kind: action.KindMove, Actor: state.PlayerID}); !errors.Is(err, ErrMissingParams) {
		t.Fatalf("missing params err = %v, want %v", err, ErrMissingParams)
	}
}

func TestNonceIncrementsPerCommit(t *testing.T) {
	eng := New(testState(), testEnv())
	for i := 1; i <= 3; i++ {
		if _, err := eng.Execute(action.NewWait(state.PlayerID)); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
		if got := eng.State().Turn.Nonce; got != uint64(i) {
			t.Fatalf("nonce = %d after %d commits", got, i)
		}
	}
	// A rejected action must not consume a nonce.
	eng.Execute(action.NewMove(state.PlayerID, state.Position{X: 9, Y: 9}))
	if got := eng.State().Turn.Nonce; got != 3 {
		t.Fatalf("nonce = %d after rejection, want 3", got)
	}
}
