package character

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/playfield"
	"github.com/oomph-ac/teesim/game/types"
)

// charIndex is a minimal CharacterAccessor for physics tests.
type charIndex map[types.EntityID]*Character

func (m charIndex) GetChar(id types.EntityID) (*Character, bool) {
	ch, ok := m[id]
	return ch, ok
}

var physRows = []string{
	"############",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"#          #",
	"############",
}

func physSetup() (charIndex, *Pipe) {
	coll := collision.NewFromRows(physRows)
	field := playfield.New(coll.Width(), coll.Height())
	chars := charIndex{}
	return chars, &Pipe{
		Collision: coll,
		Field:     field,
		Chars:     chars,
		Hooked:    NewHookedCharacters(),
	}
}

func addChar(chars charIndex, pipe *Pipe, id types.EntityID, pos mgl32.Vec2) *Character {
	ch := New(id, pipe.Field, pos)
	chars[id] = ch
	return ch
}

// stepPhysics runs one full physics tick for every character, in a fixed
// order, the way the world tick does.
func stepPhysics(pipe *Pipe, chs ...*Character) {
	pipe.CurTick++
	for _, ch := range chs {
		ch.PhysicsTick(true, pipe)
	}
	for _, ch := range chs {
		ch.PhysicsTickDeferred(pipe)
		ch.PhysicsMove(pipe)
		ch.PhysicsQuantize()
	}
}

// floor row 11 starts at y=352; a 28-unit box rests at y=337
const standY float32 = 337

func TestStandingIsStable(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{160, standY})

	for i := 0; i < 20; i++ {
		stepPhysics(pipe, ch)
	}
	pos := ch.Pos.Pos()
	if pos.X() != 160 || pos.Y() != standY {
		t.Fatalf("standing character drifted to %v", pos)
	}
	if ch.Core.Vel.Y() != 0 {
		t.Fatalf("standing character keeps vertical velocity %v", ch.Core.Vel)
	}
}

func TestJumpBudget(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{160, standY})
	stepPhysics(pipe, ch)

	// ground jump
	ch.Input.State.Jump = true
	stepPhysics(pipe, ch)
	if ch.Core.Vel.Y() > -13 {
		t.Fatalf("ground jump impulse missing, vel %v", ch.Core.Vel)
	}
	if ch.Core.Jumped&1 == 0 {
		t.Fatalf("jump key not latched: Jumped=%d", ch.Core.Jumped)
	}

	// release in the air, then the air jump
	ch.Input.State.Jump = false
	stepPhysics(pipe, ch)
	ch.Input.State.Jump = true
	stepPhysics(pipe, ch)
	if ch.Core.Vel.Y() != -12 {
		t.Fatalf("air jump impulse = %v, want -12", ch.Core.Vel.Y())
	}
	if ch.Core.JumpedTotal != 1 {
		t.Fatalf("JumpedTotal = %d, want 1", ch.Core.JumpedTotal)
	}
	if ch.Core.Jumped&2 == 0 {
		t.Fatalf("air jump not marked spent: Jumped=%d", ch.Core.Jumped)
	}

	// third press while airborne does nothing
	ch.Input.State.Jump = false
	stepPhysics(pipe, ch)
	before := ch.Core.Vel.Y()
	ch.Input.State.Jump = true
	stepPhysics(pipe, ch)
	if ch.Core.Vel.Y() <= before {
		t.Fatalf("third jump granted an impulse: %v -> %v", before, ch.Core.Vel.Y())
	}
	if ch.Core.JumpedTotal != 1 {
		t.Fatalf("JumpedTotal grew to %d", ch.Core.JumpedTotal)
	}
}

func TestCursorAngle(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{160, standY})

	// angle 0 points down the y axis; a cursor straight along x lands at
	// a quarter turn
	ch.Input.Cursor = mgl32.Vec2{1, 0}
	stepPhysics(pipe, ch)
	if ch.Core.Angle != 402 {
		t.Fatalf("angle for cursor (1,0) = %d, want 402", ch.Core.Angle)
	}

	ch.Input.Cursor = mgl32.Vec2{0, 1}
	stepPhysics(pipe, ch)
	if ch.Core.Angle != 0 {
		t.Fatalf("angle for cursor (0,1) = %d, want 0", ch.Core.Angle)
	}

	ch.Input.Cursor = mgl32.Vec2{0, -1}
	stepPhysics(pipe, ch)
	if ch.Core.Angle != 804 {
		t.Fatalf("angle for cursor (0,-1) = %d, want 804", ch.Core.Angle)
	}
}

func TestSingleJumpBudget(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{160, standY})
	ch.Core.Jumps = 1
	stepPhysics(pipe, ch)

	ch.Input.State.Jump = true
	stepPhysics(pipe, ch)
	if ch.Core.Vel.Y() > -13 {
		t.Fatalf("ground jump impulse missing, vel %v", ch.Core.Vel)
	}
	// a budget of one spends the air jump on the ground jump
	if ch.Core.Jumped&2 == 0 {
		t.Fatalf("air jump not spent: Jumped=%d", ch.Core.Jumped)
	}

	ch.Input.State.Jump = false
	stepPhysics(pipe, ch)
	before := ch.Core.Vel.Y()
	ch.Input.State.Jump = true
	stepPhysics(pipe, ch)
	if ch.Core.Vel.Y() <= before {
		t.Fatalf("air jump granted on a single budget: %v -> %v", before, ch.Core.Vel.Y())
	}
	if ch.Core.JumpedTotal != 0 {
		t.Fatalf("JumpedTotal = %d, want 0", ch.Core.JumpedTotal)
	}
}

func TestQueuedJumpConsumed(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{160, standY})
	stepPhysics(pipe, ch)

	// a click pressed and released between input samples arrives with the
	// key already up
	ch.QueuedInput.Jumps = 1
	stepPhysics(pipe, ch)
	if ch.Core.Vel.Y() > -13 {
		t.Fatalf("queued jump ignored, vel %v", ch.Core.Vel)
	}
	if ch.QueuedInput.Jumps != 0 {
		t.Fatalf("queued jumps not consumed: %d", ch.QueuedInput.Jumps)
	}

	// the key is up on the next tick, so the latch clears
	stepPhysics(pipe, ch)
	if ch.Core.Jumped&1 != 0 {
		t.Fatalf("jump latch stuck: Jumped=%d", ch.Core.Jumped)
	}
}

func TestHookGrabsWall(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{100, standY})
	stepPhysics(pipe, ch)

	ch.Input.State.Hook = true
	ch.QueuedInput.Hooks = 1
	ch.QueuedInput.HookCursor = mgl32.Vec2{1, 0}

	stepPhysics(pipe, ch)
	if ch.Hook.Kind != HookActive || ch.Hook.State != HookFlying {
		t.Fatalf("hook not launched: kind=%d state=%d", ch.Hook.Kind, ch.Hook.State)
	}

	grabbed := false
	for i := 0; i < 6; i++ {
		stepPhysics(pipe, ch)
		if ch.Hook.State == HookGrabbed {
			grabbed = true
			break
		}
	}
	if !grabbed {
		t.Fatalf("hook never grabbed the wall, state=%d pos=%v", ch.Hook.State, ch.Hook.Pos)
	}
	// the right wall starts at x=352
	if ch.Hook.Pos.X() < 340 {
		t.Fatalf("hook grabbed at %v, want at the right wall", ch.Hook.Pos)
	}

	// the grab pulls the character toward the wall
	startX := ch.Pos.Pos().X()
	for i := 0; i < 10; i++ {
		stepPhysics(pipe, ch)
	}
	if ch.Pos.Pos().X() <= startX {
		t.Fatalf("grabbed hook did not pull: x %v -> %v", startX, ch.Pos.Pos().X())
	}

	// releasing the key drops the hook entirely
	ch.Input.State.Hook = false
	stepPhysics(pipe, ch)
	if ch.Hook.Kind != HookNone {
		t.Fatalf("hook kind after release = %d, want none", ch.Hook.Kind)
	}
}

func TestHookGrabsCharacter(t *testing.T) {
	chars, pipe := physSetup()
	hooker := addChar(chars, pipe, 1, mgl32.Vec2{100, standY})
	target := addChar(chars, pipe, 2, mgl32.Vec2{250, standY})
	stepPhysics(pipe, hooker, target)

	hooker.Input.State.Hook = true
	hooker.QueuedInput.Hooks = 1
	hooker.QueuedInput.HookCursor = mgl32.Vec2{1, 0}

	for i := 0; i < 6; i++ {
		stepPhysics(pipe, hooker, target)
		if hooker.Hook.State == HookGrabbed {
			break
		}
	}
	hooked, ok := pipe.Hooked.GetHooked(hooker.ID)
	if !ok || hooked != target.ID {
		t.Fatalf("hook relation = (%d,%v), want target %d", hooked, ok, target.ID)
	}

	// the grabbed hook drags the target toward the hooker
	targetX := target.Pos.Pos().X()
	for i := 0; i < 15; i++ {
		stepPhysics(pipe, hooker, target)
	}
	if hooker.Hook.Kind != HookActive || hooker.Hook.State != HookGrabbed {
		t.Fatalf("hook lost its grip: kind=%d state=%d", hooker.Hook.Kind, hooker.Hook.State)
	}
	if target.Pos.Pos().X() >= targetX {
		t.Fatalf("hooked character not dragged: x %v -> %v", targetX, target.Pos.Pos().X())
	}
}

func TestHookHitFlagIsHookerSide(t *testing.T) {
	chars, pipe := physSetup()
	hooker := addChar(chars, pipe, 1, mgl32.Vec2{100, standY})
	target := addChar(chars, pipe, 2, mgl32.Vec2{250, standY})
	target.Core.HookHitDisabled = true
	stepPhysics(pipe, hooker, target)

	// the target's own flag does not protect it
	hooker.Input.State.Hook = true
	hooker.QueuedInput.Hooks = 1
	hooker.QueuedInput.HookCursor = mgl32.Vec2{1, 0}
	for i := 0; i < 6; i++ {
		stepPhysics(pipe, hooker, target)
		if hooker.Hook.State == HookGrabbed {
			break
		}
	}
	if hooked, ok := pipe.Hooked.GetHooked(hooker.ID); !ok || hooked != target.ID {
		t.Fatalf("target-side flag blocked the hook: (%d,%v)", hooked, ok)
	}

	// the hooker's flag gates the character sweep entirely
	pipe.Hooked.Remove(hooker.ID)
	hooker.Hook = Hook{}
	hooker.Core.HookHitDisabled = true
	hooker.QueuedInput.Hooks = 1
	for i := 0; i < 8; i++ {
		stepPhysics(pipe, hooker, target)
	}
	if _, ok := pipe.Hooked.GetHooked(hooker.ID); ok {
		t.Fatalf("hooker with hook hit disabled grabbed a character")
	}
}

func runScriptedSim(ticks int) (NetCore, NetCore) {
	chars, pipe := physSetup()
	a := addChar(chars, pipe, 1, mgl32.Vec2{120, standY})
	b := addChar(chars, pipe, 2, mgl32.Vec2{260, standY})

	for i := 0; i < ticks; i++ {
		a.Input.State.Dir = 1
		if i > 60 {
			a.Input.State.Dir = -1
		}
		a.Input.State.Jump = i%23 < 3
		if i == 10 {
			a.Input.State.Hook = true
			a.QueuedInput.Hooks = 1
			a.QueuedInput.HookCursor = mgl32.Vec2{1, -0.3}
		}
		if i == 60 {
			a.Input.State.Hook = false
		}
		b.Input.State.Dir = -1
		b.Input.State.Jump = i%17 < 2

		stepPhysics(pipe, a, b)
	}

	var na, nb NetCore
	PhysicsWrite(a.Pos.Pos(), &a.Core, &a.Hook, &na)
	PhysicsWrite(b.Pos.Pos(), &b.Core, &b.Hook, &nb)
	return na, nb
}

func TestSimulationIsDeterministic(t *testing.T) {
	a1, b1 := runScriptedSim(120)
	a2, b2 := runScriptedSim(120)
	if a1 != a2 {
		t.Fatalf("character 1 diverged:\n%+v\n%+v", a1, a2)
	}
	if b1 != b2 {
		t.Fatalf("character 2 diverged:\n%+v\n%+v", b1, b2)
	}
}

func TestQuantizeIsIdempotent(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{120, standY})
	ch.Input.State.Dir = 1
	ch.Input.State.Jump = true
	for i := 0; i < 7; i++ {
		stepPhysics(pipe, ch)
	}

	var first, second NetCore
	PhysicsWrite(ch.Pos.Pos(), &ch.Core, &ch.Hook, &first)
	ch.PhysicsQuantize()
	PhysicsWrite(ch.Pos.Pos(), &ch.Core, &ch.Hook, &second)
	if first != second {
		t.Fatalf("quantize changed an already quantized core:\n%+v\n%+v", first, second)
	}
}

func TestTakeDamageArmorAbsorb(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{120, standY})
	ch.Armor = 5

	ch.TakeDamage(mgl32.Vec2{}, mgl32.Vec2{}, 4, 99, true, types.WeaponGun)
	// one health chip, the rest soaked by armor
	if ch.Health != 9 {
		t.Fatalf("health = %d, want 9", ch.Health)
	}
	if ch.Armor != 2 {
		t.Fatalf("armor = %d, want 2", ch.Armor)
	}
	if ch.Dead {
		t.Fatalf("character died from survivable damage")
	}
}

func TestSelfDamageHalved(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{120, standY})

	ch.TakeDamage(mgl32.Vec2{}, mgl32.Vec2{}, 6, ch.ID, true, types.WeaponGrenade)
	// 6 halves to 3: one health chip plus two more points
	if ch.Health != 7 {
		t.Fatalf("health after self damage = %d, want 7", ch.Health)
	}
}

func TestLethalDamageEmitsDespawn(t *testing.T) {
	chars, pipe := physSetup()
	ch := addChar(chars, pipe, 1, mgl32.Vec2{120, standY})

	ch.TakeDamage(mgl32.Vec2{}, mgl32.Vec2{}, 20, 7, true, types.WeaponLaser)
	if !ch.Dead {
		t.Fatalf("character survived 20 damage")
	}
	// further damage on a dead character is ignored
	n := len(ch.Events)
	ch.TakeDamage(mgl32.Vec2{}, mgl32.Vec2{}, 5, 7, true, types.WeaponLaser)
	if len(ch.Events) != n {
		t.Fatalf("dead character produced more events")
	}
}
