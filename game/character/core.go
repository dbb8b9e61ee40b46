package character

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/playfield"
	"github.com/oomph-ac/teesim/game/tuning"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
	"github.com/oomph-ac/teesim/utils"
)

// PhysicalSize is a character's collision box edge length in world units.
const PhysicalSize float32 = 28.0

const physicalSizeI int32 = 28

// maxVel caps the velocity magnitude after all deferred adjustments.
const maxVel float32 = 6000.0

// Core is a character's plain physics state. It is copied wholesale into
// snapshots and overwritten wholesale on reconcile.
type Core struct {
	Vel mgl32.Vec2

	// Jumped bit 0: jump key latched this press; bit 1: air jump spent.
	Jumped      int32
	JumpedTotal int32
	Jumps       int32

	Direction int32
	Angle     int32

	Solo              bool
	Super             bool
	CollisionDisabled bool
	HookHitDisabled   bool

	MoveRestrictions int32
}

// CharacterAccessor resolves character ids to live characters; implemented
// by the world's character collection.
type CharacterAccessor interface {
	GetChar(id types.EntityID) (*Character, bool)
}

// Pipe gives a character tick access to everything outside the character
// itself without aliasing it: collision, the spatial index, its siblings
// and the hook relation.
type Pipe struct {
	Collision *collision.Collision
	Field     *playfield.Playfield
	Chars     CharacterAccessor
	Hooked    *HookedCharacters
	CurTick   types.TickType
}

func clampVel(restrictions int32, vel mgl32.Vec2) mgl32.Vec2 {
	if vel.X() > 0 && restrictions&types.CannotMoveRight != 0 {
		vel[0] = 0
	}
	if vel.X() < 0 && restrictions&types.CannotMoveLeft != 0 {
		vel[0] = 0
	}
	if vel.Y() > 0 && restrictions&types.CannotMoveDown != 0 {
		vel[1] = 0
	}
	if vel.Y() < 0 && restrictions&types.CannotMoveUp != 0 {
		vel[1] = 0
	}
	return vel
}

// canCollide reports whether two characters bump into each other.
func canCollide(a, b *Character) bool {
	if a.Core.Super || b.Core.Super {
		return true
	}
	return !a.Core.Solo && !b.Core.Solo &&
		!a.Core.CollisionDisabled && !b.Core.CollisionDisabled
}

// canHook reports whether a's hook can latch onto b. Only the hooker's
// own HookHitDisabled matters, and that is checked before the sweep.
func canHook(a, b *Character) bool {
	if a.Core.Super || b.Core.Super {
		return true
	}
	return !a.Core.Solo && !b.Core.Solo
}

func (ch *Character) isGrounded(coll *collision.Collision, pos mgl32.Vec2) bool {
	half := physicalSizeI / 2
	px := omath.Round32(pos.X())
	py := omath.Round32(pos.Y())
	return coll.CheckPoint(px+half, py+half+5) || coll.CheckPoint(px-half, py+half+5)
}

func cursorAngle(cursor mgl32.Vec2) int32 {
	if cursor.X() == 0 && cursor.Y() == 0 {
		return 0
	}
	// x-major convention: angle 0 points down the y axis
	a := math32.Atan2(cursor.X(), cursor.Y())
	if a < -math32.Pi/2.0 {
		a += 2.0 * math32.Pi
	}
	return int32(a * 256.0)
}

// PhysicsTick advances the character's velocity and hook by one tick.
// useInput is false on replayed ticks that must not re-consume input; the
// deferred portion of hook physics runs later in PhysicsTickDeferred.
func (ch *Character) PhysicsTick(useInput bool, pipe *Pipe) {
	core := &ch.Core
	hook := &ch.Hook
	pos := ch.Pos.Pos()
	tun := pipe.Collision.GetTuneAt(pos)

	grounded := ch.isGrounded(pipe.Collision, pos)

	core.Vel[1] += tun.Gravity

	maxSpeed := tun.AirControlSpeed
	accel := tun.AirControlAccel
	friction := tun.AirFriction
	if grounded {
		maxSpeed = tun.GroundControlSpeed
		accel = tun.GroundControlAccel
		friction = tun.GroundFriction
	}

	if useInput {
		core.Direction = ch.Input.State.Dir
		core.Angle = cursorAngle(ch.Input.Cursor)
	}

	// jump state machine: bit 0 latches the key press, bit 1 tracks the
	// spent air jump; landing clears bit 1 and the total. A click pressed
	// and released between input samples still arrives through the queued
	// count.
	if useInput {
		if ch.QueuedInput.Jumps > 0 || ch.Input.State.Jump {
			if core.Jumped&1 == 0 {
				if grounded && (core.Jumped&2 == 0 || core.Jumps != 0) {
					ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundJump})
					core.Vel[1] = -tun.GroundJumpImpulse
					if core.Jumps > 1 {
						core.Jumped |= 1
					} else {
						// a budget of one spends the air jump on the
						// ground jump
						core.Jumped |= 3
					}
					core.JumpedTotal = 0
				} else if core.Jumped&2 == 0 {
					ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundAirJump})
					core.Vel[1] = -tun.AirJumpImpulse
					core.Jumped |= 3
					core.JumpedTotal++
				}
			}
		} else {
			core.Jumped &^= 1
		}
		ch.QueuedInput.Jumps = 0
	}

	if core.Direction < 0 {
		core.Vel[0] = omath.SaturatedAdd(-maxSpeed, maxSpeed, core.Vel.X(), -accel)
	} else if core.Direction > 0 {
		core.Vel[0] = omath.SaturatedAdd(-maxSpeed, maxSpeed, core.Vel.X(), accel)
	} else {
		core.Vel[0] *= friction
	}

	if grounded {
		core.Jumped &^= 2
		core.JumpedTotal = 0
	}

	// hook launch only on a fresh click while no hook is out
	if useInput {
		if ch.Input.State.Hook {
			if ch.QueuedInput.Hooks > 0 && hook.Kind == HookNone {
				dir := omath.Normalize(ch.QueuedInput.HookCursor)
				if dir == (mgl32.Vec2{}) {
					dir = mgl32.Vec2{1, 0}
				}
				*hook = Hook{
					Kind:  HookActive,
					State: HookFlying,
					Pos:   pos.Add(dir.Mul(PhysicalSize * 1.5)),
					Dir:   dir,
				}
			}
			ch.QueuedInput.Hooks = 0
		} else if hook.Kind != HookNone {
			pipe.Hooked.Remove(ch.ID)
			*hook = Hook{Kind: HookNone}
		}
	}

	if hook.Kind == HookActive {
		ch.tickHook(pipe, pos, tun, core, hook)
	}
}

func (ch *Character) tickHook(pipe *Pipe, pos mgl32.Vec2, tun *tuning.Tunings, core *Core, hook *Hook) {
	switch {
	case hook.State >= RetractStart && hook.State < RetractEnd:
		hook.State++

	case hook.State == RetractEnd:
		pipe.Hooked.Remove(ch.ID)
		*hook = Hook{Kind: HookWaitsForRelease}

	case hook.State == HookFlying:
		newPos := hook.Pos.Add(hook.Dir.Mul(tun.HookFireSpeed))
		anchor := pos
		if hook.NewHook {
			anchor = hook.TeleBase
		}
		if omath.Distance(anchor, newPos) > tun.HookLength {
			hook.State = RetractStart
			newPos = anchor.Add(omath.Normalize(newPos.Sub(anchor)).Mul(tun.HookLength))
		}

		var out, before mgl32.Vec2
		var teleNr int32
		hit := pipe.Collision.IntersectLineTeleHook(hook.Pos, newPos, &out, &before, &teleNr)
		switch hit {
		case collision.TileAir:
			// still flying
		case collision.TileNoHook:
			hook.State = RetractStart
			newPos = before
			ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundHookRetract})
		case collision.TileTeleInHook:
			if tp, ok := pipe.Collision.TeleHookOut(teleNr); ok {
				// re-launch out of the teleport; range now measured
				// from the teleport exit
				hook.Pos = tp
				hook.TeleBase = tp
				hook.NewHook = true
				return
			}
			hook.State = RetractStart
			newPos = before
		default:
			hook.State = HookGrabbed
			newPos = out
			ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundHookAttachGround})
		}

		if hook.State == HookFlying && !core.HookHitDisabled && tun.PlayerHooking > 0 {
			ids := utils.GetIDList()
			pipe.Field.ByRadius(hook.Pos, tun.HookLength+PhysicalSize+2.0, ids)
			closestDist := float32(math32.MaxFloat32)
			var closestID types.EntityID
			var closestPoint mgl32.Vec2
			found := false
			for _, id := range *ids {
				if id == ch.ID {
					continue
				}
				other, ok := pipe.Chars.GetChar(id)
				if !ok || !canHook(ch, other) {
					continue
				}
				opos := other.Pos.Pos()
				cp, ok := omath.ClosestPointOnLine(hook.Pos, newPos, opos)
				if !ok {
					continue
				}
				if omath.DistanceSq(cp, opos) < (PhysicalSize+2.0)*(PhysicalSize+2.0) {
					d := omath.DistanceSq(hook.Pos, opos)
					if !found || d < closestDist {
						found = true
						closestDist = d
						closestID = id
						closestPoint = cp
					}
				}
			}
			utils.PutIDList(ids)
			if found {
				ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundHookAttachPlayer})
				hook.State = HookGrabbed
				pipe.Hooked.AddOrSet(ch.ID, closestID)
				newPos = closestPoint
			}
		}

		if hook.State == HookFlying {
			hook.Pos = newPos
		} else if hook.State == HookGrabbed {
			hook.Pos = newPos
		}
	}

	if hook.State == HookGrabbed {
		hookedID, hookedToChar := pipe.Hooked.GetHooked(ch.ID)
		if hookedToChar {
			other, ok := pipe.Chars.GetChar(hookedID)
			if ok {
				hook.Pos = other.Pos.Pos()
			} else {
				// the target despawned; the weak link fails and the
				// hook retracts
				pipe.Hooked.Remove(ch.ID)
				*hook = Hook{Kind: HookWaitsForRelease}
				return
			}
		} else if omath.Distance(hook.Pos, pos) > 46.0 {
			hookVel := omath.Normalize(hook.Pos.Sub(pos)).Mul(tun.HookDragAccel)
			// hooking down is cheap, hooking up costs; moving with the
			// pull keeps more momentum than fighting it
			if hookVel.Y() > 0 {
				hookVel[1] *= 0.3
			}
			if (hookVel.X() < 0 && core.Direction < 0) || (hookVel.X() > 0 && core.Direction > 0) {
				hookVel[0] *= 0.95
			} else {
				hookVel[0] *= 0.75
			}
			newVel := core.Vel.Add(hookVel)
			if omath.Length(newVel) < tun.HookDragSpeed || omath.Length(newVel) < omath.Length(core.Vel) {
				core.Vel = newVel
			}
		}

		hook.Tick++
		if hookedToChar && hook.Tick > types.TickType(float32(types.TicksPerSecond)*tun.HookDuration) {
			pipe.Hooked.Remove(ch.ID)
			*hook = Hook{Kind: HookWaitsForRelease}
		}
	}
}

// PhysicsTickDeferred runs the pass that needs every character's main tick
// done: soft player collision, hook drag on the hooked character, velocity
// clamping.
func (ch *Character) PhysicsTickDeferred(pipe *Pipe) {
	core := &ch.Core
	hook := &ch.Hook
	pos := ch.Pos.Pos()
	tun := pipe.Collision.GetTuneAt(pos)

	if tun.PlayerCollision > 0 {
		ids := utils.GetIDList()
		pipe.Field.ByRadius(pos, PhysicalSize*1.25, ids)
		for _, id := range *ids {
			if id == ch.ID {
				continue
			}
			other, ok := pipe.Chars.GetChar(id)
			if !ok || !canCollide(ch, other) {
				continue
			}
			opos := other.Pos.Pos()
			d := omath.Distance(pos, opos)
			if d >= PhysicalSize*1.25 || d < 0 {
				continue
			}
			a := PhysicalSize*1.45 - d
			velocity := float32(0.5)
			if omath.Length(core.Vel) > 0.0001 {
				dir := omath.Normalize(opos.Sub(pos))
				nv := omath.Normalize(core.Vel)
				velocity = 1.0 - (nv.X()*dir.X()+nv.Y()*dir.Y()+1.0)/2.0
			}
			push := omath.Normalize(pos.Sub(opos))
			if push == (mgl32.Vec2{}) {
				push = mgl32.Vec2{1, 0}
			}
			core.Vel = core.Vel.Add(push.Mul(a * (velocity * 0.75)))
			core.Vel = core.Vel.Mul(0.85)
		}
		utils.PutIDList(ids)
	}

	if hookedID, ok := pipe.Hooked.GetHooked(ch.ID); ok && tun.PlayerHooking > 0 {
		if other, exists := pipe.Chars.GetChar(hookedID); exists {
			opos := other.Pos.Pos()
			d := omath.Distance(pos, opos)
			if d > PhysicalSize*1.5 {
				hookAccel := tun.HookDragAccel * (d / tun.HookLength)
				dragSpeed := tun.HookDragSpeed
				dir := omath.Normalize(pos.Sub(opos))

				// drag the hooked character toward the gripper
				temp := mgl32.Vec2{
					omath.SaturatedAdd(-dragSpeed, dragSpeed, other.Core.Vel.X(), hookAccel*dir.X()*1.5),
					omath.SaturatedAdd(-dragSpeed, dragSpeed, other.Core.Vel.Y(), hookAccel*dir.Y()*1.5),
				}
				other.Core.Vel = clampVel(other.Core.MoveRestrictions, temp)

				// and a little counter-force on the gripper
				temp = mgl32.Vec2{
					omath.SaturatedAdd(-dragSpeed, dragSpeed, core.Vel.X(), -hookAccel*dir.X()*0.25),
					omath.SaturatedAdd(-dragSpeed, dragSpeed, core.Vel.Y(), -hookAccel*dir.Y()*0.25),
				}
				core.Vel = clampVel(core.MoveRestrictions, temp)
			}
		}
	}

	if hook.Kind == HookActive && hook.State != HookFlying {
		hook.NewHook = false
	}

	if omath.Length(core.Vel) > maxVel {
		core.Vel = omath.Normalize(core.Vel).Mul(maxVel)
	}
}

// PhysicsMove applies the velocity ramp, sweeps the box against the tile
// map and then walks the straight-line path for the first blocking
// character. The spatial index is updated synchronously through Pos.Move.
func (ch *Character) PhysicsMove(pipe *Pipe) {
	core := &ch.Core
	pos := ch.Pos.Pos()
	tun := pipe.Collision.GetTuneAt(pos)

	rampVal := omath.VelocityRamp(omath.Length(core.Vel)*50.0, tun.VelrampStart, tun.VelrampRange, tun.VelrampCurvature)
	core.Vel[0] *= rampVal

	newPos := pos
	vel := core.Vel
	pipe.Collision.MoveBox(&newPos, &vel, physicalSizeI, physicalSizeI, 0)
	core.Vel = vel

	if rampVal != 0 {
		core.Vel[0] *= 1.0 / rampVal
	}

	if tun.PlayerCollision > 0 && !core.CollisionDisabled && !core.Solo {
		dist := omath.Distance(pos, newPos)
		if dist > 0 {
			end := int32(dist + 1)
			lastPos := pos
			ids := utils.GetIDList()
			pipe.Field.ByRadius(pos, PhysicalSize+dist, ids)
			for i := int32(0); i < end; i++ {
				a := float32(i) / dist
				stepPos := omath.Mix(pos, newPos, a)
				for _, id := range *ids {
					if id == ch.ID {
						continue
					}
					other, ok := pipe.Chars.GetChar(id)
					if !ok || !canCollide(ch, other) {
						continue
					}
					opos := other.Pos.Pos()
					d := omath.Distance(stepPos, opos)
					if d < PhysicalSize && d >= 0 {
						// stop at the last free sub-position; the first
						// id found blocks, ties are not broken by
						// distance on purpose
						final := newPos
						if a > 0 {
							final = lastPos
						} else if omath.Distance(newPos, opos) <= d {
							final = lastPos
						}
						ch.Pos.Move(final)
						utils.PutIDList(ids)
						return
					}
				}
				lastPos = stepPos
			}
			utils.PutIDList(ids)
		}
	}

	ch.Pos.Move(newPos)
}

// PhysicsQuantize strips the physics state down to network resolution by
// round-tripping it through the wire encoding.
func (ch *Character) PhysicsQuantize() {
	var nc NetCore
	pos := ch.Pos.Pos()
	PhysicsWrite(pos, &ch.Core, &ch.Hook, &nc)
	PhysicsRead(&nc, &pos, &ch.Core, &ch.Hook)
	ch.Pos.Move(pos)
}
