package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

// Laser is a rifle beam. It lives as a segment From..Pos that re-evaluates
// every bounce delay, bouncing off walls until its energy or bounce budget
// runs out, or it hits a character.
type Laser struct {
	ID    types.EntityID
	Owner types.EntityID

	From mgl32.Vec2
	Pos  mgl32.Vec2
	Dir  mgl32.Vec2

	Energy   float32
	Bounces  int32
	EvalTick types.TickType

	Destroyed bool
	Events    []events.LaserEvent
}

func (l *Laser) pushEvent(ev events.LaserEvent) {
	l.Events = append(l.Events, ev)
}

func (l *Laser) destroy() {
	if l.Destroyed {
		return
	}
	l.Destroyed = true
	l.pushEvent(events.LaserDespawn{Pos: l.Pos})
}

// hitCharacter sweeps the segment for a character hit, applying the laser
// damage on contact. The owner can only be hit after the first bounce.
func (l *Laser) hitCharacter(w *World, from, to mgl32.Vec2) bool {
	exclude := types.EntityID(0)
	if l.Bounces == 0 {
		exclude = l.Owner
	}
	hitPos := to
	target, ok := w.intersectCharacter(from, to, 0.0, exclude, &hitPos)
	if !ok {
		return false
	}
	l.From = from
	l.Pos = hitPos
	l.Energy = -1.0

	tun := w.Collision.GetTuneAt(hitPos)
	dir := omath.Normalize(to.Sub(from))
	target.TakeDamage(mgl32.Vec2{}, dir.Mul(-1), int32(tun.LaserDamage), l.Owner, true, types.WeaponLaser)
	return true
}

// doBounce advances the beam by one segment.
func (l *Laser) doBounce(w *World, curTick types.TickType) {
	l.EvalTick = curTick

	if l.Energy < 0 {
		l.destroy()
		return
	}

	tun := w.Collision.GetTuneAt(l.Pos)
	to := l.Pos.Add(l.Dir.Mul(l.Energy))

	var colPos, beforePos mgl32.Vec2
	if w.Collision.IntersectLine(l.Pos, to, &colPos, &beforePos) != collision.TileAir {
		if l.hitCharacter(w, l.Pos, colPos) {
			return
		}

		// bounce: step back from the wall, reflect a short probe off the
		// tile and keep its direction
		l.From = l.Pos
		l.Pos = beforePos

		probePos := l.Pos
		probeDir := l.Dir.Mul(4.0)
		bounces := 0
		w.Collision.MovePoint(&probePos, &probeDir, 1.0, &bounces)

		l.Pos = probePos
		l.Dir = omath.Normalize(probeDir)

		l.Energy -= omath.Distance(l.From, l.Pos) + tun.LaserBounceCost
		l.Bounces++

		if l.Bounces > int32(tun.LaserBounceNum) {
			l.Energy = -1
		}
		l.pushEvent(events.LaserSound{Pos: l.Pos, Sound: events.SoundLaserBounce})
		return
	}

	if l.hitCharacter(w, l.Pos, to) {
		return
	}
	l.From = l.Pos
	l.Pos = to
	l.Energy = -1
}

// Tick re-evaluates the beam once the bounce delay has elapsed.
func (l *Laser) Tick(w *World, curTick types.TickType) {
	if l.Destroyed {
		return
	}
	tun := w.Collision.GetTuneAt(l.Pos)
	delayTicks := types.TickType(tun.LaserBounceDelay * float32(types.TicksPerSecond) / 1000.0)
	if curTick > l.EvalTick+delayTicks {
		l.doBounce(w, curTick)
	}
}
