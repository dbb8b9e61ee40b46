package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/assert"
	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/tuning"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

const (
	explosionRadius float32 = 135.0
	explosionInner  float32 = 48.0

	// extra hit radius a projectile sweep adds on top of the character box
	projectileHitRadius float32 = 6.0
)

// Projectile is a fired gun, shotgun or grenade round. Its flight path is a
// closed-form curve over the tick it was fired at, so replaying a tick
// yields bit-identical positions.
type Projectile struct {
	ID    types.EntityID
	Owner types.EntityID

	StartPos  mgl32.Vec2
	Direction mgl32.Vec2
	StartTick types.TickType
	LifeSpan  int64
	Weapon    types.WeaponType

	Destroyed bool
	Events    []events.ProjectileEvent
}

func projectileParams(tun *tuning.Tunings, w types.WeaponType) (curvature, speed, lifetime float32, explosive bool) {
	switch w {
	case types.WeaponGun:
		return tun.GunCurvature, tun.GunSpeed, tun.GunLifetime, false
	case types.WeaponShotgun:
		return tun.ShotgunCurvature, tun.ShotgunSpeed, tun.ShotgunLifetime, false
	case types.WeaponGrenade:
		return tun.GrenadeCurvature, tun.GrenadeSpeed, tun.GrenadeLifetime, true
	}
	assert.IsTrue(false, "projectile fired from non-projectile weapon %d", w)
	return 0, 0, 0, false
}

// posAt evaluates the flight curve at t seconds after firing.
func (p *Projectile) posAt(t, curvature, speed float32) mgl32.Vec2 {
	tt := t * speed
	return mgl32.Vec2{
		p.StartPos.X() + p.Direction.X()*tt,
		p.StartPos.Y() + p.Direction.Y()*tt + curvature/10000.0*(tt*tt),
	}
}

func (p *Projectile) pushEvent(ev events.ProjectileEvent) {
	p.Events = append(p.Events, ev)
}

func (p *Projectile) destroy(pos mgl32.Vec2) {
	if p.Destroyed {
		return
	}
	p.Destroyed = true
	p.pushEvent(events.ProjectileDespawn{Pos: pos})
}

// Tick advances the projectile one step along its curve, sweeping the
// segment between the previous and current position against tiles and
// characters.
func (p *Projectile) Tick(w *World, curTick types.TickType) {
	if p.Destroyed {
		return
	}

	tun := w.Collision.GetTuneAt(p.StartPos)
	curvature, speed, _, explosive := projectileParams(tun, p.Weapon)

	ct := float32(curTick-p.StartTick) / float32(types.TicksPerSecond)
	pt := ct - 1.0/float32(types.TicksPerSecond)
	prevPos := p.posAt(pt, curvature, speed)
	curPos := p.posAt(ct, curvature, speed)

	var colPos, beforePos mgl32.Vec2
	hitTile := w.Collision.IntersectLine(prevPos, curPos, &colPos, &beforePos)

	hitPos := curPos
	target, hasTarget := w.intersectCharacter(prevPos, curPos, projectileHitRadius, p.Owner, &hitPos)
	if hasTarget && hitTile != collision.TileAir &&
		omath.DistanceSq(prevPos, colPos) < omath.DistanceSq(prevPos, hitPos) {
		hasTarget = false
	}

	p.LifeSpan--
	lifeOver := p.LifeSpan < 0

	if !hasTarget && hitTile == collision.TileAir && !lifeOver && !w.Collision.OutsidePlayfield(curPos) {
		return
	}

	endPos := curPos
	if hasTarget {
		endPos = hitPos
	} else if hitTile != collision.TileAir {
		endPos = colPos
	}

	if explosive {
		p.pushEvent(events.ProjectileSound{Pos: endPos, Sound: events.SoundGrenadeExplode})
		w.createExplosion(endPos, p.Owner, p.Weapon)
	} else if hasTarget {
		flightDir := omath.Normalize(curPos.Sub(prevPos))
		target.TakeDamage(flightDir.Mul(0.001), flightDir.Mul(-1), 1, p.Owner, true, p.Weapon)
	}

	p.destroy(endPos)
}

// createExplosion damages and pushes every character in the blast radius
// with linear falloff from the inner radius outward.
func (w *World) createExplosion(pos mgl32.Vec2, owner types.EntityID, weapon types.WeaponType) {
	tun := w.Collision.GetTuneAt(pos)
	strength := tun.ExplosionStrength

	ids := w.charsByRadius(pos, explosionRadius)
	for _, id := range *ids {
		ch, ok := w.GetChar(id)
		if !ok {
			continue
		}
		diff := ch.Pos.Pos().Sub(pos)
		d := omath.Length(diff)
		if d > explosionRadius {
			continue
		}
		forceDir := mgl32.Vec2{0, 1}
		if d > 0 {
			forceDir = diff.Mul(1.0 / d)
		}
		l := 1.0 - clampf((d-explosionInner)/(explosionRadius-explosionInner), 0.0, 1.0)
		dmg := strength * l
		if int32(dmg) == 0 {
			continue
		}
		ch.TakeDamage(forceDir.Mul(dmg*2.0), forceDir.Mul(-1), int32(dmg), owner, true, weapon)
	}
	w.putCharList(ids)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
