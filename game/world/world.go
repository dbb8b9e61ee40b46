// Package world runs one simulated game world: the characters with their
// physics, the projectiles, lasers, pickups and flags, and the fixed tick
// pipeline that advances them deterministically.
package world

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/collision"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/playfield"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
	"github.com/oomph-ac/teesim/utils"
)

const tileSize = 32

// InactiveObject is a collected pickup counting down to its respawn.
type InactiveObject struct {
	Pos       mgl32.Vec2
	Ty        types.PickupType
	Weapon    types.WeaponType
	RespawnIn types.TickCooldown
}

// World owns every entity of one stage. All collections are insertion
// ordered; iteration order is part of the simulation's determinism.
type World struct {
	Characters  *orderedmap.OrderedMap[types.EntityID, *character.Character]
	Projectiles *orderedmap.OrderedMap[types.EntityID, *Projectile]
	Lasers      *orderedmap.OrderedMap[types.EntityID, *Laser]
	Pickups     *orderedmap.OrderedMap[types.EntityID, *Pickup]
	Flags       *orderedmap.OrderedMap[types.EntityID, *Flag]

	Collision *collision.Collision
	Field     *playfield.Playfield
	Hooked    *character.HookedCharacters

	idGen *types.IDGenerator
	log   *logrus.Entry

	spawns     []mgl32.Vec2
	spawnsRed  []mgl32.Vec2
	spawnsBlue []mgl32.Vec2

	inactiveObjects []InactiveObject
	events          []events.WorldEvent
}

// New builds a world over the given map, scanning the entity layer for
// spawn points, pickups and flag stands.
func New(log *logrus.Entry, coll *collision.Collision, idGen *types.IDGenerator) *World {
	w := &World{
		Characters:  orderedmap.NewOrderedMap[types.EntityID, *character.Character](),
		Projectiles: orderedmap.NewOrderedMap[types.EntityID, *Projectile](),
		Lasers:      orderedmap.NewOrderedMap[types.EntityID, *Laser](),
		Pickups:     orderedmap.NewOrderedMap[types.EntityID, *Pickup](),
		Flags:       orderedmap.NewOrderedMap[types.EntityID, *Flag](),
		Collision:   coll,
		Field:       playfield.New(coll.Width(), coll.Height()),
		Hooked:      character.NewHookedCharacters(),
		idGen:       idGen,
		log:         log,
	}
	w.scanEntities()
	return w
}

func tilePos(tx, ty int32) mgl32.Vec2 {
	return mgl32.Vec2{float32(tx*tileSize + tileSize/2), float32(ty*tileSize + tileSize/2)}
}

func (w *World) scanEntities() {
	for ty := int32(0); ty < w.Collision.Height(); ty++ {
		for tx := int32(0); tx < w.Collision.Width(); tx++ {
			pos := tilePos(tx, ty)
			switch w.Collision.EntityTile(tx, ty) {
			case collision.EntitySpawn:
				w.spawns = append(w.spawns, pos)
			case collision.EntitySpawnRed:
				w.spawnsRed = append(w.spawnsRed, pos)
			case collision.EntitySpawnBlue:
				w.spawnsBlue = append(w.spawnsBlue, pos)
			case collision.EntityFlagStandRed:
				w.InsertFlag(w.idGen.NextID(), types.FlagRed, pos)
			case collision.EntityFlagStandBlue:
				w.InsertFlag(w.idGen.NextID(), types.FlagBlue, pos)
			case collision.EntityHealth:
				w.InsertPickup(w.idGen.NextID(), pos, types.PickupHeart, types.WeaponHammer)
			case collision.EntityArmor:
				w.InsertPickup(w.idGen.NextID(), pos, types.PickupArmor, types.WeaponHammer)
			case collision.EntityWeaponShotgun:
				w.InsertPickup(w.idGen.NextID(), pos, types.PickupWeapon, types.WeaponShotgun)
			case collision.EntityWeaponGrenade:
				w.InsertPickup(w.idGen.NextID(), pos, types.PickupWeapon, types.WeaponGrenade)
			case collision.EntityWeaponLaser:
				w.InsertPickup(w.idGen.NextID(), pos, types.PickupWeapon, types.WeaponLaser)
			case collision.EntityPowerupNinja:
				w.InsertPickup(w.idGen.NextID(), pos, types.PickupNinja, types.WeaponHammer)
			}
		}
	}
	if len(w.spawns)+len(w.spawnsRed)+len(w.spawnsBlue) == 0 {
		w.log.Warn("map has no spawn points, falling back to map center")
	}
}

// GetChar resolves a character id. Implements character.CharacterAccessor.
func (w *World) GetChar(id types.EntityID) (*character.Character, bool) {
	ch, ok := w.Characters.Get(id)
	return ch, ok
}

func (w *World) charsByRadius(pos mgl32.Vec2, radius float32) *[]types.EntityID {
	ids := utils.GetIDList()
	w.Field.ByRadius(pos, radius, ids)
	return ids
}

func (w *World) putCharList(ids *[]types.EntityID) {
	utils.PutIDList(ids)
}

// intersectCharacter sweeps the segment p0..p1 against character boxes
// widened by radius and returns the character whose closest hit point lies
// nearest to p0. exclude skips one id; zero is never a live id.
func (w *World) intersectCharacter(p0, p1 mgl32.Vec2, radius float32, exclude types.EntityID, hitPos *mgl32.Vec2) (*character.Character, bool) {
	sweep := omath.Distance(p0, p1) + radius + character.PhysicalSize
	ids := w.charsByRadius(p0, sweep)

	var closest *character.Character
	var closestPoint mgl32.Vec2
	closestDist := float32(0)
	found := false

	for _, id := range *ids {
		if id == exclude {
			continue
		}
		ch, ok := w.GetChar(id)
		if !ok || ch.Dead {
			continue
		}
		cpos := ch.Pos.Pos()
		cp, ok := omath.ClosestPointOnLine(p0, p1, cpos)
		if !ok {
			continue
		}
		hitRange := character.PhysicalSize/2.0 + radius
		if omath.Distance(cp, cpos) >= hitRange {
			continue
		}
		d := omath.Distance(p0, cp)
		if !found || d < closestDist {
			found = true
			closest = ch
			closestPoint = cp
			closestDist = d
		}
	}
	w.putCharList(ids)

	if found {
		*hitPos = closestPoint
	}
	return closest, found
}

// AddCharacter inserts a new character at pos.
func (w *World) AddCharacter(id types.EntityID, pos mgl32.Vec2) *character.Character {
	ch := character.New(id, w.Field, pos)
	w.Characters.Set(id, ch)
	return ch
}

// RemoveCharacter drops a character from the world, releasing every hook
// that held it.
func (w *World) RemoveCharacter(id types.EntityID) {
	ch, ok := w.Characters.Get(id)
	if !ok {
		return
	}

	hookers := utils.GetIDList()
	w.Hooked.ReleaseTarget(id, hookers)
	for _, hid := range *hookers {
		if hooker, ok := w.Characters.Get(hid); ok {
			hooker.Hook = character.Hook{Kind: character.HookWaitsForRelease}
		}
	}
	utils.PutIDList(hookers)

	w.Hooked.Remove(id)
	ch.Pos.Leave()
	ch.Release()
	w.Characters.Delete(id)
}

// InsertProjectile adds a projectile with an explicit id; the lifespan is
// taken from the tuning in effect at the start position.
func (w *World) InsertProjectile(id, owner types.EntityID, pos, dir mgl32.Vec2, weapon types.WeaponType, startTick types.TickType) *Projectile {
	tun := w.Collision.GetTuneAt(pos)
	_, _, lifetime, _ := projectileParams(tun, weapon)
	p := AcquireProjectile()
	p.ID = id
	p.Owner = owner
	p.StartPos = pos
	p.Direction = dir
	p.StartTick = startTick
	p.LifeSpan = int64(lifetime * float32(types.TicksPerSecond))
	p.Weapon = weapon
	w.Projectiles.Set(id, p)
	return p
}

// InsertLaser adds a laser with an explicit id and evaluates its first
// segment immediately.
func (w *World) InsertLaser(id, owner types.EntityID, pos, dir mgl32.Vec2, energy float32, startTick types.TickType) *Laser {
	l := AcquireLaser()
	l.ID = id
	l.Owner = owner
	l.From = pos
	l.Pos = pos
	l.Dir = dir
	l.Energy = energy
	l.EvalTick = startTick
	w.Lasers.Set(id, l)
	l.doBounce(w, startTick)
	return l
}

// InsertPickup adds a pickup with an explicit id.
func (w *World) InsertPickup(id types.EntityID, pos mgl32.Vec2, ty types.PickupType, weapon types.WeaponType) *Pickup {
	p := AcquirePickup()
	p.ID = id
	p.Pos = pos
	p.Ty = ty
	p.Weapon = weapon
	w.Pickups.Set(id, p)
	return p
}

// InsertFlag adds a flag standing at pos.
func (w *World) InsertFlag(id types.EntityID, ty types.FlagType, pos mgl32.Vec2) *Flag {
	f := &Flag{ID: id, Ty: ty, Pos: pos, StandPos: pos}
	w.Flags.Set(id, f)
	return f
}

func (w *World) flagOfSide(side types.MatchSide) (*Flag, bool) {
	for el := w.Flags.Front(); el != nil; el = el.Next() {
		if flagSide(el.Value.Ty) == side {
			return el.Value, true
		}
	}
	return nil, false
}

// GetSpawnPos picks the spawn point farthest from every live character.
// Sided spawns are preferred for sided characters; ties keep scan order.
func (w *World) GetSpawnPos(hasSide bool, side types.MatchSide) mgl32.Vec2 {
	candidates := w.spawns
	if hasSide {
		sided := w.spawnsRed
		if side == types.SideBlue {
			sided = w.spawnsBlue
		}
		if len(sided) > 0 {
			candidates = sided
		}
	}
	if len(candidates) == 0 {
		return tilePos(w.Collision.Width()/2, w.Collision.Height()/2)
	}

	best := candidates[0]
	bestScore := float32(-1)
	for _, pos := range candidates {
		score := float32(1 << 20)
		for el := w.Characters.Front(); el != nil; el = el.Next() {
			ch := el.Value
			d := omath.Distance(ch.Pos.Pos(), pos)
			// teammates crowd a spawn only half as much as enemies
			if hasSide && ch.HasSide && ch.Side == side {
				d *= 2.0
			}
			if d < score {
				score = d
			}
		}
		if score > bestScore {
			bestScore = score
			best = pos
		}
	}
	return best
}

func (w *World) tickInactiveObjects() {
	kept := w.inactiveObjects[:0]
	for i := range w.inactiveObjects {
		obj := w.inactiveObjects[i]
		if obj.RespawnIn.Tick() {
			w.InsertPickup(w.idGen.NextID(), obj.Pos, obj.Ty, obj.Weapon)
			continue
		}
		kept = append(kept, obj)
	}
	w.inactiveObjects = kept
}

// drainAndSpawn turns the per-entity event lists into world events and
// spawns the projectiles and lasers fired this tick. Prediction ticks still
// spawn (so the local player sees their own shot) but drop the events.
func (w *World) drainAndSpawn(curTick types.TickType, isPrediction bool) {
	for el := w.Characters.Front(); el != nil; el = el.Next() {
		ch := el.Value
		for _, ev := range ch.Events {
			switch e := ev.(type) {
			case events.CharacterFireProjectile:
				w.InsertProjectile(w.idGen.NextID(), ch.ID, e.Pos, e.Dir, e.Weapon, curTick)
			case events.CharacterFireLaser:
				w.InsertLaser(w.idGen.NextID(), ch.ID, e.Pos, e.Dir, e.Energy, curTick)
			}
			if !isPrediction {
				w.events = append(w.events, events.WorldEvent{Owner: ch.ID, Ev: ev})
			}
		}
		ch.Events = ch.Events[:0]
	}

	for el := w.Projectiles.Front(); el != nil; el = el.Next() {
		p := el.Value
		for _, ev := range p.Events {
			if !isPrediction {
				w.events = append(w.events, events.WorldEvent{Owner: p.ID, Ev: ev})
			}
		}
		p.Events = p.Events[:0]
	}
	for el := w.Lasers.Front(); el != nil; el = el.Next() {
		l := el.Value
		for _, ev := range l.Events {
			if !isPrediction {
				w.events = append(w.events, events.WorldEvent{Owner: l.ID, Ev: ev})
			}
		}
		l.Events = l.Events[:0]
	}
	for el := w.Pickups.Front(); el != nil; el = el.Next() {
		p := el.Value
		for _, ev := range p.Events {
			if !isPrediction {
				w.events = append(w.events, events.WorldEvent{Owner: p.ID, Ev: ev})
			}
		}
		p.Events = p.Events[:0]
	}
	for el := w.Flags.Front(); el != nil; el = el.Next() {
		f := el.Value
		for _, ev := range f.Events {
			if !isPrediction {
				w.events = append(w.events, events.WorldEvent{Owner: f.ID, Ev: ev})
			}
		}
		f.Events = f.Events[:0]
	}
}

// commitRemovals drops destroyed entities. Only authoritative ticks run
// this; predicted removals are undone by the next snapshot anyway and
// removing entities during prediction would desync ids.
func (w *World) commitRemovals() {
	removed := utils.GetIDList()

	for el := w.Characters.Front(); el != nil; el = el.Next() {
		if el.Value.Dead {
			*removed = append(*removed, el.Key)
		}
	}
	for _, id := range *removed {
		w.RemoveCharacter(id)
	}
	*removed = (*removed)[:0]

	for el := w.Projectiles.Front(); el != nil; el = el.Next() {
		if el.Value.Destroyed {
			*removed = append(*removed, el.Key)
		}
	}
	for _, id := range *removed {
		if p, ok := w.Projectiles.Get(id); ok {
			w.Projectiles.Delete(id)
			ReleaseProjectile(p)
		}
	}
	*removed = (*removed)[:0]

	for el := w.Lasers.Front(); el != nil; el = el.Next() {
		if el.Value.Destroyed {
			*removed = append(*removed, el.Key)
		}
	}
	for _, id := range *removed {
		if l, ok := w.Lasers.Get(id); ok {
			w.Lasers.Delete(id)
			ReleaseLaser(l)
		}
	}
	*removed = (*removed)[:0]

	for el := w.Pickups.Front(); el != nil; el = el.Next() {
		if el.Value.Destroyed {
			*removed = append(*removed, el.Key)
			w.inactiveObjects = append(w.inactiveObjects, InactiveObject{
				Pos:       el.Value.Pos,
				Ty:        el.Value.Ty,
				Weapon:    el.Value.Weapon,
				RespawnIn: types.TickCooldown(el.Value.respawnDelay()),
			})
		}
	}
	for _, id := range *removed {
		if p, ok := w.Pickups.Get(id); ok {
			w.Pickups.Delete(id)
			ReleasePickup(p)
		}
	}

	utils.PutIDList(removed)
}

// Tick advances the whole world by one step. Characters run in reverse
// insertion order, then the other entity classes, then the deferred
// character pass. isPrediction suppresses events and entity removal.
func (w *World) Tick(curTick types.TickType, isPrediction bool) {
	if !isPrediction {
		w.tickInactiveObjects()
	}

	pipe := &character.Pipe{
		Collision: w.Collision,
		Field:     w.Field,
		Chars:     w,
		Hooked:    w.Hooked,
		CurTick:   curTick,
	}

	for el := w.Characters.Back(); el != nil; el = el.Prev() {
		el.Value.Tick(pipe)
	}
	for el := w.Projectiles.Front(); el != nil; el = el.Next() {
		el.Value.Tick(w, curTick)
	}
	for el := w.Flags.Front(); el != nil; el = el.Next() {
		el.Value.Tick(w, curTick)
	}
	for el := w.Pickups.Front(); el != nil; el = el.Next() {
		el.Value.Tick(w, curTick)
	}
	for el := w.Lasers.Front(); el != nil; el = el.Next() {
		el.Value.Tick(w, curTick)
	}
	for el := w.Characters.Back(); el != nil; el = el.Prev() {
		el.Value.TickDeferred(pipe)
	}

	w.drainAndSpawn(curTick, isPrediction)

	if !isPrediction {
		w.commitRemovals()
	}
}

// DrainEvents moves this tick's accumulated events into out.
func (w *World) DrainEvents(out *[]events.WorldEvent) {
	*out = append(*out, w.events...)
	w.events = w.events[:0]
}

// InactiveObjects exposes the pending pickup respawns for snapshotting.
func (w *World) InactiveObjects() []InactiveObject {
	return w.inactiveObjects
}

// SetInactiveObjects replaces the pending pickup respawns on reconcile.
func (w *World) SetInactiveObjects(objs []InactiveObject) {
	w.inactiveObjects = append(w.inactiveObjects[:0], objs...)
}
