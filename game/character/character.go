// Package character implements the per-character physics state machine and
// the weapon/damage layer on top of it.
package character

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/assert"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/playfield"
	"github.com/oomph-ac/teesim/game/tuning"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
	"github.com/oomph-ac/teesim/utils"
)

const (
	startHealth int32 = 10
	maxHealth   int32 = 10
	maxArmor    int32 = 10

	gunAmmo int32 = 10

	// ticks until a kill respawn is allowed
	respawnDelayTicks types.TickType = types.TicksPerSecond / 2
)

// Weapon is the per-weapon inventory slot. Ammo below zero means the
// weapon does not consume ammo (hammer).
type Weapon struct {
	HasAmmo       bool
	Ammo          int32
	NextRegenTick types.TickCooldown
}

// ReusableCore is the pooled per-character payload that survives respawns
// structurally: today only the weapon inventory.
type ReusableCore struct {
	Weapons *orderedmap.OrderedMap[types.WeaponType, Weapon]
}

// NewReusableCore returns an empty reusable core.
func NewReusableCore() *ReusableCore {
	return &ReusableCore{Weapons: orderedmap.NewOrderedMap[types.WeaponType, Weapon]()}
}

var reusableCorePool = sync.Pool{
	New: func() interface{} { return NewReusableCore() },
}

// Reset clears the core for pool reuse.
func (rc *ReusableCore) Reset() {
	for _, k := range rc.Weapons.Keys() {
		rc.Weapons.Delete(k)
	}
}

// CopyCloneFrom overwrites this core with other, reusing map capacity.
func (rc *ReusableCore) CopyCloneFrom(other *ReusableCore) {
	rc.Reset()
	for el := other.Weapons.Front(); el != nil; el = el.Next() {
		rc.Weapons.Set(el.Key, el.Value)
	}
}

// Character is one live character in a world.
type Character struct {
	ID types.EntityID

	Core         Core
	Hook         Hook
	Pos          *playfield.CharacterPos
	ReusableCore *ReusableCore

	Input       types.CharacterInput
	QueuedInput types.ConsumableInput

	ActiveWeapon    types.WeaponType
	PrevWeapon      types.WeaponType
	QueuedWeapon    types.WeaponType
	HasQueuedWeapon bool

	Health int32
	Armor  int32

	// recoil bookkeeping for render info and refire gating
	AttackRecoil    types.TickCooldown
	RecoilStartTick types.TickType

	Score   int64
	Side    types.MatchSide
	HasSide bool

	Emote         uint8
	EmoteStopTick types.TickType

	Events []events.CharacterEvent

	// Dead marks the character for the world's removal post-pass; it is
	// never removed mid-iteration.
	Dead bool
}

// New creates a character standing at pos, registered in the playfield.
func New(id types.EntityID, field *playfield.Playfield, pos mgl32.Vec2) *Character {
	ch := &Character{
		ID:           id,
		Pos:          field.Enter(id, pos),
		ReusableCore: reusableCorePool.Get().(*ReusableCore),
		Health:       startHealth,
		ActiveWeapon: types.WeaponGun,
	}
	ch.ReusableCore.Reset()
	ch.Core.Jumps = 2
	ch.ReusableCore.Weapons.Set(types.WeaponHammer, Weapon{})
	ch.ReusableCore.Weapons.Set(types.WeaponGun, Weapon{HasAmmo: true, Ammo: gunAmmo})
	return ch
}

func (ch *Character) pushEvent(ev events.CharacterEvent) {
	ch.Events = append(ch.Events, ev)
}

// Release hands the reusable core back to the pool; the character must not
// be used afterwards.
func (ch *Character) Release() {
	if ch.ReusableCore == nil {
		return
	}
	ch.ReusableCore.Reset()
	reusableCorePool.Put(ch.ReusableCore)
	ch.ReusableCore = nil
}

// SetEmote shows an emote above the character until the given tick.
func (ch *Character) SetEmote(emote uint8, stopTick types.TickType) {
	ch.Emote = emote
	ch.EmoteStopTick = stopTick
}

// DrainEvents moves the accumulated events into out and clears the list.
func (ch *Character) DrainEvents(out *[]events.WorldEvent) {
	for _, ev := range ch.Events {
		*out = append(*out, events.WorldEvent{Owner: ch.ID, Ev: ev})
	}
	ch.Events = ch.Events[:0]
}

// SetInput installs a new input and queues its consumable diff.
func (ch *Character) SetInput(inp types.CharacterInput, diff types.ConsumableInput) {
	ch.Input = inp
	ch.QueuedInput.Append(diff)
}

// GiveWeapon adds a weapon to the inventory, refilling ammo if owned.
func (ch *Character) GiveWeapon(w types.WeaponType, ammo int32) {
	ch.ReusableCore.Weapons.Set(w, Weapon{HasAmmo: ammo >= 0, Ammo: ammo})
}

func fireDelayFor(tun *tuning.Tunings, w types.WeaponType) uint64 {
	switch w {
	case types.WeaponHammer:
		return tuning.FireDelayTicks(tun.HammerFireDelay)
	case types.WeaponGun:
		return tuning.FireDelayTicks(tun.GunFireDelay)
	case types.WeaponShotgun:
		return tuning.FireDelayTicks(tun.ShotgunFireDelay)
	case types.WeaponGrenade:
		return tuning.FireDelayTicks(tun.GrenadeFireDelay)
	case types.WeaponLaser:
		return tuning.FireDelayTicks(tun.LaserFireDelay)
	}
	assert.IsTrue(false, "fire delay requested for unknown weapon %d", w)
	return 0
}

// handleWeaponSwitch consumes scroll and direct weapon requests. The
// switch is deferred while the fire delay is still running.
func (ch *Character) handleWeaponSwitch() {
	wanted := ch.ActiveWeapon
	if ch.HasQueuedWeapon {
		wanted = ch.QueuedWeapon
	}

	if ch.Input.WeaponDiff != 0 {
		owned := ch.ReusableCore.Weapons.Keys()
		if len(owned) > 0 {
			cur := 0
			for i, w := range owned {
				if w == wanted {
					cur = i
					break
				}
			}
			next := (int64(cur) + ch.Input.WeaponDiff) % int64(len(owned))
			if next < 0 {
				next += int64(len(owned))
			}
			wanted = owned[next]
		}
		ch.Input.WeaponDiff = 0
	}

	if ch.Input.HasWeaponReq {
		if _, ok := ch.ReusableCore.Weapons.Get(ch.Input.WeaponReq); ok {
			wanted = ch.Input.WeaponReq
		}
		ch.Input.HasWeaponReq = false
	}

	if wanted == ch.ActiveWeapon {
		ch.HasQueuedWeapon = false
		return
	}

	if ch.AttackRecoil.IsActive() {
		ch.QueuedWeapon = wanted
		ch.HasQueuedWeapon = true
		return
	}

	ch.PrevWeapon = ch.ActiveWeapon
	ch.ActiveWeapon = wanted
	ch.HasQueuedWeapon = false
}

var shotgunSpread = [5]float32{-0.185, -0.070, 0, 0.070, 0.185}

func isFullAuto(w types.WeaponType) bool {
	return w == types.WeaponGrenade || w == types.WeaponShotgun || w == types.WeaponLaser
}

// fireWeapon runs one tick of fire handling: refire gating, ammo, and the
// per-weapon projectile/laser/hammer effect.
func (ch *Character) fireWeapon(pipe *Pipe) {
	if ch.AttackRecoil.IsActive() {
		return
	}

	fullAuto := isFullAuto(ch.ActiveWeapon)
	clicked := ch.QueuedInput.Fires > 0
	willFire := clicked || (fullAuto && ch.Input.State.Fire)
	if !willFire {
		return
	}

	cursor := ch.Input.Cursor
	if clicked {
		cursor = ch.QueuedInput.FireCursor
	}
	ch.QueuedInput.Fires = 0

	weapon, ok := ch.ReusableCore.Weapons.Get(ch.ActiveWeapon)
	assert.IsTrue(ok, "character %d has active weapon %s but does not own it", ch.ID, ch.ActiveWeapon)
	if weapon.HasAmmo && weapon.Ammo <= 0 {
		return
	}

	pos := ch.Pos.Pos()
	tun := pipe.Collision.GetTuneAt(pos)
	dir := omath.Normalize(cursor)
	if dir == (mgl32.Vec2{}) {
		dir = mgl32.Vec2{1, 0}
	}
	projStart := pos.Add(dir.Mul(PhysicalSize * 0.75))

	switch ch.ActiveWeapon {
	case types.WeaponHammer:
		ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundHammerFire})
		ch.hammerHit(pipe, projStart, dir, tun)

	case types.WeaponGun:
		ch.pushEvent(events.CharacterFireProjectile{Pos: projStart, Dir: dir, Weapon: types.WeaponGun})
		ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundGunFire})

	case types.WeaponShotgun:
		baseAngle := math32.Atan2(dir.Y(), dir.X())
		for i, spread := range shotgunSpread {
			a := baseAngle + spread
			v := 1.0 - math32.Abs(float32(i-2))/2.0
			speed := omath.MixF(tun.ShotgunSpeeddiff, 1.0, v)
			pdir := omath.Direction(a).Mul(speed)
			ch.pushEvent(events.CharacterFireProjectile{Pos: projStart, Dir: pdir, Weapon: types.WeaponShotgun})
		}
		ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundShotgunFire})

	case types.WeaponGrenade:
		ch.pushEvent(events.CharacterFireProjectile{Pos: projStart, Dir: dir, Weapon: types.WeaponGrenade})
		ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundGrenadeFire})

	case types.WeaponLaser:
		ch.pushEvent(events.CharacterFireLaser{Pos: pos, Dir: dir, Energy: tun.LaserReach})
		ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundLaserFire})

	default:
		assert.IsTrue(false, "fired unimplemented weapon %d", ch.ActiveWeapon)
	}

	if weapon.HasAmmo {
		weapon.Ammo--
		ch.ReusableCore.Weapons.Set(ch.ActiveWeapon, weapon)
	}

	ch.AttackRecoil = types.TickCooldown(fireDelayFor(tun, ch.ActiveWeapon))
	ch.RecoilStartTick = pipe.CurTick
}

// hammerHit damages every hookable character in swing range.
func (ch *Character) hammerHit(pipe *Pipe, hitPos, dir mgl32.Vec2, tun *tuning.Tunings) {
	ids := utils.GetIDList()
	pipe.Field.ByRadius(hitPos, PhysicalSize, ids)
	for _, id := range *ids {
		if id == ch.ID {
			continue
		}
		other, ok := pipe.Chars.GetChar(id)
		if !ok || !canCollide(ch, other) {
			continue
		}
		opos := other.Pos.Pos()
		if omath.Distance(opos, hitPos) > PhysicalSize {
			continue
		}
		force := mgl32.Vec2{0, -1.0}
		pushDir := omath.Normalize(opos.Sub(hitPos))
		if pushDir != (mgl32.Vec2{}) {
			force = omath.Normalize(pushDir.Add(mgl32.Vec2{0, -1.1})).Mul(10.0 * tun.HammerStrength)
		}
		other.TakeDamage(force, dir.Mul(-1), 3, ch.ID, true, types.WeaponHammer)
		ch.pushEvent(events.CharacterSound{Pos: opos, Sound: events.SoundHammerHit})
	}
	utils.PutIDList(ids)
}

// handleAmmoRegen regenerates gun ammo while the gun is the active weapon.
func (ch *Character) handleAmmoRegen() {
	w, ok := ch.ReusableCore.Weapons.Get(types.WeaponGun)
	if !ok || !w.HasAmmo || w.Ammo >= gunAmmo {
		return
	}
	if w.NextRegenTick == 0 {
		w.NextRegenTick = types.TickCooldown(types.TicksPerSecond / 2)
	} else if w.NextRegenTick.Tick() {
		w.Ammo++
	}
	ch.ReusableCore.Weapons.Set(types.WeaponGun, w)
}

// IncreaseHealth adds health up to the cap; reports whether any was gained.
func (ch *Character) IncreaseHealth(amount int32) bool {
	if ch.Health >= maxHealth {
		return false
	}
	ch.Health += amount
	if ch.Health > maxHealth {
		ch.Health = maxHealth
	}
	return true
}

// IncreaseArmor adds armor up to the cap; reports whether any was gained.
func (ch *Character) IncreaseArmor(amount int32) bool {
	if ch.Armor >= maxArmor {
		return false
	}
	ch.Armor += amount
	if ch.Armor > maxArmor {
		ch.Armor = maxArmor
	}
	return true
}

// TakeDamage applies force and damage. Self damage is halved (minimum one
// point); armor absorbs everything past the first health chip. Lethal
// damage emits the despawn event and marks the character dead.
func (ch *Character) TakeDamage(force, source mgl32.Vec2, dmg int32, from types.EntityID, hasFrom bool, weapon types.WeaponType) {
	if ch.Dead {
		return
	}
	ch.Core.Vel = ch.Core.Vel.Add(force)

	if hasFrom && from == ch.ID {
		dmg = int32(math32.Max(1, float32(dmg/2)))
	}

	pos := ch.Pos.Pos()
	if dmg > 0 {
		if dmg > 1 {
			ch.Health--
			dmg--
		}
		if ch.Armor > 0 {
			if dmg > ch.Armor {
				dmg -= ch.Armor
				ch.Armor = 0
			} else {
				ch.Armor -= dmg
				dmg = 0
			}
		}
		ch.Health -= dmg
		ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundDamage})
	}

	if ch.Health <= 0 {
		ch.Die(from, hasFrom, weapon)
	}
}

// Die marks the character for removal and emits the despawn event.
func (ch *Character) Die(killer types.EntityID, hasKiller bool, weapon types.WeaponType) {
	if ch.Dead {
		return
	}
	ch.Dead = true
	pos := ch.Pos.Pos()
	ch.pushEvent(events.CharacterSound{Pos: pos, Sound: events.SoundDeath})
	ch.pushEvent(events.CharacterDespawn{
		Pos:       pos,
		KillerID:  killer,
		HasKiller: hasKiller,
		Weapon:    weapon,
		Score:     ch.Score,
	})
}

// Tick runs one full character tick: weapon switch, physics, death tiles,
// fire handling and ammo regeneration.
func (ch *Character) Tick(pipe *Pipe) {
	if ch.Dead {
		return
	}
	ch.AttackRecoil.Tick()
	ch.handleWeaponSwitch()
	ch.PhysicsTick(true, pipe)

	pos := ch.Pos.Pos()
	if pipe.Collision.IsDeath(pos.X(), pos.Y()) || pipe.Collision.OutsidePlayfield(pos) {
		ch.Die(ch.ID, false, ch.ActiveWeapon)
		return
	}

	ch.fireWeapon(pipe)
	ch.handleAmmoRegen()
	if ch.EmoteStopTick != 0 && pipe.CurTick >= ch.EmoteStopTick {
		ch.Emote = 0
		ch.EmoteStopTick = 0
	}
}

// TickDeferred runs the deferred physics pass, the move and the final
// quantization that makes the tick reproducible.
func (ch *Character) TickDeferred(pipe *Pipe) {
	if ch.Dead {
		return
	}
	ch.PhysicsTickDeferred(pipe)
	ch.PhysicsMove(pipe)
	ch.PhysicsQuantize()
}

// RespawnDelay returns the ticks a killed player waits before respawning.
func RespawnDelay() types.TickType {
	return respawnDelayTicks
}
