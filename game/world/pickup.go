package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/character"
	"github.com/oomph-ac/teesim/game/events"
	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

const (
	pickupPhysSize float32 = 14.0

	weaponPickupAmmo int32 = 10
)

// Pickup respawn delays in ticks.
const (
	PickupRespawnTicks      types.TickType = 15 * types.TicksPerSecond
	PickupNinjaRespawnTicks types.TickType = 90 * types.TicksPerSecond
)

// Pickup is a collectible standing on the field: heart, armor, a weapon or
// the ninja powerup. Weapon names which weapon for PickupWeapon pickups.
type Pickup struct {
	ID     types.EntityID
	Pos    mgl32.Vec2
	Ty     types.PickupType
	Weapon types.WeaponType

	Destroyed bool
	Events    []events.PickupEvent
}

func (p *Pickup) pushEvent(ev events.PickupEvent) {
	p.Events = append(p.Events, ev)
}

// collect applies the pickup to ch and reports whether it was consumed.
func (p *Pickup) collect(ch *character.Character) (events.SoundID, bool) {
	switch p.Ty {
	case types.PickupHeart:
		if !ch.IncreaseHealth(1) {
			return 0, false
		}
		return events.SoundPickupHealth, true

	case types.PickupArmor:
		if !ch.IncreaseArmor(1) {
			return 0, false
		}
		return events.SoundPickupArmor, true

	case types.PickupWeapon:
		if w, owned := ch.ReusableCore.Weapons.Get(p.Weapon); owned && w.Ammo >= weaponPickupAmmo {
			return 0, false
		}
		ch.GiveWeapon(p.Weapon, weaponPickupAmmo)
		return events.SoundWeaponSpawn, true

	case types.PickupNinja:
		return events.SoundPickupNinja, true
	}
	return 0, false
}

// Tick checks every nearby character for an overlap and hands the pickup to
// the first one it helps, in field query order.
func (p *Pickup) Tick(w *World, _ types.TickType) {
	if p.Destroyed {
		return
	}

	ids := w.charsByRadius(p.Pos, character.PhysicalSize+pickupPhysSize)
	for _, id := range *ids {
		ch, ok := w.GetChar(id)
		if !ok || ch.Dead {
			continue
		}
		if omath.Distance(ch.Pos.Pos(), p.Pos) >= character.PhysicalSize+pickupPhysSize {
			continue
		}
		sound, taken := p.collect(ch)
		if !taken {
			continue
		}
		p.Destroyed = true
		p.pushEvent(events.PickupCollected{Pos: p.Pos, Ty: p.Ty, Weapon: p.Weapon, By: id, Sound: sound})
		p.pushEvent(events.PickupDespawn{Pos: p.Pos, Ty: p.Ty, Weapon: p.Weapon})
		break
	}
	w.putCharList(ids)
}

// respawnDelay returns how long a collected pickup of this type stays gone.
func (p *Pickup) respawnDelay() types.TickType {
	if p.Ty == types.PickupNinja {
		return PickupNinjaRespawnTicks
	}
	return PickupRespawnTicks
}
