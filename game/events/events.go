// Package events defines the simulation events the world emits while
// ticking. Prediction ticks drop them; authoritative ticks hand them to the
// embedding game state for scoring, sounds and respawn bookkeeping.
package events

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/types"
)

// SoundID names a positioned sound effect triggered by the simulation.
type SoundID uint8

const (
	SoundJump SoundID = iota
	SoundAirJump
	SoundHookAttachGround
	SoundHookAttachPlayer
	SoundHookRetract
	SoundGunFire
	SoundShotgunFire
	SoundGrenadeFire
	SoundLaserFire
	SoundHammerFire
	SoundHammerHit
	SoundGrenadeExplode
	SoundLaserBounce
	SoundDamage
	SoundDeath
	SoundPickupHealth
	SoundPickupArmor
	SoundPickupNinja
	SoundWeaponSpawn
)

// CharacterEvent is any event a character emits during its tick.
type CharacterEvent interface{ characterEvent() }

// CharacterDespawn is emitted when a character dies or is removed. Score
// travels along so the player layer can carry it across the respawn.
type CharacterDespawn struct {
	Pos       mgl32.Vec2
	KillerID  types.EntityID
	HasKiller bool
	Weapon    types.WeaponType
	Score     int64
}

// CharacterSound is a positioned sound originating from a character.
type CharacterSound struct {
	Pos   mgl32.Vec2
	Sound SoundID
}

// CharacterFireProjectile asks the world to spawn a projectile.
type CharacterFireProjectile struct {
	Pos    mgl32.Vec2
	Dir    mgl32.Vec2
	Weapon types.WeaponType
}

// CharacterFireLaser asks the world to spawn a laser.
type CharacterFireLaser struct {
	Pos    mgl32.Vec2
	Dir    mgl32.Vec2
	Energy float32
}

func (CharacterDespawn) characterEvent()        {}
func (CharacterSound) characterEvent()          {}
func (CharacterFireProjectile) characterEvent() {}
func (CharacterFireLaser) characterEvent()      {}

// ProjectileEvent is any event a projectile emits.
type ProjectileEvent interface{ projectileEvent() }

// ProjectileDespawn is emitted when a projectile is removed.
type ProjectileDespawn struct {
	Pos mgl32.Vec2
}

// ProjectileSound is a positioned projectile sound (impact, explosion).
type ProjectileSound struct {
	Pos   mgl32.Vec2
	Sound SoundID
}

func (ProjectileDespawn) projectileEvent() {}
func (ProjectileSound) projectileEvent()   {}

// PickupEvent is any event a pickup emits.
type PickupEvent interface{ pickupEvent() }

// PickupDespawn is emitted when a pickup leaves the field; the world turns
// it into an inactive-object respawn countdown.
type PickupDespawn struct {
	Pos    mgl32.Vec2
	Ty     types.PickupType
	Weapon types.WeaponType
}

// PickupCollected is emitted when a character collects a pickup.
type PickupCollected struct {
	Pos    mgl32.Vec2
	Ty     types.PickupType
	Weapon types.WeaponType
	By     types.EntityID
	Sound  SoundID
}

func (PickupDespawn) pickupEvent()   {}
func (PickupCollected) pickupEvent() {}

// FlagEvent is any event a flag emits.
type FlagEvent interface{ flagEvent() }

// FlagDespawn is emitted when a flag is removed from the field.
type FlagDespawn struct {
	Pos mgl32.Vec2
	Ty  types.FlagType
}

// FlagCapture is emitted when a carrier brings the flag home.
type FlagCapture struct {
	Pos mgl32.Vec2
	Ty  types.FlagType
	By  types.EntityID
}

// FlagSound is a positioned flag sound (grab, return).
type FlagSound struct {
	Pos   mgl32.Vec2
	Sound SoundID
}

func (FlagDespawn) flagEvent() {}
func (FlagCapture) flagEvent() {}
func (FlagSound) flagEvent()   {}

// LaserEvent is any event a laser emits.
type LaserEvent interface{ laserEvent() }

// LaserDespawn is emitted when a laser dissipates.
type LaserDespawn struct {
	Pos mgl32.Vec2
}

// LaserSound is a positioned laser sound (bounce).
type LaserSound struct {
	Pos   mgl32.Vec2
	Sound SoundID
}

func (LaserDespawn) laserEvent() {}
func (LaserSound) laserEvent()   {}

// WorldEvent wraps an entity event with the id it originated from; the
// world accumulates these per tick and the state drains them.
type WorldEvent struct {
	Owner types.EntityID
	Ev    any
}

// StageEvent is a world event tagged with its stage.
type StageEvent struct {
	StageID types.EntityID
	WorldEvent
}
