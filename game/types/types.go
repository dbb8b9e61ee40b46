package types

// EntityID identifies any game element (stage, character, projectile, ...).
// IDs are minted by a single IDGenerator per game state and never reused.
type EntityID uint64

// TickType counts fixed simulation steps at 50 per second.
type TickType uint64

// TicksPerSecond is the fixed simulation rate.
const TicksPerSecond TickType = 50

// IDGenerator mints monotonically increasing entity ids.
type IDGenerator struct {
	next uint64
}

// NextID returns a fresh, never before handed out id.
func (g *IDGenerator) NextID() EntityID {
	g.next++
	return EntityID(g.next)
}

// Observe raises the generator watermark so that ids taken over from a
// snapshot can never collide with locally minted ones.
func (g *IDGenerator) Observe(id EntityID) {
	if uint64(id) > g.next {
		g.next = uint64(id)
	}
}

// WeaponType enumerates the weapons a character can hold.
type WeaponType uint8

const (
	WeaponHammer WeaponType = iota
	WeaponGun
	WeaponShotgun
	WeaponGrenade
	WeaponLaser

	NumWeapons
)

func (w WeaponType) String() string {
	switch w {
	case WeaponHammer:
		return "hammer"
	case WeaponGun:
		return "gun"
	case WeaponShotgun:
		return "shotgun"
	case WeaponGrenade:
		return "grenade"
	case WeaponLaser:
		return "laser"
	}
	return "unknown"
}

// PickupType enumerates the field pickups.
type PickupType uint8

const (
	PickupHeart PickupType = iota
	PickupArmor
	PickupNinja
	PickupWeapon
)

// FlagType is the side a flag belongs to.
type FlagType uint8

const (
	FlagRed FlagType = iota
	FlagBlue
)

// MatchSide is a character's team in sided match types.
type MatchSide uint8

const (
	SideRed MatchSide = iota
	SideBlue
)

// Move restriction bits, applied when clamping velocity against one-way
// movement tiles.
const (
	CannotMoveLeft = 1 << iota
	CannotMoveRight
	CannotMoveUp
	CannotMoveDown
)

// TickCooldown is a countdown in ticks; zero means inactive.
type TickCooldown uint64

// Tick ages the cooldown by one tick and reports whether it expired on
// exactly this tick.
func (c *TickCooldown) Tick() bool {
	if *c == 0 {
		return false
	}
	*c--
	return *c == 0
}

// IsActive reports whether the cooldown is still running.
func (c *TickCooldown) IsActive() bool {
	return *c != 0
}
