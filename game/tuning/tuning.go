// Package tuning holds the physics constants the simulation reads per
// position. Every value is a float32 so the math stays in 32-bit precision
// end to end.
package tuning

import (
	"io"

	"github.com/pelletier/go-toml/v2"
)

const ticksPerSecond = 50

// Tunings is the full set of physics constants. A world has one default
// set plus up to 256 tune zones addressed by tune tile number.
type Tunings struct {
	GroundControlSpeed float32 `toml:"ground_control_speed"`
	GroundControlAccel float32 `toml:"ground_control_accel"`
	GroundFriction     float32 `toml:"ground_friction"`
	GroundJumpImpulse  float32 `toml:"ground_jump_impulse"`
	AirJumpImpulse     float32 `toml:"air_jump_impulse"`
	AirControlSpeed    float32 `toml:"air_control_speed"`
	AirControlAccel    float32 `toml:"air_control_accel"`
	AirFriction        float32 `toml:"air_friction"`
	HookLength         float32 `toml:"hook_length"`
	HookFireSpeed      float32 `toml:"hook_fire_speed"`
	HookDragAccel      float32 `toml:"hook_drag_accel"`
	HookDragSpeed      float32 `toml:"hook_drag_speed"`
	Gravity            float32 `toml:"gravity"`
	VelrampStart       float32 `toml:"velramp_start"`
	VelrampRange       float32 `toml:"velramp_range"`
	VelrampCurvature   float32 `toml:"velramp_curvature"`
	GunCurvature       float32 `toml:"gun_curvature"`
	GunSpeed           float32 `toml:"gun_speed"`
	GunLifetime        float32 `toml:"gun_lifetime"`
	ShotgunCurvature   float32 `toml:"shotgun_curvature"`
	ShotgunSpeed       float32 `toml:"shotgun_speed"`
	ShotgunSpeeddiff   float32 `toml:"shotgun_speeddiff"`
	ShotgunLifetime    float32 `toml:"shotgun_lifetime"`
	GrenadeCurvature   float32 `toml:"grenade_curvature"`
	GrenadeSpeed       float32 `toml:"grenade_speed"`
	GrenadeLifetime    float32 `toml:"grenade_lifetime"`
	LaserReach         float32 `toml:"laser_reach"`
	LaserBounceDelay   float32 `toml:"laser_bounce_delay"`
	LaserBounceNum     float32 `toml:"laser_bounce_num"`
	LaserBounceCost    float32 `toml:"laser_bounce_cost"`
	LaserDamage        float32 `toml:"laser_damage"`
	PlayerCollision    float32 `toml:"player_collision"`
	PlayerHooking      float32 `toml:"player_hooking"`
	JetpackStrength    float32 `toml:"jetpack_strength"`
	ShotgunStrength    float32 `toml:"shotgun_strength"`
	ExplosionStrength  float32 `toml:"explosion_strength"`
	HammerStrength     float32 `toml:"hammer_strength"`
	HookDuration       float32 `toml:"hook_duration"`
	HammerFireDelay    float32 `toml:"hammer_fire_delay"`
	GunFireDelay       float32 `toml:"gun_fire_delay"`
	ShotgunFireDelay   float32 `toml:"shotgun_fire_delay"`
	GrenadeFireDelay   float32 `toml:"grenade_fire_delay"`
	LaserFireDelay     float32 `toml:"laser_fire_delay"`
	NinjaFireDelay     float32 `toml:"ninja_fire_delay"`
	HammerHitFireDelay float32 `toml:"hammer_hit_fire_delay"`
}

// Default returns the vanilla tuning values.
func Default() Tunings {
	return Tunings{
		GroundControlSpeed: 10.0,
		GroundControlAccel: 100.0 / ticksPerSecond,
		GroundFriction:     0.5,
		GroundJumpImpulse:  13.2,
		AirJumpImpulse:     12.0,
		AirControlSpeed:    250.0 / ticksPerSecond,
		AirControlAccel:    1.5,
		AirFriction:        0.95,
		HookLength:         380.0,
		HookFireSpeed:      80.0,
		HookDragAccel:      3.0,
		HookDragSpeed:      15.0,
		Gravity:            0.5,
		VelrampStart:       550.0,
		VelrampRange:       2000.0,
		VelrampCurvature:   1.4,
		GunCurvature:       1.25,
		GunSpeed:           2200.0,
		GunLifetime:        2.0,
		ShotgunCurvature:   1.25,
		ShotgunSpeed:       2750.0,
		ShotgunSpeeddiff:   0.8,
		ShotgunLifetime:    0.20,
		GrenadeCurvature:   7.0,
		GrenadeSpeed:       1000.0,
		GrenadeLifetime:    2.0,
		LaserReach:         800.0,
		LaserBounceDelay:   150.0,
		LaserBounceNum:     1000.0,
		LaserBounceCost:    0.0,
		LaserDamage:        5.0,
		PlayerCollision:    1.0,
		PlayerHooking:      1.0,
		JetpackStrength:    400.0,
		ShotgunStrength:    10.0,
		ExplosionStrength:  6.0,
		HammerStrength:     1.0,
		HookDuration:       1.25,
		HammerFireDelay:    125.0,
		GunFireDelay:       125.0,
		ShotgunFireDelay:   500.0,
		GrenadeFireDelay:   500.0,
		LaserFireDelay:     800.0,
		NinjaFireDelay:     800.0,
		HammerHitFireDelay: 320.0,
	}
}

// Load reads TOML tuning overrides on top of the defaults. Keys absent from
// the document keep their default value.
func Load(r io.Reader) (Tunings, error) {
	t := Default()
	dec := toml.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return Default(), err
	}
	return t, nil
}

// FireDelayTicks converts a millisecond fire delay tuning into whole ticks.
func FireDelayTicks(delayMs float32) uint64 {
	return uint64((delayMs * ticksPerSecond) / 1000.0)
}
