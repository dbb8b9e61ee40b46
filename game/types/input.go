package types

import "github.com/go-gl/mathgl/mgl32"

// InputState is the held portion of a character input: what the player is
// pressing right now, as opposed to edge-triggered click counts.
type InputState struct {
	Dir  int32
	Jump bool
	Hook bool
	Fire bool
}

// CharacterInput is the full per-character input payload sent every tick.
// Cursor is the aim vector relative to the character, in world units.
type CharacterInput struct {
	Cursor mgl32.Vec2
	State  InputState

	// WeaponDiff is a scroll-wheel delta, WeaponReq a direct weapon
	// selection; both are consumed on the tick they arrive.
	WeaponDiff   int64
	WeaponReq    WeaponType
	HasWeaponReq bool
}

// ConsumableInput carries the edge-triggered part of an input update:
// how many times a key was clicked since the previous input, and the cursor
// at the moment of the click.
type ConsumableInput struct {
	Jumps      int
	Fires      int
	FireCursor mgl32.Vec2
	Hooks      int
	HookCursor mgl32.Vec2
}

// Append accumulates another diff, keeping the latest click cursors.
func (c *ConsumableInput) Append(other ConsumableInput) {
	c.Jumps += other.Jumps
	c.Fires += other.Fires
	c.Hooks += other.Hooks
	if other.Fires > 0 {
		c.FireCursor = other.FireCursor
	}
	if other.Hooks > 0 {
		c.HookCursor = other.HookCursor
	}
}

// Reset clears all queued clicks.
func (c *ConsumableInput) Reset() {
	*c = ConsumableInput{}
}
