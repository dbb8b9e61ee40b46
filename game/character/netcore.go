package character

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/types"
	"github.com/oomph-ac/teesim/omath"
)

// NetCore is the wire representation of a character's physics state. All
// floats are stored as fixed point: positions as whole units, velocities
// and the hook direction in 1/256 steps. Quantization round-trips the live
// core through this struct so that predicted and confirmed simulation agree
// bit for bit.
type NetCore struct {
	PosX int32 `msgpack:"px"`
	PosY int32 `msgpack:"py"`
	VelX int32 `msgpack:"vx"`
	VelY int32 `msgpack:"vy"`

	HookKind    uint8  `msgpack:"hk"`
	HookState   uint8  `msgpack:"hs"`
	HookTick    uint64 `msgpack:"ht"`
	HookPosX    int32  `msgpack:"hx"`
	HookPosY    int32  `msgpack:"hy"`
	HookDirX    int32  `msgpack:"hdx"`
	HookDirY    int32  `msgpack:"hdy"`
	HookTeleX   int32  `msgpack:"htx"`
	HookTeleY   int32  `msgpack:"hty"`
	HookNewHook bool   `msgpack:"hn"`

	Jumped      int32 `msgpack:"j"`
	JumpedTotal int32 `msgpack:"jt"`
	Jumps       int32 `msgpack:"js"`
	Direction   int32 `msgpack:"d"`
	Angle       int32 `msgpack:"a"`
}

// PhysicsWrite encodes pos, core and hook into the fixed-point net core.
func PhysicsWrite(pos mgl32.Vec2, core *Core, hook *Hook, out *NetCore) {
	out.PosX = omath.Round32(pos.X())
	out.PosY = omath.Round32(pos.Y())
	out.VelX = omath.Round32(core.Vel.X() * 256.0)
	out.VelY = omath.Round32(core.Vel.Y() * 256.0)

	out.HookKind = uint8(hook.Kind)
	out.HookState = uint8(hook.State)
	out.HookTick = uint64(hook.Tick)
	out.HookPosX = omath.Round32(hook.Pos.X())
	out.HookPosY = omath.Round32(hook.Pos.Y())
	out.HookDirX = omath.Round32(hook.Dir.X() * 256.0)
	out.HookDirY = omath.Round32(hook.Dir.Y() * 256.0)
	out.HookTeleX = omath.Round32(hook.TeleBase.X())
	out.HookTeleY = omath.Round32(hook.TeleBase.Y())
	out.HookNewHook = hook.NewHook

	out.Jumped = core.Jumped
	out.JumpedTotal = core.JumpedTotal
	out.Jumps = core.Jumps
	out.Direction = core.Direction
	out.Angle = core.Angle
}

// PhysicsRead decodes a net core back into live physics state.
func PhysicsRead(nc *NetCore, pos *mgl32.Vec2, core *Core, hook *Hook) {
	*pos = mgl32.Vec2{float32(nc.PosX), float32(nc.PosY)}
	core.Vel = mgl32.Vec2{float32(nc.VelX) / 256.0, float32(nc.VelY) / 256.0}

	hook.Kind = HookKind(nc.HookKind)
	hook.State = HookState(nc.HookState)
	hook.Tick = types.TickType(nc.HookTick)
	hook.Pos = mgl32.Vec2{float32(nc.HookPosX), float32(nc.HookPosY)}
	hook.Dir = mgl32.Vec2{float32(nc.HookDirX) / 256.0, float32(nc.HookDirY) / 256.0}
	hook.TeleBase = mgl32.Vec2{float32(nc.HookTeleX), float32(nc.HookTeleY)}
	hook.NewHook = nc.HookNewHook

	core.Jumped = nc.Jumped
	core.JumpedTotal = nc.JumpedTotal
	core.Jumps = nc.Jumps
	core.Direction = nc.Direction
	core.Angle = nc.Angle
}
