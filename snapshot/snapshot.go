// Package snapshot defines the serializable mirror of a full game state.
// Snapshots are what the server ships to clients and what clients reconcile
// their predicted state against; applying the same snapshot twice must be a
// no-op, so everything here is plain data keyed by entity id.
package snapshot

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	"github.com/oomph-ac/teesim/game/character"
)

// Weapon is one inventory slot of a character.
type Weapon struct {
	Ty        uint8  `msgpack:"t"`
	HasAmmo   bool   `msgpack:"h"`
	Ammo      int32  `msgpack:"a"`
	RegenTick uint64 `msgpack:"r"`
}

// Character mirrors one live character. The physics state travels as the
// quantized net core, so a reconciled character lands on exactly the values
// the authoritative simulation computed.
type Character struct {
	ID   uint64            `msgpack:"id"`
	Core character.NetCore `msgpack:"c"`

	Health int32 `msgpack:"hp"`
	Armor  int32 `msgpack:"ar"`

	ActiveWeapon uint8    `msgpack:"aw"`
	Weapons      []Weapon `msgpack:"w"`

	InputDir    int32      `msgpack:"idr"`
	InputCursor mgl32.Vec2 `msgpack:"icu"`
	InputJump   bool       `msgpack:"ij"`
	InputHook   bool       `msgpack:"ih"`
	InputFire   bool       `msgpack:"if"`

	AttackRecoil    uint64 `msgpack:"rc"`
	RecoilStartTick uint64 `msgpack:"rs"`

	Score   int64 `msgpack:"s"`
	Side    uint8 `msgpack:"sd"`
	HasSide bool  `msgpack:"hsd"`

	Emote     uint8  `msgpack:"em"`
	EmoteStop uint64 `msgpack:"es"`

	HookedChar    uint64 `msgpack:"hc"`
	HasHookedChar bool   `msgpack:"hhc"`
}

// Projectile mirrors a projectile's closed-form flight parameters.
type Projectile struct {
	ID        uint64     `msgpack:"id"`
	Owner     uint64     `msgpack:"o"`
	StartPos  mgl32.Vec2 `msgpack:"p"`
	Direction mgl32.Vec2 `msgpack:"d"`
	StartTick uint64     `msgpack:"t"`
	LifeSpan  int64      `msgpack:"l"`
	Weapon    uint8      `msgpack:"w"`
}

// Laser mirrors a laser beam segment.
type Laser struct {
	ID       uint64     `msgpack:"id"`
	Owner    uint64     `msgpack:"o"`
	From     mgl32.Vec2 `msgpack:"f"`
	Pos      mgl32.Vec2 `msgpack:"p"`
	Dir      mgl32.Vec2 `msgpack:"d"`
	Energy   float32    `msgpack:"e"`
	Bounces  int32      `msgpack:"b"`
	EvalTick uint64     `msgpack:"t"`
}

// Pickup mirrors a standing pickup.
type Pickup struct {
	ID     uint64     `msgpack:"id"`
	Pos    mgl32.Vec2 `msgpack:"p"`
	Ty     uint8      `msgpack:"t"`
	Weapon uint8      `msgpack:"w"`
}

// Flag mirrors a flag and its carrier linkage.
type Flag struct {
	ID         uint64     `msgpack:"id"`
	Ty         uint8      `msgpack:"t"`
	Pos        mgl32.Vec2 `msgpack:"p"`
	StandPos   mgl32.Vec2 `msgpack:"sp"`
	Carrier    uint64     `msgpack:"c"`
	HasCarrier bool       `msgpack:"hc"`
}

// InactiveObject mirrors a collected pickup waiting to respawn.
type InactiveObject struct {
	Pos       mgl32.Vec2 `msgpack:"p"`
	Ty        uint8      `msgpack:"t"`
	Weapon    uint8      `msgpack:"w"`
	RespawnIn uint64     `msgpack:"r"`
}

// Match mirrors the match bookkeeping of a stage.
type Match struct {
	Sided        bool     `msgpack:"sd"`
	State        uint8    `msgpack:"st"`
	WinnerIsSide bool     `msgpack:"wis"`
	WinnerSide   uint8    `msgpack:"ws"`
	WinnerPlayer uint64   `msgpack:"wp"`
	GameOverTick uint64   `msgpack:"got"`
	SideScores   [2]int64 `msgpack:"ss"`
	ScoreLimit   int64    `msgpack:"sl"`
}

// Stage mirrors one stage. Entity slices keep the live collections'
// insertion order; reconciliation reproduces that order exactly.
type Stage struct {
	ID    uint64   `msgpack:"id"`
	Name  string   `msgpack:"n"`
	Color [3]uint8 `msgpack:"c"`

	Characters      []Character      `msgpack:"ch"`
	Projectiles     []Projectile     `msgpack:"pr"`
	Lasers          []Laser          `msgpack:"la"`
	Pickups         []Pickup         `msgpack:"pi"`
	Flags           []Flag           `msgpack:"fl"`
	InactiveObjects []InactiveObject `msgpack:"io"`

	Match Match `msgpack:"m"`
}

// Player bucket kinds for characters-less players.
const (
	NoCharSpectator uint8 = iota
	NoCharDead
	NoCharUnknown
)

// Player is a player that currently owns a character.
type Player struct {
	ID      uint64 `msgpack:"id"`
	StageID uint64 `msgpack:"st"`
}

// NoCharPlayer is a player without a character: spectating, waiting for a
// respawn, or not yet classified.
type NoCharPlayer struct {
	ID          uint64 `msgpack:"id"`
	Kind        uint8  `msgpack:"k"`
	RespawnIn   uint64 `msgpack:"r"`
	LastStageID uint64 `msgpack:"ls"`
	Score       int64  `msgpack:"s"`
}

// Snapshot is the full serializable state of a game at one tick.
type Snapshot struct {
	GameTick      uint64 `msgpack:"gt"`
	MonotonicTick uint64 `msgpack:"mt"`

	Stages        []Stage        `msgpack:"s"`
	Players       []Player       `msgpack:"p"`
	NoCharPlayers []NoCharPlayer `msgpack:"np"`

	// LocalPlayers names the recipient's own player ids when the snapshot
	// was built for a specific client.
	LocalPlayers []uint64 `msgpack:"lp"`
}

// Encode serializes the snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

// Decode deserializes a snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Checksum hashes an encoded snapshot; two states in sync produce the same
// checksum for the same tick.
func Checksum(data []byte) uint64 {
	return xxh3.Hash(data)
}
