package snapshot

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/oomph-ac/teesim/game/character"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		GameTick:      42,
		MonotonicTick: 4320042,
		Stages: []Stage{{
			ID:   1,
			Name: "main",
			Characters: []Character{{
				ID:     7,
				Core:   character.NetCore{PosX: 100, PosY: 200, VelX: 256, Jumps: 2},
				Health: 10,
				Armor:  3,
				Weapons: []Weapon{
					{Ty: 0},
					{Ty: 1, HasAmmo: true, Ammo: 9},
				},
				ActiveWeapon: 1,
				InputCursor:  mgl32.Vec2{1, -0.5},
			}},
			Projectiles: []Projectile{{
				ID: 9, Owner: 7, StartPos: mgl32.Vec2{110, 200},
				Direction: mgl32.Vec2{1, 0}, StartTick: 40, LifeSpan: 98, Weapon: 1,
			}},
			Match: Match{ScoreLimit: 5},
		}},
		Players: []Player{{ID: 7, StageID: 1}},
	}
}

func TestEncodeDecode(t *testing.T) {
	s := sampleSnapshot()
	data, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if dec.GameTick != 42 || dec.MonotonicTick != 4320042 {
		t.Fatalf("tick fields lost: %+v", dec)
	}
	if len(dec.Stages) != 1 || dec.Stages[0].Name != "main" {
		t.Fatalf("stage lost: %+v", dec.Stages)
	}
	ch := dec.Stages[0].Characters[0]
	if ch.Core != (character.NetCore{PosX: 100, PosY: 200, VelX: 256, Jumps: 2}) {
		t.Fatalf("net core mangled: %+v", ch.Core)
	}
	if len(ch.Weapons) != 2 || ch.Weapons[1].Ammo != 9 {
		t.Fatalf("weapons mangled: %+v", ch.Weapons)
	}
	if dec.Stages[0].Projectiles[0].LifeSpan != 98 {
		t.Fatalf("projectile mangled: %+v", dec.Stages[0].Projectiles[0])
	}
	if len(dec.Players) != 1 || dec.Players[0].ID != 7 {
		t.Fatalf("players mangled: %+v", dec.Players)
	}
}

func TestChecksum(t *testing.T) {
	a, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if Checksum(a) != Checksum(b) {
		t.Fatalf("identical snapshots hash differently")
	}

	changed := sampleSnapshot()
	changed.Stages[0].Characters[0].Core.PosX++
	c, err := Encode(changed)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if Checksum(a) == Checksum(c) {
		t.Fatalf("diverged snapshots hash identically")
	}
}
