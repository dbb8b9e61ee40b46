package tuning

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	tun := Default()
	if tun.GroundControlSpeed != 10.0 {
		t.Fatalf("GroundControlSpeed = %v, want 10", tun.GroundControlSpeed)
	}
	if tun.GroundJumpImpulse != 13.2 {
		t.Fatalf("GroundJumpImpulse = %v, want 13.2", tun.GroundJumpImpulse)
	}
	if tun.GunSpeed != 2200.0 {
		t.Fatalf("GunSpeed = %v, want 2200", tun.GunSpeed)
	}
	if tun.ExplosionStrength != 6.0 {
		t.Fatalf("ExplosionStrength = %v, want 6", tun.ExplosionStrength)
	}
}

func TestLoadOverrides(t *testing.T) {
	doc := "ground_jump_impulse = 14.0\nhook_length = 400.0\n"
	tun, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tun.GroundJumpImpulse != 14.0 {
		t.Fatalf("override lost: GroundJumpImpulse = %v", tun.GroundJumpImpulse)
	}
	if tun.HookLength != 400.0 {
		t.Fatalf("override lost: HookLength = %v", tun.HookLength)
	}
	// untouched keys keep their defaults
	if tun.GroundControlSpeed != 10.0 {
		t.Fatalf("default clobbered: GroundControlSpeed = %v", tun.GroundControlSpeed)
	}
}

func TestLoadBadDocument(t *testing.T) {
	if _, err := Load(strings.NewReader("ground_jump_impulse = {")); err == nil {
		t.Fatalf("Load accepted malformed document")
	}
}

func TestFireDelayTicks(t *testing.T) {
	if got := FireDelayTicks(125.0); got != 6 {
		t.Fatalf("FireDelayTicks(125) = %d, want 6", got)
	}
	if got := FireDelayTicks(500.0); got != 25 {
		t.Fatalf("FireDelayTicks(500) = %d, want 25", got)
	}
	if got := FireDelayTicks(0); got != 0 {
		t.Fatalf("FireDelayTicks(0) = %d, want 0", got)
	}
}
