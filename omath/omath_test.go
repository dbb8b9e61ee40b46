package omath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRound32HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float32
		want int32
	}{
		{0, 0},
		{0.4, 0},
		{0.5, 1},
		{1.5, 2},
		{-0.5, -1},
		{-1.5, -2},
		{145.5, 146},
	}
	for _, c := range cases {
		if got := Round32(c.in); got != c.want {
			t.Fatalf("Round32(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNormalizeZeroSafe(t *testing.T) {
	if got := Normalize(mgl32.Vec2{}); got != (mgl32.Vec2{}) {
		t.Fatalf("Normalize(zero) = %v, want zero", got)
	}
	n := Normalize(mgl32.Vec2{3, 4})
	if d := Length(n) - 1.0; d > 1e-6 || d < -1e-6 {
		t.Fatalf("Normalize(3,4) has length %v", Length(n))
	}
}

func TestSaturatedAdd(t *testing.T) {
	// adding past the bound clamps to it
	if got := SaturatedAdd(-10, 10, 9, 5); got != 10 {
		t.Fatalf("SaturatedAdd clamp high = %v, want 10", got)
	}
	if got := SaturatedAdd(-10, 10, -9, -5); got != -10 {
		t.Fatalf("SaturatedAdd clamp low = %v, want -10", got)
	}
	// a value already outside the bound is left untouched
	if got := SaturatedAdd(-10, 10, 15, 2); got != 15 {
		t.Fatalf("SaturatedAdd outside high = %v, want 15", got)
	}
	if got := SaturatedAdd(-10, 10, -15, -2); got != -15 {
		t.Fatalf("SaturatedAdd outside low = %v, want -15", got)
	}
	// outside the bound but moving back in is allowed
	if got := SaturatedAdd(-10, 10, 15, -3); got != 12 {
		t.Fatalf("SaturatedAdd recover = %v, want 12", got)
	}
}

func TestVelocityRampIdentityBelowStart(t *testing.T) {
	if got := VelocityRamp(100, 550, 2000, 1.4); got != 1.0 {
		t.Fatalf("VelocityRamp below start = %v, want 1", got)
	}
	if got := VelocityRamp(2000, 550, 2000, 1.4); got >= 1.0 {
		t.Fatalf("VelocityRamp above start = %v, want < 1", got)
	}
}

func TestClosestPointOnLine(t *testing.T) {
	p0 := mgl32.Vec2{0, 0}
	p1 := mgl32.Vec2{10, 0}

	cp, ok := ClosestPointOnLine(p0, p1, mgl32.Vec2{5, 3})
	if !ok || cp != (mgl32.Vec2{5, 0}) {
		t.Fatalf("ClosestPointOnLine mid = %v ok=%v", cp, ok)
	}
	// beyond the segment end clamps to the endpoint
	cp, ok = ClosestPointOnLine(p0, p1, mgl32.Vec2{20, 0})
	if !ok || cp != p1 {
		t.Fatalf("ClosestPointOnLine clamp = %v ok=%v", cp, ok)
	}
	if _, ok = ClosestPointOnLine(p0, p0, mgl32.Vec2{1, 1}); ok {
		t.Fatalf("ClosestPointOnLine on zero segment reported ok")
	}
}

func TestDirection(t *testing.T) {
	d := Direction(0)
	if d.X() < 0.999 || d.Y() > 0.001 {
		t.Fatalf("Direction(0) = %v", d)
	}
}
