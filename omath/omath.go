package omath

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Round32 rounds half away from zero. This is the rounding used by the
// fixed-point network encoding, so every quantization site must share it.
func Round32(val float32) int32 {
	return int32(math32.Round(val))
}

// RoundVec rounds both components of a vector half away from zero.
func RoundVec(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{float32(Round32(v.X())), float32(Round32(v.Y()))}
}

// Length returns the euclidean length of v, computed in float32.
func Length(v mgl32.Vec2) float32 {
	return math32.Sqrt(v.X()*v.X() + v.Y()*v.Y())
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b mgl32.Vec2) float32 {
	return Length(a.Sub(b))
}

// DistanceSq returns the squared distance between a and b.
func DistanceSq(a, b mgl32.Vec2) float32 {
	d := a.Sub(b)
	return d.X()*d.X() + d.Y()*d.Y()
}

// Normalize returns v scaled to unit length, or the zero vector when v has
// no length. Physics code must never divide by a zero-length cursor.
func Normalize(v mgl32.Vec2) mgl32.Vec2 {
	l := Length(v)
	if l == 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{v.X() / l, v.Y() / l}
}

// Mix linearly interpolates between a and b by t.
func Mix(a, b mgl32.Vec2, t float32) mgl32.Vec2 {
	return mgl32.Vec2{a.X() + (b.X()-a.X())*t, a.Y() + (b.Y()-a.Y())*t}
}

// MixF linearly interpolates between two scalars.
func MixF(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Direction returns the unit vector pointing at the given angle in radians.
func Direction(angle float32) mgl32.Vec2 {
	return mgl32.Vec2{math32.Cos(angle), math32.Sin(angle)}
}

// ClosestPointOnLine returns the point on the segment [p0, p1] closest to
// target. The second return is false when the segment has zero length.
func ClosestPointOnLine(p0, p1, target mgl32.Vec2) (mgl32.Vec2, bool) {
	seg := p1.Sub(p0)
	sq := seg.X()*seg.X() + seg.Y()*seg.Y()
	if sq <= 0 {
		return mgl32.Vec2{}, false
	}
	t := ((target.X()-p0.X())*seg.X() + (target.Y()-p0.Y())*seg.Y()) / sq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p0.Add(seg.Mul(t)), true
}

// VelocityRamp dampens speeds beyond start: identity below start, then an
// exponential falloff over the given range.
func VelocityRamp(value, start, rangev, curvature float32) float32 {
	if value < start {
		return 1.0
	}
	return 1.0 / math32.Pow(curvature, (value-start)/rangev)
}

// SaturatedAdd adds modifier to current but never pushes current past
// [minv, maxv]; a value already outside the bound is left untouched.
func SaturatedAdd(minv, maxv, current, modifier float32) float32 {
	if modifier < 0 {
		if current < minv {
			return current
		}
		current += modifier
		if current < minv {
			current = minv
		}
		return current
	}
	if current > maxv {
		return current
	}
	current += modifier
	if current > maxv {
		current = maxv
	}
	return current
}
