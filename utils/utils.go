// Package utils gathers small vector and angle helpers shared by the
// rig packages. Everything here is stateless and uses the conventions
// of the rest of the module: +Z forward, +Y up, +X right, degrees for
// every angle unless a name says otherwise.
package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Threshold used for all the "is this basically zero" checks.
const Epsilon = 0.0001

// Unit axes, named from the camera's point of view.
var (
	Forward = mgl64.Vec3{0, 0, 1}
	Back    = mgl64.Vec3{0, 0, -1}
	Up      = mgl64.Vec3{0, 1, 0}
	Down    = mgl64.Vec3{0, -1, 0}
	Right   = mgl64.Vec3{1, 0, 0}
	Left    = mgl64.Vec3{-1, 0, 0}
)

// --- vectors ---

// Returns whether the vector length is below [Epsilon].
func AlmostZero(v mgl64.Vec3) bool {
	return v.LenSqr() < Epsilon*Epsilon
}

// Returns the normalized vector, or the zero vector if the input
// is too short to have a meaningful direction. Unlike
// [mgl64.Vec3.Normalize]() this never produces NaNs.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	length := v.Len()
	if length < Epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / length)
}

// Removes the component of v that lies along the plane normal.
// The normal doesn't need to be normalized.
func ProjectOntoPlane(v, planeNormal mgl64.Vec3) mgl64.Vec3 {
	lenSqr := planeNormal.LenSqr()
	if lenSqr < Epsilon*Epsilon {
		return v
	}
	return v.Sub(planeNormal.Mul(v.Dot(planeNormal) / lenSqr))
}

// Unsigned angle between two vectors, in degrees. Uses the atan2
// formulation, which stays precise for tiny and near-opposite angles.
func Angle(v1, v2 mgl64.Vec3) float64 {
	v1, v2 = SafeNormalize(v1), SafeNormalize(v2)
	return mgl64.RadToDeg(math.Atan2(v1.Sub(v2).Len(), v1.Add(v2).Len()) * 2)
}

// Signed angle from one vector to another around the given reference
// normal, in degrees.
func SignedAngle(from, to, refNormal mgl64.Vec3) float64 {
	angle := Angle(from, to)
	if math.Abs(angle) < Epsilon {
		return 0
	}
	if from.Cross(to).Dot(refNormal) < 0 {
		return -angle
	}
	return angle
}

// Returns the normalized [0, 1] position along the segment s0-s1 that
// is closest to p.
func ClosestPointOnSegment(p, s0, s1 mgl64.Vec3) float64 {
	s := s1.Sub(s0)
	lenSqr := s.LenSqr()
	if lenSqr < Epsilon {
		return 0
	}
	return Clamp01(p.Sub(s0).Dot(s) / lenSqr)
}

// Component-wise absolute value.
func AbsVec3(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

// Largest component of the vector.
func MaxComponent(v mgl64.Vec3) float64 {
	return math.Max(v[0], math.Max(v[1], v[2]))
}

// Returns a + (b - a) * t, with t clamped to [0, 1].
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(Clamp01(t)))
}

// True if any component of the vector is NaN or infinite.
func IsNaNVec3(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return false
}

// --- scalars ---

func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func Clamp01(value float64) float64 {
	return Clamp(value, 0, 1)
}

// Returns a + (b - a) * t, with t clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// Returns where value lies between a and b, in [0, 1].
func InverseLerp(a, b, value float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((value - a) / (b - a))
}

// Wraps t into [0, length).
func Repeat(t, length float64) float64 {
	if length <= 0 {
		return 0
	}
	t = math.Mod(t, length)
	if t < 0 {
		t += length
	}
	return t
}

// Returns the angle wrapped to (-180, 180].
func NormalizeAngle(angle float64) float64 {
	angle = Repeat(angle+180, 360) - 180
	if angle == -180 {
		return 180
	}
	return angle
}

// Lerps between two angles taking the shortest way around.
func LerpAngle(a, b, t float64) float64 {
	delta := Repeat(b-a, 360)
	if delta > 180 {
		delta -= 360
	}
	return a + delta*Clamp01(t)
}

// Returns -1 for negative values and 1 otherwise.
func Sign(value float64) float64 {
	if value < 0 {
		return -1
	}
	return 1
}
