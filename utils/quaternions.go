package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotation of the given degrees around the axis. A zero axis
// returns the identity.
func AngleAxis(degrees float64, axis mgl64.Vec3) mgl64.Quat {
	axis = SafeNormalize(axis)
	if axis == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(mgl64.DegToRad(degrees), axis)
}

// Builds a rotation from Euler angles in degrees. The rotations are
// applied around Z first, then X, then Y.
func Euler(angles mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(angles[0]), Right)
	qy := mgl64.QuatRotate(mgl64.DegToRad(angles[1]), Up)
	qz := mgl64.QuatRotate(mgl64.DegToRad(angles[2]), Forward)
	return qy.Mul(qx).Mul(qz)
}

// Decomposes a rotation into the Euler angles that [Euler]() would
// take to rebuild it. Every component is returned in [0, 360).
func EulerAngles(q mgl64.Quat) mgl64.Vec3 {
	m := q.Normalize().Mat4()
	sinX := Clamp(-m.At(1, 2), -1, 1)
	var x, y, z float64
	if math.Abs(sinX) > 0.99999 {
		// gimbal lock: fold the roll into the yaw
		x = math.Asin(sinX)
		y = math.Atan2(-m.At(2, 0), m.At(0, 0))
		z = 0
	} else {
		x = math.Asin(sinX)
		y = math.Atan2(m.At(0, 2), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(1, 1))
	}
	return mgl64.Vec3{
		Repeat(mgl64.RadToDeg(x), 360),
		Repeat(mgl64.RadToDeg(y), 360),
		Repeat(mgl64.RadToDeg(z), 360),
	}
}

// Rotation whose forward axis points along the given direction and
// whose up axis is as close as possible to up. A zero forward returns
// the identity, and a forward parallel to up falls back to the
// shortest arc from [Forward].
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	z := SafeNormalize(forward)
	if z == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	x := SafeNormalize(up.Cross(z))
	if x == (mgl64.Vec3{}) {
		return FromToRotation(Forward, z)
	}
	y := z.Cross(x)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// Shortest arc rotation taking one direction into the other.
func FromToRotation(from, to mgl64.Vec3) mgl64.Quat {
	from, to = SafeNormalize(from), SafeNormalize(to)
	if from == (mgl64.Vec3{}) || to == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(from, to)
}

// Spherical interpolation along the shortest path, t clamped to [0, 1].
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if t == 0 {
		return a
	}
	if t == 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// Angle in degrees of the rotation taking a into b.
func QuatAngle(a, b mgl64.Quat) float64 {
	delta := a.Normalize().Inverse().Mul(b.Normalize())
	return mgl64.RadToDeg(2 * math.Atan2(delta.V.Len(), math.Abs(delta.W)))
}

// Rotation that takes v1 into v2, decomposed into a yaw around up
// followed by a pitch, so that it doesn't introduce roll. When one of
// the vectors is parallel to up it degrades to a plain shortest arc.
func SafeFromToRotation(v1, v2, up mgl64.Vec3) mgl64.Quat {
	p1 := ProjectOntoPlane(v1, up)
	p2 := ProjectOntoPlane(v2, up)
	if AlmostZero(p1) || AlmostZero(p2) {
		axis := v1.Cross(v2)
		if AlmostZero(axis) {
			axis = up
		}
		return AngleAxis(Angle(v1, v2), axis)
	}
	pitchChange := Angle(v2, up) - Angle(v1, up)
	yaw := AngleAxis(SignedAngle(p1, p2, up), up)
	pitch := AngleAxis(pitchChange, up.Cross(v1))
	return yaw.Mul(pitch)
}

// Applies a camera rotation: rot[0] is pitch around the local right
// axis and rot[1] is yaw around world up.
func ApplyCameraRotation(orient mgl64.Quat, rot mgl64.Vec2, worldUp mgl64.Vec3) mgl64.Quat {
	if rot.LenSqr() < Epsilon {
		return orient
	}
	pitch := AngleAxis(rot[0], Right)
	yaw := AngleAxis(rot[1], worldUp)
	return yaw.Mul(orient).Mul(pitch)
}

// Returns the (pitch, yaw) camera rotation that would turn orient to
// look along lookAtDir, yaw measured around world up. This is the
// inverse of [ApplyCameraRotation]().
func GetCameraRotationToTarget(orient mgl64.Quat, lookAtDir, worldUp mgl64.Vec3) mgl64.Vec2 {
	if AlmostZero(lookAtDir) {
		return mgl64.Vec2{}
	}
	toLocal := orient.Inverse()
	up := toLocal.Rotate(worldUp)
	lookAtDir = toLocal.Rotate(lookAtDir)

	angleH := 0.0
	targetDirH := ProjectOntoPlane(lookAtDir, up)
	if !AlmostZero(targetDirH) {
		currentDirH := ProjectOntoPlane(Forward, up)
		if AlmostZero(currentDirH) {
			// looking at a pole
			if Forward.Dot(up) > 0 {
				currentDirH = ProjectOntoPlane(Down, up)
			} else {
				currentDirH = ProjectOntoPlane(Up, up)
			}
		}
		angleH = SignedAngle(currentDirH, targetDirH, up)
	}
	q := AngleAxis(angleH, up)
	angleV := SignedAngle(q.Rotate(Forward), lookAtDir, q.Rotate(Right))
	return mgl64.Vec2{angleV, angleH}
}

// Interpolates between two orientations keeping the path sensible
// with respect to the reference up: the yaw is interpolated on the up
// plane and pitch/roll relative to it, so blends never roll sideways.
func SlerpWithReferenceUp(qa, qb mgl64.Quat, t float64, up mgl64.Vec3) mgl64.Quat {
	dirA := ProjectOntoPlane(qa.Rotate(Forward), up)
	dirB := ProjectOntoPlane(qb.Rotate(Forward), up)
	if AlmostZero(dirA) || AlmostZero(dirB) {
		return Slerp(qa, qb, t)
	}
	base := LookRotation(dirA, up)
	baseInv := base.Inverse()
	ea := EulerAngles(baseInv.Mul(qa))
	eb := EulerAngles(baseInv.Mul(qb))
	return base.Mul(Euler(mgl64.Vec3{
		LerpAngle(ea[0], eb[0], t),
		LerpAngle(ea[1], eb[1], t),
		LerpAngle(ea[2], eb[2], t),
	})).Normalize()
}

// Returns the Euler delta from one orientation to the next with each
// component wrapped to (-180, 180]. Float noise below 1e-6 degrees
// is snapped to 0.
func RelativeEuler(from, to mgl64.Quat) mgl64.Vec3 {
	relative := EulerAngles(from.Inverse().Mul(to))
	for i := range relative {
		if relative[i] > 180 {
			relative[i] -= 360
		}
		if math.Abs(relative[i]) < 1e-6 {
			relative[i] = 0
		}
	}
	return relative
}
