package group

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Largest half angle a framed group may span, in degrees.
const maxHalfAngle = 89.5

// A box in observer space. The box is centered on the forward axis.
type ViewBounds struct {
	Center mgl64.Vec3
	Size   mgl64.Vec3
}

// Fits the box the group spans on screen, taking perspective parallax
// into account. Each iteration measures the angular bounds, then
// shifts the observer sideways (keeping its orientation) so that the
// bounds become centered on the forward axis, since moving the
// observer may change which members are extremal.
//
// Returns the bounds as seen from the adjusted observer position, the
// adjusted position, and false if the group can't be framed from the
// given pose: the observer sits on the group center or no member is
// in front of it.
func ScreenSpaceBounds(group cinemachine.GroupTarget, observerPos mgl64.Vec3, observerRot mgl64.Quat, iterations int) (ViewBounds, mgl64.Vec3, bool) {
	center, _ := group.Sphere()
	if center.Sub(observerPos).Len() < utils.Epsilon {
		return ViewBounds{}, observerPos, false
	}
	observerRot = observerRot.Normalize()

	for range max(iterations, 1) {
		minAngles, maxAngles, zRange := group.ViewSpaceAngularBounds(observerPos, observerRot)
		if zRange[1] < utils.Epsilon {
			return ViewBounds{}, observerPos, false
		}
		shift := minAngles.Add(maxAngles).Mul(0.5)
		zMid := (zRange[0] + zRange[1]) / 2
		lateral := mgl64.Vec3{
			math.Tan(mgl64.DegToRad(shift[1])) * zMid,
			math.Tan(mgl64.DegToRad(shift[0])) * zMid,
			0,
		}
		observerPos = observerPos.Add(observerRot.Rotate(lateral))
	}

	bounds, ok := measure(group, observerPos, observerRot)
	return bounds, observerPos, ok
}

// Like [ScreenSpaceBounds](), for observers that can turn but not
// move: each iteration rotates the observer toward the center of the
// angular bounds instead of shifting it. Returns the bounds as seen
// with the adjusted rotation, and that rotation.
func AimedScreenSpaceBounds(group cinemachine.GroupTarget, observerPos, up mgl64.Vec3, iterations int) (ViewBounds, mgl64.Quat, bool) {
	center, _ := group.Sphere()
	fwd := center.Sub(observerPos)
	if fwd.Len() < utils.Epsilon {
		return ViewBounds{}, mgl64.QuatIdent(), false
	}
	observerRot := utils.LookRotation(fwd, up)

	for range max(iterations, 1) {
		minAngles, maxAngles, zRange := group.ViewSpaceAngularBounds(observerPos, observerRot)
		if zRange[1] < utils.Epsilon {
			return ViewBounds{}, observerRot, false
		}
		shift := minAngles.Add(maxAngles).Mul(0.5)
		// positive vertical angles are up, positive pitch looks down
		observerRot = utils.ApplyCameraRotation(observerRot, mgl64.Vec2{-shift[0], shift[1]}, up)
	}
	bounds, ok := measure(group, observerPos, observerRot)
	return bounds, observerRot, ok
}

// Returns the box the group spans in front of the observer, its width
// and height measured at the middle of the depth range.
func measure(group cinemachine.GroupTarget, observerPos mgl64.Vec3, observerRot mgl64.Quat) (ViewBounds, bool) {
	minAngles, maxAngles, zRange := group.ViewSpaceAngularBounds(observerPos, observerRot)
	if zRange[1] < utils.Epsilon {
		return ViewBounds{}, false
	}

	zMid := (zRange[0] + zRange[1]) / 2
	halfAngles := mgl64.Vec2{maxHalfAngle, maxHalfAngle}
	if zRange[0] > 0 {
		halfAngles = mgl64.Vec2{
			math.Min(math.Max(maxAngles[0], -minAngles[0]), maxHalfAngle),
			math.Min(math.Max(maxAngles[1], -minAngles[1]), maxHalfAngle),
		}
	}
	return ViewBounds{
		Center: mgl64.Vec3{0, 0, zMid},
		Size: mgl64.Vec3{
			math.Tan(mgl64.DegToRad(halfAngles[1])) * zMid * 2,
			math.Tan(mgl64.DegToRad(halfAngles[0])) * zMid * 2,
			zRange[1] - zRange[0],
		},
	}, true
}
