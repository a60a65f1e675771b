package tracker

import (
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Everything a binding mode needs to know to compute the reference
// orientation of the offset.
type ReferenceInputs struct {
	TargetPosition   mgl64.Vec3
	TargetRotation   mgl64.Quat
	RotationOnAssign mgl64.Quat
	CameraPosition   mgl64.Vec3
	WorldUp          mgl64.Vec3
}

// Returns the reference orientation for the given binding mode and
// whether it could be computed. It returns false in the gimbal cases,
// where the caller should keep the previous orientation.
func ReferenceOrientation(mode BindingMode, in ReferenceInputs) (mgl64.Quat, bool) {
	switch mode {
	case WorldSpace:
		return mgl64.QuatIdent(), true
	case LockToTargetOnAssign:
		return in.RotationOnAssign, true
	case LockToTargetWithWorldUp:
		fwd := utils.ProjectOntoPlane(in.TargetRotation.Rotate(utils.Forward), in.WorldUp)
		if utils.AlmostZero(fwd) {
			return mgl64.Quat{}, false // looking straight up or down
		}
		return utils.LookRotation(fwd, in.WorldUp), true
	case LockToTargetNoRoll:
		fwd := in.TargetRotation.Rotate(utils.Forward)
		if utils.AlmostZero(fwd.Cross(in.WorldUp)) {
			return mgl64.Quat{}, false
		}
		return utils.LookRotation(fwd, in.WorldUp), true
	case LockToTarget:
		return in.TargetRotation, true
	case SimpleFollowWithWorldUp:
		dir := utils.ProjectOntoPlane(in.TargetPosition.Sub(in.CameraPosition), in.WorldUp)
		if utils.AlmostZero(dir) {
			return mgl64.Quat{}, false // camera right above or below the target
		}
		return utils.LookRotation(dir, in.WorldUp), true
	default:
		panic("invalid BindingMode")
	}
}
