package aim

import (
	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Keeps the look at point dead center, with no damping.
type HardLookAt struct {
	// Offset from the look at target, in target space.
	LookAtOffset mgl64.Vec3 `yaml:"look_at_offset"`
}

func NewHardLookAt() *HardLookAt { return &HardLookAt{} }

func (self *HardLookAt) Kind() cinemachine.ComponentKind { return cinemachine.KindHardLookAt }
func (self *HardLookAt) Stage() cinemachine.Stage        { return cinemachine.StageAim }
func (self *HardLookAt) MaxDampTime() float64            { return 0 }

func (self *HardLookAt) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.LookAt() != nil
}

func (self *HardLookAt) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	if !state.HasLookAt {
		return
	}
	point := state.ReferenceLookAt.Add(vcam.LookAt().Rotation().Rotate(self.LookAtOffset))
	dir := point.Sub(state.CorrectedPosition())
	if utils.AlmostZero(dir) {
		return
	}
	// straight up or down keeps the previous roll
	if utils.AlmostZero(utils.ProjectOntoPlane(dir, state.ReferenceUp)) {
		fwd := state.RawOrientation.Rotate(utils.Forward)
		state.RawOrientation = utils.FromToRotation(fwd, dir).Mul(state.RawOrientation).Normalize()
		return
	}
	state.RawOrientation = utils.LookRotation(dir, state.ReferenceUp)
}
