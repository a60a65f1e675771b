package aim

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Copies the follow target rotation, optionally with damping.
type SameAsFollowTarget struct {
	// Seconds to catch up with the target rotation. 0 is rigid.
	Damping float64 `yaml:"damping"`

	previousOrientation mgl64.Quat
}

func NewSameAsFollowTarget() *SameAsFollowTarget {
	return &SameAsFollowTarget{previousOrientation: mgl64.QuatIdent()}
}

func (self *SameAsFollowTarget) Kind() cinemachine.ComponentKind {
	return cinemachine.KindSameAsFollowTarget
}
func (self *SameAsFollowTarget) Stage() cinemachine.Stage { return cinemachine.StageAim }

func (self *SameAsFollowTarget) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.Follow() != nil
}

func (self *SameAsFollowTarget) MaxDampTime() float64 { return math.Max(0, self.Damping) }

func (self *SameAsFollowTarget) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	orientation := vcam.Follow().Rotation().Normalize()
	if deltaTime >= 0 && vcam.PreviousStateIsValid {
		t := vcam.DetachedFollowTargetDamp(1, math.Max(0, self.Damping), deltaTime)
		orientation = utils.Slerp(self.previousOrientation, orientation, t)
	}
	self.previousOrientation = orientation
	state.RawOrientation = orientation
}
