package body

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/go-gl/mathgl/mgl64"
)

// Puts the camera exactly on the follow target, optionally damped.
type HardLockToTarget struct {
	Damping float64 `yaml:"damping"`

	previousPosition mgl64.Vec3
}

var _ cinemachine.TargetWarpHandler = (*HardLockToTarget)(nil)

func NewHardLockToTarget() *HardLockToTarget { return &HardLockToTarget{} }

func (self *HardLockToTarget) Kind() cinemachine.ComponentKind {
	return cinemachine.KindHardLockToTarget
}
func (self *HardLockToTarget) Stage() cinemachine.Stage { return cinemachine.StageBody }

func (self *HardLockToTarget) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.Follow() != nil
}

func (self *HardLockToTarget) MaxDampTime() float64 { return math.Max(0, self.Damping) }

func (self *HardLockToTarget) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	target := vcam.Follow().Position()
	pos := target
	if deltaTime >= 0 && vcam.PreviousStateIsValid && !vcam.FollowTargetChanged() {
		delta := target.Sub(self.previousPosition)
		pos = self.previousPosition.Add(vcam.DetachedFollowTargetDampVec3(
			delta, mgl64.Vec3{self.Damping, self.Damping, self.Damping}, deltaTime))
	}
	self.previousPosition = pos
	state.RawPosition = pos
}

func (self *HardLockToTarget) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	if target == vcam.Follow() {
		self.previousPosition = self.previousPosition.Add(positionDelta)
	}
}
