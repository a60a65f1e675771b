// Package body implements the rigs of the Body stage, the ones that
// decide where the camera goes.
//
// Every rig here keeps some frame-to-frame state so it can damp its
// motion. That state is reset whenever the camera passes a negative
// delta time or the follow target changes, and it can be shifted with
// OnTargetObjectWarped() or rebased with ForceCameraPosition() so that
// teleports and externally imposed poses don't produce visible jumps.
package body

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Keeps the camera at a fixed offset from the follow target, in the
// reference frame given by the binding mode.
type Transposer struct {
	FollowOffset mgl64.Vec3       `yaml:"follow_offset"`
	Tracking     tracker.Settings `yaml:"tracking"`

	tracker tracker.TargetTracker
}

var (
	_ cinemachine.TargetWarpHandler = (*Transposer)(nil)
	_ cinemachine.PositionForcer    = (*Transposer)(nil)
)

func NewTransposer() *Transposer {
	return &Transposer{
		FollowOffset: mgl64.Vec3{0, 0, -10},
		Tracking:     tracker.DefaultSettings(),
	}
}

func (self *Transposer) Kind() cinemachine.ComponentKind { return cinemachine.KindTransposer }
func (self *Transposer) Stage() cinemachine.Stage        { return cinemachine.StageBody }

func (self *Transposer) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.Follow() != nil
}

func (self *Transposer) MaxDampTime() float64 {
	return self.Tracking.MaxDampTime()
}

// Returns the follow offset adjusted for the binding mode. Simple
// follow keeps the camera straight behind the target.
func (self *Transposer) EffectiveOffset() mgl64.Vec3 {
	offset := self.FollowOffset
	if self.Tracking.BindingMode == tracker.SimpleFollowWithWorldUp {
		offset[0] = 0
		offset[2] = -math.Abs(offset[2])
	}
	return offset
}

// Returns the tracker, for rigs that build on top of the transposer.
func (self *Transposer) Tracker() *tracker.TargetTracker { return &self.tracker }

func (self *Transposer) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.Tracking.Validate()
	offset := self.EffectiveOffset()
	self.tracker.InitStateInfo(vcam, deltaTime, self.Tracking.BindingMode, offset, state.ReferenceUp)
	self.mutateWithOffset(vcam, state, deltaTime, offset)
}

// Places the camera at the given offset, tracker already initialized.
func (self *Transposer) mutateWithOffset(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64, offset mgl64.Vec3) {
	pos, orientation := self.tracker.TrackTarget(vcam, deltaTime, state.ReferenceUp, offset, self.Tracking)
	offset = orientation.Rotate(offset)
	state.ReferenceUp = orientation.Rotate(utils.Up)

	targetPos := vcam.Follow().Position()
	pos = pos.Add(self.tracker.GetOffsetForMinimumTargetDistance(
		vcam, pos, offset, state.RawOrientation.Rotate(utils.Forward), state.ReferenceUp, targetPos))
	state.RawPosition = pos.Add(offset)
}

func (self *Transposer) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	if target == vcam.Follow() {
		self.tracker.OnTargetObjectWarped(positionDelta)
	}
}

func (self *Transposer) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	self.tracker.OnForceCameraPosition(vcam, self.Tracking.BindingMode, self.EffectiveOffset(), pos, rot, vcam.State().ReferenceUp)
}
