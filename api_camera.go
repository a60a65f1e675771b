package cinemachine

import (
	"math"

	"github.com/edwinsyarief/cinemachine/damper"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Creates a virtual camera at the origin with a default lens and
// empty rig slots. The logger gets the camera name and id attached;
// pass zerolog.Nop() to disable logging.
func NewVirtualCamera(name string, logger zerolog.Logger) *VirtualCamera {
	id := uuid.New()
	clock := NewManualClock(0)
	return &VirtualCamera{
		Name:                   name,
		Lens:                   DefaultLens(),
		FollowTargetAttachment: 1,
		LookAtTargetAttachment: 1,
		id:                     id,
		logger:                 logger.With().Str("camera", name).Str("camera_id", id.String()).Logger(),
		clock:                  clock,
		ownClock:               clock,
		state:                  NewCameraState(),
		rotation:               mgl64.QuatIdent(),
	}
}

// --- identity and services ---

// Returns the unique id of the camera.
func (self *VirtualCamera) ID() uuid.UUID { return self.id }

// Returns the camera logger, for rigs that want to report things.
func (self *VirtualCamera) Logger() *zerolog.Logger { return &self.logger }

// Sets the time source used by noise and heading rigs. By default
// each camera has its own clock, advanced by the update delta times.
// Passing nil restores that default.
func (self *VirtualCamera) SetClock(clock Clock) {
	self.mustNotBeUpdating("set the clock")
	if clock == nil {
		self.ownClock = NewManualClock(0)
		self.clock = self.ownClock
		return
	}
	self.clock, self.ownClock = clock, nil
}

// Returns the current time of the camera clock.
func (self *VirtualCamera) Now() float64 { return self.clock.Now() }

// --- components ---

// Places the component in the slot of its stage, replacing any
// previous one. Panics if the component is nil.
func (self *VirtualCamera) SetComponent(component Component) {
	self.mustNotBeUpdating("set components")
	if component == nil {
		panic("can't set a nil component, use RemoveComponent instead")
	}
	stage := component.Stage()
	if stage >= stageCount {
		panic("component has an invalid stage")
	}
	self.components[stage] = component
	self.PreviousStateIsValid = false
}

// Empties the slot for the given stage.
func (self *VirtualCamera) RemoveComponent(stage Stage) {
	self.mustNotBeUpdating("remove components")
	if stage < stageCount {
		self.components[stage] = nil
	}
}

// Returns the component in the slot for the given stage, or nil.
func (self *VirtualCamera) Component(stage Stage) Component {
	if stage >= stageCount {
		return nil
	}
	return self.components[stage]
}

// --- targets ---

func (self *VirtualCamera) Follow() Target { return self.follow }
func (self *VirtualCamera) LookAt() Target { return self.lookAt }

func (self *VirtualCamera) SetFollow(target Target) {
	self.mustNotBeUpdating("set the follow target")
	self.follow = target
}

func (self *VirtualCamera) SetLookAt(target Target) {
	self.mustNotBeUpdating("set the look at target")
	self.lookAt = target
}

// Whether the follow target changed since the previous update. Only
// meaningful while the camera updates.
func (self *VirtualCamera) FollowTargetChanged() bool { return self.followChanged }

// Whether the look at target changed since the previous update. Only
// meaningful while the camera updates.
func (self *VirtualCamera) LookAtTargetChanged() bool { return self.lookAtChanged }

// Returns the follow target as a group, if it is one.
func (self *VirtualCamera) FollowTargetAsGroup() (GroupTarget, bool) {
	return AsGroup(self.follow)
}

// Returns the look at target as a group, if it is one.
func (self *VirtualCamera) LookAtTargetAsGroup() (GroupTarget, bool) {
	return AsGroup(self.lookAt)
}

// --- state ---

// Whether the last update was done as the live (or blending) camera.
func (self *VirtualCamera) IsLive() bool { return self.isLive }

// Returns the state produced by the last update.
func (self *VirtualCamera) State() CameraState { return self.state }

// Returns the camera's own transform, which follows the raw pose
// produced by the rigs.
func (self *VirtualCamera) Position() mgl64.Vec3 { return self.position }
func (self *VirtualCamera) Rotation() mgl64.Quat { return self.rotation }

// Places the camera transform without notifying the rigs. The next
// update is treated as a cut. Use [VirtualCamera.ForceCameraPosition]()
// to keep damping continuous instead.
func (self *VirtualCamera) SetTransform(pos mgl64.Vec3, rot mgl64.Quat) {
	self.mustNotBeUpdating("set the transform")
	self.position, self.rotation = pos, rot.Normalize()
	self.state.RawPosition, self.state.RawOrientation = self.position, self.rotation
	self.PreviousStateIsValid = false
}

// Runs the rig pipeline for this frame. isLive tells the rigs whether
// this camera is currently driving the output (alone or in a blend).
// A negative deltaTime forces a cut.
func (self *VirtualCamera) UpdateCameraState(worldUp mgl64.Vec3, deltaTime float64, isLive bool) {
	self.updateCameraState(worldUp, deltaTime, isLive)
}

// Notifies the camera that a target was teleported by the given delta,
// so rigs can shift their damping state and avoid a visible jump.
func (self *VirtualCamera) OnTargetObjectWarped(target Target, positionDelta mgl64.Vec3) {
	self.mustNotBeUpdating("warp targets")
	if target == nil {
		return
	}
	self.logger.Debug().Floats64("delta", positionDelta[:]).Msg("target warped")
	if target == self.follow {
		self.position = self.position.Add(positionDelta)
		self.state.RawPosition = self.state.RawPosition.Add(positionDelta)
	}
	for _, component := range self.components {
		if handler, ok := component.(TargetWarpHandler); ok {
			handler.OnTargetObjectWarped(self, target, positionDelta)
		}
	}
}

// Imposes a pose on the camera. The rigs rebase their internal state
// so that tracking resumes from there without a jump.
func (self *VirtualCamera) ForceCameraPosition(pos mgl64.Vec3, rot mgl64.Quat) {
	self.mustNotBeUpdating("force the camera position")
	self.logger.Debug().Floats64("position", pos[:]).Msg("camera position forced")
	rot = rot.Normalize()
	self.position, self.rotation = pos, rot
	self.state.RawPosition, self.state.RawOrientation = pos, rot
	for _, component := range self.components {
		if forcer, ok := component.(PositionForcer); ok {
			forcer.ForceCameraPosition(self, pos, rot)
		}
	}
}

// Called by the brain when this camera goes live. If the camera
// inherits position, it starts from the state it's taking over from.
// Otherwise, if it wasn't live on the previous frame, it cuts.
func (self *VirtualCamera) OnTransitionFromCamera(from *CameraState, worldUp mgl64.Vec3, deltaTime float64) {
	wasLive := self.isLive
	if from != nil && self.Transition.InheritPosition && deltaTime >= 0 {
		self.ForceCameraPosition(from.FinalPosition(), from.CorrectedOrientation())
		self.PreviousStateIsValid = true
		return
	}
	if !wasLive {
		self.PreviousStateIsValid = false
	}
}

// Returns the longest damping time among the rigs.
func (self *VirtualCamera) MaxDampTime() float64 {
	maxTime := 0.0
	for _, component := range self.components {
		if component != nil {
			maxTime = math.Max(maxTime, component.MaxDampTime())
		}
	}
	return maxTime
}

// --- detached damping ---

// Damps like [damper.Damp](), loosened by the follow target
// attachment: a detached camera damps with at least one second and
// a slower clock.
func (self *VirtualCamera) DetachedFollowTargetDamp(initial, dampTime, deltaTime float64) float64 {
	return detachedDamp(initial, dampTime, deltaTime, self.FollowTargetAttachment)
}

// Vector version of [VirtualCamera.DetachedFollowTargetDamp]().
func (self *VirtualCamera) DetachedFollowTargetDampVec3(initial, dampTime mgl64.Vec3, deltaTime float64) mgl64.Vec3 {
	for i := range initial {
		initial[i] = detachedDamp(initial[i], dampTime[i], deltaTime, self.FollowTargetAttachment)
	}
	return initial
}

// Same as [VirtualCamera.DetachedFollowTargetDamp](), using the look
// at target attachment.
func (self *VirtualCamera) DetachedLookAtTargetDamp(initial, dampTime, deltaTime float64) float64 {
	return detachedDamp(initial, dampTime, deltaTime, self.LookAtTargetAttachment)
}

// Vector version of [VirtualCamera.DetachedLookAtTargetDamp]().
func (self *VirtualCamera) DetachedLookAtTargetDampVec3(initial, dampTime mgl64.Vec3, deltaTime float64) mgl64.Vec3 {
	for i := range initial {
		initial[i] = detachedDamp(initial[i], dampTime[i], deltaTime, self.LookAtTargetAttachment)
	}
	return initial
}

func detachedDamp(initial, dampTime, deltaTime, attachment float64) float64 {
	attachment = utils.Clamp01(attachment)
	dampTime = utils.Lerp(math.Max(1, dampTime), dampTime, attachment)
	deltaTime = utils.Lerp(0, deltaTime, attachment)
	return damper.Damp(initial, dampTime, deltaTime)
}
