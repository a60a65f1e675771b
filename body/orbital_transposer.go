package body

import (
	"fmt"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Where the orbital transposer's target heading comes from.
type HeadingDefinition uint8

const (
	HeadingPositionDelta HeadingDefinition = iota // target motion between frames
	HeadingVelocity                               // target velocity, for [cinemachine.VelocityTarget]
	HeadingTargetForward                          // target forward axis
	HeadingWorldForward                           // world +Z
	headingDefinitionCount
)

var headingDefinitionNames = [headingDefinitionCount]string{
	HeadingPositionDelta: "position_delta",
	HeadingVelocity:      "velocity",
	HeadingTargetForward: "target_forward",
	HeadingWorldForward:  "world_forward",
}

func (self HeadingDefinition) String() string {
	if self >= headingDefinitionCount {
		return "unknown"
	}
	return headingDefinitionNames[self]
}

func (self HeadingDefinition) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *HeadingDefinition) UnmarshalText(text []byte) error {
	for definition, name := range headingDefinitionNames {
		if name == string(text) {
			*self = HeadingDefinition(definition)
			return nil
		}
	}
	return fmt.Errorf("unknown heading definition %q", text)
}

type Heading struct {
	Definition HeadingDefinition `yaml:"definition"`

	// Smoothing of the position delta and velocity headings, 0-10.
	VelocityFilterStrength int `yaml:"velocity_filter_strength"`

	// Added to the heading, in degrees.
	Bias float64 `yaml:"bias"`
}

// Computes the heading (degrees around the reference up) at which the
// orbital transposer places the camera this frame.
type HeadingUpdater func(rig *OrbitalTransposer, vcam *cinemachine.VirtualCamera, deltaTime float64, up mgl64.Vec3) float64

type OrbitalOption func(*OrbitalTransposer)

// Replaces the default heading computation, which reads the heading
// axis and recenters it toward the target heading.
func WithHeadingUpdater(updater HeadingUpdater) OrbitalOption {
	return func(rig *OrbitalTransposer) { rig.headingUpdater = updater }
}

// A transposer whose offset orbits the target around the up axis,
// driven by a heading axis that recenters toward a heading derived
// from the target motion.
type OrbitalTransposer struct {
	Transposer `yaml:",inline"`

	Heading Heading `yaml:"heading"`

	// Current orbit angle, -180..180. Its recentering settings control
	// how it drifts back to the target heading.
	HeadingAxis cinemachine.InputAxis `yaml:"heading_axis"`

	lastHeading        float64
	headingUpdater     HeadingUpdater
	headingTracker     *tracker.HeadingTracker
	previousTarget     cinemachine.Target
	lastTargetPosition mgl64.Vec3
	lastCameraPosition mgl64.Vec3
}

var (
	_ cinemachine.TargetWarpHandler = (*OrbitalTransposer)(nil)
	_ cinemachine.PositionForcer    = (*OrbitalTransposer)(nil)
)

func NewOrbitalTransposer(options ...OrbitalOption) *OrbitalTransposer {
	rig := &OrbitalTransposer{
		Transposer:  *NewTransposer(),
		Heading:     Heading{Definition: HeadingTargetForward, VelocityFilterStrength: 4},
		HeadingAxis: cinemachine.DefaultHorizontalAxis(),
	}
	rig.HeadingAxis.Recentering.Enabled = true
	rig.headingUpdater = DefaultHeadingUpdater
	for _, option := range options {
		option(rig)
	}
	return rig
}

func (self *OrbitalTransposer) Kind() cinemachine.ComponentKind {
	return cinemachine.KindOrbitalTransposer
}

// Returns the heading computed on the last frame.
func (self *OrbitalTransposer) LastHeading() float64 { return self.lastHeading }

func (self *OrbitalTransposer) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.Tracking.Validate()
	self.HeadingAxis.Range = mgl64.Vec2{-180, 180}
	self.HeadingAxis.Wrap = true
	self.Heading.VelocityFilterStrength = max(0, min(10, self.Heading.VelocityFilterStrength))

	// a cut or a new target forgets the motion history the heading is
	// derived from
	follow := vcam.Follow()
	if follow != self.previousTarget || deltaTime < 0 || !vcam.PreviousStateIsValid {
		self.previousTarget = follow
		self.lastTargetPosition = follow.Position()
		self.headingTracker = nil
	}

	// the heading offset is only known after the heading update, which
	// needs the tracker's reference orientation
	self.tracker.InitStateInfo(vcam, deltaTime, self.Tracking.BindingMode, self.EffectiveOffset(), state.ReferenceUp)
	self.lastHeading = self.headingUpdater(self, vcam, deltaTime, state.ReferenceUp)
	heading := self.lastHeading
	if self.Tracking.BindingMode != tracker.SimpleFollowWithWorldUp {
		heading += self.Heading.Bias
	}
	offset := utils.AngleAxis(heading, utils.Up).Rotate(self.EffectiveOffset())
	self.mutateWithOffset(vcam, state, deltaTime, offset)

	targetPosition := follow.Position()
	if deltaTime >= 0 && vcam.PreviousStateIsValid {
		lookAt := targetPosition
		if vcam.LookAt() != nil {
			lookAt = vcam.LookAt().Position()
		}
		dir0 := self.lastCameraPosition.Sub(lookAt)
		dir1 := state.RawPosition.Sub(lookAt)
		if dir0.LenSqr() > 0.01 && dir1.LenSqr() > 0.01 {
			state.PositionDampingBypass = utils.EulerAngles(utils.SafeFromToRotation(dir0, dir1, state.ReferenceUp))
		}
	}
	self.lastTargetPosition = targetPosition
	self.lastCameraPosition = state.RawPosition
}

// The standard heading update: reads the heading axis and recenters
// it toward the target heading. With simple follow the axis is a
// one-shot delta that resets to 0 every frame.
func DefaultHeadingUpdater(rig *OrbitalTransposer, vcam *cinemachine.VirtualCamera, deltaTime float64, up mgl64.Vec3) float64 {
	axis := &rig.HeadingAxis
	now := vcam.Now()
	axis.TrackValueChange(now)
	if deltaTime < 0 || !vcam.PreviousStateIsValid || !vcam.IsLive() {
		axis.CancelRecentering(now)
	}

	if rig.Tracking.BindingMode == tracker.SimpleFollowWithWorldUp {
		heading := axis.Value
		axis.Value = 0
		axis.TrackValueChange(now)
		return heading
	}
	// with no motion to go by, a cut recenters to the axis center
	currentHeading := axis.Value
	if deltaTime < 0 || !vcam.PreviousStateIsValid {
		currentHeading = axis.Center
	}
	targetOrientation := rig.tracker.GetReferenceOrientation(vcam, rig.Tracking.BindingMode, up)
	targetHeading := rig.TargetHeading(vcam, currentHeading, targetOrientation)
	axis.UpdateRecenteringTo(deltaTime, now, targetHeading)
	return axis.Value
}

// Returns the heading, relative to the target orientation, that the
// heading definition asks for. Returns currentHeading when there's no
// reliable heading.
func (self *OrbitalTransposer) TargetHeading(vcam *cinemachine.VirtualCamera, currentHeading float64, targetOrientation mgl64.Quat) float64 {
	follow := vcam.Follow()
	if follow == nil {
		return currentHeading
	}
	definition := self.Heading.Definition
	velocityTarget, hasVelocity := follow.(cinemachine.VelocityTarget)
	if definition == HeadingVelocity && !hasVelocity {
		definition = HeadingPositionDelta
	}

	var velocity mgl64.Vec3
	switch definition {
	case HeadingVelocity:
		velocity = velocityTarget.Velocity()
	case HeadingPositionDelta:
		velocity = follow.Position().Sub(self.lastTargetPosition)
	case HeadingTargetForward:
		velocity = follow.Rotation().Rotate(utils.Forward)
	default:
		return 0
	}

	up := targetOrientation.Rotate(utils.Up)
	velocity = utils.ProjectOntoPlane(velocity, up)
	if definition != HeadingTargetForward {
		filterSize := self.Heading.VelocityFilterStrength * 5
		if filterSize > 0 {
			if self.headingTracker == nil || self.headingTracker.FilterSize() != filterSize {
				self.headingTracker = tracker.NewHeadingTracker(filterSize)
			}
			now := vcam.Now()
			self.headingTracker.DecayHistory(now)
			self.headingTracker.Add(velocity, now)
			velocity = self.headingTracker.GetReliableHeading()
		}
	}
	if utils.AlmostZero(velocity) {
		return currentHeading
	}
	return utils.SignedAngle(targetOrientation.Rotate(utils.Forward), velocity, up)
}

func (self *OrbitalTransposer) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	self.Transposer.OnTargetObjectWarped(vcam, target, positionDelta)
	if target == vcam.Follow() {
		self.lastTargetPosition = self.lastTargetPosition.Add(positionDelta)
		self.lastCameraPosition = self.lastCameraPosition.Add(positionDelta)
	}
}

func (self *OrbitalTransposer) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	up := vcam.State().ReferenceUp
	self.HeadingAxis.Value = self.axisClosestValue(vcam, pos, up)
	heading := self.HeadingAxis.Value
	if self.Tracking.BindingMode != tracker.SimpleFollowWithWorldUp {
		heading += self.Heading.Bias
	}
	offset := utils.AngleAxis(heading, utils.Up).Rotate(self.EffectiveOffset())
	self.tracker.OnForceCameraPosition(vcam, self.Tracking.BindingMode, offset, pos, rot, up)
	self.lastCameraPosition = pos
}

// Returns the heading axis value that would put the camera closest to
// the given position.
func (self *OrbitalTransposer) axisClosestValue(vcam *cinemachine.VirtualCamera, cameraPos, up mgl64.Vec3) float64 {
	follow := vcam.Follow()
	orientation := self.tracker.GetReferenceOrientation(vcam, self.Tracking.BindingMode, up)
	fwd := utils.ProjectOntoPlane(orientation.Rotate(utils.Forward), up)
	if follow == nil || utils.AlmostZero(fwd) {
		return self.lastHeading
	}
	bias := 0.0
	if self.Tracking.BindingMode != tracker.SimpleFollowWithWorldUp {
		bias = self.Heading.Bias
	}
	orientation = orientation.Mul(utils.AngleAxis(bias, utils.Up))
	targetPos := follow.Position()
	a := utils.ProjectOntoPlane(orientation.Rotate(self.EffectiveOffset()), up)
	b := utils.ProjectOntoPlane(cameraPos.Sub(targetPos), up)
	return utils.SignedAngle(a, b, up)
}
