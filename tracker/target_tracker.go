// Package tracker holds the target tracking logic shared by the
// follow rigs: a damped tracker bound to the follow target, a
// lookahead position predictor and a heading history.
//
// Trackers are embedded by value in the rigs that need them. They
// don't implement any pipeline interface on their own.
package tracker

import (
	"fmt"
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// The reference frame in which a follow offset is interpreted.
type BindingMode uint8

const (
	LockToTargetOnAssign    BindingMode = iota // target orientation at the moment it was assigned
	LockToTargetWithWorldUp                    // target yaw only
	LockToTargetNoRoll                         // target yaw and pitch
	LockToTarget                               // full target orientation
	WorldSpace                                 // world axes
	SimpleFollowWithWorldUp                    // the current camera-to-target direction
	bindingModeCount
)

var bindingModeNames = [bindingModeCount]string{
	LockToTargetOnAssign:    "lock_to_target_on_assign",
	LockToTargetWithWorldUp: "lock_to_target_with_world_up",
	LockToTargetNoRoll:      "lock_to_target_no_roll",
	LockToTarget:            "lock_to_target",
	WorldSpace:              "world_space",
	SimpleFollowWithWorldUp: "simple_follow_with_world_up",
}

func (self BindingMode) String() string {
	if self >= bindingModeCount {
		return "unknown"
	}
	return bindingModeNames[self]
}

// Returns the mode with the given name, as used in scene files.
func ParseBindingMode(name string) (BindingMode, error) {
	for mode, modeName := range bindingModeNames {
		if modeName == name {
			return BindingMode(mode), nil
		}
	}
	return 0, fmt.Errorf("unknown binding mode %q", name)
}

func (self BindingMode) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *BindingMode) UnmarshalText(text []byte) error {
	mode, err := ParseBindingMode(string(text))
	if err != nil {
		return err
	}
	*self = mode
	return nil
}

// How rotation damping is applied.
type AngularDampingMode uint8

const (
	AngularDampingEuler      AngularDampingMode = iota // per axis, can gimbal lock at steep pitches
	AngularDampingQuaternion                           // slerp, only used with LockToTarget
)

func (self AngularDampingMode) String() string {
	if self == AngularDampingQuaternion {
		return "quaternion"
	}
	return "euler"
}

func (self AngularDampingMode) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *AngularDampingMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "euler", "":
		*self = AngularDampingEuler
	case "quaternion":
		*self = AngularDampingQuaternion
	default:
		return fmt.Errorf("unknown angular damping mode %q", text)
	}
	return nil
}

// Tracking configuration shared by the transposer family.
type Settings struct {
	BindingMode        BindingMode        `yaml:"binding_mode"`
	PositionDamping    mgl64.Vec3         `yaml:"position_damping"` // seconds, in damping space x, y, z
	AngularDampingMode AngularDampingMode `yaml:"angular_damping_mode"`
	RotationDamping    mgl64.Vec3         `yaml:"rotation_damping"` // seconds, pitch, yaw, roll
	QuaternionDamping  float64            `yaml:"quaternion_damping"`
}

// Returns LockToTargetWithWorldUp tracking with one second of damping
// everywhere.
func DefaultSettings() Settings {
	return Settings{
		BindingMode:       LockToTargetWithWorldUp,
		PositionDamping:   mgl64.Vec3{1, 1, 1},
		RotationDamping:   mgl64.Vec3{1, 1, 1},
		QuaternionDamping: 1,
	}
}

// Clamps the damping times to non negative values.
func (self *Settings) Validate() {
	for i := range 3 {
		self.PositionDamping[i] = math.Max(0, self.PositionDamping[i])
		self.RotationDamping[i] = math.Max(0, self.RotationDamping[i])
	}
	self.QuaternionDamping = math.Max(0, self.QuaternionDamping)
}

// Position damping with the axes the binding mode ignores zeroed.
// Simple follow has no lateral damping.
func (self Settings) EffectivePositionDamping() mgl64.Vec3 {
	if self.BindingMode == SimpleFollowWithWorldUp {
		return mgl64.Vec3{0, self.PositionDamping[1], self.PositionDamping[2]}
	}
	return self.PositionDamping
}

// Rotation damping keeping only the axes the binding mode tracks.
func (self Settings) EffectiveRotationDamping() mgl64.Vec3 {
	switch self.BindingMode {
	case LockToTargetNoRoll:
		return mgl64.Vec3{self.RotationDamping[0], self.RotationDamping[1], 0}
	case LockToTargetWithWorldUp:
		return mgl64.Vec3{0, self.RotationDamping[1], 0}
	case LockToTarget:
		if self.AngularDampingMode == AngularDampingQuaternion {
			return mgl64.Vec3{self.QuaternionDamping, 0, 0}
		}
		return self.RotationDamping
	default:
		return mgl64.Vec3{}
	}
}

// Returns the longest of the effective damping times.
func (self Settings) MaxDampTime() float64 {
	pos := utils.MaxComponent(self.EffectivePositionDamping())
	rot := utils.MaxComponent(self.EffectiveRotationDamping())
	return math.Max(pos, rot)
}

// --- tracker ---

// The damped follow of a target, remembering where the tracked point
// and its reference orientation were on the previous frame.
//
// The zero value is ready to use: the first update snaps.
type TargetTracker struct {
	PreviousTargetPosition       mgl64.Vec3
	PreviousReferenceOrientation mgl64.Quat

	previousOffset            mgl64.Vec3
	targetOrientationOnAssign mgl64.Quat
	previousTarget            cinemachine.Target
}

// Refreshes the tracker at the start of a frame. When the previous
// state isn't valid or the follow target changed, the history snaps
// to the current values, so no damping happens this frame.
func (self *TargetTracker) InitStateInfo(vcam *cinemachine.VirtualCamera, deltaTime float64, mode BindingMode, offset, worldUp mgl64.Vec3) {
	prevStateValid := deltaTime >= 0 && vcam.PreviousStateIsValid
	target := vcam.Follow()
	if target != self.previousTarget || !prevStateValid {
		self.previousTarget = target
		self.targetOrientationOnAssign = mgl64.QuatIdent()
		if target != nil {
			self.targetOrientationOnAssign = target.Rotation()
		}
	}
	if !prevStateValid {
		self.previousOffset = offset
		self.PreviousReferenceOrientation = self.GetReferenceOrientation(vcam, mode, worldUp)
		if target != nil {
			self.PreviousTargetPosition = target.Position()
		}
	}
}

// Returns the orientation in which the follow offset is interpreted.
// Degenerate cases keep the previous reference orientation.
func (self *TargetTracker) GetReferenceOrientation(vcam *cinemachine.VirtualCamera, mode BindingMode, worldUp mgl64.Vec3) mgl64.Quat {
	if mode == WorldSpace {
		return mgl64.QuatIdent()
	}
	target := vcam.Follow()
	if target != nil {
		orientation, ok := ReferenceOrientation(mode, ReferenceInputs{
			TargetPosition:   target.Position(),
			TargetRotation:   target.Rotation(),
			RotationOnAssign: self.targetOrientationOnAssign,
			CameraPosition:   vcam.Position(),
			WorldUp:          worldUp,
		})
		if ok {
			return orientation
		}
	}
	return self.previousOrientation()
}

func (self *TargetTracker) previousOrientation() mgl64.Quat {
	if self.PreviousReferenceOrientation.Len() < utils.Epsilon {
		return mgl64.QuatIdent()
	}
	return self.PreviousReferenceOrientation.Normalize()
}

// Damps the tracked point toward the follow target and returns it
// along with the damped reference orientation. The camera goes at
// position + orientation * offset.
func (self *TargetTracker) TrackTarget(vcam *cinemachine.VirtualCamera, deltaTime float64, worldUp, desiredOffset mgl64.Vec3, settings Settings) (mgl64.Vec3, mgl64.Quat) {
	target := vcam.Follow()
	targetPosition := target.Position()
	targetOrientation := self.GetReferenceOrientation(vcam, settings.BindingMode, worldUp)
	prevStateValid := deltaTime >= 0 && vcam.PreviousStateIsValid

	// orientation
	dampedOrientation := targetOrientation
	if prevStateValid {
		prev := self.previousOrientation()
		switch {
		case settings.AngularDampingMode == AngularDampingQuaternion && settings.BindingMode == LockToTarget:
			t := vcam.DetachedFollowTargetDamp(1, settings.QuaternionDamping, deltaTime)
			dampedOrientation = utils.Slerp(prev, targetOrientation, t)
		case settings.BindingMode != SimpleFollowWithWorldUp:
			relative := utils.RelativeEuler(prev, targetOrientation)
			relative = vcam.DetachedFollowTargetDampVec3(relative, settings.EffectiveRotationDamping(), deltaTime)
			dampedOrientation = prev.Mul(utils.Euler(relative)).Normalize()
		}
	}
	self.PreviousReferenceOrientation = dampedOrientation

	// a changed offset swings the tracked point around the target
	// instead of jumping
	currentPosition := self.PreviousTargetPosition
	if prevStateValid && self.previousOffset.Sub(desiredOffset).LenSqr() > 0.01 {
		fromTo := utils.SafeFromToRotation(
			utils.ProjectOntoPlane(self.previousOffset, worldUp),
			utils.ProjectOntoPlane(desiredOffset, worldUp), worldUp)
		currentPosition = targetPosition.Add(fromTo.Rotate(self.PreviousTargetPosition.Sub(targetPosition)))
	}
	self.previousOffset = desiredOffset

	// position, damped in a space aligned with the offset
	worldOffset := targetPosition.Sub(currentPosition)
	if prevStateValid {
		var dampingSpace mgl64.Quat
		if utils.AlmostZero(desiredOffset) {
			dampingSpace = vcam.Rotation()
		} else {
			dampingSpace = utils.LookRotation(dampedOrientation.Rotate(desiredOffset), worldUp)
		}
		localOffset := dampingSpace.Inverse().Rotate(worldOffset)
		localOffset = vcam.DetachedFollowTargetDampVec3(localOffset, settings.EffectivePositionDamping(), deltaTime)
		worldOffset = dampingSpace.Rotate(localOffset)
	}
	currentPosition = currentPosition.Add(worldOffset)
	self.PreviousTargetPosition = currentPosition
	return currentPosition, dampedOrientation
}

// Returns a correction that keeps the camera from getting closer to
// the actual target than a fifth of the offset length, measured along
// the camera forward on the up plane, or along the offset when the
// camera looks elsewhere. It only applies while the camera
// is fully attached to its target.
func (self *TargetTracker) GetOffsetForMinimumTargetDistance(vcam *cinemachine.VirtualCamera, dampedTargetPos, cameraOffset, cameraFwd, worldUp, actualTargetPos mgl64.Vec3) mgl64.Vec3 {
	if vcam.FollowTargetAttachment <= 1-utils.Epsilon {
		return mgl64.Vec3{}
	}
	cameraOffset = utils.ProjectOntoPlane(cameraOffset, worldUp)
	minDistance := cameraOffset.Len() * 0.2
	if minDistance <= 0 {
		return mgl64.Vec3{}
	}

	actual := utils.ProjectOntoPlane(actualTargetPos, worldUp)
	damped := utils.ProjectOntoPlane(dampedTargetPos, worldUp)
	cameraPos := damped.Add(cameraOffset)
	// a camera that doesn't face the target, like one with no aim rig,
	// is measured along the offset instead
	toTarget := cameraOffset.Mul(-1 / cameraOffset.Len())
	fwd := utils.SafeNormalize(utils.ProjectOntoPlane(cameraFwd, worldUp))
	if fwd.Dot(toTarget) < 0.5 {
		fwd = toTarget
	}
	distance := actual.Sub(cameraPos).Dot(fwd)
	if distance >= minDistance {
		return mgl64.Vec3{}
	}
	dir := actual.Sub(damped)
	length := dir.Len()
	if length <= 0.01 {
		return mgl64.Vec3{}
	}
	return dir.Mul(math.Min(1, (minDistance-distance)/length))
}

// Shifts the tracked point along with a teleported target.
func (self *TargetTracker) OnTargetObjectWarped(positionDelta mgl64.Vec3) {
	self.PreviousTargetPosition = self.PreviousTargetPosition.Add(positionDelta)
}

// Rebases the tracker so that the next frame continues from the given
// camera pose.
func (self *TargetTracker) OnForceCameraPosition(vcam *cinemachine.VirtualCamera, mode BindingMode, offset, pos mgl64.Vec3, rot mgl64.Quat, worldUp mgl64.Vec3) {
	target := vcam.Follow()
	orientation := self.GetReferenceOrientation(vcam, mode, worldUp)
	if mode == SimpleFollowWithWorldUp && target != nil {
		dir := utils.ProjectOntoPlane(target.Position().Sub(pos), worldUp)
		if !utils.AlmostZero(dir) {
			orientation = utils.LookRotation(dir, worldUp)
		}
	}
	self.PreviousReferenceOrientation = orientation
	self.PreviousTargetPosition = pos.Sub(orientation.Rotate(offset))
	self.previousOffset = offset
}
