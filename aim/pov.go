package aim

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Aims the camera from a pan and a tilt input axis, in world space
// around the reference up. It ignores the look at target, except as a
// recentering reference.
type POV struct {
	// Degrees around the up axis. 0 looks along world forward.
	HorizontalAxis cinemachine.InputAxis `yaml:"horizontal_axis"`
	// Degrees of tilt. Positive values look down.
	VerticalAxis cinemachine.InputAxis `yaml:"vertical_axis"`

	RecenterTarget cinemachine.RecenteringTarget `yaml:"recenter_target"`
}

var _ cinemachine.PositionForcer = (*POV)(nil)

func NewPOV() *POV {
	return &POV{
		HorizontalAxis: cinemachine.DefaultHorizontalAxis(),
		VerticalAxis: cinemachine.InputAxis{
			Range:       mgl64.Vec2{-70, 70},
			Recentering: cinemachine.RecenteringSettings{Wait: 1, Time: 2},
		},
	}
}

func (self *POV) Kind() cinemachine.ComponentKind { return cinemachine.KindPOV }
func (self *POV) Stage() cinemachine.Stage        { return cinemachine.StageAim }
func (self *POV) MaxDampTime() float64            { return 0 }

func (self *POV) IsValid(vcam *cinemachine.VirtualCamera) bool { return true }

func (self *POV) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.HorizontalAxis.Validate()
	self.VerticalAxis.Validate()
	now := vcam.Now()
	reset := deltaTime < 0 || !vcam.PreviousStateIsValid || !vcam.IsLive()
	for _, axis := range [...]*cinemachine.InputAxis{&self.HorizontalAxis, &self.VerticalAxis} {
		axis.TrackValueChange(now)
		if reset {
			axis.CancelRecentering(now)
		}
	}

	reference := referenceFrame(state.ReferenceUp)
	self.HorizontalAxis.UpdateRecenteringTo(deltaTime, now,
		self.RecenterTarget.Heading(vcam, reference, self.HorizontalAxis.Center))
	self.VerticalAxis.UpdateRecenteringTo(deltaTime, now, self.tiltCenter(vcam, reference))

	state.RawOrientation = self.orientation(reference)
}

func (self *POV) orientation(reference mgl64.Quat) mgl64.Quat {
	return reference.Mul(utils.Euler(mgl64.Vec3{self.VerticalAxis.Value, self.HorizontalAxis.Value, 0})).Normalize()
}

// Returns the tilt the recentering target faces, or the axis center.
func (self *POV) tiltCenter(vcam *cinemachine.VirtualCamera, reference mgl64.Quat) float64 {
	var target cinemachine.Target
	switch self.RecenterTarget {
	case cinemachine.RecenterFollowTargetForward:
		target = vcam.Follow()
	case cinemachine.RecenterLookAtTargetForward:
		target = vcam.LookAt()
	}
	if target == nil {
		return self.VerticalAxis.Center
	}
	fwd := reference.Inverse().Rotate(target.Rotation().Rotate(utils.Forward))
	flat := math.Hypot(fwd[0], fwd[2])
	if flat < utils.Epsilon && math.Abs(fwd[1]) < utils.Epsilon {
		return self.VerticalAxis.Center
	}
	return self.VerticalAxis.ClampValue(mgl64.RadToDeg(math.Atan2(-fwd[1], flat)))
}

// Sets the axes so that the next frame looks along rot.
func (self *POV) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	reference := referenceFrame(vcam.State().ReferenceUp)
	fwd := reference.Inverse().Rotate(rot.Rotate(utils.Forward))
	flat := math.Hypot(fwd[0], fwd[2])
	if flat > utils.Epsilon {
		self.HorizontalAxis.Value = self.HorizontalAxis.ClampValue(mgl64.RadToDeg(math.Atan2(fwd[0], fwd[2])))
	}
	self.VerticalAxis.Value = self.VerticalAxis.ClampValue(mgl64.RadToDeg(math.Atan2(-fwd[1], flat)))
	now := vcam.Now()
	self.HorizontalAxis.TrackValueChange(now)
	self.VerticalAxis.TrackValueChange(now)
}

// Returns the rotation taking world up to up, which is the frame the
// pan and tilt are measured in.
func referenceFrame(up mgl64.Vec3) mgl64.Quat {
	if utils.AlmostZero(up) {
		return mgl64.QuatIdent()
	}
	return utils.FromToRotation(utils.Up, up)
}
