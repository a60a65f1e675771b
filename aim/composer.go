// Package aim implements the rigs of the Aim stage, the ones that
// decide where the camera looks.
//
// The composer family works in field of view space: a screen position
// is turned into the pitch and yaw that would bring the look at point
// there, and the camera rotates by the part of that rotation that
// leaves the point outside the composition zones.
package aim

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Rotates the camera so the look at target sits at a screen position,
// with a dead zone where the target can move freely and a soft zone
// through which the camera follows it with damping.
type Composer struct {
	// Offset from the look at target, in target space.
	TrackedObjectOffset mgl64.Vec3 `yaml:"tracked_object_offset"`

	LookaheadTime      float64 `yaml:"lookahead_time"`
	LookaheadSmoothing float64 `yaml:"lookahead_smoothing"`
	LookaheadIgnoreY   bool    `yaml:"lookahead_ignore_y"`

	HorizontalDamping float64 `yaml:"horizontal_damping"`
	VerticalDamping   float64 `yaml:"vertical_damping"`

	Composition utils.ScreenComposition `yaml:"composition"`

	// Snap the target to the screen position when the camera activates
	// instead of only bringing it into the dead zone.
	CenterOnActivate bool `yaml:"center_on_activate"`

	predictor                  tracker.PositionPredictor
	trackedPoint               mgl64.Vec3
	cache                      fovCache
	cameraPosPrevFrame         mgl64.Vec3
	lookAtPrevFrame            mgl64.Vec3
	cameraOrientationPrevFrame mgl64.Quat
	screenOffsetPrevFrame      mgl64.Vec2
}

var (
	_ cinemachine.PrePipelineMutator = (*Composer)(nil)
	_ cinemachine.PositionForcer     = (*Composer)(nil)
	_ cinemachine.TargetWarpHandler  = (*Composer)(nil)
)

func NewComposer() *Composer {
	return &Composer{
		HorizontalDamping:          0.5,
		VerticalDamping:            0.5,
		Composition:                utils.DefaultComposition(),
		CenterOnActivate:           true,
		cameraOrientationPrevFrame: mgl64.QuatIdent(),
	}
}

func (self *Composer) Kind() cinemachine.ComponentKind { return cinemachine.KindComposer }
func (self *Composer) Stage() cinemachine.Stage        { return cinemachine.StageAim }

func (self *Composer) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.LookAt() != nil
}

func (self *Composer) MaxDampTime() float64 {
	return math.Max(self.HorizontalDamping, self.VerticalDamping)
}

// Returns the point the rig aimed at on the last frame, lookahead
// included.
func (self *Composer) TrackedPoint() mgl64.Vec3 { return self.trackedPoint }

func (self *Composer) validate() {
	self.Composition.Validate()
	self.HorizontalDamping = math.Max(0, self.HorizontalDamping)
	self.VerticalDamping = math.Max(0, self.VerticalDamping)
	self.LookaheadTime = math.Max(0, self.LookaheadTime)
}

// Resolves the look at point before the Body stage runs, so body rigs
// that care about it see the offset target.
func (self *Composer) PrePipelineMutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	if state.HasLookAt {
		state.ReferenceLookAt = self.lookAtPointAndSetTrackedPoint(vcam, state.ReferenceLookAt, state.ReferenceUp, deltaTime)
	}
}

// Applies the tracked object offset to lookAt and returns it. The
// tracked point gets the lookahead on top.
func (self *Composer) lookAtPointAndSetTrackedPoint(vcam *cinemachine.VirtualCamera, lookAt, up mgl64.Vec3, deltaTime float64) mgl64.Vec3 {
	pos := lookAt
	if target := vcam.LookAt(); target != nil {
		pos = pos.Add(target.Rotation().Rotate(self.TrackedObjectOffset))
	}
	if self.LookaheadTime < utils.Epsilon {
		self.trackedPoint = pos
		return pos
	}
	if vcam.LookAtTargetChanged() || !vcam.PreviousStateIsValid {
		deltaTime = -1
	}
	self.predictor.Smoothing = self.LookaheadSmoothing
	self.predictor.AddPosition(pos, deltaTime, self.LookaheadTime)
	delta := self.predictor.PredictPositionDelta(self.LookaheadTime)
	if self.LookaheadIgnoreY {
		delta = utils.ProjectOntoPlane(delta, up)
	}
	self.trackedPoint = pos.Add(delta)
	return pos
}

func (self *Composer) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.validate()
	if !state.HasLookAt {
		return
	}
	self.compose(vcam, state, deltaTime)
}

func (self *Composer) compose(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	cameraPos := state.CorrectedPosition()
	prevStateValid := deltaTime >= 0 && vcam.PreviousStateIsValid

	// a lookahead point behind the camera while the target is in front
	// gets pulled back to the camera-target midpoint depth
	if !utils.AlmostZero(self.trackedPoint.Sub(state.ReferenceLookAt)) {
		mid := utils.LerpVec3(cameraPos, state.ReferenceLookAt, 0.5)
		toLookAt := state.ReferenceLookAt.Sub(mid)
		toTracked := self.trackedPoint.Sub(mid)
		if toLookAt.Dot(toTracked) < 0 {
			t := state.ReferenceLookAt.Sub(mid).Len() / state.ReferenceLookAt.Sub(self.trackedPoint).Len()
			self.trackedPoint = utils.LerpVec3(state.ReferenceLookAt, self.trackedPoint, t)
		}
	}

	targetDistance := self.trackedPoint.Sub(cameraPos).Len()
	if targetDistance < utils.Epsilon {
		// navel gazing
		if prevStateValid {
			state.RawOrientation = self.cameraOrientationPrevFrame
		}
		return
	}

	self.cache.update(state.Lens, self.Composition.SoftGuideRect(), self.Composition.HardGuideRect(), targetDistance)
	up := state.ReferenceUp
	orientation := state.RawOrientation
	if !prevStateValid {
		orientation = utils.LookRotation(orientation.Rotate(utils.Forward), up)
		rect := self.cache.fovSoftGuideRect
		if self.CenterOnActivate {
			center := rect.Center()
			rect = utils.ScreenRect{Min: center, Max: center}
		}
		orientation = self.rotateToScreenBounds(vcam, state, rect, state.ReferenceLookAt, orientation, -1)
	} else {
		// previous frame orientation, current up, plus what the body
		// stage asked to carry over
		dir := self.lookAtPrevFrame.Sub(self.cameraPosPrevFrame)
		if utils.AlmostZero(dir) {
			orientation = utils.LookRotation(self.cameraOrientationPrevFrame.Rotate(utils.Forward), up)
		} else {
			dir = utils.Euler(state.PositionDampingBypass).Rotate(dir)
			orientation = utils.LookRotation(dir, up)
			orientation = utils.ApplyCameraRotation(orientation, self.screenOffsetPrevFrame.Mul(-1), up)
		}

		orientation = self.rotateToScreenBounds(vcam, state, self.cache.fovSoftGuideRect, self.trackedPoint, orientation, deltaTime)

		// the real target, not the lookahead one, must stay in the
		// hard zone, undamped
		if vcam.LookAtTargetAttachment > 1-utils.Epsilon {
			orientation = self.rotateToScreenBounds(vcam, state, self.cache.fovHardGuideRect, state.ReferenceLookAt, orientation, -1)
		}
	}

	self.cameraPosPrevFrame = cameraPos
	self.lookAtPrevFrame = self.trackedPoint
	self.cameraOrientationPrevFrame = orientation.Normalize()
	self.screenOffsetPrevFrame = utils.GetCameraRotationToTarget(
		self.cameraOrientationPrevFrame, self.lookAtPrevFrame.Sub(cameraPos), up)
	state.RawOrientation = self.cameraOrientationPrevFrame
}

// Continues composing from the given pose on the next frame.
func (self *Composer) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	self.cameraPosPrevFrame = pos
	self.cameraOrientationPrevFrame = rot.Normalize()
	self.screenOffsetPrevFrame = utils.GetCameraRotationToTarget(
		self.cameraOrientationPrevFrame, self.lookAtPrevFrame.Sub(pos), vcam.State().ReferenceUp)
}

// Moves the aim history and the lookahead along with a teleported look
// at target, so the jump doesn't read as target velocity.
func (self *Composer) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	if target != vcam.LookAt() {
		return
	}
	self.cameraPosPrevFrame = self.cameraPosPrevFrame.Add(positionDelta)
	self.lookAtPrevFrame = self.lookAtPrevFrame.Add(positionDelta)
	self.trackedPoint = self.trackedPoint.Add(positionDelta)
	self.predictor.ApplyTransformDelta(positionDelta)
}

// Rotates orientation just enough to bring the point into the rect,
// which is in field of view space. A negative deltaTime skips damping.
func (self *Composer) rotateToScreenBounds(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, rect utils.ScreenRect, point mgl64.Vec3, orientation mgl64.Quat, deltaTime float64) mgl64.Quat {
	targetDir := point.Sub(state.CorrectedPosition())
	rotToRect := utils.GetCameraRotationToTarget(orientation, targetDir, state.ReferenceUp)
	rect = clampVerticalBounds(rect, targetDir, state.ReferenceUp, self.cache.fov)

	rotToRect[0] = outsideBy(rotToRect[0], (rect.Min.Y-0.5)*self.cache.fov, (rect.Max.Y-0.5)*self.cache.fov)
	rotToRect[1] = outsideBy(rotToRect[1], (rect.Min.X-0.5)*self.cache.fovH, (rect.Max.X-0.5)*self.cache.fovH)

	if deltaTime >= 0 && vcam.PreviousStateIsValid {
		rotToRect[0] = vcam.DetachedLookAtTargetDamp(rotToRect[0], self.VerticalDamping, deltaTime)
		rotToRect[1] = vcam.DetachedLookAtTargetDamp(rotToRect[1], self.HorizontalDamping, deltaTime)
	}
	return utils.ApplyCameraRotation(orientation, rotToRect, state.ReferenceUp)
}

// Returns how far value lies outside [lo, hi], signed, or 0 inside.
func outsideBy(value, lo, hi float64) float64 {
	switch {
	case value < lo:
		return value - lo
	case value > hi:
		return value - hi
	default:
		return 0
	}
}

// Keeps the rect from asking the camera to pitch past the poles when
// the target is nearly straight above or below.
func clampVerticalBounds(rect utils.ScreenRect, dir, up mgl64.Vec3, fov float64) utils.ScreenRect {
	angle := utils.Angle(dir, up)
	halfFov := fov/2 + 1
	if angle < halfFov {
		maxY := 1 - (halfFov-angle)/fov
		if rect.Max.Y > maxY {
			rect.Min.Y = math.Min(rect.Min.Y, maxY)
			rect.Max.Y = math.Min(rect.Max.Y, maxY)
		}
	}
	if angle > 180-halfFov {
		minY := (angle - (180 - halfFov)) / fov
		if minY > rect.Min.Y {
			rect.Min.Y = math.Max(rect.Min.Y, minY)
			rect.Max.Y = math.Max(rect.Max.Y, minY)
		}
	}
	return rect
}
