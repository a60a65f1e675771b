package aim

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/group"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

const minimumGroupSize = 0.01

// A [Composer] that also fits a target group on screen, by zooming
// the lens, dollying the camera along its forward axis or both.
// Targets that aren't groups are composed like a plain Composer.
type GroupComposer struct {
	Composer `yaml:",inline"`

	// Screen fraction the group should fill.
	GroupFramingSize float64              `yaml:"group_framing_size"`
	FramingMode      group.FramingMode    `yaml:"framing_mode"`
	FrameDamping     float64              `yaml:"frame_damping"`
	AdjustmentMode   group.AdjustmentMode `yaml:"adjustment_mode"`

	MaxDollyIn       float64 `yaml:"max_dolly_in"`
	MaxDollyOut      float64 `yaml:"max_dolly_out"`
	MinimumDistance  float64 `yaml:"minimum_distance"`
	MaximumDistance  float64 `yaml:"maximum_distance"`
	MinimumFOV       float64 `yaml:"minimum_fov"`
	MaximumFOV       float64 `yaml:"maximum_fov"`
	MinimumOrthoSize float64 `yaml:"minimum_ortho_size"`
	MaximumOrthoSize float64 `yaml:"maximum_ortho_size"`

	lastBounds          group.ViewBounds
	lastBoundsRotation  mgl64.Quat
	prevFramingDistance float64
	prevLensValue       float64 // fov or ortho size
}

func NewGroupComposer() *GroupComposer {
	return &GroupComposer{
		Composer:           *NewComposer(),
		GroupFramingSize:   0.8,
		FramingMode:        group.FramingHorizontalAndVertical,
		FrameDamping:       2,
		AdjustmentMode:     group.ZoomOnly,
		MaxDollyIn:         5000,
		MaxDollyOut:        5000,
		MinimumDistance:    1,
		MaximumDistance:    5000,
		MinimumFOV:         3,
		MaximumFOV:         60,
		MinimumOrthoSize:   1,
		MaximumOrthoSize:   5000,
		lastBoundsRotation: mgl64.QuatIdent(),
	}
}

func (self *GroupComposer) Kind() cinemachine.ComponentKind { return cinemachine.KindGroupComposer }

func (self *GroupComposer) MaxDampTime() float64 {
	return math.Max(self.Composer.MaxDampTime(), self.FrameDamping)
}

// Returns the group bounds measured on the last frame, in the space
// of [GroupComposer.LastBoundsRotation]() at the camera position.
func (self *GroupComposer) LastBounds() group.ViewBounds { return self.lastBounds }

func (self *GroupComposer) LastBoundsRotation() mgl64.Quat { return self.lastBoundsRotation }

func (self *GroupComposer) validate() {
	self.Composer.validate()
	self.GroupFramingSize = math.Max(self.GroupFramingSize, 0.001)
	self.FrameDamping = math.Max(0, self.FrameDamping)
	self.MaxDollyIn = math.Max(0, self.MaxDollyIn)
	self.MaxDollyOut = math.Max(0, self.MaxDollyOut)
	self.MinimumDistance = math.Max(0, self.MinimumDistance)
	self.MaximumDistance = math.Max(self.MinimumDistance, self.MaximumDistance)
	self.MinimumFOV = utils.Clamp(self.MinimumFOV, 1, 179)
	self.MaximumFOV = utils.Clamp(self.MaximumFOV, self.MinimumFOV, 179)
	self.MinimumOrthoSize = math.Max(0.01, self.MinimumOrthoSize)
	self.MaximumOrthoSize = math.Max(self.MinimumOrthoSize, self.MaximumOrthoSize)
}

func (self *GroupComposer) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.validate()
	if !state.HasLookAt {
		return
	}
	target, isGroup := vcam.LookAtTargetAsGroup()
	if !isGroup || self.FramingMode == group.FramingNone {
		self.compose(vcam, state, deltaTime)
		return
	}

	prevStateValid := deltaTime >= 0 && vcam.PreviousStateIsValid
	if !prevStateValid {
		self.prevFramingDistance = 0
		self.prevLensValue = 0
	}

	cameraPos := state.CorrectedPosition()
	bounds, rotation, ok := group.AimedScreenSpaceBounds(target, cameraPos, state.ReferenceUp, 2)
	if !ok {
		self.compose(vcam, state, deltaTime)
		return
	}
	self.lastBounds, self.lastBoundsRotation = bounds, rotation
	fwd := rotation.Rotate(utils.Forward)
	lens := state.Lens

	targetHeight := self.FramingMode.TargetHeight(bounds.Size.Mul(1/self.GroupFramingSize), lens.Aspect)
	targetHeight = math.Max(targetHeight, minimumGroupSize)

	if lens.Orthographic {
		size := utils.Clamp(targetHeight/2, self.MinimumOrthoSize, self.MaximumOrthoSize)
		if prevStateValid {
			size = self.prevLensValue + vcam.DetachedLookAtTargetDamp(size-self.prevLensValue, self.FrameDamping, deltaTime)
		}
		self.prevLensValue = size
		lens.OrthographicSize = utils.Clamp(size, self.MinimumOrthoSize, self.MaximumOrthoSize)
	} else {
		// the height at the near face of the bounds
		boundsDepth := bounds.Size[2] / 2
		z := bounds.Center[2]
		if z > boundsDepth {
			targetHeight = utils.Lerp(0, targetHeight, (z-boundsDepth)/z)
		}

		if self.AdjustmentMode != group.ZoomOnly {
			desired := targetHeight/(2*math.Tan(mgl64.DegToRad(lens.FieldOfView)/2)) + boundsDepth
			desired = utils.Clamp(desired, self.MinimumDistance, self.MaximumDistance)
			dolly := utils.Clamp(z-desired, -self.MaxDollyOut, self.MaxDollyIn)
			if prevStateValid {
				dolly = self.prevFramingDistance + vcam.DetachedLookAtTargetDamp(
					dolly-self.prevFramingDistance, self.FrameDamping, deltaTime)
			}
			self.prevFramingDistance = dolly
			state.PositionCorrection = state.PositionCorrection.Add(fwd.Mul(dolly))
		}

		if self.AdjustmentMode != group.DollyOnly {
			nearDistance := z - self.prevFramingDistance - boundsDepth
			fov := 179.0
			if nearDistance > utils.Epsilon {
				fov = 2 * mgl64.RadToDeg(math.Atan(targetHeight/(2*nearDistance)))
			}
			fov = utils.Clamp(fov, self.MinimumFOV, self.MaximumFOV)
			if prevStateValid && self.prevLensValue > 0 {
				fov = self.prevLensValue + vcam.DetachedLookAtTargetDamp(fov-self.prevLensValue, self.FrameDamping, deltaTime)
			}
			self.prevLensValue = fov
			lens.FieldOfView = fov
		}
	}
	state.Lens = lens

	// compose around the center of the screen bounds, keeping any
	// lookahead the tracked point had
	center := cameraPos.Add(rotation.Rotate(bounds.Center))
	self.trackedPoint = center.Add(self.trackedPoint.Sub(state.ReferenceLookAt))
	state.ReferenceLookAt = center
	self.compose(vcam, state, deltaTime)
}
