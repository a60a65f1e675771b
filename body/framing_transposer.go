package body

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/group"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	minimumCameraDistance = 0.01
	minimumGroupSize      = 0.01
)

// Moves the camera along its own axes, without rotating it, so the
// follow target stays inside the screen composition zones and at the
// configured distance. Group follow targets can be framed as a whole
// by moving the camera, changing the lens, or both.
//
// The rig works best with no Aim rig, or one that doesn't depend on
// the camera position.
type FramingTransposer struct {
	// Offset from the target, in target space.
	TrackedObjectOffset mgl64.Vec3 `yaml:"tracked_object_offset"`

	LookaheadTime      float64 `yaml:"lookahead_time"`
	LookaheadSmoothing float64 `yaml:"lookahead_smoothing"`
	LookaheadIgnoreY   bool    `yaml:"lookahead_ignore_y"`

	// Seconds, along the camera x, y and z axes.
	Damping mgl64.Vec3 `yaml:"damping"`

	// Camera rotations made by other rigs aren't damped.
	TargetMovementOnly bool `yaml:"target_movement_only"`

	Composition       utils.ScreenComposition `yaml:"composition"`
	CameraDistance    float64                 `yaml:"camera_distance"`
	DeadZoneDepth     float64                 `yaml:"dead_zone_depth"`
	UnlimitedSoftZone bool                    `yaml:"unlimited_soft_zone"`

	// Snap the target to the screen position when the camera activates
	// instead of only bringing it into the dead zone.
	CenterOnActivate bool `yaml:"center_on_activate"`

	GroupFramingMode group.FramingMode    `yaml:"group_framing_mode"`
	AdjustmentMode   group.AdjustmentMode `yaml:"adjustment_mode"`
	GroupFramingSize float64              `yaml:"group_framing_size"` // screen fraction
	MaxDollyIn       float64              `yaml:"max_dolly_in"`
	MaxDollyOut      float64              `yaml:"max_dolly_out"`
	MinimumDistance  float64              `yaml:"minimum_distance"`
	MaximumDistance  float64              `yaml:"maximum_distance"`
	MinimumFOV       float64              `yaml:"minimum_fov"`
	MaximumFOV       float64              `yaml:"maximum_fov"`
	MinimumOrthoSize float64              `yaml:"minimum_ortho_size"`
	MaximumOrthoSize float64              `yaml:"maximum_ortho_size"`

	predictor              tracker.PositionPredictor
	previousCameraPosition mgl64.Vec3
	previousRotation       mgl64.Quat
	previousFOV            float64
	trackedPoint           mgl64.Vec3
	lastBounds             group.ViewBounds
	lastBoundsRotation     mgl64.Quat
}

var (
	_ cinemachine.TargetWarpHandler = (*FramingTransposer)(nil)
	_ cinemachine.PositionForcer    = (*FramingTransposer)(nil)
)

func NewFramingTransposer() *FramingTransposer {
	return &FramingTransposer{
		LookaheadSmoothing: 10,
		Damping:            mgl64.Vec3{1, 1, 1},
		Composition:        utils.DefaultComposition(),
		CameraDistance:     10,
		CenterOnActivate:   true,
		GroupFramingMode:   group.FramingHorizontalAndVertical,
		AdjustmentMode:     group.ZoomOnly,
		GroupFramingSize:   0.8,
		MaxDollyIn:         5000,
		MaxDollyOut:        5000,
		MinimumDistance:    1,
		MaximumDistance:    5000,
		MinimumFOV:         3,
		MaximumFOV:         60,
		MinimumOrthoSize:   1,
		MaximumOrthoSize:   5000,
		previousRotation:   mgl64.QuatIdent(),
	}
}

func (self *FramingTransposer) Kind() cinemachine.ComponentKind {
	return cinemachine.KindFramingTransposer
}
func (self *FramingTransposer) Stage() cinemachine.Stage { return cinemachine.StageBody }

func (self *FramingTransposer) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.Follow() != nil
}

func (self *FramingTransposer) MaxDampTime() float64 {
	return utils.MaxComponent(self.Damping)
}

// Returns the point the rig tracked on the last frame, lookahead
// included.
func (self *FramingTransposer) TrackedPoint() mgl64.Vec3 { return self.trackedPoint }

// Returns the group bounds measured on the last frame, in the camera
// space they were measured in.
func (self *FramingTransposer) LastBounds() group.ViewBounds { return self.lastBounds }

func (self *FramingTransposer) validate() {
	self.Composition.Validate()
	self.CameraDistance = math.Max(self.CameraDistance, minimumCameraDistance)
	self.DeadZoneDepth = math.Max(self.DeadZoneDepth, 0)
	self.GroupFramingSize = math.Max(self.GroupFramingSize, 0.001)
	self.MaxDollyIn = math.Max(0, self.MaxDollyIn)
	self.MaxDollyOut = math.Max(0, self.MaxDollyOut)
	self.MinimumDistance = math.Max(0, self.MinimumDistance)
	self.MaximumDistance = math.Max(self.MinimumDistance, self.MaximumDistance)
	self.MinimumFOV = utils.Clamp(self.MinimumFOV, 1, 179)
	self.MaximumFOV = utils.Clamp(self.MaximumFOV, self.MinimumFOV, 179)
	self.MinimumOrthoSize = math.Max(self.MinimumOrthoSize, 0.01)
	self.MaximumOrthoSize = math.Max(self.MinimumOrthoSize, self.MaximumOrthoSize)
	for i := range 3 {
		self.Damping[i] = math.Max(0, self.Damping[i])
	}
}

func (self *FramingTransposer) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.validate()
	lens := state.Lens
	follow := vcam.Follow()
	followTargetPosition := follow.Position().Add(follow.Rotation().Rotate(self.TrackedObjectOffset))
	prevStateValid := deltaTime >= 0 && vcam.PreviousStateIsValid
	if !prevStateValid || vcam.FollowTargetChanged() {
		self.predictor.Reset()
	}
	if !prevStateValid {
		self.previousCameraPosition = state.RawPosition
		self.previousFOV = lens.FieldOfView
		if lens.Orthographic {
			self.previousFOV = lens.OrthographicSize
		}
		self.previousRotation = state.RawOrientation
		if self.CenterOnActivate {
			self.previousCameraPosition = follow.Position().Add(
				state.RawOrientation.Rotate(utils.Back).Mul(self.CameraDistance))
		}
	}
	verticalFOV := lens.FieldOfView

	// group bounds replace the follow point
	groupTarget, isGroup := vcam.FollowTargetAsGroup()
	isGroupFraming := isGroup && self.GroupFramingMode != group.FramingNone
	if isGroupFraming {
		center, ok := self.computeGroupBounds(groupTarget, state)
		if ok {
			followTargetPosition = center
		}
		isGroupFraming = ok
	}

	self.trackedPoint = followTargetPosition
	if self.LookaheadTime > utils.Epsilon {
		self.predictor.Smoothing = self.LookaheadSmoothing
		self.predictor.AddPosition(followTargetPosition, deltaTime, self.LookaheadTime)
		delta := self.predictor.PredictPositionDelta(self.LookaheadTime)
		if self.LookaheadIgnoreY {
			delta = utils.ProjectOntoPlane(delta, state.ReferenceUp)
		}
		if isGroupFraming {
			self.lastBounds.Center = self.lastBounds.Center.Add(self.lastBoundsRotation.Inverse().Rotate(delta))
		}
		self.trackedPoint = followTargetPosition.Add(delta)
	}
	if !state.HasLookAt {
		state.ReferenceLookAt, state.HasLookAt = followTargetPosition, true
	}

	// desired depth
	targetDistance := self.CameraDistance
	targetHeight := 0.0
	if isGroupFraming {
		targetHeight = self.GroupFramingMode.TargetHeight(self.lastBounds.Size.Mul(1/self.GroupFramingSize), lens.Aspect)
	}
	targetHeight = math.Max(targetHeight, minimumGroupSize)
	if !lens.Orthographic && isGroupFraming {
		// the height at the near surface of the bounds
		boundsDepth := self.lastBounds.Size[2] / 2
		z := self.lastBounds.Center[2]
		if z > boundsDepth {
			targetHeight = utils.Lerp(0, targetHeight, (z-boundsDepth)/z)
		}
		if self.AdjustmentMode != group.ZoomOnly {
			targetDistance = targetHeight / (2 * math.Tan(mgl64.DegToRad(verticalFOV)/2))
			targetDistance = utils.Clamp(targetDistance, self.MinimumDistance, self.MaximumDistance)
			targetDelta := utils.Clamp(targetDistance-self.CameraDistance, -self.MaxDollyIn, self.MaxDollyOut)
			targetDistance = self.CameraDistance + targetDelta
		}
	}

	// rotations from other rigs move the camera around the target
	localToWorld := state.RawOrientation
	if prevStateValid && self.TargetMovementOnly {
		q := localToWorld.Mul(self.previousRotation.Inverse())
		self.previousCameraPosition = self.trackedPoint.Add(q.Rotate(self.previousCameraPosition.Sub(self.trackedPoint)))
	}
	self.previousRotation = localToWorld

	if isGroupFraming {
		self.adjustLens(vcam, state, &lens, followTargetPosition, targetHeight, prevStateValid, deltaTime)
	}

	// camera local space
	worldToLocal := localToWorld.Inverse()
	cameraPos := worldToLocal.Rotate(self.previousCameraPosition)
	targetPos := worldToLocal.Rotate(self.trackedPoint).Sub(cameraPos)

	// depth
	var cameraOffset mgl64.Vec3
	cameraMin := math.Max(minimumCameraDistance, targetDistance-self.DeadZoneDepth/2)
	cameraMax := math.Max(cameraMin, targetDistance+self.DeadZoneDepth/2)
	targetZ := targetPos[2]
	if targetZ < cameraMin {
		cameraOffset[2] = targetZ - cameraMin
	}
	if targetZ > cameraMax {
		cameraOffset[2] = targetZ - cameraMax
	}

	// screen plane
	screenSize := lens.OrthographicSize
	if !lens.Orthographic {
		screenSize = math.Tan(0.5*mgl64.DegToRad(verticalFOV)) * (targetZ - cameraOffset[2])
	}
	softGuide := screenToFrame(self.Composition.SoftGuideRect(), screenSize, lens.Aspect)
	if !prevStateValid {
		rect := softGuide
		if self.CenterOnActivate {
			rect = rect.collapsed()
		}
		cameraOffset = cameraOffset.Add(rect.offsetToBounds(targetPos))
	} else {
		cameraOffset = cameraOffset.Add(softGuide.offsetToBounds(targetPos))
		cameraOffset = vcam.DetachedFollowTargetDampVec3(cameraOffset, self.Damping, deltaTime)

		// the real target, not the lookahead one, must stay in the frame
		if !self.UnlimitedSoftZone {
			hardGuide := screenToFrame(self.Composition.HardGuideRect(), screenSize, lens.Aspect)
			realTargetPos := worldToLocal.Rotate(followTargetPosition).Sub(cameraPos)
			cameraOffset = cameraOffset.Add(hardGuide.offsetToBounds(realTargetPos.Sub(cameraOffset)))
		}
	}
	state.RawPosition = localToWorld.Rotate(cameraPos.Add(cameraOffset))
	self.previousCameraPosition = state.RawPosition
}

func (self *FramingTransposer) adjustLens(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, lens *cinemachine.LensSettings, followTargetPosition mgl64.Vec3, targetHeight float64, prevStateValid bool, deltaTime float64) {
	switch {
	case lens.Orthographic:
		targetHeight = utils.Clamp(targetHeight/2, self.MinimumOrthoSize, self.MaximumOrthoSize)
		if prevStateValid {
			targetHeight = self.previousFOV + vcam.DetachedFollowTargetDamp(targetHeight-self.previousFOV, self.Damping[2], deltaTime)
		}
		self.previousFOV = targetHeight
		lens.OrthographicSize = utils.Clamp(targetHeight, self.MinimumOrthoSize, self.MaximumOrthoSize)
		state.Lens = *lens
	case self.AdjustmentMode != group.DollyOnly:
		localTarget := state.RawOrientation.Inverse().Rotate(followTargetPosition.Sub(state.RawPosition))
		nearBoundsDistance := localTarget[2]
		targetFOV := 179.0
		if nearBoundsDistance > utils.Epsilon {
			targetFOV = 2 * mgl64.RadToDeg(math.Atan(targetHeight/(2*nearBoundsDistance)))
		}
		targetFOV = utils.Clamp(targetFOV, self.MinimumFOV, self.MaximumFOV)
		if prevStateValid {
			targetFOV = self.previousFOV + vcam.DetachedFollowTargetDamp(targetFOV-self.previousFOV, self.Damping[2], deltaTime)
		}
		self.previousFOV = targetFOV
		lens.FieldOfView = targetFOV
		state.Lens = *lens
	}
}

// Measures the group from the camera orientation and returns its
// center. Perspective lenses refine the bounds from a viewpoint in
// front of the group, since parallax changes them.
func (self *FramingTransposer) computeGroupBounds(target cinemachine.GroupTarget, state *cinemachine.CameraState) (mgl64.Vec3, bool) {
	cameraPos := state.RawPosition
	rotation := state.RawOrientation
	center, size := target.ViewSpaceBoundingBox(cameraPos, rotation, true)
	groupCenter := cameraPos.Add(rotation.Rotate(center))
	bounds := group.ViewBounds{Center: center, Size: size}
	if !state.Lens.Orthographic {
		boundsDepth := size[2] / 2
		d := rotation.Inverse().Rotate(groupCenter.Sub(cameraPos))[2]
		cameraPos = groupCenter.Sub(rotation.Rotate(utils.Forward).Mul(math.Max(d, boundsDepth) + boundsDepth))
		var ok bool
		bounds, cameraPos, ok = group.ScreenSpaceBounds(target, cameraPos, rotation, 2)
		if !ok {
			return groupCenter, false
		}
		groupCenter = cameraPos.Add(rotation.Rotate(bounds.Center))
	}
	self.lastBounds = bounds
	self.lastBoundsRotation = rotation
	return groupCenter, true
}

func (self *FramingTransposer) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	if target == vcam.Follow() {
		self.previousCameraPosition = self.previousCameraPosition.Add(positionDelta)
		self.predictor.ApplyTransformDelta(positionDelta)
	}
}

func (self *FramingTransposer) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	self.previousCameraPosition = pos
	self.previousRotation = rot
}

// --- frame rects ---

// A rect on the camera plane, y up, at some depth.
type frameRect struct {
	minX, minY, maxX, maxY float64
}

// Converts a normalized screen rect (y down) to the camera plane
// where the screen spans 2*size vertically.
func screenToFrame(rect utils.ScreenRect, size, aspect float64) frameRect {
	return frameRect{
		minX: 2 * size * aspect * (rect.Min.X - 0.5),
		maxX: 2 * size * aspect * (rect.Max.X - 0.5),
		minY: 2 * size * ((1 - rect.Max.Y) - 0.5),
		maxY: 2 * size * ((1 - rect.Min.Y) - 0.5),
	}
}

func (self frameRect) collapsed() frameRect {
	x, y := (self.minX+self.maxX)/2, (self.minY+self.maxY)/2
	return frameRect{minX: x, maxX: x, minY: y, maxY: y}
}

// Returns how far the point is outside the rect on each axis, zero if
// it's inside.
func (self frameRect) offsetToBounds(point mgl64.Vec3) mgl64.Vec3 {
	var delta mgl64.Vec3
	if point[0] < self.minX {
		delta[0] = point[0] - self.minX
	}
	if point[0] > self.maxX {
		delta[0] = point[0] - self.maxX
	}
	if point[1] < self.minY {
		delta[1] = point[1] - self.minY
	}
	if point[1] > self.maxY {
		delta[1] = point[1] - self.maxY
	}
	return delta
}
