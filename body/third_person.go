package body

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/collision"
	"github.com/edwinsyarief/cinemachine/damper"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

type ObstacleAvoidance struct {
	Enabled bool `yaml:"enabled"`

	// Layers the casts collide with. 0 disables collision.
	LayerMask uint32 `yaml:"layer_mask"`

	// Obstacles with this tag are ignored, typically the player.
	IgnoreTag string `yaml:"ignore_tag"`

	// Radius of the sphere kept clear around the camera.
	CameraRadius float64 `yaml:"camera_radius"`

	// Seconds to move the camera in front of an obstacle.
	DampingIntoCollision float64 `yaml:"damping_into_collision"`

	// Seconds to return to the normal distance once clear.
	DampingFromCollision float64 `yaml:"damping_from_collision"`
}

// An over-the-shoulder rig: the camera hangs from the target on an arm
// made of a shoulder offset, a vertical arm and a camera distance, and
// is pulled in front of obstacles.
type ThirdPersonFollow struct {
	// Seconds to settle sideways (x), vertically (y) and along the
	// camera distance (z), in target heading space.
	Damping mgl64.Vec3 `yaml:"damping"`

	// Shoulder pivot offset from the target, in heading space.
	ShoulderOffset    mgl64.Vec3 `yaml:"shoulder_offset"`
	VerticalArmLength float64    `yaml:"vertical_arm_length"`

	// 0 puts the camera on the left shoulder, 1 on the right one.
	CameraSide     float64 `yaml:"camera_side"`
	CameraDistance float64 `yaml:"camera_distance"`

	Obstacles ObstacleAvoidance      `yaml:"obstacles"`
	Caster    collision.SphereCaster `yaml:"-"`

	dampingCorrection         mgl64.Vec3
	cameraCollisionCorrection float64
	previousFollowPosition    mgl64.Vec3
	lastShoulder, lastHand    mgl64.Vec3
}

func NewThirdPersonFollow(caster collision.SphereCaster) *ThirdPersonFollow {
	return &ThirdPersonFollow{
		Damping:           mgl64.Vec3{0.1, 0.5, 0.3},
		ShoulderOffset:    mgl64.Vec3{0.5, -0.4, 0},
		VerticalArmLength: 0.4,
		CameraSide:        1,
		CameraDistance:    2,
		Obstacles: ObstacleAvoidance{
			LayerMask:            collision.DefaultLayer,
			CameraRadius:         0.2,
			DampingFromCollision: 2,
		},
		Caster: caster,
	}
}

func (self *ThirdPersonFollow) Kind() cinemachine.ComponentKind {
	return cinemachine.KindThirdPersonFollow
}
func (self *ThirdPersonFollow) Stage() cinemachine.Stage { return cinemachine.StageBody }

func (self *ThirdPersonFollow) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.Follow() != nil
}

func (self *ThirdPersonFollow) MaxDampTime() float64 {
	maxTime := utils.MaxComponent(self.Damping)
	if self.Obstacles.Enabled {
		maxTime = math.Max(maxTime, math.Max(self.Obstacles.DampingIntoCollision, self.Obstacles.DampingFromCollision))
	}
	return maxTime
}

func (self *ThirdPersonFollow) validate() {
	self.CameraSide = utils.Clamp01(self.CameraSide)
	self.CameraDistance = math.Max(0, self.CameraDistance)
	self.Damping = mgl64.Vec3{math.Max(0, self.Damping[0]), math.Max(0, self.Damping[1]), math.Max(0, self.Damping[2])}
	self.Obstacles.CameraRadius = math.Max(0.001, self.Obstacles.CameraRadius)
	self.Obstacles.DampingIntoCollision = math.Max(0, self.Obstacles.DampingIntoCollision)
	self.Obstacles.DampingFromCollision = math.Max(0, self.Obstacles.DampingFromCollision)
}

// Returns the shoulder and hand positions of the last frame, after
// collision resolution.
func (self *ThirdPersonFollow) RigPositions() (shoulder, hand mgl64.Vec3) {
	return self.lastShoulder, self.lastHand
}

func (self *ThirdPersonFollow) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.validate()
	if !vcam.PreviousStateIsValid {
		deltaTime = -1
	}

	follow := vcam.Follow()
	up := state.ReferenceUp
	targetPos := follow.Position()
	targetRot := follow.Rotation()
	heading := self.heading(targetRot, up)

	if deltaTime < 0 {
		self.dampingCorrection = mgl64.Vec3{}
		self.cameraCollisionCorrection = 0
	} else {
		// damping stretches the arm, in heading space
		self.dampingCorrection = self.dampingCorrection.Add(
			heading.Inverse().Rotate(self.previousFollowPosition.Sub(targetPos)))
		self.dampingCorrection = self.dampingCorrection.Sub(
			vcam.DetachedFollowTargetDampVec3(self.dampingCorrection, self.Damping, deltaTime))
	}
	self.previousFollowPosition = targetPos

	root := targetPos
	shoulder, hand := self.rawRigPositions(root, targetRot, heading)
	camPos := hand.Sub(targetRot.Rotate(utils.Forward).Mul(self.CameraDistance - self.dampingCorrection[2]))

	if self.Obstacles.Enabled && self.Caster != nil {
		// arm casts are undamped and slightly fatter than the camera
		var unused float64
		armRadius := self.Obstacles.CameraRadius * 1.05
		shoulder = self.resolveCollisions(root, shoulder, -1, armRadius, &unused)
		hand = self.resolveCollisions(shoulder, hand, -1, armRadius, &unused)
		camPos = self.resolveCollisions(hand, camPos, deltaTime, self.Obstacles.CameraRadius, &self.cameraCollisionCorrection)
	}
	self.lastShoulder, self.lastHand = shoulder, hand

	state.RawPosition = camPos
	state.RawOrientation = targetRot
}

// Returns the target rotation flattened onto the plane of up.
func (self *ThirdPersonFollow) heading(targetRot mgl64.Quat, up mgl64.Vec3) mgl64.Quat {
	fwd := utils.ProjectOntoPlane(targetRot.Rotate(utils.Forward), up)
	planeForward := up.Cross(fwd.Cross(up))
	if utils.AlmostZero(planeForward) {
		planeForward = targetRot.Rotate(utils.Right).Cross(up)
	}
	return utils.LookRotation(planeForward, up)
}

func (self *ThirdPersonFollow) rawRigPositions(root mgl64.Vec3, targetRot, heading mgl64.Quat) (shoulder, hand mgl64.Vec3) {
	offset := self.ShoulderOffset
	offset[0] = utils.Lerp(-offset[0], offset[0], self.CameraSide)
	offset[0] += self.dampingCorrection[0]
	offset[1] += self.dampingCorrection[1]
	shoulder = root.Add(heading.Rotate(offset))
	hand = shoulder.Add(targetRot.Rotate(mgl64.Vec3{0, self.VerticalArmLength, 0}))
	return shoulder, hand
}

// Casts from root to tip and pulls tip back in front of the first
// obstacle. The correction is damped unless deltaTime is negative.
func (self *ThirdPersonFollow) resolveCollisions(root, tip mgl64.Vec3, deltaTime, radius float64, correction *float64) mgl64.Vec3 {
	if self.Obstacles.LayerMask == 0 {
		return tip
	}
	dir := tip.Sub(root)
	length := dir.Len()
	if length < utils.Epsilon {
		return tip
	}
	dir = dir.Mul(1 / length)

	desired := 0.0
	hit, ok := self.Caster.SphereCastIgnoreTag(root, radius, dir, length, self.Obstacles.LayerMask, self.Obstacles.IgnoreTag)
	if ok {
		desired = hit.Point.Add(hit.Normal.Mul(radius)).Sub(tip).Len()
	}
	if deltaTime < 0 {
		*correction = desired
	} else {
		dampTime := self.Obstacles.DampingFromCollision
		if desired > *correction {
			dampTime = self.Obstacles.DampingIntoCollision
		}
		*correction += damper.Damp(desired-*correction, dampTime, deltaTime)
	}
	if *correction > utils.Epsilon {
		return tip.Sub(dir.Mul(*correction))
	}
	return tip
}

func (self *ThirdPersonFollow) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	if target == vcam.Follow() {
		self.previousFollowPosition = self.previousFollowPosition.Add(positionDelta)
	}
}

var _ cinemachine.TargetWarpHandler = (*ThirdPersonFollow)(nil)
