package cinemachine

import "github.com/go-gl/mathgl/mgl64"

// Anything a camera can follow or look at.
//
// Cameras compare targets with == to detect target changes, so
// implementations should be pointers.
type Target interface {
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
}

// Targets that can report a physical velocity, like rigidbodies.
type VelocityTarget interface {
	Target
	Velocity() mgl64.Vec3
}

// A weighted group of targets that can be framed as a whole.
// See the group package for the default implementation.
type GroupTarget interface {
	Target
	IsEmpty() bool

	// Bounding sphere of all the weighted members.
	Sphere() (center mgl64.Vec3, radius float64)

	// Axis-aligned box of the members as seen from the observer,
	// in the observer's local space.
	ViewSpaceBoundingBox(observerPos mgl64.Vec3, observerRot mgl64.Quat, includeBehind bool) (center, size mgl64.Vec3)

	// Vertical (x) and horizontal (y) angles, in degrees, enclosing
	// all members as seen from the observer, plus the near and far
	// depths including member radii.
	ViewSpaceAngularBounds(observerPos mgl64.Vec3, observerRot mgl64.Quat) (minAngles, maxAngles, zRange mgl64.Vec2)
}

// Returns the target as a group, if it's one and it's not empty.
func AsGroup(target Target) (GroupTarget, bool) {
	group, isGroup := target.(GroupTarget)
	if !isGroup || group.IsEmpty() {
		return nil, false
	}
	return group, true
}

// A plain transform usable as a target.
type TargetTransform struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// Creates a target at the given position with identity rotation.
func NewTargetTransform(pos mgl64.Vec3) *TargetTransform {
	return &TargetTransform{Pos: pos, Rot: mgl64.QuatIdent()}
}

func (self *TargetTransform) Position() mgl64.Vec3 { return self.Pos }
func (self *TargetTransform) Rotation() mgl64.Quat { return self.Rot }

func (self *TargetTransform) SetPosition(pos mgl64.Vec3) { self.Pos = pos }
func (self *TargetTransform) SetRotation(rot mgl64.Quat) { self.Rot = rot.Normalize() }

// Moves the transform by the given delta.
func (self *TargetTransform) Translate(delta mgl64.Vec3) {
	self.Pos = self.Pos.Add(delta)
}

// A transform that also tracks a velocity. Useful for simulations.
type RigidTarget struct {
	TargetTransform
	Vel mgl64.Vec3
}

func NewRigidTarget(pos, velocity mgl64.Vec3) *RigidTarget {
	return &RigidTarget{TargetTransform: TargetTransform{Pos: pos, Rot: mgl64.QuatIdent()}, Vel: velocity}
}

func (self *RigidTarget) Velocity() mgl64.Vec3 { return self.Vel }

// Integrates the velocity over the given time.
func (self *RigidTarget) Step(deltaTime float64) {
	self.Pos = self.Pos.Add(self.Vel.Mul(deltaTime))
}
