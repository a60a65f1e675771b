// Package group implements weighted target groups that cameras can
// follow or frame as a single target, plus the view-space bounds math
// that the framing rigs use to fit a whole group on screen.
package group

import (
	"fmt"
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// How the group position is computed.
type PositionMode uint8

const (
	GroupCenter  PositionMode = iota // center of the bounding box
	GroupAverage                     // weighted average of the member positions
)

// How the group rotation is computed.
type RotationMode uint8

const (
	RotationManual  RotationMode = iota // Group.ManualRotation
	RotationAverage                     // weighted average of the member rotations
)

// Returns the mode with the given name, as used in scene files.
func ParsePositionMode(name string) (PositionMode, error) {
	switch name {
	case "group_center", "":
		return GroupCenter, nil
	case "group_average":
		return GroupAverage, nil
	default:
		return GroupCenter, fmt.Errorf("unknown group position mode %q", name)
	}
}

// Returns the mode with the given name, as used in scene files.
func ParseRotationMode(name string) (RotationMode, error) {
	switch name {
	case "manual", "":
		return RotationManual, nil
	case "group_average":
		return RotationAverage, nil
	default:
		return RotationManual, fmt.Errorf("unknown group rotation mode %q", name)
	}
}

// A group member. Members with zero weight are ignored. Members with
// less weight than the heaviest one are pulled toward the average
// position and shrunk, which makes entering and leaving members blend
// smoothly in the framing.
type Member struct {
	Target cinemachine.Target
	Weight float64
	Radius float64
}

// A weighted set of targets. It implements [cinemachine.GroupTarget],
// so it can be used as the follow or look at target of any camera.
type Group struct {
	PositionMode   PositionMode
	RotationMode   RotationMode
	ManualRotation mgl64.Quat
	Members        []Member
}

// Creates a group with the given members, using the bounding box
// center as the position and an identity manual rotation.
func New(members ...Member) *Group {
	return &Group{ManualRotation: mgl64.QuatIdent(), Members: members}
}

// Adds a member. Adding a target that's already in the group updates
// its weight and radius instead.
func (self *Group) Add(target cinemachine.Target, weight, radius float64) {
	for i := range self.Members {
		if self.Members[i].Target == target {
			self.Members[i].Weight, self.Members[i].Radius = weight, radius
			return
		}
	}
	self.Members = append(self.Members, Member{Target: target, Weight: weight, Radius: radius})
}

// Removes the member with the given target, if any.
func (self *Group) Remove(target cinemachine.Target) {
	for i := range self.Members {
		if self.Members[i].Target == target {
			self.Members = append(self.Members[:i], self.Members[i+1:]...)
			return
		}
	}
}

// Whether no member has a positive weight.
func (self *Group) IsEmpty() bool {
	for _, member := range self.Members {
		if member.Target != nil && member.Weight > utils.Epsilon {
			return false
		}
	}
	return true
}

// --- cinemachine.Target ---

func (self *Group) Position() mgl64.Vec3 {
	if self.PositionMode == GroupAverage {
		return self.averagePosition()
	}
	center, _ := self.BoundingBox()
	return center
}

func (self *Group) Rotation() mgl64.Quat {
	if self.RotationMode == RotationManual {
		if self.ManualRotation.Len() < utils.Epsilon {
			return mgl64.QuatIdent()
		}
		return self.ManualRotation.Normalize()
	}

	var sum mgl64.Quat
	var reference mgl64.Quat
	haveReference := false
	for _, member := range self.Members {
		if member.Target == nil || member.Weight <= utils.Epsilon {
			continue
		}
		q := member.Target.Rotation()
		if !haveReference {
			reference, haveReference = q, true
		} else if q.Dot(reference) < 0 {
			q = q.Scale(-1) // keep every member in the same hemisphere
		}
		sum = sum.Add(q.Scale(member.Weight))
	}
	if sum.Len() < utils.Epsilon {
		return mgl64.QuatIdent()
	}
	return sum.Normalize()
}

// --- bounds ---

func (self *Group) averagePosition() mgl64.Vec3 {
	var sum mgl64.Vec3
	weight := 0.0
	for _, member := range self.Members {
		if member.Target == nil || member.Weight <= utils.Epsilon {
			continue
		}
		sum = sum.Add(member.Target.Position().Mul(member.Weight))
		weight += member.Weight
	}
	if weight < utils.Epsilon {
		return mgl64.Vec3{}
	}
	return sum.Mul(1 / weight)
}

func (self *Group) maxWeight() float64 {
	maxWeight := 0.0
	for _, member := range self.Members {
		if member.Target != nil {
			maxWeight = math.Max(maxWeight, member.Weight)
		}
	}
	return maxWeight
}

type sphere struct {
	center mgl64.Vec3
	radius float64
}

// Returns the member spheres adjusted by weight. Lighter members are
// pulled toward the average position and shrunk.
func (self *Group) weightedSpheres() []sphere {
	average := self.averagePosition()
	maxWeight := self.maxWeight()
	spheres := make([]sphere, 0, len(self.Members))
	for _, member := range self.Members {
		if member.Target == nil || member.Weight <= utils.Epsilon {
			continue
		}
		w := 1.0
		if maxWeight > utils.Epsilon && member.Weight < maxWeight {
			w = member.Weight / maxWeight
		}
		spheres = append(spheres, sphere{
			center: utils.LerpVec3(average, member.Target.Position(), w),
			radius: math.Max(0, member.Radius) * w,
		})
	}
	return spheres
}

// Returns the world axis-aligned box enclosing the weighted members.
func (self *Group) BoundingBox() (center, size mgl64.Vec3) {
	spheres := self.weightedSpheres()
	if len(spheres) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	minP, maxP := boxOf(spheres[0])
	for _, s := range spheres[1:] {
		lo, hi := boxOf(s)
		minP, maxP = minVec3(minP, lo), maxVec3(maxP, hi)
	}
	return minP.Add(maxP).Mul(0.5), maxP.Sub(minP)
}

// Returns a sphere enclosing every weighted member, centered on the
// bounding box.
func (self *Group) Sphere() (center mgl64.Vec3, radius float64) {
	spheres := self.weightedSpheres()
	if len(spheres) == 0 {
		return mgl64.Vec3{}, 0
	}
	center, _ = self.BoundingBox()
	for _, s := range spheres {
		radius = math.Max(radius, s.center.Sub(center).Len()+s.radius)
	}
	return center, radius
}

// Returns the box enclosing the weighted members in the observer's
// local space. Members behind the observer are skipped unless
// includeBehind is set.
func (self *Group) ViewSpaceBoundingBox(observerPos mgl64.Vec3, observerRot mgl64.Quat, includeBehind bool) (center, size mgl64.Vec3) {
	toLocal := observerRot.Normalize().Inverse()
	var minP, maxP mgl64.Vec3
	found := false
	for _, s := range self.weightedSpheres() {
		local := sphere{center: toLocal.Rotate(s.center.Sub(observerPos)), radius: s.radius}
		if !includeBehind && local.center[2] < utils.Epsilon {
			continue
		}
		lo, hi := boxOf(local)
		if !found {
			minP, maxP, found = lo, hi, true
		} else {
			minP, maxP = minVec3(minP, lo), maxVec3(maxP, hi)
		}
	}
	if !found {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	return minP.Add(maxP).Mul(0.5), maxP.Sub(minP)
}

// Returns the vertical (x, positive up) and horizontal (y, positive
// right) angles enclosing the weighted members as seen from the
// observer, and the depth range including the member radii. Members
// behind the observer are skipped. Everything is zero if no member
// is in front.
func (self *Group) ViewSpaceAngularBounds(observerPos mgl64.Vec3, observerRot mgl64.Quat) (minAngles, maxAngles, zRange mgl64.Vec2) {
	toLocal := observerRot.Normalize().Inverse()
	found := false
	for _, s := range self.weightedSpheres() {
		p := toLocal.Rotate(s.center.Sub(observerPos))
		if p[2] < utils.Epsilon {
			continue
		}
		rN := s.radius / p[2]
		pN := p.Mul(1 / p[2])

		v0 := utils.SignedAngle(utils.Forward, mgl64.Vec3{0, pN[1] + rN, 1}, utils.Left)
		v1 := utils.SignedAngle(utils.Forward, mgl64.Vec3{0, pN[1] - rN, 1}, utils.Left)
		h0 := utils.SignedAngle(utils.Forward, mgl64.Vec3{pN[0] + rN, 0, 1}, utils.Up)
		h1 := utils.SignedAngle(utils.Forward, mgl64.Vec3{pN[0] - rN, 0, 1}, utils.Up)
		lo := mgl64.Vec2{math.Min(v0, v1), math.Min(h0, h1)}
		hi := mgl64.Vec2{math.Max(v0, v1), math.Max(h0, h1)}
		near, far := p[2]-s.radius, p[2]+s.radius

		if !found {
			minAngles, maxAngles, zRange, found = lo, hi, mgl64.Vec2{near, far}, true
			continue
		}
		minAngles = mgl64.Vec2{math.Min(minAngles[0], lo[0]), math.Min(minAngles[1], lo[1])}
		maxAngles = mgl64.Vec2{math.Max(maxAngles[0], hi[0]), math.Max(maxAngles[1], hi[1])}
		zRange = mgl64.Vec2{math.Min(zRange[0], near), math.Max(zRange[1], far)}
	}
	return minAngles, maxAngles, zRange
}

// --- helpers ---

func boxOf(s sphere) (lo, hi mgl64.Vec3) {
	r := mgl64.Vec3{s.radius, s.radius, s.radius}
	return s.center.Sub(r), s.center.Add(r)
}

func minVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])}
}

func maxVec3(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}
