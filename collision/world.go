// Package collision defines the sphere cast service the third person
// rig uses to avoid obstacles, and an in-memory obstacle world that
// implements it.
package collision

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultLayer uint32 = 1
	AllLayers    uint32 = math.MaxUint32
)

// The result of a sphere cast.
type Hit struct {
	// Where the swept sphere touches the obstacle.
	Point mgl64.Vec3

	// Surface normal at the contact, pointing out of the obstacle.
	Normal mgl64.Vec3

	// How far the sphere center travelled before the contact.
	Distance float64

	Tag string
}

// Sweeps a sphere along a direction and reports the first obstacle it
// touches. Obstacles whose layer is not in layerMask, or whose tag is
// ignoreTag (when not empty), are skipped. Obstacles the sphere
// already overlaps at the origin are not reported.
type SphereCaster interface {
	SphereCastIgnoreTag(origin mgl64.Vec3, radius float64, direction mgl64.Vec3, maxDistance float64, layerMask uint32, ignoreTag string) (Hit, bool)
}

// An obstacle shape. Implementations compute where a sphere moving
// along a ray first touches them.
type Shape interface {
	// Returns the travel distance and contact normal of a sphere of
	// the given radius moving from origin along the unit direction.
	// Returns false when the sphere misses or starts overlapping.
	sweep(origin, direction mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool)
}

type Obstacle struct {
	Shape Shape
	Layer uint32 // DefaultLayer if zero
	Tag   string
}

func (self *Obstacle) layer() uint32 {
	if self.Layer == 0 {
		return DefaultLayer
	}
	return self.Layer
}

// A set of static obstacles. The zero value is an empty world.
type World struct {
	obstacles []*Obstacle
}

func NewWorld(obstacles ...*Obstacle) *World {
	return &World{obstacles: obstacles}
}

func (self *World) Add(obstacle *Obstacle) {
	if obstacle == nil || obstacle.Shape == nil {
		panic("can't add an obstacle without a shape")
	}
	self.obstacles = append(self.obstacles, obstacle)
}

// Removes the obstacle. Returns false if it wasn't in the world.
func (self *World) Remove(obstacle *Obstacle) bool {
	for i, candidate := range self.obstacles {
		if candidate == obstacle {
			self.obstacles = append(self.obstacles[:i], self.obstacles[i+1:]...)
			return true
		}
	}
	return false
}

func (self *World) Obstacles() []*Obstacle { return self.obstacles }

func (self *World) Clear() { self.obstacles = self.obstacles[:0] }

func (self *World) SphereCastIgnoreTag(origin mgl64.Vec3, radius float64, direction mgl64.Vec3, maxDistance float64, layerMask uint32, ignoreTag string) (Hit, bool) {
	direction = utils.SafeNormalize(direction)
	if direction == (mgl64.Vec3{}) || maxDistance < utils.Epsilon {
		return Hit{}, false
	}
	radius = math.Max(radius, 0)

	var best Hit
	found := false
	for _, obstacle := range self.obstacles {
		if obstacle.layer()&layerMask == 0 {
			continue
		}
		if ignoreTag != "" && obstacle.Tag == ignoreTag {
			continue
		}
		distance, normal, hit := obstacle.Shape.sweep(origin, direction, radius)
		if !hit || distance > maxDistance || (found && distance >= best.Distance) {
			continue
		}
		center := origin.Add(direction.Mul(distance))
		best = Hit{
			Point:    center.Sub(normal.Mul(radius)),
			Normal:   normal,
			Distance: distance,
			Tag:      obstacle.Tag,
		}
		found = true
	}
	return best, found
}
