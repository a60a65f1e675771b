package collision

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

func NewSphere(center mgl64.Vec3, radius float64, tag string) *Obstacle {
	return &Obstacle{Shape: Sphere{Center: center, Radius: radius}, Tag: tag}
}

func (self Sphere) sweep(origin, direction mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	// ray against the sphere grown by the cast radius
	combined := self.Radius + radius
	offset := origin.Sub(self.Center)
	c := offset.Dot(offset) - combined*combined
	if c <= 0 {
		return 0, mgl64.Vec3{}, false
	}
	b := offset.Dot(direction)
	if b >= 0 {
		return 0, mgl64.Vec3{}, false // moving away
	}
	discriminant := b*b - c
	if discriminant < 0 {
		return 0, mgl64.Vec3{}, false
	}
	distance := -b - math.Sqrt(discriminant)
	contact := origin.Add(direction.Mul(distance))
	return distance, utils.SafeNormalize(contact.Sub(self.Center)), true
}

// An axis aligned box.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func NewBox(center, size mgl64.Vec3, tag string) *Obstacle {
	half := utils.AbsVec3(size).Mul(0.5)
	return &Obstacle{Shape: Box{Min: center.Sub(half), Max: center.Add(half)}, Tag: tag}
}

// Sweeps against the box grown by the cast radius on every side. The
// grown corners are square rather than rounded, so casts that graze a
// corner report a slightly early contact.
func (self Box) sweep(origin, direction mgl64.Vec3, radius float64) (float64, mgl64.Vec3, bool) {
	grownMin := self.Min.Sub(mgl64.Vec3{radius, radius, radius})
	grownMax := self.Max.Add(mgl64.Vec3{radius, radius, radius})

	inside := true
	for axis := range 3 {
		if origin[axis] <= grownMin[axis] || origin[axis] >= grownMax[axis] {
			inside = false
			break
		}
	}
	if inside {
		return 0, mgl64.Vec3{}, false
	}

	// slab test
	entry, exit := math.Inf(-1), math.Inf(1)
	entryAxis, entrySign := -1, 0.0
	for axis := range 3 {
		if math.Abs(direction[axis]) < utils.Epsilon*utils.Epsilon {
			if origin[axis] < grownMin[axis] || origin[axis] > grownMax[axis] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t0 := (grownMin[axis] - origin[axis]) / direction[axis]
		t1 := (grownMax[axis] - origin[axis]) / direction[axis]
		sign := -1.0
		if t0 > t1 {
			t0, t1 = t1, t0
			sign = 1
		}
		if t0 > entry {
			entry, entryAxis, entrySign = t0, axis, sign
		}
		exit = math.Min(exit, t1)
	}
	if entryAxis < 0 || entry > exit || entry < 0 {
		return 0, mgl64.Vec3{}, false
	}
	var normal mgl64.Vec3
	normal[entryAxis] = entrySign
	return entry, normal, true
}
