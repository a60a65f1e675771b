package spline

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// A path waypoint. Roll is in degrees, around the path tangent.
type Knot struct {
	Position mgl64.Vec3 `yaml:"position"`
	Roll     float64    `yaml:"roll"`
}

// Default number of samples per segment for the arc length tables.
const DefaultResolution = 20

// A smooth spline through a list of knots: the curve goes through
// every knot with continuous curvature. Knot roll is interpolated
// along the curve the same way.
//
// Paths are immutable; create a new one to change the knots.
type Path struct {
	knots  []mgl64.Vec4 // xyz + roll
	ctrl1  []mgl64.Vec4
	ctrl2  []mgl64.Vec4
	looped bool

	distances distanceCache
}

// Creates a path through the given knots. Resolution is the number of
// samples per segment of the arc length tables, DefaultResolution if
// not positive.
func NewPath(knots []Knot, looped bool, resolution int) *Path {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	path := &Path{
		knots:  make([]mgl64.Vec4, len(knots)),
		ctrl1:  make([]mgl64.Vec4, len(knots)),
		ctrl2:  make([]mgl64.Vec4, len(knots)),
		looped: looped,
	}
	for i, knot := range knots {
		path.knots[i] = knot.Position.Vec4(knot.Roll)
	}
	if looped {
		ComputeSmoothControlPointsLooped(path.knots, path.ctrl1, path.ctrl2)
	} else {
		ComputeSmoothControlPoints(path.knots, path.ctrl1, path.ctrl2)
	}
	path.distances.build(path, resolution)
	return path
}

// Returns the number of knots.
func (self *Path) KnotCount() int { return len(self.knots) }

func (self *Path) Closed() bool { return self.looped }

func (self *Path) KnotSpan() (float64, float64) {
	return 0, self.maxPos()
}

func (self *Path) maxPos() float64 {
	count := len(self.knots) - 1
	if count < 1 {
		return 0
	}
	if self.looped {
		return float64(count + 1)
	}
	return float64(count)
}

func (self *Path) Length() float64 { return self.distances.length }

// --- positions ---

func (self *Path) standardizeKnotPos(pos float64) float64 {
	maxPos := self.maxPos()
	if self.looped && maxPos > 0 {
		return utils.Repeat(pos, maxPos)
	}
	return utils.Clamp(pos, 0, maxPos)
}

func (self *Path) StandardizePosition(pos float64, units Units) float64 {
	switch units {
	case UnitDistance:
		length := self.Length()
		if self.looped && length > utils.Epsilon {
			return utils.Repeat(pos, length)
		}
		return utils.Clamp(pos, 0, length)
	case UnitNormalized:
		if self.looped {
			return utils.Repeat(pos, 1)
		}
		return utils.Clamp01(pos)
	default:
		return self.standardizeKnotPos(pos)
	}
}

func (self *Path) ConvertUnit(pos float64, from, to Units) float64 {
	if from == to {
		return pos
	}
	knotPos := pos
	switch from {
	case UnitDistance:
		knotPos = self.distances.positionAt(self.StandardizePosition(pos, UnitDistance))
	case UnitNormalized:
		knotPos = self.distances.positionAt(self.StandardizePosition(pos, UnitNormalized) * self.Length())
	}
	switch to {
	case UnitDistance:
		return self.distances.distanceAt(self.standardizeKnotPos(knotPos))
	case UnitNormalized:
		if self.Length() < utils.Epsilon {
			return 0
		}
		return self.distances.distanceAt(self.standardizeKnotPos(knotPos)) / self.Length()
	default:
		return knotPos
	}
}

// Returns the indices of the knots around the given knot position,
// and the standardized position.
func (self *Path) boundingIndices(pos float64) (float64, int, int) {
	pos = self.standardizeKnotPos(pos)
	count := len(self.knots)
	if count < 2 {
		return pos, 0, 0
	}
	indexA := int(math.Floor(pos))
	if indexA >= count {
		// looped paths wrap at the last segment end
		pos -= self.maxPos()
		indexA = 0
	}
	indexB := indexA + 1
	if indexB == count {
		if self.looped {
			indexB = 0
		} else {
			indexA, indexB = indexA-1, indexB-1
		}
	}
	return pos, indexA, indexB
}

func (self *Path) evaluateRaw(pos float64) (point, tangent mgl64.Vec4) {
	if len(self.knots) == 0 {
		return mgl64.Vec4{}, mgl64.Vec4{0, 0, 1, 0}
	}
	pos, a, b := self.boundingIndices(pos)
	if a == b {
		return self.knots[a], mgl64.Vec4{0, 0, 1, 0}
	}
	t := pos - float64(a)
	point = Bezier3(t, self.knots[a], self.ctrl1[a], self.ctrl2[a], self.knots[b])
	tangent = BezierTangent3(t, self.knots[a], self.ctrl1[a], self.ctrl2[a], self.knots[b])
	return point, tangent
}

// Returns the world position at a knot position.
func (self *Path) positionAtKnot(pos float64) mgl64.Vec3 {
	point, _ := self.evaluateRaw(pos)
	return point.Vec3()
}

func (self *Path) Evaluate(pos float64, units Units) (position, tangent, up mgl64.Vec3) {
	knotPos := self.ConvertUnit(pos, units, UnitKnot)
	point, rawTangent := self.evaluateRaw(knotPos)
	tangent = utils.SafeNormalize(rawTangent.Vec3())
	if tangent == (mgl64.Vec3{}) {
		tangent = utils.Forward
	}
	orientation := utils.LookRotation(tangent, utils.Up).Mul(utils.AngleAxis(point[3], utils.Forward))
	return point.Vec3(), tangent, orientation.Rotate(utils.Up)
}

// Returns the path orientation at a position: forward along the
// tangent, up including roll.
func Orientation(spline Spline, pos float64, units Units) mgl64.Quat {
	_, tangent, up := spline.Evaluate(pos, units)
	return utils.LookRotation(tangent, up)
}

// --- nearest point ---

func (self *Path) NearestPoint(p mgl64.Vec3, startSegment float64, searchRadius, stepsPerSegment int) float64 {
	start, end := 0.0, self.maxPos()
	if searchRadius >= 0 {
		radius := float64(searchRadius)
		if self.looped {
			radius = math.Min(radius, (end-start)/2)
			start, end = startSegment-radius, startSegment+radius+1
		} else {
			start = math.Max(startSegment-radius, 0)
			end = math.Min(startSegment+radius+1, end)
		}
	}

	steps := max(1, min(100, stepsPerSegment))
	stepSize := 1 / float64(steps)
	bestPos, bestDistance := startSegment, math.MaxFloat64
	iterations := 3
	if steps == 1 {
		iterations = 1
	}
	windowStart, windowEnd := start, end
	for range iterations {
		v0 := self.positionAtKnot(start)
		for f := start + stepSize; f <= end+utils.Epsilon; f += stepSize {
			v := self.positionAtKnot(f)
			t := utils.ClosestPointOnSegment(p, v0, v)
			d := p.Sub(utils.LerpVec3(v0, v, t)).Len()
			if d < bestDistance {
				bestDistance = d
				bestPos = f - (1-t)*stepSize
			}
			v0 = v
		}
		start = math.Max(bestPos-stepSize, windowStart)
		end = math.Min(bestPos+stepSize, windowEnd)
		stepSize /= float64(steps)
	}
	return self.standardizeKnotPos(bestPos)
}
