package spline

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
)

// Tables mapping knot positions to arc length and back, sampled at
// regular steps.
type distanceCache struct {
	length          float64
	posStep         float64
	distanceStep    float64
	posToDistance   []float64
	distanceToPos   []float64
	maxKnotPosition float64
}

func (self *distanceCache) build(path *Path, stepsPerSegment int) {
	maxPos := path.maxPos()
	self.maxKnotPosition = maxPos
	numKeys := int(math.Round(float64(stepsPerSegment)*maxPos)) + 1
	self.posToDistance = make([]float64, numKeys)
	self.distanceToPos = make([]float64, numKeys)
	self.length = 0
	if numKeys < 2 {
		return
	}

	self.posStep = maxPos / float64(numKeys-1)
	p0 := path.positionAtKnot(0)
	for i := 1; i < numKeys; i++ {
		p := path.positionAtKnot(float64(i) * self.posStep)
		self.length += p.Sub(p0).Len()
		self.posToDistance[i] = self.length
		p0 = p
	}

	self.distanceStep = self.length / float64(numKeys-1)
	distance := 0.0
	posIndex := 1
	for i := 1; i < numKeys; i++ {
		distance += self.distanceStep
		d := self.posToDistance[posIndex]
		for d < distance && posIndex < numKeys-1 {
			posIndex += 1
			d = self.posToDistance[posIndex]
		}
		d0 := self.posToDistance[posIndex-1]
		t := 0.0
		if delta := d - d0; delta > utils.Epsilon {
			t = utils.Clamp01((distance - d0) / delta)
		}
		self.distanceToPos[i] = self.posStep * (t + float64(posIndex-1))
	}
	self.distanceToPos[numKeys-1] = maxPos
}

// Arc length at a standardized knot position.
func (self *distanceCache) distanceAt(pos float64) float64 {
	if len(self.posToDistance) < 2 || self.posStep <= 0 {
		return 0
	}
	d := pos / self.posStep
	i := int(math.Floor(d))
	if i >= len(self.posToDistance)-1 {
		return self.length
	}
	return utils.Lerp(self.posToDistance[i], self.posToDistance[i+1], d-float64(i))
}

// Knot position at a standardized arc length.
func (self *distanceCache) positionAt(distance float64) float64 {
	if len(self.distanceToPos) < 2 || self.distanceStep <= 0 {
		return 0
	}
	d := distance / self.distanceStep
	i := int(math.Floor(d))
	if i >= len(self.distanceToPos)-1 {
		return self.maxKnotPosition
	}
	return utils.Lerp(self.distanceToPos[i], self.distanceToPos[i+1], d-float64(i))
}
