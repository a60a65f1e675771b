package tracker

import (
	"math"

	"github.com/edwinsyarief/cinemachine/damper"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Extrapolates a tracked point into the near future from its smoothed
// velocity. Used for lookahead.
type PositionPredictor struct {
	// Velocity smoothing, from 0 (raw) to about 30 (very smooth).
	Smoothing float64

	// Drops the vertical part of the prediction.
	IgnoreY bool

	velocity           mgl64.Vec3
	smoothDampVelocity mgl64.Vec3
	position           mgl64.Vec3
	havePosition       bool
}

// Whether no sample has been added since the last reset.
func (self *PositionPredictor) IsEmpty() bool { return !self.havePosition }

// Clears the history.
func (self *PositionPredictor) Reset() {
	self.havePosition = false
	self.velocity = mgl64.Vec3{}
	self.smoothDampVelocity = mgl64.Vec3{}
}

// Shifts the history by the given delta, for teleports.
func (self *PositionPredictor) ApplyTransformDelta(positionDelta mgl64.Vec3) {
	self.position = self.position.Add(positionDelta)
}

// Records a new sample. A negative deltaTime resets the history
// first. The lookahead time doesn't affect the history: predictions
// scale with whatever time is passed to [PositionPredictor.PredictPositionDelta]().
func (self *PositionPredictor) AddPosition(pos mgl64.Vec3, deltaTime, lookaheadTime float64) {
	if deltaTime < 0 {
		self.Reset()
	}
	if self.havePosition && deltaTime > utils.Epsilon {
		velocity := pos.Sub(self.position).Mul(1 / deltaTime)
		slowing := velocity.LenSqr() < self.velocity.LenSqr()
		smoothTime := self.Smoothing / 10
		if slowing {
			smoothTime = self.Smoothing / 30
		}
		self.velocity = damper.SmoothDampVec3(self.velocity, velocity,
			&self.smoothDampVelocity, smoothTime, math.Inf(1), deltaTime)
	}
	self.position = pos
	self.havePosition = true
}

// Returns the predicted displacement lookaheadTime seconds from now.
func (self *PositionPredictor) PredictPositionDelta(lookaheadTime float64) mgl64.Vec3 {
	delta := self.velocity.Mul(lookaheadTime)
	if self.IgnoreY {
		delta[1] = 0
	}
	return delta
}

// Returns the predicted position lookaheadTime seconds from now.
func (self *PositionPredictor) PredictPosition(lookaheadTime float64) mgl64.Vec3 {
	return self.position.Add(self.PredictPositionDelta(lookaheadTime))
}

// Returns the current smoothed velocity estimate.
func (self *PositionPredictor) Velocity() mgl64.Vec3 { return self.velocity }
