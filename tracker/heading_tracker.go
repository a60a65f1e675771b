package tracker

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

type headingItem struct {
	velocity mgl64.Vec3
	weight   float64
	time     float64
}

// A bounded history of velocity samples whose weights decay over
// time, giving a heading that's robust to per frame jitter.
//
// Samples are weighted by speed, so slow jittery motion barely
// affects the heading. The weight halves every filterSize/5 seconds.
type HeadingTracker struct {
	history []headingItem
	top     int // next write index
	bottom  int // oldest item
	count   int

	headingSum      mgl64.Vec3
	weightSum       float64
	weightTime      float64
	lastGoodHeading mgl64.Vec3
	decayExponent   float64
}

// Creates a tracker holding up to filterSize samples. Panics if the
// size is not positive.
func NewHeadingTracker(filterSize int) *HeadingTracker {
	if filterSize < 1 {
		panic("heading tracker filter size must be at least 1")
	}
	halfLife := float64(filterSize) / 5
	return &HeadingTracker{
		history:       make([]headingItem, filterSize),
		decayExponent: -math.Ln2 / halfLife,
	}
}

// Returns the sample capacity.
func (self *HeadingTracker) FilterSize() int { return len(self.history) }

func (self *HeadingTracker) decay(time float64) float64 {
	return math.Exp(time * self.decayExponent)
}

// Forgets every sample.
func (self *HeadingTracker) ClearHistory() {
	self.top, self.bottom, self.count = 0, 0, 0
	self.weightSum = 0
	self.headingSum = mgl64.Vec3{}
}

// Adds a velocity sample taken at the given time. Zero velocities
// are ignored.
func (self *HeadingTracker) Add(velocity mgl64.Vec3, now float64) {
	if self.count == len(self.history) {
		self.popBottom()
	}
	weight := velocity.Len()
	if weight <= utils.Epsilon {
		return
	}
	item := headingItem{velocity: velocity, weight: weight, time: now}
	self.history[self.top] = item
	self.top = (self.top + 1) % len(self.history)
	self.count += 1

	// sums are kept relative to weightTime to avoid overflowing the
	// decay factors over long sessions
	decay := self.decay(self.weightTime - now)
	self.weightSum += weight * decay
	self.headingSum = self.headingSum.Add(velocity.Mul(decay))
}

func (self *HeadingTracker) popBottom() {
	if self.count == 0 {
		return
	}
	item := self.history[self.bottom]
	self.bottom = (self.bottom + 1) % len(self.history)
	self.count -= 1

	decay := self.decay(self.weightTime - item.time)
	self.weightSum -= item.weight * decay
	self.headingSum = self.headingSum.Sub(item.velocity.Mul(decay))
	if self.weightSum <= utils.Epsilon || self.count == 0 {
		self.ClearHistory()
	}
}

// Ages the history to the given time, dropping everything once the
// weights become negligible.
func (self *HeadingTracker) DecayHistory(now float64) {
	decay := self.decay(now - self.weightTime)
	self.weightSum *= decay
	self.weightTime = now
	if self.weightSum < utils.Epsilon {
		self.ClearHistory()
	} else {
		self.headingSum = self.headingSum.Mul(decay)
	}
}

// Returns the weighted average heading. When the history is not full
// yet and a good heading was already found, the old good heading is
// kept, so a handful of fresh samples can't swing the result.
func (self *HeadingTracker) GetReliableHeading() mgl64.Vec3 {
	noGoodHeading := self.lastGoodHeading.LenSqr() < utils.Epsilon
	if (noGoodHeading || self.count == len(self.history)) && self.weightSum > utils.Epsilon {
		h := self.headingSum.Mul(1 / self.weightSum)
		if !utils.AlmostZero(h) {
			self.lastGoodHeading = h.Normalize()
		}
	}
	return self.lastGoodHeading
}
