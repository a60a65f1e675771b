package shaker

import "math"

// A fade in, sustain, fade out gain curve for triggered shakes.
//
// The zero value is idle. Start() and End() are safe to call at any
// point: they continue from the current level instead of jumping.
type Envelope struct {
	elapsed float64
	fadeIn  float64
	sustain float64 // +Inf while shaking continuously
	fadeOut float64
	started bool
}

// Shakes for a fixed time: fade in, hold, fade out. All in seconds.
func (self *Envelope) Trigger(fadeIn, sustain, fadeOut float64) {
	self.Start(fadeIn)
	self.sustain = math.Max(0, sustain)
	self.fadeOut = math.Max(0, fadeOut)
}

// Starts shaking until [Envelope.End]() is called. If already fading
// in with the same duration, it does nothing.
func (self *Envelope) Start(fadeIn float64) {
	fadeIn = math.Max(0, fadeIn)
	if self.fadeIn == fadeIn && self.IsFadingIn() {
		return
	}
	level := self.Level()
	self.fadeIn = fadeIn
	self.sustain = math.Inf(1)
	self.fadeOut = 0
	self.elapsed = fadeIn * level
	self.started = true
}

// Fades the shake out from the current level.
func (self *Envelope) End(fadeOut float64) {
	fadeOut = math.Max(0, fadeOut)
	if !self.IsShaking() || (self.fadeOut == fadeOut && self.IsFadingOut()) {
		return
	}
	level := self.Level()
	if fadeOut == 0 {
		*self = Envelope{}
		return
	}
	self.fadeIn = 0
	self.sustain = 0
	self.fadeOut = fadeOut
	self.elapsed = fadeOut * (1 - level)
}

// Stops immediately.
func (self *Envelope) Reset() { *self = Envelope{} }

func (self *Envelope) IsFadingIn() bool {
	return self.IsShaking() && self.elapsed < self.fadeIn
}

func (self *Envelope) IsFadingOut() bool {
	untilFadeOut := self.fadeIn + self.sustain
	return self.IsShaking() && self.elapsed >= untilFadeOut
}

func (self *Envelope) IsShaking() bool {
	return self.started && self.elapsed < self.fadeIn+self.sustain+self.fadeOut
}

// Moves the envelope forward in time.
func (self *Envelope) Advance(deltaTime float64) {
	if deltaTime <= 0 || !self.IsShaking() {
		return
	}
	self.elapsed += deltaTime
	if !self.IsShaking() {
		*self = Envelope{}
	}
}

// Returns the linear gain, between 0 and 1.
func (self *Envelope) Level() float64 {
	if !self.IsShaking() {
		return 0
	}
	if self.elapsed < self.fadeIn {
		return self.elapsed / self.fadeIn
	}
	elapsed := self.elapsed - self.fadeIn
	if elapsed <= self.sustain {
		return 1
	}
	elapsed -= self.sustain
	return 1 - elapsed/self.fadeOut
}

// Same as [Envelope.Level](), with a cubic smoothstep applied.
func (self *Envelope) Activity() float64 {
	t := self.Level()
	return t * t * (3 - 2*t)
}
