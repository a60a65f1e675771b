package cinemachine

// A source of the current time, in seconds. Used by noise and heading
// history. The time only needs to be monotonic within a camera.
type Clock interface {
	Now() float64
}

// A clock that only moves when told to.
type ManualClock struct {
	now float64
}

func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

func (self *ManualClock) Now() float64 { return self.now }

// Moves the clock forward. Negative values are ignored.
func (self *ManualClock) Advance(deltaTime float64) {
	if deltaTime > 0 {
		self.now += deltaTime
	}
}

func (self *ManualClock) Set(now float64) { self.now = now }
