package shaker

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// A shake recorded as position and rotation samples at a fixed rate.
// Rotations are Euler angles in degrees. Either track may be empty.
type RecordedSignal struct {
	Rate        float64      `yaml:"rate"` // samples per second
	Translation []mgl64.Vec3 `yaml:"translation"`
	Rotation    []mgl64.Vec3 `yaml:"rotation"`
	Loop        bool         `yaml:"loop"`
}

var _ SignalSource = (*RecordedSignal)(nil)

// Panics if rate is not positive.
func NewRecordedSignal(rate float64, translation, rotation []mgl64.Vec3, loop bool) *RecordedSignal {
	if rate <= 0 {
		panic("can't record a signal at a non-positive rate")
	}
	return &RecordedSignal{Rate: rate, Translation: translation, Rotation: rotation, Loop: loop}
}

// Returns the duration of the longest track. Looping signals never
// end, so they return 0.
func (self *RecordedSignal) SignalDuration() float64 {
	if self.Loop || self.Rate <= 0 {
		return 0
	}
	return self.trackDuration()
}

func (self *RecordedSignal) trackDuration() float64 {
	samples := max(len(self.Translation), len(self.Rotation))
	if samples < 2 {
		return 0
	}
	return float64(samples-1) / self.Rate
}

func (self *RecordedSignal) GetSignal(timeSinceStart float64) (mgl64.Vec3, mgl64.Quat) {
	if self.Rate <= 0 {
		return mgl64.Vec3{}, mgl64.QuatIdent()
	}
	pos := sampleTrack(self.Translation, self.Rate, timeSinceStart, self.Loop, utils.LerpVec3)
	angles := sampleTrack(self.Rotation, self.Rate, timeSinceStart, self.Loop, lerpAngles)
	return pos, utils.Euler(angles)
}

func lerpAngles(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		utils.LerpAngle(a[0], b[0], t),
		utils.LerpAngle(a[1], b[1], t),
		utils.LerpAngle(a[2], b[2], t),
	}
}

func sampleTrack(track []mgl64.Vec3, rate, time float64, loop bool, lerp func(a, b mgl64.Vec3, t float64) mgl64.Vec3) mgl64.Vec3 {
	switch len(track) {
	case 0:
		return mgl64.Vec3{}
	case 1:
		return track[0]
	}
	last := float64(len(track) - 1)
	index := time * rate
	if loop {
		// the last sample wraps back into the first one
		index = utils.Repeat(index, last+1)
	} else {
		index = utils.Clamp(index, 0, last)
	}
	i0 := int(math.Floor(index))
	i1 := i0 + 1
	if i1 > len(track)-1 {
		if !loop {
			return track[len(track)-1]
		}
		i1 = 0
	}
	return lerp(track[i0], track[i1], index-float64(i0))
}
