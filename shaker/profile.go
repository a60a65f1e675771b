package shaker

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Shared generator. Channels sample it at different offsets, so one
// permutation table is enough for every profile.
var generator = perlin.NewPerlin(2, 2, 3, 1013)

// One layer of noise on a single axis.
type NoiseParams struct {
	Frequency float64 `yaml:"frequency"` // in Hz
	Amplitude float64 `yaml:"amplitude"`

	// Use a cosine wave instead of Perlin noise.
	Constant bool `yaml:"constant"`
}

// Returns the signal value, within ±Amplitude/2.
func (self NoiseParams) ValueAt(time, timeOffset float64) float64 {
	t := self.Frequency*time + timeOffset
	if self.Constant {
		return math.Cos(t*2*math.Pi) * self.Amplitude * 0.5
	}
	return utils.Clamp(generator.Noise2D(t, 0.5), -1, 1) * self.Amplitude * 0.5
}

// A noise layer for each of the three axes.
type TransformNoiseParams struct {
	X NoiseParams `yaml:"x"`
	Y NoiseParams `yaml:"y"`
	Z NoiseParams `yaml:"z"`
}

// Returns the combined layer value for the three axes. Each axis gets
// its own offset so they don't move in lockstep.
func (self TransformNoiseParams) ValueAt(time float64, offsets mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		self.X.ValueAt(time, offsets[0]),
		self.Y.ValueAt(time, offsets[1]),
		self.Z.ValueAt(time, offsets[2]),
	}
}

// A set of noise layers for position (in camera space units) and
// orientation (in degrees of pitch, yaw and roll). The layers of each
// channel are summed.
type NoiseProfile struct {
	Position    []TransformNoiseParams `yaml:"position"`
	Orientation []TransformNoiseParams `yaml:"orientation"`
}

var _ SignalSource = (*NoiseProfile)(nil)

// Noise never ends.
func (self *NoiseProfile) SignalDuration() float64 { return 0 }

func (self *NoiseProfile) GetSignal(timeSinceStart float64) (mgl64.Vec3, mgl64.Quat) {
	pos := combine(self.Position, timeSinceStart, mgl64.Vec3{})
	rot := combine(self.Orientation, timeSinceStart, mgl64.Vec3{})
	return pos, utils.Euler(rot)
}

// Returns the summed position and orientation values at the given
// time, with the per-axis offsets applied to every layer.
func (self *NoiseProfile) Sample(time float64, offsets mgl64.Vec3) (pos, angles mgl64.Vec3) {
	return combine(self.Position, time, offsets), combine(self.Orientation, time, offsets)
}

func combine(layers []TransformNoiseParams, time float64, offsets mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, layer := range layers {
		sum = sum.Add(layer.ValueAt(time, offsets))
	}
	return sum
}

// --- presets ---

func noise(frequency, amplitude float64) NoiseParams {
	return NoiseParams{Frequency: frequency, Amplitude: amplitude}
}

// Slow, subtle sway of a camera held by a steady operator.
func HandheldMild() *NoiseProfile {
	return &NoiseProfile{
		Orientation: []TransformNoiseParams{
			{X: noise(0.25, 0.6), Y: noise(0.2, 0.6), Z: noise(0.1, 0.2)},
			{X: noise(1.1, 0.15), Y: noise(0.9, 0.15)},
		},
	}
}

// Documentary style handheld camera.
func HandheldNormal() *NoiseProfile {
	return &NoiseProfile{
		Position: []TransformNoiseParams{
			{X: noise(0.3, 0.03), Y: noise(0.35, 0.03), Z: noise(0.2, 0.02)},
		},
		Orientation: []TransformNoiseParams{
			{X: noise(0.3, 1.2), Y: noise(0.25, 1.2), Z: noise(0.15, 0.5)},
			{X: noise(1.3, 0.3), Y: noise(1.1, 0.3), Z: noise(0.8, 0.1)},
		},
	}
}

// Handheld camera of someone running.
func HandheldStrong() *NoiseProfile {
	return &NoiseProfile{
		Position: []TransformNoiseParams{
			{X: noise(0.5, 0.08), Y: noise(0.6, 0.1), Z: noise(0.4, 0.05)},
		},
		Orientation: []TransformNoiseParams{
			{X: noise(0.5, 3), Y: noise(0.45, 3), Z: noise(0.3, 1.5)},
			{X: noise(2.2, 0.8), Y: noise(1.9, 0.8), Z: noise(1.4, 0.3)},
		},
	}
}

// Fast shake on all six axes, for impacts and explosions.
func SixDShake() *NoiseProfile {
	return &NoiseProfile{
		Position: []TransformNoiseParams{
			{X: noise(8, 0.3), Y: noise(8.5, 0.3), Z: noise(7, 0.2)},
		},
		Orientation: []TransformNoiseParams{
			{X: noise(9, 2), Y: noise(8, 2), Z: noise(6, 1)},
		},
	}
}

var presets = map[string]func() *NoiseProfile{
	"handheld_mild":   HandheldMild,
	"handheld_normal": HandheldNormal,
	"handheld_strong": HandheldStrong,
	"6d_shake":        SixDShake,
}

// Returns a new copy of the named preset, as used in scene files.
func Preset(name string) (*NoiseProfile, bool) {
	preset, found := presets[name]
	if !found {
		return nil, false
	}
	return preset(), true
}
