package shaker

import (
	"math/rand/v2"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Adds multi-channel Perlin noise to the camera, from a [NoiseProfile].
// The noise is applied in camera space, so it keeps its character no
// matter where the camera looks.
type Perlin struct {
	Profile *NoiseProfile `yaml:"-"`

	// Rotations pivot around this point, in camera space. Moving it
	// in front of the camera makes rotation noise swing the position.
	PivotOffset mgl64.Vec3 `yaml:"pivot_offset"`

	AmplitudeGain float64 `yaml:"amplitude_gain"`
	FrequencyGain float64 `yaml:"frequency_gain"`

	// Seed for the per-axis noise offsets. Cameras with the same seed
	// and profile shake the same way.
	Seed uint64 `yaml:"seed"`

	noiseTime    float64
	noiseOffsets mgl64.Vec3
	initialized  bool
}

func NewPerlin(profile *NoiseProfile, seed uint64) *Perlin {
	return &Perlin{Profile: profile, AmplitudeGain: 1, FrequencyGain: 1, Seed: seed}
}

func (self *Perlin) Kind() cinemachine.ComponentKind { return cinemachine.KindPerlinNoise }
func (self *Perlin) Stage() cinemachine.Stage        { return cinemachine.StageNoise }
func (self *Perlin) MaxDampTime() float64            { return 0 }

func (self *Perlin) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return self.Profile != nil
}

// Returns the accumulated noise time.
func (self *Perlin) NoiseTime() float64 { return self.noiseTime }

// Picks new noise offsets from the seed and restarts the noise time.
func (self *Perlin) ReSeed() {
	rng := rand.New(rand.NewPCG(self.Seed, self.Seed^0x9e3779b97f4a7c15))
	for i := range 3 {
		self.noiseOffsets[i] = rng.Float64()*2000 - 1000
	}
	self.noiseTime = 0
	self.initialized = true
}

func (self *Perlin) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	if !self.initialized {
		self.ReSeed()
	}
	if deltaTime < 0 {
		self.noiseTime = 0
	} else {
		self.noiseTime += deltaTime * self.FrequencyGain
	}

	pos, angles := self.Profile.Sample(self.noiseTime, self.noiseOffsets)
	orientation := state.CorrectedOrientation()
	state.PositionCorrection = state.PositionCorrection.Add(orientation.Rotate(pos.Mul(self.AmplitudeGain)))

	rot := utils.Euler(angles.Mul(self.AmplitudeGain))
	if self.PivotOffset != (mgl64.Vec3{}) {
		// rotating around the pivot moves the camera origin
		swing := self.PivotOffset.Sub(rot.Rotate(self.PivotOffset))
		state.PositionCorrection = state.PositionCorrection.Add(orientation.Rotate(swing))
	}
	state.OrientationCorrection = state.OrientationCorrection.Mul(rot).Normalize()
}
