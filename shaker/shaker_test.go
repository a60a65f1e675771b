package shaker

import (
	"testing"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCamera(rig cinemachine.Component) *cinemachine.VirtualCamera {
	vcam := cinemachine.NewVirtualCamera("test", zerolog.Nop())
	vcam.SetComponent(rig)
	return vcam
}

func TestEnvelopePhases(t *testing.T) {
	var envelope Envelope
	assert.False(t, envelope.IsShaking())
	assert.Equal(t, 0.0, envelope.Level())

	envelope.Trigger(1, 2, 1)
	assert.True(t, envelope.IsShaking())
	assert.True(t, envelope.IsFadingIn())

	envelope.Advance(0.5)
	assert.InDelta(t, 0.5, envelope.Level(), 1e-9)
	envelope.Advance(0.5)
	assert.InDelta(t, 1, envelope.Level(), 1e-9)
	assert.False(t, envelope.IsFadingIn())
	envelope.Advance(2)
	assert.InDelta(t, 1, envelope.Level(), 1e-9)
	envelope.Advance(0.5)
	assert.True(t, envelope.IsFadingOut())
	assert.InDelta(t, 0.5, envelope.Level(), 1e-9)
	envelope.Advance(0.5)
	assert.False(t, envelope.IsShaking())
	assert.Equal(t, 0.0, envelope.Level())
}

func TestEnvelopeContinuesFromTheCurrentLevel(t *testing.T) {
	var envelope Envelope
	envelope.Start(1)
	envelope.Advance(0.5)
	require.InDelta(t, 0.5, envelope.Level(), 1e-9)

	envelope.End(2)
	assert.True(t, envelope.IsFadingOut())
	assert.InDelta(t, 0.5, envelope.Level(), 1e-9, "no jump when ending mid fade in")

	envelope.Start(1)
	assert.InDelta(t, 0.5, envelope.Level(), 1e-9, "no jump when restarting mid fade out")
	envelope.Advance(10)
	assert.True(t, envelope.IsShaking(), "started shakes don't end on their own")

	envelope.End(0)
	assert.False(t, envelope.IsShaking())
}

func TestEnvelopeActivityIsSmoothed(t *testing.T) {
	var envelope Envelope
	envelope.Trigger(1, 0, 0)
	envelope.Advance(0.25)
	assert.InDelta(t, 0.25, envelope.Level(), 1e-9)
	assert.InDelta(t, 0.15625, envelope.Activity(), 1e-9)
}

func TestNoiseParams(t *testing.T) {
	wave := NoiseParams{Frequency: 1, Amplitude: 2, Constant: true}
	assert.InDelta(t, 1, wave.ValueAt(0, 0), 1e-9)
	assert.InDelta(t, -1, wave.ValueAt(0.5, 0), 1e-9)
	assert.InDelta(t, -1, wave.ValueAt(0, 0.5), 1e-9, "the offset shifts the phase")

	perlin := NoiseParams{Frequency: 3, Amplitude: 2}
	for i := range 100 {
		value := perlin.ValueAt(float64(i)*0.037, 12.5)
		assert.LessOrEqual(t, value, 1.0)
		assert.GreaterOrEqual(t, value, -1.0)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"handheld_mild", "handheld_normal", "handheld_strong", "6d_shake"} {
		profile, found := Preset(name)
		require.True(t, found, name)
		assert.NotEmpty(t, profile.Orientation, name)
	}
	_, found := Preset("earthquake")
	assert.False(t, found)

	a, _ := Preset("handheld_mild")
	b, _ := Preset("handheld_mild")
	a.Orientation[0].X.Amplitude = 100
	assert.NotEqual(t, 100.0, b.Orientation[0].X.Amplitude, "presets are copies")
}

func TestRecordedSignal(t *testing.T) {
	signal := NewRecordedSignal(10,
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		[]mgl64.Vec3{{0, 0, 0}, {0, 10, 0}},
		false)
	assert.InDelta(t, 0.2, signal.SignalDuration(), 1e-9)

	pos, rot := signal.GetSignal(0.05)
	assert.InDelta(t, 0.5, pos[0], 1e-9)
	assert.InDelta(t, 5, utils.QuatAngle(mgl64.QuatIdent(), rot), 1e-6)

	pos, _ = signal.GetSignal(1)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, pos, "finite signals hold the last sample")

	signal.Loop = true
	assert.Equal(t, 0.0, signal.SignalDuration())
	pos, _ = signal.GetSignal(0.25)
	assert.InDelta(t, 1, pos[0], 1e-9, "halfway from the last sample back to the first")

	assert.Panics(t, func() { NewRecordedSignal(0, nil, nil, false) })
}

func TestPerlinIsDeterministic(t *testing.T) {
	run := func(seed uint64) mgl64.Vec3 {
		vcam := newCamera(NewPerlin(HandheldStrong(), seed))
		for range 20 {
			vcam.UpdateCameraState(utils.Up, 0.05, true)
		}
		return vcam.State().PositionCorrection
	}
	assert.Equal(t, run(7), run(7))
	assert.NotEqual(t, run(7), run(8))
}

func TestPerlinOnlyTouchesCorrections(t *testing.T) {
	profile := HandheldStrong()
	rig := NewPerlin(profile, 3)
	vcam := newCamera(rig)
	vcam.SetTransform(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
	for range 10 {
		vcam.UpdateCameraState(utils.Up, 0.05, true)
		state := vcam.State()
		assert.Equal(t, mgl64.Vec3{1, 2, 3}, state.RawPosition)
		assert.InDelta(t, 0, utils.QuatAngle(mgl64.QuatIdent(), state.RawOrientation), 1e-9)

		// one position layer, each axis within half its amplitude
		limits := profile.Position[0]
		correction := state.PositionCorrection
		assert.LessOrEqual(t, correction.Len(), mgl64.Vec3{
			limits.X.Amplitude, limits.Y.Amplitude, limits.Z.Amplitude,
		}.Mul(0.5).Len()+1e-9)
	}
	assert.InDelta(t, 0.45, rig.NoiseTime(), 1e-9, "the first update is a cut")

	vcam.UpdateCameraState(utils.Up, -1, true)
	assert.Equal(t, 0.0, rig.NoiseTime())
}

func TestPerlinGains(t *testing.T) {
	rig := NewPerlin(SixDShake(), 1)
	rig.AmplitudeGain = 0
	vcam := newCamera(rig)
	for range 5 {
		vcam.UpdateCameraState(utils.Up, 0.05, true)
	}
	state := vcam.State()
	assert.InDelta(t, 0, state.PositionCorrection.Len(), 1e-12)
	assert.InDelta(t, 0, utils.QuatAngle(mgl64.QuatIdent(), state.OrientationCorrection), 1e-6)

	rig.FrequencyGain = 2
	before := rig.NoiseTime()
	vcam.UpdateCameraState(utils.Up, 0.05, true)
	assert.InDelta(t, before+0.1, rig.NoiseTime(), 1e-9)
	assert.False(t, NewPerlin(nil, 0).IsValid(vcam))
}

func TestSignalNoisePlaysInCameraSpace(t *testing.T) {
	source := NewRecordedSignal(1, []mgl64.Vec3{{1, 0, 0}, {1, 0, 0}}, nil, true)
	rig := NewSignalNoise(source)
	vcam := newCamera(rig)
	vcam.SetTransform(mgl64.Vec3{}, utils.AngleAxis(90, utils.Up))

	vcam.UpdateCameraState(utils.Up, 0.1, true)
	assert.Equal(t, mgl64.Vec3{}, vcam.State().PositionCorrection, "idle until shaken")

	rig.Shake(0, 1, 0)
	require.True(t, rig.IsShaking())
	vcam.UpdateCameraState(utils.Up, 0.1, true)
	correction := vcam.State().PositionCorrection
	assert.InDelta(t, 0, correction.Sub(mgl64.Vec3{0, 0, -1}).Len(), 1e-9)

	for range 12 {
		vcam.UpdateCameraState(utils.Up, 0.1, true)
	}
	assert.False(t, rig.IsShaking())
	assert.Equal(t, mgl64.Vec3{}, vcam.State().PositionCorrection)
}

func TestSignalNoiseStopsWithFiniteSignals(t *testing.T) {
	source := NewRecordedSignal(10, []mgl64.Vec3{{0, 1, 0}, {0, 1, 0}}, nil, false)
	rig := NewSignalNoise(source)
	vcam := newCamera(rig)
	rig.Shake(0, -1, 0)
	for range 5 {
		vcam.UpdateCameraState(utils.Up, 0.1, true)
	}
	assert.False(t, rig.IsShaking(), "the 0.1s recording ran out")

	rig.Shake(0, -1, 0)
	rig.Stop(0)
	assert.False(t, rig.IsShaking())
}
