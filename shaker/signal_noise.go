package shaker

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Plays a [SignalSource] on the camera, scaled by an [Envelope].
// Finite signals stop the shake when they run out.
type SignalNoise struct {
	Source        SignalSource `yaml:"-"`
	AmplitudeGain float64      `yaml:"amplitude_gain"`
	FrequencyGain float64      `yaml:"frequency_gain"`
	Envelope      Envelope     `yaml:"-"`

	signalTime float64
}

func NewSignalNoise(source SignalSource) *SignalNoise {
	return &SignalNoise{Source: source, AmplitudeGain: 1, FrequencyGain: 1}
}

func (self *SignalNoise) Kind() cinemachine.ComponentKind { return cinemachine.KindSignalNoise }
func (self *SignalNoise) Stage() cinemachine.Stage        { return cinemachine.StageNoise }
func (self *SignalNoise) MaxDampTime() float64            { return 0 }

func (self *SignalNoise) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return self.Source != nil
}

// Plays the signal from the start with the given envelope, in seconds.
// A negative sustain keeps shaking until [SignalNoise.Stop]().
func (self *SignalNoise) Shake(fadeIn, sustain, fadeOut float64) {
	self.signalTime = 0
	if sustain < 0 {
		self.Envelope.Start(fadeIn)
		return
	}
	self.Envelope.Trigger(fadeIn, sustain, fadeOut)
}

// Fades the shake out.
func (self *SignalNoise) Stop(fadeOut float64) { self.Envelope.End(fadeOut) }

func (self *SignalNoise) IsShaking() bool { return self.Envelope.IsShaking() }

func (self *SignalNoise) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	if !self.Envelope.IsShaking() {
		return
	}
	if deltaTime > 0 {
		self.signalTime += deltaTime * self.FrequencyGain
		self.Envelope.Advance(deltaTime)
	}
	if duration := self.Source.SignalDuration(); duration > 0 && self.signalTime > duration {
		self.Envelope.Reset()
		return
	}

	gain := self.Envelope.Activity() * self.AmplitudeGain
	pos, rot := self.Source.GetSignal(self.signalTime)
	orientation := state.CorrectedOrientation()
	state.PositionCorrection = state.PositionCorrection.Add(orientation.Rotate(pos.Mul(gain)))
	state.OrientationCorrection = state.OrientationCorrection.Mul(scaleRotation(rot, gain)).Normalize()
}

// Returns a rotation around the same axis, by scale times the angle.
func scaleRotation(q mgl64.Quat, scale float64) mgl64.Quat {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	sinHalf := q.V.Len()
	if sinHalf < utils.Epsilon {
		return mgl64.QuatIdent()
	}
	angle := 2 * math.Atan2(sinHalf, q.W)
	return mgl64.QuatRotate(angle*scale, q.V.Mul(1/sinHalf))
}
