// This package defines the [SignalSource] interface that the noise
// rigs play back, and provides a few implementations.
//
// Noise rigs run in the Noise stage, after the camera has been placed
// and aimed. They never touch the raw pose: they add to the position
// and orientation corrections, so the shake is layered on top of
// whatever the Body and Aim rigs decided.
//
// All provided implementations respect a few properties:
//   - Frame-rate independent: signals are sampled by time in seconds,
//     so results are similar regardless of the update rate.
//   - Deterministic: given the same seed and the same sequence of
//     time steps, a rig produces the same offsets.
package shaker

import "github.com/go-gl/mathgl/mgl64"

// The interface for camera shake signals.
//
// GetSignal() returns a local space position offset and a rotation
// for the given time since the signal started. A SignalDuration() of
// zero or less means the signal never ends.
type SignalSource interface {
	SignalDuration() float64
	GetSignal(timeSinceStart float64) (mgl64.Vec3, mgl64.Quat)
}
