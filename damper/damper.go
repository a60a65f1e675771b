// Package damper provides the time-based smoothing primitives used by
// every rig in the pipeline.
//
// [Damp]() is the workhorse: given an amount still to be travelled, it
// returns the portion that should be applied during this frame. The
// decay is exponential, so the result is frame-rate independent and
// can never overshoot, even for very large frame times.
package damper

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Decay rate per damp time unit. After dampTime seconds, 1 - e^-2
// (about 86%) of the initial amount has been applied.
const decayRate = 2.0

// Returns the portion of initial that should be applied after
// deltaTime seconds, given the damp time. A damp time of zero (or
// below) means no damping, so initial is returned unchanged.
func Damp(initial, dampTime, deltaTime float64) float64 {
	if dampTime < utils.Epsilon || math.Abs(initial) < utils.Epsilon {
		return initial
	}
	if deltaTime < utils.Epsilon {
		return 0
	}
	return initial * (1 - math.Exp(-decayRate*deltaTime/dampTime))
}

// Same as [Damp](), independently for each axis.
func DampVec3(initial, dampTime mgl64.Vec3, deltaTime float64) mgl64.Vec3 {
	for i := range initial {
		initial[i] = Damp(initial[i], dampTime[i], deltaTime)
	}
	return initial
}

// Same as [DampVec3]() with one damp time for all the axes.
func DampVec3Uniform(initial mgl64.Vec3, dampTime, deltaTime float64) mgl64.Vec3 {
	return DampVec3(initial, mgl64.Vec3{dampTime, dampTime, dampTime}, deltaTime)
}

// --- smooth damp ---

// Gradually moves current toward target using a critically damped
// spring. The velocity is read and updated through the pointer, so
// callers must keep it between frames. A negative or infinite
// maxSpeed means no speed limit.
//
// Based on the approximation from Game Programming Gems 4, chapter 1.10.
func SmoothDamp(current, target float64, velocity *float64, smoothTime, maxSpeed, deltaTime float64) float64 {
	if deltaTime <= 0 {
		return current
	}
	smoothTime = math.Max(utils.Epsilon, smoothTime)
	omega := 2.0 / smoothTime
	x := omega * deltaTime
	exp := 1.0 / (1.0 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	originalTarget := target
	if maxSpeed >= 0 && !math.IsInf(maxSpeed, 1) {
		maxChange := maxSpeed * smoothTime
		change = utils.Clamp(change, -maxChange, maxChange)
	}
	target = current - change

	temp := (*velocity + omega*change) * deltaTime
	*velocity = (*velocity - omega*temp) * exp
	output := target + (change+temp)*exp

	// prevent overshooting
	if (originalTarget-current > 0) == (output > originalTarget) {
		output = originalTarget
		*velocity = (output - originalTarget) / deltaTime
	}
	return output
}

// Vector version of [SmoothDamp](). The speed limit applies to the
// vector length.
func SmoothDampVec3(current, target mgl64.Vec3, velocity *mgl64.Vec3, smoothTime, maxSpeed, deltaTime float64) mgl64.Vec3 {
	if deltaTime <= 0 {
		return current
	}
	smoothTime = math.Max(utils.Epsilon, smoothTime)
	omega := 2.0 / smoothTime
	x := omega * deltaTime
	exp := 1.0 / (1.0 + x + 0.48*x*x + 0.235*x*x*x)

	change := current.Sub(target)
	originalTarget := target
	if maxSpeed >= 0 && !math.IsInf(maxSpeed, 1) {
		maxChange := maxSpeed * smoothTime
		if length := change.Len(); length > maxChange && length > 0 {
			change = change.Mul(maxChange / length)
		}
	}
	target = current.Sub(change)

	temp := velocity.Add(change.Mul(omega)).Mul(deltaTime)
	*velocity = velocity.Sub(temp.Mul(omega)).Mul(exp)
	output := target.Add(change.Add(temp).Mul(exp))

	// prevent overshooting
	if originalTarget.Sub(current).Dot(output.Sub(originalTarget)) > 0 {
		output = originalTarget
		*velocity = mgl64.Vec3{}
	}
	return output
}
