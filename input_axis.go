package cinemachine

import (
	"fmt"
	"math"

	"github.com/edwinsyarief/cinemachine/damper"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Controls how an [InputAxis] drifts back to its center after the
// user stops moving it.
type RecenteringSettings struct {
	Enabled bool    `yaml:"enabled"`
	Wait    float64 `yaml:"wait"` // seconds without input before recentering starts
	Time    float64 `yaml:"time"` // seconds recentering takes
}

// What a heading axis recenters to.
type RecenteringTarget uint8

const (
	RecenterAxisCenter          RecenteringTarget = iota // the axis center value
	RecenterFollowTargetForward                          // behind the follow target
	RecenterLookAtTargetForward                          // behind the look at target
)

func (self RecenteringTarget) String() string {
	switch self {
	case RecenterFollowTargetForward:
		return "follow_target_forward"
	case RecenterLookAtTargetForward:
		return "look_at_target_forward"
	default:
		return "axis_center"
	}
}

func (self RecenteringTarget) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *RecenteringTarget) UnmarshalText(text []byte) error {
	switch string(text) {
	case "axis_center", "":
		*self = RecenterAxisCenter
	case "follow_target_forward":
		*self = RecenterFollowTargetForward
	case "look_at_target_forward":
		*self = RecenterLookAtTargetForward
	default:
		return fmt.Errorf("unknown recentering target %q", text)
	}
	return nil
}

// Returns the heading, relative to the forward of referenceOrientation
// and around its up, that puts the camera behind the recentering
// target of vcam. Returns fallback for RecenterAxisCenter, when the
// target is missing, or when it faces along the up axis.
func (self RecenteringTarget) Heading(vcam *VirtualCamera, referenceOrientation mgl64.Quat, fallback float64) float64 {
	var target Target
	switch self {
	case RecenterFollowTargetForward:
		target = vcam.Follow()
	case RecenterLookAtTargetForward:
		target = vcam.LookAt()
	}
	if target == nil {
		return fallback
	}
	up := referenceOrientation.Rotate(utils.Up)
	fwd := utils.ProjectOntoPlane(target.Rotation().Rotate(utils.Forward), up)
	if utils.AlmostZero(fwd) {
		return fallback
	}
	return -utils.SignedAngle(fwd, referenceOrientation.Rotate(utils.Forward), up)
}

// A bounded value driven by user input. Rigs read the value and
// detect changes through [InputAxis.TrackValueChange](), while the
// host writes it, typically through an [AxisDriver].
type InputAxis struct {
	Value       float64             `yaml:"value"`
	Center      float64             `yaml:"center"`
	Range       mgl64.Vec2          `yaml:"range"`
	Wrap        bool                `yaml:"wrap"`
	Recentering RecenteringSettings `yaml:"recentering"`

	lastValue           float64
	lastValueChangeTime float64
	recenteringVelocity float64
	forceRecenter       bool
	tracking            bool
}

// A -180..180 wrapping axis, as used for headings.
func DefaultHorizontalAxis() InputAxis {
	return InputAxis{Range: mgl64.Vec2{-180, 180}, Wrap: true,
		Recentering: RecenteringSettings{Wait: 1, Time: 2}}
}

// A 0..1 axis centered at 0.5 with no wrap.
func DefaultUnitAxis() InputAxis {
	return InputAxis{Value: 0.5, Center: 0.5, Range: mgl64.Vec2{0, 1},
		Recentering: RecenteringSettings{Wait: 1, Time: 2}}
}

// Makes the range well formed and keeps value and center within it.
func (self *InputAxis) Validate() {
	if self.Range[1] < self.Range[0] {
		self.Range[0], self.Range[1] = self.Range[1], self.Range[0]
	}
	self.Recentering.Wait = math.Max(0, self.Recentering.Wait)
	self.Recentering.Time = math.Max(0, self.Recentering.Time)
	self.Center = self.ClampValue(self.Center)
	self.Value = self.ClampValue(self.Value)
}

// Brings the value into the axis range, wrapping if the axis wraps.
func (self *InputAxis) ClampValue(value float64) float64 {
	span := self.Range[1] - self.Range[0]
	if self.Wrap && span > utils.Epsilon {
		return self.Range[0] + utils.Repeat(value-self.Range[0], span)
	}
	return utils.Clamp(value, self.Range[0], self.Range[1])
}

// Returns the value normalized to [0, 1] within the range.
func (self *InputAxis) NormalizedValue() float64 {
	return utils.InverseLerp(self.Range[0], self.Range[1], self.ClampValue(self.Value))
}

// Puts the value back at the center immediately.
func (self *InputAxis) Reset(now float64) {
	self.Value = self.ClampValue(self.Center)
	self.lastValue = self.Value
	self.CancelRecentering(now)
}

// Restarts the recentering wait.
func (self *InputAxis) CancelRecentering(now float64) {
	self.lastValueChangeTime = now
	self.recenteringVelocity = 0
	self.forceRecenter = false
}

// Starts recentering on the next update, regardless of the settings.
func (self *InputAxis) TriggerRecentering() {
	self.forceRecenter = true
}

// Reports whether the value changed since the last call. A change
// cancels any recentering in progress.
func (self *InputAxis) TrackValueChange(now float64) bool {
	value := self.ClampValue(self.Value)
	if !self.tracking {
		self.tracking = true
		self.lastValue = value
		self.lastValueChangeTime = now
		return false
	}
	if math.Abs(value-self.lastValue) > utils.Epsilon {
		self.lastValue = value
		self.CancelRecentering(now)
		return true
	}
	return false
}

// Drifts the value back toward the center. See [InputAxis.UpdateRecenteringTo]().
func (self *InputAxis) UpdateRecentering(deltaTime, now float64) {
	self.UpdateRecenteringTo(deltaTime, now, self.Center)
}

// Drifts the value toward the given target once the recentering wait
// has elapsed, taking the short way around on wrapping axes. A negative
// deltaTime snaps to the target if recentering is enabled.
func (self *InputAxis) UpdateRecenteringTo(deltaTime, now, target float64) {
	target = self.ClampValue(target)
	if deltaTime < 0 {
		if self.Recentering.Enabled {
			self.Value = target
			self.lastValue = target
		}
		self.CancelRecentering(now)
		return
	}
	if !self.Recentering.Enabled && !self.forceRecenter {
		return
	}

	value := self.ClampValue(self.Value)
	if math.Abs(target-value) < utils.Epsilon {
		self.forceRecenter = false
		return
	}
	if !self.forceRecenter && now < self.lastValueChangeTime+self.Recentering.Wait {
		return
	}

	span := self.Range[1] - self.Range[0]
	if self.Wrap && math.Abs(target-value) > span*0.5 {
		value += utils.Sign(target-value) * span
	}
	if self.Recentering.Time < 0.001 {
		value = target
	} else {
		value = damper.SmoothDamp(value, target, &self.recenteringVelocity,
			self.Recentering.Time*0.5, 9999, deltaTime)
	}
	self.Value = self.ClampValue(value)
	self.lastValue = self.Value
	if math.Abs(self.Value-target) < utils.Epsilon {
		self.forceRecenter = false
	}
}

// --- driver ---

// Integrates a raw input value (like a stick deflection in [-1, 1])
// into an axis, with acceleration and deceleration.
type AxisDriver struct {
	Gain      float64 `yaml:"gain"` // axis units per second at full input
	AccelTime float64 `yaml:"accel_time"`
	DecelTime float64 `yaml:"decel_time"`

	currentSpeed float64
}

// Returns a driver with small accel/decel times and the given gain.
func NewAxisDriver(gain float64) AxisDriver {
	return AxisDriver{Gain: gain, AccelTime: 0.2, DecelTime: 0.2}
}

func (self *AxisDriver) Reset() { self.currentSpeed = 0 }

// Feeds this frame's input into the axis.
func (self *AxisDriver) ProcessInput(axis *InputAxis, input, deltaTime float64) {
	if deltaTime < 0 {
		self.currentSpeed = 0
		return
	}
	desired := input * self.Gain
	dampTime := self.AccelTime
	if math.Abs(desired) < math.Abs(self.currentSpeed) {
		dampTime = self.DecelTime
	}
	self.currentSpeed += damper.Damp(desired-self.currentSpeed, dampTime, deltaTime)

	// decelerate near the edges of non-wrapping axes
	if !axis.Wrap && self.DecelTime > utils.Epsilon && math.Abs(self.currentSpeed) > utils.Epsilon {
		distance := axis.Range[1] - axis.Value
		if self.currentSpeed < 0 {
			distance = axis.Value - axis.Range[0]
		}
		maxSpeed := 0.1 + 4*math.Max(0, distance)/self.DecelTime
		if math.Abs(self.currentSpeed) > maxSpeed {
			self.currentSpeed = maxSpeed * utils.Sign(self.currentSpeed)
		}
	}
	axis.Value = axis.ClampValue(axis.Value + self.currentSpeed*deltaTime)
}
