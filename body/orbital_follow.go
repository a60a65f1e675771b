package body

import (
	"fmt"
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/spline"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// The surface an orbital follow camera moves on.
type OrbitStyle uint8

const (
	OrbitSphere    OrbitStyle = iota // a sphere of the given radius
	OrbitThreeRing                   // a surface through three horizontal rings
)

func (self OrbitStyle) String() string {
	if self == OrbitThreeRing {
		return "three_ring"
	}
	return "sphere"
}

func (self OrbitStyle) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *OrbitStyle) UnmarshalText(text []byte) error {
	switch string(text) {
	case "sphere", "":
		*self = OrbitSphere
	case "three_ring":
		*self = OrbitThreeRing
	default:
		return fmt.Errorf("unknown orbit style %q", text)
	}
	return nil
}

// A horizontal ring of a three ring orbit.
type Orbit struct {
	Height float64 `yaml:"height"`
	Radius float64 `yaml:"radius"`
}

// The three rings and how tightly the surface wraps them.
type Orbits struct {
	Top    Orbit `yaml:"top"`
	Center Orbit `yaml:"center"`
	Bottom Orbit `yaml:"bottom"`

	// 0 gives straight lines between the rings, 1 a rounded surface.
	SplineCurvature float64 `yaml:"spline_curvature"`
}

func DefaultOrbits() Orbits {
	return Orbits{
		Top:             Orbit{Height: 5, Radius: 2},
		Center:          Orbit{Height: 2.25, Radius: 4},
		Bottom:          Orbit{Height: 0.1, Radius: 2.5},
		SplineCurvature: 0.5,
	}
}

// The vertical profile of a three ring orbit: a smooth curve from
// the bottom ring to the top one, rebuilt only when the rings change.
type orbitCache struct {
	orbits Orbits
	valid  bool
	knots  [5]mgl64.Vec4
	ctrl1  [5]mgl64.Vec4
	ctrl2  [5]mgl64.Vec4
}

func (self *orbitCache) update(orbits Orbits) {
	if self.valid && self.orbits == orbits {
		return
	}
	self.orbits, self.valid = orbits, true
	t := utils.Clamp01(orbits.SplineCurvature)
	self.knots[1] = mgl64.Vec4{0, orbits.Bottom.Height, -orbits.Bottom.Radius, -1}
	self.knots[2] = mgl64.Vec4{0, orbits.Center.Height, -orbits.Center.Radius, 0}
	self.knots[3] = mgl64.Vec4{0, orbits.Top.Height, -orbits.Top.Radius, 1}
	below := self.knots[1].Add(self.knots[1].Sub(self.knots[2]).Mul(0.5))
	above := self.knots[3].Add(self.knots[3].Sub(self.knots[2]).Mul(0.5))
	self.knots[0] = below.Mul(1 - t)
	self.knots[4] = above.Mul(1 - t)
	spline.ComputeSmoothControlPoints(self.knots[:], self.ctrl1[:], self.ctrl2[:])
}

// Evaluates the profile at t in [0, 1]: 0 on the bottom ring, 0.5 on
// the center one and 1 on the top one.
func (self *orbitCache) value(t float64) mgl64.Vec3 {
	t = utils.Clamp01(t)
	n := 1
	if t > 0.5 {
		t -= 0.5
		n = 2
	}
	return spline.Bezier3(t*2, self.knots[n], self.ctrl1[n], self.ctrl2[n], self.knots[n+1]).Vec3()
}

// Orbits the follow target on a sphere or a three ring surface,
// driven by horizontal, vertical and radial input axes.
type OrbitalFollow struct {
	Style  OrbitStyle `yaml:"style"`
	Radius float64    `yaml:"radius"` // sphere style only
	Orbits Orbits     `yaml:"orbits"` // three ring style only

	// Offset of the orbit center from the target, in target space.
	TargetOffset mgl64.Vec3       `yaml:"target_offset"`
	Tracking     tracker.Settings `yaml:"tracking"`

	// Degrees around the up axis. 0 is behind the target.
	HorizontalAxis cinemachine.InputAxis `yaml:"horizontal_axis"`
	// Degrees of elevation for the sphere style, 0 to 1 from the
	// bottom to the top ring for the three ring style.
	VerticalAxis cinemachine.InputAxis `yaml:"vertical_axis"`
	// Distance multiplier.
	RadialAxis cinemachine.InputAxis `yaml:"radial_axis"`

	RecenteringTarget cinemachine.RecenteringTarget `yaml:"recentering_target"`

	tracker        tracker.TargetTracker
	cache          orbitCache
	previousOffset mgl64.Vec3
}

var (
	_ cinemachine.TargetWarpHandler = (*OrbitalFollow)(nil)
	_ cinemachine.PositionForcer    = (*OrbitalFollow)(nil)
)

// Creates an orbital follow rig with the default axes for the style.
func NewOrbitalFollow(style OrbitStyle) *OrbitalFollow {
	rig := &OrbitalFollow{
		Style:          style,
		Radius:         10,
		Orbits:         DefaultOrbits(),
		Tracking:       tracker.DefaultSettings(),
		HorizontalAxis: cinemachine.DefaultHorizontalAxis(),
		RadialAxis: cinemachine.InputAxis{
			Value: 1, Center: 1, Range: mgl64.Vec2{1, 1},
			Recentering: cinemachine.RecenteringSettings{Wait: 1, Time: 2},
		},
	}
	if style == OrbitThreeRing {
		rig.VerticalAxis = cinemachine.DefaultUnitAxis()
	} else {
		rig.VerticalAxis = cinemachine.InputAxis{
			Value: 17.5, Center: 17.5, Range: mgl64.Vec2{-10, 45},
			Recentering: cinemachine.RecenteringSettings{Wait: 1, Time: 2},
		}
	}
	return rig
}

func (self *OrbitalFollow) Kind() cinemachine.ComponentKind { return cinemachine.KindOrbitalFollow }
func (self *OrbitalFollow) Stage() cinemachine.Stage        { return cinemachine.StageBody }

func (self *OrbitalFollow) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return vcam.Follow() != nil
}

func (self *OrbitalFollow) MaxDampTime() float64 { return self.Tracking.MaxDampTime() }

func (self *OrbitalFollow) validate() {
	self.Tracking.Validate()
	self.Radius = math.Max(0, self.Radius)
	self.HorizontalAxis.Validate()
	self.VerticalAxis.Validate()
	self.RadialAxis.Validate()
}

// Returns the camera offset from the orbit center for the current
// axis values, in the tracker's reference frame.
func (self *OrbitalFollow) CameraOffset() mgl64.Vec3 {
	return self.offsetFor(self.HorizontalAxis.Value, self.VerticalAxis.Value, self.RadialAxis.Value)
}

func (self *OrbitalFollow) offsetFor(horizontal, vertical, radial float64) mgl64.Vec3 {
	if self.Style == OrbitSphere {
		rot := utils.Euler(mgl64.Vec3{vertical, horizontal, 0})
		return rot.Rotate(mgl64.Vec3{0, 0, -self.Radius * radial})
	}
	self.cache.update(self.Orbits)
	t := utils.InverseLerp(self.VerticalAxis.Range[0], self.VerticalAxis.Range[1], vertical)
	return utils.AngleAxis(horizontal, utils.Up).Rotate(self.cache.value(t).Mul(radial))
}

func (self *OrbitalFollow) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.validate()
	self.tracker.InitStateInfo(vcam, deltaTime, self.Tracking.BindingMode, mgl64.Vec3{}, state.ReferenceUp)
	self.updateAxes(vcam, deltaTime, state.ReferenceUp)

	follow := vcam.Follow()
	offset := self.CameraOffset()
	if self.Tracking.BindingMode == tracker.SimpleFollowWithWorldUp {
		self.HorizontalAxis.Value = 0
		self.HorizontalAxis.TrackValueChange(vcam.Now())
	}
	pos, orientation := self.tracker.TrackTarget(vcam, deltaTime, state.ReferenceUp, offset, self.Tracking)

	offset = orientation.Rotate(offset)
	state.ReferenceUp = orientation.Rotate(utils.Up)
	pivot := pos.Add(orientation.Rotate(self.TargetOffset))
	pos = pivot.Add(self.tracker.GetOffsetForMinimumTargetDistance(
		vcam, pivot, offset, state.RawOrientation.Rotate(utils.Forward), state.ReferenceUp, follow.Position()))
	state.RawPosition = pos.Add(offset)

	// rotation the camera gained from orbiting, measured around the
	// look at point when there's one
	if state.HasLookAt {
		targetPivot := follow.Position().Add(follow.Rotation().Rotate(self.TargetOffset))
		lookAtOffset := orientation.Rotate(state.ReferenceLookAt.Sub(targetPivot))
		offset = state.RawPosition.Sub(pos.Add(lookAtOffset))
	}
	if deltaTime >= 0 && vcam.PreviousStateIsValid &&
		self.previousOffset.LenSqr() > utils.Epsilon && offset.LenSqr() > utils.Epsilon {
		state.PositionDampingBypass = utils.EulerAngles(
			utils.SafeFromToRotation(self.previousOffset, offset, state.ReferenceUp))
	}
	self.previousOffset = offset
}

// Reads the axes and recenters them. Cuts and non-live frames wait
// before recentering again.
func (self *OrbitalFollow) updateAxes(vcam *cinemachine.VirtualCamera, deltaTime float64, up mgl64.Vec3) {
	now := vcam.Now()
	axes := [...]*cinemachine.InputAxis{&self.HorizontalAxis, &self.VerticalAxis, &self.RadialAxis}
	reset := deltaTime < 0 || !vcam.PreviousStateIsValid || !vcam.IsLive()
	for _, axis := range axes {
		axis.TrackValueChange(now)
		if reset {
			axis.CancelRecentering(now)
		}
	}

	referenceOrientation := self.tracker.GetReferenceOrientation(vcam, self.Tracking.BindingMode, up)
	self.HorizontalAxis.UpdateRecenteringTo(deltaTime, now,
		self.RecenteringTarget.Heading(vcam, referenceOrientation, self.HorizontalAxis.Center))
	self.VerticalAxis.UpdateRecentering(deltaTime, now)
	self.RadialAxis.UpdateRecentering(deltaTime, now)
}

func (self *OrbitalFollow) OnTargetObjectWarped(vcam *cinemachine.VirtualCamera, target cinemachine.Target, positionDelta mgl64.Vec3) {
	if target == vcam.Follow() {
		self.tracker.OnTargetObjectWarped(positionDelta)
	}
}

// Sets the axes to the values closest to the given pose, then makes
// the tracker continue from there.
func (self *OrbitalFollow) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	follow := vcam.Follow()
	up := vcam.State().ReferenceUp
	orientation := self.tracker.GetReferenceOrientation(vcam, self.Tracking.BindingMode, up)
	if follow != nil {
		pivot := follow.Position().Add(orientation.Rotate(self.TargetOffset))
		local := orientation.Inverse().Rotate(pos.Sub(pivot))
		if !utils.AlmostZero(local) {
			self.setAxesFromOffset(local)
		}
	}
	trackedPos := pos.Sub(orientation.Rotate(self.TargetOffset))
	self.tracker.OnForceCameraPosition(vcam, self.Tracking.BindingMode, self.CameraOffset(), trackedPos, rot, up)
	self.previousOffset = mgl64.Vec3{}
}

func (self *OrbitalFollow) setAxesFromOffset(local mgl64.Vec3) {
	flat := mgl64.Vec3{local[0], 0, local[2]}
	if !utils.AlmostZero(flat) {
		self.HorizontalAxis.Value = self.HorizontalAxis.ClampValue(utils.SignedAngle(utils.Back, flat, utils.Up))
	}
	if self.Style == OrbitSphere {
		self.VerticalAxis.Value = self.VerticalAxis.ClampValue(
			mgl64.RadToDeg(math.Atan2(local[1], flat.Len())))
		if self.Radius > utils.Epsilon {
			self.RadialAxis.Value = self.RadialAxis.ClampValue(local.Len() / self.Radius)
		}
		return
	}

	// the profile is monotonic enough for a sampled search
	self.cache.update(self.Orbits)
	elevation := math.Atan2(local[1], flat.Len())
	bestT, bestError := 0.5, math.MaxFloat64
	const samples = 64
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		p := self.cache.value(t)
		candidate := math.Atan2(p[1], math.Abs(p[2]))
		if e := math.Abs(candidate - elevation); e < bestError {
			bestT, bestError = t, e
		}
	}
	axisRange := self.VerticalAxis.Range
	self.VerticalAxis.Value = self.VerticalAxis.ClampValue(utils.Lerp(axisRange[0], axisRange[1], bestT))
	if length := self.cache.value(bestT).Len(); length > utils.Epsilon {
		self.RadialAxis.Value = self.RadialAxis.ClampValue(local.Len() / length)
	}
}
