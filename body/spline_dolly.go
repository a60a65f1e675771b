package body

import (
	"fmt"
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/damper"
	"github.com/edwinsyarief/cinemachine/spline"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// How the dolly rig sets the camera orientation and up.
type CameraUpMode uint8

const (
	UpDefault            CameraUpMode = iota // leave the orientation alone
	UpSpline                                 // the spline orientation, with roll
	UpSplineNoRoll                           // the spline forward with the world up
	UpFollowTarget                           // the follow target rotation
	UpFollowTargetNoRoll                     // the follow target forward with the world up
	cameraUpModeCount
)

var cameraUpModeNames = [cameraUpModeCount]string{
	UpDefault:            "default",
	UpSpline:             "spline",
	UpSplineNoRoll:       "spline_no_roll",
	UpFollowTarget:       "follow_target",
	UpFollowTargetNoRoll: "follow_target_no_roll",
}

func (self CameraUpMode) String() string {
	if self >= cameraUpModeCount {
		return "unknown"
	}
	return cameraUpModeNames[self]
}

func (self CameraUpMode) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *CameraUpMode) UnmarshalText(text []byte) error {
	for mode, name := range cameraUpModeNames {
		if name == string(text) {
			*self = CameraUpMode(mode)
			return nil
		}
	}
	return fmt.Errorf("unknown camera up mode %q", text)
}

type DollyDamping struct {
	Enabled bool `yaml:"enabled"`

	// Seconds to settle sideways (x), along the spline up (y) and
	// along the spline (z).
	Position mgl64.Vec3 `yaml:"position"`
	Angular  float64    `yaml:"angular"`
}

// Moves the camera position along the spline to the point nearest to
// the follow target.
type AutoDolly struct {
	Enabled bool `yaml:"enabled"`

	// Added to the found position, in the rig's position units.
	PositionOffset float64 `yaml:"position_offset"`

	// Segments searched on each side of the current position. 0 or
	// less searches the whole spline.
	SearchRadius int `yaml:"search_radius"`

	// Subdivisions per segment. Higher is more precise and slower.
	SearchResolution int `yaml:"search_resolution"`
}

// Keeps the camera on a spline, at a fixed position or tracking the
// follow target.
type SplineDolly struct {
	Spline spline.Spline `yaml:"-"`

	// Camera position on the spline, in PositionUnits.
	Position      float64      `yaml:"position"`
	PositionUnits spline.Units `yaml:"position_units"`

	// Offset from the spline in spline-local space.
	SplineOffset mgl64.Vec3   `yaml:"spline_offset"`
	CameraUp     CameraUpMode `yaml:"camera_up"`
	Damping      DollyDamping `yaml:"damping"`
	AutoDolly    AutoDolly    `yaml:"auto_dolly"`

	previousSplinePosition float64
	previousPosition       mgl64.Vec3
	previousRotation       mgl64.Quat
}

func NewSplineDolly(path spline.Spline) *SplineDolly {
	return &SplineDolly{
		Spline:    path,
		Damping:   DollyDamping{Position: mgl64.Vec3{1, 1, 1}, Angular: 1},
		AutoDolly: AutoDolly{SearchRadius: 2, SearchResolution: 5},
	}
}

func (self *SplineDolly) Kind() cinemachine.ComponentKind { return cinemachine.KindSplineDolly }
func (self *SplineDolly) Stage() cinemachine.Stage        { return cinemachine.StageBody }

func (self *SplineDolly) IsValid(vcam *cinemachine.VirtualCamera) bool {
	return self.Spline != nil
}

func (self *SplineDolly) MaxDampTime() float64 {
	if !self.Damping.Enabled {
		return 0
	}
	d := self.Damping
	return math.Max(utils.MaxComponent(d.Position), d.Angular)
}

func (self *SplineDolly) validate() {
	self.Damping.Position = mgl64.Vec3{
		math.Max(0, self.Damping.Position[0]),
		math.Max(0, self.Damping.Position[1]),
		math.Max(0, self.Damping.Position[2]),
	}
	self.Damping.Angular = math.Max(0, self.Damping.Angular)
	self.AutoDolly.SearchResolution = max(1, self.AutoDolly.SearchResolution)
}

// Returns the spline position span in the rig's units.
func (self *SplineDolly) maxUnit() float64 {
	switch self.PositionUnits {
	case spline.UnitDistance:
		return self.Spline.Length()
	case spline.UnitNormalized:
		return 1
	default:
		minKnot, maxKnot := self.Spline.KnotSpan()
		return maxKnot - minKnot
	}
}

func (self *SplineDolly) MutateCameraState(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, deltaTime float64) {
	self.validate()
	damped := self.Damping.Enabled && deltaTime >= 0 && vcam.PreviousStateIsValid
	if deltaTime < 0 || !vcam.PreviousStateIsValid {
		self.previousSplinePosition = self.Position
		self.previousPosition = state.RawPosition
		self.previousRotation = state.RawOrientation
	}

	if self.AutoDolly.Enabled && vcam.Follow() != nil {
		self.Position = self.autoDollyPosition(vcam.Follow().Position(), deltaTime)
	}

	// along the spline
	splinePos := self.Spline.StandardizePosition(self.Position, self.PositionUnits)
	if damped {
		previous := self.previousSplinePosition
		delta := splinePos - previous
		if self.Spline.Closed() {
			span := self.maxUnit()
			if math.Abs(delta) > span/2 {
				delta -= utils.Sign(delta) * span
			}
		}
		splinePos = previous + damper.Damp(delta, self.Damping.Position[2], deltaTime)
		splinePos = self.Spline.StandardizePosition(splinePos, self.PositionUnits)
	}
	self.previousSplinePosition = splinePos

	pos, tangent, splineUp := self.Spline.Evaluate(splinePos, self.PositionUnits)
	splineOrientation := utils.LookRotation(tangent, splineUp)
	right := splineOrientation.Rotate(utils.Right)
	up := splineOrientation.Rotate(utils.Up)
	fwd := splineOrientation.Rotate(utils.Forward)
	pos = pos.Add(right.Mul(self.SplineOffset[0])).
		Add(up.Mul(self.SplineOffset[1])).
		Add(fwd.Mul(self.SplineOffset[2]))

	// across the spline
	if damped {
		delta := self.previousPosition.Sub(pos)
		vertical := up.Mul(delta.Dot(up))
		sideways := delta.Sub(vertical)
		sideways = damper.DampVec3Uniform(sideways, self.Damping.Position[0], deltaTime)
		vertical = damper.DampVec3Uniform(vertical, self.Damping.Position[1], deltaTime)
		pos = self.previousPosition.Sub(sideways.Add(vertical))
	}
	state.RawPosition = pos
	self.previousPosition = pos

	orientation := self.cameraRotation(vcam, state, splineOrientation)
	if damped {
		t := vcam.DetachedFollowTargetDamp(1, self.Damping.Angular, deltaTime)
		orientation = utils.Slerp(self.previousRotation, orientation, t)
	}
	self.previousRotation = orientation
	state.RawOrientation = orientation
	if self.CameraUp != UpDefault {
		state.ReferenceUp = orientation.Rotate(utils.Up)
	}
}

// Returns where the camera is on the spline, damping included, in
// the rig's position units.
func (self *SplineDolly) SplinePosition() float64 { return self.previousSplinePosition }

func (self *SplineDolly) autoDollyPosition(targetPos mgl64.Vec3, deltaTime float64) float64 {
	previousKnot := self.Spline.ConvertUnit(self.previousSplinePosition, self.PositionUnits, spline.UnitKnot)
	radius := self.AutoDolly.SearchRadius
	if deltaTime < 0 || radius <= 0 {
		radius = -1
	}
	knotPos := self.Spline.NearestPoint(targetPos, math.Floor(previousKnot), radius, self.AutoDolly.SearchResolution)
	return self.Spline.ConvertUnit(knotPos, spline.UnitKnot, self.PositionUnits) + self.AutoDolly.PositionOffset
}

func (self *SplineDolly) cameraRotation(vcam *cinemachine.VirtualCamera, state *cinemachine.CameraState, splineOrientation mgl64.Quat) mgl64.Quat {
	up := state.ReferenceUp
	follow := vcam.Follow()
	switch self.CameraUp {
	case UpSpline:
		return splineOrientation
	case UpSplineNoRoll:
		return utils.LookRotation(splineOrientation.Rotate(utils.Forward), up)
	case UpFollowTarget:
		if follow != nil {
			return follow.Rotation()
		}
	case UpFollowTargetNoRoll:
		if follow != nil {
			return utils.LookRotation(follow.Rotation().Rotate(utils.Forward), up)
		}
	}
	return utils.LookRotation(state.RawOrientation.Rotate(utils.Forward), up)
}

func (self *SplineDolly) ForceCameraPosition(vcam *cinemachine.VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat) {
	self.previousPosition = pos
	self.previousRotation = rot
	if self.Spline != nil {
		knotPos := self.Spline.NearestPoint(pos, 0, -1, max(1, self.AutoDolly.SearchResolution))
		self.Position = self.Spline.ConvertUnit(knotPos, spline.UnitKnot, self.PositionUnits)
		self.previousSplinePosition = self.Position
	}
}

var _ cinemachine.PositionForcer = (*SplineDolly)(nil)
