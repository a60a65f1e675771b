package body

import (
	"testing"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/collision"
	"github.com/edwinsyarief/cinemachine/group"
	"github.com/edwinsyarief/cinemachine/spline"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- framing transposer ---

func TestFramingTransposerCentersOnActivate(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{1, 2, 3})
	rig := NewFramingTransposer()
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{1, 2, -7}, vcam.Position(), 1e-9)
	assert.Equal(t, target.Position(), rig.TrackedPoint())
}

func TestFramingTransposerDeadZoneHoldsTheCamera(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewFramingTransposer()
	rig.Composition.DeadZoneWidth = 0.5
	rig.Composition.DeadZoneHeight = 0.5
	vcam := newCamera(rig, target)
	step(vcam, 1)
	before := vcam.Position()

	// well inside the dead zone at 10 units away
	target.SetPosition(mgl64.Vec3{0.5, 0, 0})
	step(vcam, 3)
	assertVecInDelta(t, before, vcam.Position(), 1e-9)

	target.SetPosition(mgl64.Vec3{30, 0, 0})
	step(vcam, 1)
	assert.Greater(t, vcam.Position()[0], before[0])
}

func newPair() (*group.Group, *cinemachine.TargetTransform, *cinemachine.TargetTransform) {
	a := cinemachine.NewTargetTransform(mgl64.Vec3{-3, 0, 20})
	b := cinemachine.NewTargetTransform(mgl64.Vec3{3, 0, 20})
	return group.New(group.Member{Target: a, Weight: 1, Radius: 1}, group.Member{Target: b, Weight: 1, Radius: 1}), a, b
}

func TestFramingTransposerGroupZoom(t *testing.T) {
	g, _, _ := newPair()
	rig := NewFramingTransposer()
	vcam := newCamera(rig, g)
	step(vcam, 5)
	assert.Less(t, vcam.State().Lens.FieldOfView, cinemachine.DefaultLens().FieldOfView)
	assert.Greater(t, vcam.State().Lens.FieldOfView, rig.MinimumFOV-1e-9)
}

func TestFramingTransposerNoGroupFramingKeepsTheLens(t *testing.T) {
	g, _, _ := newPair()
	rig := NewFramingTransposer()
	rig.GroupFramingMode = group.FramingNone
	rig.AdjustmentMode = group.DollyThenZoom
	vcam := newCamera(rig, g)
	step(vcam, 5)
	assert.Equal(t, cinemachine.DefaultLens().FieldOfView, vcam.State().Lens.FieldOfView)
	assertVecInDelta(t, g.Position().Sub(mgl64.Vec3{0, 0, rig.CameraDistance}), vcam.Position(), 1e-6)
}

func TestFramingTransposerWarp(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewFramingTransposer()
	vcam := newCamera(rig, target)
	step(vcam, 2)
	before := vcam.Position()

	delta := mgl64.Vec3{0, 40, 0}
	target.Translate(delta)
	vcam.OnTargetObjectWarped(target, delta)
	step(vcam, 1)
	assertVecInDelta(t, before.Add(delta), vcam.Position(), 1e-9)
}

// --- orbital transposer ---

func TestOrbitalTransposerTargetForwardHeading(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	target.SetRotation(utils.AngleAxis(90, utils.Up))
	rig := NewOrbitalTransposer()
	rig.Tracking.BindingMode = tracker.WorldSpace
	vcam := newCamera(rig, target)
	assert.InDelta(t, 90, rig.TargetHeading(vcam, 0, mgl64.QuatIdent()), 1e-9)

	rig.Heading.Definition = HeadingWorldForward
	assert.Zero(t, rig.TargetHeading(vcam, 33, mgl64.QuatIdent()))
}

func TestOrbitalTransposerUsesInjectedHeading(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewOrbitalTransposer(WithHeadingUpdater(
		func(*OrbitalTransposer, *cinemachine.VirtualCamera, float64, mgl64.Vec3) float64 { return 90 }))
	rig.Tracking.BindingMode = tracker.WorldSpace
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{-10, 0, 0}, vcam.Position(), 1e-9)
	assert.Equal(t, 90.0, rig.LastHeading())
}

func TestOrbitalTransposerVelocityHeading(t *testing.T) {
	target := cinemachine.NewRigidTarget(mgl64.Vec3{}, mgl64.Vec3{-1, 0, 0})
	rig := NewOrbitalTransposer()
	rig.Tracking.BindingMode = tracker.WorldSpace
	rig.Heading.Definition = HeadingVelocity
	rig.Heading.VelocityFilterStrength = 0
	vcam := newCamera(rig, target)
	assert.InDelta(t, -90, rig.TargetHeading(vcam, 0, mgl64.QuatIdent()), 1e-9)
}

// --- orbital follow ---

func TestOrbitalFollowSphere(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewOrbitalFollow(OrbitSphere)
	rig.Tracking.BindingMode = tracker.WorldSpace
	rig.VerticalAxis.Value = 30
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{0, 5, -8.660254}, vcam.Position(), 1e-5)

	rig.RadialAxis.Range = mgl64.Vec2{0.5, 2}
	rig.RadialAxis.Value = 2
	rig.VerticalAxis.Value = 0
	vcam.UpdateCameraState(utils.Up, -1, true)
	assertVecInDelta(t, mgl64.Vec3{0, 0, -20}, vcam.Position(), 1e-9)
}

func TestOrbitalFollowThreeRing(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewOrbitalFollow(OrbitThreeRing)
	rig.Tracking.BindingMode = tracker.WorldSpace
	vcam := newCamera(rig, target)

	rig.VerticalAxis.Value = 1
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{0, 5, -2}, vcam.Position(), 1e-9)

	rig.VerticalAxis.Value = 0
	vcam.UpdateCameraState(utils.Up, -1, true)
	assertVecInDelta(t, mgl64.Vec3{0, 0.1, -2.5}, vcam.Position(), 1e-9)

	rig.VerticalAxis.Value = 0.5
	vcam.UpdateCameraState(utils.Up, -1, true)
	assertVecInDelta(t, mgl64.Vec3{0, 2.25, -4}, vcam.Position(), 1e-9)
}

func TestOrbitalFollowForceCameraPosition(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewOrbitalFollow(OrbitSphere)
	rig.Tracking.BindingMode = tracker.WorldSpace
	rig.VerticalAxis.Value = 0
	vcam := newCamera(rig, target)
	step(vcam, 1)

	vcam.ForceCameraPosition(mgl64.Vec3{10, 0, 0}, utils.LookRotation(utils.Left, utils.Up))
	assert.InDelta(t, -90, rig.HorizontalAxis.Value, 1e-9)
	assert.InDelta(t, 0, rig.VerticalAxis.Value, 1e-9)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{10, 0, 0}, vcam.Position(), 1e-6)
}

func TestOrbitalFollowRecentersBehindTheTarget(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	target.SetRotation(utils.AngleAxis(90, utils.Up))
	rig := NewOrbitalFollow(OrbitSphere)
	rig.Tracking.BindingMode = tracker.WorldSpace
	rig.RecenteringTarget = cinemachine.RecenterFollowTargetForward
	rig.HorizontalAxis.Recentering = cinemachine.RecenteringSettings{Enabled: true, Wait: 0, Time: 0.5}
	vcam := newCamera(rig, target)
	step(vcam, 40)
	assert.InDelta(t, 90, rig.HorizontalAxis.Value, 0.5)
}

// --- spline dolly ---

func straightPath() *spline.Path {
	return spline.NewPath([]spline.Knot{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{0, 0, 10}},
		{Position: mgl64.Vec3{0, 0, 20}},
	}, false, spline.DefaultResolution)
}

func TestSplineDollyFixedPosition(t *testing.T) {
	rig := NewSplineDolly(straightPath())
	rig.Position = 1
	rig.SplineOffset = mgl64.Vec3{1, 0, 0}
	rig.CameraUp = UpSpline
	vcam := newCamera(rig, nil)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{1, 0, 10}, vcam.Position(), 1e-9)
	assert.InDelta(t, 0, utils.QuatAngle(mgl64.QuatIdent(), vcam.Rotation()), 1e-6)
}

func TestSplineDollyAutoDolly(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{3, 0, 12})
	rig := NewSplineDolly(straightPath())
	rig.AutoDolly.Enabled = true
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assert.InDelta(t, 1.2, rig.Position, 1e-3)
	assertVecInDelta(t, mgl64.Vec3{0, 0, 12}, vcam.Position(), 1e-2)

	rig.PositionUnits = spline.UnitDistance
	rig.AutoDolly.PositionOffset = 2
	vcam.UpdateCameraState(utils.Up, -1, true)
	assert.InDelta(t, 14, rig.Position, 1e-2)
}

func TestSplineDollyDampsAcrossTheSeam(t *testing.T) {
	loop := spline.NewPath([]spline.Knot{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{10, 0, 0}},
		{Position: mgl64.Vec3{10, 0, 10}},
		{Position: mgl64.Vec3{0, 0, 10}},
	}, true, spline.DefaultResolution)
	rig := NewSplineDolly(loop)
	rig.PositionUnits = spline.UnitNormalized
	rig.Position = 0.95
	rig.Damping.Enabled = true
	vcam := newCamera(rig, nil)
	step(vcam, 1)

	rig.Position = 0.05
	step(vcam, 1)
	assert.InDelta(t, 0.968127, rig.SplinePosition(), 1e-3)
	step(vcam, 1)
	assert.InDelta(t, 0.982968, rig.SplinePosition(), 1e-3, "still heading for the goal")
	assert.Equal(t, 0.05, rig.Position)
	assert.Equal(t, 1.0, rig.MaxDampTime())
}

// --- third person ---

func TestThirdPersonFollowArm(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewThirdPersonFollow(nil)
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{0.5, 0, -2}, vcam.Position(), 1e-9)
	shoulder, hand := rig.RigPositions()
	assertVecInDelta(t, mgl64.Vec3{0.5, -0.4, 0}, shoulder, 1e-9)
	assertVecInDelta(t, mgl64.Vec3{0.5, 0, 0}, hand, 1e-9)

	rig.CameraSide = 0
	vcam.UpdateCameraState(utils.Up, -1, true)
	assertVecInDelta(t, mgl64.Vec3{-0.5, 0, -2}, vcam.Position(), 1e-9)
}

func TestThirdPersonFollowAvoidsObstacles(t *testing.T) {
	wall := collision.NewBox(mgl64.Vec3{0.5, 0, -1.5}, mgl64.Vec3{4, 4, 0.2}, "")
	world := collision.NewWorld(wall)
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewThirdPersonFollow(world)
	rig.Obstacles.Enabled = true
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{0.5, 0, -1.2}, vcam.Position(), 1e-6)

	// clearing the way eases back out
	require.True(t, world.Remove(wall))
	step(vcam, 1)
	z := vcam.Position()[2]
	assert.Less(t, z, -1.2)
	assert.Greater(t, z, -2.0)
}

func TestThirdPersonFollowIgnoresTaggedObstacles(t *testing.T) {
	world := collision.NewWorld(collision.NewBox(mgl64.Vec3{0.5, 0, -1.5}, mgl64.Vec3{4, 4, 0.2}, "player"))
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewThirdPersonFollow(world)
	rig.Obstacles.Enabled = true
	rig.Obstacles.IgnoreTag = "player"
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{0.5, 0, -2}, vcam.Position(), 1e-9)
}
