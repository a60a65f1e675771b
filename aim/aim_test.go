package aim

import (
	"math"
	"testing"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/group"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 0.033

func newCamera(rig cinemachine.Component, lookAt cinemachine.Target) *cinemachine.VirtualCamera {
	vcam := cinemachine.NewVirtualCamera("test", zerolog.Nop())
	vcam.SetComponent(rig)
	vcam.SetLookAt(lookAt)
	return vcam
}

func step(vcam *cinemachine.VirtualCamera, frames int) {
	for range frames {
		vcam.UpdateCameraState(utils.Up, frame, true)
	}
}

// degrees around +Y of the camera forward, positive to the right
func yawOf(q mgl64.Quat) float64 {
	f := q.Rotate(utils.Forward)
	return mgl64.RadToDeg(math.Atan2(f[0], f[2]))
}

func onCircle(yaw, distance float64) mgl64.Vec3 {
	r := mgl64.DegToRad(yaw)
	return mgl64.Vec3{math.Sin(r) * distance, 0, math.Cos(r) * distance}
}

// --- composer ---

func TestComposerCentersOnActivate(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{3, 0, 10})
	vcam := newCamera(NewComposer(), target)
	step(vcam, 1)
	assert.InDelta(t, mgl64.RadToDeg(math.Atan2(3, 10)), yawOf(vcam.Rotation()), 1e-6)
}

func TestComposerEasesIntoTheTarget(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{0, 0, 10})
	vcam := newCamera(NewComposer(), target)
	vcam.UpdateCameraState(utils.Up, -1, true)
	require.InDelta(t, 0, yawOf(vcam.Rotation()), 1e-9)

	target.SetPosition(onCircle(20, 10))
	previousYaw := yawOf(vcam.Rotation())
	previousDelta := math.Inf(1)
	for range 10 {
		step(vcam, 1)
		yaw := yawOf(vcam.Rotation())
		delta := yaw - previousYaw
		require.Greater(t, delta, 0.0, "the camera turns toward the target")
		require.Less(t, delta, previousDelta, "every frame turns less than the one before")
		previousYaw, previousDelta = yaw, delta
	}
	assert.Less(t, previousYaw, 20.0)
}

func TestComposerDeadZoneHoldsTheCamera(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{0, 0, 10})
	rig := NewComposer()
	rig.Composition.DeadZoneWidth = 0.5
	rig.Composition.DeadZoneHeight = 0.5
	vcam := newCamera(rig, target)
	step(vcam, 1)

	target.SetPosition(onCircle(5, 10))
	step(vcam, 5)
	assert.InDelta(t, 0, yawOf(vcam.Rotation()), 1e-6)
}

func TestComposerHardZoneIsNotDamped(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{0, 0, 10})
	vcam := newCamera(NewComposer(), target)
	step(vcam, 1)

	target.SetPosition(onCircle(45, 10))
	step(vcam, 1)
	// the 0.8 soft zone edge sits 27.37 degrees off center on a 16:9
	// screen with a 40 degree vertical fov
	remaining := 45 - yawOf(vcam.Rotation())
	assert.InDelta(t, 27.37, remaining, 0.05)
}

func TestComposerKeepsTheOrientationWhenNavelGazing(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{4, 0, 4})
	vcam := newCamera(NewComposer(), target)
	step(vcam, 1)
	before := vcam.Rotation()

	target.SetPosition(mgl64.Vec3{})
	step(vcam, 1)
	assert.InDelta(t, 0, utils.QuatAngle(before, vcam.Rotation()), 1e-6)
}

func TestComposerTrackedObjectOffset(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{0, 0, 10})
	target.SetRotation(utils.AngleAxis(90, utils.Up))
	rig := NewComposer()
	rig.TrackedObjectOffset = mgl64.Vec3{0, 0, 10} // target forward is +x
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assert.InDelta(t, 45, yawOf(vcam.Rotation()), 1e-6)
	assert.InDelta(t, 0, rig.TrackedPoint().Sub(mgl64.Vec3{10, 0, 10}).Len(), 1e-9)
}

func TestComposerIsInvalidWithoutLookAt(t *testing.T) {
	rigs := []cinemachine.Component{NewComposer(), NewGroupComposer(), NewHardLookAt()}
	for _, rig := range rigs {
		vcam := newCamera(rig, nil)
		assert.False(t, rig.IsValid(vcam), rig.Kind().String())
		assert.Equal(t, cinemachine.StageAim, rig.Stage())
	}
}

// --- group composer ---

func spread() *group.Group {
	return group.New(
		group.Member{Target: cinemachine.NewTargetTransform(mgl64.Vec3{-5, 0, 20}), Weight: 1},
		group.Member{Target: cinemachine.NewTargetTransform(mgl64.Vec3{5, 0, 20}), Weight: 1},
	)
}

// The pair spans 10 units across at 20 units away. Filling 0.8 of a
// 16:9 frame asks for a 7.03 unit tall view at that depth.
const spreadHeight = 10 / (16.0 / 9.0) / 0.8

func TestGroupComposerZooms(t *testing.T) {
	rig := NewGroupComposer()
	vcam := newCamera(rig, spread())
	step(vcam, 1)

	state := vcam.State()
	expected := 2 * mgl64.RadToDeg(math.Atan(spreadHeight/40))
	assert.InDelta(t, expected, state.Lens.FieldOfView, 0.01)
	assert.InDelta(t, 0, yawOf(vcam.Rotation()), 1e-6)
	assert.InDelta(t, 20, rig.LastBounds().Center[2], 1e-9)
}

func TestGroupComposerZoomIsDamped(t *testing.T) {
	members := spread()
	rig := NewGroupComposer()
	vcam := newCamera(rig, members)
	step(vcam, 1)
	before := vcam.State().Lens.FieldOfView

	members.Members[0].Target.(*cinemachine.TargetTransform).SetPosition(mgl64.Vec3{-10, 0, 20})
	members.Members[1].Target.(*cinemachine.TargetTransform).SetPosition(mgl64.Vec3{10, 0, 20})
	step(vcam, 1)
	after := vcam.State().Lens.FieldOfView
	assert.Greater(t, after, before)
	assert.Less(t, after, rig.MaximumFOV)
}

func TestGroupComposerDollies(t *testing.T) {
	rig := NewGroupComposer()
	rig.AdjustmentMode = group.DollyOnly
	vcam := newCamera(rig, spread())
	step(vcam, 1)

	state := vcam.State()
	distance := spreadHeight / (2 * math.Tan(mgl64.DegToRad(20)))
	assert.InDelta(t, 40, state.Lens.FieldOfView, 1e-9)
	assert.InDelta(t, 20-distance, state.CorrectedPosition()[2], 1e-6)
	assert.InDelta(t, 0, state.RawPosition.Len(), 1e-9, "the dolly is a correction")
}

func TestGroupComposerHonorsDollyLimits(t *testing.T) {
	rig := NewGroupComposer()
	rig.AdjustmentMode = group.DollyThenZoom
	rig.MaxDollyIn = 5
	vcam := newCamera(rig, spread())
	step(vcam, 1)

	state := vcam.State()
	assert.InDelta(t, 5, state.CorrectedPosition()[2], 1e-6)
	// the rest is made up with the lens
	expected := 2 * mgl64.RadToDeg(math.Atan(spreadHeight/(2*15)))
	assert.InDelta(t, expected, state.Lens.FieldOfView, 0.01)
}

func TestGroupComposerOrthographic(t *testing.T) {
	rig := NewGroupComposer()
	vcam := newCamera(rig, spread())
	vcam.Lens.Orthographic = true
	step(vcam, 1)
	assert.InDelta(t, spreadHeight/2, vcam.State().Lens.OrthographicSize, 1e-6)
}

func TestGroupComposerFallsBackToComposer(t *testing.T) {
	rig := NewGroupComposer()
	vcam := newCamera(rig, cinemachine.NewTargetTransform(mgl64.Vec3{10, 0, 10}))
	step(vcam, 1)
	assert.Equal(t, 40.0, vcam.State().Lens.FieldOfView)
	assert.InDelta(t, 45, yawOf(vcam.Rotation()), 1e-6)

	rig.FramingMode = group.FramingNone
	vcam = newCamera(rig, spread())
	step(vcam, 1)
	assert.Equal(t, 40.0, vcam.State().Lens.FieldOfView)
	assert.Equal(t, cinemachine.KindGroupComposer, rig.Kind())
	assert.Equal(t, 2.0, rig.MaxDampTime())
}

// --- pov ---

func TestPOVAxes(t *testing.T) {
	rig := NewPOV()
	rig.HorizontalAxis.Value = 90
	vcam := newCamera(rig, nil)
	step(vcam, 1)
	fwd := vcam.Rotation().Rotate(utils.Forward)
	assert.InDelta(t, 0, fwd.Sub(mgl64.Vec3{1, 0, 0}).Len(), 1e-9)

	rig.HorizontalAxis.Value = 0
	rig.VerticalAxis.Value = 30
	step(vcam, 1)
	fwd = vcam.Rotation().Rotate(utils.Forward)
	assert.InDelta(t, -0.5, fwd[1], 1e-9, "positive tilt looks down")

	rig.VerticalAxis.Value = 100
	step(vcam, 1)
	assert.Equal(t, 70.0, rig.VerticalAxis.Value)
}

func TestPOVForceCameraPosition(t *testing.T) {
	rig := NewPOV()
	vcam := newCamera(rig, nil)
	step(vcam, 1)
	vcam.ForceCameraPosition(mgl64.Vec3{}, utils.LookRotation(mgl64.Vec3{-1, -1, 0}, utils.Up))
	assert.InDelta(t, -90, rig.HorizontalAxis.Value, 1e-6)
	assert.InDelta(t, 45, rig.VerticalAxis.Value, 1e-6)
}

func TestPOVRecentersToTheFollowTarget(t *testing.T) {
	follow := cinemachine.NewTargetTransform(mgl64.Vec3{})
	follow.SetRotation(utils.AngleAxis(90, utils.Up).Mul(utils.AngleAxis(20, utils.Right)))
	rig := NewPOV()
	rig.RecenterTarget = cinemachine.RecenterFollowTargetForward
	rig.HorizontalAxis.Recentering.Enabled = true
	rig.VerticalAxis.Recentering.Enabled = true
	vcam := newCamera(rig, nil)
	vcam.SetFollow(follow)

	vcam.UpdateCameraState(utils.Up, -1, true)
	assert.InDelta(t, 90, rig.HorizontalAxis.Value, 1e-6)
	assert.InDelta(t, 20, rig.VerticalAxis.Value, 1e-6)
}

// --- same as follow target ---

func TestSameAsFollowTarget(t *testing.T) {
	follow := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewSameAsFollowTarget()
	vcam := cinemachine.NewVirtualCamera("test", zerolog.Nop())
	vcam.SetComponent(rig)
	assert.False(t, rig.IsValid(vcam))
	vcam.SetFollow(follow)

	follow.SetRotation(utils.AngleAxis(30, utils.Up))
	step(vcam, 1)
	assert.InDelta(t, 30, yawOf(vcam.Rotation()), 1e-6)

	rig.Damping = 1
	follow.SetRotation(utils.AngleAxis(60, utils.Up))
	step(vcam, 1)
	yaw := yawOf(vcam.Rotation())
	assert.Greater(t, yaw, 30.0)
	assert.Less(t, yaw, 60.0)
}

// --- hard look at ---

func TestHardLookAt(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{10, 0, 0})
	vcam := newCamera(NewHardLookAt(), target)
	step(vcam, 1)
	assert.InDelta(t, 90, yawOf(vcam.Rotation()), 1e-6)

	target.SetPosition(mgl64.Vec3{0, 10, 0})
	step(vcam, 1)
	fwd := vcam.Rotation().Rotate(utils.Forward)
	assert.InDelta(t, 0, fwd.Sub(utils.Up).Len(), 1e-6)
}
