package tracker

import (
	"math"
	"testing"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowCamera(target cinemachine.Target) *cinemachine.VirtualCamera {
	vcam := cinemachine.NewVirtualCamera("test", zerolog.Nop())
	vcam.SetFollow(target)
	return vcam
}

func TestEffectiveDamping(t *testing.T) {
	settings := Settings{PositionDamping: mgl64.Vec3{1, 2, 3}, RotationDamping: mgl64.Vec3{4, 5, 6}, QuaternionDamping: 7}

	settings.BindingMode = SimpleFollowWithWorldUp
	assert.Equal(t, mgl64.Vec3{0, 2, 3}, settings.EffectivePositionDamping())
	assert.Equal(t, mgl64.Vec3{}, settings.EffectiveRotationDamping())

	settings.BindingMode = LockToTargetWithWorldUp
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, settings.EffectivePositionDamping())
	assert.Equal(t, mgl64.Vec3{0, 5, 0}, settings.EffectiveRotationDamping())

	settings.BindingMode = LockToTargetNoRoll
	assert.Equal(t, mgl64.Vec3{4, 5, 0}, settings.EffectiveRotationDamping())

	settings.BindingMode = LockToTarget
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, settings.EffectiveRotationDamping())
	assert.Equal(t, 6.0, settings.MaxDampTime())

	settings.BindingMode = WorldSpace
	assert.Equal(t, mgl64.Vec3{}, settings.EffectiveRotationDamping())
}

func TestBindingModeNames(t *testing.T) {
	for mode := LockToTargetOnAssign; mode < bindingModeCount; mode++ {
		parsed, err := ParseBindingMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	_, err := ParseBindingMode("sideways")
	assert.Error(t, err)
}

func TestReferenceOrientationGimbalFallback(t *testing.T) {
	in := ReferenceInputs{
		TargetRotation: utils.Euler(mgl64.Vec3{-90, 0, 0}), // looking straight up
		WorldUp:        utils.Up,
	}
	_, ok := ReferenceOrientation(LockToTargetWithWorldUp, in)
	assert.False(t, ok)
	_, ok = ReferenceOrientation(LockToTargetNoRoll, in)
	assert.False(t, ok)
	q, ok := ReferenceOrientation(LockToTarget, in)
	assert.True(t, ok)
	assert.Equal(t, in.TargetRotation, q)

	tracker := TargetTracker{PreviousReferenceOrientation: utils.Euler(mgl64.Vec3{0, 30, 0})}
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	target.SetRotation(in.TargetRotation)
	vcam := newFollowCamera(target)
	got := tracker.GetReferenceOrientation(vcam, LockToTargetWithWorldUp, utils.Up)
	assert.InDelta(t, 0, utils.QuatAngle(got, utils.Euler(mgl64.Vec3{0, 30, 0})), 1e-6)
}

func TestTrackTargetSnapsOnCut(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	vcam := newFollowCamera(target)
	settings := DefaultSettings()
	offset := mgl64.Vec3{0, 2, -10}

	var tracker TargetTracker
	tracker.InitStateInfo(vcam, -1, settings.BindingMode, offset, utils.Up)
	pos, _ := tracker.TrackTarget(vcam, -1, utils.Up, offset, settings)
	assert.Equal(t, mgl64.Vec3{}, pos)

	target.SetPosition(mgl64.Vec3{100, 0, 0})
	tracker.InitStateInfo(vcam, -1, settings.BindingMode, offset, utils.Up)
	pos, _ = tracker.TrackTarget(vcam, -1, utils.Up, offset, settings)
	assert.Equal(t, mgl64.Vec3{100, 0, 0}, pos, "cuts carry no damping")
}

func TestTrackTargetDampsMonotonically(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	vcam := newFollowCamera(target)
	vcam.PreviousStateIsValid = true
	settings := DefaultSettings()
	offset := mgl64.Vec3{0, 0, -10}

	var tracker TargetTracker
	tracker.InitStateInfo(vcam, -1, settings.BindingMode, offset, utils.Up)
	tracker.TrackTarget(vcam, -1, utils.Up, offset, settings)

	target.SetPosition(mgl64.Vec3{4, 0, 0})
	prev := 0.0
	for range 40 {
		tracker.InitStateInfo(vcam, 0.1, settings.BindingMode, offset, utils.Up)
		pos, _ := tracker.TrackTarget(vcam, 0.1, utils.Up, offset, settings)
		assert.Greater(t, pos[0], prev)
		assert.LessOrEqual(t, pos[0], 4.0)
		prev = pos[0]
	}
	assert.InDelta(t, 4, prev, 0.01)
}

func TestTrackTargetRotationDamping(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	vcam := newFollowCamera(target)
	vcam.PreviousStateIsValid = true
	settings := DefaultSettings()
	settings.BindingMode = LockToTarget
	offset := mgl64.Vec3{0, 0, -10}

	var tracker TargetTracker
	tracker.InitStateInfo(vcam, -1, settings.BindingMode, offset, utils.Up)
	tracker.TrackTarget(vcam, -1, utils.Up, offset, settings)

	target.SetRotation(utils.Euler(mgl64.Vec3{0, 90, 0}))
	_, orient := tracker.TrackTarget(vcam, 0.1, utils.Up, offset, settings)
	yaw := utils.EulerAngles(orient)[1]
	assert.Greater(t, yaw, 0.0)
	assert.Less(t, yaw, 90.0)

	settings.AngularDampingMode = AngularDampingQuaternion
	settings.QuaternionDamping = 0
	_, orient = tracker.TrackTarget(vcam, 0.1, utils.Up, offset, settings)
	assert.InDelta(t, 0, utils.QuatAngle(orient, target.Rotation()), 1e-6)
}

// Runs an offset change with the whole scene turned by turn, and
// returns the tracked point turned back.
func swingAfterOffsetChange(turn mgl64.Quat) mgl64.Vec3 {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	vcam := newFollowCamera(target)
	vcam.PreviousStateIsValid = true
	settings := DefaultSettings()
	settings.BindingMode = WorldSpace
	up := turn.Rotate(utils.Up)
	before := turn.Rotate(mgl64.Vec3{0, 0, -10})
	after := turn.Rotate(mgl64.Vec3{-10, 0, 0})

	var tracker TargetTracker
	tracker.InitStateInfo(vcam, -1, settings.BindingMode, before, up)
	tracker.TrackTarget(vcam, -1, up, before, settings)

	target.SetPosition(turn.Rotate(mgl64.Vec3{4, 0, 0}))
	tracker.InitStateInfo(vcam, 0.1, settings.BindingMode, after, up)
	pos, _ := tracker.TrackTarget(vcam, 0.1, up, after, settings)
	return turn.Inverse().Rotate(pos)
}

func TestTrackTargetSwingsAroundWorldUp(t *testing.T) {
	upright := swingAfterOffsetChange(mgl64.QuatIdent())
	assert.Greater(t, math.Abs(upright[2]), 0.1, "the lagging point swings off the line to the target")

	sideways := swingAfterOffsetChange(utils.AngleAxis(-90, utils.Forward))
	for i := range 3 {
		assert.InDelta(t, upright[i], sideways[i], 1e-6)
	}
}

func TestMinimumTargetDistance(t *testing.T) {
	vcam := newFollowCamera(cinemachine.NewTargetTransform(mgl64.Vec3{}))
	var tracker TargetTracker
	actual := mgl64.Vec3{0, 0, -9.5}
	damped := mgl64.Vec3{0, 0, -0.2}
	offset := mgl64.Vec3{0, 0, -10}

	push := tracker.GetOffsetForMinimumTargetDistance(vcam, damped, offset, utils.Forward, utils.Up, actual)
	camera := damped.Add(offset).Add(push)
	assert.InDelta(t, 2, actual[2]-camera[2], 1e-9)

	// far enough: nothing to do
	push = tracker.GetOffsetForMinimumTargetDistance(vcam, actual, offset, utils.Forward, utils.Up, actual)
	assert.Equal(t, mgl64.Vec3{}, push)

	// a camera looking across the offset is measured along the offset
	sideways := mgl64.Vec3{-10, 0, 0}
	push = tracker.GetOffsetForMinimumTargetDistance(vcam, mgl64.Vec3{-0.2, 0, 0}, sideways, utils.Forward, utils.Up, mgl64.Vec3{-9.5, 0, 0})
	camera = mgl64.Vec3{-0.2, 0, 0}.Add(sideways).Add(push)
	assert.InDelta(t, 2, -9.5-camera[0], 1e-9)

	vcam.FollowTargetAttachment = 0.5
	push = tracker.GetOffsetForMinimumTargetDistance(vcam, damped, offset, utils.Forward, utils.Up, actual)
	assert.Equal(t, mgl64.Vec3{}, push, "only applies when fully attached")
}

func TestTrackerWarpAndForce(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	vcam := newFollowCamera(target)
	settings := DefaultSettings()
	offset := mgl64.Vec3{0, 1, -5}

	var tracker TargetTracker
	tracker.OnTargetObjectWarped(mgl64.Vec3{1, 2, 3})
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, tracker.PreviousTargetPosition)

	tracker.OnForceCameraPosition(vcam, settings.BindingMode, offset, mgl64.Vec3{0, 1, -5}, mgl64.QuatIdent(), utils.Up)
	assert.InDelta(t, 0, tracker.PreviousTargetPosition.Len(), 1e-9)
}

func TestPositionPredictor(t *testing.T) {
	var predictor PositionPredictor
	assert.True(t, predictor.IsEmpty())

	pos := mgl64.Vec3{}
	for range 200 {
		pos = pos.Add(mgl64.Vec3{0.1, 0.05, 0})
		predictor.AddPosition(pos, 0.1, 1)
	}
	assert.False(t, predictor.IsEmpty())
	delta := predictor.PredictPositionDelta(2)
	assert.InDelta(t, 2, delta[0], 1e-3)
	assert.InDelta(t, 1, delta[1], 1e-3)
	assert.InDelta(t, 4, predictor.PredictPositionDelta(4)[0], 2e-3, "lookahead changes rescale at once")

	predictor.IgnoreY = true
	assert.Zero(t, predictor.PredictPositionDelta(2)[1])

	predictor.ApplyTransformDelta(mgl64.Vec3{100, 0, 0})
	predictor.AddPosition(pos.Add(mgl64.Vec3{100.1, 0, 0}), 0.1, 1)
	assert.InDelta(t, 2, predictor.PredictPositionDelta(2)[0], 1e-2, "warps don't disturb the velocity")

	predictor.AddPosition(mgl64.Vec3{}, -1, 1)
	assert.Equal(t, mgl64.Vec3{}, predictor.Velocity())
}

func TestPositionPredictorSmoothing(t *testing.T) {
	raw := PositionPredictor{}
	smooth := PositionPredictor{Smoothing: 10}
	raw.AddPosition(mgl64.Vec3{}, 0.1, 0)
	smooth.AddPosition(mgl64.Vec3{}, 0.1, 0)
	raw.AddPosition(mgl64.Vec3{1, 0, 0}, 0.1, 0)
	smooth.AddPosition(mgl64.Vec3{1, 0, 0}, 0.1, 0)
	assert.Greater(t, raw.Velocity()[0], smooth.Velocity()[0])
}

func TestHeadingTracker(t *testing.T) {
	heading := NewHeadingTracker(10)
	assert.Equal(t, 10, heading.FilterSize())
	assert.Equal(t, mgl64.Vec3{}, heading.GetReliableHeading())

	now := 0.0
	for range 20 {
		now += 0.1
		heading.DecayHistory(now)
		heading.Add(mgl64.Vec3{2, 0, 0}, now)
	}
	assertHeading(t, mgl64.Vec3{1, 0, 0}, heading.GetReliableHeading())

	// a short burst the other way can't flip a full history
	for range 3 {
		now += 0.1
		heading.DecayHistory(now)
		heading.Add(mgl64.Vec3{0, 0, 2}, now)
	}
	h := heading.GetReliableHeading()
	assert.Greater(t, h[0], h[2])

	// fast samples outweigh slow ones
	fresh := NewHeadingTracker(10)
	fresh.Add(mgl64.Vec3{0.5, 0, 0}, 0)
	fresh.Add(mgl64.Vec3{0, 0, 5}, 0)
	h = fresh.GetReliableHeading()
	assert.Greater(t, h[2], h[0])

	assert.Panics(t, func() { NewHeadingTracker(0) })
}

func TestHeadingTrackerDecaysAway(t *testing.T) {
	heading := NewHeadingTracker(5)
	heading.Add(mgl64.Vec3{0, 0, 1}, 0)
	heading.DecayHistory(1000)
	heading.Add(mgl64.Vec3{1, 0, 0}, 1000)
	for i := 1; i < 5; i++ {
		heading.Add(mgl64.Vec3{1, 0, 0}, 1000)
	}
	assertHeading(t, mgl64.Vec3{1, 0, 0}, heading.GetReliableHeading())
}

func assertHeading(t *testing.T, expected, actual mgl64.Vec3) {
	t.Helper()
	assert.InDelta(t, 0, math.Acos(utils.Clamp(expected.Dot(actual), -1, 1)), 1e-3)
}
