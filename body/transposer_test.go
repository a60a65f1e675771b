package body

import (
	"testing"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 0.1

func newCamera(rig cinemachine.Component, follow cinemachine.Target) *cinemachine.VirtualCamera {
	vcam := cinemachine.NewVirtualCamera("test", zerolog.Nop())
	vcam.SetComponent(rig)
	vcam.SetFollow(follow)
	return vcam
}

func step(vcam *cinemachine.VirtualCamera, frames int) {
	for range frames {
		vcam.UpdateCameraState(utils.Up, frame, true)
	}
}

func assertVecInDelta(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}

func TestTransposerConvergesWithoutOvershoot(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewTransposer()
	rig.FollowOffset = mgl64.Vec3{0, 2, -10}
	vcam := newCamera(rig, target)

	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{0, 2, -10}, vcam.Position(), 1e-9)

	goal := mgl64.Vec3{5, 2, -10}
	target.SetPosition(mgl64.Vec3{5, 0, 0})
	previous := vcam.Position()
	for range 50 {
		step(vcam, 1)
		pos := vcam.Position()
		require.GreaterOrEqual(t, pos[0], previous[0], "x must approach monotonically")
		require.LessOrEqual(t, pos[0], goal[0]+1e-9, "x must not overshoot")
		previous = pos
	}
	assertVecInDelta(t, goal, vcam.Position(), 0.05)
}

func TestTransposerSnapsOnCut(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewTransposer()
	vcam := newCamera(rig, target)
	step(vcam, 3)

	target.SetPosition(mgl64.Vec3{20, 0, 0})
	vcam.UpdateCameraState(utils.Up, -1, true)
	assertVecInDelta(t, mgl64.Vec3{20, 0, -10}, vcam.Position(), 1e-9)
}

func TestTransposerWarpKeepsTheRelativePose(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewTransposer()
	vcam := newCamera(rig, target)
	step(vcam, 2)
	before := vcam.Position()

	delta := mgl64.Vec3{100, 0, 50}
	target.Translate(delta)
	vcam.OnTargetObjectWarped(target, delta)
	step(vcam, 1)
	assertVecInDelta(t, before.Add(delta), vcam.Position(), 1e-9)
}

func TestTransposerKeepsMinimumDistance(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewTransposer()
	rig.Tracking.BindingMode = tracker.WorldSpace
	vcam := newCamera(rig, target)
	step(vcam, 1)

	// the target runs toward and past the camera
	target.SetPosition(mgl64.Vec3{0, 0, -20})
	for range 5 {
		step(vcam, 1)
		distance := target.Position()[2] - vcam.Position()[2]
		assert.GreaterOrEqual(t, distance, 2-1e-9)
	}
}

func TestTransposerSimpleFollowStaysBehind(t *testing.T) {
	rig := NewTransposer()
	rig.FollowOffset = mgl64.Vec3{3, 1, 10}
	rig.Tracking.BindingMode = tracker.SimpleFollowWithWorldUp
	assert.Equal(t, mgl64.Vec3{0, 1, -10}, rig.EffectiveOffset())
}

func TestInvalidRigsDontTouchTheState(t *testing.T) {
	rigs := []cinemachine.Component{
		NewTransposer(),
		NewFramingTransposer(),
		NewOrbitalTransposer(),
		NewOrbitalFollow(OrbitSphere),
		NewThirdPersonFollow(nil),
		NewHardLockToTarget(),
		NewSplineDolly(nil),
	}
	for _, rig := range rigs {
		t.Run(rig.Kind().String(), func(t *testing.T) {
			vcam := newCamera(rig, nil)
			vcam.SetTransform(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
			require.False(t, rig.IsValid(vcam))
			step(vcam, 2)
			assert.Equal(t, mgl64.Vec3{1, 2, 3}, vcam.Position())
			assert.Equal(t, cinemachine.StageBody, rig.Stage())
		})
	}
}

func TestHardLockToTarget(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{1, 2, 3})
	rig := NewHardLockToTarget()
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, vcam.Position())

	target.SetPosition(mgl64.Vec3{5, 2, 3})
	step(vcam, 1)
	assert.Equal(t, mgl64.Vec3{5, 2, 3}, vcam.Position())

	rig.Damping = 1
	target.SetPosition(mgl64.Vec3{9, 2, 3})
	step(vcam, 1)
	x := vcam.Position()[0]
	assert.Greater(t, x, 5.0)
	assert.Less(t, x, 9.0)
	assert.Equal(t, 1.0, rig.MaxDampTime())
}
