package body

import (
	"math"
	"testing"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/tracker"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

type rigCase struct {
	name  string
	make  func() cinemachine.Component
	warps bool // false for rigs pinned to world geometry
}

func orbitalWith(definition HeadingDefinition) func() cinemachine.Component {
	return func() cinemachine.Component {
		rig := NewOrbitalTransposer()
		rig.Heading.Definition = definition
		return rig
	}
}

func rigCases() []rigCase {
	return []rigCase{
		{name: "transposer", warps: true, make: func() cinemachine.Component { return NewTransposer() }},
		{name: "transposer_simple_follow", warps: true, make: func() cinemachine.Component {
			rig := NewTransposer()
			rig.Tracking.BindingMode = tracker.SimpleFollowWithWorldUp
			return rig
		}},
		{name: "framing_transposer", warps: true, make: func() cinemachine.Component { return NewFramingTransposer() }},
		{name: "framing_transposer_lookahead", warps: true, make: func() cinemachine.Component {
			rig := NewFramingTransposer()
			rig.LookaheadTime = 0.5
			rig.LookaheadSmoothing = 5
			return rig
		}},
		{name: "orbital_position_delta", warps: true, make: orbitalWith(HeadingPositionDelta)},
		{name: "orbital_velocity", warps: true, make: orbitalWith(HeadingVelocity)},
		{name: "orbital_target_forward", warps: true, make: orbitalWith(HeadingTargetForward)},
		{name: "orbital_follow_sphere", warps: true, make: func() cinemachine.Component { return NewOrbitalFollow(OrbitSphere) }},
		{name: "orbital_follow_three_ring", warps: true, make: func() cinemachine.Component { return NewOrbitalFollow(OrbitThreeRing) }},
		{name: "third_person", warps: true, make: func() cinemachine.Component { return NewThirdPersonFollow(nil) }},
		{name: "hard_lock", warps: true, make: func() cinemachine.Component {
			rig := NewHardLockToTarget()
			rig.Damping = 0.5
			return rig
		}},
		// the path stays where it is when the target jumps
		{name: "spline_dolly_auto", make: func() cinemachine.Component {
			rig := NewSplineDolly(straightPath())
			rig.AutoDolly.Enabled = true
			rig.Damping.Enabled = true
			return rig
		}},
	}
}

// Puts the target where it is on frame i of a winding path, shifted.
func moveAlong(target *cinemachine.RigidTarget, i int, shift mgl64.Vec3) {
	t := float64(i) * frame
	target.SetPosition(mgl64.Vec3{3 * math.Sin(t), 0.2 * t, 4 * t}.Add(shift))
	target.SetRotation(utils.AngleAxis(25*t, utils.Up))
	target.Vel = mgl64.Vec3{3 * math.Cos(t), 0.2, 4}
}

func assertSamePose(t *testing.T, expected, actual *cinemachine.VirtualCamera) {
	t.Helper()
	want, got := expected.State(), actual.State()
	assertVecInDelta(t, want.FinalPosition(), got.FinalPosition(), 1e-6)
	assert.InDelta(t, 0, utils.QuatAngle(want.FinalOrientation(), got.FinalOrientation()), 1e-5)
	assert.InDelta(t, want.Lens.FieldOfView, got.Lens.FieldOfView, 1e-6)
}

func TestRigsForgetHistoryOnCut(t *testing.T) {
	for _, rc := range rigCases() {
		t.Run(rc.name, func(t *testing.T) {
			movedTarget := cinemachine.NewRigidTarget(mgl64.Vec3{}, mgl64.Vec3{})
			moved := newCamera(rc.make(), movedTarget)
			for i := range 30 {
				moveAlong(movedTarget, i, mgl64.Vec3{})
				step(moved, 1)
			}

			freshTarget := cinemachine.NewRigidTarget(mgl64.Vec3{}, mgl64.Vec3{})
			fresh := newCamera(rc.make(), freshTarget)
			fresh.SetTransform(moved.Position(), moved.Rotation())
			for _, target := range []*cinemachine.RigidTarget{movedTarget, freshTarget} {
				target.SetPosition(mgl64.Vec3{5, 1, 8})
				target.SetRotation(utils.AngleAxis(-40, utils.Up))
				target.Vel = mgl64.Vec3{0, 0, 3}
			}

			moved.UpdateCameraState(utils.Up, -1, true)
			fresh.UpdateCameraState(utils.Up, -1, true)
			assertSamePose(t, fresh, moved)
		})
	}
}

func TestRigsAbsorbTargetWarps(t *testing.T) {
	delta := mgl64.Vec3{100, 0, 50}
	for _, rc := range rigCases() {
		if !rc.warps {
			continue
		}
		t.Run(rc.name, func(t *testing.T) {
			warpedTarget := cinemachine.NewRigidTarget(mgl64.Vec3{}, mgl64.Vec3{})
			warped := newCamera(rc.make(), warpedTarget)
			shiftedTarget := cinemachine.NewRigidTarget(mgl64.Vec3{}, mgl64.Vec3{})
			shifted := newCamera(rc.make(), shiftedTarget)
			shifted.SetTransform(delta, mgl64.QuatIdent())

			for i := range 30 {
				if i < 20 {
					moveAlong(warpedTarget, i, mgl64.Vec3{})
				} else {
					moveAlong(warpedTarget, i, delta)
				}
				if i == 20 {
					warped.OnTargetObjectWarped(warpedTarget, delta)
				}
				moveAlong(shiftedTarget, i, delta)
				step(warped, 1)
				step(shifted, 1)
				if i >= 20 {
					assertSamePose(t, shifted, warped)
				}
			}
		})
	}
}

func TestOrbitalTransposerCutIgnoresOldMotion(t *testing.T) {
	for _, definition := range []HeadingDefinition{HeadingPositionDelta, HeadingVelocity} {
		t.Run(definition.String(), func(t *testing.T) {
			rig := NewOrbitalTransposer()
			rig.Heading.Definition = definition
			rig.Tracking.BindingMode = tracker.WorldSpace
			target := cinemachine.NewRigidTarget(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
			vcam := newCamera(rig, target)
			for range 100 {
				target.Step(frame)
				step(vcam, 1)
			}
			assert.Greater(t, math.Abs(rig.LastHeading()), 45.0, "the motion turned the camera")

			freshRig := NewOrbitalTransposer()
			freshRig.Heading.Definition = definition
			freshRig.Tracking.BindingMode = tracker.WorldSpace
			freshTarget := cinemachine.NewRigidTarget(mgl64.Vec3{0, 0, 20}, mgl64.Vec3{0, 0, 1})
			fresh := newCamera(freshRig, freshTarget)

			target.SetPosition(freshTarget.Position())
			target.Vel = freshTarget.Vel
			vcam.UpdateCameraState(utils.Up, -1, true)
			fresh.UpdateCameraState(utils.Up, -1, true)
			assert.InDelta(t, freshRig.LastHeading(), rig.LastHeading(), 1e-9)
			assertVecInDelta(t, fresh.Position(), vcam.Position(), 1e-9)
		})
	}
}

func TestOrbitalTransposerKeepsMinimumDistanceWithoutAim(t *testing.T) {
	target := cinemachine.NewTargetTransform(mgl64.Vec3{})
	rig := NewOrbitalTransposer()
	rig.Tracking.BindingMode = tracker.WorldSpace
	rig.HeadingAxis.Value = 90
	rig.HeadingAxis.Recentering.Enabled = false
	vcam := newCamera(rig, target)
	step(vcam, 1)
	assertVecInDelta(t, mgl64.Vec3{-10, 0, 0}, vcam.Position(), 1e-9)

	// the camera still looks along +Z while the target runs at it along -X
	target.SetPosition(mgl64.Vec3{-20, 0, 0})
	for range 5 {
		step(vcam, 1)
		distance := target.Position()[0] - vcam.Position()[0]
		assert.GreaterOrEqual(t, distance, 2-1e-9)
	}
}
