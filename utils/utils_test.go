package utils

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, expected, actual mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}

func TestEulerAnglesRebuildsRotation(t *testing.T) {
	angles := mgl64.Vec3{30, 45, 10}
	got := EulerAngles(Euler(angles))
	assertVecNear(t, angles, got, 1e-6)

	negative := EulerAngles(Euler(mgl64.Vec3{-20, -90, 0}))
	assertVecNear(t, mgl64.Vec3{340, 270, 0}, negative, 1e-6)
}

func TestEulerPositivePitchLooksDown(t *testing.T) {
	fwd := Euler(mgl64.Vec3{30, 0, 0}).Rotate(Forward)
	assert.Less(t, fwd.Y(), 0.0)

	right := Euler(mgl64.Vec3{0, 90, 0}).Rotate(Forward)
	assertVecNear(t, Right, right, 1e-9)
}

func TestLookRotation(t *testing.T) {
	dir := mgl64.Vec3{3, -1, 2}
	q := LookRotation(dir, Up)
	assertVecNear(t, dir.Normalize(), q.Rotate(Forward), 1e-9)
	assert.Greater(t, q.Rotate(Up).Y(), 0.0)
	assert.InDelta(t, 0, q.Rotate(Right).Y(), 1e-9, "no roll")

	assert.Equal(t, mgl64.QuatIdent(), LookRotation(mgl64.Vec3{}, Up))

	straightUp := LookRotation(Up, Up)
	assertVecNear(t, Up, straightUp.Rotate(Forward), 1e-9)
}

func TestSignedAngle(t *testing.T) {
	assert.InDelta(t, 90, SignedAngle(Forward, Right, Up), 1e-9)
	assert.InDelta(t, -90, SignedAngle(Forward, Left, Up), 1e-9)
	assert.InDelta(t, 45, SignedAngle(Forward, mgl64.Vec3{0, 1, 1}, Left), 1e-9)
	assert.Equal(t, 0.0, SignedAngle(Forward, Forward, Up))
}

func TestCameraRotationRoundTrip(t *testing.T) {
	orient := Euler(mgl64.Vec3{10, 20, 0})
	target := mgl64.Vec3{-4, 2, 7}
	rot := GetCameraRotationToTarget(orient, target, Up)
	turned := ApplyCameraRotation(orient, rot, Up)
	assertVecNear(t, target.Normalize(), turned.Rotate(Forward), 1e-6)
}

func TestSafeFromToRotation(t *testing.T) {
	v1 := mgl64.Vec3{0, 1, -5}
	v2 := mgl64.Vec3{4, 3, 2}
	q := SafeFromToRotation(v1, v2, Up)
	assertVecNear(t, v2.Normalize(), q.Rotate(v1).Normalize(), 1e-6)

	// parallel to up
	q = SafeFromToRotation(Up, Forward, Up)
	assertVecNear(t, Forward, q.Rotate(Up), 1e-6)
}

func TestSlerpWithReferenceUpEndpoints(t *testing.T) {
	a := Euler(mgl64.Vec3{10, 0, 0})
	b := Euler(mgl64.Vec3{-10, 170, 0})
	assert.InDelta(t, 0, QuatAngle(a, SlerpWithReferenceUp(a, b, 0, Up)), 1e-4)
	assert.InDelta(t, 0, QuatAngle(b, SlerpWithReferenceUp(a, b, 1, Up)), 1e-4)

	mid := SlerpWithReferenceUp(a, b, 0.5, Up)
	assert.InDelta(t, 0, mid.Rotate(Right).Y(), 1e-6, "blend must not roll")
}

func TestAngleHelpers(t *testing.T) {
	assert.InDelta(t, -170, NormalizeAngle(190), 1e-9)
	assert.InDelta(t, 180, NormalizeAngle(-180), 1e-9)
	assert.InDelta(t, 355, LerpAngle(350, 10, 0.25), 1e-9)
	assert.InDelta(t, 0.25, ClosestPointOnSegment(mgl64.Vec3{1, 5, 0}, mgl64.Vec3{}, mgl64.Vec3{4, 0, 0}), 1e-9)
	require.Equal(t, mgl64.Vec3{1, 0, 1}, ProjectOntoPlane(mgl64.Vec3{1, 7, 1}, Up))
}

func TestScreenCompositionRects(t *testing.T) {
	comp := ScreenComposition{
		ScreenX: 0.5, ScreenY: 0.5,
		DeadZoneWidth: 0.2, DeadZoneHeight: 0.1,
		SoftZoneWidth: 0.6, SoftZoneHeight: 0.5,
		BiasX: 0.5,
	}
	soft := comp.SoftGuideRect()
	assert.InDelta(t, 0.4, soft.Min.X, 1e-9)
	assert.InDelta(t, 0.55, soft.Max.Y, 1e-9)

	hard := comp.HardGuideRect()
	assert.InDelta(t, 0.4, hard.Min.X, 1e-9, "bias shifts by half the zone difference")
	assert.InDelta(t, 0.6, hard.Width(), 1e-9)
	assert.True(t, hard.Contains(comp.ScreenPosition()))
}

func TestRelativeEulerKeepsSmallTurns(t *testing.T) {
	from := AngleAxis(30, Up)
	relative := RelativeEuler(from, from.Mul(AngleAxis(0.005, Up)))
	assert.InDelta(t, 0.005, relative[1], 1e-9)

	relative = RelativeEuler(from, AngleAxis(-170, Up))
	assert.InDelta(t, 160, relative[1], 1e-9, "wrapped the short way")

	assert.Equal(t, mgl64.Vec3{}, RelativeEuler(from, from))
}
