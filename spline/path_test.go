package spline

import (
	"testing"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Spline = (*Path)(nil)

func straightPath() *Path {
	return NewPath([]Knot{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{0, 0, 10}},
		{Position: mgl64.Vec3{0, 0, 20}},
	}, false, 0)
}

func squareLoop() *Path {
	return NewPath([]Knot{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{10, 0, 0}},
		{Position: mgl64.Vec3{10, 0, 10}},
		{Position: mgl64.Vec3{0, 0, 10}},
	}, true, 0)
}

func assertVec3(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, 0, expected.Sub(actual).Len(), delta, msgAndArgs...)
}

func TestSmoothControlPointsOfEvenKnotsAreLinear(t *testing.T) {
	knots := []mgl64.Vec4{{0, 0, 0, 0}, {0, 0, 10, 0}, {0, 0, 20, 0}}
	ctrl1 := make([]mgl64.Vec4, len(knots))
	ctrl2 := make([]mgl64.Vec4, len(knots))
	ComputeSmoothControlPoints(knots, ctrl1, ctrl2)
	assert.InDelta(t, 10.0/3, ctrl1[0][2], 1e-9)
	assert.InDelta(t, 20.0/3, ctrl2[0][2], 1e-9)
	assert.InDelta(t, 40.0/3, ctrl1[1][2], 1e-9)
	assert.InDelta(t, 50.0/3, ctrl2[1][2], 1e-9)

	two := knots[:2]
	ComputeSmoothControlPoints(two, ctrl1, ctrl2)
	assert.InDelta(t, 10.0/3, ctrl1[0][2], 1e-9)
	assert.InDelta(t, 20.0/3, ctrl2[0][2], 1e-9)
}

func TestPathUnits(t *testing.T) {
	path := straightPath()
	assert.False(t, path.Closed())
	minPos, maxPos := path.KnotSpan()
	assert.Equal(t, 0.0, minPos)
	assert.Equal(t, 2.0, maxPos)
	assert.InDelta(t, 20, path.Length(), 1e-6)

	pos, tangent, up := path.Evaluate(5, UnitDistance)
	assertVec3(t, mgl64.Vec3{0, 0, 5}, pos, 1e-6)
	assertVec3(t, utils.Forward, tangent, 1e-9)
	assertVec3(t, utils.Up, up, 1e-9)

	pos, _, _ = path.Evaluate(0.5, UnitNormalized)
	assertVec3(t, mgl64.Vec3{0, 0, 10}, pos, 1e-6)
	assert.InDelta(t, 15, path.ConvertUnit(1.5, UnitKnot, UnitDistance), 1e-6)
	assert.InDelta(t, 0.75, path.ConvertUnit(1.5, UnitKnot, UnitNormalized), 1e-6)
	assert.InDelta(t, 1.5, path.ConvertUnit(15, UnitDistance, UnitKnot), 1e-6)
}

func TestOpenPathClamps(t *testing.T) {
	path := straightPath()
	assert.Equal(t, 0.0, path.StandardizePosition(-1, UnitKnot))
	assert.Equal(t, 2.0, path.StandardizePosition(5, UnitKnot))
	assert.Equal(t, 1.0, path.StandardizePosition(3, UnitNormalized))
	pos, _, _ := path.Evaluate(5, UnitKnot)
	assertVec3(t, mgl64.Vec3{0, 0, 20}, pos, 1e-9)
}

func TestLoopedPathWraps(t *testing.T) {
	path := squareLoop()
	assert.True(t, path.Closed())
	_, maxPos := path.KnotSpan()
	assert.Equal(t, 4.0, maxPos)
	assert.InDelta(t, 1, path.StandardizePosition(5, UnitKnot), 1e-9)
	assert.InDelta(t, 3, path.StandardizePosition(-1, UnitKnot), 1e-9)

	start, _, _ := path.Evaluate(0, UnitKnot)
	end, _, _ := path.Evaluate(4, UnitKnot)
	assertVec3(t, start, end, 1e-9)
	corner, _, _ := path.Evaluate(2, UnitKnot)
	assertVec3(t, mgl64.Vec3{10, 0, 10}, corner, 1e-9, "the curve goes through every knot")

	// a smooth loop through the corners bulges outside the square
	assert.Greater(t, path.Length(), 40.0)
	assert.Less(t, path.Length(), 50.0)

	roundTrip := path.ConvertUnit(path.ConvertUnit(13, UnitDistance, UnitKnot), UnitKnot, UnitDistance)
	assert.InDelta(t, 13, roundTrip, 0.1)
}

func TestPathRoll(t *testing.T) {
	path := NewPath([]Knot{
		{Position: mgl64.Vec3{0, 0, 0}},
		{Position: mgl64.Vec3{0, 0, 10}, Roll: 90},
	}, false, 0)
	_, tangent, up := path.Evaluate(1, UnitKnot)
	assert.InDelta(t, 0, tangent.Dot(up), 1e-9)
	assert.InDelta(t, 1, mgl64.Abs(up[0]), 1e-9)

	_, _, up = path.Evaluate(0, UnitKnot)
	assertVec3(t, utils.Up, up, 1e-9)

	orientation := Orientation(path, 0.5, UnitNormalized)
	assertVec3(t, utils.Forward, orientation.Rotate(utils.Forward), 1e-9)
}

func TestNearestPoint(t *testing.T) {
	path := straightPath()
	assert.InDelta(t, 1.2, path.NearestPoint(mgl64.Vec3{3, 0, 12}, 0, -1, 10), 1e-6)
	assert.InDelta(t, 2, path.NearestPoint(mgl64.Vec3{0, 0, 50}, 0, -1, 10), 1e-6)

	// limited search windows never look beyond their range
	assert.InDelta(t, 1, path.NearestPoint(mgl64.Vec3{0, 0, 19}, 0, 0, 10), 1e-6)

	loop := squareLoop()
	pos := loop.NearestPoint(mgl64.Vec3{-1, 0, -1}, 0, -1, 10)
	point, _, _ := loop.Evaluate(pos, UnitKnot)
	assert.Less(t, point.Len(), 0.05)
}

func TestDegeneratePaths(t *testing.T) {
	empty := NewPath(nil, false, 0)
	assert.Equal(t, 0.0, empty.Length())
	pos, tangent, _ := empty.Evaluate(1, UnitKnot)
	assert.Equal(t, mgl64.Vec3{}, pos)
	assert.Equal(t, utils.Forward, tangent)

	single := NewPath([]Knot{{Position: mgl64.Vec3{1, 2, 3}}}, true, 0)
	pos, _, _ = single.Evaluate(0.5, UnitNormalized)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, pos)
	require.Equal(t, 1, single.KnotCount())
}

func TestParseUnits(t *testing.T) {
	for _, units := range []Units{UnitKnot, UnitDistance, UnitNormalized} {
		parsed, err := ParseUnits(units.String())
		require.NoError(t, err)
		assert.Equal(t, units, parsed)
	}
	_, err := ParseUnits("furlongs")
	assert.Error(t, err)
}
