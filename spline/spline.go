// Package spline defines the spline service used by the dolly rig
// and provides [Path], a smooth Bezier spline through a list of knots
// with arc-length reparameterization.
package spline

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Units in which a position along a spline is expressed.
type Units uint8

const (
	UnitKnot       Units = iota // 0 at the first knot, 1 at the second, and so on
	UnitDistance                // arc length from the start
	UnitNormalized              // 0 at the start, 1 at the end
)

func (self Units) String() string {
	switch self {
	case UnitKnot:
		return "knot"
	case UnitDistance:
		return "distance"
	case UnitNormalized:
		return "normalized"
	default:
		return "unknown"
	}
}

// Returns the units with the given name, as used in scene files.
func ParseUnits(name string) (Units, error) {
	switch name {
	case "knot", "":
		return UnitKnot, nil
	case "distance":
		return UnitDistance, nil
	case "normalized":
		return UnitNormalized, nil
	default:
		return UnitKnot, fmt.Errorf("unknown spline units %q", name)
	}
}

func (self Units) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *Units) UnmarshalText(text []byte) error {
	units, err := ParseUnits(string(text))
	if err != nil {
		return err
	}
	*self = units
	return nil
}

// The spline contract the dolly rig consumes.
type Spline interface {
	// Whether the spline loops back to its first knot.
	Closed() bool

	// Range of valid positions in knot units.
	KnotSpan() (min, max float64)

	// Total arc length.
	Length() float64

	// Wraps (closed splines) or clamps (open splines) a position.
	StandardizePosition(pos float64, units Units) float64

	ConvertUnit(pos float64, from, to Units) float64

	// Returns the world position, the normalized tangent and the up
	// vector (including roll) at the given position.
	Evaluate(pos float64, units Units) (position, tangent, up mgl64.Vec3)

	// Returns the position, in knot units, of the point closest to p.
	// The search covers searchRadius segments around startSegment, or
	// the whole spline if searchRadius is negative. Higher
	// stepsPerSegment values are more precise and slower.
	NearestPoint(p mgl64.Vec3, startSegment float64, searchRadius, stepsPerSegment int) float64
}

// --- bezier helpers ---

// Evaluates a cubic Bezier curve at t.
func Bezier3(t float64, p0, p1, p2, p3 mgl64.Vec4) mgl64.Vec4 {
	d := 1 - t
	return p0.Mul(d * d * d).
		Add(p1.Mul(3 * d * d * t)).
		Add(p2.Mul(3 * d * t * t)).
		Add(p3.Mul(t * t * t))
}

// Evaluates the derivative of a cubic Bezier curve at t.
func BezierTangent3(t float64, p0, p1, p2, p3 mgl64.Vec4) mgl64.Vec4 {
	d := 1 - t
	return p1.Sub(p0).Mul(3 * d * d).
		Add(p2.Sub(p1).Mul(6 * d * t)).
		Add(p3.Sub(p2).Mul(3 * t * t))
}

// Computes the Bezier control points of a C2 continuous curve
// through the knots, with linear ends. ctrl1[i] and ctrl2[i] are the
// control points of the segment from knot i to knot i+1. Both slices
// must be at least as long as knots.
func ComputeSmoothControlPoints(knots, ctrl1, ctrl2 []mgl64.Vec4) {
	numPoints := len(knots)
	switch {
	case numPoints == 0:
		return
	case numPoints == 1:
		ctrl1[0], ctrl2[0] = knots[0], knots[0]
		return
	case numPoints == 2:
		ctrl1[0] = lerpVec4(knots[0], knots[1], 1.0/3)
		ctrl2[0] = lerpVec4(knots[0], knots[1], 2.0/3)
		return
	}

	n := numPoints - 1
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	r := make([]float64, n)
	for axis := range 4 {
		// linear into the first segment, linear out of the last one
		a[0], b[0], c[0] = 0, 2, 1
		r[0] = knots[0][axis] + 2*knots[1][axis]
		for i := 1; i < n-1; i++ {
			a[i], b[i], c[i] = 1, 4, 1
			r[i] = 4*knots[i][axis] + 2*knots[i+1][axis]
		}
		a[n-1], b[n-1], c[n-1] = 2, 7, 0
		r[n-1] = 8*knots[n-1][axis] + knots[n][axis]

		// Thomas algorithm
		for i := 1; i < n; i++ {
			m := a[i] / b[i-1]
			b[i] -= m * c[i-1]
			r[i] -= m * r[i-1]
		}
		ctrl1[n-1][axis] = r[n-1] / b[n-1]
		for i := n - 2; i >= 0; i-- {
			ctrl1[i][axis] = (r[i] - c[i]*ctrl1[i+1][axis]) / b[i]
		}
		for i := 0; i < n-1; i++ {
			ctrl2[i][axis] = 2*knots[i+1][axis] - ctrl1[i+1][axis]
		}
		ctrl2[n-1][axis] = 0.5 * (knots[n][axis] + ctrl1[n-1][axis])
	}
}

// Same as [ComputeSmoothControlPoints]() for a closed curve, where
// an extra segment goes from the last knot back to the first one.
func ComputeSmoothControlPointsLooped(knots, ctrl1, ctrl2 []mgl64.Vec4) {
	numPoints := len(knots)
	if numPoints < 2 {
		if numPoints == 1 {
			ctrl1[0], ctrl2[0] = knots[0], knots[0]
		}
		return
	}

	// solve an open curve padded with wrapped knots on both sides,
	// then keep the middle
	margin := min(4, numPoints-1)
	padded := make([]mgl64.Vec4, numPoints+2*margin)
	paddedCtrl1 := make([]mgl64.Vec4, len(padded))
	paddedCtrl2 := make([]mgl64.Vec4, len(padded))
	for i := range margin {
		padded[i] = knots[numPoints-(margin-i)]
		padded[numPoints+margin+i] = knots[i]
	}
	copy(padded[margin:], knots)
	ComputeSmoothControlPoints(padded, paddedCtrl1, paddedCtrl2)
	copy(ctrl1, paddedCtrl1[margin:margin+numPoints])
	copy(ctrl2, paddedCtrl2[margin:margin+numPoints])
}

func lerpVec4(a, b mgl64.Vec4, t float64) mgl64.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
