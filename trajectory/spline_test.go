package trajectory

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/integrate/quad"
)

func TestSplineEndpoints(t *testing.T) {
	s := newSpline(NewWaypoint(0, 0, 0), NewWaypoint(1, 1, 90))

	test.That(t, s.point(0).X, test.ShouldAlmostEqual, 0)
	test.That(t, s.point(1).X, test.ShouldAlmostEqual, 1)
	test.That(t, s.point(1).Y, test.ShouldAlmostEqual, 1)
	test.That(t, s.heading(0), test.ShouldAlmostEqual, 0)
	test.That(t, s.heading(1), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, s.speed(0), test.ShouldAlmostEqual, math.Sqrt2)

	// Zero second derivative at the knots means zero curvature there.
	test.That(t, s.curvature(0), test.ShouldAlmostEqual, 0)
	test.That(t, s.curvature(1), test.ShouldAlmostEqual, 0)
	test.That(t, s.curvature(0.5), test.ShouldBeGreaterThan, 0)
}

func TestSplineArcLength(t *testing.T) {
	line := newSpline(NewWaypoint(0, 0, 0), NewWaypoint(2, 0, 0))
	test.That(t, line.arcLength(0, 1), test.ShouldAlmostEqual, 2, 1e-9)

	curve := newSpline(NewWaypoint(0, 0, 0), NewWaypoint(1, 1, 90))
	table := curve.tabulate(512)
	// A quarter-circle-like arc of radius 1 is a little longer than the chord.
	test.That(t, table.length(), test.ShouldBeBetween, math.Sqrt2, math.Pi/2+0.1)

	dense := curve.tabulate(4096)
	test.That(t, table.length(), test.ShouldAlmostEqual, dense.length(), 1e-9)

	for _, frac := range []float64{0, 0.1, 0.25, 0.5, 0.9, 1} {
		dist := frac * table.length()
		u := curve.paramAt(table, dist)
		test.That(t, quad.Fixed(curve.speed, 0, u, 64, nil, 0), test.ShouldAlmostEqual, dist, 1e-7)
	}
}
