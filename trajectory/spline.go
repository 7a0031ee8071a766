package trajectory

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/integrate/quad"
)

// quadNodes is the Gauss-Legendre order used for each arc-length sub-interval. The speed along a
// quintic is smooth, so a low order is exact to well below a micrometre at millimetre spacing.
const quadNodes = 5

// spline is a quintic Hermite curve between two waypoints. The end tangents point along the
// waypoint headings with magnitude equal to the chord, and the second derivative is zero at both
// ends so consecutive splines join with continuous curvature.
type spline struct {
	p0, p1 r2.Point
	t0, t1 r2.Point
	chord  float64
}

func newSpline(from, to Waypoint) spline {
	p0 := r2.Point{X: from.X, Y: from.Y}
	p1 := r2.Point{X: to.X, Y: to.Y}
	chord := p1.Sub(p0).Norm()
	return spline{
		p0:    p0,
		p1:    p1,
		t0:    r2.Point{X: math.Cos(from.Heading), Y: math.Sin(from.Heading)}.Mul(chord),
		t1:    r2.Point{X: math.Cos(to.Heading), Y: math.Sin(to.Heading)}.Mul(chord),
		chord: chord,
	}
}

func (s spline) combine(h00, h10, h01, h11 float64) r2.Point {
	return s.p0.Mul(h00).Add(s.t0.Mul(h10)).Add(s.p1.Mul(h01)).Add(s.t1.Mul(h11))
}

// point returns the position at parameter u in [0, 1].
func (s spline) point(u float64) r2.Point {
	u2 := u * u
	u3 := u2 * u
	u4 := u3 * u
	u5 := u4 * u
	return s.combine(
		1-10*u3+15*u4-6*u5,
		u-6*u3+8*u4-3*u5,
		10*u3-15*u4+6*u5,
		-4*u3+7*u4-3*u5,
	)
}

// derivative returns dP/du.
func (s spline) derivative(u float64) r2.Point {
	u2 := u * u
	u3 := u2 * u
	u4 := u3 * u
	return s.combine(
		-30*u2+60*u3-30*u4,
		1-18*u2+32*u3-15*u4,
		30*u2-60*u3+30*u4,
		-12*u2+28*u3-15*u4,
	)
}

// secondDerivative returns d²P/du².
func (s spline) secondDerivative(u float64) r2.Point {
	u2 := u * u
	u3 := u2 * u
	return s.combine(
		-60*u+180*u2-120*u3,
		-36*u+96*u2-60*u3,
		60*u-180*u2+120*u3,
		-24*u+84*u2-60*u3,
	)
}

// speed returns |dP/du|.
func (s spline) speed(u float64) float64 {
	return s.derivative(u).Norm()
}

// heading returns the direction of travel at u.
func (s spline) heading(u float64) float64 {
	d := s.derivative(u)
	return math.Atan2(d.Y, d.X)
}

// curvature returns the signed curvature at u, positive when turning counter-clockwise.
func (s spline) curvature(u float64) float64 {
	d := s.derivative(u)
	dd := s.secondDerivative(u)
	sp := d.Norm()
	if sp == 0 {
		return math.Inf(1)
	}
	return d.Cross(dd) / (sp * sp * sp)
}

// arcLength integrates the speed over [from, to].
func (s spline) arcLength(from, to float64) float64 {
	return quad.Fixed(s.speed, from, to, quadNodes, nil, 0)
}

// arcTable tabulates cumulative arc length at evenly spaced parameter values.
type arcTable struct {
	params []float64
	lens   []float64
	speeds []float64
}

func (s spline) tabulate(intervals int) arcTable {
	table := arcTable{
		params: make([]float64, intervals+1),
		lens:   make([]float64, intervals+1),
		speeds: make([]float64, intervals+1),
	}
	for i := 0; i <= intervals; i++ {
		u := float64(i) / float64(intervals)
		table.params[i] = u
		table.speeds[i] = s.speed(u)
		if i > 0 {
			table.lens[i] = table.lens[i-1] + s.arcLength(table.params[i-1], u)
		}
	}
	return table
}

func (t arcTable) length() float64 {
	return t.lens[len(t.lens)-1]
}

// paramAt inverts the table: it returns the parameter whose arc length from the start is
// `dist`, refined with one Newton step on the exact arc length.
func (s spline) paramAt(t arcTable, dist float64) float64 {
	if dist <= 0 {
		return 0
	}
	if dist >= t.length() {
		return 1
	}
	lo, hi := 0, len(t.lens)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if t.lens[mid] <= dist {
			lo = mid
		} else {
			hi = mid
		}
	}
	frac := (dist - t.lens[lo]) / (t.lens[hi] - t.lens[lo])
	u := t.params[lo] + frac*(t.params[hi]-t.params[lo])
	if sp := s.speed(u); sp > 0 {
		u -= (t.lens[lo] + s.arcLength(t.params[lo], u) - dist) / sp
	}
	return math.Min(math.Max(u, t.params[lo]), t.params[hi])
}
