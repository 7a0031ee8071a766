package trajectory

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/treadline/pathfollow/utils"
)

const (
	// gridSpacing is the target arc-length step of the profiling grid, in metres.
	gridSpacing = 0.001
	// minGridPoints keeps at least one interior point so the profile never has two zero
	// velocities in a row.
	minGridPoints = 3
	// minTableIntervals and tableIntervalsPerGridStep size the arc-length table of each spline.
	minTableIntervals         = 256
	tableIntervalsPerGridStep = 4
	// cuspTangentRatio is the smallest tangent magnitude, relative to the chord, a spline may
	// reach before it is treated as folding back on itself.
	cuspTangentRatio = 0.01
)

// gridPoint is one point of the arc-length grid with the velocity limit imposed by its curvature.
type gridPoint struct {
	dist        float64
	pos         [2]float64
	heading     float64
	curvature   float64
	maxVelocity float64
}

// curvatureVelocityLimit is the highest centre speed at which the outer wheel stays within
// maxVelocity for the given curvature.
func curvatureVelocityLimit(maxVelocity, curvature, trackWidth float64) float64 {
	return maxVelocity / (1 + math.Abs(curvature)*trackWidth/2)
}

// buildGrid lays an evenly spaced arc-length grid over the concatenated splines and checks the
// geometry for cusps and excessive curvature.
func buildGrid(splines []spline, c Constraints) ([]gridPoint, error) {
	tables := make([]arcTable, len(splines))
	starts := make([]float64, len(splines)+1)
	for i, s := range splines {
		intervals := int(math.Ceil(tableIntervalsPerGridStep * s.chord / gridSpacing))
		if intervals < minTableIntervals {
			intervals = minTableIntervals
		}
		tables[i] = s.tabulate(intervals)

		slowest := floats.MinIdx(tables[i].speeds)
		if ratio := tables[i].speeds[slowest] / s.chord; ratio < cuspTangentRatio {
			return nil, &InfeasiblePathError{
				Cause:   CauseCusp,
				Segment: i,
				Sample:  slowest,
				Value:   ratio,
				Limit:   cuspTangentRatio,
			}
		}
		starts[i+1] = starts[i] + tables[i].length()
	}

	total := starts[len(splines)]
	count := int(math.Ceil(total/gridSpacing)) + 1
	if count < minGridPoints {
		count = minGridPoints
	}
	dists := make([]float64, count)
	floats.Span(dists, 0, total)

	grid := make([]gridPoint, count)
	seg := 0
	for i, dist := range dists {
		for seg < len(splines)-1 && dist > starts[seg+1] {
			seg++
		}
		s := splines[seg]
		u := s.paramAt(tables[seg], dist-starts[seg])
		p := s.point(u)
		k := s.curvature(u)
		if math.Abs(k) > c.MaxCurvature {
			return nil, &InfeasiblePathError{
				Cause:   CauseCurvature,
				Segment: seg,
				Sample:  i,
				Value:   math.Abs(k),
				Limit:   c.MaxCurvature,
			}
		}
		grid[i] = gridPoint{
			dist:        dist,
			pos:         [2]float64{p.X, p.Y},
			heading:     s.heading(u),
			curvature:   k,
			maxVelocity: curvatureVelocityLimit(c.MaxVelocity, k, c.TrackWidth),
		}
	}
	return grid, nil
}

// smoothingWindow is the moving-average width that turns an acceleration-limited profile into
// a jerk-limited one. Averaging over w changes acceleration by at most 2*MaxAcceleration/w per
// second, since the raw acceleration swings between -MaxAcceleration and +MaxAcceleration.
func smoothingWindow(c Constraints) float64 {
	return 2 * c.MaxAcceleration / c.MaxJerk
}

// accelerationPass walks the grid from rest and raises the velocity as fast as MaxAcceleration
// allows without crossing a limit.
func accelerationPass(limits []float64, ds, maxAcceleration float64) []float64 {
	v := make([]float64, len(limits))
	for i := 0; i < len(limits)-1; i++ {
		v[i+1] = math.Min(limits[i+1], math.Sqrt(v[i]*v[i]+2*maxAcceleration*ds))
	}
	return v
}

// velocityProfile returns the acceleration-limited velocity at every grid point. Each limit is
// first lowered to the smallest limit within reach of it, so that averaging the profile over any
// stretch no longer than reach stays under the limit at the averaged position. The forward pass
// ramps up from rest, the backward pass ramps down to rest and the pointwise minimum meets both.
func velocityProfile(grid []gridPoint, reach float64, c Constraints) []float64 {
	n := len(grid)
	ds := grid[1].dist - grid[0].dist
	radius := int(math.Ceil(reach / ds))

	raw := make([]float64, n)
	for i, gp := range grid {
		raw[i] = gp.maxVelocity
	}
	limits := make([]float64, n)
	for i := range limits {
		limits[i] = floats.Min(raw[max(0, i-radius):min(n, i+radius+1)])
	}
	forward := accelerationPass(limits, ds, c.MaxAcceleration)

	reversed := make([]float64, n)
	for i := range limits {
		reversed[i] = limits[n-1-i]
	}
	backward := accelerationPass(reversed, ds, c.MaxAcceleration)

	velocities := make([]float64, n)
	for i := range velocities {
		velocities[i] = math.Min(forward[i], backward[n-1-i])
	}
	return velocities
}

// motion is a grid velocity profile in time. Between grid points the acceleration is constant.
type motion struct {
	times     []float64
	dists     []float64
	vels      []float64
	accels    []float64
	integrals []float64
	duration  float64
	length    float64
}

func newMotion(grid []gridPoint, velocities []float64) motion {
	n := len(grid)
	m := motion{
		times:     make([]float64, n),
		dists:     make([]float64, n),
		vels:      velocities,
		accels:    make([]float64, n),
		integrals: make([]float64, n),
	}
	for i := range grid {
		m.dists[i] = grid[i].dist
	}
	for i := 0; i < n-1; i++ {
		ds := m.dists[i+1] - m.dists[i]
		dt := 2 * ds / (velocities[i] + velocities[i+1])
		m.accels[i] = (velocities[i+1] - velocities[i]) / dt
		m.times[i+1] = m.times[i] + dt
		m.integrals[i+1] = m.integrals[i] + m.dists[i]*dt + velocities[i]*dt*dt/2 + m.accels[i]*dt*dt*dt/6
	}
	m.duration = m.times[n-1]
	m.length = m.dists[n-1]
	return m
}

// interval returns the grid interval that holds t and the time since it started.
func (m motion) interval(t float64) (int, float64) {
	i := sort.SearchFloat64s(m.times, t) - 1
	i = max(0, min(i, len(m.times)-2))
	return i, t - m.times[i]
}

// position returns the distance travelled at time t. The motion rests at either end.
func (m motion) position(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= m.duration:
		return m.length
	}
	i, u := m.interval(t)
	return m.dists[i] + m.vels[i]*u + m.accels[i]*u*u/2
}

// integral returns the integral of position from time zero to t.
func (m motion) integral(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= m.duration:
		return m.integrals[len(m.integrals)-1] + m.length*(t-m.duration)
	}
	i, u := m.interval(t)
	return m.integrals[i] + m.dists[i]*u + m.vels[i]*u*u/2 + m.accels[i]*u*u*u/6
}

// resample averages the motion over a trailing window of at least `window` seconds and samples
// the result every SamplePeriod. The window is stretched so the averaged motion ends exactly on a
// sample, at rest at the end of the path.
func resample(grid []gridPoint, m motion, window float64, c Constraints) Trajectory {
	n := len(grid)
	ds := grid[1].dist - grid[0].dist
	dt := c.SamplePeriod.Seconds()
	steps := int(math.Ceil((m.duration + window) / dt))
	window = float64(steps)*dt - m.duration

	out := make(Trajectory, steps+1)
	for k := range out {
		t := float64(k) * dt
		velocity := (m.position(t) - m.position(t-window)) / window
		dist := (m.integral(t) - m.integral(t-window)) / window
		if k == steps {
			velocity, dist = 0, m.length
		}

		idx := min(max(int(dist/ds), 0), n-2)
		frac := math.Max(0, math.Min(1, (dist-grid[idx].dist)/ds))
		lerp := func(a, b float64) float64 { return a + (b-a)*frac }

		from, to := grid[idx], grid[idx+1]
		curvature := lerp(from.curvature, to.curvature)
		// Only rounding can lift the velocity over the curvature limit here.
		velocity = math.Min(velocity, curvatureVelocityLimit(c.MaxVelocity, curvature, c.TrackWidth))
		out[k] = Segment{
			X:         lerp(from.pos[0], to.pos[0]),
			Y:         lerp(from.pos[1], to.pos[1]),
			Position:  dist,
			Velocity:  math.Max(0, velocity),
			Heading:   utils.WrapAngle(from.heading + utils.WrapAngle(to.heading-from.heading)*frac),
			Curvature: curvature,
			Dt:        c.SamplePeriod,
		}
	}
	out.RebuildDerivatives()
	return out
}
