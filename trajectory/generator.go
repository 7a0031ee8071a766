package trajectory

import (
	"github.com/treadline/pathfollow/utils"
)

// Generate fits a curve through the waypoints and returns the centre-line trajectory sampled
// every constraints.SamplePeriod. It starts and ends at rest and never exceeds the velocity,
// acceleration or jerk limits; the velocity is further capped so that, once split into wheel
// trajectories, neither wheel exceeds MaxVelocity.
//
// The velocity is first profiled over an arc-length grid under the acceleration limit, then
// averaged over a moving window of 2*MaxAcceleration/MaxJerk seconds, which bounds the jerk.
// Curvature limits are tightened beforehand by the distance one window can cover, so the
// averaging never lifts the velocity over them. Averaging adds one window to the duration.
//
// It fails with an InvalidPathError when there are fewer than two waypoints, a value is not
// finite, consecutive waypoints coincide, or a limit is not positive. It fails with an
// InfeasiblePathError when the fitted curve folds back on itself or turns tighter than
// MaxCurvature. The result depends only on its inputs.
func Generate(waypoints []Waypoint, constraints Constraints) (Trajectory, error) {
	c := constraints.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := validateWaypoints(waypoints); err != nil {
		return nil, err
	}

	splines := make([]spline, 0, len(waypoints)-1)
	for i := 0; i < len(waypoints)-1; i++ {
		splines = append(splines, newSpline(waypoints[i], waypoints[i+1]))
	}

	grid, err := buildGrid(splines, c)
	if err != nil {
		return nil, err
	}
	// The averaged motion covers at most MaxVelocity*window, and the window may grow by up to one
	// sample period to end on a sample. Two grid steps cover the interpolation on either side.
	window := smoothingWindow(c)
	ds := grid[1].dist - grid[0].dist
	reach := c.MaxVelocity*(window+c.SamplePeriod.Seconds()) + 2*ds
	m := newMotion(grid, velocityProfile(grid, reach, c))
	return resample(grid, m, window, c), nil
}

// minWaypointSeparation is the distance below which consecutive waypoints are coincident.
const minWaypointSeparation = 1e-6

func validateWaypoints(waypoints []Waypoint) error {
	if len(waypoints) < 2 {
		return newInvalidPathError("need at least 2 waypoints, got %d", len(waypoints))
	}
	for i, wp := range waypoints {
		if !utils.IsFinite(wp.X, wp.Y, wp.Heading) {
			return newInvalidPathError("waypoint %d is not finite: %+v", i, wp)
		}
		if i == 0 {
			continue
		}
		prev := waypoints[i-1]
		if dx, dy := wp.X-prev.X, wp.Y-prev.Y; dx*dx+dy*dy < minWaypointSeparation*minWaypointSeparation {
			return newInvalidPathError("waypoints %d and %d coincide", i-1, i)
		}
	}
	return nil
}
