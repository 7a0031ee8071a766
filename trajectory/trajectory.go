// Package trajectory generates time-parameterized, velocity, acceleration and jerk limited paths
// through a list of waypoints for a skid-steer vehicle.
package trajectory

import (
	"time"

	"github.com/pkg/errors"

	"github.com/treadline/pathfollow/utils"
)

// Waypoint is a pose the path passes through. X and Y are in metres; Heading is in radians,
// counter-clockwise from +X.
type Waypoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// NewWaypoint builds a waypoint from a position in metres and a heading in degrees.
func NewWaypoint(x, y, headingDeg float64) Waypoint {
	return Waypoint{X: x, Y: y, Heading: utils.DegToRad(headingDeg)}
}

// Segment is one time step of a trajectory. Position is the signed distance travelled along the
// path since the first sample. Dt is the duration of this step and Time the elapsed time at its
// start.
type Segment struct {
	X            float64
	Y            float64
	Position     float64
	Velocity     float64
	Acceleration float64
	Jerk         float64
	Heading      float64
	Curvature    float64
	Dt           time.Duration
	Time         time.Duration
}

// Trajectory is a sequence of segments in strictly increasing time order.
type Trajectory []Segment

// Len returns the number of samples.
func (t Trajectory) Len() int {
	return len(t)
}

// Duration returns the elapsed time at the final sample.
func (t Trajectory) Duration() time.Duration {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Time
}

// Velocities returns the velocity of every sample.
func (t Trajectory) Velocities() []float64 {
	out := make([]float64, len(t))
	for i, seg := range t {
		out[i] = seg.Velocity
	}
	return out
}

// RebuildDerivatives recomputes Time, Acceleration and Jerk from Velocity and Dt. The first
// sample starts at time zero with zero acceleration and jerk.
func (t Trajectory) RebuildDerivatives() {
	var elapsed time.Duration
	for i := range t {
		t[i].Time = elapsed
		elapsed += t[i].Dt
		if i == 0 {
			t[i].Acceleration = 0
			t[i].Jerk = 0
			continue
		}
		dt := t[i-1].Dt.Seconds()
		t[i].Acceleration = (t[i].Velocity - t[i-1].Velocity) / dt
		t[i].Jerk = (t[i].Acceleration - t[i-1].Acceleration) / dt
	}
}

// Pair is the left and right wheel trajectories derived from one central trajectory.
type Pair struct {
	Left  Trajectory
	Right Trajectory
}

// Len returns the number of samples per side.
func (p Pair) Len() int {
	return len(p.Left)
}

// Validate checks that both sides are non-empty, have the same length and share a cadence.
func (p Pair) Validate() error {
	if len(p.Left) == 0 || len(p.Right) == 0 {
		return errors.New("trajectory pair has no samples")
	}
	if len(p.Left) != len(p.Right) {
		return errors.Errorf("trajectory pair has %d left samples but %d right samples", len(p.Left), len(p.Right))
	}
	for i := range p.Left {
		if p.Left[i].Dt != p.Right[i].Dt {
			return errors.Errorf("trajectory pair sample %d has left dt %v but right dt %v", i, p.Left[i].Dt, p.Right[i].Dt)
		}
	}
	return nil
}
