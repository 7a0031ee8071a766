// Package kinematics converts centre-line trajectories into wheel trajectories for a differential
// drive and applies the playback transforms (mirror, reverse) at execution time.
package kinematics

import (
	"math"

	"github.com/treadline/pathfollow/trajectory"
)

// Split converts a centre-line trajectory into left and right wheel trajectories for a drive
// whose wheels are trackWidth apart. Positive curvature turns left, so the left wheel is on the
// inside:
//
//	vLeft  = v * (1 - curvature*trackWidth/2)
//	vRight = v * (1 + curvature*trackWidth/2)
//
// Wheel positions are offset by half the track width normal to the heading, and each wheel's
// travelled distance and acceleration are integrated from its own velocity.
func Split(central trajectory.Trajectory, trackWidth float64) trajectory.Pair {
	half := trackWidth / 2
	left := make(trajectory.Trajectory, len(central))
	right := make(trajectory.Trajectory, len(central))
	for i, seg := range central {
		sin, cos := math.Sincos(seg.Heading)
		l, r := seg, seg
		l.Velocity = seg.Velocity * (1 - seg.Curvature*half)
		r.Velocity = seg.Velocity * (1 + seg.Curvature*half)
		l.X, l.Y = seg.X-half*sin, seg.Y+half*cos
		r.X, r.Y = seg.X+half*sin, seg.Y-half*cos
		left[i], right[i] = l, r
	}
	integratePositions(left)
	integratePositions(right)
	left.RebuildDerivatives()
	right.RebuildDerivatives()
	return trajectory.Pair{Left: left, Right: right}
}

// integratePositions sets each sample's position to the signed distance covered since the first
// sample, integrating velocity with the trapezoid rule.
func integratePositions(traj trajectory.Trajectory) {
	for i := range traj {
		if i == 0 {
			traj[i].Position = 0
			continue
		}
		prev := traj[i-1]
		traj[i].Position = prev.Position + (prev.Velocity+traj[i].Velocity)/2*prev.Dt.Seconds()
	}
}

// Mirror swaps the left and right trajectories, so a path curving left is driven curving right.
func Mirror(pair trajectory.Pair) trajectory.Pair {
	return trajectory.Pair{Left: pair.Right, Right: pair.Left}
}

// Reverse drives the pair backwards: samples are replayed in reverse order with negated
// velocities and positions, ending where the forward replay started. The input is not modified.
func Reverse(pair trajectory.Pair) trajectory.Pair {
	return trajectory.Pair{Left: reverse(pair.Left), Right: reverse(pair.Right)}
}

func reverse(traj trajectory.Trajectory) trajectory.Trajectory {
	out := make(trajectory.Trajectory, len(traj))
	if len(traj) == 0 {
		return out
	}
	length := traj[len(traj)-1].Position
	for i := range traj {
		seg := traj[len(traj)-1-i]
		seg.Velocity = -seg.Velocity
		seg.Position -= length
		// Dt belongs to the step leaving a sample; in reverse the step leaving sample i is the
		// one that entered it going forward.
		if j := len(traj) - 2 - i; j >= 0 {
			seg.Dt = traj[j].Dt
		}
		out[i] = seg
	}
	out.RebuildDerivatives()
	return out
}

// Apply composes the playback transforms selected for a target.
func Apply(pair trajectory.Pair, backward, mirrored bool) trajectory.Pair {
	if mirrored {
		pair = Mirror(pair)
	}
	if backward {
		pair = Reverse(pair)
	}
	return pair
}

// LinearToRotational converts a wheel's linear speed into motor speed in revolutions per minute.
// wheelDiameter uses the same length unit as linearSpeed (per second), and gearRatio is motor
// revolutions per wheel revolution.
func LinearToRotational(linearSpeed, wheelDiameter, gearRatio float64) float64 {
	return linearSpeed / (math.Pi * wheelDiameter) * 60 * gearRatio
}

// GeneratePair generates the centre-line trajectory through the waypoints and splits it for the
// constraints' track width.
func GeneratePair(waypoints []trajectory.Waypoint, constraints trajectory.Constraints) (trajectory.Pair, error) {
	central, err := trajectory.Generate(waypoints, constraints)
	if err != nil {
		return trajectory.Pair{}, err
	}
	return Split(central, constraints.TrackWidth), nil
}
