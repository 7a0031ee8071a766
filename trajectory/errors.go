package trajectory

import (
	"fmt"

	"github.com/pkg/errors"
)

// An InvalidPathError is returned when the waypoints or constraints cannot describe a path at all:
// fewer than two waypoints, non-finite values, coincident consecutive waypoints or non-positive
// limits.
type InvalidPathError struct {
	Reason string
}

func (e *InvalidPathError) Error() string {
	return "invalid path: " + e.Reason
}

func newInvalidPathError(format string, args ...interface{}) error {
	return &InvalidPathError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidPathError returns whether err is or wraps an InvalidPathError.
func IsInvalidPathError(err error) bool {
	var target *InvalidPathError
	return errors.As(err, &target)
}

// InfeasibleCause is the machine-readable reason a path cannot be followed.
type InfeasibleCause string

const (
	// CauseCusp means the fitted curve folds back on itself: its tangent collapses.
	CauseCusp = InfeasibleCause("cusp")
	// CauseCurvature means the curve turns tighter than the curvature limit.
	CauseCurvature = InfeasibleCause("curvature")
)

// An InfeasiblePathError is returned when the path geometry cannot be followed under the
// constraints. Segment is the index of the waypoint pair, Sample the index along the arc-length
// grid (or along the spline parameter table for a cusp). Value exceeded Limit.
type InfeasiblePathError struct {
	Cause   InfeasibleCause
	Segment int
	Sample  int
	Value   float64
	Limit   float64
}

func (e *InfeasiblePathError) Error() string {
	switch e.Cause {
	case CauseCusp:
		return fmt.Sprintf("infeasible path: segment %d folds back on itself near sample %d (tangent %.4g of chord, need %.4g)",
			e.Segment, e.Sample, e.Value, e.Limit)
	case CauseCurvature:
		return fmt.Sprintf("infeasible path: curvature %.4g exceeds limit %.4g in segment %d at sample %d",
			e.Value, e.Limit, e.Segment, e.Sample)
	default:
		return fmt.Sprintf("infeasible path: %s in segment %d at sample %d", e.Cause, e.Segment, e.Sample)
	}
}

// IsInfeasiblePathError returns whether err is or wraps an InfeasiblePathError.
func IsInfeasiblePathError(err error) bool {
	var target *InfeasiblePathError
	return errors.As(err, &target)
}
