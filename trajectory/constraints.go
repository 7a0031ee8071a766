package trajectory

import (
	"math"
	"time"

	"github.com/treadline/pathfollow/utils"
)

const (
	// DefaultSamplePeriod is the time step between output samples.
	DefaultSamplePeriod = 10 * time.Millisecond
	// MaxSamplePeriod is the longest step that fits the persisted millisecond field.
	MaxSamplePeriod = math.MaxUint16 * time.Millisecond

	// defaultCurvatureTrackWidths bounds curvature at 4/trackWidth, a turning radius of a
	// quarter track width.
	defaultCurvatureTrackWidths = 4
)

// Constraints are the kinematic limits a generated path respects. Lengths are in metres and time
// in seconds.
type Constraints struct {
	MaxVelocity     float64
	MaxAcceleration float64
	MaxJerk         float64
	TrackWidth      float64

	// SamplePeriod defaults to DefaultSamplePeriod. It must be a whole number of milliseconds.
	SamplePeriod time.Duration
	// MaxCurvature defaults to 4/TrackWidth.
	MaxCurvature float64
}

// WithDefaults returns a copy with unset optional fields filled in.
func (c Constraints) WithDefaults() Constraints {
	if c.SamplePeriod == 0 {
		c.SamplePeriod = DefaultSamplePeriod
	}
	if c.MaxCurvature == 0 && c.TrackWidth > 0 {
		c.MaxCurvature = defaultCurvatureTrackWidths / c.TrackWidth
	}
	return c
}

// Validate returns an InvalidPathError when a limit is missing, non-positive or not finite.
func (c Constraints) Validate() error {
	limits := []struct {
		name  string
		value float64
	}{
		{"max velocity", c.MaxVelocity},
		{"max acceleration", c.MaxAcceleration},
		{"max jerk", c.MaxJerk},
		{"track width", c.TrackWidth},
		{"max curvature", c.MaxCurvature},
	}
	for _, limit := range limits {
		if !utils.IsFinite(limit.value) || limit.value <= 0 {
			return newInvalidPathError("%s must be positive and finite, got %v", limit.name, limit.value)
		}
	}
	if c.SamplePeriod < time.Millisecond || c.SamplePeriod > MaxSamplePeriod {
		return newInvalidPathError("sample period must be between 1ms and %v, got %v", MaxSamplePeriod, c.SamplePeriod)
	}
	if c.SamplePeriod%time.Millisecond != 0 {
		return newInvalidPathError("sample period must be a whole number of milliseconds, got %v", c.SamplePeriod)
	}
	return nil
}
