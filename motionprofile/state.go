package motionprofile

import (
	"context"
	"fmt"
)

// Drive is a drive model that accepts independent left and right motor speeds.
type Drive interface {
	SetVelocity(ctx context.Context, leftRPM, rightRPM float64) error
	Stop(ctx context.Context) error
}

// State is where the controller is in following its target.
type State int

const (
	// Idle means no target is set.
	Idle State = iota
	// Tracking means the target is being replayed, one sample per tick.
	Tracking
	// Settled means the target finished, or was abandoned, and the drive was stopped.
	Settled
	// Disabled means execution is suspended and the drive was stopped.
	Disabled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	case Settled:
		return "settled"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Target names the path being followed and how it is followed.
type Target struct {
	PathID   string
	Backward bool
	Mirrored bool
}
