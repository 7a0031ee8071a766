// Package motor defines the speed-controlled motors a skid-steer base drives.
package motor

import (
	"context"
)

// A Motor turns at a commanded speed until told otherwise.
type Motor interface {
	// SetRPM runs the motor at `rpm` revolutions per minute. Negative values run it backward.
	SetRPM(ctx context.Context, rpm float64, extra map[string]interface{}) error

	// Stop halts the motor.
	Stop(ctx context.Context, extra map[string]interface{}) error

	// IsPowered returns whether the motor is running and its last commanded RPM.
	IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error)
}

// Dependencies maps motor names to motors.
type Dependencies map[string]Motor

// FromDependencies is a helper for getting the named motor from a collection of dependencies.
func FromDependencies(deps Dependencies, name string) (Motor, error) {
	m, ok := deps[name]
	if !ok {
		return nil, NewMissingMotorError(name)
	}
	if m == nil {
		return nil, NewMissingMotorError(name)
	}
	return m, nil
}
