package motor

import "github.com/pkg/errors"

// NewMissingMotorError returns an error for a motor name that has no motor behind it.
func NewMissingMotorError(motorName string) error {
	return errors.Errorf("no motor named (%s)", motorName)
}

// NewNonFiniteRPMError returns an error representing a request to run a motor at a NaN or
// infinite speed.
func NewNonFiniteRPMError(motorName string, rpm float64) error {
	return errors.Errorf("cannot run motor %s at a non-finite RPM (%v)", motorName, rpm)
}
