package utils

import (
	"github.com/pkg/errors"
)

// NewAttributeTypeError is used when an attribute holds a value that cannot be converted.
func NewAttributeTypeError(name, expected string, actual interface{}) error {
	return errors.Errorf("wanted %s for attribute %q but got (%v) %T", expected, name, actual, actual)
}
