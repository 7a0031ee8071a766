package pathstore

import (
	"fmt"

	"github.com/pkg/errors"
)

// A NotFoundError is returned when a path ID is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path %q not found", e.ID)
}

// NewNotFoundError returns a NotFoundError for the given ID.
func NewNotFoundError(id string) error {
	return &NotFoundError{ID: id}
}

// IsNotFoundError returns whether err is or wraps a NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// A CorruptPathError is returned when persisted path data cannot be decoded.
type CorruptPathError struct {
	ID     string
	Reason string
}

func (e *CorruptPathError) Error() string {
	return fmt.Sprintf("path %q is corrupt: %s", e.ID, e.Reason)
}

func newCorruptPathError(id, format string, args ...interface{}) error {
	return &CorruptPathError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

// IsCorruptPathError returns whether err is or wraps a CorruptPathError.
func IsCorruptPathError(err error) bool {
	var target *CorruptPathError
	return errors.As(err, &target)
}
