package motionprofile

import "github.com/pkg/errors"

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("path controller is closed")
