package core

import (
	"errors"
)

var (
	// ErrCapacityExceeded is returned when the command buffer, payload arena or a
	// fixed-size registry has no room left.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrResourceCreationFailed is returned when the remote reported id 0 or fired
	// the error callback while creating a resource.
	ErrResourceCreationFailed = errors.New("resource creation failed")
	// ErrInvalidProjectionBounds rejects degenerate camera projections.
	ErrInvalidProjectionBounds = errors.New("invalid projection bounds")
	// ErrShaderProgramCreationFailed aborts renderer setup.
	ErrShaderProgramCreationFailed = errors.New("shader program creation failed")

	ErrInvalidHandle   = errors.New("invalid resource handle")
	ErrFrameState      = errors.New("frame call out of order")
	ErrRequestInFlight = errors.New("another resource request is in flight")
	ErrNoResult        = errors.New("remote did not report a result")
)
