package store

import "errors"

// Common store errors
var (
	// ErrJobNotFound is returned when a job with the given ID does not exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrDeviceNotFound is returned when a device with the given ID does not exist.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being persisted.
	ErrInvalidEntity = errors.New("invalid entity")
)
