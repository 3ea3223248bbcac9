package service

import "errors"

// Common service errors
var (
	// ErrQuotaExceeded is returned when an event has no capacity left
	// for another order.
	ErrQuotaExceeded = errors.New("event quota exceeded")

	// ErrUnknownEvent is returned when an operation references an event
	// this installation does not sell tickets for.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrExportNotFound is returned when a download is requested for an
	// export that does not exist.
	ErrExportNotFound = errors.New("export not found")
)
