package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/service/auth"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidDeviceKey):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrJobNotFound),
		errors.Is(err, store.ErrDeviceNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, service.ErrUnknownEvent),
		errors.Is(err, service.ErrExportNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicateCode),
		errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidDeviceKey):
		return "Invalid device credentials"

	// Not found errors
	case errors.Is(err, store.ErrJobNotFound):
		return "Unknown task"

	case errors.Is(err, store.ErrDeviceNotFound):
		return "Device not found"

	case errors.Is(err, store.ErrOrderNotFound):
		return "Order not found"

	case errors.Is(err, service.ErrUnknownEvent):
		return "Unknown event"

	case errors.Is(err, service.ErrExportNotFound):
		return "Export not found"

	// Conflict errors
	case errors.Is(err, service.ErrQuotaExceeded):
		return "The event is sold out"

	case errors.Is(err, store.ErrDuplicateCode):
		return "Order code collision, please retry"

	// Validation errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// ValidationErrorMessage builds a user-facing message for request
// validation failures without echoing submitted values back.
func ValidationErrorMessage(err error) string {
	if err == nil {
		return "Validation failed"
	}
	fields := extractFieldNames(err.Error())
	if len(fields) == 0 {
		return "Validation failed"
	}
	return fmt.Sprintf("Validation failed for: %s", strings.Join(fields, ", "))
}

// extractFieldNames pulls the struct field names out of a validator
// error string of the form "Key: 'Type.Field' Error:...".
func extractFieldNames(errMsg string) []string {
	var fields []string
	for _, part := range strings.Split(errMsg, "\n") {
		start := strings.Index(part, "'")
		if start < 0 {
			continue
		}
		end := strings.Index(part[start+1:], "'")
		if end < 0 {
			continue
		}
		name := part[start+1 : start+1+end]
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			name = name[dot+1:]
		}
		fields = append(fields, name)
	}
	return fields
}
