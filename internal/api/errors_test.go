package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/service/auth"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{auth.ErrInvalidDeviceKey, http.StatusUnauthorized},
		{store.ErrJobNotFound, http.StatusNotFound},
		{store.ErrDeviceNotFound, http.StatusNotFound},
		{store.ErrOrderNotFound, http.StatusNotFound},
		{service.ErrUnknownEvent, http.StatusNotFound},
		{service.ErrExportNotFound, http.StatusNotFound},
		{service.ErrQuotaExceeded, http.StatusConflict},
		{store.ErrDuplicateCode, http.StatusConflict},
		{store.ErrInvalidEntity, http.StatusBadRequest},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err), "error: %v", tc.err)
	}
}

func TestMapErrorToStatusCodeWrapped(t *testing.T) {
	wrapped := fmt.Errorf("refusing order: %w", service.ErrQuotaExceeded)
	assert.Equal(t, http.StatusConflict, MapErrorToStatusCode(wrapped))
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "The event is sold out", GetSafeErrorMessage(service.ErrQuotaExceeded))
	assert.Equal(t, "Unknown task", GetSafeErrorMessage(store.ErrJobNotFound))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	// Internal details never reach the message.
	internal := errors.New("pg: connection to postgres://u:p@host failed")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "Validation failed", ValidationErrorMessage(nil))
	assert.Equal(t, "Validation failed", ValidationErrorMessage(errors.New("boom")))
}
