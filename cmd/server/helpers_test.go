package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/service/auth"
)

// seedDevice hashes the key and stores a device for login tests.
func seedDevice(t *testing.T, app *application, name, key string) *domain.Device {
	t.Helper()

	hash, err := auth.HashKey(key)
	require.NoError(t, err)

	device := &domain.Device{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, app.deviceStore.SaveDevice(context.Background(), device))
	return device
}
