package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Claims are the validated contents of a device access token.
type Claims struct {
	DeviceID  uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// JWTService issues and validates device access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the device.
	GenerateToken(ctx context.Context, deviceID uuid.UUID) (string, error)

	// ValidateToken validates an access token and returns its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken
	// on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
