// Package auth provides token-based authentication for check-in
// devices: bcrypt verification of pre-shared device keys and issuance
// and validation of the JWT access tokens devices use on every request.
package auth

import "errors"

// Common authentication errors
var (
	// ErrInvalidToken is returned when a token is malformed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's validity window
	// has not started yet.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrInvalidDeviceKey is returned when a device presents a key that
	// does not match the stored hash.
	ErrInvalidDeviceKey = errors.New("invalid device key")
)
