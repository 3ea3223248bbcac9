package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Device
var (
	ErrEmptyDeviceName    = errors.New("device name cannot be empty")
	ErrEmptyDeviceKeyHash = errors.New("device key hash cannot be empty")
)

// Device represents a check-in device or box office terminal that
// authenticates against the API with a pre-shared key. Only the bcrypt
// hash of the key is stored.
type Device struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	KeyHash   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDevice creates a Device with the given name and key hash.
func NewDevice(name, keyHash string) (*Device, error) {
	device := &Device{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   keyHash,
		CreatedAt: time.Now().UTC(),
	}

	if err := device.Validate(); err != nil {
		return nil, err
	}

	return device, nil
}

// Validate checks if the Device has valid data.
func (d *Device) Validate() error {
	if d.Name == "" {
		return ErrEmptyDeviceName
	}

	if d.KeyHash == "" {
		return ErrEmptyDeviceKeyHash
	}

	return nil
}
