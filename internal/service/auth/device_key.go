package auth

import "golang.org/x/crypto/bcrypt"

// KeyVerifier defines the interface for comparing device keys.
type KeyVerifier interface {
	// Compare compares a hashed key with its possible plaintext
	// equivalent. Returns nil on success, or an error on mismatch.
	Compare(hashedKey, key string) error
}

// BcryptVerifier implements KeyVerifier using bcrypt.
type BcryptVerifier struct{}

// Ensure BcryptVerifier implements KeyVerifier
var _ KeyVerifier = (*BcryptVerifier)(nil)

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the KeyVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedKey, key string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key)); err != nil {
		return ErrInvalidDeviceKey
	}
	return nil
}

// HashKey hashes a plaintext device key for storage.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
