package filecipher

import "fmt"

// ValidatePassword checks that a password is non-empty. Strength policy is
// the caller's concern.
func ValidatePassword(password string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "password cannot be empty", Err: ErrEmptyPassword}
	}
	return nil
}

// ValidateKey checks that key is exactly size bytes.
func ValidateKey(key []byte, size int) error {
	return checkLen("key", key, size, ErrInvalidKey)
}

// ValidateSalt checks that salt is SaltSize bytes.
func ValidateSalt(salt []byte) error {
	return checkLen("salt", salt, SaltSize, nil)
}

// ValidateNonce checks that nonce is NonceSize bytes.
func ValidateNonce(nonce []byte) error {
	return checkLen("nonce", nonce, NonceSize, nil)
}

func checkLen(field string, b []byte, want int, sentinel error) error {
	if len(b) == want {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Value:   len(b),
		Message: fmt.Sprintf("%s must be %d bytes, got %d", field, want, len(b)),
		Err:     sentinel,
	}
}
