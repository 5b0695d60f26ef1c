package filecipher

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a caller error such as an empty password or a
// bad parameter
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatError represents a container that is structurally malformed, for
// example shorter than HeaderSize. It is returned before any key derivation.
type FormatError struct {
	Length  int    // Length of the rejected input
	Minimum int    // Minimum acceptable length
	Message string // Human-readable error message
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s (got %d bytes, need at least %d)", e.Message, e.Length, e.Minimum)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidContainer
}

// CryptoError represents a failed encryption or decryption.
//
// For decryption the message is always "decryption failed": a wrong password,
// a tampered ciphertext and a corrupted salt or nonce are indistinguishable.
type CryptoError struct {
	Operation string // "encrypt" or "decrypt"
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto error: %s: %s", e.Operation, e.Message)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// Sentinel errors
var (
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrInvalidKey        = errors.New("invalid encryption key")
	ErrInvalidContainer  = errors.New("invalid encrypted container")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrAuthFailed        = errors.New("authentication failed - data may be corrupted or tampered")
	ErrUnsupportedCipher = errors.New("unsupported cipher suite")
	ErrNilConfig         = errors.New("config cannot be nil")
	ErrNilKDF            = errors.New("key deriver cannot be nil")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// newEncryptError wraps a failure during encryption. Encryption failures are
// not secret, so the underlying error is kept.
func newEncryptError(err error) error {
	return &CryptoError{
		Operation: "encrypt",
		Message:   err.Error(),
		Err:       err,
	}
}

// errDecryptionFailed is the single error returned for every decryption
// failure after the container passes its format check.
func errDecryptionFailed() error {
	return &CryptoError{
		Operation: "decrypt",
		Message:   ErrDecryptionFailed.Error(),
		Err:       ErrDecryptionFailed,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFormatError checks if an error is a format error
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsCryptoError checks if an error is a crypto error
func IsCryptoError(err error) bool {
	var ce *CryptoError
	return errors.As(err, &ce)
}
