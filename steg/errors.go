package steg

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors in this package unwrap to one of these, so
// callers can use errors.Is.
var (
	ErrCapacityExceeded   = errors.New("steg: message exceeds image capacity")
	ErrNotFound           = errors.New("steg: no hidden message found")
	ErrInvalidRaster      = errors.New("steg: invalid raster")
	ErrInvalidMessage     = errors.New("steg: message is not valid UTF-8")
	ErrDelimiterInMessage = errors.New("steg: message contains the frame delimiter")
)

// CapacityError is returned by Embed when the framed message needs more bits
// than the image provides. Nothing is written when it is returned.
type CapacityError struct {
	Required  int // Bits needed for message + delimiter
	Available int // Bits the image can hold (3 per pixel)
	MaxChars  int // Longest message, in bytes, that would fit
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity error: message needs %d bits, image holds %d bits (max %d bytes)",
		e.Required, e.Available, e.MaxChars)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// NotFoundError is returned by Extract when no delimiter-framed message was
// found within the scan bound.
type NotFoundError struct {
	ScannedBits int    // Number of channel LSBs examined
	Reason      string // Why the scan ended without a message
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s after scanning %d bits", e.Reason, e.ScannedBits)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// CodecError reports input the codec cannot work with: a malformed raster or
// a message that cannot be framed.
type CodecError struct {
	Op      string // "embed" or "extract"
	Message string
	Err     error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Op, e.Message)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func newCodecError(op string, err error, format string, args ...any) error {
	return &CodecError{
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsCapacityError checks if an error is a capacity error
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsCodecError checks if an error is a codec error
func IsCodecError(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce)
}
