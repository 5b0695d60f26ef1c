package host

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrWeakPassword is returned when a password fails the PasswordPolicy.
var ErrWeakPassword = errors.New("password too short")

// PasswordPolicy is enforced before encryption. Decryption accepts any
// non-empty password so older containers stay readable.
type PasswordPolicy struct {
	MinLength int // in characters
}

// Check returns ErrWeakPassword if password has fewer than MinLength
// characters.
func (p PasswordPolicy) Check(password []byte) error {
	if n := utf8.RuneCount(password); n < p.MinLength {
		return errors.Wrapf(ErrWeakPassword, "need at least %d characters, got %d", p.MinLength, n)
	}
	return nil
}
