package filecipher

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// CipherSuite represents the AEAD algorithm used for the container body
type CipherSuite uint8

const (
	// CipherAuto selects AES-256-GCM
	CipherAuto CipherSuite = iota
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode
	CipherAES256GCM
	// CipherChaCha20Poly1305 uses ChaCha20 stream cipher with Poly1305 MAC
	CipherChaCha20Poly1305
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAuto:
		return "auto"
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// ParseCipherSuite parses the names produced by CipherSuite.String.
func ParseCipherSuite(s string) (CipherSuite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return CipherAuto, nil
	case "aes-256-gcm", "aes256gcm", "aes":
		return CipherAES256GCM, nil
	case "chacha20-poly1305", "chacha20poly1305", "chacha":
		return CipherChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCipher, s)
	}
}

// resolve maps CipherAuto to a concrete suite.
func (c CipherSuite) resolve() CipherSuite {
	if c == CipherAuto {
		return CipherAES256GCM
	}
	return c
}

// HashFunc represents hash function types for PBKDF2
type HashFunc uint8

const (
	// SHA256 hash function
	SHA256 HashFunc = iota
	// SHA512 hash function
	SHA512
)

// String returns the string representation of the hash function
func (h HashFunc) String() string {
	switch h {
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// PBKDF2Params contains parameters for PBKDF2 key derivation
type PBKDF2Params struct {
	Iterations int      // Number of iterations (default 100,000)
	HashFunc   HashFunc // Hash function to use (default SHA256)
}

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
}

// Config selects the algorithms behind a Cipher. Salt and nonce sizes are
// fixed by the container format and cannot be configured.
//
// The container records neither the suite nor the KDF parameters. Decrypt
// needs the same Config that Encrypt used; any other Config fails with the
// generic decryption error.
type Config struct {
	// Suite is the AEAD used for the container body
	Suite CipherSuite

	// KDF derives the 256-bit key from password and salt. Defaults to
	// PBKDF2-SHA256 with 100,000 iterations.
	KDF KeyDeriver

	// Rand supplies salts and nonces. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// DefaultConfig returns the configuration used by the package-level
// Encrypt and Decrypt functions.
func DefaultConfig() *Config {
	return &Config{
		Suite: CipherAES256GCM,
		KDF:   NewPBKDF2(PBKDF2Params{}),
		Rand:  rand.Reader,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.KDF == nil {
		return ErrNilKDF
	}
	if c.Suite != CipherAES256GCM && c.Suite != CipherChaCha20Poly1305 && c.Suite != CipherAuto {
		return ErrUnsupportedCipher
	}
	return nil
}
