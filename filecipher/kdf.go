package filecipher

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KeySize is the derived key length in bytes (256 bits).
const KeySize = 32

// KeyDeriver stretches a password into KeySize bytes of key material. It must
// be deterministic for a given (password, salt) pair.
type KeyDeriver interface {
	DeriveKey(password, salt []byte) ([]byte, error)
}

// PBKDF2KeyDeriver implements KeyDeriver using PBKDF2
type PBKDF2KeyDeriver struct {
	params PBKDF2Params
}

// NewPBKDF2 creates a PBKDF2 key deriver. Zero fields fall back to
// 100,000 iterations of HMAC-SHA256.
func NewPBKDF2(params PBKDF2Params) *PBKDF2KeyDeriver {
	// Set defaults
	if params.Iterations == 0 {
		params.Iterations = 100000
	}
	return &PBKDF2KeyDeriver{params: params}
}

// Params returns the effective parameters.
func (p *PBKDF2KeyDeriver) Params() PBKDF2Params {
	return p.params
}

// DeriveKey derives an encryption key from the password and salt
func (p *PBKDF2KeyDeriver) DeriveKey(password, salt []byte) ([]byte, error) {
	if err := validateKDFInput(password, salt); err != nil {
		return nil, err
	}
	if p.params.Iterations < 1 {
		return nil, NewValidationError("iterations", p.params.Iterations, "must be at least 1")
	}

	var hashFunc func() hash.Hash
	switch p.params.HashFunc {
	case SHA256:
		hashFunc = sha256.New
	case SHA512:
		hashFunc = sha512.New
	default:
		return nil, fmt.Errorf("unsupported hash function: %v", p.params.HashFunc)
	}

	return pbkdf2.Key(password, salt, p.params.Iterations, KeySize, hashFunc), nil
}

// Argon2idKeyDeriver implements KeyDeriver using Argon2id
type Argon2idKeyDeriver struct {
	params Argon2idParams
}

// NewArgon2id creates an Argon2id key deriver. Zero fields fall back to
// 64 MiB, 3 iterations and 4 lanes.
func NewArgon2id(params Argon2idParams) *Argon2idKeyDeriver {
	// Set defaults
	if params.Memory == 0 {
		params.Memory = 64 * 1024 // 64 MB
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	return &Argon2idKeyDeriver{params: params}
}

// Params returns the effective parameters.
func (a *Argon2idKeyDeriver) Params() Argon2idParams {
	return a.params
}

// DeriveKey derives an encryption key from the password and salt
func (a *Argon2idKeyDeriver) DeriveKey(password, salt []byte) ([]byte, error) {
	if err := validateKDFInput(password, salt); err != nil {
		return nil, err
	}
	return argon2.IDKey(
		password,
		salt,
		a.params.Iterations,
		a.params.Memory,
		a.params.Parallelism,
		KeySize,
	), nil
}

func validateKDFInput(password, salt []byte) error {
	if len(password) == 0 {
		return &ValidationError{Field: "password", Message: "password cannot be empty", Err: ErrEmptyPassword}
	}
	if len(salt) == 0 {
		return errors.New("salt cannot be empty")
	}
	return nil
}
