package filecipher

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"
)

// Engine seals and opens container bodies under one derived key. Both
// suites use a 12-byte nonce and append a 16-byte tag.
type Engine interface {
	Encrypt(nonce, plaintext []byte) ([]byte, error)
	Decrypt(nonce, ciphertext []byte) ([]byte, error)
	NonceSize() int
	Overhead() int
}

type aeadEngine struct {
	aead cipher.AEAD
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

var engineConstructors = map[CipherSuite]func([]byte) (cipher.AEAD, error){
	CipherAES256GCM:        newAESGCM,
	CipherChaCha20Poly1305: chacha20poly1305.New,
}

// NewAESGCMEngine returns an AES-256-GCM engine for a 32-byte key.
func NewAESGCMEngine(key []byte) (Engine, error) {
	return NewEngine(CipherAES256GCM, key)
}

// NewChaCha20Poly1305Engine returns a ChaCha20-Poly1305 engine for a
// 32-byte key.
func NewChaCha20Poly1305Engine(key []byte) (Engine, error) {
	return NewEngine(CipherChaCha20Poly1305, key)
}

// NewEngine returns the engine for suite. CipherAuto selects AES-256-GCM.
func NewEngine(suite CipherSuite, key []byte) (Engine, error) {
	newAEAD, ok := engineConstructors[suite.resolve()]
	if !ok {
		return nil, ErrUnsupportedCipher
	}
	if err := ValidateKey(key, KeySize); err != nil {
		return nil, err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &aeadEngine{aead: aead}, nil
}

func (e *aeadEngine) checkNonce(nonce []byte) error {
	if len(nonce) != e.aead.NonceSize() {
		return ValidateNonce(nonce)
	}
	return nil
}

// Encrypt returns ciphertext||tag.
func (e *aeadEngine) Encrypt(nonce, plaintext []byte) ([]byte, error) {
	if err := e.checkNonce(nonce); err != nil {
		return nil, err
	}
	return e.aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt verifies the tag before returning any plaintext. Every
// verification failure is ErrAuthFailed.
func (e *aeadEngine) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	if err := e.checkNonce(nonce); err != nil {
		return nil, err
	}
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func (e *aeadEngine) NonceSize() int { return e.aead.NonceSize() }

func (e *aeadEngine) Overhead() int { return e.aead.Overhead() }
