package filecipher

import (
	"fmt"
	"io"
	"runtime"
)

// Cipher encrypts and decrypts containers with a fixed algorithm selection.
// It holds no key material and is safe for concurrent use.
type Cipher struct {
	suite CipherSuite
	kdf   KeyDeriver
	rand  io.Reader
}

var defaultCipher = mustNew(DefaultConfig())

// New creates a Cipher from config. A nil Rand falls back to crypto/rand.
func New(config *Config) (*Cipher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Cipher{
		suite: config.Suite.resolve(),
		kdf:   config.KDF,
		rand:  config.Rand,
	}
	if c.rand == nil {
		c.rand = DefaultConfig().Rand
	}
	return c, nil
}

func mustNew(config *Config) *Cipher {
	c, err := New(config)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the Cipher behind the package-level functions:
// AES-256-GCM with PBKDF2-SHA256 at 100,000 iterations.
func Default() *Cipher {
	return defaultCipher
}

// Suite returns the AEAD suite in use.
func (c *Cipher) Suite() CipherSuite {
	return c.suite
}

// Encrypt encrypts plaintext under password with the default Cipher.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	return defaultCipher.Encrypt(plaintext, password)
}

// Decrypt decrypts a container with the default Cipher.
func Decrypt(container []byte, password string) ([]byte, error) {
	return defaultCipher.Decrypt(container, password)
}

// Encrypt derives a key from password and a fresh random salt, seals
// plaintext under a fresh random nonce and returns salt || nonce || ciphertext.
func (c *Cipher) Encrypt(plaintext []byte, password string) ([]byte, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(c.rand, header); err != nil {
		return nil, newEncryptError(fmt.Errorf("failed to generate salt and nonce: %w", err))
	}
	salt, nonce := header[:SaltSize], header[SaltSize:]

	key, err := c.kdf.DeriveKey([]byte(password), salt)
	if err != nil {
		return nil, newEncryptError(fmt.Errorf("failed to derive key: %w", err))
	}
	defer zeroBytes(key)

	engine, err := NewEngine(c.suite, key)
	if err != nil {
		return nil, newEncryptError(err)
	}

	ciphertext, err := engine.Encrypt(nonce, plaintext)
	if err != nil {
		return nil, newEncryptError(err)
	}

	ct := &Container{Salt: salt, Nonce: nonce, Ciphertext: ciphertext}
	return ct.Bytes(), nil
}

// Decrypt splits the container, re-derives the key from password and the
// stored salt and opens the ciphertext.
//
// A container shorter than HeaderSize fails with *FormatError before the KDF
// runs. Every later failure is the same *CryptoError wrapping
// ErrDecryptionFailed.
func (c *Cipher) Decrypt(container []byte, password string) ([]byte, error) {
	ct, err := ParseContainer(container)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	key, err := c.kdf.DeriveKey([]byte(password), ct.Salt)
	if err != nil {
		return nil, errDecryptionFailed()
	}
	defer zeroBytes(key)

	engine, err := NewEngine(c.suite, key)
	if err != nil {
		return nil, errDecryptionFailed()
	}

	plaintext, err := engine.Decrypt(ct.Nonce, ct.Ciphertext)
	if err != nil {
		return nil, errDecryptionFailed()
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// zeroBytes overwrites a byte slice with zeros
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
