package filecipher

const (
	// SaltSize is the length of the KDF salt at the start of a container
	SaltSize = 16

	// NonceSize is the length of the AEAD nonce following the salt
	NonceSize = 12

	// HeaderSize is the fixed prefix of every container:
	// 16 bytes (salt) + 12 bytes (nonce) = 28 bytes
	HeaderSize = SaltSize + NonceSize

	// TagSize is the authentication tag appended by both cipher suites
	TagSize = 16
)

// Container is the parsed form of an encrypted buffer:
//
//	offset 0   salt       16 bytes
//	offset 16  nonce      12 bytes
//	offset 28  ciphertext with authentication tag, variable
type Container struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

// ParseContainer splits b into its fields. The returned slices alias b.
// A buffer shorter than HeaderSize is a *FormatError.
func ParseContainer(b []byte) (*Container, error) {
	if len(b) < HeaderSize {
		return nil, &FormatError{
			Length:  len(b),
			Minimum: HeaderSize,
			Message: "container shorter than salt and nonce header",
		}
	}
	return &Container{
		Salt:       b[:SaltSize],
		Nonce:      b[SaltSize:HeaderSize],
		Ciphertext: b[HeaderSize:],
	}, nil
}

// Size returns the serialized length in bytes
func (c *Container) Size() int {
	return len(c.Salt) + len(c.Nonce) + len(c.Ciphertext)
}

// Validate checks the fixed field sizes
func (c *Container) Validate() error {
	if err := ValidateSalt(c.Salt); err != nil {
		return err
	}
	return ValidateNonce(c.Nonce)
}

// Bytes serializes the container as salt || nonce || ciphertext.
func (c *Container) Bytes() []byte {
	out := make([]byte, 0, c.Size())
	out = append(out, c.Salt...)
	out = append(out, c.Nonce...)
	out = append(out, c.Ciphertext...)
	return out
}
