package filecipher

import (
	"errors"
	"fmt"
	"io"

	"github.com/tink-crypto/tink-go/v2/streamingaead/subtle"
)

const (
	// StreamMagic identifies a stream container
	StreamMagic = "SCS1"

	// StreamHeaderSize is magic (4 bytes) + salt (16 bytes)
	StreamHeaderSize = len(StreamMagic) + SaltSize

	// StreamSegmentSize is the ciphertext segment size of the streaming AEAD
	StreamSegmentSize = 1 << 20

	streamHKDFHash = "SHA256"
)

// EncryptStream encrypts src to dst for inputs too large to hold in memory.
//
// The stream container is StreamMagic || salt || AES-GCM-HKDF streaming
// ciphertext in 1 MiB segments, each authenticated on its own. The header is
// bound to the ciphertext as associated data. The configured KDF is used;
// the configured cipher suite is not, streams are always AES-256-GCM.
//
// It returns the number of plaintext bytes read from src.
func (c *Cipher) EncryptStream(dst io.Writer, src io.Reader, password string) (int64, error) {
	if err := ValidatePassword(password); err != nil {
		return 0, err
	}

	header := make([]byte, StreamHeaderSize)
	copy(header, StreamMagic)
	salt := header[len(StreamMagic):]
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return 0, newEncryptError(fmt.Errorf("failed to generate salt: %w", err))
	}

	aead, key, err := c.streamingAEAD(password, salt)
	if err != nil {
		return 0, newEncryptError(err)
	}
	defer zeroBytes(key)

	if _, err := dst.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	w, err := aead.NewEncryptingWriter(dst, header)
	if err != nil {
		return 0, newEncryptError(fmt.Errorf("failed to create encrypting writer: %w", err))
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return n, fmt.Errorf("encryption failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("failed to finalize encryption: %w", err)
	}
	return n, nil
}

// DecryptStream decrypts a stream container from src to dst and returns the
// number of plaintext bytes written.
//
// A missing or foreign header is a *FormatError. Authentication failures are
// the generic *CryptoError. Segments are verified one at a time, so dst may
// already hold verified plaintext from earlier segments when a later one
// fails; callers writing to files should discard the output on error.
func (c *Cipher) DecryptStream(dst io.Writer, src io.Reader, password string) (int64, error) {
	header := make([]byte, StreamHeaderSize)
	n, err := io.ReadFull(src, header)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, &FormatError{Length: n, Minimum: StreamHeaderSize, Message: "stream shorter than header"}
		}
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header[:len(StreamMagic)]) != StreamMagic {
		return 0, &FormatError{Length: n, Minimum: StreamHeaderSize, Message: "missing stream magic"}
	}
	if err := ValidatePassword(password); err != nil {
		return 0, err
	}

	aead, key, err := c.streamingAEAD(password, header[len(StreamMagic):])
	if err != nil {
		return 0, errDecryptionFailed()
	}
	defer zeroBytes(key)

	r, err := aead.NewDecryptingReader(src, header)
	if err != nil {
		return 0, errDecryptionFailed()
	}

	ew := &errWriter{w: dst}
	written, err := io.Copy(ew, r)
	if err != nil {
		if ew.err != nil {
			return written, fmt.Errorf("failed to write plaintext: %w", ew.err)
		}
		return written, errDecryptionFailed()
	}
	return written, nil
}

// streamingAEAD returns the AEAD together with its key; the AEAD keeps a
// reference to the key, so the caller zeroes it once the stream is done.
func (c *Cipher) streamingAEAD(password string, salt []byte) (*subtle.AESGCMHKDF, []byte, error) {
	key, err := c.kdf.DeriveKey([]byte(password), salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive key: %w", err)
	}

	aead, err := subtle.NewAESGCMHKDF(key, streamHKDFHash, KeySize, StreamSegmentSize, 0)
	if err != nil {
		zeroBytes(key)
		return nil, nil, err
	}
	return aead, key, nil
}

// errWriter remembers write errors so they can be told apart from
// authentication failures surfacing through io.Copy.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
