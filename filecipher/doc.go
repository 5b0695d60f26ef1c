// Package filecipher provides password-based authenticated encryption of
// arbitrary byte buffers.
//
// # Container Format
//
// Encrypt produces a self-contained container with fixed offsets:
//   - Salt (16 bytes): random salt for key derivation
//   - Nonce (12 bytes): random AEAD nonce
//   - Ciphertext (variable): encrypted data + 16-byte authentication tag
//
// Nothing in the container identifies the algorithms, so encryption and
// decryption must use the same Config, including the KDF parameters. A
// mismatch is reported as an ordinary decryption failure. An empty plaintext yields a 44-byte
// container (28-byte header and a tag-only ciphertext).
//
// # Key Derivation
//
// PBKDF2-HMAC-SHA256 with 100,000 iterations is the default. Argon2id is
// available through NewArgon2id and is the better choice when both sides can
// afford its memory cost. A fresh salt and nonce are drawn for every call; the
// derived key is zeroed before the call returns and is never cached.
//
// # Basic Usage
//
//	sealed, err := filecipher.Encrypt(data, password)
//	if err != nil {
//	    return err
//	}
//
//	plain, err := filecipher.Decrypt(sealed, password)
//	switch {
//	case filecipher.IsFormatError(err):
//	    // not a container at all
//	case filecipher.IsCryptoError(err):
//	    // wrong password or tampered data, deliberately indistinguishable
//	}
//
// A Cipher with other algorithms:
//
//	c, err := filecipher.New(&filecipher.Config{
//	    Suite: filecipher.CipherChaCha20Poly1305,
//	    KDF:   filecipher.NewArgon2id(filecipher.Argon2idParams{}),
//	})
//
// # Large Files
//
// EncryptStream and DecryptStream handle inputs that do not fit in memory
// using Tink's segmented AES-GCM-HKDF streaming AEAD. Stream containers start
// with StreamMagic and are not interchangeable with buffer containers.
//
// # Security Considerations
//
// Protected Against:
//   - Disclosure of file contents without the password
//   - Undetected tampering (every bit of the ciphertext and tag is authenticated)
//   - Offline brute force, to the extent the KDF cost allows
//
// Not Protected Against:
//   - Weak passwords; minimum length policy is left to the caller
//   - Leakage of plaintext length
//   - Memory inspection while a call is running
package filecipher
