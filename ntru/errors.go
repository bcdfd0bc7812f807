// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package ntru

import "errors"

var (
	// ErrKeyGenerationFailed is returned when no invertible private
	// polynomial was found within the attempt limit.
	ErrKeyGenerationFailed = errors.New("ntru: key generation failed")

	// ErrDecryptionRejected is the only error reported for a ciphertext
	// that does not decrypt.  It does not say why.
	ErrDecryptionRejected = errors.New("ntru: decryption failed")

	// ErrEncryptionFailed is returned when no random prefix produced a
	// masked message of sufficient weight within the attempt limit.
	ErrEncryptionFailed = errors.New("ntru: encryption failed")

	// ErrMessageTooLong is returned when a plaintext exceeds the
	// capacity of the parameter set.
	ErrMessageTooLong = errors.New("ntru: message too long")

	// ErrInvalidKey is returned for key encodings of the wrong size or
	// contents.
	ErrInvalidKey = errors.New("ntru: invalid key")
)
