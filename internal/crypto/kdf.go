package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// kdfInfo is the fixed context label for key derivation. It is baked in so
// keys derived here cannot be reused for another purpose.
var kdfInfo = []byte("aes-gcm-key-derivation")

// DeriveKey derives a 256-bit AES key from the master key and a per-record
// salt using HKDF-Expand over SHA-256.
//
// The concatenation masterKey||salt is fed to HKDF-Expand directly as the
// pseudorandom key, without an HKDF-Extract step. This is not canonical HKDF,
// but it is the construction all existing blobs were produced with; changing
// it would make every stored secret undecryptable.
func DeriveKey(masterKey, salt []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(masterKey))
	}

	prk := make([]byte, 0, len(masterKey)+len(salt))
	prk = append(prk, masterKey...)
	prk = append(prk, salt...)

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, kdfInfo), key); err != nil {
		return nil, fmt.Errorf("expand key: %w", err)
	}

	return key, nil
}
