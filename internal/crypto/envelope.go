// Package crypto implements the envelope encryption scheme used for secrets
// at rest: a per-record key derived from the master key and a random salt,
// AES-256-GCM over the plaintext, and a self-describing four-segment blob.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// KeyHexLength is the master key length as a hex string.
	KeyHexLength = 64

	// SaltSize is the per-record key derivation salt length.
	SaltSize = 16

	// NonceSize is the GCM nonce length.
	NonceSize = 12

	// TagSize is the GCM authentication tag length.
	TagSize = 16
)

// blobSegments is the wire format segment count: salt.nonce.ciphertext.tag.
const blobSegments = 4

var blobEncoding = base64.URLEncoding

// ParseMasterKey decodes a 64-character hex master key into 32 raw bytes.
// Any other shape is a configuration error; no derivation is attempted with it.
func ParseMasterKey(masterKeyHex string) ([]byte, error) {
	if len(masterKeyHex) != KeyHexLength {
		return nil, fmt.Errorf("%w: expected %d hex characters, got %d",
			ErrInvalidKey, KeyHexLength, len(masterKeyHex))
	}

	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid hex string", ErrInvalidKey)
	}

	return key, nil
}

// Encrypt encrypts a UTF-8 plaintext under the master key and returns the
// encoded blob: <b64(salt)>.<b64(nonce)>.<b64(ciphertext)>.<b64(tag)>, all
// segments URL-safe base64. A fresh salt and nonce are generated on every
// call, so encrypting the same plaintext twice yields different blobs.
func Encrypt(plaintext, masterKeyHex string) (string, error) {
	masterKey, err := ParseMasterKey(masterKeyHex)
	if err != nil {
		return "", err
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	key, err := DeriveKey(masterKey, salt)
	if err != nil {
		return "", err
	}

	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	segments := []string{
		blobEncoding.EncodeToString(salt),
		blobEncoding.EncodeToString(nonce),
		blobEncoding.EncodeToString(ciphertext),
		blobEncoding.EncodeToString(tag),
	}

	return strings.Join(segments, "."), nil
}

// Decrypt decodes a blob produced by Encrypt and returns the plaintext.
// Failures are reported as a *DecryptError whose cause is ErrBlobFormat
// (wrong segment count), ErrBlobEncoding (a segment is not valid base64),
// ErrAuthentication (tag check failed), or a generic error. On any failure
// no partial or unauthenticated plaintext is returned.
func Decrypt(blob, masterKeyHex string) (string, error) {
	masterKey, err := ParseMasterKey(masterKeyHex)
	if err != nil {
		return "", err
	}

	parts := strings.Split(blob, ".")
	if len(parts) != blobSegments {
		return "", &DecryptError{Cause: fmt.Errorf("%w: expected %d segments, got %d",
			ErrBlobFormat, blobSegments, len(parts))}
	}

	segments := make([][]byte, blobSegments)
	for i, part := range parts {
		decoded, err := blobEncoding.DecodeString(part)
		if err != nil {
			return "", &DecryptError{Cause: fmt.Errorf("%w: segment %d", ErrBlobEncoding, i+1)}
		}
		segments[i] = decoded
	}

	salt, nonce, ciphertext, tag := segments[0], segments[1], segments[2], segments[3]

	if len(nonce) != NonceSize || len(tag) != TagSize {
		return "", &DecryptError{Cause: fmt.Errorf("unexpected segment length: nonce %d, tag %d",
			len(nonce), len(tag))}
	}

	key, err := DeriveKey(masterKey, salt)
	if err != nil {
		return "", &DecryptError{Cause: err}
	}

	aead, err := newGCM(key)
	if err != nil {
		return "", &DecryptError{Cause: err}
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Wrong key or tampered data; GCM does not distinguish.
		return "", &DecryptError{Cause: ErrAuthentication}
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return aead, nil
}
