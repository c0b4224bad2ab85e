// Package models holds the data types shared across the store, service, and
// API layers.
package models

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Size limits for secret keys and values, in characters.
const (
	MaxKeyLength   = 100
	MaxValueLength = 100
)

// ErrInvalidSecret indicates a secret failed model validation.
var ErrInvalidSecret = errors.New("invalid secret")

// Secret is a key/value pair. Value holds plaintext at the API boundary and
// an encrypted blob inside the store; the type does not distinguish, the
// layer using it does.
type Secret struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SecretRecord is a stored row: the key, its encrypted value, and the
// record timestamps. Key is the immutable identity; Value and UpdatedAt
// change on upsert.
type SecretRecord struct {
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks a secret against the key and value limits.
func (s Secret) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("%w: key must not be empty", ErrInvalidSecret)
	}
	if utf8.RuneCountInString(s.Key) > MaxKeyLength {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidSecret, MaxKeyLength)
	}
	if utf8.RuneCountInString(s.Value) > MaxValueLength {
		return fmt.Errorf("%w: value exceeds %d characters", ErrInvalidSecret, MaxValueLength)
	}
	return nil
}
