// Package store persists encrypted secrets in SQLite, keeping the primary
// table and a pattern-match index transactionally consistent.
package store

import (
	"errors"
	"fmt"

	"github.com/vaultn8n/vaultn8n/internal/models"
)

// Store manages encrypted secret persistence. Values are opaque encrypted
// blobs here; the store never sees plaintext or key material.
type Store interface {
	// Upsert inserts a secret or updates the value of an existing one.
	Upsert(key, encryptedValue string) error

	// GetExact returns the secrets whose keys exactly match the inputs;
	// unmatched keys are silently omitted.
	GetExact(keys []string) ([]models.Secret, error)

	// FindByPattern returns secrets whose keys match a glob pattern where
	// '*' means zero or more of any character. Matching is case-sensitive.
	FindByPattern(pattern string) ([]models.Secret, error)

	// Resolve handles a mixed list of literal keys and glob patterns and
	// returns the union of all matches, deduplicated by key.
	Resolve(items []string) ([]models.Secret, error)

	// Delete removes secrets by exact key and returns the number removed.
	// Nonexistent keys are no-ops.
	Delete(keys []string) (int, error)

	// GetRecord returns the full stored record for one key.
	GetRecord(key string) (*models.SecretRecord, error)

	// FirstValue returns an arbitrary stored encrypted value, or ok=false
	// when the store is empty. Used by the startup key check.
	FirstValue() (value string, ok bool, err error)

	// Close releases the underlying database.
	Close() error
}

// ErrNotFound is returned by GetRecord when no row has the key.
var ErrNotFound = errors.New("secret not found")

// StorageError wraps an underlying persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
