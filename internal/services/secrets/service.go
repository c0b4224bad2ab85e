// Package secrets composes the envelope cipher and the store into the
// operations the API and CLI expose: plaintext in, plaintext out, with
// encryption confined to this layer.
package secrets

import (
	"errors"
	"fmt"

	"github.com/vaultn8n/vaultn8n/internal/crypto"
	"github.com/vaultn8n/vaultn8n/internal/events"
	"github.com/vaultn8n/vaultn8n/internal/models"
	"github.com/vaultn8n/vaultn8n/internal/store"
)

// ErrWrongEncryptionKey means the configured master key cannot decrypt
// existing data. Serving traffic under such a key is never safe.
var ErrWrongEncryptionKey = errors.New("encryption key cannot decrypt stored data")

// Service handles secret operations against a single store and master key.
type Service struct {
	masterKeyHex string
	store        store.Store
	logger       *events.Logger
}

// NewService creates a secrets service. The master key is validated up
// front; a malformed key is a configuration error and no service is built.
func NewService(masterKeyHex string, st store.Store, logger *events.Logger) (*Service, error) {
	if _, err := crypto.ParseMasterKey(masterKeyHex); err != nil {
		return nil, err
	}

	return &Service{
		masterKeyHex: masterKeyHex,
		store:        st,
		logger:       logger.WithField("component", "secrets_service"),
	}, nil
}

// Set validates, encrypts, and upserts one secret. The returned secret
// carries the plaintext value for the caller's response.
func (s *Service) Set(secret models.Secret) (models.Secret, error) {
	if err := secret.Validate(); err != nil {
		return models.Secret{}, err
	}

	encrypted, err := crypto.Encrypt(secret.Value, s.masterKeyHex)
	if err != nil {
		return models.Secret{}, fmt.Errorf("encrypt secret: %w", err)
	}

	if err := s.store.Upsert(secret.Key, encrypted); err != nil {
		return models.Secret{}, err
	}

	s.logger.WithField("key", secret.Key).Info("Secret stored")
	return secret, nil
}

// SetBulk stores several secrets. Each is validated before any write, so a
// bad entry rejects the whole batch instead of leaving it half applied.
func (s *Service) SetBulk(batch []models.Secret) ([]models.Secret, error) {
	for _, secret := range batch {
		if err := secret.Validate(); err != nil {
			return nil, fmt.Errorf("secret %q: %w", secret.Key, err)
		}
	}

	processed := make([]models.Secret, 0, len(batch))
	for _, secret := range batch {
		stored, err := s.Set(secret)
		if err != nil {
			return nil, err
		}
		processed = append(processed, stored)
	}

	return processed, nil
}

// Get resolves a mixed list of literal keys and glob patterns and returns
// the matching secrets decrypted. Keys with no match are silently omitted.
func (s *Service) Get(items []string) ([]models.Secret, error) {
	resolved, err := s.store.Resolve(items)
	if err != nil {
		return nil, err
	}

	return s.decryptAll(resolved)
}

// Delete resolves the list the same way Get does, removes every resolved
// key exactly once, and returns the removed secrets decrypted.
func (s *Service) Delete(items []string) ([]models.Secret, error) {
	resolved, err := s.store.Resolve(items)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	decrypted, err := s.decryptAll(resolved)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(resolved))
	for i, secret := range resolved {
		keys[i] = secret.Key
	}

	count, err := s.store.Delete(keys)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("count", count).Info("Secrets deleted")
	return decrypted, nil
}

// CheckEncryptionKey verifies the configured master key can decrypt existing
// data by decrypting one arbitrary stored value. An empty store passes
// trivially. An authentication failure returns ErrWrongEncryptionKey, which
// callers must treat as fatal; any other failure surfaces as-is and does not
// by itself imply a wrong key.
func (s *Service) CheckEncryptionKey() error {
	value, ok, err := s.store.FirstValue()
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("Store is empty, nothing to verify")
		return nil
	}

	if _, err := crypto.Decrypt(value, s.masterKeyHex); err != nil {
		if errors.Is(err, crypto.ErrAuthentication) {
			return fmt.Errorf("%w: %v", ErrWrongEncryptionKey, err)
		}
		return fmt.Errorf("verify encryption key: %w", err)
	}

	return nil
}

func (s *Service) decryptAll(encrypted []models.Secret) ([]models.Secret, error) {
	decrypted := make([]models.Secret, 0, len(encrypted))
	for _, secret := range encrypted {
		plaintext, err := crypto.Decrypt(secret.Value, s.masterKeyHex)
		if err != nil {
			return nil, fmt.Errorf("secret %q: %w", secret.Key, err)
		}
		decrypted = append(decrypted, models.Secret{Key: secret.Key, Value: plaintext})
	}
	return decrypted, nil
}
