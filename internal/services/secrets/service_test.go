package secrets_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultn8n/vaultn8n/internal/crypto"
	"github.com/vaultn8n/vaultn8n/internal/events"
	"github.com/vaultn8n/vaultn8n/internal/models"
	"github.com/vaultn8n/vaultn8n/internal/services/secrets"
	"github.com/vaultn8n/vaultn8n/internal/store"
)

const (
	testKeyHex  = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	otherKeyHex = "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"
)

func newTestService(t *testing.T, masterKeyHex string) (*secrets.Service, store.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "secrets.db")
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	st, err := store.NewSQLiteStore(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc, err := secrets.NewService(masterKeyHex, st, logger)
	require.NoError(t, err)

	return svc, st
}

func TestNewServiceRejectsBadKey(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	_, err := secrets.NewService("not-a-key", nil, logger)
	assert.ErrorIs(t, err, crypto.ErrInvalidKey)
}

func TestSetStoresEncrypted(t *testing.T) {
	svc, st := newTestService(t, testKeyHex)

	stored, err := svc.Set(models.Secret{Key: "db-password", Value: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", stored.Value)

	// The store never sees plaintext.
	record, err := st.GetRecord("db-password")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", record.Value)
	assert.Len(t, strings.Split(record.Value, "."), 4)

	plaintext, err := crypto.Decrypt(record.Value, testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plaintext)
}

func TestSetRejectsInvalidSecret(t *testing.T) {
	svc, _ := newTestService(t, testKeyHex)

	_, err := svc.Set(models.Secret{Key: "", Value: "v"})
	assert.ErrorIs(t, err, models.ErrInvalidSecret)
}

func TestSetBulk(t *testing.T) {
	svc, _ := newTestService(t, testKeyHex)

	t.Run("stores all entries", func(t *testing.T) {
		batch := []models.Secret{
			{Key: "service-A-token", Value: "a"},
			{Key: "service-B-token", Value: "b"},
		}

		processed, err := svc.SetBulk(batch)
		require.NoError(t, err)
		assert.Equal(t, batch, processed)

		got, err := svc.Get([]string{"service-*"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("one bad entry rejects the batch", func(t *testing.T) {
		batch := []models.Secret{
			{Key: "ok-key", Value: "v"},
			{Key: strings.Repeat("x", models.MaxKeyLength+1), Value: "v"},
		}

		_, err := svc.SetBulk(batch)
		assert.ErrorIs(t, err, models.ErrInvalidSecret)

		got, err := svc.Get([]string{"ok-key"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestGetDecryptsResolvedSecrets(t *testing.T) {
	svc, _ := newTestService(t, testKeyHex)

	for _, s := range []models.Secret{
		{Key: "service-A-token", Value: "tok-a"},
		{Key: "service-B-token", Value: "tok-b"},
		{Key: "common-key", Value: "shared"},
	} {
		_, err := svc.Set(s)
		require.NoError(t, err)
	}

	got, err := svc.Get([]string{"service-*", "common-key"})
	require.NoError(t, err)

	values := make(map[string]string)
	for _, s := range got {
		values[s.Key] = s.Value
	}
	assert.Equal(t, map[string]string{
		"service-A-token": "tok-a",
		"service-B-token": "tok-b",
		"common-key":      "shared",
	}, values)
}

func TestDeleteRemovesResolvedSetOnce(t *testing.T) {
	svc, _ := newTestService(t, testKeyHex)

	for _, s := range []models.Secret{
		{Key: "service-A-token", Value: "tok-a"},
		{Key: "common-key", Value: "shared"},
	} {
		_, err := svc.Set(s)
		require.NoError(t, err)
	}

	// "common-key" is hit by both the literal and a pattern; it must be
	// returned and deleted exactly once.
	deleted, err := svc.Delete([]string{"service-*", "common-key", "common-*"})
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	remaining, err := svc.Get([]string{"*"})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDeleteNothingResolved(t *testing.T) {
	svc, _ := newTestService(t, testKeyHex)

	deleted, err := svc.Delete([]string{"missing-*", "nope"})
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestCheckEncryptionKey(t *testing.T) {
	t.Run("empty store passes for any key", func(t *testing.T) {
		svc, _ := newTestService(t, testKeyHex)
		assert.NoError(t, svc.CheckEncryptionKey())
	})

	t.Run("matching key passes", func(t *testing.T) {
		svc, _ := newTestService(t, testKeyHex)

		_, err := svc.Set(models.Secret{Key: "k", Value: "v"})
		require.NoError(t, err)

		assert.NoError(t, svc.CheckEncryptionKey())
	})

	t.Run("wrong key is fatal", func(t *testing.T) {
		svc, st := newTestService(t, testKeyHex)

		_, err := svc.Set(models.Secret{Key: "k", Value: "v"})
		require.NoError(t, err)

		var buf bytes.Buffer
		logger := events.NewTestLogger(events.ErrorLevel, "json", &buf)
		wrongSvc, err := secrets.NewService(otherKeyHex, st, logger)
		require.NoError(t, err)

		err = wrongSvc.CheckEncryptionKey()
		assert.ErrorIs(t, err, secrets.ErrWrongEncryptionKey)
	})

	t.Run("malformed stored value is not a wrong key", func(t *testing.T) {
		svc, st := newTestService(t, testKeyHex)

		require.NoError(t, st.Upsert("garbage", "not.a.valid"))

		err := svc.CheckEncryptionKey()
		require.Error(t, err)
		assert.NotErrorIs(t, err, secrets.ErrWrongEncryptionKey)
	})
}
