package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultn8n/vaultn8n/internal/config"
)

const validKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func validConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Vault.AuthToken = "test-token"
	cfg.Vault.EncryptionKey = validKey
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Positive(t, cfg.Server.ShutdownTimeout)
	assert.NotEmpty(t, cfg.Vault.DatabasePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr string
	}{
		{
			name:   "valid config",
			modify: func(c *config.Config) {},
		},
		{
			name: "missing auth token",
			modify: func(c *config.Config) {
				c.Vault.AuthToken = ""
			},
			wantErr: "vault.auth_token is required",
		},
		{
			name: "encryption key wrong length",
			modify: func(c *config.Config) {
				c.Vault.EncryptionKey = "abcd"
			},
			wantErr: "vault.encryption_key",
		},
		{
			name: "encryption key not hex",
			modify: func(c *config.Config) {
				c.Vault.EncryptionKey = strings.Repeat("zz", 32)
			},
			wantErr: "vault.encryption_key",
		},
		{
			name: "missing database path",
			modify: func(c *config.Config) {
				c.Vault.DatabasePath = ""
			},
			wantErr: "vault.database_path is required",
		},
		{
			name: "port out of range",
			modify: func(c *config.Config) {
				c.Server.Port = 0
			},
			wantErr: "server.port out of range",
		},
		{
			name: "invalid log level",
			modify: func(c *config.Config) {
				c.Log.Level = "verbose"
			},
			wantErr: "invalid log level",
		},
		{
			name: "invalid log format",
			modify: func(c *config.Config) {
				c.Log.Format = "xml"
			},
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VAULTN8N_VAULT_AUTH_TOKEN", "env-token")
	t.Setenv("VAULTN8N_VAULT_ENCRYPTION_KEY", validKey)
	t.Setenv("VAULTN8N_VAULT_DATABASE_PATH", "/tmp/env-secrets.db")
	t.Setenv("VAULTN8N_LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Vault.AuthToken)
	assert.Equal(t, validKey, cfg.Vault.EncryptionKey)
	assert.Equal(t, "/tmp/env-secrets.db", cfg.Vault.DatabasePath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadBareEnvAliases(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "bare-token")
	t.Setenv("ENCRYPTION_KEY", validKey)
	t.Setenv("DATABASE_PATH", "/tmp/bare-secrets.db")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "bare-token", cfg.Vault.AuthToken)
	assert.Equal(t, "/tmp/bare-secrets.db", cfg.Vault.DatabasePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vaultn8n.yaml")

	content := `
server:
  port: 9000
vault:
  auth_token: file-token
  encryption_key: ` + validKey + `
  database_path: ` + filepath.Join(dir, "secrets.db") + `
log:
  level: warn
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "file-token", cfg.Vault.AuthToken)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	t.Setenv("VAULTN8N_VAULT_AUTH_TOKEN", "token")
	t.Setenv("VAULTN8N_VAULT_ENCRYPTION_KEY", "not-a-key")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
