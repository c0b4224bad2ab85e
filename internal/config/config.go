// Package config loads and validates service configuration from an optional
// config file and environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vaultn8n/vaultn8n/internal/crypto"
)

// Config holds all application configuration. It is constructed once at
// process start and passed by reference into the server, store, and service;
// nothing re-reads configuration mid-process.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Vault  VaultConfig  `mapstructure:"vault"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig for the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// VaultConfig for the secret engine.
type VaultConfig struct {
	// AuthToken is the bearer token every API call must present.
	AuthToken string `mapstructure:"auth_token"`

	// EncryptionKey is the master key as a 64-character hex string
	// (32 raw bytes). It is never persisted.
	EncryptionKey string `mapstructure:"encryption_key"`

	// DatabasePath is the SQLite database file location.
	DatabasePath string `mapstructure:"database_path"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
	File   string `mapstructure:"file"`   // empty = stdout
}

// DefaultConfig returns config with sensible defaults. Auth token and
// encryption key have no defaults; they must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		},
		Vault: VaultConfig{
			DatabasePath: "./secrets.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks configuration validity. A malformed encryption key is
// rejected here, before any derivation is ever attempted with it.
func (c *Config) Validate() error {
	if c.Vault.AuthToken == "" {
		return errors.New("vault.auth_token is required")
	}

	if _, err := crypto.ParseMasterKey(c.Vault.EncryptionKey); err != nil {
		return fmt.Errorf("vault.encryption_key: %w", err)
	}

	if c.Vault.DatabasePath == "" {
		return errors.New("vault.database_path is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// Addr returns the host:port the server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
