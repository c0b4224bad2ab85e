package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "VAULTN8N"

// Load reads configuration from an optional file and the environment.
// When configPath is empty, default locations are tried and a missing file
// is not an error; environment variables always apply on top.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	v.SetDefault("vault.database_path", defaults.Vault.DatabasePath)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare variable names kept for compatibility with existing deployments.
	_ = v.BindEnv("vault.auth_token", envPrefix+"_VAULT_AUTH_TOKEN", "AUTH_TOKEN")
	_ = v.BindEnv("vault.encryption_key", envPrefix+"_VAULT_ENCRYPTION_KEY", "ENCRYPTION_KEY")
	_ = v.BindEnv("vault.database_path", envPrefix+"_VAULT_DATABASE_PATH", "DATABASE_PATH")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("vaultn8n")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homeConfigDir(); err == nil {
			v.AddConfigPath(home)
		}

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func homeConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vaultn8n"), nil
}
