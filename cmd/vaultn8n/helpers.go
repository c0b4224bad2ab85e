package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/vaultn8n/vaultn8n/internal/config"
	"github.com/vaultn8n/vaultn8n/internal/events"
	"github.com/vaultn8n/vaultn8n/internal/services/secrets"
	"github.com/vaultn8n/vaultn8n/internal/store"
)

// initApp loads configuration and builds the logger.
func initApp() (*config.Config, *events.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := events.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// openService opens the store and builds the secrets service on top of it.
// The caller owns closing the returned store.
func openService(cfg *config.Config, logger *events.Logger) (*secrets.Service, *store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.Vault.DatabasePath, logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := secrets.NewService(cfg.Vault.EncryptionKey, st, logger)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return svc, st, nil
}

// promptSecret reads a value from the terminal without echoing it.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read value: %w", err)
	}
	return string(data), nil
}
