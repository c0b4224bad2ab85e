package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vaultn8n/vaultn8n/internal/server"
	"github.com/vaultn8n/vaultn8n/internal/services/secrets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the secrets HTTP server",
	Long: `Serve starts the HTTP API after verifying that the configured
encryption key can decrypt the existing data. A key that fails this check
against a non-empty store aborts startup: serving under a wrong master key
would fail every read and must never happen silently.`,
	Example: `  vaultn8n serve
  vaultn8n serve --config /etc/vaultn8n/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := initApp()
	if err != nil {
		return err
	}

	svc, st, err := openService(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.CheckEncryptionKey(); err != nil {
		if errors.Is(err, secrets.ErrWrongEncryptionKey) {
			logger.WithError(err).Error(
				"Stored data cannot be decrypted with the configured encryption key; refusing to start")
		}
		return err
	}
	logger.Info("Encryption key verified")

	srv := server.New(cfg, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
