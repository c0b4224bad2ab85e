package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vaultn8n/vaultn8n/internal/crypto"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a fresh encryption key and auth token",
	Long: `Keygen prints a new random master encryption key and bearer token.

The encryption key cannot be changed once secrets are stored: data encrypted
under one key is undecryptable under another.`,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Println("Add these to your environment or config file:")
	fmt.Println()
	fmt.Printf("  ENCRYPTION_KEY=%s\n", color.GreenString(hex.EncodeToString(key)))
	fmt.Printf("  AUTH_TOKEN=%s\n", color.GreenString(base64.RawURLEncoding.EncodeToString(token)))
	fmt.Println()
	color.Yellow("Keep both secret. Losing the encryption key makes all stored data unrecoverable.")

	return nil
}
