package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vaultn8n",
	Short: "Encrypted secret storage service",
	Long: `vaultn8n stores key/value secrets encrypted at rest with AES-256-GCM
envelope encryption and serves them over an authenticated HTTP API.

Secrets are looked up by exact key or '*' glob pattern.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Config file path (default: vaultn8n.yaml, ~/.config/vaultn8n/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
