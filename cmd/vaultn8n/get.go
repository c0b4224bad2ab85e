package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key|pattern> [key|pattern...]",
	Short: "Fetch and decrypt secrets locally",
	Long: `Get resolves the given literal keys and '*' glob patterns against the
store and prints the matching secrets decrypted, one key=value per line.
A key matched by several arguments is printed once.`,
	Example: `  vaultn8n get db-password
  vaultn8n get 'service-*' common-key`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, logger, err := initApp()
	if err != nil {
		return err
	}

	svc, st, err := openService(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	resolved, err := svc.Get(args)
	if err != nil {
		return err
	}

	for _, secret := range resolved {
		fmt.Printf("%s=%s\n", secret.Key, secret.Value)
	}

	return nil
}
