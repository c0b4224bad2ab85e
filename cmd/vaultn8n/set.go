package main

import (
	"github.com/spf13/cobra"

	"github.com/vaultn8n/vaultn8n/internal/models"
)

var setCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store or update a secret locally",
	Long: `Set encrypts and stores one secret, writing directly to the database
without going through the HTTP API. The value is read from --value or, when
the flag is absent, prompted for without echo.`,
	Example: `  vaultn8n set service-A-token
  vaultn8n set db-password --value hunter2`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

var setValue string

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().StringVarP(&setValue, "value", "v", "",
		"Secret value (will prompt if not provided)")
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, logger, err := initApp()
	if err != nil {
		return err
	}

	value := setValue
	if !cmd.Flags().Changed("value") {
		value, err = promptSecret("Value: ")
		if err != nil {
			return err
		}
	}

	svc, st, err := openService(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = svc.Set(models.Secret{Key: args[0], Value: value})
	return err
}
