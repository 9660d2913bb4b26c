package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/roster-api-go/pkg/auth"
	"github.com/arnavshah/roster-api-go/pkg/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "keygen <name>",
	Short:        "Print the API key for a client name",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Auth.APIKeySecret == "" {
			return fmt.Errorf("API_MASTER_SECRET not found in .env or config")
		}
		key := auth.GenerateHMACKey([]byte(cfg.Auth.APIKeySecret), args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], key)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
