package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantgems/adminapi/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Render the effective configuration as YAML after merging defaults, the config file, .env, and environment variables. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := config.FromViper(viper.GetViper())
			out, err := app.YAML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return cmd
}
