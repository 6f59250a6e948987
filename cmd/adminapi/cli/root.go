package cli

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantgems/adminapi/internal/config"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adminapi",
		Short: "Admin authentication and data-access gateway",
		Long: `adminapi is the back-office gateway: it authenticates operators against
an email allow-list, issues short-lived bearer tokens, and serves filtered,
paginated read views over users, subscriptions, payments, and audit logs,
plus the runtime presence settings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./adminapi.yaml)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newHashPasswordCmd())

	return cmd
}

func initConfig() {
	// .env first, matching how the original deployment fed its settings.
	// Missing files are fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("adminapi")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.adminapi")
	}

	viper.SetEnvPrefix("ADMINAPI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())
	viper.ReadInConfig() // config file is optional
}
