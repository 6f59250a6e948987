package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantgems/adminapi/internal/config"
	"github.com/quantgems/adminapi/internal/server"
	"github.com/quantgems/adminapi/internal/service"
	"github.com/quantgems/adminapi/internal/store"
)

const banner = `
    _    ____  __  __ ___ _   _    _    ____ ___
   / \  |  _ \|  \/  |_ _| \ | |  / \  |  _ \_ _|
  / _ \ | | | | |\/| || ||  \| | / _ \ | |_) | |
 / ___ \| |_| | |  | || || |\  |/ ___ \|  __/| |
/_/   \_\____/|_|  |_|___|_| \_/_/   \_\_|  |___|
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin gateway server",
		Long:  "Start the HTTP server that exposes the operator login, listing, and settings endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 4010, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	app := config.FromViper(viper.GetViper())

	if app.Auth.JWTSecret == "" {
		if app.IsProduction() {
			return fmt.Errorf("auth.jwt_secret must be set in production")
		}
		app.Auth.JWTSecret = "adminapi-dev-secret-change-me"
		logger.Warn("auth.jwt_secret not set, using the development default")
	}
	if len(app.Auth.AdminEmails) == 0 {
		logger.Warn("auth.admin_emails is empty - every login will be rejected")
	}

	st, err := store.Open(app.DB)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	logger.Info("store connected", "driver", app.DB.Driver)

	tokens := service.NewTokenService(app.Auth.JWTSecret)
	audit := service.NewAuditSink(st, logger)

	srvCfg := server.DefaultConfig()
	srvCfg.Host = app.Server.Host
	srvCfg.Port = app.Server.Port
	srvCfg.ShutdownTimeout = 30 * time.Second

	srv := server.New(srvCfg, app, st, tokens, audit, logger)

	fmt.Printf("-> adminapi (%s)\n", app.Env)
	fmt.Printf("-> Listening on http://%s:%d\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("-> OpenAPI:  http://%s:%d/openapi.json\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("-> Health:   http://%s:%d/health\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("-> Admins:   %d allow-listed\n", len(app.Auth.AdminEmails))
	fmt.Println()

	return srv.ListenAndServe()
}
