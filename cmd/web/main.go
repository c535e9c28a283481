// @title           FoodShare API
// @version         1.0
// @description     Food donation coordination: donors post surplus food, NGOs claim and collect it.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "foodshare_backend/docs"
	"foodshare_backend/database"
	"foodshare_backend/internal/app"
	"foodshare_backend/internal/config"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/repositories"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "foodshare",
		Short: "FoodShare API server",
		Long:  `Serves the FoodShare API and runs its maintenance tasks.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			config.AppConfig = cfg
			logger.Init(cfg.Server.Env)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default $CONFIG_PATH or config/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			return a.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Database.Driver == "memory" {
				return fmt.Errorf("nothing to migrate for the memory driver")
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			return database.AutoMigrate(db)
		},
	}
}

func seedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first admin account from FIRST_ADMIN_EMAIL and FIRST_ADMIN_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Database.Driver == "memory" {
				return fmt.Errorf("seed-admin needs a persistent database")
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			return app.SeedFirstAdmin(cmd.Context(), repositories.NewRepositories(db), cfg)
		},
	}
}
