package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/ego-calendar-api/pkg/config"
	"github.com/noah-isme/ego-calendar-api/pkg/logger"
)

// @title Ego Calendar API
// @version 1.0.0
// @description Calendar assistant that turns natural language into calendar changes
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	root := &cobra.Command{
		Use:           "calendar-api",
		Short:         "Calendar assistant API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder dispatcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logr, err := bootstrap()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck
			return serve(cmd.Context(), cfg, logr, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logr, err := bootstrap()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck
			return runMigrations(cmd.Context(), cfg, logr)
		},
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logr, nil
}
