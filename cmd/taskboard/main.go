package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taskboard/internal/app"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/repository/postgres"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Task-tracking dashboard service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "directory containing taskboard.yml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := app.New(cfg)
			if err := a.Init(ctx); err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back store schema migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Development); err != nil {
				return err
			}
			defer logger.Sync()

			switch args[0] {
			case "up":
				return postgres.MigrateUp(cfg.Database.URL)
			case "down":
				return postgres.MigrateDown(cfg.Database.URL)
			default:
				return fmt.Errorf("unknown direction %q", args[0])
			}
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
