// Command cricketctl is the operator CLI for the cricket analytics store.
//
// Usage:
//
//	cricketctl schema ensure
//	cricketctl schema force 1
//	cricketctl seed
//	cricketctl ingest live
//	cricketctl ingest scorecard 91234 91240
//	cricketctl ingest schedule live --delay 15m
//	cricketctl query list --tier advanced
//	cricketctl query run top_run_scorers --param limit=5 --param format=ODI
//	cricketctl query custom "SELECT name FROM players LIMIT 5"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/cricket-analytics/internal/app"
	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "cricketctl",
		Short:         "Cricket analytics store operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(schemaCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(queryCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", usecase.UserMessage(err))
		fmt.Fprintln(os.Stderr, "detail:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.NewConsole(cfg.LogLevel)
	logging.SetDefault(logger)
	return cfg, logger, nil
}

// withRuntime opens the store, runs fn and closes the store again.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, rt *app.Runtime, logger *logging.Logger) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	return fn(ctx, cfg, rt, logger)
}
