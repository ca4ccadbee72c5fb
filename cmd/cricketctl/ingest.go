package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/cricket-analytics/internal/app"
	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample dataset into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, _ config.Config, rt *app.Runtime, logger *logging.Logger) error {
				inserted, err := sqlstore.BootstrapSeed(ctx, rt.DB, time.Now().UTC())
				if err != nil {
					return err
				}
				if !inserted {
					fmt.Fprintln(cmd.OutOrStdout(), "store already has players, seed skipped")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sample data loaded")
				return nil
			})
		},
	}
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Pull data from Cricbuzz into the store",
	}
	cmd.AddCommand(ingestListCmd("live", "Store the matches currently in progress", func(ctx context.Context, svc *usecase.IngestionService) (ingestion.Summary, error) {
		return svc.RefreshLiveMatches(ctx)
	}))
	cmd.AddCommand(ingestListCmd("recent", "Store recently finished matches", func(ctx context.Context, svc *usecase.IngestionService) (ingestion.Summary, error) {
		return svc.RefreshRecentMatches(ctx)
	}))
	cmd.AddCommand(ingestScorecardCmd())
	cmd.AddCommand(ingestPlayerCmd())
	cmd.AddCommand(ingestCommentaryCmd())
	cmd.AddCommand(ingestScheduleCmd())
	return cmd
}

// withIngestion is withRuntime for commands that need the provider.
func withIngestion(cmd *cobra.Command, fn func(ctx context.Context, svc *usecase.IngestionService) error) error {
	return withRuntime(cmd, func(ctx context.Context, _ config.Config, rt *app.Runtime, _ *logging.Logger) error {
		if rt.Services.Ingestion == nil {
			return fmt.Errorf("%w: CRICBUZZ_API_KEY is not set", usecase.ErrUnavailable)
		}
		return fn(ctx, rt.Services.Ingestion)
	})
}

func ingestListCmd(use, short string, run func(context.Context, *usecase.IngestionService) (ingestion.Summary, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIngestion(cmd, func(ctx context.Context, svc *usecase.IngestionService) error {
				summary, err := run(ctx, svc)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func ingestScorecardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scorecard <match-id>...",
		Short: "Store scorecards and player stat lines for one or more matches",
		Args:  cobra.RangeArgs(1, 50),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIngestion(cmd, func(ctx context.Context, svc *usecase.IngestionService) error {
				summary, err := svc.RefreshScorecards(ctx, args)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func ingestPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <provider-id>",
		Short: "Import one player profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIngestion(cmd, func(ctx context.Context, svc *usecase.IngestionService) error {
				p, err := svc.ImportPlayer(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s, %s)\n", p.Name, p.ID, p.Country)
				return nil
			})
		},
	}
}

func ingestCommentaryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "commentary <match-id>",
		Short: "Print the latest ball-by-ball commentary without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIngestion(cmd, func(ctx context.Context, svc *usecase.IngestionService) error {
				lines, skipped, err := svc.Commentary(ctx, args[0], limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, line := range lines {
					if label := line.Label(); label != "" {
						fmt.Fprintf(w, "%5s  %s\n", label, line.Text)
						continue
					}
					fmt.Fprintf(w, "       %s\n", line.Text)
				}
				if len(skipped) > 0 {
					fmt.Fprintf(w, "skipped=%d\n", len(skipped))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of lines to print (default 10, max 100)")
	return cmd
}

func printSummary(w io.Writer, s ingestion.Summary) {
	fmt.Fprintf(w, "series=%d teams=%d venues=%d players=%d matches=%d stats=%d skipped=%d\n",
		s.Series, s.Teams, s.Venues, s.Players, s.Matches, s.Stats, len(s.Skipped))
	for _, rec := range s.Skipped {
		reason := rec.Reason
		if reason == "" && rec.Err != nil {
			reason = rec.Err.Error()
		}
		fmt.Fprintf(w, "  skipped #%d %s: %s\n", rec.Index, rec.Key, reason)
	}
}

func ingestScheduleCmd() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "schedule <live|recent|scorecard> [match-id]",
		Short: "Queue a refresh through QStash instead of running it now",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := usecase.ScheduleInput{Kind: args[0], Delay: delay}
			if len(args) == 2 {
				input.MatchID = args[1]
			}
			return withRuntime(cmd, func(ctx context.Context, _ config.Config, rt *app.Runtime, _ *logging.Logger) error {
				if rt.Services.Scheduler == nil {
					return fmt.Errorf("%w: QSTASH_TOKEN is not set", usecase.ErrUnavailable)
				}
				scheduled, err := rt.Services.Scheduler.Schedule(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %s at %s (%s)\n",
					scheduled.Path, scheduled.RunAt.Format(time.RFC3339), scheduled.DeduplicationID)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 0, "how long to wait before the refresh runs")
	return cmd
}
