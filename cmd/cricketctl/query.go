package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	sonic "github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/cricket-analytics/internal/app"
	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/domain/analytics"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List and run catalog queries",
	}
	cmd.AddCommand(queryListCmd())
	cmd.AddCommand(queryRunCmd())
	cmd.AddCommand(queryCustomCmd())
	return cmd
}

func queryListCmd() *cobra.Command {
	var tier string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, _ config.Config, rt *app.Runtime, _ *logging.Logger) error {
				defs, err := rt.Services.Queries.ListQueries(ctx, tier)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIER\tNAME\tPARAMS\tTITLE")
				for _, def := range defs {
					names := make([]string, 0, len(def.Params))
					for _, p := range def.Params {
						names = append(names, p.Name)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Tier, def.Name, strings.Join(names, ","), def.Title)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "beginner, intermediate or advanced")
	return cmd
}

func queryRunCmd() *cobra.Command {
	var (
		params []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a catalog query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseParams(params)
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(ctx context.Context, _ config.Config, rt *app.Runtime, _ *logging.Logger) error {
				result, err := rt.Services.Queries.RunQuery(ctx, args[0], raw)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), format, result.Result)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&format, "output", "o", "table", "table, csv or json")
	return cmd
}

func queryCustomCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "custom <sql | ->",
		Short: "Run a read-only SELECT or WITH statement; '-' reads it from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			if text == "-" {
				body, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(body)
			}
			return withRuntime(cmd, func(ctx context.Context, _ config.Config, rt *app.Runtime, _ *logging.Logger) error {
				result, err := rt.Services.Queries.RunCustom(ctx, text)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), format, result)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "table, csv or json")
	return cmd
}

func parseParams(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q must be key=value", usecase.ErrInvalidInput, pair)
		}
		out[key] = value
	}
	return out, nil
}

func printResult(w io.Writer, format string, result analytics.Result) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return usecase.WriteCSV(w, result)
	case "json":
		body, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(body))
		return err
	case "table", "":
	default:
		return fmt.Errorf("%w: unknown output %q", usecase.ErrInvalidInput, format)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Truncated {
		fmt.Fprintln(w, "(result truncated)")
	}
	return nil
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case []byte:
		return string(t)
	case float64:
		return fmt.Sprintf("%.2f", t)
	default:
		return fmt.Sprint(t)
	}
}
