package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/schema"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create or inspect the store schema",
	}
	cmd.AddCommand(schemaEnsureCmd())
	cmd.AddCommand(schemaVersionCmd())
	cmd.AddCommand(schemaForceCmd())
	return cmd
}

func newManager() (*schema.Manager, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return schema.NewManager(cfg.DBDriver, cfg.DBURL, logger), nil
}

func schemaEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Create every missing table; existing data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			return m.EnsureSchema(cmd.Context())
		},
	}
}

func schemaVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager()
			if err != nil {
				return err
			}
			version, dirty, ok, err := m.Version(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "version: none")
				fmt.Fprintln(out, "dirty: false")
				return nil
			}
			fmt.Fprintf(out, "version: %d\n", version)
			fmt.Fprintf(out, "dirty: %t\n", dirty)
			return nil
		},
	}
}

func schemaForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied after a failed migration was fixed by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			m, err := newManager()
			if err != nil {
				return err
			}
			if err := m.Force(cmd.Context(), version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forced version to %d\n", version)
			return nil
		},
	}
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}
