package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orayew2002/rollbook/config"
	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/report"
	"github.com/orayew2002/rollbook/store"
	"github.com/orayew2002/rollbook/tui"
	"github.com/orayew2002/rollbook/weekly"
)

var (
	storeBackend   string
	requireHeaders bool

	weeklyDay    string
	weeklyAll    bool
	weeklyTUI    bool
	weeklyOutput string
)

func newWeeklyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Aggregate absences and leaves across day exports",
	}

	cmd.PersistentFlags().StringVar(&storeBackend, "store", config.DefaultBackend, "session store: sqlite, redis or memory")
	cmd.PersistentFlags().BoolVar(&requireHeaders, "require-headers", false, "reject day files without name/id headers")

	add := &cobra.Command{
		Use:   "add --day DAY FILE...",
		Short: "Load one or more exports for a day",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWeeklyAddCmd,
	}
	add.Flags().StringVar(&weeklyDay, "day", "", "Monday, Tuesday, Wednesday or Thursday")
	_ = add.MarkFlagRequired("day")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the aggregated table",
		Args:  cobra.NoArgs,
		RunE:  runWeeklyShowCmd,
	}
	show.Flags().BoolVar(&weeklyAll, "all", false, "include students without absences or leaves")
	show.Flags().BoolVar(&weeklyTUI, "tui", false, "open the interactive table")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the weekly report workbook",
		Args:  cobra.NoArgs,
		RunE:  runWeeklyExportCmd,
	}
	export.Flags().StringVar(&weeklyOutput, "output", "weekly_report.xlsx", "report path")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forget every loaded file",
		Args:  cobra.NoArgs,
		RunE:  runWeeklyResetCmd,
	}

	cmd.AddCommand(add, show, export, reset)
	return cmd
}

func runWeeklyAddCmd(cmd *cobra.Command, args []string) error {
	day, err := domain.ParseDay(weeklyDay)
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *weekly.Session) error {
		n, err := s.AddDay(ctx, day, args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d file(s) for %s (%d total)\n", n, day, s.Loaded(day))
		return nil
	})
}

func runWeeklyShowCmd(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(_ context.Context, s *weekly.Session) error {
		if weeklyTUI {
			m := tui.New(s.Aggregate(), weeklyAll, func() ([]domain.AggregateRow, error) {
				return s.Aggregate(), nil
			})
			return tui.Run(m)
		}
		return report.RenderTable(cmd.OutOrStdout(), s.Aggregate(), weeklyAll)
	})
}

func runWeeklyExportCmd(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(_ context.Context, s *weekly.Session) error {
		rows := s.Aggregate()
		if err := report.WriteToFile(rows, weeklyOutput); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %d record(s): %s\n", len(report.Flagged(rows)), weeklyOutput)
		return nil
	})
}

func runWeeklyResetCmd(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *weekly.Session) error {
		if err := s.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
		return nil
	})
}

// withSession opens the configured store and session, runs fn, and closes the store.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *weekly.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "store", &storeBackend, fileCfg.Store.Backend)
	applyBoolConfig(cmd, "require-headers", &requireHeaders, fileCfg.Weekly.RequireHeaders)

	st, err := openStore(ctx, storeBackend, fileCfg.Store)
	if err != nil {
		return err
	}
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Printf("failed to close store: %v", cerr)
			}
		}()
	}

	schema := weekly.DefaultSchema()
	schema.RequireHeaders = requireHeaders

	s, err := weekly.OpenSession(ctx, st, schema)
	if err != nil {
		return err
	}
	return fn(ctx, s)
}

// openStore returns nil for the memory backend.
func openStore(ctx context.Context, backend string, cfg config.StoreConfig) (weekly.Store, error) {
	switch backend {
	case config.BackendMemory:
		return nil, nil
	case config.BackendSQLite, "":
		path := config.DefaultDBPath()
		if cfg.Path != nil && *cfg.Path != "" && os.Getenv(config.DBPathEnv) == "" {
			path = *cfg.Path
		}
		st, err := store.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, nil
	case config.BackendRedis:
		opts := store.RedisOptions{Addr: config.DefaultRedisAddr}
		if cfg.RedisAddr != nil {
			opts.Addr = *cfg.RedisAddr
		}
		if cfg.RedisPassword != nil {
			opts.Password = *cfg.RedisPassword
		}
		if cfg.RedisDB != nil {
			opts.DB = *cfg.RedisDB
		}
		if cfg.RedisPrefix != nil {
			opts.Prefix = *cfg.RedisPrefix
		}
		st, err := store.OpenRedis(ctx, opts)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want sqlite, redis or memory)", backend)
	}
}
