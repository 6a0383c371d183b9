// Package main provides the CLI entrypoint for rollbook.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/orayew2002/rollbook/config"
	"github.com/orayew2002/rollbook/domain"
)

var logger = log.New(os.Stderr, "rollbook: ", 0)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		title, message := describe(err)
		logErrf("%s: %s\n", title, message)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rollbook",
		Short:         "Attendance reconciliation and weekly absence reports from spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newWeeklyCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// describe turns an error into the title and message shown to the user.
func describe(err error) (title, message string) {
	switch domain.KindOf(err) {
	case domain.KindInvalidRange:
		return "Invalid row range", err.Error() + " (use start-end, e.g. 3-38)"
	case domain.KindInvalidColumn:
		return "Invalid column", err.Error() + " (use a single letter such as C)"
	case domain.KindMalformedFile:
		return "Unreadable file", err.Error()
	case domain.KindIO:
		return "File error", err.Error()
	case domain.KindNoData:
		return "No data", err.Error() + " (load data first)"
	default:
		return "Error", err.Error()
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create the config file if missing and print its path",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	created, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(cmd.OutOrStdout(), "created", path)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func loadFileConfig() (config.FileConfig, error) {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
