package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orayew2002/rollbook/config"
	"github.com/orayew2002/rollbook/server"
	"github.com/orayew2002/rollbook/weekly"
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation and weekly API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&storeBackend, "store", config.DefaultBackend, "session store: sqlite, redis or memory")
	cmd.Flags().BoolVar(&requireHeaders, "require-headers", false, "reject day files without name/id headers")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)

	return withSession(cmd, func(_ context.Context, s *weekly.Session) error {
		router := server.NewRouter(server.NewAPIHandler(s, logger))
		logger.Printf("listening on %s", serveAddr)
		if err := router.Run(serveAddr); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
}
