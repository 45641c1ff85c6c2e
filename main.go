// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/weighted-voting/cliparse"
	"github.com/danielhkuo/weighted-voting/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weighted-voting",
		Short: "Weighted, permissioned governance voting service",
		Long: `weighted-voting runs a single-administrator voting service: the administrator
whitelists voters with weights, creates proposals and opens and closes one
global voting window. Each whitelisted voter casts exactly one weighted vote.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	// Config flags are shared by every command
	rootCmd.PersistentFlags().AddFlagSet(cliparse.NewFlagSet())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tally",
		Short: "Print the proposal ledger and current tallies",
		Args:  cobra.NoArgs,
		RunE:  runTally,
	})

	return rootCmd
}

// loadConfig resolves configuration and installs the default logger
func loadConfig(cmd *cobra.Command) (cliparse.Config, error) {
	cfg, err := cliparse.FromFlags(cmd.Flags())
	if err != nil {
		return cliparse.Config{}, err
	}

	logger, err := logging.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return cliparse.Config{}, err
	}
	slog.SetDefault(logger)

	return cfg, nil
}
