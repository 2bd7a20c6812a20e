// Package main is the entry point for the Stashport API.
// Its sole responsibility is wiring dependencies together and starting the
// server or running migrations. No business logic belongs here.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/stashport/internal/config"
	"github.com/pkordes/stashport/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stashport",
		Short:         "Travel itinerary API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var envFile string
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")

	serveCommand := serveCmd(&envFile)
	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(migrateCmd(&envFile))

	// Running the binary without a subcommand starts the server.
	rootCmd.RunE = serveCommand.RunE

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// Use plain stderr; the logger may not be configured yet.
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the process logger. The closer
// flushes the rotated log file, if any.
func setup(envFile string) (config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("configuration error: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogFileMaxMB,
	})
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}
