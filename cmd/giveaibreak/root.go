package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/giveaibreak/internal/config"
	"github.com/aretw0/giveaibreak/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "giveaibreak",
	Short: "Help out a tired AI by answering its requests for it",
	Long: `giveaibreak is a small game: an exhausted AI assistant hands you the requests
people keep sending it, you answer them, and it rates your answers with stars.

Run without a command to play.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./giveaibreak.yaml when present)")
	flags.String("env-file", "", "Env file (default ./.env when present)")
	flags.String("server-url", "", "Base URL of the scoring API")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("log-file", "", "Write logs to this file")
}

// setup loads the configuration and opens the logger. Flags override the file
// and the environment. quiet discards logs unless a log file is set.
func setup(cmd *cobra.Command, quiet bool) (config.Config, *slog.Logger, func(), error) {
	flags := cmd.Flags()
	file, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(config.LoadOptions{File: file, EnvFile: envFile})
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if v, _ := flags.GetString("server-url"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v, _ := flags.GetString("log-file"); v != "" {
		cfg.Log.File = v
	}

	logger, closeLog, err := logging.Open(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Quiet:  quiet,
	})
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, func() { _ = closeLog() }, nil
}
