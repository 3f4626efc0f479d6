package main

import (
	"github.com/aretw0/giveaibreak/internal/cli"
	"github.com/aretw0/giveaibreak/pkg/session"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage persisted sessions",
	Long:    `List, inspect and remove the sessions kept by the configured store.`,
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *session.Manager) error {
			return cli.ListSessions(cmd.Context(), m, cmd.OutOrStdout())
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:     "show <session-id>",
	Aliases: []string{"inspect"},
	Short:   "Print the snapshot of a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *session.Manager) error {
			return cli.ShowSession(cmd.Context(), m, args[0], cmd.OutOrStdout())
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>...",
	Aliases: []string{"rm"},
	Short:   "Remove one or more sessions",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *session.Manager) error {
			return cli.DeleteSessions(cmd.Context(), m, args, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func withManager(cmd *cobra.Command, fn func(*session.Manager) error) error {
	cfg, logger, closeLog, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer closeLog()

	manager, closeStore, err := cli.OpenManager(cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	return fn(manager)
}
