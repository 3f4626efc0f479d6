package main

import (
	"os"

	"github.com/aretw0/giveaibreak/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game",
	Long: `Plays one game. On a terminal the game runs full screen; with piped input or
--json it runs line by line, which suits scripts and agents.

Use --session to keep a named session between runs and --route to jump to a
screen: /, /intro, /finish or /prompt/<slug>.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		quiet := !jsonMode && term.IsTerminal(int(os.Stdout.Fd()))

		cfg, logger, closeLog, err := setup(cmd, quiet)
		if err != nil {
			return err
		}
		defer closeLog()

		if offline, _ := cmd.Flags().GetBool("offline"); offline {
			cfg.Offline = true
		}
		opts := cli.PlayOptions{JSON: jsonMode}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Route, _ = cmd.Flags().GetString("route")
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")

		return cli.Play(cmd.Context(), cfg, opts, logger)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("offline", false, "Play against the built-in prompts without a server")
	playCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	playCmd.Flags().String("route", "", "Start on this route")
	playCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	playCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while playing")

	// Playing is the default when no command is given.
	rootCmd.Flags().AddFlagSet(playCmd.Flags())
	rootCmd.RunE = playCmd.RunE
}
