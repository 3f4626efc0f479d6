package main

import (
	"github.com/aretw0/giveaibreak/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the screen flow as a Mermaid diagram",
	Long: `Prints the route flow (landing, intro, every prompt, finish) of the
configured catalog as a Mermaid flowchart. With --session, the prompts the
session answered and its current screen are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer closeLog()

		if v, _ := cmd.Flags().GetString("catalog"); v != "" {
			cfg.Serve.CatalogDir = v
		}
		sessionID, _ := cmd.Flags().GetString("session")
		return cli.Graph(cmd.Context(), cfg, sessionID, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("catalog", "", "Directory of prompt documents")
	graphCmd.Flags().StringP("session", "s", "", "Overlay the progress of this session")
}
