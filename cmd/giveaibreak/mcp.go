package main

import (
	"errors"
	"net/http"

	"github.com/aretw0/giveaibreak/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the game as MCP tools so an agent can play it.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP when --sse-addr is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer closeLog()

		sseAddr, _ := cmd.Flags().GetString("sse-addr")
		baseURL, _ := cmd.Flags().GetString("base-url")
		if baseURL == "" && sseAddr != "" {
			baseURL = "http://localhost" + sseAddr
		}

		err = cli.ServeMCP(cmd.Context(), cfg, sseAddr, baseURL, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("sse-addr", "", "Serve over SSE on this address instead of stdio")
	mcpCmd.Flags().String("base-url", "", "Public base URL of the SSE server")
}
