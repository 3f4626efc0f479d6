package main

import (
	"github.com/aretw0/giveaibreak/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local scoring server",
	Long: `Starts a local implementation of the scoring API: GET /api/prompts,
GET /api/prompt/{slug} and POST /api/submit/{slug}, plus /openapi.yaml,
/swagger, /info, /healthz and /metrics.

Prompts come from serve.catalog_dir (markdown documents) or the built-in set.
Responses are scored by serve.scorer_file, by OpenAI when
serve.openai_api_key is set, or by keyword matching.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer closeLog()

		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			cfg.Serve.Addr = v
		}
		if v, _ := cmd.Flags().GetString("catalog"); v != "" {
			cfg.Serve.CatalogDir = v
		}
		watch, _ := cmd.Flags().GetBool("watch")

		return cli.Serve(cmd.Context(), cfg, cli.ServeOptions{Watch: watch}, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().String("catalog", "", "Directory of prompt documents")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the catalog when its documents change")
}
