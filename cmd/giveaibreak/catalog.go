package main

import (
	"fmt"

	"github.com/aretw0/giveaibreak/internal/cli"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with prompt catalogs",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in prompts as editable documents",
	Long:  `Writes one markdown document per built-in prompt into <dir>. Serve them with 'giveaibreak serve --catalog <dir>'.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slugs, err := cli.ExportCatalog(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, slug := range slugs {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", slug)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d prompts to %s\n", len(slugs), args[0])
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check a prompt catalog for missing or malformed fields",
	Long:  `Checks every prompt in [dir], or the built-in prompts when no directory is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, closeLog, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer closeLog()

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		if err := cli.ValidateCatalog(cmd.Context(), dir, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
