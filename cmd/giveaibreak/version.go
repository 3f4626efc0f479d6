package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/giveaibreak"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of giveaibreak",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "giveaibreak version %s\n", strings.TrimSpace(giveaibreak.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
