package main

import (
	"fmt"

	"github.com/spf13/cobra"

	obs "github.com/divmain/drydock-scaffold/internal/infrastructure/observability"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), obs.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
