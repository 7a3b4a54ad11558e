// Package main is the entry point for the archivist CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "archivist",
		Short:        "archivist: version, archive and publish rendered reports",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to archivist.toml (default: search upward from the working directory)")

	root.AddCommand(
		runCmd(),
		indexCmd(),
		syncCmd(),
		listCmd(),
		browseCmd(),
		statusCmd(),
		initCmd(),
		stubCmd(),
	)

	return root
}
