package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/config"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/stub"
)

// configFlag reads the persistent --config flag.
func configFlag(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [files...]",
		Short: "Archive rendered reports (Quarto post-render hook)",
		Long: `Version the rendered report, commit it to the archive store, rebuild the
archive index and mirror the store into the publish directory.

Without arguments the rendered files are read from the environment variable
named by trigger.env (QUARTO_PROJECT_OUTPUT_FILES by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return executeRun(ctx, configFlag(cmd), args, cmd.OutOrStdout())
		},
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the archive index from the archive store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeIndex(configFlag(cmd), cmd.OutOrStdout())
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the archive store into the publish directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSync(configFlag(cmd), cmd.OutOrStdout())
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeList(configFlag(cmd), cmd.OutOrStdout())
		},
	}
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse archived reports interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeBrowse(configFlag(cmd), cmd.OutOrStdout())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last archive run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(configFlag(cmd), cmd.OutOrStdout())
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold archivist.toml and the archive store in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			created, err := config.ScaffoldProject(dir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatScaffoldResult(created))
			return nil
		},
	}
}

func stubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Create today's report definition from the shared template",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts stub.Options
			opts.Template, _ = cmd.Flags().GetString("template")
			opts.Dir, _ = cmd.Flags().GetString("dir")
			opts.Title, _ = cmd.Flags().GetString("title")
			return executeStub(configFlag(cmd), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("template", stub.DefaultTemplate, "template included by the stub")
	cmd.Flags().String("dir", stub.DefaultDir, "directory for report definitions")
	cmd.Flags().String("title", "", "title prefix (default: project name)")
	return cmd
}
