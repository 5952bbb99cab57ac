// Package main provides the entry point for the deepdive CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/cmd/deepdive/commands"
	"github.com/deepdive-tools/deepdive/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deepdive",
		Short: "Deepdive - Python source analysis tool",
		Long: `Deepdive analyzes Python source files for structure and quality.

Commands:
  structure   Extract imports, classes, functions, and external calls
  complexity  Score function complexity, length, and nesting
  classify    Assign a file to a review tier
  comments    Classify comments and docstrings by quality
  rewrite     Rewrite low-value comments
  scan        Analyze every Python file under a directory
  mcp         Start an MCP server exposing the analyzers as tools`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewStructureCommand())
	rootCmd.AddCommand(commands.NewComplexityCommand())
	rootCmd.AddCommand(commands.NewClassifyCommand())
	rootCmd.AddCommand(commands.NewCommentsCommand())
	rootCmd.AddCommand(commands.NewRewriteCommand())
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configureLogging() {
	level := slog.LevelWarn

	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "deepdive %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
