package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
)

// RewriteCommand holds the flags for the rewrite command.
type RewriteCommand struct {
	outputPath string
	apply      bool
}

// NewRewriteCommand creates the rewrite subcommand. It deletes noise comments
// and inserts rewrite suggestions, previewing by default.
func NewRewriteCommand() *cobra.Command {
	cmd := &RewriteCommand{}

	cobraCmd := &cobra.Command{
		Use:   "rewrite <file.py>",
		Short: "Rewrite low-value comments in a Python file",
		Long: `Rewrite low-value comments in a Python file.

Comments classified for deletion are removed, comments classified for rewrite
get a suggested replacement inserted above them. Without --apply nothing is
written; the planned changes and a line diff are printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.outputPath, outputFlag, outputFlagShort, "",
		"write the rewritten file here instead of in place")
	cobraCmd.Flags().BoolVar(&cmd.apply, "apply", false, "write the rewritten file")

	return cobraCmd
}

// Run executes the rewrite command.
func (c *RewriteCommand) Run(cobraCmd *cobra.Command, args []string) error {
	result, err := comments.New(nil).RewriteFile(cobraCmd.Context(), args[0], c.outputPath, c.apply)
	if err != nil {
		return err
	}

	out := cobraCmd.OutOrStdout()

	if len(result.Changes) == 0 {
		fmt.Fprintf(out, "No comment changes needed in %s\n", args[0])

		return nil
	}

	if !c.apply {
		color.New(color.Bold).Fprintf(out, "Planned changes for %s (dry run, use --apply to write):\n", args[0])
	}

	for _, change := range result.Changes {
		fmt.Fprintf(out, "  %s\n", change)
	}

	if !c.apply {
		fmt.Fprintln(out)
		fmt.Fprint(out, comments.RenderDiff(result.Original, result.Rewritten))
	}

	return nil
}
