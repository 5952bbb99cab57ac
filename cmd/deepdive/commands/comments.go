package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
)

// FormatMarkdown renders the comment analysis as a markdown review report.
const FormatMarkdown = "markdown"

// CommentsCommand holds the flags for the comments command.
type CommentsCommand struct {
	output string
	format string
}

// NewCommentsCommand creates the comments subcommand. It classifies every
// comment and docstring of one Python file into the comment taxonomy.
func NewCommentsCommand() *cobra.Command {
	cmd := &CommentsCommand{}

	cobraCmd := &cobra.Command{
		Use:   "comments <file.py>",
		Short: "Classify comments and docstrings by quality",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, outputFlag, outputFlagShort, "", outputFlagUsage)
	cobraCmd.Flags().StringVarP(&cmd.format, formatFlag, formatFlagShort, FormatMarkdown,
		"output format: markdown, json, or yaml")

	return cobraCmd
}

// Run executes the comments command.
func (c *CommentsCommand) Run(cobraCmd *cobra.Command, args []string) error {
	analysis, err := comments.New(nil).AnalyzeFile(cobraCmd.Context(), args[0])
	if err != nil {
		return err
	}

	writer, closeFn, err := openOutput(c.output)
	if err != nil {
		return err
	}

	defer closeFn() //nolint:errcheck // best-effort close on the output file

	switch c.format {
	case FormatJSON:
		return writeJSON(writer, analysis)
	case FormatYAML:
		return writeYAML(writer, analysis)
	case FormatMarkdown:
		_, err = fmt.Fprintln(writer, comments.GenerateReport(analysis))

		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}
