package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/internal/analyzers/classify"
)

// ClassifyCommand holds the flags for the classify command.
type ClassifyCommand struct {
	output string
	format string
}

// NewClassifyCommand creates the classify subcommand. It assigns one Python
// file to a review tier with the reasoning behind the decision.
func NewClassifyCommand() *cobra.Command {
	cmd := &ClassifyCommand{}

	cobraCmd := &cobra.Command{
		Use:   "classify <file.py>",
		Short: "Assign a Python file to a review tier",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, outputFlag, outputFlagShort, "", outputFlagUsage)
	cobraCmd.Flags().StringVarP(&cmd.format, formatFlag, formatFlagShort, FormatText, "output format: text, json, or yaml")

	return cobraCmd
}

// Run executes the classify command.
func (c *ClassifyCommand) Run(_ *cobra.Command, args []string) error {
	result, err := classify.ClassifyFile(args[0])
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
		return writeJSON(writer, result)
	case FormatYAML:
		return writeYAML(writer, result)
	case FormatText:
		classify.RenderText(writer, result)

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}
