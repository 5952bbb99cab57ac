package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
)

// ComplexityCommand holds the flags for the complexity command.
type ComplexityCommand struct {
	output     string
	format     string
	configPath string
	plotPath   string
	verbose    bool
}

// NewComplexityCommand creates the complexity subcommand. It scores every
// function in one Python file and reports per-function and per-file metrics.
func NewComplexityCommand() *cobra.Command {
	cmd := &ComplexityCommand{}

	cobraCmd := &cobra.Command{
		Use:   "complexity <file.py>",
		Short: "Score function complexity, length, and nesting",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, outputFlag, outputFlagShort, "", outputFlagUsage)
	cobraCmd.Flags().StringVarP(&cmd.format, formatFlag, formatFlagShort, FormatText, "output format: text, json, or yaml")
	cobraCmd.Flags().StringVar(&cmd.configPath, configFlag, "", configFlagUsage)
	cobraCmd.Flags().StringVar(&cmd.plotPath, "plot", "", "write an HTML bar chart of per-function scores")
	cobraCmd.Flags().BoolVarP(&cmd.verbose, "verbose", "v", false, "show all functions without truncation")

	return cobraCmd
}

// Run executes the complexity command.
func (c *ComplexityCommand) Run(cobraCmd *cobra.Command, args []string) error {
	thresholds, err := loadThresholds(c.configPath)
	if err != nil {
		return err
	}

	analyzer := complexity.New(thresholds)

	metrics, err := analyzer.AnalyzeFile(cobraCmd.Context(), args[0])
	if err != nil {
		return err
	}

	if c.plotPath != "" {
		plotErr := analyzer.WritePlot(metrics, c.plotPath)
		if plotErr != nil {
			return plotErr
		}
	}

	writer, closeFn, err := openOutput(c.output)
	if err != nil {
		return err
	}

	defer closeFn() //nolint:errcheck // best-effort close on the output file

	switch c.format {
	case FormatJSON:
		return writeJSON(writer, metrics)
	case FormatYAML:
		return writeYAML(writer, metrics)
	case FormatText:
		analyzer.RenderText(writer, metrics, c.verbose)

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}
