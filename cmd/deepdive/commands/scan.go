package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
	"github.com/deepdive-tools/deepdive/internal/config"
	"github.com/deepdive-tools/deepdive/internal/scan"
)

// ErrScanFailures is returned when one or more files could not be analyzed.
var ErrScanFailures = errors.New("some files failed analysis")

// ScanCommand holds the flags for the scan command.
type ScanCommand struct {
	output     string
	format     string
	configPath string
	exclude    []string
	workers    int
}

// NewScanCommand creates the scan subcommand. It walks a directory tree and
// runs classification, complexity, and comment analysis over every Python
// file found.
func NewScanCommand() *cobra.Command {
	cmd := &ScanCommand{}

	cobraCmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Analyze every Python file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.output, outputFlag, outputFlagShort, "", outputFlagUsage)
	cobraCmd.Flags().StringVarP(&cmd.format, formatFlag, formatFlagShort, FormatText, "output format: text, json, or yaml")
	cobraCmd.Flags().StringVar(&cmd.configPath, configFlag, "", configFlagUsage)
	cobraCmd.Flags().StringSliceVar(&cmd.exclude, "exclude", nil, "glob patterns of relative paths to skip")
	cobraCmd.Flags().IntVar(&cmd.workers, "workers", 0, "number of analysis workers (default: from config)")

	return cobraCmd
}

// Run executes the scan command.
func (c *ScanCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	workers := cfg.Scan.Workers
	if c.workers > 0 {
		workers = c.workers
	}

	exclude := cfg.Scan.Exclude
	if len(c.exclude) > 0 {
		exclude = c.exclude
	}

	thresholds := complexity.Thresholds{
		AvgComplexityTarget: cfg.Complexity.AvgComplexityTarget,
		MaxComplexityWarn:   cfg.Complexity.MaxComplexityWarn,
		AvgLengthTarget:     cfg.Complexity.AvgLengthTarget,
		MaxLengthWarn:       cfg.Complexity.MaxLengthWarn,
		MaxNestingTarget:    cfg.Complexity.MaxNestingTarget,
	}

	scanner := scan.New(
		scan.Options{Workers: workers, BatchSize: cfg.Scan.BatchSize, Exclude: exclude},
		complexity.New(thresholds),
		comments.New(slog.Default()),
		slog.Default(),
	)

	summary, err := scanner.Scan(cobraCmd.Context(), args[0])
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
		err = writeJSON(writer, summary)
	case FormatYAML:
		err = writeYAML(writer, summary)
	case FormatText:
		summary.RenderText(writer)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}

	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScanFailures, summary.Failed, summary.TotalFiles)
	}

	return nil
}
