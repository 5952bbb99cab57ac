package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
	"github.com/deepdive-tools/deepdive/internal/config"
)

// Output format names shared by the subcommands.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	outputFlag      = "output"
	outputFlagShort = "o"
	outputFlagUsage = "output file (default: stdout)"

	formatFlag      = "format"
	formatFlagShort = "f"

	configFlag      = "config"
	configFlagUsage = "path to a config file (default: .deepdive.yaml)"

	jsonIndent = "  "
)

// ErrUnknownFormat is returned when --format names an unsupported format.
var ErrUnknownFormat = errors.New("unknown output format")

// openOutput returns the writer for a command's result and a close function.
// An empty path means stdout.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, file.Close, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", jsonIndent)

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)

	defer encoder.Close()

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}

// loadThresholds resolves complexity thresholds from the config file chain.
func loadThresholds(configPath string) (complexity.Thresholds, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return complexity.Thresholds{}, err
	}

	return complexity.Thresholds{
		AvgComplexityTarget: cfg.Complexity.AvgComplexityTarget,
		MaxComplexityWarn:   cfg.Complexity.MaxComplexityWarn,
		AvgLengthTarget:     cfg.Complexity.AvgLengthTarget,
		MaxLengthWarn:       cfg.Complexity.MaxLengthWarn,
		MaxNestingTarget:    cfg.Complexity.MaxNestingTarget,
	}, nil
}
