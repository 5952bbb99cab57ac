package config

import "errors"

// Defaults applied when a setting is absent from file and environment.
const (
	DefaultScanWorkers   = 4
	DefaultScanBatchSize = 64

	DefaultAvgComplexityTarget = 10.0
	DefaultMaxComplexityWarn   = 15
	DefaultAvgLengthTarget     = 30.0
	DefaultMaxLengthWarn       = 50
	DefaultMaxNestingTarget    = 3
)

// Validation errors.
var (
	ErrInvalidWorkers    = errors.New("scan.workers must be positive")
	ErrInvalidBatchSize  = errors.New("scan.batch_size must be positive")
	ErrInvalidThresholds = errors.New("complexity thresholds must be positive")
)

// Config is the top-level configuration struct for deepdive.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Complexity ComplexityConfig `mapstructure:"complexity"`
	Scan       ScanConfig       `mapstructure:"scan"`
}

// ComplexityConfig holds the flagging thresholds of the complexity scorer.
type ComplexityConfig struct {
	AvgComplexityTarget float64 `mapstructure:"avg_complexity_target"`
	MaxComplexityWarn   int     `mapstructure:"max_complexity_warn"`
	AvgLengthTarget     float64 `mapstructure:"avg_length_target"`
	MaxLengthWarn       int     `mapstructure:"max_length_warn"`
	MaxNestingTarget    int     `mapstructure:"max_nesting_target"`
}

// ScanConfig holds directory scan settings.
type ScanConfig struct {
	Workers   int      `mapstructure:"workers"`
	BatchSize int      `mapstructure:"batch_size"`
	Exclude   []string `mapstructure:"exclude"`
}

// Validate checks invariants that viper cannot express.
func (c *Config) Validate() error {
	if c.Scan.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Scan.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Complexity.AvgComplexityTarget <= 0 ||
		c.Complexity.MaxComplexityWarn <= 0 ||
		c.Complexity.AvgLengthTarget <= 0 ||
		c.Complexity.MaxLengthWarn <= 0 ||
		c.Complexity.MaxNestingTarget <= 0 {
		return ErrInvalidThresholds
	}

	return nil
}
