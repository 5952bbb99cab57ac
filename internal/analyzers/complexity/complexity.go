// Package complexity scores Python functions with cyclomatic complexity,
// length, and nesting metrics, and aggregates them per file.
package complexity

import (
	"context"
	"math"
	"sort"

	"github.com/deepdive-tools/deepdive/internal/pysource"
)

// Default assessment thresholds.
const (
	DefaultAvgComplexityTarget = 10
	DefaultMaxComplexityWarn   = 15
	DefaultAvgLengthTarget     = 30
	DefaultMaxLengthWarn       = 50
	DefaultMaxNestingTarget    = 3
)

// Thresholds control when metrics are flagged in assessments and reports.
type Thresholds struct {
	AvgComplexityTarget float64
	MaxComplexityWarn   int
	AvgLengthTarget     float64
	MaxLengthWarn       int
	MaxNestingTarget    int
}

// DefaultThresholds returns the stock flagging thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AvgComplexityTarget: DefaultAvgComplexityTarget,
		MaxComplexityWarn:   DefaultMaxComplexityWarn,
		AvgLengthTarget:     DefaultAvgLengthTarget,
		MaxLengthWarn:       DefaultMaxLengthWarn,
		MaxNestingTarget:    DefaultMaxNestingTarget,
	}
}

// FunctionMetrics holds the scores of one function.
type FunctionMetrics struct {
	Name       string `json:"name" yaml:"name"`
	Line       int    `json:"line_number" yaml:"line_number"`
	Complexity int    `json:"complexity" yaml:"complexity"`
	Length     int    `json:"length" yaml:"length"`
	MaxNesting int    `json:"max_nesting" yaml:"max_nesting"`
	NumParams  int    `json:"num_parameters" yaml:"num_parameters"`
}

// FileMetrics aggregates function scores across one file.
type FileMetrics struct {
	Path           string            `json:"file_path" yaml:"file_path"`
	TotalFunctions int               `json:"total_functions" yaml:"total_functions"`
	AvgComplexity  float64           `json:"avg_complexity" yaml:"avg_complexity"`
	MaxComplexity  int               `json:"max_complexity" yaml:"max_complexity"`
	AvgLength      float64           `json:"avg_length" yaml:"avg_length"`
	MaxLength      int               `json:"max_length" yaml:"max_length"`
	AvgNesting     float64           `json:"avg_nesting" yaml:"avg_nesting"`
	MaxNesting     int               `json:"max_nesting" yaml:"max_nesting"`
	Functions      []FunctionMetrics `json:"functions" yaml:"functions"`
}

// Analyzer scores files against a set of thresholds.
type Analyzer struct {
	thresholds Thresholds
}

// New creates an analyzer.
func New(th Thresholds) *Analyzer {
	return &Analyzer{thresholds: th}
}

// Thresholds returns the analyzer's flagging thresholds.
func (a *Analyzer) Thresholds() Thresholds { return a.thresholds }

// Score computes the metrics of one function subtree. The walk covers
// nested functions too, so an outer function pays for branches declared in
// its closures.
func Score(fn *pysource.Node) FunctionMetrics {
	m := FunctionMetrics{
		Name:       fn.Name,
		Line:       fn.Line,
		Complexity: 1,
		NumParams:  fn.Params,
	}

	fn.Walk(func(n *pysource.Node) {
		switch n.Kind {
		case pysource.KindConditional, pysource.KindLoop, pysource.KindExcept,
			pysource.KindWith, pysource.KindAssert, pysource.KindBoolChain,
			pysource.KindCompFor, pysource.KindCompIf:
			m.Complexity++
		}
	})

	m.MaxNesting = maxNesting(fn, 0)

	m.Length = fn.EndLine - fn.Line + 1 - fn.DocLines
	if m.Length < 1 {
		m.Length = 1
	}

	return m
}

// maxNesting returns the deepest chain of nesting constructs under n.
// Conditionals, loops, with blocks, and try blocks add a level; except
// clauses and nested definitions do not.
func maxNesting(n *pysource.Node, depth int) int {
	deepest := depth

	for _, c := range n.Children {
		d := depth

		switch c.Kind {
		case pysource.KindConditional, pysource.KindLoop,
			pysource.KindWith, pysource.KindTry:
			d++
		}

		if sub := maxNesting(c, d); sub > deepest {
			deepest = sub
		}
	}

	return deepest
}

// AnalyzeSource parses content and scores every function at any depth,
// including methods and nested functions.
func (a *Analyzer) AnalyzeSource(ctx context.Context, content []byte, path string) (*FileMetrics, error) {
	tree, err := pysource.ModuleTree(ctx, content, path)
	if err != nil {
		return nil, err
	}

	return a.aggregate(tree, path), nil
}

// AnalyzeFile validates, reads, and scores one file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileMetrics, error) {
	content, err := pysource.ReadSource(path)
	if err != nil {
		return nil, err
	}

	return a.AnalyzeSource(ctx, content, path)
}

func (a *Analyzer) aggregate(tree *pysource.Node, path string) *FileMetrics {
	fm := &FileMetrics{
		Path:      path,
		Functions: []FunctionMetrics{},
	}

	for _, fn := range tree.Functions() {
		fm.Functions = append(fm.Functions, Score(fn))
	}

	fm.TotalFunctions = len(fm.Functions)
	if fm.TotalFunctions == 0 {
		return fm
	}

	var sumComplexity, sumLength, sumNesting int

	for _, f := range fm.Functions {
		sumComplexity += f.Complexity
		sumLength += f.Length
		sumNesting += f.MaxNesting

		fm.MaxComplexity = max(fm.MaxComplexity, f.Complexity)
		fm.MaxLength = max(fm.MaxLength, f.Length)
		fm.MaxNesting = max(fm.MaxNesting, f.MaxNesting)
	}

	n := float64(fm.TotalFunctions)
	fm.AvgComplexity = round2(float64(sumComplexity) / n)
	fm.AvgLength = round2(float64(sumLength) / n)
	fm.AvgNesting = round2(float64(sumNesting) / n)

	return fm
}

// SortedByComplexity returns the functions ordered worst first.
func (fm *FileMetrics) SortedByComplexity() []FunctionMetrics {
	sorted := make([]FunctionMetrics, len(fm.Functions))
	copy(sorted, fm.Functions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Complexity > sorted[j].Complexity
	})

	return sorted
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
