package complexity

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// topFunctionLimit caps the per-function breakdown in text reports.
const topFunctionLimit = 10

// Issues lists the threshold violations of a file, ready for display.
func (a *Analyzer) Issues(fm *FileMetrics) []string {
	th := a.thresholds
	issues := []string{}

	if fm.AvgComplexity > th.AvgComplexityTarget {
		issues = append(issues, fmt.Sprintf("average complexity is %.2f (target: <%.0f)", fm.AvgComplexity, th.AvgComplexityTarget))
	}

	if fm.MaxComplexity > th.MaxComplexityWarn {
		issues = append(issues, fmt.Sprintf("maximum complexity is %d (warning: %d+)", fm.MaxComplexity, th.MaxComplexityWarn))
	}

	if fm.AvgLength > th.AvgLengthTarget {
		issues = append(issues, fmt.Sprintf("average function length is %.2f lines (target: <%.0f)", fm.AvgLength, th.AvgLengthTarget))
	}

	if fm.MaxNesting > th.MaxNestingTarget {
		issues = append(issues, fmt.Sprintf("maximum nesting is %d levels (target: <=%d)", fm.MaxNesting, th.MaxNestingTarget))
	}

	return issues
}

// flags labels one function's threshold violations for the breakdown table.
func (a *Analyzer) flags(f FunctionMetrics) string {
	th := a.thresholds
	var labels []string

	switch {
	case f.Complexity > th.MaxComplexityWarn:
		labels = append(labels, "HIGH COMPLEXITY")
	case float64(f.Complexity) > th.AvgComplexityTarget:
		labels = append(labels, "complexity warning")
	}

	switch {
	case f.Length > th.MaxLengthWarn:
		labels = append(labels, "VERY LONG")
	case float64(f.Length) > th.AvgLengthTarget:
		labels = append(labels, "long")
	}

	if f.MaxNesting > th.MaxNestingTarget {
		labels = append(labels, fmt.Sprintf("nesting: %d", f.MaxNesting))
	}

	return strings.Join(labels, ", ")
}

// RenderText writes the human-readable report. With verbose set, the worst
// functions are broken out in a table.
func (a *Analyzer) RenderText(w io.Writer, fm *FileMetrics, verbose bool) {
	title := color.New(color.Bold)
	warn := color.New(color.FgYellow)
	good := color.New(color.FgGreen)

	title.Fprintf(w, "Complexity Metrics: %s\n\n", fm.Path)

	overview := table.NewWriter()
	overview.SetOutputMirror(w)
	overview.SetStyle(table.StyleLight)
	overview.AppendHeader(table.Row{"Metric", "Value", "Target"})
	overview.AppendRow(table.Row{"Total Functions", fm.TotalFunctions, ""})
	overview.AppendRow(table.Row{"Avg Complexity", fm.AvgComplexity, fmt.Sprintf("<%.0f", a.thresholds.AvgComplexityTarget)})
	overview.AppendRow(table.Row{"Max Complexity", fm.MaxComplexity, fmt.Sprintf("warn %d+", a.thresholds.MaxComplexityWarn)})
	overview.AppendRow(table.Row{"Avg Length", fm.AvgLength, fmt.Sprintf("<%.0f lines", a.thresholds.AvgLengthTarget)})
	overview.AppendRow(table.Row{"Max Length", fm.MaxLength, ""})
	overview.AppendRow(table.Row{"Avg Nesting", fm.AvgNesting, fmt.Sprintf("<=%d levels", a.thresholds.MaxNestingTarget)})
	overview.AppendRow(table.Row{"Max Nesting", fm.MaxNesting, ""})
	overview.Render()

	issues := a.Issues(fm)
	if len(issues) > 0 {
		fmt.Fprintln(w)
		warn.Fprintln(w, "Issues Found:")

		for _, issue := range issues {
			fmt.Fprintf(w, "  ! %s\n", issue)
		}
	} else {
		fmt.Fprintln(w)
		good.Fprintln(w, "All metrics within target ranges")
	}

	if !verbose || len(fm.Functions) == 0 {
		return
	}

	fmt.Fprintln(w)
	title.Fprintln(w, "Per-Function Breakdown:")

	sorted := fm.SortedByComplexity()
	shown := min(len(sorted), topFunctionLimit)

	breakdown := table.NewWriter()
	breakdown.SetOutputMirror(w)
	breakdown.SetStyle(table.StyleLight)
	breakdown.AppendHeader(table.Row{"Function", "Line", "Complexity", "Length", "Nesting", "Params", "Flags"})

	for _, f := range sorted[:shown] {
		breakdown.AppendRow(table.Row{f.Name, f.Line, f.Complexity, f.Length, f.MaxNesting, f.NumParams, a.flags(f)})
	}

	breakdown.Render()

	if len(sorted) > shown {
		fmt.Fprintf(w, "  ... and %d more functions\n", len(sorted)-shown)
	}
}
