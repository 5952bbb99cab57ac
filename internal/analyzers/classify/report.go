package classify

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// tierColor returns the display color for a tier.
func tierColor(c Classification) *color.Color {
	switch c {
	case Critical:
		return color.New(color.FgRed, color.Bold)
	case HighComplexity:
		return color.New(color.FgYellow)
	case Utility:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}

// RenderText writes a human-readable classification report.
func RenderText(w io.Writer, res Result) {
	if res.Path != "" {
		color.New(color.Bold).Fprintf(w, "Classification: %s\n\n", res.Path)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendRow(table.Row{"Tier", tierColor(res.Classification).Sprint(string(res.Classification))})
	tw.AppendRow(table.Row{"Lines of Code", res.LinesOfCode})
	tw.AppendRow(table.Row{"Dependencies", res.NumDependencies})
	tw.AppendRow(table.Row{"Critical Patterns", len(res.CriticalPatternsFound)})
	tw.AppendRow(table.Row{"Complexity Indicators", len(res.ComplexityIndicators)})
	tw.AppendRow(table.Row{"Verification Required", res.VerificationRequired})
	tw.Render()

	fmt.Fprintf(w, "\nReasoning: %s\n", res.Reasoning)
}
