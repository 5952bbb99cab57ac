package complexity

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WritePlot renders an HTML bar chart of the most complex functions.
func (a *Analyzer) WritePlot(fm *FileMetrics, path string) error {
	sorted := fm.SortedByComplexity()
	shown := min(len(sorted), topFunctionLimit)
	sorted = sorted[:shown]

	names := make([]string, 0, len(sorted))
	complexities := make([]opts.BarData, 0, len(sorted))
	lengths := make([]opts.BarData, 0, len(sorted))

	for _, f := range sorted {
		names = append(names, fmt.Sprintf("%s:%d", f.Name, f.Line))
		complexities = append(complexities, opts.BarData{Value: f.Complexity})
		lengths = append(lengths, opts.BarData{Value: f.Length})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Function Complexity",
			Subtitle: fm.Path,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("complexity", complexities).
		AddSeries("length", lengths)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}
