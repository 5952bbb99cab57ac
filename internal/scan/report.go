package scan

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// worstFileLimit caps the flagged-file section of text reports.
const worstFileLimit = 15

// RenderText writes a human-readable scan summary.
func (s *Summary) RenderText(w io.Writer) {
	color.New(color.Bold).Fprintf(w, "Scan: %s\n\n", s.Root)

	fmt.Fprintf(w, "%s analyzed, %d failed\n\n",
		humanize.Comma(int64(s.TotalFiles))+" files", s.Failed)

	tiers := table.NewWriter()
	tiers.SetOutputMirror(w)
	tiers.SetStyle(table.StyleLight)
	tiers.AppendHeader(table.Row{"Tier", "Files"})

	for _, tier := range []string{"critical", "high-complexity", "standard", "utility"} {
		if count, ok := s.ByTier[tier]; ok {
			tiers.AppendRow(table.Row{tier, count})
		}
	}

	tiers.Render()

	flagged := s.flaggedFiles()
	if len(flagged) == 0 {
		return
	}

	fmt.Fprintln(w)
	color.New(color.FgYellow).Fprintln(w, "Files needing verification:")

	files := table.NewWriter()
	files.SetOutputMirror(w)
	files.SetStyle(table.StyleLight)
	files.AppendHeader(table.Row{"File", "Tier", "Max Complexity", "Comment Issues"})

	shown := min(len(flagged), worstFileLimit)
	for _, f := range flagged[:shown] {
		maxComplexity := 0
		if f.Complexity != nil {
			maxComplexity = f.Complexity.MaxComplexity
		}

		files.AppendRow(table.Row{f.Path, string(f.Classification.Classification), maxComplexity, f.CommentIssues})
	}

	files.Render()

	if len(flagged) > shown {
		fmt.Fprintf(w, "  ... and %d more\n", len(flagged)-shown)
	}
}

func (s *Summary) flaggedFiles() []FileReport {
	var flagged []FileReport

	for _, f := range s.Files {
		if f.Err == "" && f.Classification.VerificationRequired {
			flagged = append(flagged, f)
		}
	}

	return flagged
}
