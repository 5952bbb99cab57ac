package comments

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var classificationIcons = map[Classification]string{
	Keep:    "[OK]",
	Enhance: "[~]",
	Rewrite: "[!]",
	Delete:  "[X]",
}

// GenerateReport renders the analysis as a markdown document.
func GenerateReport(analysis *Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Comment Analysis: %s\n\n", filepath.Base(analysis.Path))
	fmt.Fprintf(&b, "**File:** `%s`\n", analysis.Path)
	fmt.Fprintf(&b, "**Total Lines:** %d\n", analysis.TotalLines)
	fmt.Fprintf(&b, "**Total Comments:** %d\n", analysis.TotalComments)
	fmt.Fprintf(&b, "**Comment Ratio:** %.1f per 100 lines\n", analysis.CommentRatio)
	b.WriteString("\n---\n\n## Summary by Type\n\n")

	for _, name := range sortedKeys(analysis.ByType) {
		fmt.Fprintf(&b, "- **%s**: %d\n", name, analysis.ByType[name])
	}

	b.WriteString("\n## Summary by Classification\n\n")

	for _, name := range sortedKeys(analysis.ByClassification) {
		icon, ok := classificationIcons[Classification(name)]
		if !ok {
			icon = "[?]"
		}

		fmt.Fprintf(&b, "- %s **%s**: %d\n", icon, name, analysis.ByClassification[name])
	}

	if len(analysis.Issues) > 0 {
		b.WriteString("\n## Issues Found\n\n")

		shown := min(len(analysis.Issues), MaxIssuesInReport)
		for _, issue := range analysis.Issues[:shown] {
			fmt.Fprintf(&b, "- %s\n", issue)
		}

		if len(analysis.Issues) > shown {
			fmt.Fprintf(&b, "- ... and %d more\n", len(analysis.Issues)-shown)
		}
	}

	b.WriteString("\n---\n\n## Detailed Analysis\n\n")

	for _, class := range classificationOrder {
		var group []Info

		for _, c := range analysis.Comments {
			if c.Classification == class {
				group = append(group, c)
			}
		}

		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&b, "### %s (%d)\n\n", strings.ToUpper(string(class)), len(group))

		shown := min(len(group), MaxCommentsPerSection)
		for _, c := range group[:shown] {
			text := c.Text
			if len(text) > reportPreviewLen {
				text = text[:reportPreviewLen] + "..."
			}

			fmt.Fprintf(&b, "- **Line %d** [%s]: `%s`\n", c.Line, c.Type, text)
			fmt.Fprintf(&b, "  - Reason: %s\n", c.Reason)

			if c.Suggestion != "" {
				s := c.Suggestion
				if len(s) > suggestionPreviewLen {
					s = s[:suggestionPreviewLen]
				}

				fmt.Fprintf(&b, "  - Suggestion: _%s..._\n", s)
			}
		}

		if len(group) > shown {
			fmt.Fprintf(&b, "- ... and %d more\n", len(group)-shown)
		}

		b.WriteString("\n")
	}

	b.WriteString("---\n\n_Analysis based on antirez commenting standards: https://antirez.com/news/124_")

	return b.String()
}

// RenderDiff produces a line-oriented unified-style diff between the
// original and rewritten sources for preview output.
func RenderDiff(original, rewritten string) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(original, rewritten)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out strings.Builder

	for _, d := range diffs {
		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}

		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out.WriteString(prefix + line + "\n")
		}
	}

	return out.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
