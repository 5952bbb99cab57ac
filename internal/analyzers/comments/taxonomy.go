package comments

import (
	"regexp"
	"strings"
)

var debtPatterns = compileAll(
	`(?i)\bTODO\b`,
	`(?i)\bFIXME\b`,
	`(?i)\bXXX\b`,
	`(?i)\bHACK\b`,
	`(?i)\bBUG\b`,
	`(?i)\bWORKAROUND\b`,
	`(?i)\bTEMP\b`,
	`(?i)\bTEMPORARY\b`,
)

var checklistPatterns = compileAll(
	`(?i)\bif you (?:change|modify|update)\b`,
	`(?i)\bremember to\b`,
	`(?i)\bdon'?t forget\b`,
	`(?i)\balso update\b`,
	`(?i)\bmust be kept in sync\b`,
	`(?i)\bsee also\b`,
	`(?i)\bwhen changing\b`,
)

var whyPatterns = compileAll(
	`(?i)\bbecause\b`,
	`(?i)\bthe reason\b`,
	`(?i)\bwe (?:do|use) this\b`,
	`(?i)\bthis is (?:necessary|needed|required)\b`,
	`(?i)\bto avoid\b`,
	`(?i)\bto prevent\b`,
	`(?i)\bworkaround for\b`,
	`(?i)\bdue to\b`,
	`(?i)\brequired by\b`,
	`(?i)\bhistorically\b`,
)

var teacherPatterns = compileAll(
	`(?i)\balgorithm\b`,
	`(?i)\bprotocol\b`,
	`(?i)\bformula\b`,
	`(?i)\bequation\b`,
	`(?i)\btheorem\b`,
	`(?i)\bRFC\s*\d+\b`,
	`(?i)\bsee (?:http|https)://\b`,
	`(?i)\brefer to\b`,
	`(?i)\bexplained in\b`,
)

// guidePatterns match section dividers and headers; anchored at the start
// of the stripped comment text.
var guidePatterns = compileAll(
	`^[\s]*[-=]+[\s]*$`,
	`^[\s]*#+ `,
	`(?i)^\s*section\s*:?\s*`,
	`^[\s]*[/\*]+ `,
)

// codePatterns detect commented-out code in the raw comment line.
var codePatterns = compileAll(
	`(?i)^\s*#\s*(?:def|class|import|from|if|for|while|try|except|with|return|yield|raise)\s+`,
	`^\s*#\s*\w+\s*[=\(]`,
	`^\s*#\s*\w+\.\w+\(`,
	`^\s*#\s*@\w+`,
	`^\s*#\s*\w+:\s*\w+\s*[=,]`,
)

// trivialIndicators pair a comment phrase with the code construct it
// restates. Both must match for an inline comment to be flagged.
var trivialIndicators = []struct {
	comment *regexp.Regexp
	code    *regexp.Regexp
}{
	{regexp.MustCompile(`(?i)#\s*increment\b`), regexp.MustCompile(`\+\+|\+=\s*1`)},
	{regexp.MustCompile(`(?i)#\s*decrement\b`), regexp.MustCompile(`--|-=\s*1`)},
	{regexp.MustCompile(`(?i)#\s*return\b`), regexp.MustCompile(`\breturn\b`)},
	{regexp.MustCompile(`(?i)#\s*loop\b`), regexp.MustCompile(`\bfor\b|\bwhile\b`)},
	{regexp.MustCompile(`(?i)#\s*import\b`), regexp.MustCompile(`\bimport\b`)},
	{regexp.MustCompile(`(?i)#\s*set\s+\w+`), regexp.MustCompile(`=`)},
	{regexp.MustCompile(`(?i)#\s*call\s+\w+`), regexp.MustCompile(`\(`)},
	{regexp.MustCompile(`(?i)#\s*if\s+\w+`), regexp.MustCompile(`\bif\b`)},
}

var debtMarker = regexp.MustCompile(`(?i)\b(?:TODO|FIXME|XXX|HACK|BUG|WORKAROUND|TEMP|TEMPORARY)\b:?\s*`)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}

	return out
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}

	return false
}

// classifyComment runs the taxonomy cascade: docstrings first, then
// commented-out code, debt markers, trivial restatements, and the keep-worthy
// phrase checks, falling back through a short-inline heuristic to unknown.
func classifyComment(text, rawText string, isInline, isDocstring bool, lineContent string) (Type, Classification, string) {
	if isDocstring {
		if len(text) < shortDocstringLen {
			return TypeFunction, Enhance, "Docstring too brief - needs more detail"
		}

		return TypeFunction, Keep, "Docstring provides API documentation"
	}

	if anyMatch(codePatterns, rawText) {
		return TypeBackup, Delete, "Commented-out code should be removed (use git history)"
	}

	if anyMatch(debtPatterns, text) {
		return TypeDebt, Rewrite, "Debt marker found - resolve or document in design comments"
	}

	if lineContent != "" && isInline {
		for _, ind := range trivialIndicators {
			if ind.comment.MatchString(rawText) && ind.code.MatchString(lineContent) {
				return TypeTrivial, Delete, "Comment restates what code already says"
			}
		}
	}

	textLower := strings.ToLower(text)

	if anyMatch(checklistPatterns, textLower) {
		return TypeChecklist, Keep, "Checklist comment - reminds of coordinated changes"
	}

	if anyMatch(whyPatterns, textLower) {
		return TypeWhy, Keep, "Why comment - explains reasoning behind code"
	}

	if anyMatch(teacherPatterns, textLower) {
		return TypeTeacher, Keep, "Teacher comment - educates about domain concepts"
	}

	if anyMatch(guidePatterns, text) {
		return TypeGuide, Keep, "Guide comment - provides structure and rhythm"
	}

	if isInline && len(text) < shortInlineLen {
		return TypeTrivial, Enhance, "Short inline comment - consider expanding or removing"
	}

	return TypeUnknown, Enhance, "Cannot classify automatically - human review needed"
}

// suggestRewrite proposes replacement text for a comment, or empty when
// there is nothing useful to suggest.
func suggestRewrite(c Info) string {
	if c.Classification == Delete {
		return ""
	}

	switch {
	case c.Type == TypeDebt:
		task := strings.TrimSpace(debtMarker.ReplaceAllString(c.Text, ""))

		return "# DESIGN DECISION: " + task + "\n" +
			"# Context: [Add why this is deferred and conditions for completion]"
	case c.Type == TypeTrivial:
		return "# WHY: [Explain the reasoning behind this code, not what it does]"
	case c.Type == TypeFunction && c.Classification == Enhance:
		return "\"\"\"[Brief description of what this does]\n\n" +
			"Args:\n    [parameter]: [description]\n\n" +
			"Returns:\n    [description of return value]\n\n" +
			"Raises:\n    [Exception]: [when it is raised]\n\"\"\""
	}

	return ""
}
