// Package classify buckets Python files into risk tiers from lightweight
// textual metrics: code lines, import count, and pattern scans for security
// and concurrency constructs.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deepdive-tools/deepdive/internal/pysource"
)

// Classification thresholds.
const (
	HighLOCThreshold         = 300
	HighDepsThreshold        = 5
	HighComplexityPatternMin = 3
	UtilityLOCMax            = 100
	UtilityDepsMax           = 3
	CriticalPatternMin       = 3
)

// Classification is the risk tier of a file.
type Classification string

// Risk tiers, most severe first.
const (
	Critical       Classification = "critical"
	HighComplexity Classification = "high-complexity"
	Standard       Classification = "standard"
	Utility        Classification = "utility"
)

// Result is the outcome of classifying one file.
type Result struct {
	Path                  string         `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Classification        Classification `json:"classification" yaml:"classification"`
	LinesOfCode           int            `json:"lines_of_code" yaml:"lines_of_code"`
	NumDependencies       int            `json:"num_dependencies" yaml:"num_dependencies"`
	CriticalPatternsFound []string       `json:"critical_patterns_found" yaml:"critical_patterns_found"`
	ComplexityIndicators  []string       `json:"complexity_indicators" yaml:"complexity_indicators"`
	VerificationRequired  bool           `json:"verification_required" yaml:"verification_required"`
	Reasoning             string         `json:"reasoning" yaml:"reasoning"`
}

// criticalPatterns flag security-sensitive files. Sources are matched
// lowercased, so the patterns stay lowercase too.
var criticalPatterns = compileNamed(
	`\bauth`,
	`\btoken\b`,
	`\bjwt\b`,
	`\bsecret\b`,
	`\bcredential`,
	`\bpassword\b`,
	`\bpermission`,
	`\baccess.?control`,
	`\bencrypt`,
	`\bdecrypt`,
	`\bprivate.?key`,
	`\bapi.?key`,
	`\bsession\b`,
	`\boauth`,
	`\bsecurity`,
)

// primaryCritical patterns force the critical tier on a single hit.
var primaryCritical = map[string]struct{}{
	`\bauth`:       {},
	`\bsecret\b`:   {},
	`\bcredential`: {},
	`\bencrypt`:    {},
}

// complexityPatterns flag coordination-heavy code.
var complexityPatterns = compileNamed(
	`\basync\s+def\b`,
	`\bawait\b`,
	`\bstate\b.*\bmachine\b`,
	`\bfsm\b`,
	`\btransition\b`,
	`\bcircuit.?breaker\b`,
	`\bretry\b`,
	`\bbackoff\b`,
	`\block\b`,
	`\bsemaphore\b`,
	`\bmutex\b`,
	`\bthread\b`,
	`\bprocess\b`,
	`\bqueue\b`,
	`\bcallback\b`,
	`\bevent.?loop\b`,
)

type namedPattern struct {
	source string
	re     *regexp.Regexp
}

func compileNamed(exprs ...string) []namedPattern {
	out := make([]namedPattern, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, namedPattern{source: e, re: regexp.MustCompile(e)})
	}

	return out
}

var importLine = regexp.MustCompile(`(?m)^(?:from\s+\S+\s+)?import\s+`)

// CountCodeLines counts non-empty lines that are neither comments nor part
// of a docstring. Docstring tracking is a toggle: a line with one triple
// quote flips the state, a line with two is a one-liner and is skipped.
func CountCodeLines(content string) int {
	count := 0
	inDocstring := false

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		if strings.Contains(stripped, `"""`) || strings.Contains(stripped, "'''") {
			tripleDouble := strings.Count(stripped, `"""`)
			tripleSingle := strings.Count(stripped, "'''")

			if tripleDouble == 2 || tripleSingle == 2 {
				continue
			}

			if tripleDouble == 1 || tripleSingle == 1 {
				inDocstring = !inDocstring

				continue
			}
		}

		if inDocstring {
			continue
		}

		if strings.HasPrefix(stripped, "#") {
			continue
		}

		count++
	}

	return count
}

// CountImports counts import statements at the start of a line.
func CountImports(content string) int {
	return len(importLine.FindAllStringIndex(content, -1))
}

func findPatterns(content string, patterns []namedPattern) []string {
	lowered := strings.ToLower(content)
	found := []string{}

	for _, p := range patterns {
		if p.re.MatchString(lowered) {
			found = append(found, p.source)
		}
	}

	return found
}

// Classify buckets one source buffer. The rules run in severity order:
// critical patterns first, then size and complexity signals, then the
// utility shortcut, with standard as the fallback.
func Classify(content string, path string) Result {
	res := Result{
		Path:                  path,
		LinesOfCode:           CountCodeLines(content),
		NumDependencies:       CountImports(content),
		CriticalPatternsFound: findPatterns(content, criticalPatterns),
		ComplexityIndicators:  findPatterns(content, complexityPatterns),
	}

	var reasons []string

	switch {
	case len(res.CriticalPatternsFound) > 0:
		if len(res.CriticalPatternsFound) >= CriticalPatternMin || hasPrimaryCritical(res.CriticalPatternsFound) {
			res.Classification = Critical
			reasons = append(reasons, fmt.Sprintf("Critical patterns found: %d matches", len(res.CriticalPatternsFound)))
		} else {
			res.Classification = HighComplexity
			reasons = append(reasons, fmt.Sprintf("Some critical patterns: %d", len(res.CriticalPatternsFound)))
		}
	case res.LinesOfCode > HighLOCThreshold ||
		res.NumDependencies > HighDepsThreshold ||
		len(res.ComplexityIndicators) >= HighComplexityPatternMin:
		res.Classification = HighComplexity

		if res.LinesOfCode > HighLOCThreshold {
			reasons = append(reasons, fmt.Sprintf("High LOC: %d", res.LinesOfCode))
		}

		if res.NumDependencies > HighDepsThreshold {
			reasons = append(reasons, fmt.Sprintf("Many dependencies: %d", res.NumDependencies))
		}

		if len(res.ComplexityIndicators) >= HighComplexityPatternMin {
			reasons = append(reasons, fmt.Sprintf("Complexity patterns: %d", len(res.ComplexityIndicators)))
		}
	case res.LinesOfCode < UtilityLOCMax &&
		res.NumDependencies <= UtilityDepsMax &&
		len(res.ComplexityIndicators) == 0:
		res.Classification = Utility
		reasons = append(reasons, "Small file with few dependencies")
	default:
		res.Classification = Standard
		reasons = append(reasons, "Standard business logic")
	}

	res.VerificationRequired = res.Classification == Critical || res.Classification == HighComplexity
	res.Reasoning = strings.Join(reasons, "; ")

	return res
}

func hasPrimaryCritical(found []string) bool {
	for _, p := range found {
		if _, ok := primaryCritical[p]; ok {
			return true
		}
	}

	return false
}

// ClassifyFile validates, reads, and classifies one Python file.
func ClassifyFile(path string) (Result, error) {
	content, err := pysource.ReadSource(path)
	if err != nil {
		return Result{}, err
	}

	return Classify(string(content), path), nil
}
