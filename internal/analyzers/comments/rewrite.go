package comments

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deepdive-tools/deepdive/internal/pysource"
	"github.com/deepdive-tools/deepdive/pkg/textutil"
)

// ErrBadOutputPath flags an output destination that cannot be written.
var ErrBadOutputPath = errors.New("invalid output path")

// RewriteResult carries the outcome of a rewrite pass.
type RewriteResult struct {
	Original  string
	Rewritten string
	Changes   []string
}

// validateOutputPath rejects destinations that exist as non-files or whose
// parent directory is missing.
func validateOutputPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	if info, statErr := os.Stat(abs); statErr == nil && !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s exists but is not a file: %w", abs, ErrBadOutputPath)
	}

	parent := filepath.Dir(abs)
	if _, statErr := os.Stat(parent); statErr != nil {
		return "", fmt.Errorf("output directory does not exist: %s: %w", parent, ErrBadOutputPath)
	}

	return abs, nil
}

// RewriteFile rewrites the comments of one file. Deletions drop backup and
// trivial comments, rewrites insert the suggestion above the original line.
// With apply unset nothing is written and the result is a preview. An empty
// outputPath means rewriting in place.
func (a *Analyzer) RewriteFile(ctx context.Context, path, outputPath string, apply bool) (*RewriteResult, error) {
	if err := pysource.ValidatePath(path); err != nil {
		return nil, err
	}

	if outputPath != "" {
		resolved, err := validateOutputPath(outputPath)
		if err != nil {
			return nil, err
		}

		outputPath = resolved
	}

	content, err := pysource.ReadSource(path)
	if err != nil {
		return nil, err
	}

	analysis, err := a.AnalyzeContent(ctx, content, path)
	if err != nil {
		return nil, err
	}

	lines := textutil.SplitLines(string(content))

	changes := []string{}
	deletions := map[int]struct{}{}
	modifications := map[int]string{}

	for _, c := range analysis.Comments {
		if c.IsDocstring {
			continue
		}

		idx := c.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}

		oldLine := lines[idx]

		switch {
		case c.Classification == Delete:
			if c.IsInline {
				newLine := strings.TrimRight(oldLine[:min(c.Column, len(oldLine))], " \t")
				if strings.TrimSpace(newLine) != "" {
					modifications[idx] = newLine
					changes = append(changes, fmt.Sprintf("Line %d: Removed inline comment: %s...", c.Line, preview(c.Text)))
				} else {
					deletions[idx] = struct{}{}
					changes = append(changes, fmt.Sprintf("Line %d: Deleted line (empty after comment removal)", c.Line))
				}
			} else if strings.HasPrefix(strings.TrimSpace(oldLine), "#") {
				deletions[idx] = struct{}{}
				changes = append(changes, fmt.Sprintf("Line %d: Deleted comment line: %s...", c.Line, preview(c.Text)))
			}
		case c.Classification == Rewrite && c.Suggestion != "":
			if _, seen := modifications[idx]; seen {
				continue
			}

			indent := oldLine[:len(oldLine)-len(strings.TrimLeft(oldLine, " \t"))]

			var indented []string
			for _, s := range strings.Split(c.Suggestion, "\n") {
				indented = append(indented, indent+s)
			}

			modifications[idx] = strings.Join(indented, "\n") + "\n" + oldLine
			changes = append(changes, fmt.Sprintf("Line %d: Suggested rewrite for: %s...", c.Line, preview(c.Text)))
		}
	}

	for idx, replacement := range modifications {
		if _, gone := deletions[idx]; !gone {
			lines[idx] = replacement
		}
	}

	deleteIdx := make([]int, 0, len(deletions))
	for idx := range deletions {
		deleteIdx = append(deleteIdx, idx)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(deleteIdx)))

	for _, idx := range deleteIdx {
		lines = append(lines[:idx], lines[idx+1:]...)
	}

	result := &RewriteResult{
		Original:  string(content),
		Rewritten: strings.Join(lines, "\n"),
		Changes:   changes,
	}

	if !apply {
		return result, nil
	}

	target := outputPath
	if target == "" {
		target = path
	}

	if err := writeWithBackup(target, result.Rewritten); err != nil {
		return nil, err
	}

	result.Changes = append(result.Changes, "Wrote changes to: "+target)
	a.log.InfoContext(ctx, "rewrote comments", "path", path, "target", target, "changes", len(changes))

	return result, nil
}

// writeWithBackup overwrites target through a sibling backup file so a
// failed write can be rolled back.
func writeWithBackup(target, content string) error {
	existing, readErr := os.ReadFile(target)
	if readErr != nil {
		if !os.IsNotExist(readErr) {
			return fmt.Errorf("read %s: %w", target, readErr)
		}

		if err := os.WriteFile(target, []byte(content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}

		return nil
	}

	backup := target + ".tmp"
	if err := os.WriteFile(backup, existing, 0o600); err != nil {
		return fmt.Errorf("write backup %s: %w", backup, err)
	}

	if err := os.WriteFile(target, []byte(content), 0o600); err != nil {
		if renameErr := os.Rename(backup, target); renameErr != nil {
			return errors.Join(err, renameErr)
		}

		return fmt.Errorf("write %s: %w", target, err)
	}

	if err := os.Remove(backup); err != nil {
		return fmt.Errorf("remove backup %s: %w", backup, err)
	}

	return nil
}

func preview(s string) string {
	if len(s) > previewLen {
		return s[:previewLen]
	}

	return s
}
