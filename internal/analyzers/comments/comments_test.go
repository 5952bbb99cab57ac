package comments_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
)

func analyze(t *testing.T, src string) *comments.Analysis {
	t.Helper()

	a := comments.New(nil)
	analysis, err := a.AnalyzeContent(context.Background(), []byte(src), "test.py")
	require.NoError(t, err)

	return analysis
}

func findByLine(analysis *comments.Analysis, line int) *comments.Info {
	for i := range analysis.Comments {
		if analysis.Comments[i].Line == line {
			return &analysis.Comments[i]
		}
	}

	return nil
}

func TestClassifyBackupComment(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "# return compute(x)\nx = 1\n")

	c := findByLine(analysis, 1)
	require.NotNil(t, c)
	assert.Equal(t, comments.TypeBackup, c.Type)
	assert.Equal(t, comments.Delete, c.Classification)
	assert.Empty(t, c.Suggestion)
}

func TestClassifyDebtComment(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "# TODO: handle timeouts here\nx = 1\n")

	c := findByLine(analysis, 1)
	require.NotNil(t, c)
	assert.Equal(t, comments.TypeDebt, c.Type)
	assert.Equal(t, comments.Rewrite, c.Classification)
	assert.Equal(t,
		"# DESIGN DECISION: handle timeouts here\n# Context: [Add why this is deferred and conditions for completion]",
		c.Suggestion)
}

func TestClassifyTrivialInline(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "count += 1  # increment count\n")

	c := findByLine(analysis, 1)
	require.NotNil(t, c)
	assert.Equal(t, comments.TypeTrivial, c.Type)
	assert.Equal(t, comments.Delete, c.Classification)
}

func TestClassifyKeepWorthyComments(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"# remember to bump the schema version in migrations as well somewhere",
		"# we cache here because recomputing the index is quadratic in file count",
		"# implements the Raft consensus algorithm leader election phase",
		"# ------------------------------------------------------------------",
		"x = 1",
	}, "\n") + "\n"

	analysis := analyze(t, src)

	assert.Equal(t, comments.TypeChecklist, findByLine(analysis, 1).Type)
	assert.Equal(t, comments.TypeWhy, findByLine(analysis, 2).Type)
	assert.Equal(t, comments.TypeTeacher, findByLine(analysis, 3).Type)
	assert.Equal(t, comments.TypeGuide, findByLine(analysis, 4).Type)

	for _, line := range []int{1, 2, 3, 4} {
		assert.Equal(t, comments.Keep, findByLine(analysis, line).Classification)
	}
}

func TestClassifyShortInline(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "x = compute()  # result\n")

	c := findByLine(analysis, 1)
	require.NotNil(t, c)
	assert.Equal(t, comments.TypeTrivial, c.Type)
	assert.Equal(t, comments.Enhance, c.Classification)
	assert.Equal(t, "# WHY: [Explain the reasoning behind this code, not what it does]", c.Suggestion)
}

func TestClassifyUnknown(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "# quarterly report ingestion happens over there somewhere\nx = 1\n")

	c := findByLine(analysis, 1)
	require.NotNil(t, c)
	assert.Equal(t, comments.TypeUnknown, c.Type)
	assert.Equal(t, comments.Enhance, c.Classification)
}

func TestClassifyDocstrings(t *testing.T) {
	t.Parallel()

	src := "def f():\n    \"\"\"Fetches the latest snapshot from the store.\"\"\"\n    return 1\n\ndef g():\n    \"\"\"Short.\"\"\"\n    return 2\n"
	analysis := analyze(t, src)

	long := findByLine(analysis, 1)
	require.NotNil(t, long)
	assert.True(t, long.IsDocstring)
	assert.Equal(t, comments.TypeFunction, long.Type)
	assert.Equal(t, comments.Keep, long.Classification)

	short := findByLine(analysis, 5)
	require.NotNil(t, short)
	assert.Equal(t, comments.Enhance, short.Classification)
	assert.Equal(t, "Docstring too brief - needs more detail", short.Reason)
}

func TestAnalysisStatistics(t *testing.T) {
	t.Parallel()

	src := "# TODO: fix\n# return x\nx = 1\ny = 2\n"
	analysis := analyze(t, src)

	assert.Equal(t, 2, analysis.TotalComments)
	assert.Equal(t, 4, analysis.TotalLines)
	assert.InDelta(t, 50.0, analysis.CommentRatio, 0.001)
	assert.Equal(t, 1, analysis.ByType["debt"])
	assert.Equal(t, 1, analysis.ByType["backup"])
	assert.Equal(t, 1, analysis.ByClassification["rewrite"])
	assert.Equal(t, 1, analysis.ByClassification["delete"])

	require.Len(t, analysis.Issues, 2)
	assert.Equal(t, "Line 1: [debt] Debt marker found - resolve or document in design comments", analysis.Issues[0])
	assert.Equal(t, "Line 2: [backup] Commented-out code should be removed (use git history)", analysis.Issues[1])
}

func TestRewriteDeletesStandaloneComment(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "# return compute(x)\nx = 1\n")

	a := comments.New(nil)
	res, err := a.RewriteFile(context.Background(), path, "", false)
	require.NoError(t, err)

	assert.Equal(t, "x = 1", res.Rewritten)
	require.Len(t, res.Changes, 1)
	assert.Contains(t, res.Changes[0], "Deleted comment line")

	// Dry run leaves the file untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# return compute(x)\nx = 1\n", string(data))
}

func TestRewriteStripsInlineComment(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "count += 1  # increment count\n")

	a := comments.New(nil)
	res, err := a.RewriteFile(context.Background(), path, "", false)
	require.NoError(t, err)

	assert.Equal(t, "count += 1", res.Rewritten)
}

func TestRewriteInsertsSuggestionAboveDebt(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "def f():\n    # TODO: retry on failure\n    return 1\n")

	a := comments.New(nil)
	res, err := a.RewriteFile(context.Background(), path, "", false)
	require.NoError(t, err)

	lines := strings.Split(res.Rewritten, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "    # DESIGN DECISION: retry on failure", lines[1])
	assert.Equal(t, "    # Context: [Add why this is deferred and conditions for completion]", lines[2])
	assert.Equal(t, "    # TODO: retry on failure", lines[3])
}

func TestRewriteApplyWritesTarget(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "# import os\nx = 1\n")
	out := filepath.Join(t.TempDir(), "out.py")

	a := comments.New(nil)
	res, err := a.RewriteFile(context.Background(), path, out, true)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "x = 1", string(data))
	assert.Contains(t, res.Changes[len(res.Changes)-1], "Wrote changes to: ")

	_, err = os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err), "backup must be removed on success")
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "# TODO: fix\nx = 1\n")
	report := comments.GenerateReport(analysis)

	assert.Contains(t, report, "# Comment Analysis: test.py")
	assert.Contains(t, report, "**Total Comments:** 1")
	assert.Contains(t, report, "- **debt**: 1")
	assert.Contains(t, report, "[!] **rewrite**: 1")
	assert.Contains(t, report, "## Issues Found")
	assert.Contains(t, report, "### REWRITE (1)")
	assert.Contains(t, report, "antirez commenting standards")
}

func TestRenderDiff(t *testing.T) {
	t.Parallel()

	diff := comments.RenderDiff("a\nb\nc\n", "a\nc\n")

	assert.Contains(t, diff, "- b")
	assert.Contains(t, diff, "  a")
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.py")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
