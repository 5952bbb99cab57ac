package scan_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
	"github.com/deepdive-tools/deepdive/internal/scan"
)

func newScanner(opts scan.Options) *scan.Scanner {
	return scan.New(opts,
		complexity.New(complexity.DefaultThresholds()),
		comments.New(nil),
		nil)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return root
}

func TestScanAnalyzesPythonFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"util.py":       "def helper(x):\n    return x\n",
		"auth/login.py": "def authenticate(user):\n    return user\n",
		"notes.txt":     "not python",
	})

	summary, err := newScanner(scan.Options{Workers: 2}).Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalFiles)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 1, summary.ByTier["critical"])
	assert.Equal(t, 1, summary.ByTier["utility"])

	// Results are sorted by path regardless of worker completion order.
	require.Len(t, summary.Files, 2)
	assert.Contains(t, summary.Files[0].Path, "login.py")
	assert.Contains(t, summary.Files[1].Path, "util.py")
}

func TestScanSkipsHiddenAndExcluded(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"keep.py":        "x = 1\n",
		".venv/lib.py":   "x = 1\n",
		"build/gen.py":   "x = 1\n",
		"vendor/dep.py":  "x = 1\n",
		"nested/deep.py": "x = 1\n",
	})

	summary, err := newScanner(scan.Options{Workers: 1, Exclude: []string{"build"}}).Scan(context.Background(), root)
	require.NoError(t, err)

	paths := make([]string, 0, len(summary.Files))
	for _, f := range summary.Files {
		paths = append(paths, f.Path)
	}

	assert.Len(t, paths, 2)
	assert.Contains(t, paths[0], "keep.py")
	assert.Contains(t, paths[1], "deep.py")
}

func TestScanRecordsFailuresAndContinues(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"good.py":   "x = 1\n",
		"broken.py": "def broken(:\n    pass\n",
	})

	summary, err := newScanner(scan.Options{Workers: 2}).Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.Failed)

	var failed *scan.FileReport
	for i := range summary.Files {
		if summary.Files[i].Err != "" {
			failed = &summary.Files[i]
		}
	}

	require.NotNil(t, failed)
	assert.Contains(t, failed.Path, "broken.py")
}

func TestScanCancelledContext(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(scan.Options{Workers: 1}).Scan(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}
