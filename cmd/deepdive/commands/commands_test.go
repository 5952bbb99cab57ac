package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
	"github.com/deepdive-tools/deepdive/internal/pysource"
	"github.com/deepdive-tools/deepdive/internal/scan"
)

const sampleModule = `"""Order helpers."""

MAX_RETRIES = 3


def load_order(order_id):
    """Fetch one order."""
    if order_id is None:
        return None
    return order_id
`

func writeSample(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestStructureCommandWritesJSON(t *testing.T) {
	t.Parallel()

	source := writeSample(t, "orders.py", sampleModule)
	output := filepath.Join(t.TempDir(), "out.json")

	cmd := NewStructureCommand()
	cmd.SetArgs([]string{source, "--format", "json", "--output", output})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var unit pysource.SyntaxUnit
	require.NoError(t, json.Unmarshal(data, &unit))

	require.Len(t, unit.Functions, 1)
	assert.Equal(t, "load_order", unit.Functions[0].Name)
	assert.Equal(t, []string{"MAX_RETRIES"}, unit.Constants)
}

func TestComplexityCommandWritesJSON(t *testing.T) {
	t.Parallel()

	source := writeSample(t, "orders.py", sampleModule)
	output := filepath.Join(t.TempDir(), "out.json")

	cmd := NewComplexityCommand()
	cmd.SetArgs([]string{source, "--format", "json", "--output", output})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var metrics complexity.FileMetrics
	require.NoError(t, json.Unmarshal(data, &metrics))

	require.Len(t, metrics.Functions, 1)
	assert.Equal(t, 2, metrics.Functions[0].Complexity)
}

func TestClassifyCommandRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	source := writeSample(t, "orders.py", sampleModule)

	cmd := NewClassifyCommand()
	cmd.SetArgs([]string{source, "--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRewriteCommandDryRun(t *testing.T) {
	t.Parallel()

	source := writeSample(t, "loop.py", "x = 1\nfor i in range(3):  # loop through items\n    x += i\n")

	var out bytes.Buffer

	cmd := NewRewriteCommand()
	cmd.SetArgs([]string{source})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "dry run")
	assert.Contains(t, out.String(), "Removed inline comment")

	// Dry run never touches the source file.
	data, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# loop through items")
}

func TestScanCommandWritesJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.py"), []byte(sampleModule), 0o600))

	output := filepath.Join(t.TempDir(), "scan.json")

	cmd := NewScanCommand()
	cmd.SetArgs([]string{dir, "--format", "json", "--output", output})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var summary scan.Summary
	require.NoError(t, json.Unmarshal(data, &summary))

	assert.Equal(t, 1, summary.TotalFiles)
	require.Len(t, summary.Files, 1)
	assert.Equal(t, filepath.Join(dir, "orders.py"), summary.Files[0].Path)
}
