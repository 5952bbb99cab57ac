package complexity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
)

const fixtureSource = `def process(items, flag=False):
    """Doc."""
    total = 0
    for item in items:
        if item and flag:
            total += 1
        elif item:
            total -= 1
    return total

def simple():
    return 1

def guarded(x):
    try:
        with open(x) as f:
            assert f
            return [i for i in f if i]
    except ValueError:
        return []
`

func analyzeFixture(t *testing.T) *complexity.FileMetrics {
	t.Helper()

	a := complexity.New(complexity.DefaultThresholds())
	fm, err := a.AnalyzeSource(context.Background(), []byte(fixtureSource), "fixture.py")
	require.NoError(t, err)

	return fm
}

func metricsByName(fm *complexity.FileMetrics) map[string]complexity.FunctionMetrics {
	out := map[string]complexity.FunctionMetrics{}
	for _, f := range fm.Functions {
		out[f.Name] = f
	}

	return out
}

func TestScoreBranchesAndBoolOps(t *testing.T) {
	t.Parallel()

	byName := metricsByName(analyzeFixture(t))

	process := byName["process"]
	// base 1 + for + if + and + elif.
	assert.Equal(t, 5, process.Complexity)
	assert.Equal(t, 3, process.MaxNesting)
	assert.Equal(t, 2, process.NumParams)
	assert.Equal(t, 8, process.Length, "docstring line excluded")
}

func TestScoreBaseline(t *testing.T) {
	t.Parallel()

	byName := metricsByName(analyzeFixture(t))

	simple := byName["simple"]
	assert.Equal(t, 1, simple.Complexity)
	assert.Equal(t, 0, simple.MaxNesting)
	assert.Equal(t, 2, simple.Length)
	assert.Equal(t, 0, simple.NumParams)
}

func TestScoreTryWithComprehension(t *testing.T) {
	t.Parallel()

	byName := metricsByName(analyzeFixture(t))

	guarded := byName["guarded"]
	// base 1 + with + assert + comp for + comp if + except.
	assert.Equal(t, 6, guarded.Complexity)
	// try then with; the except clause does not add a level.
	assert.Equal(t, 2, guarded.MaxNesting)
}

func TestAggregates(t *testing.T) {
	t.Parallel()

	fm := analyzeFixture(t)

	assert.Equal(t, 3, fm.TotalFunctions)
	assert.InDelta(t, 4.0, fm.AvgComplexity, 0.001)
	assert.Equal(t, 6, fm.MaxComplexity)
	assert.InDelta(t, 5.67, fm.AvgLength, 0.001)
	assert.Equal(t, 8, fm.MaxLength)
	assert.InDelta(t, 1.67, fm.AvgNesting, 0.001)
	assert.Equal(t, 3, fm.MaxNesting)
}

func TestSortedByComplexity(t *testing.T) {
	t.Parallel()

	fm := analyzeFixture(t)
	sorted := fm.SortedByComplexity()

	require.Len(t, sorted, 3)
	assert.Equal(t, "guarded", sorted[0].Name)
	assert.Equal(t, "process", sorted[1].Name)
	assert.Equal(t, "simple", sorted[2].Name)
}

func TestMethodsAndNestedFunctionsScored(t *testing.T) {
	t.Parallel()

	src := []byte(`class Svc:
    def run(self):
        def inner(x):
            if x:
                return x
            return 0
        return inner(1)
`)

	a := complexity.New(complexity.DefaultThresholds())
	fm, err := a.AnalyzeSource(context.Background(), src, "svc.py")
	require.NoError(t, err)

	byName := metricsByName(fm)
	require.Len(t, fm.Functions, 2)

	// The outer method pays for the branch declared in its closure.
	assert.Equal(t, 2, byName["run"].Complexity)
	assert.Equal(t, 2, byName["inner"].Complexity)
}

func TestEmptyFileAggregates(t *testing.T) {
	t.Parallel()

	a := complexity.New(complexity.DefaultThresholds())
	fm, err := a.AnalyzeSource(context.Background(), []byte("X = 1\n"), "empty.py")
	require.NoError(t, err)

	assert.Zero(t, fm.TotalFunctions)
	assert.Zero(t, fm.AvgComplexity)
	assert.Zero(t, fm.MaxComplexity)
	assert.Empty(t, fm.Functions)
}

func TestIssues(t *testing.T) {
	t.Parallel()

	a := complexity.New(complexity.DefaultThresholds())

	clean := &complexity.FileMetrics{AvgComplexity: 2, MaxComplexity: 4, AvgLength: 10, MaxNesting: 1}
	assert.Empty(t, a.Issues(clean))

	dirty := &complexity.FileMetrics{AvgComplexity: 12, MaxComplexity: 20, AvgLength: 40, MaxNesting: 5}
	assert.Len(t, a.Issues(dirty), 4)
}
