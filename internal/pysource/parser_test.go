package pysource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdive-tools/deepdive/internal/pysource"
)

const sampleSource = `"""Order helpers."""
import os
import numpy as np
from pathlib import Path
from app.services import billing

MAX_RETRIES = 3
_SECRET = "x"

class OrderService(BaseService):
    """Handles orders."""

    table = "orders"

    def __init__(self, db, timeout=30):
        self.db = db

    @property
    def name(self):
        return self.table

    @staticmethod
    def normalize(value: str) -> str:
        return value.strip()

async def fetch_order(order_id: int) -> dict:
    """Fetch one order."""
    return await db.find_one({"id": order_id})

def _helper():
    pass
`

func TestParseStructure(t *testing.T) {
	t.Parallel()

	unit, err := pysource.Parse(context.Background(), []byte(sampleSource), "orders.py")
	require.NoError(t, err)

	require.Len(t, unit.Classes, 1)
	cls := unit.Classes[0]
	assert.Equal(t, "OrderService", cls.Name)
	assert.Equal(t, []string{"BaseService"}, cls.Bases)
	assert.Equal(t, "Handles orders.", cls.Docstring)
	assert.Equal(t, []string{"table"}, cls.ClassVariables)
	require.Len(t, cls.Methods, 3)

	init := cls.Methods[0]
	assert.Equal(t, "__init__", init.Name)
	require.Len(t, init.Parameters, 3)
	assert.Equal(t, "self", init.Parameters[0].Name)
	assert.Equal(t, "db", init.Parameters[1].Name)
	assert.Equal(t, "timeout", init.Parameters[2].Name)
	assert.Equal(t, "30", init.Parameters[2].Default)

	assert.True(t, cls.Methods[1].IsProperty)
	assert.True(t, cls.Methods[2].IsStaticmethod)
	assert.Equal(t, "str", cls.Methods[2].Parameters[0].Annotation)
	assert.Equal(t, "str", cls.Methods[2].ReturnAnnotation)

	require.Len(t, unit.Functions, 2)
	fetch := unit.Functions[0]
	assert.Equal(t, "fetch_order", fetch.Name)
	assert.True(t, fetch.IsAsync)
	assert.Equal(t, "Fetch one order.", fetch.Docstring)
	assert.Equal(t, "dict", fetch.ReturnAnnotation)
	require.NotNil(t, fetch.Subtree)
	assert.Equal(t, pysource.KindFunction, fetch.Subtree.Kind)

	assert.Equal(t, []string{"MAX_RETRIES", "_SECRET"}, unit.Constants)
	assert.Equal(t, []string{"MAX_RETRIES", "OrderService", "fetch_order"}, unit.ExportedSymbols)
}

func TestParseImports(t *testing.T) {
	t.Parallel()

	unit, err := pysource.Parse(context.Background(), []byte(sampleSource), "orders.py")
	require.NoError(t, err)

	require.Len(t, unit.Imports, 4)

	assert.Equal(t, "os", unit.Imports[0].Module)
	assert.False(t, unit.Imports[0].IsFromImport)
	assert.False(t, unit.Imports[0].IsInternal)

	assert.Equal(t, "numpy", unit.Imports[1].Module)
	assert.Equal(t, []string{"np"}, unit.Imports[1].Names)
	assert.False(t, unit.Imports[1].IsInternal)

	assert.Equal(t, "pathlib", unit.Imports[2].Module)
	assert.True(t, unit.Imports[2].IsFromImport)
	assert.Equal(t, []string{"Path"}, unit.Imports[2].Names)

	assert.Equal(t, "app.services", unit.Imports[3].Module)
	assert.True(t, unit.Imports[3].IsInternal)
	assert.Equal(t, []string{"billing"}, unit.Imports[3].Names)
}

func TestParseExternalCalls(t *testing.T) {
	t.Parallel()

	unit, err := pysource.Parse(context.Background(), []byte(sampleSource), "orders.py")
	require.NoError(t, err)

	var tags []pysource.CallTag
	for _, c := range unit.ExternalCalls {
		tags = append(tags, c.Tag)
	}

	assert.Contains(t, tags, pysource.CallDatabase)

	for _, c := range unit.ExternalCalls {
		if c.Tag == pysource.CallDatabase {
			assert.Equal(t, `\.find_one\(`, c.Pattern)
			assert.Equal(t, 28, c.Line)
			assert.Equal(t, `return await db.find_one({"id": order_id})`, c.Context)
		}
	}
}

func TestParseOneSitePerTagPerLine(t *testing.T) {
	t.Parallel()

	src := []byte("db.find_one(x).execute()\n")
	unit, err := pysource.Parse(context.Background(), src, "a.py")
	require.NoError(t, err)

	require.Len(t, unit.ExternalCalls, 1)
	assert.Equal(t, pysource.CallDatabase, unit.ExternalCalls[0].Tag)
	assert.Equal(t, `\.find_one\(`, unit.ExternalCalls[0].Pattern)
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := pysource.Parse(context.Background(), []byte("def broken(:\n    pass\n"), "broken.py")
	require.Error(t, err)

	var perr *pysource.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "broken.py", perr.Path)
	assert.Positive(t, perr.Line)
}

func TestParseEmptySource(t *testing.T) {
	t.Parallel()

	unit, err := pysource.Parse(context.Background(), []byte(""), "empty.py")
	require.NoError(t, err)

	assert.Empty(t, unit.Classes)
	assert.Empty(t, unit.Functions)
	assert.Empty(t, unit.Imports)
	assert.Empty(t, unit.Constants)
	assert.Empty(t, unit.ExportedSymbols)
}

func TestModuleTreeKinds(t *testing.T) {
	t.Parallel()

	src := []byte(`def route(x):
    if x == 1:
        return "a"
    elif x == 2:
        if x and y:
            return "b"
    else:
        for i in range(3):
            print(i)
`)

	tree, err := pysource.ModuleTree(context.Background(), src, "route.py")
	require.NoError(t, err)
	require.Equal(t, pysource.KindModule, tree.Kind)

	fns := tree.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "route", fns[0].Name)
	assert.Equal(t, 1, fns[0].Params)

	counts := map[pysource.Kind]int{}
	fns[0].Walk(func(n *pysource.Node) { counts[n.Kind]++ })

	// if + elif + nested if, with the else body re-parented under the elif.
	assert.Equal(t, 3, counts[pysource.KindConditional])
	assert.Equal(t, 1, counts[pysource.KindLoop])
	assert.Equal(t, 1, counts[pysource.KindBoolChain])
}

func TestModuleTreeElifReparenting(t *testing.T) {
	t.Parallel()

	src := []byte(`if a:
    pass
elif b:
    pass
else:
    while True:
        pass
`)

	tree, err := pysource.ModuleTree(context.Background(), src, "chain.py")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	top := tree.Children[0]
	require.Equal(t, pysource.KindConditional, top.Kind)

	var branch *pysource.Node
	for _, c := range top.Children {
		if c.Kind == pysource.KindConditional {
			branch = c
		}
	}

	require.NotNil(t, branch, "elif should nest under the if")

	var loop *pysource.Node
	for _, c := range branch.Children {
		if c.Kind == pysource.KindLoop {
			loop = c
		}
	}

	assert.NotNil(t, loop, "else body should attach to the last branch")
}

func TestModuleTreeDocstringSpan(t *testing.T) {
	t.Parallel()

	src := []byte(`def doc():
    """One.
    Two.
    """
    return 1
`)

	tree, err := pysource.ModuleTree(context.Background(), src, "doc.py")
	require.NoError(t, err)

	fns := tree.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, 3, fns[0].DocLines)
}

func TestComments(t *testing.T) {
	t.Parallel()

	src := []byte("# leading\nx = 1  # inline note\n")

	comments, err := pysource.Comments(context.Background(), src, "c.py")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, 1, comments[0].Line)
	assert.False(t, comments[0].Inline)
	assert.Equal(t, "leading", comments[0].Text)

	assert.Equal(t, 2, comments[1].Line)
	assert.True(t, comments[1].Inline)
	assert.Equal(t, "inline note", comments[1].Text)
	assert.Equal(t, "# inline note", comments[1].Raw)
}

func TestDocstrings(t *testing.T) {
	t.Parallel()

	src := []byte(`"""Module doc."""

class C:
    """Class doc."""

    def m(self):
        """Method doc."""
`)

	docs, err := pysource.Docstrings(context.Background(), src, "d.py")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, 1, docs[0].Line)
	assert.Equal(t, "Module doc.", docs[0].Text)
	assert.Equal(t, "Class doc.", docs[1].Text)
	assert.Equal(t, "Method doc.", docs[2].Text)
}

func TestValidatePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	assert.ErrorIs(t, pysource.ValidatePath(filepath.Join(dir, "a.txt")), pysource.ErrNotPythonFile)

	missing := filepath.Join(dir, "missing.py")
	assert.Error(t, pysource.ValidatePath(missing))

	ok := filepath.Join(dir, "ok.py")
	require.NoError(t, os.WriteFile(ok, []byte("x = 1\n"), 0o600))
	assert.NoError(t, pysource.ValidatePath(ok))
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("VALUE = 1\n"), 0o600))

	unit, err := pysource.ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"VALUE"}, unit.Constants)
}

func TestParseKeywordOnlyParameters(t *testing.T) {
	t.Parallel()

	src := "def f(a, *, b=1):\n    pass\n\n\ndef g(a, *args, b=2, **kwargs):\n    pass\n\n\ndef h(x, /, y):\n    pass\n"

	unit, err := pysource.Parse(context.Background(), []byte(src), "params.py")
	require.NoError(t, err)
	require.Len(t, unit.Functions, 3)

	f := unit.Functions[0]
	require.Len(t, f.Parameters, 2)
	assert.Equal(t, "a", f.Parameters[0].Name)
	assert.Equal(t, "b", f.Parameters[1].Name)
	assert.Equal(t, "1", f.Parameters[1].Default)

	g := unit.Functions[1]
	require.Len(t, g.Parameters, 2)
	assert.Equal(t, "a", g.Parameters[0].Name)
	assert.Equal(t, "b", g.Parameters[1].Name)
	assert.Equal(t, "2", g.Parameters[1].Default)

	h := unit.Functions[2]
	require.Len(t, h.Parameters, 1)
	assert.Equal(t, "y", h.Parameters[0].Name)
}

func TestParseAnnotatedAssignmentsNotExported(t *testing.T) {
	t.Parallel()

	src := "LIMIT: int = 10\nretries: int = 3\nvalue = 1\n"

	unit, err := pysource.Parse(context.Background(), []byte(src), "consts.py")
	require.NoError(t, err)

	assert.Equal(t, []string{"LIMIT"}, unit.Constants)
	assert.Equal(t, []string{"value"}, unit.ExportedSymbols)
}

func TestParseIncompleteExpression(t *testing.T) {
	t.Parallel()

	_, err := pysource.Parse(context.Background(), []byte("x = (1\n"), "partial.py")

	var perr *pysource.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Positive(t, perr.Line)
}

func TestReadSourceRejectsBinary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob.py")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 'x'}, 0o600))

	_, err := pysource.ReadSource(path)
	assert.ErrorIs(t, err, pysource.ErrBinaryFile)
}
