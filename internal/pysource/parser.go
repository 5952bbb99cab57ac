package pysource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/dustin/go-humanize"

	"github.com/deepdive-tools/deepdive/pkg/textutil"
)

// MaxFileSize is the largest source file accepted for parsing.
const MaxFileSize = 10 * 1024 * 1024

var pythonLang = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(python.GetLanguage())
})

var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(pythonLang())

		return p
	},
}

// parse runs the grammar over content and returns the open parse tree.
// The caller must Close the tree.
func parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	p, ok := parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("parser pool returned unexpected type")
	}
	defer parserPool.Put(p)

	tree, err := p.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}

	return tree, nil
}

// syntaxError converts the first syntax fault in the tree into a ParseError.
// Returns nil for a clean tree. Both ERROR nodes and the zero-width MISSING
// nodes inserted by error recovery count as faults.
func syntaxError(path string, root sitter.Node) *ParseError {
	if !root.HasError() {
		return nil
	}

	line, col := 1, 1
	if bad := findFaultNode(root); !bad.IsNull() {
		line, col = int(bad.StartPoint().Row)+1, int(bad.StartPoint().Column)+1
	}

	return &ParseError{
		Path:   path,
		Line:   line,
		Column: col,
		Msg:    "invalid syntax",
	}
}

// findFaultNode descends to the first ERROR or MISSING node. MISSING nodes
// can be anonymous, so the walk covers all children, pruned to subtrees that
// report an error.
func findFaultNode(n sitter.Node) sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}

	for i := range n.ChildCount() {
		c := n.Child(i)
		if !c.HasError() && !c.IsMissing() {
			continue
		}

		if found := findFaultNode(c); !found.IsNull() {
			return found
		}
	}

	return sitter.Node{}
}

// Parse builds the structural model of one Python source buffer. path is
// recorded in the result and in error messages only; no file IO happens.
func Parse(ctx context.Context, content []byte, path string) (*SyntaxUnit, error) {
	tree, err := parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if perr := syntaxError(path, root); perr != nil {
		return nil, perr
	}

	ex := &extractor{src: content}

	return ex.extract(root, path), nil
}

// ModuleTree parses content and returns the owned syntax tree of the whole
// module, for complexity scoring.
func ModuleTree(ctx context.Context, content []byte, path string) (*Node, error) {
	tree, err := parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if perr := syntaxError(path, root); perr != nil {
		return nil, perr
	}

	cv := &converter{src: content}

	return cv.convertModule(root), nil
}

// ValidatePath checks that path names an existing regular .py file no larger
// than MaxFileSize.
func ValidatePath(path string) error {
	if !strings.HasSuffix(path, ".py") {
		return fmt.Errorf("%s: %w", path, ErrNotPythonFile)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	if info.Size() > MaxFileSize {
		return fmt.Errorf("%s (%s): %w", path, humanize.Bytes(uint64(info.Size())), ErrFileTooLarge)
	}

	return nil
}

// ReadSource validates path and reads it, replacing invalid UTF-8 rather
// than failing on it. Binary content is rejected.
func ReadSource(path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if textutil.IsBinary(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrBinaryFile)
	}

	return []byte(textutil.DecodeUTF8Lossy(content)), nil
}

// ParseFile validates, reads, and parses one Python file.
func ParseFile(ctx context.Context, path string) (*SyntaxUnit, error) {
	content, err := ReadSource(path)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, content, filepath.ToSlash(path))
}
