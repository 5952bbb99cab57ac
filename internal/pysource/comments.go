package pysource

import (
	"context"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/deepdive-tools/deepdive/pkg/textutil"
)

// Comments extracts every `#` comment in the buffer with its position.
// Inline means the comment shares its line with code.
func Comments(ctx context.Context, content []byte, path string) ([]CommentToken, error) {
	tree, err := parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if perr := syntaxError(path, root); perr != nil {
		return nil, perr
	}

	lines := textutil.SplitLines(string(content))
	tokens := []CommentToken{}

	walkNamed(root, func(n sitter.Node) {
		if n.Type() != "comment" {
			return
		}

		line := int(n.StartPoint().Row) + 1
		col := int(n.StartPoint().Column)
		raw := n.Content(content)

		inline := false
		if col > 0 && line-1 < len(lines) {
			inline = strings.TrimSpace(lines[line-1][:min(col, len(lines[line-1]))]) != ""
		}

		tokens = append(tokens, CommentToken{
			Line:   line,
			Column: col,
			Raw:    raw,
			Text:   strings.TrimSpace(strings.TrimLeft(raw, "#")),
			Inline: inline,
		})
	})

	return tokens, nil
}

// Docstrings extracts the module docstring plus every class and function
// docstring at any depth. Each entry carries the declaration line of its
// owner; the module docstring is reported at line 1.
func Docstrings(ctx context.Context, content []byte, path string) ([]Docstring, error) {
	tree, err := parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if perr := syntaxError(path, root); perr != nil {
		return nil, perr
	}

	docs := []Docstring{}

	if str := docstringNode(root); !str.IsNull() {
		docs = append(docs, Docstring{Line: 1, Text: cleanDocstring(stringLiteralValue(str.Content(content)))})
	}

	walkNamed(root, func(n sitter.Node) {
		typ := n.Type()
		if typ != "function_definition" && typ != "class_definition" {
			return
		}

		body := n.ChildByFieldName("body")
		if body.IsNull() {
			return
		}

		str := docstringNode(body)
		if str.IsNull() {
			return
		}

		docs = append(docs, Docstring{
			Line: int(n.StartPoint().Row) + 1,
			Text: cleanDocstring(stringLiteralValue(str.Content(content))),
		})
	})

	return docs, nil
}

// cleanDocstring normalizes docstring indentation: the first line keeps its
// content trimmed, subsequent lines lose their common leading whitespace,
// and blank lines at both ends are dropped.
func cleanDocstring(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) == 0 {
		return ""
	}

	margin := -1

	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}

		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	out := []string{strings.TrimSpace(lines[0])}

	for _, line := range lines[1:] {
		if margin > 0 && len(line) >= margin {
			line = line[margin:]
		}

		out = append(out, strings.TrimRight(line, " \t"))
	}

	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}
