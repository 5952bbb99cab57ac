package pysource

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Kind identifies one of the closed set of syntax constructs the analyzers
// care about. Everything else in the grammar is flattened away during
// conversion, so a Node tree never references the underlying parse tree.
type Kind uint8

// Node kinds.
const (
	KindModule Kind = iota
	KindFunction
	KindClass
	KindConditional
	KindLoop
	KindTry
	KindExcept
	KindWith
	KindAssert
	KindBoolChain
	KindCompFor
	KindCompIf
)

var kindNames = [...]string{
	KindModule:      "module",
	KindFunction:    "function",
	KindClass:       "class",
	KindConditional: "conditional",
	KindLoop:        "loop",
	KindTry:         "try",
	KindExcept:      "except",
	KindWith:        "with",
	KindAssert:      "assert",
	KindBoolChain:   "bool_chain",
	KindCompFor:     "comp_for",
	KindCompIf:      "comp_if",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// Node is one owned syntax tree node. The tree is fully detached from
// tree-sitter memory and stays valid after the parse tree is closed.
type Node struct {
	Kind     Kind
	Name     string // function or class name
	Line     int    // 1-based start line
	EndLine  int    // 1-based end line
	Params   int    // positional parameter count, functions only
	DocLines int    // source lines occupied by the leading docstring, functions only
	Children []*Node
}

// Walk calls fn for n and every node below it, pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)

	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Functions returns every function node in the tree at any depth, including
// methods and nested functions, in source order.
func (n *Node) Functions() []*Node {
	var fns []*Node

	n.Walk(func(c *Node) {
		if c.Kind == KindFunction {
			fns = append(fns, c)
		}
	})

	return fns
}

// converter builds owned Node trees from a tree-sitter parse tree. It must
// run while the parse tree is still open.
type converter struct {
	src []byte
}

// convertModule converts the grammar root into a KindModule tree.
func (cv *converter) convertModule(root sitter.Node) *Node {
	mod := &Node{
		Kind:    KindModule,
		Line:    int(root.StartPoint().Row) + 1,
		EndLine: int(root.EndPoint().Row) + 1,
	}
	cv.convertChildren(root, mod)

	return mod
}

// convertInto converts n and appends the resulting owned nodes to parent.
// Grammar nodes outside the closed kind set are flattened, so their
// interesting descendants attach to the nearest interesting ancestor and
// nesting depth matches the construct depth of the source.
func (cv *converter) convertInto(n sitter.Node, parent *Node) {
	switch n.Type() {
	case "function_definition":
		parent.Children = append(parent.Children, cv.convertFunction(n))
	case "class_definition":
		parent.Children = append(parent.Children, cv.convertClass(n))
	case "if_statement":
		parent.Children = append(parent.Children, cv.convertIf(n))
	case "while_statement", "for_statement":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindLoop))
	case "try_statement":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindTry))
	case "except_clause":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindExcept))
	case "with_statement":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindWith))
	case "assert_statement":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindAssert))
	case "boolean_operator":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindBoolChain))
	case "for_in_clause":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindCompFor))
	case "if_clause":
		parent.Children = append(parent.Children, cv.convertPlain(n, KindCompIf))
	default:
		cv.convertChildren(n, parent)
	}
}

// convertChildren flattens n, converting its named children into parent.
func (cv *converter) convertChildren(n sitter.Node, parent *Node) {
	for i := range n.NamedChildCount() {
		cv.convertInto(n.NamedChild(i), parent)
	}
}

// convertPlain converts a node whose children all nest directly under it.
func (cv *converter) convertPlain(n sitter.Node, kind Kind) *Node {
	node := &Node{
		Kind:    kind,
		Line:    int(n.StartPoint().Row) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
	}
	cv.convertChildren(n, node)

	return node
}

// convertIf converts an if statement. The grammar keeps elif and else
// clauses as flat siblings of the first branch, so each elif is re-parented
// under the previous conditional and the else body attaches to the last
// conditional in the chain. Depth through an if/elif ladder then counts one
// level per branch keyword.
func (cv *converter) convertIf(n sitter.Node) *Node {
	node := &Node{
		Kind:    KindConditional,
		Line:    int(n.StartPoint().Row) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
	}

	var (
		elifs    []sitter.Node
		elseNode sitter.Node
		hasElse  bool
	)

	for i := range n.NamedChildCount() {
		c := n.NamedChild(i)
		switch c.Type() {
		case "elif_clause":
			elifs = append(elifs, c)
		case "else_clause":
			elseNode, hasElse = c, true
		default:
			cv.convertInto(c, node)
		}
	}

	tail := node

	for _, e := range elifs {
		branch := &Node{
			Kind:    KindConditional,
			Line:    int(e.StartPoint().Row) + 1,
			EndLine: int(e.EndPoint().Row) + 1,
		}
		cv.convertChildren(e, branch)
		tail.Children = append(tail.Children, branch)
		tail = branch
	}

	if hasElse {
		cv.convertChildren(elseNode, tail)
	}

	return node
}

// convertFunction converts a function or method definition, capturing the
// positional parameter count and the line span of a leading docstring.
func (cv *converter) convertFunction(n sitter.Node) *Node {
	node := &Node{
		Kind:    KindFunction,
		Line:    int(n.StartPoint().Row) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
	}

	if name := n.ChildByFieldName("name"); !name.IsNull() {
		node.Name = name.Content(cv.src)
	}

	if params := n.ChildByFieldName("parameters"); !params.IsNull() {
		node.Params = countPositionalParams(params, cv.src)
	}

	if body := n.ChildByFieldName("body"); !body.IsNull() {
		if doc := docstringNode(body); !doc.IsNull() {
			node.DocLines = int(doc.EndPoint().Row-doc.StartPoint().Row) + 1
		}
	}

	cv.convertChildren(n, node)

	return node
}

// convertClass converts a class definition.
func (cv *converter) convertClass(n sitter.Node) *Node {
	node := &Node{
		Kind:    KindClass,
		Line:    int(n.StartPoint().Row) + 1,
		EndLine: int(n.EndPoint().Row) + 1,
	}

	if name := n.ChildByFieldName("name"); !name.IsNull() {
		node.Name = name.Content(cv.src)
	}

	cv.convertChildren(n, node)

	return node
}

// countPositionalParams counts positional parameters in a parameter list.
// Keyword-only parameters (after `*` or `*args`) and the splat parameters
// themselves are excluded, as are positional-only parameters before `/`.
func countPositionalParams(params sitter.Node, src []byte) int {
	count := 0

	for i := range params.NamedChildCount() {
		c := params.NamedChild(i)
		switch c.Type() {
		case "identifier", "typed_parameter", "default_parameter", "typed_default_parameter":
			count++
		case "positional_separator":
			count = 0
		case "list_splat_pattern", "keyword_separator":
			return count
		}
	}

	return count
}

// docstringNode returns the string node of a block's leading docstring, or
// a null node when the block does not start with a bare string literal.
func docstringNode(body sitter.Node) sitter.Node {
	if body.NamedChildCount() == 0 {
		return sitter.Node{}
	}

	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() != 1 {
		return sitter.Node{}
	}

	str := first.NamedChild(0)
	if str.Type() != "string" {
		return sitter.Node{}
	}

	return str
}
