package pysource

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// contextLimit caps the snippet recorded for an external call site.
const contextLimit = 100

// extractor walks an open parse tree and builds the SyntaxUnit. All node
// content is copied out before the tree is closed.
type extractor struct {
	src []byte
}

func (ex *extractor) extract(root sitter.Node, path string) *SyntaxUnit {
	unit := &SyntaxUnit{
		Path:            path,
		Classes:         []ClassDescriptor{},
		Functions:       []FunctionDescriptor{},
		Imports:         []ImportDescriptor{},
		Constants:       []string{},
		ExternalCalls:   []ExternalCallSite{},
		ExportedSymbols: []string{},
	}

	for i := range root.NamedChildCount() {
		ex.extractTopLevel(root.NamedChild(i), unit)
	}

	unit.Imports = collectImports(root, ex.src)
	unit.ExternalCalls = scanExternalCalls(ex.src)

	return unit
}

// extractTopLevel handles one direct child of the module: declarations feed
// the class and function lists, simple assignments feed constants, and
// non-underscore names feed the export list in source order.
func (ex *extractor) extractTopLevel(n sitter.Node, unit *SyntaxUnit) {
	decorated := sitter.Node{}

	if n.Type() == "decorated_definition" {
		decorated = n
		if def := n.ChildByFieldName("definition"); !def.IsNull() {
			n = def
		}
	}

	switch n.Type() {
	case "class_definition":
		cls := ex.extractClass(n)
		unit.Classes = append(unit.Classes, cls)

		if !strings.HasPrefix(cls.Name, "_") {
			unit.ExportedSymbols = append(unit.ExportedSymbols, cls.Name)
		}
	case "function_definition":
		fn := ex.extractFunction(n, decorated)
		unit.Functions = append(unit.Functions, fn)

		if !strings.HasPrefix(fn.Name, "_") {
			unit.ExportedSymbols = append(unit.ExportedSymbols, fn.Name)
		}
	case "expression_statement":
		names, annotated := ex.assignedNames(n)
		for _, name := range names {
			if isUpperName(name) {
				unit.Constants = append(unit.Constants, name)
			}

			// Annotated assignments count as constants but are not
			// treated as exports.
			if !annotated && !strings.HasPrefix(name, "_") {
				unit.ExportedSymbols = append(unit.ExportedSymbols, name)
			}
		}
	}
}

// assignedNames returns the simple identifier targets of an assignment
// statement, following `a = b = ...` chains, and whether the assignment
// carries a type annotation. Tuple and attribute targets are ignored.
func (ex *extractor) assignedNames(stmt sitter.Node) ([]string, bool) {
	if stmt.NamedChildCount() != 1 {
		return nil, false
	}

	var (
		names     []string
		annotated bool
	)

	assign := stmt.NamedChild(0)
	for !assign.IsNull() && assign.Type() == "assignment" {
		if left := assign.ChildByFieldName("left"); !left.IsNull() && left.Type() == "identifier" {
			names = append(names, left.Content(ex.src))
		}

		if typ := assign.ChildByFieldName("type"); !typ.IsNull() {
			annotated = true
		}

		assign = assign.ChildByFieldName("right")
	}

	return names, annotated
}

// extractClass builds a ClassDescriptor from a class_definition node,
// including methods declared directly in the class body.
func (ex *extractor) extractClass(n sitter.Node) ClassDescriptor {
	cls := ClassDescriptor{
		Bases:          []string{},
		Methods:        []FunctionDescriptor{},
		ClassVariables: []string{},
		Line:           int(n.StartPoint().Row) + 1,
	}

	if name := n.ChildByFieldName("name"); !name.IsNull() {
		cls.Name = name.Content(ex.src)
	}

	if supers := n.ChildByFieldName("superclasses"); !supers.IsNull() {
		for i := range supers.NamedChildCount() {
			cls.Bases = append(cls.Bases, supers.NamedChild(i).Content(ex.src))
		}
	}

	body := n.ChildByFieldName("body")
	if body.IsNull() {
		return cls
	}

	cls.Docstring = ex.docstringText(body)

	for i := range body.NamedChildCount() {
		ex.extractClassMember(body.NamedChild(i), &cls)
	}

	return cls
}

func (ex *extractor) extractClassMember(n sitter.Node, cls *ClassDescriptor) {
	decorated := sitter.Node{}

	if n.Type() == "decorated_definition" {
		decorated = n
		if def := n.ChildByFieldName("definition"); !def.IsNull() {
			n = def
		}
	}

	switch n.Type() {
	case "function_definition":
		cls.Methods = append(cls.Methods, ex.extractFunction(n, decorated))
	case "expression_statement":
		names, _ := ex.assignedNames(n)
		cls.ClassVariables = append(cls.ClassVariables, names...)
	}
}

// extractFunction builds a FunctionDescriptor. decorated is the enclosing
// decorated_definition node, or null when the function is bare.
func (ex *extractor) extractFunction(n, decorated sitter.Node) FunctionDescriptor {
	fn := FunctionDescriptor{
		Parameters: []ParameterDescriptor{},
		Line:       int(n.StartPoint().Row) + 1,
		IsAsync:    strings.HasPrefix(n.Content(ex.src), "async"),
	}

	if name := n.ChildByFieldName("name"); !name.IsNull() {
		fn.Name = name.Content(ex.src)
	}

	if params := n.ChildByFieldName("parameters"); !params.IsNull() {
		fn.Parameters = ex.extractParameters(params)
	}

	if ret := n.ChildByFieldName("return_type"); !ret.IsNull() {
		fn.ReturnAnnotation = ret.Content(ex.src)
	}

	if body := n.ChildByFieldName("body"); !body.IsNull() {
		fn.Docstring = ex.docstringText(body)
	}

	if !decorated.IsNull() {
		ex.applyDecorators(decorated, &fn)
	}

	cv := &converter{src: ex.src}
	fn.Subtree = cv.convertFunction(n)

	return fn
}

// applyDecorators flags classmethod, staticmethod, and property when they
// appear as bare decorator names. Dotted or called decorators never match.
func (ex *extractor) applyDecorators(decorated sitter.Node, fn *FunctionDescriptor) {
	for i := range decorated.NamedChildCount() {
		d := decorated.NamedChild(i)
		if d.Type() != "decorator" || d.NamedChildCount() != 1 {
			continue
		}

		expr := d.NamedChild(0)
		if expr.Type() != "identifier" {
			continue
		}

		switch expr.Content(ex.src) {
		case "classmethod":
			fn.IsClassmethod = true
		case "staticmethod":
			fn.IsStaticmethod = true
		case "property":
			fn.IsProperty = true
		}
	}
}

// extractParameters records positional and keyword-only parameters with
// annotations and defaults. The splat parameters themselves (`*args`,
// `**kwargs`) are skipped, and parameters before a `/` separator are
// dropped.
func (ex *extractor) extractParameters(params sitter.Node) []ParameterDescriptor {
	out := []ParameterDescriptor{}

	for i := range params.NamedChildCount() {
		c := params.NamedChild(i)
		switch c.Type() {
		case "identifier":
			out = append(out, ParameterDescriptor{Name: c.Content(ex.src)})
		case "typed_parameter":
			p := ParameterDescriptor{}

			if c.NamedChildCount() > 0 {
				inner := c.NamedChild(0)
				if inner.Type() != "identifier" {
					continue
				}

				p.Name = inner.Content(ex.src)
			}

			if typ := c.ChildByFieldName("type"); !typ.IsNull() {
				p.Annotation = typ.Content(ex.src)
			}

			out = append(out, p)
		case "default_parameter", "typed_default_parameter":
			p := ParameterDescriptor{}

			if name := c.ChildByFieldName("name"); !name.IsNull() {
				p.Name = name.Content(ex.src)
			}

			if typ := c.ChildByFieldName("type"); !typ.IsNull() {
				p.Annotation = typ.Content(ex.src)
			}

			if val := c.ChildByFieldName("value"); !val.IsNull() {
				p.Default = val.Content(ex.src)
			}

			out = append(out, p)
		case "positional_separator":
			out = out[:0]
		}
	}

	return out
}

// docstringText returns the stripped value of a block's leading docstring,
// or the empty string.
func (ex *extractor) docstringText(body sitter.Node) string {
	str := docstringNode(body)
	if str.IsNull() {
		return ""
	}

	return strings.TrimSpace(stringLiteralValue(str.Content(ex.src)))
}

// stringLiteralValue strips the prefix and quotes from a Python string
// literal and resolves the common escape sequences. Raw strings keep their
// backslashes.
func stringLiteralValue(lit string) string {
	raw := false

	for len(lit) > 0 {
		c := lit[0]
		if c == '"' || c == '\'' {
			break
		}

		if c == 'r' || c == 'R' {
			raw = true
		}

		lit = lit[1:]
	}

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) && len(lit) >= 2*len(q) {
			lit = lit[len(q) : len(lit)-len(q)]

			break
		}
	}

	if raw {
		return lit
	}

	replacer := strings.NewReplacer(
		`\\`, "\\",
		`\n`, "\n",
		`\t`, "\t",
		`\r`, "\r",
		`\'`, "'",
		`\"`, `"`,
	)

	return replacer.Replace(lit)
}

// isUpperName reports whether name is an upper-case identifier: it has at
// least one cased character and every cased character is upper.
func isUpperName(name string) bool {
	hasCased := false

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasCased = true
		}
	}

	return hasCased
}
