package pysource

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// knownExternalModules are top-level module names assumed to come from the
// standard library or well-known third-party packages. Anything else
// defaults to internal, which keeps unknown first-party packages from being
// misread as dependencies.
var knownExternalModules = map[string]struct{}{
	"os": {}, "sys": {}, "re": {}, "json": {}, "typing": {},
	"collections": {}, "dataclasses": {}, "pathlib": {}, "asyncio": {},
	"logging": {}, "datetime": {}, "time": {}, "random": {},
	"functools": {}, "itertools": {}, "contextlib": {}, "abc": {},
	"enum": {}, "uuid": {}, "hashlib": {}, "base64": {}, "urllib": {},
	"http": {}, "email": {}, "html": {}, "xml": {}, "sqlite3": {},
	"socket": {}, "threading": {}, "multiprocessing": {}, "subprocess": {},
	"unittest": {}, "pytest": {}, "mock": {}, "requests": {},
	"aiohttp": {}, "httpx": {}, "pydantic": {}, "sqlalchemy": {},
	"django": {}, "flask": {}, "fastapi": {}, "celery": {}, "redis": {},
	"kafka": {}, "boto3": {}, "numpy": {}, "pandas": {}, "scipy": {},
}

// isLikelyInternal guesses whether module belongs to the analyzed project.
// The checks run in a fixed order and the final branch defaults to internal.
func isLikelyInternal(module string) bool {
	if module == "" {
		return false
	}

	top, _, _ := strings.Cut(module, ".")
	if strings.HasPrefix(top, "_") {
		return true
	}

	if _, ok := knownExternalModules[strings.ToLower(top)]; ok {
		return false
	}

	if strings.HasPrefix(module, ".") {
		return true
	}

	return true
}

// collectImports walks the whole tree and records every import statement at
// any nesting depth, in source order.
func collectImports(root sitter.Node, src []byte) []ImportDescriptor {
	imports := []ImportDescriptor{}
	walkNamed(root, func(n sitter.Node) {
		switch n.Type() {
		case "import_statement":
			imports = append(imports, plainImports(n, src)...)
		case "import_from_statement", "future_import_statement":
			imports = append(imports, fromImport(n, src))
		}
	})

	return imports
}

func walkNamed(n sitter.Node, fn func(sitter.Node)) {
	fn(n)

	for i := range n.NamedChildCount() {
		walkNamed(n.NamedChild(i), fn)
	}
}

// plainImports expands `import a.b, c as d` into one descriptor per target.
// The recorded name is the binding introduced in the namespace: the alias
// when present, the full dotted path otherwise.
func plainImports(n sitter.Node, src []byte) []ImportDescriptor {
	out := []ImportDescriptor{}

	for i := range n.NamedChildCount() {
		c := n.NamedChild(i)

		var module, binding string

		switch c.Type() {
		case "dotted_name":
			module = c.Content(src)
			binding = module
		case "aliased_import":
			if name := c.ChildByFieldName("name"); !name.IsNull() {
				module = name.Content(src)
			}

			binding = module
			if alias := c.ChildByFieldName("alias"); !alias.IsNull() {
				binding = alias.Content(src)
			}
		default:
			continue
		}

		out = append(out, ImportDescriptor{
			Module:     module,
			Names:      []string{binding},
			IsInternal: isLikelyInternal(module),
		})
	}

	return out
}

// fromImport builds one descriptor for a `from X import ...` statement.
// Names record the imported symbols, not their aliases.
func fromImport(n sitter.Node, src []byte) ImportDescriptor {
	imp := ImportDescriptor{
		Names:        []string{},
		IsFromImport: true,
	}

	modStart, hasModule := uint(0), false

	// `from __future__ import ...` keeps its module as a bare keyword, so
	// there is no module_name field to read.
	if n.Type() == "future_import_statement" {
		imp.Module = "__future__"
	}

	if mod := n.ChildByFieldName("module_name"); !mod.IsNull() {
		imp.Module = mod.Content(src)
		modStart, hasModule = mod.StartByte(), true
	}

	for i := range n.NamedChildCount() {
		c := n.NamedChild(i)
		if hasModule && c.StartByte() == modStart {
			continue
		}

		switch c.Type() {
		case "dotted_name":
			imp.Names = append(imp.Names, c.Content(src))
		case "aliased_import":
			if name := c.ChildByFieldName("name"); !name.IsNull() {
				imp.Names = append(imp.Names, name.Content(src))
			}
		case "wildcard_import":
			imp.Names = append(imp.Names, "*")
		}
	}

	imp.IsInternal = isLikelyInternal(imp.Module)

	return imp
}
