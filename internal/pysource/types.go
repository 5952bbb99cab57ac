package pysource

// ParameterDescriptor describes one function parameter.
type ParameterDescriptor struct {
	Name       string `json:"name" yaml:"name"`
	Annotation string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Default    string `json:"default,omitempty" yaml:"default,omitempty"`
}

// FunctionDescriptor describes a function or method declaration.
type FunctionDescriptor struct {
	Name             string                `json:"name" yaml:"name"`
	Parameters       []ParameterDescriptor `json:"parameters" yaml:"parameters"`
	ReturnAnnotation string                `json:"return_annotation,omitempty" yaml:"return_annotation,omitempty"`
	IsAsync          bool                  `json:"is_async" yaml:"is_async"`
	IsClassmethod    bool                  `json:"is_classmethod" yaml:"is_classmethod"`
	IsStaticmethod   bool                  `json:"is_staticmethod" yaml:"is_staticmethod"`
	IsProperty       bool                  `json:"is_property" yaml:"is_property"`
	Docstring        string                `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Line             int                   `json:"line_number" yaml:"line_number"`

	// Subtree is the owned syntax subtree of the function, consumed by the
	// complexity scorer. Not part of the serialized structure.
	Subtree *Node `json:"-" yaml:"-"`
}

// ClassDescriptor describes a class declaration with its methods and
// class-level variables.
type ClassDescriptor struct {
	Name           string               `json:"name" yaml:"name"`
	Bases          []string             `json:"bases" yaml:"bases"`
	Methods        []FunctionDescriptor `json:"methods" yaml:"methods"`
	ClassVariables []string             `json:"class_variables" yaml:"class_variables"`
	Docstring      string               `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Line           int                  `json:"line_number" yaml:"line_number"`
}

// ImportDescriptor describes one import statement. IsInternal is a
// best-effort heuristic with a documented default-to-internal bias.
type ImportDescriptor struct {
	Module       string   `json:"module" yaml:"module"`
	Names        []string `json:"names" yaml:"names"`
	IsFromImport bool     `json:"is_from_import" yaml:"is_from_import"`
	IsInternal   bool     `json:"is_internal" yaml:"is_internal"`
}

// CallTag classifies an external call site by the kind of system it talks to.
type CallTag string

// External call site tags, in table scan order.
const (
	CallDatabase   CallTag = "database"
	CallNetwork    CallTag = "network"
	CallFilesystem CallTag = "filesystem"
	CallMessaging  CallTag = "messaging"
	CallIPC        CallTag = "ipc"
	CallOther      CallTag = "other"
)

// ExternalCallSite records one detected external system call.
type ExternalCallSite struct {
	Tag     CallTag `json:"call_type" yaml:"call_type"`
	Pattern string  `json:"pattern" yaml:"pattern"`
	Line    int     `json:"line_number" yaml:"line_number"`
	Context string  `json:"context" yaml:"context"`
}

// SyntaxUnit is the complete structural model of one parsed file.
// It is created fresh per parse call and owned exclusively by the caller.
type SyntaxUnit struct {
	Path            string               `json:"file_path" yaml:"file_path"`
	Classes         []ClassDescriptor    `json:"classes" yaml:"classes"`
	Functions       []FunctionDescriptor `json:"functions" yaml:"functions"`
	Imports         []ImportDescriptor   `json:"imports" yaml:"imports"`
	Constants       []string             `json:"constants" yaml:"constants"`
	ExternalCalls   []ExternalCallSite   `json:"external_calls" yaml:"external_calls"`
	ExportedSymbols []string             `json:"exported_symbols" yaml:"exported_symbols"`
}

// CommentToken is one `#` comment extracted from source, with position and
// inline context.
type CommentToken struct {
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Text   string `json:"text" yaml:"text"`
	Raw    string `json:"raw" yaml:"raw"`
	Inline bool   `json:"inline" yaml:"inline"`
}

// Docstring is one module, class, or function docstring. Line is the
// declaration line of the owner (1 for the module docstring).
type Docstring struct {
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}
