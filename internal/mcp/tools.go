package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deepdive-tools/deepdive/internal/analyzers/classify"
	"github.com/deepdive-tools/deepdive/internal/pysource"
)

// Tool name constants.
const (
	ToolNameStructure  = "deepdive_structure"
	ToolNameComplexity = "deepdive_complexity"
	ToolNameClassify   = "deepdive_classify"
	ToolNameComments   = "deepdive_comments"
)

// Tool descriptions shown to MCP clients.
const (
	structureToolDescription  = "Parse Python source into its structural model: classes, functions, imports, constants, external call sites, and exported symbols."
	complexityToolDescription = "Score Python functions with cyclomatic complexity, length, and nesting metrics, aggregated per file."
	classifyToolDescription   = "Classify a Python file into a risk tier (critical, high-complexity, standard, utility) from code size, imports, and pattern scans."
	commentsToolDescription   = "Classify Python comments with the antirez taxonomy and report which should be kept, rewritten, or deleted."
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyInput indicates that neither code nor path was provided.
	ErrEmptyInput = errors.New("either code or path must be provided")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
)

// SourceInput is the shared input schema of all deepdive tools: inline code
// or a file path, with code taking precedence.
type SourceInput struct {
	Code string `json:"code,omitempty" jsonschema:"Python source code to analyze"`
	Path string `json:"path,omitempty" jsonschema:"path to a Python file to analyze"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// resolve returns the source buffer and display path for an input.
func (in SourceInput) resolve() ([]byte, string, error) {
	if in.Code != "" {
		if len(in.Code) > MaxCodeInputBytes {
			return nil, "", ErrCodeTooLarge
		}

		return []byte(in.Code), "<inline>", nil
	}

	if in.Path == "" {
		return nil, "", ErrEmptyInput
	}

	content, err := pysource.ReadSource(in.Path)
	if err != nil {
		return nil, "", err
	}

	return content, in.Path, nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func (s *Server) handleStructure(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SourceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	content, path, err := input.resolve()
	if err != nil {
		return errorResult(err)
	}

	unit, err := pysource.Parse(ctx, content, path)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(unit)
}

func (s *Server) handleComplexity(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SourceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	content, path, err := input.resolve()
	if err != nil {
		return errorResult(err)
	}

	metrics, err := s.complexity.AnalyzeSource(ctx, content, path)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(metrics)
}

func (s *Server) handleClassify(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input SourceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	content, path, err := input.resolve()
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(classify.Classify(string(content), path))
}

func (s *Server) handleComments(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SourceInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	content, path, err := input.resolve()
	if err != nil {
		return errorResult(err)
	}

	analysis, err := s.comments.AnalyzeContent(ctx, content, path)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(analysis)
}
