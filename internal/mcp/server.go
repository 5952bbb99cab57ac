// Package mcp implements a Model Context Protocol server exposing deepdive
// analysis capabilities as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
	"github.com/deepdive-tools/deepdive/internal/observability"
	"github.com/deepdive-tools/deepdive/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "deepdive"

	// toolCount is the expected number of registered tools.
	toolCount = 4
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Thresholds configure the complexity tool. Zero uses defaults.
	Thresholds complexity.Thresholds

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with deepdive tool registrations.
type Server struct {
	inner      *mcpsdk.Server
	mu         sync.RWMutex
	tools      []string
	complexity *complexity.Analyzer
	comments   *comments.Analyzer
	metrics    *observability.REDMetrics
	tracer     trace.Tracer
}

// NewServer creates a new MCP server with all deepdive tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	th := deps.Thresholds
	if th == (complexity.Thresholds{}) {
		th = complexity.DefaultThresholds()
	}

	srv := &Server{
		inner:      inner,
		tools:      make([]string, 0, toolCount),
		complexity: complexity.New(th),
		comments:   comments.New(deps.Logger),
		metrics:    deps.Metrics,
		tracer:     deps.Tracer,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	err := s.inner.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all deepdive MCP tools to the server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameStructure,
		Description: structureToolDescription,
	}, withMetrics(s.metrics, ToolNameStructure, withTracing(s.tracer, ToolNameStructure, s.handleStructure)))
	s.trackTool(ToolNameStructure)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameComplexity,
		Description: complexityToolDescription,
	}, withMetrics(s.metrics, ToolNameComplexity, withTracing(s.tracer, ToolNameComplexity, s.handleComplexity)))
	s.trackTool(ToolNameComplexity)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameClassify,
		Description: classifyToolDescription,
	}, withMetrics(s.metrics, ToolNameClassify, withTracing(s.tracer, ToolNameClassify, s.handleClassify)))
	s.trackTool(ToolNameClassify)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameComments,
		Description: commentsToolDescription,
	}, withMetrics(s.metrics, ToolNameComments, withTracing(s.tracer, ToolNameComments, s.handleComments)))
	s.trackTool(ToolNameComments)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// toolHandler is the MCP SDK handler shape shared by all deepdive tools.
type toolHandler = mcpsdk.ToolHandlerFor[SourceInput, ToolOutput]

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing(tracer trace.Tracer, toolName string, handler toolHandler) toolHandler {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input SourceInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per invocation.
func withMetrics(metrics *observability.REDMetrics, toolName string, handler toolHandler) toolHandler {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input SourceInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}
