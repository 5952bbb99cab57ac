package comments

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/deepdive-tools/deepdive/internal/pysource"
	"github.com/deepdive-tools/deepdive/pkg/textutil"
)

const percent = 100

// Analyzer classifies the comments of Python files.
type Analyzer struct {
	log *slog.Logger
}

// New creates an analyzer. A nil logger falls back to the default.
func New(log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}

	return &Analyzer{log: log}
}

// AnalyzeContent classifies every comment and docstring in a source buffer.
func (a *Analyzer) AnalyzeContent(ctx context.Context, content []byte, path string) (*Analysis, error) {
	lines := textutil.SplitLines(string(content))

	analysis := &Analysis{
		Path:             path,
		TotalLines:       textutil.CountLines(content),
		Comments:         []Info{},
		ByType:           map[string]int{},
		ByClassification: map[string]int{},
		Issues:           []string{},
	}

	tokens, err := pysource.Comments(ctx, content, path)
	if err != nil {
		return nil, fmt.Errorf("extract comments: %w", err)
	}

	for _, tok := range tokens {
		lineContent := ""
		if tok.Line-1 < len(lines) {
			lineContent = lines[tok.Line-1]
		}

		typ, class, reason := classifyComment(tok.Text, tok.Raw, tok.Inline, false, lineContent)

		info := Info{
			Line:           tok.Line,
			Column:         tok.Column,
			Text:           tok.Text,
			RawText:        tok.Raw,
			IsInline:       tok.Inline,
			Type:           typ,
			Classification: class,
			Reason:         reason,
		}
		info.Suggestion = suggestRewrite(info)

		analysis.Comments = append(analysis.Comments, info)
	}

	docs, err := pysource.Docstrings(ctx, content, path)
	if err != nil {
		return nil, fmt.Errorf("extract docstrings: %w", err)
	}

	for _, doc := range docs {
		typ, class, reason := classifyComment(doc.Text, `"""`+doc.Text+`"""`, false, true, "")

		analysis.Comments = append(analysis.Comments, Info{
			Line:           doc.Line,
			Text:           doc.Text,
			RawText:        `"""` + doc.Text + `"""`,
			IsDocstring:    true,
			Type:           typ,
			Classification: class,
			Reason:         reason,
		})
	}

	sort.SliceStable(analysis.Comments, func(i, j int) bool {
		return analysis.Comments[i].Line < analysis.Comments[j].Line
	})

	analysis.TotalComments = len(analysis.Comments)
	if analysis.TotalLines > 0 {
		analysis.CommentRatio = float64(analysis.TotalComments) / float64(analysis.TotalLines) * percent
	}

	for _, c := range analysis.Comments {
		analysis.ByType[string(c.Type)]++
		analysis.ByClassification[string(c.Classification)]++

		if c.Classification == Delete || c.Classification == Rewrite {
			analysis.Issues = append(analysis.Issues, fmt.Sprintf("Line %d: [%s] %s", c.Line, c.Type, c.Reason))
		}
	}

	a.log.DebugContext(ctx, "analyzed comments",
		"path", path, "comments", analysis.TotalComments, "issues", len(analysis.Issues))

	return analysis, nil
}

// AnalyzeFile validates, reads, and analyzes one Python file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Analysis, error) {
	content, err := pysource.ReadSource(path)
	if err != nil {
		return nil, err
	}

	return a.AnalyzeContent(ctx, content, path)
}
