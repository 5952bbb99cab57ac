// Package comments classifies source comments with the antirez taxonomy
// (https://antirez.com/news/124) and suggests or applies rewrites.
package comments

// Report and rewrite limits.
const (
	MaxIssuesInReport     = 20
	MaxCommentsPerSection = 10
	shortDocstringLen     = 10
	shortInlineLen        = 20
	previewLen            = 50
	reportPreviewLen      = 60
	suggestionPreviewLen  = 80
)

// Type is the taxonomy bucket of a comment.
type Type string

// Comment types. The first six are worth keeping, the next three are not,
// and unknown needs human review.
const (
	TypeFunction  Type = "function"
	TypeDesign    Type = "design"
	TypeWhy       Type = "why"
	TypeTeacher   Type = "teacher"
	TypeChecklist Type = "checklist"
	TypeGuide     Type = "guide"
	TypeTrivial   Type = "trivial"
	TypeDebt      Type = "debt"
	TypeBackup    Type = "backup"
	TypeUnknown   Type = "unknown"
)

// Classification is the recommended action for a comment.
type Classification string

// Actions, in report order.
const (
	Keep    Classification = "keep"
	Enhance Classification = "enhance"
	Rewrite Classification = "rewrite"
	Delete  Classification = "delete"
)

// classificationOrder fixes the section order of detailed reports.
var classificationOrder = []Classification{Keep, Enhance, Rewrite, Delete}

// Info describes one classified comment or docstring.
type Info struct {
	Line           int            `json:"line_number" yaml:"line_number"`
	Column         int            `json:"column" yaml:"column"`
	Text           string         `json:"text" yaml:"text"`
	RawText        string         `json:"raw_text" yaml:"raw_text"`
	IsDocstring    bool           `json:"is_docstring" yaml:"is_docstring"`
	IsInline       bool           `json:"is_inline" yaml:"is_inline"`
	Type           Type           `json:"comment_type" yaml:"comment_type"`
	Classification Classification `json:"classification" yaml:"classification"`
	Reason         string         `json:"reason" yaml:"reason"`
	Suggestion     string         `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Analysis is the classified view of every comment in one file.
type Analysis struct {
	Path             string         `json:"file_path" yaml:"file_path"`
	TotalComments    int            `json:"total_comments" yaml:"total_comments"`
	TotalLines       int            `json:"total_lines" yaml:"total_lines"`
	CommentRatio     float64        `json:"comment_ratio" yaml:"comment_ratio"`
	Comments         []Info         `json:"comments" yaml:"comments"`
	ByType           map[string]int `json:"by_type" yaml:"by_type"`
	ByClassification map[string]int `json:"by_classification" yaml:"by_classification"`
	Issues           []string       `json:"issues" yaml:"issues"`
}
