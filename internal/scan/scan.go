// Package scan walks directory trees and runs the per-file analyzers over
// every Python source found, fanned out across a worker pool.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/src-d/enry/v2"

	"github.com/deepdive-tools/deepdive/internal/analyzers/classify"
	"github.com/deepdive-tools/deepdive/internal/analyzers/comments"
	"github.com/deepdive-tools/deepdive/internal/analyzers/complexity"
	"github.com/deepdive-tools/deepdive/internal/pysource"
)

const pythonLanguage = "Python"

// Options control a directory scan.
type Options struct {
	Workers   int
	BatchSize int      // capacity of the job queue feeding the workers
	Exclude   []string // glob patterns matched against slash-separated relative paths
}

// FileReport is the combined analysis of one file. Err is set when the file
// was selected but could not be analyzed; the scan continues past it.
type FileReport struct {
	Path           string                  `json:"file_path" yaml:"file_path"`
	Classification classify.Result         `json:"classification" yaml:"classification"`
	Complexity     *complexity.FileMetrics `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	CommentIssues  int                     `json:"comment_issues" yaml:"comment_issues"`
	Err            string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary aggregates a scan.
type Summary struct {
	Root       string         `json:"root" yaml:"root"`
	TotalFiles int            `json:"total_files" yaml:"total_files"`
	Failed     int            `json:"failed" yaml:"failed"`
	ByTier     map[string]int `json:"by_tier" yaml:"by_tier"`
	Files      []FileReport   `json:"files" yaml:"files"`
}

// Scanner fans file analysis out over a pool of workers.
type Scanner struct {
	opts       Options
	complexity *complexity.Analyzer
	comments   *comments.Analyzer
	log        *slog.Logger
}

// New creates a scanner. Zero workers falls back to one, zero batch size to
// one job per worker.
func New(opts Options, ca *complexity.Analyzer, cma *comments.Analyzer, log *slog.Logger) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if opts.BatchSize < 1 {
		opts.BatchSize = opts.Workers
	}

	if log == nil {
		log = slog.Default()
	}

	return &Scanner{opts: opts, complexity: ca, comments: cma, log: log}
}

// Scan walks root and analyzes every Python file it selects. The walk skips
// vendored paths, hidden directories, and anything matching an exclude glob.
func (s *Scanner) Scan(ctx context.Context, root string) (*Summary, error) {
	paths, err := s.collect(root)
	if err != nil {
		return nil, err
	}

	jobs := make(chan string, s.opts.BatchSize)
	results := make(chan FileReport, len(paths))

	var wg sync.WaitGroup

	for range s.opts.Workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				results <- s.analyzeOne(ctx, path)
			}
		}()
	}

	go func() {
		defer close(jobs)

		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	summary := &Summary{
		Root:   root,
		ByTier: map[string]int{},
		Files:  []FileReport{},
	}

	for r := range results {
		summary.Files = append(summary.Files, r)
		summary.TotalFiles++

		if r.Err != "" {
			summary.Failed++

			continue
		}

		summary.ByTier[string(r.Classification.Classification)]++
	}

	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].Path < summary.Files[j].Path
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "scan finished",
		"root", root, "files", summary.TotalFiles, "failed", summary.Failed)

	return summary, nil
}

// collect gathers the Python files under root in walk order.
func (s *Scanner) collect(root string) ([]string, error) {
	var paths []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}

			if strings.HasPrefix(d.Name(), ".") || enry.IsVendor(rel+"/") || s.excluded(rel) {
				return filepath.SkipDir
			}

			return nil
		}

		if s.excluded(rel) || enry.IsVendor(rel) {
			return nil
		}

		if !strings.HasSuffix(path, ".py") {
			return nil
		}

		if lang := enry.GetLanguage(filepath.Base(path), nil); lang != pythonLanguage && lang != "" {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	return paths, nil
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.opts.Exclude {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}

// analyzeOne runs the classifier, the complexity scorer, and the comment
// taxonomy over one file.
func (s *Scanner) analyzeOne(ctx context.Context, path string) FileReport {
	report := FileReport{Path: path}

	content, err := pysource.ReadSource(path)
	if err != nil {
		report.Err = err.Error()

		return report
	}

	report.Classification = classify.Classify(string(content), path)

	metrics, err := s.complexity.AnalyzeSource(ctx, content, path)
	if err != nil {
		report.Err = err.Error()

		return report
	}

	report.Complexity = metrics

	analysis, err := s.comments.AnalyzeContent(ctx, content, path)
	if err != nil {
		report.Err = err.Error()

		return report
	}

	report.CommentIssues = len(analysis.Issues)

	return report
}
