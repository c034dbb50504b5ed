package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
)

// Analyzer defines the interface for analyzing one document source
type Analyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.Report, error)
}

// DocumentJob represents one document analysis
type DocumentJob struct {
	Source   string
	Analyzer Analyzer
}

// Execute executes the document job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	return &DocumentResult{
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple documents concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessSources analyzes every source; results follow input order.
// A failed document is reported in its result and does not stop the others.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) ([]*DocumentResult, error) {
	if len(sources) == 0 {
		return []*DocumentResult{}, nil
	}

	jobs := make([]Job, len(sources))
	for i, source := range sources {
		jobs[i] = &DocumentJob{
			Source:   source,
			Analyzer: b.analyzer,
		}
	}

	results, err := NewPool(b.concurrency).Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	docResults := make([]*DocumentResult, len(results))
	for i, result := range results {
		docResults[i] = result.(*DocumentResult)
	}

	return docResults, nil
}

// ProcessFile reads sources from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DocumentResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources)
}

// ReadSourcesFromFile reads document paths or URLs from a file (one per line).
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
