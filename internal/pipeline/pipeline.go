// Package pipeline runs one document through extraction, segmentation,
// per-clause analysis and reconciliation, and renders the resulting report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/cache"
	"github.com/ppiankov/clausewise/internal/extract"
	"github.com/ppiankov/clausewise/internal/llm"
	"github.com/ppiankov/clausewise/internal/metrics"
	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/score"
	"github.com/ppiankov/clausewise/internal/segment"
	"github.com/ppiankov/clausewise/internal/worker"
)

// Terminal conditions. Every other failure inside a document is absorbed.
var (
	ErrExtractionEmpty   = errors.New("no text could be extracted from the document")
	ErrSegmentationEmpty = errors.New("no meaningful clauses found in the document")
)

// FailureReason names a terminal condition for API responses, "" for anything else
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrExtractionEmpty):
		return "ExtractionEmpty"
	case errors.Is(err, ErrSegmentationEmpty):
		return "SegmentationEmpty"
	default:
		return ""
	}
}

// Pipeline orchestrates the complete analysis of one document
type Pipeline struct {
	extractor    *extract.Extractor
	segmenter    *segment.Segmenter
	orchestrator *Orchestrator
	scorer       *score.Scorer
	provider     llm.Provider // nil when the model is disabled
	modelName    string
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// Option customizes a Pipeline
type Option func(*options)

type options struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	store     cache.Cache
	provider  llm.Provider
	analyzer  ClauseAnalyzer
	extractor *extract.Extractor
}

// WithLogger sets the logger (default: no-op)
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records pipeline metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCache shares a cache for robots.txt lookups
func WithCache(store cache.Cache) Option {
	return func(o *options) { o.store = store }
}

// WithProvider uses provider instead of building one from the config
func WithProvider(provider llm.Provider) Option {
	return func(o *options) { o.provider = provider }
}

// WithAnalyzer replaces the per-clause collaborator entirely
func WithAnalyzer(analyzer ClauseAnalyzer) Option {
	return func(o *options) { o.analyzer = analyzer }
}

// WithExtractor replaces the document extractor
func WithExtractor(extractor *extract.Extractor) Option {
	return func(o *options) { o.extractor = extractor }
}

// NewPipeline wires a pipeline from configuration. A provider that cannot be
// built is logged and the pipeline runs keyword-only.
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.store == nil {
		o.store = cache.NewMemoryCache(time.Hour, 10*time.Minute)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
	provider := o.provider
	if provider == nil && o.analyzer == nil && llmConfig.Provider != "" {
		p, err := llm.NewProvider(llmConfig)
		if err != nil {
			o.logger.Warn("model provider unavailable, using keyword scoring only",
				zap.String("provider", llmConfig.Provider),
				zap.Error(err),
			)
		} else {
			provider = p
		}
	}

	analyzer := o.analyzer
	if analyzer == nil && provider != nil {
		analyzer = llm.NewClauseAnalyzer(provider, limiter, llmConfig, o.logger).
			WithObserver(o.metrics.ObserveCollaborator)
	}

	extractor := o.extractor
	if extractor == nil {
		extractor = extract.NewExtractor(extract.NewFetcher(cfg.HTTP, limiter, o.store))
	}

	return &Pipeline{
		extractor:    extractor,
		segmenter:    segment.NewSegmenter(cfg.Segment.MinWords, cfg.Segment.MaxWords),
		orchestrator: NewOrchestrator(analyzer, cfg.Concurrency.ClauseWorkers, o.metrics, o.logger),
		scorer:       score.NewScorer(),
		provider:     provider,
		modelName:    llmConfig.Model,
		metrics:      o.metrics,
		logger:       o.logger,
	}
}

// Provider returns the model provider, nil when analysis is keyword-only
func (p *Pipeline) Provider() llm.Provider {
	return p.provider
}

// AnalyzeSource extracts text from a file path or URL and analyzes it
func (p *Pipeline) AnalyzeSource(ctx context.Context, source string) (*model.Report, error) {
	doc, err := p.extractor.Extract(ctx, source)
	if err != nil {
		p.metrics.IncrementDocument("error")
		return nil, fmt.Errorf("extract: %w", err)
	}
	return p.AnalyzeDocument(ctx, doc)
}

// AnalyzeText analyzes text handed in directly
func (p *Pipeline) AnalyzeText(ctx context.Context, text string, format model.SourceFormat) (*model.Report, error) {
	if format == "" {
		format = model.FormatRaw
	}
	return p.AnalyzeDocument(ctx, model.Document{Source: "-", Format: format, Text: text})
}

// AnalyzeDocument runs segmentation, per-clause analysis and reconciliation.
// It returns ErrExtractionEmpty or ErrSegmentationEmpty for the two terminal
// conditions and ctx.Err() on cancellation, never a partial report.
func (p *Pipeline) AnalyzeDocument(ctx context.Context, doc model.Document) (*model.Report, error) {
	if doc.IsEmpty() {
		p.metrics.IncrementDocument("extraction_empty")
		p.logger.Info("document has no text", zap.String("source", doc.Source))
		return nil, ErrExtractionEmpty
	}

	clauses := p.segmenter.Clauses(doc.Text)
	if len(clauses) == 0 {
		p.metrics.IncrementDocument("segmentation_empty")
		p.logger.Info("document has no clauses", zap.String("source", doc.Source))
		return nil, ErrSegmentationEmpty
	}

	start := time.Now()
	results, err := p.orchestrator.Analyze(ctx, clauses)
	if err != nil {
		p.metrics.IncrementDocument("cancelled")
		return nil, fmt.Errorf("analyze clauses: %w", err)
	}

	for _, res := range results {
		p.metrics.IncrementRisk(res.Risk.String())
	}
	p.metrics.IncrementDocument("ok")

	report := &model.Report{
		ID:           uuid.NewString(),
		Source:       doc.Source,
		Format:       doc.Format,
		AnalyzedAt:   time.Now().UTC(),
		TotalClauses: len(results),
		Clauses:      results,
		Summary:      p.scorer.Summarize(results),
	}
	if p.provider != nil {
		report.Provider = p.provider.Name()
		report.Model = p.modelName
	}

	p.logger.Info("document analyzed",
		zap.String("id", report.ID),
		zap.String("source", doc.Source),
		zap.Int("clauses", report.TotalClauses),
		zap.Int("fallbacks", report.Summary.Fallbacks),
		zap.String("overall", report.Summary.Overall.String()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return report, nil
}
