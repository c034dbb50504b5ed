package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/metrics"
	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/recovery"
	"github.com/ppiankov/clausewise/internal/risk"
	"github.com/ppiankov/clausewise/internal/worker"
)

const (
	fallbackPrefix  = "This clause discusses: "
	placeholderHead = "This clause addresses: "
	excerptRunes    = 100

	// FallbackReason is the reason of every keyword-scored result
	FallbackReason = "Model unavailable - keyword-based risk scoring was used"

	// DefaultReason fills a reason the model left out
	DefaultReason = "Analysis based on clause content"
)

// ClauseAnalyzer is the per-clause model collaborator.
// *llm.ClauseAnalyzer satisfies it.
type ClauseAnalyzer interface {
	AnalyzeClause(ctx context.Context, clause string) (*recovery.Record, error)
}

// Orchestrator turns an ordered clause list into an ordered result list.
// Per-clause failures are absorbed; only cancellation escapes.
type Orchestrator struct {
	analyzer   ClauseAnalyzer // nil: every clause is keyword-scored
	classifier *risk.Classifier
	reconciler *risk.Reconciler
	pool       *worker.Pool
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewOrchestrator creates an orchestrator running up to workers clauses at once
func NewOrchestrator(analyzer ClauseAnalyzer, workers int, m *metrics.Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier := risk.NewClassifier()
	return &Orchestrator{
		analyzer:   analyzer,
		classifier: classifier,
		reconciler: risk.NewReconciler(classifier),
		pool:       worker.NewPool(workers),
		metrics:    m,
		logger:     logger,
	}
}

// Analyze returns results[i] for clauses[i]. The reconcile pass runs once,
// after every slot is filled.
func (o *Orchestrator) Analyze(ctx context.Context, clauses []model.Clause) ([]model.AnalysisResult, error) {
	jobs := make([]worker.Job, len(clauses))
	for i, clause := range clauses {
		jobs[i] = &clauseJob{clause: clause, orchestrator: o}
	}

	done, err := o.pool.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]model.AnalysisResult, len(done))
	for i, r := range done {
		outcome := r.(*clauseOutcome)
		results[i] = outcome.result

		path := metrics.PathModel
		if outcome.result.Fallback {
			path = metrics.PathFallback
		}
		o.metrics.IncrementClause(path)
		if outcome.normalized {
			o.metrics.IncrementFieldNormalization()
		}
	}

	escalated := o.reconciler.Reconcile(results)
	o.metrics.AddEscalations(escalated)
	if escalated > 0 {
		o.logger.Debug("keyword escalations", zap.Int("count", escalated))
	}

	return results, nil
}

// clauseJob analyzes one clause; it writes nothing but its own outcome
type clauseJob struct {
	clause       model.Clause
	orchestrator *Orchestrator
}

func (j *clauseJob) Execute(ctx context.Context) worker.Result {
	return j.orchestrator.analyzeOne(ctx, j.clause)
}

// clauseOutcome carries the absorbed cause of a fallback for logging
type clauseOutcome struct {
	result     model.AnalysisResult
	normalized bool
	cause      error
}

func (c *clauseOutcome) GetError() error {
	return c.cause
}

func (o *Orchestrator) analyzeOne(ctx context.Context, clause model.Clause) *clauseOutcome {
	if o.analyzer == nil {
		return &clauseOutcome{result: o.fallback(clause.Text)}
	}

	record, err := o.analyzer.AnalyzeClause(ctx, clause.Text)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn("clause analysis failed, using keyword scoring",
				zap.Int("clause", clause.Position),
				zap.Error(err),
			)
		}
		return &clauseOutcome{result: o.fallback(clause.Text), cause: err}
	}

	result, normalized := o.coerce(clause.Text, record)
	if normalized {
		o.logger.Warn("unrecognized risk label, using keyword verdict",
			zap.Int("clause", clause.Position),
			zap.String("risk", record.Get(recovery.RiskField)),
		)
	}
	return &clauseOutcome{result: result, normalized: normalized}
}

// fallback builds a keyword-scored result for a clause the model could not handle
func (o *Orchestrator) fallback(clause string) model.AnalysisResult {
	return model.AnalysisResult{
		Original:   clause,
		Simplified: fallbackPrefix + excerpt(clause),
		Risk:       o.classifier.Classify(clause),
		Reason:     FallbackReason,
		Fallback:   true,
	}
}

// coerce maps a recovered record onto the strict result shape. normalized is
// true when the risk label had to come from the keyword classifier.
func (o *Orchestrator) coerce(clause string, record *recovery.Record) (model.AnalysisResult, bool) {
	result := model.AnalysisResult{
		Original:   clause,
		Simplified: record.Get("simplified"),
		Reason:     firstNonBlank(record.Get("reason"), record.Get("explanation"), record.Get("rationale")),
	}

	if strings.TrimSpace(result.Simplified) == "" {
		result.Simplified = placeholderHead + excerpt(clause)
	}
	if result.Reason == "" {
		result.Reason = DefaultReason
	}

	if record.RiskResolved {
		result.Risk = record.Risk
		return result, false
	}
	result.Risk = o.classifier.Classify(clause)
	return result, true
}

// excerpt returns the first excerptRunes runes of text, marking a cut with "..."
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:excerptRunes])) + "..."
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
