package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/recovery"
)

// RequiredFields must be present and non-empty in every recovered clause record
var RequiredFields = []string{"simplified", "risk", "reason"}

// Waiter throttles calls per key; *worker.Limiter satisfies it
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// ClauseAnalyzer asks a provider about one clause and recovers a record from
// whatever text comes back
type ClauseAnalyzer struct {
	provider Provider
	limiter  Waiter
	config   Config
	logger   *zap.Logger

	// observe receives the duration of every provider call, nil to skip
	observe func(provider string, d time.Duration, err error)
}

// NewClauseAnalyzer creates a clause analyzer. limiter may be nil.
func NewClauseAnalyzer(provider Provider, limiter Waiter, config Config, logger *zap.Logger) *ClauseAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClauseAnalyzer{
		provider: provider,
		limiter:  limiter,
		config:   config,
		logger:   logger,
	}
}

// WithObserver registers a latency callback for provider calls
func (a *ClauseAnalyzer) WithObserver(observe func(provider string, d time.Duration, err error)) *ClauseAnalyzer {
	a.observe = observe
	return a
}

// Provider returns the wrapped provider
func (a *ClauseAnalyzer) Provider() Provider {
	return a.provider
}

// AnalyzeClause returns a record with original, simplified, risk and reason.
// Provider failures wrap ErrCollaboratorFailure; unusable output wraps
// recovery.ErrRepairFailure.
func (a *ClauseAnalyzer) AnalyzeClause(ctx context.Context, clause string) (*recovery.Record, error) {
	name := a.provider.Name()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, name); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:      SystemPrompt,
		Prompt:      BuildClausePrompt(clause),
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if a.observe != nil {
		a.observe(name, time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaboratorFailure, err)
	}

	a.logger.Debug("model response",
		zap.String("provider", name),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
	)

	record, err := recovery.Recover(resp.Text, RequiredFields)
	if err != nil {
		return nil, fmt.Errorf("recover %s output: %w", name, err)
	}

	record.Fields["original"] = clause
	return record, nil
}
