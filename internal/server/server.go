// Package server exposes document analysis over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/cache"
	"github.com/ppiankov/clausewise/internal/model"
)

// Analyzer runs the document pipeline; *pipeline.Pipeline satisfies it
type Analyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.Report, error)
	AnalyzeText(ctx context.Context, text string, format model.SourceFormat) (*model.Report, error)
}

// Pinger reports whether the model backend is reachable; llm.Provider satisfies it
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// Server is the HTTP surface: POST /analyze, GET /health, GET /metrics
type Server struct {
	analyzer  Analyzer
	pinger    Pinger // nil when the model is disabled
	modelName string
	cfg       model.ServerConfig
	health    cache.Cache
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
}

// New creates a server. gatherer may be nil to use the default registry.
func New(analyzer Analyzer, pinger Pinger, modelName string, cfg model.ServerConfig, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	ttl := cfg.HealthCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Server{
		analyzer:  analyzer,
		pinger:    pinger,
		modelName: modelName,
		cfg:       cfg,
		health:    cache.NewMemoryCache(ttl, 2*ttl),
		gatherer:  gatherer,
		logger:    logger,
	}
}

// Router returns the HTTP handler with all routes and middleware mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/analyze", s.handleAnalyze)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
