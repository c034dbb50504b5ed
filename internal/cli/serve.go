package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/metrics"
	"github.com/ppiankov/clausewise/internal/pipeline"
	"github.com/ppiankov/clausewise/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve starts an HTTP server with:
  POST /analyze   multipart "file" upload or JSON {"text": "..."}
  GET  /health    service and model status
  GET  /metrics   Prometheus metrics

Uploaded files are deleted as soon as the request completes.

Example:
  clausewise serve --addr :8000 --llm-provider ollama --llm-model granite3.3:2b`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")
	addAnalysisFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Output.Verbose, zap.InfoLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p := pipeline.NewPipeline(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics.NewWithRegistry(reg)),
	)

	var pinger server.Pinger
	if provider := p.Provider(); provider != nil {
		pinger = provider
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "✓ Listening on %s (model: %s)\n", cfg.Server.Addr, describeModel(cfg.LLM))

	return server.New(p, pinger, cfg.LLM.Model, cfg.Server, reg, logger).ListenAndServe(ctx)
}
