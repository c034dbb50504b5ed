package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url>",
	Short: "Analyze one document and report clause risks",
	Long: `Analyze reads a document and:
- Extracts its text (.txt, .md, .html, .pdf, .docx or an http(s) URL)
- Splits it into clauses by headings, numbering or paragraphs
- Restates each clause in plain language with a HIGH/MEDIUM/LOW label
- Escalates LOW labels that contain high-risk keywords to MEDIUM
- Prints a summary and optionally writes JSON and Markdown reports

Example:
  clausewise analyze contract.pdf
  clausewise analyze nda.docx --json nda.json --md nda.md
  clausewise analyze https://example.com/terms --llm-provider ollama --llm-model granite3.3:2b`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 10*time.Minute, "overall analysis timeout")
	addAnalysisFlags(analyzeCmd)
}

// addAnalysisFlags registers the flags shared by analyze and batch
func addAnalysisFlags(cmd *cobra.Command) {
	defaults := model.DefaultConfig()

	cmd.Flags().Int("min-words", defaults.Segment.MinWords, "minimum words per clause")
	cmd.Flags().Int("max-words", defaults.Segment.MaxWords, "maximum words per clause before sentence re-splitting")
	cmd.Flags().Int("workers", defaults.Concurrency.ClauseWorkers, "clauses analyzed concurrently per document")
	cmd.Flags().String("llm-provider", "", "model provider (openai, anthropic, gemini, ollama); empty = keyword scoring only")
	cmd.Flags().String("llm-model", "", "model name (provider default if empty)")
	cmd.Flags().Int("llm-timeout", defaults.LLM.Timeout, "per-call model timeout in seconds, 0 = none")
	cmd.Flags().Float64("rps", defaults.RateLimiting.RequestsPerSecond, "max model calls per second, 0 = unlimited")
	cmd.Flags().String("ua", defaults.HTTP.UserAgent, "HTTP User-Agent for URL sources")
	cmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	cmd.Flags().Bool("no-color", false, "disable colored output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Output.Verbose, zap.WarnLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Model: %s\n", describeModel(cfg.LLM))
		fmt.Fprintf(os.Stderr, "Clause words: %d-%d, workers: %d\n\n", cfg.Segment.MinWords, cfg.Segment.MaxWords, cfg.Concurrency.ClauseWorkers)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithLogger(logger))

	report, err := p.AnalyzeSource(ctx, source)
	if err != nil {
		if reason := pipeline.FailureReason(err); reason != "" {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", reason, err)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Analyzed %d clauses\n", report.TotalClauses)
		if report.Summary.Escalations > 0 {
			fmt.Fprintf(os.Stderr, "✓ %d keyword escalation(s)\n", report.Summary.Escalations)
		}
	}

	renderer := pipeline.NewRenderer(cmd.OutOrStdout(), cfg.Output.Color)
	if err := renderer.Render(report, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

func describeModel(cfg model.LLMConfig) string {
	if cfg.Provider == "" {
		return "disabled (keyword scoring)"
	}
	if cfg.Model == "" {
		return cfg.Provider + " (default model)"
	}
	return cfg.Provider + "/" + cfg.Model
}

// ExitCode maps terminal conditions to distinct exit codes for scripting
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrExtractionEmpty), errors.Is(err, pipeline.ErrSegmentationEmpty):
		return 2
	default:
		return 1
	}
}
