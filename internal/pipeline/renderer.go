package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/score"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	out    io.Writer
	colors map[model.Risk]*color.Color
	bold   *color.Color
	dim    *color.Color
}

// NewRenderer creates a renderer printing summaries to out
func NewRenderer(out io.Writer, useColor bool) *Renderer {
	r := &Renderer{
		out: out,
		colors: map[model.Risk]*color.Color{
			model.RiskHigh:   color.New(color.FgRed, color.Bold),
			model.RiskMedium: color.New(color.FgYellow),
			model.RiskLow:    color.New(color.FgGreen),
		},
		bold: color.New(color.Bold),
		dim:  color.New(color.Faint),
	}

	if !useColor {
		for _, c := range r.colors {
			c.DisableColor()
		}
		r.bold.DisableColor()
		r.dim.DisableColor()
	}
	return r
}

// Render writes the requested files and prints the summary
func (r *Renderer) Render(report *model.Report, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
	}

	r.RenderSummary(report)
	return nil
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(Markdown(report)), 0o644)
}

// Markdown renders the report: header, totals, the ranked view of HIGH and
// MEDIUM clauses, then every clause in document order
func Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Clause Analysis Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.AnalyzedAt.Format("2006-01-02 15:04 UTC"))
	if report.Provider != "" {
		fmt.Fprintf(&b, "- **Model:** %s %s\n", report.Provider, report.Model)
	} else {
		b.WriteString("- **Model:** disabled (keyword scoring)\n")
	}
	fmt.Fprintf(&b, "- **Clauses:** %d\n", report.TotalClauses)
	fmt.Fprintf(&b, "- **Overall risk:** %s\n\n", report.Summary.Overall)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Risk | Clauses |\n|------|---------|\n")
	counts := score.Counts(report.Summary)
	for _, level := range model.Risks {
		fmt.Fprintf(&b, "| %s | %d |\n", level, counts[level])
	}
	fmt.Fprintf(&b, "\nKeyword fallbacks: %d · Escalations: %d\n\n", report.Summary.Fallbacks, report.Summary.Escalations)

	var flagged []int
	for _, idx := range report.Summary.Ranked {
		if report.Clauses[idx].Risk.Severity() > model.RiskLow.Severity() {
			flagged = append(flagged, idx)
		}
	}
	if len(flagged) > 0 {
		b.WriteString("## Needs Attention\n\n")
		for _, idx := range flagged {
			res := report.Clauses[idx]
			fmt.Fprintf(&b, "- **%s** clause %d: %s\n", res.Risk, idx+1, res.Simplified)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Clauses\n\n")
	for i, res := range report.Clauses {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, res.Risk)
		fmt.Fprintf(&b, "> %s\n\n", res.Original)
		fmt.Fprintf(&b, "**Plain language:** %s\n\n", res.Simplified)
		fmt.Fprintf(&b, "**Why:** %s\n\n", res.Reason)
	}

	return b.String()
}

// RenderSummary prints a short colored summary
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Fprintln(r.out)
	r.bold.Fprintf(r.out, "Clause analysis: %s\n", report.Source)
	fmt.Fprintf(r.out, "  Clauses: %d  ", report.TotalClauses)
	r.colors[model.RiskHigh].Fprintf(r.out, "HIGH %d  ", report.Summary.High)
	r.colors[model.RiskMedium].Fprintf(r.out, "MEDIUM %d  ", report.Summary.Medium)
	r.colors[model.RiskLow].Fprintf(r.out, "LOW %d\n", report.Summary.Low)

	overall := r.colors[report.Summary.Overall]
	if overall == nil {
		overall = r.bold
	}
	fmt.Fprint(r.out, "  Overall: ")
	overall.Fprintln(r.out, report.Summary.Overall)

	if report.Summary.Fallbacks > 0 {
		r.dim.Fprintf(r.out, "  %d clause(s) scored by keywords only\n", report.Summary.Fallbacks)
	}

	shown := 0
	for _, idx := range report.Summary.Ranked {
		res := report.Clauses[idx]
		if res.Risk != model.RiskHigh || shown == 5 {
			break
		}
		if shown == 0 {
			fmt.Fprintln(r.out, "\n  Top risks:")
		}
		r.colors[model.RiskHigh].Fprintf(r.out, "  [%d] ", idx+1)
		fmt.Fprintln(r.out, truncate(res.Simplified, 100))
		shown++
	}
	fmt.Fprintln(r.out)
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
