package score

import (
	"sort"

	"github.com/ppiankov/clausewise/internal/model"
)

// Scorer builds the document-level summary from reconciled clause results
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Summarize counts labels, fallbacks and escalations, picks the overall risk
// and ranks clause indices from most to least severe. Ties keep position order.
func (s *Scorer) Summarize(results []model.AnalysisResult) model.Summary {
	summary := model.Summary{
		Overall: model.RiskLow,
		Ranked:  make([]int, len(results)),
	}

	for i, res := range results {
		switch res.Risk {
		case model.RiskHigh:
			summary.High++
		case model.RiskMedium:
			summary.Medium++
		case model.RiskLow:
			summary.Low++
		}
		if res.Fallback {
			summary.Fallbacks++
		}
		if res.Escalated {
			summary.Escalations++
		}
		if res.Risk.Severity() > summary.Overall.Severity() {
			summary.Overall = res.Risk
		}
		summary.Ranked[i] = i
	}

	sort.SliceStable(summary.Ranked, func(a, b int) bool {
		return results[summary.Ranked[a]].Risk.Severity() > results[summary.Ranked[b]].Risk.Severity()
	})

	return summary
}

// Counts is a small helper for rendering "H/M/L" style totals
func Counts(summary model.Summary) map[model.Risk]int {
	return map[model.Risk]int{
		model.RiskHigh:   summary.High,
		model.RiskMedium: summary.Medium,
		model.RiskLow:    summary.Low,
	}
}
