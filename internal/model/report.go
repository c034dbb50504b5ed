package model

import "time"

// Report is the success payload of one document analysis
type Report struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	Format     SourceFormat `json:"format"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
	Provider   string       `json:"provider,omitempty"` // Empty when the model is disabled
	Model      string       `json:"model,omitempty"`

	TotalClauses int              `json:"total_clauses"`
	Clauses      []AnalysisResult `json:"clauses"`

	Summary Summary `json:"summary"`
}

// Summary is a risk-ranked view over the clause list.
// It never reorders Clauses; Ranked holds indices into it.
type Summary struct {
	High        int   `json:"high"`
	Medium      int   `json:"medium"`
	Low         int   `json:"low"`
	Fallbacks   int   `json:"fallbacks"`   // Clauses scored by keywords only
	Escalations int   `json:"escalations"` // LOW -> MEDIUM keyword escalations
	Overall     Risk  `json:"overall"`     // Most severe label present
	Ranked      []int `json:"ranked"`      // Clause indices, HIGH first, stable by position
}
