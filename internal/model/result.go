package model

import "strings"

// Risk is the severity label of a clause
type Risk string

const (
	RiskHigh   Risk = "HIGH"
	RiskMedium Risk = "MEDIUM"
	RiskLow    Risk = "LOW"
)

// Risks lists the allowed labels, most severe first
var Risks = []Risk{RiskHigh, RiskMedium, RiskLow}

// ParseRisk normalizes a label; ok is false for anything outside HIGH/MEDIUM/LOW
func ParseRisk(raw string) (Risk, bool) {
	switch r := Risk(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RiskHigh, RiskMedium, RiskLow:
		return r, true
	default:
		return "", false
	}
}

// Severity orders labels: HIGH=3, MEDIUM=2, LOW=1, unknown=0
func (r Risk) Severity() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

func (r Risk) String() string {
	return string(r)
}

// AnalysisResult is the validated outcome for one clause.
// Ordering matches the clause list 1:1.
type AnalysisResult struct {
	Original   string `json:"original"`   // Verbatim clause text
	Simplified string `json:"simplified"` // Plain-language rendering, never empty
	Risk       Risk   `json:"risk"`       // Final reconciled label
	Reason     string `json:"reason"`     // Evidence for the label, never empty

	Fallback  bool `json:"-"` // Built from keyword scoring because the model output was unusable
	Escalated bool `json:"-"` // Raised LOW -> MEDIUM by keyword evidence
}
