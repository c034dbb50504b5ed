// Package risk holds the deterministic keyword classifier and the merge rule
// that reconciles it with the model's declared risk.
package risk

import (
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
)

var (
	highRiskTerms = []string{
		"indemnify",
		"indemnification",
		"hold harmless",
		"unlimited liability",
		"sole discretion",
		"unilateral",
		"irrevocable",
		"perpetual",
		"exclusive rights",
		"waive",
		"waiver",
		"non-compete",
		"non-solicitation",
	}

	mediumRiskTerms = []string{
		"termination",
		"terminate",
		"breach",
		"default",
		"remedy",
		"arbitration",
		"jurisdiction",
		"governing law",
		"confidential",
		"proprietary",
		"intellectual property",
	}
)

// Signal is the keyword verdict for one clause
type Signal struct {
	Risk model.Risk
	Term string // Matched lexicon term, empty for LOW
}

// Classifier scores text against ordered lexicons; the first match wins.
// The zero value is not usable, use NewClassifier.
type Classifier struct {
	high   []string
	medium []string
}

// NewClassifier returns a classifier over the built-in lexicons
func NewClassifier() *Classifier {
	return &Classifier{
		high:   highRiskTerms,
		medium: mediumRiskTerms,
	}
}

// Classify returns HIGH if any high-risk term occurs, else MEDIUM if any
// medium-risk term occurs, else LOW
func (c *Classifier) Classify(text string) model.Risk {
	return c.Signal(text).Risk
}

// Signal is Classify plus the term that decided it
func (c *Classifier) Signal(text string) Signal {
	lower := strings.ToLower(text)

	for _, term := range c.high {
		if strings.Contains(lower, term) {
			return Signal{Risk: model.RiskHigh, Term: term}
		}
	}
	for _, term := range c.medium {
		if strings.Contains(lower, term) {
			return Signal{Risk: model.RiskMedium, Term: term}
		}
	}
	return Signal{Risk: model.RiskLow}
}
