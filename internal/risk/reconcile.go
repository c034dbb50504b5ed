package risk

import (
	"github.com/ppiankov/clausewise/internal/model"
)

// EscalationNote is appended to the reason of every escalated result
const EscalationNote = " (Keyword-flagged: escalated from LOW)"

// Reconciler merges model-declared risk with keyword evidence
type Reconciler struct {
	classifier *Classifier
}

// NewReconciler creates a reconciler; a nil classifier uses the built-in lexicons
func NewReconciler(classifier *Classifier) *Reconciler {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Reconciler{classifier: classifier}
}

// Merge decides the final label for one result. Only a LOW model verdict
// against HIGH keyword evidence changes anything: the label becomes MEDIUM.
// Keyword evidence never lowers a label.
func (r *Reconciler) Merge(declared, keyword model.Risk) (model.Risk, bool) {
	if declared == model.RiskLow && keyword == model.RiskHigh {
		return model.RiskMedium, true
	}
	return declared, false
}

// Reconcile applies Merge to every result in place and returns how many were escalated.
// The keyword verdict is computed from the original clause text.
func (r *Reconciler) Reconcile(results []model.AnalysisResult) int {
	escalated := 0
	for i := range results {
		res := &results[i]
		final, changed := r.Merge(res.Risk, r.classifier.Classify(res.Original))
		if !changed {
			continue
		}
		res.Risk = final
		res.Reason += EscalationNote
		res.Escalated = true
		escalated++
	}
	return escalated
}
