package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clausewise/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text string
		want model.Risk
		term string
	}{
		{"The Contractor shall INDEMNIFY the Company.", model.RiskHigh, "indemnify"},
		{"Each party shall hold harmless the other.", model.RiskHigh, "hold harmless"},
		{"The license is perpetual and irrevocable.", model.RiskHigh, "irrevocable"},
		{"Employee agrees to a Non-Compete period of two years.", model.RiskHigh, "non-compete"},
		{"Upon termination all fees become due.", model.RiskMedium, "termination"},
		{"This Agreement is subject to the governing law of Delaware.", model.RiskMedium, "governing law"},
		{"Confidential information shall be returned, and any breach is a default.", model.RiskMedium, "breach"},
		{"The parties will meet quarterly to review progress.", model.RiskLow, ""},
		{"", model.RiskLow, ""},
	}

	for _, tt := range tests {
		sig := c.Signal(tt.text)
		assert.Equal(t, tt.want, sig.Risk, tt.text)
		assert.Equal(t, tt.term, sig.Term, tt.text)
		assert.Equal(t, tt.want, c.Classify(tt.text))
	}
}

func TestClassifier_HighBeatsMedium(t *testing.T) {
	c := NewClassifier()
	text := "Upon termination for breach, the Supplier waives all claims."
	assert.Equal(t, model.RiskHigh, c.Classify(text))
}

func TestClassifier_TerminationAtWill(t *testing.T) {
	c := NewClassifier()
	text := "The Company may terminate this Agreement at any time, for any reason or no reason, " +
		"without prior notice and without liability to the Contractor."

	sig := c.Signal(text)
	assert.Equal(t, model.RiskMedium, sig.Risk)
	assert.Equal(t, "terminate", sig.Term)
}

func TestReconciler_MergeAllPairs(t *testing.T) {
	r := NewReconciler(nil)

	for _, declared := range model.Risks {
		for _, keyword := range model.Risks {
			got, changed := r.Merge(declared, keyword)

			if declared == model.RiskLow && keyword == model.RiskHigh {
				assert.Equal(t, model.RiskMedium, got)
				assert.True(t, changed)
				continue
			}
			assert.Equal(t, declared, got, "declared=%s keyword=%s", declared, keyword)
			assert.False(t, changed)
			assert.GreaterOrEqual(t, got.Severity(), declared.Severity(), "label lowered")
		}
	}
}

func TestReconciler_EscalatesIndemnity(t *testing.T) {
	r := NewReconciler(nil)
	results := []model.AnalysisResult{
		{
			Original:   "The Contractor shall indemnify and hold harmless the Company against all claims.",
			Simplified: "You cover the company's losses.",
			Risk:       model.RiskLow,
			Reason:     "Standard clause",
		},
	}

	n := r.Reconcile(results)
	require.Equal(t, 1, n)
	assert.Equal(t, model.RiskMedium, results[0].Risk)
	assert.True(t, results[0].Escalated)
	assert.True(t, strings.HasSuffix(results[0].Reason, EscalationNote))
	assert.True(t, strings.HasPrefix(results[0].Reason, "Standard clause"))
}

func TestReconciler_LeavesOtherResultsAlone(t *testing.T) {
	r := NewReconciler(nil)
	results := []model.AnalysisResult{
		{Original: "Seller shall indemnify Buyer.", Risk: model.RiskMedium, Reason: "a"},
		{Original: "Seller shall indemnify Buyer.", Risk: model.RiskHigh, Reason: "b"},
		{Original: "Upon termination fees are due.", Risk: model.RiskLow, Reason: "c"},
		{Original: "Meetings happen quarterly.", Risk: model.RiskHigh, Reason: "d"},
	}

	n := r.Reconcile(results)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.RiskMedium, results[0].Risk)
	assert.Equal(t, model.RiskHigh, results[1].Risk)
	assert.Equal(t, model.RiskLow, results[2].Risk)
	assert.Equal(t, model.RiskHigh, results[3].Risk)
	for _, res := range results {
		assert.False(t, res.Escalated)
		assert.NotContains(t, res.Reason, EscalationNote)
	}
}
