package segment

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clausewise/internal/model"
)

func TestNewSegmenter_Defaults(t *testing.T) {
	s := NewSegmenter(0, -1)
	assert.Equal(t, DefaultMinWords, s.minWords)
	assert.Equal(t, DefaultMaxWords, s.maxWords)

	inverted := NewSegmenter(20, 5)
	assert.Equal(t, 20, inverted.maxWords, "max is raised to min when inverted")
}

func TestSegmenter_StrategyOrder(t *testing.T) {
	s := NewSegmenter(10, 150)
	assert.Equal(t, []string{"heading", "boundary"}, s.Strategies())
}

func TestSegmenter_Headings(t *testing.T) {
	text := "Confidentiality\n" +
		"The receiving party shall keep all confidential information strictly secret and shall not disclose it.\n" +
		"Termination\n" +
		"Either party may terminate this agreement upon thirty days written notice to the other party.\n" +
		"Notices\n" +
		"Too short body here."

	got := NewSegmenter(10, 150).Segment(text)
	want := []string{
		"Confidentiality: The receiving party shall keep all confidential information strictly secret and shall not disclose it.",
		"Termination: Either party may terminate this agreement upon thirty days written notice to the other party.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenter_ColonHeading(t *testing.T) {
	text := "Governing Law: This agreement is governed by the laws of the State of New York without regard to conflict rules."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 1)
	assert.Equal(t, "Governing Law: This agreement is governed by the laws of the State of New York without regard to conflict rules.", got[0])
}

func TestSegmenter_HeadingPreambleKept(t *testing.T) {
	text := "this services agreement is entered into by and between the company and the contractor named below.\n" +
		"Payment\n" +
		"The Company shall pay the Contractor the fees set out in the statement of work within thirty days."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "this services agreement"))
	assert.True(t, strings.HasPrefix(got[1], "Payment: The Company shall pay"))
}

func TestSegmenter_NumberedPoints(t *testing.T) {
	text := "1. The Supplier shall deliver the goods described in Schedule A within thirty days of the order.\n" +
		"2. The Buyer shall pay each invoice within fifteen days of receipt without any deduction or set-off.\n" +
		"3. Short clause here."

	got := NewSegmenter(10, 150).Segment(text)
	want := []string{
		"The Supplier shall deliver the goods described in Schedule A within thirty days of the order.",
		"The Buyer shall pay each invoice within fifteen days of receipt without any deduction or set-off.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenter_WrappedNumberedText(t *testing.T) {
	text := "1. The Supplier shall deliver the goods described in the order to the\n" +
		"Buyer at the agreed delivery address within ten days\n" +
		"of the order date.\n" +
		"2. The Buyer shall pay each invoice within fifteen days of receipt without set-off.\n" +
		"3. Either party may end this agreement by giving thirty days written notice to the other."

	got := NewSegmenter(10, 150).Segment(text)
	want := []string{
		"The Supplier shall deliver the goods described in the order to the Buyer at the agreed delivery address within ten days of the order date.",
		"The Buyer shall pay each invoice within fifteen days of receipt without set-off.",
		"Either party may end this agreement by giving thirty days written notice to the other.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenter_TitleAboveNumberedPoints(t *testing.T) {
	text := "MASTER SERVICES AGREEMENT\n" +
		"1. The Supplier shall deliver the goods described in Schedule A within thirty days of the order.\n" +
		"2. The Buyer shall pay each invoice within fifteen days of receipt without any deduction or set-off."

	got := NewSegmenter(10, 150).Segment(text)
	want := []string{
		"The Supplier shall deliver the goods described in Schedule A within thirty days of the order.",
		"The Buyer shall pay each invoice within fifteen days of receipt without any deduction or set-off.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsHeading(t *testing.T) {
	h := NewHeadingStrategy(1)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"start of text", "Payment Terms\nThe Buyer pays monthly.", true},
		{"after sentence", "The term is one year.\nPayment Terms\nThe Buyer pays monthly.", true},
		{"after blank line", "Recitals follow\n\nPayment Terms\nThe Buyer pays monthly.", true},
		{"colon form", "Governing Law: this agreement is governed by English law.", true},
		{"mid-sentence wrap", "goods are delivered to the\nBuyer at the address\nThe rest.", false},
		{"lowercase continuation", "Delivery of the goods\nshall occur within ten days.", false},
		{"list follows", "Payment Terms\n1. The Buyer pays monthly.", false},
		{"too many words", "Either Party May Terminate This Agreement Now\nThe rest.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			for _, m := range h.pattern.FindAllStringSubmatchIndex(tt.text, -1) {
				if isHeading(tt.text, m) {
					found = true
				}
			}
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestSegmenter_MixedMarkers(t *testing.T) {
	text := "the parties agree to the following terms and conditions which govern this lease in full.\n" +
		"(1) the tenant shall pay rent monthly in advance on the first business day of each month.\n" +
		"(a) late payments accrue interest at the rate of one percent per month until paid in full.\n" +
		"B. the landlord shall maintain the structural elements of the building in good repair always.\n" +
		"Section 7 the tenant may not sublet the premises without the prior written consent of the landlord."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 5)
	assert.True(t, strings.HasPrefix(got[1], "the tenant shall pay rent"))
	assert.True(t, strings.HasPrefix(got[2], "late payments accrue"))
	assert.True(t, strings.HasPrefix(got[3], "the landlord shall maintain"))
	assert.True(t, strings.HasPrefix(got[4], "the tenant may not sublet"))
}

func TestSegmenter_SectionMarkerLeavesNoPunctuation(t *testing.T) {
	text := "intro text that is long enough to count as a clause by itself in this test.\n" +
		"Section 4. the licensee shall not reverse engineer decompile or disassemble the licensed software."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 2)
	assert.Equal(t, "the licensee shall not reverse engineer decompile or disassemble the licensed software.", got[1])
}

func TestSegmenter_ParagraphFallback(t *testing.T) {
	text := "the first paragraph has no numbering at all but carries more than ten words of text.\n\n\n" +
		"the second paragraph is also plain prose without any headings and has enough words too."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "the first paragraph"))
	assert.True(t, strings.HasPrefix(got[1], "the second paragraph"))
}

func TestSegmenter_NoBoundariesSingleClause(t *testing.T) {
	text := "the whole document is one run of text\nwrapped across lines without any markers at all."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 1)
	assert.Equal(t, "the whole document is one run of text wrapped across lines without any markers at all.", got[0])
}

func TestSegmenter_LongClauseResplitAtSentences(t *testing.T) {
	text := "one two three four five six. seven eight nine ten eleven. twelve thirteen fourteen."

	got := NewSegmenter(3, 10).Segment(text)
	want := []string{
		"one two three four five six.",
		"seven eight nine ten eleven. twelve thirteen fourteen.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenter_ResplitPiecesAreMinFiltered(t *testing.T) {
	text := "one two three four five. six seven. eight nine ten eleven twelve."

	got := NewSegmenter(4, 6).Segment(text)
	assert.Equal(t, []string{"one two three four five.", "eight nine ten eleven twelve."}, got)
}

// A single sentence longer than max_words has no shorter valid split, so it
// is the one case where a clause may exceed the upper bound.
func TestSegmenter_SingleOverlongSentenceKept(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"

	got := NewSegmenter(2, 5).Segment(text)
	require.Len(t, got, 1)
	assert.Equal(t, 8, model.WordCount(got[0]))
}

func TestSegmenter_Dedupe(t *testing.T) {
	boilerplate := "Confidential boilerplate text that repeats on every page of the document here."
	text := boilerplate + "\n\n" +
		"The Tenant shall maintain the premises in good repair and condition at all times.\n\n" +
		boilerplate

	got := NewSegmenter(10, 150).Segment(text)
	want := []string{
		boilerplate,
		"The Tenant shall maintain the premises in good repair and condition at all times.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenter_BelowMinWords(t *testing.T) {
	s := NewSegmenter(10, 150)

	assert.Empty(t, s.Segment("Too short."))
	assert.Empty(t, s.Segment(""))
	assert.Empty(t, s.Segment(" \n\t\r\n "))
}

func TestSegmenter_NormalizesWhitespace(t *testing.T) {
	text := "1.\tThe   Supplier shall deliver   the goods\r\nwithin thirty days of the written order."

	got := NewSegmenter(10, 150).Segment(text)
	require.Len(t, got, 1)
	assert.Equal(t, "The Supplier shall deliver the goods within thirty days of the written order.", got[0])
}

func TestSegmenter_Clauses(t *testing.T) {
	text := "1. The Supplier shall deliver the goods described in Schedule A within thirty days of the order.\n" +
		"2. The Buyer shall pay each invoice within fifteen days of receipt without any deduction or set-off."

	clauses := NewSegmenter(10, 150).Clauses(text)
	require.Len(t, clauses, 2)
	assert.Equal(t, 0, clauses[0].Position)
	assert.Equal(t, 1, clauses[1].Position)
	assert.Equal(t, 16, clauses[0].WordCount)
}

func TestSegmenter_BoundsAndUniqueness(t *testing.T) {
	var b strings.Builder
	b.WriteString("MASTER SERVICES AGREEMENT\n\n")
	for i := 0; i < 12; i++ {
		b.WriteString("The Contractor shall perform the services with reasonable skill and care. ")
		b.WriteString("Any dispute shall be resolved by binding arbitration in the agreed venue. ")
		b.WriteString("Invoices are payable within thirty days of receipt by the Company. ")
		if i%4 == 3 {
			b.WriteString("\n\n")
		}
	}
	b.WriteString("\n\nSigned.")

	minWords, maxWords := 10, 40
	got := NewSegmenter(minWords, maxWords).Segment(b.String())
	require.NotEmpty(t, got)

	seen := make(map[string]bool)
	for _, clause := range got {
		n := model.WordCount(clause)
		assert.GreaterOrEqual(t, n, minWords, "clause below min: %q", clause)
		assert.LessOrEqual(t, n, maxWords, "clause above max: %q", clause)
		assert.False(t, seen[clause], "duplicate clause: %q", clause)
		seen[clause] = true
	}
}
