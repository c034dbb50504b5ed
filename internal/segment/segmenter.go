package segment

import (
	"regexp"
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
)

const (
	DefaultMinWords = 10
	DefaultMaxWords = 150
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
	sentenceEnd     = regexp.MustCompile(`[.!?]\s+`)
)

// Segmenter splits document text into clause-sized units.
// Strategies are tried in order; the first one that applies wins.
type Segmenter struct {
	minWords   int
	maxWords   int
	strategies []Strategy
}

// NewSegmenter creates a segmenter with the default strategy order:
// headings first, then numbered/lettered boundaries and paragraph breaks.
// Non-positive bounds fall back to the defaults.
func NewSegmenter(minWords, maxWords int) *Segmenter {
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if maxWords < minWords {
		maxWords = minWords
	}

	return &Segmenter{
		minWords: minWords,
		maxWords: maxWords,
		strategies: []Strategy{
			NewHeadingStrategy(minWords),
			NewBoundaryStrategy(),
		},
	}
}

// Strategies returns the strategy names in evaluation order
func (s *Segmenter) Strategies() []string {
	names := make([]string, len(s.strategies))
	for i, strategy := range s.strategies {
		names[i] = strategy.Name()
	}
	return names
}

// Segment returns the ordered, deduplicated clause texts.
// An empty result means no clause survived filtering.
func (s *Segmenter) Segment(text string) []string {
	text = normalize(text)
	if text == "" {
		return nil
	}

	var candidates []string
	for _, strategy := range s.strategies {
		if parts, ok := strategy.Split(text); ok {
			candidates = parts
			break
		}
	}

	var clauses []string
	for _, candidate := range candidates {
		clauses = append(clauses, s.bound(candidate)...)
	}

	return dedupe(clauses)
}

// Clauses is Segment wrapped into positioned model clauses
func (s *Segmenter) Clauses(text string) []model.Clause {
	return model.NewClauses(s.Segment(text))
}

// bound applies the word-count window to one candidate segment
func (s *Segmenter) bound(candidate string) []string {
	candidate = strings.Join(strings.Fields(candidate), " ")
	words := model.WordCount(candidate)

	if words < s.minWords {
		return nil
	}
	if words <= s.maxWords {
		return []string{candidate}
	}

	var out []string
	for _, part := range s.splitSentences(candidate) {
		if model.WordCount(part) >= s.minWords {
			out = append(out, part)
		}
	}
	return out
}

// splitSentences greedily packs sentences into chunks of at most maxWords.
// A single sentence longer than maxWords is emitted whole.
func (s *Segmenter) splitSentences(text string) []string {
	var (
		chunks  []string
		current []string
		count   int
	)

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			count = 0
		}
	}

	for _, sentence := range sentences(text) {
		n := model.WordCount(sentence)
		if count > 0 && count+n > s.maxWords {
			flush()
		}
		current = append(current, sentence)
		count += n
	}
	flush()

	return chunks
}

// sentences cuts text after every ., ! or ? that is followed by whitespace
func sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if part := strings.TrimSpace(text[start : loc[0]+1]); part != "" {
			out = append(out, part)
		}
		start = loc[1]
	}
	if part := strings.TrimSpace(text[start:]); part != "" {
		out = append(out, part)
	}
	return out
}

// normalize collapses horizontal whitespace and blank-line runs but keeps
// line structure, which the heading and boundary strategies depend on
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func dedupe(clauses []string) []string {
	seen := make(map[string]bool, len(clauses))
	var unique []string

	for _, clause := range clauses {
		if !seen[clause] {
			seen[clause] = true
			unique = append(unique, clause)
		}
	}

	return unique
}
