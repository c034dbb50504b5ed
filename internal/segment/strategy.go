package segment

import (
	"regexp"
	"strings"
)

// Strategy proposes candidate segments for normalized text.
// ok=false means the strategy does not apply and the next one is tried.
type Strategy interface {
	Name() string
	Split(text string) (parts []string, ok bool)
}

// maxHeadingWords caps heading length; longer letter-only lines are wrapped prose
const maxHeadingWords = 6

// enumerationStart matches a line that opens with a list marker
var enumerationStart = regexp.MustCompile(`^(?:\d+\.|\(\w{1,3}\)|[A-Z]\.\s|(?:Article|Section|Clause)\s+\d)`)

// HeadingStrategy pairs heading-like lines with the body that follows them.
// A heading is a capitalized run of letters and spaces, 4-60 characters,
// at the start of a line and immediately followed by a line break or colon.
//
// The line must also stand apart from the prose around it: it opens the
// text or follows a blank line or a line ending in terminal punctuation,
// and a line-break heading must not be followed by a lowercase continuation
// or a list marker. Hard-wrapped sentences and document titles above a
// numbered list therefore fall through to the boundary strategy.
type HeadingStrategy struct {
	minWords int
	pattern  *regexp.Regexp
}

// NewHeadingStrategy creates a heading strategy; bodies shorter than
// minWords are dropped together with their title
func NewHeadingStrategy(minWords int) *HeadingStrategy {
	return &HeadingStrategy{
		minWords: minWords,
		pattern:  regexp.MustCompile(`(?m)^([A-Z][A-Za-z ]{3,59})(\n|:)`),
	}
}

// Name returns the strategy name
func (h *HeadingStrategy) Name() string {
	return "heading"
}

// Split returns "<title>: <body>" segments in order of appearance.
// Text before the first heading is kept as an untitled segment.
func (h *HeadingStrategy) Split(text string) ([]string, bool) {
	var matches [][]int
	for _, m := range h.pattern.FindAllStringSubmatchIndex(text, -1) {
		if isHeading(text, m) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}

	var parts []string
	if preamble := strings.TrimSpace(text[:matches[0][0]]); preamble != "" {
		parts = append(parts, preamble)
	}

	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.Join(strings.Fields(text[m[1]:end]), " ")

		if len(strings.Fields(body)) < h.minWords {
			continue
		}
		parts = append(parts, title+": "+body)
	}

	return parts, true
}

// isHeading checks the lines around a pattern match.
// m holds the whole match, the title group and the terminator group.
func isHeading(text string, m []int) bool {
	title := text[m[2]:m[3]]
	if len(strings.Fields(title)) > maxHeadingWords {
		return false
	}

	if before := text[:m[0]]; before != "" && !strings.HasSuffix(before, "\n\n") {
		prev := strings.TrimRight(before, "\n")
		if prev != "" && !strings.ContainsAny(prev[len(prev)-1:], ".!?:;") {
			return false
		}
	}

	if text[m[4]:m[5]] == ":" {
		return true
	}

	next := strings.TrimLeft(text[m[1]:], "\n")
	if next == "" {
		return true
	}
	if c := next[0]; c >= 'a' && c <= 'z' {
		return false
	}
	return !enumerationStart.MatchString(next)
}

// BoundaryStrategy splits on enumeration markers and paragraph breaks.
// All markers form one alternation, so the leftmost marker in the text wins.
// It always applies; text without markers comes back as a single part.
type BoundaryStrategy struct {
	pattern *regexp.Regexp
}

// NewBoundaryStrategy creates the boundary strategy
func NewBoundaryStrategy() *BoundaryStrategy {
	markers := []string{
		`(?:^|\n)[ \t]*\d+\.\s+`,                         // 1.
		`(?:^|\n)[ \t]*\(\d+\)\s+`,                       // (1)
		`(?:^|\n)[ \t]*[A-Z]\.\s+`,                       // A.
		`(?:^|\n)[ \t]*\([a-z]\)\s+`,                     // (a)
		`(?:^|\n)[ \t]*(?:Article|Section|Clause)\s+\d+`, // Section 4
		`\n\n+`,                                          // blank line
	}

	return &BoundaryStrategy{
		pattern: regexp.MustCompile(strings.Join(markers, "|")),
	}
}

// Name returns the strategy name
func (b *BoundaryStrategy) Name() string {
	return "boundary"
}

// Split cuts text at every boundary marker; markers themselves are dropped
func (b *BoundaryStrategy) Split(text string) ([]string, bool) {
	var parts []string
	for _, part := range b.pattern.Split(text, -1) {
		// "Section 4. Payment" leaves ". Payment" behind
		part = strings.TrimLeft(strings.TrimSpace(part), ".:;,)-–— ")
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts, true
}
