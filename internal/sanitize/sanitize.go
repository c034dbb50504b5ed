// Package sanitize strips markup from text produced by a generative model.
//
// Output never contains angle-bracket tags or HTML-style entities. A tag
// opens with "<" directly followed by a letter, "/" or "!", so comparison
// operators such as "fee < 5 and term > 3" are prose, not markup. A fixed
// table of common named entities is decoded; everything else that looks like
// an entity is deleted. Clean is idempotent.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	tagPattern    = regexp.MustCompile(`</?[A-Za-z!][^<>]*>`)
	entityPattern = regexp.MustCompile(`&#?\w+;`)

	// Only entities likely to show up in contract prose are decoded
	entities = map[string]string{
		"&amp;":    "&",
		"&lt;":     "<",
		"&gt;":     ">",
		"&quot;":   `"`,
		"&#39;":    "'",
		"&apos;":   "'",
		"&nbsp;":   " ",
		"&cent;":   "¢",
		"&pound;":  "£",
		"&yen;":    "¥",
		"&euro;":   "€",
		"&copy;":   "©",
		"&reg;":    "®",
		"&trade;":  "™",
		"&times;":  "×",
		"&divide;": "÷",
		"&mdash;":  "—",
		"&ndash;":  "–",
		"&hellip;": "...",
		"&laquo;":  "«",
		"&raquo;":  "»",
		"&bull;":   "•",
		"&sect;":   "§",
		"&para;":   "¶",
		"&lsquo;":  "‘",
		"&rsquo;":  "’",
		"&ldquo;":  "“",
		"&rdquo;":  "”",
	}
)

// Clean removes tags and entities, collapses whitespace and trims
func Clean(text string) string {
	// Decoding can expose new markup ("&lt;b&gt;" -> "<b>"), so repeat until
	// nothing changes. Every rewrite shortens the string, so this terminates.
	for {
		next := stripOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return CollapseWhitespace(text)
}

// CollapseWhitespace replaces every whitespace run with a single space and trims
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func stripOnce(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	return entityPattern.ReplaceAllStringFunc(text, func(entity string) string {
		if decoded, ok := entities[entity]; ok {
			return decoded
		}
		return ""
	})
}
