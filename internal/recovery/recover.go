// Package recovery turns free-form model output into a validated record.
//
// The model is asked for one JSON object but routinely wraps it in prose,
// code fences or near-JSON (single quotes, bare keys, missing commas). Recover
// applies a fixed sequence of best-effort repairs and either returns a record
// whose required fields are all present and non-empty, or an error wrapping
// ErrRepairFailure. Partial records are never returned.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
	"github.com/ppiankov/clausewise/internal/sanitize"
)

var (
	ErrRepairFailure = errors.New("repair failure")
	ErrNoObject      = fmt.Errorf("%w: no JSON object found", ErrRepairFailure)
	ErrMalformed     = fmt.Errorf("%w: malformed JSON", ErrRepairFailure)
	ErrMissingField  = fmt.Errorf("%w: missing required field", ErrRepairFailure)
)

// RiskField is the field normalized to a model.Risk label
const RiskField = "risk"

var (
	markerPattern = regexp.MustCompile("(?i)(?:here is the json:|json output:|json response:|json:|output:|result:|```json|```)")

	// One level of brace nesting, matched non-greedily from the first '{'
	objectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

	emphasisPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\*\*(.+?)\*\*`),
		regexp.MustCompile(`__(.+?)__`),
		regexp.MustCompile(`\*(.+?)\*`),
		regexp.MustCompile("`(.+?)`"),
	}
)

// Record is a validated field mapping recovered from model output
type Record struct {
	Fields       map[string]string // Every field of the object, sanitized; extra fields are kept
	Risk         model.Risk        // Normalized risk label when RiskResolved
	RiskResolved bool              // False when no allowed label could be recovered from the risk field
}

// Get returns a field value or "" when absent
func (r *Record) Get(name string) string {
	if r == nil {
		return ""
	}
	return r.Fields[name]
}

// Recover extracts, repairs, parses and validates one JSON object from text.
// Every name in required must be present and non-empty both before and after
// sanitizing.
func Recover(text string, required []string) (*Record, error) {
	span, err := locateObject(text)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(repairJSON(span)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		fields[key] = stringify(value)
	}
	if err := checkRequired(fields, required); err != nil {
		return nil, err
	}

	for key, value := range fields {
		fields[key] = Clean(value)
	}
	if err := checkRequired(fields, required); err != nil {
		return nil, fmt.Errorf("after sanitizing: %w", err)
	}

	record := &Record{Fields: fields}
	if risk, ok := NormalizeRisk(fields[RiskField]); ok {
		record.Risk = risk
		record.RiskResolved = true
		fields[RiskField] = risk.String()
	}

	return record, nil
}

// Clean sanitizes markup, strips inline emphasis and collapses whitespace
func Clean(value string) string {
	value = sanitize.Clean(value)
	for _, pattern := range emphasisPatterns {
		value = pattern.ReplaceAllString(value, "$1")
	}
	return sanitize.CollapseWhitespace(value)
}

// NormalizeRisk maps a free-text risk value to a label. An exact
// case-insensitive match wins; otherwise the first of HIGH, MEDIUM, LOW found
// as a substring is used.
func NormalizeRisk(value string) (model.Risk, bool) {
	if risk, ok := model.ParseRisk(value); ok {
		return risk, true
	}

	upper := strings.ToUpper(value)
	for _, risk := range model.Risks {
		if strings.Contains(upper, string(risk)) {
			return risk, true
		}
	}
	return "", false
}

// locateObject strips preamble markers and fences and returns the first
// object-shaped span
func locateObject(text string) (string, error) {
	text = stripMarkers(text)
	text = strings.ReplaceAll(text, "```", "")
	text = strings.Trim(strings.TrimSpace(text), "`")

	span := objectPattern.FindString(text)
	if span == "" {
		return "", ErrNoObject
	}
	return span, nil
}

// stripMarkers drops everything up to and including the last marker that
// still has an opening brace after it. A closing fence after the object
// therefore does not discard the object itself.
func stripMarkers(text string) string {
	matches := markerPattern.FindAllStringIndex(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		rest := text[matches[i][1]:]
		if strings.Contains(rest, "{") {
			return rest
		}
	}
	return text
}

func checkRequired(fields map[string]string, required []string) error {
	for _, name := range required {
		value, ok := fields[name]
		if !ok || strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %q", ErrMissingField, name)
		}
	}
	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
