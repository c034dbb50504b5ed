package recovery

import (
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)

type scanState int

const (
	expectKey scanState = iota
	expectColon
	expectValue
	afterValue
)

// repairer rewrites near-JSON into JSON in a single pass.
// It tracks just enough structure to know whether a token is a key or a value.
type repairer struct {
	src   string
	out   []byte
	stack []byte // '{' or '['
	state scanState
}

// repairJSON applies the syntactic repairs the model output commonly needs:
// single-quoted strings, unquoted keys and bare values, trailing commas,
// missing commas between fields, and unescaped quotes inside values.
// Valid JSON passes through unchanged apart from whitespace-neutral rewrites.
func repairJSON(src string) string {
	r := &repairer{src: src, out: make([]byte, 0, len(src)+16), state: expectValue}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '{' || c == '[':
			r.separate()
			r.stack = append(r.stack, c)
			r.out = append(r.out, c)
			if c == '{' {
				r.state = expectKey
			} else {
				r.state = expectValue
			}
			i++
		case c == '}' || c == ']':
			r.dropTrailingComma()
			if len(r.stack) > 0 {
				r.stack = r.stack[:len(r.stack)-1]
			}
			r.out = append(r.out, c)
			r.state = afterValue
			i++
		case c == ',':
			// A comma with nothing before it ("{," or ",,") is dropped
			if r.state == afterValue {
				r.out = append(r.out, c)
				r.state = r.nextElement()
			}
			i++
		case c == ':':
			r.out = append(r.out, c)
			r.state = expectValue
			i++
		case c == '"' || c == '\'':
			r.separate()
			i = r.readString(i)
		case isSpace(c):
			r.out = append(r.out, c)
			i++
		default:
			i = r.readBare(i)
		}
	}

	return string(r.out)
}

func (r *repairer) inObject() bool {
	return len(r.stack) > 0 && r.stack[len(r.stack)-1] == '{'
}

func (r *repairer) nextElement() scanState {
	if r.inObject() {
		return expectKey
	}
	return expectValue
}

// separate inserts the comma missing between a finished value and the next token
func (r *repairer) separate() {
	if r.state == afterValue && len(r.stack) > 0 {
		r.out = append(r.out, ',')
		r.state = r.nextElement()
	}
}

func (r *repairer) dropTrailingComma() {
	for i := len(r.out) - 1; i >= 0; i-- {
		if isSpace(r.out[i]) {
			continue
		}
		if r.out[i] == ',' {
			r.out = append(r.out[:i], r.out[i+1:]...)
		}
		return
	}
}

// readString copies a quoted string starting at src[start] as a double-quoted
// JSON string and returns the index after its closing quote
func (r *repairer) readString(start int) int {
	quote := r.src[start]
	r.out = append(r.out, '"')

	i := start + 1
	for i < len(r.src) {
		c := r.src[i]
		switch {
		case c == '\\' && i+1 < len(r.src):
			next := r.src[i+1]
			if next == '\'' {
				r.out = append(r.out, '\'')
			} else {
				r.out = append(r.out, c, next)
			}
			i += 2
			continue
		case c == quote:
			if r.closesString(i) {
				r.out = append(r.out, '"')
				r.finishString()
				return i + 1
			}
			if quote == '"' {
				r.out = append(r.out, '\\', '"')
			} else {
				r.out = append(r.out, c)
			}
		case c == '"':
			r.out = append(r.out, '\\', '"')
		case c == '\n':
			r.out = append(r.out, '\\', 'n')
		case c == '\r':
			r.out = append(r.out, '\\', 'r')
		case c == '\t':
			r.out = append(r.out, '\\', 't')
		case c < 0x20:
			// other control characters are not valid inside JSON strings
		default:
			r.out = append(r.out, c)
		}
		i++
	}

	// Unterminated: close it so the parser reports the structural problem instead
	r.out = append(r.out, '"')
	r.finishString()
	return i
}

func (r *repairer) finishString() {
	if r.state == expectKey {
		r.state = expectColon
	} else {
		r.state = afterValue
	}
}

// closesString decides whether the quote at src[i] ends the string. It does
// when the next significant character is structural, or when whitespace
// separates it from something that looks like the next key.
//
// A possessive apostrophe followed by "word:" is indistinguishable from the
// end of a value, so 'the parties' duties: none' closes after "the parties".
// Apostrophes inside words ("party's") or before ordinary prose do not close.
func (r *repairer) closesString(i int) bool {
	k := i + 1
	for k < len(r.src) && isSpace(r.src[k]) {
		k++
	}
	if k == len(r.src) {
		return true
	}
	switch r.src[k] {
	case ',', '}', ']', ':':
		return true
	}
	return k > i+1 && looksLikeKey(r.src[k:])
}

// readBare handles an unquoted token: a key when followed by ':', otherwise a
// literal (true, false, null, number) or a bare string value to be quoted
func (r *repairer) readBare(start int) int {
	if key, end, ok := bareKey(r.src[start:]); ok && (r.state == expectKey || r.state == afterValue) {
		r.separate()
		r.out = append(r.out, '"')
		r.out = append(r.out, key...)
		r.out = append(r.out, '"')
		r.state = expectColon
		return start + end
	}

	end := start
	for end < len(r.src) && !strings.ContainsRune(",}]\n", rune(r.src[end])) {
		end++
	}
	token := strings.TrimSpace(r.src[start:end])
	if r.state == afterValue && len(r.stack) > 0 {
		r.separate()
	}

	switch {
	case token == "true", token == "false", token == "null", numberPattern.MatchString(token):
		r.out = append(r.out, token...)
	default:
		r.out = append(r.out, quoteBare(token)...)
	}
	r.state = afterValue
	return end
}

// bareKey matches an identifier followed by optional spaces and a colon.
// end points at the colon.
func bareKey(s string) (key string, end int, ok bool) {
	i := 0
	for i < len(s) && isIdentByte(s[i], i == 0) {
		i++
	}
	if i == 0 {
		return "", 0, false
	}
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j == len(s) || s[j] != ':' {
		return "", 0, false
	}
	return s[:i], j, true
}

func looksLikeKey(s string) bool {
	if s == "" {
		return false
	}
	if q := s[0]; q == '"' || q == '\'' {
		end := strings.IndexByte(s[1:], q)
		if end < 0 {
			return false
		}
		rest := strings.TrimLeft(s[end+2:], " \t")
		return strings.HasPrefix(rest, ":")
	}
	_, _, ok := bareKey(s)
	return ok
}

func quoteBare(token string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(token); i++ {
		switch c := token[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9', c == '-':
		return !first
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
