package llm

import "strings"

// spanKind selects the delimiter pair FirstJSONSpan scans for.
type spanKind int

const (
	objectSpan spanKind = iota // {...}
	arraySpan                  // [...]
)

// FirstJSONSpan extracts the first balanced brace- or bracket-delimited span
// from a completion reply. Completion services routinely wrap the requested
// JSON in prose ("Here is the extracted data: {...} Let me know..."); this is
// the bounded adapter that recovers the payload. String literals and escapes
// are honored so braces inside values do not unbalance the scan.
func FirstJSONSpan(reply string, kind spanKind) (string, bool) {
	opener, closer := byte('{'), byte('}')
	if kind == arraySpan {
		opener, closer = '[', ']'
	}

	start := strings.IndexByte(reply, opener)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(reply); i++ {
		c := reply[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// delimiters inside string literals are data
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return reply[start : i+1], true
			}
		}
	}
	return "", false
}
