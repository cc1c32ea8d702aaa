package perception

import (
	"strings"
)

// ExtractJSON pulls the first JSON object out of raw model output.
// LLMs wrap JSON in markdown fences and chatter, leave raw newlines inside
// string literals, and occasionally truncate the object mid-string. All of
// that is repaired here:
//
//   - fenced code blocks are unwrapped first,
//   - braces are matched with a string-aware scan (braces inside string
//     literals do not count),
//   - raw newlines/tabs inside string literals become \n, \r, \t escapes,
//   - a truncated object gets its missing close-quote and close-braces
//     appended.
//
// Returns "" when the response contains no object at all.
func ExtractJSON(response string) string {
	s := response
	if inner := fencedBlock(s); inner != "" {
		s = inner
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	var sb strings.Builder
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
				sb.WriteByte(c)
			case c == '\\':
				escaped = true
				sb.WriteByte(c)
			case c == '"':
				inString = false
				sb.WriteByte(c)
			case c == '\n':
				sb.WriteString(`\n`)
			case c == '\r':
				sb.WriteString(`\r`)
			case c == '\t':
				sb.WriteString(`\t`)
			default:
				sb.WriteByte(c)
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			sb.WriteByte(c)
		case '{':
			depth++
			sb.WriteByte(c)
		case '}':
			depth--
			sb.WriteByte(c)
			if depth == 0 {
				return sb.String()
			}
		default:
			sb.WriteByte(c)
		}
	}

	// Truncated object: close what the model left open.
	out := sb.String()
	if escaped {
		out = strings.TrimSuffix(out, `\`)
	}
	if inString {
		out += `"`
	}
	out += strings.Repeat("}", depth)
	return out
}

// fencedBlock returns the contents of the first markdown code fence that
// contains an object, or "".
func fencedBlock(s string) string {
	rest := s
	for {
		open := strings.Index(rest, "```")
		if open == -1 {
			return ""
		}
		body := rest[open+3:]
		// Skip the language tag on the fence line, if any.
		if nl := strings.IndexByte(body, '\n'); nl != -1 {
			body = body[nl+1:]
		}
		close := strings.Index(body, "```")
		if close == -1 {
			// Unterminated fence: treat the remainder as the block.
			if strings.Contains(body, "{") {
				return body
			}
			return ""
		}
		if block := body[:close]; strings.Contains(block, "{") {
			return block
		}
		rest = body[close+3:]
	}
}
