package expr

import "strings"

// normalize rewrites JavaScript operator and quote spellings into HCL and
// expands `value | filter` chains into function calls.
// String literals of either quote style are plain text: HCL template
// sequences inside them are escaped.
func normalize(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"':
			end := scanString(src, i, '"')
			b.WriteString(escapeTemplates(src[i:end]))
			i = end - 1
		case c == '\'':
			end := scanString(src, i, '\'')
			closed := end-1 > i && src[end-1] == '\''
			body := src[i+1 : end]
			if closed {
				body = src[i+1 : end-1]
			}
			b.WriteString(requote(body, closed))
			i = end - 1
		case strings.HasPrefix(src[i:], "==="):
			b.WriteString("==")
			i += 2
		case strings.HasPrefix(src[i:], "!=="):
			b.WriteString("!=")
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return pipes(b.String())
}

// scanString returns the index just past the literal opened at src[start].
// An unterminated literal runs to the end of src.
func scanString(src string, start int, quote byte) int {
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(src)
}

// escapeTemplates doubles the HCL template introducers in a double-quoted
// literal so that it reads as plain text, the same as a single-quoted one.
func escapeTemplates(lit string) string {
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		switch {
		case c == '\\' && i+1 < len(lit):
			b.WriteByte(c)
			b.WriteByte(lit[i+1])
			i++
		case (c == '$' || c == '%') && i+1 < len(lit) && lit[i+1] == '{':
			b.WriteByte(c)
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// requote turns the body of a single-quoted literal into a double-quoted one.
func requote(body string, closed bool) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '"':
			b.WriteString(`\"`)
		case (c == '$' || c == '%') && i+1 < len(body) && body[i+1] == '{':
			b.WriteByte(c)
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	if closed {
		b.WriteByte('"')
	}
	return b.String()
}
