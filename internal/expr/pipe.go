package expr

import (
	"regexp"
	"strings"
)

var pipeCall = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\((.*)\))?$`)

// pipes rewrites top-level filter chains into nested calls:
// `name | replace("-", "_") | upper` becomes `upper(replace(name, "-", "_"))`.
// Source without a top-level single bar is returned unchanged.
func pipes(src string) string {
	parts := splitPipes(src)
	if len(parts) == 1 {
		return src
	}
	out := strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		m := pipeCall.FindStringSubmatch(part)
		if m == nil || !balanced(m[2]) {
			// Leave it for the parser to report.
			return src
		}
		if args := strings.TrimSpace(m[2]); args != "" {
			out = m[1] + "(" + out + ", " + args + ")"
		} else {
			out = m[1] + "(" + out + ")"
		}
	}
	return out
}

// splitPipes splits src at each `|` that is outside string literals and
// brackets and is not half of `||`.
func splitPipes(src string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '"':
			i = scanString(src, i, '"') - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '|':
			if i+1 < len(src) && src[i+1] == '|' {
				i++
				continue
			}
			if depth == 0 {
				parts = append(parts, src[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, src[start:])
}

func balanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			i = scanString(s, i, '"') - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
