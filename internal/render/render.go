// Package render expands <$ expr $> markers in template text.
package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mifan-labs/mifan/internal/expr"
)

// Marker delimiters.
const (
	Open  = "<$"
	Close = "$>"
)

// ErrUnclosed is returned for an opening marker with no matching close.
var ErrUnclosed = errors.New("unclosed " + Open + " marker")

// Error locates a render failure inside a file.
type Error struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %d:%d: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HasMarkers reports whether src contains an opening marker.
func HasMarkers(src []byte) bool {
	return bytes.Contains(src, []byte(Open))
}

// Render expands every marker in src against scope. Text without markers is
// returned unchanged. path is used for error messages only.
func Render(path string, src []byte, scope expr.Scope) ([]byte, error) {
	if !HasMarkers(src) {
		return src, nil
	}

	var out bytes.Buffer
	out.Grow(len(src))

	pos := cursor{line: 1, col: 1}
	rest := src
	for {
		i := bytes.Index(rest, []byte(Open))
		if i < 0 {
			out.Write(rest)
			return out.Bytes(), nil
		}
		out.Write(rest[:i])
		pos.advance(rest[:i])
		start := pos

		body := rest[i+len(Open):]
		j := closeIndex(body)
		if j < 0 {
			return nil, &Error{Path: path, Line: start.line, Column: start.col, Err: ErrUnclosed}
		}

		pos.advance([]byte(Open))
		exprPos := pos
		source := string(body[:j])

		v, err := expr.EvalAt(source, scope, expr.Pos{Filename: path, Line: exprPos.line, Column: exprPos.col})
		if err != nil {
			return nil, &Error{Path: path, Line: start.line, Column: start.col, Err: err}
		}
		s, err := expr.String(v)
		if err != nil {
			return nil, &Error{Path: path, Line: start.line, Column: start.col, Err: err}
		}
		out.WriteString(s)

		pos.advance(body[:j+len(Close)])
		rest = body[j+len(Close):]
	}
}

// String renders a single string, as used for prompt defaults and messages.
func String(name, src string, scope expr.Scope) (string, error) {
	out, err := Render(name, []byte(src), scope)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// closeIndex finds the closing marker in body, skipping over quoted string
// literals so that "$>" inside one does not end the expression.
func closeIndex(body []byte) int {
	var quote byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case bytes.HasPrefix(body[i:], []byte(Close)):
			return i
		}
	}
	return -1
}

type cursor struct {
	line, col int
}

func (c *cursor) advance(b []byte) {
	for _, r := range string(b) {
		if r == '\n' {
			c.line++
			c.col = 1
			continue
		}
		c.col++
	}
}
