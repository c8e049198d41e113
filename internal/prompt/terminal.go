package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Terminal asks questions over a line-oriented reader and writer.
type Terminal struct {
	reader *bufio.Reader
	w      io.Writer
	fd     int
}

// NewTerminal creates a prompter reading answers from r. When r is an
// interactive terminal, password answers are read without echo.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	t := &Terminal{reader: bufio.NewReader(r), w: w, fd: -1}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
	}
	return t
}

// Ask implements Prompter.
func (t *Terminal) Ask(ctx context.Context, q Question) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch q.Type {
	case TypeConfirm:
		return t.confirm(q)
	case TypeNumber:
		return t.number(q)
	case TypeList, TypeRawList:
		return t.selectOne(q)
	case TypeCheckbox:
		return t.selectMany(q)
	case TypePassword:
		return t.password(q)
	default:
		line, err := t.ask(q, defaultHint(q.Default))
		if err != nil || line != "" {
			return line, err
		}
		if q.Default == nil {
			return "", nil
		}
		return fmt.Sprint(q.Default), nil
	}
}

func (t *Terminal) ask(q Question, hint string) (string, error) {
	if hint != "" {
		fmt.Fprintf(t.w, "? %s (%s) ", q.Label(), hint)
	} else {
		fmt.Fprintf(t.w, "? %s ", q.Label())
	}
	return t.readLine(q.Name)
}

func (t *Terminal) readLine(name string) (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading answer for %s: %w", name, err)
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) confirm(q Question) (any, error) {
	def, _ := q.Default.(bool)
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	line, err := t.ask(q, hint)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return nil, invalid("answer y or n")
}

func (t *Terminal) number(q Question) (any, error) {
	line, err := t.ask(q, defaultHint(q.Default))
	if err != nil {
		return nil, err
	}
	if line == "" {
		return q.Default, nil
	}
	n, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil, invalid("%q is not a number", line)
	}
	return n, nil
}

func (t *Terminal) password(q Question) (any, error) {
	if t.fd < 0 {
		line, err := t.ask(q, "")
		if err != nil {
			return nil, err
		}
		return line, nil
	}
	fmt.Fprintf(t.w, "? %s ", q.Label())
	b, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.w)
	if err != nil {
		return nil, fmt.Errorf("reading answer for %s: %w", q.Name, err)
	}
	return string(b), nil
}

func (t *Terminal) listChoices(q Question) {
	fmt.Fprintf(t.w, "? %s\n", q.Label())
	for i, c := range q.Choices {
		fmt.Fprintf(t.w, "  %d) %s\n", i+1, c.Name)
	}
}

func (t *Terminal) selectOne(q Question) (any, error) {
	if len(q.Choices) == 0 {
		return nil, fmt.Errorf("question %s has no choices", q.Name)
	}
	t.listChoices(q)
	def := choiceIndex(q.Choices, q.Default)
	if def >= 0 {
		fmt.Fprintf(t.w, "Enter number [1-%d] (%d): ", len(q.Choices), def+1)
	} else {
		fmt.Fprintf(t.w, "Enter number [1-%d]: ", len(q.Choices))
	}

	line, err := t.readLine(q.Name)
	if err != nil {
		return nil, err
	}
	if line == "" && def >= 0 {
		return q.Choices[def].Value, nil
	}
	num, err := strconv.Atoi(line)
	if err != nil || num < 1 || num > len(q.Choices) {
		return nil, invalid("invalid selection %q: choose 1-%d", line, len(q.Choices))
	}
	return q.Choices[num-1].Value, nil
}

func (t *Terminal) selectMany(q Question) (any, error) {
	if len(q.Choices) == 0 {
		return []any{}, nil
	}
	t.listChoices(q)
	fmt.Fprintf(t.w, "Enter numbers separated by commas [1-%d]: ", len(q.Choices))

	line, err := t.readLine(q.Name)
	if err != nil {
		return nil, err
	}
	if line == "" {
		if q.Default != nil {
			return q.Default, nil
		}
		return []any{}, nil
	}

	var out []any
	seen := make(map[int]bool)
	for _, part := range strings.Split(line, ",") {
		num, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || num < 1 || num > len(q.Choices) {
			return nil, invalid("invalid selection %q: choose 1-%d", strings.TrimSpace(part), len(q.Choices))
		}
		if seen[num] {
			continue
		}
		seen[num] = true
		out = append(out, q.Choices[num-1].Value)
	}
	return out, nil
}

// choiceIndex finds the default among choices by value, name or 0-based index.
func choiceIndex(choices []Choice, def any) int {
	if def == nil {
		return -1
	}
	for i, c := range choices {
		if fmt.Sprint(c.Value) == fmt.Sprint(def) || c.Name == fmt.Sprint(def) {
			return i
		}
	}
	if i, ok := def.(int); ok && i >= 0 && i < len(choices) {
		return i
	}
	return -1
}

func defaultHint(def any) string {
	if def == nil {
		return ""
	}
	return fmt.Sprint(def)
}
