// Package prompt asks template questions. The generation stages only see the
// Prompter interface; Terminal is the line-based implementation used by the
// CLI.
package prompt

import (
	"context"
	"errors"
	"fmt"
)

// Question types understood by the prompters.
const (
	TypeString   = "string"
	TypeInput    = "input"
	TypePassword = "password"
	TypeConfirm  = "confirm"
	TypeNumber   = "number"
	TypeList     = "list"
	TypeRawList  = "rawlist"
	TypeCheckbox = "checkbox"
)

// Types lists every supported question type.
var Types = []string{
	TypeString, TypeInput, TypePassword, TypeConfirm,
	TypeNumber, TypeList, TypeRawList, TypeCheckbox,
}

// ErrInvalidAnswer marks input that could not be parsed for the question
// type. Callers may ask again.
var ErrInvalidAnswer = errors.New("invalid answer")

// Choice is one option of a list or checkbox question.
type Choice struct {
	Name  string
	Value any
}

// Question is a single prompt.
type Question struct {
	Name    string
	Type    string
	Message string
	Default any
	Choices []Choice
}

// Label returns the text shown to the user.
func (q Question) Label() string {
	if q.Message != "" {
		return q.Message
	}
	return q.Name
}

// Multi reports whether the answer is a list of values.
func (q Question) Multi() bool { return q.Type == TypeCheckbox }

// Selects reports whether the answer must come from Choices.
func (q Question) Selects() bool {
	switch q.Type {
	case TypeList, TypeRawList, TypeCheckbox:
		return true
	}
	return false
}

// Prompter answers questions one at a time.
type Prompter interface {
	Ask(ctx context.Context, q Question) (any, error)
}

// Func adapts a function to a Prompter.
type Func func(ctx context.Context, q Question) (any, error)

// Ask implements Prompter.
func (f Func) Ask(ctx context.Context, q Question) (any, error) { return f(ctx, q) }

// Answers is a Prompter backed by a fixed answer map. Questions without an
// entry receive their default.
type Answers map[string]any

// Ask implements Prompter.
func (a Answers) Ask(_ context.Context, q Question) (any, error) {
	if v, ok := a[q.Name]; ok {
		return v, nil
	}
	return q.Default, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAnswer, fmt.Sprintf(format, args...))
}
