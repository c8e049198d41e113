package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Scope resolves identifiers to values.
type Scope interface {
	Lookup(name string) (any, bool, error)
}

// MapScope is a Scope over a plain map.
type MapScope map[string]any

// Lookup implements Scope.
func (m MapScope) Lookup(name string) (any, bool, error) {
	v, ok := m[name]
	return v, ok, nil
}

// Error reports a failed parse or evaluation.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("expression %q: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Pos locates an expression inside a larger document for diagnostics.
type Pos struct {
	Filename string
	Line     int
	Column   int
}

// Eval parses and evaluates src against scope.
func Eval(src string, scope Scope) (cty.Value, error) {
	return EvalAt(src, scope, Pos{Filename: "<expr>", Line: 1, Column: 1})
}

// EvalAt is Eval with diagnostics positioned at pos.
func EvalAt(src string, scope Scope, pos Pos) (cty.Value, error) {
	start := hcl.Pos{Line: pos.Line, Column: pos.Column, Byte: 0}
	if start.Line == 0 {
		start.Line = 1
	}
	if start.Column == 0 {
		start.Column = 1
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(normalize(src)), pos.Filename, start)
	if diags.HasErrors() {
		return cty.NilVal, &Error{Source: src, Err: diags}
	}

	vars, err := bind(parsed.Variables(), scope)
	if err != nil {
		return cty.NilVal, &Error{Source: src, Err: err}
	}
	loosen(parsed)

	val, diags := parsed.Value(&hcl.EvalContext{
		Variables: vars,
		Functions: functions,
	})
	if diags.HasErrors() {
		return cty.NilVal, &Error{Source: src, Err: diags}
	}
	return val, nil
}

// Check parses src without evaluating it.
func Check(src string) error {
	_, diags := hclsyntax.ParseExpression([]byte(normalize(src)), "<expr>", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return &Error{Source: src, Err: diags}
	}
	return nil
}

// Test evaluates src and reports its truthiness.
func Test(src string, scope Scope) (bool, error) {
	v, err := Eval(src, scope)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Value evaluates src and converts the result to a Go value.
func Value(src string, scope Scope) (any, error) {
	v, err := Eval(src, scope)
	if err != nil {
		return nil, err
	}
	return ToGo(v), nil
}

func bind(traversals []hcl.Traversal, scope Scope) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(traversals))
	for _, tr := range traversals {
		name := tr.RootName()
		if _, done := vars[name]; done {
			continue
		}
		raw, ok, err := scope.Lookup(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			vars[name] = cty.NullVal(cty.DynamicPseudoType)
			continue
		}
		v, err := FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// Truthy maps a value onto a boolean: null, false, zero, the empty string
// and unknown values are false, everything else is true.
func Truthy(v cty.Value) bool {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false
	}
	switch v.Type() {
	case cty.Bool:
		return v.True()
	case cty.Number:
		return v.AsBigFloat().Sign() != 0
	case cty.String:
		return v.AsString() != ""
	}
	return true
}
