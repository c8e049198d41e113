package expr

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Template conditions treat an absent answer as false. HCL rejects null
// operands for its logical and ordering operators, so after parsing those
// operators are swapped for variants that go through Truthy, and every
// conditional test is wrapped in truthy().

var anyParam = function.Parameter{
	Type:             cty.DynamicPseudoType,
	AllowNull:        true,
	AllowUnknown:     true,
	AllowDynamicType: true,
}

var truthyFunc = function.New(&function.Spec{
	Params: []function.Parameter{withName(anyParam, "value")},
	Type:   function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.BoolVal(Truthy(args[0])), nil
	},
})

var (
	looseNot = &hclsyntax.Operation{
		Impl: function.New(&function.Spec{
			Params: []function.Parameter{withName(anyParam, "val")},
			Type:   function.StaticReturnType(cty.Bool),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return cty.BoolVal(!Truthy(args[0])), nil
			},
		}),
		Type: cty.Bool,
	}

	looseAnd = &hclsyntax.Operation{
		Impl: logical(func(a, b bool) bool { return a && b }),
		Type: cty.Bool,
		ShortCircuit: func(lhs, _ cty.Value, lhsDiags, _ hcl.Diagnostics) (cty.Value, hcl.Diagnostics) {
			if !lhsDiags.HasErrors() && lhs.IsKnown() && !Truthy(lhs) {
				return cty.False, lhsDiags
			}
			return cty.NilVal, nil
		},
	}

	looseOr = &hclsyntax.Operation{
		Impl: logical(func(a, b bool) bool { return a || b }),
		Type: cty.Bool,
		ShortCircuit: func(lhs, _ cty.Value, lhsDiags, _ hcl.Diagnostics) (cty.Value, hcl.Diagnostics) {
			if !lhsDiags.HasErrors() && Truthy(lhs) {
				return cty.True, lhsDiags
			}
			return cty.NilVal, nil
		},
	}

	looseOrdering = map[*hclsyntax.Operation]*hclsyntax.Operation{
		hclsyntax.OpGreaterThan:        ordering(stdlib.GreaterThanFunc),
		hclsyntax.OpGreaterThanOrEqual: ordering(stdlib.GreaterThanOrEqualToFunc),
		hclsyntax.OpLessThan:           ordering(stdlib.LessThanFunc),
		hclsyntax.OpLessThanOrEqual:    ordering(stdlib.LessThanOrEqualToFunc),
	}
)

func withName(p function.Parameter, name string) function.Parameter {
	p.Name = name
	return p
}

func logical(op func(a, b bool) bool) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{withName(anyParam, "a"), withName(anyParam, "b")},
		Type:   function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.BoolVal(op(Truthy(args[0]), Truthy(args[1]))), nil
		},
	})
}

// ordering compares numbers, with a null on either side comparing false.
func ordering(cmp function.Function) *hclsyntax.Operation {
	return &hclsyntax.Operation{
		Impl: function.New(&function.Spec{
			Params: []function.Parameter{
				{Name: "a", Type: cty.Number, AllowNull: true},
				{Name: "b", Type: cty.Number, AllowNull: true},
			},
			Type: function.StaticReturnType(cty.Bool),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				if args[0].IsNull() || args[1].IsNull() {
					return cty.False, nil
				}
				return cmp.Call(args)
			},
		}),
		Type: cty.Bool,
	}
}

// loosen rewrites the parsed tree in place. Each evaluation parses afresh,
// so the shared operator tables are never touched.
func loosen(e hclsyntax.Expression) {
	hclsyntax.VisitAll(e, func(n hclsyntax.Node) hcl.Diagnostics {
		switch n := n.(type) {
		case *hclsyntax.UnaryOpExpr:
			if n.Op == hclsyntax.OpLogicalNot {
				n.Op = looseNot
			}
		case *hclsyntax.BinaryOpExpr:
			switch n.Op {
			case hclsyntax.OpLogicalAnd:
				n.Op = looseAnd
			case hclsyntax.OpLogicalOr:
				n.Op = looseOr
			default:
				if op, ok := looseOrdering[n.Op]; ok {
					n.Op = op
				}
			}
		case *hclsyntax.ConditionalExpr:
			r := n.Condition.Range()
			n.Condition = &hclsyntax.FunctionCallExpr{
				Name:            "truthy",
				Args:            []hclsyntax.Expression{n.Condition},
				NameRange:       r,
				OpenParenRange:  r,
				CloseParenRange: r,
			}
		}
		return nil
	})
}
