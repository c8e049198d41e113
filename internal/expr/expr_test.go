package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestTest(t *testing.T) {
	scope := MapScope{
		"name":      "demo",
		"isPrivate": true,
		"count":     0,
		"tags":      []any{"a", "b"},
		"empty":     "",
	}

	tests := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"isPrivate", true},
		{"!isPrivate", false},
		{"count", false},
		{"count == 0", true},
		{"empty", false},
		{"name", true},
		{"name == \"demo\"", true},
		{"name === 'demo'", true},
		{"name !== 'demo'", false},
		{"missing", false},
		{"tags", true},
		{"length(tags) > 1 && isPrivate", true},
		{"contains(tags, 'c')", false},
		{"!missing", true},
		{"!!name", true},
		{"name && isPrivate", true},
		{"name && missing", false},
		{"missing || name", true},
		{"missing || empty", false},
		{"missing > 1", false},
		{"missing <= 1", false},
		{"count < 1", true},
		{"missing != null && missing.field", false},
		{"truthy(count)", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Test(tt.src, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConditional(t *testing.T) {
	scope := MapScope{"name": "demo", "count": 0}

	tests := []struct {
		src  string
		want any
	}{
		{"missing ? 1 : 2", 2},
		{"name ? 'yes' : 'no'", "yes"},
		{"count ? 'yes' : 'no'", "no"},
		{"!missing ? 'off' : 'on'", "off"},
		{"missing && name ? 1 : 2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Value(tt.src, scope)
			require.NoError(t, err)
			assert.EqualValues(t, tt.want, got)
		})
	}
}

func TestEvalPipes(t *testing.T) {
	scope := MapScope{"name": "My App", "tags": []any{"b", "a"}}

	tests := []struct {
		src  string
		want any
	}{
		{"name | kebabcase", "my-app"},
		{"name | snakecase | upper", "MY_APP"},
		{`name | replace(" ", "") | lower`, "myapp"},
		{"tags | sort", []any{"a", "b"}},
		{"missing || name | upper", "TRUE"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Value(tt.src, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Eval("name | nosuchfilter", scope)
	assert.Error(t, err)
}

func TestEvalArithmeticOnMissingFails(t *testing.T) {
	_, err := Eval("missing + 1", MapScope{})
	assert.Error(t, err)
}

func TestEvalErrors(t *testing.T) {
	_, err := Eval("name ==", MapScope{})
	require.Error(t, err)

	var exprErr *Error
	require.True(t, errors.As(err, &exprErr))
	assert.Equal(t, "name ==", exprErr.Source)

	_, err = Eval("nosuchfunc(1)", MapScope{})
	assert.Error(t, err)
}

type failingScope struct{ err error }

func (f failingScope) Lookup(string) (any, bool, error) { return nil, false, f.err }

func TestEvalScopeError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Eval("a", failingScope{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestEvalOnlyBindsReferencedNames(t *testing.T) {
	boom := errors.New("boom")
	_, err := Eval("1 + 1", failingScope{err: boom})
	assert.NoError(t, err)
}

func TestValue(t *testing.T) {
	scope := MapScope{"name": "my-app", "n": 2}

	tests := []struct {
		src  string
		want any
	}{
		{"upper(name)", "MY-APP"},
		{"n * 3", 6},
		{"n / 4", 0.5},
		{"camelcase(name)", "myApp"},
		{"pascalcase(name)", "MyApp"},
		{"snakecase(\"HTTPServer\")", "http_server"},
		{"kebabcase('fooBarBaz')", "foo-bar-baz"},
		{"[1, \"x\"]", []any{1, "x"}},
		{"{a = 1}", map[string]any{"a": 1}},
		{"n > 1 ? \"big\" : \"small\"", "big"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Value(tt.src, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want string
	}{
		{"null", cty.NullVal(cty.String), ""},
		{"string", cty.StringVal("hi"), "hi"},
		{"bool", cty.True, "true"},
		{"int", cty.NumberIntVal(42), "42"},
		{"float", cty.NumberFloatVal(1.5), "1.5"},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), "a,1"},
		{"object", cty.ObjectVal(map[string]cty.Value{"a": cty.StringVal("b")}), `{"a":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"list":  []string{"x"},
		"num":   3.25,
		"flag":  false,
		"inner": map[string]string{"k": "v"},
		"none":  nil,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"list":  []any{"x"},
		"num":   3.25,
		"flag":  false,
		"inner": map[string]any{"k": "v"},
		"none":  nil,
	}, ToGo(v))

	_, err = FromGo(make(chan int))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a === b", "a == b"},
		{"a !== b", "a != b"},
		{"a == b", "a == b"},
		{"'x'", `"x"`},
		{`'say "hi"'`, `"say \"hi\""`},
		{`'it\'s'`, `"it's"`},
		{`"==="`, `"==="`},
		{`'${x}'`, `"$${x}"`},
		{`"${x}"`, `"$${x}"`},
		{`"%{if x}"`, `"%%{if x}"`},
		{`"a\"${x}"`, `"a\"$${x}"`},
		{"name | upper", "upper(name)"},
		{"name|kebabcase|upper", "upper(kebabcase(name))"},
		{`name | replace("-", "_")`, `replace(name, "-", "_")`},
		{`'a|b' | upper`, `upper("a|b")`},
		{"a || b", "a || b"},
		{"f(a | b)", "f(a | b)"},
		{"a | 1 + 1", "a | 1 + 1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"my", "App", "Name"}, words("my-AppName"))
	assert.Equal(t, []string{"HTTP", "Server"}, words("HTTPServer"))
	assert.Empty(t, words("--"))
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "upper")
	assert.IsNonDecreasing(t, names)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("include === false"))
	assert.NoError(t, Check("unknownName && other"))
	assert.Error(t, Check("a ==="))
	assert.Error(t, Check("(a"))
}
