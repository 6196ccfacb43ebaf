// RAScript
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RAScript.
//
// RAScript is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RAScript is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RAScript.  If not, see <http://www.gnu.org/licenses/>.

package interpreter

import (
	"testing"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestScope returns a root scope with two builtins: mem(address), which
// stands in for a memory accessor, and apply(f, value), which calls f.
func newTestScope(t *testing.T, maxDepth int) *Scope {
	t.Helper()
	s := NewScope(maxDepth)

	var mem *Builtin
	mem = NewBuiltin("mem(address)", func(s *Scope) (ast.Expression, *ast.ErrorExpression) {
		if _, err := s.Integer("address"); err != nil {
			return nil, err
		}
		return Expand(s, mem.Def), nil
	})
	require.NoError(t, s.AddFunction(mem))

	apply := NewBuiltin("apply(f, value)", func(s *Scope) (ast.Expression, *ast.ErrorExpression) {
		fn, err := s.FunctionParam("f")
		if err != nil {
			return nil, err
		}
		return CallFunction(fn, []ast.Expression{s.Get("value")}, s, s.Call().Range())
	})
	require.NoError(t, s.AddFunction(apply))

	return s
}

func run(t *testing.T, source string) (*Scope, *ast.ErrorExpression) {
	t.Helper()
	script := parser.Parse(source)
	require.False(t, script.HasErrors(), "syntax errors: %v", script.Errors)
	s := newTestScope(t, 0)
	return s, Run(script, s)
}

func mustRun(t *testing.T, source string) *Scope {
	t.Helper()
	s, err := run(t, source)
	require.Nil(t, err, "unexpected error: %v", err)
	return s
}

func lookup(t *testing.T, s *Scope, name string) ast.Expression {
	t.Helper()
	v, ok := s.Lookup(name)
	require.True(t, ok, "%s is not defined", name)
	return v
}

func TestEvaluateFoldsConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{source: "x = 1 + 2 * 3", want: "7"},
		{source: "x = (1 + 2) * 3", want: "9"},
		{source: "x = 7 / 2", want: "3"},
		{source: "x = -7 / 2", want: "-3"},
		{source: "x = 7 % 3", want: "1"},
		{source: "x = 1.5 * 2", want: "3.0"},
		{source: "x = 3 / 2.0", want: "1.5"},
		{source: "x = 0xFF & 0x0F", want: "15"},
		{source: "x = ~0", want: "-1"},
		{source: "x = 2147483647 + 1", want: "-2147483648"},
		{source: "x = 0xFFFFFFFF", want: "4294967295"},
		{source: "x = 0xFFFFFFFF > 0", want: "true"},
		{source: "x = 0xFFFFFFFF == -1", want: "false"},
		{source: "x = 0xF0000000 + 1", want: "4026531841"},
		{source: "x = ~0xF0000000", want: "268435455"},
		{source: `x = "a" + 1 + 2`, want: `"a3"`},
		{source: `x = "a" + "b"`, want: `"ab"`},
		{source: "x = 1 < 2", want: "true"},
		{source: "x = 2.5 >= 3", want: "false"},
		{source: `x = "abc" == "abc"`, want: "true"},
		{source: "x = true && false", want: "false"},
		{source: "x = false || !false", want: "true"},
		{source: "x = [1 + 1, 2][0]", want: "2"},
		{source: `x = {"a": 1, "b": 2}["b"]`, want: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()
			s := mustRun(t, tt.source)
			assert.Equal(t, tt.want, lookup(t, s, "x").String())
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want    error
		name    string
		source  string
		message string
	}{
		{name: "divide by zero", source: "x = 1 / 0", want: ErrDivideByZero},
		{name: "modulus by zero", source: "x = 1 % 0", want: ErrDivideByZero},
		{name: "unknown variable", source: "x = y", want: ErrUnknownVariable, message: "unknown variable: y"},
		{name: "unknown function", source: "x = foo(1)", want: ErrUnknownFunction},
		{name: "index out of range", source: "x = [1][5]", want: ErrIndexOutOfRange},
		{name: "missing key", source: "x = {1: 2}[3]", want: ErrIndexOutOfRange},
		{name: "string subtraction", source: `x = "a" - 1`, want: ErrUnsupportedOperand},
		{name: "boolean arithmetic", source: "x = 1 + true", want: ErrUnsupportedOperand},
		{name: "return at top level", source: "return 1", want: ErrReturnOutsideFunc},
		{name: "no return value", source: "function f() { }\nx = f()", want: ErrNoReturnValue},
		{name: "not callable", source: "a = 1\nx = a()", want: ErrNotCallable},
		{name: "non-constant if", source: "if (mem(1) == 2) { x = 1 }", want: ErrTypeMismatch},
		{name: "iterate integer", source: "for i in 3 { x = i }", want: ErrTypeMismatch},
		{name: "duplicate function", source: "function f() => 1\nfunction f() => 2", want: ErrDuplicateFunction},
		{name: "assign to function", source: "function f() => 1\nf = 2", want: ErrNotAssignable},
		{name: "builtin type check", source: `x = mem("a")`, want: ErrTypeMismatch},
		{name: "dictionary key", source: "x = {[1]: 2}", want: ErrTypeMismatch},
		{name: "duplicate key", source: "x = {1: 2, 1: 3}", want: ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := run(t, tt.source)
			require.NotNil(t, err)
			require.ErrorIs(t, err, tt.want)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Message)
			}
			assert.False(t, err.Range().IsEmpty())
		})
	}
}

func TestUnknownNameSuggestion(t *testing.T) {
	t.Parallel()

	_, err := run(t, "total = 1\nx = totl")
	require.NotNil(t, err)
	assert.Equal(t, "unknown variable: totl (did you mean total?)", err.Message)

	_, err = run(t, "x = appyl(1, 2)")
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "did you mean apply?")
}

func TestParameterBinding(t *testing.T) {
	t.Parallel()

	const f = "function f(a, b = 10) => a * 100 + b\n"

	tests := []struct {
		wantErr error
		name    string
		call    string
		message string
		want    int32
	}{
		{name: "positional", call: "f(1, 2)", want: 102},
		{name: "default", call: "f(1)", want: 110},
		{name: "named", call: "f(b = 3, a = 1)", want: 103},
		{name: "positional then named", call: "f(1, b = 4)", want: 104},
		{
			name: "positional after named", call: "f(a = 1, 2)", wantErr: ErrInvalidParameter,
			message: "unnamed parameter cannot follow named parameters",
		},
		{name: "bound twice", call: "f(1, a = 2)", wantErr: ErrInvalidParameter, message: "a already has a value"},
		{name: "unknown name", call: "f(1, c = 2)", wantErr: ErrInvalidParameter, message: "f does not have a c parameter"},
		{name: "missing", call: "f()", wantErr: ErrInvalidParameter, message: "required parameter a not provided"},
		{name: "too many", call: "f(1, 2, 3)", wantErr: ErrInvalidParameter, message: "too many parameters passed to f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := run(t, f+"x = "+tt.call)
			if tt.wantErr != nil {
				require.NotNil(t, err)
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.message, err.Message)
				return
			}
			require.Nil(t, err)
			x, ok := lookup(t, s, "x").(*ast.IntegerConstant)
			require.True(t, ok)
			assert.Equal(t, tt.want, x.Value)
		})
	}
}

func TestZeroAndSingleParameterPaths(t *testing.T) {
	t.Parallel()

	s := mustRun(t, "function one() => 1\nfunction inc(n) => n + 1\nx = inc(one())")
	assert.Equal(t, "2", lookup(t, s, "x").String())

	_, err := run(t, "function one() => 1\nx = one(5)")
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, "too many parameters passed to one", err.Message)

	s = mustRun(t, "function inc(n) => n + 1\nx = inc(n = 4)")
	assert.Equal(t, "5", lookup(t, s, "x").String())
}

func TestVariadicParameters(t *testing.T) {
	t.Parallel()

	s := mustRun(t, "function g(a, rest...) => rest\nx = g(1, 2, 3)\ny = g(1)")

	x, ok := lookup(t, s, "x").(*ast.Array)
	require.True(t, ok)
	assert.Equal(t, "[2, 3]", x.String())

	y, ok := lookup(t, s, "y").(*ast.Array)
	require.True(t, ok)
	assert.Empty(t, y.Entries)
}

func TestRecursionGuard(t *testing.T) {
	t.Parallel()

	s, err := run(t, "function f(n) => f(n + 1)\nx = f(1)")
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrRecursionDepth)

	// reported against the outermost call, not the innermost one
	assert.Equal(t, 2, err.Range().Start.Line)
	assert.Equal(t, 5, err.Range().Start.Column)
	assert.Nil(t, err.Inner)
	assert.Equal(t, 0, s.Depth())
}

func TestRecursionWithinLimit(t *testing.T) {
	t.Parallel()

	source := "function fact(n) {\n  if (n <= 1) { return 1 }\n  return n * fact(n - 1)\n}\nx = fact(10)"
	s := mustRun(t, source)
	assert.Equal(t, "3628800", lookup(t, s, "x").String())

	script := parser.Parse("function down(n) {\n  if (n == 0) { return 0 }\n  return down(n - 1)\n}\nx = down(20)")
	require.False(t, script.HasErrors())
	shallow := newTestScope(t, 10)
	err := Run(script, shallow)
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrRecursionDepth)
}

func TestErrorsInCalleeAreWrapped(t *testing.T) {
	t.Parallel()

	_, err := run(t, "function f(n) => n + missing\nx = f(1)")
	require.NotNil(t, err)
	assert.Equal(t, "f call failed", err.Message)
	assert.Equal(t, 2, err.Range().Start.Line)
	require.NotNil(t, err.Inner)
	assert.Equal(t, 1, err.Innermost().Range().Start.Line)
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestContainersAreSharedByReference(t *testing.T) {
	t.Parallel()

	source := `
function poke(a) {
  a[0] = 5
}
function tag(d) {
  d["seen"] = true
}
arr = [1, 2]
alias = arr
poke(arr)
alias[1] = 9
dict = {}
tag(dict)
`
	s := mustRun(t, source)
	assert.Equal(t, "[5, 9]", lookup(t, s, "arr").String())
	assert.Same(t, lookup(t, s, "arr"), lookup(t, s, "alias"))
	assert.Equal(t, `{"seen": true}`, lookup(t, s, "dict").String())
}

func TestLiteralsCreateNewContainers(t *testing.T) {
	t.Parallel()

	source := `
all = []
function make() => [0]
a = make()
b = make()
a[0] = 1
`
	s := mustRun(t, source)
	assert.Equal(t, "[1]", lookup(t, s, "a").String())
	assert.Equal(t, "[0]", lookup(t, s, "b").String())
}

func TestClosuresCaptureValues(t *testing.T) {
	t.Parallel()

	source := `
function adder(n) {
  return x => x + n
}
add2 = adder(2)
add5 = adder(5)
a = add2(1)
b = add5(1)
c = apply(add2, 10)
d = apply((v) => v * 3, 4)
`
	s := mustRun(t, source)
	assert.Equal(t, "3", lookup(t, s, "a").String())
	assert.Equal(t, "6", lookup(t, s, "b").String())
	assert.Equal(t, "12", lookup(t, s, "c").String())
	assert.Equal(t, "12", lookup(t, s, "d").String())
}

func TestFunctionReferences(t *testing.T) {
	t.Parallel()

	s := mustRun(t, "function double(x) => x * 2\nf = double\ny = f(4)\nz = apply(double, 5)")
	ref, ok := lookup(t, s, "f").(*ast.FunctionReference)
	require.True(t, ok)
	assert.Equal(t, "double", ref.Name)
	assert.Equal(t, "8", lookup(t, s, "y").String())
	assert.Equal(t, "10", lookup(t, s, "z").String())
}

func TestControlFlow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "if", source: "a = 1\nif (a == 1) { x = 2 } else { x = 3 }", want: "2"},
		{name: "else", source: "a = 0\nif (a == 1) { x = 2 } else { x = 3 }", want: "3"},
		{name: "for array", source: "x = 0\nfor i in [1, 2, 3] { x = x + i }", want: "6"},
		{name: "for dictionary", source: "x = 0\nfor k in {1: 10, 2: 20} { x = x + k }", want: "3"},
		{
			name:   "return from loop",
			source: "function first(a) {\n  for v in a {\n    if (v > 1) { return v }\n  }\n  return 0\n}\nx = first([1, 5, 7])",
			want:   "5",
		},
		{
			name:   "loop variables are local",
			source: "x = 0\nfor i in [1] { tmp = i }\nx = i == 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := run(t, tt.source)
			if tt.want == "" {
				require.NotNil(t, err)
				require.ErrorIs(t, err, ErrUnknownVariable)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, lookup(t, s, "x").String())
		})
	}
}

func TestMemoryExpressionsStayUnfolded(t *testing.T) {
	t.Parallel()

	s := mustRun(t, "x = mem(1) + 2 * 3\ny = mem(1) == 2 && true\nz = mem(1) == 2 && false\nw = mem(2) == 1 || true")

	assert.Equal(t, "mem(1) + 6", lookup(t, s, "x").String())
	assert.Equal(t, "mem(1) == 2", lookup(t, s, "y").String())
	assert.Equal(t, "false", lookup(t, s, "z").String())
	assert.Equal(t, "true", lookup(t, s, "w").String())
}

func TestExpandedCallsAreNotReevaluated(t *testing.T) {
	t.Parallel()

	s := mustRun(t, "x = mem(0x10)")
	call, ok := lookup(t, s, "x").(*ast.FunctionCall)
	require.True(t, ok)
	require.True(t, call.IsExpanded())

	again, err := Evaluate(call, s)
	require.Nil(t, err)
	assert.Same(t, call, again)
}
