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

package parser

import (
	"testing"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/tokenizer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var none ast.TextRange

func num(v int32) ast.Expression {
	return ast.NewInteger(v, none)
}

func str(s string) ast.Expression {
	return ast.NewString(s, none)
}

func variable(name string) ast.Expression {
	return ast.NewVariable(name, none)
}

func def(name string) *ast.VariableDefinition {
	return ast.NewVariableDefinition(name, none)
}

func arith(left ast.Expression, op ast.MathematicOperation, right ast.Expression) ast.Expression {
	return ast.NewMathematic(left, op, right)
}

func compare(left ast.Expression, op ast.ComparisonOperation, right ast.Expression) ast.Expression {
	return ast.NewComparison(left, op, right)
}

func call(name string, params ...ast.Expression) ast.Expression {
	return ast.NewFunctionCall(ast.NewVariable(name, none), params, none)
}

func assign(name string, value ast.Expression) ast.Expression {
	return ast.NewAssignment(def(name), value)
}

func ret(value ast.Expression) ast.Expression {
	return ast.NewReturn(value, none)
}

var equalTrees = cmp.Comparer(ast.Equal)

func parseOne(t *testing.T, source string) ast.Expression {
	t.Helper()
	return ParseExpression(tokenizer.New(source))
}

func TestParseExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want   ast.Expression
		name   string
		source string
	}{
		{
			name:   "multiplication binds tighter than addition",
			source: "1 + 2 * 3",
			want:   arith(num(1), ast.Add, arith(num(2), ast.Multiply, num(3))),
		},
		{
			name:   "parentheses group",
			source: "(1 + 2) * 3",
			want:   arith(arith(num(1), ast.Add, num(2)), ast.Multiply, num(3)),
		},
		{
			name:   "subtraction is left associative",
			source: "10 - 4 - 3",
			want:   arith(arith(num(10), ast.Subtract, num(4)), ast.Subtract, num(3)),
		},
		{
			name:   "modulus with multiplication",
			source: "a % 4 * 2",
			want:   arith(arith(variable("a"), ast.Modulus, num(4)), ast.Multiply, num(2)),
		},
		{
			name:   "bitwise and below addition",
			source: "a + 1 & 0x0F",
			want:   arith(arith(variable("a"), ast.Add, num(1)), ast.BitwiseAnd, num(15)),
		},
		{
			name:   "string append binds looser than addition",
			source: `"a" + 1 + 2`,
			want:   arith(str("a"), ast.Add, arith(num(1), ast.Add, num(2))),
		},
		{
			name:   "comparison below arithmetic",
			source: "byte(1) + 2 == 3",
			want:   compare(arith(call("byte", num(1)), ast.Add, num(2)), ast.ComparisonEqual, num(3)),
		},
		{
			name:   "and chain flattens",
			source: "a == 1 && b == 2 && c == 3",
			want: ast.NewConditional(ast.And,
				compare(variable("a"), ast.ComparisonEqual, num(1)),
				compare(variable("b"), ast.ComparisonEqual, num(2)),
				compare(variable("c"), ast.ComparisonEqual, num(3)),
			),
		},
		{
			name:   "and binds tighter than or",
			source: "a || b && c",
			want: ast.NewConditional(ast.Or,
				variable("a"),
				ast.NewConditional(ast.And, variable("b"), variable("c")),
			),
		},
		{
			name:   "not applies to its operand",
			source: "!a && b",
			want: ast.NewConditional(ast.And,
				ast.NewConditional(ast.Not, variable("a")),
				variable("b"),
			),
		},
		{
			name:   "not equal is not negation",
			source: "a != 1",
			want:   compare(variable("a"), ast.ComparisonNotEqual, num(1)),
		},
		{
			name:   "assignment is right associative",
			source: "a = b = 1",
			want:   ast.NewAssignment(def("a"), assign("b", num(1))),
		},
		{
			name:   "negative literal is folded",
			source: "x = -5",
			want:   assign("x", num(-5)),
		},
		{
			name:   "smallest integer",
			source: "x = -2147483648",
			want:   assign("x", num(-2147483648)),
		},
		{
			name:   "hex above signed range stays unsigned",
			source: "x = 0xFFFFFFFF",
			want:   assign("x", ast.NewUnsigned(0xFFFFFFFF, none)),
		},
		{
			name:   "negative hex",
			source: "x = -0x10",
			want:   assign("x", num(-16)),
		},
		{
			name:   "negating an expression subtracts from zero",
			source: "x = -a",
			want:   assign("x", arith(num(0), ast.Subtract, variable("a"))),
		},
		{
			name:   "float literal",
			source: "x = 1.5",
			want:   assign("x", ast.NewFloat(1.5, none)),
		},
		{
			name:   "bitwise invert",
			source: "x = ~0x0F",
			want:   assign("x", ast.NewBitwiseInvert(num(15), none)),
		},
		{
			name:   "call with named argument",
			source: "f(1, b = 2)",
			want:   call("f", num(1), assign("b", num(2))),
		},
		{
			name:   "nested index",
			source: "x = a[1][\"k\"]",
			want: assign("x", ast.NewIndex(
				ast.NewIndex(variable("a"), num(1), none), str("k"), none)),
		},
		{
			name:   "index assignment",
			source: "a[1] = 2",
			want:   ast.NewAssignment(ast.NewIndex(variable("a"), num(1), none), num(2)),
		},
		{
			name:   "array literal",
			source: "x = [1, 2, 3,]",
			want:   assign("x", ast.NewArray([]ast.Expression{num(1), num(2), num(3)}, none)),
		},
		{
			name:   "dictionary literal",
			source: "x = { 1: \"a\", 2: \"b\" }",
			want: assign("x", ast.NewDictionary([]ast.DictionaryEntry{
				{Key: num(1), Value: str("a")},
				{Key: num(2), Value: str("b")},
			}, none)),
		},
		{
			name:   "booleans",
			source: "x = true || false",
			want: assign("x", ast.NewConditional(ast.Or,
				ast.NewBoolean(true, none), ast.NewBoolean(false, none))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseOne(t, tt.source)
			require.IsType(t, tt.want, got, "got %s", got)
			if diff := cmp.Diff(tt.want, got, equalTrees); diff != "" {
				t.Errorf("parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLogicalUnit(t *testing.T) {
	t.Parallel()

	got := parseOne(t, "(1 + 2) * 3")
	m, ok := got.(*ast.Mathematic)
	require.True(t, ok)
	assert.Equal(t, ast.Multiply, m.Operation)
	assert.True(t, m.Left.IsLogicalUnit())
	assert.False(t, m.Right.IsLogicalUnit())
	assert.Equal(t, "(1 + 2) * 3", m.String())
}

func TestParseRanges(t *testing.T) {
	t.Parallel()

	got := parseOne(t, "x = byte(0x1234)")
	a, ok := got.(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, tokenizer.Location{Line: 1, Column: 1}, a.Range().Start)
	assert.Equal(t, tokenizer.Location{Line: 1, Column: 16}, a.Range().End)
	assert.Equal(t, tokenizer.Location{Line: 1, Column: 5}, a.Value.Range().Start)
}

func TestParseFunctions(t *testing.T) {
	t.Parallel()

	t.Run("named with block body", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "function f(a, b = 2) {\n  return a + b\n}")
		fn, ok := got.(*ast.FunctionDefinition)
		require.True(t, ok, "got %T", got)
		assert.Equal(t, "f", fn.NameString())
		assert.Equal(t, []string{"a", "b"}, fn.ParameterNames())
		require.Contains(t, fn.Defaults, "b")
		assert.True(t, ast.Equal(num(2), fn.Defaults["b"]))
		if diff := cmp.Diff([]ast.Expression{ret(arith(variable("a"), ast.Add, variable("b")))},
			fn.Body, equalTrees); diff != "" {
			t.Errorf("body mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("named with expression body", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "function double(x) => x * 2")
		fn, ok := got.(*ast.FunctionDefinition)
		require.True(t, ok)
		require.Len(t, fn.Body, 1)
		assert.True(t, ast.Equal(ret(arith(variable("x"), ast.Multiply, num(2))), fn.Body[0]))
	})

	t.Run("variadic", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "function f(first, rest...) { return rest }")
		fn, ok := got.(*ast.FunctionDefinition)
		require.True(t, ok)
		assert.True(t, fn.Variadic)
		assert.Equal(t, []string{"first", "rest"}, fn.ParameterNames())
	})

	t.Run("anonymous with parameter list", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "f = (a, b) => a + b")
		a, ok := got.(*ast.Assignment)
		require.True(t, ok)
		fn, ok := a.Value.(*ast.FunctionDefinition)
		require.True(t, ok, "got %T", a.Value)
		assert.True(t, fn.IsAnonymous())
		assert.Equal(t, []string{"a", "b"}, fn.ParameterNames())
	})

	t.Run("anonymous with single parameter", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "array_map(arr, x => x + 1)")
		c, ok := got.(*ast.FunctionCall)
		require.True(t, ok)
		require.Len(t, c.Parameters, 2)
		fn, ok := c.Parameters[1].(*ast.FunctionDefinition)
		require.True(t, ok)
		assert.Equal(t, []string{"x"}, fn.ParameterNames())
	})

	t.Run("anonymous with no parameters and block", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "f = () => { return 1 }")
		a, ok := got.(*ast.Assignment)
		require.True(t, ok)
		fn, ok := a.Value.(*ast.FunctionDefinition)
		require.True(t, ok)
		assert.Empty(t, fn.Parameters)
		require.Len(t, fn.Body, 1)
	})

	t.Run("default before non-default", func(t *testing.T) {
		t.Parallel()
		got := parseOne(t, "function f(a = 1, b) { }")
		e, ok := got.(*ast.ErrorExpression)
		require.True(t, ok)
		assert.ErrorIs(t, e, ErrSyntax)
	})
}

func TestParseStatements(t *testing.T) {
	t.Parallel()

	script := Parse(`
if (a == 1) {
    x = 1
} else if (a == 2)
    x = 2
else {
    x = 3
}

for i in range(1, 3) {
    x = x + i
}

function f() {
    return
}
`)
	require.Empty(t, script.Errors)
	require.Len(t, script.Statements, 3)

	ifs, ok := script.Statements[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 1)
	nested, ok := ifs.Else[0].(*ast.If)
	require.True(t, ok)
	assert.True(t, ast.Equal(assign("x", num(2)), nested.Then[0]))
	assert.True(t, ast.Equal(assign("x", num(3)), nested.Else[0]))

	loop, ok := script.Statements[1].(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "i", loop.Iterator.Name)
	assert.True(t, ast.Equal(call("range", num(1), num(3)), loop.Iterable))

	fn, ok := script.Statements[2].(*ast.FunctionDefinition)
	require.True(t, ok)
	require.Len(t, fn.Body, 1)
	r, ok := fn.Body[0].(*ast.Return)
	require.True(t, ok)
	assert.Nil(t, r.Value)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		name   string
		source string
		msg    string
	}{
		{name: "bare variable", source: "x", err: ErrNoMeaning, msg: "x has no meaning"},
		{name: "bare constant", source: "12", err: ErrNoMeaning, msg: "12 has no meaning"},
		{name: "assign to constant", source: "1 = 2", err: ErrInvalidAssignment},
		{name: "assign to call", source: "f() = 2", err: ErrInvalidAssignment},
		{name: "number too large", source: "x = 2147483648", err: ErrNumberTooLarge},
		{name: "hex too large", source: "x = 0x100000000", err: ErrNumberTooLarge},
		{name: "negative hex too large", source: "x = -0x80000001", err: ErrNumberTooLarge},
		{name: "unterminated string", source: `x = "abc`, err: tokenizer.ErrUnterminatedString},
		{name: "missing paren", source: "x = (1 + 2", err: ErrUnexpectedEnd},
		{name: "unexpected character", source: "x = #", err: ErrSyntax, msg: "unexpected character '#'"},
		{name: "missing brace", source: "if (a) {\n x = 1\n", err: ErrUnexpectedEnd},
		{name: "reserved word", source: "function if() { }", err: ErrReservedWord},
		{name: "else without if", source: "else { x = 1 }", err: ErrSyntax},
		{name: "unterminated comment", source: "x = 1 /* comment", err: ErrUnexpectedEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			script := Parse(tt.source)
			require.NotEmpty(t, script.Errors)
			assert.ErrorIs(t, script.Errors[0], tt.err)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, script.Errors[0].Message)
			}
			assert.False(t, script.Errors[0].Range().IsEmpty())
		})
	}
}

func TestParseAccumulatesErrors(t *testing.T) {
	t.Parallel()

	script := Parse("x = )\ny = #\nz = 1\nw\n")
	require.Len(t, script.Errors, 3)
	assert.Equal(t, 1, script.Errors[0].Range().Start.Line)
	assert.Equal(t, 2, script.Errors[1].Range().Start.Line)
	assert.Equal(t, 4, script.Errors[2].Range().Start.Line)

	require.Len(t, script.Statements, 4)
	assert.True(t, ast.Equal(assign("z", num(1)), script.Statements[2]))
}

func TestParseErrorInsideBlock(t *testing.T) {
	t.Parallel()

	script := Parse("function f() {\n  x = )\n  return 1\n}\ny = 2\n")
	require.Len(t, script.Errors, 1)
	require.Len(t, script.Statements, 2)
	fn, ok := script.Statements[0].(*ast.FunctionDefinition)
	require.True(t, ok)
	assert.Len(t, fn.Body, 2)
	assert.True(t, ast.Equal(assign("y", num(2)), script.Statements[1]))
}

func TestParseComments(t *testing.T) {
	t.Parallel()

	script := Parse("// header\nx = 1 // trailing\n\n/* block\n comment */\ny = 2\n// end\n")
	require.Empty(t, script.Errors)
	require.Len(t, script.Statements, 2)
	require.Len(t, script.Comments, 4)
	assert.Equal(t, "// header", script.Comments[0].Text)
	assert.Equal(t, "/* block\n comment */", script.Comments[2].Text)

	require.Len(t, script.Groups, 3)
	assert.Len(t, script.Groups[0].Comments, 2)
	assert.Len(t, script.Groups[1].Comments, 1)
	assert.Empty(t, script.Groups[2].Statements)

	g, ok := script.GroupAt(5)
	require.True(t, ok)
	assert.True(t, ast.Equal(assign("y", num(2)), g.Statements[0]))
}

func TestParseEmptyScript(t *testing.T) {
	t.Parallel()

	script := Parse("  // nothing here\n")
	assert.Empty(t, script.Statements)
	assert.Empty(t, script.Errors)
	assert.Len(t, script.Comments, 1)
}
