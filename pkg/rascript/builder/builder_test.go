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

package builder

import (
	"testing"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/parser"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAccessor struct {
	*interpreter.Builtin
	size requirements.FieldSize
}

func (a *testAccessor) BuildValue(c *Context, call *ast.FunctionCall) (Linear, *ast.ErrorExpression) {
	t, err := c.MemoryTerm(a.size, call.Parameters[0])
	if err != nil {
		return Linear{}, err
	}
	return Single(t), nil
}

type testOnce struct {
	*interpreter.Builtin
}

func (o *testOnce) BuildChain(c *Context, call *ast.FunctionCall) ([]requirements.Requirement, *ast.ErrorExpression) {
	reqs, err := c.BuildChain(call.Parameters[0])
	if err != nil {
		return nil, err
	}
	reqs[len(reqs)-1].HitCount = 1
	return reqs, nil
}

type testNever struct {
	*interpreter.Builtin
}

func (n *testNever) BuildTrigger(c *Context, call *ast.FunctionCall) *ast.ErrorExpression {
	reqs, err := c.BuildChain(call.Parameters[0])
	if err != nil {
		return err
	}
	reqs[len(reqs)-1].Type = requirements.RequirementTypeResetIf
	c.Append(reqs...)
	return nil
}

func expanding(signature string) *interpreter.Builtin {
	var b *interpreter.Builtin
	b = interpreter.NewBuiltin(signature, func(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
		return interpreter.Expand(s, b.Def), nil
	})
	return b
}

func newTestScope(t *testing.T) *interpreter.Scope {
	t.Helper()
	s := interpreter.NewScope(0)
	fns := []interpreter.Function{
		&testAccessor{Builtin: expanding("byte(address)"), size: requirements.FieldSizeByte},
		&testAccessor{Builtin: expanding("word(address)"), size: requirements.FieldSizeWord},
		&testOnce{Builtin: expanding("once(comparison)")},
		&testNever{Builtin: expanding("never(comparison)")},
	}
	for _, fn := range fns {
		require.NoError(t, s.AddFunction(fn))
	}
	return s
}

func evaluate(t *testing.T, source string) (ast.Expression, *interpreter.Scope) {
	t.Helper()
	script := parser.Parse("x = " + source)
	require.False(t, script.HasErrors(), "parse %q", source)
	s := newTestScope(t)
	if err := interpreter.Run(script, s); err != nil {
		require.FailNow(t, "evaluate failed", "%q: %s", source, err.Message)
	}
	e, ok := s.Lookup("x")
	require.True(t, ok)
	return e, s
}

func TestBuildTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "comparison", source: "byte(1) == 2", want: "0xH000001=2"},
		{name: "constant on left", source: "5 > byte(1)", want: "0xH000001<5"},
		{name: "two fields", source: "byte(1) > byte(2)", want: "0xH000001>0xH000002"},
		{name: "field plus constant", source: "byte(1) + 1 == byte(2)", want: "A:1_0xH000001=0xH000002"},
		{name: "sum", source: "byte(1) + byte(2) == 10", want: "A:0xH000001_0xH000002=10"},
		{name: "difference", source: "byte(1) - byte(2) > 5", want: "B:0xH000002_0xH000001>5"},
		{name: "scaled", source: "byte(1) * 2 == 8", want: "A:0xH000001*2_0=8"},
		{
			name:   "redistributed",
			source: "(byte(1) + byte(2)) * 3 == 9",
			want:   "A:0xH000001*3_A:0xH000002*3_0=9",
		},
		{name: "divided", source: "byte(1) / 2 == 3", want: "A:0xH000001/2_0=3"},
		{name: "float multiplier", source: "byte(1) * 1.5 == 3", want: "A:0xH000001*f1.5_0=3"},
		{name: "product", source: "byte(1) * byte(2) == 6", want: "A:0xH000001*0xH000002_0=6"},
		{name: "mask", source: "byte(1) & 0x0F == 3", want: "A:0xH000001&15_0=3"},
		{name: "pointer", source: "byte(word(0x10) + 4) == 1", want: "I:0x 000010_0xH000004=1"},
		{
			name:   "remembered product",
			source: "byte(1) * byte(2) * byte(3) == 1",
			want:   "K:0xH000001*0xH000002_A:{recall}*0xH000003_0=1",
		},
		{name: "true", source: "true", want: "1=1"},
		{name: "once", source: "once(byte(1) == 2)", want: "0xH000001=2.1."},
		{
			name:   "core and reset",
			source: "once(byte(1) == 1) && never(byte(2) == 2)",
			want:   "0xH000001=1.1._R:0xH000002=2",
		},
		{
			name:   "top level or",
			source: "byte(1) == 1 || byte(2) == 2",
			want:   "S0xH000001=1S0xH000002=2",
		},
		{
			name:   "core with alts",
			source: "byte(3) == 3 && (byte(1) == 1 || byte(2) == 2)",
			want:   "0xH000003=3S0xH000001=1S0xH000002=2",
		},
		{
			name:   "or chain",
			source: "once(byte(1) == 1 || byte(2) == 2)",
			want:   "O:0xH000001=1_0xH000002=2.1.",
		},
		{
			name:   "nested chain goes first",
			source: "once(byte(1) == 1 && (byte(2) == 2 || byte(3) == 3))",
			want:   "O:0xH000002=2_N:0xH000003=3_0xH000001=1.1.",
		},
		{
			name:   "negated and",
			source: "!(byte(1) == 1 && byte(2) == 2)",
			want:   "O:0xH000001!=1_0xH000002!=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, s := evaluate(t, tt.source)
			trigger, err := BuildTrigger(e, s, Options{})
			if err != nil {
				require.FailNow(t, "build failed", "%s", err.Message)
			}
			assert.Equal(t, tt.want, trigger.String())
		})
	}
}

func TestBuildTriggerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want   error
		name   string
		source string
	}{
		{name: "bare value", source: "byte(1)", want: ErrNotCondition},
		{name: "divide by zero", source: "byte(1) / 0 == 1", want: ErrDivideByZero},
		{name: "modulus by zero", source: "byte(1) % 0 == 1", want: ErrDivideByZero},
		{name: "negative pointer", source: "byte(word(0x10) - word(0x20)) == 1", want: ErrInvalidAddress},
		{name: "inverted value", source: "~byte(1) == 1", want: ErrNotValue},
		{name: "complex product", source: "(byte(1) + byte(2)) * (byte(3) + byte(4)) == 1", want: ErrNotValue},
		{name: "reset in chain", source: "once(byte(1) == 1 || never(byte(2) == 2))", want: ErrTooComplex},
		{
			name:   "two nested chains",
			source: "once((byte(1) == 1 || byte(2) == 2) && (byte(3) == 3 || byte(4) == 4))",
			want:   ErrTooComplex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, s := evaluate(t, tt.source)
			_, err := BuildTrigger(e, s, Options{})
			require.NotNil(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "field", source: "byte(1)", want: "M:0xH000001"},
		{name: "constant", source: "10", want: "M:10"},
		{name: "scaled with offset", source: "byte(1) * 2 + 5", want: "A:5_M:0xH000001*2"},
		{name: "difference", source: "byte(1) - byte(2)", want: "B:0xH000002_M:0xH000001"},
		{name: "negative total", source: "0 - byte(1)", want: "B:0xH000001_M:0"},
		{name: "comparison", source: "byte(1) == 5", want: "M:0xH000001=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, s := evaluate(t, tt.source)
			v, err := BuildValue(e, s, Options{})
			if err != nil {
				require.FailNow(t, "build failed", "%s", err.Message)
			}
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestBuildValueRequiresOneMeasured(t *testing.T) {
	t.Parallel()
	e, s := evaluate(t, "byte(1) == 1 && byte(2) == 2")
	_, err := BuildValue(e, s, Options{})
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrMeasuredCount)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	e, s := evaluate(t, "once(byte(1) == 1 || byte(2) == 2)")
	trigger, err := BuildTrigger(e, s, Options{})
	require.Nil(t, err)

	assert.Equal(t, []runtimever.Feature{runtimever.FeatureOrNext}, Features(trigger.Groups()...))
	require.NoError(t, Validate(trigger, runtimever.V0_78))

	verr := Validate(trigger, runtimever.V0_77)
	require.ErrorIs(t, verr, ErrUnsupportedFeature)
	assert.Contains(t, verr.Error(), "OrNext requires runtime version 0.78.0")
}

func TestValidateValueIgnoresMeasured(t *testing.T) {
	t.Parallel()

	e, s := evaluate(t, "byte(1) * byte(2) * byte(3)")
	v, err := BuildValue(e, s, Options{})
	require.Nil(t, err)

	assert.NoError(t, ValidateValue(v, runtimever.V1_3))
	assert.ErrorIs(t, ValidateValue(v, runtimever.V1_0), ErrUnsupportedFeature)
	assert.NoError(t, ValidateValue(&requirements.ValueDef{
		Groups: [][]requirements.Requirement{{{Type: requirements.RequirementTypeMeasured, Left: requirements.Value(1)}}},
	}, runtimever.V0_30))
}

func TestContextIsReachableFromScope(t *testing.T) {
	t.Parallel()

	s := newTestScope(t)
	_, ok := FromScope(s)
	assert.False(t, ok)

	c := newContext(s, Options{})
	got, ok := FromScope(c.Scope)
	require.True(t, ok)
	assert.Same(t, c, got)
}
