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
	"math"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
)

// Term is one field of a value, optionally combined with a modifier.
type Term struct {
	Field    requirements.Field
	Operand  requirements.Field
	Operator requirements.Operator
	Negative bool
	// Pointer is the AddAddress chain that must directly precede the
	// term's requirement.
	Pointer []requirements.Requirement
	// Setup holds Remember chains the term recalls. They are emitted at
	// the start of the chain, before any accumulation.
	Setup []requirements.Requirement
}

// FieldTerm returns a term reading f.
func FieldTerm(f requirements.Field) Term {
	return Term{Field: f}
}

func (t Term) plain() bool {
	return t.Operator == requirements.OperatorNone
}

func (t Term) requirement(typ requirements.RequirementType) requirements.Requirement {
	return requirements.Requirement{Type: typ, Left: t.Field, Operator: t.Operator, Right: t.Operand}
}

// Linear is a value written as a sum of terms plus a constant.
type Linear struct {
	Terms    []Term
	Constant float64
	// Float is set when the constant came from a float literal.
	Float bool
}

// Single returns a value made of one term.
func Single(t Term) Linear {
	return Linear{Terms: []Term{t}}
}

// IsConstant reports whether the value has no terms.
func (l Linear) IsConstant() bool {
	return len(l.Terms) == 0
}

func (l Linear) single() (Term, bool) {
	if len(l.Terms) == 1 && l.Constant == 0 {
		return l.Terms[0], true
	}
	return Term{}, false
}

func (l Linear) add(o Linear) Linear {
	out := Linear{
		Terms:    append(append([]Term(nil), l.Terms...), o.Terms...),
		Constant: l.Constant + o.Constant,
		Float:    l.Float || o.Float,
	}
	return out
}

func (l Linear) negate() Linear {
	out := Linear{Constant: -l.Constant, Float: l.Float}
	for _, t := range l.Terms {
		t.Negative = !t.Negative
		out.Terms = append(out.Terms, t)
	}
	return out
}

// number returns a constant field for v.
func number(v float64, isFloat bool) requirements.Field {
	if isFloat || v != math.Trunc(v) {
		return requirements.FloatValue(float32(v))
	}
	return requirements.Value(uint32(int64(v)))
}

func constantOf(f requirements.Field) float64 {
	if f.Type == requirements.FieldTypeFloat {
		return float64(f.Float)
	}
	return float64(f.Value)
}

// BuildLinear lowers a numeric expression. Constants fold, sums
// concatenate and multiplication by a constant distributes over the
// terms. Products that cannot be expressed with one modifier per term
// go through a Remember chain.
func (c *Context) BuildLinear(e ast.Expression) (Linear, *ast.ErrorExpression) {
	switch v := e.(type) {
	case *ast.IntegerConstant:
		return Linear{Constant: float64(v.Number())}, nil
	case *ast.FloatConstant:
		return Linear{Constant: v.Value, Float: true}, nil
	case *ast.Mathematic:
		return c.buildMathematic(v)
	case *ast.FunctionCall:
		fn, err := c.function(v)
		if err != nil {
			return Linear{}, err
		}
		vf, ok := fn.(ValueFunction)
		if !ok {
			return Linear{}, ast.ErrorFromf(ErrNotValue, e.Range(),
				"%s does not produce a value", v.Name.Name)
		}
		return vf.BuildValue(c, v)
	case *ast.BitwiseInvert:
		return Linear{}, ast.ErrorFromf(ErrNotValue, e.Range(), "cannot invert a memory value")
	default:
		return Linear{}, ast.ErrorFromf(ErrNotValue, e.Range(), "expected a value, got %s", ast.TypeName(e))
	}
}

func (c *Context) buildMathematic(m *ast.Mathematic) (Linear, *ast.ErrorExpression) {
	left, err := c.BuildLinear(m.Left)
	if err != nil {
		return Linear{}, err
	}
	right, err := c.BuildLinear(m.Right)
	if err != nil {
		return Linear{}, err
	}

	switch m.Operation {
	case ast.Add:
		return left.add(right), nil
	case ast.Subtract:
		return left.add(right.negate()), nil
	case ast.Multiply:
		switch {
		case right.IsConstant():
			return c.scale(left, right.Constant, right.Float)
		case left.IsConstant():
			return c.scale(right, left.Constant, left.Float)
		default:
			return c.combine(left, requirements.OperatorMultiply, right, m.Range())
		}
	case ast.Divide:
		if right.IsConstant() {
			return c.divide(left, right.Constant, right.Float, m.Right.Range())
		}
		return c.combine(left, requirements.OperatorDivide, right, m.Range())
	case ast.Modulus, ast.BitwiseAnd:
		op := requirements.OperatorModulus
		if m.Operation == ast.BitwiseAnd {
			op = requirements.OperatorBitwiseAnd
		}
		if right.IsConstant() {
			if right.Float || right.Constant < 0 {
				return Linear{}, ast.ErrorFromf(ErrNotValue, m.Right.Range(),
					"%s requires a positive integer", m.Operation)
			}
			if right.Constant == 0 && op == requirements.OperatorModulus {
				return Linear{}, ast.ErrorFrom(ErrDivideByZero, m.Right.Range())
			}
			right = Single(FieldTerm(number(right.Constant, false)))
		}
		return c.combine(left, op, right, m.Range())
	default:
		return Linear{}, ast.ErrorFromf(ErrNotValue, m.Range(), "unsupported operator %s", m.Operation)
	}
}

// scale multiplies every term by k.
func (c *Context) scale(l Linear, k float64, isFloat bool) (Linear, *ast.ErrorExpression) {
	if k == 0 {
		return Linear{Float: isFloat}, nil
	}
	out := Linear{Constant: l.Constant * k, Float: l.Float || (isFloat && l.Constant != 0)}
	for _, t := range l.Terms {
		if k < 0 {
			t.Negative = !t.Negative
		}
		nt, err := c.scaleTerm(t, math.Abs(k), isFloat)
		if err != nil {
			return Linear{}, err
		}
		out.Terms = append(out.Terms, nt)
	}
	return out, nil
}

func (c *Context) scaleTerm(t Term, k float64, isFloat bool) (Term, *ast.ErrorExpression) {
	if k == 1 {
		return t, nil
	}
	switch {
	case t.plain():
		t.Operator = requirements.OperatorMultiply
		t.Operand = number(k, isFloat)
		return t, nil
	case t.Operator == requirements.OperatorMultiply && t.Operand.IsConstant():
		product := constantOf(t.Operand) * k
		t.Operand = number(product, isFloat || t.Operand.Type == requirements.FieldTypeFloat)
		return t, nil
	case t.Operator == requirements.OperatorDivide && t.Operand.Type == requirements.FieldTypeValue && !isFloat:
		d := float64(t.Operand.Value)
		if math.Mod(k, d) == 0 {
			t.Operator = requirements.OperatorMultiply
			t.Operand = number(k/d, false)
		} else {
			t.Operator = requirements.OperatorMultiply
			t.Operand = requirements.FloatValue(float32(k / d))
		}
		return t, nil
	}
	recalled := c.rememberTerm(t)
	recalled.Operator = requirements.OperatorMultiply
	recalled.Operand = number(k, isFloat)
	return recalled, nil
}

// divide divides a value by the constant k.
func (c *Context) divide(l Linear, k float64, isFloat bool, r ast.TextRange) (Linear, *ast.ErrorExpression) {
	if k == 0 {
		return Linear{}, ast.ErrorFrom(ErrDivideByZero, r)
	}
	if isFloat {
		return c.scale(l, 1/k, true)
	}

	t, ok := l.single()
	if !ok {
		if l.IsConstant() {
			return Linear{Constant: math.Trunc(l.Constant / k), Float: l.Float}, nil
		}
		t = c.Remember(l)
	}
	if k < 0 {
		t.Negative = !t.Negative
		k = -k
	}

	switch {
	case t.plain():
		t.Operator = requirements.OperatorDivide
		t.Operand = number(k, false)
	case t.Operator == requirements.OperatorMultiply && t.Operand.Type == requirements.FieldTypeValue:
		m := float64(t.Operand.Value)
		switch {
		case math.Mod(m, k) == 0:
			t.Operand = number(m/k, false)
		case math.Mod(k, m) == 0:
			t.Operator = requirements.OperatorDivide
			t.Operand = number(k/m, false)
		default:
			t.Operand = requirements.FloatValue(float32(m / k))
		}
	case t.Operator == requirements.OperatorMultiply && t.Operand.Type == requirements.FieldTypeFloat:
		t.Operand = requirements.FloatValue(float32(float64(t.Operand.Float) / k))
	default:
		t = c.rememberTerm(t)
		t.Operator = requirements.OperatorDivide
		t.Operand = number(k, false)
	}
	return Single(t), nil
}

// combine joins two values with a modifier whose right side is a field.
// The right side must be a single field; a complex left side is
// remembered first.
func (c *Context) combine(left Linear, op requirements.Operator, right Linear, r ast.TextRange,
) (Linear, *ast.ErrorExpression) {
	if op == requirements.OperatorMultiply && !isOperand(right) && isOperand(left) {
		left, right = right, left
	}
	if !isOperand(right) {
		return Linear{}, ast.ErrorFromf(ErrNotValue, r, "cannot combine two complex values with %s", op)
	}
	rt := right.Terms[0]

	lt, ok := left.single()
	if !ok || !lt.plain() {
		lt = c.Remember(left)
	}
	if !sameRequirements(lt.Pointer, rt.Pointer) {
		return Linear{}, ast.ErrorFromf(ErrNotValue, r, "cannot combine values read through different pointers")
	}

	lt.Operator = op
	lt.Operand = rt.Field
	lt.Setup = append(lt.Setup, rt.Setup...)
	return Single(lt), nil
}

func isOperand(l Linear) bool {
	t, ok := l.single()
	return ok && t.plain() && !t.Negative
}

// Remember stores a value in a Remember chain and returns a term
// recalling it.
func (c *Context) Remember(l Linear) Term {
	chain := ValueChain(l, requirements.RequirementTypeRemember)
	return Term{Field: requirements.Recall(), Setup: chain}
}

// rememberTerm remembers the magnitude of t and keeps its sign on the
// recalling term.
func (c *Context) rememberTerm(t Term) Term {
	negative := t.Negative
	t.Negative = false
	recalled := c.Remember(Single(t))
	recalled.Negative = negative
	return recalled
}

// ValueChain emits a value as AddSource/SubSource requirements followed
// by a terminal requirement of type typ that receives the total.
func ValueChain(l Linear, typ requirements.RequirementType) []requirements.Requirement {
	terminal := -1
	for i := len(l.Terms) - 1; i >= 0; i-- {
		if !l.Terms[i].Negative {
			terminal = i
			break
		}
	}

	var reqs []requirements.Requirement
	for _, t := range l.Terms {
		reqs = append(reqs, t.Setup...)
	}
	for i, t := range l.Terms {
		if i == terminal {
			continue
		}
		kind := requirements.RequirementTypeAddSource
		if t.Negative {
			kind = requirements.RequirementTypeSubSource
		}
		reqs = append(reqs, t.Pointer...)
		reqs = append(reqs, t.requirement(kind))
	}

	switch {
	case terminal < 0 && l.Constant >= 0:
		reqs = append(reqs, requirements.Requirement{Type: typ, Left: number(l.Constant, l.Float)})
		return reqs
	case l.Constant > 0:
		reqs = append(reqs, requirements.Requirement{
			Type: requirements.RequirementTypeAddSource,
			Left: number(l.Constant, l.Float),
		})
	case l.Constant < 0:
		reqs = append(reqs, requirements.Requirement{
			Type: requirements.RequirementTypeSubSource,
			Left: number(-l.Constant, l.Float),
		})
	}

	if terminal < 0 {
		reqs = append(reqs, requirements.Requirement{Type: typ, Left: requirements.Value(0)})
		return reqs
	}
	t := l.Terms[terminal]
	reqs = append(reqs, t.Pointer...)
	reqs = append(reqs, t.requirement(typ))
	return reqs
}

// BuildAddress lowers the address of a memory accessor. A constant gives
// a plain address; a value read from memory plus a constant offset gives
// an AddAddress chain.
func (c *Context) BuildAddress(e ast.Expression) (address uint32, pointer []requirements.Requirement, setup []requirements.Requirement, err *ast.ErrorExpression) {
	if v, ok := e.(*ast.IntegerConstant); ok {
		return v.Unsigned(), nil, nil, nil
	}

	l, err := c.BuildLinear(e)
	if err != nil {
		return 0, nil, nil, err
	}
	if l.Float || l.Constant < 0 || l.Constant > math.MaxUint32 {
		return 0, nil, nil, ast.ErrorFromf(ErrInvalidAddress, e.Range(), "invalid address: %s", e)
	}
	if l.IsConstant() {
		return uint32(l.Constant), nil, nil, nil
	}
	if len(l.Terms) != 1 || l.Terms[0].Negative {
		return 0, nil, nil, ast.ErrorFromf(ErrInvalidAddress, e.Range(),
			"pointer must be a single memory value plus an offset: %s", e)
	}

	t := l.Terms[0]
	pointer = append(pointer, t.Pointer...)
	pointer = append(pointer, t.requirement(requirements.RequirementTypeAddAddress))
	return uint32(l.Constant), pointer, t.Setup, nil
}

// MemoryTerm returns the term for a memory accessor call whose first
// parameter is the address.
func (c *Context) MemoryTerm(size requirements.FieldSize, addr ast.Expression) (Term, *ast.ErrorExpression) {
	address, pointer, setup, err := c.BuildAddress(addr)
	if err != nil {
		return Term{}, err
	}
	return Term{Field: requirements.Memory(size, address), Pointer: pointer, Setup: setup}, nil
}

// Transform applies fn to every memory field of the value, as prev() and
// bcd() do. Constants in the value are an error.
func (c *Context) Transform(call *ast.FunctionCall, l Linear,
	fn func(requirements.Field) requirements.Field,
) (Linear, *ast.ErrorExpression) {
	if l.Constant != 0 {
		return Linear{}, ast.ErrorFromf(interpreter.ErrInvalidParameter, call.Range(),
			"%s requires a memory value", call.Name.Name)
	}
	out := Linear{Float: l.Float}
	for _, t := range l.Terms {
		if !t.Field.IsMemoryReference() {
			return Linear{}, ast.ErrorFromf(interpreter.ErrInvalidParameter, call.Range(),
				"%s requires a memory value", call.Name.Name)
		}
		t.Field = fn(t.Field)
		if t.Operand.IsMemoryReference() {
			t.Operand = fn(t.Operand)
		}
		out.Terms = append(out.Terms, t)
	}
	return out, nil
}

func sameRequirements(a, b []requirements.Requirement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var sizeFeatures = map[requirements.FieldSize]runtimever.Feature{
	requirements.FieldSizeBitCount:       runtimever.FeatureBitCount,
	requirements.FieldSizeBigEndianWord:  runtimever.FeatureBigEndian,
	requirements.FieldSizeBigEndianTByte: runtimever.FeatureBigEndian,
	requirements.FieldSizeBigEndianDWord: runtimever.FeatureBigEndian,
	requirements.FieldSizeFloat:          runtimever.FeatureFloat,
	requirements.FieldSizeBigEndianFloat: runtimever.FeatureFloat,
}
