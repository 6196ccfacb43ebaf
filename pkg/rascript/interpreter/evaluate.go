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
	"fmt"
	"math"
	"strconv"

	"github.com/ZaparooProject/rascript/pkg/helpers"
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
)

// Evaluate reduces e in s. The result is a constant, a container, a
// function reference, or a tree of comparisons and expanded builtin calls
// that depends on memory.
func Evaluate(e ast.Expression, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	switch v := e.(type) {
	case nil:
		return nil, ast.NewError("missing expression", ast.TextRange{})
	case *ast.IntegerConstant, *ast.FloatConstant, *ast.BooleanConstant, *ast.StringConstant,
		*ast.FunctionReference:
		return e, nil
	case *ast.ErrorExpression:
		return nil, v
	case *ast.Variable:
		return evaluateVariable(v, s)
	case *ast.Assignment:
		return evaluateAssignment(v, s)
	case *ast.Mathematic:
		return evaluateMathematic(v, s)
	case *ast.Comparison:
		return evaluateComparison(v, s)
	case *ast.Conditional:
		return evaluateConditional(v, s)
	case *ast.BitwiseInvert:
		return evaluateInvert(v, s)
	case *ast.Array:
		return evaluateArray(v, s)
	case *ast.Dictionary:
		return evaluateDictionary(v, s)
	case *ast.Index:
		return evaluateIndex(v, s)
	case *ast.FunctionCall:
		return evaluateCall(v, s, true)
	case *ast.FunctionDefinition:
		if v.IsAnonymous() {
			return defineAnonymous(v, s), nil
		}
		if err := defineFunction(v, s); err != nil {
			return nil, err
		}
		return ast.NewFunctionReference(v.NameString(), v.Name.Range()), nil
	default:
		return nil, ast.ErrorFromf(ErrUnsupportedOperand, e.Range(),
			"%s cannot be used as a value", ast.TypeName(e))
	}
}

func evaluateVariable(v *ast.Variable, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	if value, ok := s.Lookup(v.Name); ok {
		return ast.At(value, v.Range()), nil
	}
	if _, ok := s.Function(v.Name); ok {
		return ast.NewFunctionReference(v.Name, v.Range()), nil
	}
	candidates := append(s.VariableNames(), s.FunctionNames()...)
	return nil, unknownName(ErrUnknownVariable, "variable", v.Name, v.Range(), candidates)
}

func unknownName(sentinel error, kind, name string, r ast.TextRange, candidates []string) *ast.ErrorExpression {
	if alt, ok := helpers.DidYouMean(name, candidates); ok {
		return ast.ErrorFromf(sentinel, r, "unknown %s: %s (did you mean %s?)", kind, name, alt)
	}
	return ast.ErrorFromf(sentinel, r, "unknown %s: %s", kind, name)
}

func evaluateAssignment(a *ast.Assignment, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	value, err := Evaluate(a.Value, s)
	if err != nil {
		return nil, err
	}

	switch target := a.Target.(type) {
	case *ast.VariableDefinition:
		if _, ok := s.Function(target.Name); ok {
			if _, isVar := s.Lookup(target.Name); !isVar {
				return nil, ast.ErrorFromf(ErrNotAssignable, target.Range(),
					"%s is a function and cannot be assigned", target.Name)
			}
		}
		s.Assign(target.Name, value)
	case *ast.Index:
		if err := assignIndex(target, value, s); err != nil {
			return nil, err
		}
	default:
		return nil, ast.ErrorFromf(ErrNotAssignable, a.Target.Range(),
			"cannot assign to %s", ast.TypeName(a.Target))
	}

	return value, nil
}

func assignIndex(target *ast.Index, value ast.Expression, s *Scope) *ast.ErrorExpression {
	container, err := Evaluate(target.Target, s)
	if err != nil {
		return err
	}
	key, err := Evaluate(target.Index, s)
	if err != nil {
		return err
	}

	switch c := container.(type) {
	case *ast.Array:
		i, err := arrayIndex(c, key)
		if err != nil {
			return err
		}
		c.Entries[i] = value
	case *ast.Dictionary:
		if err := checkKey(key); err != nil {
			return err
		}
		c.Set(key, value)
	default:
		return ast.ErrorFromf(ErrTypeMismatch, target.Target.Range(),
			"cannot index %s", ast.TypeName(container))
	}
	return nil
}

func arrayIndex(a *ast.Array, key ast.Expression) (int, *ast.ErrorExpression) {
	i, ok := key.(*ast.IntegerConstant)
	if !ok {
		return 0, ast.ErrorFromf(ErrTypeMismatch, key.Range(),
			"array index must be an integer, got %s", ast.TypeName(key))
	}
	if i.Value < 0 || int(i.Value) >= len(a.Entries) {
		return 0, ast.ErrorFromf(ErrIndexOutOfRange, key.Range(),
			"index %d not in range 0-%d", i.Value, len(a.Entries)-1)
	}
	return int(i.Value), nil
}

func checkKey(key ast.Expression) *ast.ErrorExpression {
	switch key.(type) {
	case *ast.IntegerConstant, *ast.StringConstant:
		return nil
	default:
		return ast.ErrorFromf(ErrTypeMismatch, key.Range(),
			"dictionary key must be an integer or string, got %s", ast.TypeName(key))
	}
}

func evaluateIndex(e *ast.Index, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	container, err := Evaluate(e.Target, s)
	if err != nil {
		return nil, err
	}
	key, err := Evaluate(e.Index, s)
	if err != nil {
		return nil, err
	}

	switch c := container.(type) {
	case *ast.Array:
		i, err := arrayIndex(c, key)
		if err != nil {
			return nil, err
		}
		return ast.At(c.Entries[i], e.Range()), nil
	case *ast.Dictionary:
		if err := checkKey(key); err != nil {
			return nil, err
		}
		v, ok := c.Lookup(key)
		if !ok {
			return nil, ast.ErrorFromf(ErrIndexOutOfRange, key.Range(),
				"no entry in dictionary for key: %s", key)
		}
		return ast.At(v, e.Range()), nil
	default:
		return nil, ast.ErrorFromf(ErrTypeMismatch, e.Target.Range(),
			"cannot index %s", ast.TypeName(container))
	}
}

func evaluateArray(a *ast.Array, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	entries := make([]ast.Expression, 0, len(a.Entries))
	for _, entry := range a.Entries {
		v, err := Evaluate(entry, s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return ast.NewArray(entries, a.Range()), nil
}

func evaluateDictionary(d *ast.Dictionary, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	out := ast.NewDictionary(make([]ast.DictionaryEntry, 0, len(d.Entries)), d.Range())
	for _, entry := range d.Entries {
		key, err := Evaluate(entry.Key, s)
		if err != nil {
			return nil, err
		}
		if err := checkKey(key); err != nil {
			return nil, err
		}
		if _, exists := out.Lookup(key); exists {
			return nil, ast.ErrorFromf(ErrInvalidParameter, key.Range(), "duplicate key: %s", key)
		}
		value, err := Evaluate(entry.Value, s)
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, ast.DictionaryEntry{Key: key, Value: value})
	}
	return out, nil
}

// arithmetic reports whether e may appear as an operand of an arithmetic
// operator.
func arithmetic(e ast.Expression) bool {
	switch e.(type) {
	case *ast.IntegerConstant, *ast.FloatConstant, *ast.StringConstant,
		*ast.FunctionCall, *ast.Mathematic, *ast.BitwiseInvert:
		return true
	default:
		return false
	}
}

func evaluateMathematic(m *ast.Mathematic, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	left, err := Evaluate(m.Left, s)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(m.Right, s)
	if err != nil {
		return nil, err
	}

	for _, operand := range []ast.Expression{left, right} {
		if !arithmetic(operand) {
			return nil, ast.ErrorFromf(ErrUnsupportedOperand, operand.Range(),
				"cannot perform arithmetic on %s", ast.TypeName(operand))
		}
	}

	if folded, ok, err := Fold(left, m.Operation, right, m.Range()); err != nil || ok {
		return folded, err
	}

	if isString(left) || isString(right) {
		return nil, ast.ErrorFromf(ErrUnsupportedOperand, m.Range(),
			"cannot combine string with %s", ast.TypeName(nonString(left, right)))
	}

	out := ast.NewMathematic(left, m.Operation, right)
	out.SetRange(m.Range())
	out.SetLogicalUnit(m.IsLogicalUnit())
	return out, nil
}

func isString(e ast.Expression) bool {
	_, ok := e.(*ast.StringConstant)
	return ok
}

func nonString(a, b ast.Expression) ast.Expression {
	if isString(a) {
		return b
	}
	return a
}

// Fold computes op on two constants. It reports false when either operand
// is not a constant.
func Fold(left ast.Expression, op ast.MathematicOperation, right ast.Expression, r ast.TextRange,
) (ast.Expression, bool, *ast.ErrorExpression) {
	if !ast.IsConstant(left) || !ast.IsConstant(right) {
		return nil, false, nil
	}

	if isString(left) || isString(right) {
		if op != ast.Add {
			return nil, true, ast.ErrorFromf(ErrUnsupportedOperand, r,
				"cannot apply %s to a string", op)
		}
		return ast.NewString(constantText(left)+constantText(right), r), true, nil
	}

	li, lok := left.(*ast.IntegerConstant)
	ri, rok := right.(*ast.IntegerConstant)
	if lok && rok && (li.IsUnsigned || ri.IsUnsigned) {
		v, err := foldUnsigned(li.Unsigned(), op, ri.Unsigned(), right.Range())
		if err != nil {
			return nil, true, err
		}
		return ast.NewUnsigned(v, r), true, nil
	}
	if lok && rok {
		v, err := foldInteger(li.Value, op, ri.Value, right.Range())
		if err != nil {
			return nil, true, err
		}
		return ast.NewInteger(v, r), true, nil
	}

	lf, lok := numeric(left)
	rf, rok := numeric(right)
	if !lok || !rok {
		return nil, true, ast.ErrorFromf(ErrUnsupportedOperand, r,
			"cannot perform arithmetic on %s and %s", ast.TypeName(left), ast.TypeName(right))
	}
	v, err := foldFloat(lf, op, rf, right.Range())
	if err != nil {
		return nil, true, err
	}
	return ast.NewFloat(v, r), true, nil
}

func constantText(e ast.Expression) string {
	switch v := e.(type) {
	case *ast.StringConstant:
		return v.Value
	case *ast.IntegerConstant:
		return strconv.FormatInt(v.Number(), 10)
	default:
		return e.String()
	}
}

func numeric(e ast.Expression) (float64, bool) {
	switch v := e.(type) {
	case *ast.IntegerConstant:
		return float64(v.Number()), true
	case *ast.FloatConstant:
		return v.Value, true
	default:
		return 0, false
	}
}

func foldInteger(l int32, op ast.MathematicOperation, r int32, at ast.TextRange) (int32, *ast.ErrorExpression) {
	switch op {
	case ast.Add:
		return l + r, nil
	case ast.Subtract:
		return l - r, nil
	case ast.Multiply:
		return l * r, nil
	case ast.Divide:
		if r == 0 {
			return 0, ast.ErrorFrom(ErrDivideByZero, at)
		}
		return l / r, nil
	case ast.Modulus:
		if r == 0 {
			return 0, ast.ErrorFrom(ErrDivideByZero, at)
		}
		return l % r, nil
	case ast.BitwiseAnd:
		return l & r, nil
	default:
		return 0, ast.ErrorFromf(ErrUnsupportedOperand, at, "unknown operator %s", op)
	}
}

// foldUnsigned works on bit patterns, as the runtime does for values
// above the signed range.
func foldUnsigned(l uint32, op ast.MathematicOperation, r uint32, at ast.TextRange) (uint32, *ast.ErrorExpression) {
	switch op {
	case ast.Add:
		return l + r, nil
	case ast.Subtract:
		return l - r, nil
	case ast.Multiply:
		return l * r, nil
	case ast.Divide:
		if r == 0 {
			return 0, ast.ErrorFrom(ErrDivideByZero, at)
		}
		return l / r, nil
	case ast.Modulus:
		if r == 0 {
			return 0, ast.ErrorFrom(ErrDivideByZero, at)
		}
		return l % r, nil
	case ast.BitwiseAnd:
		return l & r, nil
	default:
		return 0, ast.ErrorFromf(ErrUnsupportedOperand, at, "unknown operator %s", op)
	}
}

func foldFloat(l float64, op ast.MathematicOperation, r float64, at ast.TextRange) (float64, *ast.ErrorExpression) {
	switch op {
	case ast.Add:
		return l + r, nil
	case ast.Subtract:
		return l - r, nil
	case ast.Multiply:
		return l * r, nil
	case ast.Divide:
		if r == 0 {
			return 0, ast.ErrorFrom(ErrDivideByZero, at)
		}
		return l / r, nil
	case ast.Modulus:
		if r == 0 {
			return 0, ast.ErrorFrom(ErrDivideByZero, at)
		}
		return math.Mod(l, r), nil
	default:
		return 0, ast.ErrorFromf(ErrUnsupportedOperand, at, "cannot apply %s to a float", op)
	}
}

// isComparable reports whether e may appear as an operand of a comparison.
func isComparable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.IntegerConstant, *ast.FloatConstant, *ast.StringConstant, *ast.BooleanConstant,
		*ast.FunctionCall, *ast.Mathematic, *ast.BitwiseInvert:
		return true
	default:
		return false
	}
}

func evaluateComparison(c *ast.Comparison, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	left, err := Evaluate(c.Left, s)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(c.Right, s)
	if err != nil {
		return nil, err
	}

	for _, operand := range []ast.Expression{left, right} {
		if !isComparable(operand) {
			return nil, ast.ErrorFromf(ErrUnsupportedOperand, operand.Range(),
				"cannot compare %s", ast.TypeName(operand))
		}
	}

	if ast.IsConstant(left) && ast.IsConstant(right) {
		v, err := compareConstants(left, c.Operation, right, c.Range())
		if err != nil {
			return nil, err
		}
		return ast.NewBoolean(v, c.Range()), nil
	}

	out := ast.NewComparison(left, c.Operation, right)
	out.SetRange(c.Range())
	out.SetLogicalUnit(c.IsLogicalUnit())
	return out, nil
}

func compareConstants(left ast.Expression, op ast.ComparisonOperation, right ast.Expression,
	r ast.TextRange,
) (bool, *ast.ErrorExpression) {
	if li, ok := left.(*ast.IntegerConstant); ok {
		if ri, ok := right.(*ast.IntegerConstant); ok {
			return compareOrdered(li.Number(), op, ri.Number()), nil
		}
	}
	if lf, ok := numeric(left); ok {
		if rf, ok := numeric(right); ok {
			return compareOrdered(lf, op, rf), nil
		}
	}
	if ls, ok := left.(*ast.StringConstant); ok {
		if rs, ok := right.(*ast.StringConstant); ok {
			return compareOrdered(ls.Value, op, rs.Value), nil
		}
	}
	if lb, ok := left.(*ast.BooleanConstant); ok {
		if rb, ok := right.(*ast.BooleanConstant); ok {
			switch op {
			case ast.ComparisonEqual:
				return lb.Value == rb.Value, nil
			case ast.ComparisonNotEqual:
				return lb.Value != rb.Value, nil
			}
			return false, ast.ErrorFromf(ErrUnsupportedOperand, r, "cannot apply %s to booleans", op)
		}
	}
	return false, ast.ErrorFromf(ErrTypeMismatch, r,
		"cannot compare %s and %s", ast.TypeName(left), ast.TypeName(right))
}

func compareOrdered[T int64 | float64 | string](l T, op ast.ComparisonOperation, r T) bool {
	switch op {
	case ast.ComparisonEqual:
		return l == r
	case ast.ComparisonNotEqual:
		return l != r
	case ast.ComparisonLessThan:
		return l < r
	case ast.ComparisonLessThanOrEqual:
		return l <= r
	case ast.ComparisonGreaterThan:
		return l > r
	default:
		return l >= r
	}
}

// condition reports whether e may appear as an operand of a logical
// operator.
func condition(e ast.Expression) bool {
	switch e.(type) {
	case *ast.BooleanConstant, *ast.Comparison, *ast.Conditional, *ast.FunctionCall:
		return true
	default:
		return false
	}
}

func evaluateConditional(c *ast.Conditional, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	if c.Operation == ast.Not {
		if len(c.Conditions) != 1 {
			return nil, ast.NewError("! requires a single condition", c.Range())
		}
		v, err := Evaluate(c.Conditions[0], s)
		if err != nil {
			return nil, err
		}
		if !condition(v) {
			return nil, ast.ErrorFromf(ErrTypeMismatch, v.Range(),
				"expected a condition, got %s", ast.TypeName(v))
		}
		if b, ok := v.(*ast.BooleanConstant); ok {
			return ast.NewBoolean(!b.Value, c.Range()), nil
		}
		out := ast.NewConditional(ast.Not, v)
		out.SetRange(c.Range())
		out.SetLogicalUnit(c.IsLogicalUnit())
		return out, nil
	}

	// true is the identity of And, false of Or
	identity := c.Operation == ast.And
	kept := make([]ast.Expression, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		v, err := Evaluate(cond, s)
		if err != nil {
			return nil, err
		}
		if !condition(v) {
			return nil, ast.ErrorFromf(ErrTypeMismatch, v.Range(),
				"expected a condition, got %s", ast.TypeName(v))
		}
		if b, ok := v.(*ast.BooleanConstant); ok {
			if b.Value != identity {
				return ast.NewBoolean(b.Value, c.Range()), nil
			}
			continue
		}
		kept = append(kept, v)
	}

	switch len(kept) {
	case 0:
		return ast.NewBoolean(identity, c.Range()), nil
	case 1:
		return kept[0], nil
	}

	out := ast.NewConditional(c.Operation, kept...)
	out.SetRange(c.Range())
	out.SetLogicalUnit(c.IsLogicalUnit())
	return out, nil
}

func evaluateInvert(b *ast.BitwiseInvert, s *Scope) (ast.Expression, *ast.ErrorExpression) {
	v, err := Evaluate(b.Value, s)
	if err != nil {
		return nil, err
	}
	switch value := v.(type) {
	case *ast.IntegerConstant:
		if value.IsUnsigned {
			return ast.NewUnsigned(^value.Unsigned(), b.Range()), nil
		}
		return ast.NewInteger(^value.Value, b.Range()), nil
	case *ast.FunctionCall, *ast.Mathematic:
		out := ast.NewBitwiseInvert(v, b.Range())
		out.SetLogicalUnit(b.IsLogicalUnit())
		return out, nil
	default:
		return nil, ast.ErrorFromf(ErrUnsupportedOperand, v.Range(),
			"cannot invert %s", ast.TypeName(v))
	}
}

func evaluateCall(call *ast.FunctionCall, s *Scope, needValue bool) (ast.Expression, *ast.ErrorExpression) {
	if call.IsExpanded() {
		return call, nil
	}
	fn, err := lookupCallable(call, s)
	if err != nil {
		return nil, err
	}
	return callFunction(fn, call, s, false, needValue)
}

func lookupCallable(call *ast.FunctionCall, s *Scope) (Function, *ast.ErrorExpression) {
	name := call.Name.Name
	if v, ok := s.Lookup(name); ok {
		ref, ok := v.(*ast.FunctionReference)
		if !ok {
			return nil, ast.ErrorFromf(ErrNotCallable, call.Name.Range(),
				"%s is %s, not a function", name, article(ast.TypeName(v)))
		}
		fn, ok := s.Function(ref.Name)
		if !ok {
			return nil, ast.ErrorFromf(ErrUnknownFunction, call.Name.Range(), "unknown function: %s", ref.Name)
		}
		return fn, nil
	}
	if fn, ok := s.Function(name); ok {
		return fn, nil
	}
	return nil, unknownName(ErrUnknownFunction, "function", name, call.Name.Range(), s.FunctionNames())
}

func article(noun string) string {
	switch noun[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + noun
	default:
		return "a " + noun
	}
}

func defineFunction(def *ast.FunctionDefinition, s *Scope) *ast.ErrorExpression {
	name := def.NameString()
	if s.inFunction() {
		return ast.ErrorFromf(ErrDuplicateFunction, def.Name.Range(),
			"function %s must be defined outside of other functions", name)
	}
	if err := s.AddFunction(&userFunction{def: def}); err != nil {
		return ast.ErrorFromf(ErrDuplicateFunction, def.Name.Range(), "function %s is already defined", name)
	}
	return nil
}

// defineAnonymous registers an anonymous function and returns a reference
// to it. Outer locals the body uses are copied into the definition, so
// the function keeps seeing the values they had when it was created.
func defineAnonymous(def *ast.FunctionDefinition, s *Scope) ast.Expression {
	root := s.Root()
	r := def.Range()
	name := fmt.Sprintf("%s%d:%d", anonymousPrefix, r.Start.Line, r.Start.Column)
	if _, exists := root.functions[name]; exists {
		s.shared.anonymous++
		name = fmt.Sprintf("%s#%d", name, s.shared.anonymous)
	}

	fn, ok := ast.ShallowCopy(def).(*ast.FunctionDefinition)
	if !ok {
		return ast.NewError("invalid function definition", r)
	}
	fn.Name = ast.NewVariableDefinition(name, r)
	fn.Captured = captures(def, s)

	root.functions[name] = &userFunction{def: fn}
	return ast.NewFunctionReference(name, r)
}

func captures(def *ast.FunctionDefinition, s *Scope) map[string]ast.Expression {
	params := make(map[string]bool, len(def.Parameters))
	for _, p := range def.Parameters {
		params[p.Name] = true
	}

	var out map[string]ast.Expression
	for k, v := range def.Captured {
		if out == nil {
			out = make(map[string]ast.Expression)
		}
		out[k] = v
	}

	root := s.Root()
	ast.Walk(def, func(e ast.Expression) bool {
		v, ok := e.(*ast.Variable)
		if !ok || params[v.Name] {
			return true
		}
		for c := s; c != nil && c != root; c = c.parent {
			if value, ok := c.variables[v.Name]; ok {
				if out == nil {
					out = make(map[string]ast.Expression)
				}
				out[v.Name] = value
				break
			}
		}
		return true
	})
	return out
}
