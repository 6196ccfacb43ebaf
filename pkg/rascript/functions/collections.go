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

package functions

import (
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/builder"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
)

func length(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	r := s.Call().Range()
	switch v := s.Get("object").(type) {
	case *ast.StringConstant:
		return ast.NewInteger(int32(len([]rune(v.Value))), r), nil
	case *ast.Array:
		return ast.NewInteger(int32(len(v.Entries)), r), nil
	case *ast.Dictionary:
		return ast.NewInteger(int32(len(v.Entries)), r), nil
	default:
		return nil, ast.ErrorFromf(interpreter.ErrTypeMismatch, s.Location("object"),
			"object: expected string, array or dictionary, got %s", ast.TypeName(v))
	}
}

// rangeOf returns the integers from start to stop inclusive.
func rangeOf(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	start, err := s.Integer("start")
	if err != nil {
		return nil, err
	}
	stop, err := s.Integer("stop")
	if err != nil {
		return nil, err
	}
	step, err := s.Integer("step")
	if err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, ast.ErrorFromf(interpreter.ErrInvalidParameter, s.Location("step"), "step must not be zero")
	}

	count := (int64(stop)-int64(start))/int64(step) + 1
	if count > maxRangeEntries {
		return nil, ast.ErrorFromf(ErrRangeTooLarge, s.Call().Range(),
			"range produces %d entries, the limit is %d", count, maxRangeEntries)
	}

	r := s.Call().Range()
	var entries []ast.Expression
	for i := int64(start); (step > 0 && i <= int64(stop)) || (step < 0 && i >= int64(stop)); i += int64(step) {
		entries = append(entries, ast.NewInteger(int32(i), r))
	}
	return ast.NewArray(entries, r), nil
}

func arrayPush(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	a, err := s.Array("array")
	if err != nil {
		return nil, err
	}
	a.Entries = append(a.Entries, s.Get("value"))
	return nil, nil
}

func arrayPop(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	a, err := s.Array("array")
	if err != nil {
		return nil, err
	}
	if len(a.Entries) == 0 {
		return nil, ast.ErrorFrom(ErrEmptyArray, s.Location("array"))
	}
	last := a.Entries[len(a.Entries)-1]
	a.Entries = a.Entries[:len(a.Entries)-1]
	return last, nil
}

// items returns the entries of an array or the keys of a dictionary.
func items(s *interpreter.Scope, name string) ([]ast.Expression, *ast.ErrorExpression) {
	switch v := s.Get(name).(type) {
	case *ast.Array:
		return append([]ast.Expression(nil), v.Entries...), nil
	case *ast.Dictionary:
		keys := make([]ast.Expression, 0, len(v.Entries))
		for _, entry := range v.Entries {
			keys = append(keys, entry.Key)
		}
		return keys, nil
	default:
		return nil, ast.ErrorFromf(interpreter.ErrTypeMismatch, s.Location(name),
			"%s: expected array or dictionary, got %s", name, ast.TypeName(v))
	}
}

// mapItems calls the predicate parameter for every item of inputs.
func mapItems(s *interpreter.Scope) ([]ast.Expression, *ast.ErrorExpression) {
	inputs, err := items(s, "inputs")
	if err != nil {
		return nil, err
	}
	fn, err := s.FunctionParam("predicate")
	if err != nil {
		return nil, err
	}

	r := s.Call().Range()
	out := make([]ast.Expression, 0, len(inputs))
	for _, item := range inputs {
		v, err := interpreter.CallFunction(fn, []ast.Expression{item}, s, r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func arrayMap(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	out, err := mapItems(s)
	if err != nil {
		return nil, err
	}
	return ast.NewArray(out, s.Call().Range()), nil
}

func arrayFilter(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	inputs, err := items(s, "inputs")
	if err != nil {
		return nil, err
	}
	results, err := mapItems(s)
	if err != nil {
		return nil, err
	}

	var out []ast.Expression
	for i, v := range results {
		keep, ok := v.(*ast.BooleanConstant)
		if !ok {
			return nil, ast.ErrorFromf(interpreter.ErrTypeMismatch, s.Location("predicate"),
				"predicate did not return a boolean, got %s", ast.TypeName(v))
		}
		if keep.Value {
			out = append(out, inputs[i])
		}
	}
	return ast.NewArray(out, s.Call().Range()), nil
}

func arrayReduce(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	inputs, err := items(s, "inputs")
	if err != nil {
		return nil, err
	}
	fn, err := s.FunctionParam("reducer")
	if err != nil {
		return nil, err
	}

	acc := s.Get("initial")
	for _, item := range inputs {
		acc, err = interpreter.CallFunction(fn, []ast.Expression{acc, item}, s, s.Call().Range())
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// joinResults folds the predicate results with a logical operator.
func joinResults(s *interpreter.Scope, op ast.ConditionalOperation, empty bool, negate bool,
) (ast.Expression, *ast.ErrorExpression) {
	results, err := mapItems(s)
	if err != nil {
		return nil, err
	}
	r := s.Call().Range()
	if len(results) == 0 {
		return ast.NewBoolean(empty, r), nil
	}
	if negate {
		for i, v := range results {
			results[i] = ast.NewConditional(ast.Not, v)
		}
	}
	joined := ast.NewConditional(op, results...)
	joined.SetRange(r)
	return interpreter.Evaluate(joined, s)
}

func anyOf(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	return joinResults(s, ast.Or, false, false)
}

func allOf(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	return joinResults(s, ast.And, true, false)
}

func noneOf(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	return joinResults(s, ast.And, true, true)
}

func sumOf(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	results, err := mapItems(s)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return ast.NewInteger(0, s.Call().Range()), nil
	}
	sum := results[0]
	for _, v := range results[1:] {
		sum = ast.NewMathematic(sum, ast.Add, v)
	}
	return interpreter.Evaluate(sum, s)
}

func containsKey(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	d, err := s.Dictionary("dictionary")
	if err != nil {
		return nil, err
	}
	_, ok := d.Lookup(s.Get("key"))
	return ast.NewBoolean(ok, s.Call().Range()), nil
}

// maxOf folds constant arguments and otherwise stays a call, which
// lowers into one value group per argument.
type maxOf struct {
	*interpreter.Builtin
}

func newMaxOf() *maxOf {
	m := &maxOf{}
	m.Builtin = interpreter.NewBuiltin("max_of(values...)", func(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
		values, err := s.Array("values")
		if err != nil {
			return nil, err
		}
		if len(values.Entries) == 0 {
			return nil, ast.ErrorFromf(interpreter.ErrInvalidParameter, s.Call().Range(),
				"max_of requires at least one value")
		}

		var best *ast.IntegerConstant
		for _, v := range values.Entries {
			n, ok := v.(*ast.IntegerConstant)
			if !ok {
				return interpreter.Expand(s, m.Def), nil
			}
			if best == nil || n.Number() > best.Number() {
				best = n
			}
		}
		return ast.At(best, s.Call().Range()), nil
	})
	return m
}

func (m *maxOf) ValueGroups(call *ast.FunctionCall) []ast.Expression {
	values := call.Parameters[0].(*ast.Array).Entries
	if len(values) == 1 {
		if inner, ok := values[0].(*ast.Array); ok {
			return inner.Entries
		}
	}
	return values
}

var _ builder.ValueGroupFunction = (*maxOf)(nil)
