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

package ast

// Children returns the direct child nodes of e in source order.
func Children(e Expression) []Expression {
	switch v := e.(type) {
	case *FunctionCall:
		return v.Parameters
	case *FunctionDefinition:
		out := make([]Expression, 0, len(v.Defaults)+len(v.Body))
		for _, p := range v.Parameters {
			if d, ok := v.Defaults[p.Name]; ok {
				out = append(out, d)
			}
		}
		return append(out, v.Body...)
	case *Assignment:
		return []Expression{v.Target, v.Value}
	case *Mathematic:
		return []Expression{v.Left, v.Right}
	case *Comparison:
		return []Expression{v.Left, v.Right}
	case *Conditional:
		return v.Conditions
	case *BitwiseInvert:
		return []Expression{v.Value}
	case *Array:
		return v.Entries
	case *Dictionary:
		out := make([]Expression, 0, len(v.Entries)*2)
		for _, entry := range v.Entries {
			out = append(out, entry.Key, entry.Value)
		}
		return out
	case *Index:
		return []Expression{v.Target, v.Index}
	case *If:
		out := append([]Expression{v.Condition}, v.Then...)
		return append(out, v.Else...)
	case *For:
		out := []Expression{v.Iterator, v.Iterable}
		return append(out, v.Body...)
	case *Return:
		if v.Value == nil {
			return nil
		}
		return []Expression{v.Value}
	default:
		return nil
	}
}

// Walk calls fn for e and, while fn returns true, for each descendant in
// depth-first order.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Resolver returns the value to substitute for a variable, if any.
type Resolver func(v *Variable) (Expression, bool)

// ReplaceVariables returns a copy of e in which every variable the
// resolver knows is replaced by its value. Unchanged subtrees are shared
// with e, and e itself is never modified. The second result reports
// whether anything was replaced.
func ReplaceVariables(e Expression, resolve Resolver) (Expression, bool) {
	if e == nil {
		return nil, false
	}

	switch v := e.(type) {
	case *Variable:
		if value, ok := resolve(v); ok {
			return value, true
		}
		return e, false

	case *FunctionCall:
		params, changed := replaceList(v.Parameters, resolve)
		if !changed {
			return e, false
		}
		c := *v
		c.Parameters = params
		c.expanded = false
		return &c, true

	case *FunctionDefinition:
		body, changed := replaceList(v.Body, resolve)
		if !changed {
			return e, false
		}
		c := *v
		c.Body = body
		return &c, true

	case *Assignment:
		value, changed := ReplaceVariables(v.Value, resolve)
		target := v.Target
		if idx, ok := v.Target.(*Index); ok {
			var targetChanged bool
			target, targetChanged = ReplaceVariables(idx, resolve)
			changed = changed || targetChanged
		}
		if !changed {
			return e, false
		}
		c := *v
		c.Target = target
		c.Value = value
		return &c, true

	case *Mathematic:
		left, lc := ReplaceVariables(v.Left, resolve)
		right, rc := ReplaceVariables(v.Right, resolve)
		if !lc && !rc {
			return e, false
		}
		c := *v
		c.Left, c.Right = left, right
		return &c, true

	case *Comparison:
		left, lc := ReplaceVariables(v.Left, resolve)
		right, rc := ReplaceVariables(v.Right, resolve)
		if !lc && !rc {
			return e, false
		}
		c := *v
		c.Left, c.Right = left, right
		return &c, true

	case *Conditional:
		conds, changed := replaceList(v.Conditions, resolve)
		if !changed {
			return e, false
		}
		c := *v
		c.Conditions = conds
		return &c, true

	case *BitwiseInvert:
		value, changed := ReplaceVariables(v.Value, resolve)
		if !changed {
			return e, false
		}
		c := *v
		c.Value = value
		return &c, true

	case *Index:
		target, tc := ReplaceVariables(v.Target, resolve)
		index, ic := ReplaceVariables(v.Index, resolve)
		if !tc && !ic {
			return e, false
		}
		c := *v
		c.Target, c.Index = target, index
		return &c, true

	case *If:
		cond, cc := ReplaceVariables(v.Condition, resolve)
		then, tc := replaceList(v.Then, resolve)
		els, ec := replaceList(v.Else, resolve)
		if !cc && !tc && !ec {
			return e, false
		}
		c := *v
		c.Condition, c.Then, c.Else = cond, then, els
		return &c, true

	case *For:
		iterable, ic := ReplaceVariables(v.Iterable, resolve)
		body, bc := replaceList(v.Body, resolve)
		if !ic && !bc {
			return e, false
		}
		c := *v
		c.Iterable, c.Body = iterable, body
		return &c, true

	case *Return:
		value, changed := ReplaceVariables(v.Value, resolve)
		if !changed {
			return e, false
		}
		c := *v
		c.Value = value
		return &c, true

	default:
		// literals and containers are values; containers are shared
		return e, false
	}
}

func replaceList(list []Expression, resolve Resolver) ([]Expression, bool) {
	var out []Expression
	for i, item := range list {
		replaced, changed := ReplaceVariables(item, resolve)
		if changed && out == nil {
			out = append(make([]Expression, 0, len(list)), list[:i]...)
		}
		if out != nil {
			out = append(out, replaced)
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}
