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

// Equal compares two trees structurally. Source ranges, read-only marks
// and logical-unit marks are ignored.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *IntegerConstant:
		y, ok := b.(*IntegerConstant)
		return ok && x.Number() == y.Number()
	case *FloatConstant:
		y, ok := b.(*FloatConstant)
		return ok && x.Value == y.Value
	case *BooleanConstant:
		y, ok := b.(*BooleanConstant)
		return ok && x.Value == y.Value
	case *StringConstant:
		y, ok := b.(*StringConstant)
		return ok && x.Value == y.Value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *VariableDefinition:
		y, ok := b.(*VariableDefinition)
		return ok && x.Name == y.Name
	case *FunctionReference:
		y, ok := b.(*FunctionReference)
		return ok && x.Name == y.Name
	case *Comment:
		y, ok := b.(*Comment)
		return ok && x.Text == y.Text
	case *ErrorExpression:
		y, ok := b.(*ErrorExpression)
		if !ok || x.Message != y.Message {
			return false
		}
		if x.Inner == nil || y.Inner == nil {
			return x.Inner == nil && y.Inner == nil
		}
		return Equal(x.Inner, y.Inner)
	case *FunctionCall:
		y, ok := b.(*FunctionCall)
		return ok && x.Name.Name == y.Name.Name && equalList(x.Parameters, y.Parameters)
	case *FunctionDefinition:
		y, ok := b.(*FunctionDefinition)
		return ok && equalDefinition(x, y)
	case *Assignment:
		y, ok := b.(*Assignment)
		return ok && Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *Mathematic:
		y, ok := b.(*Mathematic)
		return ok && x.Operation == y.Operation && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Comparison:
		y, ok := b.(*Comparison)
		return ok && x.Operation == y.Operation && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Conditional:
		y, ok := b.(*Conditional)
		return ok && x.Operation == y.Operation && equalList(x.Conditions, y.Conditions)
	case *BitwiseInvert:
		y, ok := b.(*BitwiseInvert)
		return ok && Equal(x.Value, y.Value)
	case *Array:
		y, ok := b.(*Array)
		return ok && equalList(x.Entries, y.Entries)
	case *Dictionary:
		y, ok := b.(*Dictionary)
		if !ok || len(x.Entries) != len(y.Entries) {
			return false
		}
		for _, entry := range x.Entries {
			v, found := y.Lookup(entry.Key)
			if !found || !Equal(entry.Value, v) {
				return false
			}
		}
		return true
	case *Index:
		y, ok := b.(*Index)
		return ok && Equal(x.Target, y.Target) && Equal(x.Index, y.Index)
	case *If:
		y, ok := b.(*If)
		return ok && Equal(x.Condition, y.Condition) && equalList(x.Then, y.Then) && equalList(x.Else, y.Else)
	case *For:
		y, ok := b.(*For)
		return ok && x.Iterator.Name == y.Iterator.Name && Equal(x.Iterable, y.Iterable) &&
			equalList(x.Body, y.Body)
	case *Return:
		y, ok := b.(*Return)
		return ok && Equal(x.Value, y.Value)
	default:
		return false
	}
}

func equalList(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalDefinition(x, y *FunctionDefinition) bool {
	if x.NameString() != y.NameString() || x.Variadic != y.Variadic ||
		len(x.Parameters) != len(y.Parameters) || len(x.Defaults) != len(y.Defaults) {
		return false
	}
	for i := range x.Parameters {
		if x.Parameters[i].Name != y.Parameters[i].Name {
			return false
		}
	}
	for name, d := range x.Defaults {
		if !Equal(d, y.Defaults[name]) {
			return false
		}
	}
	return equalList(x.Body, y.Body)
}
