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

// If runs Then when Condition is true and Else otherwise.
type If struct {
	Node
	Condition Expression
	Then      []Expression
	Else      []Expression
}

// NewIf returns an if statement located at r.
func NewIf(cond Expression, then, els []Expression, r TextRange) *If {
	n := &If{Condition: cond, Then: then, Else: els}
	n.rng = r
	return n
}

func (e *If) String() string {
	return "if (" + e.Condition.String() + ")"
}

// For runs Body once for each element of Iterable, binding Iterator.
type For struct {
	Node
	Iterator *VariableDefinition
	Iterable Expression
	Body     []Expression
}

// NewFor returns a for loop located at r.
func NewFor(iterator *VariableDefinition, iterable Expression, body []Expression, r TextRange) *For {
	n := &For{Iterator: iterator, Iterable: iterable, Body: body}
	n.rng = r
	return n
}

func (e *For) String() string {
	return "for " + e.Iterator.Name + " in " + e.Iterable.String()
}

// Return leaves the current function with Value. Value is nil for a bare
// return.
type Return struct {
	Node
	Value Expression
}

// NewReturn returns a return statement located at r.
func NewReturn(value Expression, r TextRange) *Return {
	n := &Return{Value: value}
	n.rng = r
	return n
}

func (e *Return) String() string {
	if e.Value == nil {
		return "return"
	}
	return "return " + e.Value.String()
}
