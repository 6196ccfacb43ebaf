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

// Package ast defines the expression tree produced by the parser and
// evaluated by the interpreter.
//
// The node set is closed: every node is one of the pointer types declared
// in this package. Equality is structural and ignores source ranges, so
// two trees parsed from different places compare equal if they mean the
// same thing.
package ast

import (
	"fmt"

	"github.com/ZaparooProject/rascript/pkg/rascript/tokenizer"
)

// TextRange is the span of source a node was parsed from. End is the
// location of the last character of the node.
type TextRange struct {
	Start tokenizer.Location
	End   tokenizer.Location
}

// IsEmpty reports whether the range was never set.
func (r TextRange) IsEmpty() bool {
	return r.Start.Line == 0
}

// Union returns the smallest range covering both ranges.
func (r TextRange) Union(o TextRange) TextRange {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	out := r
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

func (r TextRange) String() string {
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%d:%d-%d", r.Start.Line, r.Start.Column, r.End.Column)
	}
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// Expression is any node of the tree.
type Expression interface {
	Range() TextRange
	SetRange(r TextRange)
	IsReadOnly() bool
	MakeReadOnly()
	IsLogicalUnit() bool
	SetLogicalUnit(b bool)
	String() string

	node() *Node
}

// Node holds the state shared by every expression.
type Node struct {
	rng         TextRange
	readOnly    bool
	logicalUnit bool
}

func (n *Node) node() *Node {
	return n
}

// Range returns the source range of the node.
func (n *Node) Range() TextRange {
	return n.rng
}

// SetRange sets the source range. Read-only nodes keep their range.
func (n *Node) SetRange(r TextRange) {
	if n.readOnly {
		return
	}
	n.rng = r
}

// IsReadOnly reports whether the node is shared and must not be modified.
func (n *Node) IsReadOnly() bool {
	return n.readOnly
}

// MakeReadOnly marks the node as shared.
func (n *Node) MakeReadOnly() {
	n.readOnly = true
}

// IsLogicalUnit reports whether the node was parenthesized in the source.
// Logical units are not rebalanced when operator precedence is applied.
func (n *Node) IsLogicalUnit() bool {
	return n.logicalUnit
}

// SetLogicalUnit marks or unmarks the node as parenthesized.
func (n *Node) SetLogicalUnit(b bool) {
	n.logicalUnit = b
}

// At returns a copy of e located at r, or e itself when it is read-only or
// a container. Containers are shared by reference so they are never
// copied.
func At(e Expression, r TextRange) Expression {
	if e.IsReadOnly() {
		return e
	}
	switch e.(type) {
	case *Array, *Dictionary:
		return e
	}
	c := ShallowCopy(e)
	c.node().readOnly = false
	c.SetRange(r)
	return c
}

// ShallowCopy returns a copy of the node that shares its children.
func ShallowCopy(e Expression) Expression {
	switch v := e.(type) {
	case *IntegerConstant:
		c := *v
		return &c
	case *FloatConstant:
		c := *v
		return &c
	case *BooleanConstant:
		c := *v
		return &c
	case *StringConstant:
		c := *v
		return &c
	case *Variable:
		c := *v
		return &c
	case *VariableDefinition:
		c := *v
		return &c
	case *FunctionCall:
		c := *v
		return &c
	case *FunctionDefinition:
		c := *v
		return &c
	case *FunctionReference:
		c := *v
		return &c
	case *Assignment:
		c := *v
		return &c
	case *Mathematic:
		c := *v
		return &c
	case *Comparison:
		c := *v
		return &c
	case *Conditional:
		c := *v
		return &c
	case *BitwiseInvert:
		c := *v
		return &c
	case *Array:
		c := *v
		return &c
	case *Dictionary:
		c := *v
		return &c
	case *Index:
		c := *v
		return &c
	case *If:
		c := *v
		return &c
	case *For:
		c := *v
		return &c
	case *Return:
		c := *v
		return &c
	case *Comment:
		c := *v
		return &c
	case *ErrorExpression:
		c := *v
		return &c
	default:
		panic(fmt.Sprintf("ast: unknown node %T", e))
	}
}

// TypeName returns the user facing name of the node's kind, used in
// diagnostics.
func TypeName(e Expression) string {
	switch e.(type) {
	case *IntegerConstant:
		return "integer"
	case *FloatConstant:
		return "float"
	case *BooleanConstant:
		return "boolean"
	case *StringConstant:
		return "string"
	case *Variable:
		return "variable"
	case *VariableDefinition:
		return "variable definition"
	case *FunctionCall:
		return "function call"
	case *FunctionDefinition:
		return "function definition"
	case *FunctionReference:
		return "function reference"
	case *Assignment:
		return "assignment"
	case *Mathematic:
		return "mathematic expression"
	case *Comparison:
		return "comparison"
	case *Conditional:
		return "logical expression"
	case *BitwiseInvert:
		return "bitwise invert"
	case *Array:
		return "array"
	case *Dictionary:
		return "dictionary"
	case *Index:
		return "index"
	case *If:
		return "if statement"
	case *For:
		return "for loop"
	case *Return:
		return "return statement"
	case *Comment:
		return "comment"
	case *ErrorExpression:
		return "error"
	default:
		return fmt.Sprintf("%T", e)
	}
}

// IsConstant reports whether the node is a literal value.
func IsConstant(e Expression) bool {
	switch e.(type) {
	case *IntegerConstant, *FloatConstant, *BooleanConstant, *StringConstant:
		return true
	default:
		return false
	}
}
