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

import (
	"math"
	"strconv"
	"strings"
)

// IntegerConstant is a 32-bit integer literal. Value holds the bit
// pattern; IsUnsigned is set for values above the signed range, such as
// 0xF0000000, which keep their unsigned meaning.
type IntegerConstant struct {
	Node
	Value      int32
	IsUnsigned bool
}

// NewInteger returns an integer literal located at r.
func NewInteger(v int32, r TextRange) *IntegerConstant {
	n := &IntegerConstant{Value: v}
	n.rng = r
	return n
}

// NewUnsigned returns an integer literal for v located at r. Values that
// fit the signed range are ordinary integers.
func NewUnsigned(v uint32, r TextRange) *IntegerConstant {
	n := NewInteger(int32(v), r)
	n.IsUnsigned = v > math.MaxInt32
	return n
}

func (e *IntegerConstant) String() string {
	return strconv.FormatInt(e.Number(), 10)
}

// Number returns the numeric value, honouring IsUnsigned.
func (e *IntegerConstant) Number() int64 {
	if e.IsUnsigned {
		return int64(uint32(e.Value))
	}
	return int64(e.Value)
}

// Unsigned returns the bit pattern of the value.
func (e *IntegerConstant) Unsigned() uint32 {
	return uint32(e.Value)
}

// FloatConstant is a floating point literal.
type FloatConstant struct {
	Node
	Value float64
}

// NewFloat returns a float literal located at r.
func NewFloat(v float64, r TextRange) *FloatConstant {
	n := &FloatConstant{Value: v}
	n.rng = r
	return n
}

func (e *FloatConstant) String() string {
	s := strconv.FormatFloat(e.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// BooleanConstant is true or false.
type BooleanConstant struct {
	Node
	Value bool
}

// NewBoolean returns a boolean literal located at r.
func NewBoolean(v bool, r TextRange) *BooleanConstant {
	n := &BooleanConstant{Value: v}
	n.rng = r
	return n
}

func (e *BooleanConstant) String() string {
	return strconv.FormatBool(e.Value)
}

// StringConstant is a string literal.
type StringConstant struct {
	Node
	Value string
}

// NewString returns a string literal located at r.
func NewString(v string, r TextRange) *StringConstant {
	n := &StringConstant{Value: v}
	n.rng = r
	return n
}

func (e *StringConstant) String() string {
	return strconv.Quote(e.Value)
}

// Variable is a reference to a named value.
type Variable struct {
	Node
	Name string
}

// NewVariable returns a variable reference located at r.
func NewVariable(name string, r TextRange) *Variable {
	n := &Variable{Name: name}
	n.rng = r
	return n
}

func (e *Variable) String() string {
	return e.Name
}

// VariableDefinition names a variable being bound: an assignment target,
// a parameter or a loop iterator.
type VariableDefinition struct {
	Node
	Name string
}

// NewVariableDefinition returns a definition located at r.
func NewVariableDefinition(name string, r TextRange) *VariableDefinition {
	n := &VariableDefinition{Name: name}
	n.rng = r
	return n
}

func (e *VariableDefinition) String() string {
	return e.Name
}

// Assignment binds Value to Target. Target is a VariableDefinition or an
// Index into a container.
type Assignment struct {
	Node
	Target Expression
	Value  Expression
}

// NewAssignment returns an assignment spanning both operands.
func NewAssignment(target, value Expression) *Assignment {
	n := &Assignment{Target: target, Value: value}
	n.rng = target.Range().Union(value.Range())
	return n
}

func (e *Assignment) String() string {
	return e.Target.String() + " = " + e.Value.String()
}

// Comment is a line or block comment. The parser keeps comments out of the
// statement list.
type Comment struct {
	Node
	Text string
}

// NewComment returns a comment located at r.
func NewComment(text string, r TextRange) *Comment {
	n := &Comment{Text: text}
	n.rng = r
	return n
}

func (e *Comment) String() string {
	return e.Text
}
