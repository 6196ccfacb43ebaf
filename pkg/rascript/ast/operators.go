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

// MathematicOperation is an arithmetic operator.
type MathematicOperation uint8

const (
	Add MathematicOperation = iota
	Subtract
	Multiply
	Divide
	Modulus
	BitwiseAnd
)

var mathematicSymbols = map[MathematicOperation]string{
	Add:        "+",
	Subtract:   "-",
	Multiply:   "*",
	Divide:     "/",
	Modulus:    "%",
	BitwiseAnd: "&",
}

func (o MathematicOperation) String() string {
	return mathematicSymbols[o]
}

// Precedence orders the operators; higher binds tighter.
func (o MathematicOperation) Precedence() int {
	switch o {
	case Multiply, Divide, Modulus:
		return 3
	case Add, Subtract:
		return 2
	default:
		return 1
	}
}

// Mathematic is a binary arithmetic expression.
type Mathematic struct {
	Node
	Left      Expression
	Right     Expression
	Operation MathematicOperation
}

// NewMathematic returns an arithmetic node spanning both operands.
func NewMathematic(left Expression, op MathematicOperation, right Expression) *Mathematic {
	n := &Mathematic{Left: left, Operation: op, Right: right}
	n.rng = left.Range().Union(right.Range())
	return n
}

func (e *Mathematic) String() string {
	return wrap(e.Left) + " " + e.Operation.String() + " " + wrap(e.Right)
}

// ComparisonOperation is a relational operator.
type ComparisonOperation uint8

const (
	ComparisonEqual ComparisonOperation = iota
	ComparisonNotEqual
	ComparisonLessThan
	ComparisonLessThanOrEqual
	ComparisonGreaterThan
	ComparisonGreaterThanOrEqual
)

var comparisonSymbols = map[ComparisonOperation]string{
	ComparisonEqual:              "==",
	ComparisonNotEqual:           "!=",
	ComparisonLessThan:           "<",
	ComparisonLessThanOrEqual:    "<=",
	ComparisonGreaterThan:        ">",
	ComparisonGreaterThanOrEqual: ">=",
}

func (o ComparisonOperation) String() string {
	return comparisonSymbols[o]
}

// Invert returns the operator that is true exactly when o is false.
func (o ComparisonOperation) Invert() ComparisonOperation {
	switch o {
	case ComparisonEqual:
		return ComparisonNotEqual
	case ComparisonNotEqual:
		return ComparisonEqual
	case ComparisonLessThan:
		return ComparisonGreaterThanOrEqual
	case ComparisonLessThanOrEqual:
		return ComparisonGreaterThan
	case ComparisonGreaterThan:
		return ComparisonLessThanOrEqual
	default:
		return ComparisonLessThan
	}
}

// Reverse returns the operator to use when the operands are swapped.
func (o ComparisonOperation) Reverse() ComparisonOperation {
	switch o {
	case ComparisonLessThan:
		return ComparisonGreaterThan
	case ComparisonLessThanOrEqual:
		return ComparisonGreaterThanOrEqual
	case ComparisonGreaterThan:
		return ComparisonLessThan
	case ComparisonGreaterThanOrEqual:
		return ComparisonLessThanOrEqual
	default:
		return o
	}
}

// Comparison is a binary relational expression.
type Comparison struct {
	Node
	Left      Expression
	Right     Expression
	Operation ComparisonOperation
}

// NewComparison returns a comparison spanning both operands.
func NewComparison(left Expression, op ComparisonOperation, right Expression) *Comparison {
	n := &Comparison{Left: left, Operation: op, Right: right}
	n.rng = left.Range().Union(right.Range())
	return n
}

func (e *Comparison) String() string {
	return wrap(e.Left) + " " + e.Operation.String() + " " + wrap(e.Right)
}

// ConditionalOperation is a logical operator.
type ConditionalOperation uint8

const (
	And ConditionalOperation = iota
	Or
	Not
)

func (o ConditionalOperation) String() string {
	switch o {
	case And:
		return "&&"
	case Or:
		return "||"
	default:
		return "!"
	}
}

// Conditional is a logical expression. And and Or join two or more
// conditions; Not has a single condition.
type Conditional struct {
	Node
	Conditions []Expression
	Operation  ConditionalOperation
}

// NewConditional returns a logical node spanning its conditions.
func NewConditional(op ConditionalOperation, conditions ...Expression) *Conditional {
	n := &Conditional{Operation: op, Conditions: conditions}
	for _, c := range conditions {
		n.rng = n.rng.Union(c.Range())
	}
	return n
}

func (e *Conditional) String() string {
	if e.Operation == Not {
		if len(e.Conditions) == 0 {
			return "!"
		}
		return "!" + wrap(e.Conditions[0])
	}
	s := ""
	for i, c := range e.Conditions {
		if i > 0 {
			s += " " + e.Operation.String() + " "
		}
		s += wrap(c)
	}
	return s
}

// BitwiseInvert flips every bit of its operand.
type BitwiseInvert struct {
	Node
	Value Expression
}

// NewBitwiseInvert returns an inversion located at r.
func NewBitwiseInvert(value Expression, r TextRange) *BitwiseInvert {
	n := &BitwiseInvert{Value: value}
	n.rng = r
	return n
}

func (e *BitwiseInvert) String() string {
	return "~" + wrap(e.Value)
}

func wrap(e Expression) string {
	if e.IsLogicalUnit() {
		return "(" + e.String() + ")"
	}
	return e.String()
}
