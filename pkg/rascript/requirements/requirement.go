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

package requirements

import (
	"strconv"
	"strings"
)

// RequirementType is the combinator flag attached to a requirement.
type RequirementType uint8

const (
	RequirementTypeNone RequirementType = iota
	RequirementTypeResetIf
	RequirementTypePauseIf
	RequirementTypeAddSource
	RequirementTypeSubSource
	RequirementTypeAddHits
	RequirementTypeSubHits
	RequirementTypeAndNext
	RequirementTypeOrNext
	RequirementTypeMeasured
	RequirementTypeMeasuredPercent
	RequirementTypeMeasuredIf
	RequirementTypeAddAddress
	RequirementTypeResetNextIf
	RequirementTypeTrigger
	RequirementTypeRemember
)

var typePrefixes = map[RequirementType]string{
	RequirementTypeResetIf:         "R:",
	RequirementTypePauseIf:         "P:",
	RequirementTypeAddSource:       "A:",
	RequirementTypeSubSource:       "B:",
	RequirementTypeAddHits:         "C:",
	RequirementTypeSubHits:         "D:",
	RequirementTypeAndNext:         "N:",
	RequirementTypeOrNext:          "O:",
	RequirementTypeMeasured:        "M:",
	RequirementTypeMeasuredPercent: "G:",
	RequirementTypeMeasuredIf:      "Q:",
	RequirementTypeAddAddress:      "I:",
	RequirementTypeResetNextIf:     "Z:",
	RequirementTypeTrigger:         "T:",
	RequirementTypeRemember:        "K:",
}

var typeNames = map[RequirementType]string{
	RequirementTypeNone:            "None",
	RequirementTypeResetIf:         "ResetIf",
	RequirementTypePauseIf:         "PauseIf",
	RequirementTypeAddSource:       "AddSource",
	RequirementTypeSubSource:       "SubSource",
	RequirementTypeAddHits:         "AddHits",
	RequirementTypeSubHits:         "SubHits",
	RequirementTypeAndNext:         "AndNext",
	RequirementTypeOrNext:          "OrNext",
	RequirementTypeMeasured:        "Measured",
	RequirementTypeMeasuredPercent: "MeasuredPercent",
	RequirementTypeMeasuredIf:      "MeasuredIf",
	RequirementTypeAddAddress:      "AddAddress",
	RequirementTypeResetNextIf:     "ResetNextIf",
	RequirementTypeTrigger:         "Trigger",
	RequirementTypeRemember:        "Remember",
}

func (t RequirementType) String() string {
	return typeNames[t]
}

// IsCombining reports whether the type joins the requirement to the one
// that follows it.
func (t RequirementType) IsCombining() bool {
	switch t {
	case RequirementTypeAddSource, RequirementTypeSubSource,
		RequirementTypeAddHits, RequirementTypeSubHits,
		RequirementTypeAndNext, RequirementTypeOrNext,
		RequirementTypeAddAddress, RequirementTypeResetNextIf,
		RequirementTypeRemember:
		return true
	default:
		return false
	}
}

// IsScalar reports whether the type contributes a value rather than a
// comparison to the next requirement.
func (t RequirementType) IsScalar() bool {
	switch t {
	case RequirementTypeAddSource, RequirementTypeSubSource,
		RequirementTypeAddAddress, RequirementTypeRemember:
		return true
	default:
		return false
	}
}

// IsMeasured reports whether the type exposes a progress value.
func (t RequirementType) IsMeasured() bool {
	return t == RequirementTypeMeasured || t == RequirementTypeMeasuredPercent
}

// Operator is the comparison or modifier applied between the two fields.
type Operator uint8

const (
	OperatorNone Operator = iota
	OperatorEqual
	OperatorNotEqual
	OperatorLessThan
	OperatorLessThanOrEqual
	OperatorGreaterThan
	OperatorGreaterThanOrEqual
	OperatorMultiply
	OperatorDivide
	OperatorBitwiseAnd
	OperatorModulus
)

var operatorStrings = map[Operator]string{
	OperatorEqual:              "=",
	OperatorNotEqual:           "!=",
	OperatorLessThan:           "<",
	OperatorLessThanOrEqual:    "<=",
	OperatorGreaterThan:        ">",
	OperatorGreaterThanOrEqual: ">=",
	OperatorMultiply:           "*",
	OperatorDivide:             "/",
	OperatorBitwiseAnd:         "&",
	OperatorModulus:            "%",
}

// String returns the runtime spelling of the operator.
func (o Operator) String() string {
	return operatorStrings[o]
}

// IsComparison reports whether the operator yields a boolean.
func (o Operator) IsComparison() bool {
	return o >= OperatorEqual && o <= OperatorGreaterThanOrEqual
}

// IsModifier reports whether the operator yields a value.
func (o Operator) IsModifier() bool {
	return o >= OperatorMultiply
}

// Invert returns the comparison that is true exactly when o is false.
func (o Operator) Invert() Operator {
	switch o {
	case OperatorEqual:
		return OperatorNotEqual
	case OperatorNotEqual:
		return OperatorEqual
	case OperatorLessThan:
		return OperatorGreaterThanOrEqual
	case OperatorLessThanOrEqual:
		return OperatorGreaterThan
	case OperatorGreaterThan:
		return OperatorLessThanOrEqual
	case OperatorGreaterThanOrEqual:
		return OperatorLessThan
	default:
		return o
	}
}

// Reverse returns the comparison to use when the operands are swapped.
func (o Operator) Reverse() Operator {
	switch o {
	case OperatorLessThan:
		return OperatorGreaterThan
	case OperatorLessThanOrEqual:
		return OperatorGreaterThanOrEqual
	case OperatorGreaterThan:
		return OperatorLessThan
	case OperatorGreaterThanOrEqual:
		return OperatorLessThanOrEqual
	default:
		return o
	}
}

// Requirement is a single condition of the IR.
type Requirement struct {
	Left     Field
	Right    Field
	HitCount uint32
	Type     RequirementType
	Operator Operator
}

// AlwaysTrue returns the canonical always-true marker (1=1).
func AlwaysTrue() Requirement {
	return Requirement{Left: Value(1), Operator: OperatorEqual, Right: Value(1)}
}

// AlwaysFalse returns the canonical always-false marker (0=1).
func AlwaysFalse() Requirement {
	return Requirement{Left: Value(0), Operator: OperatorEqual, Right: Value(1)}
}

// IsAlwaysTrue reports whether the comparison is the always-true marker,
// ignoring type and hit count.
func (r Requirement) IsAlwaysTrue() bool {
	return r.Left == Value(1) && r.Operator == OperatorEqual && r.Right == Value(1)
}

// IsAlwaysFalse reports whether the comparison is the always-false marker,
// ignoring type and hit count.
func (r Requirement) IsAlwaysFalse() bool {
	return r.Left == Value(0) && r.Operator == OperatorEqual && r.Right == Value(1)
}

// IsComparison reports whether the requirement compares two fields.
func (r Requirement) IsComparison() bool {
	return r.Operator.IsComparison()
}

// Evaluate determines the result of the comparison if it does not depend
// on memory. Hit counts are ignored.
func (r Requirement) Evaluate() Tristate {
	if !r.Operator.IsComparison() {
		return Unknown
	}

	if r.Left == r.Right && r.Left.Type != FieldTypeFloat {
		switch r.Operator {
		case OperatorEqual, OperatorLessThanOrEqual, OperatorGreaterThanOrEqual:
			return True
		default:
			return False
		}
	}

	if !r.Left.IsConstant() || !r.Right.IsConstant() {
		return Unknown
	}

	if r.Left.Type == FieldTypeValue && r.Right.Type == FieldTypeValue {
		return Known(compareUint(r.Left.Value, r.Operator, r.Right.Value))
	}

	return Known(compareFloat(constantAsFloat(r.Left), r.Operator, constantAsFloat(r.Right)))
}

func constantAsFloat(f Field) float64 {
	if f.Type == FieldTypeFloat {
		return float64(f.Float)
	}
	return float64(f.Value)
}

// Compare applies a comparison operator to two unsigned values.
func Compare(left uint32, op Operator, right uint32) bool {
	return compareUint(left, op, right)
}

func compareUint(left uint32, op Operator, right uint32) bool {
	switch op {
	case OperatorEqual:
		return left == right
	case OperatorNotEqual:
		return left != right
	case OperatorLessThan:
		return left < right
	case OperatorLessThanOrEqual:
		return left <= right
	case OperatorGreaterThan:
		return left > right
	case OperatorGreaterThanOrEqual:
		return left >= right
	default:
		return false
	}
}

func compareFloat(left float64, op Operator, right float64) bool {
	switch op {
	case OperatorEqual:
		return left == right
	case OperatorNotEqual:
		return left != right
	case OperatorLessThan:
		return left < right
	case OperatorLessThanOrEqual:
		return left <= right
	case OperatorGreaterThan:
		return left > right
	case OperatorGreaterThanOrEqual:
		return left >= right
	default:
		return false
	}
}

// String renders the requirement in the runtime's condition syntax.
func (r Requirement) String() string {
	var sb strings.Builder
	sb.WriteString(typePrefixes[r.Type])
	sb.WriteString(r.Left.String())
	if r.Operator != OperatorNone {
		sb.WriteString(r.Operator.String())
		sb.WriteString(r.Right.String())
	}
	if r.HitCount > 0 {
		sb.WriteByte('.')
		sb.WriteString(strconv.FormatUint(uint64(r.HitCount), 10))
		sb.WriteByte('.')
	}
	return sb.String()
}
