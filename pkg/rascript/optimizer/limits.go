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

package optimizer

import (
	"math"

	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
)

// normalizeLimits clamps constant comparisons to the range of the field,
// rewrites single-bit and bitcount comparisons into canonical forms, and
// removes BCD decoding where the runtime does not need it.
func (s *state) normalizeLimits() {
	for gi, g := range s.groups {
		for ei, ex := range g {
			s.groups[gi][ei] = normalizeChain(ex)
		}
	}
}

func normalizeChain(ex requirements.RequirementEx) requirements.RequirementEx {
	out := ex.Clone()
	for i := range out.Requirements {
		req := &out.Requirements[i]
		req.Left = stripNarrowBCD(req.Left)
		req.Right = stripNarrowBCD(req.Right)

		if !req.IsComparison() {
			continue
		}
		if i > 0 {
			switch out.Requirements[i-1].Type {
			case requirements.RequirementTypeAddSource, requirements.RequirementTypeSubSource:
				// the left operand is an accumulated value, not the field
				continue
			}
		}

		normalized, result := NormalizeComparison(*req)
		switch result {
		case requirements.True:
			normalized = requirements.AlwaysTrue()
		case requirements.False:
			normalized = requirements.AlwaysFalse()
		}
		normalized.Type = req.Type
		normalized.HitCount = req.HitCount
		*req = normalized
	}
	return stripUnusedAddAddress(out)
}

// stripNarrowBCD removes BCD decoding from fields that can only hold a
// single decimal digit, where decoding does not change the value.
func stripNarrowBCD(f requirements.Field) requirements.Field {
	if f.Type != requirements.FieldTypeBinaryCodedDecimal {
		return f
	}
	if f.Size.IsBit() || f.Size == requirements.FieldSizeLowNibble ||
		f.Size == requirements.FieldSizeHighNibble {
		return f.WithType(requirements.FieldTypeMemoryAddress)
	}
	return f
}

// stripUnusedAddAddress drops AddAddress requirements that only feed a
// comparison between constants.
func stripUnusedAddAddress(ex requirements.RequirementEx) requirements.RequirementEx {
	out := requirements.RequirementEx{}
	for i, req := range ex.Requirements {
		if req.Type == requirements.RequirementTypeAddAddress {
			next := i + 1
			for next < len(ex.Requirements) && ex.Requirements[next].Type == requirements.RequirementTypeAddAddress {
				next++
			}
			if next < len(ex.Requirements) {
				n := ex.Requirements[next]
				if !n.Left.IsMemoryReference() && !n.Right.IsMemoryReference() {
					continue
				}
			}
		}
		out.Requirements = append(out.Requirements, req)
	}
	return out
}

// NormalizeComparison rewrites a comparison into canonical form. If the
// comparison is statically known the second result is True or False.
func NormalizeComparison(req requirements.Requirement) (requirements.Requirement, requirements.Tristate) {
	if !req.IsComparison() {
		return req, requirements.Unknown
	}

	if req.Left.IsConstant() && !req.Right.IsConstant() {
		req.Left, req.Right = req.Right, req.Left
		req.Operator = req.Operator.Reverse()
	}

	if req.Left.Type == requirements.FieldTypeBinaryCodedDecimal {
		switch {
		case req.Right.Type == requirements.FieldTypeBinaryCodedDecimal && req.Right.Size == req.Left.Size:
			req.Left = req.Left.WithType(requirements.FieldTypeMemoryAddress)
			req.Right = req.Right.WithType(requirements.FieldTypeMemoryAddress)
		case req.Right.Type == requirements.FieldTypeValue:
			encoded, ok := requirements.EncodeBCD(req.Right.Value, req.Left.Size)
			if !ok {
				return req, aboveRange(req.Operator)
			}
			req.Left = req.Left.WithType(requirements.FieldTypeMemoryAddress)
			req.Right = requirements.Value(encoded)
		}
	}

	if !isIntegerMemory(req.Left) {
		return req, requirements.Unknown
	}

	if req.Right.Type == requirements.FieldTypeFloat {
		var result requirements.Tristate
		req, result = normalizeFloatConstant(req)
		if result != requirements.Unknown {
			return req, result
		}
	}

	if req.Right.Type != requirements.FieldTypeValue {
		return req, requirements.Unknown
	}

	req, result := clampToRange(req, req.Left.Size.MaxValue())
	if result != requirements.Unknown {
		return req, result
	}

	if req.Left.Size.MaxValue() == 1 && req.Operator == requirements.OperatorNotEqual {
		req.Operator = requirements.OperatorEqual
		req.Right = requirements.Value(1 - req.Right.Value)
	}

	if req.Left.Size == requirements.FieldSizeBitCount {
		switch req.Operator {
		case requirements.OperatorEqual, requirements.OperatorNotEqual:
			switch req.Right.Value {
			case 0:
				req.Left = req.Left.WithSize(requirements.FieldSizeByte)
			case 8:
				req.Left = req.Left.WithSize(requirements.FieldSizeByte)
				req.Right = requirements.Value(0xFF)
			}
		}
	}

	return req, requirements.Unknown
}

func isIntegerMemory(f requirements.Field) bool {
	switch f.Type {
	case requirements.FieldTypeMemoryAddress, requirements.FieldTypePreviousValue,
		requirements.FieldTypePriorValue:
		return !f.Size.IsFloat()
	default:
		return false
	}
}

// aboveRange is the result of comparing a field with a constant larger
// than anything the field can hold.
func aboveRange(op requirements.Operator) requirements.Tristate {
	switch op {
	case requirements.OperatorEqual, requirements.OperatorGreaterThan,
		requirements.OperatorGreaterThanOrEqual:
		return requirements.False
	default:
		return requirements.True
	}
}

// belowRange is the result of comparing a field with a negative constant.
func belowRange(op requirements.Operator) requirements.Tristate {
	switch op {
	case requirements.OperatorEqual, requirements.OperatorLessThan,
		requirements.OperatorLessThanOrEqual:
		return requirements.False
	default:
		return requirements.True
	}
}

func normalizeFloatConstant(req requirements.Requirement) (requirements.Requirement, requirements.Tristate) {
	f := float64(req.Right.Float)
	if f < 0 {
		return req, belowRange(req.Operator)
	}
	if f > math.MaxUint32 {
		return req, aboveRange(req.Operator)
	}

	whole := math.Floor(f)
	if whole == f {
		req.Right = requirements.Value(uint32(whole))
		return req, requirements.Unknown
	}

	switch req.Operator {
	case requirements.OperatorEqual:
		return req, requirements.False
	case requirements.OperatorNotEqual:
		return req, requirements.True
	case requirements.OperatorLessThan, requirements.OperatorLessThanOrEqual:
		req.Operator = requirements.OperatorLessThanOrEqual
		req.Right = requirements.Value(uint32(whole))
	case requirements.OperatorGreaterThan, requirements.OperatorGreaterThanOrEqual:
		if whole+1 > math.MaxUint32 {
			return req, requirements.False
		}
		req.Operator = requirements.OperatorGreaterThanOrEqual
		req.Right = requirements.Value(uint32(whole + 1))
	}
	return req, requirements.Unknown
}

// clampToRange rewrites comparisons against the edges of [0, maxValue].
func clampToRange(req requirements.Requirement, maxValue uint32) (requirements.Requirement, requirements.Tristate) {
	v := req.Right.Value
	switch req.Operator {
	case requirements.OperatorEqual:
		if v > maxValue {
			return req, requirements.False
		}
	case requirements.OperatorNotEqual:
		if v > maxValue {
			return req, requirements.True
		}
	case requirements.OperatorLessThan:
		switch {
		case v == 0:
			return req, requirements.False
		case v > maxValue:
			return req, requirements.True
		case v == 1:
			req.Operator = requirements.OperatorEqual
			req.Right = requirements.Value(0)
		case v == maxValue:
			req.Operator = requirements.OperatorNotEqual
		}
	case requirements.OperatorLessThanOrEqual:
		switch {
		case v >= maxValue:
			return req, requirements.True
		case v == 0:
			req.Operator = requirements.OperatorEqual
		case v == maxValue-1:
			req.Operator = requirements.OperatorNotEqual
			req.Right = requirements.Value(maxValue)
		}
	case requirements.OperatorGreaterThan:
		switch {
		case v >= maxValue:
			return req, requirements.False
		case v == 0:
			req.Operator = requirements.OperatorNotEqual
		case v == maxValue-1:
			req.Operator = requirements.OperatorEqual
			req.Right = requirements.Value(maxValue)
		}
	case requirements.OperatorGreaterThanOrEqual:
		switch {
		case v == 0:
			return req, requirements.True
		case v > maxValue:
			return req, requirements.False
		case v == maxValue:
			req.Operator = requirements.OperatorEqual
		case v == 1:
			req.Operator = requirements.OperatorNotEqual
			req.Right = requirements.Value(0)
		}
	}
	return req, requirements.Unknown
}
