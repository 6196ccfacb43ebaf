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
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
)

var accessors = []struct {
	name string
	size requirements.FieldSize
}{
	{"bit0", requirements.FieldSizeBit0},
	{"bit1", requirements.FieldSizeBit1},
	{"bit2", requirements.FieldSizeBit2},
	{"bit3", requirements.FieldSizeBit3},
	{"bit4", requirements.FieldSizeBit4},
	{"bit5", requirements.FieldSizeBit5},
	{"bit6", requirements.FieldSizeBit6},
	{"bit7", requirements.FieldSizeBit7},
	{"low4", requirements.FieldSizeLowNibble},
	{"high4", requirements.FieldSizeHighNibble},
	{"byte", requirements.FieldSizeByte},
	{"word", requirements.FieldSizeWord},
	{"tbyte", requirements.FieldSizeTByte},
	{"dword", requirements.FieldSizeDWord},
	{"bitcount", requirements.FieldSizeBitCount},
	{"word_be", requirements.FieldSizeBigEndianWord},
	{"tbyte_be", requirements.FieldSizeBigEndianTByte},
	{"dword_be", requirements.FieldSizeBigEndianDWord},
	{"float", requirements.FieldSizeFloat},
	{"float_be", requirements.FieldSizeBigEndianFloat},
}

// isMemory reports whether e can stand for a value read from memory.
func isMemory(e ast.Expression) bool {
	switch e.(type) {
	case *ast.FunctionCall, *ast.Mathematic:
		return true
	default:
		return false
	}
}

func checkAddress(s *interpreter.Scope) *ast.ErrorExpression {
	switch v := s.Get("address").(type) {
	case *ast.IntegerConstant:
		return nil
	default:
		if isMemory(v) {
			return nil
		}
		return ast.ErrorFromf(interpreter.ErrTypeMismatch, s.Location("address"),
			"address: expected integer or memory value, got %s", ast.TypeName(v))
	}
}

type accessor struct {
	*interpreter.Builtin
	size requirements.FieldSize
}

func newAccessor(name string, size requirements.FieldSize) *accessor {
	return &accessor{Builtin: expanding(name+"(address)", checkAddress), size: size}
}

func (a *accessor) BuildValue(c *builder.Context, call *ast.FunctionCall) (builder.Linear, *ast.ErrorExpression) {
	t, err := c.MemoryTerm(a.size, call.Parameters[0])
	if err != nil {
		return builder.Linear{}, err
	}
	return builder.Single(t), nil
}

// bitAccessor reads bit index of the memory starting at address. Indexes
// past 7 continue into the following bytes.
type bitAccessor struct {
	*interpreter.Builtin
}

func newBitAccessor() *bitAccessor {
	return &bitAccessor{Builtin: expanding("bit(index, address)", func(s *interpreter.Scope) *ast.ErrorExpression {
		index, err := s.Integer("index")
		if err != nil {
			return err
		}
		if index < 0 || index > 31 {
			return ast.ErrorFromf(interpreter.ErrInvalidParameter, s.Location("index"),
				"index must be between 0 and 31, got %d", index)
		}
		return checkAddress(s)
	})}
}

func (b *bitAccessor) BuildValue(c *builder.Context, call *ast.FunctionCall) (builder.Linear, *ast.ErrorExpression) {
	index := int(call.Parameters[0].(*ast.IntegerConstant).Value)
	t, err := c.MemoryTerm(requirements.BitSize(index%8), call.Parameters[1])
	if err != nil {
		return builder.Linear{}, err
	}
	t.Field.Value += uint32(index / 8)
	return builder.Single(t), nil
}

// modifier reads the same memory as its accessor with a different field
// type, e.g. the previous frame's value.
type modifier struct {
	*interpreter.Builtin
	typ requirements.FieldType
}

func newModifier(name string, typ requirements.FieldType) *modifier {
	return &modifier{
		Builtin: expanding(name+"(accessor)", func(s *interpreter.Scope) *ast.ErrorExpression {
			if !isMemory(s.Get("accessor")) {
				return ast.ErrorFromf(interpreter.ErrTypeMismatch, s.Location("accessor"),
					"accessor: expected memory value, got %s", ast.TypeName(s.Get("accessor")))
			}
			return nil
		}),
		typ: typ,
	}
}

func (m *modifier) BuildValue(c *builder.Context, call *ast.FunctionCall) (builder.Linear, *ast.ErrorExpression) {
	l, err := c.BuildLinear(call.Parameters[0])
	if err != nil {
		return builder.Linear{}, err
	}
	return c.Transform(call, l, func(f requirements.Field) requirements.Field {
		return f.WithType(m.typ)
	})
}

type rememberer struct {
	*interpreter.Builtin
}

func newRemember() *rememberer {
	return &rememberer{Builtin: expanding("remember(value)", nil)}
}

func (r *rememberer) BuildValue(c *builder.Context, call *ast.FunctionCall) (builder.Linear, *ast.ErrorExpression) {
	l, err := c.BuildLinear(call.Parameters[0])
	if err != nil {
		return builder.Linear{}, err
	}
	return builder.Single(c.Remember(l)), nil
}

type recaller struct {
	*interpreter.Builtin
}

func newRecall() *recaller {
	return &recaller{Builtin: expanding("recall()", nil)}
}

func (r *recaller) BuildValue(*builder.Context, *ast.FunctionCall) (builder.Linear, *ast.ErrorExpression) {
	return builder.Single(builder.FieldTerm(requirements.Recall())), nil
}
