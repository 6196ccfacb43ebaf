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

// Package requirements holds the condition IR consumed by the achievement
// runtime: fields, requirements, requirement chains and trigger groups.
package requirements

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldType identifies where a field's value comes from.
type FieldType uint8

const (
	FieldTypeNone FieldType = iota
	FieldTypeMemoryAddress
	FieldTypePreviousValue
	FieldTypePriorValue
	FieldTypeValue
	FieldTypeFloat
	FieldTypeBinaryCodedDecimal
	FieldTypeRecall
)

// FieldSize selects how many bits of memory a field reads.
type FieldSize uint8

const (
	FieldSizeNone FieldSize = iota
	FieldSizeBit0
	FieldSizeBit1
	FieldSizeBit2
	FieldSizeBit3
	FieldSizeBit4
	FieldSizeBit5
	FieldSizeBit6
	FieldSizeBit7
	FieldSizeLowNibble
	FieldSizeHighNibble
	FieldSizeByte
	FieldSizeWord
	FieldSizeTByte
	FieldSizeDWord
	FieldSizeBitCount
	FieldSizeBigEndianWord
	FieldSizeBigEndianTByte
	FieldSizeBigEndianDWord
	FieldSizeFloat
	FieldSizeBigEndianFloat
)

var sizePrefixes = map[FieldSize]string{
	FieldSizeBit0:           "M",
	FieldSizeBit1:           "N",
	FieldSizeBit2:           "O",
	FieldSizeBit3:           "P",
	FieldSizeBit4:           "Q",
	FieldSizeBit5:           "R",
	FieldSizeBit6:           "S",
	FieldSizeBit7:           "T",
	FieldSizeLowNibble:      "L",
	FieldSizeHighNibble:     "U",
	FieldSizeByte:           "H",
	FieldSizeWord:           " ",
	FieldSizeTByte:          "W",
	FieldSizeDWord:          "X",
	FieldSizeBitCount:       "K",
	FieldSizeBigEndianWord:  "I",
	FieldSizeBigEndianTByte: "J",
	FieldSizeBigEndianDWord: "G",
}

var sizeNames = map[FieldSize]string{
	FieldSizeBit0:           "bit0",
	FieldSizeBit1:           "bit1",
	FieldSizeBit2:           "bit2",
	FieldSizeBit3:           "bit3",
	FieldSizeBit4:           "bit4",
	FieldSizeBit5:           "bit5",
	FieldSizeBit6:           "bit6",
	FieldSizeBit7:           "bit7",
	FieldSizeLowNibble:      "low4",
	FieldSizeHighNibble:     "high4",
	FieldSizeByte:           "byte",
	FieldSizeWord:           "word",
	FieldSizeTByte:          "tbyte",
	FieldSizeDWord:          "dword",
	FieldSizeBitCount:       "bitcount",
	FieldSizeBigEndianWord:  "word_be",
	FieldSizeBigEndianTByte: "tbyte_be",
	FieldSizeBigEndianDWord: "dword_be",
	FieldSizeFloat:          "float",
	FieldSizeBigEndianFloat: "float_be",
}

// Name returns the script accessor name for the size (e.g. "byte").
func (s FieldSize) Name() string {
	return sizeNames[s]
}

// IsBit reports whether the size reads a single bit.
func (s FieldSize) IsBit() bool {
	return s >= FieldSizeBit0 && s <= FieldSizeBit7
}

// BitIndex returns 0-7 for bit sizes and -1 otherwise.
func (s FieldSize) BitIndex() int {
	if !s.IsBit() {
		return -1
	}
	return int(s - FieldSizeBit0)
}

// BitSize returns the bit size for the given bit index (0-7).
func BitSize(index int) FieldSize {
	return FieldSizeBit0 + FieldSize(index)
}

// IsFloat reports whether the size decodes a floating point value.
func (s FieldSize) IsFloat() bool {
	return s == FieldSizeFloat || s == FieldSizeBigEndianFloat
}

// MaxValue returns the largest value a field of this size can hold.
func (s FieldSize) MaxValue() uint32 {
	switch s {
	case FieldSizeBit0, FieldSizeBit1, FieldSizeBit2, FieldSizeBit3,
		FieldSizeBit4, FieldSizeBit5, FieldSizeBit6, FieldSizeBit7:
		return 1
	case FieldSizeLowNibble, FieldSizeHighNibble:
		return 0x0F
	case FieldSizeByte:
		return 0xFF
	case FieldSizeWord, FieldSizeBigEndianWord:
		return 0xFFFF
	case FieldSizeTByte, FieldSizeBigEndianTByte:
		return 0xFFFFFF
	case FieldSizeBitCount:
		return 8
	default:
		return math.MaxUint32
	}
}

// Field is a leaf operand of a requirement. Two fields with the same type,
// size and value are equal.
type Field struct {
	Type  FieldType
	Size  FieldSize
	Value uint32
	Float float32
}

// Memory returns a field reading the current value at address.
func Memory(size FieldSize, address uint32) Field {
	return Field{Type: FieldTypeMemoryAddress, Size: size, Value: address}
}

// Value returns a constant integer field.
func Value(v uint32) Field {
	return Field{Type: FieldTypeValue, Value: v}
}

// FloatValue returns a constant floating point field.
func FloatValue(f float32) Field {
	return Field{Type: FieldTypeFloat, Float: f}
}

// Recall returns a field reading the most recently remembered value.
func Recall() Field {
	return Field{Type: FieldTypeRecall}
}

// IsMemoryReference reports whether the field reads emulated memory.
func (f Field) IsMemoryReference() bool {
	switch f.Type {
	case FieldTypeMemoryAddress, FieldTypePreviousValue, FieldTypePriorValue,
		FieldTypeBinaryCodedDecimal:
		return true
	default:
		return false
	}
}

// IsConstant reports whether the field is an integer or float constant.
func (f Field) IsConstant() bool {
	return f.Type == FieldTypeValue || f.Type == FieldTypeFloat
}

// WithType returns a copy of the field with a different type.
func (f Field) WithType(t FieldType) Field {
	f.Type = t
	return f
}

// WithSize returns a copy of the field with a different size.
func (f Field) WithSize(s FieldSize) Field {
	f.Size = s
	return f
}

// MaxValue returns the largest value the field can produce.
func (f Field) MaxValue() uint32 {
	switch f.Type {
	case FieldTypeValue:
		return f.Value
	case FieldTypeRecall, FieldTypeFloat:
		return math.MaxUint32
	case FieldTypeBinaryCodedDecimal:
		return bcdMax(f.Size)
	default:
		return f.Size.MaxValue()
	}
}

func bcdMax(size FieldSize) uint32 {
	switch size {
	case FieldSizeByte:
		return 99
	case FieldSizeWord, FieldSizeBigEndianWord:
		return 9999
	case FieldSizeTByte, FieldSizeBigEndianTByte:
		return 999999
	case FieldSizeDWord, FieldSizeBigEndianDWord:
		return 99999999
	default:
		return size.MaxValue()
	}
}

// BCDDigits returns the number of decimal digits a BCD field of this size
// can encode.
func (s FieldSize) BCDDigits() int {
	switch s {
	case FieldSizeLowNibble, FieldSizeHighNibble:
		return 1
	case FieldSizeByte:
		return 2
	case FieldSizeWord, FieldSizeBigEndianWord:
		return 4
	case FieldSizeTByte, FieldSizeBigEndianTByte:
		return 6
	case FieldSizeDWord, FieldSizeBigEndianDWord:
		return 8
	default:
		return 0
	}
}

// EncodeBCD returns the BCD representation of v, or false if v has more
// digits than the size can hold.
func EncodeBCD(v uint32, size FieldSize) (uint32, bool) {
	digits := size.BCDDigits()
	if digits == 0 {
		return 0, false
	}
	var out uint32
	for i := 0; i < digits; i++ {
		out |= (v % 10) << (4 * uint(i))
		v /= 10
	}
	if v != 0 {
		return 0, false
	}
	return out, true
}

func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// String renders the field the way the runtime serializes it.
func (f Field) String() string {
	switch f.Type {
	case FieldTypeValue:
		return strconv.FormatUint(uint64(f.Value), 10)
	case FieldTypeFloat:
		return "f" + formatFloat(f.Float)
	case FieldTypeRecall:
		return "{recall}"
	case FieldTypeNone:
		return ""
	}

	var prefix string
	switch f.Type {
	case FieldTypePreviousValue:
		prefix = "d"
	case FieldTypePriorValue:
		prefix = "p"
	case FieldTypeBinaryCodedDecimal:
		prefix = "b"
	}

	switch f.Size {
	case FieldSizeFloat:
		return fmt.Sprintf("%sfF%06x", prefix, f.Value)
	case FieldSizeBigEndianFloat:
		return fmt.Sprintf("%sfB%06x", prefix, f.Value)
	}

	return fmt.Sprintf("%s0x%s%06x", prefix, sizePrefixes[f.Size], f.Value)
}

// Describe renders the field in script syntax, e.g. prev(byte(0x001234)).
func (f Field) Describe() string {
	switch f.Type {
	case FieldTypeValue:
		return strconv.FormatUint(uint64(f.Value), 10)
	case FieldTypeFloat:
		return formatFloat(f.Float)
	case FieldTypeRecall:
		return "recall()"
	}
	accessor := fmt.Sprintf("%s(0x%06X)", f.Size.Name(), f.Value)
	switch f.Type {
	case FieldTypePreviousValue:
		return "prev(" + accessor + ")"
	case FieldTypePriorValue:
		return "prior(" + accessor + ")"
	case FieldTypeBinaryCodedDecimal:
		return "bcd(" + accessor + ")"
	default:
		return accessor
	}
}
