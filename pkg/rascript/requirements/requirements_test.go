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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFieldString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want  string
		field Field
	}{
		{want: "0xH000010", field: Memory(FieldSizeByte, 0x10)},
		{want: "0x 001234", field: Memory(FieldSizeWord, 0x1234)},
		{want: "0xX00abcd", field: Memory(FieldSizeDWord, 0xabcd)},
		{want: "0xN000011", field: Memory(FieldSizeBit1, 0x11)},
		{want: "0xK000002", field: Memory(FieldSizeBitCount, 2)},
		{want: "0xG000004", field: Memory(FieldSizeBigEndianDWord, 4)},
		{want: "d0xH000010", field: Memory(FieldSizeByte, 0x10).WithType(FieldTypePreviousValue)},
		{want: "p0xL000010", field: Memory(FieldSizeLowNibble, 0x10).WithType(FieldTypePriorValue)},
		{want: "b0xH000010", field: Memory(FieldSizeByte, 0x10).WithType(FieldTypeBinaryCodedDecimal)},
		{want: "fF000020", field: Memory(FieldSizeFloat, 0x20)},
		{want: "dfB000020", field: Memory(FieldSizeBigEndianFloat, 0x20).WithType(FieldTypePreviousValue)},
		{want: "42", field: Value(42)},
		{want: "f1.5", field: FloatValue(1.5)},
		{want: "f2.0", field: FloatValue(2)},
		{want: "{recall}", field: Recall()},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.field.String())
		})
	}
}

func TestFieldDescribe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "byte(0x000010)", Memory(FieldSizeByte, 0x10).Describe())
	assert.Equal(t, "prev(word(0x001234))", Memory(FieldSizeWord, 0x1234).WithType(FieldTypePreviousValue).Describe())
	assert.Equal(t, "7", Value(7).Describe())
	assert.Equal(t, "recall()", Recall().Describe())
}

func TestFieldMaxValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(1), Memory(FieldSizeBit3, 0).MaxValue())
	assert.Equal(t, uint32(0x0F), Memory(FieldSizeHighNibble, 0).MaxValue())
	assert.Equal(t, uint32(0xFF), Memory(FieldSizeByte, 0).MaxValue())
	assert.Equal(t, uint32(8), Memory(FieldSizeBitCount, 0).MaxValue())
	assert.Equal(t, uint32(99), Memory(FieldSizeByte, 0).WithType(FieldTypeBinaryCodedDecimal).MaxValue())
	assert.Equal(t, uint32(12), Value(12).MaxValue())
}

func TestRequirementString(t *testing.T) {
	t.Parallel()

	r := Requirement{
		Type:     RequirementTypeResetIf,
		Left:     Memory(FieldSizeByte, 1),
		Operator: OperatorGreaterThanOrEqual,
		Right:    Value(3),
		HitCount: 2,
	}
	assert.Equal(t, "R:0xH000001>=3.2.", r.String())

	src := Requirement{Type: RequirementTypeAddSource, Left: Memory(FieldSizeByte, 1), Operator: OperatorMultiply, Right: Value(2)}
	assert.Equal(t, "A:0xH000001*2", src.String())

	assert.Equal(t, "1=1", AlwaysTrue().String())
	assert.Equal(t, "0=1", AlwaysFalse().String())
}

func TestRequirementEvaluate(t *testing.T) {
	t.Parallel()

	byte1 := Memory(FieldSizeByte, 1)
	tests := []struct {
		name string
		req  Requirement
		want Tristate
	}{
		{"always true", AlwaysTrue(), True},
		{"always false", AlwaysFalse(), False},
		{"memory", Requirement{Left: byte1, Operator: OperatorEqual, Right: Value(1)}, Unknown},
		{"same field equal", Requirement{Left: byte1, Operator: OperatorEqual, Right: byte1}, True},
		{"same field less", Requirement{Left: byte1, Operator: OperatorLessThan, Right: byte1}, False},
		{"constants", Requirement{Left: Value(3), Operator: OperatorLessThan, Right: Value(5)}, True},
		{"float constants", Requirement{Left: FloatValue(2.5), Operator: OperatorGreaterThan, Right: Value(2)}, True},
		{"modifier", Requirement{Left: byte1, Operator: OperatorMultiply, Right: Value(2)}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.req.Evaluate())
		})
	}
}

func TestCombineAndFlatten(t *testing.T) {
	t.Parallel()

	reqs := []Requirement{
		{Type: RequirementTypeAddSource, Left: Memory(FieldSizeByte, 1)},
		{Left: Memory(FieldSizeByte, 2), Operator: OperatorEqual, Right: Value(3)},
		{Type: RequirementTypeAndNext, Left: Memory(FieldSizeByte, 3), Operator: OperatorEqual, Right: Value(1)},
		{Left: Memory(FieldSizeByte, 4), Operator: OperatorEqual, Right: Value(1), HitCount: 2},
		{Left: Memory(FieldSizeByte, 5), Operator: OperatorEqual, Right: Value(1)},
	}

	chains := Combine(reqs)
	require.Len(t, chains, 3)
	assert.Equal(t, "A:0xH000001_0xH000002=3", chains[0].String())
	assert.Equal(t, "N:0xH000003=1_0xH000004=1.2.", chains[1].String())
	assert.Equal(t, uint32(2), chains[1].HitCount())
	assert.True(t, chains[2].IsSingle())
	assert.Equal(t, reqs, Flatten(chains))
}

func TestTriggerString(t *testing.T) {
	t.Parallel()

	trigger := &Trigger{
		Core: []Requirement{{Left: Memory(FieldSizeByte, 1), Operator: OperatorEqual, Right: Value(1)}},
		Alts: [][]Requirement{
			{{Left: Memory(FieldSizeByte, 2), Operator: OperatorEqual, Right: Value(1)}},
			{{Left: Memory(FieldSizeByte, 3), Operator: OperatorEqual, Right: Value(1)}},
		},
	}
	assert.Equal(t, "0xH000001=1S0xH000002=1S0xH000003=1", trigger.String())
	assert.Equal(t, 3, trigger.Count())

	clone := trigger.Clone()
	assert.True(t, clone.Equal(trigger))
	clone.Alts[0][0].Right = Value(9)
	assert.False(t, clone.Equal(trigger))

	value := &ValueDef{Groups: [][]Requirement{
		{{Type: RequirementTypeMeasured, Left: Memory(FieldSizeByte, 2)}},
		{{Type: RequirementTypeMeasured, Left: Memory(FieldSizeByte, 3)}},
	}}
	assert.Equal(t, "M:0xH000002$M:0xH000003", value.String())
}

// ============================================================================
// Properties
// ============================================================================

func drawTristate(t *rapid.T, label string) Tristate {
	return rapid.SampledFrom([]Tristate{Unknown, True, False}).Draw(t, label)
}

func TestPropertyTristateDeMorgan(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := drawTristate(t, "a")
		b := drawTristate(t, "b")
		if a.And(b).Not() != a.Not().Or(b.Not()) {
			t.Fatalf("!(%s && %s) != !%s || !%s", a, b, a, b)
		}
		if a.Not().Not() != a {
			t.Fatalf("double negation of %s", a)
		}
	})
}

func TestPropertyInvertNegatesComparison(t *testing.T) {
	t.Parallel()

	ops := []Operator{
		OperatorEqual, OperatorNotEqual, OperatorLessThan,
		OperatorLessThanOrEqual, OperatorGreaterThan, OperatorGreaterThanOrEqual,
	}
	rapid.Check(t, func(t *rapid.T) {
		op := rapid.SampledFrom(ops).Draw(t, "op")
		l := rapid.Uint32().Draw(t, "left")
		r := rapid.Uint32().Draw(t, "right")
		if Compare(l, op, r) == Compare(l, op.Invert(), r) {
			t.Fatalf("%d %s %d agrees with its inverse %s", l, op, r, op.Invert())
		}
		if Compare(l, op, r) != Compare(r, op.Reverse(), l) {
			t.Fatalf("%d %s %d disagrees with reversed %s", l, op, r, op.Reverse())
		}
	})
}

func TestPropertyEncodeBCD(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint32Range(0, 9999).Draw(t, "v")
		got, ok := EncodeBCD(v, FieldSizeWord)
		if !ok {
			t.Fatalf("%d does not fit a BCD word", v)
		}
		var decoded uint32
		for shift, scale := 0, uint32(1); shift < 16; shift, scale = shift+4, scale*10 {
			digit := (got >> shift) & 0xF
			if digit > 9 {
				t.Fatalf("nibble %x is not a decimal digit", digit)
			}
			decoded += digit * scale
		}
		if decoded != v {
			t.Fatalf("%d encoded as %x decodes to %d", v, got, decoded)
		}
	})

	_, ok := EncodeBCD(100, FieldSizeByte)
	assert.False(t, ok)
}
