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
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
)

type bitKey struct {
	fieldType requirements.FieldType
	address   uint32
}

type bitSet struct {
	members  []int
	mask     uint32
	value    uint32
	conflict bool
}

// bitSlice returns the byte mask and shifted value a sub-byte equality
// comparison constrains.
func bitSlice(req requirements.Requirement) (mask, value uint32, ok bool) {
	if req.Operator != requirements.OperatorEqual || req.Right.Type != requirements.FieldTypeValue {
		return 0, 0, false
	}
	switch req.Left.Type {
	case requirements.FieldTypeMemoryAddress, requirements.FieldTypePreviousValue,
		requirements.FieldTypePriorValue:
	default:
		return 0, 0, false
	}
	size := req.Left.Size
	v := req.Right.Value
	if v > size.MaxValue() {
		return 0, 0, false
	}
	switch {
	case size.IsBit():
		shift := uint32(size.BitIndex())
		return 1 << shift, v << shift, true
	case size == requirements.FieldSizeLowNibble:
		return 0x0F, v, true
	case size == requirements.FieldSizeHighNibble:
		return 0xF0, v << 4, true
	case size == requirements.FieldSizeByte:
		return 0xFF, v, true
	default:
		return 0, 0, false
	}
}

// mergeBits collapses equality comparisons on the bits of one address into
// a single nibble or byte comparison when they cover it completely.
func (s *state) mergeBits() {
	for gi := range s.groups {
		s.groups[gi] = mergeGroupBits(s.groups[gi])
	}
}

func mergeGroupBits(g group) group {
	sets := make(map[bitKey]*bitSet)
	var order []bitKey

	for i, ex := range g {
		if !isPlain(ex) || !ex.IsSingle() {
			continue
		}
		req := ex.Terminal()
		mask, value, ok := bitSlice(req)
		if !ok {
			continue
		}
		key := bitKey{fieldType: req.Left.Type, address: req.Left.Value}
		set, found := sets[key]
		if !found {
			set = &bitSet{}
			sets[key] = set
			order = append(order, key)
		}
		if set.mask&mask&(set.value^value) != 0 {
			set.conflict = true
		}
		set.members = append(set.members, i)
		set.mask |= mask
		set.value |= value
	}

	replaced := make(map[int]requirements.RequirementEx)
	removed := make(map[int]bool)
	for _, key := range order {
		set := sets[key]
		if set.conflict || len(set.members) < 2 {
			continue
		}
		if set.mask == 0xFF {
			merged := requirements.Requirement{
				Left:     requirements.Memory(requirements.FieldSizeByte, key.address).WithType(key.fieldType),
				Operator: requirements.OperatorEqual,
				Right:    requirements.Value(set.value),
			}
			collapseMembers(g, set.members, merged, replaced, removed)
			continue
		}
		for _, nibble := range []struct {
			mask  uint32
			shift uint32
			size  requirements.FieldSize
		}{
			{0x0F, 0, requirements.FieldSizeLowNibble},
			{0xF0, 4, requirements.FieldSizeHighNibble},
		} {
			if set.mask&nibble.mask != nibble.mask {
				continue
			}
			var members []int
			for _, i := range set.members {
				m, _, _ := bitSlice(g[i].Terminal())
				if m&nibble.mask == m {
					members = append(members, i)
				}
			}
			if len(members) < 2 {
				continue
			}
			merged := requirements.Requirement{
				Left:     requirements.Memory(nibble.size, key.address).WithType(key.fieldType),
				Operator: requirements.OperatorEqual,
				Right:    requirements.Value((set.value & nibble.mask) >> nibble.shift),
			}
			collapseMembers(g, members, merged, replaced, removed)
		}
	}

	if len(replaced) == 0 {
		return g
	}

	out := make(group, 0, len(g))
	for i, ex := range g {
		if r, ok := replaced[i]; ok {
			out = append(out, r)
			continue
		}
		if removed[i] {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func collapseMembers(
	g group,
	members []int,
	merged requirements.Requirement,
	replaced map[int]requirements.RequirementEx,
	removed map[int]bool,
) {
	merged.Type = g[members[0]].Type()
	replaced[members[0]] = requirements.NewRequirementEx(merged)
	for _, i := range members[1:] {
		removed[i] = true
	}
}
