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
	"testing"

	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"pgregory.net/rapid"
)

// ============================================================================
// Generators
// ============================================================================

var propertySizes = []requirements.FieldSize{
	requirements.FieldSizeBit0,
	requirements.FieldSizeBit3,
	requirements.FieldSizeBit7,
	requirements.FieldSizeLowNibble,
	requirements.FieldSizeHighNibble,
	requirements.FieldSizeByte,
}

var comparisonOps = []requirements.Operator{
	requirements.OperatorEqual,
	requirements.OperatorNotEqual,
	requirements.OperatorLessThan,
	requirements.OperatorLessThanOrEqual,
	requirements.OperatorGreaterThan,
	requirements.OperatorGreaterThanOrEqual,
}

func comparisonGen() *rapid.Generator[requirements.Requirement] {
	return rapid.Custom(func(t *rapid.T) requirements.Requirement {
		size := rapid.SampledFrom(propertySizes).Draw(t, "size")
		addr := rapid.Uint32Range(1, 2).Draw(t, "addr")
		op := rapid.SampledFrom(comparisonOps).Draw(t, "op")
		maxValue := size.MaxValue()
		value := rapid.OneOf(
			rapid.Uint32Range(0, maxValue),
			rapid.SampledFrom([]uint32{0, 1, maxValue - 1, maxValue, maxValue + 1, 300}),
		).Draw(t, "value")
		return cmp(mem(size, addr), op, value)
	})
}

func statelessReqGen() *rapid.Generator[requirements.Requirement] {
	return rapid.Custom(func(t *rapid.T) requirements.Requirement {
		req := comparisonGen().Draw(t, "cmp")
		req.Type = rapid.SampledFrom([]requirements.RequirementType{
			requirements.RequirementTypeNone,
			requirements.RequirementTypeNone,
			requirements.RequirementTypeNone,
			requirements.RequirementTypeNone,
			requirements.RequirementTypePauseIf,
			requirements.RequirementTypeResetIf,
		}).Draw(t, "type")
		return req
	})
}

func statelessTriggerGen() *rapid.Generator[*requirements.Trigger] {
	return rapid.Custom(func(t *rapid.T) *requirements.Trigger {
		core := rapid.SliceOfN(statelessReqGen(), 0, 4).Draw(t, "core")
		alts := rapid.SliceOfN(rapid.SliceOfN(statelessReqGen(), 1, 3), 0, 3).Draw(t, "alts")
		return &requirements.Trigger{Core: core, Alts: alts}
	})
}

// ============================================================================
// Reference evaluator
// ============================================================================

// memory holds the bytes at addresses 1 and 2.
type memory [3]uint8

func (m memory) read(f requirements.Field) uint32 {
	if f.Type == requirements.FieldTypeValue {
		return f.Value
	}
	b := uint32(m[f.Value])
	switch {
	case f.Size.IsBit():
		return (b >> uint(f.Size.BitIndex())) & 1
	case f.Size == requirements.FieldSizeLowNibble:
		return b & 0x0F
	case f.Size == requirements.FieldSizeHighNibble:
		return b >> 4
	default:
		return b
	}
}

func (m memory) test(req requirements.Requirement) bool {
	return requirements.Compare(m.read(req.Left), req.Operator, m.read(req.Right))
}

// evalTrigger evaluates a hit-free trigger for one frame: a paused group is
// false and cannot reset, and a reset in any running group makes the frame
// false.
func evalTrigger(tr *requirements.Trigger, m memory) bool {
	reset := false
	group := func(g []requirements.Requirement) bool {
		for _, req := range g {
			if req.Type == requirements.RequirementTypePauseIf && m.test(req) {
				return false
			}
		}
		result := true
		for _, req := range g {
			switch req.Type {
			case requirements.RequirementTypeResetIf:
				if m.test(req) {
					reset = true
				}
			case requirements.RequirementTypeNone:
				if !m.test(req) {
					result = false
				}
			}
		}
		return result
	}

	core := group(tr.Core)
	anyAlt := len(tr.Alts) == 0
	for _, alt := range tr.Alts {
		if group(alt) {
			anyAlt = true
		}
	}
	return !reset && core && anyAlt
}

// ============================================================================
// Optimizer Property Tests
// ============================================================================

// TestPropertyOptimizeIdempotent verifies optimizing an optimized trigger is
// a no-op.
func TestPropertyOptimizeIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := statelessTriggerGen().Draw(t, "trigger")
		if err := Optimize(tr, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		once := tr.String()
		if err := Optimize(tr, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if twice := tr.String(); once != twice {
			t.Fatalf("not idempotent: %q then %q", once, twice)
		}
	})
}

// TestPropertyOptimizeEquivalent verifies the optimized trigger is true for
// exactly the same memory states as the original.
func TestPropertyOptimizeEquivalent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		original := statelessTriggerGen().Draw(t, "trigger")
		optimized := original.Clone()
		if err := Optimize(optimized, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for a := 0; a < 256; a++ {
			for b := 0; b < 256; b++ {
				m := memory{0, uint8(a), uint8(b)}
				if evalTrigger(original, m) != evalTrigger(optimized, m) {
					t.Fatalf("%q and %q differ at 0x01=%d 0x02=%d",
						original.String(), optimized.String(), a, b)
				}
			}
		}
	})
}

// TestPropertyOptimizeNeverGrows verifies optimization does not add
// requirements to a hit-free trigger.
func TestPropertyOptimizeNeverGrows(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := statelessTriggerGen().Draw(t, "trigger")
		before := tr.Count()
		if err := Optimize(tr, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// an emptied trigger is rendered as a single marker
		if after := tr.Count(); after > before && after > 1 {
			t.Fatalf("grew from %d to %d: %q", before, after, tr.String())
		}
	})
}

// TestPropertyRangeClamp verifies comparisons past the field range fold.
func TestPropertyRangeClamp(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.SampledFrom(propertySizes).Draw(t, "size")
		addr := rapid.Uint32Range(0, 0xFFFF).Draw(t, "addr")

		above := &requirements.Trigger{Core: reqs(
			cmp(mem(size, addr), requirements.OperatorGreaterThan, size.MaxValue()),
		)}
		if err := Optimize(above, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if above.String() != "0=1" {
			t.Fatalf("x > max gave %q", above.String())
		}

		zero := &requirements.Trigger{Core: reqs(
			cmp(mem(size, addr), requirements.OperatorGreaterThanOrEqual, 0),
		)}
		if err := Optimize(zero, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if zero.String() != "1=1" {
			t.Fatalf("x >= 0 gave %q", zero.String())
		}
	})
}

// TestPropertyBitMergeRoundTrip verifies eight bit comparisons on an
// address collapse into one byte comparison.
func TestPropertyBitMergeRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		addr := rapid.Uint32Range(0, 0xFFFFFF).Draw(t, "addr")
		value := rapid.Uint32Range(0, 255).Draw(t, "value")
		order := rapid.Permutation([]int{0, 1, 2, 3, 4, 5, 6, 7}).Draw(t, "order")

		core := make([]requirements.Requirement, 0, 8)
		for _, bit := range order {
			core = append(core, cmp(mem(requirements.BitSize(bit), addr), requirements.OperatorEqual, (value>>uint(bit))&1))
		}
		tr := &requirements.Trigger{Core: core}
		if err := Optimize(tr, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := cmp(mem(requirements.FieldSizeByte, addr), requirements.OperatorEqual, value).String()
		if tr.String() != want {
			t.Fatalf("got %q, want %q", tr.String(), want)
		}
	})
}

// ============================================================================
// Merge Property Tests
// ============================================================================

// TestPropertyMergeSymmetric verifies the merge result does not depend on
// operand order.
func TestPropertyMergeSymmetric(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		opA := rapid.SampledFrom(comparisonOps).Draw(t, "opA")
		opB := rapid.SampledFrom(comparisonOps).Draw(t, "opB")
		va := rapid.Uint32Range(0, 10).Draw(t, "va")
		vb := rapid.Uint32Range(0, 10).Draw(t, "vb")
		conj := rapid.SampledFrom([]Conjunction{And, Or}).Draw(t, "conj")

		a := byteCmp(1, opA, va)
		b := byteCmp(1, opB, vb)
		ab := Merge(a, b, conj)
		ba := Merge(b, a, conj)

		if (ab.Outcome == MergeNone) != (ba.Outcome == MergeNone) {
			t.Fatalf("outcomes differ: %v vs %v", ab.Outcome, ba.Outcome)
		}
		if ab.Outcome != MergeNone && ab.Requirement != ba.Requirement {
			t.Fatalf("results differ: %s vs %s", ab.Requirement, ba.Requirement)
		}
	})
}

// TestPropertyMergeSound verifies a merged comparison agrees with the two
// originals for every value.
func TestPropertyMergeSound(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		opA := rapid.SampledFrom(comparisonOps).Draw(t, "opA")
		opB := rapid.SampledFrom(comparisonOps).Draw(t, "opB")
		va := rapid.Uint32Range(0, 10).Draw(t, "va")
		vb := rapid.Uint32Range(0, 10).Draw(t, "vb")
		conj := rapid.SampledFrom([]Conjunction{And, Or}).Draw(t, "conj")

		a := byteCmp(1, opA, va)
		b := byteCmp(1, opB, vb)
		res := Merge(a, b, conj)
		if res.Outcome == MergeNone {
			return
		}

		for x := 0; x < 256; x++ {
			m := memory{0, uint8(x), 0}
			want := m.test(a) && m.test(b)
			if conj == Or {
				want = m.test(a) || m.test(b)
			}
			if got := m.test(res.Requirement); got != want {
				t.Fatalf("%s and %s merged to %s, wrong at %d", a, b, res.Requirement, x)
			}
		}
	})
}

// ============================================================================
// Hit Count Property Tests
// ============================================================================

// latchedTriggerGen builds triggers whose groups mix stateless conditions
// with hit targets, some of them behind a ResetNextIf shared by the whole
// trigger.
func latchedTriggerGen() *rapid.Generator[*requirements.Trigger] {
	return rapid.Custom(func(t *rapid.T) *requirements.Trigger {
		guard := flag(comparisonGen().Draw(t, "guard"), requirements.RequirementTypeResetNextIf)

		groupGen := rapid.Custom(func(t *rapid.T) []requirements.Requirement {
			var g []requirements.Requirement
			n := rapid.IntRange(1, 3).Draw(t, "len")
			for i := 0; i < n; i++ {
				switch rapid.IntRange(0, 3).Draw(t, "kind") {
				case 0, 1:
					g = append(g, statelessReqGen().Draw(t, "plain"))
				case 2:
					g = append(g, hits(comparisonGen().Draw(t, "target"), rapid.Uint32Range(1, 3).Draw(t, "hits")))
				default:
					g = append(g, guard, hits(comparisonGen().Draw(t, "guarded"), rapid.Uint32Range(1, 3).Draw(t, "hits")))
				}
			}
			return g
		})

		core := groupGen.Draw(t, "core")
		alts := rapid.SliceOfN(groupGen, 0, 3).Draw(t, "alts")
		return &requirements.Trigger{Core: core, Alts: alts}
	})
}

func frameGen() *rapid.Generator[memory] {
	value := rapid.OneOf(rapid.SampledFrom([]uint8{0, 1, 2, 3, 0x10, 0xFF}), rapid.Uint8())
	return rapid.Custom(func(t *rapid.T) memory {
		return memory{0, value.Draw(t, "0x01"), value.Draw(t, "0x02")}
	})
}

// latches runs a trigger over consecutive frames, keeping the hit count of
// every condition.
type latches struct {
	groups [][]requirements.Requirement
	hits   [][]uint32
}

func newLatches(tr *requirements.Trigger) *latches {
	l := &latches{groups: append([][]requirements.Requirement{tr.Core}, tr.Alts...)}
	for _, g := range l.groups {
		l.hits = append(l.hits, make([]uint32, len(g)))
	}
	return l
}

// frame advances one frame and reports whether the trigger fired. A paused
// group neither counts hits nor resets, a ResetNextIf clears the hits of the
// next condition and holds it false, and a reset anywhere clears every hit
// count and stops the trigger for the frame.
func (l *latches) frame(m memory) bool {
	reset := false
	results := make([]bool, len(l.groups))

	for gi, g := range l.groups {
		paused := false
		for _, req := range g {
			if req.Type == requirements.RequirementTypePauseIf && m.test(req) {
				paused = true
			}
		}
		if paused {
			continue
		}

		result := true
		resetNext := false
		for ri, req := range g {
			switch req.Type {
			case requirements.RequirementTypeResetNextIf:
				resetNext = m.test(req)
				continue
			case requirements.RequirementTypePauseIf:
				continue
			}

			ok := m.test(req)
			switch {
			case resetNext:
				l.hits[gi][ri] = 0
				ok = false
			case req.HitCount > 0:
				if ok && l.hits[gi][ri] < req.HitCount {
					l.hits[gi][ri]++
				}
				ok = l.hits[gi][ri] >= req.HitCount
			}
			resetNext = false

			if req.Type == requirements.RequirementTypeResetIf {
				if ok {
					reset = true
				}
			} else if !ok {
				result = false
			}
		}
		results[gi] = result
	}

	if reset {
		for _, h := range l.hits {
			clear(h)
		}
		return false
	}

	anyAlt := len(l.groups) == 1
	for _, r := range results[1:] {
		anyAlt = anyAlt || r
	}
	return results[0] && anyAlt
}

// TestPropertyOptimizeEquivalentOverFrames verifies the optimized trigger
// fires on the same frames as the original when hit counts carry state
// from one frame to the next.
func TestPropertyOptimizeEquivalentOverFrames(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		original := latchedTriggerGen().Draw(t, "trigger")
		optimized := original.Clone()
		if err := Optimize(optimized, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		frames := rapid.SliceOfN(frameGen(), 1, 12).Draw(t, "frames")

		before, after := newLatches(original), newLatches(optimized)
		for i, m := range frames {
			if before.frame(m) != after.frame(m) {
				t.Fatalf("%q and %q differ at frame %d", original.String(), optimized.String(), i)
			}
		}
	})
}

// TestPropertyOptimizeIdempotentWithHits verifies a second pass leaves a
// trigger with hit targets unchanged.
func TestPropertyOptimizeIdempotentWithHits(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := latchedTriggerGen().Draw(t, "trigger")
		if err := Optimize(tr, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		once := tr.String()
		if err := Optimize(tr, Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if twice := tr.String(); once != twice {
			t.Fatalf("not idempotent: %q then %q", once, twice)
		}
	})
}
