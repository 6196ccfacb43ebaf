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

// Conjunction selects how two conditions are combined when merging.
type Conjunction uint8

const (
	And Conjunction = iota
	Or
)

// MergeOutcome describes how two comparisons combine.
type MergeOutcome uint8

const (
	// MergeNone means the comparisons cannot be expressed as one.
	MergeNone MergeOutcome = iota
	// MergeLeft means the combination is exactly the left comparison.
	MergeLeft
	// MergeRight means the combination is exactly the right comparison.
	MergeRight
	// MergeOperator means the combination is a comparison with a new
	// operator against the shared value.
	MergeOperator
	// MergeAlwaysFalse means the comparisons conflict.
	MergeAlwaysFalse
	// MergeAlwaysTrue means the comparisons cover the whole domain.
	MergeAlwaysTrue
)

// MergeResult is the outcome of merging two comparisons and the single
// requirement that replaces them.
type MergeResult struct {
	Requirement requirements.Requirement
	Outcome     MergeOutcome
}

type mergeCase uint8

const (
	noMrg mergeCase = iota
	keepL
	keepR
	confl
	toEQ
	toLT
	toGT
)

type relation uint8

const (
	relLess relation = iota
	relEqual
	relGreater
)

// andTable[a][b][rel] is the result of (x a va) && (x b vb), where rel
// compares va with vb. Operators are indexed from OperatorEqual.
var andTable = [6][6][3]mergeCase{
	// ==
	{
		{confl, keepL, confl}, // ==
		{keepL, confl, keepL}, // !=
		{keepL, confl, confl}, // <
		{keepL, keepL, confl}, // <=
		{confl, confl, keepL}, // >
		{confl, keepL, keepL}, // >=
	},
	// !=
	{
		{keepR, confl, keepR},
		{noMrg, keepL, noMrg},
		{noMrg, keepR, keepR},
		{noMrg, toLT, keepR},
		{keepR, keepR, noMrg},
		{keepR, toGT, noMrg},
	},
	// <
	{
		{confl, confl, keepR},
		{keepL, keepL, noMrg},
		{keepL, keepL, keepR},
		{keepL, keepL, keepR},
		{confl, confl, noMrg},
		{confl, confl, noMrg},
	},
	// <=
	{
		{confl, keepR, keepR},
		{keepL, toLT, noMrg},
		{keepL, keepR, keepR},
		{keepL, keepL, keepR},
		{confl, confl, noMrg},
		{confl, toEQ, noMrg},
	},
	// >
	{
		{keepR, confl, confl},
		{noMrg, keepL, keepL},
		{noMrg, confl, confl},
		{noMrg, confl, confl},
		{keepR, keepL, keepL},
		{keepR, keepL, keepL},
	},
	// >=
	{
		{keepR, keepR, confl},
		{noMrg, toGT, keepL},
		{noMrg, confl, confl},
		{noMrg, toEQ, confl},
		{keepR, keepR, keepL},
		{keepR, keepL, keepL},
	},
}

func tableIndex(op requirements.Operator) int {
	return int(op - requirements.OperatorEqual)
}

func compareRight(a, b requirements.Field) (relation, bool) {
	if a == b {
		return relEqual, true
	}
	if !a.IsConstant() || !b.IsConstant() {
		return relEqual, false
	}
	var av, bv float64
	if a.Type == requirements.FieldTypeFloat {
		av = float64(a.Float)
	} else {
		av = float64(a.Value)
	}
	if b.Type == requirements.FieldTypeFloat {
		bv = float64(b.Float)
	} else {
		bv = float64(b.Value)
	}
	switch {
	case av < bv:
		return relLess, true
	case av > bv:
		return relGreater, true
	case a.Type != b.Type:
		// 5 and 5.0 compare equal but are different fields
		return relEqual, false
	default:
		return relEqual, true
	}
}

// Merge combines two comparisons against the same left operand. Under Or
// both operators are inverted, the And table is applied and the result is
// inverted back.
func Merge(a, b requirements.Requirement, conj Conjunction) MergeResult {
	none := MergeResult{Outcome: MergeNone}
	if a.Left != b.Left || !a.IsComparison() || !b.IsComparison() {
		return none
	}
	rel, ok := compareRight(a.Right, b.Right)
	if !ok {
		return none
	}

	opA, opB := a.Operator, b.Operator
	if conj == Or {
		opA, opB = opA.Invert(), opB.Invert()
	}

	result := andTable[tableIndex(opA)][tableIndex(opB)][rel]
	switch result {
	case keepL:
		return MergeResult{Outcome: MergeLeft, Requirement: a}
	case keepR:
		return MergeResult{Outcome: MergeRight, Requirement: b}
	case confl:
		if conj == Or {
			return MergeResult{Outcome: MergeAlwaysTrue, Requirement: withFlags(requirements.AlwaysTrue(), a)}
		}
		return MergeResult{Outcome: MergeAlwaysFalse, Requirement: withFlags(requirements.AlwaysFalse(), a)}
	case toEQ, toLT, toGT:
		merged := a
		merged.Operator = mergedOperator(result)
		if conj == Or {
			merged.Operator = merged.Operator.Invert()
		}
		return MergeResult{Outcome: MergeOperator, Requirement: merged}
	default:
		return none
	}
}

func mergedOperator(c mergeCase) requirements.Operator {
	switch c {
	case toEQ:
		return requirements.OperatorEqual
	case toLT:
		return requirements.OperatorLessThan
	default:
		return requirements.OperatorGreaterThan
	}
}

func withFlags(req, from requirements.Requirement) requirements.Requirement {
	req.Type = from.Type
	req.HitCount = from.HitCount
	return req
}

// ExMergeResult is the outcome of merging two requirement chains.
type ExMergeResult struct {
	Ex      requirements.RequirementEx
	Outcome MergeOutcome
}

// MergeEx combines two chains that differ only in their terminal
// comparison. The shared prefix may only contribute values, so the
// terminals compare the same accumulated operand.
func MergeEx(a, b requirements.RequirementEx, conj Conjunction) ExMergeResult {
	none := ExMergeResult{Outcome: MergeNone}
	if len(a.Requirements) == 0 || !a.PrefixEqual(b) {
		return none
	}
	for _, req := range a.Prefix() {
		if !req.Type.IsScalar() {
			return none
		}
	}
	ta, tb := a.Terminal(), b.Terminal()
	if ta.Type != tb.Type || ta.HitCount != 0 || tb.HitCount != 0 {
		return none
	}

	res := Merge(ta, tb, conj)
	switch res.Outcome {
	case MergeNone:
		return none
	case MergeLeft:
		return ExMergeResult{Outcome: MergeLeft, Ex: a}
	case MergeRight:
		return ExMergeResult{Outcome: MergeRight, Ex: b}
	case MergeAlwaysTrue, MergeAlwaysFalse:
		// the prefix only feeds the terminal, so the result stands alone
		return ExMergeResult{Outcome: res.Outcome, Ex: requirements.NewRequirementEx(res.Requirement)}
	default:
		out := a.Clone()
		out.SetTerminal(res.Requirement)
		return ExMergeResult{Outcome: MergeOperator, Ex: out}
	}
}

// mergeRanges merges comparisons on the same operand within each group:
// plain conditions are ANDed, PauseIf and ResetIf conditions are ORed.
func (s *state) mergeRanges() {
	for gi := range s.groups {
		s.groups[gi] = mergeGroupRanges(s.groups[gi])
	}
}

func conjunctionFor(t requirements.RequirementType) (Conjunction, bool) {
	switch t {
	case requirements.RequirementTypeNone:
		return And, true
	case requirements.RequirementTypePauseIf, requirements.RequirementTypeResetIf:
		return Or, true
	default:
		return And, false
	}
}

func mergeGroupRanges(g group) group {
	out := append(group(nil), g...)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i], out[j]
			if a.Type() != b.Type() || a.HasHitTarget() || b.HasHitTarget() {
				continue
			}
			if a.UsesRecall() || b.UsesRecall() {
				continue
			}
			conj, ok := conjunctionFor(a.Type())
			if !ok {
				continue
			}
			res := MergeEx(a, b, conj)
			if res.Outcome == MergeNone {
				continue
			}
			out[i] = res.Ex
			out = removeAt(out, j)
			j = i
		}
	}
	return out
}
