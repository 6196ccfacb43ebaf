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
	"github.com/rs/zerolog/log"
)

// mergeAlts simplifies the alt groups as a disjunction: duplicate and
// dominated alts are removed, pairs that differ in a single condition are
// merged, conditions shared by every alt move to the core and a lone alt
// is folded into the core.
func (s *state) mergeAlts() {
	if len(s.alts()) == 0 {
		return
	}

	before := len(s.groups)
	s.removeDuplicateAlts()
	s.absorbAlwaysTrueAlt()
	s.mergeAltPairs()
	s.promoteCommon()
	s.foldSingleAlt()

	if len(s.groups) != before {
		log.Trace().Int("before", before-1).Int("after", len(s.groups)-1).Msg("merged alt groups")
	}
}

// groupEqual compares two groups as sets of chains.
func groupEqual(a, b group) bool {
	if len(a) != len(b) {
		return false
	}
	return groupSubset(a, b)
}

func groupSubset(a, b group) bool {
	for _, ex := range a {
		if indexOf(b, ex) < 0 {
			return false
		}
	}
	return true
}

// simpleGroup reports whether every chain in the group is a stateless plain
// condition, so the group is a pure conjunction.
func simpleGroup(g group) bool {
	for _, ex := range g {
		if !isPlain(ex) || ex.UsesRecall() || ex.Contains(requirements.RequirementTypeRemember) {
			return false
		}
	}
	return true
}

func sharesAddress(a, b group) bool {
	seen := make(map[uint32]bool)
	for _, ex := range a {
		for _, addr := range ex.Addresses() {
			seen[addr] = true
		}
	}
	for _, ex := range b {
		for _, addr := range ex.Addresses() {
			if seen[addr] {
				return true
			}
		}
	}
	return false
}

func isTrueGroup(g group) bool {
	if len(g) == 0 {
		return true
	}
	for _, ex := range g {
		if ex.Type() != requirements.RequirementTypeNone || !isMarker(ex, true) || ex.HitCount() != 0 {
			return false
		}
	}
	return true
}

func trueGroup() group {
	return group{marker(requirements.AlwaysTrue(), requirements.RequirementTypeNone)}
}

func (s *state) removeDuplicateAlts() {
	alts := s.alts()
	kept := make([]group, 0, len(alts))
	for _, alt := range alts {
		dup := false
		for _, k := range kept {
			if groupEqual(alt, k) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, alt)
		}
	}
	s.groups = append([]group{s.core()}, kept...)
}

// absorbAlwaysTrueAlt drops the stateless alts made irrelevant by an alt
// that is always true.
func (s *state) absorbAlwaysTrueAlt() {
	alts := s.alts()
	found := false
	for _, alt := range alts {
		if isTrueGroup(alt) {
			found = true
			break
		}
	}
	if !found {
		return
	}

	kept := []group{trueGroup()}
	for _, alt := range alts {
		if isTrueGroup(alt) || simpleGroup(alt) {
			continue
		}
		kept = append(kept, alt)
	}
	s.groups = append([]group{s.core()}, kept...)
}

// mergeAltPairs compares alt groups that reference a common address. A
// group that contains every condition of another is dominated by it, and
// two groups that differ in one condition are merged with the OR algebra.
func (s *state) mergeAltPairs() {
	alts := append([]group(nil), s.alts()...)

	for i := 0; i < len(alts); i++ {
		for j := i + 1; j < len(alts); j++ {
			a, b := alts[i], alts[j]
			if !simpleGroup(a) || !simpleGroup(b) || !sharesAddress(a, b) {
				continue
			}

			switch {
			case groupSubset(a, b):
				alts = append(alts[:j:j], alts[j+1:]...)
				j = i
				continue
			case groupSubset(b, a):
				alts[i] = b
				alts = append(alts[:j:j], alts[j+1:]...)
				j = i
				continue
			}

			merged, ok := mergeAltGroups(a, b)
			if !ok {
				continue
			}
			alts[i] = merged
			alts = append(alts[:j:j], alts[j+1:]...)
			j = i
		}
	}

	s.groups = append([]group{s.core()}, alts...)
}

// mergeAltGroups merges two groups that share all but one condition each.
// Only a single operator merge is attempted per pair.
func mergeAltGroups(a, b group) (group, bool) {
	if len(a) != len(b) {
		return nil, false
	}
	onlyA, onlyB := -1, -1
	for i, ex := range a {
		if indexOf(b, ex) >= 0 {
			continue
		}
		if onlyA >= 0 {
			return nil, false
		}
		onlyA = i
	}
	for i, ex := range b {
		if indexOf(a, ex) >= 0 {
			continue
		}
		if onlyB >= 0 {
			return nil, false
		}
		onlyB = i
	}
	if onlyA < 0 || onlyB < 0 {
		return nil, false
	}

	res := MergeEx(a[onlyA], b[onlyB], Or)
	if res.Outcome == MergeNone {
		return nil, false
	}

	out := make(group, 0, len(a))
	for i, ex := range a {
		if i == onlyA {
			if res.Outcome != MergeAlwaysTrue {
				out = append(out, res.Ex)
			}
			continue
		}
		out = append(out, ex)
	}
	if len(out) == 0 {
		out = trueGroup()
	}
	return out, true
}

// promotable reports whether a chain found in every alt group can be moved
// to the core without changing when it is evaluated.
func (s *state) promotable(ex requirements.RequirementEx) bool {
	if ex.Type() != requirements.RequirementTypeNone || isMarker(ex, true) {
		return false
	}
	if ex.UsesRecall() || ex.Contains(requirements.RequirementTypeRemember) {
		return false
	}
	if ex.HasHitTarget() {
		for _, g := range s.groups {
			if hasType(g, requirements.RequirementTypePauseIf) {
				return false
			}
		}
	}
	return true
}

// promoteCommon moves conditions present in every alt group into the core.
func (s *state) promoteCommon() {
	alts := s.alts()
	if len(alts) < 2 {
		return
	}

	var common group
	for _, ex := range alts[0] {
		if !s.promotable(ex) || indexOf(common, ex) >= 0 {
			continue
		}
		everywhere := true
		for _, alt := range alts[1:] {
			if indexOf(alt, ex) < 0 {
				everywhere = false
				break
			}
		}
		if everywhere {
			common = append(common, ex)
		}
	}
	if len(common) == 0 {
		return
	}

	for gi := 1; gi < len(s.groups); gi++ {
		out := make(group, 0, len(s.groups[gi]))
		for _, ex := range s.groups[gi] {
			if indexOf(common, ex) < 0 {
				out = append(out, ex)
			}
		}
		if len(out) == 0 {
			out = trueGroup()
		}
		s.groups[gi] = out
	}

	core := s.core()
	for _, ex := range common {
		if indexOf(core, ex) < 0 {
			core = append(core, ex)
		}
	}
	s.groups[0] = core
}

// pauseSafe reports whether the PauseIf conditions of one group may start
// guarding the conditions of the other.
func pauseSafe(paused, other group) bool {
	if !hasType(paused, requirements.RequirementTypePauseIf) {
		return true
	}
	return !pauseGuardsSomething(other)
}

// foldSingleAlt merges a lone alt group into the core.
func (s *state) foldSingleAlt() {
	if len(s.alts()) != 1 {
		return
	}
	core, alt := s.core(), s.alts()[0]

	if isTrueGroup(alt) {
		s.groups = []group{core}
		if len(core) == 0 {
			s.groups[0] = trueGroup()
		}
		return
	}

	if !pauseSafe(alt, core) || !pauseSafe(core, alt) {
		return
	}
	if hasMeasured(core) && hasMeasured(alt) {
		return
	}

	merged := append(append(group(nil), core...), alt...)
	s.groups = []group{merged}
}
