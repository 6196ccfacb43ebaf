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
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
)

// orNextClauses splits a plain OrNext chain into its independent clauses.
// It returns false when any link carries state that the split would lose.
func orNextClauses(ex requirements.RequirementEx) ([]requirements.RequirementEx, bool) {
	if !ex.Contains(requirements.RequirementTypeOrNext) {
		return nil, false
	}
	term := ex.Terminal()
	if term.Type != requirements.RequirementTypeNone || term.HitCount != 0 {
		return nil, false
	}

	var clauses []requirements.RequirementEx
	var current []requirements.Requirement
	for i, req := range ex.Requirements {
		switch req.Type {
		case requirements.RequirementTypeAddSource, requirements.RequirementTypeSubSource,
			requirements.RequirementTypeAddAddress:
			current = append(current, req)
			continue
		case requirements.RequirementTypeOrNext:
		case requirements.RequirementTypeNone:
			if i != len(ex.Requirements)-1 {
				return nil, false
			}
		default:
			return nil, false
		}
		if req.HitCount != 0 {
			return nil, false
		}
		req.Type = requirements.RequirementTypeNone
		current = append(current, req)
		clauses = append(clauses, requirements.RequirementEx{Requirements: current})
		current = nil
	}
	return clauses, len(clauses) > 1
}

// splitOrNext turns an OrNext chain in the core into alt groups. Without
// alts the clauses become the alts directly. Runtimes that predate OrNext
// get the cross product with the existing alts, and an alt holding an
// OrNext chain is split into one alt per clause, if it stays within the alt
// group limit.
func (s *state) splitOrNext() {
	if s.splitCoreOrNext() {
		return
	}
	if !s.opts.supports(runtimever.FeatureOrNext) {
		s.splitAltOrNext()
	}
}

func (s *state) splitAltOrNext() {
	for gi := 1; gi < len(s.groups); gi++ {
		alt := s.groups[gi]
		if hasMeasured(alt) || hasType(alt, requirements.RequirementTypeTrigger) {
			continue
		}
		for ei, ex := range alt {
			clauses, ok := orNextClauses(ex)
			if !ok {
				continue
			}
			if len(s.groups)-2+len(clauses) > s.opts.maxAlts() {
				break
			}

			rest := removeAt(append(group(nil), alt...), ei)
			split := make([]group, 0, len(clauses))
			for _, c := range clauses {
				split = append(split, append(append(group(nil), rest...), c))
			}
			groups := append(append([]group(nil), s.groups[:gi]...), split...)
			s.groups = append(groups, s.groups[gi+1:]...)
			return
		}
	}
}

func (s *state) splitCoreOrNext() bool {
	core := s.core()
	for ei, ex := range core {
		clauses, ok := orNextClauses(ex)
		if !ok {
			continue
		}

		alts := s.alts()
		if len(alts) == 0 {
			rest := removeAt(append(group(nil), core...), ei)
			groups := []group{rest}
			for _, c := range clauses {
				groups = append(groups, group{c})
			}
			s.groups = groups
			return true
		}

		if s.opts.supports(runtimever.FeatureOrNext) || len(alts)*len(clauses) > s.opts.maxAlts() {
			continue
		}

		rest := removeAt(append(group(nil), core...), ei)
		groups := []group{rest}
		for _, alt := range alts {
			for _, c := range clauses {
				g := append(append(group(nil), alt...), c)
				groups = append(groups, g)
			}
		}
		s.groups = groups
		return true
	}
	return false
}
