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

// defangPausesAndResets converts PauseIf and ResetIf conditions that guard
// nothing into plain negated comparisons.
func (s *state) defangPausesAndResets() {
	for i := range s.groups {
		s.groups[i] = defangPauses(s.groups[i])
	}

	if s.hasHitTargets() {
		return
	}

	// a reset in one of several alts also blocks the other alts, so only
	// resets whose group is required can become plain conditions
	changed := false
	for gi, g := range s.groups {
		if gi > 0 && len(s.groups) > 2 {
			break
		}
		for ei, ex := range g {
			if ex.Type() == requirements.RequirementTypeResetIf && invertible(ex) {
				s.groups[gi][ei] = invert(ex)
				changed = true
			}
		}
	}

	// a removed ResetIf may leave a PauseIf with nothing to guard
	if changed {
		for i := range s.groups {
			s.groups[i] = defangPauses(s.groups[i])
		}
	}
}

// pauseGuardsSomething reports whether pausing the group would change
// anything beyond making the group false.
func pauseGuardsSomething(g group) bool {
	for _, ex := range g {
		switch ex.Type() {
		case requirements.RequirementTypeResetIf,
			requirements.RequirementTypeMeasured,
			requirements.RequirementTypeMeasuredPercent,
			requirements.RequirementTypeTrigger:
			return true
		}
		if ex.HasHitTarget() || ex.Contains(requirements.RequirementTypeResetNextIf) ||
			ex.Contains(requirements.RequirementTypeRemember) {
			return true
		}
	}
	return false
}

func defangPauses(g group) group {
	if !hasType(g, requirements.RequirementTypePauseIf) || pauseGuardsSomething(g) {
		return g
	}
	for i, ex := range g {
		if ex.Type() == requirements.RequirementTypePauseIf && invertible(ex) {
			g[i] = invert(ex)
		}
	}
	return g
}

type exLocation struct {
	group int
	index int
}

// resetNextIfPrefix returns the requirements up to and including the first
// ResetNextIf of the chain.
func resetNextIfPrefix(ex requirements.RequirementEx) []requirements.Requirement {
	for i, req := range ex.Requirements {
		if req.Type == requirements.RequirementTypeResetNextIf {
			return ex.Requirements[:i+1]
		}
	}
	return nil
}

func sameRequirements(a, b []requirements.Requirement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// extractResetNextIf hoists a ResetNextIf that guards every hit target in
// the trigger into a single ResetIf.
func (s *state) extractResetNextIf() {
	var targets []exLocation
	var prefix []requirements.Requirement

	for gi, g := range s.groups {
		for ei, ex := range g {
			if !ex.HasHitTarget() {
				continue
			}
			if ex.Contains(requirements.RequirementTypeAddHits) ||
				ex.Contains(requirements.RequirementTypeSubHits) {
				return
			}
			switch ex.Type() {
			case requirements.RequirementTypePauseIf, requirements.RequirementTypeTrigger:
				return
			}
			p := resetNextIfPrefix(ex)
			if p == nil || ex.HitCount() == 0 {
				return
			}
			if prefix == nil {
				prefix = p
			} else if !sameRequirements(prefix, p) {
				return
			}
			targets = append(targets, exLocation{group: gi, index: ei})
		}
	}

	if len(targets) == 0 {
		return
	}

	inCore := false
	withTargets := make(map[int]bool)
	for _, t := range targets {
		if hasType(s.groups[t.group], requirements.RequirementTypePauseIf) {
			return
		}
		if t.group == 0 {
			inCore = true
		}
		withTargets[t.group] = true
	}

	// a ResetIf in an alt also stops every other alt from firing, so the
	// reset may only go where the targets already make the trigger false
	destination := 0
	switch {
	case inCore:
	case len(s.groups) == 2:
		destination = 1
	case len(withTargets) == len(s.groups)-1:
	default:
		return
	}
	if hasType(s.groups[destination], requirements.RequirementTypePauseIf) {
		return
	}

	reset := append([]requirements.Requirement(nil), prefix...)
	reset[len(reset)-1].Type = requirements.RequirementTypeResetIf

	for _, t := range targets {
		ex := s.groups[t.group][t.index]
		stripped := append([]requirements.Requirement(nil), ex.Requirements[len(prefix):]...)
		s.groups[t.group][t.index] = requirements.RequirementEx{Requirements: stripped}
	}

	s.groups[destination] = append(s.groups[destination], requirements.RequirementEx{Requirements: reset})
}
