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

// removeDuplicates removes repeated chains within a group and alt group
// chains that the core group already enforces.
func (s *state) removeDuplicates() {
	for gi := range s.groups {
		s.groups[gi] = dedupeGroup(s.groups[gi])
	}

	core := s.core()
	corePaused := hasType(core, requirements.RequirementTypePauseIf)
	for gi := 1; gi < len(s.groups); gi++ {
		alt := s.groups[gi]
		paused := corePaused || hasType(alt, requirements.RequirementTypePauseIf)
		out := make(group, 0, len(alt))
		for _, ex := range alt {
			if redundantWithCore(ex, core, paused) {
				continue
			}
			out = append(out, ex)
		}
		if len(out) == 0 && len(alt) > 0 {
			out = group{marker(requirements.AlwaysTrue(), requirements.RequirementTypeNone)}
		}
		s.groups[gi] = out
	}
}

func dedupeGroup(g group) group {
	out := make(group, 0, len(g))
	for _, ex := range g {
		// an identical recall may observe a different remembered value
		if ex.UsesRecall() && !ex.Contains(requirements.RequirementTypeRemember) {
			out = append(out, ex)
			continue
		}
		if indexOf(out, ex) >= 0 {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func indexOf(g group, ex requirements.RequirementEx) int {
	for i, other := range g {
		if other.Equal(ex) {
			return i
		}
	}
	return -1
}

func redundantWithCore(ex requirements.RequirementEx, core group, paused bool) bool {
	switch ex.Type() {
	case requirements.RequirementTypePauseIf,
		requirements.RequirementTypeMeasured,
		requirements.RequirementTypeMeasuredPercent,
		requirements.RequirementTypeMeasuredIf,
		requirements.RequirementTypeTrigger:
		return false
	}
	if isMarker(ex, true) {
		return false
	}
	// latches in differently paused groups do not count the same frames
	if paused && (ex.HasHitTarget() || ex.Type() == requirements.RequirementTypeResetIf) {
		return false
	}
	if ex.UsesRecall() || ex.Contains(requirements.RequirementTypeRemember) {
		return false
	}
	return indexOf(core, ex) >= 0
}
