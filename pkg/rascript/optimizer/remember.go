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

// capture is a Remember requirement and the scalar prefix that feeds it.
type capture struct {
	start int
	end   int
}

func captures(ex requirements.RequirementEx) []capture {
	var out []capture
	start := 0
	for i, req := range ex.Requirements {
		switch {
		case req.Type == requirements.RequirementTypeRemember:
			out = append(out, capture{start: start, end: i + 1})
			start = i + 1
		case !req.Type.IsScalar():
			start = i + 1
		}
	}
	return out
}

func recalls(reqs []requirements.Requirement) bool {
	for _, req := range reqs {
		if req.Left.Type == requirements.FieldTypeRecall || req.Right.Type == requirements.FieldTypeRecall {
			return true
		}
	}
	return false
}

// removeRedundantRemembers drops a Remember that stores the value already
// remembered by the previous capture in the same group.
func (s *state) removeRedundantRemembers() {
	if !s.opts.supports(runtimever.FeatureRemember) {
		return
	}
	for gi := range s.groups {
		s.groups[gi] = dropRepeatedCaptures(s.groups[gi])
	}
}

func dropRepeatedCaptures(g group) group {
	// pause chains are evaluated ahead of the rest of the group
	for _, ex := range g {
		if ex.Type() == requirements.RequirementTypePauseIf && ex.Contains(requirements.RequirementTypeRemember) {
			return g
		}
	}

	var last []requirements.Requirement
	for ei, ex := range g {
		caps := captures(ex)
		if len(caps) == 0 {
			continue
		}

		var kept []requirements.Requirement
		prev := 0
		for _, c := range caps {
			chain := ex.Requirements[c.start:c.end]
			if last != nil && sameRequirements(last, chain) && !recalls(chain) {
				kept = append(kept, ex.Requirements[prev:c.start]...)
				prev = c.end
				continue
			}
			last = chain
		}
		if prev == 0 {
			continue
		}
		kept = append(kept, ex.Requirements[prev:]...)
		g[ei] = requirements.RequirementEx{Requirements: kept}
	}
	return g
}
