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

// OptimizeValue simplifies the conditions of each value group and removes
// groups that repeat an earlier one.
func OptimizeValue(v *requirements.ValueDef, opts Options) {
	var groups [][]requirements.Requirement
	for _, g := range v.Groups {
		s := &state{opts: opts, groups: []group{requirements.Combine(g)}}
		s.normalizeLimits()

		out := make(group, 0, len(s.groups[0]))
		for _, ex := range s.groups[0] {
			if ex.Type() == requirements.RequirementTypeMeasuredIf && ex.Evaluate() == requirements.True {
				continue
			}
			out = append(out, ex)
		}
		if s.opts.supports(runtimever.FeatureRemember) {
			out = dropRepeatedCaptures(out)
		}

		flat := requirements.Flatten(out)
		dup := false
		for _, prev := range groups {
			if requirements.GroupString(prev) == requirements.GroupString(flat) {
				dup = true
				break
			}
		}
		if !dup {
			groups = append(groups, flat)
		}
	}
	v.Groups = groups
}
