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

import "strings"

// Trigger is a core group ANDed with the OR of zero or more alt groups.
// A trigger without alts is exactly its core group, and an empty group is
// always true.
type Trigger struct {
	Core []Requirement
	Alts [][]Requirement
}

// Clone returns a deep copy of the trigger.
func (t *Trigger) Clone() *Trigger {
	out := &Trigger{Core: append([]Requirement(nil), t.Core...)}
	for _, alt := range t.Alts {
		out.Alts = append(out.Alts, append([]Requirement(nil), alt...))
	}
	return out
}

// Groups returns the core group followed by the alt groups.
func (t *Trigger) Groups() [][]Requirement {
	groups := make([][]Requirement, 0, len(t.Alts)+1)
	groups = append(groups, t.Core)
	groups = append(groups, t.Alts...)
	return groups
}

// Equal compares two triggers structurally.
func (t *Trigger) Equal(o *Trigger) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Alts) != len(o.Alts) || !groupEqual(t.Core, o.Core) {
		return false
	}
	for i := range t.Alts {
		if !groupEqual(t.Alts[i], o.Alts[i]) {
			return false
		}
	}
	return true
}

func groupEqual(a, b []Requirement) bool {
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

// Count returns the total number of requirements in all groups.
func (t *Trigger) Count() int {
	n := len(t.Core)
	for _, alt := range t.Alts {
		n += len(alt)
	}
	return n
}

// GroupString renders one group in the runtime's condition syntax.
func GroupString(group []Requirement) string {
	parts := make([]string, 0, len(group))
	for _, req := range group {
		parts = append(parts, req.String())
	}
	return strings.Join(parts, "_")
}

// String renders the trigger in the runtime's condition syntax: the core
// group followed by each alt group, separated by "S".
func (t *Trigger) String() string {
	var sb strings.Builder
	sb.WriteString(GroupString(t.Core))
	for _, alt := range t.Alts {
		sb.WriteByte('S')
		sb.WriteString(GroupString(alt))
	}
	return sb.String()
}

// ValueDef is a numeric expression for a leaderboard or rich presence macro.
// Each group is a chain ending in one Measured requirement; the value is
// the maximum of the groups.
type ValueDef struct {
	Groups [][]Requirement
}

// String renders the value in the runtime's value syntax.
func (v *ValueDef) String() string {
	parts := make([]string, 0, len(v.Groups))
	for _, g := range v.Groups {
		parts = append(parts, GroupString(g))
	}
	return strings.Join(parts, "$")
}
