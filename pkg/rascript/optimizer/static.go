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

// evaluateStatic replaces statically known conditions with always-true or
// always-false markers and propagates their effect on the group and on the
// whole trigger.
func (s *state) evaluateStatic() {
	measuredAnywhere := s.hasMeasured()
	hitsAnywhere := s.hasHitTargets()

	for gi := range s.groups {
		// resets in an alt still block the other alts
		keepResets := hitsAnywhere || gi > 0
		s.groups[gi] = evaluateGroup(s.groups[gi], measuredAnywhere, keepResets)
	}

	s.propagateFalseGroups()
}

func evaluateGroup(g group, measuredAnywhere, keepResets bool) group {
	out := make(group, 0, len(g))
	pausedForever := false
	resetForever := false
	isFalse := false

	for _, ex := range g {
		result := ex.Evaluate()
		switch ex.Type() {
		case requirements.RequirementTypeNone, requirements.RequirementTypeMeasuredIf:
			switch result {
			case requirements.True:
				out = append(out, marker(requirements.AlwaysTrue(), requirements.RequirementTypeNone))
			case requirements.False:
				out = append(out, marker(requirements.AlwaysFalse(), requirements.RequirementTypeNone))
				isFalse = true
			default:
				out = append(out, ex)
			}

		case requirements.RequirementTypePauseIf:
			switch result {
			case requirements.True:
				pausedForever = true
			case requirements.False:
				// can never pause
			default:
				out = append(out, ex)
			}

		case requirements.RequirementTypeResetIf:
			switch result {
			case requirements.True:
				resetForever = true
				out = append(out, marker(requirements.AlwaysTrue(), requirements.RequirementTypeResetIf))
			case requirements.False:
				// can never reset
			default:
				out = append(out, ex)
			}

		case requirements.RequirementTypeTrigger:
			switch result {
			case requirements.False:
				isFalse = true
				if measuredAnywhere {
					out = append(out, marker(requirements.AlwaysFalse(), requirements.RequirementTypeTrigger))
				} else {
					out = append(out, marker(requirements.AlwaysFalse(), requirements.RequirementTypeNone))
				}
			default:
				out = append(out, ex)
			}

		default:
			out = append(out, ex)
		}
	}

	switch {
	case pausedForever:
		return group{marker(requirements.AlwaysFalse(), requirements.RequirementTypeNone)}

	case resetForever && !hasType(out, requirements.RequirementTypePauseIf):
		return group{marker(requirements.AlwaysTrue(), requirements.RequirementTypeResetIf)}

	case isFalse:
		return collapseFalseGroup(out, keepResets)
	}

	return removeTrueMarkers(out)
}

// collapseFalseGroup reduces a group that can never be true to the
// conditions that still have an effect outside the group.
func collapseFalseGroup(g group, keepResets bool) group {
	if hasMeasured(g) || hasType(g, requirements.RequirementTypeTrigger) {
		return dedupeFalseMarkers(g)
	}

	var keep group
	if keepResets {
		for _, ex := range g {
			if ex.Type() == requirements.RequirementTypeResetIf {
				keep = append(keep, ex)
			}
		}
		if len(keep) > 0 {
			var pauses group
			for _, ex := range g {
				if ex.Type() == requirements.RequirementTypePauseIf {
					pauses = append(pauses, ex)
				}
			}
			keep = append(pauses, keep...)
		}
	}

	return append(keep, marker(requirements.AlwaysFalse(), requirements.RequirementTypeNone))
}

func dedupeFalseMarkers(g group) group {
	out := make(group, 0, len(g))
	seen := false
	for _, ex := range g {
		if ex.Type() == requirements.RequirementTypeNone && isMarker(ex, false) {
			if seen {
				continue
			}
			seen = true
		}
		out = append(out, ex)
	}
	return out
}

// removeTrueMarkers drops plain always-true markers from a group that has
// other conditions. A group of only markers keeps one.
func removeTrueMarkers(g group) group {
	out := make(group, 0, len(g))
	for _, ex := range g {
		if ex.Type() == requirements.RequirementTypeNone && isMarker(ex, true) {
			continue
		}
		out = append(out, ex)
	}
	if len(out) == 0 && len(g) > 0 {
		return group{marker(requirements.AlwaysTrue(), requirements.RequirementTypeNone)}
	}
	return out
}

// propagateFalseGroups applies the effect of always-false groups on the
// trigger: a false core makes the whole trigger false, a false alt group
// is dropped unless it still resets hits elsewhere, and a trigger whose
// every alt is false is false.
func (s *state) propagateFalseGroups() {
	if s.hasMeasured() {
		return
	}

	falseTrigger := []group{{marker(requirements.AlwaysFalse(), requirements.RequirementTypeNone)}}

	if isFalseGroup(s.core()) {
		s.groups = falseTrigger
		return
	}

	alts := s.alts()
	if len(alts) == 0 {
		s.trimTrueCore()
		return
	}

	kept := make([]group, 0, len(alts))
	allFalse := true
	for _, alt := range alts {
		if !isFalseGroup(alt) {
			allFalse = false
			kept = append(kept, alt)
			continue
		}
		if hasType(alt, requirements.RequirementTypeResetIf) {
			kept = append(kept, alt)
		}
	}

	if allFalse {
		s.groups = falseTrigger
		return
	}

	s.groups = append([]group{s.core()}, kept...)
	s.trimTrueCore()
}

// trimTrueCore empties a core group of only always-true markers when alt
// groups carry the logic.
func (s *state) trimTrueCore() {
	core := s.core()
	if len(s.groups) > 1 && len(core) == 1 && core[0].Type() == requirements.RequirementTypeNone &&
		isMarker(core[0], true) {
		s.groups[0] = group{}
	}
}
