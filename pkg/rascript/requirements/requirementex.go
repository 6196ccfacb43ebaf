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

// RequirementEx is a maximal run of requirements forming one logical
// comparison: zero or more combining requirements followed by exactly one
// terminal requirement that carries the real flag and hit count.
type RequirementEx struct {
	Requirements []Requirement
}

// NewRequirementEx wraps a single requirement.
func NewRequirementEx(reqs ...Requirement) RequirementEx {
	return RequirementEx{Requirements: append([]Requirement(nil), reqs...)}
}

// Combine splits a flat requirement list into chains.
func Combine(reqs []Requirement) []RequirementEx {
	var out []RequirementEx
	var current []Requirement
	for _, r := range reqs {
		current = append(current, r)
		if !r.Type.IsCombining() {
			out = append(out, RequirementEx{Requirements: current})
			current = nil
		}
	}
	if len(current) > 0 {
		// dangling combining requirements stay together so nothing is lost
		out = append(out, RequirementEx{Requirements: current})
	}
	return out
}

// Flatten joins chains back into a flat requirement list.
func Flatten(group []RequirementEx) []Requirement {
	var out []Requirement
	for _, ex := range group {
		out = append(out, ex.Requirements...)
	}
	return out
}

// Clone returns a deep copy of the chain.
func (r RequirementEx) Clone() RequirementEx {
	return RequirementEx{Requirements: append([]Requirement(nil), r.Requirements...)}
}

// Terminal returns the last requirement of the chain.
func (r RequirementEx) Terminal() Requirement {
	if len(r.Requirements) == 0 {
		return Requirement{}
	}
	return r.Requirements[len(r.Requirements)-1]
}

// SetTerminal replaces the last requirement of the chain.
func (r RequirementEx) SetTerminal(req Requirement) {
	if len(r.Requirements) > 0 {
		r.Requirements[len(r.Requirements)-1] = req
	}
}

// Prefix returns the combining requirements before the terminal.
func (r RequirementEx) Prefix() []Requirement {
	if len(r.Requirements) == 0 {
		return nil
	}
	return r.Requirements[:len(r.Requirements)-1]
}

// Type returns the flag of the terminal requirement.
func (r RequirementEx) Type() RequirementType {
	return r.Terminal().Type
}

// HitCount returns the hit target of the terminal requirement.
func (r RequirementEx) HitCount() uint32 {
	return r.Terminal().HitCount
}

// IsSingle reports whether the chain is a single requirement.
func (r RequirementEx) IsSingle() bool {
	return len(r.Requirements) == 1
}

// HasHitTarget reports whether any requirement in the chain carries a hit
// count.
func (r RequirementEx) HasHitTarget() bool {
	for _, req := range r.Requirements {
		if req.HitCount > 0 {
			return true
		}
		if req.Type == RequirementTypeAddHits || req.Type == RequirementTypeSubHits {
			return true
		}
	}
	return false
}

// Contains reports whether any requirement in the chain has the given type.
func (r RequirementEx) Contains(t RequirementType) bool {
	for _, req := range r.Requirements {
		if req.Type == t {
			return true
		}
	}
	return false
}

// UsesRecall reports whether any requirement reads the remembered value.
func (r RequirementEx) UsesRecall() bool {
	for _, req := range r.Requirements {
		if req.Left.Type == FieldTypeRecall || req.Right.Type == FieldTypeRecall {
			return true
		}
	}
	return false
}

// Equal compares two chains structurally.
func (r RequirementEx) Equal(o RequirementEx) bool {
	if len(r.Requirements) != len(o.Requirements) {
		return false
	}
	for i := range r.Requirements {
		if r.Requirements[i] != o.Requirements[i] {
			return false
		}
	}
	return true
}

// PrefixEqual reports whether the two chains have identical prefixes.
func (r RequirementEx) PrefixEqual(o RequirementEx) bool {
	a, b := r.Prefix(), o.Prefix()
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

// Addresses returns the memory addresses referenced by the chain.
func (r RequirementEx) Addresses() []uint32 {
	var out []uint32
	for _, req := range r.Requirements {
		if req.Left.IsMemoryReference() {
			out = append(out, req.Left.Value)
		}
		if req.Right.IsMemoryReference() {
			out = append(out, req.Right.Value)
		}
	}
	return out
}

// Evaluate determines whether the chain is statically true or false.
// Chains that accumulate values or hits are never statically known, and a
// true result that has to be held for more than one frame is unknown.
func (r RequirementEx) Evaluate() Tristate {
	if len(r.Requirements) == 0 {
		return True
	}

	result := Unknown
	pending := RequirementTypeNone
	for i, req := range r.Requirements {
		switch req.Type {
		case RequirementTypeAddSource, RequirementTypeSubSource,
			RequirementTypeAddAddress, RequirementTypeRemember,
			RequirementTypeAddHits, RequirementTypeSubHits,
			RequirementTypeResetNextIf:
			return Unknown
		}
		if req.HitCount > 0 && i != len(r.Requirements)-1 {
			return Unknown
		}

		value := req.Evaluate()
		if i == 0 {
			result = value
		} else {
			switch pending {
			case RequirementTypeAndNext:
				result = result.And(value)
			case RequirementTypeOrNext:
				result = result.Or(value)
			}
		}
		pending = req.Type
	}

	if result == True && r.HitCount() > 1 {
		return Unknown
	}
	return result
}

// String renders the chain in the runtime's condition syntax.
func (r RequirementEx) String() string {
	parts := make([]string, 0, len(r.Requirements))
	for _, req := range r.Requirements {
		parts = append(parts, req.String())
	}
	return strings.Join(parts, "_")
}
