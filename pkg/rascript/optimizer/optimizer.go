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

// Package optimizer simplifies trigger groups into the smallest equivalent
// form the runtime can execute.
//
// The optimizer works on a core group and zero or more alt groups. Each
// pass is total and semantics preserving; the pipeline is repeated until
// the groups stop changing, so optimizing an already optimized trigger is
// a no-op.
package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
	"github.com/rs/zerolog/log"
)

// ErrMeasuredConflict is returned when measured() conditions disagree on
// their target.
var ErrMeasuredConflict = errors.New("multiple measured() conditions must have the same target")

const (
	// DefaultMaxAltGroups bounds how many alt groups an OrNext split may
	// produce for runtimes without OrNext support.
	DefaultMaxAltGroups = 20

	maxIterations = 16
)

// Options controls which transforms are legal for the target runtime.
type Options struct {
	MinimumVersion *semver.Version
	MaxAltGroups   int
}

func (o Options) supports(f runtimever.Feature) bool {
	return runtimever.Supports(o.MinimumVersion, f)
}

func (o Options) maxAlts() int {
	if o.MaxAltGroups <= 0 {
		return DefaultMaxAltGroups
	}
	return o.MaxAltGroups
}

type group = []requirements.RequirementEx

// state holds the groups of one trigger while the passes run. Index 0 is
// the core group, the rest are alt groups.
type state struct {
	groups []group
	opts   Options
}

func newState(t *requirements.Trigger, opts Options) *state {
	s := &state{opts: opts}
	s.groups = append(s.groups, requirements.Combine(t.Core))
	for _, alt := range t.Alts {
		s.groups = append(s.groups, requirements.Combine(alt))
	}
	return s
}

func (s *state) store(t *requirements.Trigger) {
	t.Core = requirements.Flatten(s.groups[0])
	t.Alts = nil
	for _, g := range s.groups[1:] {
		t.Alts = append(t.Alts, requirements.Flatten(g))
	}
}

func (s *state) core() group {
	return s.groups[0]
}

func (s *state) alts() []group {
	return s.groups[1:]
}

func (s *state) String() string {
	parts := make([]string, 0, len(s.groups))
	for _, g := range s.groups {
		exs := make([]string, 0, len(g))
		for _, ex := range g {
			exs = append(exs, ex.String())
		}
		parts = append(parts, strings.Join(exs, "_"))
	}
	return strings.Join(parts, "S")
}

// Optimize simplifies the trigger in place.
func Optimize(t *requirements.Trigger, opts Options) error {
	s := newState(t, opts)
	if err := s.validateMeasured(); err != nil {
		return err
	}

	before := s.String()
	iterations := 0
	for iterations < maxIterations {
		iterations++
		s.run()
		after := s.String()
		if after == before {
			break
		}
		before = after
	}

	s.store(t)

	log.Debug().
		Int("iterations", iterations).
		Int("alts", len(t.Alts)).
		Int("requirements", t.Count()).
		Msg("optimized trigger")

	return nil
}

func (s *state) run() {
	s.defangPausesAndResets()
	s.extractResetNextIf()
	s.normalizeLimits()
	s.evaluateStatic()
	s.removeDuplicates()
	s.mergeRanges()
	s.mergeBits()
	s.mergeAlts()
	s.splitOrNext()
	s.removeRedundantRemembers()
}

func (s *state) validateMeasured() error {
	var target *uint32
	for _, g := range s.groups {
		for _, ex := range g {
			if !ex.Type().IsMeasured() {
				continue
			}
			term := ex.Terminal()
			value := term.HitCount
			if value == 0 && term.IsComparison() && term.Right.Type == requirements.FieldTypeValue {
				value = term.Right.Value
			}
			if target == nil {
				target = &value
			} else if *target != value {
				return fmt.Errorf("%w: %d and %d", ErrMeasuredConflict, *target, value)
			}
		}
	}
	return nil
}

// helpers shared by the passes

func isPlain(ex requirements.RequirementEx) bool {
	return ex.Type() == requirements.RequirementTypeNone && !ex.HasHitTarget()
}

func hasType(g group, t requirements.RequirementType) bool {
	for _, ex := range g {
		if ex.Type() == t {
			return true
		}
	}
	return false
}

func hasMeasured(g group) bool {
	for _, ex := range g {
		if ex.Type().IsMeasured() {
			return true
		}
	}
	return false
}

func groupHasHitTargets(g group) bool {
	for _, ex := range g {
		if ex.HasHitTarget() {
			return true
		}
	}
	return false
}

func (s *state) hasHitTargets() bool {
	for _, g := range s.groups {
		if groupHasHitTargets(g) {
			return true
		}
	}
	return false
}

func (s *state) hasMeasured() bool {
	for _, g := range s.groups {
		if hasMeasured(g) {
			return true
		}
	}
	return false
}

// invertible reports whether the chain's truth can be negated by inverting
// the terminal comparison alone.
func invertible(ex requirements.RequirementEx) bool {
	if ex.HasHitTarget() || !ex.Terminal().IsComparison() {
		return false
	}
	for _, req := range ex.Prefix() {
		if !req.Type.IsScalar() {
			return false
		}
	}
	return true
}

func invert(ex requirements.RequirementEx) requirements.RequirementEx {
	out := ex.Clone()
	term := out.Terminal()
	term.Type = requirements.RequirementTypeNone
	term.Operator = term.Operator.Invert()
	out.SetTerminal(term)
	return out
}

func marker(req requirements.Requirement, t requirements.RequirementType) requirements.RequirementEx {
	req.Type = t
	return requirements.NewRequirementEx(req)
}

func isMarker(ex requirements.RequirementEx, alwaysTrue bool) bool {
	if !ex.IsSingle() || ex.HitCount() > 1 {
		return false
	}
	if alwaysTrue {
		return ex.Terminal().IsAlwaysTrue()
	}
	return ex.Terminal().IsAlwaysFalse()
}

func isFalseGroup(g group) bool {
	for _, ex := range g {
		if ex.Type() == requirements.RequirementTypeNone && isMarker(ex, false) {
			return true
		}
	}
	return false
}

func removeAt(g group, i int) group {
	return append(g[:i:i], g[i+1:]...)
}
