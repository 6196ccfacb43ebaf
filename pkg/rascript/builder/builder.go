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

// Package builder lowers evaluated expressions into the condition IR.
//
// Conditions become requirements appended to the group being built;
// arithmetic becomes a list of terms (a field times a multiplier) that is
// emitted as an AddSource/SubSource chain. Builtins take part through the
// TriggerFunction, ChainFunction and ValueFunction interfaces, so the
// builder itself only knows about operators.
package builder

import (
	"errors"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotCondition       = errors.New("expected a condition")
	ErrNotValue           = errors.New("expected a value")
	ErrTooComplex         = errors.New("condition too complex")
	ErrMeasuredCount      = errors.New("value must contain exactly one measured() expression")
	ErrUnguardedReset     = errors.New("value contains a never/unless without a repeated")
	ErrDivideByZero       = errors.New("division by zero")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrUnsupportedFeature = errors.New("not supported by the minimum runtime version")
)

// Options controls lowering.
type Options struct {
	MinimumVersion *semver.Version
}

// TriggerFunction is a builtin that lowers its calls into requirements
// appended to the current group, such as once() or never().
type TriggerFunction interface {
	BuildTrigger(c *Context, call *ast.FunctionCall) *ast.ErrorExpression
}

// ChainFunction is a builtin that can be part of a single requirement
// chain, such as the condition of once() or one side of an OrNext.
type ChainFunction interface {
	BuildChain(c *Context, call *ast.FunctionCall) ([]requirements.Requirement, *ast.ErrorExpression)
}

// ValueFunction is a builtin that produces a value, such as a memory
// accessor.
type ValueFunction interface {
	BuildValue(c *Context, call *ast.FunctionCall) (Linear, *ast.ErrorExpression)
}

// ValueGroupFunction is a builtin whose value is the maximum of several
// independent values, each lowered into its own group.
type ValueGroupFunction interface {
	ValueGroups(call *ast.FunctionCall) []ast.Expression
}

// Context is the lowering state. It is stored in the Context field of the
// scope it was created from so builtins reached through that scope can
// find it.
type Context struct {
	Scope  *interpreter.Scope
	opts   Options
	target *[]requirements.Requirement
}

func newContext(s *interpreter.Scope, opts Options) *Context {
	c := &Context{opts: opts}
	c.Scope = s.WithContext(c)
	return c
}

// FromScope returns the lowering context s belongs to, if any.
func FromScope(s *interpreter.Scope) (*Context, bool) {
	c, ok := s.Context.(*Context)
	return c, ok
}

// Supports reports whether the minimum runtime version has the feature.
func (c *Context) Supports(f runtimever.Feature) bool {
	return runtimever.Supports(c.opts.MinimumVersion, f)
}

// Append adds requirements to the group being built.
func (c *Context) Append(reqs ...requirements.Requirement) {
	*c.target = append(*c.target, reqs...)
}

// Collect lowers a condition into a new list instead of the current
// group.
func (c *Context) Collect(e ast.Expression) ([]requirements.Requirement, *ast.ErrorExpression) {
	saved := c.target
	var out []requirements.Requirement
	c.target = &out
	err := c.BuildCondition(e)
	c.target = saved
	return out, err
}

func (c *Context) function(call *ast.FunctionCall) (interpreter.Function, *ast.ErrorExpression) {
	fn, ok := c.Scope.Function(call.Name.Name)
	if !ok {
		return nil, ast.ErrorFromf(interpreter.ErrUnknownFunction, call.Name.Range(),
			"unknown function: %s", call.Name.Name)
	}
	return fn, nil
}

// BuildTrigger lowers a condition into a core group and alt groups. A
// top-level || makes each operand an alt group. A top-level && whose
// operands include a || makes that operand the alt groups and the rest the
// core.
func BuildTrigger(e ast.Expression, s *interpreter.Scope, opts Options,
) (*requirements.Trigger, *ast.ErrorExpression) {
	c := newContext(s, opts)
	t := &requirements.Trigger{}

	core, alts := splitAlts(e)

	c.target = &t.Core
	for _, cond := range core {
		if err := c.BuildCondition(cond); err != nil {
			return nil, err
		}
	}

	for _, alt := range alts {
		var g []requirements.Requirement
		c.target = &g
		if err := c.BuildCondition(alt); err != nil {
			return nil, err
		}
		t.Alts = append(t.Alts, g)
	}

	if len(t.Core) == 0 && len(t.Alts) == 0 {
		t.Core = append(t.Core, requirements.AlwaysTrue())
	}

	log.Trace().
		Int("core", len(t.Core)).
		Int("alts", len(t.Alts)).
		Msg("built trigger")

	return t, nil
}

func splitAlts(e ast.Expression) (core, alts []ast.Expression) {
	cond, ok := e.(*ast.Conditional)
	if !ok {
		return []ast.Expression{e}, nil
	}
	switch cond.Operation {
	case ast.Or:
		return nil, cond.Conditions
	case ast.And:
		for i, operand := range cond.Conditions {
			if inner, ok := operand.(*ast.Conditional); ok && inner.Operation == ast.Or && alts == nil {
				alts = inner.Conditions
				core = append(core, cond.Conditions[:i]...)
				core = append(core, cond.Conditions[i+1:]...)
				return core, alts
			}
		}
	}
	return []ast.Expression{e}, nil
}

// BuildValue lowers a numeric expression into value groups, each ending
// in one Measured requirement. max_of() produces one group per argument.
func BuildValue(e ast.Expression, s *interpreter.Scope, opts Options,
) (*requirements.ValueDef, *ast.ErrorExpression) {
	c := newContext(s, opts)

	exprs := []ast.Expression{e}
	if call, ok := e.(*ast.FunctionCall); ok {
		fn, err := c.function(call)
		if err != nil {
			return nil, err
		}
		if vg, ok := fn.(ValueGroupFunction); ok {
			exprs = vg.ValueGroups(call)
		}
	}

	v := &requirements.ValueDef{}
	for _, expr := range exprs {
		g, err := c.valueGroup(expr)
		if err != nil {
			return nil, err
		}
		v.Groups = append(v.Groups, g)
	}
	return v, nil
}

// IsCondition reports whether e lowers to requirements rather than a value.
func (c *Context) IsCondition(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.Comparison, *ast.Conditional, *ast.BooleanConstant:
		return true
	case *ast.FunctionCall:
		fn, ok := c.Scope.Function(v.Name.Name)
		if !ok {
			return false
		}
		switch fn.(type) {
		case TriggerFunction, ChainFunction:
			return true
		}
		return false
	default:
		return false
	}
}

func (c *Context) valueGroup(e ast.Expression) ([]requirements.Requirement, *ast.ErrorExpression) {
	if !c.IsCondition(e) {
		lin, err := c.BuildLinear(e)
		if err != nil {
			return nil, err
		}
		return ValueChain(lin, requirements.RequirementTypeMeasured), nil
	}

	reqs, err := c.Collect(e)
	if err != nil {
		return nil, err
	}

	measured := 0
	hits := false
	resets := false
	for _, r := range reqs {
		if r.Type.IsMeasured() {
			measured++
		}
		if r.HitCount > 0 || r.Type == requirements.RequirementTypeAddHits ||
			r.Type == requirements.RequirementTypeSubHits {
			hits = true
		}
		if r.Type == requirements.RequirementTypeResetIf || r.Type == requirements.RequirementTypePauseIf {
			resets = true
		}
	}

	if measured == 0 {
		if len(requirements.Combine(reqs)) == 1 {
			reqs[len(reqs)-1].Type = requirements.RequirementTypeMeasured
			measured = 1
		}
	}
	if measured != 1 {
		return nil, ast.ErrorFrom(ErrMeasuredCount, e.Range())
	}
	if resets && !hits {
		return nil, ast.ErrorFrom(ErrUnguardedReset, e.Range())
	}
	return reqs, nil
}
