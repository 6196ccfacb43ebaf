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

package functions

import (
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/builder"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
)

func isCondition(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Comparison, *ast.Conditional, *ast.BooleanConstant, *ast.FunctionCall:
		return true
	default:
		return false
	}
}

func checkCondition(name string) func(s *interpreter.Scope) *ast.ErrorExpression {
	return func(s *interpreter.Scope) *ast.ErrorExpression {
		if v := s.Get(name); !isCondition(v) {
			return ast.ErrorFromf(interpreter.ErrTypeMismatch, s.Location(name),
				"%s: expected a condition, got %s", name, ast.TypeName(v))
		}
		return nil
	}
}

func checkCount(s *interpreter.Scope) *ast.ErrorExpression {
	n, err := s.Integer("count")
	if err != nil {
		return err
	}
	if n < 1 {
		return ast.ErrorFromf(interpreter.ErrInvalidParameter, s.Location("count"),
			"count must be greater than zero, got %d", n)
	}
	return nil
}

func terminal(reqs []requirements.Requirement) *requirements.Requirement {
	return &reqs[len(reqs)-1]
}

// flag sets typ on the terminal of a chain that does not carry a flag yet.
func flag(reqs []requirements.Requirement, typ requirements.RequirementType, call *ast.FunctionCall,
) *ast.ErrorExpression {
	last := terminal(reqs)
	if last.Type != requirements.RequirementTypeNone {
		return ast.ErrorFromf(builder.ErrTooComplex, call.Range(),
			"%s cannot be applied to a condition already flagged %s", call.Name.Name, last.Type)
	}
	last.Type = typ
	return nil
}

// flagEach lowers e and flags it with typ. When e joins its operands with
// split, each operand becomes its own flagged requirement; otherwise the
// whole condition becomes one chain.
func flagEach(c *builder.Context, e ast.Expression, typ requirements.RequirementType,
	split ast.ConditionalOperation, call *ast.FunctionCall,
) *ast.ErrorExpression {
	conds := []ast.Expression{e}
	if v, ok := e.(*ast.Conditional); ok && v.Operation == split {
		conds = v.Conditions
	}
	for _, cond := range conds {
		reqs, err := c.BuildChain(cond)
		if err != nil {
			return err
		}
		if err := flag(reqs, typ, call); err != nil {
			return err
		}
		c.Append(reqs...)
	}
	return nil
}

// setHits gives a chain a hit target. Conditions joined with || use
// OrNext when the runtime has it and AddHits otherwise.
func setHits(c *builder.Context, e ast.Expression, n uint32, call *ast.FunctionCall,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	if v, ok := e.(*ast.Conditional); ok && v.Operation == ast.Or && !c.Supports(runtimever.FeatureOrNext) {
		var out []requirements.Requirement
		for i, cond := range v.Conditions {
			reqs, err := c.BuildChain(cond)
			if err != nil {
				return nil, err
			}
			if i < len(v.Conditions)-1 {
				if err := flag(reqs, requirements.RequirementTypeAddHits, call); err != nil {
					return nil, err
				}
			}
			out = append(out, reqs...)
		}
		terminal(out).HitCount = n
		return out, nil
	}

	reqs, err := c.BuildChain(e)
	if err != nil {
		return nil, err
	}
	last := terminal(reqs)
	if last.HitCount != 0 {
		return nil, ast.ErrorFromf(builder.ErrTooComplex, call.Range(),
			"%s cannot be applied to a condition that already has a hit target", call.Name.Name)
	}
	last.HitCount = n
	return reqs, nil
}

type once struct {
	*interpreter.Builtin
}

func newOnce() *once {
	return &once{Builtin: expanding("once(comparison)", checkCondition("comparison"))}
}

func (o *once) BuildChain(c *builder.Context, call *ast.FunctionCall,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	return setHits(c, call.Parameters[0], 1, call)
}

type repeated struct {
	*interpreter.Builtin
}

func newRepeated() *repeated {
	return &repeated{Builtin: expanding("repeated(count, comparison)", func(s *interpreter.Scope) *ast.ErrorExpression {
		if err := checkCount(s); err != nil {
			return err
		}
		return checkCondition("comparison")(s)
	})}
}

func (r *repeated) BuildChain(c *builder.Context, call *ast.FunctionCall,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	n := call.Parameters[0].(*ast.IntegerConstant).Unsigned()
	return setHits(c, call.Parameters[1], n, call)
}

// tally counts hits across several conditions. Conditions wrapped in
// deduct() subtract from the total.
type tally struct {
	*interpreter.Builtin
}

func newTally() *tally {
	return &tally{Builtin: expanding("tally(count, conditions...)", checkCount)}
}

func tallyConditions(call *ast.FunctionCall) []ast.Expression {
	conds := call.Parameters[1].(*ast.Array).Entries
	if len(conds) == 1 {
		if inner, ok := conds[0].(*ast.Array); ok {
			return inner.Entries
		}
	}
	return conds
}

func isDeduct(e ast.Expression) (ast.Expression, bool) {
	call, ok := e.(*ast.FunctionCall)
	if !ok || call.Name.Name != "deduct" || len(call.Parameters) != 1 {
		return nil, false
	}
	return call.Parameters[0], true
}

func (t *tally) BuildChain(c *builder.Context, call *ast.FunctionCall,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	var adds, subs [][]requirements.Requirement
	for _, cond := range tallyConditions(call) {
		inner, deducted := isDeduct(cond)
		if !deducted {
			inner = cond
		}
		reqs, err := c.BuildChain(inner)
		if err != nil {
			return nil, err
		}
		if terminal(reqs).Type != requirements.RequirementTypeNone {
			return nil, ast.ErrorFromf(builder.ErrTooComplex, cond.Range(),
				"tally condition cannot be flagged %s", terminal(reqs).Type)
		}
		if deducted {
			terminal(reqs).Type = requirements.RequirementTypeSubHits
			subs = append(subs, reqs)
		} else {
			adds = append(adds, reqs)
		}
	}
	if len(adds) == 0 {
		return nil, ast.ErrorFromf(interpreter.ErrInvalidParameter, call.Range(),
			"tally requires at least one condition that is not deducted")
	}

	var out []requirements.Requirement
	for _, reqs := range adds[:len(adds)-1] {
		terminal(reqs).Type = requirements.RequirementTypeAddHits
		out = append(out, reqs...)
	}
	for _, reqs := range subs {
		out = append(out, reqs...)
	}
	last := adds[len(adds)-1]
	terminal(last).HitCount = call.Parameters[0].(*ast.IntegerConstant).Unsigned()
	return append(out, last...), nil
}

type deduct struct {
	*interpreter.Builtin
}

func newDeduct() *deduct {
	return &deduct{Builtin: expanding("deduct(comparison)", checkCondition("comparison"))}
}

func (d *deduct) BuildChain(_ *builder.Context, call *ast.FunctionCall,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	return nil, ast.ErrorFromf(builder.ErrNotCondition, call.Range(), "deduct can only be used inside tally")
}

// never resets hit counts when its condition is true. Inside a chain it
// becomes ResetNextIf and only resets that chain.
type never struct {
	*interpreter.Builtin
}

func newNever() *never {
	return &never{Builtin: expanding("never(comparison)", checkCondition("comparison"))}
}

func (n *never) BuildTrigger(c *builder.Context, call *ast.FunctionCall) *ast.ErrorExpression {
	return flagEach(c, call.Parameters[0], requirements.RequirementTypeResetIf, ast.Or, call)
}

func (n *never) BuildChain(c *builder.Context, call *ast.FunctionCall,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	reqs, err := c.BuildChain(call.Parameters[0])
	if err != nil {
		return nil, err
	}
	if err := flag(reqs, requirements.RequirementTypeResetNextIf, call); err != nil {
		return nil, err
	}
	return reqs, nil
}

type unless struct {
	*interpreter.Builtin
}

func newUnless() *unless {
	return &unless{Builtin: expanding("unless(comparison)", checkCondition("comparison"))}
}

func (u *unless) BuildTrigger(c *builder.Context, call *ast.FunctionCall) *ast.ErrorExpression {
	return flagEach(c, call.Parameters[0], requirements.RequirementTypePauseIf, ast.Or, call)
}

type triggerWhen struct {
	*interpreter.Builtin
}

func newTriggerWhen() *triggerWhen {
	return &triggerWhen{Builtin: expanding("trigger_when(comparison)", checkCondition("comparison"))}
}

func (t *triggerWhen) BuildTrigger(c *builder.Context, call *ast.FunctionCall) *ast.ErrorExpression {
	return flagEach(c, call.Parameters[0], requirements.RequirementTypeTrigger, ast.And, call)
}

// measured reports progress towards its target: the hit target of a
// condition, or a value.
type measured struct {
	*interpreter.Builtin
}

func newMeasured() *measured {
	return &measured{Builtin: expanding(`measured(comparison, when = true, format = "raw")`,
		func(s *interpreter.Scope) *ast.ErrorExpression {
			f, err := s.Text("format")
			if err != nil {
				return err
			}
			if f != "raw" && f != "percent" {
				return ast.ErrorFromf(ErrInvalidFormat, s.Location("format"),
					"format must be raw or percent, got %s", f)
			}
			return checkCondition("when")(s)
		})}
}

func (m *measured) BuildTrigger(c *builder.Context, call *ast.FunctionCall) *ast.ErrorExpression {
	typ := requirements.RequirementTypeMeasured
	if f, ok := call.Parameters[2].(*ast.StringConstant); ok && f.Value == "percent" {
		typ = requirements.RequirementTypeMeasuredPercent
	}

	target := call.Parameters[0]
	var reqs []requirements.Requirement
	if c.IsCondition(target) {
		chain, err := c.BuildChain(target)
		if err != nil {
			return err
		}
		if err := flag(chain, typ, call); err != nil {
			return err
		}
		reqs = chain
	} else {
		l, err := c.BuildLinear(target)
		if err != nil {
			return err
		}
		reqs = builder.ValueChain(l, typ)
	}
	c.Append(reqs...)

	if when, ok := call.Parameters[1].(*ast.BooleanConstant); ok && when.Value {
		return nil
	}
	return flagEach(c, call.Parameters[1], requirements.RequirementTypeMeasuredIf, ast.And, call)
}

// marker is always_true() or always_false().
type marker struct {
	*interpreter.Builtin
	value bool
}

func newMarker(value bool) *marker {
	name := "always_false"
	if value {
		name = "always_true"
	}
	return &marker{Builtin: expanding(name+"()", nil), value: value}
}

func (m *marker) BuildChain(*builder.Context, *ast.FunctionCall) ([]requirements.Requirement, *ast.ErrorExpression) {
	if m.value {
		return []requirements.Requirement{requirements.AlwaysTrue()}, nil
	}
	return []requirements.Requirement{requirements.AlwaysFalse()}, nil
}

func (m *marker) Invert(call *ast.FunctionCall) ast.Expression {
	name := "always_true"
	if m.value {
		name = "always_false"
	}
	out := ast.NewFunctionCall(ast.NewVariable(name, call.Name.Range()), nil, call.Range())
	out.MarkExpanded()
	return out
}
