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

package builder

import (
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
)

// InvertibleFunction is a builtin whose calls can be negated with !.
type InvertibleFunction interface {
	Invert(call *ast.FunctionCall) ast.Expression
}

var comparisonOperators = map[ast.ComparisonOperation]requirements.Operator{
	ast.ComparisonEqual:              requirements.OperatorEqual,
	ast.ComparisonNotEqual:           requirements.OperatorNotEqual,
	ast.ComparisonLessThan:           requirements.OperatorLessThan,
	ast.ComparisonLessThanOrEqual:    requirements.OperatorLessThanOrEqual,
	ast.ComparisonGreaterThan:        requirements.OperatorGreaterThan,
	ast.ComparisonGreaterThanOrEqual: requirements.OperatorGreaterThanOrEqual,
}

// BuildCondition lowers a condition into the current group. Each operand
// of && becomes its own requirement chain; || becomes an OrNext chain.
func (c *Context) BuildCondition(e ast.Expression) *ast.ErrorExpression {
	switch v := e.(type) {
	case *ast.BooleanConstant:
		c.Append(marker(v.Value))
		return nil
	case *ast.Comparison:
		reqs, err := c.comparison(v)
		if err != nil {
			return err
		}
		c.Append(reqs...)
		return nil
	case *ast.Conditional:
		switch v.Operation {
		case ast.And:
			for _, cond := range v.Conditions {
				if err := c.BuildCondition(cond); err != nil {
					return err
				}
			}
			return nil
		case ast.Not:
			inverted, err := c.invert(v.Conditions[0])
			if err != nil {
				return err
			}
			return c.BuildCondition(inverted)
		}
		reqs, err := c.BuildChain(v)
		if err != nil {
			return err
		}
		c.Append(reqs...)
		return nil
	case *ast.FunctionCall:
		fn, err := c.function(v)
		if err != nil {
			return err
		}
		switch f := fn.(type) {
		case TriggerFunction:
			return f.BuildTrigger(c, v)
		case ChainFunction:
			reqs, err := f.BuildChain(c, v)
			if err != nil {
				return err
			}
			c.Append(reqs...)
			return nil
		}
		return ast.ErrorFromf(ErrNotCondition, e.Range(), "%s is not a condition", v.Name.Name)
	default:
		return ast.ErrorFromf(ErrNotCondition, e.Range(), "expected a condition, got %s", ast.TypeName(e))
	}
}

// BuildChain lowers a condition into a single requirement chain. The
// operands of && and || are joined with AndNext and OrNext.
func (c *Context) BuildChain(e ast.Expression) ([]requirements.Requirement, *ast.ErrorExpression) {
	switch v := e.(type) {
	case *ast.BooleanConstant:
		return []requirements.Requirement{marker(v.Value)}, nil
	case *ast.Comparison:
		return c.comparison(v)
	case *ast.Conditional:
		if v.Operation == ast.Not {
			inverted, err := c.invert(v.Conditions[0])
			if err != nil {
				return nil, err
			}
			return c.BuildChain(inverted)
		}
		parts := make([][]requirements.Requirement, 0, len(v.Conditions))
		for _, cond := range v.Conditions {
			part, err := c.BuildChain(cond)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		return join(parts, v.Operation, v.Range())
	case *ast.FunctionCall:
		fn, err := c.function(v)
		if err != nil {
			return nil, err
		}
		if f, ok := fn.(ChainFunction); ok {
			return f.BuildChain(c, v)
		}
		if _, ok := fn.(TriggerFunction); ok {
			return nil, ast.ErrorFromf(ErrTooComplex, e.Range(),
				"%s cannot be combined with other conditions", v.Name.Name)
		}
		return nil, ast.ErrorFromf(ErrNotCondition, e.Range(), "%s is not a condition", v.Name.Name)
	default:
		return nil, ast.ErrorFromf(ErrNotCondition, e.Range(), "expected a condition, got %s", ast.TypeName(e))
	}
}

func marker(b bool) requirements.Requirement {
	if b {
		return requirements.AlwaysTrue()
	}
	return requirements.AlwaysFalse()
}

// chainType returns the joining flag a chain already uses, if any.
func chainType(reqs []requirements.Requirement) requirements.RequirementType {
	for _, r := range reqs[:len(reqs)-1] {
		if r.Type == requirements.RequirementTypeAndNext || r.Type == requirements.RequirementTypeOrNext {
			return r.Type
		}
	}
	return requirements.RequirementTypeNone
}

// join links chains with AndNext or OrNext. ResetNextIf chains move to
// the front so they apply to the whole chain. At most one operand may
// already use the other joining flag; it goes first so the runtime
// evaluates it as a unit.
func join(parts [][]requirements.Requirement, op ast.ConditionalOperation, r ast.TextRange,
) ([]requirements.Requirement, *ast.ErrorExpression) {
	comb := requirements.RequirementTypeAndNext
	if op == ast.Or {
		comb = requirements.RequirementTypeOrNext
	}

	var resets, nested, rest [][]requirements.Requirement
	for _, p := range parts {
		last := p[len(p)-1].Type
		switch {
		case last == requirements.RequirementTypeResetNextIf:
			if op == ast.Or {
				return nil, ast.ErrorFromf(ErrTooComplex, r, "never() cannot be used in an || condition")
			}
			resets = append(resets, p)
		case chainType(p) != requirements.RequirementTypeNone && chainType(p) != comb:
			nested = append(nested, p)
		default:
			rest = append(rest, p)
		}
	}
	if len(nested) > 1 {
		return nil, ast.ErrorFromf(ErrTooComplex, r, "condition is too complex to express as a single chain")
	}

	ordered := append(nested, rest...)
	if len(ordered) == 0 {
		return nil, ast.ErrorFromf(ErrNotCondition, r, "never() requires another condition to reset")
	}

	var out []requirements.Requirement
	for _, p := range resets {
		out = append(out, p...)
	}
	for i, p := range ordered {
		p = append([]requirements.Requirement(nil), p...)
		if i < len(ordered)-1 {
			terminal := &p[len(p)-1]
			if terminal.Type != requirements.RequirementTypeNone {
				return nil, ast.ErrorFromf(ErrTooComplex, r,
					"condition flagged %s cannot be combined with other conditions", terminal.Type)
			}
			terminal.Type = comb
		}
		out = append(out, p...)
	}
	return out, nil
}

// invert returns the negation of a condition, pushing ! through && and
// || and into comparisons.
func (c *Context) invert(e ast.Expression) (ast.Expression, *ast.ErrorExpression) {
	switch v := e.(type) {
	case *ast.BooleanConstant:
		return ast.NewBoolean(!v.Value, v.Range()), nil
	case *ast.Comparison:
		return ast.NewComparison(v.Left, v.Operation.Invert(), v.Right), nil
	case *ast.Conditional:
		if v.Operation == ast.Not {
			return v.Conditions[0], nil
		}
		op := ast.Or
		if v.Operation == ast.Or {
			op = ast.And
		}
		inverted := make([]ast.Expression, 0, len(v.Conditions))
		for _, cond := range v.Conditions {
			n, err := c.invert(cond)
			if err != nil {
				return nil, err
			}
			inverted = append(inverted, n)
		}
		return ast.NewConditional(op, inverted...), nil
	case *ast.FunctionCall:
		fn, err := c.function(v)
		if err != nil {
			return nil, err
		}
		if f, ok := fn.(InvertibleFunction); ok {
			return f.Invert(v), nil
		}
	}
	return nil, ast.ErrorFromf(ErrNotCondition, e.Range(), "cannot invert %s", e)
}

// comparison lowers a relational expression. All terms move to the left
// side and the constants to the right; if every term is negative both
// sides are negated. Two plain fields compare directly.
func (c *Context) comparison(cmp *ast.Comparison) ([]requirements.Requirement, *ast.ErrorExpression) {
	left, err := c.BuildLinear(cmp.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.BuildLinear(cmp.Right)
	if err != nil {
		return nil, err
	}

	op := comparisonOperators[cmp.Operation]
	diff := left.add(right.negate())
	k := -diff.Constant
	terms := diff.Terms

	if len(terms) == 0 {
		return []requirements.Requirement{marker(compareConstants(0, op, k))}, nil
	}

	positive := false
	for _, t := range terms {
		if !t.Negative {
			positive = true
			break
		}
	}
	if !positive {
		flipped := make([]Term, 0, len(terms))
		for _, t := range terms {
			t.Negative = false
			flipped = append(flipped, t)
		}
		terms = flipped
		k = -k
		op = op.Reverse()
	}

	// A single unsigned read is never below a negative constant.
	if k < 0 && !diff.Float && len(terms) == 1 && unsignedTerm(terms[0]) {
		return []requirements.Requirement{marker(compareConstants(0, op, k))}, nil
	}

	var reqs []requirements.Requirement
	for _, t := range terms {
		reqs = append(reqs, t.Setup...)
	}

	if direct, ok := directComparison(terms, op, k, diff.Float); ok {
		return append(reqs, direct...), nil
	}

	terminal := -1
	for i := len(terms) - 1; i >= 0; i-- {
		if !terms[i].Negative && terms[i].plain() {
			terminal = i
			break
		}
	}

	for i, t := range terms {
		if i == terminal {
			continue
		}
		kind := requirements.RequirementTypeAddSource
		if t.Negative {
			kind = requirements.RequirementTypeSubSource
		}
		reqs = append(reqs, t.Pointer...)
		reqs = append(reqs, t.requirement(kind))
	}

	rightField := number(k, diff.Float)
	if k < 0 {
		reqs = append(reqs, requirements.Requirement{
			Type: requirements.RequirementTypeAddSource,
			Left: number(-k, diff.Float),
		})
		rightField = requirements.Value(0)
	}

	final := requirements.Requirement{Left: requirements.Value(0), Operator: op, Right: rightField}
	if terminal >= 0 {
		reqs = append(reqs, terms[terminal].Pointer...)
		final.Left = terms[terminal].Field
	}
	return append(reqs, final), nil
}

func unsignedTerm(t Term) bool {
	if t.Negative || !t.plain() || t.Field.Size.IsFloat() {
		return false
	}
	switch t.Field.Type {
	case requirements.FieldTypeMemoryAddress, requirements.FieldTypePreviousValue,
		requirements.FieldTypePriorValue, requirements.FieldTypeBinaryCodedDecimal:
		return true
	default:
		return false
	}
}

// directComparison handles "a op b" and "a + k op b" where a and b are
// plain fields read through the same pointer.
func directComparison(terms []Term, op requirements.Operator, k float64, isFloat bool,
) ([]requirements.Requirement, bool) {
	if len(terms) != 2 || k > 0 {
		return nil, false
	}
	a, b := terms[0], terms[1]
	if a.Negative {
		a, b = b, a
	}
	if a.Negative || !b.Negative || !a.plain() || !b.plain() || !sameRequirements(a.Pointer, b.Pointer) {
		return nil, false
	}

	var reqs []requirements.Requirement
	if k < 0 {
		reqs = append(reqs, requirements.Requirement{
			Type: requirements.RequirementTypeAddSource,
			Left: number(-k, isFloat),
		})
	}
	reqs = append(reqs, a.Pointer...)
	reqs = append(reqs, requirements.Requirement{Left: a.Field, Operator: op, Right: b.Field})
	return reqs, true
}

func compareConstants(left float64, op requirements.Operator, right float64) bool {
	switch op {
	case requirements.OperatorEqual:
		return left == right
	case requirements.OperatorNotEqual:
		return left != right
	case requirements.OperatorLessThan:
		return left < right
	case requirements.OperatorLessThanOrEqual:
		return left <= right
	case requirements.OperatorGreaterThan:
		return left > right
	case requirements.OperatorGreaterThanOrEqual:
		return left >= right
	default:
		return false
	}
}
