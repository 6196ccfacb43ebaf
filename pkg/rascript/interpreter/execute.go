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

package interpreter

import (
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/parser"
	"github.com/rs/zerolog/log"
)

// Run executes the statements of a parsed script in s and stops at the
// first error. Scripts with syntax errors are not run; the first syntax
// error is returned instead.
func Run(script *parser.Script, s *Scope) *ast.ErrorExpression {
	if script.HasErrors() {
		return script.Errors[0]
	}
	err := Execute(script.Statements, s)
	log.Debug().
		Int("statements", len(script.Statements)).
		Int("functions", len(s.Root().functions)).
		Bool("failed", err != nil).
		Msg("script executed")
	return err
}

// Execute runs statements in s. Execution stops at the first error or
// when a return statement is reached.
func Execute(stmts []ast.Expression, s *Scope) *ast.ErrorExpression {
	return executeBlock(stmts, s)
}

func executeBlock(stmts []ast.Expression, s *Scope) *ast.ErrorExpression {
	for _, stmt := range stmts {
		if err := executeStatement(stmt, s); err != nil {
			return err
		}
		if s.hasReturned() {
			return nil
		}
	}
	return nil
}

func executeStatement(stmt ast.Expression, s *Scope) *ast.ErrorExpression {
	switch v := stmt.(type) {
	case *ast.Comment:
		return nil
	case *ast.ErrorExpression:
		return v
	case *ast.Assignment:
		_, err := evaluateAssignment(v, s)
		return err
	case *ast.FunctionDefinition:
		if v.IsAnonymous() {
			return ast.ErrorFromf(parser.ErrNoMeaning, v.Range(), "anonymous function has no meaning")
		}
		return defineFunction(v, s)
	case *ast.FunctionCall:
		_, err := evaluateCall(v, s, false)
		return err
	case *ast.If:
		return executeIf(v, s)
	case *ast.For:
		return executeFor(v, s)
	case *ast.Return:
		return executeReturn(v, s)
	default:
		return ast.ErrorFromf(parser.ErrNoMeaning, stmt.Range(), "%s has no meaning", stmt)
	}
}

func executeIf(stmt *ast.If, s *Scope) *ast.ErrorExpression {
	cond, err := Evaluate(stmt.Condition, s)
	if err != nil {
		return err
	}
	b, ok := cond.(*ast.BooleanConstant)
	if !ok {
		return ast.ErrorFromf(ErrTypeMismatch, stmt.Condition.Range(),
			"condition must evaluate to true or false, got %s", ast.TypeName(cond))
	}
	if b.Value {
		return executeBlock(stmt.Then, s)
	}
	return executeBlock(stmt.Else, s)
}

func executeFor(stmt *ast.For, s *Scope) *ast.ErrorExpression {
	iterable, err := Evaluate(stmt.Iterable, s)
	if err != nil {
		return err
	}

	var items []ast.Expression
	switch c := iterable.(type) {
	case *ast.Array:
		items = append(items, c.Entries...)
	case *ast.Dictionary:
		for _, entry := range c.Entries {
			items = append(items, entry.Key)
		}
	default:
		return ast.ErrorFromf(ErrTypeMismatch, stmt.Iterable.Range(),
			"cannot iterate over %s", ast.TypeName(iterable))
	}

	for _, item := range items {
		iteration := s.Child()
		iteration.Define(stmt.Iterator.Name, item)
		if err := executeBlock(stmt.Body, iteration); err != nil {
			return err
		}
		if s.hasReturned() {
			return nil
		}
	}
	return nil
}

func executeReturn(stmt *ast.Return, s *Scope) *ast.ErrorExpression {
	if !s.inFunction() {
		return ast.ErrorFrom(ErrReturnOutsideFunc, stmt.Range())
	}
	if stmt.Value == nil {
		s.setReturn(nil)
		return nil
	}
	v, err := Evaluate(stmt.Value, s)
	if err != nil {
		return err
	}
	s.setReturn(v)
	return nil
}
