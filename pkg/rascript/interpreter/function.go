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
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/parser"
	"github.com/rs/zerolog/log"
)

// Function is anything that can be called from a script.
type Function interface {
	// Definition describes the parameters of the function.
	Definition() *ast.FunctionDefinition
	// Call runs the function in s, which holds the bound parameters. A nil
	// result without an error means the function returned nothing.
	Call(s *Scope) (ast.Expression, *ast.ErrorExpression)
}

// userFunction is a function written in the script.
type userFunction struct {
	def *ast.FunctionDefinition
}

func (f *userFunction) Definition() *ast.FunctionDefinition {
	return f.def
}

func (f *userFunction) Call(s *Scope) (ast.Expression, *ast.ErrorExpression) {
	if err := executeBlock(f.def.Body, s); err != nil {
		return nil, err
	}
	return s.frame.returnValue, nil
}

// Builtin is a function implemented in Go.
type Builtin struct {
	Def *ast.FunctionDefinition
	Fn  func(s *Scope) (ast.Expression, *ast.ErrorExpression)
}

// NewBuiltin declares a builtin from a signature written in script syntax,
// for example "range(start, stop, step = 1)". It panics if the signature
// does not parse, which only happens for a programming error.
func NewBuiltin(signature string, fn func(s *Scope) (ast.Expression, *ast.ErrorExpression)) *Builtin {
	return &Builtin{Def: Declare(signature), Fn: fn}
}

// Declare parses a function signature into a definition without a body.
func Declare(signature string) *ast.FunctionDefinition {
	script := parser.Parse("function " + signature + " { }")
	if script.HasErrors() || len(script.Statements) != 1 {
		panic(fmt.Sprintf("interpreter: invalid signature %q", signature))
	}
	def, ok := script.Statements[0].(*ast.FunctionDefinition)
	if !ok {
		panic(fmt.Sprintf("interpreter: invalid signature %q", signature))
	}
	for _, d := range def.Defaults {
		d.MakeReadOnly()
	}
	return def
}

func (b *Builtin) Definition() *ast.FunctionDefinition {
	return b.Def
}

func (b *Builtin) Call(s *Scope) (ast.Expression, *ast.ErrorExpression) {
	return b.Fn(s)
}

// Expand returns the call that created s with every parameter replaced by
// its bound value. Builtins whose meaning is decided by the builder return
// it unchanged from evaluation. The result is marked expanded so it is
// not evaluated again.
func Expand(s *Scope, def *ast.FunctionDefinition) *ast.FunctionCall {
	params := make([]ast.Expression, 0, len(def.Parameters))
	for _, p := range def.Parameters {
		params = append(params, s.Get(p.Name))
	}
	call := s.Call()
	out := ast.NewFunctionCall(ast.NewVariable(def.NameString(), call.Name.Range()), params, call.Range())
	out.SetLogicalUnit(call.IsLogicalUnit())
	out.MarkExpanded()
	return out
}

const anonymousPrefix = "AnonymousFunction@"

func isAnonymousName(name string) bool {
	return strings.HasPrefix(name, anonymousPrefix)
}

// argument is one value passed to a function, named or positional.
type argument struct {
	expr  ast.Expression
	name  *ast.VariableDefinition
	value ast.Expression
}

func (a *argument) rng() ast.TextRange {
	if a.name != nil {
		return a.name.Range().Union(a.expr.Range())
	}
	return a.expr.Range()
}

func splitArguments(params []ast.Expression) []argument {
	args := make([]argument, 0, len(params))
	for _, p := range params {
		if a, ok := p.(*ast.Assignment); ok {
			if def, ok := a.Target.(*ast.VariableDefinition); ok {
				args = append(args, argument{name: def, expr: a.Value})
				continue
			}
		}
		args = append(args, argument{expr: p})
	}
	return args
}

// resolve evaluates the argument in the caller scope unless it was
// already evaluated.
func (a *argument) resolve(caller *Scope, evaluated bool) *ast.ErrorExpression {
	if a.value != nil {
		return nil
	}
	if evaluated {
		a.value = a.expr
		return nil
	}
	v, err := Evaluate(a.expr, caller)
	if err != nil {
		return err
	}
	a.value = v
	return nil
}

// bind assigns the call's arguments to the function's parameters in
// callee. Arguments are evaluated in caller unless evaluated is set.
func bind(def *ast.FunctionDefinition, call *ast.FunctionCall, caller, callee *Scope,
	evaluated bool,
) *ast.ErrorExpression {
	name := def.NameString()
	params := def.Parameters

	// no parameters
	if len(params) == 0 {
		if len(call.Parameters) > 0 {
			return ast.ErrorFromf(ErrInvalidParameter, call.Parameters[0].Range(), "too many parameters passed to %s", name)
		}
		return nil
	}

	args := splitArguments(call.Parameters)

	// single positional parameter
	if len(params) == 1 && !def.Variadic && len(args) == 1 && args[0].name == nil {
		if err := args[0].resolve(caller, evaluated); err != nil {
			return err
		}
		callee.Define(params[0].Name, args[0].value)
		return nil
	}

	bound := make(map[string]bool, len(params))
	var extra []ast.Expression
	positional := 0
	sawNamed := false

	for i := range args {
		a := &args[i]
		if a.name != nil {
			sawNamed = true
			if def.Parameter(a.name.Name) < 0 {
				return ast.ErrorFromf(ErrInvalidParameter, a.name.Range(), "%s does not have a %s parameter", name, a.name.Name)
			}
			if bound[a.name.Name] {
				return ast.ErrorFromf(ErrInvalidParameter, a.name.Range(), "%s already has a value", a.name.Name)
			}
			if err := a.resolve(caller, evaluated); err != nil {
				return err
			}
			bound[a.name.Name] = true
			callee.Define(a.name.Name, a.value)
			continue
		}

		if sawNamed {
			return ast.ErrorFromf(ErrInvalidParameter, a.rng(), "unnamed parameter cannot follow named parameters")
		}
		if err := a.resolve(caller, evaluated); err != nil {
			return err
		}

		variadicIndex := len(params) - 1
		if def.Variadic && positional >= variadicIndex {
			extra = append(extra, a.value)
			positional++
			continue
		}
		if positional >= len(params) {
			return ast.ErrorFromf(ErrInvalidParameter, a.rng(), "too many parameters passed to %s", name)
		}
		p := params[positional].Name
		bound[p] = true
		callee.Define(p, a.value)
		positional++
	}

	if def.Variadic {
		last := params[len(params)-1].Name
		if !bound[last] {
			callee.Define(last, ast.NewArray(extra, call.Range()))
			bound[last] = true
		}
	}

	for _, p := range params {
		if bound[p.Name] {
			continue
		}
		d, ok := def.Defaults[p.Name]
		if !ok {
			return ast.ErrorFromf(ErrInvalidParameter, call.Range(), "required parameter %s not provided", p.Name)
		}
		v, err := Evaluate(d, callee)
		if err != nil {
			return err
		}
		callee.Define(p.Name, v)
	}

	return nil
}

// callFunction binds the arguments of call and runs fn. When needValue is
// set a function that returns nothing is an error.
func callFunction(fn Function, call *ast.FunctionCall, caller *Scope, evaluated, needValue bool,
) (ast.Expression, *ast.ErrorExpression) {
	def := fn.Definition()
	sh := caller.shared
	if sh.depth >= sh.maxDepth {
		return nil, ast.ErrorFrom(ErrRecursionDepth, call.Range())
	}

	callee := caller.callScope(call)
	for name, v := range def.Captured {
		callee.Define(name, v)
	}
	if err := bind(def, call, caller, callee, evaluated); err != nil {
		return nil, err
	}

	sh.depth++
	result, err := fn.Call(callee)
	sh.depth--

	if err != nil {
		if errors.Is(err, ErrRecursionDepth) {
			return nil, ast.ErrorFrom(ErrRecursionDepth, call.Range())
		}
		if _, ok := fn.(*userFunction); ok {
			return nil, ast.Wrap(err, def.NameString()+" call failed", call.Range())
		}
		return nil, err
	}

	if result == nil && needValue {
		return nil, ast.ErrorFromf(ErrNoReturnValue, call.Range(), "%s did not return a value", def.NameString())
	}

	if result != nil {
		log.Trace().
			Str("function", def.NameString()).
			Int("depth", sh.depth).
			Msg("function returned")
	}

	return result, nil
}

// CallFunction calls fn with values that are already evaluated, as
// builtins like array_map do with user supplied callbacks. The values are
// bound positionally and r locates any error.
func CallFunction(fn Function, values []ast.Expression, caller *Scope, r ast.TextRange,
) (ast.Expression, *ast.ErrorExpression) {
	name := fn.Definition().NameString()
	call := ast.NewFunctionCall(ast.NewVariable(name, r), values, r)
	return callFunction(fn, call, caller, true, true)
}

// ResolveFunction returns the function a reference or a function name
// refers to.
func ResolveFunction(e ast.Expression, s *Scope) (Function, *ast.ErrorExpression) {
	ref, ok := e.(*ast.FunctionReference)
	if !ok {
		return nil, ast.ErrorFromf(ErrTypeMismatch, e.Range(), "expected function reference, got %s", ast.TypeName(e))
	}
	fn, ok := s.Function(ref.Name)
	if !ok {
		return nil, ast.ErrorFromf(ErrUnknownFunction, e.Range(), "unknown function: %s", ref.Name)
	}
	return fn, nil
}
