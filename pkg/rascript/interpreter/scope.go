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

// Package interpreter evaluates expression trees against a chain of
// lexical scopes.
//
// Evaluation reduces a tree as far as it can: constant arithmetic is
// folded, variables are replaced by their values and user functions are
// called. Whatever depends on emulated memory is left as a tree of
// comparisons and expanded builtin calls for the builder to lower.
//
// Arrays and dictionaries are shared by reference. Assigning one to a
// variable or passing it to a function never copies it, so a callee that
// pushes to an array changes the caller's array too.
package interpreter

import (
	"errors"
	"sort"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
)

// DefaultMaxRecursionDepth is the call depth at which evaluation stops.
const DefaultMaxRecursionDepth = 100

var (
	ErrRecursionDepth     = errors.New("maximum recursion depth exceeded")
	ErrUnknownVariable    = errors.New("unknown variable")
	ErrUnknownFunction    = errors.New("unknown function")
	ErrNoReturnValue      = errors.New("function did not return a value")
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrDivideByZero       = errors.New("division by zero")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrDuplicateFunction  = errors.New("function already defined")
	ErrReturnOutsideFunc  = errors.New("return outside of function")
	ErrNotAssignable      = errors.New("cannot assign")
	ErrNotCallable        = errors.New("not callable")
	ErrUnsupportedOperand = errors.New("unsupported operand")
)

// shared is the state common to every scope of one evaluation.
type shared struct {
	root      *Scope
	depth     int
	maxDepth  int
	anonymous int
}

// Scope is a set of variable and function bindings with a link to its
// parent. Function calls get a scope whose parent is the root scope, so
// functions see globals and their own locals but not their caller's
// locals. Blocks such as loop bodies get a scope whose parent is the
// enclosing scope.
type Scope struct {
	parent    *Scope
	frame     *Scope
	variables map[string]ast.Expression
	functions map[string]Function
	shared    *shared
	call      *ast.FunctionCall

	// Context routes nested evaluation. The builder stores its lowering
	// state here so builtins called during lowering can reach it. Child
	// scopes and call scopes inherit the context of the scope they were
	// created from.
	Context any

	returned    bool
	returnValue ast.Expression
}

// NewScope returns an empty root scope. A maxDepth of zero or less
// selects DefaultMaxRecursionDepth.
func NewScope(maxDepth int) *Scope {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRecursionDepth
	}
	s := &Scope{
		variables: make(map[string]ast.Expression),
		functions: make(map[string]Function),
	}
	s.frame = s
	s.shared = &shared{root: s, maxDepth: maxDepth}
	return s
}

// Root returns the global scope.
func (s *Scope) Root() *Scope {
	return s.shared.root
}

// Parent returns the enclosing scope, or nil for the root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Child returns a block scope nested inside s.
func (s *Scope) Child() *Scope {
	return &Scope{
		parent:    s,
		frame:     s.frame,
		variables: make(map[string]ast.Expression),
		shared:    s.shared,
		call:      s.call,
		Context:   s.Context,
	}
}

// WithContext returns a block scope nested inside s carrying ctx.
func (s *Scope) WithContext(ctx any) *Scope {
	c := s.Child()
	c.Context = ctx
	return c
}

func (s *Scope) callScope(call *ast.FunctionCall) *Scope {
	c := &Scope{
		parent:    s.shared.root,
		variables: make(map[string]ast.Expression),
		shared:    s.shared,
		call:      call,
		Context:   s.Context,
	}
	c.frame = c
	return c
}

// Call returns the call that created the function scope s belongs to, or
// nil at the top level.
func (s *Scope) Call() *ast.FunctionCall {
	return s.call
}

// Depth returns the current call depth.
func (s *Scope) Depth() int {
	return s.shared.depth
}

// MaxDepth returns the call depth at which evaluation stops.
func (s *Scope) MaxDepth() int {
	return s.shared.maxDepth
}

// Lookup finds the value bound to name in s or its ancestors.
func (s *Scope) Lookup(name string) (ast.Expression, bool) {
	for c := s; c != nil; c = c.parent {
		if v, ok := c.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Get returns the value bound to name in s itself. Builtins use it to read
// their parameters.
func (s *Scope) Get(name string) ast.Expression {
	return s.variables[name]
}

// Define binds name in s, shadowing any outer binding.
func (s *Scope) Define(name string, value ast.Expression) {
	s.variables[name] = value
}

// Assign updates the nearest existing binding of name, or defines it in s
// when there is none.
func (s *Scope) Assign(name string, value ast.Expression) {
	for c := s; c != nil; c = c.parent {
		if _, ok := c.variables[name]; ok {
			c.variables[name] = value
			return
		}
	}
	s.variables[name] = value
}

// Function finds the function named name in s or its ancestors.
func (s *Scope) Function(name string) (Function, bool) {
	for c := s; c != nil; c = c.parent {
		if c.functions == nil {
			continue
		}
		if fn, ok := c.functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// AddFunction registers fn in the root scope.
func (s *Scope) AddFunction(fn Function) error {
	root := s.shared.root
	name := fn.Definition().NameString()
	if _, ok := root.functions[name]; ok {
		return ErrDuplicateFunction
	}
	root.functions[name] = fn
	return nil
}

// VariableNames returns the names visible from s, sorted.
func (s *Scope) VariableNames() []string {
	seen := make(map[string]bool)
	var out []string
	for c := s; c != nil; c = c.parent {
		for name := range c.variables {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// FunctionNames returns the names of every named function, sorted.
func (s *Scope) FunctionNames() []string {
	var out []string
	for name, fn := range s.shared.root.functions {
		if fn.Definition().IsAnonymous() || isAnonymousName(name) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Scope) setReturn(value ast.Expression) {
	s.frame.returned = true
	s.frame.returnValue = value
}

func (s *Scope) hasReturned() bool {
	return s.frame.returned
}

func (s *Scope) inFunction() bool {
	return s.frame.call != nil
}
