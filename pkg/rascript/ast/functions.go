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

package ast

import (
	"strings"
)

// FunctionCall invokes a named function or a variable holding a function
// reference.
type FunctionCall struct {
	Node
	Name       *Variable
	Parameters []Expression

	expanded bool
}

// NewFunctionCall returns a call located at r.
func NewFunctionCall(name *Variable, params []Expression, r TextRange) *FunctionCall {
	n := &FunctionCall{Name: name, Parameters: params}
	n.rng = r
	return n
}

// IsExpanded reports whether every parameter of the call has been
// evaluated, so evaluating it again produces the same result.
func (e *FunctionCall) IsExpanded() bool {
	return e.expanded
}

// MarkExpanded records that the call's parameters are fully evaluated.
func (e *FunctionCall) MarkExpanded() {
	e.expanded = true
}

func (e *FunctionCall) String() string {
	var sb strings.Builder
	sb.WriteString(e.Name.Name)
	sb.WriteByte('(')
	for i, p := range e.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// FunctionDefinition is a named function or an anonymous function.
// Anonymous functions have an empty Name until the interpreter registers
// them.
type FunctionDefinition struct {
	Node
	Name       *VariableDefinition
	Parameters []*VariableDefinition
	// Defaults holds default values keyed by parameter name.
	Defaults map[string]Expression
	Body     []Expression
	// Variadic marks the last parameter as collecting any extra arguments
	// into an array.
	Variadic bool
	// Captured holds values of outer variables bound when an anonymous
	// function was created.
	Captured map[string]Expression
}

// NewFunctionDefinition returns a function located at r. A nil name makes
// an anonymous function.
func NewFunctionDefinition(name *VariableDefinition, params []*VariableDefinition,
	body []Expression, r TextRange,
) *FunctionDefinition {
	n := &FunctionDefinition{Name: name, Parameters: params, Body: body}
	n.rng = r
	return n
}

// IsAnonymous reports whether the function was written as a lambda.
func (e *FunctionDefinition) IsAnonymous() bool {
	return e.Name == nil || e.Name.Name == ""
}

// NameString returns the function name or an empty string.
func (e *FunctionDefinition) NameString() string {
	if e.Name == nil {
		return ""
	}
	return e.Name.Name
}

// ParameterNames returns the declared parameter names in order.
func (e *FunctionDefinition) ParameterNames() []string {
	out := make([]string, 0, len(e.Parameters))
	for _, p := range e.Parameters {
		out = append(out, p.Name)
	}
	return out
}

// Parameter returns the index of the named parameter, or -1.
func (e *FunctionDefinition) Parameter(name string) int {
	for i, p := range e.Parameters {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (e *FunctionDefinition) String() string {
	var sb strings.Builder
	if e.IsAnonymous() {
		sb.WriteByte('(')
	} else {
		sb.WriteString("function ")
		sb.WriteString(e.Name.Name)
		sb.WriteByte('(')
	}
	for i, p := range e.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		if d, ok := e.Defaults[p.Name]; ok {
			sb.WriteString(" = ")
			sb.WriteString(d.String())
		}
		if e.Variadic && i == len(e.Parameters)-1 {
			sb.WriteString("...")
		}
	}
	sb.WriteByte(')')
	if e.IsAnonymous() {
		sb.WriteString(" => ...")
	}
	return sb.String()
}

// FunctionReference is a function used as a value.
type FunctionReference struct {
	Node
	Name string
}

// NewFunctionReference returns a reference located at r.
func NewFunctionReference(name string, r TextRange) *FunctionReference {
	n := &FunctionReference{Name: name}
	n.rng = r
	return n
}

func (e *FunctionReference) String() string {
	return e.Name
}
