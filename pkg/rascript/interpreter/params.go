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
)

// Location returns the range errors about a parameter should point at:
// the bound value when it came from the source, else the call.
func (s *Scope) Location(name string) ast.TextRange {
	if v := s.Get(name); v != nil && !v.Range().IsEmpty() {
		return v.Range()
	}
	if s.call != nil {
		return s.call.Range()
	}
	return ast.TextRange{}
}

func (s *Scope) mismatch(name, want string) *ast.ErrorExpression {
	got := "nothing"
	if v := s.Get(name); v != nil {
		got = ast.TypeName(v)
	}
	return ast.ErrorFromf(ErrTypeMismatch, s.Location(name), "%s: expected %s, got %s", name, want, got)
}

// Integer returns the integer parameter name.
func (s *Scope) Integer(name string) (int32, *ast.ErrorExpression) {
	if v, ok := s.Get(name).(*ast.IntegerConstant); ok {
		return v.Value, nil
	}
	return 0, s.mismatch(name, "integer")
}

// Number returns the integer or float parameter name as a float.
func (s *Scope) Number(name string) (float64, *ast.ErrorExpression) {
	switch v := s.Get(name).(type) {
	case *ast.IntegerConstant:
		return float64(v.Number()), nil
	case *ast.FloatConstant:
		return v.Value, nil
	}
	return 0, s.mismatch(name, "number")
}

// Text returns the string parameter name.
func (s *Scope) Text(name string) (string, *ast.ErrorExpression) {
	if v, ok := s.Get(name).(*ast.StringConstant); ok {
		return v.Value, nil
	}
	return "", s.mismatch(name, "string")
}

// Boolean returns the boolean parameter name.
func (s *Scope) Boolean(name string) (bool, *ast.ErrorExpression) {
	if v, ok := s.Get(name).(*ast.BooleanConstant); ok {
		return v.Value, nil
	}
	return false, s.mismatch(name, "boolean")
}

// Array returns the array parameter name. The array is shared with the
// caller.
func (s *Scope) Array(name string) (*ast.Array, *ast.ErrorExpression) {
	if v, ok := s.Get(name).(*ast.Array); ok {
		return v, nil
	}
	return nil, s.mismatch(name, "array")
}

// Dictionary returns the dictionary parameter name. The dictionary is
// shared with the caller.
func (s *Scope) Dictionary(name string) (*ast.Dictionary, *ast.ErrorExpression) {
	if v, ok := s.Get(name).(*ast.Dictionary); ok {
		return v, nil
	}
	return nil, s.mismatch(name, "dictionary")
}

// FunctionParam resolves the function reference parameter name.
func (s *Scope) FunctionParam(name string) (Function, *ast.ErrorExpression) {
	v := s.Get(name)
	if _, ok := v.(*ast.FunctionReference); !ok {
		return nil, s.mismatch(name, "function reference")
	}
	return ResolveFunction(v, s)
}
