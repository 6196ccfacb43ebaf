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
	"strconv"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
)

// text renders a value for string formatting. Strings are not quoted.
func text(e ast.Expression) string {
	if v, ok := e.(*ast.StringConstant); ok {
		return v.Value
	}
	return e.String()
}

// substitute replaces {0}, {1}, ... in f using arg. A placeholder with no
// matching parameter is an error.
func substitute(f string, count int, arg func(i int) string) (string, bool, int) {
	var sb strings.Builder
	for {
		open := strings.IndexByte(f, '{')
		if open < 0 {
			sb.WriteString(f)
			return sb.String(), true, 0
		}
		end := strings.IndexByte(f[open:], '}')
		if end < 0 {
			sb.WriteString(f)
			return sb.String(), true, 0
		}
		index, err := strconv.Atoi(f[open+1 : open+end])
		if err != nil {
			sb.WriteString(f[:open+1])
			f = f[open+1:]
			continue
		}
		if index < 0 || index >= count {
			return "", false, index
		}
		sb.WriteString(f[:open])
		sb.WriteString(arg(index))
		f = f[open+end+1:]
	}
}

func format(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	f, err := s.Text("format_string")
	if err != nil {
		return nil, err
	}
	params, err := s.Array("parameters")
	if err != nil {
		return nil, err
	}

	out, ok, index := substitute(f, len(params.Entries), func(i int) string {
		return text(params.Entries[i])
	})
	if !ok {
		return nil, ast.ErrorFromf(interpreter.ErrIndexOutOfRange, s.Location("format_string"),
			"invalid parameter index: %d", index)
	}
	return ast.NewString(out, s.Call().Range()), nil
}

func substring(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	str, err := s.Text("string")
	if err != nil {
		return nil, err
	}
	offset, err := s.Integer("offset")
	if err != nil {
		return nil, err
	}
	n, err := s.Integer("length")
	if err != nil {
		return nil, err
	}

	runes := []rune(str)
	start := int(offset)
	if start < 0 {
		start += len(runes)
	}
	start = max(0, min(start, len(runes)))

	end := len(runes)
	if n < 0 {
		end += int(n)
	} else if int64(start)+int64(n) < int64(end) {
		end = start + int(n)
	}
	if end < start {
		end = start
	}
	return ast.NewString(string(runes[start:end]), s.Call().Range()), nil
}

func upper(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	str, err := s.Text("string")
	if err != nil {
		return nil, err
	}
	return ast.NewString(strings.ToUpper(str), s.Call().Range()), nil
}

func lower(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	str, err := s.Text("string")
	if err != nil {
		return nil, err
	}
	return ast.NewString(strings.ToLower(str), s.Call().Range()), nil
}
