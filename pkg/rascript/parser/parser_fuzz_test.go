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

package parser

import (
	"testing"
)

// FuzzParse tests that Parse never panics and that every syntax error is
// located in the source.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`x = 1`,
		`achievement("title", "desc", 5, byte(0x1234) == 3)`,
		`function f(a, b = 2, c...) { return a + b }`,
		`f = (a) => a * 2`,
		`g = x => { return x }`,
		`if (a == 1) { b = 2 } else if (a == 2) b = 3 else { b = 4 }`,
		`for i in range(0, 10) { total = total + i }`,
		`d = { 1: "one", "two": 2 }`,
		`a[1][2] = 3`,
		`x = "a" + 1 + 2`,
		`x = -2147483648`,
		`x = 0xFFFFFFFF`,
		`x = !(a && b) || ~c`,
		`// comment only`,
		`/* unterminated`,
		`"unterminated`,
		`x = (`,
		`}}}`,
		`{{{`,
		`function`,
		`return`,
		`x = 1 +`,
		`=>`,
		`(,)`,
		`x = [1, 2,`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, source string) {
		script := Parse(source)
		for _, e := range script.Errors {
			if e.Range().IsEmpty() {
				t.Errorf("error without location: %s", e.Message)
			}
		}
		for _, stmt := range script.Statements {
			_ = stmt.String()
		}
	})
}
