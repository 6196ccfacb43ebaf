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
	"sort"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
)

// Script is a parsed source file.
type Script struct {
	// Statements holds the top-level statements in source order. A
	// statement that failed to parse is an *ast.ErrorExpression.
	Statements []ast.Expression
	// Comments holds every comment in source order.
	Comments []*ast.Comment
	// Groups pairs each top-level statement with its comments.
	Groups []Group
	// Errors holds every syntax error in source order.
	Errors []*ast.ErrorExpression
}

// Group is a top-level statement and the comments before it, inside it
// and trailing it on its last line.
// A script ending in comments has a final group without statements.
type Group struct {
	Range      ast.TextRange
	Statements []ast.Expression
	Comments   []*ast.Comment
}

// HasErrors reports whether any syntax error was found.
func (s *Script) HasErrors() bool {
	return len(s.Errors) > 0
}

// GroupAt returns the group covering the given line.
func (s *Script) GroupAt(line int) (*Group, bool) {
	for i := range s.Groups {
		g := &s.Groups[i]
		if g.Range.Start.Line <= line && line <= g.Range.End.Line {
			return g, true
		}
	}
	return nil, false
}

func (s *Script) buildGroups() {
	sort.SliceStable(s.Errors, func(i, j int) bool {
		return s.Errors[i].Range().Start.Before(s.Errors[j].Range().Start)
	})

	ci := 0
	for _, stmt := range s.Statements {
		g := Group{Range: stmt.Range(), Statements: []ast.Expression{stmt}}
		for ci < len(s.Comments) && s.Comments[ci].Range().Start.Line <= stmt.Range().End.Line {
			g.Comments = append(g.Comments, s.Comments[ci])
			g.Range = g.Range.Union(s.Comments[ci].Range())
			ci++
		}
		s.Groups = append(s.Groups, g)
	}

	if ci < len(s.Comments) {
		g := Group{Range: s.Comments[ci].Range()}
		for _, c := range s.Comments[ci:] {
			g.Comments = append(g.Comments, c)
			g.Range = g.Range.Union(c.Range())
		}
		s.Groups = append(s.Groups, g)
	}
}
