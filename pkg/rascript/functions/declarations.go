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
	"strings"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/builder"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/rs/zerolog/log"
)

// valueFormats maps script format names to the runtime's format types.
var valueFormats = map[string]string{
	"value":              "VALUE",
	"score":              "SCORE",
	"points":             "SCORE",
	"time":               "FRAMES",
	"frames":             "FRAMES",
	"seconds":            "SECS",
	"centiseconds":       "MILLISECS",
	"minutes":            "MINUTES",
	"seconds_as_minutes": "SECS_AS_MINS",
	"float1":             "FLOAT1",
	"float2":             "FLOAT2",
	"float3":             "FLOAT3",
	"float4":             "FLOAT4",
	"float5":             "FLOAT5",
	"float6":             "FLOAT6",
	"fixed1":             "FIXED1",
	"fixed2":             "FIXED2",
	"fixed3":             "FIXED3",
	"tens":               "TENS",
	"hundreds":           "HUNDREDS",
	"thousands":          "THOUSANDS",
	"unsigned":           "UNSIGNED",
	"other":              "OTHER",
}

var achievementTypes = map[string]bool{
	"":              true,
	"missable":      true,
	"progression":   true,
	"win_condition": true,
}

// Achievement is a declared achievement with its unoptimized trigger.
type Achievement struct {
	Trigger     *requirements.Trigger
	Title       string
	Description string
	Badge       string
	Published   string
	Modified    string
	Type        string
	Range       ast.TextRange
	ID          int32
	Points      int32
}

// Leaderboard is a declared leaderboard.
type Leaderboard struct {
	Start         *requirements.Trigger
	Cancel        *requirements.Trigger
	Submit        *requirements.Trigger
	Value         *requirements.ValueDef
	Title         string
	Description   string
	Format        string
	Range         ast.TextRange
	ID            int32
	LowerIsBetter bool
}

// Definition renders the leaderboard in the runtime's serialized form.
func (lb *Leaderboard) Definition() string {
	return "STA:" + lb.Start.String() +
		"::CAN:" + lb.Cancel.String() +
		"::SUB:" + lb.Submit.String() +
		"::VAL:" + lb.Value.String()
}

func lookupFormat(s *interpreter.Scope, name string) (string, *ast.ErrorExpression) {
	f, err := s.Text(name)
	if err != nil {
		return "", err
	}
	runtime, ok := valueFormats[strings.ToLower(f)]
	if !ok {
		return "", ast.ErrorFromf(ErrInvalidFormat, s.Location(name), "unknown format: %s", f)
	}
	return runtime, nil
}

func nonNegative(s *interpreter.Scope, name string) (int32, *ast.ErrorExpression) {
	n, err := s.Integer(name)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ast.ErrorFromf(interpreter.ErrInvalidParameter, s.Location(name),
			"%s must not be negative, got %d", name, n)
	}
	return n, nil
}

func (l *Library) achievement(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	a := &Achievement{Range: s.Call().Range()}

	var err *ast.ErrorExpression
	if a.Title, err = s.Text("title"); err != nil {
		return nil, err
	}
	if a.Description, err = s.Text("description"); err != nil {
		return nil, err
	}
	if a.Points, err = nonNegative(s, "points"); err != nil {
		return nil, err
	}
	if a.ID, err = nonNegative(s, "id"); err != nil {
		return nil, err
	}
	if a.Badge, err = s.Text("badge"); err != nil {
		return nil, err
	}
	if a.Published, err = s.Text("published"); err != nil {
		return nil, err
	}
	if a.Modified, err = s.Text("modified"); err != nil {
		return nil, err
	}
	if a.Type, err = s.Text("type"); err != nil {
		return nil, err
	}
	if !achievementTypes[a.Type] {
		return nil, ast.ErrorFromf(ErrInvalidType, s.Location("type"),
			"type must be missable, progression or win_condition, got %s", a.Type)
	}

	if a.Trigger, err = builder.BuildTrigger(s.Get("trigger"), s, l.builderOptions()); err != nil {
		return nil, err
	}

	l.Achievements = append(l.Achievements, a)
	log.Debug().
		Str("title", a.Title).
		Int("requirements", a.Trigger.Count()).
		Msg("declared achievement")
	return nil, nil
}

func (l *Library) leaderboard(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	lb := &Leaderboard{Range: s.Call().Range()}

	var err *ast.ErrorExpression
	if lb.Title, err = s.Text("title"); err != nil {
		return nil, err
	}
	if lb.Description, err = s.Text("description"); err != nil {
		return nil, err
	}
	if lb.Format, err = lookupFormat(s, "format"); err != nil {
		return nil, err
	}
	if lb.LowerIsBetter, err = s.Boolean("lower_is_better"); err != nil {
		return nil, err
	}
	if lb.ID, err = nonNegative(s, "id"); err != nil {
		return nil, err
	}

	opts := l.builderOptions()
	if lb.Start, err = builder.BuildTrigger(s.Get("start"), s, opts); err != nil {
		return nil, err
	}
	if lb.Cancel, err = builder.BuildTrigger(s.Get("cancel"), s, opts); err != nil {
		return nil, err
	}
	if lb.Submit, err = builder.BuildTrigger(s.Get("submit"), s, opts); err != nil {
		return nil, err
	}
	if lb.Value, err = builder.BuildValue(s.Get("value"), s, opts); err != nil {
		return nil, err
	}

	l.Leaderboards = append(l.Leaderboards, lb)
	log.Debug().Str("title", lb.Title).Str("format", lb.Format).Msg("declared leaderboard")
	return nil, nil
}
