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
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/builder"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/rs/zerolog/log"
)

// LookupEntry maps one value to display text.
type LookupEntry struct {
	Text string
	Key  int32
}

// Macro formats a value inside display text. Value macros have a Format;
// lookup macros have entries and an optional fallback.
type Macro struct {
	Name     string
	Format   string
	Fallback string
	Lookup   []LookupEntry
}

// IsLookup reports whether the macro maps values to text.
func (m *Macro) IsLookup() bool {
	return m.Format == ""
}

func (m *Macro) equal(o *Macro) bool {
	return m.Name == o.Name && m.Format == o.Format && m.Fallback == o.Fallback &&
		slices.Equal(m.Lookup, o.Lookup)
}

// MacroCall is a macro applied to a value inside display text.
type MacroCall struct {
	Value *requirements.ValueDef
	Macro string
}

// Display is one line of the rich presence script. The default display
// has no condition.
type Display struct {
	Condition *requirements.Trigger
	Text      string
	Params    []MacroCall
	Range     ast.TextRange
}

// Render replaces each {N} placeholder with its macro reference.
func (d *Display) Render() string {
	out, _, _ := substitute(d.Text, len(d.Params), func(i int) string {
		p := d.Params[i]
		return "@" + p.Macro + "(" + valueText(p.Value) + ")"
	})
	return out
}

// valueText drops the Measured prefix of a value that is a single field.
func valueText(v *requirements.ValueDef) string {
	if len(v.Groups) == 1 && len(v.Groups[0]) == 1 {
		r := v.Groups[0][0]
		if r.Type == requirements.RequirementTypeMeasured && r.Operator == requirements.OperatorNone {
			return r.Left.String()
		}
	}
	return v.String()
}

// RichPresence collects the macros and displays declared by a script.
type RichPresence struct {
	macros   map[string]*Macro
	Default  *Display
	Macros   []*Macro
	Displays []*Display
}

func newRichPresence() *RichPresence {
	return &RichPresence{macros: make(map[string]*Macro)}
}

// IsEmpty reports whether the script declared no rich presence.
func (rp *RichPresence) IsEmpty() bool {
	return rp.Default == nil && len(rp.Displays) == 0
}

func (rp *RichPresence) addMacro(m *Macro) bool {
	if existing, ok := rp.macros[m.Name]; ok {
		return existing.equal(m)
	}
	rp.macros[m.Name] = m
	rp.Macros = append(rp.Macros, m)
	return true
}

// Script renders the rich presence script: formats, lookups and then the
// displays with the default last.
func (rp *RichPresence) Script() string {
	var sb strings.Builder
	for _, m := range rp.Macros {
		if m.IsLookup() {
			continue
		}
		sb.WriteString("Format:" + m.Name + "\n")
		sb.WriteString("FormatType=" + m.Format + "\n\n")
	}
	for _, m := range rp.Macros {
		if !m.IsLookup() {
			continue
		}
		sb.WriteString("Lookup:" + m.Name + "\n")
		for _, e := range m.Lookup {
			sb.WriteString(strconv.Itoa(int(e.Key)) + "=" + e.Text + "\n")
		}
		if m.Fallback != "" {
			sb.WriteString("*=" + m.Fallback + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Display:\n")
	for _, d := range rp.Displays {
		sb.WriteString("?" + d.Condition.String() + "?" + d.Render() + "\n")
	}
	if rp.Default != nil {
		sb.WriteString(rp.Default.Render() + "\n")
	}
	return sb.String()
}

// newMacro declares rich_presence_value or rich_presence_lookup. Both
// only mean something as a display parameter, so they expand to
// themselves.
func newMacro(signature string) *interpreter.Builtin {
	return expanding(signature, func(s *interpreter.Scope) *ast.ErrorExpression {
		if _, err := s.Text("name"); err != nil {
			return err
		}
		if s.Call().Name.Name == "rich_presence_lookup" {
			if _, err := s.Dictionary("dictionary"); err != nil {
				return err
			}
			if _, err := s.Text("fallback"); err != nil {
				return err
			}
			return nil
		}
		if _, err := s.Text("format"); err != nil {
			return err
		}
		return nil
	})
}

func (l *Library) macroCall(s *interpreter.Scope, e ast.Expression) (MacroCall, *ast.ErrorExpression) {
	call, ok := e.(*ast.FunctionCall)
	if !ok || (call.Name.Name != "rich_presence_value" && call.Name.Name != "rich_presence_lookup") {
		return MacroCall{}, ast.ErrorFromf(interpreter.ErrTypeMismatch, e.Range(),
			"display parameter must be rich_presence_value or rich_presence_lookup, got %s", ast.TypeName(e))
	}

	name, err := stringParameter(call, 0, "name")
	if err != nil {
		return MacroCall{}, err
	}
	m := &Macro{Name: name}
	if call.Name.Name == "rich_presence_value" {
		format, err := stringParameter(call, 2, "format")
		if err != nil {
			return MacroCall{}, err
		}
		f, ok := valueFormats[strings.ToLower(format)]
		if !ok {
			return MacroCall{}, ast.ErrorFromf(ErrInvalidFormat, call.Parameters[2].Range(), "unknown format: %s", format)
		}
		m.Format = f
	} else {
		dict, ok := parameter(call, 2).(*ast.Dictionary)
		if !ok {
			return MacroCall{}, ast.ErrorFromf(interpreter.ErrTypeMismatch, call.Range(),
				"dictionary: expected dictionary")
		}
		lookup, err := lookupEntries(dict)
		if err != nil {
			return MacroCall{}, err
		}
		m.Lookup = lookup
		if m.Fallback, err = stringParameter(call, 3, "fallback"); err != nil {
			return MacroCall{}, err
		}
	}

	if !l.RichPresence.addMacro(m) {
		return MacroCall{}, ast.ErrorFromf(ErrDuplicateMacro, call.Range(),
			"macro %s is already defined differently", m.Name)
	}

	value, err := builder.BuildValue(call.Parameters[1], s, l.builderOptions())
	if err != nil {
		return MacroCall{}, err
	}
	return MacroCall{Macro: m.Name, Value: value}, nil
}

func parameter(call *ast.FunctionCall, i int) ast.Expression {
	if i >= len(call.Parameters) {
		return nil
	}
	return call.Parameters[i]
}

func stringParameter(call *ast.FunctionCall, i int, name string) (string, *ast.ErrorExpression) {
	p := parameter(call, i)
	if v, ok := p.(*ast.StringConstant); ok {
		return v.Value, nil
	}
	r := call.Range()
	got := "nothing"
	if p != nil {
		r = p.Range()
		got = ast.TypeName(p)
	}
	return "", ast.ErrorFromf(interpreter.ErrTypeMismatch, r, "%s: expected string, got %s", name, got)
}

func lookupEntries(d *ast.Dictionary) ([]LookupEntry, *ast.ErrorExpression) {
	out := make([]LookupEntry, 0, len(d.Entries))
	for _, entry := range d.Entries {
		key, ok := entry.Key.(*ast.IntegerConstant)
		if !ok {
			return nil, ast.ErrorFromf(interpreter.ErrTypeMismatch, entry.Key.Range(),
				"lookup key must be an integer, got %s", ast.TypeName(entry.Key))
		}
		text, ok := entry.Value.(*ast.StringConstant)
		if !ok {
			return nil, ast.ErrorFromf(interpreter.ErrTypeMismatch, entry.Value.Range(),
				"lookup value must be a string, got %s", ast.TypeName(entry.Value))
		}
		out = append(out, LookupEntry{Key: key.Value, Text: text.Value})
	}
	slices.SortFunc(out, func(a, b LookupEntry) int {
		return int(int64(a.Key) - int64(b.Key))
	})
	return out, nil
}

func (l *Library) display(s *interpreter.Scope) (*Display, *ast.ErrorExpression) {
	d := &Display{Range: s.Call().Range()}

	var err *ast.ErrorExpression
	if d.Text, err = s.Text("format_string"); err != nil {
		return nil, err
	}
	params, err := s.Array("parameters")
	if err != nil {
		return nil, err
	}
	if _, ok, index := substitute(d.Text, len(params.Entries), func(int) string { return "" }); !ok {
		return nil, ast.ErrorFromf(interpreter.ErrIndexOutOfRange, s.Location("format_string"),
			"invalid parameter index: %d", index)
	}

	for _, p := range params.Entries {
		mc, err := l.macroCall(s, p)
		if err != nil {
			return nil, err
		}
		d.Params = append(d.Params, mc)
	}
	return d, nil
}

func (l *Library) richPresenceDisplay(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	if l.RichPresence.Default != nil {
		return nil, ast.ErrorFrom(ErrDuplicateDisplay, s.Call().Range())
	}
	d, err := l.display(s)
	if err != nil {
		return nil, err
	}
	l.RichPresence.Default = d
	log.Debug().Str("text", d.Text).Msg("declared rich presence display")
	return nil, nil
}

func (l *Library) richPresenceConditionalDisplay(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
	cond, err := builder.BuildTrigger(s.Get("condition"), s, l.builderOptions())
	if err != nil {
		return nil, err
	}
	d, err := l.display(s)
	if err != nil {
		return nil, err
	}
	d.Condition = cond
	l.RichPresence.Displays = append(l.RichPresence.Displays, d)
	log.Debug().Str("text", d.Text).Msg("declared conditional rich presence display")
	return nil, nil
}
