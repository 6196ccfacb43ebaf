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

// Package tokenizer provides a positional character reader over script
// source. The parser pulls characters, identifiers, numbers and strings
// from it and uses the tracked line and column for source ranges.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrUnterminatedString = errors.New("unterminated string")
	ErrInvalidEscape      = errors.New("invalid escape sequence")
)

// EOF is returned by NextChar and PeekChar past the end of the source.
const EOF = rune(0)

// Location is a 1-based line and column in the source.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Before reports whether l comes before o in the source.
func (l Location) Before(o Location) bool {
	if l.Line != o.Line {
		return l.Line < o.Line
	}
	return l.Column < o.Column
}

// Tokenizer reads script source one character at a time.
type Tokenizer struct {
	src  []rune
	pos  int
	line int
	col  int
	// location of the most recently consumed character
	last Location
}

// New returns a tokenizer positioned at the start of source.
func New(source string) *Tokenizer {
	return &Tokenizer{
		src:  []rune(source),
		line: 1,
		col:  1,
		last: Location{Line: 1, Column: 0},
	}
}

// NextChar returns the current character without consuming it.
func (t *Tokenizer) NextChar() rune {
	return t.PeekChar(0)
}

// PeekChar returns the character offset positions ahead of the current
// one without consuming anything.
func (t *Tokenizer) PeekChar(offset int) rune {
	i := t.pos + offset
	if i < 0 || i >= len(t.src) {
		return EOF
	}
	return t.src[i]
}

// AtEnd reports whether every character has been consumed.
func (t *Tokenizer) AtEnd() bool {
	return t.pos >= len(t.src)
}

// Advance consumes the current character.
func (t *Tokenizer) Advance() {
	if t.AtEnd() {
		return
	}
	t.last = Location{Line: t.line, Column: t.col}
	if t.src[t.pos] == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	t.pos++
}

// Mark is a saved tokenizer position.
type Mark struct {
	pos  int
	line int
	col  int
	last Location
}

// Mark saves the current position so it can be restored with Reset.
func (t *Tokenizer) Mark() Mark {
	return Mark{pos: t.pos, line: t.line, col: t.col, last: t.last}
}

// Reset returns to a position saved by Mark.
func (t *Tokenizer) Reset(m Mark) {
	t.pos = m.pos
	t.line = m.line
	t.col = m.col
	t.last = m.last
}

// SkipSpaces consumes spaces and tabs but stops at line breaks.
func (t *Tokenizer) SkipSpaces() {
	for t.NextChar() == ' ' || t.NextChar() == '\t' {
		t.Advance()
	}
}

// Location returns the position of the current character.
func (t *Tokenizer) Location() Location {
	return Location{Line: t.line, Column: t.col}
}

// LastLocation returns the position of the most recently consumed
// character. Source ranges end here.
func (t *Tokenizer) LastLocation() Location {
	return t.last
}

// SkipWhitespace consumes spaces, tabs and line breaks.
func (t *Tokenizer) SkipWhitespace() {
	for !t.AtEnd() && unicode.IsSpace(t.NextChar()) {
		t.Advance()
	}
}

// Match consumes s if the source continues with it.
func (t *Tokenizer) Match(s string) bool {
	runes := []rune(s)
	for i, r := range runes {
		if t.PeekChar(i) != r {
			return false
		}
	}
	for range runes {
		t.Advance()
	}
	return true
}

// IsIdentifierStart reports whether r may begin an identifier.
func IsIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// IsIdentifierChar reports whether r may continue an identifier.
func IsIdentifierChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ReadIdentifier consumes an identifier. It returns an empty string if the
// current character cannot start one.
func (t *Tokenizer) ReadIdentifier() string {
	if !IsIdentifierStart(t.NextChar()) {
		return ""
	}
	var sb strings.Builder
	for IsIdentifierChar(t.NextChar()) {
		sb.WriteRune(t.NextChar())
		t.Advance()
	}
	return sb.String()
}

// Number is the raw text of a numeric literal.
type Number struct {
	Text  string
	Hex   bool
	Float bool
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// ReadNumber consumes a decimal integer, a 0x-prefixed hex integer or a
// decimal float.
func (t *Tokenizer) ReadNumber() Number {
	var sb strings.Builder

	if t.NextChar() == '0' && (t.PeekChar(1) == 'x' || t.PeekChar(1) == 'X') {
		t.Advance()
		t.Advance()
		for isHexDigit(t.NextChar()) {
			sb.WriteRune(t.NextChar())
			t.Advance()
		}
		return Number{Text: sb.String(), Hex: true}
	}

	for unicode.IsDigit(t.NextChar()) {
		sb.WriteRune(t.NextChar())
		t.Advance()
	}

	if t.NextChar() == '.' && unicode.IsDigit(t.PeekChar(1)) {
		sb.WriteRune('.')
		t.Advance()
		for unicode.IsDigit(t.NextChar()) {
			sb.WriteRune(t.NextChar())
			t.Advance()
		}
		return Number{Text: sb.String(), Float: true}
	}

	return Number{Text: sb.String()}
}

// ReadQuotedString consumes a double-quoted string and returns its decoded
// contents. The current character must be the opening quote.
func (t *Tokenizer) ReadQuotedString() (string, error) {
	if t.NextChar() != '"' {
		return "", fmt.Errorf("%w: expected opening quote", ErrUnterminatedString)
	}
	t.Advance()

	var sb strings.Builder
	for {
		if t.AtEnd() {
			return sb.String(), ErrUnterminatedString
		}
		ch := t.NextChar()
		t.Advance()
		switch ch {
		case '"':
			return sb.String(), nil
		case '\\':
			next := t.NextChar()
			t.Advance()
			switch next {
			case '"', '\\':
				sb.WriteRune(next)
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case EOF:
				return sb.String(), ErrUnterminatedString
			default:
				return sb.String(), fmt.Errorf("%w: \\%c", ErrInvalidEscape, next)
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

// ReadToEndOfLine consumes and returns everything up to, but not
// including, the next line break.
func (t *Tokenizer) ReadToEndOfLine() string {
	var sb strings.Builder
	for !t.AtEnd() && t.NextChar() != '\n' {
		if t.NextChar() != '\r' {
			sb.WriteRune(t.NextChar())
		}
		t.Advance()
	}
	return sb.String()
}

// ReadUntil consumes characters up to and including terminator and returns
// them without it. It returns false if the source ends first.
func (t *Tokenizer) ReadUntil(terminator string) (string, bool) {
	var sb strings.Builder
	for !t.AtEnd() {
		if t.Match(terminator) {
			return sb.String(), true
		}
		sb.WriteRune(t.NextChar())
		t.Advance()
	}
	return sb.String(), false
}
