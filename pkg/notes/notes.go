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

// Package notes loads code notes, the per-address descriptions of game
// memory, and uses them to annotate compiler messages.
package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/helpers"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrUnknownFormat  = errors.New("unknown notes format")
	ErrInvalidAddress = errors.New("invalid note address")
)

// accessorPattern matches memory accessors as they appear in messages,
// e.g. byte(0x001234) or the inner word(0x10) of prev(word(0x10)).
const accessorPattern = `\b(?:bit[0-7]|low4|high4|byte|word|tbyte|dword|bitcount|word_be|tbyte_be|dword_be|` +
	`float|float_be)\((0x[0-9A-Fa-f]+|[0-9]+)\)`

// Notes maps addresses to note text. A Notes value is not modified after
// it is loaded.
type Notes map[uint32]string

// Lookup returns the note for address.
func (n Notes) Lookup(address uint32) (string, bool) {
	note, ok := n[address]
	return note, ok
}

// Addresses returns the annotated addresses in ascending order.
func (n Notes) Addresses() []uint32 {
	out := make([]uint32, 0, len(n))
	for addr := range n {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Annotate appends the first line of the note for every accessor in
// text that reads an annotated address.
func (n Notes) Annotate(text string) string {
	if len(n) == 0 {
		return text
	}
	re := helpers.GlobalRegexCache.MustCompile(accessorPattern)
	return re.ReplaceAllStringFunc(text, func(match string) string {
		sub := re.FindStringSubmatch(match)
		addr, err := ParseAddress(sub[1])
		if err != nil {
			return match
		}
		note, ok := n[addr]
		if !ok {
			return match
		}
		if i := strings.IndexByte(note, '\n'); i >= 0 {
			note = note[:i]
		}
		return match + " [" + strings.TrimSpace(note) + "]"
	})
}

// ParseAddress reads a decimal or 0x-prefixed hexadecimal address.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return uint32(v), nil
}

// Entry is one note as stored in a notes file.
type Entry struct {
	Address string `json:"Address" csv:"address"`
	Note    string `json:"Note" csv:"note"`
}

func fromEntries(entries []Entry) (Notes, error) {
	n := make(Notes, len(entries))
	for _, e := range entries {
		addr, err := ParseAddress(e.Address)
		if err != nil {
			return nil, err
		}
		n[addr] = e.Note
	}
	return n, nil
}

// ParseJSON reads notes in the emulator toolkit's JSON layout:
// [{"Address": "0x001234", "Note": "..."}].
func ParseJSON(r io.Reader) (Notes, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return fromEntries(entries)
}

// ParseCSV reads notes from a CSV file with address and note columns.
func ParseCSV(r io.Reader) (Notes, error) {
	var entries []Entry
	if err := gocsv.Unmarshal(r, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return fromEntries(entries)
}

// WriteCSV writes notes as CSV in address order.
func (n Notes) WriteCSV(w io.Writer) error {
	entries := make([]Entry, 0, len(n))
	for _, addr := range n.Addresses() {
		entries = append(entries, Entry{Address: fmt.Sprintf("0x%06x", addr), Note: n[addr]})
	}
	if err := gocsv.Marshal(entries, w); err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	return nil
}

// Load reads a notes file, choosing the format from its extension.
func Load(fs afero.Fs, path string) (Notes, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open notes: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("failed to close notes file")
		}
	}()

	var n Notes
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		n, err = ParseJSON(f)
	case ".csv":
		n, err = ParseCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Int("notes", len(n)).Msg("loaded code notes")
	return n, nil
}
