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

// Array is an ordered list of values. Arrays are shared by reference:
// every variable and parameter bound to one sees the same entries.
type Array struct {
	Node
	Entries []Expression
}

// NewArray returns an array located at r.
func NewArray(entries []Expression, r TextRange) *Array {
	n := &Array{Entries: entries}
	n.rng = r
	return n
}

func (e *Array) String() string {
	parts := make([]string, 0, len(e.Entries))
	for _, v := range e.Entries {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DictionaryEntry is a key and its value.
type DictionaryEntry struct {
	Key   Expression
	Value Expression
}

// Dictionary maps constant keys to values. Entries keep insertion order.
// Dictionaries are shared by reference like arrays.
type Dictionary struct {
	Node
	Entries []DictionaryEntry
}

// NewDictionary returns a dictionary located at r.
func NewDictionary(entries []DictionaryEntry, r TextRange) *Dictionary {
	n := &Dictionary{Entries: entries}
	n.rng = r
	return n
}

// Lookup returns the value stored under key.
func (e *Dictionary) Lookup(key Expression) (Expression, bool) {
	for _, entry := range e.Entries {
		if Equal(entry.Key, key) {
			return entry.Value, true
		}
	}
	return nil, false
}

// Set stores value under key, replacing an existing entry.
func (e *Dictionary) Set(key, value Expression) {
	for i, entry := range e.Entries {
		if Equal(entry.Key, key) {
			e.Entries[i].Value = value
			return
		}
	}
	e.Entries = append(e.Entries, DictionaryEntry{Key: key, Value: value})
}

func (e *Dictionary) String() string {
	parts := make([]string, 0, len(e.Entries))
	for _, entry := range e.Entries {
		parts = append(parts, entry.Key.String()+": "+entry.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Index reads an entry of an array or dictionary.
type Index struct {
	Node
	Target Expression
	Index  Expression
}

// NewIndex returns an index expression located at r.
func NewIndex(target, index Expression, r TextRange) *Index {
	n := &Index{Target: target, Index: index}
	n.rng = r
	return n
}

func (e *Index) String() string {
	return e.Target.String() + "[" + e.Index.String() + "]"
}
