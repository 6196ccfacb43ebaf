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

// Package functions provides the builtin function library: memory
// accessors, requirement flags, collection helpers and the declarations
// that produce achievements, leaderboards and rich presence.
package functions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/builder"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrDuplicateMacro   = errors.New("macro defined differently")
	ErrDuplicateDisplay = errors.New("rich presence display already defined")
	ErrEmptyArray       = errors.New("array is empty")
	ErrRangeTooLarge    = errors.New("range too large")
	ErrInvalidType      = errors.New("invalid achievement type")
)

// maxRangeEntries bounds range() so a typo cannot exhaust memory.
const maxRangeEntries = 1 << 20

// Options configures how declarations are lowered.
type Options struct {
	MinimumVersion *semver.Version
}

// Library holds the declarations made while a script runs.
type Library struct {
	opts         Options
	Achievements []*Achievement
	Leaderboards []*Leaderboard
	RichPresence *RichPresence
}

// New returns an empty library.
func New(opts Options) *Library {
	return &Library{opts: opts, RichPresence: newRichPresence()}
}

func (l *Library) builderOptions() builder.Options {
	return builder.Options{MinimumVersion: l.opts.MinimumVersion}
}

// Register adds every builtin to the root of s.
func (l *Library) Register(s *interpreter.Scope) error {
	builtins := l.builtins()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fn := builtins[name]
		if got := fn.Definition().NameString(); got != name {
			return fmt.Errorf("builtin %s is declared as %s", name, got)
		}
		if err := s.AddFunction(fn); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
	}
	log.Debug().Int("builtins", len(names)).Msg("registered builtin functions")
	return nil
}

func (l *Library) builtins() map[string]interpreter.Function {
	fns := map[string]interpreter.Function{
		"bit":      newBitAccessor(),
		"prev":     newModifier("prev", requirements.FieldTypePreviousValue),
		"prior":    newModifier("prior", requirements.FieldTypePriorValue),
		"bcd":      newModifier("bcd", requirements.FieldTypeBinaryCodedDecimal),
		"remember": newRemember(),
		"recall":   newRecall(),

		"once":         newOnce(),
		"repeated":     newRepeated(),
		"tally":        newTally(),
		"deduct":       newDeduct(),
		"never":        newNever(),
		"unless":       newUnless(),
		"trigger_when": newTriggerWhen(),
		"measured":     newMeasured(),
		"always_true":  newMarker(true),
		"always_false": newMarker(false),

		"length":                  interpreter.NewBuiltin("length(object)", length),
		"range":                   interpreter.NewBuiltin("range(start, stop, step = 1)", rangeOf),
		"array_push":              interpreter.NewBuiltin("array_push(array, value)", arrayPush),
		"array_pop":               interpreter.NewBuiltin("array_pop(array)", arrayPop),
		"array_map":               interpreter.NewBuiltin("array_map(inputs, predicate)", arrayMap),
		"array_filter":            interpreter.NewBuiltin("array_filter(inputs, predicate)", arrayFilter),
		"array_reduce":            interpreter.NewBuiltin("array_reduce(inputs, initial, reducer)", arrayReduce),
		"any_of":                  interpreter.NewBuiltin("any_of(inputs, predicate)", anyOf),
		"all_of":                  interpreter.NewBuiltin("all_of(inputs, predicate)", allOf),
		"none_of":                 interpreter.NewBuiltin("none_of(inputs, predicate)", noneOf),
		"sum_of":                  interpreter.NewBuiltin("sum_of(inputs, predicate)", sumOf),
		"max_of":                  newMaxOf(),
		"dictionary_contains_key": interpreter.NewBuiltin("dictionary_contains_key(dictionary, key)", containsKey),

		"format":    interpreter.NewBuiltin("format(format_string, parameters...)", format),
		"substring": interpreter.NewBuiltin("substring(string, offset, length = 2147483647)", substring),
		"upper":     interpreter.NewBuiltin("upper(string)", upper),
		"lower":     interpreter.NewBuiltin("lower(string)", lower),

		"achievement": interpreter.NewBuiltin(
			`achievement(title, description, points, trigger, id = 0, badge = "0", `+
				`published = "", modified = "", type = "")`,
			l.achievement),
		"leaderboard": interpreter.NewBuiltin(
			`leaderboard(title, description, start, cancel, submit, value, `+
				`format = "value", lower_is_better = false, id = 0)`,
			l.leaderboard),
		"rich_presence_display": interpreter.NewBuiltin(
			"rich_presence_display(format_string, parameters...)", l.richPresenceDisplay),
		"rich_presence_conditional_display": interpreter.NewBuiltin(
			"rich_presence_conditional_display(condition, format_string, parameters...)",
			l.richPresenceConditionalDisplay),
		"rich_presence_value":  newMacro(`rich_presence_value(name, expression, format = "value")`),
		"rich_presence_lookup": newMacro(`rich_presence_lookup(name, expression, dictionary, fallback = "")`),
	}
	for _, a := range accessors {
		fns[a.name] = newAccessor(a.name, a.size)
	}
	return fns
}

// expanding returns a builtin that evaluates to its own call with every
// parameter evaluated, for functions that only mean something once
// lowered. check validates the bound parameters.
func expanding(signature string, check func(s *interpreter.Scope) *ast.ErrorExpression) *interpreter.Builtin {
	var b *interpreter.Builtin
	b = interpreter.NewBuiltin(signature, func(s *interpreter.Scope) (ast.Expression, *ast.ErrorExpression) {
		if check != nil {
			if err := check(s); err != nil {
				return nil, err
			}
		}
		return interpreter.Expand(s, b.Def), nil
	})
	return b
}
