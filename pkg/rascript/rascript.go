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

// Package rascript compiles RAScript source into achievements,
// leaderboards and rich presence. Compile runs the whole pipeline: parse,
// evaluate, lower into requirements, optimize and check the result
// against the minimum runtime version.
package rascript

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/rascript/pkg/notes"
	"github.com/ZaparooProject/rascript/pkg/rascript/ast"
	"github.com/ZaparooProject/rascript/pkg/rascript/builder"
	"github.com/ZaparooProject/rascript/pkg/rascript/functions"
	"github.com/ZaparooProject/rascript/pkg/rascript/interpreter"
	"github.com/ZaparooProject/rascript/pkg/rascript/optimizer"
	"github.com/ZaparooProject/rascript/pkg/rascript/parser"
	"github.com/ZaparooProject/rascript/pkg/rascript/requirements"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type (
	Achievement  = functions.Achievement
	Leaderboard  = functions.Leaderboard
	RichPresence = functions.RichPresence
)

// Options configures a compilation. The zero value targets the latest
// runtime with default limits.
type Options struct {
	MinimumVersion    *semver.Version
	Notes             notes.Notes
	MaxRecursionDepth int
	MaxAltGroups      int
}

func (o Options) version() *semver.Version {
	if o.MinimumVersion == nil {
		return runtimever.Latest
	}
	return o.MinimumVersion
}

// Diagnostic is an error located in the source. Inner is the failure
// that caused it when the error was reported from a function call.
type Diagnostic struct {
	Err     error         `json:"-"`
	Inner   *Diagnostic   `json:"inner,omitempty"`
	Message string        `json:"message"`
	Range   ast.TextRange `json:"-"`
}

func newDiagnostic(e *ast.ErrorExpression, n notes.Notes) Diagnostic {
	d := Diagnostic{Message: n.Annotate(e.Message), Range: e.Range(), Err: e.Err}
	if e.Inner != nil {
		inner := newDiagnostic(e.Inner, n)
		d.Inner = &inner
	}
	return d
}

func (d Diagnostic) Error() string {
	return d.Range.Start.String() + ": " + d.Message
}

// Unwrap exposes the sentinel and the inner diagnostic to errors.Is.
func (d Diagnostic) Unwrap() []error {
	var out []error
	if d.Err != nil {
		out = append(out, d.Err)
	}
	if d.Inner != nil {
		out = append(out, *d.Inner)
	}
	return out
}

// Result is everything a script declared, with optimized requirements.
type Result struct {
	RichPresence *RichPresence
	Diagnostics  []Diagnostic
	Achievements []*Achievement
	Leaderboards []*Leaderboard
}

// HasErrors reports whether compilation produced any diagnostic.
func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Err joins the diagnostics into one error, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}

// Compile compiles source. Problems with the script are reported as
// diagnostics in the result; the returned error is only set when ctx is
// done before compilation finishes. Syntax errors are all reported;
// evaluation stops at the first error.
func Compile(ctx context.Context, source string, opts Options) (*Result, error) {
	res := &Result{}

	script := parser.Parse(source)
	if script.HasErrors() {
		for _, e := range script.Errors {
			res.Diagnostics = append(res.Diagnostics, newDiagnostic(e, opts.Notes))
		}
		res.RichPresence = functions.New(functions.Options{}).RichPresence
		log.Debug().Int("errors", len(script.Errors)).Msg("script has syntax errors")
		return res, nil
	}

	lib := functions.New(functions.Options{MinimumVersion: opts.MinimumVersion})
	scope := interpreter.NewScope(opts.MaxRecursionDepth)
	if err := lib.Register(scope); err != nil {
		return nil, fmt.Errorf("failed to register builtins: %w", err)
	}

	for _, stmt := range script.Statements {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compilation cancelled: %w", err)
		}
		if e := interpreter.Execute([]ast.Expression{stmt}, scope); e != nil {
			res.Diagnostics = append(res.Diagnostics, newDiagnostic(e, opts.Notes))
			break
		}
	}

	res.Achievements = lib.Achievements
	res.Leaderboards = lib.Leaderboards
	res.RichPresence = lib.RichPresence

	diags, err := optimize(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = append(res.Diagnostics, diags...)

	sort.SliceStable(res.Diagnostics, func(i, j int) bool {
		return res.Diagnostics[i].Range.Start.Before(res.Diagnostics[j].Range.Start)
	})

	log.Debug().
		Int("achievements", len(res.Achievements)).
		Int("leaderboards", len(res.Leaderboards)).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("compiled script")
	return res, nil
}

// optimize simplifies every declaration concurrently. Declarations do not
// share requirements, so each one is optimized on its own goroutine.
// Failures become diagnostics located at the declaration.
func optimize(ctx context.Context, res *Result, opts Options) ([]Diagnostic, error) {
	oopts := optimizer.Options{MinimumVersion: opts.MinimumVersion, MaxAltGroups: opts.MaxAltGroups}
	v := opts.version()

	jobs := make([]func() error, 0, len(res.Achievements)+len(res.Leaderboards)+1)
	ranges := make([]ast.TextRange, 0, cap(jobs))

	for _, a := range res.Achievements {
		jobs = append(jobs, func() error {
			if err := optimizer.Optimize(a.Trigger, oopts); err != nil {
				return err
			}
			return builder.Validate(a.Trigger, v)
		})
		ranges = append(ranges, a.Range)
	}

	for _, lb := range res.Leaderboards {
		jobs = append(jobs, func() error {
			for _, t := range []*requirements.Trigger{lb.Start, lb.Cancel, lb.Submit} {
				if err := optimizer.Optimize(t, oopts); err != nil {
					return err
				}
				if err := builder.Validate(t, v); err != nil {
					return err
				}
			}
			optimizer.OptimizeValue(lb.Value, oopts)
			return builder.ValidateValue(lb.Value, v)
		})
		ranges = append(ranges, lb.Range)
	}

	rp := res.RichPresence
	for _, d := range append(append([]*functions.Display(nil), rp.Displays...), rp.Default) {
		if d == nil {
			continue
		}
		jobs = append(jobs, func() error {
			if d.Condition != nil {
				if err := optimizer.Optimize(d.Condition, oopts); err != nil {
					return err
				}
				if err := builder.Validate(d.Condition, v); err != nil {
					return err
				}
			}
			for _, p := range d.Params {
				optimizer.OptimizeValue(p.Value, oopts)
				if err := builder.ValidateValue(p.Value, v); err != nil {
					return err
				}
			}
			return nil
		})
		ranges = append(ranges, d.Range)
	}

	failures := make([]error, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			failures[i] = job()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compilation cancelled: %w", err)
	}

	var diags []Diagnostic
	for i, err := range failures {
		if err == nil {
			continue
		}
		diags = append(diags, Diagnostic{
			Message: opts.Notes.Annotate(err.Error()),
			Range:   ranges[i],
			Err:     err,
		})
	}
	return diags, nil
}
