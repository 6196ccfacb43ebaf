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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/config"
	"github.com/ZaparooProject/rascript/pkg/notes"
	"github.com/ZaparooProject/rascript/pkg/rascript"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNoInput      = errors.New("no input script given")
	ErrDiagnostics  = errors.New("script has errors")
	extensionFormat = map[string]string{
		config.FormatText: ".txt",
		config.FormatJSON: ".json",
		config.FormatCSV:  ".csv",
	}
)

// Runner compiles one script file and writes the result.
type Runner struct {
	Fs     afero.Fs
	Cfg    *config.Instance
	Stdout io.Writer
	Stderr io.Writer
	// Out overrides the configured output directory when set.
	Out string
}

func (r *Runner) options() (rascript.Options, error) {
	opts := rascript.Options{
		MinimumVersion:    r.Cfg.MinimumVersion(),
		MaxRecursionDepth: r.Cfg.MaxRecursionDepth(),
		MaxAltGroups:      r.Cfg.MaxAltGroups(),
	}
	if path := r.Cfg.NotesPath(); path != "" {
		n, err := notes.Load(r.Fs, path)
		if err != nil {
			return opts, fmt.Errorf("failed to load notes: %w", err)
		}
		opts.Notes = n
	}
	return opts, nil
}

// Run compiles the script at in. Diagnostics are printed to Stderr and
// reported as ErrDiagnostics; output is only written for a clean compile.
func (r *Runner) Run(ctx context.Context, in string) (*rascript.Result, error) {
	source, err := afero.ReadFile(r.Fs, in)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	opts, err := r.options()
	if err != nil {
		return nil, err
	}

	res, err := rascript.Compile(ctx, string(source), opts)
	if err != nil {
		return nil, err
	}

	if res.HasErrors() {
		writeDiagnostics(r.Stderr, in, res.Diagnostics)
		log.Info().Str("script", in).Int("errors", len(res.Diagnostics)).Msg("compile failed")
		return res, ErrDiagnostics
	}

	if err := r.emit(in, res); err != nil {
		return res, err
	}
	log.Info().
		Str("script", in).
		Int("achievements", len(res.Achievements)).
		Int("leaderboards", len(res.Leaderboards)).
		Msg("compiled")
	return res, nil
}

func (r *Runner) outputPath(in string) string {
	if r.Out != "" {
		return r.Out
	}
	dir := r.Cfg.OutputDirectory()
	if dir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(dir, base+extensionFormat[r.Cfg.OutputFormat()])
}

func (r *Runner) emit(in string, res *rascript.Result) error {
	path := r.outputPath(in)
	if path == "" {
		return Write(r.Stdout, r.Cfg.OutputFormat(), res)
	}

	if err := r.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := r.Fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(f, r.Cfg.OutputFormat(), res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	log.Debug().Str("path", path).Msg("wrote output")
	return nil
}

func writeDiagnostics(w io.Writer, in string, diags []rascript.Diagnostic) {
	for _, d := range diags {
		_, _ = fmt.Fprintf(w, "%s:%s\n", in, d.Error())
		for inner := d.Inner; inner != nil; inner = inner.Inner {
			_, _ = fmt.Fprintf(w, "  %s:%s\n", in, inner.Error())
		}
	}
}
