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
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ZaparooProject/rascript/pkg/config"
	"github.com/ZaparooProject/rascript/pkg/helpers"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	Config     *string
	In         *string
	Out        *string
	Format     *string
	MinVersion *string
	Notes      *string
	Watch      *bool
	Version    *bool
	Debug      *bool
}

// SetupFlags defines the compiler flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config: fs.String(
			"config",
			"",
			"path to config file",
		),
		In: fs.String(
			"in",
			"",
			"script file to compile",
		),
		Out: fs.String(
			"out",
			"",
			"write output to file instead of stdout",
		),
		Format: fs.String(
			"format",
			"",
			"output format: text, json or csv",
		),
		MinVersion: fs.String(
			"min-version",
			"",
			"oldest runtime version the output must support",
		),
		Notes: fs.String(
			"notes",
			"",
			"code notes file (json or csv) used to annotate errors",
		),
		Watch: fs.Bool(
			"watch",
			false,
			"recompile whenever the script changes",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging",
		),
	}
}

// Pre parses args and handles flags that need no setup. It reports
// whether the program should exit immediately.
func (f *Flags) Pre(fs *flag.FlagSet, args []string, stdout io.Writer) (bool, error) {
	if err := fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(stdout, "rascript v%s\n", config.AppVersion)
		return true, nil
	}

	if *f.In == "" && fs.NArg() > 0 {
		*f.In = fs.Arg(0)
	}
	if *f.In == "" {
		return true, ErrNoInput
	}
	return false, nil
}

// Apply overrides config values with any flags that were set. Overrides
// are not saved to disk.
func (f *Flags) Apply(cfg *config.Instance) error {
	if *f.Format != "" {
		if err := cfg.SetOutputFormat(*f.Format); err != nil {
			return fmt.Errorf("invalid -format: %w", err)
		}
	}
	if *f.MinVersion != "" {
		if err := cfg.SetMinimumVersion(*f.MinVersion); err != nil {
			return fmt.Errorf("invalid -min-version: %w", err)
		}
	}
	if *f.Notes != "" {
		cfg.SetNotesPath(*f.Notes)
	}
	if *f.Debug {
		cfg.SetDebugLogging(true)
	}
	return nil
}

// Setup initializes logging and loads the user config with flag
// overrides applied.
func Setup(fs afero.Fs, f *Flags, writers []io.Writer) (*config.Instance, error) {
	err := helpers.InitLogging(filepath.Join(xdg.StateHome, config.AppName), writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	var cfg *config.Instance
	if *f.Config != "" {
		cfg, err = config.NewConfigFile(fs, *f.Config, config.BaseDefaults)
	} else {
		cfg, err = config.NewConfig(fs, filepath.Join(xdg.ConfigHome, config.AppName), config.BaseDefaults)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	cfg.SetDebugLogging(cfg.DebugLogging())
	if err := f.Apply(cfg); err != nil {
		return nil, err
	}

	log.Debug().Str("config", cfg.Path()).Msg("config loaded")
	return cfg, nil
}
