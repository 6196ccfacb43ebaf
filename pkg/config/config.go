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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/ZaparooProject/rascript/pkg/helpers/syncutil"
	"github.com/ZaparooProject/rascript/pkg/rascript/runtimever"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "RASCRIPT_CFG"
	FormatText    = "text"
	FormatJSON    = "json"
	FormatCSV     = "csv"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Output       Output   `toml:"output"`
	Notes        Notes    `toml:"notes,omitempty"`
	Compiler     Compiler `toml:"compiler"`
	Watch        Watch    `toml:"watch"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

type Compiler struct {
	MinimumVersion    string `toml:"minimum_version,omitempty" validate:"omitempty,runtimever"`
	MaxRecursionDepth int    `toml:"max_recursion_depth" validate:"gte=1,lte=10000"`
	MaxAltGroups      int    `toml:"max_alt_groups" validate:"gte=1,lte=1000"`
}

type Output struct {
	Directory string `toml:"directory,omitempty"`
	Format    string `toml:"format" validate:"oneof=text json csv"`
}

type Notes struct {
	Path string `toml:"path,omitempty"`
}

type Watch struct {
	DebounceMS int `toml:"debounce_ms" validate:"gte=0,lte=60000"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Compiler: Compiler{
		MaxRecursionDepth: 100,
		MaxAltGroups:      20,
	},
	Output: Output{
		Format: FormatText,
	},
	Watch: Watch{
		DebounceMS: 250,
	},
}

type Instance struct {
	fs       afero.Fs
	version  *semver.Version
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from configDir, or the path in the
// RASCRIPT_CFG environment variable.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}
	return NewConfigFile(fs, cfgPath, defaults)
}

// NewConfigFile loads the config at cfgPath, writing the defaults first if
// the file does not exist.
//
//nolint:gocritic // config struct copied for immutability
func NewConfigFile(fs afero.Fs, cfgPath string, defaults Values) (*Instance, error) {
	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := fs.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := Validate(&newVals); err != nil {
		return err
	}

	version, err := runtimever.Parse(newVals.Compiler.MinimumVersion)
	if err != nil {
		return fmt.Errorf("failed to parse minimum version: %w", err)
	}

	c.vals = newVals
	c.version = version
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// MinimumVersion returns the oldest runtime compiled output must support.
func (c *Instance) MinimumVersion() *semver.Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.version == nil {
		return runtimever.Latest
	}
	return c.version
}

func (c *Instance) SetMinimumVersion(s string) error {
	v, err := runtimever.Parse(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Compiler.MinimumVersion = s
	c.version = v
	return nil
}

func (c *Instance) MaxRecursionDepth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Compiler.MaxRecursionDepth
}

func (c *Instance) MaxAltGroups() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Compiler.MaxAltGroups
}

func (c *Instance) OutputFormat() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Output.Format == "" {
		return FormatText
	}
	return c.vals.Output.Format
}

func (c *Instance) SetOutputFormat(format string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vals := c.vals
	vals.Output.Format = format
	if err := Validate(&vals); err != nil {
		return err
	}
	c.vals = vals
	return nil
}

func (c *Instance) OutputDirectory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.Directory
}

func (c *Instance) NotesPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Notes.Path
}

func (c *Instance) SetNotesPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Notes.Path = path
}

// WatchDebounce is how long watch mode waits for writes to settle
// before recompiling.
func (c *Instance) WatchDebounce() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Watch.DebounceMS) * time.Millisecond
}
