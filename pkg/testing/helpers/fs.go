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

package helpers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/config"
	"github.com/ZaparooProject/rascript/pkg/notes"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FSHelper builds script, config and notes fixtures on an afero.Fs.
type FSHelper struct {
	Fs afero.Fs
}

func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// WriteFile writes contents to path, creating parent directories.
func (h *FSHelper) WriteFile(path, contents string) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CreateConfigFile writes vals as a TOML config file.
//
//nolint:gocritic // config struct copied for immutability
func (h *FSHelper) CreateConfigFile(path string, vals config.Values) error {
	vals.ConfigSchema = config.SchemaVersion
	data, err := toml.Marshal(&vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return h.WriteFile(path, string(data))
}

// CreateNotesFile writes n as CSV or JSON depending on the extension.
func (h *FSHelper) CreateNotesFile(path string, n notes.Notes) error {
	var sb strings.Builder
	switch filepath.Ext(path) {
	case ".csv":
		if err := n.WriteCSV(&sb); err != nil {
			return fmt.Errorf("failed to write notes: %w", err)
		}
	case ".json":
		entries := make([]notes.Entry, 0, len(n))
		for _, addr := range n.Addresses() {
			entries = append(entries, notes.Entry{
				Address: fmt.Sprintf("0x%06x", addr),
				Note:    n[addr],
			})
		}
		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal notes: %w", err)
		}
		sb.Write(data)
	default:
		return fmt.Errorf("%w: %s", notes.ErrUnknownFormat, path)
	}
	return h.WriteFile(path, sb.String())
}

// CreateDirectoryStructure creates files from a nested map. String values
// are file contents and map values are subdirectories.
func (h *FSHelper) CreateDirectoryStructure(structure map[string]any) error {
	return h.createStructureRecursive("", structure)
}

func (h *FSHelper) createStructureRecursive(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o750); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.createStructureRecursive(fullPath, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported structure type for %s: %T", fullPath, content)
		}
	}
	return nil
}
