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
	"testing"

	"github.com/ZaparooProject/rascript/pkg/config"
	"github.com/ZaparooProject/rascript/pkg/notes"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConfigFileLoads(t *testing.T) {
	t.Parallel()

	h := NewMemoryFS()
	vals := config.BaseDefaults
	vals.Output.Format = config.FormatCSV
	require.NoError(t, h.CreateConfigFile("/cfg/rascript.toml", vals))

	cfg, err := config.NewConfigFile(h.Fs, "/cfg/rascript.toml", config.BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, config.FormatCSV, cfg.OutputFormat())
}

func TestCreateNotesFile(t *testing.T) {
	t.Parallel()

	want := notes.Notes{0x10: "Lives", 0x1234: "Stage"}
	for _, path := range []string{"/notes.csv", "/notes.json"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			h := NewMemoryFS()
			require.NoError(t, h.CreateNotesFile(path, want))
			got, err := notes.Load(h.Fs, path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	err := NewMemoryFS().CreateNotesFile("/notes.txt", want)
	require.ErrorIs(t, err, notes.ErrUnknownFormat)
}

func TestCreateDirectoryStructure(t *testing.T) {
	t.Parallel()

	h := NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(map[string]any{
		"/src": map[string]any{
			"game.rascript": "x = 1",
			"lib": map[string]any{
				"util.rascript": "y = 2",
			},
		},
	}))

	data, err := afero.ReadFile(h.Fs, "/src/lib/util.rascript")
	require.NoError(t, err)
	assert.Equal(t, "y = 2", string(data))

	err = h.CreateDirectoryStructure(map[string]any{"bad": 3})
	require.Error(t, err)
}
