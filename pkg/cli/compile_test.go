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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ZaparooProject/rascript/pkg/config"
	"github.com/ZaparooProject/rascript/pkg/notes"
	testhelpers "github.com/ZaparooProject/rascript/pkg/testing/helpers"
	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const achievementScript = `achievement("Title", "Desc", 5, byte(0x10) == 3)`

type runnerEnv struct {
	fs     afero.Fs
	runner *Runner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newRunnerEnv(t *testing.T, script string) *runnerEnv {
	t.Helper()
	h := testhelpers.NewMemoryFS()
	require.NoError(t, h.WriteFile("/src/game.rascript", script))
	fs := h.Fs
	env := &runnerEnv{
		fs:     fs,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.runner = &Runner{
		Fs:     fs,
		Cfg:    newTestConfig(t, fs),
		Stdout: env.stdout,
		Stderr: env.stderr,
	}
	return env
}

func TestRunWritesText(t *testing.T) {
	t.Parallel()

	env := newRunnerEnv(t, achievementScript)
	res, err := env.runner.Run(context.Background(), "/src/game.rascript")
	require.NoError(t, err)
	require.Len(t, res.Achievements, 1)

	assert.Equal(t, "Achievement: Title (5 points)\n  Desc\n  0xH000010=3\n\n", env.stdout.String())
	assert.Empty(t, env.stderr.String())
}

func TestRunWritesJSON(t *testing.T) {
	t.Parallel()

	env := newRunnerEnv(t, achievementScript+`
leaderboard("Score", "High score", byte(1) == 1, byte(1) == 2, byte(1) == 3, byte(2))`)
	require.NoError(t, env.runner.Cfg.SetOutputFormat(config.FormatJSON))

	_, err := env.runner.Run(context.Background(), "/src/game.rascript")
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &doc))
	require.Len(t, doc.Achievements, 1)
	assert.Equal(t, "0xH000010=3", doc.Achievements[0].Trigger)
	assert.Equal(t, int32(5), doc.Achievements[0].Points)
	require.Len(t, doc.Leaderboards, 1)
	assert.Equal(t, "STA:0xH000001=1::CAN:0xH000001=2::SUB:0xH000001=3::VAL:M:0xH000002",
		doc.Leaderboards[0].Definition)
	assert.Empty(t, doc.RichPresence)
}

func TestRunWritesCSV(t *testing.T) {
	t.Parallel()

	env := newRunnerEnv(t, achievementScript+`
achievement("Second", "", 10, byte(0x11) > 2)`)
	require.NoError(t, env.runner.Cfg.SetOutputFormat(config.FormatCSV))

	_, err := env.runner.Run(context.Background(), "/src/game.rascript")
	require.NoError(t, err)

	header, _, _ := strings.Cut(env.stdout.String(), "\n")
	assert.Equal(t, "title,description,type,badge,trigger,id,points", header)

	var rows []achievementRow
	require.NoError(t, gocsv.UnmarshalString(env.stdout.String(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Second", rows[1].Title)
	assert.Equal(t, "0xH000011>2", rows[1].Trigger)
	assert.Equal(t, int32(10), rows[1].Points)
}

func TestRunWritesToOutputDirectory(t *testing.T) {
	t.Parallel()

	h := testhelpers.NewMemoryFS()
	vals := config.BaseDefaults
	vals.Output = config.Output{Directory: "/out", Format: config.FormatJSON}
	require.NoError(t, h.CreateConfigFile("/cfg/rascript.toml", vals))
	require.NoError(t, h.WriteFile("/src/game.rascript", achievementScript))
	fs := h.Fs

	var stdout bytes.Buffer
	runner := &Runner{Fs: fs, Cfg: newTestConfig(t, fs), Stdout: &stdout, Stderr: &bytes.Buffer{}}
	_, err := runner.Run(context.Background(), "/src/game.rascript")
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	data, err := afero.ReadFile(fs, "/out/game.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trigger": "0xH000010=3"`)
}

func TestRunOutFlagOverridesDirectory(t *testing.T) {
	t.Parallel()

	env := newRunnerEnv(t, achievementScript)
	env.runner.Out = "/elsewhere/result.txt"

	_, err := env.runner.Run(context.Background(), "/src/game.rascript")
	require.NoError(t, err)

	data, err := afero.ReadFile(env.fs, "/elsewhere/result.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Achievement: Title (5 points)")
}

func TestRunReportsDiagnostics(t *testing.T) {
	t.Parallel()

	env := newRunnerEnv(t, "function f() => missing\nx = f()")
	res, err := env.runner.Run(context.Background(), "/src/game.rascript")
	require.ErrorIs(t, err, ErrDiagnostics)
	require.True(t, res.HasErrors())

	lines := strings.Split(strings.TrimSpace(env.stderr.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "/src/game.rascript:2:"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "  /src/game.rascript:1:"), lines[1])
	assert.Empty(t, env.stdout.String())
}

func TestRunAnnotatesWithNotes(t *testing.T) {
	t.Parallel()

	env := newRunnerEnv(t, `achievement("t", "d", 5, !once(byte(0x10) == 1))`)
	h := &testhelpers.FSHelper{Fs: env.fs}
	require.NoError(t, h.CreateNotesFile("/notes.csv", notes.Notes{0x10: "Lives"}))
	env.runner.Cfg.SetNotesPath("/notes.csv")

	_, err := env.runner.Run(context.Background(), "/src/game.rascript")
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, env.stderr.String(), "[Lives]")
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing script", func(t *testing.T) {
		t.Parallel()
		env := newRunnerEnv(t, achievementScript)
		_, err := env.runner.Run(context.Background(), "/src/nope.rascript")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read script")
	})

	t.Run("missing notes", func(t *testing.T) {
		t.Parallel()
		env := newRunnerEnv(t, achievementScript)
		env.runner.Cfg.SetNotesPath("/nope.csv")
		_, err := env.runner.Run(context.Background(), "/src/game.rascript")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load notes")
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		env := newRunnerEnv(t, achievementScript)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := env.runner.Run(ctx, "/src/game.rascript")
		require.ErrorIs(t, err, context.Canceled)
	})
}
