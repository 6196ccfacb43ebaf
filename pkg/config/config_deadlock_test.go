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
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

// TestConcurrentAccess mixes getters and setters from many goroutines.
// With -tags=deadlock, go-deadlock panics on recursive or inverted locks.
func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, afero.NewMemMapFs())

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_ = cfg.SetOutputFormat(FormatJSON)
				_ = cfg.OutputFormat()
			case 1:
				_ = cfg.SetMinimumVersion("0.79")
				_ = cfg.MinimumVersion()
			case 2:
				cfg.SetNotesPath("notes.csv")
				_ = cfg.NotesPath()
			default:
				_ = cfg.Save()
				_ = cfg.WatchDebounce()
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent config access deadlocked")
	}
	assert.Equal(t, FormatJSON, cfg.OutputFormat())
}
