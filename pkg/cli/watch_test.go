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
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	watchedPath = "/src/game.rascript"
	debounce    = 100 * time.Millisecond
)

type watchEnv struct {
	clock  *clockwork.FakeClock
	events chan fsnotify.Event
	errs   chan error
	done   chan struct{}
	cancel context.CancelFunc
	ctx    context.Context
}

func startWatch(t *testing.T, compile func(ctx context.Context)) *watchEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	env := &watchEnv{
		clock:  clockwork.NewFakeClock(),
		events: make(chan fsnotify.Event),
		errs:   make(chan error),
		done:   make(chan struct{}),
		cancel: cancel,
		ctx:    ctx,
	}
	w := &Watcher{Clock: env.clock, Compile: compile, Path: watchedPath, Debounce: debounce}
	go func() {
		w.loop(ctx, env.events, env.errs)
		close(env.done)
	}()
	t.Cleanup(func() {
		cancel()
		<-env.done
	})
	return env
}

func (e *watchEnv) write(name string) {
	e.events <- fsnotify.Event{Name: name, Op: fsnotify.Write}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	t.Parallel()

	var compiles atomic.Int32
	compiled := make(chan struct{}, 4)
	env := startWatch(t, func(context.Context) {
		compiles.Add(1)
		compiled <- struct{}{}
	})

	env.write(watchedPath)
	env.write(watchedPath)
	env.write(watchedPath)
	// unrelated file; once received, every earlier event has been handled
	env.write("/src/other.txt")

	require.NoError(t, env.clock.BlockUntilContext(env.ctx, 1))
	env.clock.Advance(debounce)

	select {
	case <-compiled:
	case <-time.After(2 * time.Second):
		t.Fatal("script was not recompiled")
	}
	select {
	case <-compiled:
		t.Fatal("burst compiled more than once")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(1), compiles.Load())
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	compiled := make(chan struct{}, 1)
	env := startWatch(t, func(context.Context) { compiled <- struct{}{} })

	env.write("/src/other.rascript")
	env.events <- fsnotify.Event{Name: watchedPath, Op: fsnotify.Chmod}
	env.errs <- errors.New("queue overflow")
	env.clock.Advance(time.Hour)

	select {
	case <-compiled:
		t.Fatal("compiled without a relevant change")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatcherCancelsSupersededCompile(t *testing.T) {
	t.Parallel()

	var next atomic.Int32
	started := make(chan int32, 2)
	cancelled := make(chan int32, 2)
	env := startWatch(t, func(ctx context.Context) {
		id := next.Add(1)
		started <- id
		<-ctx.Done()
		cancelled <- id
	})

	env.write(watchedPath)
	require.NoError(t, env.clock.BlockUntilContext(env.ctx, 1))
	env.clock.Advance(debounce)
	assert.Equal(t, int32(1), <-started)

	env.write(watchedPath)
	require.NoError(t, env.clock.BlockUntilContext(env.ctx, 1))
	env.clock.Advance(debounce)

	assert.Equal(t, int32(1), <-cancelled)
	assert.Equal(t, int32(2), <-started)

	env.cancel()
	<-env.done
	assert.Equal(t, int32(2), <-cancelled)
}

func TestWatcherSerializesCompiles(t *testing.T) {
	t.Parallel()

	var active, overlaps atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	env := startWatch(t, func(context.Context) {
		if active.Add(1) > 1 {
			overlaps.Add(1)
		}
		started <- struct{}{}
		// keeps emitting after cancellation, like a compile writing output
		<-release
		active.Add(-1)
	})

	env.write(watchedPath)
	require.NoError(t, env.clock.BlockUntilContext(env.ctx, 1))
	env.clock.Advance(debounce)
	<-started

	env.write(watchedPath)
	require.NoError(t, env.clock.BlockUntilContext(env.ctx, 1))
	env.clock.Advance(debounce)

	select {
	case <-started:
		t.Fatal("second compile started before the first returned")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("second compile never ran")
	}
	assert.Zero(t, overlaps.Load())
}
