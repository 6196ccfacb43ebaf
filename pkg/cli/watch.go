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
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Watcher recompiles a script whenever it changes on disk. Bursts of
// writes within Debounce are coalesced into one compile, and a compile
// still running when the next one is due has its context cancelled. The
// next compile waits for it to return, so compiles never overlap.
type Watcher struct {
	Clock    clockwork.Clock
	Compile  func(ctx context.Context)
	Path     string
	Debounce time.Duration
}

// Watch blocks until ctx is done. The script's directory is watched
// rather than the file, so editors that save by renaming are seen.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.Path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Path, err)
	}
	log.Info().Str("script", w.Path).Msg("watching for changes")

	w.loop(ctx, watcher.Events, watcher.Errors)
	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.Path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	clock := w.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var (
		timer   clockwork.Timer
		timerC  <-chan time.Time
		cancel  context.CancelFunc = func() {}
		running sync.WaitGroup
		done    = make(chan struct{})
	)
	close(done)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		cancel()
		running.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			log.Debug().Str("event", event.String()).Msg("script changed")
			if timer != nil {
				timer.Stop()
			}
			timer = clock.NewTimer(w.Debounce)
			timerC = timer.Chan()

		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("fsnotify error")

		case <-timerC:
			timer, timerC = nil, nil
			cancel()

			var compileCtx context.Context
			compileCtx, cancel = context.WithCancel(ctx)
			previous, finished := done, make(chan struct{})
			done = finished
			running.Add(1)
			go func() {
				defer running.Done()
				defer close(finished)
				<-previous
				if compileCtx.Err() != nil {
					return
				}
				w.Compile(compileCtx)
			}()
		}
	}
}
