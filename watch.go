// Copyright 2011 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pie

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch drives an Engine's bottom-up executor from live filesystem
// notifications, the way a cache service reconciles its in-memory state
// from a watchLoop: every event is folded into a dirty set, and a debounce
// timer decides when to drain that set into a single UpdateAffectedBy call
// rather than re-running on every individual write.
type Watch struct {
	engine   *Engine
	watcher  *fsnotify.Watcher
	debounce time.Duration
	errs     chan error
	done     chan struct{}
}

// NewWatch creates a Watch over engine. debounce is the quiet period an
// added path's events must go silent for before a batch of changes is
// delivered to UpdateAffectedBy; zero means deliver immediately on every
// event.
func NewWatch(engine *Engine, debounce time.Duration) (*Watch, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pie: create watcher: %w", err)
	}
	return &Watch{
		engine:   engine,
		watcher:  fw,
		debounce: debounce,
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Add starts watching path for changes. Only paths that a task has actually
// required or provided are meaningful to add; UpdateAffectedBy silently
// ignores paths the store has never interned.
func (w *Watch) Add(path string) error {
	if err := w.watcher.Add(path); err != nil {
		return fmt.Errorf("pie: watch %s: %w", path, err)
	}
	return nil
}

// Errs returns a channel that receives watcher-internal errors (as opposed
// to errors from the builds Watch triggers, which DependencyCheckErrors
// reports per session). The channel is never closed.
func (w *Watch) Errs() <-chan error {
	return w.errs
}

// Close stops the underlying watcher and the Run loop.
func (w *Watch) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// Run blocks, translating filesystem events into debounced batches of
// UpdateAffectedBy calls, until Close is called. It is meant to run in its
// own goroutine.
func (w *Watch) Run() {
	dirty := map[string]bool{}
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		if len(dirty) == 0 {
			return
		}
		paths := make([]string, 0, len(dirty))
		for p := range dirty {
			paths = append(paths, p)
		}
		dirty = map[string]bool{}

		s := w.engine.NewSession()
		s.UpdateAffectedBy(paths)
		s.Close()
	}

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			dirty[evt.Name] = true
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			flush()
			fire = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
