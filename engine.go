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

import "sync"

// Engine is the long-lived owner of a Store. It is safe to call NewSession
// from multiple goroutines, but only one Session may be open at a time; the
// second caller blocks until the first session is closed.
type Engine struct {
	store   *Store
	tracker Tracker

	mu       sync.Mutex
	poisoned bool
}

// New returns an Engine with a fresh, empty Store. A nil tracker is
// equivalent to NoopTracker{}.
func New(tracker Tracker) *Engine {
	if tracker == nil {
		tracker = NoopTracker{}
	}
	return &Engine{store: NewStore(), tracker: tracker}
}

// NewSession borrows the engine exclusively and returns a Session over its
// Store. The caller must call Session.Close when done, typically via defer,
// before another session can be created.
//
// NewSession panics if the engine was poisoned by a panic unwinding out of a
// previous session: per the concurrency model, a panic mid-build may leave
// in-progress require-task reservations in the store, so the engine must not
// be reused.
func (e *Engine) NewSession() *Session {
	e.mu.Lock()
	if e.poisoned {
		e.mu.Unlock()
		panic("pie: engine is poisoned by a panic from a previous session and must not be reused")
	}
	return &Session{
		engine:  e,
		store:   e.store,
		tracker: e.tracker,
	}
}

// recoverPoisoning marks the engine poisoned and re-panics, if r is non-nil.
// Callers defer this at the top of every Session entry point.
func (e *Engine) recoverPoisoning(r any) {
	if r == nil {
		return
	}
	e.poisoned = true
	panic(r)
}
