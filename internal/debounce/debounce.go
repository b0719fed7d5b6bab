/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package debounce provides a cancellable trailing-edge timer.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is used when a non-positive delay is configured.
const DefaultDelay = 300 * time.Millisecond

// Timer runs the most recently scheduled function once the delay has passed without another
// Schedule call. Cancel drops the pending function.
type Timer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	fn    func()
	gen   uint64
}

func New(delay time.Duration) *Timer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Timer{delay: delay}
}

// Delay returns the configured debounce interval.
func (t *Timer) Delay() time.Duration { return t.delay }

// Schedule replaces any pending function with fn and restarts the delay.
func (t *Timer) Schedule(fn func()) {
	if t == nil || fn == nil {
		return
	}
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.fn = fn
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.delay, func() { t.fire(gen) })
	t.mu.Unlock()
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.fn == nil {
		// superseded or cancelled
		t.mu.Unlock()
		return
	}
	fn := t.fn
	t.fn = nil
	t.timer = nil
	t.mu.Unlock()
	fn()
}

// Cancel drops the pending function, if any, and reports whether one was pending.
func (t *Timer) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	pending := t.fn != nil
	t.fn = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	return pending
}

// Pending reports whether a function is waiting to run.
func (t *Timer) Pending() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fn != nil
}

// Flush runs the pending function immediately on the calling goroutine.
func (t *Timer) Flush() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	fn := t.fn
	t.gen++
	t.fn = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
