/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_TrailingEdge(t *testing.T) {
	tm := New(20 * time.Millisecond)
	var calls, last atomic.Int32
	done := make(chan struct{}, 1)
	for i := 1; i <= 5; i++ {
		n := int32(i)
		tm.Schedule(func() {
			calls.Add(1)
			last.Store(n)
			done <- struct{}{}
		})
		time.Sleep(2 * time.Millisecond)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced function never ran")
	}
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one call, got %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("expected the last scheduled function to run, got %d", got)
	}
	if tm.Pending() {
		t.Fatalf("nothing should be pending after firing")
	}
}

func TestTimer_Cancel(t *testing.T) {
	tm := New(10 * time.Millisecond)
	var calls atomic.Int32
	tm.Schedule(func() { calls.Add(1) })
	if !tm.Pending() {
		t.Fatalf("expected pending")
	}
	if !tm.Cancel() {
		t.Fatalf("cancel should report a pending function")
	}
	time.Sleep(40 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("cancelled function ran")
	}
	if tm.Cancel() {
		t.Fatalf("second cancel should report nothing pending")
	}
}

func TestTimer_Flush(t *testing.T) {
	tm := New(time.Hour)
	ran := false
	tm.Schedule(func() { ran = true })
	if !tm.Flush() || !ran {
		t.Fatalf("flush should run the pending function synchronously")
	}
	if tm.Flush() {
		t.Fatalf("flush with nothing pending should report false")
	}
}

func TestNew_DefaultDelay(t *testing.T) {
	if d := New(0).Delay(); d != DefaultDelay {
		t.Fatalf("expected default delay, got %v", d)
	}
	var nilTimer *Timer
	nilTimer.Schedule(func() {})
	if nilTimer.Cancel() || nilTimer.Pending() || nilTimer.Flush() {
		t.Fatalf("nil timer should be inert")
	}
}
