/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package autocomplete proposes values for the segment of a scene heading under the cursor.
//
// The engine never mutates a document. Accept hands back a Completion and the caller splices it
// into the heading text.
package autocomplete

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"goscreenwriter/internal/debounce"
	"goscreenwriter/internal/extract"
	sp "goscreenwriter/internal/screenplay"
)

// StandardTimes are always offered for the time-of-day segment.
var StandardTimes = []string{"CONTINUOUS", "DAY", "EVENING", "LATER", "MORNING", "NIGHT"}

// Source gives the engine a consistent read of the editing state.
type Source interface {
	// HeadingAt returns the scene-heading block under the cursor. ok is false when the cursor is
	// not inside a scene heading.
	HeadingAt() (block int, text string, offset int, ok bool)
	History() extract.History
}

// Popup is the observable autocomplete state.
type Popup struct {
	Visible    bool
	Candidates []string
	Highlight  int
	Block      int
	Segment    sp.Segment
	Query      string
	// Anchor is the start of the segment being completed.
	Anchor sp.Cursor
}

// Selected returns the highlighted candidate.
func (p Popup) Selected() (string, bool) {
	if !p.Visible || p.Highlight < 0 || p.Highlight >= len(p.Candidates) {
		return "", false
	}
	return p.Candidates[p.Highlight], true
}

// Completion is a committed candidate that the caller splices into the heading.
type Completion struct {
	Block   int
	Segment sp.Segment
	Value   string
}

// Engine holds popup state and the debounced trigger.
type Engine struct {
	limit  int
	timer  *debounce.Timer
	notify func(Popup)

	mu    sync.Mutex
	popup Popup
	gen   uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotify registers a callback run after every debounced refresh.
func WithNotify(fn func(Popup)) Option {
	return func(e *Engine) { e.notify = fn }
}

// New creates an engine. A non-positive limit means no cap on the candidate list.
func New(delay time.Duration, limit int, opts ...Option) *Engine {
	e := &Engine{limit: limit, timer: debounce.New(delay)}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Delay returns the debounce interval.
func (e *Engine) Delay() time.Duration { return e.timer.Delay() }

// Schedule restarts the debounce window; when it elapses the popup is refreshed from src.
func (e *Engine) Schedule(src Source) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.mu.Unlock()
	e.timer.Schedule(func() {
		p, ok := e.refresh(src, gen)
		if ok && e.notify != nil {
			e.notify(p)
		}
	})
}

// Pending reports whether a debounced refresh is waiting.
func (e *Engine) Pending() bool { return e.timer.Pending() }

// Flush runs a pending refresh immediately.
func (e *Engine) Flush() bool { return e.timer.Flush() }

// Cancel drops a pending refresh without touching the popup.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.gen++
	e.mu.Unlock()
	e.timer.Cancel()
}

// Refresh recomputes the popup from src right away.
func (e *Engine) Refresh(src Source) Popup {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	p, _ := e.refresh(src, gen)
	return p
}

// refresh reads src without holding the engine lock, then publishes the result unless a newer
// Schedule, Cancel or Dismiss happened in between.
func (e *Engine) refresh(src Source, gen uint64) (Popup, bool) {
	next := compute(src, e.limit)
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return e.popup, false
	}
	if next.Visible && e.popup.Visible && e.popup.Block == next.Block && e.popup.Segment == next.Segment {
		if prev, ok := e.popup.Selected(); ok {
			if i := slices.Index(next.Candidates, prev); i >= 0 {
				next.Highlight = i
			}
		}
	}
	e.popup = next
	return clonePopup(e.popup), true
}

func compute(src Source, limit int) Popup {
	if src == nil {
		return Popup{}
	}
	block, text, offset, ok := src.HeadingAt()
	if !ok {
		return Popup{}
	}
	layout := sp.LayoutHeading(text)
	seg := layout.SegmentAt(offset)
	query := strings.TrimSpace(sp.SegmentText(text, seg))
	cands := Candidates(src.History(), seg, query)
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	if len(cands) == 0 {
		return Popup{}
	}
	return Popup{
		Visible:    true,
		Candidates: cands,
		Block:      block,
		Segment:    seg,
		Query:      query,
		Anchor:     sp.Cursor{Block: block, Offset: layout.Span(seg).Start},
	}
}

// Candidates lists the values for seg that contain query, case-insensitively, sorted
// alphabetically. A value equal to the query is left out since there is nothing to complete.
func Candidates(h extract.History, seg sp.Segment, query string) []string {
	var pool []string
	switch seg {
	case sp.SegmentPrefix:
		pool = sp.HeadingPrefixes
	case sp.SegmentTime:
		pool = append(append(pool, h.Times...), StandardTimes...)
	default:
		pool = h.Locations
	}
	q := strings.ToUpper(strings.TrimSpace(query))
	seen := map[string]struct{}{}
	var out []string
	for _, c := range pool {
		u := strings.ToUpper(c)
		if _, dup := seen[u]; dup || u == "" || u == q {
			continue
		}
		seen[u] = struct{}{}
		if q == "" || strings.Contains(u, q) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Move shifts the highlight by delta with wraparound.
func (e *Engine) Move(delta int) Popup {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.popup.Candidates)
	if !e.popup.Visible || n == 0 {
		return clonePopup(e.popup)
	}
	e.popup.Highlight = ((e.popup.Highlight+delta)%n + n) % n
	return clonePopup(e.popup)
}

// Accept closes the popup and returns the highlighted candidate.
func (e *Engine) Accept() (Completion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.popup.Selected()
	if !ok {
		return Completion{}, false
	}
	c := Completion{Block: e.popup.Block, Segment: e.popup.Segment, Value: v}
	e.gen++
	e.popup = Popup{}
	e.timer.Cancel()
	return c, true
}

// Dismiss hides the popup and cancels any pending refresh.
func (e *Engine) Dismiss() {
	e.mu.Lock()
	e.gen++
	e.popup = Popup{}
	e.mu.Unlock()
	e.timer.Cancel()
}

// State returns a copy of the current popup.
func (e *Engine) State() Popup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clonePopup(e.popup)
}

// Visible reports whether the popup is showing.
func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.popup.Visible
}

func clonePopup(p Popup) Popup {
	p.Candidates = slices.Clone(p.Candidates)
	return p
}
