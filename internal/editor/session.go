/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


// Package editor is the command/query facade the host UI talks to. A Session owns one Document,
// the cursor, the derived views and the autocomplete popup. Every command runs under the session
// lock, so a command either commits completely or leaves the document as it was.
package editor

import (
	"log/slog"
	"sync"
	"time"

	"goscreenwriter/internal/autocomplete"
	"goscreenwriter/internal/extract"
	applog "goscreenwriter/internal/log"
	sp "goscreenwriter/internal/screenplay"
)

// Recorder receives the document after every committed mutation. *history.Manager satisfies it.
type Recorder interface {
	Record(d *sp.Document) error
}

// Session is safe for concurrent use. Lock order is session before autocomplete engine.
type Session struct {
	mu      sync.Mutex
	doc     *sp.Document
	cursor  sp.Cursor
	focused bool
	views   extract.Cache

	ac     *autocomplete.Engine
	rec    Recorder
	log    *slog.Logger
	delay  time.Duration
	limit  int
	notify func(autocomplete.Popup)
}

// Option configures a Session.
type Option func(*Session)

// WithAutocomplete sets the debounce delay and the candidate cap of the heading popup.
func WithAutocomplete(delay time.Duration, limit int) Option {
	return func(s *Session) {
		s.delay = delay
		s.limit = limit
	}
}

// WithPopupNotify registers a callback run whenever a debounced refresh publishes a popup.
func WithPopupNotify(fn func(autocomplete.Popup)) Option {
	return func(s *Session) { s.notify = fn }
}

// WithRecorder journals every committed mutation.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.rec = r }
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession wraps d. A nil d starts an empty untitled document.
func NewSession(d *sp.Document, opts ...Option) *Session {
	if d == nil {
		d = sp.MustDocument("")
	}
	s := &Session{doc: d, limit: 8}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = applog.WithDocument(applog.WithComponent("editor"), d.ID)
	}
	var acOpts []autocomplete.Option
	if s.notify != nil {
		acOpts = append(acOpts, autocomplete.WithNotify(s.notify))
	}
	s.ac = autocomplete.New(s.delay, s.limit, acOpts...)
	return s
}

// Document returns a snapshot of the current document.
func (s *Session) Document() *sp.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// ID returns the stable external identifier of the document.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ID
}

// Cursor returns the current caret.
func (s *Session) Cursor() sp.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Focused reports whether the editing surface has focus.
func (s *Session) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// Views returns the derived scenes, characters and locations of the current document.
// The result always reflects the last committed mutation.
func (s *Session) Views() extract.Views {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views.Views(s.doc)
}

// Popup returns the autocomplete popup state.
func (s *Session) Popup() autocomplete.Popup { return s.ac.State() }

// FlushAutocomplete runs a pending debounced refresh now. It must not be called while holding
// the session lock.
func (s *Session) FlushAutocomplete() bool { return s.ac.Flush() }

// AutocompletePending reports whether a debounced refresh is waiting.
func (s *Session) AutocompletePending() bool { return s.ac.Pending() }

// Focus places the caret at c and gives the surface focus. An invalid cursor is ignored.
func (s *Session) Focus(c sp.Cursor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.Valid(c) {
		s.log.Debug("focus ignored: cursor outside document", slog.Int("block", c.Block), slog.Int("offset", c.Offset))
		return false
	}
	s.cursor = c
	s.focused = true
	s.syncPopupLocked()
	return true
}

// HeadingAt implements autocomplete.Source.
func (s *Session) HeadingAt() (int, string, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.focused {
		return 0, "", 0, false
	}
	b, ok := s.doc.Block(s.cursor.Block)
	if !ok || b.Type != sp.SceneHeading {
		return 0, "", 0, false
	}
	return s.cursor.Block, b.Text, s.cursor.Offset, true
}

// History implements autocomplete.Source.
func (s *Session) History() extract.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.views.Views(s.doc).History()
}

// syncPopupLocked schedules a refresh while the caret sits in a heading and dismisses the popup
// otherwise.
func (s *Session) syncPopupLocked() {
	b, ok := s.doc.Block(s.cursor.Block)
	if s.focused && ok && b.Type == sp.SceneHeading {
		s.ac.Schedule(s)
		return
	}
	s.ac.Dismiss()
}

// commitLocked journals the document after a successful mutation.
func (s *Session) commitLocked(op string) {
	if s.rec == nil {
		return
	}
	if err := s.rec.Record(s.doc); err != nil {
		applog.WithOperation(s.log, op).Warn("record revision failed", slog.Any("err", err))
	}
}
