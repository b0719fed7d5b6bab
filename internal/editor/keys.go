/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package editor

import (
	"log/slog"
	"unicode/utf8"

	sp "goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/transition"
)

// Key is a discrete key intent from the host.
type Key int

const (
	KeyInsert Key = iota
	KeyEnter
	KeyTab
	KeyShiftTab
	KeyArrowUp
	KeyArrowDown
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyInsert:
		return "insert"
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	case KeyShiftTab:
		return "shift+tab"
	case KeyArrowUp:
		return "arrow-up"
	case KeyArrowDown:
		return "arrow-down"
	case KeyEscape:
		return "escape"
	}
	return "unknown"
}

// KeyEvent is a key intent tagged with the caret it was typed at. Text is only used by KeyInsert.
type KeyEvent struct {
	Key    Key
	Text   string
	Cursor sp.Cursor
}

// Result describes what a command did. Applied is false for no-ops, including a lost selection.
type Result struct {
	Applied bool
	Cursor  sp.Cursor
	// Promoted is set when typing turned an action block into a scene heading.
	Promoted bool
	// Completed is set when Enter committed an autocomplete candidate.
	Completed bool
}

// ApplyKey applies a key intent at ev.Cursor. A cursor that does not address the document is a
// lost selection: nothing changes and Applied is false.
func (s *Session) ApplyKey(ev KeyEvent) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.log.With(slog.String("key", ev.Key.String()))
	if !s.doc.Valid(ev.Cursor) {
		l.Debug("key ignored: selection lost", slog.Int("block", ev.Cursor.Block), slog.Int("offset", ev.Cursor.Offset))
		return Result{Cursor: s.cursor}
	}
	s.cursor = ev.Cursor
	s.focused = true
	if p := s.ac.State(); p.Visible && p.Block != s.cursor.Block {
		s.ac.Dismiss()
	}

	var res Result
	switch ev.Key {
	case KeyInsert:
		res = s.insertLocked(ev.Text)
	case KeyEnter:
		if s.ac.Visible() {
			res = s.acceptLocked()
			break
		}
		res = s.enterLocked()
	case KeyTab:
		res = s.retypeLocked(transition.Tab)
	case KeyShiftTab:
		res = s.retypeLocked(transition.ShiftTab)
	case KeyArrowUp, KeyArrowDown:
		delta := 1
		if ev.Key == KeyArrowUp {
			delta = -1
		}
		res = s.arrowLocked(delta)
	case KeyEscape:
		if s.ac.Visible() {
			s.ac.Dismiss()
			res = Result{Applied: true}
		}
	}
	res.Cursor = s.cursor
	if !res.Applied {
		l.Debug("key was a no-op")
	}
	return res
}

func (s *Session) insertLocked(text string) Result {
	if text == "" {
		return Result{}
	}
	i := s.cursor.Block
	b, _ := s.doc.Block(i)
	nb := b.InsertText(s.cursor.Offset, text)
	promoted := transition.ShouldPromote(b.Type, nb.Text)
	if promoted {
		nb.Type = sp.SceneHeading
	}
	if err := s.doc.SetBlock(i, nb); err != nil {
		s.log.Warn("insert text failed", slog.Any("err", err))
		return Result{}
	}
	s.cursor.Offset += utf8.RuneCountInString(text)
	s.commitLocked("insert")
	s.syncPopupLocked()
	return Result{Applied: true, Promoted: promoted}
}

// enterLocked splits the current block at the caret. The tail becomes the block Enter opens.
func (s *Session) enterLocked() Result {
	i := s.cursor.Block
	blocks := s.doc.Blocks()
	head, tail := blocks[i].SplitAt(s.cursor.Offset)
	tail.Type = transition.AfterEnter(blocks[i].Type)
	next := make([]sp.Block, 0, len(blocks)+1)
	next = append(next, blocks[:i]...)
	next = append(next, head, tail)
	next = append(next, blocks[i+1:]...)
	if err := s.doc.ReplaceAll(next); err != nil {
		s.log.Warn("split block failed", slog.Any("err", err))
		return Result{}
	}
	s.cursor = sp.Cursor{Block: i + 1}
	s.commitLocked("enter")
	s.syncPopupLocked()
	return Result{Applied: true}
}

func (s *Session) retypeLocked(intent transition.Intent) Result {
	i := s.cursor.Block
	b, _ := s.doc.Block(i)
	t, ok := transition.Next(b.Type, intent)
	if !ok || t == b.Type {
		return Result{}
	}
	if err := s.doc.Retype(i, t); err != nil {
		s.log.Warn("retype failed", slog.Any("err", err))
		return Result{}
	}
	s.commitLocked(intent.String())
	s.syncPopupLocked()
	return Result{Applied: true}
}

// arrowLocked moves the popup highlight when the popup is showing, otherwise the caret moves to
// the neighboring block.
func (s *Session) arrowLocked(delta int) Result {
	if s.ac.Visible() {
		s.ac.Move(delta)
		return Result{Applied: true}
	}
	j := s.cursor.Block + delta
	b, ok := s.doc.Block(j)
	if !ok {
		return Result{}
	}
	s.cursor = sp.Cursor{Block: j, Offset: min(s.cursor.Offset, b.Len())}
	s.syncPopupLocked()
	return Result{Applied: true}
}

// acceptLocked splices the highlighted candidate into its heading segment.
func (s *Session) acceptLocked() Result {
	c, ok := s.ac.Accept()
	if !ok {
		return s.enterLocked()
	}
	b, ok := s.doc.Block(c.Block)
	if !ok || b.Type != sp.SceneHeading {
		return Result{}
	}
	text, off := sp.SpliceHeading(b.Text, c.Segment, c.Value)
	if err := s.doc.SetText(c.Block, text); err != nil {
		s.log.Warn("apply completion failed", slog.Any("err", err))
		return Result{}
	}
	s.cursor = sp.Cursor{Block: c.Block, Offset: off}
	s.commitLocked("complete")
	return Result{Applied: true, Completed: true}
}
