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
	"context"
	"fmt"
	"log/slog"
	"strings"

	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/sceneops"
	sp "goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/transition"
)

// EditText replaces the whole text of block i and puts the caret at its end. An action block
// whose new text starts with a heading prefix becomes a scene heading.
func (s *Session) EditText(i int, text string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.doc.Block(i)
	if !ok {
		s.log.Debug("edit ignored: selection lost", slog.Int("block", i))
		return Result{Cursor: s.cursor}
	}
	promoted := transition.ShouldPromote(b.Type, text)
	b.Text = text
	if promoted {
		b.Type = sp.SceneHeading
	}
	if err := s.doc.SetBlock(i, b); err != nil {
		s.log.Warn("edit text failed", slog.Any("err", err))
		return Result{Cursor: s.cursor}
	}
	s.cursor = sp.Cursor{Block: i, Offset: b.Len()}
	s.focused = true
	s.commitLocked("edit")
	s.syncPopupLocked()
	return Result{Applied: true, Cursor: s.cursor, Promoted: promoted}
}

// InsertBlock inserts a block of type t at index i (0..Len) and moves the caret to its end.
func (s *Session) InsertBlock(i int, t sp.ElementType, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := sp.NewBlock(t, text)
	if err := s.doc.Insert(i, b); err != nil {
		return err
	}
	s.cursor = sp.Cursor{Block: i, Offset: b.Len()}
	s.focused = true
	s.commitLocked("insert-block")
	s.syncPopupLocked()
	return nil
}

// ToggleBold makes [start, end) of block i bold, or plain if it already is entirely bold.
func (s *Session) ToggleBold(i, start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.doc.Block(i)
	if !ok {
		return fmt.Errorf("toggle bold %d: %w", i, sp.ErrIndexOutOfRange)
	}
	start, end = max(start, 0), min(end, b.Len())
	if start >= end {
		return nil
	}
	on := false
	for k := start; k < end; k++ {
		if !b.IsBold(k) {
			on = true
			break
		}
	}
	if err := s.doc.SetBlock(i, b.WithBold(start, end, on)); err != nil {
		return err
	}
	s.commitLocked("bold")
	return nil
}

// Blur drops focus, dismisses the popup and removes every scene heading whose text is blank.
// It returns the indices of the removed blocks.
func (s *Session) Blur() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focused = false
	s.ac.Dismiss()

	blocks := s.doc.Blocks()
	kept := blocks[:0]
	var removed []int
	for i, b := range blocks {
		if b.Type == sp.SceneHeading && b.IsBlank() {
			removed = append(removed, i)
			continue
		}
		kept = append(kept, b)
	}
	if len(removed) == 0 {
		return nil
	}
	if err := s.doc.ReplaceAll(kept); err != nil {
		s.log.Warn("remove empty headings failed", slog.Any("err", err))
		return nil
	}
	shift := 0
	for _, r := range removed {
		if r < s.cursor.Block {
			shift++
		}
	}
	s.cursor = s.clampLocked(sp.Cursor{Block: s.cursor.Block - shift, Offset: 0})
	s.log.Debug("removed empty scene headings", slog.Int("count", len(removed)))
	s.commitLocked("blur")
	return removed
}

// ReorderScene moves scene from to ordinal to. Invalid ordinals return *sceneops.OrdinalError
// and leave the document unchanged. The caret follows the moved heading.
func (s *Session) ReorderScene(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := applog.WithOperation(s.log, "reorder")
	before := s.doc.Version()
	if err := sceneops.Reorder(s.doc, from, to); err != nil {
		l.Debug("reorder rejected", slog.Int("from", from), slog.Int("to", to), slog.Any("err", err))
		return err
	}
	if s.doc.Version() == before {
		return nil
	}
	if c, err := sceneops.Navigate(s.views.Views(s.doc), to); err == nil {
		s.cursor = c
	}
	s.ac.Dismiss()
	s.commitLocked("reorder")
	return nil
}

// DeleteScene removes the scene containing block i and returns the removed range.
func (s *Session) DeleteScene(i int) (sceneops.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := sceneops.DeleteScene(s.doc, i)
	return s.afterDeleteLocked(r, err)
}

// DeleteSceneOrdinal removes scene ordinal.
func (s *Session) DeleteSceneOrdinal(ordinal int) (sceneops.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := sceneops.DeleteSceneByOrdinal(s.doc, ordinal)
	return s.afterDeleteLocked(r, err)
}

func (s *Session) afterDeleteLocked(r sceneops.Range, err error) (sceneops.Range, error) {
	if err != nil {
		applog.WithOperation(s.log, "delete-scene").Debug("delete rejected", slog.Any("err", err))
		return sceneops.Range{}, err
	}
	s.cursor = s.clampLocked(sp.Cursor{Block: r.Start})
	s.ac.Dismiss()
	s.commitLocked("delete-scene")
	return r, nil
}

// NeedsConfirmation reports whether deleting the scene containing block i discards written text.
func (s *Session) NeedsConfirmation(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := sceneops.SceneRange(s.doc, i)
	if err != nil {
		return false
	}
	return sceneops.NeedsConfirmation(s.doc, r)
}

// Navigate moves the caret to the start of the heading of scene ordinal.
func (s *Session) Navigate(ordinal int) (sp.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := sceneops.Navigate(s.views.Views(s.doc), ordinal)
	if err != nil {
		return s.cursor, err
	}
	s.cursor = c
	s.focused = true
	s.syncPopupLocked()
	return c, nil
}

func (s *Session) clampLocked(c sp.Cursor) sp.Cursor {
	n := s.doc.Len()
	if n == 0 {
		return sp.Cursor{}
	}
	c.Block = min(max(c.Block, 0), n-1)
	b, _ := s.doc.Block(c.Block)
	c.Offset = min(max(c.Offset, 0), b.Len())
	return c
}

// RenameCharacter renames a character throughout the session's document and moves its entry in
// the host's profile table.
func RenameCharacter[P any](s *Session, profiles map[string]P, from, to string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := sceneops.RenameCharacter(s.doc, profiles, from, to)
	if err != nil || n == 0 {
		return n, err
	}
	s.commitLocked("rename-character")
	return n, nil
}

// RenameLocation renames a location in every scene heading that names it.
func RenameLocation[P any](s *Session, profiles map[string]P, from, to string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := sceneops.RenameLocation(s.doc, profiles, from, to)
	if err != nil || n == 0 {
		return n, err
	}
	s.cursor = s.clampLocked(s.cursor)
	s.commitLocked("rename-location")
	return n, nil
}

// Persistence is the host's storage collaborator. *storage.Store satisfies it.
type Persistence interface {
	Load(ctx context.Context, id string) (*sp.Document, error)
	Save(ctx context.Context, d *sp.Document) error
}

// Restore opens a session over the saved document id. A load failure is logged and yields an
// empty document that keeps id, so a later Persist writes to the same key.
func Restore(ctx context.Context, p Persistence, id string, opts ...Option) *Session {
	id = strings.TrimSpace(id)
	l := applog.WithDocument(applog.WithComponent("editor"), id)
	var d *sp.Document
	if p != nil && id != "" {
		loaded, err := p.Load(ctx, id)
		if err != nil {
			l.Warn("restore failed; starting empty", slog.Any("err", err))
		} else {
			d = loaded
		}
	}
	if d == nil {
		d = sp.MustDocument("")
		if id != "" {
			d.ID = id
		}
	}
	return NewSession(d, opts...)
}

// Persist saves a snapshot of the document. A failure is logged and reported as false; the
// in-memory document stays usable.
func (s *Session) Persist(ctx context.Context, p Persistence) bool {
	if p == nil {
		return false
	}
	snap := s.Document()
	if err := p.Save(ctx, snap); err != nil {
		applog.WithOperation(s.log, "persist").Warn("save skipped", slog.Any("err", err))
		return false
	}
	return true
}
