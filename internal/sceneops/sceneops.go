/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package sceneops implements whole-scene edits: reorder, delete, navigate and rename propagation.
// Every mutating operation either applies completely or leaves the document untouched.
package sceneops

import (
	"errors"
	"fmt"

	"goscreenwriter/internal/extract"
	sp "goscreenwriter/internal/screenplay"
)

var (
	ErrNoScene       = errors.New("block does not belong to a scene")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrProfileExists = errors.New("a profile for the new name already exists")
)

// OrdinalError reports a scene ordinal outside 1..Count.
type OrdinalError struct {
	Op      string
	Ordinal int
	Count   int
}

func (e *OrdinalError) Error() string {
	return fmt.Sprintf("%s: scene %d out of range (document has %d scenes)", e.Op, e.Ordinal, e.Count)
}

// Range is a half-open block range.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// PlanReorder returns the block sequence with scene from moved so that it ends up at ordinal to.
// Blocks before the first heading stay in front. The input slice is not modified.
func PlanReorder(blocks []sp.Block, scenes []extract.Scene, from, to int) ([]sp.Block, error) {
	n := len(scenes)
	if from < 1 || from > n {
		return nil, &OrdinalError{Op: "reorder", Ordinal: from, Count: n}
	}
	if to < 1 || to > n {
		return nil, &OrdinalError{Op: "reorder", Ordinal: to, Count: n}
	}
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != from-1 {
			order = append(order, i)
		}
	}
	// insert index is expressed in the list after removal
	order = append(order[:to-1], append([]int{from - 1}, order[to-1:]...)...)

	out := make([]sp.Block, 0, len(blocks))
	if n > 0 {
		out = append(out, blocks[:scenes[0].Start]...)
	}
	for _, k := range order {
		out = append(out, blocks[scenes[k].Start:scenes[k].End]...)
	}
	if len(out) != len(blocks) {
		return nil, fmt.Errorf("reorder: planned %d blocks, document has %d", len(out), len(blocks))
	}
	return out, nil
}

// Reorder moves scene from to ordinal to. from == to leaves the document untouched.
func Reorder(d *sp.Document, from, to int) error {
	v := extract.Extract(d)
	if from == to {
		if _, ok := v.Scene(from); !ok {
			return &OrdinalError{Op: "reorder", Ordinal: from, Count: len(v.Scenes)}
		}
		return nil
	}
	planned, err := PlanReorder(d.Blocks(), v.Scenes, from, to)
	if err != nil {
		return err
	}
	return d.ReplaceAll(planned)
}

// SceneRange returns the block range of the scene containing block i.
func SceneRange(d *sp.Document, i int) (Range, error) {
	if i < 0 || i >= d.Len() {
		return Range{}, fmt.Errorf("block %d: %w", i, sp.ErrIndexOutOfRange)
	}
	s, ok := extract.Extract(d).SceneAt(i)
	if !ok {
		return Range{}, fmt.Errorf("block %d: %w", i, ErrNoScene)
	}
	return Range{Start: s.Start, End: s.End}, nil
}

// DeleteScene removes the whole scene containing block i, heading included.
func DeleteScene(d *sp.Document, i int) (Range, error) {
	r, err := SceneRange(d, i)
	if err != nil {
		return Range{}, err
	}
	return r, d.RemoveRange(r.Start, r.End)
}

// DeleteSceneByOrdinal removes scene ordinal.
func DeleteSceneByOrdinal(d *sp.Document, ordinal int) (Range, error) {
	v := extract.Extract(d)
	s, ok := v.Scene(ordinal)
	if !ok {
		return Range{}, &OrdinalError{Op: "delete", Ordinal: ordinal, Count: len(v.Scenes)}
	}
	r := Range{Start: s.Start, End: s.End}
	return r, d.RemoveRange(r.Start, r.End)
}

// NeedsConfirmation reports whether deleting the range would discard any written text.
func NeedsConfirmation(d *sp.Document, r Range) bool {
	needs := false
	d.Each(func(i int, b sp.Block) bool {
		if i >= r.End {
			return false
		}
		if i >= r.Start && !b.IsBlank() {
			needs = true
			return false
		}
		return true
	})
	return needs
}

// Navigate returns the cursor at the start of the heading of scene ordinal.
func Navigate(v extract.Views, ordinal int) (sp.Cursor, error) {
	s, ok := v.Scene(ordinal)
	if !ok {
		return sp.Cursor{}, &OrdinalError{Op: "navigate", Ordinal: ordinal, Count: len(v.Scenes)}
	}
	return sp.Cursor{Block: s.Start, Offset: 0}, nil
}
