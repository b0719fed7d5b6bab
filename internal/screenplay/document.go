/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"fmt"

	"github.com/google/uuid"
)

// Document is an ordered, flat sequence of blocks and the single source of truth for every derived view.
// Every successful mutation bumps Version, so derived views can be memoized on (pointer, version).
// A Document is not safe for concurrent use; callers serialize access (see package editor).
type Document struct {
	// ID is the stable external identifier used by persistence collaborators.
	ID    string
	Title string

	blocks  []Block
	version uint64
}

// NewDocument creates a document with a fresh identifier. Blocks with an invalid type are rejected.
func NewDocument(title string, blocks ...Block) (*Document, error) {
	d := &Document{ID: uuid.NewString(), Title: title}
	if err := d.ReplaceAll(blocks); err != nil {
		return nil, err
	}
	d.version = 0
	return d, nil
}

// MustDocument is NewDocument for literals known to be valid; it panics on invalid blocks.
func MustDocument(title string, blocks ...Block) *Document {
	d, err := NewDocument(title, blocks...)
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of blocks.
func (d *Document) Len() int { return len(d.blocks) }

// Version increases by one with every committed mutation.
func (d *Document) Version() uint64 { return d.version }

// Block returns a copy of the block at i.
func (d *Document) Block(i int) (Block, bool) {
	if i < 0 || i >= len(d.blocks) {
		return Block{}, false
	}
	return d.blocks[i].Clone(), true
}

// Blocks returns a deep copy of the block sequence.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.Clone()
	}
	return out
}

// Each calls fn for each block in order without copying; fn must not retain or modify b.Bold.
func (d *Document) Each(fn func(i int, b Block) bool) {
	for i, b := range d.blocks {
		if !fn(i, b) {
			return
		}
	}
}

// Insert places b at index i (0..Len) and shifts the following blocks down.
func (d *Document) Insert(i int, b Block) error {
	if i < 0 || i > len(d.blocks) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(d.blocks), ErrIndexOutOfRange)
	}
	if err := b.validate(); err != nil {
		return err
	}
	b = b.Clone()
	b.Bold = NormalizeSpans(b.Bold, b.Len())
	d.blocks = append(d.blocks, Block{})
	copy(d.blocks[i+1:], d.blocks[i:])
	d.blocks[i] = b
	d.version++
	return nil
}

// Remove deletes the block at i.
func (d *Document) Remove(i int) error {
	return d.RemoveRange(i, i+1)
}

// RemoveRange deletes blocks in [start, end).
func (d *Document) RemoveRange(start, end int) error {
	if start < 0 || end > len(d.blocks) || start >= end {
		return fmt.Errorf("remove [%d,%d) of %d: %w", start, end, len(d.blocks), ErrIndexOutOfRange)
	}
	d.blocks = append(d.blocks[:start], d.blocks[end:]...)
	d.version++
	return nil
}

// Retype changes the element type of block i in place. Text and formatting are kept.
func (d *Document) Retype(i int, t ElementType) error {
	if i < 0 || i >= len(d.blocks) {
		return fmt.Errorf("retype %d of %d: %w", i, len(d.blocks), ErrIndexOutOfRange)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
	if d.blocks[i].Type == t {
		return nil
	}
	d.blocks[i].Type = t
	d.version++
	return nil
}

// SetText replaces the text of block i; bold spans are clipped to the new length.
func (d *Document) SetText(i int, text string) error {
	if i < 0 || i >= len(d.blocks) {
		return fmt.Errorf("set text %d of %d: %w", i, len(d.blocks), ErrIndexOutOfRange)
	}
	b := d.blocks[i]
	if b.Text == text {
		return nil
	}
	b.Text = text
	b.Bold = NormalizeSpans(b.Bold, b.Len())
	d.blocks[i] = b
	d.version++
	return nil
}

// SetBlock replaces block i wholesale.
func (d *Document) SetBlock(i int, b Block) error {
	if i < 0 || i >= len(d.blocks) {
		return fmt.Errorf("set block %d of %d: %w", i, len(d.blocks), ErrIndexOutOfRange)
	}
	if err := b.validate(); err != nil {
		return err
	}
	b = b.Clone()
	b.Bold = NormalizeSpans(b.Bold, b.Len())
	d.blocks[i] = b
	d.version++
	return nil
}

// ReplaceAll swaps the whole block sequence in one step. Every block is validated before anything
// changes, so a rejected call leaves the document untouched.
func (d *Document) ReplaceAll(blocks []Block) error {
	next := make([]Block, len(blocks))
	for i, b := range blocks {
		if err := b.validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		nb := b.Clone()
		nb.Bold = NormalizeSpans(nb.Bold, nb.Len())
		next[i] = nb
	}
	d.blocks = next
	d.version++
	return nil
}

// Clone returns an independent copy with the same ID, title and version.
func (d *Document) Clone() *Document {
	return &Document{ID: d.ID, Title: d.Title, blocks: d.Blocks(), version: d.version}
}

// Equal reports whether both documents hold the same block sequence.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if len(d.blocks) != len(o.blocks) {
		return false
	}
	for i := range d.blocks {
		if !d.blocks[i].Equal(o.blocks[i]) {
			return false
		}
	}
	return true
}

// Valid reports whether c addresses an existing block and an offset inside its text.
func (d *Document) Valid(c Cursor) bool {
	if c.Block < 0 || c.Block >= len(d.blocks) {
		return false
	}
	return c.Offset >= 0 && c.Offset <= d.blocks[c.Block].Len()
}
