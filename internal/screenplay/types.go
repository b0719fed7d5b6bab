/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package screenplay holds the screenplay document model: a flat, ordered sequence of typed blocks.
// Scenes, characters and locations are never stored here; they are derived by package extract.
package screenplay

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ElementType is the kind of a screenplay block.
type ElementType string

const (
	SceneHeading  ElementType = "scene-heading"
	Action        ElementType = "action"
	Character     ElementType = "character"
	Dialogue      ElementType = "dialogue"
	Parenthetical ElementType = "parenthetical"
	Transition    ElementType = "transition"
)

// ElementTypes lists every block kind in display order.
var ElementTypes = []ElementType{SceneHeading, Action, Character, Dialogue, Parenthetical, Transition}

var (
	ErrInvalidType     = errors.New("invalid element type")
	ErrIndexOutOfRange = errors.New("block index out of range")
)

// Valid reports whether t is one of the six element kinds.
func (t ElementType) Valid() bool {
	switch t {
	case SceneHeading, Action, Character, Dialogue, Parenthetical, Transition:
		return true
	}
	return false
}

func (t ElementType) String() string { return string(t) }

// ParseElementType accepts the canonical names plus a few loose spellings ("scene", "heading", "paren").
func ParseElementType(s string) (ElementType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "_", "-")
	switch v {
	case "scene", "heading", "slug", "sceneheading":
		return SceneHeading, nil
	case "paren":
		return Parenthetical, nil
	}
	t := ElementType(v)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Block is the atomic unit of a screenplay. Blocks carry no identity beyond their position.
// Bold holds rune-offset spans of bold text; it is the only inline formatting kept.
type Block struct {
	Type ElementType
	Text string
	Bold []Span
}

// NewBlock is shorthand for an unformatted block.
func NewBlock(t ElementType, text string) Block { return Block{Type: t, Text: text} }

// Clone returns a copy that shares no memory with b.
func (b Block) Clone() Block {
	out := Block{Type: b.Type, Text: b.Text}
	if len(b.Bold) > 0 {
		out.Bold = append([]Span(nil), b.Bold...)
	}
	return out
}

// IsBlank reports whether the block's trimmed text is empty.
func (b Block) IsBlank() bool { return strings.TrimSpace(b.Text) == "" }

// Len returns the text length in runes.
func (b Block) Len() int { return utf8.RuneCountInString(b.Text) }

// Equal compares type, text and normalized bold spans.
func (b Block) Equal(o Block) bool {
	if b.Type != o.Type || b.Text != o.Text {
		return false
	}
	x := NormalizeSpans(b.Bold, b.Len())
	y := NormalizeSpans(o.Bold, o.Len())
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func (b Block) validate() error {
	if !b.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(b.Type))
	}
	return nil
}

// Cursor addresses a caret position: a block index and a rune offset within that block's text.
type Cursor struct {
	Block  int
	Offset int
}
