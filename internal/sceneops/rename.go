/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package sceneops

import (
	"strings"

	"goscreenwriter/internal/extract"
	sp "goscreenwriter/internal/screenplay"
)

// RenameCharacter rewrites every character cue matching from and moves the profile entry, if
// the caller passes a profile table. It returns the number of rewritten blocks.
func RenameCharacter[P any](d *sp.Document, profiles map[string]P, from, to string) (int, error) {
	oldName, newName := extract.NormalizeName(from), extract.NormalizeName(to)
	if oldName == "" || newName == "" {
		return 0, ErrEmptyName
	}
	if oldName == newName {
		return 0, nil
	}
	blocks := d.Blocks()
	changed := 0
	for i, b := range blocks {
		if b.Type == sp.Character && extract.NormalizeName(b.Text) == oldName {
			blocks[i] = retext(b, newName)
			changed++
		}
	}
	if err := moveProfile(profiles, oldName, newName); err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, d.ReplaceAll(blocks)
}

// RenameLocation rewrites the location segment of every heading that names from. Prefix and time
// are kept as typed.
func RenameLocation[P any](d *sp.Document, profiles map[string]P, from, to string) (int, error) {
	oldName := strings.ToUpper(strings.TrimSpace(from))
	newName := strings.ToUpper(strings.TrimSpace(to))
	if oldName == "" || newName == "" {
		return 0, ErrEmptyName
	}
	if oldName == newName {
		return 0, nil
	}
	blocks := d.Blocks()
	changed := 0
	for i, b := range blocks {
		if b.Type != sp.SceneHeading {
			continue
		}
		h, ok := sp.ParseHeading(b.Text)
		if !ok || h.Location != oldName {
			continue
		}
		text, _ := sp.SpliceHeading(b.Text, sp.SegmentLocation, newName)
		blocks[i] = retext(b, text)
		changed++
	}
	if err := moveProfile(profiles, oldName, newName); err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, d.ReplaceAll(blocks)
}

func retext(b sp.Block, text string) sp.Block {
	b.Text = text
	b.Bold = sp.NormalizeSpans(b.Bold, b.Len())
	return b
}

// moveProfile checks for a clash before touching the table so a failed rename changes nothing.
func moveProfile[P any](profiles map[string]P, from, to string) error {
	if profiles == nil {
		return nil
	}
	p, ok := profiles[from]
	if !ok {
		return nil
	}
	if _, clash := profiles[to]; clash {
		return ErrProfileExists
	}
	delete(profiles, from)
	profiles[to] = p
	return nil
}
