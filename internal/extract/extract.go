/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package extract derives scenes, characters and locations from a screenplay document in a single
// forward pass. Results are a pure function of the block sequence and are never stored.
package extract

import (
	"sort"
	"strings"

	sp "goscreenwriter/internal/screenplay"
)

// Scene is a contiguous block range starting at a scene heading and ending before the next one.
type Scene struct {
	Ordinal int
	Heading string
	// Start and End delimit the scene as the half-open block range [Start, End).
	Start  int
	End    int
	Blocks []sp.Block
	// Parsed is only meaningful when HasLocation is true.
	Parsed      sp.Heading
	HasLocation bool
	// Characters holds the cues found in this scene, in order of first appearance.
	Characters []string
}

// Line is one attributed line of dialogue.
type Line struct {
	Text  string
	Block int
	Scene int
}

// Character aggregates every cue with the same normalized name.
type Character struct {
	Name        string
	Appearances int
	Scenes      []int
	Lines       []Line
	first       int
}

// Location aggregates the scenes whose headings name the same place.
type Location struct {
	Name       string
	Scenes     []int
	TimeOfDay  map[string]int
	Characters []string
}

// Times returns the time-of-day keys sorted alphabetically.
func (l Location) Times() []string {
	out := make([]string, 0, len(l.TimeOfDay))
	for k := range l.TimeOfDay {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Views is the full derived state of one document snapshot. It must be treated as read-only.
type Views struct {
	DocumentID string
	Version    uint64
	Scenes     []Scene
	Characters []Character
	Locations  []Location
}

// NormalizeName upper-cases a character name and collapses inner whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// Extract walks the document once. Blocks before the first heading belong to no scene.
// A dialogue block is attributed only when the block right before it is a character cue.
func Extract(d *sp.Document) Views {
	v := Views{}
	if d == nil {
		return v
	}
	v.DocumentID = d.ID
	v.Version = d.Version()

	chars := map[string]*Character{}
	locs := map[string]*Location{}
	locChars := map[string]map[string]struct{}{}
	var cur *Scene
	var sceneChars map[string]struct{}
	prevType := sp.ElementType("")
	prevCue := ""

	closeScene := func(end int) {
		if cur == nil {
			return
		}
		cur.End = end
		if cur.HasLocation {
			set := locChars[cur.Parsed.Location]
			for _, name := range cur.Characters {
				set[name] = struct{}{}
			}
		}
		v.Scenes = append(v.Scenes, *cur)
		cur = nil
	}

	d.Each(func(i int, b sp.Block) bool {
		switch b.Type {
		case sp.SceneHeading:
			closeScene(i)
			cur = &Scene{Ordinal: len(v.Scenes) + 1, Heading: strings.TrimSpace(b.Text), Start: i}
			sceneChars = map[string]struct{}{}
			if h, ok := sp.ParseHeading(b.Text); ok {
				cur.Parsed = h
				cur.HasLocation = true
				loc := locs[h.Location]
				if loc == nil {
					loc = &Location{Name: h.Location, TimeOfDay: map[string]int{}}
					locs[h.Location] = loc
					locChars[h.Location] = map[string]struct{}{}
				}
				loc.Scenes = append(loc.Scenes, cur.Ordinal)
				loc.TimeOfDay[h.Time]++
			}
		case sp.Character:
			name := NormalizeName(b.Text)
			if name == "" {
				break
			}
			c := chars[name]
			if c == nil {
				c = &Character{Name: name, first: i}
				chars[name] = c
			}
			if cur != nil {
				if _, seen := sceneChars[name]; !seen {
					sceneChars[name] = struct{}{}
					cur.Characters = append(cur.Characters, name)
					c.Scenes = append(c.Scenes, cur.Ordinal)
				}
			}
		case sp.Dialogue:
			if prevType == sp.Character && prevCue != "" {
				c := chars[prevCue]
				c.Appearances++
				ordinal := 0
				if cur != nil {
					ordinal = cur.Ordinal
				}
				c.Lines = append(c.Lines, Line{Text: b.Text, Block: i, Scene: ordinal})
			}
		}
		if cur != nil {
			cur.Blocks = append(cur.Blocks, b.Clone())
		}
		prevType = b.Type
		prevCue = ""
		if b.Type == sp.Character {
			prevCue = NormalizeName(b.Text)
		}
		return true
	})
	closeScene(d.Len())

	v.Characters = make([]Character, 0, len(chars))
	for _, c := range chars {
		v.Characters = append(v.Characters, *c)
	}
	// Most dialogue first; ties keep first-appearance order.
	sort.Slice(v.Characters, func(i, j int) bool {
		a, b := v.Characters[i], v.Characters[j]
		if a.Appearances != b.Appearances {
			return a.Appearances > b.Appearances
		}
		return a.first < b.first
	})

	v.Locations = make([]Location, 0, len(locs))
	for name, l := range locs {
		for c := range locChars[name] {
			l.Characters = append(l.Characters, c)
		}
		sort.Strings(l.Characters)
		v.Locations = append(v.Locations, *l)
	}
	sort.Slice(v.Locations, func(i, j int) bool { return v.Locations[i].Name < v.Locations[j].Name })
	return v
}

// Scene returns the scene with the given 1-based ordinal.
func (v Views) Scene(ordinal int) (Scene, bool) {
	if ordinal < 1 || ordinal > len(v.Scenes) {
		return Scene{}, false
	}
	return v.Scenes[ordinal-1], true
}

// SceneAt returns the scene containing block index i.
func (v Views) SceneAt(i int) (Scene, bool) {
	k := sort.Search(len(v.Scenes), func(n int) bool { return v.Scenes[n].End > i })
	if k < len(v.Scenes) && v.Scenes[k].Start <= i {
		return v.Scenes[k], true
	}
	return Scene{}, false
}

// Character looks a character up by name; the name is normalized first.
func (v Views) Character(name string) (Character, bool) {
	n := NormalizeName(name)
	for _, c := range v.Characters {
		if c.Name == n {
			return c, true
		}
	}
	return Character{}, false
}

// Location looks a location up by name (case-insensitive).
func (v Views) Location(name string) (Location, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, l := range v.Locations {
		if l.Name == n {
			return l, true
		}
	}
	return Location{}, false
}

// History is the set of previously used heading values that autocomplete draws on.
type History struct {
	Locations []string
	Times     []string
}

// History collects distinct locations and times of day, each sorted alphabetically.
func (v Views) History() History {
	h := History{Locations: make([]string, 0, len(v.Locations))}
	times := map[string]struct{}{}
	for _, l := range v.Locations {
		h.Locations = append(h.Locations, l.Name)
		for t := range l.TimeOfDay {
			times[t] = struct{}{}
		}
	}
	for t := range times {
		h.Times = append(h.Times, t)
	}
	sort.Strings(h.Times)
	return h
}
