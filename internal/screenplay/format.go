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

import "sort"

// Span is a half-open [Start, End) range of rune offsets within a block's text.
type Span struct {
	Start int
	End   int
}

// NormalizeSpans clips spans to [0, n], drops empty ones, sorts them and merges overlapping or
// touching spans. The result is nil when nothing remains.
func NormalizeSpans(spans []Span, n int) []Span {
	if len(spans) == 0 {
		return nil
	}
	tmp := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End > n {
			s.End = n
		}
		if s.Start >= s.End {
			continue
		}
		tmp = append(tmp, s)
	}
	if len(tmp) == 0 {
		return nil
	}
	sort.Slice(tmp, func(i, j int) bool { return tmp[i].Start < tmp[j].Start })
	out := tmp[:1]
	for _, s := range tmp[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// IsBold reports whether the rune at offset is bold.
func (b Block) IsBold(offset int) bool {
	for _, s := range b.Bold {
		if offset >= s.Start && offset < s.End {
			return true
		}
	}
	return false
}

// WithBold returns a copy of b with [start, end) set to bold (on) or plain (off).
func (b Block) WithBold(start, end int, on bool) Block {
	out := b.Clone()
	n := out.Len()
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		out.Bold = NormalizeSpans(out.Bold, n)
		return out
	}
	if on {
		out.Bold = NormalizeSpans(append(out.Bold, Span{Start: start, End: end}), n)
		return out
	}
	var kept []Span
	for _, s := range out.Bold {
		if s.End <= start || s.Start >= end {
			kept = append(kept, s)
			continue
		}
		if s.Start < start {
			kept = append(kept, Span{Start: s.Start, End: start})
		}
		if s.End > end {
			kept = append(kept, Span{Start: end, End: s.End})
		}
	}
	out.Bold = NormalizeSpans(kept, n)
	return out
}

// InsertText inserts s at rune offset and shifts bold spans. Text typed inside or at the end of a
// bold span continues that span; text typed at its start does not.
func (b Block) InsertText(offset int, s string) Block {
	r := []rune(b.Text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(r) {
		offset = len(r)
	}
	ins := []rune(s)
	k := len(ins)
	out := Block{Type: b.Type}
	nr := make([]rune, 0, len(r)+k)
	nr = append(nr, r[:offset]...)
	nr = append(nr, ins...)
	nr = append(nr, r[offset:]...)
	out.Text = string(nr)
	for _, sp := range b.Bold {
		switch {
		case sp.Start >= offset:
			sp.Start += k
			sp.End += k
		case sp.End >= offset:
			sp.End += k
		}
		out.Bold = append(out.Bold, sp)
	}
	out.Bold = NormalizeSpans(out.Bold, len(nr))
	return out
}

// SplitAt cuts b at rune offset. Both halves keep b's type; callers retype the tail as needed.
func (b Block) SplitAt(offset int) (Block, Block) {
	r := []rune(b.Text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(r) {
		offset = len(r)
	}
	head := Block{Type: b.Type, Text: string(r[:offset])}
	tail := Block{Type: b.Type, Text: string(r[offset:])}
	for _, sp := range b.Bold {
		if sp.Start < offset {
			head.Bold = append(head.Bold, Span{Start: sp.Start, End: min(sp.End, offset)})
		}
		if sp.End > offset {
			tail.Bold = append(tail.Bold, Span{Start: max(sp.Start, offset) - offset, End: sp.End - offset})
		}
	}
	head.Bold = NormalizeSpans(head.Bold, offset)
	tail.Bold = NormalizeSpans(tail.Bold, len(r)-offset)
	return head, tail
}
