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
	"regexp"
	"strings"
	"unicode"
)

// Scene headings follow "PREFIX LOCATION - TIME". Both "INT/EXT." and "INT./EXT." spellings of the
// combined prefixes are accepted; the longer alternatives are listed first so they win.
const prefixPattern = `INT\./EXT\.|EXT\./INT\.|INT/EXT\.|EXT/INT\.|INT\.|EXT\.`

var (
	headingPrefixRe = regexp.MustCompile(`(?i)^(` + prefixPattern + `)`)
	headingRe       = regexp.MustCompile(`(?i)^(` + prefixPattern + `)\s+(.+?)\s+-\s+(.+)$`)
)

// HeadingPrefixes are the canonical prefixes offered by autocomplete.
var HeadingPrefixes = []string{"INT.", "EXT.", "INT./EXT.", "EXT./INT."}

// Heading is a parsed scene heading. All parts are upper-cased and trimmed.
type Heading struct {
	Prefix   string
	Location string
	Time     string
}

// ParseHeading matches text against the heading pattern. A heading that does not match still opens
// a scene; it just has no location.
func ParseHeading(text string) (Heading, bool) {
	s := strings.ToUpper(strings.TrimSpace(text))
	m := headingRe.FindStringSubmatch(s)
	if m == nil {
		return Heading{}, false
	}
	return Heading{
		Prefix:   m[1],
		Location: strings.TrimSpace(m[2]),
		Time:     strings.TrimSpace(m[3]),
	}, true
}

// HasHeadingPrefix reports whether the trimmed text starts with a scene heading prefix.
func HasHeadingPrefix(text string) bool {
	return headingPrefixRe.MatchString(strings.TrimSpace(text))
}

// String renders the heading in canonical form.
func (h Heading) String() string {
	return h.Prefix + " " + h.Location + " - " + h.Time
}

// Segment identifies one of the three sub-fields of a scene heading.
type Segment int

const (
	SegmentPrefix Segment = iota
	SegmentLocation
	SegmentTime
)

func (s Segment) String() string {
	switch s {
	case SegmentPrefix:
		return "prefix"
	case SegmentLocation:
		return "location"
	case SegmentTime:
		return "time"
	}
	return "unknown"
}

// SegmentSpan is a half-open rune range.
type SegmentSpan struct {
	Start int
	End   int
}

// HeadingLayout locates the three sub-fields in raw (possibly half-typed) heading text.
// The prefix is the first whitespace-delimited token, the location runs up to the first " - "
// delimiter and the time is whatever follows it. Dash is -1 when no delimiter has been typed yet.
type HeadingLayout struct {
	Prefix   SegmentSpan
	Location SegmentSpan
	Time     SegmentSpan
	Dash     int
	n        int
}

// LayoutHeading computes the segment spans of text.
func LayoutHeading(text string) HeadingLayout {
	r := []rune(text)
	n := len(r)
	l := HeadingLayout{Dash: -1, n: n}
	i := 0
	for i < n && unicode.IsSpace(r[i]) {
		i++
	}
	l.Prefix.Start = i
	for i < n && !unicode.IsSpace(r[i]) {
		i++
	}
	l.Prefix.End = i
	for i < n && unicode.IsSpace(r[i]) {
		i++
	}
	locStart := i
	end := trimRightEnd(r, n)
	for k := locStart; k < n; k++ {
		if r[k] != '-' || k == 0 || !unicode.IsSpace(r[k-1]) {
			continue
		}
		if k+1 < n && !unicode.IsSpace(r[k+1]) {
			continue
		}
		l.Dash = k
		break
	}
	if l.Dash < 0 {
		l.Location = SegmentSpan{Start: locStart, End: max(locStart, end)}
		l.Time = SegmentSpan{Start: n, End: n}
		return l
	}
	l.Location = SegmentSpan{Start: locStart, End: max(locStart, trimRightEnd(r, l.Dash))}
	t := l.Dash + 1
	for t < n && unicode.IsSpace(r[t]) {
		t++
	}
	l.Time = SegmentSpan{Start: t, End: max(t, end)}
	return l
}

func trimRightEnd(r []rune, end int) int {
	for end > 0 && unicode.IsSpace(r[end-1]) {
		end--
	}
	return end
}

// SegmentAt returns the sub-field containing the rune offset.
func (l HeadingLayout) SegmentAt(offset int) Segment {
	if offset <= l.Prefix.End {
		return SegmentPrefix
	}
	if l.Dash < 0 || offset <= l.Dash {
		return SegmentLocation
	}
	return SegmentTime
}

// Span returns the span of seg.
func (l HeadingLayout) Span(seg Segment) SegmentSpan {
	switch seg {
	case SegmentPrefix:
		return l.Prefix
	case SegmentTime:
		return l.Time
	default:
		return l.Location
	}
}

// SegmentText returns the current text of seg within text.
func SegmentText(text string, seg Segment) string {
	l := LayoutHeading(text)
	sp := l.Span(seg)
	r := []rune(text)
	if sp.Start >= len(r) {
		return ""
	}
	return string(r[sp.Start:min(sp.End, len(r))])
}

// SpliceHeading replaces the sub-field seg of text with value and leaves the other two untouched.
// Missing separators are added ("INT." + location gains a space, a time gains " - "). It returns the
// new text and the rune offset just past the inserted value.
func SpliceHeading(text string, seg Segment, value string) (string, int) {
	r := []rune(text)
	l := LayoutHeading(text)
	v := []rune(value)
	var out []rune
	cursor := 0
	switch seg {
	case SegmentPrefix:
		out = append(out, r[:l.Prefix.Start]...)
		out = append(out, v...)
		cursor = len(out)
		rest := r[l.Prefix.End:]
		if len(rest) == 0 {
			out = append(out, ' ')
			cursor++
		} else if unicode.IsSpace(rest[0]) {
			cursor++
		}
		out = append(out, rest...)
	case SegmentLocation:
		if l.Location.Start == l.Prefix.End {
			out = append(out, r[:l.Prefix.End]...)
			out = append(out, ' ')
			out = append(out, v...)
			cursor = len(out)
			out = append(out, r[l.Prefix.End:]...)
			break
		}
		out = append(out, r[:l.Location.Start]...)
		out = append(out, v...)
		cursor = len(out)
		out = append(out, r[l.Location.End:]...)
	case SegmentTime:
		if l.Dash < 0 {
			out = append(out, r[:trimRightEnd(r, len(r))]...)
			out = append(out, []rune(" - ")...)
			out = append(out, v...)
			cursor = len(out)
			break
		}
		if l.Time.Start == l.Dash+1 {
			out = append(out, r[:l.Dash+1]...)
			out = append(out, ' ')
		} else {
			out = append(out, r[:l.Time.Start]...)
		}
		out = append(out, v...)
		cursor = len(out)
		out = append(out, r[l.Time.End:]...)
	default:
		return text, len(r)
	}
	return string(out), cursor
}
