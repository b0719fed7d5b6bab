/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package autocomplete

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goscreenwriter/internal/extract"
	sp "goscreenwriter/internal/screenplay"
)

type fakeSource struct {
	mu      sync.Mutex
	block   int
	text    string
	offset  int
	heading bool
	hist    extract.History
}

func (f *fakeSource) HeadingAt() (int, string, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.block, f.text, f.offset, f.heading
}

func (f *fakeSource) History() extract.History { return f.hist }

func (f *fakeSource) set(text string, offset int) {
	f.mu.Lock()
	f.text, f.offset = text, offset
	f.mu.Unlock()
}

func history() extract.History {
	return extract.History{
		Locations: []string{"BEACH", "COFFEE SHOP", "COURTHOUSE", "PARK"},
		Times:     []string{"DAY", "DUSK"},
	}
}

func TestCandidates_Location(t *testing.T) {
	assert.Equal(t, []string{"COFFEE SHOP", "COURTHOUSE"}, Candidates(history(), sp.SegmentLocation, "co"))
	assert.Equal(t, []string{"COURTHOUSE"}, Candidates(history(), sp.SegmentLocation, "house"))
	assert.Equal(t, history().Locations, Candidates(history(), sp.SegmentLocation, ""))
	assert.Empty(t, Candidates(history(), sp.SegmentLocation, "park"), "exact match has nothing to complete")
}

func TestCandidates_PrefixAndTime(t *testing.T) {
	assert.Equal(t, []string{"EXT.", "EXT./INT.", "INT./EXT."}, Candidates(history(), sp.SegmentPrefix, "ext"))
	got := Candidates(history(), sp.SegmentTime, "")
	assert.Equal(t, []string{"CONTINUOUS", "DAY", "DUSK", "EVENING", "LATER", "MORNING", "NIGHT"}, got)
	assert.Equal(t, []string{"CONTINUOUS", "DUSK"}, Candidates(history(), sp.SegmentTime, "us"))
}

func TestRefresh_OutsideHeadingHidesPopup(t *testing.T) {
	e := New(time.Hour, 0)
	src := &fakeSource{text: "INT. CO", offset: 7, hist: history()}
	p := e.Refresh(src)
	assert.False(t, p.Visible)
}

func TestRefresh_AnchorsOnSegment(t *testing.T) {
	e := New(time.Hour, 0)
	src := &fakeSource{block: 3, text: "INT. CO", offset: 7, heading: true, hist: history()}
	p := e.Refresh(src)
	require.True(t, p.Visible)
	assert.Equal(t, sp.SegmentLocation, p.Segment)
	assert.Equal(t, "CO", p.Query)
	assert.Equal(t, sp.Cursor{Block: 3, Offset: 5}, p.Anchor)
	assert.Equal(t, []string{"COFFEE SHOP", "COURTHOUSE"}, p.Candidates)
}

func TestRefresh_Limit(t *testing.T) {
	e := New(time.Hour, 2)
	src := &fakeSource{text: "INT. ", offset: 5, heading: true, hist: history()}
	p := e.Refresh(src)
	assert.Equal(t, []string{"BEACH", "COFFEE SHOP"}, p.Candidates)
}

func TestMove_WrapsAround(t *testing.T) {
	e := New(time.Hour, 0)
	src := &fakeSource{text: "INT. ", offset: 5, heading: true, hist: history()}
	e.Refresh(src)
	assert.Equal(t, 3, e.Move(-1).Highlight)
	assert.Equal(t, 0, e.Move(1).Highlight)
	assert.Equal(t, 2, e.Move(6).Highlight)
}

func TestRefresh_KeepsHighlightedCandidate(t *testing.T) {
	e := New(time.Hour, 0)
	src := &fakeSource{text: "INT. C", offset: 6, heading: true, hist: history()}
	e.Refresh(src)
	e.Move(2)
	src.set("INT. CO", 7)
	p := e.Refresh(src)
	v, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "COURTHOUSE", v)
}

func TestAccept(t *testing.T) {
	e := New(time.Hour, 0)
	src := &fakeSource{block: 1, text: "INT. CO - NIGHT", offset: 7, heading: true, hist: history()}
	e.Refresh(src)
	e.Move(1)
	c, ok := e.Accept()
	require.True(t, ok)
	assert.Equal(t, Completion{Block: 1, Segment: sp.SegmentLocation, Value: "COURTHOUSE"}, c)
	assert.False(t, e.Visible())
	_, ok = e.Accept()
	assert.False(t, ok, "nothing left to accept")

	text, _ := sp.SpliceHeading(src.text, c.Segment, c.Value)
	assert.Equal(t, "INT. COURTHOUSE - NIGHT", text)
}

func TestSchedule_Debounced(t *testing.T) {
	got := make(chan Popup, 4)
	e := New(15*time.Millisecond, 0, WithNotify(func(p Popup) { got <- p }))
	src := &fakeSource{text: "INT. ", offset: 5, heading: true, hist: history()}
	e.Schedule(src)
	src.set("INT. B", 6)
	e.Schedule(src)
	select {
	case p := <-got:
		assert.Equal(t, []string{"BEACH"}, p.Candidates)
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced refresh never fired")
	}
	assert.True(t, e.Visible())
	assert.Len(t, got, 0)
}

func TestDismiss_CancelsPending(t *testing.T) {
	notified := make(chan struct{}, 1)
	e := New(10*time.Millisecond, 0, WithNotify(func(Popup) { notified <- struct{}{} }))
	src := &fakeSource{text: "INT. ", offset: 5, heading: true, hist: history()}
	e.Schedule(src)
	e.Dismiss()
	assert.False(t, e.Pending())
	time.Sleep(40 * time.Millisecond)
	assert.False(t, e.Visible())
	assert.Len(t, notified, 0)
}

func TestFlush(t *testing.T) {
	e := New(time.Hour, 0)
	src := &fakeSource{text: "EXT. PARK - ", offset: 12, heading: true, hist: history()}
	e.Schedule(src)
	require.True(t, e.Flush())
	p := e.State()
	require.True(t, p.Visible)
	assert.Equal(t, sp.SegmentTime, p.Segment)
}
