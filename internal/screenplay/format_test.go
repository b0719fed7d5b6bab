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
	"reflect"
	"testing"
)

func TestNormalizeSpans(t *testing.T) {
	got := NormalizeSpans([]Span{{5, 8}, {0, 2}, {1, 3}, {8, 9}, {12, 20}, {4, 4}}, 14)
	want := []Span{{0, 3}, {5, 9}, {12, 14}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSpans = %v, want %v", got, want)
	}
	if NormalizeSpans([]Span{{3, 3}}, 10) != nil {
		t.Fatalf("expected nil for empty spans")
	}
}

func TestWithBoldOnOff(t *testing.T) {
	b := NewBlock(Action, "The door slams shut.")
	b = b.WithBold(4, 8, true)
	if !b.IsBold(4) || !b.IsBold(7) || b.IsBold(8) {
		t.Fatalf("unexpected bold coverage: %v", b.Bold)
	}
	b = b.WithBold(0, 20, true).WithBold(9, 14, false)
	want := []Span{{0, 9}, {14, 20}}
	if !reflect.DeepEqual(b.Bold, want) {
		t.Fatalf("bold after removal = %v, want %v", b.Bold, want)
	}
}

func TestInsertTextShiftsSpans(t *testing.T) {
	b := Block{Type: Action, Text: "aa BB cc", Bold: []Span{{3, 5}}}
	// Before the span: shifts it.
	got := b.InsertText(0, "xx")
	if got.Text != "xxaa BB cc" || !reflect.DeepEqual(got.Bold, []Span{{5, 7}}) {
		t.Fatalf("insert before: %q %v", got.Text, got.Bold)
	}
	// At the end of the span: extends it.
	got = b.InsertText(5, "B")
	if got.Text != "aa BBB cc" || !reflect.DeepEqual(got.Bold, []Span{{3, 6}}) {
		t.Fatalf("insert at end: %q %v", got.Text, got.Bold)
	}
	// At the start of the span: not bold.
	got = b.InsertText(3, "_")
	if !reflect.DeepEqual(got.Bold, []Span{{4, 6}}) {
		t.Fatalf("insert at start: %v", got.Bold)
	}
}

func TestSplitAtSplitsSpans(t *testing.T) {
	b := Block{Type: Dialogue, Text: "héllo wörld", Bold: []Span{{2, 8}}}
	head, tail := b.SplitAt(5)
	if head.Text != "héllo" || tail.Text != " wörld" {
		t.Fatalf("split text = %q | %q", head.Text, tail.Text)
	}
	if !reflect.DeepEqual(head.Bold, []Span{{2, 5}}) || !reflect.DeepEqual(tail.Bold, []Span{{0, 3}}) {
		t.Fatalf("split spans = %v | %v", head.Bold, tail.Bold)
	}
	if head.Type != Dialogue || tail.Type != Dialogue {
		t.Fatalf("split halves should keep the type")
	}
}
