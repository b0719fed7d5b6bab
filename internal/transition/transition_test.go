/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package transition

import (
	"testing"

	sp "goscreenwriter/internal/screenplay"
)

func TestEnterTable(t *testing.T) {
	want := map[sp.ElementType]sp.ElementType{
		sp.SceneHeading:  sp.Action,
		sp.Action:        sp.Action,
		sp.Character:     sp.Dialogue,
		sp.Dialogue:      sp.Action,
		sp.Parenthetical: sp.Dialogue,
		sp.Transition:    sp.Action,
	}
	for from, to := range want {
		got, ok := Next(from, Enter)
		if !ok || got != to {
			t.Fatalf("Enter from %s = %s, %v; want %s", from, got, ok, to)
		}
	}
}

func TestTabCyclesFromAction(t *testing.T) {
	cur := sp.Action
	seen := []sp.ElementType{cur}
	for i := 0; i < 4; i++ {
		next, ok := Next(cur, Tab)
		if !ok {
			t.Fatalf("Tab from %s was a no-op", cur)
		}
		cur = next
		seen = append(seen, cur)
	}
	want := []sp.ElementType{sp.Action, sp.Character, sp.Dialogue, sp.Transition, sp.Action}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Tab cycle = %v, want %v", seen, want)
		}
	}
	if got, _ := Forward(sp.Parenthetical); got != sp.Transition {
		t.Fatalf("Tab from parenthetical = %s, want transition", got)
	}
}

func TestShiftTab(t *testing.T) {
	cases := []struct {
		from sp.ElementType
		to   sp.ElementType
		ok   bool
	}{
		{sp.Action, sp.SceneHeading, true},
		{sp.Character, sp.Action, true},
		{sp.Dialogue, sp.Character, true},
		{sp.Transition, sp.Dialogue, true},
		{sp.Parenthetical, sp.Dialogue, true},
		{sp.SceneHeading, "", false},
	}
	for _, c := range cases {
		got, ok := Next(c.from, ShiftTab)
		if ok != c.ok || (ok && got != c.to) {
			t.Fatalf("Shift+Tab from %s = %s, %v; want %s, %v", c.from, got, ok, c.to, c.ok)
		}
	}
}

func TestShiftTabFromActionIgnoresHistory(t *testing.T) {
	// Reach action through different paths; Shift+Tab must still land on scene-heading.
	paths := [][]Intent{{}, {Tab, Tab, Tab, Tab}, {ShiftTab, Tab}}
	for _, p := range paths {
		cur := sp.Action
		for _, in := range p {
			if n, ok := Next(cur, in); ok {
				cur = n
			}
		}
		if cur != sp.Action {
			t.Fatalf("path %v did not end at action: %s", p, cur)
		}
		if got, _ := Next(cur, ShiftTab); got != sp.SceneHeading {
			t.Fatalf("Shift+Tab after %v = %s", p, got)
		}
	}
}

func TestNextRejectsUnknownType(t *testing.T) {
	if _, ok := Next("shot", Enter); ok {
		t.Fatalf("expected unknown type to be a no-op")
	}
}

func TestShouldPromote(t *testing.T) {
	if !ShouldPromote(sp.Action, "int.") || !ShouldPromote(sp.Action, " EXT. BEACH") {
		t.Fatalf("expected promotion for heading prefixes")
	}
	if ShouldPromote(sp.Dialogue, "INT.") {
		t.Fatalf("only action blocks are promoted")
	}
	if ShouldPromote(sp.Action, "INT") {
		t.Fatalf("prefix without the period must not promote")
	}
}
