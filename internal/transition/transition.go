/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package transition is the element-type state machine that decides how the writer moves between
// screenplay constructs. It is pure: it never touches a document.
package transition

import sp "goscreenwriter/internal/screenplay"

// Intent is a structural key gesture.
type Intent int

const (
	// Enter commits the current block and opens a new one after it.
	Enter Intent = iota
	// Tab retypes the current block forward.
	Tab
	// ShiftTab retypes the current block backward.
	ShiftTab
)

func (i Intent) String() string {
	switch i {
	case Enter:
		return "enter"
	case Tab:
		return "tab"
	case ShiftTab:
		return "shift+tab"
	}
	return "unknown"
}

var afterEnter = map[sp.ElementType]sp.ElementType{
	sp.SceneHeading:  sp.Action,
	sp.Action:        sp.Action,
	sp.Character:     sp.Dialogue,
	sp.Dialogue:      sp.Action,
	sp.Parenthetical: sp.Dialogue,
	sp.Transition:    sp.Action,
}

// Tab cycles action -> character -> dialogue -> transition -> action. A scene heading steps down
// to action, the inverse of Shift+Tab from action.
var forward = map[sp.ElementType]sp.ElementType{
	sp.SceneHeading:  sp.Action,
	sp.Action:        sp.Character,
	sp.Character:     sp.Dialogue,
	sp.Dialogue:      sp.Transition,
	sp.Transition:    sp.Action,
	sp.Parenthetical: sp.Transition,
}

// Scene heading is terminal in the backward direction.
var backward = map[sp.ElementType]sp.ElementType{
	sp.Action:        sp.SceneHeading,
	sp.Character:     sp.Action,
	sp.Dialogue:      sp.Character,
	sp.Transition:    sp.Dialogue,
	sp.Parenthetical: sp.Dialogue,
}

// AfterEnter returns the type of the block opened by Enter from a block of type t.
// Unknown types fall back to action.
func AfterEnter(t sp.ElementType) sp.ElementType {
	if n, ok := afterEnter[t]; ok {
		return n
	}
	return sp.Action
}

// Forward returns the Tab retype target; ok is false when Tab does nothing.
func Forward(t sp.ElementType) (sp.ElementType, bool) {
	n, ok := forward[t]
	return n, ok
}

// Backward returns the Shift+Tab retype target; ok is false when Shift+Tab does nothing.
func Backward(t sp.ElementType) (sp.ElementType, bool) {
	n, ok := backward[t]
	return n, ok
}

// Next applies intent to t. For Enter it reports the type of the new block; for Tab and Shift+Tab
// it reports the new type of the current block. ok is false for no-ops.
func Next(t sp.ElementType, intent Intent) (sp.ElementType, bool) {
	if !t.Valid() {
		return t, false
	}
	switch intent {
	case Enter:
		return AfterEnter(t), true
	case Tab:
		return Forward(t)
	case ShiftTab:
		return Backward(t)
	}
	return t, false
}

// ShouldPromote reports whether an action block whose text became text should turn into a scene
// heading: its trimmed text starts with INT., EXT., INT/EXT. or EXT/INT. (any case).
func ShouldPromote(t sp.ElementType, text string) bool {
	return t == sp.Action && sp.HasHeadingPrefix(text)
}
