/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package script

import sp "goscreenwriter/internal/screenplay"

// Line is one classified logical line of a plain-text screenplay. Dialogue continuation
// lines are folded into the preceding dialogue Line.
type Line struct {
	Type   sp.ElementType
	Text   string
	LineNo int // 1-based starting line number in the source
}

// Error represents an import diagnostic with position context. Diagnostics never stop an import;
// the offending line is still classified.
type Error struct {
	Line    int
	Column  int
	Message string
}
