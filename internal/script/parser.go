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

import (
	"bufio"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	sp "goscreenwriter/internal/screenplay"
)

// maxCueLen bounds the length of a line that may be read as a character cue.
const maxCueLen = 38

var (
	reTransition = regexp.MustCompile(`^[A-Z0-9 .,'\-]+(TO:|IN:|OUT\.)$`)
	reParen      = regexp.MustCompile(`^\(.*\)$`)
)

// Parse classifies plain screenplay text line by line.
// Rules:
//   - Lines starting with a heading prefix (INT., EXT., INT./EXT., EXT./INT.) are scene headings.
//   - Lines starting with ">" or upper-case lines ending in "TO:", "IN:" or "OUT." are transitions.
//   - A short upper-case line followed by a non-blank line is a character cue.
//   - Lines wrapped in parentheses after a cue or dialogue are parentheticals.
//   - Lines after a cue or parenthetical are dialogue; further lines continue that dialogue.
//   - Everything else is action. Blank lines end the current dialogue run.
func Parse(input string) ([]Line, []Error) {
	var errs []Error
	var raw []string
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw = append(raw, strings.TrimRight(scanner.Text(), "\r\n"))
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: len(raw) + 1, Column: 1, Message: err.Error()})
	}

	var out []Line
	var last sp.ElementType // zero value: no context
	for i, line := range raw {
		lineNo := i + 1
		trim := strings.TrimSpace(line)
		if trim == "" {
			last = ""
			continue
		}
		col := strings.Index(line, trim) + 1
		inDialogue := last == sp.Character || last == sp.Parenthetical || last == sp.Dialogue

		switch {
		case sp.HasHeadingPrefix(trim):
			out = append(out, Line{Type: sp.SceneHeading, Text: strings.ToUpper(trim), LineNo: lineNo})
		case strings.HasPrefix(trim, ">"):
			out = append(out, Line{Type: sp.Transition, Text: strings.TrimSpace(strings.TrimPrefix(trim, ">")), LineNo: lineNo})
		case reTransition.MatchString(trim):
			out = append(out, Line{Type: sp.Transition, Text: trim, LineNo: lineNo})
		case inDialogue && strings.HasPrefix(trim, "("):
			if !reParen.MatchString(trim) {
				errs = append(errs, Error{Line: lineNo, Column: col, Message: "unclosed parenthetical"})
			}
			out = append(out, Line{Type: sp.Parenthetical, Text: trim, LineNo: lineNo})
		case last == sp.Dialogue:
			prev := &out[len(out)-1]
			prev.Text += " " + trim
			continue
		case inDialogue:
			out = append(out, Line{Type: sp.Dialogue, Text: trim, LineNo: lineNo})
		case isCue(trim) && nextNonBlank(raw, i):
			out = append(out, Line{Type: sp.Character, Text: trim, LineNo: lineNo})
		default:
			if reParen.MatchString(trim) {
				errs = append(errs, Error{Line: lineNo, Column: col, Message: "parenthetical outside dialogue; imported as action"})
			}
			out = append(out, Line{Type: sp.Action, Text: trim, LineNo: lineNo})
		}
		last = out[len(out)-1].Type
	}
	return out, errs
}

// Import parses input into a new Document titled title.
func Import(title, input string) (*sp.Document, []Error) {
	lines, errs := Parse(input)
	blocks := make([]sp.Block, 0, len(lines))
	for _, l := range lines {
		blocks = append(blocks, sp.NewBlock(l.Type, l.Text))
	}
	// every Line carries a valid type, so NewDocument cannot fail here
	return sp.MustDocument(title, blocks...), errs
}

func isCue(s string) bool {
	if utf8.RuneCountInString(s) > maxCueLen {
		return false
	}
	letter := false
	paren := strings.IndexRune(s, '(')
	for i, r := range s {
		// lower case is allowed inside extensions such as (cont'd)
		if unicode.IsLower(r) && (paren < 0 || i < paren) {
			return false
		}
		if unicode.IsLetter(r) {
			letter = true
		}
	}
	return letter && !strings.HasSuffix(s, ":")
}

func nextNonBlank(raw []string, i int) bool {
	return i+1 < len(raw) && strings.TrimSpace(raw[i+1]) != ""
}
