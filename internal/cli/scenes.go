/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"goscreenwriter/internal/editor"
	sp "goscreenwriter/internal/screenplay"
)

func atoiArgs(args ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", a)
		}
		out[i] = n
	}
	return out, nil
}

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <doc-id> <from> <to>",
		Short: "Move scene <from> so that it becomes scene <to>",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := atoiArgs(args[1], args[2])
			if err != nil {
				return err
			}
			s, st, err := app.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.ReorderScene(n[0], n[1]); err != nil {
				return err
			}
			if err := app.persist(cmd.Context(), s, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"from": n[0], "to": n[1], "cursor": s.Cursor()}, func(w io.Writer) {
				fmt.Fprintf(w, "moved scene %d to %d\n", n[0], n[1])
			})
		},
	}
}

func newDeleteSceneCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete-scene <doc-id> <ordinal>",
		Short: "Delete a whole scene, heading included",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := atoiArgs(args[1])
			if err != nil {
				return err
			}
			s, st, err := app.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err := s.Navigate(n[0])
			if err != nil {
				return err
			}
			if s.NeedsConfirmation(c.Block) && !force {
				return errors.New("scene contains text; pass --force to delete it")
			}
			r, err := s.DeleteScene(c.Block)
			if err != nil {
				return err
			}
			if err := app.persist(cmd.Context(), s, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"start": r.Start, "end": r.End, "removed": r.Len()}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %d blocks\n", r.Len())
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Delete even when the scene contains text")
	return cmd
}

func newRenameCharacterCmd(app *App) *cobra.Command {
	return newRenameCmd(app, "rename-character", "Rename a character in every cue", editor.RenameCharacter[struct{}])
}

func newRenameLocationCmd(app *App) *cobra.Command {
	return newRenameCmd(app, "rename-location", "Rename a location in every scene heading", editor.RenameLocation[struct{}])
}

func newRenameCmd(app *App, use, short string, rename func(*editor.Session, map[string]struct{}, string, string) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <doc-id> <from> <to>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, st, err := app.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			n, err := rename(s, nil, args[1], args[2])
			if err != nil {
				return err
			}
			if n > 0 {
				if err := app.persist(cmd.Context(), s, st); err != nil {
					return err
				}
			}
			return writeOut(cmd, app, map[string]any{"changed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "%d blocks changed\n", n)
			})
		},
	}
}

// parseKey maps a key token to an event. "text=..." inserts text.
func parseKey(tok string) (editor.Key, string, error) {
	if v, ok := strings.CutPrefix(tok, "text="); ok {
		return editor.KeyInsert, v, nil
	}
	switch strings.ToLower(tok) {
	case "enter":
		return editor.KeyEnter, "", nil
	case "tab":
		return editor.KeyTab, "", nil
	case "shift-tab", "shift+tab":
		return editor.KeyShiftTab, "", nil
	case "up":
		return editor.KeyArrowUp, "", nil
	case "down":
		return editor.KeyArrowDown, "", nil
	case "esc", "escape":
		return editor.KeyEscape, "", nil
	}
	return 0, "", fmt.Errorf("unknown key %q", tok)
}

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys <doc-id> <block> <offset> <key>...",
		Short: "Replay key intents (enter, tab, shift-tab, up, down, esc, text=...) and save",
		Long: strings.TrimSpace(`
Replays key intents against a document starting at the given caret. Autocomplete refreshes
run immediately after each key, so "up", "down" and "enter" operate on the heading popup
when it is showing. The surface is blurred at the end, which removes empty scene headings.`),
		Args: cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := atoiArgs(args[1], args[2])
			if err != nil {
				return err
			}
			s, st, err := app.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cur := sp.Cursor{Block: n[0], Offset: n[1]}
			applied := 0
			for _, tok := range args[3:] {
				k, text, err := parseKey(tok)
				if err != nil {
					return err
				}
				res := s.ApplyKey(editor.KeyEvent{Key: k, Text: text, Cursor: cur})
				if res.Applied {
					applied++
				}
				cur = res.Cursor
				s.FlushAutocomplete()
			}
			removed := s.Blur()
			if err := app.persist(cmd.Context(), s, st); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"applied": applied, "cursor": cur, "removedHeadings": removed}, func(w io.Writer) {
				fmt.Fprintf(w, "%d of %d keys applied; caret at block %d offset %d\n", applied, len(args)-3, cur.Block, cur.Offset)
			})
		},
	}
}
