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
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"goscreenwriter/internal/storage"
)

func newSearchCmd(app *App) *cobra.Command {
	var q storage.SearchQuery
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over indexed blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Text = args[0]
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := st.Index().Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, res, func(w io.Writer) {
				for _, r := range res {
					text := r.Text
					if r.Snippet != "" {
						text = r.Snippet
					}
					fmt.Fprintf(w, "%s:%d  scene %d  %-13s %s\n", r.DocumentID, r.Position, r.Scene, r.Type, text)
				}
			})
		},
	}
	cmd.Flags().StringVar(&q.DocumentID, "doc", "", "Restrict to one document")
	cmd.Flags().StringSliceVar(&q.Types, "type", nil, "Restrict to element types (repeatable)")
	cmd.Flags().IntVar(&q.Scene, "scene", 0, "Restrict to a scene ordinal")
	cmd.Flags().StringVar(&q.Character, "character", "", "Restrict to a speaker")
	cmd.Flags().IntVar(&q.Limit, "limit", 50, "Maximum results")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Results to skip")
	return cmd
}

func newReindexCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the SQLite index from the document files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			n, err := st.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"indexed": n, "index": st.Index().Path()}, func(w io.Writer) {
				fmt.Fprintf(w, "indexed %d documents into %s\n", n, st.Index().Path())
			})
		},
	}
}

type snapshotOut struct {
	ID      int64     `json:"id"`
	Version uint64    `json:"version"`
	TS      time.Time `json:"ts"`
}

func newSnapshotsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "snapshots <doc-id>",
		Short: "List stored revisions of a document, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			snaps, err := st.Index().ListSnapshots(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			out := make([]snapshotOut, 0, len(snaps))
			for _, s := range snaps {
				out = append(out, snapshotOut{ID: s.ID, Version: s.Version, TS: s.TS})
			}
			return writeOut(cmd, app, out, func(w io.Writer) {
				for _, s := range out {
					fmt.Fprintf(w, "%6d  v%-5d %s\n", s.ID, s.Version, s.TS.Format(time.RFC3339))
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum snapshots to list")
	cmd.AddCommand(newRestoreSnapshotCmd(app))
	return cmd
}

func newRestoreSnapshotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <doc-id> <snapshot-id>",
		Short: "Replace a document with one of its stored revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("not a snapshot id: %q", args[1])
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := st.Index().SnapshotByID(cmd.Context(), sid)
			if err != nil {
				return err
			}
			d, err := snap.Document()
			if err != nil {
				return err
			}
			if d.ID != args[0] {
				return fmt.Errorf("snapshot %d belongs to document %s", sid, d.ID)
			}
			if err := st.Save(cmd.Context(), d); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"restored": sid, "blocks": d.Len()}, func(w io.Writer) {
				fmt.Fprintf(w, "restored snapshot %d (%d blocks)\n", sid, d.Len())
			})
		},
	}
}
