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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	sp "goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/script"
)

type blockOut struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Text  string `json:"text"`
}

func newImportCmd(app *App) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a plain-text screenplay as a new document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			d, diags := script.Import(title, string(data))
			for _, e := range diags {
				app.log.Warn("import diagnostic", slog.Int("line", e.Line), slog.Int("col", e.Column), slog.String("msg", e.Message))
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Save(cmd.Context(), d); err != nil {
				return err
			}
			_ = app.journal.Record(d)
			return writeOut(cmd, app, map[string]any{"id": d.ID, "title": d.Title, "blocks": d.Len(), "diagnostics": len(diags)}, func(w io.Writer) {
				fmt.Fprintf(w, "%s\t%s\t%d blocks\n", d.ID, d.Title, d.Len())
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: file name)")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			docs, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, docs, func(w io.Writer) {
				for _, d := range docs {
					fmt.Fprintf(w, "%s\t%s\t%d scenes\t%d blocks\n", d.ID, d.Title, d.Scenes, d.Blocks)
				}
			})
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <doc-id>",
		Short: "Print the blocks of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			d, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var out []blockOut
			d.Each(func(i int, b sp.Block) bool {
				out = append(out, blockOut{Index: i, Type: b.Type.String(), Text: b.Text})
				return true
			})
			return writeOut(cmd, app, out, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s)\n", d.Title, d.ID)
				for _, b := range out {
					fmt.Fprintf(w, "%4d %-13s %s\n", b.Index, b.Type, b.Text)
				}
			})
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <doc-id>",
		Short: "Delete a document file and its index rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintln(w, "deleted", args[0])
			})
		},
	}
}
