/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


// Package cli is the goscreenwriter command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"goscreenwriter/internal/config"
	"goscreenwriter/internal/editor"
	"goscreenwriter/internal/history"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/storage"
)

// App carries the resolved configuration and the lazily opened store across commands.
type App struct {
	DataDir   string
	IndexFile string
	Format    string

	cfg     config.AppConfig
	store   *storage.Store
	journal *history.Manager
	log     *slog.Logger
}

// NewApp returns an App with default configuration; the root command fills it in.
func NewApp() *App {
	return &App{cfg: config.Defaults(), journal: history.NewManager(history.Config{})}
}

// Workspace returns the open workspace, or nil before a command touched storage.
func (a *App) Workspace() *storage.Workspace {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Workspace()
}

// Journal returns the revision journal every session records into.
func (a *App) Journal() *history.Manager { return a.journal }

// Close releases the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "goscreenwriter",
		Short:        "Screenplay document engine",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Import a plain-text screenplay
  goscreenwriter import draft.txt --title "Rain"

  # Inspect derived views
  goscreenwriter scenes <doc-id>
  goscreenwriter characters <doc-id>

  # Move scene 1 to position 3
  goscreenwriter reorder <doc-id> 1 3
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.configure(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.Close()
	}

	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", "", "Workspace directory (overrides storage.data_dir)")
	cmd.PersistentFlags().StringVar(&app.IndexFile, "index-file", "", "SQLite index path (overrides storage.index_file)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "text", "Output format (text|json)")

	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newScenesCmd(app))
	cmd.AddCommand(newCharactersCmd(app))
	cmd.AddCommand(newLocationsCmd(app))
	cmd.AddCommand(newReorderCmd(app))
	cmd.AddCommand(newDeleteSceneCmd(app))
	cmd.AddCommand(newRenameCharacterCmd(app))
	cmd.AddCommand(newRenameLocationCmd(app))
	cmd.AddCommand(newKeysCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newReindexCmd(app))
	cmd.AddCommand(newSnapshotsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// configure loads config, initializes logging and applies flag overrides.
func (a *App) configure(cmd *cobra.Command) error {
	cfg, err := config.Load()
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Writer:    cmd.ErrOrStderr(),
	})
	a.log = applog.WithComponent("cli")
	if err != nil {
		a.log.Warn("config not loaded; using defaults", slog.Any("err", err))
	}
	if a.DataDir != "" {
		a.cfg.Storage.DataDir = a.DataDir
	}
	if a.IndexFile != "" {
		a.cfg.Storage.IndexFile = a.IndexFile
	}
	switch a.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", a.Format)
	}
	a.journal = history.NewManager(history.Config{MaxPerDocument: a.cfg.Editor.HistoryMaxRevisions})
	return nil
}

// openStore opens the workspace and index once per invocation.
func (a *App) openStore(ctx context.Context) (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	root, err := a.cfg.Storage.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	root, _ = filepath.Abs(root)
	st, err := storage.OpenStore(ctx, storage.StoreOptions{
		Root:          root,
		IndexFile:     a.cfg.Storage.IndexFile,
		KeepSnapshots: a.cfg.Storage.KeepSnapshots,
	})
	if err != nil {
		return nil, err
	}
	a.log.Debug("store opened", slog.String("root", root), slog.String("index", st.Index().Path()))
	a.store = st
	return st, nil
}

// session restores document id into an editor session that records into the journal.
func (a *App) session(ctx context.Context, id string) (*editor.Session, *storage.Store, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	d, err := st.Load(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", id, err)
	}
	s := editor.NewSession(d,
		editor.WithRecorder(a.journal),
		editor.WithAutocomplete(time.Duration(a.cfg.Editor.AutocompleteDebounceMs)*time.Millisecond, a.cfg.Editor.AutocompleteLimit),
	)
	return s, st, nil
}

// persist saves the session document and fails when the store skipped it.
func (a *App) persist(ctx context.Context, s *editor.Session, st *storage.Store) error {
	if !s.Persist(ctx, st) {
		return fmt.Errorf("save %s failed", s.ID())
	}
	return nil
}

func writeOut(cmd *cobra.Command, app *App, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if app.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"data": v})
	}
	text(w)
	return nil
}
