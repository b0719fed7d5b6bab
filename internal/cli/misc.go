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

	"github.com/spf13/cobra"

	"goscreenwriter/internal/config"
	"goscreenwriter/internal/version"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"version": version.String()}, func(w io.Writer) {
				fmt.Fprintln(w, "Go Screenwriter", version.String())
			})
		},
	}
}

type settingOut struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Env   string `json:"env,omitempty"`
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and which values come from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.cfg
			settings := []settingOut{
				{Key: "editor.autocomplete_debounce_ms", Value: c.Editor.AutocompleteDebounceMs},
				{Key: "editor.autocomplete_limit", Value: c.Editor.AutocompleteLimit},
				{Key: "editor.history_max_revisions", Value: c.Editor.HistoryMaxRevisions},
				{Key: "storage.data_dir", Value: c.Storage.DataDir},
				{Key: "storage.index_file", Value: c.Storage.IndexFile},
				{Key: "storage.keep_snapshots", Value: c.Storage.KeepSnapshots},
				{Key: "logging.level", Value: c.Logging.Level},
				{Key: "logging.format", Value: c.Logging.Format},
				{Key: "logging.source", Value: c.Logging.Source},
				{Key: "logging.file", Value: c.Logging.File},
			}
			for i := range settings {
				if env, ok := config.EnvOverrideFor(settings[i].Key); ok {
					settings[i].Env = env
				}
			}
			path, _ := config.ConfigPath()
			return writeOut(cmd, app, map[string]any{"path": path, "settings": settings}, func(w io.Writer) {
				fmt.Fprintln(w, "# "+path)
				for _, s := range settings {
					line := fmt.Sprintf("%-34s %v", s.Key, s.Value)
					if s.Env != "" {
						line += "  (from " + s.Env + ")"
					}
					fmt.Fprintln(w, line)
				}
			})
		},
	}
}
