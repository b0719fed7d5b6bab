/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.AutocompleteDebounceMs != 300 || cfg.Editor.AutocompleteLimit != 8 {
		t.Fatalf("editor defaults wrong: %#v", cfg.Editor)
	}
	if cfg.Storage.KeepSnapshots != 50 {
		t.Fatalf("KeepSnapshots = %d, want 50", cfg.Storage.KeepSnapshots)
	}
}

func TestEnvOverridesEditor(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAutocompleteDebounceMs, "120")
	t.Setenv(EnvAutocompleteLimit, "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Editor.AutocompleteDebounceMs, 120; got != want {
		t.Fatalf("AutocompleteDebounceMs = %d, want %d", got, want)
	}
	if cfg.Editor.AutocompleteLimit != 8 {
		t.Fatalf("invalid env should be ignored, got %d", cfg.Editor.AutocompleteLimit)
	}
}

func TestEnvOverridesStorage(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, "/srv/scripts")
	t.Setenv(EnvKeepSnapshots, "0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.DataDir != "/srv/scripts" {
		t.Fatalf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Storage.KeepSnapshots != 0 {
		t.Fatalf("KeepSnapshots = %d, want 0", cfg.Storage.KeepSnapshots)
	}
	if name, ok := EnvOverrideFor("storage.data_dir"); !ok || name != EnvDataDir {
		t.Fatalf("EnvOverrideFor(storage.data_dir) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("storage.index_file"); ok {
		t.Fatalf("index_file is not overridden")
	}
}

func TestSaveThenLoadFile(t *testing.T) {
	path := isolate(t)
	cfg := Defaults()
	cfg.Editor.AutocompleteLimit = 3
	cfg.Storage.IndexFile = "/tmp/idx.sqlite"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Editor.AutocompleteLimit != 3 || got.Storage.IndexFile != "/tmp/idx.sqlite" {
		t.Fatalf("round trip lost fields: %#v", got)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("editor: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Editor.AutocompleteDebounceMs != 300 {
		t.Fatalf("defaults should survive a parse error: %#v", cfg.Editor)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gsw.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gsw.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	mergeInto(&dst, &src)
	if dst.Editor.AutocompleteLimit != 8 || dst.Storage.KeepSnapshots != 50 || dst.ConfigVersion != 1 {
		t.Fatalf("zero values overwrote defaults: %#v", dst)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/log/gsw.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/log/gsw.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestResolveDataDir(t *testing.T) {
	s := StorageConfig{DataDir: "/data"}
	if got, err := s.ResolveDataDir(); err != nil || got != "/data" {
		t.Fatalf("ResolveDataDir = %q, %v", got, err)
	}
	t.Setenv("HOME", "/home/writer")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("AppData", "/appdata")
	got, err := StorageConfig{}.ResolveDataDir()
	if err != nil || got == "" {
		t.Fatalf("default data dir = %q, %v", got, err)
	}
}
