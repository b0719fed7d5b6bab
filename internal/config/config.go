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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

type EditorConfig struct {
	AutocompleteDebounceMs int `yaml:"autocomplete_debounce_ms"`
	AutocompleteLimit      int `yaml:"autocomplete_limit"`
	// HistoryMaxRevisions caps the in-memory revision journal per document (0 = unlimited).
	HistoryMaxRevisions int `yaml:"history_max_revisions"`
}

type StorageConfig struct {
	// DataDir is the workspace root. Empty resolves to the per-user data directory.
	DataDir string `yaml:"data_dir"`
	// IndexFile overrides <data_dir>/.gsw/index.sqlite.
	IndexFile     string `yaml:"index_file"`
	KeepSnapshots int    `yaml:"keep_snapshots"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor:        EditorConfig{AutocompleteDebounceMs: 300, AutocompleteLimit: 8, HistoryMaxRevisions: 100},
		Storage:       StorageConfig{KeepSnapshots: 50},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile             = "GSW_CONFIG"
	EnvAutocompleteDebounceMs = "GSW_AUTOCOMPLETE_DEBOUNCE_MS"
	EnvAutocompleteLimit      = "GSW_AUTOCOMPLETE_LIMIT"
	EnvDataDir                = "GSW_DATA_DIR"
	EnvIndexFile              = "GSW_INDEX_FILE"
	EnvKeepSnapshots          = "GSW_KEEP_SNAPSHOTS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GSW_LOG_LEVEL"
	EnvLogFormat = "GSW_LOG_FORMAT"
	EnvLogSource = "GSW_LOG_SOURCE"
	EnvLogFile   = "GSW_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GSW_CONFIG takes precedence.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := userDir(configRoot)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DefaultDataDir returns the per-user directory that holds scripts, backups and the index.
func DefaultDataDir() (string, error) {
	return userDir(dataRoot)
}

type dirKind int

const (
	configRoot dirKind = iota
	dataRoot
)

func userDir(kind dirKind) (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoScreenwriter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoScreenwriter")
	default: // linux and others
		if kind == dataRoot {
			if x := os.Getenv("XDG_DATA_HOME"); x != "" {
				base = filepath.Join(x, "goscreenwriter")
				break
			}
			base = filepath.Join(os.Getenv("HOME"), ".local", "share", "goscreenwriter")
			break
		}
		base = filepath.Join(os.Getenv("HOME"), ".config", "goscreenwriter")
	}
	if base == "" || base == "goscreenwriter" {
		return "", errors.New("cannot resolve user directory")
	}
	return base, nil
}

// Load reads an optional .env from the working directory, the user config file (if present),
// applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	_ = godotenv.Load()
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step and with an explicit config path.
// A missing file yields defaults; a malformed one is an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	if src.Editor.AutocompleteDebounceMs > 0 {
		dst.Editor.AutocompleteDebounceMs = src.Editor.AutocompleteDebounceMs
	}
	if src.Editor.AutocompleteLimit > 0 {
		dst.Editor.AutocompleteLimit = src.Editor.AutocompleteLimit
	}
	if src.Editor.HistoryMaxRevisions > 0 {
		dst.Editor.HistoryMaxRevisions = src.Editor.HistoryMaxRevisions
	}
	// storage
	if strings.TrimSpace(src.Storage.DataDir) != "" {
		dst.Storage.DataDir = strings.TrimSpace(src.Storage.DataDir)
	}
	if strings.TrimSpace(src.Storage.IndexFile) != "" {
		dst.Storage.IndexFile = strings.TrimSpace(src.Storage.IndexFile)
	}
	if src.Storage.KeepSnapshots != 0 {
		dst.Storage.KeepSnapshots = src.Storage.KeepSnapshots
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if n, ok := envInt(EnvAutocompleteDebounceMs); ok && n > 0 {
		cfg.Editor.AutocompleteDebounceMs = n
	}
	if n, ok := envInt(EnvAutocompleteLimit); ok && n > 0 {
		cfg.Editor.AutocompleteLimit = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIndexFile)); v != "" {
		cfg.Storage.IndexFile = v
	}
	if n, ok := envInt(EnvKeepSnapshots); ok && n >= 0 {
		cfg.Storage.KeepSnapshots = n
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

var envKeys = map[string]string{
	"editor.autocomplete_debounce_ms": EnvAutocompleteDebounceMs,
	"editor.autocomplete_limit":       EnvAutocompleteLimit,
	"storage.data_dir":                EnvDataDir,
	"storage.index_file":              EnvIndexFile,
	"storage.keep_snapshots":          EnvKeepSnapshots,
	"logging.level":                   EnvLogLevel,
	"logging.format":                  EnvLogFormat,
	"logging.source":                  EnvLogSource,
	"logging.file":                    EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// ResolveDataDir returns the configured data directory or the per-user default.
func (s StorageConfig) ResolveDataDir() (string, error) {
	if s.DataDir != "" {
		return s.DataDir, nil
	}
	return DefaultDataDir()
}
