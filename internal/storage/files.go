/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "goscreenwriter/internal/log"
	sp "goscreenwriter/internal/screenplay"
)

const (
	DocumentExt      = ".screenplay.json"
	DocumentsDirName = "scripts"
	BackupsDirName   = "backups"
)

// ErrNotFound is returned when neither a document file nor any backup of it exists.
var ErrNotFound = errors.New("document not found")

// Workspace is a data directory holding screenplay documents, their backups and the index.
//
//	<root>/scripts/<id>.screenplay.json
//	<root>/backups/<id>.screenplay.json.<stamp>.bak
//	<root>/.gsw/index.sqlite
type Workspace struct {
	Root string
}

// OpenWorkspace creates the standard subfolders under root if needed.
func OpenWorkspace(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	for _, d := range []string{DocumentsDirName, BackupsDirName} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return &Workspace{Root: root}, nil
}

// DocumentPath returns the canonical file of a document.
func (w *Workspace) DocumentPath(id string) string {
	return filepath.Join(w.Root, DocumentsDirName, id+DocumentExt)
}

// BackupDir is where replaced document files are kept.
func (w *Workspace) BackupDir() string {
	return filepath.Join(w.Root, BackupsDirName)
}

// Save writes d to its canonical file and returns the path.
func (w *Workspace) Save(d *sp.Document) (string, error) {
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return "", errors.New("document with an ID is required")
	}
	path := w.DocumentPath(d.ID)
	return path, WriteDocumentFile(path, d, w.BackupDir())
}

// Load reads a document by ID, falling back to its newest backup.
func (w *Workspace) Load(id string) (*sp.Document, error) {
	return ReadDocumentFile(w.DocumentPath(id), w.BackupDir())
}

// List returns the IDs of all documents in the workspace, sorted.
func (w *Workspace) List() ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(w.Root, DocumentsDirName))
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}
	var ids []string
	for _, e := range ents {
		if name := e.Name(); !e.IsDir() && strings.HasSuffix(name, DocumentExt) {
			ids = append(ids, strings.TrimSuffix(name, DocumentExt))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete moves the document file into the backups folder.
func (w *Workspace) Delete(id string) error {
	path := w.DocumentPath(id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if err := backupFile(path, w.BackupDir()); err != nil {
		return err
	}
	return os.Remove(path)
}

// AutosaveCrash writes a raw document blob next to the backups so that a crash never loses the
// last in-memory revision. The canonical file is left alone.
func (w *Workspace) AutosaveCrash(id string, blob []byte) (string, error) {
	if err := os.MkdirAll(w.BackupDir(), 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(w.BackupDir(), fmt.Sprintf("%s.crash-%s.json", id, stamp))
	if err := writeFileSync(path, blob); err != nil {
		return "", err
	}
	return path, nil
}

// WriteDocumentFile writes d to path with transactional semantics. When backupDir is not empty,
// the previous file is copied there with a timestamp first.
func WriteDocumentFile(path string, d *sp.Document, backupDir string) error {
	data, err := sp.MarshalDocument(d)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure document dir: %w", err)
	}
	if backupDir != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := backupFile(path, backupDir); err != nil {
				return fmt.Errorf("backup current document: %w", err)
			}
		}
	}
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", err)
	}
	applog.WithComponent("storage").Debug("document written", slog.String("path", path), slog.String("id", d.ID))
	return nil
}

// ReadDocumentFile loads and validates a document. If the file is missing or does not pass
// validation, the newest backup in backupDir is tried.
func ReadDocumentFile(path, backupDir string) (*sp.Document, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "read_document").With(slog.String("path", path))
	b, err := os.ReadFile(path)
	if err == nil {
		d, perr := sp.UnmarshalDocument(b)
		if perr == nil {
			return d, nil
		}
		err = perr
		l.Warn("document unreadable, trying backup", slog.Any("err", perr))
	}
	if backupDir == "" {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d, berr := openFromLatestBackup(backupDir, filepath.Base(path))
	if berr != nil {
		if errors.Is(err, os.ErrNotExist) && errors.Is(berr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
	}
	l.Info("document restored from backup")
	return d, nil
}

func backupFile(path, backupDir string) error {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405.000000000")
	return copyFile(path, filepath.Join(backupDir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp)))
}

// openFromLatestBackup tries the newest timestamped backup of base.
func openFromLatestBackup(backupDir, base string) (*sp.Document, error) {
	ents, err := os.ReadDir(backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(backupDir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	b, err := os.ReadFile(candidates[len(candidates)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	d, err := sp.UnmarshalDocument(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return d, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
