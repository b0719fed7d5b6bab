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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "goscreenwriter/internal/log"
	sp "goscreenwriter/internal/screenplay"
)

// Store persists documents as files in a Workspace and mirrors them into the Index. The files are
// canonical; the index is derived and can always be rebuilt from them.
type Store struct {
	ws        *Workspace
	ix        *Index
	indexPath string
	keep      int
	log       *slog.Logger
}

// StoreOptions configures OpenStore.
type StoreOptions struct {
	Root string
	// IndexFile overrides the default <root>/.gsw/index.sqlite.
	IndexFile string
	// KeepSnapshots bounds the snapshots retained per document (0 keeps all).
	KeepSnapshots int
}

// OpenStore opens the workspace and its index. A corrupt index is backed up and rebuilt.
func OpenStore(ctx context.Context, opts StoreOptions) (*Store, error) {
	ws, err := OpenWorkspace(opts.Root)
	if err != nil {
		return nil, err
	}
	s := &Store{
		ws:        ws,
		indexPath: opts.IndexFile,
		keep:      opts.KeepSnapshots,
		log:       applog.WithComponent("storage").With(slog.String("root", opts.Root)),
	}
	if s.indexPath == "" {
		s.indexPath = IndexPath(opts.Root)
	}
	if _, err := s.RepairIndex(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Workspace() *Workspace { return s.ws }
func (s *Store) Index() *Index         { return s.ix }

// Close releases the index.
func (s *Store) Close() error { return s.ix.Close() }

// Save writes d to its file, then indexes it and records a snapshot. Index failures are logged
// only; the file write is what decides success.
func (s *Store) Save(ctx context.Context, d *sp.Document) error {
	path, err := s.ws.Save(d)
	if err != nil {
		return err
	}
	l := applog.WithDocument(applog.WithOperation(s.log, "save"), d.ID)
	if err := s.ix.SaveDocument(ctx, d); err != nil {
		l.Warn("index update failed", slog.Any("err", err))
		return nil
	}
	if err := s.ix.SaveSnapshot(ctx, d, time.Now()); err != nil {
		l.Warn("snapshot failed", slog.Any("err", err))
		return nil
	}
	if n, err := s.ix.PruneSnapshots(ctx, d.ID, s.keep); err != nil {
		l.Warn("snapshot prune failed", slog.Any("err", err))
	} else if n > 0 {
		l.Debug("snapshots pruned", slog.Int64("count", n))
	}
	l.Info("document saved", slog.String("path", path), slog.Uint64("version", d.Version()))
	return nil
}

// Load reads a document from its file, falling back to backups and then to the index copy.
func (s *Store) Load(ctx context.Context, id string) (*sp.Document, error) {
	d, err := s.ws.Load(id)
	if err == nil {
		return d, nil
	}
	if d, ierr := s.ix.LoadDocument(ctx, id); ierr == nil {
		applog.WithDocument(applog.WithOperation(s.log, "load"), id).Warn("document file unavailable, using index copy", slog.Any("err", err))
		return d, nil
	}
	return nil, err
}

// List returns the indexed documents.
func (s *Store) List(ctx context.Context) ([]DocumentInfo, error) {
	return s.ix.ListDocuments(ctx)
}

// Delete removes a document from the workspace and the index.
func (s *Store) Delete(ctx context.Context, id string) error {
	ferr := s.ws.Delete(id)
	if ferr != nil && !errors.Is(ferr, ErrNotFound) {
		return ferr
	}
	if err := s.ix.DeleteDocument(ctx, id); err != nil {
		return err
	}
	return ferr
}

// Reindex indexes every document file of the workspace and returns how many were indexed.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	ids, err := s.ws.List()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		d, err := s.ws.Load(id)
		if err != nil {
			s.log.Warn("skipping unreadable document", slog.String("doc", id), slog.Any("err", err))
			continue
		}
		if err := s.ix.SaveDocument(ctx, d); err != nil {
			return n, fmt.Errorf("index %s: %w", id, err)
		}
		n++
	}
	return n, nil
}

// RepairIndex opens the index, or, when it cannot be opened or fails its integrity check, backs
// the file up, recreates it and re-indexes the workspace. It reports whether a rebuild happened.
func (s *Store) RepairIndex(ctx context.Context) (bool, error) {
	l := applog.WithOperation(s.log, "repair_index")
	path := s.indexPath
	if s.ix != nil {
		_ = s.ix.Close()
		s.ix = nil
	}
	ix, err := OpenIndexFile(path)
	if err == nil {
		cerr := ix.Check(ctx)
		if cerr == nil {
			s.ix = ix
			return false, nil
		}
		l.Warn("index check failed", slog.Any("err", cerr))
		_ = ix.Close()
	} else {
		l.Warn("index open failed", slog.Any("err", err))
	}
	backupIndexFile(path)
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
	ix, err = OpenIndexFile(path)
	if err != nil {
		return false, fmt.Errorf("recreate index: %w", err)
	}
	s.ix = ix
	n, err := s.Reindex(ctx)
	if err != nil {
		return true, err
	}
	l.Info("index rebuilt", slog.Int("documents", n))
	return true, nil
}

// backupIndexFile copies the index file into a timestamped backup next to it.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
