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
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := InitOrOpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestIndexInitCreatesWALAndSchema(t *testing.T) {
	root := t.TempDir()
	ix, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	if ix.Path() != IndexPath(root) {
		t.Fatalf("unexpected index path %s", ix.Path())
	}
	_ = ix.Close()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(IndexPath(root)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','documents','blocks','fts_blocks','snapshots')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 6 {
		t.Fatalf("expected 6 tables, got %d", cnt)
	}
}

func TestMigrationsReachCurrentSchema(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	v, err := ix.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("schema version = %d, %v; want %d", v, err, schemaVersion)
	}
	var cnt int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_blocks_type','idx_blocks_speaker')").Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected migration indexes, got %d", cnt)
	}
	// reopening must not re-run or fail
	again, err := OpenIndexFile(ix.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = again.Close()
}

func TestSaveAndLoadDocument(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	d := sampleDoc(t)
	if err := ix.SaveDocument(ctx, d); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	// saving twice replaces the block rows instead of duplicating them
	if err := ix.SaveDocument(ctx, d); err != nil {
		t.Fatalf("SaveDocument again: %v", err)
	}
	var rows int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocks WHERE doc_id = ?", d.ID).Scan(&rows); err != nil {
		t.Fatalf("count blocks: %v", err)
	}
	if rows != d.Len() {
		t.Fatalf("expected %d block rows, got %d", d.Len(), rows)
	}
	got, err := ix.LoadDocument(ctx, d.ID)
	if err != nil || !got.Equal(d) || got.ID != d.ID {
		t.Fatalf("LoadDocument mismatch: %v", err)
	}
	list, err := ix.ListDocuments(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListDocuments = %v, %v", list, err)
	}
	if info := list[0]; info.Blocks != 7 || info.Scenes != 2 || info.Title != "Coffee" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := ix.LoadDocument(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	d := sampleDoc(t)
	_ = ix.SaveDocument(ctx, d)
	_ = ix.SaveSnapshot(ctx, d, time.Now())
	if err := ix.DeleteDocument(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	res, err := ix.Search(ctx, SearchQuery{Text: "rain"})
	if err != nil || len(res) != 0 {
		t.Fatalf("search after delete = %v, %v", res, err)
	}
	if _, err := ix.LatestSnapshot(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("snapshots should be gone: %v", err)
	}
}

func TestRebuildKeepsSearchWorking(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	_ = ix.SaveDocument(ctx, sampleDoc(t))
	n, err := ix.Rebuild(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Rebuild = %d, %v", n, err)
	}
	res, err := ix.Search(ctx, SearchQuery{Text: "espresso"})
	if err != nil || len(res) != 1 {
		t.Fatalf("search after rebuild = %v, %v", res, err)
	}
	if err := ix.Check(ctx); err != nil {
		t.Fatalf("Check: %v", err)
	}
}
