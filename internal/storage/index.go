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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goscreenwriter/internal/extract"
	applog "goscreenwriter/internal/log"
	sp "goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds the derived, rebuildable index data under the workspace root.
	IndexDirName  = ".gsw"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump it together with a migration step.
	schemaVersion = 2
)

// Index is the embedded SQLite database of one workspace. It stores a copy of every saved
// document, a per-block table with full-text search, and document snapshots.
type Index struct {
	db   *sql.DB
	path string
}

// IndexPath returns the full path to the workspace's index database file.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures the index exists at <root>/.gsw/index.sqlite, enables WAL and brings
// the schema up to date.
func InitOrOpenIndex(root string) (*Index, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	return OpenIndexFile(IndexPath(root))
}

// OpenIndexFile opens or creates an index database at an explicit path.
func OpenIndexFile(path string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(slog.String("path", path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready")
	return &Index{db: db, path: path}, nil
}

// Path returns the database file path.
func (ix *Index) Path() string { return ix.path }

// Close releases the database handle.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// SchemaVersion reports the schema version recorded in the database.
func (ix *Index) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// Check runs SQLite's quick_check and probes the core tables.
func (ix *Index) Check(ctx context.Context) error {
	var chk string
	if err := ix.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		return fmt.Errorf("quick_check: %s", chk)
	}
	if _, err := ix.db.ExecContext(ctx, `SELECT 1 FROM blocks LIMIT 1;`); err != nil {
		return fmt.Errorf("probe blocks: %w", err)
	}
	return nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at schema 1 and migrates forward
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates the schema-1 tables, FTS structures and triggers.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id          TEXT    PRIMARY KEY,
			title       TEXT    NOT NULL DEFAULT '',
			version     INTEGER NOT NULL DEFAULT 0,
			block_count INTEGER NOT NULL DEFAULT 0,
			scene_count INTEGER NOT NULL DEFAULT 0,
			body        BLOB    NOT NULL,
			updated_at  TEXT    NOT NULL
		);`,
		// One row per block; id doubles as the rowid of the contentless FTS table.
		`CREATE TABLE IF NOT EXISTS blocks (
			id       INTEGER PRIMARY KEY,
			doc_id   TEXT    NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			type     TEXT    NOT NULL,
			scene    INTEGER NOT NULL DEFAULT 0,
			speaker  TEXT,
			text     TEXT    NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_blocks_doc_pos ON blocks(doc_id, position);`,
		// External-content FTS over blocks.text, kept in sync by the triggers below.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_blocks USING fts5(
			text,
			content='blocks',
			content_rowid='id',
			tokenize = 'unicode61'
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id      INTEGER PRIMARY KEY,
			doc_id  TEXT    NOT NULL,
			version INTEGER NOT NULL,
			ts      TEXT    NOT NULL,
			body    BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_doc_ts ON snapshots(doc_id, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS blocks_ai AFTER INSERT ON blocks BEGIN
			INSERT INTO fts_blocks(rowid, text) VALUES (new.id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS blocks_ad AFTER DELETE ON blocks BEGIN
			INSERT INTO fts_blocks(fts_blocks, rowid, text) VALUES ('delete', old.id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS blocks_au AFTER UPDATE OF text ON blocks BEGIN
			INSERT INTO fts_blocks(fts_blocks, rowid, text) VALUES ('delete', old.id, old.text);
			INSERT INTO fts_blocks(rowid, text) VALUES (new.id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_blocks_type ON blocks(type);`,
				`CREATE INDEX IF NOT EXISTS idx_blocks_speaker ON blocks(speaker);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// DocumentInfo summarizes an indexed document.
type DocumentInfo struct {
	ID        string
	Title     string
	Version   uint64
	Blocks    int
	Scenes    int
	UpdatedAt time.Time
}

// language=SQL
// dialect=SQLite
const upsertDocumentSQL = `INSERT INTO documents(id, title, version, block_count, scene_count, body, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title=excluded.title, version=excluded.version, block_count=excluded.block_count,
	scene_count=excluded.scene_count, body=excluded.body, updated_at=excluded.updated_at`

// language=SQL
// dialect=SQLite
const insertBlockSQL = `INSERT INTO blocks(doc_id, position, type, scene, speaker, text) VALUES (?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listDocumentsSQL = `SELECT id, title, version, block_count, scene_count, updated_at FROM documents ORDER BY title, id`

// SaveDocument stores d and replaces its block rows in one transaction.
func (ix *Index) SaveDocument(ctx context.Context, d *sp.Document) error {
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return errors.New("document with an ID is required")
	}
	body, err := sp.MarshalDocument(d)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	views := extract.Extract(d)
	now := time.Now().UTC().Format(tsLayout)
	if _, err := tx.ExecContext(ctx, upsertDocumentSQL, d.ID, d.Title, int64(d.Version()), d.Len(), len(views.Scenes), body, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert document: %w", err)
	}
	if err := indexBlocks(ctx, tx, d, views); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// indexBlocks replaces the block rows of d. Dialogue rows carry the speaking character so
// searches can filter by character.
func indexBlocks(ctx context.Context, tx *sql.Tx, d *sp.Document, views extract.Views) error {
	speakers := map[int]string{}
	for _, c := range views.Characters {
		for _, line := range c.Lines {
			speakers[line.Block] = c.Name
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE doc_id = ?`, d.ID); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, insertBlockSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	var insErr error
	d.Each(func(i int, b sp.Block) bool {
		scene := 0
		if s, ok := views.SceneAt(i); ok {
			scene = s.Ordinal
		}
		speaker := sql.NullString{}
		switch {
		case b.Type == sp.Character:
			speaker = sql.NullString{String: extract.NormalizeName(b.Text), Valid: true}
		case speakers[i] != "":
			speaker = sql.NullString{String: speakers[i], Valid: true}
		}
		if _, err := ins.ExecContext(ctx, d.ID, i, string(b.Type), scene, speaker, b.Text); err != nil {
			insErr = err
			return false
		}
		return true
	})
	if insErr != nil {
		return fmt.Errorf("insert block: %w", insErr)
	}
	return nil
}

// LoadDocument returns the stored copy of a document.
func (ix *Index) LoadDocument(ctx context.Context, id string) (*sp.Document, error) {
	var body []byte
	err := ix.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sp.UnmarshalDocument(body)
}

// DeleteDocument removes a document with its blocks and snapshots.
func (ix *Index) DeleteDocument(ctx context.Context, id string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range []string{
		`DELETE FROM blocks WHERE doc_id = ?`,
		`DELETE FROM snapshots WHERE doc_id = ?`,
		`DELETE FROM documents WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete document: %w", err)
		}
	}
	return tx.Commit()
}

// ListDocuments returns all indexed documents sorted by title.
func (ix *Index) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := ix.db.QueryContext(ctx, listDocumentsSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var ver int64
		var ts string
		if err := rows.Scan(&info.ID, &info.Title, &ver, &info.Blocks, &info.Scenes, &ts); err != nil {
			return nil, err
		}
		info.Version = uint64(ver)
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Rebuild re-derives every block row and the full-text index from the stored document bodies.
func (ix *Index) Rebuild(ctx context.Context) (int, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT body FROM documents`)
	if err != nil {
		return 0, err
	}
	var docs []*sp.Document
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			_ = rows.Close()
			return 0, err
		}
		d, err := sp.UnmarshalDocument(body)
		if err != nil {
			applog.WithComponent("storage").Warn("skipping unreadable indexed document", slog.Any("err", err))
			continue
		}
		docs = append(docs, d)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("clear blocks: %w", err)
	}
	for _, d := range docs {
		if err := indexBlocks(ctx, tx, d, extract.Extract(d)); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO fts_blocks(fts_blocks) VALUES('rebuild')`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("rebuild fts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(docs), nil
}
