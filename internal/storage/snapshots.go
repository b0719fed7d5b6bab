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
	"time"

	sp "goscreenwriter/internal/screenplay"
)

// Snapshot is a stored document revision.
type Snapshot struct {
	ID      int64
	Version uint64
	TS      time.Time
	Body    []byte
}

// Document decodes the snapshot body.
func (s Snapshot) Document() (*sp.Document, error) { return sp.UnmarshalDocument(s.Body) }

// tsLayout is fixed-width so that stored timestamps sort lexicographically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(doc_id, version, ts, body) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, version, ts, body FROM snapshots WHERE doc_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE doc_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE doc_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// SaveSnapshot records the current state of d with timestamp ts.
func (ix *Index) SaveSnapshot(ctx context.Context, d *sp.Document, ts time.Time) error {
	if d == nil {
		return errors.New("nil document")
	}
	body, err := sp.MarshalDocument(d)
	if err != nil {
		return err
	}
	_, err = ix.db.ExecContext(ctx, insertSnapshotSQL, d.ID, int64(d.Version()), ts.UTC().Format(tsLayout), body)
	return err
}

// LatestSnapshot returns the newest snapshot of a document, or ErrNotFound.
func (ix *Index) LatestSnapshot(ctx context.Context, docID string) (Snapshot, error) {
	list, err := ix.ListSnapshots(ctx, docID, 1)
	if err != nil {
		return Snapshot{}, err
	}
	if len(list) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return list[0], nil
}

// ListSnapshots returns up to limit most recent snapshots, newest first.
func (ix *Index) ListSnapshots(ctx context.Context, docID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := ix.db.QueryContext(ctx, listSnapshotsSQL, docID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var ver int64
		var ts string
		if err := rows.Scan(&s.ID, &ver, &ts, &s.Body); err != nil {
			return nil, err
		}
		s.Version = uint64(ver)
		s.TS, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps at most keepLast snapshots of a document and deletes older ones.
func (ix *Index) PruneSnapshots(ctx context.Context, docID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := ix.db.ExecContext(ctx, pruneOldSnapshotsSQL, docID, docID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SnapshotByID returns one snapshot.
func (ix *Index) SnapshotByID(ctx context.Context, id int64) (Snapshot, error) {
	var s Snapshot
	var ver int64
	var ts string
	err := ix.db.QueryRowContext(ctx, `SELECT id, version, ts, body FROM snapshots WHERE id = ?`, id).Scan(&s.ID, &ver, &ts, &s.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	s.Version = uint64(ver)
	s.TS, _ = time.Parse(time.RFC3339Nano, ts)
	return s, nil
}
