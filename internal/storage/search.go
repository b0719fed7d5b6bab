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
	"fmt"
	"strings"
)

// SearchQuery describes a block search.
// Text uses SQLite FTS5 syntax (terms, "phrases", AND/OR/NOT). When Text is empty the filters
// alone select blocks. Types restrict the element types (e.g. "dialogue"). Scene is a 1-based
// ordinal, 0 means any. Character matches the cue of character blocks and the speaker of
// attributed dialogue.
type SearchQuery struct {
	Text       string
	DocumentID string
	Types      []string
	Scene      int
	Character  string
	Limit      int
	Offset     int
}

// SearchResult is one matching block. Snippet marks the matched terms with [ ] when Text is set.
type SearchResult struct {
	DocumentID string
	Position   int
	Type       string
	Scene      int
	Speaker    string
	Text       string
	Snippet    string
}

// Search runs a block search over the index.
func (ix *Index) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT b.doc_id, b.position, b.type, b.scene, b.speaker, b.text, snippet(fts_blocks, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_blocks JOIN blocks b ON fts_blocks.rowid = b.id\n")
		sb.WriteString("WHERE fts_blocks MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT b.doc_id, b.position, b.type, b.scene, b.speaker, b.text, ''\n")
		sb.WriteString("FROM blocks b\nWHERE 1=1\n")
	}
	if s := strings.TrimSpace(q.DocumentID); s != "" {
		sb.WriteString(" AND b.doc_id = ?\n")
		args = append(args, s)
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND b.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.Scene > 0 {
		sb.WriteString(" AND b.scene = ?\n")
		args = append(args, q.Scene)
	}
	if s := strings.TrimSpace(q.Character); s != "" {
		sb.WriteString(" AND b.speaker = ?\n")
		args = append(args, strings.Join(strings.Fields(strings.ToUpper(s)), " "))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY b.doc_id, b.position\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := ix.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var speaker, snippet sql.NullString
		if err := rows.Scan(&r.DocumentID, &r.Position, &r.Type, &r.Scene, &speaker, &r.Text, &snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Speaker = speaker.String
		r.Snippet = snippet.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
