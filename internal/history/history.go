/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history keeps a bounded in-memory journal of serialized document revisions. The editor
// records a revision after each committed mutation and crash recovery writes the newest one out.
package history

import (
	"sort"
	"sync"
	"time"

	sp "goscreenwriter/internal/screenplay"
)

// Revision is one serialized document state.
type Revision struct {
	DocumentID string
	Version    uint64
	Blob       []byte
	TS         time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; the oldest revisions across all documents are pruned past it.
	MaxBytes int
	// MaxPerDocument limits revisions kept per document (0 means unlimited).
	MaxPerDocument int
	// MinInterval coalesces revisions of the same document captured within the interval.
	MinInterval time.Duration
}

// Manager is safe for concurrent use.
type Manager struct {
	cfg Config
	now func() time.Time

	mu         sync.Mutex
	revs       map[string][]Revision
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, now: time.Now, revs: make(map[string][]Revision)}
}

// Record serializes d and pushes it as a new revision.
func (m *Manager) Record(d *sp.Document) error {
	blob, err := sp.MarshalDocument(d)
	if err != nil {
		return err
	}
	m.Push(Revision{DocumentID: d.ID, Version: d.Version(), Blob: blob, TS: m.now()})
	return nil
}

// Push appends r. A revision within MinInterval of the previous one replaces it.
func (m *Manager) Push(r Revision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.revs[r.DocumentID]
	if n := len(list); n > 0 && r.TS.Sub(list[n-1].TS) < m.cfg.MinInterval {
		m.totalBytes += len(r.Blob) - len(list[n-1].Blob)
		list[n-1] = r
	} else {
		list = append(list, r)
		m.totalBytes += len(r.Blob)
	}
	m.revs[r.DocumentID] = list
	m.enforceCapsLocked(r.DocumentID)
}

// Latest returns the newest revision of a document.
func (m *Manager) Latest(documentID string) (Revision, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.revs[documentID]
	if len(list) == 0 {
		return Revision{}, false
	}
	return list[len(list)-1], true
}

// Revisions returns the revisions of a document, oldest first.
func (m *Manager) Revisions(documentID string) []Revision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Revision(nil), m.revs[documentID]...)
}

// Documents lists the IDs with at least one revision.
func (m *Manager) Documents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.revs))
	for id := range m.revs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops every revision of a document.
func (m *Manager) Clear(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.revs[documentID] {
		m.totalBytes -= len(r.Blob)
	}
	delete(m.revs, documentID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, documents int, revisions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.revs {
		revisions += len(v)
	}
	return m.totalBytes, len(m.revs), revisions
}

func (m *Manager) enforceCapsLocked(documentID string) {
	if limit := m.cfg.MaxPerDocument; limit > 0 {
		list := m.revs[documentID]
		if drop := len(list) - limit; drop > 0 {
			for _, r := range list[:drop] {
				m.totalBytes -= len(r.Blob)
			}
			m.revs[documentID] = append([]Revision(nil), list[drop:]...)
		}
	}
	// the newest revision of each document survives the byte cap
	for m.totalBytes > m.cfg.MaxBytes {
		oldestID := ""
		var oldestTS time.Time
		for id, list := range m.revs {
			if len(list) < 2 {
				continue
			}
			if oldestID == "" || list[0].TS.Before(oldestTS) {
				oldestID, oldestTS = id, list[0].TS
			}
		}
		if oldestID == "" {
			break
		}
		list := m.revs[oldestID]
		m.totalBytes -= len(list[0].Blob)
		m.revs[oldestID] = list[1:]
	}
}
