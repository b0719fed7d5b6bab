/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package extract

import (
	"sync"

	sp "goscreenwriter/internal/screenplay"
)

// Cache memoizes Extract on document identity and version. Any mutation bumps the version, so a
// stale view is never returned after a change commits.
type Cache struct {
	mu      sync.Mutex
	doc     *sp.Document
	version uint64
	views   Views
	valid   bool
	hits    int
	misses  int
}

// Views returns the derived views for d, recomputing only when d or its version changed.
func (c *Cache) Views(d *sp.Document) Views {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.doc == d && d != nil && c.version == d.Version() {
		c.hits++
		return c.views
	}
	c.misses++
	c.views = Extract(d)
	c.doc = d
	c.version = c.views.Version
	c.valid = true
	return c.views
}

// Invalidate drops the memoized result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.doc = nil
	c.views = Views{}
	c.mu.Unlock()
}

// Stats reports cache hits and misses since creation.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
