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
	"testing"
	"time"
)

func TestSnapshotsSaveListPrune(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	d := sampleDoc(t)
	t0 := time.Now()
	for i := 0; i < 5; i++ {
		if err := d.SetText(1, "take "+string(rune('A'+i))); err != nil {
			t.Fatalf("SetText: %v", err)
		}
		if err := ix.SaveSnapshot(ctx, d, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
	}
	latest, err := ix.LatestSnapshot(ctx, d.ID)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	doc, err := latest.Document()
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b, _ := doc.Block(1); b.Text != "take E" {
		t.Fatalf("latest snapshot text = %q", b.Text)
	}
	if latest.Version != d.Version() {
		t.Fatalf("snapshot version = %d, want %d", latest.Version, d.Version())
	}

	list, err := ix.ListSnapshots(ctx, d.ID, 3)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListSnapshots = %d, %v", len(list), err)
	}
	if !list[0].TS.After(list[1].TS) {
		t.Fatalf("snapshots should be newest first")
	}

	n, err := ix.PruneSnapshots(ctx, d.ID, 2)
	if err != nil || n != 3 {
		t.Fatalf("PruneSnapshots = %d, %v", n, err)
	}
	if list, _ := ix.ListSnapshots(ctx, d.ID, 0); len(list) != 2 {
		t.Fatalf("expected 2 snapshots after prune, got %d", len(list))
	}
	if n, _ := ix.PruneSnapshots(ctx, d.ID, 0); n != 0 {
		t.Fatalf("keepLast 0 must not delete")
	}

	byID, err := ix.SnapshotByID(ctx, latest.ID)
	if err != nil || byID.ID != latest.ID {
		t.Fatalf("SnapshotByID = %+v, %v", byID, err)
	}
	if _, err := ix.SnapshotByID(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
