/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package screenplay

import (
	"errors"
	"strings"
	"testing"
)

func TestMarshalUnmarshalPreservesBlocks(t *testing.T) {
	d := MustDocument("Pilot",
		NewBlock(SceneHeading, "EXT. BEACH - NIGHT"),
		Block{Type: Action, Text: "Waves crash.", Bold: []Span{{0, 5}}},
	)
	data, err := MarshalDocument(d)
	if err != nil {
		t.Fatalf("MarshalDocument error: %v", err)
	}
	back, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatalf("UnmarshalDocument error: %v", err)
	}
	if back.ID != d.ID || back.Title != "Pilot" || !back.Equal(d) {
		t.Fatalf("decoded document differs: %+v", back.Blocks())
	}
}

func TestUnmarshalRejectsSchemaViolations(t *testing.T) {
	bad := []string{
		`{"blocks":[{"type":"montage","text":"x"}]}`,
		`{"blocks":[{"type":"action"}]}`,
		`{"title":"no blocks"}`,
		`{"blocks":[{"type":"action","text":"x","bold":[{"start":-1,"end":2}]}]}`,
	}
	for _, in := range bad {
		_, err := UnmarshalDocument([]byte(in))
		var se *SchemaError
		if !errors.As(err, &se) || len(se.Problems) == 0 {
			t.Fatalf("expected SchemaError for %s, got %v", in, err)
		}
	}
}

func TestUnmarshalAssignsMissingID(t *testing.T) {
	d, err := UnmarshalDocument([]byte(`{"blocks":[]}`))
	if err != nil {
		t.Fatalf("UnmarshalDocument error: %v", err)
	}
	if strings.TrimSpace(d.ID) == "" {
		t.Fatalf("expected generated id")
	}
	if d.Len() != 0 {
		t.Fatalf("expected empty document, got %d blocks", d.Len())
	}
}
