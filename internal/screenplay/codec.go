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
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"github.com/google/uuid"
)

//go:embed document.schema.json
var documentSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// SchemaError lists the JSON schema violations of a rejected document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "document does not conform to schema: " + strings.Join(e.Problems, "; ")
}

type spanJSON struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type blockJSON struct {
	Type string     `json:"type"`
	Text string     `json:"text"`
	Bold []spanJSON `json:"bold,omitempty"`
}

type documentJSON struct {
	ID     string      `json:"id,omitempty"`
	Title  string      `json:"title,omitempty"`
	Blocks []blockJSON `json:"blocks"`
}

// MarshalDocument encodes d as indented, human-readable JSON.
func MarshalDocument(d *Document) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("nil document")
	}
	dj := documentJSON{ID: d.ID, Title: d.Title, Blocks: make([]blockJSON, 0, d.Len())}
	for _, b := range d.blocks {
		bj := blockJSON{Type: string(b.Type), Text: b.Text}
		for _, s := range b.Bold {
			bj.Bold = append(bj.Bold, spanJSON{Start: s.Start, End: s.End})
		}
		dj.Blocks = append(dj.Blocks, bj)
	}
	data, err := json.MarshalIndent(dj, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// UnmarshalDocument validates data against the embedded schema and decodes it.
// A document without an id gets a fresh one.
func UnmarshalDocument(data []byte) (*Document, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}
	var dj documentJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	blocks := make([]Block, 0, len(dj.Blocks))
	for _, bj := range dj.Blocks {
		b := Block{Type: ElementType(bj.Type), Text: bj.Text}
		for _, s := range bj.Bold {
			b.Bold = append(b.Bold, Span{Start: s.Start, End: s.End})
		}
		blocks = append(blocks, b)
	}
	d := &Document{ID: strings.TrimSpace(dj.ID), Title: dj.Title}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := d.ReplaceAll(blocks); err != nil {
		return nil, err
	}
	d.version = 0
	return d, nil
}

// ValidateJSON checks data against the document schema.
func ValidateJSON(data []byte) error {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchemaJSON))
	})
	if schemaErr != nil {
		return fmt.Errorf("load document schema: %w", schemaErr)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, e := range res.Errors() {
		se.Problems = append(se.Problems, e.String())
	}
	return se
}
