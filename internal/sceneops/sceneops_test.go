/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package sceneops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goscreenwriter/internal/extract"
	sp "goscreenwriter/internal/screenplay"
)

func threeScenes(t *testing.T) *sp.Document {
	t.Helper()
	d, err := sp.NewDocument("Three",
		sp.NewBlock(sp.Action, "FADE IN:"),
		sp.NewBlock(sp.SceneHeading, "INT. ALPHA - DAY"),
		sp.NewBlock(sp.Action, "a"),
		sp.NewBlock(sp.SceneHeading, "EXT. BRAVO - NIGHT"),
		sp.NewBlock(sp.SceneHeading, "INT. CHARLIE - DAY"),
		sp.NewBlock(sp.Character, "SARAH"),
		sp.NewBlock(sp.Dialogue, "c"),
	)
	require.NoError(t, err)
	return d
}

func texts(d *sp.Document) []string {
	var out []string
	d.Each(func(_ int, b sp.Block) bool {
		out = append(out, string(b.Type)+":"+b.Text)
		return true
	})
	return out
}

func TestReorder_FirstToLast(t *testing.T) {
	d := threeScenes(t)
	require.NoError(t, Reorder(d, 1, 3))
	assert.Equal(t, []string{
		"action:FADE IN:",
		"scene-heading:EXT. BRAVO - NIGHT",
		"scene-heading:INT. CHARLIE - DAY",
		"character:SARAH",
		"dialogue:c",
		"scene-heading:INT. ALPHA - DAY",
		"action:a",
	}, texts(d))
	v := extract.Extract(d)
	assert.Equal(t, "EXT. BRAVO - NIGHT", v.Scenes[0].Heading)
	assert.Equal(t, 3, v.Scenes[2].Ordinal)
}

func TestReorder_LastToFirst(t *testing.T) {
	d := threeScenes(t)
	require.NoError(t, Reorder(d, 3, 1))
	assert.Equal(t, []string{
		"action:FADE IN:",
		"scene-heading:INT. CHARLIE - DAY",
		"character:SARAH",
		"dialogue:c",
		"scene-heading:INT. ALPHA - DAY",
		"action:a",
		"scene-heading:EXT. BRAVO - NIGHT",
	}, texts(d))
}

func TestReorder_SamePositionIsByteIdentical(t *testing.T) {
	for k := 1; k <= 3; k++ {
		d := threeScenes(t)
		before, err := sp.MarshalDocument(d)
		require.NoError(t, err)
		version := d.Version()
		require.NoError(t, Reorder(d, k, k))
		after, err := sp.MarshalDocument(d)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Equal(t, version, d.Version())
	}
}

func TestReorder_InvalidOrdinals(t *testing.T) {
	for _, c := range [][2]int{{0, 1}, {1, 4}, {4, 4}, {-1, 2}} {
		d := threeScenes(t)
		snapshot := d.Clone()
		err := Reorder(d, c[0], c[1])
		var oe *OrdinalError
		require.True(t, errors.As(err, &oe), "from=%d to=%d: %v", c[0], c[1], err)
		assert.Equal(t, 3, oe.Count)
		assert.True(t, d.Equal(snapshot))
		assert.Equal(t, snapshot.Version(), d.Version())
	}
}

func TestPlanReorder_DoesNotTouchInput(t *testing.T) {
	d := threeScenes(t)
	blocks := d.Blocks()
	v := extract.Extract(d)
	planned, err := PlanReorder(blocks, v.Scenes, 2, 1)
	require.NoError(t, err)
	assert.Len(t, planned, len(blocks))
	assert.Equal(t, "INT. ALPHA - DAY", blocks[1].Text)
	assert.Equal(t, "EXT. BRAVO - NIGHT", planned[1].Text)
}

func TestDeleteScene(t *testing.T) {
	d := threeScenes(t)
	r, err := DeleteScene(d, 5)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 4, End: 7}, r)
	assert.Equal(t, 4, d.Len())

	_, err = DeleteScene(d, 0)
	assert.ErrorIs(t, err, ErrNoScene)
	_, err = DeleteScene(d, 99)
	assert.ErrorIs(t, err, sp.ErrIndexOutOfRange)
	assert.Equal(t, 4, d.Len())
}

func TestDeleteSceneByOrdinal(t *testing.T) {
	d := threeScenes(t)
	r, err := DeleteSceneByOrdinal(d, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.Len(t, extract.Extract(d).Scenes, 2)

	_, err = DeleteSceneByOrdinal(d, 3)
	var oe *OrdinalError
	assert.ErrorAs(t, err, &oe)
}

func TestNeedsConfirmation(t *testing.T) {
	d := sp.MustDocument("",
		sp.NewBlock(sp.SceneHeading, "  "),
		sp.NewBlock(sp.Action, ""),
		sp.NewBlock(sp.SceneHeading, "INT. X - DAY"),
	)
	assert.False(t, NeedsConfirmation(d, Range{Start: 0, End: 2}))
	assert.True(t, NeedsConfirmation(d, Range{Start: 0, End: 3}))
}

func TestNavigate(t *testing.T) {
	v := extract.Extract(threeScenes(t))
	c, err := Navigate(v, 3)
	require.NoError(t, err)
	assert.Equal(t, sp.Cursor{Block: 4, Offset: 0}, c)
	_, err = Navigate(v, 0)
	var oe *OrdinalError
	assert.ErrorAs(t, err, &oe)
}

type profile struct{ Notes string }

func TestRenameCharacter(t *testing.T) {
	d := sp.MustDocument("",
		sp.NewBlock(sp.SceneHeading, "INT. ROOM - DAY"),
		sp.NewBlock(sp.Character, "sarah"),
		sp.NewBlock(sp.Dialogue, "Sarah says hi."),
		sp.NewBlock(sp.Character, "SARAH "),
		sp.NewBlock(sp.Character, "TOM"),
	)
	profiles := map[string]profile{"SARAH": {Notes: "lead"}}
	n, err := RenameCharacter(d, profiles, "Sarah", "sally")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	v := extract.Extract(d)
	_, ok := v.Character("SARAH")
	assert.False(t, ok)
	_, ok = v.Character("SALLY")
	assert.True(t, ok)
	b, _ := d.Block(2)
	assert.Equal(t, "Sarah says hi.", b.Text, "dialogue text is not rewritten")
	assert.Equal(t, map[string]profile{"SALLY": {Notes: "lead"}}, profiles)
}

func TestRenameCharacter_ProfileClash(t *testing.T) {
	d := sp.MustDocument("", sp.NewBlock(sp.Character, "SARAH"))
	profiles := map[string]profile{"SARAH": {}, "TOM": {}}
	_, err := RenameCharacter(d, profiles, "sarah", "tom")
	assert.ErrorIs(t, err, ErrProfileExists)
	b, _ := d.Block(0)
	assert.Equal(t, "SARAH", b.Text)
	assert.Len(t, profiles, 2)

	_, err = RenameCharacter[profile](d, nil, "sarah", "  ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRenameLocation(t *testing.T) {
	d := sp.MustDocument("",
		sp.NewBlock(sp.SceneHeading, "int. coffee shop - day"),
		sp.NewBlock(sp.Action, "The coffee shop is busy."),
		sp.NewBlock(sp.SceneHeading, "EXT. PARK - NIGHT"),
		sp.NewBlock(sp.SceneHeading, "INT./EXT. COFFEE SHOP - LATER"),
	)
	n, err := RenameLocation[profile](d, nil, "Coffee Shop", "Diner")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{
		"scene-heading:int. DINER - day",
		"action:The coffee shop is busy.",
		"scene-heading:EXT. PARK - NIGHT",
		"scene-heading:INT./EXT. DINER - LATER",
	}, texts(d))
	loc, ok := extract.Extract(d).Location("diner")
	require.True(t, ok)
	assert.Equal(t, []int{1, 3}, loc.Scenes)
}
