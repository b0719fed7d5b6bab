/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"goscreenwriter/internal/extract"
)

type sceneOut struct {
	Ordinal    int      `json:"ordinal"`
	Heading    string   `json:"heading"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Location   string   `json:"location,omitempty"`
	Time       string   `json:"time,omitempty"`
	Characters []string `json:"characters"`
}

type characterOut struct {
	Name        string `json:"name"`
	Appearances int    `json:"appearances"`
	Scenes      []int  `json:"scenes"`
	Lines       int    `json:"lines"`
}

type locationOut struct {
	Name       string         `json:"name"`
	Scenes     []int          `json:"scenes"`
	TimeOfDay  map[string]int `json:"timeOfDay"`
	Characters []string       `json:"characters"`
}

func (a *App) views(ctx context.Context, id string) (extract.Views, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return extract.Views{}, err
	}
	d, err := st.Load(ctx, id)
	if err != nil {
		return extract.Views{}, err
	}
	return extract.Extract(d), nil
}

func newScenesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes <doc-id>",
		Short: "List the scenes of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.views(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := make([]sceneOut, 0, len(v.Scenes))
			for _, s := range v.Scenes {
				so := sceneOut{Ordinal: s.Ordinal, Heading: s.Heading, Start: s.Start, End: s.End, Characters: s.Characters}
				if s.HasLocation {
					so.Location, so.Time = s.Parsed.Location, s.Parsed.Time
				}
				out = append(out, so)
			}
			return writeOut(cmd, app, out, func(w io.Writer) {
				for _, s := range out {
					fmt.Fprintf(w, "%3d  %-40s blocks %d-%d  %s\n", s.Ordinal, s.Heading, s.Start, s.End-1, strings.Join(s.Characters, ", "))
				}
			})
		},
	}
}

func newCharactersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "characters <doc-id>",
		Short: "List characters by dialogue count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.views(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := make([]characterOut, 0, len(v.Characters))
			for _, c := range v.Characters {
				out = append(out, characterOut{Name: c.Name, Appearances: c.Appearances, Scenes: c.Scenes, Lines: len(c.Lines)})
			}
			return writeOut(cmd, app, out, func(w io.Writer) {
				for _, c := range out {
					fmt.Fprintf(w, "%-24s %3d  scenes %v\n", c.Name, c.Appearances, c.Scenes)
				}
			})
		},
	}
}

func newLocationsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "locations <doc-id>",
		Short: "List locations alphabetically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.views(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := make([]locationOut, 0, len(v.Locations))
			for _, l := range v.Locations {
				out = append(out, locationOut{Name: l.Name, Scenes: l.Scenes, TimeOfDay: l.TimeOfDay, Characters: l.Characters})
			}
			return writeOut(cmd, app, out, func(w io.Writer) {
				for _, l := range v.Locations {
					times := make([]string, 0, len(l.TimeOfDay))
					for _, t := range l.Times() {
						times = append(times, fmt.Sprintf("%s:%d", t, l.TimeOfDay[t]))
					}
					fmt.Fprintf(w, "%-24s scenes %v  %s\n", l.Name, l.Scenes, strings.Join(times, " "))
				}
			})
		},
	}
}
