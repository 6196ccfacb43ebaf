// RAScript
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RAScript.
//
// RAScript is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RAScript is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RAScript.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ZaparooProject/rascript/pkg/config"
	"github.com/ZaparooProject/rascript/pkg/rascript"
	"github.com/gocarina/gocsv"
)

type achievementRow struct {
	Title       string `csv:"title" json:"title"`
	Description string `csv:"description" json:"description"`
	Type        string `csv:"type" json:"type,omitempty"`
	Badge       string `csv:"badge" json:"badge"`
	Trigger     string `csv:"trigger" json:"trigger"`
	ID          int32  `csv:"id" json:"id"`
	Points      int32  `csv:"points" json:"points"`
}

type leaderboardRow struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Format        string `json:"format"`
	Definition    string `json:"definition"`
	ID            int32  `json:"id"`
	LowerIsBetter bool   `json:"lower_is_better"`
}

type document struct {
	RichPresence string           `json:"rich_presence,omitempty"`
	Achievements []achievementRow `json:"achievements"`
	Leaderboards []leaderboardRow `json:"leaderboards"`
}

func newDocument(res *rascript.Result) document {
	doc := document{
		Achievements: make([]achievementRow, 0, len(res.Achievements)),
		Leaderboards: make([]leaderboardRow, 0, len(res.Leaderboards)),
	}
	for _, a := range res.Achievements {
		doc.Achievements = append(doc.Achievements, achievementRow{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Points:      a.Points,
			Type:        a.Type,
			Badge:       a.Badge,
			Trigger:     a.Trigger.String(),
		})
	}
	for _, lb := range res.Leaderboards {
		doc.Leaderboards = append(doc.Leaderboards, leaderboardRow{
			ID:            lb.ID,
			Title:         lb.Title,
			Description:   lb.Description,
			Format:        lb.Format,
			LowerIsBetter: lb.LowerIsBetter,
			Definition:    lb.Definition(),
		})
	}
	if res.RichPresence != nil && !res.RichPresence.IsEmpty() {
		doc.RichPresence = res.RichPresence.Script()
	}
	return doc
}

// Write renders res to w in the given output format.
func Write(w io.Writer, format string, res *rascript.Result) error {
	doc := newDocument(res)
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case config.FormatCSV:
		if err := gocsv.Marshal(doc.Achievements, w); err != nil {
			return fmt.Errorf("failed to encode csv: %w", err)
		}
		return nil
	case config.FormatText, "":
		return writeText(w, doc)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func writeText(w io.Writer, doc document) error {
	var sb strings.Builder
	for _, a := range doc.Achievements {
		fmt.Fprintf(&sb, "Achievement: %s (%d points)\n", a.Title, a.Points)
		if a.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", a.Description)
		}
		fmt.Fprintf(&sb, "  %s\n\n", a.Trigger)
	}
	for _, lb := range doc.Leaderboards {
		fmt.Fprintf(&sb, "Leaderboard: %s (%s)\n", lb.Title, lb.Format)
		if lb.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", lb.Description)
		}
		fmt.Fprintf(&sb, "  %s\n\n", lb.Definition)
	}
	if doc.RichPresence != "" {
		sb.WriteString("Rich Presence:\n")
		sb.WriteString(doc.RichPresence)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
