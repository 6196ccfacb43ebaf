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

package helpers

import (
	"sort"

	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
)

// minSuggestSimilarity is the Jaro-Winkler score a name needs to be
// offered as a suggestion.
const minSuggestSimilarity = 0.8

// Suggestion is a known name close to an unknown one.
type Suggestion struct {
	Name       string
	Similarity float32
}

// FindSuggestions returns candidates similar to query using Jaro-Winkler
// similarity, best first. Ties are broken by Damerau-Levenshtein
// distance so transposed letters rank well.
func FindSuggestions(query string, candidates []string) []Suggestion {
	var matches []Suggestion
	seen := make(map[string]bool, len(candidates))

	for _, candidate := range candidates {
		if candidate == query || seen[candidate] {
			continue
		}
		seen[candidate] = true

		similarity := edlib.JaroWinklerSimilarity(query, candidate)
		if similarity > 0.7 {
			log.Trace().
				Str("query", query).
				Str("candidate", candidate).
				Float32("similarity", similarity).
				Msg("suggestion candidate")
		}
		if similarity >= minSuggestSimilarity {
			matches = append(matches, Suggestion{Name: candidate, Similarity: similarity})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		di := edlib.DamerauLevenshteinDistance(query, matches[i].Name)
		dj := edlib.DamerauLevenshteinDistance(query, matches[j].Name)
		if di != dj {
			return di < dj
		}
		return matches[i].Name < matches[j].Name
	})

	return matches
}

// DidYouMean returns the best suggestion for query, if any.
func DidYouMean(query string, candidates []string) (string, bool) {
	matches := FindSuggestions(query, candidates)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Name, true
}
