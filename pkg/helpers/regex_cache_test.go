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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexCacheReusesPatterns(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()
	re1 := cache.MustCompile(`byte\((\d+)\)`)
	re2 := cache.MustCompile(`byte\((\d+)\)`)

	assert.Same(t, re1, re2)
	assert.Equal(t, 1, cache.Size())
	assert.Equal(t, []string{"byte(16)", "16"}, re1.FindStringSubmatch("x = byte(16)"))
}

func TestRegexCacheCompileError(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()
	_, err := cache.Compile(`[`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"["`)
	assert.Equal(t, 0, cache.Size())

	assert.Panics(t, func() { cache.MustCompile(`(`) })
}

func TestRegexCacheConcurrent(t *testing.T) {
	t.Parallel()

	cache := NewRegexCache()
	patterns := []string{`a+`, `b+`, `c+`, `d+`}

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			re := cache.MustCompile(patterns[i%len(patterns)])
			assert.NotNil(t, re)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(patterns), cache.Size())
}
