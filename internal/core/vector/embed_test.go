// Copyright 2025, Clipwise, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vector

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBM25EmbedderIsDeterministic(t *testing.T) {
	embedder := NewBM25Embedder()
	text := "The quarterly budget review covered roadmap and budget topics."

	first := embedder.Embed(text)
	second := embedder.Embed(text)

	assert.Equal(t, first.Indices, second.Indices)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, len(first.Indices), len(first.Values))
}

func TestBM25EmbedderSortsIndices(t *testing.T) {
	embedder := NewBM25Embedder()
	vec := embedder.Embed("alpha bravo charlie delta echo foxtrot")

	assert.True(t, sort.SliceIsSorted(vec.Indices, func(a, b int) bool {
		return vec.Indices[a] < vec.Indices[b]
	}))
}

func TestBM25EmbedderWeightsRepeatedTerms(t *testing.T) {
	embedder := NewBM25Embedder()

	once := embedder.Embed("budget meeting")
	repeated := embedder.Embed("budget budget budget meeting")

	weightOf := func(v SparseVector, term string) float32 {
		idx := hashTerm(term)
		for i, id := range v.Indices {
			if id == idx {
				return v.Values[i]
			}
		}
		return 0
	}

	assert.Greater(t, weightOf(repeated, "budget"), weightOf(once, "budget"))
	// BM25 saturates: triple frequency is well under triple weight.
	assert.Less(t, weightOf(repeated, "budget"), 3*weightOf(once, "budget"))
}

func TestBM25EmbedderDropsStopwordsAndShortTokens(t *testing.T) {
	embedder := NewBM25Embedder()
	vec := embedder.Embed("the and of a I")
	assert.Empty(t, vec.Indices)
}

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	tokens := tokenize("Budget-Review: FY2025, done!")
	assert.Equal(t, []string{"budget", "review", "fy2025", "done"}, tokens)
}
