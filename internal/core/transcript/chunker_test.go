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

package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipwise/video-insight/internal/core/model"
)

// wordCounter forces the deterministic whitespace fallback so test budgets
// are exact word counts regardless of the tokenizer tables being available.
func wordCounter() *TokenCounter {
	return NewTokenCounter("no-such-encoding")
}

func TestChunkerMergesSegmentsWithinBudget(t *testing.T) {
	chunker := NewChunker(10, wordCounter())
	segments := []model.TranscriptSegment{
		{TimeframeKey: "0-5s", Text: "Hello", Start: 0, End: 5},
		{TimeframeKey: "5-10s", Text: "world test", Start: 5, End: 10},
	}

	chunks := chunker.Chunk(segments)

	assert.Equal(t, 1, len(chunks))
	assert.Equal(t, "Hello world test", chunks[0].Text)
	assert.Equal(t, []string{"0-5s", "5-10s"}, chunks[0].Groups)
	assert.Equal(t, 0.0, chunks[0].Start)
	assert.Equal(t, 10.0, chunks[0].End)
}

func TestChunkerFlushesWhenBudgetExceeded(t *testing.T) {
	chunker := NewChunker(3, wordCounter())
	segments := []model.TranscriptSegment{
		{TimeframeKey: "0-5s", Text: "one two three", Start: 0, End: 5},
		{TimeframeKey: "5-10s", Text: "four five six", Start: 5, End: 10},
	}

	chunks := chunker.Chunk(segments)

	assert.Equal(t, 2, len(chunks))
	assert.Equal(t, "one two three", chunks[0].Text)
	assert.Equal(t, "four five six", chunks[1].Text)
	assert.Equal(t, []string{"0-5s"}, chunks[0].Groups)
	assert.Equal(t, []string{"5-10s"}, chunks[1].Groups)
}

func TestChunkerSortsUnorderedSegments(t *testing.T) {
	chunker := NewChunker(100, wordCounter())
	segments := []model.TranscriptSegment{
		{TimeframeKey: "10-15s", Text: "later", Start: 10, End: 15},
		{TimeframeKey: "0-5s", Text: "first", Start: 0, End: 5},
		{TimeframeKey: "5-10s", Text: "middle", Start: 5, End: 10},
	}

	chunks := chunker.Chunk(segments)

	assert.Equal(t, 1, len(chunks))
	assert.Equal(t, "first middle later", chunks[0].Text)
	assert.Equal(t, []string{"0-5s", "5-10s", "10-15s"}, chunks[0].Groups)
}

func TestChunkerSplitsOversizedSegment(t *testing.T) {
	chunker := NewChunker(4, wordCounter())
	segments := []model.TranscriptSegment{
		{
			TimeframeKey: "0-30s",
			Text:         "one two three four. five six seven eight. nine ten",
			Start:        0,
			End:          30,
		},
	}

	chunks := chunker.Chunk(segments)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		// Every piece respects the budget and carries a sub-part group id.
		assert.LessOrEqual(t, len(strings.Fields(c.Text)), 4)
		assert.Equal(t, 1, len(c.Groups))
		assert.Contains(t, c.Groups[0], "0-30s#part")
		assert.Equal(t, 0.0, c.Start)
		assert.Equal(t, 30.0, c.End)
	}

	// No word is dropped or duplicated by the split.
	var words []string
	for _, c := range chunks {
		words = append(words, strings.Fields(c.Text)...)
	}
	original := strings.Fields(strings.ReplaceAll(segments[0].Text, ". ", " "))
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		cleaned = append(cleaned, strings.TrimSuffix(w, "."))
	}
	trimmedOriginal := make([]string, 0, len(original))
	for _, w := range original {
		trimmedOriginal = append(trimmedOriginal, strings.TrimSuffix(w, "."))
	}
	assert.Equal(t, trimmedOriginal, cleaned)
}

func TestChunkerStartTimesNonDecreasing(t *testing.T) {
	chunker := NewChunker(2, wordCounter())
	segments := []model.TranscriptSegment{
		{TimeframeKey: "0-5s", Text: "a b", Start: 0, End: 5},
		{TimeframeKey: "5-10s", Text: "c d", Start: 5, End: 10},
		{TimeframeKey: "10-15s", Text: "e f", Start: 10, End: 15},
	}

	chunks := chunker.Chunk(segments)

	assert.Equal(t, 3, len(chunks))
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].Start, chunks[i-1].Start)
	}
}

func TestChunkerEmptyInput(t *testing.T) {
	chunker := NewChunker(10, wordCounter())
	assert.Empty(t, chunker.Chunk(nil))
}
