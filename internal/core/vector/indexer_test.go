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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipwise/video-insight/internal/core/model"
)

// stubDenseEmbedder hashes the text into a tiny deterministic vector and
// fails for any text containing its poison marker.
type stubDenseEmbedder struct {
	poison string
}

func (s *stubDenseEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.poison != "" && strings.Contains(text, s.poison) {
		return nil, fmt.Errorf("embedding refused for test")
	}
	return []float32{float32(len(text) % 7), 1, 0}, nil
}

func (s *stubDenseEmbedder) Dimensions() int { return 3 }

func sampleChunks() []model.SummaryChunk {
	return []model.SummaryChunk{
		{Text: "opening remarks", Summary: "the opening", Topics: []string{"intro"}, Type: model.ChunkTypeText},
		{Text: "budget discussion", Summary: "the budget", Topics: []string{"finance"}, Type: model.ChunkTypeText},
		{Text: "closing notes", Summary: "the close", Topics: []string{"wrap-up"}, Type: model.ChunkTypeText},
	}
}

func TestIndexerRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	indexer := NewIndexer(store, &stubDenseEmbedder{}, NewBM25Embedder())

	count, err := indexer.Index(context.Background(), "demo", sampleChunks())
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	payloads, err := store.ScrollByType(context.Background(), "demo", model.ChunkTypeText)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(payloads))
	// Chronological order survives the round trip.
	assert.Equal(t, "the opening", payloads[0].Summary)
	assert.Equal(t, "the budget", payloads[1].Summary)
	assert.Equal(t, "the close", payloads[2].Summary)
	assert.Equal(t, 0, payloads[0].SequenceIndex)
	assert.Equal(t, 2, payloads[2].SequenceIndex)
}

func TestIndexerSkipsFailingChunk(t *testing.T) {
	store := NewMemoryStore()
	indexer := NewIndexer(store, &stubDenseEmbedder{poison: "budget"}, NewBM25Embedder())

	count, err := indexer.Index(context.Background(), "demo", sampleChunks())
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	payloads, err := store.ScrollByType(context.Background(), "demo", model.ChunkTypeText)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(payloads))
	// The surviving chunks keep their original positions.
	assert.Equal(t, 0, payloads[0].SequenceIndex)
	assert.Equal(t, 2, payloads[1].SequenceIndex)
	assert.Equal(t, "the close", payloads[1].Summary)
}

func TestIndexerFailsWhenNothingIndexes(t *testing.T) {
	store := NewMemoryStore()
	indexer := NewIndexer(store, &stubDenseEmbedder{poison: "the"}, NewBM25Embedder())

	chunks := []model.SummaryChunk{
		{Text: "x", Summary: "the summary", Type: model.ChunkTypeText},
	}
	_, err := indexer.Index(context.Background(), "demo", chunks)
	assert.Error(t, err)
}
