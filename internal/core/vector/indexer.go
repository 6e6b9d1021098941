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

// Package vector implements hybrid (dense + sparse) retrieval. This file
// holds the Indexer, which converts summarized chunks into hybrid index
// points and upserts them into a per-video collection.
package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/clipwise/video-insight/internal/core/model"
)

// Indexer embeds summary chunks and writes them into the vector store.
type Indexer struct {
	store  Store
	dense  DenseEmbedder
	sparse SparseEmbedder
}

// NewIndexer creates an indexer over the given store and embedder pair.
func NewIndexer(store Store, dense DenseEmbedder, sparse SparseEmbedder) *Indexer {
	return &Indexer{store: store, dense: dense, sparse: sparse}
}

// Index embeds and upserts the chunks into the named collection.
//
// The collection is created if absent. Per-chunk embedding failures are
// logged and skipped so one bad chunk cannot sink the batch; the payload's
// sequence index still reflects the chunk's position in the input so
// chronological order survives skips. Only a total failure, zero points
// built, is escalated as an error. The upsert itself is one bulk call with
// no partial-retry logic.
//
// Inputs:
//   - ctx: The request context.
//   - collection: The per-video collection name.
//   - chunks: The summarized chunks to index, in chronological order.
//
// Outputs:
//   - int: The number of points successfully indexed.
//   - error: An error when no point could be built or the upsert failed.
func (ix *Indexer) Index(ctx context.Context, collection string, chunks []model.SummaryChunk) (int, error) {
	if err := ix.store.EnsureCollection(ctx, collection, uint64(ix.dense.Dimensions())); err != nil {
		return 0, err
	}

	points := make([]Point, 0, len(chunks))
	failed := 0
	for i, chunk := range chunks {
		text := chunk.EmbeddingText()

		denseVec, err := ix.dense.Embed(ctx, text)
		if err != nil {
			failed++
			slog.Error("failed to embed chunk, skipping",
				"collection", collection, "sequence_index", i, "error", err)
			continue
		}

		points = append(points, Point{
			ID:     uuid.NewString(),
			Dense:  denseVec,
			Sparse: ix.sparse.Embed(text),
			Payload: Payload{
				Text:          chunk.Text,
				Summary:       chunk.Summary,
				Topics:        chunk.Topics,
				Type:          chunk.Type,
				SequenceIndex: i,
			},
		})
	}

	if len(points) == 0 {
		return 0, fmt.Errorf("indexing into %s failed: none of the %d chunks produced a point", collection, len(chunks))
	}

	if err := ix.store.Upsert(ctx, collection, points); err != nil {
		return 0, err
	}

	if failed > 0 {
		slog.Warn("indexed batch with partial failures",
			"collection", collection, "indexed", len(points), "failed", failed)
	}
	return len(points), nil
}
