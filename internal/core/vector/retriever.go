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
// holds the Retriever, which runs ranked hybrid queries and formats their
// results into the context blocks consumed by answer-generation prompts. It
// also exposes the unranked sequence-ordered scan used for whole-video
// summarization.
package vector

import (
	"context"
	"fmt"
	"strings"
)

// contextDivider separates documents within a formatted context block.
const contextDivider = "--------------------"

// Retriever executes hybrid queries with the same embedder pair used at
// indexing time, so query vectors live in the indexed space.
type Retriever struct {
	store  Store
	dense  DenseEmbedder
	sparse SparseEmbedder
	topK   uint64
}

// NewRetriever creates a retriever returning at most topK fused results per
// query.
func NewRetriever(store Store, dense DenseEmbedder, sparse SparseEmbedder, topK uint64) *Retriever {
	if topK == 0 {
		topK = 5
	}
	return &Retriever{store: store, dense: dense, sparse: sparse, topK: topK}
}

// Query embeds text and runs the hybrid search against the collection,
// returning results in fused-rank order.
//
// Inputs:
//   - ctx: The request context.
//   - collection: The per-video collection to search.
//   - text: The query text.
//
// Outputs:
//   - []ScoredPoint: The top results, best first.
//   - error: An error when embedding or the search fails.
func (r *Retriever) Query(ctx context.Context, collection string, text string) ([]ScoredPoint, error) {
	denseVec, err := r.dense.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.store.Query(ctx, collection, denseVec, r.sparse.Embed(text), r.topK)
}

// DocumentContext runs a ranked query and renders the results into the
// structured text block consumed verbatim by the answer-generation prompt.
// Each document carries its type, 4-decimal relevance score, summary,
// topics, and raw text, separated by dividers, in fused-rank order.
//
// Outputs:
//   - string: The formatted context block, empty when nothing matched.
//   - error: An error when the underlying query fails.
func (r *Retriever) DocumentContext(ctx context.Context, collection string, text string) (string, error) {
	results, err := r.Query(ctx, collection, text)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, res := range results {
		b.WriteString(fmt.Sprintf("Type: %s\n", res.Payload.Type))
		b.WriteString(fmt.Sprintf("Relevance: %.4f\n", res.Score))
		b.WriteString(fmt.Sprintf("Summary: %s\n", res.Payload.Summary))
		b.WriteString(fmt.Sprintf("Topics: %s\n", strings.Join(res.Payload.Topics, ", ")))
		b.WriteString(fmt.Sprintf("Text: %s\n", res.Payload.Text))
		b.WriteString(contextDivider + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// SummaryChunks bypasses ranking entirely: it scrolls all points of the
// given type sorted by sequence index, reconstructing chronological order
// for whole-video summarization.
func (r *Retriever) SummaryChunks(ctx context.Context, collection string, chunkType string) ([]Payload, error) {
	return r.store.ScrollByType(ctx, collection, chunkType)
}

// OrderedContext renders the sequence-ordered summaries of the given type
// into the text fed to the whole-video summarization prompt. Each block is
// "[Seq N] summary" plus its topics, joined by blank lines.
func (r *Retriever) OrderedContext(ctx context.Context, collection string, chunkType string) (string, error) {
	payloads, err := r.SummaryChunks(ctx, collection, chunkType)
	if err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(payloads))
	for _, p := range payloads {
		blocks = append(blocks, fmt.Sprintf("[Seq %d] %s\nTopics: %s",
			p.SequenceIndex, p.Summary, strings.Join(p.Topics, ", ")))
	}
	return strings.Join(blocks, "\n\n"), nil
}
