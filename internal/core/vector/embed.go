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
// holds the two embedders: dense semantic embeddings produced by a hosted
// GenAI embedding model, and sparse BM25-style term weights computed
// locally. Both the indexer and the retriever use the same embedder pair so
// query vectors live in the same space as indexed vectors.
package vector

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"google.golang.org/genai"
)

// DenseEmbedder produces fixed-length semantic embeddings.
type DenseEmbedder interface {
	// Embed returns the dense embedding for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed output dimensionality.
	Dimensions() int
}

// SparseEmbedder produces term-weight vectors. It is deterministic and runs
// locally, so it needs no context or error path.
type SparseEmbedder interface {
	Embed(text string) SparseVector
}

// GenAIEmbedder is the DenseEmbedder backed by a GenAI embedding model.
type GenAIEmbedder struct {
	models *genai.Models
	model  string
	dims   int
}

// NewGenAIEmbedder creates a dense embedder addressing the named embedding
// model with a fixed output dimensionality.
//
// Inputs:
//   - models: The genai model handle used to issue requests.
//   - model: The embedding model name.
//   - dims: The fixed output dimensionality for every embedding.
//
// Outputs:
//   - *GenAIEmbedder: The configured embedder.
func NewGenAIEmbedder(models *genai.Models, model string, dims int) *GenAIEmbedder {
	return &GenAIEmbedder{models: models, model: model, dims: dims}
}

// Dimensions returns the fixed output dimensionality.
func (e *GenAIEmbedder) Dimensions() int {
	return e.dims
}

// Embed computes the dense embedding for text.
//
// Inputs:
//   - ctx: The request context.
//   - text: The text to embed.
//
// Outputs:
//   - []float32: The embedding values, dims long.
//   - error: An error when the API call fails or returns no embedding.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := int32(e.dims)
	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding response for model %s was empty", e.model)
	}
	return resp.Embeddings[0].Values, nil
}

// bm25K1 and bm25B are the standard BM25 shape parameters; bm25AvgLen is
// the assumed average document length in terms, used for length
// normalization in the absence of corpus statistics.
const (
	bm25K1     = 1.2
	bm25B      = 0.75
	bm25AvgLen = 256.0
)

// stopTerms are excluded from sparse vectors; they carry no retrieval
// signal and would dominate term-frequency weights.
var stopTerms = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {},
}

// BM25Embedder computes sparse term-weight vectors. Term indices come from
// an FNV-1a hash of the term, making them stable across processes without a
// shared vocabulary.
type BM25Embedder struct{}

// NewBM25Embedder creates the sparse embedder.
func NewBM25Embedder() *BM25Embedder {
	return &BM25Embedder{}
}

// Embed tokenizes text and returns BM25-weighted term frequencies. The
// output indices are sorted ascending, which the vector store expects.
func (b *BM25Embedder) Embed(text string) SparseVector {
	terms := tokenize(text)
	if len(terms) == 0 {
		return SparseVector{}
	}

	counts := make(map[string]int)
	for _, term := range terms {
		counts[term]++
	}

	docLen := float64(len(terms))
	norm := bm25K1 * (1 - bm25B + bm25B*docLen/bm25AvgLen)

	type weighted struct {
		index uint32
		value float32
	}
	entries := make([]weighted, 0, len(counts))
	for term, count := range counts {
		tf := float64(count)
		entries = append(entries, weighted{
			index: hashTerm(term),
			value: float32(tf * (bm25K1 + 1) / (tf + norm)),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	out := SparseVector{
		Indices: make([]uint32, len(entries)),
		Values:  make([]float32, len(entries)),
	}
	for i, e := range entries {
		out.Indices[i] = e.index
		out.Values[i] = e.value
	}
	return out
}

// tokenize lowercases text and splits it on non-alphanumeric runes,
// dropping stop terms and single characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopTerms[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// hashTerm maps a term to its stable sparse index.
func hashTerm(term string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return h.Sum32()
}
