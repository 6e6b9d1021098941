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

// Package vector implements hybrid (dense + sparse) retrieval over a vector
// database. One collection exists per processed video, carrying a named
// dense slot (cosine distance, fixed dimensionality) and a named sparse
// slot (term weights). Ranked queries fuse the two branches with Reciprocal
// Rank Fusion; a separate scroll path reads all points of one type in
// sequence order for chronological summarization.
//
// This file defines the Store contract and the point/payload types shared
// by the Qdrant implementation and the in-memory implementation.
package vector

import "context"

// Named vector slots within every collection.
const (
	DenseVectorName  = "dense_embedding"
	SparseVectorName = "sparse_embedding"
)

// SparseVector is a term-weight vector: parallel slices of term indices and
// their weights. Indices are stable across indexing and querying because
// they derive from a hash of the term itself.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// Payload is the metadata stored alongside each point. SequenceIndex
// preserves chunk order so chronological reconstruction is possible
// independent of retrieval ranking.
type Payload struct {
	Text          string   `json:"text"`
	Summary       string   `json:"summary"`
	Topics        []string `json:"topics"`
	Type          string   `json:"type"`
	SequenceIndex int      `json:"sequence_index"`
}

// Point is one indexable unit: an id, both vector representations, and the
// payload.
type Point struct {
	ID      string
	Dense   []float32
	Sparse  SparseVector
	Payload Payload
}

// ScoredPoint is a query result: the fused relevance score plus the stored
// payload.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload Payload
}

// Store is the hybrid vector database contract. Implementations must treat
// EnsureCollection as idempotent and must fuse Query results across the
// dense and sparse branches with RRF.
type Store interface {
	// EnsureCollection creates the named collection with the given dense
	// dimensionality if it does not already exist. A no-op when present.
	EnsureCollection(ctx context.Context, name string, denseDims uint64) error

	// Upsert writes the points into the collection in a single bulk call.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query runs a hybrid search: the sparse and dense branches are each
	// independently limited, then fused with Reciprocal Rank Fusion. Results
	// are returned in fused-rank order, best first.
	Query(ctx context.Context, collection string, dense []float32, sparse SparseVector, limit uint64) ([]ScoredPoint, error)

	// ScrollByType returns the payloads of all points whose type matches,
	// sorted by SequenceIndex ascending. This bypasses ranking entirely.
	ScrollByType(ctx context.Context, collection string, chunkType string) ([]Payload, error)

	// DeleteCollection removes the named collection and all of its points.
	DeleteCollection(ctx context.Context, name string) error

	// Collections lists the names of all existing collections.
	Collections(ctx context.Context) ([]string, error)

	// Close releases the connection to the backing store.
	Close() error
}
