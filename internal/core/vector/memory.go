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
// holds the in-memory Store implementation used in tests and local
// development. It mirrors the Qdrant semantics: cosine similarity on the
// dense branch, dot product on the sparse branch, and Reciprocal Rank
// Fusion across the two candidate lists.
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// rrfK is the standard RRF rank damping constant.
const rrfK = 60.0

type memCollection struct {
	dims   uint64
	order  []string // Insertion order, for stable iteration.
	points map[string]Point
}

// MemoryStore is an in-process Store backed by maps.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

// EnsureCollection creates the collection if absent.
func (s *MemoryStore) EnsureCollection(_ context.Context, name string, denseDims uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = &memCollection{
			dims:   denseDims,
			points: make(map[string]Point),
		}
	}
	return nil
}

// Upsert writes the points, replacing any existing point with the same id.
func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	for _, p := range points {
		if _, exists := col.points[p.ID]; !exists {
			col.order = append(col.order, p.ID)
		}
		col.points[p.ID] = p
	}
	return nil
}

// Query ranks the dense and sparse branches independently, fuses them with
// RRF, and returns the top points in fused order. Ties break on point id so
// repeated queries against an unchanged index return the same order.
func (s *MemoryStore) Query(_ context.Context, collection string, dense []float32, sparse SparseVector, limit uint64) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	denseRank := rankBy(col, func(p Point) float64 { return cosine(dense, p.Dense) }, limit)
	sparseRank := rankBy(col, func(p Point) float64 { return sparseDot(sparse, p.Sparse) }, limit)

	fused := make(map[string]float64)
	for rank, id := range denseRank {
		fused[id] += 1.0 / (rrfK + float64(rank+1))
	}
	for rank, id := range sparseRank {
		fused[id] += 1.0 / (rrfK + float64(rank+1))
	}

	ids := make([]string, 0, len(fused))
	for id := range fused {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if fused[ids[a]] != fused[ids[b]] {
			return fused[ids[a]] > fused[ids[b]]
		}
		return ids[a] < ids[b]
	})

	if uint64(len(ids)) > limit {
		ids = ids[:limit]
	}
	out := make([]ScoredPoint, 0, len(ids))
	for _, id := range ids {
		out = append(out, ScoredPoint{
			ID:      id,
			Score:   float32(fused[id]),
			Payload: col.points[id].Payload,
		})
	}
	return out, nil
}

// ScrollByType returns all payloads of the given type in sequence order.
func (s *MemoryStore) ScrollByType(_ context.Context, collection string, chunkType string) ([]Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}
	out := make([]Payload, 0)
	for _, id := range col.order {
		if p := col.points[id]; p.Payload.Type == chunkType {
			out = append(out, p.Payload)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].SequenceIndex < out[b].SequenceIndex
	})
	return out, nil
}

// DeleteCollection removes the named collection. Removing an absent
// collection is a no-op.
func (s *MemoryStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Collections lists all existing collection names.
func (s *MemoryStore) Collections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// rankBy scores every point with score and returns the ids of the top
// points, best first. Zero or negative scores still rank; an empty
// collection ranks nothing.
func rankBy(col *memCollection, score func(Point) float64, limit uint64) []string {
	type scored struct {
		id    string
		value float64
	}
	entries := make([]scored, 0, len(col.points))
	for _, id := range col.order {
		entries = append(entries, scored{id: id, value: score(col.points[id])})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].value != entries[b].value {
			return entries[a].value > entries[b].value
		}
		return entries[a].id < entries[b].id
	})
	if uint64(len(entries)) > limit {
		entries = entries[:limit]
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// cosine computes cosine similarity between two dense vectors, zero when
// either has no magnitude.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sparseDot computes the dot product of two sparse vectors.
func sparseDot(a, b SparseVector) float64 {
	weights := make(map[uint32]float32, len(a.Indices))
	for i, idx := range a.Indices {
		weights[idx] = a.Values[i]
	}
	var dot float64
	for i, idx := range b.Indices {
		if w, ok := weights[idx]; ok {
			dot += float64(w) * float64(b.Values[i])
		}
	}
	return dot
}
