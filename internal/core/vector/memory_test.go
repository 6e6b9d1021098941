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
	"testing"

	"github.com/stretchr/testify/assert"
)

func seedCollection(t *testing.T, store *MemoryStore) {
	t.Helper()
	ctx := context.Background()
	assert.NoError(t, store.EnsureCollection(ctx, "demo", 3))
	points := []Point{
		{
			ID:     "a",
			Dense:  []float32{1, 0, 0},
			Sparse: SparseVector{Indices: []uint32{1, 2}, Values: []float32{1, 0.5}},
			Payload: Payload{
				Text: "opening remarks", Summary: "the opening",
				Topics: []string{"intro"}, Type: "txt", SequenceIndex: 0,
			},
		},
		{
			ID:     "b",
			Dense:  []float32{0, 1, 0},
			Sparse: SparseVector{Indices: []uint32{3}, Values: []float32{1}},
			Payload: Payload{
				Text: "budget discussion", Summary: "the budget",
				Topics: []string{"finance"}, Type: "txt", SequenceIndex: 1,
			},
		},
		{
			ID:     "c",
			Dense:  []float32{0, 0, 1},
			Sparse: SparseVector{Indices: []uint32{1}, Values: []float32{0.2}},
			Payload: Payload{
				Text: "slide of the roadmap", Summary: "a roadmap slide",
				Topics: []string{"roadmap"}, Type: "img", SequenceIndex: 0,
			},
		},
	}
	assert.NoError(t, store.Upsert(ctx, "demo", points))
}

func TestMemoryStoreScrollByTypeFiltersAndOrders(t *testing.T) {
	store := NewMemoryStore()
	seedCollection(t, store)

	txt, err := store.ScrollByType(context.Background(), "demo", "txt")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(txt))
	assert.Equal(t, "the opening", txt[0].Summary)
	assert.Equal(t, "the budget", txt[1].Summary)

	img, err := store.ScrollByType(context.Background(), "demo", "img")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(img))
	assert.Equal(t, "a roadmap slide", img[0].Summary)
}

func TestMemoryStoreQueryPrefersMatchingBranches(t *testing.T) {
	store := NewMemoryStore()
	seedCollection(t, store)

	// Dense vector aligned with point a, sparse terms matching a too.
	results, err := store.Query(context.Background(), "demo",
		[]float32{1, 0, 0},
		SparseVector{Indices: []uint32{1, 2}, Values: []float32{1, 1}},
		3)
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Equal(t, "a", results[0].ID)
}

func TestMemoryStoreQueryIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	seedCollection(t, store)

	query := func() []string {
		results, err := store.Query(context.Background(), "demo",
			[]float32{0.5, 0.5, 0},
			SparseVector{Indices: []uint32{1, 3}, Values: []float32{1, 1}},
			3)
		assert.NoError(t, err)
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.ID
		}
		return ids
	}

	first := query()
	// Same query against an unchanged index returns the same order.
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, query())
	}
}

func TestMemoryStoreUpsertReplacesById(t *testing.T) {
	store := NewMemoryStore()
	seedCollection(t, store)

	replacement := []Point{{
		ID:      "a",
		Dense:   []float32{1, 0, 0},
		Sparse:  SparseVector{},
		Payload: Payload{Text: "revised", Type: "txt", SequenceIndex: 0},
	}}
	assert.NoError(t, store.Upsert(context.Background(), "demo", replacement))

	txt, err := store.ScrollByType(context.Background(), "demo", "txt")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(txt))
	assert.Equal(t, "revised", txt[0].Text)
}

func TestMemoryStoreDeleteCollection(t *testing.T) {
	store := NewMemoryStore()
	seedCollection(t, store)

	assert.NoError(t, store.DeleteCollection(context.Background(), "demo"))
	_, err := store.ScrollByType(context.Background(), "demo", "txt")
	assert.Error(t, err)

	names, err := store.Collections(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStoreQueryUnknownCollection(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Query(context.Background(), "missing", []float32{1}, SparseVector{}, 5)
	assert.Error(t, err)
}
