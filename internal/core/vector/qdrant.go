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
// holds the production Store implementation backed by Qdrant over gRPC.
// Hybrid queries use Qdrant's prefetch mechanism: the sparse and dense
// branches run server-side as independent candidate lists, fused with RRF
// by the query engine.
package vector

import (
	"context"
	"fmt"
	"sort"

	"github.com/qdrant/go-client/qdrant"
)

// scrollPageSize bounds how many points one scroll request returns.
const scrollPageSize = 256

// QdrantConfig holds the connection settings for the Qdrant endpoint.
type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// QdrantStore is the Store implementation backed by a Qdrant instance.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore connects to Qdrant and returns the store.
//
// Inputs:
//   - ctx: Context for the connection setup.
//   - cfg: Connection settings.
//
// Outputs:
//   - *QdrantStore: The connected store.
//   - error: An error when the gRPC channel cannot be established.
func NewQdrantStore(_ context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &QdrantStore{client: client}, nil
}

// EnsureCollection creates the collection with the named dense and sparse
// slots if it does not already exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, name string, denseDims uint64) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", name, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			DenseVectorName: {
				Size:     denseDims,
				Distance: qdrant.Distance_Cosine,
			},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			SparseVectorName: {},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes the points in a single bulk call, waiting for the write to
// be applied so subsequent queries see the new points.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		topics := make([]any, 0, len(p.Payload.Topics))
		for _, t := range p.Payload.Topics {
			topics = append(topics, t)
		}
		structs = append(structs, &qdrant.PointStruct{
			Id: qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				DenseVectorName:  qdrant.NewVector(p.Dense...),
				SparseVectorName: qdrant.NewVectorSparse(p.Sparse.Indices, p.Sparse.Values),
			}),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":           p.Payload.Text,
				"summary":        p.Payload.Summary,
				"topics":         topics,
				"type":           p.Payload.Type,
				"sequence_index": int64(p.Payload.SequenceIndex),
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         structs,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

// Query runs the hybrid search. Each prefetch branch is independently
// limited to the final limit; the server fuses the branch rankings with
// Reciprocal Rank Fusion.
func (s *QdrantStore) Query(ctx context.Context, collection string, dense []float32, sparse SparseVector, limit uint64) ([]ScoredPoint, error) {
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query: qdrant.NewQuerySparse(sparse.Indices, sparse.Values),
				Using: qdrant.PtrOf(SparseVectorName),
				Limit: qdrant.PtrOf(limit),
			},
			{
				Query: qdrant.NewQueryDense(dense),
				Using: qdrant.PtrOf(DenseVectorName),
				Limit: qdrant.PtrOf(limit),
			},
		},
		Query:       qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:       qdrant.PtrOf(limit),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid query against %s failed: %w", collection, err)
	}

	out := make([]ScoredPoint, 0, len(results))
	for _, r := range results {
		out = append(out, ScoredPoint{
			ID:      r.GetId().GetUuid(),
			Score:   r.GetScore(),
			Payload: payloadFromValues(r.GetPayload()),
		})
	}
	return out, nil
}

// ScrollByType reads all points of the given type, unranked, and sorts them
// by sequence index to reconstruct chronological order.
func (s *QdrantStore) ScrollByType(ctx context.Context, collection string, chunkType string) ([]Payload, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("type", chunkType),
		},
	}

	// The raw points client is used instead of the Scroll helper because
	// the helper drops next_page_offset, which pagination needs.
	payloads := make([]Payload, 0)
	var offset *qdrant.PointId
	for {
		resp, err := s.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter:         filter,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll of %s points in %s failed: %w", chunkType, collection, err)
		}
		for _, p := range resp.GetResult() {
			payloads = append(payloads, payloadFromValues(p.GetPayload()))
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sort.SliceStable(payloads, func(a, b int) bool {
		return payloads[a].SequenceIndex < payloads[b].SequenceIndex
	})
	return payloads, nil
}

// DeleteCollection removes the named collection.
func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}

// Collections lists all existing collection names.
func (s *QdrantStore) Collections(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// Close tears down the gRPC channel.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// payloadFromValues converts a Qdrant payload map back into a Payload.
func payloadFromValues(values map[string]*qdrant.Value) Payload {
	p := Payload{
		Text:          values["text"].GetStringValue(),
		Summary:       values["summary"].GetStringValue(),
		Type:          values["type"].GetStringValue(),
		SequenceIndex: int(values["sequence_index"].GetIntegerValue()),
	}
	if list := values["topics"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			p.Topics = append(p.Topics, v.GetStringValue())
		}
	}
	return p
}
