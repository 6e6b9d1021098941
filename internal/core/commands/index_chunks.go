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

// Package commands provides the concrete implementations of the COR
// Command interface. This file defines the command that indexes summary
// chunks into the video's vector collection. The ingestion chain runs two
// instances of it: one after transcript summarization and one after frame
// summarization.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/vector"
)

// ChunkIndexer is a command that upserts summary chunks into the vector
// store via the hybrid indexer.
type ChunkIndexer struct {
	cor.BaseCommand
	indexer *vector.Indexer
}

// NewChunkIndexer is the constructor for the ChunkIndexer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - indexer: The hybrid indexer to write through.
//
// Outputs:
//   - *ChunkIndexer: A pointer to the newly instantiated command.
func NewChunkIndexer(name string, indexer *vector.Indexer) *ChunkIndexer {
	return &ChunkIndexer{
		BaseCommand: *cor.NewBaseCommand(name),
		indexer:     indexer,
	}
}

// IsExecutable additionally requires the collection name side key, which
// the workflow seeds before the chain starts.
func (c *ChunkIndexer) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(ParamCollectionName) != nil
}

// Execute indexes the chunks into the collection named in the context.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *ChunkIndexer) Execute(context cor.Context) {
	chunks, ok := context.Get(c.GetInputParam()).([]model.SummaryChunk)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("expected summary chunks as input"))
		return
	}
	collection := fmt.Sprint(context.Get(ParamCollectionName))

	count, err := c.indexer.Index(context.GetContext(), collection, chunks)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	slog.Info("indexed summary chunks", "collection", collection, "count", count)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), count)
}
