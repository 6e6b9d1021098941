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
// Command interface. This file defines the command that splits the
// transcript segments into token-bounded chunks. The algorithm itself
// lives in the transcript package; this command adapts it to the chain.
package commands

import (
	"fmt"

	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/transcript"
)

// TranscriptChunker is a command that converts ordered transcript segments
// into token-bounded chunks ready for summarization.
type TranscriptChunker struct {
	cor.BaseCommand
	chunker *transcript.Chunker
}

// NewTranscriptChunker is the constructor for the TranscriptChunker command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - chunker: The configured transcript chunker.
//
// Outputs:
//   - *TranscriptChunker: A pointer to the newly instantiated command.
func NewTranscriptChunker(name string, chunker *transcript.Chunker) *TranscriptChunker {
	return &TranscriptChunker{
		BaseCommand: *cor.NewBaseCommand(name),
		chunker:     chunker,
	}
}

// Execute splits the segments into chunks.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *TranscriptChunker) Execute(context cor.Context) {
	segments, ok := context.Get(c.GetInputParam()).([]model.TranscriptSegment)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("expected transcript segments as input"))
		return
	}

	chunks := c.chunker.Chunk(segments)
	if len(chunks) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("chunking produced no chunks from %d segments", len(segments)))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), chunks)
}
