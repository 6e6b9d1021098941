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
// Command interface. This file defines the command that summarizes each
// transcript chunk with a generative model.
//
// Logic Flow:
// One LLM call per chunk, sequential. The prompt carries the chunk's
// timeframe so summaries mention when things happen, plus a few-shot JSON
// example pinning the output schema. A chunk whose response fails to parse
// degrades gracefully: its summary and topics stay empty and the raw text
// is still carried forward, so a flaky model response never sinks the
// batch.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
)

// ChunkSummarizer is a command that produces a SummaryChunk per transcript
// chunk via a generative model.
type ChunkSummarizer struct {
	cor.BaseCommand
	generativeAIModel  *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	promptTemplate     *template.Template                 // The Go template for the per-chunk prompt.
	inputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	outputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	retryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewChunkSummarizer is the constructor for the ChunkSummarizer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - model: The client for the generative AI model.
//   - prompt: The parsed Go template for the prompt.
//
// Outputs:
//   - *ChunkSummarizer: A pointer to the newly instantiated command.
func NewChunkSummarizer(name string, model *cloud.QuotaAwareGenerativeAIModel, prompt *template.Template) *ChunkSummarizer {
	out := &ChunkSummarizer{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt,
	}
	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.token.input", out.GetName()))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.token.output", out.GetName()))
	out.retryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.retry", out.GetName()))
	return out
}

// Execute summarizes each chunk in order.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *ChunkSummarizer) Execute(context cor.Context) {
	chunks, ok := context.Get(c.GetInputParam()).([]model.Chunk)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("expected transcript chunks as input"))
		return
	}

	exampleJson, _ := json.Marshal(model.GetExampleChunkSummary())

	summaries := make([]model.SummaryChunk, 0, len(chunks))
	for i, chunk := range chunks {
		vocabulary := map[string]string{
			"TIME_START":   strconv.FormatFloat(chunk.Start, 'f', -1, 64),
			"TIME_END":     strconv.FormatFloat(chunk.End, 'f', -1, 64),
			"TEXT":         chunk.Text,
			"EXAMPLE_JSON": string(exampleJson),
		}
		var doc bytes.Buffer
		if err := c.promptTemplate.Execute(&doc, vocabulary); err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to render summary prompt: %w", err))
			return
		}

		raw, err := cloud.GenerateMultiModalResponse(
			context.GetContext(),
			c.inputTokenCounter, c.outputTokenCounter, c.retryCounter, 0,
			c.generativeAIModel,
			cloud.NewTextContent(doc.String()))
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("summarization of chunk %d failed: %w", i, err))
			return
		}

		// Parse failures degrade: keep the raw chunk with empty summary and
		// topics rather than aborting the batch.
		var parsed model.ChunkSummaryOutput
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			slog.Warn("chunk summary output failed to parse, keeping raw chunk",
				"chunk", i, "error", err, "raw", raw)
			parsed = model.ChunkSummaryOutput{}
		}

		summaries = append(summaries, model.SummaryChunk{
			Text:    chunk.Text,
			Summary: parsed.Summary,
			Topics:  parsed.Topics,
			Type:    model.ChunkTypeText,
		})
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), summaries)
}
