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
// Command interface. This file defines the command that summarizes the
// time-grouped video frames with a vision model.
//
// Logic Flow:
// This is the most expensive stage of ingestion, so the frame groups are
// processed by a bounded worker pool rather than serially:
//  1. A jobs channel distributes one job per frame group to a fixed number
//     of worker goroutines; a results channel collects their output.
//  2. Within a group, each frame gets one vision call producing a textual
//     description (sequential within the group; the pool provides the
//     parallelism across groups). A frame whose call fails is logged and
//     skipped.
//  3. The group's descriptions are concatenated and one synthesis call
//     produces the group's overall summary and topics.
//  4. A whole group failing is logged and counted but does not abort the
//     batch; the next group proceeds. Only zero successful groups is a
//     hard failure.
//  5. Results are reassembled in group order so the sequence index assigned
//     at indexing time reflects chronology.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
)

// FrameSummarizer is a command that turns frame group directories into
// image-type summary chunks using a vision model.
type FrameSummarizer struct {
	cor.BaseCommand
	visionModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited vision model client.
	describeTemplate   *template.Template                 // Prompt template for a single frame description.
	synthesisTemplate  *template.Template                 // Prompt template combining a group's descriptions.
	numberOfWorkers    int                                // The number of concurrent group workers.
	inputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	outputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	retryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewFrameSummarizer is the constructor for the FrameSummarizer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - visionModel: The client for the vision-capable generative model.
//   - describePrompt: The parsed template for per-frame descriptions.
//   - synthesisPrompt: The parsed template for the group synthesis call.
//   - numberOfWorkers: The size of the worker pool across frame groups.
//
// Outputs:
//   - *FrameSummarizer: A pointer to the newly instantiated command.
func NewFrameSummarizer(
	name string,
	visionModel *cloud.QuotaAwareGenerativeAIModel,
	describePrompt *template.Template,
	synthesisPrompt *template.Template,
	numberOfWorkers int) *FrameSummarizer {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	out := &FrameSummarizer{
		BaseCommand:       *cor.NewBaseCommand(name),
		visionModel:       visionModel,
		describeTemplate:  describePrompt,
		synthesisTemplate: synthesisPrompt,
		numberOfWorkers:   numberOfWorkers,
	}
	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.token.input", out.GetName()))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.token.output", out.GetName()))
	out.retryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.retry", out.GetName()))
	return out
}

// frameGroupJob is one unit of work for the pool: a frame group directory
// and its position in the batch.
type frameGroupJob struct {
	index    int
	groupDir string
}

// frameGroupResult carries a worker's output back to Execute.
type frameGroupResult struct {
	index    int
	groupDir string
	chunk    model.SummaryChunk
	err      error
}

// Execute fans the frame groups out over the worker pool and reassembles
// the results in group order.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *FrameSummarizer) Execute(context cor.Context) {
	groupDirs, ok := context.Get(c.GetInputParam()).([]string)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("expected frame group directories as input"))
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan *frameGroupJob, len(groupDirs))
	results := make(chan *frameGroupResult, len(groupDirs))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				chunk, err := c.summarizeGroup(context, j.groupDir)
				results <- &frameGroupResult{index: j.index, groupDir: j.groupDir, chunk: chunk, err: err}
			}
		}()
	}

	for i, dir := range groupDirs {
		jobs <- &frameGroupJob{index: i, groupDir: dir}
	}
	close(jobs)
	wg.Wait()
	close(results)

	collected := make([]*frameGroupResult, 0, len(groupDirs))
	failed := 0
	for r := range results {
		if r.err != nil {
			// One group failing must not sink the batch.
			failed++
			slog.Error("frame group summarization failed, skipping group",
				"group", r.groupDir, "error", r.err)
			continue
		}
		collected = append(collected, r)
	}
	sort.Slice(collected, func(a, b int) bool { return collected[a].index < collected[b].index })

	if len(collected) == 0 && len(groupDirs) > 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("all %d frame groups failed to summarize", len(groupDirs)))
		return
	}

	chunks := make([]model.SummaryChunk, 0, len(collected))
	for _, r := range collected {
		chunks = append(chunks, r.chunk)
	}

	if failed > 0 {
		slog.Warn("frame summarization finished with partial failures",
			"succeeded", len(chunks), "failed", failed)
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), chunks)
}

// summarizeGroup describes each frame in the group, then synthesizes one
// summary chunk for the whole group.
func (c *FrameSummarizer) summarizeGroup(context cor.Context, groupDir string) (model.SummaryChunk, error) {
	var groupStart, groupEnd int
	if _, err := fmt.Sscanf(filepath.Base(groupDir), FrameGroupDirFormat, &groupStart, &groupEnd); err != nil {
		return model.SummaryChunk{}, fmt.Errorf("unrecognized frame group directory %s: %w", groupDir, err)
	}
	timeframe := fmt.Sprintf("%d-%ds", groupStart, groupEnd)

	entries, err := os.ReadDir(groupDir)
	if err != nil {
		return model.SummaryChunk{}, fmt.Errorf("failed to read frame group %s: %w", groupDir, err)
	}
	frames := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			frames = append(frames, e.Name())
		}
	}
	sort.Strings(frames)
	if len(frames) == 0 {
		return model.SummaryChunk{}, fmt.Errorf("frame group %s is empty", groupDir)
	}

	var describePrompt bytes.Buffer
	if err := c.describeTemplate.Execute(&describePrompt, map[string]string{"TIMEFRAME": timeframe}); err != nil {
		return model.SummaryChunk{}, fmt.Errorf("failed to render frame prompt: %w", err)
	}

	// One vision call per frame, sequential within the group.
	var descriptions strings.Builder
	described := 0
	for i, frame := range frames {
		data, err := os.ReadFile(filepath.Join(groupDir, frame))
		if err != nil {
			slog.Warn("failed to read frame, skipping", "frame", frame, "error", err)
			continue
		}
		content := []*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: describePrompt.String()},
				cloud.NewInlineImage(data, "image/jpeg"),
			},
		}}
		out, err := cloud.GenerateMultiModalResponse(
			context.GetContext(),
			c.inputTokenCounter, c.outputTokenCounter, c.retryCounter, 0,
			c.visionModel, content)
		if err != nil {
			slog.Warn("frame description failed, skipping frame",
				"group", groupDir, "frame", frame, "error", err)
			continue
		}
		fmt.Fprintf(&descriptions, "Frame %d: %s\n", i+1, strings.TrimSpace(out))
		described++
	}
	if described == 0 {
		return model.SummaryChunk{}, fmt.Errorf("no frame in group %s could be described", groupDir)
	}

	exampleJson, _ := json.Marshal(model.GetExampleChunkSummary())
	var synthesisPrompt bytes.Buffer
	err = c.synthesisTemplate.Execute(&synthesisPrompt, map[string]string{
		"TIMEFRAME":    timeframe,
		"DESCRIPTIONS": descriptions.String(),
		"EXAMPLE_JSON": string(exampleJson),
	})
	if err != nil {
		return model.SummaryChunk{}, fmt.Errorf("failed to render synthesis prompt: %w", err)
	}

	raw, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.inputTokenCounter, c.outputTokenCounter, c.retryCounter, 0,
		c.visionModel,
		cloud.NewTextContent(synthesisPrompt.String()))
	if err != nil {
		return model.SummaryChunk{}, fmt.Errorf("group synthesis failed: %w", err)
	}

	var parsed model.ChunkSummaryOutput
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		slog.Warn("group synthesis output failed to parse, keeping raw descriptions",
			"group", groupDir, "error", err, "raw", raw)
		parsed = model.ChunkSummaryOutput{}
	}

	return model.SummaryChunk{
		Text:    descriptions.String(),
		Summary: parsed.Summary,
		Topics:  parsed.Topics,
		Type:    model.ChunkTypeImage,
	}, nil
}
