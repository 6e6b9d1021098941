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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into coherent pipelines. This file implements the
// video ingestion workflow: the full pipeline from an uploaded video to a
// queryable vector collection.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/commands"
	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/core/transcript"
	"github.com/clipwise/video-insight/internal/core/vector"
)

// timestampPrefix matches the "<unix>_" prefix the upload handler adds to
// stored filenames. Collection names strip it so re-uploads of the same
// video land in the same collection.
var timestampPrefix = regexp.MustCompile(`^\d{10,13}_`)

// CollectionName derives the vector collection name for a video: the base
// filename, extension and timestamp prefix stripped. This name is the join
// key between transcript-derived and frame-derived points.
func CollectionName(videoPath string) string {
	name := commands.VideoBaseName(videoPath)
	name = timestampPrefix.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

// VideoIngestionWorkflow orchestrates the entire process of turning an
// uploaded video into a queryable collection. It is structured as a Chain
// of Responsibility executing the pipeline:
//
//	extract audio -> transcribe -> chunk -> summarize chunks -> index
//	-> extract frames -> summarize frames -> index
//
// On success the owning session is registered against the new collection so
// the retrieval agents can resolve it.
type VideoIngestionWorkflow struct {
	cor.BaseCommand
	config            *cloud.Config
	serviceClients    *cloud.ServiceClients
	registry          *services.SessionRegistry
	summaryTemplate   *template.Template
	describeTemplate  *template.Template
	synthesisTemplate *template.Template
	chain             cor.Chain
}

// Execute runs the ingestion chain against the given context.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *VideoIngestionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run processes one video end to end for a session. It builds the chain
// context, seeds the video path and collection name, executes the chain,
// and registers the session binding on success.
//
// Inputs:
//   - ctx: The Go context for the whole pipeline run.
//   - sessionID: The chat session that owns the upload.
//   - videoPath: The absolute path of the uploaded video.
//
// Outputs:
//   - string: The collection name the video was indexed into.
//   - error: The first chain error when ingestion failed.
func (w *VideoIngestionWorkflow) Run(ctx context.Context, sessionID string, videoPath string) (string, error) {
	collection := CollectionName(videoPath)

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, videoPath)
	chainCtx.Add(commands.ParamCollectionName, collection)

	w.Execute(chainCtx)

	if chainCtx.HasErrors() {
		errs := make([]error, 0, len(chainCtx.GetErrors()))
		for name, err := range chainCtx.GetErrors() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return "", errors.Join(errs...)
	}

	w.registry.Register(sessionID, collection)
	return collection, nil
}

// initializeChain builds the sequence of commands that make up the
// ingestion pipeline. Called by the constructor.
func (w *VideoIngestionWorkflow) initializeChain() {
	chunker := transcript.NewChunker(
		w.config.Chunking.MaxTokens,
		transcript.NewTokenCounter(w.config.Chunking.Encoding),
	)
	indexer := vector.NewIndexer(
		w.serviceClients.VectorStore,
		w.serviceClients.EmbeddingModels["default"],
		vector.NewBM25Embedder(),
	)

	out := cor.NewBaseChain(w.GetName())

	// Transcript branch: audio out of the video, text out of the audio,
	// then token-bounded chunks, summaries, and index points.
	out.AddCommand(commands.NewAudioExtractor("extract-audio", "ffmpeg", w.config.Storage.DataDir))
	out.AddCommand(commands.NewAudioTranscriber("transcribe-audio", w.serviceClients.WhisperClient, w.config.Whisper.Model, w.config.Storage.DataDir))
	out.AddCommand(commands.NewTranscriptChunker("chunk-transcript", chunker))
	out.AddCommand(commands.NewChunkSummarizer("summarize-chunks", w.serviceClients.AgentModels["reasoning"], w.summaryTemplate))
	out.AddCommand(commands.NewChunkIndexer("index-transcript-chunks", indexer))

	// Frame branch: sampled frames grouped by time, described and
	// synthesized by the vision model, then indexed into the same
	// collection. The extractor reads the video path from its side key, so
	// it is unaffected by the transcript branch's chain output.
	out.AddCommand(commands.NewFrameExtractor("extract-frames", "ffmpeg", w.config.Storage.DataDir, w.config.Frames.IntervalSeconds, w.config.Frames.GroupSeconds))
	out.AddCommand(commands.NewFrameSummarizer("summarize-frames", w.serviceClients.AgentModels["vision"], w.describeTemplate, w.synthesisTemplate, w.config.Application.ThreadPoolSize))
	out.AddCommand(commands.NewChunkIndexer("index-frame-chunks", indexer))

	w.chain = out
}

// NewVideoIngestionWorkflow is the constructor for the ingestion pipeline.
// It compiles the prompt templates and builds the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: The initialized AI service clients.
//   - registry: The session registry to update on success.
//
// Returns:
//   - A pointer to a newly created and fully initialized workflow.
func NewVideoIngestionWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	registry *services.SessionRegistry) *VideoIngestionWorkflow {

	// Template failures are fatal; the pipeline cannot run without its
	// prompts.
	summaryTemplate, err := template.New("chunk-summary-template").Parse(config.PromptTemplates.ChunkSummary)
	if err != nil {
		panic(err)
	}
	describeTemplate, err := template.New("frame-description-template").Parse(config.PromptTemplates.FrameDescription)
	if err != nil {
		panic(err)
	}
	synthesisTemplate, err := template.New("frame-synthesis-template").Parse(config.PromptTemplates.FrameSynthesis)
	if err != nil {
		panic(err)
	}

	pipeline := &VideoIngestionWorkflow{
		BaseCommand:       *cor.NewBaseCommand("video-ingestion-pipeline"),
		config:            config,
		serviceClients:    serviceClients,
		registry:          registry,
		summaryTemplate:   summaryTemplate,
		describeTemplate:  describeTemplate,
		synthesisTemplate: synthesisTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}
