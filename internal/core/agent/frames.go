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

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/commands"
	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
)

// FrameProcessingAgent runs the standalone frame branch for a named video:
// sample frames on the configured interval and group them into
// time-bucketed directories. Like the audio agent it resolves the target
// file from the request text and fails closed when it cannot.
type FrameProcessingAgent struct {
	resolver *argumentResolver
	chain    cor.Chain
}

// NewFrameProcessingAgent is the constructor for the frame-processing agent.
//
// Inputs:
//   - reasoningModel: The rate-limited text model for argument extraction.
//   - argumentPrompt: The raw argument-extraction prompt template.
//   - uploadDir: The directory uploaded videos are stored in.
//   - dataDir: The root directory for per-video artifacts.
//   - intervalSeconds: Seconds between sampled frames.
//   - groupSeconds: Seconds of video covered by one frame group.
func NewFrameProcessingAgent(
	reasoningModel *cloud.QuotaAwareGenerativeAIModel,
	argumentPrompt string,
	uploadDir string,
	dataDir string,
	intervalSeconds int,
	groupSeconds int) *FrameProcessingAgent {

	chain := cor.NewBaseChain("frame-processing-agent")
	chain.AddCommand(commands.NewFrameExtractor("agent-extract-frames", "ffmpeg", dataDir, intervalSeconds, groupSeconds))

	return &FrameProcessingAgent{
		resolver: newArgumentResolver("frame-processing-agent", reasoningModel, argumentPrompt, uploadDir),
		chain:    chain,
	}
}

func (a *FrameProcessingAgent) ID() ID { return FrameProcessing }

// Run resolves the video, extracts and groups its frames, and appends the
// group directories as a structured payload.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state.
//
// Outputs:
//   - ID: Always Finish; this agent is terminal.
func (a *FrameProcessingAgent) Run(ctx context.Context, state *model.ConversationState) ID {
	videoPath, err := a.resolver.resolve(ctx, state.LastUserMessage())
	if err != nil {
		slog.Warn("frame processing could not resolve a video file", "error", err)
		state.AppendText(model.RoleAssistant, invalidVideoMessage)
		return Finish
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	// The extractor reads the video path from its side key.
	chainCtx.Add(commands.ParamVideoFile, videoPath)

	a.chain.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for name, chainErr := range chainCtx.GetErrors() {
			slog.Error("frame processing step failed", "step", name, "error", chainErr)
		}
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	groupDirs, _ := chainCtx.Get(cor.CtxIn).([]string)
	state.Append(model.Message{
		Role: model.RoleAssistant,
		Content: fmt.Sprintf("Frames extracted into %d time groups for %s.",
			len(groupDirs), videoPath),
		Payload: map[string]string{
			commands.ParamVideoFile: videoPath,
			"frame_groups":          strings.Join(groupDirs, "\n"),
		},
	})
	return Finish
}
