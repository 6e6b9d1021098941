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

	openai "github.com/sashabaranov/go-openai"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/commands"
	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
)

// AudioProcessingAgent runs the standalone audio branch for a named video:
// extract the audio track, transcribe it, and write the transcript
// artifact. It resolves which video to process from the request text with
// one structured model call and fails closed when the file cannot be found.
type AudioProcessingAgent struct {
	resolver *argumentResolver
	chain    cor.Chain
}

// NewAudioProcessingAgent is the constructor for the audio-processing agent.
//
// Inputs:
//   - reasoningModel: The rate-limited text model for argument extraction.
//   - argumentPrompt: The raw argument-extraction prompt template.
//   - uploadDir: The directory uploaded videos are stored in.
//   - whisperClient: The transcription API client.
//   - whisperModel: The transcription model name.
//   - dataDir: The root directory for per-video artifacts.
func NewAudioProcessingAgent(
	reasoningModel *cloud.QuotaAwareGenerativeAIModel,
	argumentPrompt string,
	uploadDir string,
	whisperClient *openai.Client,
	whisperModel string,
	dataDir string) *AudioProcessingAgent {

	chain := cor.NewBaseChain("audio-processing-agent")
	chain.AddCommand(commands.NewAudioExtractor("agent-extract-audio", "ffmpeg", dataDir))
	chain.AddCommand(commands.NewAudioTranscriber("agent-transcribe-audio", whisperClient, whisperModel, dataDir))

	return &AudioProcessingAgent{
		resolver: newArgumentResolver("audio-processing-agent", reasoningModel, argumentPrompt, uploadDir),
		chain:    chain,
	}
}

func (a *AudioProcessingAgent) ID() ID { return AudioProcessing }

// Run resolves the video, executes the extraction and transcription chain,
// and appends the produced artifact paths as a structured payload.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state.
//
// Outputs:
//   - ID: Always Finish; this agent is terminal.
func (a *AudioProcessingAgent) Run(ctx context.Context, state *model.ConversationState) ID {
	videoPath, err := a.resolver.resolve(ctx, state.LastUserMessage())
	if err != nil {
		slog.Warn("audio processing could not resolve a video file", "error", err)
		state.AppendText(model.RoleAssistant, invalidVideoMessage)
		return Finish
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, videoPath)

	a.chain.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for name, chainErr := range chainCtx.GetErrors() {
			slog.Error("audio processing step failed", "step", name, "error", chainErr)
		}
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	transcriptPath := fmt.Sprint(chainCtx.Get(commands.ParamTranscriptFile))
	state.Append(model.Message{
		Role:    model.RoleAssistant,
		Content: fmt.Sprintf("Audio processed. The transcript is available at %s.", transcriptPath),
		Payload: map[string]string{
			commands.ParamVideoFile:      fmt.Sprint(chainCtx.Get(commands.ParamVideoFile)),
			commands.ParamVideoName:      fmt.Sprint(chainCtx.Get(commands.ParamVideoName)),
			commands.ParamAudioFile:      fmt.Sprint(chainCtx.Get(commands.ParamAudioFile)),
			commands.ParamTranscriptFile: transcriptPath,
		},
	})
	return Finish
}
