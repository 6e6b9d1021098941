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
// Command interface. This file defines the command that transcribes the
// extracted audio through a Whisper-compatible API.
//
// Logic Flow:
//  1. Consume the audio path produced by the extraction command.
//  2. Request a verbose-JSON transcription, which returns time-stamped
//     segments rather than one flat string.
//  3. Convert the segments into the transcript model and write the YAML
//     artifact under data/<video_name>/transcript.
//  4. Publish the ordered segments as the command output for the chunker.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clipwise/video-insight/internal/core/cor"
	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/transcript"
)

// AudioTranscriber is a command that turns an audio file into an ordered,
// time-stamped transcript artifact.
type AudioTranscriber struct {
	cor.BaseCommand
	client  *openai.Client // Client for the Whisper-compatible transcription API.
	model   string         // Transcription model name.
	dataDir string         // Root directory of the per-video artifact trees.
}

// NewAudioTranscriber is the constructor for the AudioTranscriber command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The transcription API client.
//   - model: The transcription model to request.
//   - dataDir: The root directory for per-video artifacts.
//
// Outputs:
//   - *AudioTranscriber: A pointer to the newly instantiated command.
func NewAudioTranscriber(name string, client *openai.Client, model string, dataDir string) *AudioTranscriber {
	return &AudioTranscriber{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		model:       model,
		dataDir:     dataDir,
	}
}

// Execute runs the transcription and writes the YAML artifact.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *AudioTranscriber) Execute(context cor.Context) {
	audioPath := fmt.Sprint(context.Get(c.GetInputParam()))
	videoName := fmt.Sprint(context.Get(ParamVideoName))

	resp, err := c.client.CreateTranscription(context.GetContext(), openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("transcription of %s failed: %w", audioPath, err))
		return
	}

	segments := make([]model.TranscriptSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, model.TranscriptSegment{
			TimeframeKey: transcript.FormatTimeframe(s.Start, s.End),
			Text:         text,
			Start:        s.Start,
			End:          s.End,
		})
	}
	if len(segments) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("transcription of %s produced no segments", audioPath))
		return
	}

	transcriptDir := filepath.Join(c.dataDir, videoName, "transcript")
	if err := os.MkdirAll(transcriptDir, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create transcript directory: %w", err))
		return
	}

	transcriptPath := filepath.Join(transcriptDir, videoName+"_audio_transcript.yaml")
	if err := transcript.WriteArtifact(transcriptPath, segments); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamTranscriptFile, transcriptPath)
	context.Add(c.GetOutputParam(), segments)
}
