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
// Command interface. This file defines the command that extracts the audio
// track from a video file using FFmpeg.
//
// Logic Flow:
//  1. Get the video path from the COR context and validate it exists.
//  2. Create the per-video audio directory (data/<video_name>/audio).
//  3. Run FFmpeg to strip the video stream and encode the audio as MP3,
//     producing <video_name>_audio.mp3. Re-running for the same video
//     overwrites the prior output; no caching is attempted.
//  4. Publish the audio path as the command output and record the video
//     name and source path in the context for the downstream commands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/clipwise/video-insight/internal/core/cor"
)

// AudioExtractor is a command that extracts a video's audio track into an
// MP3 file for transcription.
type AudioExtractor struct {
	cor.BaseCommand
	commandPath string // Path to the FFmpeg executable.
	dataDir     string // Root directory of the per-video artifact trees.
}

// NewAudioExtractor is the constructor for the AudioExtractor command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - commandPath: The file system path to the FFmpeg executable.
//   - dataDir: The root directory for per-video artifacts.
//
// Outputs:
//   - *AudioExtractor: A pointer to the newly instantiated command.
func NewAudioExtractor(name string, commandPath string, dataDir string) *AudioExtractor {
	return &AudioExtractor{
		BaseCommand: *cor.NewBaseCommand(name),
		commandPath: commandPath,
		dataDir:     dataDir,
	}
}

// Execute runs the audio extraction.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *AudioExtractor) Execute(context cor.Context) {
	videoPath := fmt.Sprint(context.Get(c.GetInputParam()))

	if _, err := os.Stat(videoPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("video file not found: %s: %w", videoPath, err))
		return
	}

	videoName := VideoBaseName(videoPath)
	audioDir := filepath.Join(c.dataDir, videoName, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create audio directory: %w", err))
		return
	}

	audioPath := filepath.Join(audioDir, videoName+"_audio.mp3")
	err := runFFmpeg(c.commandPath,
		"-y", "-hide_banner",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		audioPath,
	)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	if info, err := os.Stat(audioPath); err != nil || info.Size() == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("audio extraction produced no output for %s", videoPath))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamVideoFile, videoPath)
	context.Add(ParamVideoName, videoName)
	context.Add(ParamAudioFile, audioPath)
	context.Add(c.GetOutputParam(), audioPath)
}
