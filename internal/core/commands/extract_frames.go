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
// Command interface. This file defines the command that samples frames
// from the video and groups them into time-bucketed directories.
//
// Logic Flow:
//  1. Read the video path from the context (a side key, not the chain
//     pipe, since this command runs after the transcript branch).
//  2. Wipe and recreate data/<video_name>/frames. The wipe is destructive:
//     re-processing a video never mixes old and new frames.
//  3. Run FFmpeg with an fps filter to sample one frame every configured
//     interval into a flat staging directory.
//  4. Move each sampled frame into its time group directory, named
//     group_<start3digits>s_<end3digits>s by the group's covered span.
//  5. Publish the ordered list of group directories as the output.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/clipwise/video-insight/internal/core/cor"
)

// FrameGroupDirFormat names a frame group directory by its start and end
// seconds, zero-padded to three digits.
const FrameGroupDirFormat = "group_%03ds_%03ds"

// FrameExtractor is a command that samples video frames and organizes them
// into time-grouped directories.
type FrameExtractor struct {
	cor.BaseCommand
	commandPath     string // Path to the FFmpeg executable.
	dataDir         string // Root directory of the per-video artifact trees.
	intervalSeconds int    // Seconds between sampled frames.
	groupSeconds    int    // Seconds of video covered by one group directory.
}

// NewFrameExtractor is the constructor for the FrameExtractor command. The
// command reads its input from the video-file side key rather than the
// chain pipe.
//
// Inputs:
//   - name: A string name for this command instance.
//   - commandPath: The file system path to the FFmpeg executable.
//   - dataDir: The root directory for per-video artifacts.
//   - intervalSeconds: Seconds between sampled frames.
//   - groupSeconds: Seconds of video covered by one frame group.
//
// Outputs:
//   - *FrameExtractor: A pointer to the newly instantiated command.
func NewFrameExtractor(name string, commandPath string, dataDir string, intervalSeconds int, groupSeconds int) *FrameExtractor {
	out := &FrameExtractor{
		BaseCommand:     *cor.NewBaseCommand(name),
		commandPath:     commandPath,
		dataDir:         dataDir,
		intervalSeconds: intervalSeconds,
		groupSeconds:    groupSeconds,
	}
	out.InputParamName = ParamVideoFile
	return out
}

// Execute samples and groups the frames.
//
// Inputs:
//   - context: The shared cor.Context for this workflow execution.
func (c *FrameExtractor) Execute(context cor.Context) {
	videoPath := fmt.Sprint(context.Get(c.GetInputParam()))
	if _, err := os.Stat(videoPath); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("video file not found: %s: %w", videoPath, err))
		return
	}

	videoName := VideoBaseName(videoPath)
	framesDir := filepath.Join(c.dataDir, videoName, "frames")

	// Destructive: any prior frames for this video are discarded.
	if err := os.RemoveAll(framesDir); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to clear frames directory: %w", err))
		return
	}
	stagingDir := filepath.Join(framesDir, "staging")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create frames directory: %w", err))
		return
	}

	err := runFFmpeg(c.commandPath,
		"-y", "-hide_banner",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%d", c.intervalSeconds),
		filepath.Join(stagingDir, "frame_%04d.jpg"),
	)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	groupDirs, err := c.groupFrames(stagingDir, framesDir)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	if len(groupDirs) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("frame extraction produced no frames for %s", videoPath))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), groupDirs)
}

// groupFrames moves sampled frames out of the staging directory into their
// time group directories and returns the group paths ordered by start time.
// Frame N (1-based) was sampled at (N-1)*interval seconds.
func (c *FrameExtractor) groupFrames(stagingDir string, framesDir string) ([]string, error) {
	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	groups := make([]string, 0)
	seen := make(map[string]bool)
	for i, name := range names {
		timestamp := i * c.intervalSeconds
		groupStart := (timestamp / c.groupSeconds) * c.groupSeconds
		groupEnd := groupStart + c.groupSeconds

		groupDir := filepath.Join(framesDir, fmt.Sprintf(FrameGroupDirFormat, groupStart, groupEnd))
		if !seen[groupDir] {
			if err := os.MkdirAll(groupDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create frame group directory: %w", err)
			}
			seen[groupDir] = true
			groups = append(groups, groupDir)
		}

		src := filepath.Join(stagingDir, name)
		dst := filepath.Join(groupDir, name)
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("failed to move frame into group: %w", err)
		}
	}

	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return groups, nil
}
