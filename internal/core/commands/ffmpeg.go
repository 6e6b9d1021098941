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
// Command interface. This file holds the shared helper for invoking the
// FFmpeg executable, used by both the audio extraction and frame
// extraction commands.
package commands

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// runFFmpeg executes the FFmpeg binary with the given arguments, capturing
// stderr so failures surface the tool's own diagnostics.
//
// Inputs:
//   - commandPath: The path to the FFmpeg executable.
//   - args: The command-line arguments.
//
// Outputs:
//   - error: An error carrying FFmpeg's stderr output on failure.
func runFFmpeg(commandPath string, args ...string) error {
	cmd := exec.Command(commandPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// VideoBaseName returns the video's base filename without its extension,
// used to key the per-video artifact directory tree.
func VideoBaseName(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
