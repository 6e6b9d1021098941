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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/model"
)

// invalidVideoMessage is appended when a media-processing agent cannot
// resolve the request to an existing video file. The agents fail closed:
// they never guess a file and never process anything unnamed.
const invalidVideoMessage = "I couldn't find the video file that request refers to. Please name an uploaded file, for example \"process the audio of team_meeting.mp4\"."

// argumentResolver extracts the video file argument from a free-text
// request with one structured model call and resolves it to an existing
// path on disk.
type argumentResolver struct {
	gen       textGenerator
	tmpl      *template.Template
	uploadDir string
}

func newArgumentResolver(name string, reasoningModel *cloud.QuotaAwareGenerativeAIModel, promptText string, uploadDir string) *argumentResolver {
	return &argumentResolver{
		gen:       newGenerator(name, reasoningModel),
		tmpl:      mustTemplate(name+"-argument-template", promptText),
		uploadDir: uploadDir,
	}
}

// resolve extracts the file argument and maps it to a real path.
//
// Resolution order: an absolute path is taken as-is, a relative name is
// looked up in the upload directory, and failing both, the upload
// directory is scanned for a timestamp-prefixed upload of that name (the
// upload handler stores files as "<unix>_<name>"); the newest match wins.
//
// Outputs:
//   - string: The resolved, existing video path.
//   - error: An error when extraction failed or no such file exists.
func (r *argumentResolver) resolve(ctx context.Context, request string) (string, error) {
	exampleJson, _ := json.Marshal(model.GetExampleArgument())
	prompt, err := renderPrompt(r.tmpl, map[string]string{
		"REQUEST":      request,
		"EXAMPLE_JSON": string(exampleJson),
	})
	if err != nil {
		return "", err
	}

	raw, err := r.gen.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("argument extraction call failed: %w", err)
	}
	args, err := ParseArgument(raw)
	if err != nil {
		return "", err
	}

	candidates := []string{}
	if filepath.IsAbs(args.VideoFile) {
		candidates = append(candidates, args.VideoFile)
	} else {
		candidates = append(candidates, filepath.Join(r.uploadDir, args.VideoFile))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	if match := r.findTimestampedUpload(filepath.Base(args.VideoFile)); match != "" {
		return match, nil
	}
	return "", fmt.Errorf("no video file found for %q", args.VideoFile)
}

// findTimestampedUpload returns the newest stored upload whose original
// name matches, or empty when none does. Stored names sort by their unix
// timestamp prefix, so the lexicographically last match is the newest.
func (r *argumentResolver) findTimestampedUpload(name string) string {
	entries, err := os.ReadDir(r.uploadDir)
	if err != nil {
		return ""
	}
	matches := make([]string, 0)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "_"+name) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return filepath.Join(r.uploadDir, matches[len(matches)-1])
}
