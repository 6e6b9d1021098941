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

// Package transcript handles the time-stamped transcript artifacts. This
// file reads and writes the YAML artifact: a mapping of "<start>-<end>s"
// keys to transcribed text, ordered by start time. yaml.Node is used
// directly so the mapping order in the file matches segment order rather
// than Go map iteration order.
package transcript

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/clipwise/video-insight/internal/core/model"
)

// WriteArtifact writes the ordered transcript segments to path as a YAML
// mapping of timeframe key to text.
//
// Inputs:
//   - path: Destination file path for the artifact.
//   - segments: The transcript segments, in start-time order.
//
// Outputs:
//   - error: An error if marshaling or writing fails.
func WriteArtifact(path string, segments []model.TranscriptSegment) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, seg := range segments {
		key := seg.TimeframeKey
		if key == "" {
			key = FormatTimeframe(seg.Start, seg.End)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: seg.Text},
		)
	}
	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadArtifact reads a YAML transcript artifact and returns its segments
// sorted by start time, with Start/End populated from the timeframe keys.
//
// Inputs:
//   - path: Path to the transcript artifact.
//
// Outputs:
//   - []model.TranscriptSegment: The ordered segments.
//   - error: An error if the file is missing, malformed, or carries an
//     invalid timeframe key.
func ReadArtifact(path string) ([]model.TranscriptSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	return ParseArtifact(data)
}

// ParseArtifact decodes YAML transcript bytes into ordered segments.
func ParseArtifact(data []byte) ([]model.TranscriptSegment, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(doc.Content) == 0 {
		return []model.TranscriptSegment{}, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("transcript is not a mapping")
	}

	segments := make([]model.TranscriptSegment, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		text := mapping.Content[i+1].Value
		start, end, err := ParseTimeframe(key)
		if err != nil {
			return nil, err
		}
		segments = append(segments, model.TranscriptSegment{
			TimeframeKey: key,
			Text:         text,
			Start:        start,
			End:          end,
		})
	}

	sort.SliceStable(segments, func(a, b int) bool {
		return segments[a].Start < segments[b].Start
	})
	return segments, nil
}
