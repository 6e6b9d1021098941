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

package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipwise/video-insight/internal/core/model"
)

func TestArtifactRoundTrip(t *testing.T) {
	segments := []model.TranscriptSegment{
		{TimeframeKey: "0-5s", Text: "Welcome everyone to the review.", Start: 0, End: 5},
		{TimeframeKey: "5-12.5s", Text: "First on the agenda: timelines.", Start: 5, End: 12.5},
	}
	path := filepath.Join(t.TempDir(), "transcript.yaml")

	assert.NoError(t, WriteArtifact(path, segments))

	got, err := ReadArtifact(path)
	assert.NoError(t, err)
	assert.Equal(t, segments, got)
}

func TestArtifactPreservesKeyOrderInFile(t *testing.T) {
	segments := []model.TranscriptSegment{
		{TimeframeKey: "0-5s", Text: "first", Start: 0, End: 5},
		{TimeframeKey: "5-10s", Text: "second", Start: 5, End: 10},
		{TimeframeKey: "10-15s", Text: "third", Start: 10, End: 15},
	}
	path := filepath.Join(t.TempDir(), "transcript.yaml")
	assert.NoError(t, WriteArtifact(path, segments))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	text := string(data)
	// Keys appear in segment order, quoted so YAML never reinterprets them.
	assert.Less(t, strings.Index(text, `"0-5s"`), strings.Index(text, `"5-10s"`))
	assert.Less(t, strings.Index(text, `"5-10s"`), strings.Index(text, `"10-15s"`))
}

func TestParseArtifactSortsByStartTime(t *testing.T) {
	data := []byte("\"10-15s\": third\n\"0-5s\": first\n\"5-10s\": second\n")
	segments, err := ParseArtifact(data)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(segments))
	assert.Equal(t, "first", segments[0].Text)
	assert.Equal(t, "second", segments[1].Text)
	assert.Equal(t, "third", segments[2].Text)
}

func TestParseArtifactEmpty(t *testing.T) {
	segments, err := ParseArtifact([]byte(""))
	assert.NoError(t, err)
	assert.Empty(t, segments)
}

func TestParseArtifactRejectsInvalidKeys(t *testing.T) {
	_, err := ParseArtifact([]byte("\"not a timeframe\": text\n"))
	assert.Error(t, err)
}
