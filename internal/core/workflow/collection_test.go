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

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionNameStripsTimestampPrefix(t *testing.T) {
	assert.Equal(t, "team_meeting", CollectionName("/uploads/1728615848_Team_Meeting.mp4"))
	assert.Equal(t, "team_meeting", CollectionName("/uploads/1728615848664_team_meeting.MP4"))
}

func TestCollectionNameWithoutPrefix(t *testing.T) {
	assert.Equal(t, "demo_video", CollectionName("demo_video.mov"))
}

func TestCollectionNameIsStableAcrossReuploads(t *testing.T) {
	first := CollectionName("/uploads/1728615848_keynote.mp4")
	second := CollectionName("/uploads/1899999999_keynote.mp4")
	assert.Equal(t, first, second)
}

func TestCollectionNameKeepsShortNumericPrefixes(t *testing.T) {
	// A leading number short of a unix timestamp is part of the name.
	assert.Equal(t, "2024_recap", CollectionName("2024_recap.mp4"))
}
