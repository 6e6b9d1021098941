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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationStateMessageAccessors(t *testing.T) {
	state := NewConversationState("s1", "what is in my video?")
	state.AppendPayload(map[string]string{"audio_file_path": "/data/a.mp3"})
	state.AppendText(RoleAssistant, "It shows a product demo.")
	state.AppendText(RoleUser, "and at the end?")

	assert.Equal(t, "what is in my video?", state.FirstUserMessage())
	assert.Equal(t, "and at the end?", state.LastUserMessage())
	assert.Equal(t, "It shows a product demo.", state.LastAssistantText())
	assert.Equal(t, "/data/a.mp3", state.LastPayload()["audio_file_path"])
}

func TestConversationStateFinalResponseFallback(t *testing.T) {
	state := NewConversationState("s1", "hello")
	// No assistant text yet: the caller still gets a usable response.
	assert.NotEmpty(t, state.FinalResponse())

	state.AppendPayload(map[string]string{"k": "v"})
	assert.NotEmpty(t, state.FinalResponse())

	state.AppendText(RoleAssistant, "final words")
	assert.Equal(t, "final words", state.FinalResponse())
}

func TestSummaryChunkEmbeddingText(t *testing.T) {
	chunk := SummaryChunk{
		Text:    "raw transcript text",
		Summary: "a short summary",
		Topics:  []string{"alpha", "beta"},
		Type:    ChunkTypeText,
	}
	text := chunk.EmbeddingText()
	assert.Contains(t, text, "Summary: a short summary")
	assert.Contains(t, text, "Topics: alpha, beta")
	assert.Contains(t, text, "raw transcript text")
}
