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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/kvstore"
)

// The no-video guards run before any model or store access, so these agents
// can be constructed with nil clients for the guard tests.

func TestRAGAgentWithoutProcessedVideo(t *testing.T) {
	registry := services.NewSessionRegistry(kvstore.NewMemoryStore())
	a := NewRAGAgent(registry, nil, nil, "{{.QUESTION}}")

	state := model.NewConversationState("s1", "what happens at the end?")
	next := a.Run(context.Background(), state)

	assert.Equal(t, Finish, next)
	assert.Equal(t, noVideoMessage, state.FinalResponse())
}

func TestSummaryAgentWithoutProcessedVideo(t *testing.T) {
	registry := services.NewSessionRegistry(kvstore.NewMemoryStore())
	a := NewSummaryAgent(registry, nil, nil, "{{.CONTEXT}}")

	state := model.NewConversationState("s1", "summarize my video")
	next := a.Run(context.Background(), state)

	assert.Equal(t, Finish, next)
	assert.Equal(t, noVideoMessage, state.FinalResponse())
}

func TestReportAgentWithoutProcessedVideo(t *testing.T) {
	registry := services.NewSessionRegistry(kvstore.NewMemoryStore())
	summarizer := NewSummaryAgent(registry, nil, nil, "{{.CONTEXT}}")
	a := NewReportAgent(registry, summarizer, nil, "{{.SUMMARY}}", nil, "reports")

	// The collection check runs before any model or renderer access.
	state := model.NewConversationState("s1", "make me a report")
	next := a.Run(context.Background(), state)

	assert.Equal(t, Finish, next)
	assert.Equal(t, noVideoMessage, state.FinalResponse())
}

func TestAgentSessionsAreIsolated(t *testing.T) {
	registry := services.NewSessionRegistry(kvstore.NewMemoryStore())
	registry.Register("s1", "meeting_recording")

	// Session s2 never processed a video; s1's binding must not leak.
	a := NewSummaryAgent(registry, nil, nil, "{{.CONTEXT}}")
	state := model.NewConversationState("s2", "summarize my video")
	a.Run(context.Background(), state)

	assert.Equal(t, noVideoMessage, state.FinalResponse())

	collection, ok := registry.Collection("s1")
	assert.True(t, ok)
	assert.Equal(t, "meeting_recording", collection)
}
