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

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/kvstore"
)

func TestSessionRegistryLastWriteWins(t *testing.T) {
	registry := NewSessionRegistry(kvstore.NewMemoryStore())

	registry.Register("s1", "first_video")
	registry.Register("s1", "second_video")

	collection, ok := registry.Collection("s1")
	assert.True(t, ok)
	assert.Equal(t, "second_video", collection)
}

func TestSessionRegistryIsolation(t *testing.T) {
	registry := NewSessionRegistry(kvstore.NewMemoryStore())
	registry.Register("s1", "meeting")

	_, ok := registry.Collection("s2")
	assert.False(t, ok)

	registry.Clear("s1")
	_, ok = registry.Collection("s1")
	assert.False(t, ok)
}

func TestChatHistoryAppendAndIsolation(t *testing.T) {
	history := NewChatHistory(kvstore.NewMemoryStore())

	history.Append("s1",
		model.Message{Role: model.RoleUser, Content: "hello"},
		model.Message{Role: model.RoleAssistant, Content: "hi there"},
	)
	history.Append("s2", model.Message{Role: model.RoleUser, Content: "other session"})

	s1 := history.Messages("s1")
	assert.Equal(t, 2, len(s1))
	assert.Equal(t, "hello", s1[0].Content)
	assert.Equal(t, "hi there", s1[1].Content)

	s2 := history.Messages("s2")
	assert.Equal(t, 1, len(s2))
	assert.Equal(t, "other session", s2[0].Content)

	history.Clear("s1")
	assert.Empty(t, history.Messages("s1"))
	assert.Equal(t, 1, len(history.Messages("s2")))
}

func TestChatHistoryReturnsCopies(t *testing.T) {
	history := NewChatHistory(kvstore.NewMemoryStore())
	history.Append("s1", model.Message{Role: model.RoleUser, Content: "original"})

	leaked := history.Messages("s1")
	leaked[0].Content = "mutated"

	assert.Equal(t, "original", history.Messages("s1")[0].Content)
}

func TestFileRegistry(t *testing.T) {
	files := NewFileRegistry(kvstore.NewMemoryStore())

	files.Add("s1", model.UploadedFile{Name: "a.mp4", Path: "/uploads/1_a.mp4"})
	files.Add("s1", model.UploadedFile{Name: "b.mp4", Path: "/uploads/2_b.mp4"})

	listing := files.Files("s1")
	assert.Equal(t, 2, len(listing))
	assert.Equal(t, "a.mp4", listing[0].Name)

	removed, ok := files.Remove("s1", "a.mp4")
	assert.True(t, ok)
	assert.Equal(t, "/uploads/1_a.mp4", removed.Path)
	assert.Equal(t, 1, len(files.Files("s1")))

	_, ok = files.Remove("s1", "missing.mp4")
	assert.False(t, ok)

	files.Clear("s1")
	assert.Empty(t, files.Files("s1"))
}

func TestWorkflowStatusStore(t *testing.T) {
	status := NewWorkflowStatusStore(kvstore.NewMemoryStore())

	status.Update("wf-1", model.StatusProcessing, 30, "Analysis", "working")
	got := status.Get("wf-1")
	assert.Equal(t, model.StatusProcessing, got.Status)
	assert.Equal(t, 30, got.Progress)
	assert.Equal(t, "Analysis", got.CurrentStep)

	status.Update("wf-1", model.StatusCompleted, 100, "Finalization", "done")
	got = status.Get("wf-1")
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestWorkflowStatusStoreUnknownId(t *testing.T) {
	status := NewWorkflowStatusStore(kvstore.NewMemoryStore())

	got := status.Get("does-not-exist")
	assert.Equal(t, model.StatusNotFound, got.Status)
	assert.Equal(t, "does-not-exist", got.WorkflowID)
}
