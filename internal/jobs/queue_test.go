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

package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/kvstore"
)

// stubIngestion stands in for the video pipeline. When started/release are
// set it parks inside Run until the test lets it go, so intermediate
// checkpoints can be observed.
type stubIngestion struct {
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubIngestion) Run(_ context.Context, _ string, _ string) (string, error) {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return "", s.err
	}
	return "stub_collection", nil
}

func newQueueFixture(ing Ingestion, workers int) (*Queue, *services.WorkflowStatusStore, *services.ChatHistory) {
	store := kvstore.NewMemoryStore()
	status := services.NewWorkflowStatusStore(store)
	history := services.NewChatHistory(store)
	return NewQueue(workers, ing, status, history), status, history
}

func TestQueueReportsCheckpoints(t *testing.T) {
	ing := &stubIngestion{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	q, status, history := newQueueFixture(ing, 1)

	first := q.Submit("s1", "/uploads/1_demo.mp4")
	<-ing.started

	// The worker is parked inside the pipeline: the running job sits at
	// the analysis checkpoint and a second submit stays queued at the
	// initialization checkpoint.
	running := status.Get(first)
	assert.Equal(t, model.StatusProcessing, running.Status)
	assert.Equal(t, 30, running.Progress)
	assert.Equal(t, "Analysis", running.CurrentStep)

	second := q.Submit("s1", "/uploads/2_demo.mp4")
	queued := status.Get(second)
	assert.Equal(t, model.StatusProcessing, queued.Status)
	assert.Equal(t, 10, queued.Progress)
	assert.Equal(t, "Initialization", queued.CurrentStep)

	close(ing.release)
	<-ing.started // the second job enters the pipeline
	q.Shutdown()

	for _, id := range []string{first, second} {
		final := status.Get(id)
		assert.Equal(t, model.StatusCompleted, final.Status)
		assert.Equal(t, 100, final.Progress)
		assert.Equal(t, "Finalization", final.CurrentStep)
	}
	assert.Empty(t, history.Messages("s1"))
}

func TestQueueFailureReachesChatAndStatus(t *testing.T) {
	ing := &stubIngestion{err: errors.New("ffmpeg exploded")}
	q, status, history := newQueueFixture(ing, 1)

	id := q.Submit("s1", "/uploads/1_broken.mp4")
	q.Shutdown()

	final := status.Get(id)
	assert.Equal(t, model.StatusFailed, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, "Finalization", final.CurrentStep)

	// The failure notice lands in the conversation, not just the poll.
	messages := history.Messages("s1")
	require.Len(t, messages, 1)
	assert.Equal(t, model.RoleAssistant, messages[0].Role)
	assert.Contains(t, messages[0].Content, "failed")
}

func TestQueueUnknownWorkflowID(t *testing.T) {
	_, status, _ := newQueueFixture(&stubIngestion{}, 1)
	record := status.Get("no-such-id")
	assert.Equal(t, model.StatusNotFound, record.Status)
}
