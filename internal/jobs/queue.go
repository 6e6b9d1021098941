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

// Package jobs runs video ingestion in the background. Uploads return
// immediately with a workflow id; a fixed pool of workers drains the queue
// and reports progress through the workflow status store at defined
// checkpoints, so the upload endpoint never blocks on processing.
package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/services"
)

// Ingestion is the pipeline a worker runs per job. It returns the name of
// the collection the video was indexed into.
type Ingestion interface {
	Run(ctx context.Context, sessionID string, videoPath string) (string, error)
}

// Progress checkpoints reported while a job moves through the pipeline.
// Values in between are never reported; consumers poll the status endpoint
// and see the job jump between these.
const (
	progressQueued     = 10
	progressAnalyzing  = 30
	progressFinalizing = 90
	progressTerminal   = 100

	stepInitialization = "Initialization"
	stepAnalysis       = "Analysis"
	stepFinalization   = "Finalization"
)

// job is one queued ingestion request.
type job struct {
	workflowID string
	sessionID  string
	videoPath  string
}

// Queue is the bounded background ingestion queue.
type Queue struct {
	ingestion Ingestion
	status    *services.WorkflowStatusStore
	history   *services.ChatHistory
	jobs      chan job
	wg        sync.WaitGroup
}

// NewQueue is the constructor for the ingestion queue. It starts the worker
// pool immediately.
//
// Inputs:
//   - workers: The number of concurrent ingestion workers (minimum 1).
//   - ingestion: The video ingestion workflow jobs run through.
//   - status: The store progress checkpoints are written to.
//   - history: The chat history failure notices are appended to.
//
// Outputs:
//   - *Queue: A pointer to the running queue.
func NewQueue(
	workers int,
	ingestion Ingestion,
	status *services.WorkflowStatusStore,
	history *services.ChatHistory) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		ingestion: ingestion,
		status:    status,
		history:   history,
		jobs:      make(chan job, 64),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Submit enqueues one video for ingestion and returns its workflow id. The
// id is immediately resolvable through the status store.
//
// Inputs:
//   - sessionID: The chat session that owns the upload.
//   - videoPath: The absolute path of the stored upload.
//
// Outputs:
//   - string: The workflow id to poll for progress.
func (q *Queue) Submit(sessionID string, videoPath string) string {
	workflowID := uuid.NewString()
	q.status.Update(workflowID, model.StatusProcessing, progressQueued,
		stepInitialization, "Video accepted for processing.")
	q.jobs <- job{workflowID: workflowID, sessionID: sessionID, videoPath: videoPath}
	return workflowID
}

// Shutdown stops accepting jobs and waits for in-flight ingestion to finish.
func (q *Queue) Shutdown() {
	close(q.jobs)
	q.wg.Wait()
}

// worker drains the queue, running one ingestion at a time.
func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.process(j)
	}
}

// process runs one job through the pipeline, reporting checkpoints and
// converting failure into a terminal status plus a chat notice.
func (q *Queue) process(j job) {
	ctx := context.Background()
	q.status.Update(j.workflowID, model.StatusProcessing, progressAnalyzing,
		stepAnalysis, "Extracting and indexing video content.")

	collection, err := q.ingestion.Run(ctx, j.sessionID, j.videoPath)
	if err != nil {
		slog.Error("video ingestion failed", "workflow", j.workflowID,
			"video", j.videoPath, "error", err)
		q.status.Update(j.workflowID, model.StatusFailed, progressTerminal,
			stepFinalization, "Video processing failed.")
		// The user finds out in the conversation, not just via polling.
		q.history.Append(j.sessionID, model.Message{
			Role:    model.RoleAssistant,
			Content: "Processing of your uploaded video failed. Please try uploading it again.",
		})
		return
	}

	q.status.Update(j.workflowID, model.StatusProcessing, progressFinalizing,
		stepFinalization, "Finalizing the search index.")
	q.status.Update(j.workflowID, model.StatusCompleted, progressTerminal,
		stepFinalization, "Video processed and ready for questions.")
	slog.Info("video ingestion completed", "workflow", j.workflowID, "collection", collection)
}
