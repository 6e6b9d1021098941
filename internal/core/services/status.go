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

// Package services holds the per-session application services. This file
// tracks the status of background ingestion workflows, polled by clients
// through the status endpoint while a video processes.
package services

import (
	"time"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/kvstore"
)

const statusKeyPrefix = "workflow_status:"

// WorkflowStatusStore records the progress of background ingestion jobs.
type WorkflowStatusStore struct {
	store kvstore.Store
}

// NewWorkflowStatusStore creates a status store over the given kvstore.
func NewWorkflowStatusStore(store kvstore.Store) *WorkflowStatusStore {
	return &WorkflowStatusStore{store: store}
}

// Update writes a checkpoint for the workflow.
//
// Inputs:
//   - workflowID: The workflow whose status is being updated.
//   - status: One of the model.Status* values.
//   - progress: Completion percentage, 0 to 100.
//   - step: A short machine-friendly name of the current step.
//   - message: A human-readable progress or failure message.
func (s *WorkflowStatusStore) Update(workflowID string, status string, progress int, step string, message string) {
	s.store.Set(statusKeyPrefix+workflowID, model.WorkflowStatus{
		WorkflowID:  workflowID,
		Status:      status,
		Progress:    progress,
		CurrentStep: step,
		Message:     message,
		UpdatedAt:   time.Now(),
	})
}

// Get returns the workflow's status record. Unknown ids yield a not_found
// record rather than an error so the status endpoint can return it as-is.
func (s *WorkflowStatusStore) Get(workflowID string) model.WorkflowStatus {
	v, ok := s.store.Get(statusKeyPrefix + workflowID)
	if !ok {
		return model.WorkflowStatus{
			WorkflowID: workflowID,
			Status:     model.StatusNotFound,
			Message:    "no workflow found with this id",
		}
	}
	status, ok := v.(model.WorkflowStatus)
	if !ok {
		return model.WorkflowStatus{WorkflowID: workflowID, Status: model.StatusNotFound}
	}
	return status
}
