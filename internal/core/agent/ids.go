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

	"github.com/clipwise/video-insight/internal/core/model"
)

// ID identifies one agent node in the workflow graph. The values are the
// exact routing literals the supervisor model is prompted to emit.
type ID string

const (
	// GeneralQuestion answers conversational questions without retrieval.
	GeneralQuestion ID = "general_question_workflow"
	// FrameProcessing samples and groups frames for a named video file.
	FrameProcessing ID = "frame_processing_workflow"
	// AudioProcessing extracts and transcribes the audio of a named video.
	AudioProcessing ID = "audio_processing_workflow"
	// Summary produces a whole-video summary from the indexed chunks.
	Summary ID = "summary_workflow"
	// RAG answers a question grounded in the session's indexed video.
	RAG ID = "rag_workflow"
	// Report renders the most recent summary into a PDF report.
	Report ID = "report_workflow"
	// Finish terminates the workflow; the conversation's last assistant
	// text becomes the response.
	Finish ID = "FINISH"
)

// knownRoutes is the set of literals the supervisor may emit.
var knownRoutes = map[ID]struct{}{
	GeneralQuestion: {},
	FrameProcessing: {},
	AudioProcessing: {},
	Summary:         {},
	RAG:             {},
	Report:          {},
	Finish:          {},
}

// Node is one executable agent in the graph. Run appends its result to the
// conversation state and returns the next node to execute, Finish to stop.
// Nodes never return an error to the engine; failures become apologetic or
// explanatory assistant messages so the user always gets a response.
type Node interface {
	ID() ID
	Run(ctx context.Context, state *model.ConversationState) ID
}
