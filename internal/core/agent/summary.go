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
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/core/vector"
)

// errNoIndexedVideo distinguishes "nothing to summarize" from transient
// retrieval or generation failures, so callers pick the right user message.
var errNoIndexedVideo = errors.New("no indexed video for session")

// SummaryAgent produces a chronological whole-video summary. Unlike the RAG
// agent it does not rank: it scrolls every transcript-derived point in
// sequence order and synthesizes them in a single model call.
type SummaryAgent struct {
	registry  *services.SessionRegistry
	retriever *vector.Retriever
	gen       textGenerator
	tmpl      *template.Template
}

// NewSummaryAgent is the constructor for the whole-video summary agent.
func NewSummaryAgent(
	registry *services.SessionRegistry,
	retriever *vector.Retriever,
	reasoningModel *cloud.QuotaAwareGenerativeAIModel,
	promptText string) *SummaryAgent {
	return &SummaryAgent{
		registry:  registry,
		retriever: retriever,
		gen:       newGenerator("summary-agent", reasoningModel),
		tmpl:      mustTemplate("summary-template", promptText),
	}
}

func (a *SummaryAgent) ID() ID { return Summary }

// Run summarizes the session's video and appends the summary.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state.
//
// Outputs:
//   - ID: Always Finish; this agent is terminal.
func (a *SummaryAgent) Run(ctx context.Context, state *model.ConversationState) ID {
	summary, err := a.summarize(ctx, state.SessionID)
	if err != nil {
		if errors.Is(err, errNoIndexedVideo) {
			state.AppendText(model.RoleAssistant, noVideoMessage)
			return Finish
		}
		slog.Error("summary generation failed", "session", state.SessionID, "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	state.AppendText(model.RoleAssistant, summary)
	return Finish
}

// summarize builds the whole-video summary for a session without touching
// conversation state. The report agent reuses it when asked for a report
// before any summary exists in the conversation. Returns errNoIndexedVideo
// when the session has no indexed video to summarize.
func (a *SummaryAgent) summarize(ctx context.Context, sessionID string) (string, error) {
	collection, ok := a.registry.Collection(sessionID)
	if !ok {
		return "", errNoIndexedVideo
	}

	ordered, err := a.retriever.OrderedContext(ctx, collection, model.ChunkTypeText)
	if err != nil {
		return "", fmt.Errorf("summary scroll of %s failed: %w", collection, err)
	}
	if ordered == "" {
		return "", errNoIndexedVideo
	}

	prompt, err := renderPrompt(a.tmpl, map[string]string{
		"CONTEXT": ordered,
	})
	if err != nil {
		return "", fmt.Errorf("summary prompt render failed: %w", err)
	}

	summary, err := a.gen.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summary generation for %s failed: %w", collection, err)
	}
	return summary, nil
}
