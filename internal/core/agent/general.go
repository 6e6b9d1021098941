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
	"log/slog"
	"text/template"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/model"
)

// apologyMessage is the user-facing text appended when a model call fails
// mid-agent. The workflow still terminates normally.
const apologyMessage = "I'm sorry, I ran into a problem while working on that request. Please try again."

// GeneralQuestionAgent answers conversational questions directly from the
// model, without retrieval. It is also the fallback target for routing
// literals the supervisor emits that no other agent claims.
type GeneralQuestionAgent struct {
	gen  textGenerator
	tmpl *template.Template
}

// NewGeneralQuestionAgent is the constructor for the general-question agent.
func NewGeneralQuestionAgent(reasoningModel *cloud.QuotaAwareGenerativeAIModel, promptText string) *GeneralQuestionAgent {
	return &GeneralQuestionAgent{
		gen:  newGenerator("general-question-agent", reasoningModel),
		tmpl: mustTemplate("general-template", promptText),
	}
}

func (a *GeneralQuestionAgent) ID() ID { return GeneralQuestion }

// Run answers the user's latest message and appends the answer.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state.
//
// Outputs:
//   - ID: Always Finish; this agent is terminal.
func (a *GeneralQuestionAgent) Run(ctx context.Context, state *model.ConversationState) ID {
	prompt, err := renderPrompt(a.tmpl, map[string]string{
		"REQUEST": state.LastUserMessage(),
	})
	if err != nil {
		slog.Error("general question prompt render failed", "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	answer, err := a.gen.generate(ctx, prompt)
	if err != nil {
		slog.Error("general question answer failed", "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	state.AppendText(model.RoleAssistant, answer)
	return Finish
}
