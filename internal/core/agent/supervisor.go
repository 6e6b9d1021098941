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
	"encoding/json"
	"log/slog"
	"text/template"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/model"
)

// Supervisor routes a user request to the agent that should handle it. It
// makes exactly one routing decision per request, based on the original
// user message only; it never re-routes mid-workflow.
type Supervisor struct {
	gen  textGenerator
	tmpl *template.Template
}

// NewSupervisor is the constructor for the routing supervisor.
//
// Inputs:
//   - reasoningModel: The rate-limited text model used for routing.
//   - promptText: The raw supervisor prompt template.
//
// Outputs:
//   - *Supervisor: A pointer to the newly instantiated supervisor.
func NewSupervisor(reasoningModel *cloud.QuotaAwareGenerativeAIModel, promptText string) *Supervisor {
	return &Supervisor{
		gen:  newGenerator("supervisor", reasoningModel),
		tmpl: mustTemplate("supervisor-template", promptText),
	}
}

// Route decides which agent handles the request.
//
// The decision is fail-safe in every direction: a prompt render failure or
// model failure ends the workflow via Finish, an unparsable response ends
// it via Finish, and a well-formed response naming an unknown workflow
// degrades to the general-question agent. All fallbacks are logged.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state holding the user request.
//
// Outputs:
//   - ID: The agent to execute next.
func (s *Supervisor) Route(ctx context.Context, state *model.ConversationState) ID {
	exampleJson, _ := json.Marshal(model.GetExampleRoute())
	prompt, err := renderPrompt(s.tmpl, map[string]string{
		"REQUEST":      state.FirstUserMessage(),
		"EXAMPLE_JSON": string(exampleJson),
	})
	if err != nil {
		slog.Error("supervisor prompt render failed", "error", err)
		return Finish
	}

	raw, err := s.gen.generate(ctx, prompt)
	if err != nil {
		slog.Error("supervisor routing call failed", "error", err)
		return Finish
	}

	route, err := ParseRoute(raw)
	if err != nil {
		slog.Warn("supervisor routing output required fallback",
			"fallback", string(route), "error", err)
	}
	return route
}
