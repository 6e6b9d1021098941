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
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/core/vector"
)

// RAGSentinel is the exact phrase the answer prompt instructs the model to
// emit when the retrieved context does not contain the answer. Keeping it a
// constant lets callers and tests detect grounding refusals.
const RAGSentinel = "The answer is not available in the provided context."

// noVideoMessage is appended when a retrieval agent runs for a session that
// has not processed a video yet.
const noVideoMessage = "No video has been processed for this session yet. Please upload a video first, then ask again."

// RAGAgent answers a question grounded exclusively in the session's indexed
// video. It runs one hybrid retrieval, renders the scored documents into
// the prompt's context block, and asks the model to answer from that block
// alone.
type RAGAgent struct {
	registry  *services.SessionRegistry
	retriever *vector.Retriever
	gen       textGenerator
	tmpl      *template.Template
}

// NewRAGAgent is the constructor for the retrieval-augmented answer agent.
//
// Inputs:
//   - registry: Resolves the session's active collection.
//   - retriever: Runs hybrid queries against the vector store.
//   - reasoningModel: The rate-limited text model for answer generation.
//   - promptText: The raw answer prompt template.
func NewRAGAgent(
	registry *services.SessionRegistry,
	retriever *vector.Retriever,
	reasoningModel *cloud.QuotaAwareGenerativeAIModel,
	promptText string) *RAGAgent {
	return &RAGAgent{
		registry:  registry,
		retriever: retriever,
		gen:       newGenerator("rag-agent", reasoningModel),
		tmpl:      mustTemplate("rag-answer-template", promptText),
	}
}

func (a *RAGAgent) ID() ID { return RAG }

// Run retrieves, grounds, and answers. A session without a processed video
// gets the explanatory message without touching the vector store.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state.
//
// Outputs:
//   - ID: Always Finish; this agent is terminal.
func (a *RAGAgent) Run(ctx context.Context, state *model.ConversationState) ID {
	collection, ok := a.registry.Collection(state.SessionID)
	if !ok {
		state.AppendText(model.RoleAssistant, noVideoMessage)
		return Finish
	}

	question := state.LastUserMessage()
	documents, err := a.retriever.DocumentContext(ctx, collection, question)
	if err != nil {
		slog.Error("retrieval failed", "collection", collection, "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	prompt, err := renderPrompt(a.tmpl, map[string]string{
		"QUESTION": question,
		"CONTEXT":  documents,
		"SENTINEL": RAGSentinel,
	})
	if err != nil {
		slog.Error("answer prompt render failed", "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	answer, err := a.gen.generate(ctx, prompt)
	if err != nil {
		slog.Error("grounded answer failed", "collection", collection, "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	state.AppendText(model.RoleAssistant, answer)
	return Finish
}
