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
	"path/filepath"
	"text/template"
	"time"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/report"
	"github.com/clipwise/video-insight/internal/core/services"
)

// ReportAgent reformats the session's video summary into a structured
// markdown report and renders it to a PDF on disk. When the request arrives
// without a summary in the conversation, it builds one through the summary
// agent first, so "make me a report" works as an opening request.
type ReportAgent struct {
	registry   *services.SessionRegistry
	summary    *SummaryAgent
	gen        textGenerator
	tmpl       *template.Template
	renderer   report.Renderer
	reportsDir string
}

// NewReportAgent is the constructor for the PDF report agent.
//
// Inputs:
//   - registry: Resolves the session's active collection for the filename.
//   - summary: The summary agent, invoked when no summary is in state.
//   - reasoningModel: The rate-limited text model for report drafting.
//   - promptText: The raw report prompt template.
//   - renderer: The markdown-to-PDF renderer.
//   - reportsDir: The directory generated reports are written into.
func NewReportAgent(
	registry *services.SessionRegistry,
	summary *SummaryAgent,
	reasoningModel *cloud.QuotaAwareGenerativeAIModel,
	promptText string,
	renderer report.Renderer,
	reportsDir string) *ReportAgent {
	return &ReportAgent{
		registry:   registry,
		summary:    summary,
		gen:        newGenerator("report-agent", reasoningModel),
		tmpl:       mustTemplate("report-template", promptText),
		renderer:   renderer,
		reportsDir: reportsDir,
	}
}

func (a *ReportAgent) ID() ID { return Report }

// Run drafts and renders the report.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state holding the summary to reformat.
//
// Outputs:
//   - ID: Always Finish; this agent is terminal.
func (a *ReportAgent) Run(ctx context.Context, state *model.ConversationState) ID {
	collection, ok := a.registry.Collection(state.SessionID)
	if !ok {
		state.AppendText(model.RoleAssistant, noVideoMessage)
		return Finish
	}

	summary := state.LastAssistantText()
	if summary == "" {
		// Reports reformat a summary rather than drafting from raw
		// chunks. A report-first turn builds the summary on the spot.
		fresh, err := a.summary.summarize(ctx, state.SessionID)
		if err != nil {
			if errors.Is(err, errNoIndexedVideo) {
				state.AppendText(model.RoleAssistant, noVideoMessage)
				return Finish
			}
			slog.Error("report pre-summary failed", "collection", collection, "error", err)
			state.AppendText(model.RoleAssistant, apologyMessage)
			return Finish
		}
		state.AppendText(model.RoleAssistant, fresh)
		summary = fresh
	}

	prompt, err := renderPrompt(a.tmpl, map[string]string{
		"SUMMARY": summary,
	})
	if err != nil {
		slog.Error("report prompt render failed", "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	markdown, err := a.gen.generate(ctx, prompt)
	if err != nil {
		slog.Error("report drafting failed", "collection", collection, "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	reportPath := filepath.Join(a.reportsDir,
		fmt.Sprintf("report_%s_%d.pdf", collection, time.Now().Unix()))
	if err := a.renderer.Render(markdown, reportPath); err != nil {
		slog.Error("report rendering failed", "path", reportPath, "error", err)
		state.AppendText(model.RoleAssistant, apologyMessage)
		return Finish
	}

	slog.Info("report generated", "collection", collection, "path", reportPath)
	state.Append(model.Message{
		Role:    model.RoleAssistant,
		Content: fmt.Sprintf("Your report is ready: %s", reportPath),
		Payload: map[string]string{"report_path": reportPath},
	})
	return Finish
}
