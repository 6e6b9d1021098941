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
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/core/report"
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/core/vector"
	"github.com/clipwise/video-insight/internal/kvstore"
)

// scriptedGenerator replays canned model replies in order and records the
// prompts it was handed.
type scriptedGenerator struct {
	replies []string
	prompts []string
}

func (g *scriptedGenerator) generate(_ context.Context, prompt string) (string, error) {
	if len(g.prompts) >= len(g.replies) {
		return "", fmt.Errorf("unexpected generate call %d", len(g.prompts)+1)
	}
	g.prompts = append(g.prompts, prompt)
	return g.replies[len(g.prompts)-1], nil
}

// seedIndexedVideo registers the collection for the session and loads the
// store with ordered transcript summaries, the shape ingestion leaves behind.
func seedIndexedVideo(t *testing.T, registry *services.SessionRegistry, sessionID string, collection string) *vector.Retriever {
	t.Helper()
	store := vector.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureCollection(ctx, collection, 4))
	require.NoError(t, store.Upsert(ctx, collection, []vector.Point{
		{ID: "p1", Dense: []float32{1, 0, 0, 0}, Payload: vector.Payload{
			Text: "Welcome and agenda.", Summary: "The host opens the meeting.",
			Topics: []string{"intro"}, Type: model.ChunkTypeText, SequenceIndex: 0,
		}},
		{ID: "p2", Dense: []float32{0, 1, 0, 0}, Payload: vector.Payload{
			Text: "Roadmap discussion.", Summary: "The team reviews the roadmap.",
			Topics: []string{"roadmap"}, Type: model.ChunkTypeText, SequenceIndex: 1,
		}},
	}))
	registry.Register(sessionID, collection)
	return vector.NewRetriever(store, nil, nil, 5)
}

// A report requested as the first turn of a session must still produce a
// PDF: the agent builds the summary itself before drafting the report.
func TestReportAgentBuildsSummaryThenPDF(t *testing.T) {
	registry := services.NewSessionRegistry(kvstore.NewMemoryStore())
	retriever := seedIndexedVideo(t, registry, "s1", "team_meeting")

	summarizer := NewSummaryAgent(registry, retriever, nil, "Summarize:\n{{.CONTEXT}}")
	summaryGen := &scriptedGenerator{replies: []string{"The meeting covered the agenda and roadmap."}}
	summarizer.gen = summaryGen

	reporter := NewReportAgent(registry, summarizer, nil, "Format as a report:\n{{.SUMMARY}}",
		report.NewPDFRenderer(), t.TempDir())
	reportGen := &scriptedGenerator{replies: []string{"# Meeting Report\n\nThe team reviewed the roadmap."}}
	reporter.gen = reportGen

	state := model.NewConversationState("s1", "make me a PDF report")
	next := reporter.Run(context.Background(), state)

	assert.Equal(t, Finish, next)

	// The pre-summary ran against the scrolled transcript context and its
	// result landed in the conversation ahead of the report notice.
	require.Len(t, summaryGen.prompts, 1)
	assert.Contains(t, summaryGen.prompts[0], "[Seq 0] The host opens the meeting.")
	assert.Contains(t, summaryGen.prompts[0], "[Seq 1] The team reviews the roadmap.")
	assert.Contains(t, reportGen.prompts[0], "The meeting covered the agenda and roadmap.")

	assert.Contains(t, state.FinalResponse(), "Your report is ready: ")

	payload := state.LastPayload()
	require.NotNil(t, payload)
	path := payload["report_path"]
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.Contains(t, path, "report_team_meeting_")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

// When the conversation already carries a summary, the agent reformats it
// directly and never re-summarizes.
func TestReportAgentReusesExistingSummary(t *testing.T) {
	registry := services.NewSessionRegistry(kvstore.NewMemoryStore())
	retriever := seedIndexedVideo(t, registry, "s1", "team_meeting")

	summarizer := NewSummaryAgent(registry, retriever, nil, "Summarize:\n{{.CONTEXT}}")
	summaryGen := &scriptedGenerator{} // any call fails the test
	summarizer.gen = summaryGen

	reporter := NewReportAgent(registry, summarizer, nil, "Format as a report:\n{{.SUMMARY}}",
		report.NewPDFRenderer(), t.TempDir())
	reportGen := &scriptedGenerator{replies: []string{"# Meeting Report\n\nAs discussed."}}
	reporter.gen = reportGen

	state := model.NewConversationState("s1", "turn that into a PDF")
	state.AppendText(model.RoleAssistant, "A summary from a previous turn.")
	next := reporter.Run(context.Background(), state)

	assert.Equal(t, Finish, next)
	assert.Empty(t, summaryGen.prompts)
	assert.Contains(t, reportGen.prompts[0], "A summary from a previous turn.")
	assert.Contains(t, state.FinalResponse(), "Your report is ready: ")
}
