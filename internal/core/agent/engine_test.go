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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clipwise/video-insight/internal/core/model"
)

// fixedRouter always routes to the same node.
type fixedRouter struct {
	target ID
}

func (r fixedRouter) Route(_ context.Context, _ *model.ConversationState) ID {
	return r.target
}

// stubNode appends a canned reply and hands off to its configured successor.
type stubNode struct {
	id    ID
	reply string
	next  ID
	runs  int
}

func (n *stubNode) ID() ID { return n.id }

func (n *stubNode) Run(_ context.Context, state *model.ConversationState) ID {
	n.runs++
	state.AppendText(model.RoleAssistant, n.reply)
	return n.next
}

func TestEngineDispatchesRoutedNode(t *testing.T) {
	answer := &stubNode{id: RAG, reply: "grounded answer", next: Finish}
	other := &stubNode{id: Summary, reply: "never runs", next: Finish}

	engine := NewEngine(fixedRouter{target: RAG}, answer, other)
	state := model.NewConversationState("s1", "what was discussed?")

	response := engine.Execute(context.Background(), state)

	assert.Equal(t, "grounded answer", response)
	assert.Equal(t, 1, answer.runs)
	assert.Equal(t, 0, other.runs)
}

func TestEngineFollowsNodeHandoff(t *testing.T) {
	second := &stubNode{id: Report, reply: "report done", next: Finish}
	first := &stubNode{id: Summary, reply: "summary done", next: Report}

	engine := NewEngine(fixedRouter{target: Summary}, first, second)
	state := model.NewConversationState("s1", "summarize then report")

	response := engine.Execute(context.Background(), state)

	assert.Equal(t, "report done", response)
	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, second.runs)
}

func TestEngineStopsOnUnregisteredAgent(t *testing.T) {
	engine := NewEngine(fixedRouter{target: FrameProcessing})
	state := model.NewConversationState("s1", "process frames of demo.mp4")

	// No node registered for the route: the engine terminates and the
	// state's fallback response is returned rather than a panic.
	response := engine.Execute(context.Background(), state)
	assert.NotEmpty(t, response)
}

func TestEngineBreaksRoutingLoops(t *testing.T) {
	// A node that routes to itself forever must be cut off by the hop cap.
	loop := &stubNode{id: GeneralQuestion, reply: "again", next: GeneralQuestion}

	engine := NewEngine(fixedRouter{target: GeneralQuestion}, loop)
	state := model.NewConversationState("s1", "hello")

	response := engine.Execute(context.Background(), state)

	assert.Equal(t, "again", response)
	assert.Equal(t, maxHops, loop.runs)
}
