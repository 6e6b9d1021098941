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

	"github.com/clipwise/video-insight/internal/core/model"
)

// maxHops bounds a single request's node executions. The graph is small and
// mostly linear, so a run that exceeds this is looping.
const maxHops = 8

// Router picks the entry node for a request. Supervisor is the production
// implementation; tests substitute a fixed route.
type Router interface {
	Route(ctx context.Context, state *model.ConversationState) ID
}

// Engine executes the supervisor-routed agent graph for one request: the
// router picks the entry node, then each node names its successor until one
// returns Finish.
type Engine struct {
	router Router
	nodes  map[ID]Node
}

// NewEngine is the constructor for the agent engine.
//
// Inputs:
//   - router: The routing supervisor.
//   - nodes: The executable agent nodes, registered by their ids.
//
// Outputs:
//   - *Engine: A pointer to the newly instantiated engine.
func NewEngine(router Router, nodes ...Node) *Engine {
	out := &Engine{
		router: router,
		nodes:  make(map[ID]Node, len(nodes)),
	}
	for _, n := range nodes {
		out.nodes[n.ID()] = n
	}
	return out
}

// Execute runs one user request through the graph and returns the final
// response text. The conversation state accumulates every node's output;
// the caller persists it to the chat history.
//
// Inputs:
//   - ctx: The request context.
//   - state: The conversation state seeded with the user request.
//
// Outputs:
//   - string: The final response text, never empty.
func (e *Engine) Execute(ctx context.Context, state *model.ConversationState) string {
	current := e.router.Route(ctx, state)
	slog.Info("request routed", "session", state.SessionID, "agent", string(current))

	for hops := 0; current != Finish; hops++ {
		if hops >= maxHops {
			slog.Error("agent graph exceeded hop limit, terminating", "session", state.SessionID)
			break
		}
		node, ok := e.nodes[current]
		if !ok {
			slog.Error("route names an unregistered agent, terminating", "agent", string(current))
			break
		}
		current = node.Run(ctx, state)
	}

	return state.FinalResponse()
}
