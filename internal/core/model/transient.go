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

// Package model defines the transient data structures that flow through the
// workflows and agents: conversation state, transcript segments, chunks,
// summaries, and workflow status records. None of these structs are
// persisted as-is; they live for the duration of a request or a background
// ingestion job, with durable state held by the vector store and the
// filesystem artifacts.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Message roles. The assistant role is "ai" on the wire to match the chat
// payloads the frontend exchanges.
const (
	RoleUser      = "user"
	RoleAssistant = "ai"
)

// SummaryChunk types distinguishing transcript-derived points from
// frame-derived points in the vector store.
const (
	ChunkTypeText  = "txt"
	ChunkTypeImage = "img"
)

// Workflow status values for background video processing.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusNotFound   = "not_found"
)

// Message is a single entry in a conversation. Content carries plain text;
// Payload carries the structured output of a workflow node (e.g. the audio
// file path produced by extraction) for the next node to consume. Exactly
// one of the two is typically set.
type Message struct {
	Role    string            `json:"role"`
	Content string            `json:"content,omitempty"`
	Payload map[string]string `json:"payload,omitempty"`
}

// ConversationState is the ordered sequence of messages for one request.
// Every agent node reads the most relevant prior message(s) and appends
// exactly one new message before returning; messages are never removed
// mid-workflow.
type ConversationState struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// NewConversationState creates a state seeded with the user's request.
func NewConversationState(sessionID string, userText string) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		Messages:  []Message{{Role: RoleUser, Content: userText}},
	}
}

// Append adds a message to the end of the conversation.
func (c *ConversationState) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// AppendText adds a plain text message with the given role.
func (c *ConversationState) AppendText(role string, text string) {
	c.Append(Message{Role: role, Content: text})
}

// AppendPayload adds a structured payload message authored by the assistant.
func (c *ConversationState) AppendPayload(payload map[string]string) {
	c.Append(Message{Role: RoleAssistant, Payload: payload})
}

// FirstUserMessage returns the original user request that started the
// workflow. Routing decisions use this message only, not the full history.
func (c *ConversationState) FirstUserMessage() string {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// LastUserMessage returns the most recent user text in the conversation.
func (c *ConversationState) LastUserMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser && c.Messages[i].Content != "" {
			return c.Messages[i].Content
		}
	}
	return ""
}

// LastAssistantText returns the most recent assistant-authored text message,
// skipping structured payload messages. Used by the report agent to locate
// the summary it should reformat.
func (c *ConversationState) LastAssistantText() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant && c.Messages[i].Content != "" {
			return c.Messages[i].Content
		}
	}
	return ""
}

// LastPayload returns the most recent structured payload message, or nil
// when no node has produced one. Chained nodes use this to consume their
// predecessor's output.
func (c *ConversationState) LastPayload() map[string]string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Payload != nil {
			return c.Messages[i].Payload
		}
	}
	return nil
}

// FinalResponse returns the text the caller should see: the last assistant
// text message, or a fallback when the workflow produced none.
func (c *ConversationState) FinalResponse() string {
	if text := c.LastAssistantText(); text != "" {
		return text
	}
	return "I wasn't able to produce a response for that request."
}

// TranscriptSegment is one time-stamped span of transcribed speech. The
// TimeframeKey follows the "<start>-<end>s" convention used in the YAML
// transcript artifact. Segments are ordered by start time and immutable once
// written.
type TranscriptSegment struct {
	TimeframeKey string  `json:"timeframe_key"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
}

// Chunk is a token-bounded, time-bounded contiguous span of transcript text
// prepared for summarization and embedding. Groups carries the ordered
// timeframe keys (or "#partN"-suffixed sub-part ids) that the chunk covers.
type Chunk struct {
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	Groups []string `json:"groups"`
	Text   string   `json:"text"`
}

// SummaryChunk pairs a chunk (or frame group) with its LLM-produced summary
// and topic list. Created by a summarizer, consumed exactly once by the
// indexer.
type SummaryChunk struct {
	Text    string   `json:"text"`
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
	Type    string   `json:"type"`
}

// EmbeddingText builds the canonical text representation used for both
// dense and sparse embedding of this chunk.
func (s *SummaryChunk) EmbeddingText() string {
	return fmt.Sprintf("Summary: %s\nTopics: %s\n---\n%s", s.Summary, strings.Join(s.Topics, ", "), s.Text)
}

// WorkflowStatus tracks the progress of one background ingestion job. It is
// created at upload time, mutated at defined checkpoints by the worker, and
// terminal at completed or failed.
type WorkflowStatus struct {
	WorkflowID  string    `json:"workflow_id"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Message     string    `json:"message"`
	CurrentStep string    `json:"current_step"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadedFile describes one file received by the upload endpoint, kept in
// the session's file listing.
type UploadedFile struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	MediaType  string    `json:"media_type"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
