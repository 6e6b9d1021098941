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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are used for "few-shot" prompting with the
// generative AI models. By providing a concrete example of the desired JSON
// output structure within the prompt itself, we guide the AI to return data
// that is consistent, correctly formatted, and easily parsable.
package model

// ChunkSummaryOutput is the schema for the structured output of the
// transcript chunk summarizer.
type ChunkSummaryOutput struct {
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
}

// RouteOutput is the schema for the supervisor's routing decision.
type RouteOutput struct {
	Next string `json:"next"`
}

// ArgumentOutput is the schema for argument extraction from free-text
// requests, such as resolving which video file the user means.
type ArgumentOutput struct {
	VideoFile string `json:"video_file"`
}

// GetExampleChunkSummary creates a sample ChunkSummaryOutput. It shows the
// AI the expected JSON structure for a transcript chunk summary, including
// the timeframe-inclusive phrasing and the topic list.
//
// Outputs:
//   - *ChunkSummaryOutput: A pointer to a hardcoded example summary.
func GetExampleChunkSummary() *ChunkSummaryOutput {
	return &ChunkSummaryOutput{
		Summary: "Between 0s and 45s the presenter introduces the quarterly revenue dashboard and walks through the three regions that exceeded their targets.",
		Topics:  []string{"quarterly revenue", "dashboard walkthrough", "regional targets"},
	}
}

// GetExampleRoute creates a sample RouteOutput. It shows the AI the exact
// one-field JSON object expected from a routing call.
//
// Outputs:
//   - *RouteOutput: A pointer to a hardcoded example route.
func GetExampleRoute() *RouteOutput {
	return &RouteOutput{Next: "rag_workflow"}
}

// GetExampleArgument creates a sample ArgumentOutput. It shows the AI the
// expected JSON structure when extracting a video file path from a request
// like "please process team_meeting.mp4".
//
// Outputs:
//   - *ArgumentOutput: A pointer to a hardcoded example argument.
func GetExampleArgument() *ArgumentOutput {
	return &ArgumentOutput{VideoFile: "team_meeting.mp4"}
}
