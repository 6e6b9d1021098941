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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRouteCleanOutput(t *testing.T) {
	route, err := ParseRoute(`{"next": "rag_workflow"}`)
	assert.NoError(t, err)
	assert.Equal(t, RAG, route)
}

func TestParseRouteStripsFencesAndSingleQuotes(t *testing.T) {
	raw := "```json\n{'next': 'rag_workflow'}\n```"
	route, err := ParseRoute(raw)
	assert.NoError(t, err)
	assert.Equal(t, RAG, route)
}

func TestParseRouteUnknownLiteralFallsBackToGeneral(t *testing.T) {
	route, err := ParseRoute(`{"next": "dance_workflow"}`)
	assert.Equal(t, GeneralQuestion, route)

	var parseErr *RoutingParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseRouteGarbageFallsBackToFinish(t *testing.T) {
	route, err := ParseRoute("I think you should use the rag workflow!")
	assert.Equal(t, Finish, route)

	var parseErr *RoutingParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestParseRouteMissingFieldFallsBackToFinish(t *testing.T) {
	route, err := ParseRoute(`{"other": "rag_workflow"}`)
	assert.Equal(t, Finish, route)
	assert.Error(t, err)
}

func TestParseArgument(t *testing.T) {
	args, err := ParseArgument(`{"video_file": "team_meeting.mp4"}`)
	assert.NoError(t, err)
	assert.Equal(t, "team_meeting.mp4", args.VideoFile)
}

func TestParseArgumentSingleQuotes(t *testing.T) {
	args, err := ParseArgument("```json\n{'video_file': 'demo.mov'}\n```")
	assert.NoError(t, err)
	assert.Equal(t, "demo.mov", args.VideoFile)
}

func TestParseArgumentMissingField(t *testing.T) {
	_, err := ParseArgument(`{"video_file": ""}`)
	var parseErr *ArgumentParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestNormalizeStructuredOutput(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, NormalizeStructuredOutput("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, NormalizeStructuredOutput("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, NormalizeStructuredOutput(`  {"a": 1}  `))
}
