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

// Package agent implements the supervisor-routed conversational agents.
// This file is the structured-output boundary: every schema-constrained
// LLM response passes through here. Normalization tolerates the minor
// formatting drift models produce (code fences, single quotes) but parsing
// never guesses; a response that does not conform yields a typed error and
// a safe default.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clipwise/video-insight/internal/core/model"
)

// RoutingParseError reports a supervisor response that could not be parsed
// into a routing decision, or carried an unrecognized routing literal.
type RoutingParseError struct {
	Raw string
	Err error
}

func (e *RoutingParseError) Error() string {
	return fmt.Sprintf("routing output %q could not be resolved: %v", e.Raw, e.Err)
}

func (e *RoutingParseError) Unwrap() error { return e.Err }

// ArgumentParseError reports an argument-extraction response that did not
// conform to its schema.
type ArgumentParseError struct {
	Raw string
	Err error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("argument output %q could not be parsed: %v", e.Raw, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// NormalizeStructuredOutput strips markdown code fences and surrounding
// whitespace from a model response so the JSON body can be parsed.
func NormalizeStructuredOutput(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeStructured unmarshals normalized model output into target. When the
// first attempt fails and the text carries single quotes, it retries with
// single quotes converted to double quotes, matching the drift some models
// produce. Anything else fails.
func decodeStructured(raw string, target interface{}) error {
	s := NormalizeStructuredOutput(raw)
	err := json.Unmarshal([]byte(s), target)
	if err == nil {
		return nil
	}
	if strings.Contains(s, "'") {
		if retryErr := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), target); retryErr == nil {
			return nil
		}
	}
	return err
}

// ParseRoute resolves the supervisor's raw output into an agent id.
//
// Failure policy: an unparsable response or a missing `next` field routes
// to Finish, the safest default. A well-formed response carrying an
// unrecognized literal routes to the general-question agent instead, so a
// newly added workflow the enumeration does not yet cover degrades to a
// conversational answer rather than silently ending the request. Both
// cases return a *RoutingParseError alongside the fallback so the caller
// can log the drift.
//
// Inputs:
//   - raw: The supervisor model's raw text output.
//
// Outputs:
//   - ID: The resolved agent id, possibly a fallback.
//   - error: nil on a clean parse, otherwise a *RoutingParseError.
func ParseRoute(raw string) (ID, error) {
	var route model.RouteOutput
	if err := decodeStructured(raw, &route); err != nil {
		return Finish, &RoutingParseError{Raw: raw, Err: err}
	}
	if route.Next == "" {
		return Finish, &RoutingParseError{Raw: raw, Err: fmt.Errorf("missing next field")}
	}

	id := ID(route.Next)
	if _, known := knownRoutes[id]; known {
		return id, nil
	}
	return GeneralQuestion, &RoutingParseError{Raw: raw, Err: fmt.Errorf("unrecognized routing literal %q", route.Next)}
}

// ParseArgument resolves an argument-extraction response into its schema.
//
// Inputs:
//   - raw: The model's raw text output.
//
// Outputs:
//   - *model.ArgumentOutput: The parsed arguments.
//   - error: A *ArgumentParseError when the response does not conform.
func ParseArgument(raw string) (*model.ArgumentOutput, error) {
	var args model.ArgumentOutput
	if err := decodeStructured(raw, &args); err != nil {
		return nil, &ArgumentParseError{Raw: raw, Err: err}
	}
	if args.VideoFile == "" {
		return nil, &ArgumentParseError{Raw: raw, Err: fmt.Errorf("missing video_file field")}
	}
	return &args, nil
}
