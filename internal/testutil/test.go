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

// Package testutil provides utility functions and sample data to support the
// application's test suite. It sets up a consistent test environment, loads
// the test-specific configuration, and provides sample transcript data for
// chunking and retrieval tests.
package testutil

import (
	"log"
	"os"
	"testing"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/model"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs. This prevents the need to reload
// configuration files for every test, speeding up the test suite.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton StateManager, ensuring the configuration is
// loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper that checks if an error is not nil. If
// an error exists, it fails the test by calling t.Errorf.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS configures the environment variables the configuration loader
// depends on, directing it to the test-specific configuration files
// (configs/.env.test.toml) instead of production ones.
//
// Outputs:
//   - error: An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The loader looks for ".env.test.toml" for overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. It ensures
// the configuration is loaded from the TOML files only once and cached for
// subsequent calls.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded and cached configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// GetTestTranscriptSegments returns a small, ordered transcript covering
// thirty seconds of a fictional product meeting. Tests use it for chunking,
// artifact round-trips, and indexing.
//
// Outputs:
//   - []model.TranscriptSegment: The ordered sample segments.
func GetTestTranscriptSegments() []model.TranscriptSegment {
	return []model.TranscriptSegment{
		{TimeframeKey: "0-5s", Text: "Welcome everyone to the quarterly product review.", Start: 0, End: 5},
		{TimeframeKey: "5-12s", Text: "First on the agenda is the mobile release timeline.", Start: 5, End: 12},
		{TimeframeKey: "12-21s", Text: "The beta shipped last week and early feedback has been positive.", Start: 12, End: 21},
		{TimeframeKey: "21-30s", Text: "We still need to close out the two remaining login issues before launch.", Start: 21, End: 30},
	}
}
