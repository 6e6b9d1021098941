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

// Package cloud holds configuration and AI service clients. This file
// contains general-purpose utility functions that support the package:
// hierarchical configuration loading, file system checks, and resilient
// interaction with the Generative AI API.
//
// Functions:
//   - fileExists: A simple helper to check if a file exists.
//   - LoadConfig: Implements a hierarchical configuration loader. It first
//     reads a base configuration file and then overwrites values with a
//     second, environment-specific file (e.g. .env.local.toml,
//     .env.test.toml). The environment is determined by an environment
//     variable.
//   - GenerateMultiModalResponse: A wrapper for making calls to a GenAI
//     model. It includes a retry mechanism for transient errors and
//     integrates with OpenTelemetry to record metrics for token usage and
//     retries.
//   - NewTextContent, NewFileData: Factory functions for genai content
//     objects, improving readability when constructing multi-modal prompts.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/BurntSushi/toml"
	"google.golang.org/genai"
)

// Constants for configuration loading and API interaction policies.
const (
	ConfigFileBaseName  = ".env"                        // The base name for configuration files (e.g. ".env.toml").
	ConfigFileExtension = ".toml"                       // The file extension for configuration files.
	ConfigSeparator     = "."                           // The separator used in config file names (e.g. ".env.local.toml").
	EnvConfigFilePrefix = "VIDEO_INSIGHT_CONFIG_PREFIX" // Env var for the config directory.
	EnvConfigRuntime    = "VIDEO_INSIGHT_RUNTIME"       // Env var for the runtime context (e.g. "local", "test", "prod").
	MaxRetries          = 3                             // The maximum number of times to retry a failed API call.
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides a hierarchical configuration loading mechanism. It
// first loads a base configuration file and then merges or overwrites its
// values with an environment-specific configuration file. The paths and
// environment are determined by environment variables.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct that will be
//     populated from the TOML files.
func LoadConfig(baseConfig interface{}) {
	// Read the directory path for config files from an environment variable.
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	// Read the runtime environment, defaulting to "test" when unset.
	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	// Base configuration file (e.g. "configs/.env.toml").
	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	// Environment-specific override file (e.g. "configs/.env.test.toml").
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// Values in the environment file overwrite the base config.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// GenerateMultiModalResponse is a helper function for executing multi-modal
// requests against a Generative AI model. It includes logic for retries and
// telemetry, and strips markdown code fences from the model output so
// structured responses can be parsed directly.
//
// Inputs:
//   - ctx: The context for the request, controlling cancellation and tracing.
//   - inputTokenCounter: An OpenTelemetry counter for prompt tokens used.
//   - outputTokenCounter: An OpenTelemetry counter for response tokens generated.
//   - retryCounter: An OpenTelemetry counter tracking the number of retries.
//   - tryCount: The current attempt number for this request (starts at 0).
//   - model: The rate-limited, quota-aware generative model to use.
//   - content: The multi-modal prompt content (text, images, video).
//
// Outputs:
//   - string: The concatenated text content from the model's response.
//   - error: An error if the request fails after all retries.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)

	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateMultiModalResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	value = ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += fmt.Sprint(part.Text)
			}
		}
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimPrefix(value, "```")
	value = strings.TrimSuffix(value, "```")
	return strings.TrimSpace(value), nil
}

// NewTextContent is a factory function for creating text-only prompt content.
//
// Inputs:
//   - in: The string content for the prompt.
//
// Outputs:
//   - []*genai.Content: Content carrying the text, ready for GenerateContent.
func NewTextContent(in string) []*genai.Content {
	return genai.Text(in)
}

// NewFileData is a factory function for creating a file data reference.
//
// Inputs:
//   - in: The URI of the file.
//   - mimeType: The MIME type of the file (e.g. "video/mp4").
//
// Outputs:
//   - genai.FileData: A file data reference for multi-modal prompts.
func NewFileData(in string, mimeType string) genai.FileData {
	return genai.FileData{FileURI: in, MIMEType: mimeType}
}

// NewInlineImage wraps raw image bytes as an inline prompt part, used when
// sending sampled video frames to a vision model.
//
// Inputs:
//   - data: The raw image bytes.
//   - mimeType: The MIME type of the image (e.g. "image/jpeg").
//
// Outputs:
//   - *genai.Part: A part carrying the inline image data.
func NewInlineImage(data []byte, mimeType string) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}}
}
