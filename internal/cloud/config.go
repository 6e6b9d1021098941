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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files, and holds the clients for the external AI services
// the application depends on (generative models, transcription, the vector
// database).
//
// This file centralizes all configuration-related structs, making it easy to
// understand and manage the application's configurable parameters.
//
// Structs:
//   - Storage: Local filesystem layout for media artifacts.
//   - Qdrant: Connection settings for the vector database.
//   - Whisper: Connection settings for the audio transcription service.
//   - Chunking: Token budget settings for transcript chunking.
//   - Frames: Sampling and grouping settings for video frame extraction.
//   - PromptTemplates: Text templates for prompts sent to GenAI models.
//   - GenAiEmbeddingModel: Configuration for an embedding model.
//   - GenAiLLMModel: Configuration for a Large Language Model (LLM).
//   - Config: The top-level struct aggregating all other configuration.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. These settings are non-restrictive, allowing all content
// categories to pass through without being blocked, which suits controlled
// environments where the input media is trusted.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Storage represents the local filesystem layout for media artifacts. Every
// uploaded video gets its own subtree under DataDir containing extracted
// audio, sampled frames, and the transcript.
type Storage struct {
	DataDir    string `toml:"data_dir"`    // Root directory for per-video artifact trees.
	UploadDir  string `toml:"upload_dir"`  // Directory where raw uploads are written.
	ReportsDir string `toml:"reports_dir"` // Directory where generated PDF reports are written.
}

// Qdrant represents the connection configuration for the vector database.
type Qdrant struct {
	Host   string `toml:"host"`    // Hostname of the Qdrant gRPC endpoint.
	Port   int    `toml:"port"`    // Port of the Qdrant gRPC endpoint.
	APIKey string `toml:"api_key"` // Optional API key for Qdrant Cloud.
	UseTLS bool   `toml:"use_tls"` // Whether to connect over TLS.
}

// Whisper represents the configuration for the audio transcription service.
// The service speaks the OpenAI audio API, so BaseURL may point at any
// compatible endpoint.
type Whisper struct {
	BaseURL string `toml:"base_url"` // Optional override for the API base URL.
	APIKey  string `toml:"api_key"`  // API key for the transcription service.
	Model   string `toml:"model"`    // Transcription model name (e.g. "whisper-1").
}

// Chunking holds the token budget settings used when splitting transcripts
// into retrieval units.
type Chunking struct {
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens per chunk.
	Encoding  string `toml:"encoding"`   // Tokenizer encoding name (e.g. "cl100k_base").
}

// Frames holds the sampling and grouping settings for video frame extraction.
type Frames struct {
	IntervalSeconds int `toml:"interval_seconds"` // Seconds between sampled frames.
	GroupSeconds    int `toml:"group_seconds"`    // Seconds of video covered by one frame group.
}

// PromptTemplates holds the templates for the different prompts sent to the
// generative models. Each template is a Go text/template whose fields are
// filled in by the agent or command that uses it.
type PromptTemplates struct {
	Supervisor       string `toml:"supervisor"`        // Routing prompt for the supervisor agent.
	Argument         string `toml:"argument"`          // Prompt extracting a video file argument from a request.
	General          string `toml:"general"`           // Prompt for general conversational answers.
	ChunkSummary     string `toml:"chunk_summary"`     // Prompt for summarizing a transcript chunk.
	FrameDescription string `toml:"frame_description"` // Vision prompt describing a single frame.
	FrameSynthesis   string `toml:"frame_synthesis"`   // Prompt combining frame descriptions for a group.
	RagAnswer        string `toml:"rag_answer"`        // Prompt answering a question from retrieved context.
	Summary          string `toml:"summary"`           // Prompt for the chronological video summary.
	Report           string `toml:"report"`            // Prompt for the structured markdown report.
}

// GenAiEmbeddingModel represents the configuration for an embedding model.
type GenAiEmbeddingModel struct {
	Model                string `toml:"model"`                   // The name of the embedding model.
	Dimensions           int    `toml:"dimensions"`              // The fixed output dimensionality.
	MaxRequestsPerMinute int    `toml:"max_requests_per_minute"` // The maximum number of requests allowed per minute.
}

// GenAiLLMModel represents the configuration for a large language model (LLM).
type GenAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other configuration
// structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application.
		GoogleProjectId string `toml:"google_project_id"` // Google Cloud project for the GenAI backend.
		GoogleLocation  string `toml:"location"`          // Google Cloud location for the GenAI backend.
		ThreadPoolSize  int    `toml:"thread_pool_size"`  // Worker pool size for parallel processing tasks.
	} `toml:"application"`
	Storage         Storage                        `toml:"storage"`          // Local artifact layout.
	Qdrant          Qdrant                         `toml:"qdrant"`           // Vector database connection.
	Whisper         Whisper                        `toml:"whisper"`          // Transcription service connection.
	Chunking        Chunking                       `toml:"chunking"`         // Transcript chunking budget.
	Frames          Frames                         `toml:"frames"`           // Frame sampling settings.
	PromptTemplates PromptTemplates                `toml:"prompt_templates"` // Prompt templates.
	EmbeddingModels map[string]GenAiEmbeddingModel `toml:"embedding_models"` // Embedding models, keyed by a logical name (e.g. "default").
	AgentModels     map[string]GenAiLLMModel       `toml:"agent_models"`     // LLM models, keyed by a logical name (e.g. "reasoning", "vision").
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance. The maps must be initialized so the configuration loader can
// populate them without nil map panics.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		EmbeddingModels: make(map[string]GenAiEmbeddingModel),
		AgentModels:     make(map[string]GenAiLLMModel),
	}
}
