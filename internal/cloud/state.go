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

// Package cloud holds configuration and AI service clients. This file is
// central to the application's architecture: it initializes and holds all
// the client objects needed to communicate with external AI services. It
// acts as a dependency injection container, creating a single shared
// ServiceClients struct that is passed throughout the application.
//
// Logic Flow:
//  1. NewAiServiceClients is called at application startup.
//  2. It takes the application's configuration (Config) and a context.
//  3. It initializes the GenAI client, the Whisper transcription client, and
//     the Qdrant vector store.
//  4. It then reads the configuration to create and configure the agent
//     models (wrapped with rate limiting) and the embedding models, storing
//     them in maps keyed by logical name.
//  5. All initialized clients are bundled into the ServiceClients struct,
//     which API handlers, agents, and workflows draw from.
//
// Structs:
//   - ServiceClients: Container holding all initialized AI service clients.
//
// Functions:
//   - Close: Gracefully shuts down the client connections.
//   - NewAiServiceClients: Factory that creates and configures all clients
//     based on the application's configuration.
package cloud

import (
	"context"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/clipwise/video-insight/internal/core/vector"
)

// ServiceClients is a container for all the clients that interact with
// external AI services. The struct is created once at startup and shared
// across the application as a form of dependency injection.
type ServiceClients struct {
	GenAIClient     *genai.Client                           // Client for the Generative AI backend.
	WhisperClient   *openai.Client                          // Client for the audio transcription API.
	VectorStore     vector.Store                            // Hybrid vector database used for retrieval.
	EmbeddingModels map[string]*vector.GenAIEmbedder        // Configured dense embedding models, keyed by logical name.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel // Configured LLM models wrapped with rate limiting, keyed by logical name.
}

// Close releases external connections. The GenAI and Whisper clients are
// HTTP-based and hold no persistent connection; the vector store owns a gRPC
// channel that must be closed.
func (c *ServiceClients) Close() {
	if c.VectorStore != nil {
		if err := c.VectorStore.Close(); err != nil {
			slog.Warn("failed to close vector store", "error", err)
		}
	}
}

// NewAiServiceClients is a factory function that initializes all required AI
// service clients based on the provided configuration. It is the main entry
// point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context for the application, managing client lifecycles.
//   - config: A pointer to the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if any of the clients fail to initialize.
func NewAiServiceClients(ctx context.Context, config *Config) (clients *ServiceClients, err error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		slog.Error("error creating genai client", "error", err)
		return nil, err
	}

	// The transcription service speaks the OpenAI audio API. A custom base
	// URL allows pointing at any compatible endpoint.
	whisperConfig := openai.DefaultConfig(config.Whisper.APIKey)
	if config.Whisper.BaseURL != "" {
		whisperConfig.BaseURL = config.Whisper.BaseURL
	}
	whisperClient := openai.NewClientWithConfig(whisperConfig)

	store, err := vector.NewQdrantStore(ctx, vector.QdrantConfig{
		Host:   config.Qdrant.Host,
		Port:   config.Qdrant.Port,
		APIKey: config.Qdrant.APIKey,
		UseTLS: config.Qdrant.UseTLS,
	})
	if err != nil {
		slog.Error("error connecting to vector store", "error", err)
		return nil, err
	}

	// One dense embedder per configured embedding model.
	embeddingModels := make(map[string]*vector.GenAIEmbedder)
	for embKey, values := range config.EmbeddingModels {
		embeddingModels[embKey] = vector.NewGenAIEmbedder(gc.Models, values.Model, values.Dimensions)
	}

	// Create a generative model per agent config, apply its settings
	// (temperature, TopK, etc.), and wrap it in the rate-limiting decorator.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]
		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
			Tools:             []*genai.Tool{},
		}
		agentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	clients = &ServiceClients{
		GenAIClient:     gc,
		WhisperClient:   whisperClient,
		VectorStore:     store,
		EmbeddingModels: embeddingModels,
		AgentModels:     agentModels,
	}

	return clients, nil
}
