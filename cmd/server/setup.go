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

// Package main contains the setup and initialization logic for the
// application's state. This file creates a centralized state manager that
// holds all shared dependencies: configuration, AI service clients, the
// session services, the agent engine, and the background ingestion queue.
//
// Functions:
//   - SetupOS: Configures the environment variables for configuration loading.
//   - GetConfig: A singleton accessor for the loaded application config.
//   - InitState: Creates all clients and services and wires them together.
package main

import (
	"context"
	"log"
	"os"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/agent"
	"github.com/clipwise/video-insight/internal/core/report"
	"github.com/clipwise/video-insight/internal/core/services"
	"github.com/clipwise/video-insight/internal/core/vector"
	"github.com/clipwise/video-insight/internal/core/workflow"
	"github.com/clipwise/video-insight/internal/jobs"
	"github.com/clipwise/video-insight/internal/kvstore"
)

// StateManager holds all the shared dependencies for the application,
// acting as a centralized container for clients and services. This avoids
// global variables scattered across handlers and makes dependency
// management cleaner.
type StateManager struct {
	config   *cloud.Config
	cloud    *cloud.ServiceClients
	registry *services.SessionRegistry
	history  *services.ChatHistory
	files    *services.FileRegistry
	status   *services.WorkflowStatusStore
	engine   *agent.Engine
	queue    *jobs.Queue
}

// state holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the TOML files. The runtime defaults to "local" for the server; the
// loader looks for ".env.local.toml" overrides on top of ".env.toml".
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration,
// loading it from the file system only once.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state: AI service clients,
// the session services over a shared key-value store, the video ingestion
// workflow with its background queue, and the agent engine with all of its
// nodes registered.
//
// Inputs:
//   - ctx: The root context for the application, governing client lifecycles.
func InitState(ctx context.Context) {
	config := GetConfig()

	serviceClients, err := cloud.NewAiServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = serviceClients

	// Storage directories must exist before the first upload.
	for _, dir := range []string{config.Storage.DataDir, config.Storage.UploadDir, config.Storage.ReportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
	}

	// All session services share one in-process key-value store.
	store := kvstore.NewMemoryStore()
	state.registry = services.NewSessionRegistry(store)
	state.history = services.NewChatHistory(store)
	state.files = services.NewFileRegistry(store)
	state.status = services.NewWorkflowStatusStore(store)

	ingestion := workflow.NewVideoIngestionWorkflow(config, serviceClients, state.registry)
	state.queue = jobs.NewQueue(config.Application.ThreadPoolSize, ingestion, state.status, state.history)

	// The retrieval agents query through the same embedder pair used at
	// indexing time.
	retriever := vector.NewRetriever(
		serviceClients.VectorStore,
		serviceClients.EmbeddingModels["default"],
		vector.NewBM25Embedder(),
		5,
	)

	reasoning := serviceClients.AgentModels["reasoning"]
	templates := config.PromptTemplates
	summarizer := agent.NewSummaryAgent(state.registry, retriever, reasoning, templates.Summary)
	state.engine = agent.NewEngine(
		agent.NewSupervisor(reasoning, templates.Supervisor),
		agent.NewGeneralQuestionAgent(reasoning, templates.General),
		agent.NewAudioProcessingAgent(reasoning, templates.Argument, config.Storage.UploadDir,
			serviceClients.WhisperClient, config.Whisper.Model, config.Storage.DataDir),
		agent.NewFrameProcessingAgent(reasoning, templates.Argument, config.Storage.UploadDir,
			config.Storage.DataDir, config.Frames.IntervalSeconds, config.Frames.GroupSeconds),
		summarizer,
		agent.NewRAGAgent(state.registry, retriever, reasoning, templates.RagAnswer),
		agent.NewReportAgent(state.registry, summarizer, reasoning, templates.Report,
			report.NewPDFRenderer(), config.Storage.ReportsDir),
	)
}
