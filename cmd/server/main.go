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

// Package main is the entry point for the video insight backend server.
//
// The application runs a Gin web server exposing a REST API for chat-driven
// video understanding: uploading videos, polling background processing,
// asking grounded questions, and managing per-session files and history.
// The server is instrumented with OpenTelemetry for logging, tracing, and
// metrics.
//
// Functions:
//   - main: Sets up the server, configures routes, initializes services,
//     and handles graceful shutdown.
//   - ChatRouter: Registers the chat endpoints.
//   - UploadRouter: Registers the upload and file management endpoints.
//   - WorkflowRouter: Registers the background workflow status endpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/telemetry"
)

// chatRequest is the body of POST /chat.
type chatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// healthHandler answers liveness probes.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// newRouter builds the gin engine with its middleware and every route. The
// health check is registered at the root for load-balancer probes and under
// the API prefix for clients that only know the API base URL.
func newRouter(appName string) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware(appName))
	r.Use(cors.Default())

	r.GET("/health", healthHandler)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", healthHandler)
		ChatRouter(apiV1)
		UploadRouter(apiV1)
		WorkflowRouter(apiV1)
	}
	return r
}

// main is the primary entry point for the application. It orchestrates the
// setup of logging, telemetry, configuration, AI service clients, the web
// server, API routes, and the background ingestion queue, and handles
// graceful shutdown on interrupt.
func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config.Application.Name)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := newRouter(config.Application.Name)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}
	// Drain in-flight ingestion before tearing down clients.
	state.queue.Shutdown()
	state.cloud.Close()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("failed to shutdown telemetry", "error", err)
	}

	log.Println("Server exiting")
}

// ChatRouter sets up the conversational endpoints.
//
// Inputs:
//   - r: A *gin.RouterGroup the chat routes are added to.
//
// This function defines the following endpoints:
//   - POST /chat: Runs one user message through the agent engine and
//     returns the final response text.
//   - GET /chat/:session: Returns the session's stored message history.
//   - DELETE /chat/:session: Clears the session's history and its video
//     collection binding.
//   - GET /sessions: Lists the ids of all sessions holding history.
func ChatRouter(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	{
		chat.POST("", func(c *gin.Context) {
			var req chatRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			conversation := model.NewConversationState(req.SessionID, req.Message)
			response := state.engine.Execute(c.Request.Context(), conversation)

			// Persist the request's first and last words, not the
			// intermediate node payloads.
			state.history.Append(req.SessionID,
				model.Message{Role: model.RoleUser, Content: req.Message},
				model.Message{Role: model.RoleAssistant, Content: response},
			)
			c.JSON(http.StatusOK, gin.H{"session_id": req.SessionID, "response": response})
		})

		chat.GET("/:session", func(c *gin.Context) {
			sessionID := c.Param("session")
			c.JSON(http.StatusOK, gin.H{
				"session_id": sessionID,
				"messages":   state.history.Messages(sessionID),
			})
		})

		chat.DELETE("/:session", func(c *gin.Context) {
			sessionID := c.Param("session")
			state.history.Clear(sessionID)
			state.registry.Clear(sessionID)
			c.Status(http.StatusNoContent)
		})
	}

	r.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": state.history.Sessions()})
	})
}

// UploadRouter sets up the upload and file management endpoints.
//
// Inputs:
//   - r: A *gin.RouterGroup the routes are added to.
//
// This function defines the following endpoints:
//   - POST /upload: Accepts one multipart video file for a session, stores
//     it under a timestamped name, and enqueues background ingestion. The
//     response carries the workflow id to poll.
//   - GET /files/:session: Lists the session's uploaded files.
//   - DELETE /files/:session: Removes the session's uploaded files from
//     disk and clears the listing.
//   - DELETE /files/:session/:name: Removes one named file from disk and
//     from the listing.
func UploadRouter(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("", func(c *gin.Context) {
			sessionID := c.PostForm("session_id")
			if sessionID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
				return
			}
			file, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("get form err: %s", err.Error())})
				return
			}

			// Timestamp prefix keeps re-uploads of the same name distinct
			// on disk while the collection name stays stable.
			storedName := fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(file.Filename))
			localPath := filepath.Join(state.config.Storage.UploadDir, storedName)
			if err := c.SaveUploadedFile(file, localPath); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("upload file err: %s", err.Error())})
				return
			}

			kind, err := sniffMediaType(localPath)
			if err != nil || kind.MIME.Type != "video" {
				_ = os.Remove(localPath)
				c.JSON(http.StatusBadRequest, gin.H{"error": "only video files are accepted"})
				return
			}

			workflowID := state.queue.Submit(sessionID, localPath)
			state.files.Add(sessionID, model.UploadedFile{
				Name:       file.Filename,
				Path:       localPath,
				SizeBytes:  file.Size,
				MediaType:  kind.MIME.Value,
				WorkflowID: workflowID,
				UploadedAt: time.Now(),
			})

			c.JSON(http.StatusAccepted, gin.H{"workflow_id": workflowID, "file": file.Filename})
		})
	}

	files := r.Group("/files")
	{
		files.GET("/:session", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.files.Files(c.Param("session")))
		})

		files.DELETE("/:session", func(c *gin.Context) {
			sessionID := c.Param("session")
			for _, f := range state.files.Files(sessionID) {
				if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
					slog.Warn("failed to remove uploaded file", "path", f.Path, "error", err)
				}
			}
			state.files.Clear(sessionID)
			c.Status(http.StatusNoContent)
		})

		files.DELETE("/:session/:name", func(c *gin.Context) {
			sessionID := c.Param("session")
			removed, ok := state.files.Remove(sessionID, c.Param("name"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "no such file in this session"})
				return
			}
			if err := os.Remove(removed.Path); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to remove uploaded file", "path", removed.Path, "error", err)
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// WorkflowRouter sets up the background workflow status endpoint.
//
// Inputs:
//   - r: A *gin.RouterGroup the route is added to.
//
// This function defines the following endpoint:
//   - GET /workflow/:id: Returns the status record for the workflow id.
//     Unknown ids return a not_found record, never an error.
func WorkflowRouter(r *gin.RouterGroup) {
	workflows := r.Group("/workflow")
	{
		workflows.GET("/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.status.Get(c.Param("id")))
		})
	}
}

// sniffMediaType reads the stored file's magic bytes and classifies it. The
// file extension is never trusted.
func sniffMediaType(path string) (types.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Unknown, err
	}
	defer f.Close()

	// 261 bytes is enough for every magic number filetype knows.
	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return types.Unknown, err
	}
	return filetype.Match(head[:n])
}
