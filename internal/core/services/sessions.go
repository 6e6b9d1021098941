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

// Package services holds the per-session application services: the session
// to collection registry that lets retrieval agents resolve which index to
// query, the chat history, and the uploaded-file listing. All of them sit
// on an injected key-value store rather than package-level maps, so tests
// get isolated instances and a durable store can be substituted without
// touching callers.
package services

import (
	"strings"

	"github.com/clipwise/video-insight/internal/core/model"
	"github.com/clipwise/video-insight/internal/kvstore"
)

// Key prefixes partition the shared kvstore between the services.
const (
	collectionKeyPrefix = "session_collection:"
	historyKeyPrefix    = "chat_history:"
	filesKeyPrefix      = "session_files:"
)

// SessionRegistry maps a chat session to the vector collection of its most
// recently processed video. At most one collection is active per session;
// a new upload for the same session replaces the previous entry
// (last-write-wins).
type SessionRegistry struct {
	store kvstore.Store
}

// NewSessionRegistry creates a registry over the given store.
func NewSessionRegistry(store kvstore.Store) *SessionRegistry {
	return &SessionRegistry{store: store}
}

// Register binds the session to a collection, replacing any prior binding.
func (r *SessionRegistry) Register(sessionID string, collection string) {
	r.store.Set(collectionKeyPrefix+sessionID, collection)
}

// Collection resolves the session's active collection. The second return
// is false when no video has been processed for the session; callers must
// turn that into a user-facing message, never a crash.
func (r *SessionRegistry) Collection(sessionID string) (string, bool) {
	v, ok := r.store.Get(collectionKeyPrefix + sessionID)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok && name != ""
}

// Clear removes the session's collection binding. Clearing an unknown
// session is a no-op.
func (r *SessionRegistry) Clear(sessionID string) {
	r.store.Delete(collectionKeyPrefix + sessionID)
}

// ChatHistory stores the durable-per-process message log of each session.
// Each request's opening user message and final assistant response are
// appended here; the history endpoints read it back.
type ChatHistory struct {
	store kvstore.Store
}

// NewChatHistory creates a history over the given store.
func NewChatHistory(store kvstore.Store) *ChatHistory {
	return &ChatHistory{store: store}
}

// Append adds messages to the session's log.
func (h *ChatHistory) Append(sessionID string, messages ...model.Message) {
	existing := h.Messages(sessionID)
	h.store.Set(historyKeyPrefix+sessionID, append(existing, messages...))
}

// Messages returns a copy of the session's message log, oldest first.
func (h *ChatHistory) Messages(sessionID string) []model.Message {
	v, ok := h.store.Get(historyKeyPrefix + sessionID)
	if !ok {
		return nil
	}
	messages, _ := v.([]model.Message)
	out := make([]model.Message, len(messages))
	copy(out, messages)
	return out
}

// Clear removes the session's message log.
func (h *ChatHistory) Clear(sessionID string) {
	h.store.Delete(historyKeyPrefix + sessionID)
}

// Sessions lists the session ids that currently hold history.
func (h *ChatHistory) Sessions() []string {
	out := make([]string, 0)
	for _, key := range h.store.Keys() {
		if strings.HasPrefix(key, historyKeyPrefix) {
			out = append(out, strings.TrimPrefix(key, historyKeyPrefix))
		}
	}
	return out
}

// FileRegistry tracks the files uploaded in each session for the listing
// and deletion endpoints. The bytes themselves live on the filesystem; this
// holds only metadata.
type FileRegistry struct {
	store kvstore.Store
}

// NewFileRegistry creates a file registry over the given store.
func NewFileRegistry(store kvstore.Store) *FileRegistry {
	return &FileRegistry{store: store}
}

// Add records an uploaded file for the session.
func (f *FileRegistry) Add(sessionID string, file model.UploadedFile) {
	existing := f.Files(sessionID)
	f.store.Set(filesKeyPrefix+sessionID, append(existing, file))
}

// Files returns the session's uploaded files in upload order.
func (f *FileRegistry) Files(sessionID string) []model.UploadedFile {
	v, ok := f.store.Get(filesKeyPrefix + sessionID)
	if !ok {
		return nil
	}
	files, _ := v.([]model.UploadedFile)
	out := make([]model.UploadedFile, len(files))
	copy(out, files)
	return out
}

// Remove deletes the named file from the session's listing and reports
// whether it was present.
func (f *FileRegistry) Remove(sessionID string, name string) (model.UploadedFile, bool) {
	files := f.Files(sessionID)
	for i, file := range files {
		if file.Name == name {
			f.store.Set(filesKeyPrefix+sessionID, append(files[:i], files[i+1:]...))
			return file, true
		}
	}
	return model.UploadedFile{}, false
}

// Clear removes the session's file listing.
func (f *FileRegistry) Clear(sessionID string) {
	f.store.Delete(filesKeyPrefix + sessionID)
}
