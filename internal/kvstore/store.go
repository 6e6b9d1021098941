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

// Package kvstore provides a small key-value abstraction used for the
// mutable application state that outlives a single request: the mapping of
// chat sessions to vector collections, workflow status records, and chat
// histories. Keeping it behind an interface lets the API layer and agents
// share one injected store and lets tests substitute a fresh instance per
// test instead of mutating process-global maps.
package kvstore

import "sync"

// Store is a minimal key-value store. Values are opaque to the store;
// callers own the type assertions.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (interface{}, bool)

	// Set stores value under key, replacing any existing value.
	Set(key string, value interface{})

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)

	// Keys returns a snapshot of all keys currently in the store.
	Keys() []string
}

// MemoryStore is an in-process Store backed by a mutex-guarded map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]interface{})}
}

// Get returns the value for key and whether it was present.
func (s *MemoryStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key, replacing any existing value.
func (s *MemoryStore) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key from the store.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Keys returns a snapshot of all keys currently in the store.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
