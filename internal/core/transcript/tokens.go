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

// Package transcript handles the time-stamped transcript artifacts. This
// file provides token counting for the chunker, backed by the tiktoken BPE
// tables with a whitespace-word fallback when the encoding cannot be loaded
// (tiktoken fetches its tables on first use, which can fail offline).
package transcript

import (
	"log/slog"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tokenizer used when the configuration does not
// name one.
const DefaultEncoding = "cl100k_base"

// TokenCounter counts tokens in text for chunk budgeting.
type TokenCounter struct {
	encoder *tiktoken.Tiktoken
}

// NewTokenCounter loads the named tiktoken encoding. When loading fails the
// counter degrades to whitespace word counting, which over-merges slightly
// but keeps chunking functional.
func NewTokenCounter(encoding string) *TokenCounter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	encoder, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		slog.Warn("failed to load tokenizer encoding, falling back to word counts",
			"encoding", encoding, "error", err)
		return &TokenCounter{}
	}
	return &TokenCounter{encoder: encoder}
}

// Count returns the number of tokens in text.
func (t *TokenCounter) Count(text string) int {
	if t.encoder == nil {
		return len(strings.Fields(text))
	}
	return len(t.encoder.Encode(text, nil, nil))
}
