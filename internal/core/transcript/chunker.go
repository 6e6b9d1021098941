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
// file implements the chunker: a pure function from an ordered transcript
// to token-bounded, time-ordered chunks ready for summarization and
// embedding.
//
// Algorithm:
//  1. Segments are sorted by start time and accumulated into a running
//     chunk while the combined token count stays within the budget.
//  2. When appending a segment would exceed the budget, the accumulator is
//     flushed and the segment starts a new one. Segment boundaries are
//     never split this way; a whole segment always lands in one chunk.
//  3. A single segment that alone exceeds the budget flushes the
//     accumulator and is split by a recursive splitter that prefers
//     paragraph, then sentence, then word boundaries before hard cuts.
//     Each resulting piece becomes its own chunk tagged with a "#partN"
//     suffix on the segment's group id.
package transcript

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clipwise/video-insight/internal/core/model"
)

// splitSeparators are tried in order by the recursive splitter, from the
// coarsest boundary to the finest.
var splitSeparators = []string{"\n\n", ". ", " "}

// Chunker splits ordered transcript segments into token-bounded chunks.
type Chunker struct {
	maxTokens int
	counter   *TokenCounter
}

// NewChunker creates a chunker with the given token budget per chunk.
//
// Inputs:
//   - maxTokens: The maximum token count per chunk.
//   - counter: The token counter used for budgeting.
//
// Outputs:
//   - *Chunker: The configured chunker.
func NewChunker(maxTokens int, counter *TokenCounter) *Chunker {
	return &Chunker{maxTokens: maxTokens, counter: counter}
}

// Chunk converts segments into an ordered sequence of chunks. Segments are
// never reordered, no segment is duplicated or dropped, and chunk start
// times are non-decreasing across the output.
//
// Inputs:
//   - segments: The transcript segments. They may arrive unsorted; the
//     chunker sorts a copy by start time.
//
// Outputs:
//   - []model.Chunk: The ordered, token-bounded chunks. Never contains an
//     empty chunk.
func (c *Chunker) Chunk(segments []model.TranscriptSegment) []model.Chunk {
	ordered := make([]model.TranscriptSegment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Start < ordered[b].Start
	})

	out := make([]model.Chunk, 0)
	var acc model.Chunk
	var accTexts []string
	accTokens := 0

	flush := func() {
		if len(accTexts) == 0 {
			return
		}
		acc.Text = strings.Join(accTexts, " ")
		out = append(out, acc)
		acc = model.Chunk{}
		accTexts = nil
		accTokens = 0
	}

	for _, seg := range ordered {
		segTokens := c.counter.Count(seg.Text)

		// A single segment over budget becomes its own run of split chunks.
		if segTokens > c.maxTokens {
			flush()
			pieces := c.split(seg.Text, splitSeparators)
			for i, piece := range pieces {
				out = append(out, model.Chunk{
					Start:  seg.Start,
					End:    seg.End,
					Groups: []string{fmt.Sprintf("%s#part%d", seg.TimeframeKey, i+1)},
					Text:   piece,
				})
			}
			continue
		}

		if accTokens+segTokens > c.maxTokens {
			flush()
		}

		if len(accTexts) == 0 {
			acc.Start = seg.Start
		}
		acc.End = seg.End
		acc.Groups = append(acc.Groups, seg.TimeframeKey)
		accTexts = append(accTexts, seg.Text)
		accTokens += segTokens
	}
	flush()

	return out
}

// split recursively divides text into pieces within the token budget,
// trying each separator in order before falling back to hard cuts.
func (c *Chunker) split(text string, seps []string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if c.counter.Count(text) <= c.maxTokens {
		return []string{text}
	}
	if len(seps) == 0 {
		return c.hardCut(text)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) <= 1 {
		return c.split(text, seps[1:])
	}

	var out []string
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			out = append(out, s)
		}
		buf.Reset()
	}
	for _, part := range parts {
		// A part still over budget recurses at the next finer boundary.
		if c.counter.Count(part) > c.maxTokens {
			flush()
			out = append(out, c.split(part, seps[1:])...)
			continue
		}
		if buf.Len() > 0 && c.counter.Count(buf.String()+part) > c.maxTokens {
			flush()
		}
		buf.WriteString(part)
	}
	flush()
	return out
}

// hardCut bisects text until every piece fits the budget. Only reached when
// a span has no usable boundaries at all.
func (c *Chunker) hardCut(text string) []string {
	if c.counter.Count(text) <= c.maxTokens {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) <= 1 {
		return []string{text}
	}
	mid := len(runes) / 2
	return append(c.hardCut(string(runes[:mid])), c.hardCut(string(runes[mid:]))...)
}
