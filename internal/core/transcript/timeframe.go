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

// Package transcript handles the time-stamped transcript artifacts produced
// by audio transcription: reading and writing the YAML mapping files,
// parsing timeframe keys, and splitting transcripts into token-bounded
// chunks for embedding.
package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeframe parses a "<start>-<end>s" key into its start and end
// seconds. Sub-part suffixes ("#partN") added by the chunker are ignored.
//
// Inputs:
//   - key: The timeframe key, e.g. "12.5-17s" or "0-5s#part2".
//
// Outputs:
//   - start, end: The parsed boundary seconds.
//   - error: An error when the key does not follow the convention.
func ParseTimeframe(key string) (start float64, end float64, err error) {
	base := key
	if idx := strings.Index(base, "#"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSuffix(strings.TrimSpace(base), "s")
	parts := strings.SplitN(base, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timeframe key %q", key)
	}
	start, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timeframe start in %q: %w", key, err)
	}
	end, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timeframe end in %q: %w", key, err)
	}
	return start, end, nil
}

// FormatTimeframe renders a start/end pair back into the "<start>-<end>s"
// key convention. Whole seconds render without a decimal point so round
// trips preserve keys like "0-5s".
func FormatTimeframe(start float64, end float64) string {
	return fmt.Sprintf("%s-%ss",
		strconv.FormatFloat(start, 'f', -1, 64),
		strconv.FormatFloat(end, 'f', -1, 64))
}
