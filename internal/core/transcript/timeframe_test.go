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

package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeframe(t *testing.T) {
	start, end, err := ParseTimeframe("12.5-17s")
	assert.NoError(t, err)
	assert.Equal(t, 12.5, start)
	assert.Equal(t, 17.0, end)
}

func TestParseTimeframeIgnoresSubPartSuffix(t *testing.T) {
	start, end, err := ParseTimeframe("0-5s#part2")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, start)
	assert.Equal(t, 5.0, end)
}

func TestParseTimeframeRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{"", "5s", "a-bs", "5-s"} {
		_, _, err := ParseTimeframe(key)
		assert.Error(t, err, "expected %q to be rejected", key)
	}
}

func TestFormatTimeframe(t *testing.T) {
	assert.Equal(t, "0-5s", FormatTimeframe(0, 5))
	assert.Equal(t, "12.5-17s", FormatTimeframe(12.5, 17))
}

func TestTimeframeRoundTrip(t *testing.T) {
	key := FormatTimeframe(21.48, 30)
	start, end, err := ParseTimeframe(key)
	assert.NoError(t, err)
	assert.Equal(t, 21.48, start)
	assert.Equal(t, 30.0, end)
}
