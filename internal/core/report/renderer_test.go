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

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleReport = `# Quarterly Review Report

## Executive Summary
The video covers the quarterly product review, **focusing** on the mobile
release and its remaining blockers.

## Key Topics
- Mobile release timeline
- Beta feedback
- Login issues

## Conclusion
The launch is on track once the login issues close.
`

func TestRenderWritesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	err := NewPDFRenderer().Render(sampleReport, path)
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
	// A PDF file always opens with its magic header.
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "report.pdf")

	err := NewPDFRenderer().Render("# Title\n\nBody text.", path)
	assert.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRenderRejectsEmptyMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	err := NewPDFRenderer().Render("   \n  ", path)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
