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

// Package report renders the markdown produced by the report agent into a
// PDF document. The renderer understands the subset of markdown the report
// prompt asks for: headings, bullet lists, bold spans, and paragraphs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Renderer turns markdown text into a document on disk.
type Renderer interface {
	Render(markdown string, outputPath string) error
}

// PDFRenderer renders markdown into an A4 portrait PDF.
type PDFRenderer struct{}

// NewPDFRenderer is the constructor for the PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes the markdown as a PDF at outputPath, creating parent
// directories as needed.
//
// Inputs:
//   - markdown: The markdown text to render.
//   - outputPath: The destination file path.
//
// Outputs:
//   - error: An error when the PDF could not be produced or written.
func (r *PDFRenderer) Render(markdown string, outputPath string) error {
	if strings.TrimSpace(markdown) == "" {
		return fmt.Errorf("refusing to render an empty report")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	// Core fonts are cp1252; translate the UTF-8 the model emits.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(markdown, "\n") {
		text := strings.TrimRight(line, " \t")
		switch {
		case strings.HasPrefix(text, "# "):
			pdf.SetFont("Helvetica", "B", 18)
			pdf.MultiCell(0, 9, tr(stripInlineMarkup(strings.TrimPrefix(text, "# "))), "", "L", false)
			pdf.Ln(2)
		case strings.HasPrefix(text, "## "):
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, 7, tr(stripInlineMarkup(strings.TrimPrefix(text, "## "))), "", "L", false)
			pdf.Ln(1)
		case strings.HasPrefix(text, "### "):
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, tr(stripInlineMarkup(strings.TrimPrefix(text, "### "))), "", "L", false)
		case strings.HasPrefix(strings.TrimSpace(text), "- "), strings.HasPrefix(strings.TrimSpace(text), "* "):
			item := strings.TrimSpace(text)[2:]
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetX(24)
			pdf.MultiCell(0, 6, tr("- "+stripInlineMarkup(item)), "", "L", false)
			pdf.SetX(18)
		case strings.TrimSpace(text) == "":
			pdf.Ln(3)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(stripInlineMarkup(text)), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to write report pdf: %w", err)
	}
	return nil
}

// stripInlineMarkup removes the bold and italic markers the body font does
// not reproduce. Heading and list structure is handled line by line; inline
// emphasis degrades to plain text.
func stripInlineMarkup(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return s
}
