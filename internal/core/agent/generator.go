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

package agent

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/clipwise/video-insight/internal/cloud"
	"github.com/clipwise/video-insight/internal/core/cor"
)

// textGenerator is the one-prompt-in, one-text-out contract the agent nodes
// draft with. Production nodes use the rate-limited generator below.
type textGenerator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// generator wraps a rate-limited model with the token and retry counters
// every agent node reports, mirroring what the ingestion commands do.
type generator struct {
	model              *cloud.QuotaAwareGenerativeAIModel
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

func newGenerator(name string, model *cloud.QuotaAwareGenerativeAIModel) *generator {
	meter := otel.Meter(cor.MeterNamespace)
	out := &generator{model: model}
	out.inputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.genai.token.input", name))
	out.outputTokenCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.genai.token.output", name))
	out.retryCounter, _ = meter.Int64Counter(fmt.Sprintf("%s.genai.retry", name))
	return out
}

// generate runs one text prompt through the model and returns the fenced
// and trimmed response text.
func (g *generator) generate(ctx context.Context, prompt string) (string, error) {
	return cloud.GenerateMultiModalResponse(ctx,
		g.inputTokenCounter, g.outputTokenCounter, g.retryCounter, 0,
		g.model, cloud.NewTextContent(prompt))
}

// renderPrompt executes a prompt template against its vocabulary.
func renderPrompt(tmpl *template.Template, vocabulary map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vocabulary); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// mustTemplate compiles a prompt template, failing fast on startup when the
// configuration is broken.
func mustTemplate(name string, text string) *template.Template {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		panic(err)
	}
	return tmpl
}
