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

// Package cloud holds configuration and AI service clients. This file
// implements a wrapper around the standard Generative AI client using the
// Decorator pattern to add rate limiting and a retry mechanism without
// altering the client itself.
//
// Why this matters:
//   - Rate Limiting: Hosted model endpoints have quotas on requests per
//     minute. The wrapper keeps the application inside those limits, which
//     would otherwise result in errors, especially during the frame
//     summarization fan-out.
//   - Retry Logic: Network requests can fail for transient reasons. The
//     wrapper automatically retries a failed request.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps a model handle plus its generation
//     config and adds a rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: Constructor for the wrapped model.
//   - GenerateContent: Intercepts calls to the AI model to enforce rate
//     limiting and retries.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// retryKey is the context key carrying the retry attempt count.
type retryKey struct{}

// QuotaAwareGenerativeAIModel is a decorator struct that wraps a generative
// model handle with rate-limiting capabilities. Calls flow through
// GenerateContent, which enforces the limiter before touching the API.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // Generation parameters applied to every call.
	ModelName               string                       // The model this wrapper addresses.
	ModelHandle             *genai.Models                // Handle to the underlying model API.
	RateLimit               rate.Limiter                 // Limiter controlling request frequency.
}

// NewQuotaAwareModel is a constructor function that creates a new
// QuotaAwareGenerativeAIModel from a generation config, a model name, the
// model handle, and a rate limit in requests per second.
//
// Inputs:
//   - wrapped: The generation config applied to each request.
//   - name: The model name to address.
//   - modelHandle: The genai model handle used to issue requests.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		// Allows a burst of requestsPerSecond events, replenishing the token
		// bucket at one token per second.
		RateLimit: *rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent wraps the underlying model call with rate limiting and
// retries.
//
// Logic Flow:
//  1. Check the rate limiter.
//  2. If a request is allowed:
//     a. Call the underlying GenerateContent.
//     b. On failure, check the retry count carried in the context.
//     c. If retries remain, wait and recursively call itself to try again.
//     d. If no retries are left, return the error.
//  3. If a request is NOT allowed (rate-limited):
//     a. Wait for a short period.
//     b. Recursively call itself to re-queue the request.
//
// Inputs:
//   - ctx: The context for the request. It also carries the retry state.
//   - content: The multi-modal prompt content.
//
// Outputs:
//   - *genai.GenerateContentResponse: The model response on success.
//   - error: An error if the request fails after all retries.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	if q.RateLimit.Allow() {
		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err != nil {
			retryCount, ok := ctx.Value(retryKey{}).(int)
			if !ok {
				retryCount = 0
			}
			if retryCount > 3 {
				return nil, errors.New("failed generation on max retries")
			}
			errCtx := context.WithValue(ctx, retryKey{}, retryCount+1)
			// Give the service time to recover before retrying.
			time.Sleep(time.Second * 30)
			return q.GenerateContent(errCtx, content)
		}
		return resp, err
	}
	// Rate limited: pause this request, then try the limiter again.
	time.Sleep(time.Second * 5)
	return q.GenerateContent(ctx, content)
}
