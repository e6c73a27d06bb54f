// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrorPrefix starts every failed analysis result.
const ErrorPrefix = "Error: ADK Agent failed to run. Details: "

// Analyzer is the analysis entry point. It never returns an error: failures
// come back as text starting with ErrorPrefix.
type Analyzer struct {
	responder Responder
	logger    *slog.Logger
}

func NewAnalyzer(r Responder, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{responder: r, logger: logger}
}

// Analyze sends the prompt and the base64 encoded image to the agent and
// returns its text unchanged. Nothing is retried or validated here beyond
// decoding the image.
func (a *Analyzer) Analyze(ctx context.Context, base64Image, mimeType, prompt string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = a.fail(ctx, fmt.Errorf("panic: %v", r))
		}
	}()

	if a.responder == nil {
		return a.fail(ctx, errors.New("no agent configured"))
	}
	msg, err := NewPayload(base64Image, mimeType, prompt)
	if err != nil {
		return a.fail(ctx, err)
	}
	text, err = a.responder.Respond(ctx, msg)
	if err != nil {
		return a.fail(ctx, err)
	}
	a.logger.DebugContext(ctx, "analysis complete", "mime_type", mimeType, "chars", len(text))
	return text
}

func (a *Analyzer) fail(ctx context.Context, err error) string {
	a.logger.ErrorContext(ctx, "analysis failed", "err", err)
	return ErrorPrefix + err.Error()
}
