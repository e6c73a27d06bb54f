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
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// logRequest records the shape of each outgoing model request. It never
// blocks the call.
func logRequest(logger *slog.Logger) llmagent.BeforeModelCallback {
	return func(ctx agent.CallbackContext, req *model.LLMRequest) (*model.LLMResponse, error) {
		var texts, blobs, calls, responses int
		var mimeTypes []string
		for _, c := range req.Contents {
			if c == nil {
				continue
			}
			for _, p := range c.Parts {
				switch {
				case p == nil:
				case p.InlineData != nil:
					blobs++
					mimeTypes = append(mimeTypes, p.InlineData.MIMEType)
				case p.FunctionCall != nil:
					calls++
				case p.FunctionResponse != nil:
					responses++
				case p.Text != "":
					texts++
				}
			}
		}
		logger.DebugContext(ctx, "model request",
			"agent", ctx.AgentName(),
			"invocation", ctx.InvocationID(),
			"contents", len(req.Contents),
			"text_parts", texts,
			"inline_parts", blobs,
			"mime_types", mimeTypes,
			"function_calls", calls,
			"function_responses", responses,
		)
		return nil, nil
	}
}

// archiveImages saves images attached to the latest user message as
// artifacts named user_image_<part index>.<subtype>. Save failures are logged
// and the model call proceeds.
func archiveImages(logger *slog.Logger) llmagent.BeforeModelCallback {
	return func(ctx agent.CallbackContext, req *model.LLMRequest) (*model.LLMResponse, error) {
		if len(req.Contents) == 0 {
			return nil, nil
		}
		last := req.Contents[len(req.Contents)-1]
		if last == nil || last.Role != string(genai.RoleUser) {
			return nil, nil
		}
		for i, part := range last.Parts {
			if part == nil || part.InlineData == nil || !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			name := imageArtifactName(i, part.InlineData.MIMEType)
			if _, err := ctx.Artifacts().Save(ctx, name, part); err != nil {
				logger.WarnContext(ctx, "failed to save user image", "artifact", name, "err", err)
				continue
			}
			logger.InfoContext(ctx, "saved user image", "artifact", name, "bytes", len(part.InlineData.Data))
		}
		return nil, nil
	}
}

func imageArtifactName(i int, mimeType string) string {
	ext := strings.TrimPrefix(mimeType, "image/")
	if j := strings.IndexAny(ext, "+;"); j >= 0 {
		ext = ext[:j]
	}
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("user_image_%d.%s", i, ext)
}

// logResponse records model errors and token usage. It passes the response
// through unchanged.
func logResponse(logger *slog.Logger) llmagent.AfterModelCallback {
	return func(ctx agent.CallbackContext, resp *model.LLMResponse, respErr error) (*model.LLMResponse, error) {
		if respErr != nil {
			logger.WarnContext(ctx, "model call failed", "agent", ctx.AgentName(), "err", respErr)
			return nil, nil
		}
		if resp == nil {
			return nil, nil
		}
		attrs := []any{"agent", ctx.AgentName(), "invocation", ctx.InvocationID()}
		if resp.ErrorCode != "" {
			attrs = append(attrs, "error_code", resp.ErrorCode, "error_message", resp.ErrorMessage)
		}
		if u := resp.UsageMetadata; u != nil {
			attrs = append(attrs,
				"prompt_tokens", u.PromptTokenCount,
				"response_tokens", u.CandidatesTokenCount,
				"total_tokens", u.TotalTokenCount,
			)
		}
		logger.DebugContext(ctx, "model response", attrs...)
		return nil, nil
	}
}
