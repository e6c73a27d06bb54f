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

// Package emotion builds the cat emotion agent and the analysis entry point
// that forwards an image and a prompt to it.
package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/agenttool"
	"google.golang.org/adk/tool/geminitool"
	"google.golang.org/genai"

	"catmood/internal/breed"
)

const (
	AgentName       = "CatEmotionAnalyzer"
	SearchAgentName = "search_agent"
)

const Instruction = "You are the Cat Emotion Analysis Agent. Your primary goal is to analyze " +
	"the provided image of a cat. You must identify the cat's dominant emotion " +
	"(e.g., Happy, Angry, Fearful, Curious, Relaxed) and provide a concise, " +
	"detailed explanation (2-3 sentences) based on observable visual cues. " +
	"You can use the provided tools if they help you perform a better analysis."

const searchInstruction = "You answer questions about cat behaviour, body language and breeds " +
	"using Google Search. Reply with a short factual summary of what you found."

// Options configures NewAgent.
type Options struct {
	// Name defaults to AgentName.
	Name  string
	Model model.LLM
	// SearchModel backs the web search sub-agent. Defaults to Model.
	SearchModel model.LLM
	// ArchiveImages saves inline images from the user's message as session
	// artifacts. The runner executing the agent must have an artifact
	// service configured.
	ArchiveImages bool
	Logger        *slog.Logger
}

// NewModel returns a Gemini model that sends its requests through
// httpClient. A nil client uses genai's default.
func NewModel(ctx context.Context, name, apiKey string, httpClient *http.Client) (model.LLM, error) {
	m, err := gemini.NewModel(ctx, name, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model %s: %w", name, err)
	}
	return m, nil
}

// NewAgent creates the cat emotion agent. Its tools are, in order, the breed
// lookup and a web search.
//
// Gemini refuses requests that mix its built-in Google Search with function
// declarations, so search runs in a sub-agent of its own that the main agent
// calls like any other tool.
func NewAgent(opts Options) (agent.Agent, error) {
	if opts.Model == nil {
		return nil, errors.New("emotion agent needs a model")
	}
	if opts.Name == "" {
		opts.Name = AgentName
	}
	if opts.SearchModel == nil {
		opts.SearchModel = opts.Model
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	breedTool, err := breed.NewTool()
	if err != nil {
		return nil, fmt.Errorf("failed to create breed tool: %w", err)
	}
	searchAgent, err := newSearchAgent(opts.SearchModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create search agent: %w", err)
	}

	before := []llmagent.BeforeModelCallback{logRequest(logger)}
	if opts.ArchiveImages {
		before = append(before, archiveImages(logger))
	}

	a, err := llmagent.New(llmagent.Config{
		Name:        opts.Name,
		Model:       opts.Model,
		Description: "Identifies a cat's dominant emotion from a photo and explains the visual cues.",
		Instruction: Instruction,
		Tools: []tool.Tool{
			breedTool,
			agenttool.New(searchAgent, nil),
		},
		BeforeModelCallbacks: before,
		AfterModelCallbacks:  []llmagent.AfterModelCallback{logResponse(logger)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return a, nil
}

func newSearchAgent(m model.LLM) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        SearchAgentName,
		Model:       m,
		Description: "Searches the web for background on cat behaviour, body language and breeds.",
		Instruction: searchInstruction,
		Tools:       []tool.Tool{geminitool.GoogleSearch{}},
	})
}
