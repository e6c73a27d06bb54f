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
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/artifact"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const (
	appName = "catmood"
	userID  = "catmood_user"
)

// ErrNoText is returned when a run finishes without any final text.
var ErrNoText = errors.New("agent produced no text")

// Responder turns a multimodal message into the agent's text answer.
type Responder interface {
	Respond(ctx context.Context, msg *genai.Content) (string, error)
}

// RunnerResponder runs an agent through an ADK runner. Every call gets a
// fresh session, so calls share no conversation history and may run
// concurrently.
type RunnerResponder struct {
	runner    *runner.Runner
	sessions  session.Service
	agentName string
}

// NewRunnerResponder wraps a. artifacts may be nil; it must be set when the
// agent archives images.
func NewRunnerResponder(a agent.Agent, artifacts artifact.Service) (*RunnerResponder, error) {
	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:         appName,
		Agent:           a,
		SessionService:  sessions,
		ArtifactService: artifacts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return &RunnerResponder{runner: r, sessions: sessions, agentName: a.Name()}, nil
}

// Respond returns the concatenated text of the agent's final response.
func (r *RunnerResponder) Respond(ctx context.Context, msg *genai.Content) (string, error) {
	sessionID := uuid.NewString()
	if _, err := r.sessions.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer r.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
	})

	var sb strings.Builder
	for event, err := range r.runner.Run(ctx, userID, sessionID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	}) {
		if err != nil {
			return "", err
		}
		if event == nil || event.Author != r.agentName || event.Content == nil || !event.IsFinalResponse() {
			continue
		}
		for _, p := range event.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoText
	}
	return sb.String(), nil
}
