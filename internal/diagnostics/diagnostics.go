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

// Package diagnostics reports, at startup, whether the agent stack can be
// built in this environment. It only logs; nothing here stops the process.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
)

const adkModule = "google.golang.org/adk"

// ProbeAgentName is the name given to the disposable agent.
const ProbeAgentName = "Test"

// BuildFunc creates an agent with the given name.
type BuildFunc func(ctx context.Context, name string) (agent.Agent, error)

type Report struct {
	GoVersion  string
	Executable string
	ADKVersion string
	// AgentCreated is set when build returned an agent.
	AgentCreated bool
	// Runnable is set when the agent could be attached to a runner.
	Runnable bool
	Err      error
}

// Probe builds a throwaway agent and checks it can be run, logging each
// step. Failures end up in the report and the log, never in a panic.
func Probe(ctx context.Context, logger *slog.Logger, build BuildFunc) Report {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "diagnostics")

	rep := Report{
		GoVersion:  runtime.Version(),
		ADKVersion: ModuleVersion(adkModule),
	}
	rep.Executable, _ = os.Executable()
	logger.InfoContext(ctx, "environment check",
		"go", rep.GoVersion,
		"executable", rep.Executable,
		"adk", rep.ADKVersion,
	)

	a, err := safeBuild(ctx, build)
	if err != nil {
		rep.Err = err
		logger.ErrorContext(ctx, "agent creation failed", "err", err)
		return rep
	}
	rep.AgentCreated = true
	logger.InfoContext(ctx, "agent object created", "agent", a.Name())

	if _, err := runner.New(runner.Config{
		AppName:        "catmood_probe",
		Agent:          a,
		SessionService: session.InMemoryService(),
	}); err != nil {
		rep.Err = err
		logger.ErrorContext(ctx, "agent cannot be run", "agent", a.Name(), "err", err)
		return rep
	}
	rep.Runnable = true
	logger.InfoContext(ctx, "agent can be run", "agent", a.Name())
	return rep
}

func safeBuild(ctx context.Context, build BuildFunc) (a agent.Agent, err error) {
	if build == nil {
		return nil, errors.New("no agent builder")
	}
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	a, err = build(ctx, ProbeAgentName)
	if err == nil && a == nil {
		err = errors.New("builder returned no agent")
	}
	return a, err
}

// ModuleVersion reports the version of a dependency compiled into the
// binary, or "unknown".
func ModuleVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version + " (replaced)"
		}
		return dep.Version
	}
	return "unknown"
}
