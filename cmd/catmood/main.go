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

// Command catmood reads a cat's emotion from a photo using a Gemini agent.
//
//	catmood analyze -image cat.jpg [-prompt "..."] [-mime image/jpeg]
//	catmood serve [-addr :8080]
//	catmood [console|web ...]   # anything else goes to the ADK launcher
//
// The API key is read from KEY.env (or $CATMOOD_ENV_FILE) and the
// environment: GOOGLE_API_KEY, falling back to GEMINI_API_KEY.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/artifact"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
	"google.golang.org/adk/session"

	"catmood/internal/config"
	"catmood/internal/diagnostics"
	"catmood/internal/emotion"
	"catmood/internal/retry"
	"catmood/internal/server"
)

var errAnalysisFailed = errors.New("analysis failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) && !errors.Is(err, errAnalysisFailed) {
			slog.Error("catmood failed", "err", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "analyze":
		return runAnalyze(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		return runLauncher(ctx, args)
	}
}

type app struct {
	cfg    config.Config
	logger *slog.Logger
	agent  agent.Agent
}

// setup loads configuration, runs the startup probe and builds the agent.
func setup(ctx context.Context, envFile string, archiveImages bool) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.EnvFile != "" {
		logger.Info("loaded env file", "path", cfg.EnvFile)
	}

	httpClient := retry.NewHTTPClient(cfg.Retry, logger)
	diagnostics.Probe(ctx, logger, func(ctx context.Context, name string) (agent.Agent, error) {
		m, err := emotion.NewModel(ctx, cfg.Model, cfg.APIKey, httpClient)
		if err != nil {
			return nil, err
		}
		return llmagent.New(llmagent.Config{Name: name, Model: m})
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := emotion.NewModel(ctx, cfg.Model, cfg.APIKey, httpClient)
	if err != nil {
		return nil, err
	}
	a, err := emotion.NewAgent(emotion.Options{
		Model:         m,
		ArchiveImages: archiveImages,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("agent ready", "agent", a.Name(), "model", cfg.Model)
	return &app{cfg: cfg, logger: logger, agent: a}, nil
}

func (a *app) analyzer() (*emotion.Analyzer, error) {
	r, err := emotion.NewRunnerResponder(a.agent, nil)
	if err != nil {
		return nil, err
	}
	return emotion.NewAnalyzer(r, a.logger), nil
}

func runAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	imagePath := fs.String("image", "", "path to the cat photo (required)")
	mimeType := fs.String("mime", "", "MIME type of the photo; guessed when empty")
	prompt := fs.String("prompt", emotion.DefaultPrompt, "question to ask about the photo")
	envFile := fs.String("env", "", "env file holding the API key (default KEY.env)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imagePath == "" {
		fs.Usage()
		return errors.New("-image is required")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		return err
	}
	if *mimeType == "" {
		*mimeType = guessMIMEType(*imagePath, data)
	}

	a, err := setup(ctx, *envFile, false)
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}

	text := an.Analyze(ctx, base64.StdEncoding.EncodeToString(data), *mimeType, *prompt)
	fmt.Println(text)
	if strings.HasPrefix(text, emotion.ErrorPrefix) {
		return errAnalysisFailed
	}
	return nil
}

func guessMIMEType(path string, data []byte) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if t == "" {
		t = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default $CATMOOD_ADDR or :8080)")
	envFile := fs.String("env", "", "env file holding the API key (default KEY.env)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := setup(ctx, *envFile, false)
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = a.cfg.Addr
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.NewRouter(server.Options{Analyzer: an, Logger: a.logger}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		// Retries alone may wait several minutes before the model answers.
		WriteTimeout: 5 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", *addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runLauncher(ctx context.Context, args []string) error {
	a, err := setup(ctx, "", true)
	if err != nil {
		return err
	}

	cfg := &launcher.Config{
		AgentLoader:     agent.NewSingleLoader(a.agent),
		SessionService:  session.InMemoryService(),
		ArtifactService: artifact.InMemoryService(),
	}
	l := full.NewLauncher()
	if err := l.Execute(ctx, cfg, args); err != nil {
		return fmt.Errorf("run failed: %w\n\n%s", err, l.CommandLineSyntax())
	}
	return nil
}
