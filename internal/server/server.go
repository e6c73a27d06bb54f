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

// Package server exposes the emotion analyzer and the breed lookup over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"catmood/internal/breed"
	"catmood/internal/emotion"
)

// DefaultMaxBodyBytes bounds request bodies; Gemini rejects inline data
// above roughly 20MB anyway.
const DefaultMaxBodyBytes = 20 << 20

// Analyzer is satisfied by *emotion.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, base64Image, mimeType, prompt string) string
}

type Options struct {
	Analyzer     Analyzer
	Logger       *slog.Logger
	MaxBodyBytes int64
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/analyze", analyzeHandler(opts.Analyzer, opts.MaxBodyBytes))
		ar.Get("/breeds/{breed}", breedHandler())
	})
	return r
}

type analyzeRequest struct {
	Image    string `json:"image"`
	MIMEType string `json:"mimeType"`
	Prompt   string `json:"prompt"`
}

type analyzeResponse struct {
	Text string `json:"text"`
}

type breedResponse struct {
	Breed string `json:"breed"`
	Info  string `json:"info"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// analyzeHandler answers 200 even when the agent fails: the analyzer's
// error text is the payload, as for any other result.
func analyzeHandler(a Analyzer, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "analyzer not configured"})
			return
		}

		var req analyzeRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
		if err := dec.Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if strings.TrimSpace(req.Image) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "image is required"})
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			req.Prompt = emotion.DefaultPrompt
		}

		text := a.Analyze(r.Context(), req.Image, req.MIMEType, req.Prompt)
		writeJSON(w, http.StatusOK, analyzeResponse{Text: text})
	}
}

func breedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "breed")
		writeJSON(w, http.StatusOK, breedResponse{Breed: name, Info: breed.Lookup(name)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.InfoContext(r.Context(), "http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", chimw.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
