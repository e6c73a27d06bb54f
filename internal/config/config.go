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

// Package config loads catmood's settings from a local env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"catmood/internal/retry"
)

const (
	DefaultEnvFile = "KEY.env"
	DefaultModel   = "gemini-2.5-flash"
	DefaultAddr    = ":8080"
)

// ErrMissingAPIKey is returned by Validate when neither GOOGLE_API_KEY nor
// GEMINI_API_KEY is set after the env file has been loaded.
var ErrMissingAPIKey = errors.New("no API key: set GOOGLE_API_KEY or GEMINI_API_KEY")

type Config struct {
	// EnvFile is the path that was loaded. Empty if the file did not exist.
	EnvFile  string
	APIKey   string
	Model    string
	Addr     string
	LogLevel slog.Level
	Retry    retry.Policy
}

// Load reads envFile into the process environment and builds a Config from
// it. Variables already present in the environment win over the file. A
// missing file is not an error. An empty envFile means CATMOOD_ENV_FILE, or
// KEY.env when that is unset too.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = getenv("CATMOOD_ENV_FILE", DefaultEnvFile)
	}

	cfg := Config{
		Model: DefaultModel,
		Addr:  DefaultAddr,
		Retry: retry.DefaultPolicy(),
	}

	switch err := godotenv.Load(envFile); {
	case err == nil:
		cfg.EnvFile = envFile
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg.APIKey = getenv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))
	cfg.Model = getenv("CATMOOD_MODEL", cfg.Model)
	cfg.Addr = getenv("CATMOOD_ADDR", cfg.Addr)

	if lvl := os.Getenv("CATMOOD_LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return Config{}, fmt.Errorf("CATMOOD_LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

// Validate reports settings that make the remote model unusable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("empty model name")
	}
	return c.Retry.Validate()
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
