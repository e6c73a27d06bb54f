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

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestGuessMIMEType(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	tests := []struct {
		path string
		data []byte
		want string
	}{
		{"cat.jpg", nil, "image/jpeg"},
		{"CAT.PNG", nil, "image/png"},
		{"cat", png, "image/png"},
		{"notes", []byte("hello"), "text/plain"},
	}
	for _, tt := range tests {
		if got := guessMIMEType(tt.path, tt.data); got != tt.want {
			t.Errorf("guessMIMEType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAnalyzeRequiresImage(t *testing.T) {
	err := run(context.Background(), []string{"analyze", "-prompt", "hi"})
	if err == nil || err.Error() != "-image is required" {
		t.Errorf("run() = %v, want missing image error", err)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	err := run(context.Background(), []string{"analyze", "-image", filepath.Join(t.TempDir(), "nope.jpg")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("run() = %v, want a not-exist error", err)
	}
}

func TestServeRejectsUnknownFlag(t *testing.T) {
	err := run(context.Background(), []string{"serve", "-bogus"})
	if err == nil || errors.Is(err, flag.ErrHelp) {
		t.Errorf("run() = %v, want a flag error", err)
	}
}
