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

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"catmood/internal/breed"
	"catmood/internal/emotion"
	"catmood/internal/server"
)

type call struct {
	Image, MIMEType, Prompt string
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	text  string
	calls []call
}

func (f *fakeAnalyzer) Analyze(_ context.Context, image, mimeType, prompt string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{image, mimeType, prompt})
	return f.text
}

func newServer(t *testing.T, a server.Analyzer) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.NewRouter(server.Options{Analyzer: a, MaxBodyBytes: 1 << 10}))
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func TestHealthz(t *testing.T) {
	ts := newServer(t, &fakeAnalyzer{})

	st, body := doReq(t, "GET", ts.URL+"/healthz", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", st, body)
	}
}

func TestAnalyzeReturnsTextVerbatim(t *testing.T) {
	fa := &fakeAnalyzer{text: "Happy"}
	ts := newServer(t, fa)

	st, body := doReq(t, "POST", ts.URL+"/api/analyze", map[string]string{
		"image":    "aGVsbG8=",
		"mimeType": "image/jpeg",
		"prompt":   "How is the cat?",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, body)
	}
	if resp.Text != "Happy" {
		t.Errorf("text = %q, want Happy", resp.Text)
	}
	want := []call{{"aGVsbG8=", "image/jpeg", "How is the cat?"}}
	if diff := cmp.Diff(want, fa.calls); diff != "" {
		t.Errorf("analyzer calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeDefaultsPrompt(t *testing.T) {
	fa := &fakeAnalyzer{text: "Curious"}
	ts := newServer(t, fa)

	st, body := doReq(t, "POST", ts.URL+"/api/analyze", map[string]string{"image": "aGVsbG8=", "mimeType": "image/png"})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}
	if len(fa.calls) != 1 || fa.calls[0].Prompt != emotion.DefaultPrompt {
		t.Errorf("analyzer calls = %+v, want the default prompt", fa.calls)
	}
}

func TestAnalyzeFailureIsStillText(t *testing.T) {
	failure := emotion.ErrorPrefix + "quota exceeded"
	ts := newServer(t, &fakeAnalyzer{text: failure})

	st, body := doReq(t, "POST", ts.URL+"/api/analyze", map[string]string{"image": "aGVsbG8=", "mimeType": "image/png"})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}
	if !strings.Contains(string(body), "quota exceeded") {
		t.Errorf("body = %s, want the analyzer's error text", body)
	}
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed json", "{not json", http.StatusBadRequest},
		{"missing image", map[string]string{"prompt": "hi"}, http.StatusBadRequest},
		{"too large", map[string]string{"image": strings.Repeat("A", 4<<10)}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{text: "Happy"}
			ts := newServer(t, fa)

			st, body := doReq(t, "POST", ts.URL+"/api/analyze", tt.body)
			if st != tt.want {
				t.Errorf("expected %d, got %d body=%s", tt.want, st, body)
			}
			if len(fa.calls) != 0 {
				t.Errorf("analyzer called %d times, want 0", len(fa.calls))
			}
		})
	}
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	ts := newServer(t, nil)

	st, _ := doReq(t, "POST", ts.URL+"/api/analyze", map[string]string{"image": "aGVsbG8="})
	if st != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", st)
	}
}

func TestBreedLookup(t *testing.T) {
	ts := newServer(t, &fakeAnalyzer{})

	for _, name := range []string{"Ragdoll", "tabby"} {
		st, body := doReq(t, "GET", ts.URL+"/api/breeds/"+name, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, body)
		}
		var resp struct {
			Breed string `json:"breed"`
			Info  string `json:"info"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Breed != name || resp.Info != breed.Lookup(name) {
			t.Errorf("GET /api/breeds/%s = %+v", name, resp)
		}
	}
}
