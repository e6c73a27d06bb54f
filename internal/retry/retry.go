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

// Package retry holds the retry policy for calls to the Gemini API and turns
// it into an *http.Client that genai uses for every request.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Policy describes how failed model calls are retried. Attempts counts the
// first call, so Attempts=1 disables retries.
type Policy struct {
	Attempts     int
	ExpBase      float64
	InitialDelay time.Duration
	MaxDelay     time.Duration
	StatusCodes  []int
}

// DefaultPolicy retries rate limiting and transient server errors up to five
// times in total, waiting 1s, 7s, 49s and then MaxDelay between attempts.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:     5,
		ExpBase:      7,
		InitialDelay: time.Second,
		MaxDelay:     time.Minute,
		StatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

func (p Policy) Validate() error {
	switch {
	case p.Attempts < 1:
		return fmt.Errorf("retry attempts must be at least 1, got %d", p.Attempts)
	case p.ExpBase < 1:
		return fmt.Errorf("retry exponential base must be at least 1, got %v", p.ExpBase)
	case p.InitialDelay < 0 || p.MaxDelay < 0:
		return errors.New("retry delays must not be negative")
	}
	return nil
}

// Delay is the wait before retry number n, counting from zero.
func (p Policy) Delay(n int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.ExpBase, float64(n))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Retryable reports whether a response with the given status is retried.
func (p Policy) Retryable(status int) bool {
	return slices.Contains(p.StatusCodes, status)
}

// NewHTTPClient returns a client that applies p to every request. When the
// attempts are exhausted the last response is handed back unchanged, so the
// caller still sees the API's own error body.
func NewHTTPClient(p Policy, logger *slog.Logger) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = p.Attempts - 1
	c.RetryWaitMin = p.InitialDelay
	c.RetryWaitMax = p.MaxDelay
	c.Backoff = func(_, _ time.Duration, n int, _ *http.Response) time.Duration {
		return p.Delay(n)
	}
	c.CheckRetry = p.checkRetry
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if logger != nil {
		c.Logger = logger.With("component", "retry")
	} else {
		c.Logger = nil
	}
	return c.StandardClient()
}

func (p Policy) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		// Transport errors: defer to the library's judgement of what is
		// transient (it refuses TLS and redirect failures).
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return p.Retryable(resp.StatusCode), nil
}
