// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

type countingRecorder struct {
	calls atomic.Int64
}

func (r *countingRecorder) IncrementAPICall() { r.calls.Add(1) }

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:        maxRetries,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryTransport_RetriesServerErrors(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantStatus int
		wantCalls  int64
	}{
		{"success first try", []int{200}, 3, 200, 1},
		{"502 then success", []int{502, 200}, 3, 200, 2},
		{"503 504 then success", []int{503, 504, 200}, 3, 200, 3},
		{"500 is not retried", []int{500, 200}, 3, 500, 1},
		{"404 is not retried", []int{404, 200}, 3, 404, 1},
		{"exhausted returns last response", []int{503, 503, 503, 503}, 2, 503, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var served atomic.Int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := served.Add(1) - 1
				status := tt.statuses[len(tt.statuses)-1]
				if int(n) < len(tt.statuses) {
					status = tt.statuses[n]
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			recorder := &countingRecorder{}
			client := &http.Client{Transport: newRetryTransport(http.DefaultTransport, fastRetry(tt.maxRetries), 0, recorder, nil)}

			resp, err := client.Get(server.URL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := served.Load(); got != tt.wantCalls {
				t.Errorf("server saw %d requests, want %d", got, tt.wantCalls)
			}
			if got := recorder.calls.Load(); got != tt.wantCalls {
				t.Errorf("recorder counted %d calls, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetryTransport_DoesNotRetryPost(t *testing.T) {
	var served atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := &http.Client{Transport: newRetryTransport(http.DefaultTransport, fastRetry(3), 0, nil, nil)}
	resp, err := client.Post(server.URL, "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if served.Load() != 1 {
		t.Errorf("POST was sent %d times, want 1", served.Load())
	}
}

func TestRetryTransport_RetriesConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	recorder := &countingRecorder{}
	client := &http.Client{Transport: newRetryTransport(http.DefaultTransport, fastRetry(2), 0, recorder, nil)}

	_, err := client.Get(url)
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if got := recorder.calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestRetryTransport_StopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := RetryConfig{MaxRetries: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour, BackoffMultiplier: 1}
	client := &http.Client{Transport: newRetryTransport(http.DefaultTransport, cfg, 0, nil, nil)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	_, err := client.Do(req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	rt := &retryTransport{config: DefaultRetryConfig()}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{9, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := rt.calculateBackoff(tt.attempt); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header string
		want   time.Duration
		wantOK bool
	}{
		{"503 with seconds", 503, "7", 7 * time.Second, true},
		{"503 without header", 503, "", 0, false},
		{"503 with http date", 503, "Wed, 21 Oct 2015 07:28:00 GMT", 0, false},
		{"502 ignores header", 502, "7", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			got, ok := retryAfter(resp)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("retryAfter() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 10 {
		t.Errorf("MaxRetries = %d, want 10", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != time.Second || cfg.MaxBackoff != 30*time.Second {
		t.Errorf("unexpected backoff bounds: %v .. %v", cfg.InitialBackoff, cfg.MaxBackoff)
	}
}

// stallingServer sends headers and a partial body, then holds the
// connection open until the client gives up.
func stallingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"number": 7, `))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRetryTransport_BodyReadTimeout(t *testing.T) {
	server := stallingServer(t)
	client := &http.Client{Transport: newRetryTransport(http.DefaultTransport, fastRetry(0), 100*time.Millisecond, nil, nil)}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	start := time.Now()
	_, err = io.ReadAll(resp.Body)
	elapsed := time.Since(start)

	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("body read took %v, want it cut off near 100ms", elapsed)
	}
}

func TestRetryTransport_BodyReadWithinTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := &http.Client{Transport: newRetryTransport(http.DefaultTransport, fastRetry(0), time.Second, nil, nil)}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil || string(body) != "[]" {
		t.Errorf("ReadAll() = %q, %v", body, err)
	}
}
