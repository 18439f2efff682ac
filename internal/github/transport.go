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
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-ingest/internal/giterror"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// InitialBackoff is the wait before the first retry
	InitialBackoff time.Duration
	// MaxBackoff caps every wait, including Retry-After hints
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// CallRecorder is notified once per HTTP attempt, retries included.
type CallRecorder interface {
	IncrementAPICall()
}

// newBaseTransport creates the innermost transport. timeout bounds connection
// setup and the wait for response headers; body reads are bounded by the
// retry transport.
func newBaseTransport(timeout time.Duration, verifyTLS bool) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !verifyTLS, //nolint:gosec // operator opt-in via verify_tls=false
		},
	}
}

// retryTransport adds exponential backoff retry logic for transient failures.
// bodyTimeout bounds reading each response body once headers have arrived;
// zero leaves body reads unbounded.
type retryTransport struct {
	base        http.RoundTripper
	config      RetryConfig
	bodyTimeout time.Duration
	inspector   giterror.Inspector
	recorder    CallRecorder
	logger      *zap.Logger
}

// newRetryTransport creates a new transport with retry logic.
func newRetryTransport(base http.RoundTripper, cfg RetryConfig, bodyTimeout time.Duration, recorder CallRecorder, logger *zap.Logger) http.RoundTripper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryTransport{
		base:        base,
		config:      cfg,
		bodyTimeout: bodyTimeout,
		inspector:   giterror.NewErrorChainInspector(giterror.NewInspector()),
		recorder:    recorder,
		logger:      logger,
	}
}

// RoundTrip implements http.RoundTripper with retry logic. Only GET and HEAD
// are retried. When every attempt hit a retryable status the last response is
// returned unchanged so the caller sees the real status.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		t.record()
		return t.attempt(req)
	}

	maxAttempts := t.config.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		t.record()
		resp, err := t.attempt(req)

		// Success - return immediately
		if err == nil && !isRetryableStatusCode(resp.StatusCode) {
			return resp, nil
		}

		last := attempt == maxAttempts-1
		wait := t.calculateBackoff(attempt)

		if err != nil {
			if !giterror.IsRetryable(t.inspector, err) {
				return nil, err
			}
			lastErr = giterror.WithRetryInfo(err, attempt+1, maxAttempts)
			if last {
				break
			}
		} else {
			if last {
				return resp, nil
			}
			if hint, ok := retryAfter(resp); ok {
				wait = min(hint, t.config.MaxBackoff)
			}
			lastErr = giterror.WithRetryInfo(
				fmt.Errorf("received status %d", resp.StatusCode),
				attempt+1, maxAttempts)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		t.logger.Warn("retrying github request",
			zap.String("path", req.URL.Path),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("backoff", wait),
			zap.Error(lastErr))

		if err := sleep(req.Context(), wait); err != nil {
			return nil, err
		}
	}

	return nil, giterror.WithUserAction(lastErr,
		"Network connection failed. Please check your internet connection and try again")
}

// attempt sends one clone of req. The returned body must be closed, which
// also releases the attempt's context.
func (t *retryTransport) attempt(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	resp, err := t.base.RoundTrip(req.Clone(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = newDeadlineBody(resp.Body, cancel, t.bodyTimeout)
	return resp, nil
}

func (t *retryTransport) record() {
	if t.recorder != nil {
		t.recorder.IncrementAPICall()
	}
}

// calculateBackoff calculates the backoff duration for the given attempt
func (t *retryTransport) calculateBackoff(attempt int) time.Duration {
	backoff := float64(t.config.InitialBackoff) * math.Pow(t.config.BackoffMultiplier, float64(attempt))
	if backoff > float64(t.config.MaxBackoff) {
		backoff = float64(t.config.MaxBackoff)
	}
	return time.Duration(backoff)
}

// retryAfter reads a Retry-After header expressed in seconds.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// deadlineBody cancels its request when the body is not fully read within
// timeout, so a server that stalls after sending headers cannot block the
// caller forever.
type deadlineBody struct {
	body    io.ReadCloser
	cancel  context.CancelFunc
	timer   *time.Timer
	expired atomic.Bool
	timeout time.Duration
}

func newDeadlineBody(body io.ReadCloser, cancel context.CancelFunc, timeout time.Duration) *deadlineBody {
	b := &deadlineBody{body: body, cancel: cancel, timeout: timeout}
	if timeout > 0 {
		b.timer = time.AfterFunc(timeout, func() {
			b.expired.Store(true)
			cancel()
		})
	}
	return b
}

func (b *deadlineBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if err != nil && err != io.EOF && b.expired.Load() {
		return n, fmt.Errorf("response body not read within %s: %w", b.timeout, os.ErrDeadlineExceeded)
	}
	return n, err
}

func (b *deadlineBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}
	err := b.body.Close()
	b.cancel()
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetryableStatusCode checks if an HTTP status code should trigger a retry.
func isRetryableStatusCode(code int) bool {
	switch code {
	case http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
