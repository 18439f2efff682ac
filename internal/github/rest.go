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
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v73/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	relaierrors "github.com/sirseerhq/sirseer-ingest/internal/errors"
	"github.com/sirseerhq/sirseer-ingest/internal/giterror"
	"github.com/sirseerhq/sirseer-ingest/pkg/version"
)

// DefaultAPIEndpoint is the public GitHub REST endpoint.
const DefaultAPIEndpoint = "https://api.github.com/"

// Options configures a RESTClient. Token and the TLS switch are fixed for
// the lifetime of the client.
type Options struct {
	Token string

	// APIEndpoint overrides the REST base URL, e.g. for GitHub Enterprise
	// ("https://github.example.com/api/v3/"). Empty means api.github.com.
	APIEndpoint string

	// VerifyTLS turns certificate verification on. Off is for self-signed
	// enterprise installs only.
	VerifyTLS bool

	// Timeout bounds connection setup, the wait for response headers and
	// the read of each response body. Zero means 30 seconds.
	Timeout time.Duration

	Retry    RetryConfig
	Recorder CallRecorder
	Logger   *zap.Logger
}

// RESTClient implements the Client interface on top of go-github.
// One RESTClient shares a single http.Client, so connection reuse and the
// retry policy are common to every resource it fetches.
type RESTClient struct {
	client    *gh.Client
	inspector giterror.Inspector
	logger    *zap.Logger
}

// NewRESTClient creates a GitHub REST client. The transport chain is
// oauth2 bearer auth -> retry -> base transport with timeouts and TLS settings.
func NewRESTClient(opts Options) (*RESTClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if !opts.VerifyTLS {
		logger.Warn("TLS certificate verification is disabled for GitHub requests")
	}

	base := newBaseTransport(timeout, opts.VerifyTLS)
	retrying := newRetryTransport(base, opts.Retry, timeout, opts.Recorder, logger)

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			Base:   retrying,
		},
	}

	client := gh.NewClient(httpClient)
	client.UserAgent = fmt.Sprintf("sirseer-ingest/%s", version.Version)

	if opts.APIEndpoint != "" {
		endpoint := opts.APIEndpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		baseURL, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API endpoint %q: %w", opts.APIEndpoint, err)
		}
		client.BaseURL = baseURL
	}

	return &RESTClient{
		client:    client,
		inspector: giterror.NewErrorChainInspector(giterror.NewInspector()),
		logger:    logger,
	}, nil
}

// ListPullRequests fetches one page of pull request summaries.
func (c *RESTClient) ListPullRequests(ctx context.Context, owner, repo string, opts ListOptions) ([]PullRequest, error) {
	prs, _, err := c.client.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{
		State:     opts.State,
		Sort:      opts.Sort,
		Direction: opts.Direction,
		ListOptions: gh.ListOptions{
			Page:    opts.Page,
			PerPage: opts.PerPage,
		},
	})
	if err != nil {
		return nil, c.mapError(err, fmt.Sprintf("list pull requests page %d", opts.Page))
	}

	result := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, convertPullRequest(pr))
	}
	return result, nil
}

// GetPullRequest fetches a single pull request by number.
func (c *RESTClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, c.mapError(err, fmt.Sprintf("get pull request #%d", number))
	}
	result := convertPullRequest(pr)
	return &result, nil
}

// ListCommits fetches one page of commits on a pull request.
func (c *RESTClient) ListCommits(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]Commit, error) {
	commits, _, err := c.client.PullRequests.ListCommits(ctx, owner, repo, number, listOptions(opts))
	if err != nil {
		return nil, c.mapError(err, fmt.Sprintf("list commits for #%d page %d", number, opts.Page))
	}

	result := make([]Commit, 0, len(commits))
	for _, commit := range commits {
		result = append(result, Commit{
			SHA:    commit.GetSHA(),
			Author: Author{Login: commit.GetAuthor().GetLogin()},
		})
	}
	return result, nil
}

// ListFiles fetches one page of files changed by a pull request.
func (c *RESTClient) ListFiles(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]File, error) {
	files, _, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, listOptions(opts))
	if err != nil {
		return nil, c.mapError(err, fmt.Sprintf("list files for #%d page %d", number, opts.Page))
	}

	result := make([]File, 0, len(files))
	for _, file := range files {
		result = append(result, File{
			Filename: file.GetFilename(),
			Status:   file.GetStatus(),
		})
	}
	return result, nil
}

// ListReviews fetches one page of reviews on a pull request.
func (c *RESTClient) ListReviews(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]Review, error) {
	reviews, _, err := c.client.PullRequests.ListReviews(ctx, owner, repo, number, listOptions(opts))
	if err != nil {
		return nil, c.mapError(err, fmt.Sprintf("list reviews for #%d page %d", number, opts.Page))
	}

	result := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		result = append(result, Review{
			ID:          review.GetID(),
			Author:      Author{Login: review.GetUser().GetLogin()},
			State:       review.GetState(),
			SubmittedAt: review.GetSubmittedAt().Time,
		})
	}
	return result, nil
}

func listOptions(opts PageOptions) *gh.ListOptions {
	return &gh.ListOptions{Page: opts.Page, PerPage: opts.PerPage}
}

func convertPullRequest(pr *gh.PullRequest) PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.GetName())
	}

	result := PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		Labels:    labels,
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
		Merged:    pr.GetMerged(),
		Author:    Author{Login: pr.GetUser().GetLogin()},
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Time
		result.MergedAt = &mergedAt
	}
	return result
}

// mapError wraps err with the sentinel matching its cause.
// Transport failures are classified before message inspection so that a
// status-like number inside a URL is not mistaken for a status.
func (c *RESTClient) mapError(err error, op string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var sentinel error
	switch {
	case giterror.StatusCode(err) == 0 && (c.inspector.IsNetworkError(err) || c.inspector.IsTimeoutError(err)):
		sentinel = relaierrors.ErrNetworkFailure
	case c.inspector.IsRateLimitError(err):
		sentinel = relaierrors.ErrRateLimit
	case giterror.StatusCode(err) != 0:
		switch {
		case c.inspector.IsAuthError(err):
			sentinel = relaierrors.ErrInvalidToken
		case c.inspector.IsNotFoundError(err):
			sentinel = relaierrors.ErrNotFound
		case c.inspector.IsServerError(err):
			sentinel = relaierrors.ErrUpstream
		default:
			sentinel = relaierrors.ErrRequestFailed
		}
	default:
		sentinel = relaierrors.ErrRequestFailed
	}

	c.logger.Debug("github request failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, sentinel, err)
}
