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
	"fmt"
	"sort"
	"sync"
	"time"

	relaierrors "github.com/sirseerhq/sirseer-ingest/internal/errors"
)

// Resource names accepted by MockClient.Fail.
const (
	ResourceList    = "list"
	ResourceGet     = "get"
	ResourceCommits = "commits"
	ResourceFiles   = "files"
	ResourceReviews = "reviews"
)

// MockClient is an in-memory implementation of the Client interface for testing.
// List endpoints are paged from the configured slices using Page and PerPage.
type MockClient struct {
	mu sync.Mutex

	// PullRequests is the list endpoint content, in the order it is served.
	PullRequests []PullRequest

	// Details is served by GetPullRequest. A missing entry yields ErrNotFound.
	Details map[int]*PullRequest

	Commits map[int][]Commit
	Files   map[int][]File
	Reviews map[int][]Review

	// Track calls for verification
	Calls           []Call
	LastListOptions ListOptions

	failures map[failureKey]error
}

// Call records a single request made against the mock.
type Call struct {
	Resource string
	Number   int
	Page     int
}

type failureKey struct {
	resource string
	number   int
	page     int
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	m := &MockClient{
		Details:  make(map[int]*PullRequest),
		Commits:  make(map[int][]Commit),
		Files:    make(map[int][]File),
		Reviews:  make(map[int][]Review),
		failures: make(map[failureKey]error),
	}
	for _, pr := range generateTestPRs() {
		m.AddPullRequest(pr)
	}
	return m
}

// AddPullRequest appends pr to the list endpoint and registers it for GetPullRequest.
func (m *MockClient) AddPullRequest(pr PullRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PullRequests = append(m.PullRequests, pr)
	detail := pr
	m.Details[pr.Number] = &detail
}

// Fail makes the given resource return err. number and page of zero match any
// pull request or page. The list endpoint ignores number.
func (m *MockClient) Fail(resource string, number, page int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[failureKey{resource: resource, number: number, page: page}] = err
}

// CallsFor returns the recorded calls for one resource.
func (m *MockClient) CallsFor(resource string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []Call
	for _, c := range m.Calls {
		if c.Resource == resource {
			calls = append(calls, c)
		}
	}
	return calls
}

// ListPullRequests implements the Client interface
func (m *MockClient) ListPullRequests(ctx context.Context, owner, repo string, opts ListOptions) ([]PullRequest, error) {
	if err := m.begin(ctx, ResourceList, 0, opts.Page); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastListOptions = opts
	return page(m.PullRequests, opts.Page, opts.PerPage), nil
}

// GetPullRequest implements the Client interface
func (m *MockClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	if err := m.begin(ctx, ResourceGet, number, 0); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	pr, ok := m.Details[number]
	if !ok {
		return nil, fmt.Errorf("get pull request #%d: %w", number, relaierrors.ErrNotFound)
	}
	result := *pr
	return &result, nil
}

// ListCommits implements the Client interface
func (m *MockClient) ListCommits(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]Commit, error) {
	if err := m.begin(ctx, ResourceCommits, number, opts.Page); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.Commits[number], opts.Page, opts.PerPage), nil
}

// ListFiles implements the Client interface
func (m *MockClient) ListFiles(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]File, error) {
	if err := m.begin(ctx, ResourceFiles, number, opts.Page); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.Files[number], opts.Page, opts.PerPage), nil
}

// ListReviews implements the Client interface
func (m *MockClient) ListReviews(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]Review, error) {
	if err := m.begin(ctx, ResourceReviews, number, opts.Page); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(m.Reviews[number], opts.Page, opts.PerPage), nil
}

// begin records the call, then checks for cancellation and configured failures.
func (m *MockClient) begin(ctx context.Context, resource string, number, pageNum int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Resource: resource, Number: number, Page: pageNum})

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	keys := []failureKey{
		{resource, number, pageNum},
		{resource, number, 0},
		{resource, 0, pageNum},
		{resource, 0, 0},
	}
	for _, k := range keys {
		if err, ok := m.failures[k]; ok {
			return err
		}
	}
	return nil
}

func page[T any](items []T, pageNum, perPage int) []T {
	if pageNum < 1 {
		pageNum = 1
	}
	if perPage <= 0 {
		perPage = 30
	}
	start := (pageNum - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := min(start+perPage, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// generateTestPRs creates sample pull request data for testing, newest first.
func generateTestPRs() []PullRequest {
	now := time.Now().UTC().Truncate(time.Second)
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	merged := yesterday

	prs := []PullRequest{
		{
			Number:    1232,
			Title:     "Update documentation",
			State:     "closed",
			CreatedAt: yesterday,
			UpdatedAt: yesterday,
			Author:    Author{Login: "charlie"},
		},
		{
			Number:    1233,
			Title:     "Fix memory leak in parser",
			State:     "closed",
			Labels:    []string{"bug"},
			CreatedAt: lastWeek,
			UpdatedAt: yesterday,
			MergedAt:  &merged,
			Merged:    true,
			Author:    Author{Login: "bob"},
		},
	}
	sort.SliceStable(prs, func(i, j int) bool { return prs[i].CreatedAt.After(prs[j].CreatedAt) })
	return prs
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithPullRequests replaces the default data with prs.
func WithPullRequests(prs []PullRequest) MockClientOption {
	return func(m *MockClient) {
		m.PullRequests = nil
		m.Details = make(map[int]*PullRequest)
		for _, pr := range prs {
			m.mu.Lock()
			m.PullRequests = append(m.PullRequests, pr)
			detail := pr
			m.Details[pr.Number] = &detail
			m.mu.Unlock()
		}
	}
}

// WithAuthFailure makes every request fail with ErrInvalidToken.
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		err := fmt.Errorf("authentication failed: %w", relaierrors.ErrInvalidToken)
		for _, r := range []string{ResourceList, ResourceGet, ResourceCommits, ResourceFiles, ResourceReviews} {
			m.failures[failureKey{resource: r}] = err
		}
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
