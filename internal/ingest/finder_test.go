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

package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sirseerhq/sirseer-ingest/internal/github"
)

func TestFindInRange_WindowScenario(t *testing.T) {
	mock := github.NewMockClientWithOptions(github.WithPullRequests([]github.PullRequest{
		testPR(3, day("2024-02-05")),
		testPR(2, day("2024-01-15")),
		testPR(1, day("2023-12-20")),
	}))
	finder := NewFinder(mock, "acme", "widgets", zaptest.NewLogger(t))

	prs, err := finder.FindInRange(context.Background(), january(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, numbers(prs))
}

func TestFindInRange_QueryParameters(t *testing.T) {
	tests := []struct {
		name       string
		onlyClosed bool
		wantState  string
	}{
		{"closed only", true, "closed"},
		{"all states", false, "all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := github.NewMockClientWithOptions(github.WithPullRequests(nil))
			finder := NewFinder(mock, "acme", "widgets", nil)

			_, err := finder.FindInRange(context.Background(), january(), tt.onlyClosed, nil)
			require.NoError(t, err)

			opts := mock.LastListOptions
			assert.Equal(t, tt.wantState, opts.State)
			assert.Equal(t, "created", opts.Sort)
			assert.Equal(t, "desc", opts.Direction)
			assert.Equal(t, github.MaxPageSize, opts.PerPage)
			assert.Equal(t, 1, opts.Page)
		})
	}
}

func TestFindInRange_EarlyTermination(t *testing.T) {
	// 300 PRs seven hours apart going back from the end of January. Index 103
	// is the first one before the window, on the second page.
	var prs []github.PullRequest
	end := day("2024-01-31")
	for i := 0; i < 300; i++ {
		prs = append(prs, testPR(1000-i, end.Add(-time.Duration(i)*7*time.Hour)))
	}
	mock := github.NewMockClientWithOptions(github.WithPullRequests(prs))
	finder := NewFinder(mock, "acme", "widgets", nil)

	window := january()
	got, err := finder.FindInRange(context.Background(), window, false, nil)
	require.NoError(t, err)

	assert.Len(t, got, 103)
	for _, pr := range got {
		assert.False(t, pr.CreatedAt.Before(window.Start), "PR #%d is before the window", pr.Number)
		assert.False(t, pr.CreatedAt.After(window.End), "PR #%d is after the window", pr.Number)
	}
	assert.Len(t, mock.CallsFor(github.ResourceList), 2, "the third page must not be requested")
}

func TestFindInRange_SkipsNewerAcrossPages(t *testing.T) {
	// First page is entirely after the window; scanning must continue.
	var prs []github.PullRequest
	for i := 0; i < github.MaxPageSize; i++ {
		prs = append(prs, testPR(500-i, day("2024-03-01")))
	}
	prs = append(prs, testPR(10, day("2024-01-10")), testPR(9, day("2024-01-05")))
	mock := github.NewMockClientWithOptions(github.WithPullRequests(prs))

	got, err := NewFinder(mock, "acme", "widgets", nil).FindInRange(context.Background(), january(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 9}, numbers(got))
	assert.Len(t, mock.CallsFor(github.ResourceList), 3, "stops at the empty third page")
}

func TestFindInRange_Boundaries(t *testing.T) {
	window := january()
	mock := github.NewMockClientWithOptions(github.WithPullRequests([]github.PullRequest{
		testPR(4, window.End.Add(time.Second)),
		testPR(3, window.End),
		testPR(2, window.Start),
		testPR(1, window.Start.Add(-time.Second)),
	}))

	got, err := NewFinder(mock, "acme", "widgets", nil).FindInRange(context.Background(), window, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, numbers(got))
}

func TestFindInRange_SkipsMissingCreatedAt(t *testing.T) {
	mock := github.NewMockClientWithOptions(github.WithPullRequests([]github.PullRequest{
		testPR(3, day("2024-01-20")),
		testPR(2, time.Time{}),
		testPR(1, day("2024-01-10")),
	}))

	got, err := NewFinder(mock, "acme", "widgets", nil).FindInRange(context.Background(), january(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, numbers(got))
}

func TestFindInRange_Labels(t *testing.T) {
	prs := []github.PullRequest{
		testPR(5, day("2024-01-25"), "Bug", "backend"),
		testPR(4, day("2024-01-24"), "feature"),
		testPR(3, day("2024-01-23")),
		testPR(2, day("2024-01-22"), "BUG"),
		testPR(1, day("2024-01-21"), "docs"),
	}

	tests := []struct {
		name   string
		labels []string
		want   []int
	}{
		{"no filter", nil, []int{5, 4, 3, 2, 1}},
		{"blank entries mean no filter", []string{" ", ""}, []int{5, 4, 3, 2, 1}},
		{"case insensitive", []string{"bug"}, []int{5, 2}},
		{"any label matches", []string{"Feature", "docs"}, []int{4, 1}},
		{"no match", []string{"security"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := github.NewMockClientWithOptions(github.WithPullRequests(prs))
			got, err := NewFinder(mock, "acme", "widgets", nil).FindInRange(context.Background(), january(), false, tt.labels)
			require.NoError(t, err)
			assert.Equal(t, tt.want, numbers(got))
		})
	}
}

func TestFindInRange_PartialOnPageFailure(t *testing.T) {
	var prs []github.PullRequest
	for i := 0; i < 150; i++ {
		prs = append(prs, testPR(200-i, day("2024-01-20")))
	}
	mock := github.NewMockClientWithOptions(github.WithPullRequests(prs))
	boom := errors.New("502 bad gateway")
	mock.Fail(github.ResourceList, 0, 2, boom)

	got, err := NewFinder(mock, "acme", "widgets", nil).FindInRange(context.Background(), january(), false, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, got, github.MaxPageSize, "first page is kept")
}
