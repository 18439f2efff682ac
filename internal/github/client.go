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

import "context"

// Client defines the interface for interacting with GitHub's REST API.
// Each method fetches a single page so callers own the pagination policy.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListPullRequests retrieves one page of pull request summaries for a repository.
	// Ordering follows opts.Sort and opts.Direction as sent to the API.
	ListPullRequests(ctx context.Context, owner, repo string, opts ListOptions) ([]PullRequest, error)

	// GetPullRequest retrieves the full pull request, including the merged flag
	// which the list endpoint does not carry.
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)

	// ListCommits retrieves one page of commits on a pull request.
	ListCommits(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]Commit, error)

	// ListFiles retrieves one page of files changed by a pull request.
	ListFiles(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]File, error)

	// ListReviews retrieves one page of reviews on a pull request.
	ListReviews(ctx context.Context, owner, repo string, number int, opts PageOptions) ([]Review, error)
}
