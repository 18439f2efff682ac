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

import "time"

// PullRequest represents a GitHub pull request with the fields the ingest
// pipeline reads. Summaries from the list endpoint leave Merged false; only
// GetPullRequest reports it.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	Labels    []string   `json:"labels,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	Merged    bool       `json:"merged"`
	Author    Author     `json:"author"`
}

// Author represents a GitHub account attached to a pull request, commit or review.
// Login is empty when GitHub could not link the git identity to an account.
type Author struct {
	Login string `json:"login"`
}

// Commit is a commit on a pull request.
type Commit struct {
	SHA    string `json:"sha"`
	Author Author `json:"author"`
}

// File is a file touched by a pull request.
type File struct {
	Filename string `json:"filename"`
	Status   string `json:"status,omitempty"`
}

// Review is a submitted or pending review on a pull request.
// SubmittedAt is zero for pending reviews.
type Review struct {
	ID          int64     `json:"id"`
	Author      Author    `json:"user"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ListOptions configures a page of the pull request list endpoint.
type ListOptions struct {
	// State is "open", "closed" or "all".
	State string

	// Sort is "created", "updated", "popularity" or "long-running".
	Sort string

	// Direction is "asc" or "desc".
	Direction string

	// Page is 1-based.
	Page int

	// PerPage is capped at MaxPageSize by GitHub.
	PerPage int
}

// PageOptions configures a page of a pull request sub-resource.
type PageOptions struct {
	Page    int
	PerPage int
}

// MaxPageSize is the largest page GitHub's REST API serves.
const MaxPageSize = 100
