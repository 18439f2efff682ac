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

package testutil

import (
	"fmt"
	"time"
)

// BaseTime anchors the default timestamps handed out by the builders.
var BaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// PullRequestBuilder provides a fluent API for creating test PRs in the
// shape of GitHub's REST payloads.
type PullRequestBuilder struct {
	number    int
	title     string
	state     string
	author    string
	createdAt time.Time
	updatedAt time.Time
	mergedAt  *time.Time
	labels    []string
}

// NewPullRequestBuilder creates a new open PR builder with defaults. The
// creation time is BaseTime plus number hours.
func NewPullRequestBuilder(number int) *PullRequestBuilder {
	created := BaseTime.Add(time.Duration(number) * time.Hour)
	return &PullRequestBuilder{
		number:    number,
		title:     fmt.Sprintf("PR %d", number),
		state:     "open",
		author:    fmt.Sprintf("user%d", number),
		createdAt: created,
		updatedAt: created.Add(time.Hour),
	}
}

// Number returns the PR number.
func (b *PullRequestBuilder) Number() int { return b.number }

// CreatedAt returns the creation time.
func (b *PullRequestBuilder) CreatedAt() time.Time { return b.createdAt }

// WithTitle sets the PR title
func (b *PullRequestBuilder) WithTitle(title string) *PullRequestBuilder {
	b.title = title
	return b
}

// WithAuthor sets the PR author. An empty login renders as a null user,
// as GitHub does for deleted accounts.
func (b *PullRequestBuilder) WithAuthor(login string) *PullRequestBuilder {
	b.author = login
	return b
}

// WithCreatedAt sets when the PR was created and moves the update an hour later
func (b *PullRequestBuilder) WithCreatedAt(t time.Time) *PullRequestBuilder {
	b.createdAt = t
	b.updatedAt = t.Add(time.Hour)
	return b
}

// WithUpdatedAt sets the last update time
func (b *PullRequestBuilder) WithUpdatedAt(t time.Time) *PullRequestBuilder {
	b.updatedAt = t
	return b
}

// Closed marks the PR closed without merging it
func (b *PullRequestBuilder) Closed() *PullRequestBuilder {
	b.state = "closed"
	return b
}

// WithMergedAt marks the PR merged, and therefore closed, at t
func (b *PullRequestBuilder) WithMergedAt(t time.Time) *PullRequestBuilder {
	b.mergedAt = &t
	b.state = "closed"
	return b
}

// Merged marks the PR merged a day after it was created
func (b *PullRequestBuilder) Merged() *PullRequestBuilder {
	return b.WithMergedAt(b.createdAt.Add(24 * time.Hour))
}

// WithLabels sets the label names
func (b *PullRequestBuilder) WithLabels(labels ...string) *PullRequestBuilder {
	b.labels = labels
	return b
}

// Summary renders the PR as the list endpoint does. The list endpoint
// carries merged_at but not the merged flag.
func (b *PullRequestBuilder) Summary() map[string]any {
	labels := make([]map[string]any, 0, len(b.labels))
	for _, name := range b.labels {
		labels = append(labels, map[string]any{"name": name})
	}

	pr := map[string]any{
		"number":     b.number,
		"title":      b.title,
		"state":      b.state,
		"labels":     labels,
		"created_at": b.createdAt.Format(time.RFC3339),
		"updated_at": b.updatedAt.Format(time.RFC3339),
		"user":       user(b.author),
	}
	if b.mergedAt != nil {
		pr["merged_at"] = b.mergedAt.Format(time.RFC3339)
	}
	return pr
}

// Detail renders the PR as the single pull request endpoint does.
func (b *PullRequestBuilder) Detail() map[string]any {
	pr := b.Summary()
	pr["merged"] = b.mergedAt != nil
	return pr
}

// Commit renders a PR commit. An empty login leaves the author unlinked.
func Commit(sha, login string) map[string]any {
	return map[string]any{
		"sha":    sha,
		"author": user(login),
	}
}

// File renders a changed file.
func File(filename string) map[string]any {
	return map[string]any{
		"filename": filename,
		"status":   "modified",
	}
}

// Review renders a review. A zero submittedAt leaves the review pending.
func Review(id int64, login, state string, submittedAt time.Time) map[string]any {
	review := map[string]any{
		"id":    id,
		"user":  user(login),
		"state": state,
	}
	if !submittedAt.IsZero() {
		review["submitted_at"] = submittedAt.Format(time.RFC3339)
	}
	return review
}

func user(login string) any {
	if login == "" {
		return nil
	}
	return map[string]any{"login": login}
}
