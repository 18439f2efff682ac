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
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-ingest/internal/github"
)

// Window is a creation-time range. Both bounds are instants and inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Finder selects pull requests by creation time and labels.
type Finder struct {
	client github.Client
	owner  string
	repo   string
	logger *zap.Logger
}

// NewFinder creates a Finder for owner/repo.
func NewFinder(client github.Client, owner, repo string, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{client: client, owner: owner, repo: repo, logger: logger}
}

// FindInRange returns the pull requests created inside window, newest first.
//
// The list is requested in descending creation order, so the first pull
// request older than window.Start ends the scan. When requiredLabels is not
// empty a pull request must carry at least one of them, compared without
// case. If a page cannot be fetched the pull requests accepted so far are
// returned together with the error.
func (f *Finder) FindInRange(ctx context.Context, window Window, onlyClosed bool, requiredLabels []string) ([]github.PullRequest, error) {
	wanted := labelSet(requiredLabels)

	state := "all"
	if onlyClosed {
		state = "closed"
	}

	var accepted []github.PullRequest
	for page := 1; ; page++ {
		prs, err := f.client.ListPullRequests(ctx, f.owner, f.repo, github.ListOptions{
			State:     state,
			Sort:      "created",
			Direction: "desc",
			Page:      page,
			PerPage:   github.MaxPageSize,
		})
		if err != nil {
			f.logger.Warn("pull request listing stopped early",
				zap.Int("page", page),
				zap.Int("accepted", len(accepted)),
				zap.Error(err))
			return accepted, fmt.Errorf("list page %d: %w", page, err)
		}
		if len(prs) == 0 {
			return accepted, nil
		}

		for _, pr := range prs {
			if pr.CreatedAt.IsZero() {
				f.logger.Debug("skipping pull request without creation time", zap.Int("pr", pr.Number))
				continue
			}
			if pr.CreatedAt.After(window.End) {
				continue
			}
			if pr.CreatedAt.Before(window.Start) {
				f.logger.Debug("reached pull requests older than window",
					zap.Int("pr", pr.Number),
					zap.Int("page", page))
				return accepted, nil
			}
			if len(wanted) > 0 && !hasAnyLabel(pr.Labels, wanted) {
				continue
			}
			accepted = append(accepted, pr)
		}
	}
}

func labelSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

func hasAnyLabel(labels []string, wanted map[string]struct{}) bool {
	for _, l := range labels {
		if _, ok := wanted[strings.ToLower(l)]; ok {
			return true
		}
	}
	return false
}
