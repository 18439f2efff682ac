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
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-ingest/internal/github"
)

// State is a step in processing a single pull request.
type State string

// Processing states, in the order a pull request moves through them.
const (
	StateFetchingMain         State = "FETCHING_MAIN"
	StateGateCheck            State = "GATE_CHECK"
	StateFetchingCommits      State = "FETCHING_COMMITS"
	StateFetchingFilesReviews State = "FETCHING_FILES_REVIEWS"
	StateWriting              State = "WRITING"
	StateDone                 State = "DONE"
	StateSkipped              State = "SKIPPED"
)

// ErrNotMerged is returned by Enrich when the merged-only gate rejects a
// pull request.
var ErrNotMerged = errors.New("pull request is not merged")

// StageError ties a failure to the pull request and the state it happened in.
type StageError struct {
	Number int
	Stage  State
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pull request #%d: %s: %v", e.Number, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// keptReviewStates are the submitted review states worth storing.
var keptReviewStates = map[string]struct{}{
	"APPROVED":          {},
	"COMMENTED":         {},
	"CHANGES_REQUESTED": {},
	"DISMISSED":         {},
}

// Enriched is the full picture of one pull request.
type Enriched struct {
	Detail github.PullRequest

	// CommitAuthors holds one login per commit, in commit order. Commits
	// without a linked account are left out.
	CommitAuthors []string

	Files []string

	// Reviews only holds submitted reviews; State is upper case.
	Reviews []github.Review

	// Warnings lists sub-resource fetches that stopped early. The data
	// gathered before the failure is still present.
	Warnings []error
}

// Enricher loads a pull request and its sub-resources.
type Enricher struct {
	client     github.Client
	owner      string
	repo       string
	onlyMerged bool
	logger     *zap.Logger
}

// NewEnricher creates an Enricher. With onlyMerged set, pull requests that
// were not merged are rejected with ErrNotMerged before any sub-resource is
// fetched.
func NewEnricher(client github.Client, owner, repo string, onlyMerged bool, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{client: client, owner: owner, repo: repo, onlyMerged: onlyMerged, logger: logger}
}

// Enrich fetches everything stored for pull request number. A failed detail
// fetch and the merged gate return a *StageError; sub-resource failures only
// add warnings.
func (e *Enricher) Enrich(ctx context.Context, number int) (*Enriched, error) {
	detail, err := e.client.GetPullRequest(ctx, e.owner, e.repo, number)
	if err != nil {
		return nil, &StageError{Number: number, Stage: StateFetchingMain, Err: err}
	}

	if e.onlyMerged && !detail.Merged {
		return nil, &StageError{Number: number, Stage: StateGateCheck, Err: ErrNotMerged}
	}

	out := &Enriched{Detail: *detail}

	commits, err := collectPages(ctx, func(ctx context.Context, page int) ([]github.Commit, error) {
		return e.client.ListCommits(ctx, e.owner, e.repo, number, github.PageOptions{Page: page, PerPage: github.MaxPageSize})
	})
	if err != nil {
		out.Warnings = append(out.Warnings, e.partial(number, StateFetchingCommits, "commits", len(commits), err))
	}
	for _, c := range commits {
		if c.Author.Login == "" {
			continue
		}
		out.CommitAuthors = append(out.CommitAuthors, c.Author.Login)
	}

	files, err := collectPages(ctx, func(ctx context.Context, page int) ([]github.File, error) {
		return e.client.ListFiles(ctx, e.owner, e.repo, number, github.PageOptions{Page: page, PerPage: github.MaxPageSize})
	})
	if err != nil {
		out.Warnings = append(out.Warnings, e.partial(number, StateFetchingFilesReviews, "files", len(files), err))
	}
	for _, f := range files {
		if f.Filename == "" {
			e.logger.Debug("skipping file without a filename", zap.Int("pr", number), zap.String("status", f.Status))
			continue
		}
		out.Files = append(out.Files, f.Filename)
	}

	reviews, err := collectPages(ctx, func(ctx context.Context, page int) ([]github.Review, error) {
		return e.client.ListReviews(ctx, e.owner, e.repo, number, github.PageOptions{Page: page, PerPage: github.MaxPageSize})
	})
	if err != nil {
		out.Warnings = append(out.Warnings, e.partial(number, StateFetchingFilesReviews, "reviews", len(reviews), err))
	}
	for _, r := range reviews {
		r.State = strings.ToUpper(r.State)
		if _, ok := keptReviewStates[r.State]; !ok {
			continue
		}
		out.Reviews = append(out.Reviews, r)
	}

	return out, nil
}

func (e *Enricher) partial(number int, stage State, resource string, kept int, err error) error {
	e.logger.Warn("sub-resource fetch stopped early, keeping partial data",
		zap.Int("pr", number),
		zap.String("stage", string(stage)),
		zap.String("resource", resource),
		zap.Int("kept", kept),
		zap.Error(err))
	return &StageError{Number: number, Stage: stage, Err: fmt.Errorf("%s: %w", resource, err)}
}
