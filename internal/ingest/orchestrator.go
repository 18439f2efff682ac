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
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-ingest/internal/github"
	"github.com/sirseerhq/sirseer-ingest/internal/store"
)

// unknownLogin attributes pull requests and reviews whose account is gone.
const unknownLogin = "unknown"

// Saver persists one enriched pull request. *store.Store implements it.
type Saver interface {
	Save(ctx context.Context, rec store.Record) (store.SaveResult, error)
}

// Progress receives human readable progress lines.
type Progress interface {
	Printf(format string, args ...any)
}

type nopProgress struct{}

func (nopProgress) Printf(string, ...any) {}

// Options selects what a run ingests.
type Options struct {
	Owner          string
	Repo           string
	Window         Window
	OnlyClosed     bool
	OnlyMerged     bool
	RequiredLabels []string
}

// Outcome is the result of processing one candidate.
type Outcome struct {
	Number int   `json:"number"`
	State  State `json:"state"`

	// Stage is where a skipped pull request stopped.
	Stage  State  `json:"stage,omitempty"`
	Reason string `json:"reason,omitempty"`

	// Inserted is false when the pull request row already existed.
	Inserted   bool     `json:"inserted"`
	Files      int      `json:"files_inserted"`
	Activities int      `json:"activities_appended"`
	Warnings   []string `json:"warnings,omitempty"`

	// Zero when the detail fetch never succeeded.
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	err error
}

// Err returns the failure behind a skipped outcome.
func (o Outcome) Err() error { return o.err }

// Report summarizes a run.
type Report struct {
	Candidates int
	Outcomes   []Outcome

	// FinderErr is set when listing stopped early; the candidates found
	// before it were still processed.
	FinderErr error
}

// Stored counts pull requests that reached DONE.
func (r *Report) Stored() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == StateDone {
			n++
		}
	}
	return n
}

// Skipped counts pull requests that ended SKIPPED.
func (r *Report) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == StateSkipped {
			n++
		}
	}
	return n
}

// Orchestrator runs the pipeline for one repository.
type Orchestrator struct {
	opts     Options
	finder   *Finder
	enricher *Enricher
	saver    Saver
	progress Progress
	logger   *zap.Logger
}

// NewOrchestrator wires a Finder and an Enricher over client and writes
// through saver. progress may be nil.
func NewOrchestrator(client github.Client, saver Saver, opts Options, progress Progress, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &Orchestrator{
		opts:     opts,
		finder:   NewFinder(client, opts.Owner, opts.Repo, logger),
		enricher: NewEnricher(client, opts.Owner, opts.Repo, opts.OnlyMerged, logger),
		saver:    saver,
		progress: progress,
		logger:   logger,
	}
}

// Run finds the candidates and processes each in order. Per pull request
// failures are recorded in the report and never stop the run. The returned
// error is only set when ctx is done; the report then covers the pull
// requests handled before that.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	o.progress.Printf("Fetching PRs from %s to %s, only_closed=%t, labels=%v ...",
		o.opts.Window.Start.Format(time.RFC3339), o.opts.Window.End.Format(time.RFC3339),
		o.opts.OnlyClosed, o.opts.RequiredLabels)

	candidates, err := o.finder.FindInRange(ctx, o.opts.Window, o.opts.OnlyClosed, o.opts.RequiredLabels)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}
		report.FinderErr = err
		o.progress.Printf("Warning: listing stopped early (%v); continuing with %d PRs found so far.", err, len(candidates))
	}
	report.Candidates = len(candidates)

	o.progress.Printf("Found %d PRs matching date/label filters (closed=%t).", len(candidates), o.opts.OnlyClosed)
	o.progress.Printf("Storing data (only_merged_prs=%t) into the database...", o.opts.OnlyMerged)

	for i, pr := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome := o.process(ctx, pr.Number)
		if err := ctx.Err(); err != nil && outcome.State != StateDone {
			return report, err
		}
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.State == StateDone {
			o.progress.Printf("[%d/%d] PR #%d stored (files=%d, activity=%d)",
				i+1, len(candidates), pr.Number, outcome.Files, outcome.Activities)
		} else {
			o.progress.Printf("[%d/%d] PR #%d skipped at %s: %s",
				i+1, len(candidates), pr.Number, outcome.Stage, outcome.Reason)
		}
	}

	o.progress.Printf("Done. stored=%d skipped=%d", report.Stored(), report.Skipped())
	return report, nil
}

// process moves one pull request from FETCHING_MAIN to DONE or SKIPPED.
func (o *Orchestrator) process(ctx context.Context, number int) Outcome {
	logger := o.logger.With(zap.Int("pr", number))

	enriched, err := o.enricher.Enrich(ctx, number)
	if err != nil {
		stage := StateFetchingMain
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		if errors.Is(err, ErrNotMerged) {
			logger.Debug("skipping unmerged pull request")
		} else {
			logger.Warn("skipping pull request", zap.String("stage", string(stage)), zap.Error(err))
		}
		return Outcome{Number: number, State: StateSkipped, Stage: stage, Reason: reason(err), err: err}
	}

	outcome := Outcome{
		Number:    number,
		CreatedAt: enriched.Detail.CreatedAt,
		UpdatedAt: enriched.Detail.UpdatedAt,
	}
	for _, w := range enriched.Warnings {
		outcome.Warnings = append(outcome.Warnings, w.Error())
	}

	res, err := o.saver.Save(ctx, buildRecord(enriched))
	if err != nil {
		logger.Error("failed to write pull request", zap.String("stage", string(StateWriting)), zap.Error(err))
		outcome.State = StateSkipped
		outcome.Stage = StateWriting
		outcome.Reason = err.Error()
		outcome.err = &StageError{Number: number, Stage: StateWriting, Err: err}
		return outcome
	}

	outcome.State = StateDone
	outcome.Inserted = res.Inserted
	outcome.Files = res.FilesInserted
	outcome.Activities = res.ActivitiesAppended
	logger.Debug("pull request stored",
		zap.Bool("inserted", res.Inserted),
		zap.Int("files", res.FilesInserted),
		zap.Int("activities", res.ActivitiesAppended))
	return outcome
}

func reason(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Err.Error()
	}
	return err.Error()
}

// buildRecord maps an enriched pull request onto store rows. Commits come
// before reviews in the activity list.
func buildRecord(e *Enriched) store.Record {
	d := e.Detail

	rec := store.Record{
		PullRequest: store.PullRequest{
			PRID:      int64(d.Number),
			Title:     d.Title,
			UserLogin: loginOrUnknown(d.Author.Login),
			Labels:    strings.Join(d.Labels, ","),
			CreatedAt: formatTimestamp(d.CreatedAt),
			UpdatedAt: formatTimestamp(d.UpdatedAt),
		},
		Files: e.Files,
	}

	for _, login := range e.CommitAuthors {
		rec.Activities = append(rec.Activities, store.Activity{
			Reviewer: login,
			State:    store.StateCommit,
		})
	}
	for _, r := range e.Reviews {
		rec.Activities = append(rec.Activities, store.Activity{
			Reviewer:   loginOrUnknown(r.Author.Login),
			ReviewDate: formatTimestamp(r.SubmittedAt),
			State:      r.State,
		})
	}
	return rec
}

func loginOrUnknown(login string) string {
	if login == "" {
		return unknownLogin
	}
	return login
}

// formatTimestamp renders t as GitHub does, or "" when absent.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
