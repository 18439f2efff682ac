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

package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-ingest/internal/config"
	"github.com/sirseerhq/sirseer-ingest/internal/github"
	"github.com/sirseerhq/sirseer-ingest/internal/ingest"
	"github.com/sirseerhq/sirseer-ingest/internal/logger"
	"github.com/sirseerhq/sirseer-ingest/internal/metadata"
	"github.com/sirseerhq/sirseer-ingest/internal/output"
	"github.com/sirseerhq/sirseer-ingest/internal/store"
	"github.com/sirseerhq/sirseer-ingest/pkg/version"
)

type runOptions struct {
	configPath string
	reportPath string
}

// runIngest executes one ingestion run. Only configuration, logger, database
// and client setup failures are returned as errors, plus cancellation.
func runIngest(ctx context.Context, opts runOptions, stdout io.Writer) (err error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := store.Open(cfg.Database.File, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tracker := metadata.New()

	retry := github.DefaultRetryConfig()
	retry.MaxRetries = cfg.GitHub.MaxRetries

	client, err := github.NewRESTClient(github.Options{
		Token:       cfg.ResolveToken(),
		APIEndpoint: cfg.GitHub.APIEndpoint,
		VerifyTLS:   cfg.GitHub.VerifyTLS,
		Timeout:     cfg.GitHub.Timeout,
		Retry:       retry,
		Recorder:    tracker,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	start, end := cfg.Window()
	ingestOpts := ingest.Options{
		Owner:          cfg.GitHub.Owner,
		Repo:           cfg.GitHub.Repo,
		Window:         ingest.Window{Start: start, End: end},
		OnlyClosed:     cfg.Filters.OnlyClosed,
		OnlyMerged:     cfg.Filters.OnlyMerged,
		RequiredLabels: cfg.Filters.RequiredLabels,
	}

	log.Info("starting ingestion",
		zap.String("repository", cfg.GitHub.Owner+"/"+cfg.GitHub.Repo),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.String("database", cfg.Database.File))

	orchestrator := ingest.NewOrchestrator(client, db, ingestOpts, output.NewProgress(stdout), log)
	report, runErr := orchestrator.Run(ctx)

	for _, o := range report.Outcomes {
		if o.State == ingest.StateDone {
			tracker.RecordStored(o.Number, o.Inserted, o.CreatedAt, o.UpdatedAt)
		}
	}

	summary := tracker.GenerateMetadata(version.Version, runParams(ingestOpts), metadata.Summary{
		Candidates: report.Candidates,
		Skipped:    report.Skipped(),
		Warnings:   collectWarnings(report),
	})

	log.Info("ingestion finished",
		zap.Int("candidates", summary.Results.Candidates),
		zap.Int("stored", summary.Results.Stored),
		zap.Int("already_present", summary.Results.AlreadyPresent),
		zap.Int("skipped", summary.Results.Skipped),
		zap.Int("api_calls", summary.Results.APICallCount),
		zap.String("duration", summary.Results.Duration))

	if opts.reportPath != "" {
		if werr := writeReport(opts.reportPath, report, summary); werr != nil {
			log.Error("failed to write run report", zap.String("path", opts.reportPath), zap.Error(werr))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

func runParams(opts ingest.Options) metadata.RunParams {
	return metadata.RunParams{
		Organization:   opts.Owner,
		Repository:     opts.Repo,
		Since:          opts.Window.Start,
		Until:          opts.Window.End,
		OnlyClosed:     opts.OnlyClosed,
		OnlyMerged:     opts.OnlyMerged,
		RequiredLabels: opts.RequiredLabels,
	}
}

func collectWarnings(report *ingest.Report) []string {
	var warnings []string
	if report.FinderErr != nil {
		warnings = append(warnings, "listing stopped early: "+report.FinderErr.Error())
	}
	for _, o := range report.Outcomes {
		for _, w := range o.Warnings {
			warnings = append(warnings, fmt.Sprintf("PR #%d: %s", o.Number, w))
		}
	}
	return warnings
}

func writeReport(path string, report *ingest.Report, summary *metadata.RunMetadata) error {
	w, err := output.NewFileWriter(path)
	if err != nil {
		return err
	}
	if err := output.WriteReport(w, report.Outcomes, summary); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
