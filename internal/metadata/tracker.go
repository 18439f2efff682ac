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

// Package metadata tracks statistics about an ingestion run: API calls made,
// the range of pull requests stored and how long the run took. The tracker is
// handed to the GitHub client as its call recorder and summarized once the
// run completes.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker collects statistics during a run and generates metadata.
// Create a new tracker at the start of each run. It is safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	startTime    time.Time
	apiCallCount int
	prStats      PRStats
}

// PRStats holds statistical information about the pull requests stored
// during a run.
type PRStats struct {
	Stored         int       // PRs written, including ones already present
	AlreadyPresent int       // PRs whose row existed before the run
	FirstPR        int       // Lowest PR number stored
	LastPR         int       // Highest PR number stored
	OldestPR       time.Time // Earliest PR creation date
	NewestPR       time.Time // Latest PR update date
}

// New creates a new metadata tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// IncrementAPICall records that an HTTP request was sent. Retries count
// as separate calls.
func (t *Tracker) IncrementAPICall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCallCount++
}

// APICalls returns the number of calls recorded so far.
func (t *Tracker) APICalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.apiCallCount
}

// RecordStored updates the running statistics with a stored pull request.
// inserted is false when the row already existed.
func (t *Tracker) RecordStored(prNumber int, inserted bool, createdAt, updatedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prStats.Stored++
	if !inserted {
		t.prStats.AlreadyPresent++
	}

	if t.prStats.FirstPR == 0 || prNumber < t.prStats.FirstPR {
		t.prStats.FirstPR = prNumber
	}
	if prNumber > t.prStats.LastPR {
		t.prStats.LastPR = prNumber
	}

	if !createdAt.IsZero() && (t.prStats.OldestPR.IsZero() || createdAt.Before(t.prStats.OldestPR)) {
		t.prStats.OldestPR = createdAt
	}
	if updatedAt.After(t.prStats.NewestPR) {
		t.prStats.NewestPR = updatedAt
	}
}

// Stats returns a copy of the pull request statistics.
func (t *Tracker) Stats() PRStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prStats
}

// GenerateMetadata creates a RunMetadata capturing the run statistics.
// Call this once the run has finished.
func (t *Tracker) GenerateMetadata(ingestVersion string, params RunParams, summary Summary) *RunMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()
	duration := completedAt.Sub(t.startTime)

	return &RunMetadata{
		Type:          "summary",
		IngestVersion: ingestVersion,
		RunID:         fmt.Sprintf("ingest-%d", t.startTime.Unix()),
		Parameters:    params,
		Results: RunResults{
			Candidates:     summary.Candidates,
			Stored:         t.prStats.Stored,
			AlreadyPresent: t.prStats.AlreadyPresent,
			Skipped:        summary.Skipped,
			FirstPR:        t.prStats.FirstPR,
			LastPR:         t.prStats.LastPR,
			OldestPR:       t.prStats.OldestPR,
			NewestPR:       t.prStats.NewestPR,
			Duration:       duration.Round(time.Millisecond).String(),
			APICallCount:   t.apiCallCount,
			StartedAt:      t.startTime,
			CompletedAt:    completedAt,
		},
		Warnings: summary.Warnings,
	}
}

// WriteMetadataToWriter serializes metadata to indented JSON and writes it
// to w.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
