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

// Package metadata types define the structures used for tracking and
// reporting information about ingestion runs.
package metadata

import (
	"time"
)

// RunMetadata represents the complete summary of a single ingestion run.
// It captures what was requested, what was stored and the API usage, so a run
// can be audited after the fact.
type RunMetadata struct {
	Type          string     `json:"type"`
	IngestVersion string     `json:"ingest_version"`
	RunID         string     `json:"run_id"`
	Parameters    RunParams  `json:"parameters"`
	Results       RunResults `json:"results"`
	Warnings      []string   `json:"warnings,omitempty"`
}

// RunParams captures the input parameters of a run.
type RunParams struct {
	Organization   string    `json:"organization"`
	Repository     string    `json:"repository"`
	Since          time.Time `json:"since"`
	Until          time.Time `json:"until"`
	OnlyClosed     bool      `json:"only_closed"`
	OnlyMerged     bool      `json:"only_merged"`
	RequiredLabels []string  `json:"required_labels,omitempty"`
}

// RunResults contains statistics about a completed run.
type RunResults struct {
	Candidates     int       `json:"candidates"`
	Stored         int       `json:"stored"`
	AlreadyPresent int       `json:"already_present"`
	Skipped        int       `json:"skipped"`
	FirstPR        int       `json:"first_pr_number,omitempty"`
	LastPR         int       `json:"last_pr_number,omitempty"`
	OldestPR       time.Time `json:"oldest_pr_date,omitempty"`
	NewestPR       time.Time `json:"newest_pr_date,omitempty"`
	Duration       string    `json:"run_duration"`
	APICallCount   int       `json:"api_calls_made"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Summary is the outcome tally handed to GenerateMetadata.
type Summary struct {
	Candidates int
	Skipped    int
	Warnings   []string
}
