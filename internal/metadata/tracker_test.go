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

package metadata

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

type storedPR struct {
	prNumber  int
	inserted  bool
	createdAt time.Time
	updatedAt time.Time
}

func TestTracker_RecordStored(t *testing.T) {
	tests := []struct {
		name      string
		updates   []storedPR
		wantStats PRStats
	}{
		{
			name: "single PR",
			updates: []storedPR{
				{100, true, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
			},
			wantStats: PRStats{
				Stored:   1,
				FirstPR:  100,
				LastPR:   100,
				OldestPR: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				NewestPR: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "descending order as ingested",
			updates: []storedPR{
				{102, true, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC)},
				{101, false, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)},
				{100, true, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)},
			},
			wantStats: PRStats{
				Stored:         3,
				AlreadyPresent: 1,
				FirstPR:        100,
				LastPR:         102,
				OldestPR:       time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				NewestPR:       time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "missing timestamps",
			updates: []storedPR{
				{7, true, time.Time{}, time.Time{}},
			},
			wantStats: PRStats{
				Stored:  1,
				FirstPR: 7,
				LastPR:  7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := New()
			for _, u := range tt.updates {
				tracker.RecordStored(u.prNumber, u.inserted, u.createdAt, u.updatedAt)
			}

			if got := tracker.Stats(); got != tt.wantStats {
				t.Errorf("Stats() = %+v, want %+v", got, tt.wantStats)
			}
		})
	}
}

func TestTracker_IncrementAPICallConcurrent(t *testing.T) {
	tracker := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.IncrementAPICall()
			}
		}()
	}
	wg.Wait()

	if got := tracker.APICalls(); got != 1000 {
		t.Errorf("APICalls() = %d, want 1000", got)
	}
}

func TestTracker_GenerateMetadata(t *testing.T) {
	tracker := New()
	tracker.IncrementAPICall()
	tracker.IncrementAPICall()
	tracker.RecordStored(42, true, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC))

	params := RunParams{
		Organization: "acme",
		Repository:   "widgets",
		Since:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Until:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		OnlyMerged:   true,
	}
	md := tracker.GenerateMetadata("v1.0.0", params, Summary{Candidates: 3, Skipped: 2, Warnings: []string{"listing stopped"}})

	if md.Type != "summary" {
		t.Errorf("Type = %s, want summary", md.Type)
	}
	if md.IngestVersion != "v1.0.0" {
		t.Errorf("IngestVersion = %s, want v1.0.0", md.IngestVersion)
	}
	if !strings.HasPrefix(md.RunID, "ingest-") {
		t.Errorf("RunID = %s, want ingest- prefix", md.RunID)
	}
	if md.Parameters.Repository != "widgets" {
		t.Errorf("Parameters.Repository = %s", md.Parameters.Repository)
	}
	if md.Results.Candidates != 3 || md.Results.Stored != 1 || md.Results.Skipped != 2 {
		t.Errorf("Results = %+v", md.Results)
	}
	if md.Results.APICallCount != 2 {
		t.Errorf("APICallCount = %d, want 2", md.Results.APICallCount)
	}
	if md.Results.FirstPR != 42 || md.Results.LastPR != 42 {
		t.Errorf("PR range = %d..%d, want 42..42", md.Results.FirstPR, md.Results.LastPR)
	}
	if md.Results.CompletedAt.Before(md.Results.StartedAt) {
		t.Error("CompletedAt should not be before StartedAt")
	}
	if md.Results.Duration == "" {
		t.Error("Duration should be set")
	}
	if len(md.Warnings) != 1 {
		t.Errorf("Warnings = %v", md.Warnings)
	}
}

func TestWriteMetadataToWriter(t *testing.T) {
	md := New().GenerateMetadata("dev", RunParams{Organization: "acme", Repository: "widgets"}, Summary{})

	var buf bytes.Buffer
	if err := WriteMetadataToWriter(md, &buf); err != nil {
		t.Fatalf("WriteMetadataToWriter() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	results, ok := decoded["results"].(map[string]any)
	if !ok {
		t.Fatalf("missing results object in %s", buf.String())
	}
	if _, ok := results["api_calls_made"]; !ok {
		t.Error("missing api_calls_made")
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}
