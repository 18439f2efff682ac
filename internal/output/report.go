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

package output

import (
	"fmt"

	"github.com/sirseerhq/sirseer-ingest/internal/ingest"
	"github.com/sirseerhq/sirseer-ingest/internal/metadata"
)

// RecordTypePR tags the per pull request lines of a run report.
const RecordTypePR = "pr"

// OutcomeRecord is the report line for one candidate.
type OutcomeRecord struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
	ingest.Outcome
}

// WriteReport writes every outcome in run order followed by summary.
// summary may be nil when the run was cut short before it could be built.
func WriteReport(w RecordWriter, outcomes []ingest.Outcome, summary *metadata.RunMetadata) error {
	for _, o := range outcomes {
		rec := OutcomeRecord{Type: RecordTypePR, Outcome: o}
		if err := o.Err(); err != nil {
			rec.Error = err.Error()
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("pr #%d: %w", o.Number, err)
		}
	}
	if summary == nil {
		return nil
	}
	if err := w.Write(summary); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return nil
}
