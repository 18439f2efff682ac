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
	"bufio"
	"encoding/json"
	"os"
	"testing"
)

// ReadNDJSON parses every non-empty line of a run report.
func ReadNDJSON(t *testing.T, path string) []map[string]any {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open report file: %v", err)
	}
	defer file.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("Line %d: invalid JSON: %v", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	return records
}

// AssertReport checks a run report: one "pr" line per candidate, in order,
// with the given states, followed by exactly one summary line.
func AssertReport(t *testing.T, path string, wantStates map[int]string) {
	t.Helper()

	records := ReadNDJSON(t, path)
	if len(records) != len(wantStates)+1 {
		t.Fatalf("Expected %d report lines, got %d", len(wantStates)+1, len(records))
	}

	for _, rec := range records[:len(records)-1] {
		if rec["type"] != "pr" {
			t.Errorf("Expected pr line, got type %v", rec["type"])
			continue
		}
		number, _ := rec["number"].(float64)
		want, ok := wantStates[int(number)]
		if !ok {
			t.Errorf("Unexpected PR #%d in report", int(number))
			continue
		}
		if rec["state"] != want {
			t.Errorf("PR #%d: expected state %s, got %v", int(number), want, rec["state"])
		}
	}

	if last := records[len(records)-1]; last["type"] != "summary" {
		t.Errorf("Expected final summary line, got type %v", last["type"])
	}
}
