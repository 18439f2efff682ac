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
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestProgress_Printf(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	p.Printf("Found %d PRs matching date/label filters (closed=%t).", 2, true)
	p.Printf("Done. stored=%d skipped=%d\n", 1, 1)

	want := "Found 2 PRs matching date/label filters (closed=true).\nDone. stored=1 skipped=1\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestProgress_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.Printf("[%d/50] PR #%d stored", n, n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, " stored") {
			t.Errorf("interleaved line: %q", line)
		}
	}
}
