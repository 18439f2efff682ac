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
	"io"
	"strings"
	"sync"
)

// Progress prints one progress line per call. It implements ingest.Progress.
type Progress struct {
	mu  sync.Mutex
	out io.Writer
}

// NewProgress creates a Progress that writes to out, usually os.Stdout.
func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

// Printf formats a line and terminates it with a newline when missing.
// Write errors are dropped; progress output is best effort.
func (p *Progress) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, line)
}
