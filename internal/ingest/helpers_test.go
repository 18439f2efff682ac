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
	"fmt"
	"time"

	"github.com/sirseerhq/sirseer-ingest/internal/github"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func january() Window {
	return Window{Start: day("2024-01-01"), End: day("2024-01-31")}
}

func testPR(number int, created time.Time, labels ...string) github.PullRequest {
	return github.PullRequest{
		Number:    number,
		Title:     fmt.Sprintf("PR %d", number),
		State:     "closed",
		Labels:    labels,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
		Merged:    true,
		Author:    github.Author{Login: "alice"},
	}
}

func numbers(prs []github.PullRequest) []int {
	out := make([]int, 0, len(prs))
	for _, pr := range prs {
		out = append(out, pr.Number)
	}
	return out
}

type recordedProgress struct {
	lines []string
}

func (p *recordedProgress) Printf(format string, args ...any) {
	p.lines = append(p.lines, fmt.Sprintf(format, args...))
}
