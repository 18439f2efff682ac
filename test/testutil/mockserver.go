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

// Package testutil provides common test helpers for sirseer-ingest
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockServer is an in-memory GitHub REST API serving the pull request
// endpoints of a single repository.
type MockServer struct {
	*httptest.Server

	// Token, when set, must be presented as a bearer token.
	Token string

	owner string
	repo  string

	mu       sync.Mutex
	pulls    []*PullRequestBuilder
	commits  map[int][]map[string]any
	files    map[int][]map[string]any
	reviews  map[int][]map[string]any
	failures map[string]int
	requests []string
}

// NewMockServer starts a server for owner/repo. It is closed when the test ends.
func NewMockServer(t *testing.T, owner, repo string) *MockServer {
	t.Helper()
	s := &MockServer{
		owner:    owner,
		repo:     repo,
		commits:  make(map[int][]map[string]any),
		files:    make(map[int][]map[string]any),
		reviews:  make(map[int][]map[string]any),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// APIEndpoint returns the base URL to configure clients with.
func (s *MockServer) APIEndpoint() string {
	return s.URL + "/"
}

// AddPullRequest registers pull requests in the repository.
func (s *MockServer) AddPullRequest(prs ...*PullRequestBuilder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulls = append(s.pulls, prs...)
}

// AddCommits appends commits to a pull request.
func (s *MockServer) AddCommits(number int, commits ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits[number] = append(s.commits[number], commits...)
}

// AddFiles appends changed files to a pull request.
func (s *MockServer) AddFiles(number int, files ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[number] = append(s.files[number], files...)
}

// AddReviews appends reviews to a pull request.
func (s *MockServer) AddReviews(number int, reviews ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[number] = append(s.reviews[number], reviews...)
}

// FailPath makes every request to path answer with status. path is relative
// to the repository, e.g. "pulls/7" or "pulls/7/reviews".
func (s *MockServer) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Requests returns the repository-relative path and query of every request
// received, in order.
func (s *MockServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestCount returns how many requests were received.
func (s *MockServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	prefix := "/repos/" + s.owner + "/" + s.repo + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}
	path := strings.TrimPrefix(r.URL.Path, prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := path
	if r.URL.RawQuery != "" {
		entry += "?" + r.URL.RawQuery
	}
	s.requests = append(s.requests, entry)

	if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
		writeMessage(w, http.StatusUnauthorized, "Bad credentials")
		return
	}
	if status, ok := s.failures[path]; ok {
		writeMessage(w, status, http.StatusText(status))
		return
	}

	parts := strings.Split(path, "/")
	if parts[0] != "pulls" {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}

	query := r.URL.Query()
	if len(parts) == 1 {
		writePage(w, query, s.listPulls(query.Get("state")))
		return
	}

	number, err := strconv.Atoi(parts[1])
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}
	pr := s.find(number)
	if pr == nil {
		writeMessage(w, http.StatusNotFound, "Not Found")
		return
	}

	switch {
	case len(parts) == 2:
		writeJSON(w, pr.Detail())
	case parts[2] == "commits":
		writePage(w, query, s.commits[number])
	case parts[2] == "files":
		writePage(w, query, s.files[number])
	case parts[2] == "reviews":
		writePage(w, query, s.reviews[number])
	default:
		writeMessage(w, http.StatusNotFound, "Not Found")
	}
}

// listPulls returns summaries newest first, filtered like GitHub's state
// parameter.
func (s *MockServer) listPulls(state string) []map[string]any {
	prs := make([]*PullRequestBuilder, 0, len(s.pulls))
	for _, pr := range s.pulls {
		if state == "" || state == "all" || state == pr.state {
			prs = append(prs, pr)
		}
	}
	sort.SliceStable(prs, func(i, j int) bool {
		return prs[i].createdAt.After(prs[j].createdAt)
	})

	out := make([]map[string]any, 0, len(prs))
	for _, pr := range prs {
		out = append(out, pr.Summary())
	}
	return out
}

func (s *MockServer) find(number int) *PullRequestBuilder {
	for _, pr := range s.pulls {
		if pr.number == number {
			return pr
		}
	}
	return nil
}

func writePage(w http.ResponseWriter, query map[string][]string, items []map[string]any) {
	page := atoiOr(first(query["page"]), 1)
	perPage := atoiOr(first(query["per_page"]), 30)
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start > len(items) {
		start = len(items)
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	body := items[start:end]
	if body == nil {
		body = []map[string]any{}
	}
	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusForbidden {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
