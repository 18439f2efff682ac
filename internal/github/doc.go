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

// Package github provides a client for GitHub's REST API scoped to the
// resources the ingest pipeline reads: the pull request list, a single pull
// request, and its commits, files and reviews.
//
// The package includes:
//   - A Client interface that fetches exactly one page per call
//   - A REST implementation built on google/go-github with oauth2 bearer auth
//   - A retrying http.RoundTripper for 502/503/504 and connection failures
//   - An in-memory MockClient for tests
//
// Basic usage:
//
//	client, err := github.NewRESTClient(github.Options{Token: token})
//	if err != nil {
//	    // Handle error
//	}
//	prs, err := client.ListPullRequests(ctx, "golang", "go", github.ListOptions{
//	    State: "all", Sort: "created", Direction: "desc", Page: 1, PerPage: 100,
//	})
package github
