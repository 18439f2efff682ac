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

// Package errors defines sentinel errors for consistent error handling across the application.
// Remote failures are wrapped with one of these so callers can branch with errors.Is
// without inspecting HTTP details.
package errors

import "errors"

// Sentinel errors for remote fetch failures
var (
	// ErrInvalidToken indicates GitHub rejected the credentials (401/403).
	ErrInvalidToken = errors.New("invalid github token")

	// ErrNotFound indicates the repository or pull request does not exist or is not accessible.
	ErrNotFound = errors.New("resource not found")

	// ErrNetworkFailure indicates a network connection problem that survived the retry budget.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrUpstream indicates GitHub answered with a server error after all retries.
	ErrUpstream = errors.New("github server error")

	// ErrRequestFailed covers every other non-success response.
	ErrRequestFailed = errors.New("github request failed")
)

// Sentinel errors for local failures that abort a run
var (
	// ErrInvalidConfig indicates the configuration could not be loaded or failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDatabase indicates the database could not be opened or migrated.
	ErrDatabase = errors.New("database unavailable")
)
