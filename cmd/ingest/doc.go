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

// Package main implements the sirseer-ingest command-line interface.
// It copies the pull requests of one GitHub repository that fall inside a
// date window into a local SQLite database, along with their changed files,
// commit authors and reviews.
//
// Everything is configured through a YAML file and environment variables;
// see internal/config. Progress lines go to stdout and structured logs to
// stderr.
//
// Usage:
//
//	sirseer-ingest [--config path] [--report path]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-ingest --config ingest.yaml --report run.ndjson
//
// Exit codes:
//   - 0: Run completed, including runs where some pull requests were skipped
//   - 1: Configuration or database error
//   - 130: Interrupted before completion
package main
