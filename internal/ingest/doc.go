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

// Package ingest implements the pull request ingestion pipeline.
//
// A Finder pages through a repository's pull requests newest first and
// selects those created inside a Window, stopping as soon as it sees one
// older than the window. An Enricher loads the full detail of one pull
// request together with its commits, files and reviews. The Orchestrator
// runs both for every candidate and hands the result to the store, one pull
// request at a time, recording an Outcome for each.
//
// Failures are isolated per pull request: a failed detail fetch or write
// skips that pull request and the run moves on. Failed sub-resource pages
// keep what was already fetched and are reported as warnings.
package ingest
