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

// Package output writes what a run produced outside the database: progress
// lines for the operator and an optional NDJSON run report.
//
// The report holds one line per candidate pull request followed by a single
// summary line:
//
//	{"type":"pr","number":42,"state":"DONE","inserted":true,...}
//	{"type":"pr","number":7,"state":"SKIPPED","stage":"FETCHING_MAIN",...}
//	{"type":"summary","ingest_version":"dev","results":{...}}
//
// Writer is safe for concurrent use and never buffers more than one record.
package output
