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
	"context"

	"github.com/sirseerhq/sirseer-ingest/internal/github"
)

// pageFetcher fetches one 1-based page.
type pageFetcher[T any] func(ctx context.Context, page int) ([]T, error)

// collectPages fetches pages until one is empty or shorter than
// github.MaxPageSize. On error it returns the items gathered so far
// together with the error.
func collectPages[T any](ctx context.Context, fetch pageFetcher[T]) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, err := fetch(ctx, page)
		if err != nil {
			return all, err
		}
		all = append(all, items...)
		if len(items) < github.MaxPageSize {
			return all, nil
		}
	}
}
