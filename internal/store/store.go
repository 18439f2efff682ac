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

// Package store persists ingested pull request activity in SQLite.
//
// All writes are insert-if-absent except activity, which is appended. A
// pull request and its children are written in one transaction, parent first.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	relaierrors "github.com/sirseerhq/sirseer-ingest/internal/errors"
)

// Store is the SQLite-backed ingestion store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// migrations. SQLite allows one writer, so the pool is limited to a single
// connection.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", relaierrors.ErrDatabase, path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", relaierrors.ErrDatabase, err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.Migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", relaierrors.ErrDatabase, err)
	}

	logger.Debug("database ready", zap.String("file", path))
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertPullRequest inserts pr unless a row with the same pr_id exists.
// The first write wins; it reports whether a row was inserted.
func (s *Store) InsertPullRequest(ctx context.Context, pr PullRequest) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&pr)
	if result.Error != nil {
		return false, fmt.Errorf("insert pull request %d: %w", pr.PRID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// InsertFileChange records that prID touched path. Duplicates are dropped.
func (s *Store) InsertFileChange(ctx context.Context, prID int64, path string) (bool, error) {
	change := FileChange{PRID: prID, FilePath: path}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&change)
	if result.Error != nil {
		return false, fmt.Errorf("insert file %q for %d: %w", path, prID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AppendActivity adds activity rows unconditionally.
func (s *Store) AppendActivity(ctx context.Context, activities []Activity) error {
	if len(activities) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&activities).Error; err != nil {
		return fmt.Errorf("append %d activities: %w", len(activities), err)
	}
	return nil
}

// Save writes one pull request and its children in a single transaction:
// the pull request row, then files, then activity. Children are written even
// when the pull request row already existed.
func (s *Store) Save(ctx context.Context, rec Record) (SaveResult, error) {
	var res SaveResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &Store{db: tx, logger: s.logger}

		inserted, err := txStore.InsertPullRequest(ctx, rec.PullRequest)
		if err != nil {
			return err
		}
		res.Inserted = inserted

		for _, path := range rec.Files {
			added, err := txStore.InsertFileChange(ctx, rec.PullRequest.PRID, path)
			if err != nil {
				return err
			}
			if added {
				res.FilesInserted++
			}
		}

		activities := make([]Activity, len(rec.Activities))
		for i, a := range rec.Activities {
			a.PRID = rec.PullRequest.PRID
			activities[i] = a
		}
		if err := txStore.AppendActivity(ctx, activities); err != nil {
			return err
		}
		res.ActivitiesAppended = len(activities)
		return nil
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: save pull request %d: %w", relaierrors.ErrDatabase, rec.PullRequest.PRID, err)
	}

	if !res.Inserted {
		s.logger.Debug("pull request already stored, keeping first write",
			zap.Int64("pr", rec.PullRequest.PRID))
	}
	return res, nil
}

// PullRequest returns the stored row for prID, or ErrNotFound.
func (s *Store) PullRequest(ctx context.Context, prID int64) (*PullRequest, error) {
	var pr PullRequest
	err := s.db.WithContext(ctx).Where("pr_id = ?", prID).First(&pr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pull request %d: %w", prID, relaierrors.ErrNotFound)
		}
		return nil, err
	}
	return &pr, nil
}

// CountPullRequests returns the number of stored pull requests.
func (s *Store) CountPullRequests(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&PullRequest{}).Count(&count).Error
	return count, err
}

// FileChanges returns the file rows for prID in insertion order.
func (s *Store) FileChanges(ctx context.Context, prID int64) ([]FileChange, error) {
	var changes []FileChange
	err := s.db.WithContext(ctx).Where("pr_id = ?", prID).Order("rowid").Find(&changes).Error
	return changes, err
}

// Activities returns the activity rows for prID in insertion order.
func (s *Store) Activities(ctx context.Context, prID int64) ([]Activity, error) {
	var activities []Activity
	err := s.db.WithContext(ctx).Where("pr_id = ?", prID).Order("rowid").Find(&activities).Error
	return activities, err
}

// FeedbackScores returns the feedback rows.
func (s *Store) FeedbackScores(ctx context.Context) ([]FeedbackScore, error) {
	var scores []FeedbackScore
	err := s.db.WithContext(ctx).Find(&scores).Error
	return scores, err
}
