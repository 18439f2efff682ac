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

package store

// Activity states. Commits are stored alongside reviews with StateCommit and
// an empty review date.
const (
	StateCommit           = "COMMIT"
	StateApproved         = "APPROVED"
	StateCommented        = "COMMENTED"
	StateChangesRequested = "CHANGES_REQUESTED"
	StateDismissed        = "DISMISSED"
)

// PullRequest is a row of pull_requests. Timestamps are RFC 3339 text.
type PullRequest struct {
	PRID      int64  `gorm:"column:pr_id;primaryKey;autoIncrement:false"`
	Title     string `gorm:"column:title"`
	UserLogin string `gorm:"column:user_login"`
	Labels    string `gorm:"column:labels"`
	CreatedAt string `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt string `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName specifies the table name for GORM.
func (PullRequest) TableName() string {
	return "pull_requests"
}

// FileChange is a row of pr_files, unique on (pr_id, file_path).
type FileChange struct {
	PRID     int64  `gorm:"column:pr_id"`
	FilePath string `gorm:"column:file_path"`
}

// TableName specifies the table name for GORM.
func (FileChange) TableName() string {
	return "pr_files"
}

// Activity is a row of reviews: one review or one commit by a contributor.
type Activity struct {
	PRID       int64  `gorm:"column:pr_id"`
	Reviewer   string `gorm:"column:reviewer"`
	ReviewDate string `gorm:"column:review_date"`
	State      string `gorm:"column:state"`
}

// TableName specifies the table name for GORM.
func (Activity) TableName() string {
	return "reviews"
}

// FeedbackScore is a row of feedback. The table is created for downstream
// scoring and is not written during ingestion.
type FeedbackScore struct {
	Reviewer     string `gorm:"column:reviewer"`
	FavRevPoints int    `gorm:"column:fav_rev_points"`
}

// TableName specifies the table name for GORM.
func (FeedbackScore) TableName() string {
	return "feedback"
}

// Record is everything written for one pull request.
type Record struct {
	PullRequest PullRequest
	Files       []string
	Activities  []Activity
}

// SaveResult reports what a Save actually changed.
type SaveResult struct {
	// Inserted is false when the pull request row already existed.
	Inserted           bool
	FilesInserted      int
	ActivitiesAppended int
}
