package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sync lifecycle stages reported by the external course-sync workflow.
const (
	JobSyncGroupStatusStarted           = "STARTED"
	JobSyncGroupStatusScrapedTree       = "SCRAPED_TREE"
	JobSyncGroupStatusUniqueAssignments = "UNIQUE_ASSIGNMENTS"
	JobSyncGroupStatusAssignmentDates   = "ASSIGNMENT_DATES"
	JobSyncGroupStatusComplete          = "COMPLETE"
)

// JobSyncGroup is one user-triggered sync run covering one or more courses.
// Rows are created here when a sync is started; the workflow worker updates
// Status and CompletedAt as it progresses.
type JobSyncGroup struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Status      string     `gorm:"column:status;not null" json:"status"`
	WorkflowID  *string    `gorm:"column:workflow_id" json:"workflow_id,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (JobSyncGroup) TableName() string { return "job_sync_groups" }

// JobSync is one scrape of one source within a group. ScrapedTree holds the
// raw page tree the worker extracted; assignments reference the JobSync that
// created them.
type JobSync struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobSyncGroupID uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_sync_group_id"`
	CourseID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	SourceID       *uuid.UUID     `gorm:"type:uuid" json:"source_id,omitempty"`
	ScrapedTree    datatypes.JSON `gorm:"column:scraped_tree" json:"scraped_tree,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (JobSync) TableName() string { return "job_syncs" }
