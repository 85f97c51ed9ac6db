package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Assignment rows are created by the ingestion pipeline and are read-only
// here. ContentHash deduplicates repeated scrapes of the same assignment;
// JobSyncID links back to the ingestion run that produced the row.
type Assignment struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Title           *string        `gorm:"column:title" json:"title"`
	Description     *string        `gorm:"column:description" json:"description,omitempty"`
	ChosenDueDateID *uuid.UUID     `gorm:"type:uuid;column:chosen_due_date_id" json:"chosen_due_date_id,omitempty"`
	ContentHash     *string        `gorm:"column:content_hash;index" json:"content_hash,omitempty"`
	JobSyncID       *uuid.UUID     `gorm:"type:uuid;column:job_sync_id" json:"job_sync_id,omitempty"`
	SourcePagePaths datatypes.JSON `gorm:"column:source_page_paths" json:"source_page_paths,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`

	Course *Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
}

func (Assignment) TableName() string { return "assignments" }
