package types

import (
	"time"

	"github.com/google/uuid"
)

// Source is a scrape target of a course. InSync is maintained by the external
// ingestion worker; this service only reads it.
type Source struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID            uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	URL                 *string   `gorm:"column:url" json:"url"`
	NeedsAuthentication bool      `gorm:"column:needs_authentication;not null" json:"needs_authentication"`
	SourceInstructions  *string   `gorm:"column:source_instructions" json:"source_instructions,omitempty"`
	InSync              bool      `gorm:"column:in_sync;not null" json:"in_sync"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
}

func (Source) TableName() string { return "sources" }
