package types

import (
	"time"

	"github.com/google/uuid"
)

// Course is populated by the ingestion pipeline and shared across users;
// ownership is expressed through UserCourse rows. The display color is not
// stored, it is derived from the id (see services.CourseColor).
type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     *string   `gorm:"column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Sources []Source `gorm:"foreignKey:CourseID;references:ID" json:"sources,omitempty"`
}

func (Course) TableName() string { return "courses" }
