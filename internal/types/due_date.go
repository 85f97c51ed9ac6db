package types

import (
	"time"

	"github.com/google/uuid"
)

// DueDate is one scraped candidate date for an assignment. Date is nil when
// the scraper found a mention but no parseable date. The certainty flags
// record how confident extraction was about the calendar date and the
// time of day.
type DueDate struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Date         *time.Time `gorm:"column:date" json:"date"`
	DateCertain  bool       `gorm:"column:date_certain;not null" json:"date_certain"`
	TimeCertain  bool       `gorm:"column:time_certain;not null" json:"time_certain"`
	Title        *string    `gorm:"column:title" json:"title"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	URL          *string    `gorm:"column:url" json:"url,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (DueDate) TableName() string { return "due_dates" }
