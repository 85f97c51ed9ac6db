package types

import (
	"time"

	"github.com/google/uuid"
)

// UserAssignment is the per-user override record: a user's chosen due date
// and/or completion mark for an assignment. The unique index on
// (user_id, assignment_id) is what makes the choose-due-date upsert race-safe;
// at most one override row may exist per pair.
type UserAssignment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_assignments_user_assignment" json:"user_id"`
	AssignmentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_assignments_user_assignment" json:"assignment_id"`
	ChosenDueDateID *uuid.UUID `gorm:"type:uuid;column:chosen_due_date_id" json:"chosen_due_date_id,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
}

func (UserAssignment) TableName() string { return "user_assignments" }
