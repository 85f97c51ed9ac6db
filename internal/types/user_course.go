package types

import (
	"time"

	"github.com/google/uuid"
)

// UserCourse joins users to the courses they follow.
type UserCourse struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_courses_user_course" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_courses_user_course" json:"course_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserCourse) TableName() string { return "user_courses" }
