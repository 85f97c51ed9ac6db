package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthID    *string    `gorm:"column:auth_id;uniqueIndex" json:"auth_id,omitempty"`
	Email     *string    `gorm:"column:email" json:"email,omitempty"`
	FullName  *string    `gorm:"column:full_name" json:"full_name,omitempty"`
	AvatarURL *string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (User) TableName() string { return "users" }
