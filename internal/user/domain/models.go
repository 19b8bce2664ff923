package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ExternalID string       `gorm:"column:external_id;not null;uniqueIndex:ux_users_external_id" json:"external_id"`
	Username   string       `gorm:"column:username" json:"username,omitempty"`
	Email      string       `gorm:"column:email;not null" json:"email"`
	FullName   string       `gorm:"column:full_name" json:"full_name,omitempty"`
	AvatarURL  string       `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Profile is the normalized identity-provider payload handed to the upsert
// path. ExternalID and Email are required; everything else is optional.
type Profile struct {
	ExternalID string
	Username   string
	Email      string
	FullName   string
	AvatarURL  string
}
