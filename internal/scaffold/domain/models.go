package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Blueprint is a persisted set of technology choices for a generated project.
type Blueprint struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"not null" json:"name"`
	AppBackend     string       `gorm:"column:app_backend;not null" json:"app_backend"`
	Backend        string       `gorm:"column:backend;not null" json:"backend"`
	ORM            string       `gorm:"column:orm;not null" json:"orm"`
	FileStorage    string       `gorm:"column:file_storage;not null" json:"file_storage"`
	Authentication string       `gorm:"column:authentication;not null" json:"authentication"`
	Payment        string       `gorm:"column:payment;not null" json:"payment"`
	AIProvider     string       `gorm:"column:ai_provider;not null" json:"ai_provider"`
	EmailService   string       `gorm:"column:email_service;not null" json:"email_service"`
	Deployment     string       `gorm:"column:deployment;not null" json:"deployment"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Blueprint) TableName() string { return "project_blueprints" }

// Selection carries one chosen option value per wizard step. JSON keys match
// the step ids served by the options catalog.
type Selection struct {
	AppBackend     string `json:"app_backend"`
	Backend        string `json:"backend"`
	ORM            string `json:"orm"`
	FileStorage    string `json:"file_storage"`
	Authentication string `json:"authentication"`
	Payment        string `json:"payment"`
	AIProvider     string `json:"ai_provider"`
	EmailService   string `json:"email_service"`
	Deployment     string `json:"deployment"`
}

// Step is one wizard step with its selectable options, served in order.
type Step struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Options []Option `json:"options"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
