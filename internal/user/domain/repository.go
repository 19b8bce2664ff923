package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, user *User) error
	FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*User, error)
}
