package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/launchforge/launchforge/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, blueprint *Blueprint) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Blueprint, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Blueprint, error)
}
