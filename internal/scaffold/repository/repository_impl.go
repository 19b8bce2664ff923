package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/launchforge/launchforge/internal/scaffold/domain"
	"github.com/launchforge/launchforge/pkg/db/option"
	"github.com/launchforge/launchforge/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, blueprint *domain.Blueprint) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO project_blueprints (
			id, name, app_backend, backend, orm, file_storage,
			authentication, payment, ai_provider, email_service, deployment, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		blueprint.ID,
		blueprint.Name,
		blueprint.AppBackend,
		blueprint.Backend,
		blueprint.ORM,
		blueprint.FileStorage,
		blueprint.Authentication,
		blueprint.Payment,
		blueprint.AIProvider,
		blueprint.EmailService,
		blueprint.Deployment,
		blueprint.Metadata,
		blueprint.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Blueprint, error) {
	var blueprint domain.Blueprint
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, app_backend, backend, orm, file_storage,
			authentication, payment, ai_provider, email_service, deployment, metadata, created_at
		 FROM project_blueprints WHERE id = ?`,
		id,
	).Scan(&blueprint).Error
	if err != nil {
		return nil, err
	}
	if blueprint.ID == 0 {
		return nil, nil
	}
	return &blueprint, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.Blueprint, error) {
	var blueprints []*domain.Blueprint
	stmt := db.WithContext(ctx).Model(&domain.Blueprint{})
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&blueprints).Error
	if err != nil {
		return nil, err
	}
	return blueprints, nil
}
