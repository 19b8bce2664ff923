package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/launchforge/launchforge/internal/scaffold/domain"
	"github.com/launchforge/launchforge/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository

	steps   []domain.Step
	allowed map[string]map[string]struct{}
}

func New(p Params) domain.Service {
	steps := domain.Catalog()

	allowed := make(map[string]map[string]struct{}, len(steps))
	for _, step := range steps {
		values := make(map[string]struct{}, len(step.Options))
		for _, opt := range step.Options {
			values[opt.Value] = struct{}{}
		}
		allowed[step.ID] = values
	}

	return &Service{
		db:      p.DB,
		log:     p.Log.Named("scaffold.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		steps:   steps,
		allowed: allowed,
	}
}

func (s *Service) Options() []domain.Step {
	return s.steps
}

// Validate checks that every step carries a value from the catalog.
func (s *Service) Validate(selection domain.Selection) error {
	for _, step := range s.steps {
		value := strings.TrimSpace(selectionValue(selection, step.ID))
		if value == "" {
			return &domain.SelectionError{Step: step.ID}
		}
		if _, ok := s.allowed[step.ID][value]; !ok {
			return &domain.SelectionError{Step: step.ID, Value: value}
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateBlueprintRequest) (domain.Blueprint, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Blueprint{}, domain.ErrInvalidName
	}

	if err := s.Validate(req.Selection); err != nil {
		return domain.Blueprint{}, err
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	sel := req.Selection
	blueprint := domain.Blueprint{
		ID:             s.genID.Generate(),
		Name:           name,
		AppBackend:     strings.TrimSpace(sel.AppBackend),
		Backend:        strings.TrimSpace(sel.Backend),
		ORM:            strings.TrimSpace(sel.ORM),
		FileStorage:    strings.TrimSpace(sel.FileStorage),
		Authentication: strings.TrimSpace(sel.Authentication),
		Payment:        strings.TrimSpace(sel.Payment),
		AIProvider:     strings.TrimSpace(sel.AIProvider),
		EmailService:   strings.TrimSpace(sel.EmailService),
		Deployment:     strings.TrimSpace(sel.Deployment),
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &blueprint); err != nil {
		s.log.Error("failed to persist blueprint", zap.String("name", name), zap.Error(err))
		return domain.Blueprint{}, err
	}

	return blueprint, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBlueprintRequest) (domain.Blueprint, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Blueprint{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Blueprint{}, err
	}
	if item == nil {
		return domain.Blueprint{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBlueprintRequest) (domain.ListBlueprintResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListBlueprintResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(blueprint *domain.Blueprint) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        blueprint.ID.String(),
			CreatedAt: blueprint.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	blueprints := make([]domain.Blueprint, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		blueprints = append(blueprints, *item)
	}

	resp := domain.ListBlueprintResponse{Blueprints: blueprints}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func selectionValue(sel domain.Selection, stepID string) string {
	switch stepID {
	case domain.StepAppBackend:
		return sel.AppBackend
	case domain.StepBackend:
		return sel.Backend
	case domain.StepORM:
		return sel.ORM
	case domain.StepFileStorage:
		return sel.FileStorage
	case domain.StepAuthentication:
		return sel.Authentication
	case domain.StepPayment:
		return sel.Payment
	case domain.StepAIProvider:
		return sel.AIProvider
	case domain.StepEmailService:
		return sel.EmailService
	case domain.StepDeployment:
		return sel.Deployment
	default:
		return ""
	}
}
