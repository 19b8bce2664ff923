package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/launchforge/launchforge/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Upsert creates or refreshes the row keyed by the provider's external id.
// The locally generated id is only used on first insert; a conflicting row
// keeps its id and takes the updated profile fields.
func (s *Service) Upsert(ctx context.Context, profile domain.Profile) (domain.User, error) {
	externalID := strings.TrimSpace(profile.ExternalID)
	if externalID == "" {
		return domain.User{}, domain.ErrInvalidExternalID
	}

	email := strings.TrimSpace(profile.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:         s.genID.Generate(),
		ExternalID: externalID,
		Username:   strings.TrimSpace(profile.Username),
		Email:      email,
		FullName:   strings.TrimSpace(profile.FullName),
		AvatarURL:  strings.TrimSpace(profile.AvatarURL),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Upsert(ctx, s.db, &user); err != nil {
		s.log.Error("failed to upsert user",
			zap.String("external_id", externalID),
			zap.Error(err),
		)
		return domain.User{}, err
	}

	stored, err := s.repo.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		return domain.User{}, err
	}
	if stored == nil {
		return user, nil
	}
	return *stored, nil
}
