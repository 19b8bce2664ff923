package service

import (
	"context"

	"github.com/launchforge/launchforge/internal/config"
	identitydomain "github.com/launchforge/launchforge/internal/identity/domain"
	obsmetrics "github.com/launchforge/launchforge/internal/observability/metrics"
	userdomain "github.com/launchforge/launchforge/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Verifier identitydomain.Verifier
	Parser   identitydomain.Parser
	UserSvc  userdomain.Service
	Metrics  *obsmetrics.HTTPMetrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	cfg      config.Config
	verifier identitydomain.Verifier
	parser   identitydomain.Parser
	userSvc  userdomain.Service
	metrics  *obsmetrics.HTTPMetrics
}

func NewService(p Params) *Service {
	return &Service{
		log:      p.Log.Named("identity.service"),
		cfg:      p.Cfg,
		verifier: p.Verifier,
		parser:   p.Parser,
		userSvc:  p.UserSvc,
		metrics:  p.Metrics,
	}
}

// IngestEvent verifies the delivery and upserts the carried user profile.
// An upsert failure is returned so the provider redelivers; there is no
// reconciliation path that would recover a silently dropped profile.
func (s *Service) IngestEvent(ctx context.Context, payload []byte, messageID, timestamp, signatureHeader string) error {
	if err := s.verifier.Verify(payload, messageID, timestamp, signatureHeader); err != nil {
		return err
	}

	event, err := s.parser.Parse(payload)
	if err != nil {
		if err == identitydomain.ErrEventIgnored {
			s.recordOutcome("unknown", "ignored")
			return nil
		}
		return err
	}

	profile := event.Profile
	user, err := s.userSvc.Upsert(ctx, userdomain.Profile{
		ExternalID: profile.ID,
		Username:   profile.Username,
		Email:      profile.Email,
		FullName:   profile.FullName(),
		AvatarURL:  profile.AvatarURL,
	})
	if err != nil {
		s.log.Error("failed to upsert user from identity event",
			zap.String("event_type", event.Type),
			zap.String("external_id", profile.ID),
			zap.Error(err),
		)
		s.recordOutcome(event.Type, "upsert_failed")
		return err
	}

	s.log.Info("identity event processed",
		zap.String("event_type", event.Type),
		zap.String("external_id", profile.ID),
		zap.Int64("user_id", int64(user.ID)),
	)
	s.recordOutcome(event.Type, "processed")
	return nil
}

func (s *Service) recordOutcome(eventType, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordWebhookEvent(s.cfg.IdentityProviderName, eventType, outcome)
}

var _ identitydomain.Service = (*Service)(nil)
