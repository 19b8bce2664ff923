package identity

import (
	"github.com/launchforge/launchforge/internal/config"
	identitydomain "github.com/launchforge/launchforge/internal/identity/domain"
	identityservice "github.com/launchforge/launchforge/internal/identity/service"
	"github.com/launchforge/launchforge/internal/identity/svix"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(func(cfg config.Config) *svix.Webhook {
		return svix.NewWebhook(cfg.IdentityWebhookSecret)
	}),
	fx.Provide(func(w *svix.Webhook) identitydomain.Verifier { return w }),
	fx.Provide(func(w *svix.Webhook) identitydomain.Parser { return w }),
	fx.Provide(identityservice.NewService),
	fx.Provide(func(s *identityservice.Service) identitydomain.Service { return s }),
)
