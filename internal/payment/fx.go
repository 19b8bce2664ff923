package payment

import (
	"github.com/launchforge/launchforge/internal/config"
	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
	"github.com/launchforge/launchforge/internal/payment/repository"
	paymentservice "github.com/launchforge/launchforge/internal/payment/service"
	"github.com/launchforge/launchforge/internal/payment/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config) *stripe.Webhook {
		return stripe.NewWebhook(cfg.StripeWebhookSecret)
	}),
	fx.Provide(func(w *stripe.Webhook) paymentdomain.Verifier { return w }),
	fx.Provide(func(w *stripe.Webhook) paymentdomain.Parser { return w }),
	fx.Provide(func(cfg config.Config) paymentdomain.EnrichmentAPI {
		return stripe.NewClient(cfg.StripeAPIKey)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(func(s *paymentservice.Service) paymentdomain.Service { return s }),
)
