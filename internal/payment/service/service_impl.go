package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchforge/launchforge/internal/config"
	obsmetrics "github.com/launchforge/launchforge/internal/observability/metrics"
	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        config.Config
	Credits    *config.CreditsConfigHolder
	Repo       paymentdomain.Repository
	Verifier   paymentdomain.Verifier
	Parser     paymentdomain.Parser
	Enrichment paymentdomain.EnrichmentAPI `optional:"true"`
	Metrics    *obsmetrics.HTTPMetrics     `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        config.Config
	credits    *config.CreditsConfigHolder
	repo       paymentdomain.Repository
	verifier   paymentdomain.Verifier
	parser     paymentdomain.Parser
	enrichment paymentdomain.EnrichmentAPI
	metrics    *obsmetrics.HTTPMetrics
}

func NewService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		cfg:        p.Cfg,
		credits:    p.Credits,
		repo:       p.Repo,
		verifier:   p.Verifier,
		parser:     p.Parser,
		enrichment: p.Enrichment,
		metrics:    p.Metrics,
	}
}

// IngestEvent verifies the signature over the raw body, parses the event and
// persists a completed paid checkout exactly once. Every outcome other than a
// storage failure acknowledges the delivery.
func (s *Service) IngestEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := s.verifier.Verify(payload, signatureHeader); err != nil {
		return err
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	event, err := s.parser.Parse(payload)
	if err != nil {
		if err == paymentdomain.ErrEventIgnored {
			s.recordOutcome("unknown", "ignored")
			return nil
		}
		return err
	}

	log := s.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	if event.Session == nil {
		s.recordOutcome(event.Type, "ignored")
		return nil
	}
	session := event.Session

	if session.PaymentStatus != paymentdomain.PaymentStatusPaid {
		log.Warn("checkout session completed but not paid",
			zap.String("transaction_id", session.ID),
			zap.String("payment_status", session.PaymentStatus),
		)
		s.recordOutcome(event.Type, "ignored_unpaid")
		return nil
	}

	userID := purchaserID(session)
	if userID == "" {
		log.Warn("checkout session has no purchaser reference", zap.String("transaction_id", session.ID))
		return paymentdomain.ErrMissingPurchaser
	}

	// Fast-path duplicate probe. A read failure aborts rather than risking a
	// blind insert against an unreliable store.
	exists, err := s.repo.Exists(ctx, s.db, session.ID)
	if err != nil {
		return err
	}
	if exists {
		log.Info("event already processed, skipping", zap.String("transaction_id", session.ID))
		s.recordOutcome(event.Type, "duplicate")
		return paymentdomain.ErrEventAlreadyProcessed
	}

	details := s.enrich(ctx, log, session)
	record := s.buildRecord(session, userID, details)

	inserted, err := s.repo.Insert(ctx, s.db, record)
	if err != nil {
		log.Error("failed to persist payment record",
			zap.String("transaction_id", session.ID),
			zap.Error(err),
		)
		s.recordOutcome(event.Type, "persist_failed")
		return err
	}
	if !inserted {
		// Lost the race against a concurrent delivery; the constraint is the
		// authoritative duplicate signal.
		log.Info("event already processed, skipping", zap.String("transaction_id", session.ID))
		s.recordOutcome(event.Type, "duplicate")
		return paymentdomain.ErrEventAlreadyProcessed
	}

	log.Info("payment record persisted",
		zap.String("transaction_id", session.ID),
		zap.String("payment_id", record.PaymentID),
		zap.Int("credits", record.Credits),
	)
	s.recordOutcome(event.Type, "persisted")
	return nil
}

// enrich resolves invoice details behind the session's subscription. Lookup
// failures degrade to nil fields, never to a processing failure.
func (s *Service) enrich(ctx context.Context, log *zap.Logger, session *paymentdomain.CheckoutSession) *paymentdomain.InvoiceDetails {
	if s.enrichment == nil || session.SubscriptionID == "" {
		return nil
	}

	details, err := s.enrichment.SubscriptionInvoice(ctx, session.SubscriptionID)
	if err != nil {
		log.Warn("enrichment lookup failed, persisting without invoice details",
			zap.String("subscription_id", session.SubscriptionID),
			zap.Error(err),
		)
		return nil
	}
	return details
}

func (s *Service) buildRecord(
	session *paymentdomain.CheckoutSession,
	userID string,
	details *paymentdomain.InvoiceDetails,
) *paymentdomain.PaymentRecord {

	remarks := strings.TrimSpace(session.Metadata["description"])
	if remarks == "" {
		remarks = s.cfg.DefaultPurchaseRemarks
	}

	priceID := strings.TrimSpace(session.Metadata["price_id"])
	if priceID == "" && details != nil {
		priceID = details.PriceID
	}

	invoiceID := session.InvoiceID
	if invoiceID == "" && details != nil {
		invoiceID = details.InvoiceID
	}

	paymentIntentID := session.PaymentIntentID
	if paymentIntentID == "" && details != nil {
		paymentIntentID = details.PaymentIntentID
	}

	record := &paymentdomain.PaymentRecord{
		PaymentID:       uuid.NewString(),
		UserID:          userID,
		PaymentAmount:   decimal.NewFromInt(session.AmountTotal).Shift(-2),
		PaymentProvider: paymentdomain.ProviderStripe,
		PaymentStatus:   session.PaymentStatus,
		TransactionID:   session.ID,
		Credits:         s.credits.GrantFor(priceID),
		Remarks:         remarks,
		CustomerID:      optional(session.CustomerID),
		InvoiceID:       optional(invoiceID),
		PaymentIntentID: optional(paymentIntentID),
		CreatedAt:       time.Now().UTC(),
	}
	if details != nil {
		record.ReceiptURL = optional(details.HostedInvoiceURL)
	}
	return record
}

// purchaserID resolves the purchaser from the checkout session. The client
// reference id set at checkout creation wins; metadata is the fallback.
func purchaserID(session *paymentdomain.CheckoutSession) string {
	if id := strings.TrimSpace(session.ClientReferenceID); id != "" {
		return id
	}
	return strings.TrimSpace(session.Metadata["user_id"])
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (s *Service) recordOutcome(eventType, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordWebhookEvent(paymentdomain.ProviderStripe, eventType, outcome)
}

var _ paymentdomain.Service = (*Service)(nil)
