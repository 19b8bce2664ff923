package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRecord is the normalized row persisted for a completed checkout.
// The column set is the durable external contract; transaction_id is the
// idempotency key and carries a unique constraint.
type PaymentRecord struct {
	PaymentID       string          `gorm:"column:payment_id;primaryKey" json:"payment_id"`
	UserID          string          `gorm:"column:user_id;not null" json:"user_id"`
	PaymentAmount   decimal.Decimal `gorm:"column:payment_amount;type:numeric(12,2);not null" json:"payment_amount"`
	PaymentProvider string          `gorm:"column:payment_provider;not null" json:"payment_provider"`
	PaymentStatus   string          `gorm:"column:payment_status;not null" json:"payment_status"`
	TransactionID   string          `gorm:"column:transaction_id;not null;uniqueIndex:ux_payments_transaction_id" json:"transaction_id"`
	Credits         int             `gorm:"column:credits;not null" json:"credits"`
	Remarks         string          `gorm:"column:remarks" json:"remarks"`
	CustomerID      *string         `gorm:"column:customer_id" json:"customer_id,omitempty"`
	InvoiceID       *string         `gorm:"column:invoice_id" json:"invoice_id,omitempty"`
	ReceiptURL      *string         `gorm:"column:receipt_url" json:"receipt_url,omitempty"`
	PaymentIntentID *string         `gorm:"column:payment_intent_id" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PaymentRecord) TableName() string { return "payments" }

const (
	ProviderStripe = "stripe"

	PaymentStatusPaid = "paid"
)

// CheckoutSession is the canonical checkout event parsed from the provider
// payload.
type CheckoutSession struct {
	ID                string
	PaymentStatus     string
	AmountTotal       int64
	Currency          string
	CustomerID        string
	SubscriptionID    string
	InvoiceID         string
	PaymentIntentID   string
	ClientReferenceID string
	Metadata          map[string]string
}

// Event is the verified provider event envelope.
type Event struct {
	ID       string
	Type     string
	Session  *CheckoutSession
	Received time.Time
}

// InvoiceDetails carries the enrichment-derived fields resolved through the
// provider API. All fields are optional; a failed lookup yields nils.
type InvoiceDetails struct {
	InvoiceID        string
	HostedInvoiceURL string
	PaymentIntentID  string
	PriceID          string
}

var (
	ErrNotConfigured         = errors.New("webhook_secret_not_configured")
	ErrMissingSignature      = errors.New("missing_signature")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrMissingPurchaser      = errors.New("missing_purchaser")
)

// Verifier checks the provider signature over the raw, unparsed body.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) error
}

// Parser decodes the raw payload into the canonical event.
type Parser interface {
	Parse(payload []byte) (*Event, error)
}

// EnrichmentAPI resolves the latest invoice behind a subscription. Failures
// are treated as degraded enrichment, never as processing failures.
type EnrichmentAPI interface {
	SubscriptionInvoice(ctx context.Context, subscriptionID string) (*InvoiceDetails, error)
}

type Repository interface {
	Exists(ctx context.Context, db *gorm.DB, transactionID string) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, record *PaymentRecord) (bool, error)
}

// Service ingests a signed provider event end to end.
type Service interface {
	IngestEvent(ctx context.Context, payload []byte, signatureHeader string) error
}
