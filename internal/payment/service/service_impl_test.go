package service_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/launchforge/launchforge/internal/config"
	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
	paymentrepo "github.com/launchforge/launchforge/internal/payment/repository"
	paymentservice "github.com/launchforge/launchforge/internal/payment/service"
	"github.com/launchforge/launchforge/internal/payment/stripe"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const stripeSecret = "whsec_test"

type fakeEnrichment struct {
	details *paymentdomain.InvoiceDetails
	err     error
	calls   int
}

func (f *fakeEnrichment) SubscriptionInvoice(ctx context.Context, subscriptionID string) (*paymentdomain.InvoiceDetails, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

func TestIngestEventPersistsPayment(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	enrichment := &fakeEnrichment{details: &paymentdomain.InvoiceDetails{
		InvoiceID:        "in_encl",
		HostedInvoiceURL: "https://invoice.stripe.com/i/in_encl",
		PaymentIntentID:  "pi_encl",
		PriceID:          "price_pro",
	}}
	svc := newTestService(t, db, enrichment)

	payload := checkoutPayload(t, map[string]any{
		"id":                  "cs_test_1",
		"payment_status":      "paid",
		"amount_total":        2500,
		"currency":            "usd",
		"customer":            "cus_1",
		"subscription":        "sub_1",
		"client_reference_id": "user_42",
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("ingest event: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 1)

	var row struct {
		UserID          string
		PaymentAmount   string
		PaymentProvider string
		PaymentStatus   string
		TransactionID   string
		Credits         int
		Remarks         string
		ReceiptURL      *string
		PaymentIntentID *string
		InvoiceID       *string
	}
	if err := db.Raw("SELECT user_id, payment_amount, payment_provider, payment_status, transaction_id, credits, remarks, receipt_url, payment_intent_id, invoice_id FROM payments LIMIT 1").Scan(&row).Error; err != nil {
		t.Fatalf("scan payment row: %v", err)
	}
	if row.UserID != "user_42" {
		t.Fatalf("expected user_id user_42, got %s", row.UserID)
	}
	if row.PaymentAmount != "25" {
		t.Fatalf("expected payment_amount 25, got %s", row.PaymentAmount)
	}
	if row.PaymentProvider != paymentdomain.ProviderStripe {
		t.Fatalf("expected provider stripe, got %s", row.PaymentProvider)
	}
	if row.PaymentStatus != paymentdomain.PaymentStatusPaid {
		t.Fatalf("expected status paid, got %s", row.PaymentStatus)
	}
	if row.TransactionID != "cs_test_1" {
		t.Fatalf("expected transaction_id cs_test_1, got %s", row.TransactionID)
	}
	if row.Credits != 500 {
		t.Fatalf("expected 500 credits for price_pro, got %d", row.Credits)
	}
	if row.Remarks != "Stripe Purchase" {
		t.Fatalf("expected default remarks, got %s", row.Remarks)
	}
	if row.ReceiptURL == nil || *row.ReceiptURL != "https://invoice.stripe.com/i/in_encl" {
		t.Fatalf("expected enriched receipt_url, got %v", row.ReceiptURL)
	}
	if row.PaymentIntentID == nil || *row.PaymentIntentID != "pi_encl" {
		t.Fatalf("expected enriched payment_intent_id, got %v", row.PaymentIntentID)
	}
	if row.InvoiceID == nil || *row.InvoiceID != "in_encl" {
		t.Fatalf("expected enriched invoice_id, got %v", row.InvoiceID)
	}
	if enrichment.calls != 1 {
		t.Fatalf("expected one enrichment call, got %d", enrichment.calls)
	}
}

func TestIngestEventRedeliveryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	payload := checkoutPayload(t, map[string]any{
		"id":                  "cs_redelivered",
		"payment_status":      "paid",
		"amount_total":        9900,
		"currency":            "usd",
		"client_reference_id": "user_7",
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.IngestEvent(ctx, payload, header); err != paymentdomain.ErrEventAlreadyProcessed {
		t.Fatalf("expected already processed on redelivery, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 1)
}

func TestIngestEventRejectsInvalidSignature(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	payload := checkoutPayload(t, map[string]any{
		"id":                  "cs_forged",
		"payment_status":      "paid",
		"amount_total":        1000,
		"client_reference_id": "user_1",
	})
	header := buildStripeSignatureHeader("whsec_wrong", payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != paymentdomain.ErrInvalidSignature {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 0)
}

func TestIngestEventSkipsUnpaidSession(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	payload := checkoutPayload(t, map[string]any{
		"id":                  "cs_unpaid",
		"payment_status":      "unpaid",
		"amount_total":        1000,
		"client_reference_id": "user_1",
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("expected unpaid session to be acknowledged, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 0)
}

func TestIngestEventIgnoresOtherEventTypes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	payload := []byte(`{"id":"evt_sub","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("expected unrelated event to be acknowledged, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 0)
}

func TestIngestEventRequiresPurchaser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	payload := checkoutPayload(t, map[string]any{
		"id":             "cs_anonymous",
		"payment_status": "paid",
		"amount_total":   1000,
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != paymentdomain.ErrMissingPurchaser {
		t.Fatalf("expected missing purchaser, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 0)
}

func TestIngestEventPurchaserFromMetadata(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	payload := checkoutPayload(t, map[string]any{
		"id":             "cs_meta",
		"payment_status": "paid",
		"amount_total":   1000,
		"metadata": map[string]any{
			"user_id":     "user_meta",
			"description": "Starter pack",
		},
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("ingest event: %v", err)
	}

	var row struct {
		UserID  string
		Remarks string
		Credits int
	}
	if err := db.Raw("SELECT user_id, remarks, credits FROM payments LIMIT 1").Scan(&row).Error; err != nil {
		t.Fatalf("scan payment row: %v", err)
	}
	if row.UserID != "user_meta" {
		t.Fatalf("expected user_id from metadata, got %s", row.UserID)
	}
	if row.Remarks != "Starter pack" {
		t.Fatalf("expected remarks from metadata, got %s", row.Remarks)
	}
	if row.Credits != 100 {
		t.Fatalf("expected default credit grant, got %d", row.Credits)
	}
}

func TestIngestEventEnrichmentFailureDegrades(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, &fakeEnrichment{err: errors.New("stripe_unavailable")})

	payload := checkoutPayload(t, map[string]any{
		"id":                  "cs_degraded",
		"payment_status":      "paid",
		"amount_total":        2500,
		"subscription":        "sub_down",
		"client_reference_id": "user_9",
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("expected enrichment failure to degrade, got %v", err)
	}

	var row struct {
		ReceiptURL      *string
		PaymentIntentID *string
		InvoiceID       *string
	}
	if err := db.Raw("SELECT receipt_url, payment_intent_id, invoice_id FROM payments LIMIT 1").Scan(&row).Error; err != nil {
		t.Fatalf("scan payment row: %v", err)
	}
	if row.ReceiptURL != nil || row.PaymentIntentID != nil || row.InvoiceID != nil {
		t.Fatalf("expected nil enrichment fields, got %v %v %v", row.ReceiptURL, row.PaymentIntentID, row.InvoiceID)
	}
}

func TestIngestEventInsertFailureIsNotMaskedAsDuplicate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db, nil)

	// Rebuild the table with a constraint every row violates so the insert
	// itself fails after verification and purchaser resolution succeed.
	if err := db.Exec(`DROP TABLE payments`).Error; err != nil {
		t.Fatalf("drop payments: %v", err)
	}
	createPaymentsTable(t, db, ",\n\t\t\tCHECK (credits < 0)")

	payload := checkoutPayload(t, map[string]any{
		"id":                  "cs_storage_down",
		"payment_status":      "paid",
		"amount_total":        2500,
		"currency":            "usd",
		"client_reference_id": "user_11",
	})
	header := buildStripeSignatureHeader(stripeSecret, payload, time.Now().Unix())

	err := svc.IngestEvent(ctx, payload, header)
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
	if err == paymentdomain.ErrEventAlreadyProcessed {
		t.Fatalf("insert failure reported as duplicate: %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 0)

	// Once storage recovers, the redelivered event writes exactly one row.
	if err := db.Exec(`DROP TABLE payments`).Error; err != nil {
		t.Fatalf("drop payments: %v", err)
	}
	createPaymentsTable(t, db, "")

	if err := svc.IngestEvent(ctx, payload, header); err != nil {
		t.Fatalf("redelivery after recovery: %v", err)
	}
	if err := svc.IngestEvent(ctx, payload, header); err != paymentdomain.ErrEventAlreadyProcessed {
		t.Fatalf("expected already processed, got %v", err)
	}

	assertCount(t, db, "SELECT COUNT(1) FROM payments", 1)
}

func newTestService(t *testing.T, db *gorm.DB, enrichment paymentdomain.EnrichmentAPI) *paymentservice.Service {
	t.Helper()

	cfg := config.Config{
		StripeWebhookSecret:     stripeSecret,
		DefaultPurchaseRemarks:  "Stripe Purchase",
		CreditsConfigSearchPath: writeCreditsConfig(t),
	}
	credits, err := config.NewCreditsConfigHolder(cfg)
	if err != nil {
		t.Fatalf("credits config: %v", err)
	}

	webhook := stripe.NewWebhook(stripeSecret)
	return paymentservice.NewService(paymentservice.Params{
		DB:         db,
		Log:        zap.NewNop(),
		Cfg:        cfg,
		Credits:    credits,
		Repo:       paymentrepo.Provide(),
		Verifier:   webhook,
		Parser:     webhook,
		Enrichment: enrichment,
	})
}

func writeCreditsConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	content := []byte("credits:\n  defaultGrant: 100\n  priceGrants:\n    price_pro: 500\n")
	if err := os.WriteFile(filepath.Join(dir, "credits.yml"), content, 0o600); err != nil {
		t.Fatalf("write credits config: %v", err)
	}
	return dir
}

func checkoutPayload(t *testing.T, session map[string]any) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":      "evt_" + fmt.Sprint(time.Now().UnixNano()),
		"type":    "checkout.session.completed",
		"created": time.Now().UTC().Unix(),
		"data":    map[string]any{"object": session},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	createPaymentsTable(t, db, "")
	return db
}

func createPaymentsTable(t *testing.T, db *gorm.DB, constraint string) {
	t.Helper()

	schema := []string{
		`CREATE TABLE payments (
			payment_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			payment_amount NUMERIC(12,2) NOT NULL,
			payment_provider TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			credits INTEGER NOT NULL DEFAULT 0,
			remarks TEXT,
			customer_id TEXT,
			invoice_id TEXT,
			receipt_url TEXT,
			payment_intent_id TEXT,
			created_at DATETIME NOT NULL` + constraint + `
		)`,
		`CREATE UNIQUE INDEX ux_payments_transaction_id ON payments(transaction_id)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
}

func assertCount(t *testing.T, db *gorm.DB, query string, want int) {
	t.Helper()

	var got int
	if err := db.Raw(query).Scan(&got).Error; err != nil {
		t.Fatalf("count query: %v", err)
	}
	if got != want {
		t.Fatalf("expected count %d, got %d", want, got)
	}
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
