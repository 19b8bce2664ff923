package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
)

const (
	// SignatureHeader is the header Stripe signs webhook deliveries with.
	SignatureHeader = "Stripe-Signature"

	EventTypeCheckoutCompleted = "checkout.session.completed"
)

// Webhook verifies and parses Stripe webhook deliveries.
type Webhook struct {
	secret string
}

func NewWebhook(secret string) *Webhook {
	return &Webhook{secret: strings.TrimSpace(secret)}
}

func (w *Webhook) Verify(payload []byte, signatureHeader string) error {
	if w.secret == "" {
		return paymentdomain.ErrNotConfigured
	}
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" {
		return paymentdomain.ErrMissingSignature
	}

	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(w.secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

func (w *Webhook) Parse(payload []byte) (*paymentdomain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	parsed := &paymentdomain.Event{
		ID:       event.ID,
		Type:     strings.TrimSpace(event.Type),
		Received: timestamp(event.Created),
	}

	switch parsed.Type {
	case EventTypeCheckoutCompleted:
		session, err := parseCheckoutSession(event.Data.Object)
		if err != nil {
			return nil, err
		}
		parsed.Session = session
		return parsed, nil
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeCheckoutSession struct {
	ID                string            `json:"id"`
	PaymentStatus     string            `json:"payment_status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	Invoice           string            `json:"invoice"`
	PaymentIntent     string            `json:"payment_intent"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

func parseCheckoutSession(raw json.RawMessage) (*paymentdomain.CheckoutSession, error) {
	var session stripeCheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(session.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	return &paymentdomain.CheckoutSession{
		ID:                session.ID,
		PaymentStatus:     strings.TrimSpace(session.PaymentStatus),
		AmountTotal:       session.AmountTotal,
		Currency:          strings.ToUpper(strings.TrimSpace(session.Currency)),
		CustomerID:        strings.TrimSpace(session.Customer),
		SubscriptionID:    strings.TrimSpace(session.Subscription),
		InvoiceID:         strings.TrimSpace(session.Invoice),
		PaymentIntentID:   strings.TrimSpace(session.PaymentIntent),
		ClientReferenceID: strings.TrimSpace(session.ClientReferenceID),
		Metadata:          session.Metadata,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(value int64) time.Time {
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}
