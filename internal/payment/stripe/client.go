package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
)

type stripeSubscription struct {
	ID            string `json:"id"`
	LatestInvoice string `json:"latest_invoice"`
}

type stripeInvoice struct {
	ID               string `json:"id"`
	HostedInvoiceURL string `json:"hosted_invoice_url"`
	PaymentIntent    string `json:"payment_intent"`
	Lines            struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"lines"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a minimal Stripe API client used for enrichment lookups.
type Client struct {
	apiKey string
	client *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: strings.TrimSpace(apiKey),
		client: &http.Client{Timeout: 12 * time.Second},
	}
}

// SubscriptionInvoice resolves the latest invoice behind a subscription to
// obtain the hosted invoice URL, payment intent and purchased price.
func (c *Client) SubscriptionInvoice(ctx context.Context, subscriptionID string) (*paymentdomain.InvoiceDetails, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, errors.New("subscription_id_required")
	}

	var subscription stripeSubscription
	if err := c.doRequest(ctx, "/v1/subscriptions/"+subscriptionID, &subscription); err != nil {
		return nil, err
	}
	if strings.TrimSpace(subscription.LatestInvoice) == "" {
		return nil, errors.New("subscription_has_no_invoice")
	}

	var invoice stripeInvoice
	if err := c.doRequest(ctx, "/v1/invoices/"+subscription.LatestInvoice, &invoice); err != nil {
		return nil, err
	}

	details := &paymentdomain.InvoiceDetails{
		InvoiceID:        invoice.ID,
		HostedInvoiceURL: strings.TrimSpace(invoice.HostedInvoiceURL),
		PaymentIntentID:  strings.TrimSpace(invoice.PaymentIntent),
	}
	if len(invoice.Lines.Data) > 0 {
		details.PriceID = strings.TrimSpace(invoice.Lines.Data[0].Price.ID)
	}
	return details, nil
}

func (c *Client) doRequest(ctx context.Context, path string, out any) error {
	if c.apiKey == "" {
		return paymentdomain.ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.stripe.com"+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return errors.New("stripe_request_failed")
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return errors.New(message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

var _ paymentdomain.EnrichmentAPI = (*Client)(nil)
