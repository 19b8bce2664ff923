package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/launchforge/launchforge/internal/identity/domain"
	"github.com/launchforge/launchforge/internal/identity/svix"
	paymentdomain "github.com/launchforge/launchforge/internal/payment/domain"
	"github.com/launchforge/launchforge/internal/payment/stripe"
	"go.uber.org/zap"
)

// HandleStripeWebhook implements the provider-facing contract: every
// non-server-error outcome acknowledges the delivery so Stripe stops
// retrying, and only storage or configuration failures surface as 500.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	err = s.paymentSvc.IngestEvent(c.Request.Context(), payload, c.GetHeader(stripe.SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, paymentdomain.ErrEventAlreadyProcessed):
			c.JSON(http.StatusOK, gin.H{"received": true, "message": "Already processed"})
		case errors.Is(err, paymentdomain.ErrNotConfigured):
			s.log.Error("stripe webhook secret not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		case errors.Is(err, paymentdomain.ErrMissingSignature),
			errors.Is(err, paymentdomain.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		case errors.Is(err, paymentdomain.ErrInvalidPayload),
			errors.Is(err, paymentdomain.ErrInvalidEvent):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		case errors.Is(err, paymentdomain.ErrMissingPurchaser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to resolve purchaser"})
		default:
			s.log.Error("stripe webhook processing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// HandleIdentityWebhook responds with plain text. A user upsert failure is a
// 500 so the identity provider redelivers the event.
func (s *Server) HandleIdentityWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read request body")
		return
	}

	err = s.identitySvc.IngestEvent(
		c.Request.Context(),
		payload,
		c.GetHeader(svix.HeaderMessageID),
		c.GetHeader(svix.HeaderTimestamp),
		c.GetHeader(svix.HeaderSignature),
	)
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrNotConfigured):
			s.log.Error("identity webhook secret not configured")
			c.String(http.StatusInternalServerError, "webhook not configured")
		case errors.Is(err, identitydomain.ErrMissingHeaders),
			errors.Is(err, identitydomain.ErrInvalidSignature),
			errors.Is(err, identitydomain.ErrExpiredTimestamp):
			c.String(http.StatusBadRequest, "signature verification failed")
		case errors.Is(err, identitydomain.ErrInvalidPayload),
			errors.Is(err, identitydomain.ErrInvalidEvent),
			errors.Is(err, identitydomain.ErrMissingEmail):
			c.String(http.StatusBadRequest, "invalid payload")
		default:
			s.log.Error("identity webhook processing failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "failed to process event")
		}
		return
	}

	c.String(http.StatusOK, "ok")
}
