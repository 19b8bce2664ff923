package domain

import (
	"context"
	"errors"
	"time"
)

// Event is the verified identity-provider event envelope.
type Event struct {
	Type     string
	Profile  *Profile
	Received time.Time
}

// Profile mirrors the provider's user object with the primary email resolved.
type Profile struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// FullName joins first and last name, tolerating either being absent.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "" && p.LastName == "":
		return ""
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

const (
	EventTypeUserCreated = "user.created"
	EventTypeUserUpdated = "user.updated"
)

var (
	ErrNotConfigured    = errors.New("webhook_secret_not_configured")
	ErrMissingHeaders   = errors.New("missing_signature_headers")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrExpiredTimestamp = errors.New("expired_timestamp")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrMissingEmail     = errors.New("missing_primary_email")
	ErrEventIgnored     = errors.New("event_ignored")
)

// Verifier checks the id/timestamp/signature header triple over the raw body.
type Verifier interface {
	Verify(payload []byte, messageID, timestamp, signatureHeader string) error
}

type Parser interface {
	Parse(payload []byte) (*Event, error)
}

// Service ingests a signed identity event and forwards the profile to the
// user upsert collaborator.
type Service interface {
	IngestEvent(ctx context.Context, payload []byte, messageID, timestamp, signatureHeader string) error
}
