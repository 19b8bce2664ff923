package svix

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	identitydomain "github.com/launchforge/launchforge/internal/identity/domain"
)

const (
	// Headers carried by svix-style deliveries (Clerk uses this scheme).
	HeaderMessageID = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix = "whsec_"

	// Deliveries older or newer than this are rejected to bound replay.
	timestampTolerance = 5 * time.Minute
)

// Webhook verifies and parses svix-signed identity deliveries. The signing
// key is the base64 payload behind the whsec_ prefix.
type Webhook struct {
	key []byte
	err error

	now func() time.Time
}

func NewWebhook(secret string) *Webhook {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &Webhook{err: identitydomain.ErrNotConfigured, now: time.Now}
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil {
		return &Webhook{err: identitydomain.ErrNotConfigured, now: time.Now}
	}
	return &Webhook{key: key, now: time.Now}
}

func (w *Webhook) Verify(payload []byte, messageID, timestamp, signatureHeader string) error {
	if w.err != nil {
		return w.err
	}

	messageID = strings.TrimSpace(messageID)
	timestamp = strings.TrimSpace(timestamp)
	signatureHeader = strings.TrimSpace(signatureHeader)
	if messageID == "" || timestamp == "" || signatureHeader == "" {
		return identitydomain.ErrMissingHeaders
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return identitydomain.ErrInvalidSignature
	}
	sent := time.Unix(unix, 0)
	if drift := w.now().Sub(sent); drift > timestampTolerance || drift < -timestampTolerance {
		return identitydomain.ErrExpiredTimestamp
	}

	signedContent := fmt.Sprintf("%s.%s.%s", messageID, timestamp, string(payload))
	mac := hmac.New(sha256.New, w.key)
	_, _ = mac.Write([]byte(signedContent))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	// The header carries one or more space separated "v1,<base64>" entries,
	// one per active signing secret during rotation.
	for _, entry := range strings.Fields(signatureHeader) {
		parts := strings.SplitN(entry, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		if hmac.Equal([]byte(parts[1]), []byte(expected)) {
			return nil
		}
	}

	return identitydomain.ErrInvalidSignature
}

func (w *Webhook) Parse(payload []byte) (*identitydomain.Event, error) {
	var event identityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, identitydomain.ErrInvalidPayload
	}

	eventType := strings.TrimSpace(event.Type)
	switch eventType {
	case identitydomain.EventTypeUserCreated, identitydomain.EventTypeUserUpdated:
	default:
		return nil, identitydomain.ErrEventIgnored
	}

	if strings.TrimSpace(event.Data.ID) == "" {
		return nil, identitydomain.ErrInvalidEvent
	}

	email := primaryEmail(event.Data)
	if email == "" {
		return nil, identitydomain.ErrMissingEmail
	}

	return &identitydomain.Event{
		Type:     eventType,
		Received: time.Now().UTC(),
		Profile: &identitydomain.Profile{
			ID:        event.Data.ID,
			Username:  strings.TrimSpace(event.Data.Username),
			Email:     email,
			FirstName: strings.TrimSpace(event.Data.FirstName),
			LastName:  strings.TrimSpace(event.Data.LastName),
			AvatarURL: strings.TrimSpace(event.Data.ImageURL),
		},
	}, nil
}

type identityEvent struct {
	Type string           `json:"type"`
	Data identityUserData `json:"data"`
}

type identityUserData struct {
	ID                    string         `json:"id"`
	Username              string         `json:"username"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// primaryEmail resolves the address referenced by primary_email_address_id,
// falling back to the first listed address.
func primaryEmail(data identityUserData) string {
	primaryID := strings.TrimSpace(data.PrimaryEmailAddressID)
	for _, addr := range data.EmailAddresses {
		if primaryID != "" && addr.ID == primaryID {
			return strings.TrimSpace(addr.EmailAddress)
		}
	}
	if len(data.EmailAddresses) > 0 {
		return strings.TrimSpace(data.EmailAddresses[0].EmailAddress)
	}
	return ""
}
