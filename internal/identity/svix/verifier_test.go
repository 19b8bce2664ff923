package svix

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	identitydomain "github.com/launchforge/launchforge/internal/identity/domain"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	messageID := "msg_1"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	webhook := NewWebhook(testSecret)
	header := buildSvixSignatureHeader(t, testSecret, messageID, timestamp, payload)
	if err := webhook.Verify(payload, messageID, timestamp, header); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	wrong := buildSvixSignatureHeader(t, "whsec_d2hzZWNfb3RoZXJzZWNyZXQxMjM0NTY3OA==", messageID, timestamp, payload)
	if err := webhook.Verify(payload, messageID, timestamp, wrong); err != identitydomain.ErrInvalidSignature {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	if err := webhook.Verify(payload, "", timestamp, header); err != identitydomain.ErrMissingHeaders {
		t.Fatalf("expected missing headers for empty id, got %v", err)
	}
	if err := webhook.Verify(payload, messageID, "", header); err != identitydomain.ErrMissingHeaders {
		t.Fatalf("expected missing headers for empty timestamp, got %v", err)
	}
	if err := webhook.Verify(payload, messageID, timestamp, ""); err != identitydomain.ErrMissingHeaders {
		t.Fatalf("expected missing headers for empty signature, got %v", err)
	}

	unconfigured := NewWebhook("")
	if err := unconfigured.Verify(payload, messageID, timestamp, header); err != identitydomain.ErrNotConfigured {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"type":"user.created"}`)
	messageID := "msg_stale"
	stale := time.Now().Add(-30 * time.Minute)
	timestamp := fmt.Sprintf("%d", stale.Unix())

	webhook := NewWebhook(testSecret)
	header := buildSvixSignatureHeader(t, testSecret, messageID, timestamp, payload)
	if err := webhook.Verify(payload, messageID, timestamp, header); err != identitydomain.ErrExpiredTimestamp {
		t.Fatalf("expected expired timestamp, got %v", err)
	}
}

func TestVerifySignatureMultipleEntries(t *testing.T) {
	payload := []byte(`{"type":"user.created"}`)
	messageID := "msg_rotation"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	webhook := NewWebhook(testSecret)
	valid := buildSvixSignatureHeader(t, testSecret, messageID, timestamp, payload)
	header := "v1,c3RhbGUtc2lnbmF0dXJl " + valid
	if err := webhook.Verify(payload, messageID, timestamp, header); err != nil {
		t.Fatalf("expected one matching signature to verify, got error: %v", err)
	}
}

func TestParseUserCreated(t *testing.T) {
	payload := []byte(`{
		"type": "user.created",
		"data": {
			"id": "user_2abc",
			"username": "jdoe",
			"first_name": "Jane",
			"last_name": "Doe",
			"image_url": "https://img.example.com/jdoe.png",
			"primary_email_address_id": "idn_2",
			"email_addresses": [
				{"id": "idn_1", "email_address": "secondary@example.com"},
				{"id": "idn_2", "email_address": "primary@example.com"}
			]
		}
	}`)

	webhook := NewWebhook(testSecret)
	event, err := webhook.Parse(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Type != identitydomain.EventTypeUserCreated {
		t.Fatalf("expected user.created, got %s", event.Type)
	}
	if event.Profile.ID != "user_2abc" {
		t.Fatalf("expected profile id user_2abc, got %s", event.Profile.ID)
	}
	if event.Profile.Email != "primary@example.com" {
		t.Fatalf("expected primary email resolved by id, got %s", event.Profile.Email)
	}
	if got := event.Profile.FullName(); got != "Jane Doe" {
		t.Fatalf("expected full name Jane Doe, got %s", got)
	}
}

func TestParseFallsBackToFirstEmail(t *testing.T) {
	payload := []byte(`{
		"type": "user.updated",
		"data": {
			"id": "user_2abc",
			"primary_email_address_id": "idn_missing",
			"email_addresses": [
				{"id": "idn_1", "email_address": "first@example.com"}
			]
		}
	}`)

	webhook := NewWebhook(testSecret)
	event, err := webhook.Parse(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.Profile.Email != "first@example.com" {
		t.Fatalf("expected fallback to first email, got %s", event.Profile.Email)
	}
}

func TestParseRejectsMissingEmail(t *testing.T) {
	payload := []byte(`{"type":"user.created","data":{"id":"user_2abc","email_addresses":[]}}`)

	webhook := NewWebhook(testSecret)
	if _, err := webhook.Parse(payload); err != identitydomain.ErrMissingEmail {
		t.Fatalf("expected missing email, got %v", err)
	}
}

func TestParseIgnoresOtherEventTypes(t *testing.T) {
	payload := []byte(`{"type":"session.created","data":{"id":"sess_1"}}`)

	webhook := NewWebhook(testSecret)
	if _, err := webhook.Parse(payload); err != identitydomain.ErrEventIgnored {
		t.Fatalf("expected event ignored, got %v", err)
	}
}

func buildSvixSignatureHeader(t *testing.T, secret, messageID, timestamp string, payload []byte) string {
	t.Helper()

	key, err := base64.StdEncoding.DecodeString(secret[len("whsec_"):])
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	signedContent := fmt.Sprintf("%s.%s.%s", messageID, timestamp, string(payload))
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(signedContent))
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
