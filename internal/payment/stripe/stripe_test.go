package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signedHeaders(t *testing.T, secret string, body []byte, at time.Time) map[string]string {
	t.Helper()
	timestamp := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(strconv.FormatInt(timestamp, 10) + "." + string(body)))
	signature := hex.EncodeToString(mac.Sum(nil))
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", timestamp, signature),
	}
}

func webhookConfig() *Config {
	cfg := &Config{WebhookSecret: "whsec_test"}
	cfg.Normalize()
	return cfg
}

func TestVerifyAndParseWebhookCheckoutSession(t *testing.T) {
	body := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"object": "checkout.session",
				"customer": "cus_123",
				"subscription": "sub_456",
				"client_reference_id": "42"
			}
		}
	}`)
	now := time.Now()
	event, err := VerifyAndParseWebhook(webhookConfig(), signedHeaders(t, "whsec_test", body, now), body, now)
	if err != nil {
		t.Fatalf("verify webhook failed: %v", err)
	}
	if event.EventID != "evt_1" || event.EventType != "checkout.session.completed" {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	if event.CustomerID != "cus_123" || event.SubscriptionID != "sub_456" {
		t.Fatalf("unexpected references: %+v", event)
	}
	if event.DistributorID != 42 {
		t.Fatalf("distributor id want 42 got %d", event.DistributorID)
	}
}

func TestVerifyAndParseWebhookSubscriptionObject(t *testing.T) {
	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	body := []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"type": "customer.subscription.updated",
		"data": {
			"object": {
				"object": "subscription",
				"id": "sub_789",
				"customer": {"id": "cus_789"},
				"status": "ACTIVE",
				"metadata": {"distributor_id": "7"},
				"current_period_end": %d,
				"items": {"data": [{"price": {"id": "price_basic"}}]}
			}
		}
	}`, periodEnd))
	now := time.Now()
	event, err := VerifyAndParseWebhook(webhookConfig(), signedHeaders(t, "whsec_test", body, now), body, now)
	if err != nil {
		t.Fatalf("verify webhook failed: %v", err)
	}
	if event.Subscription == nil {
		t.Fatal("want parsed subscription state")
	}
	if event.Subscription.Status != "active" {
		t.Fatalf("status must be lowercased, got %q", event.Subscription.Status)
	}
	if event.Subscription.CustomerID != "cus_789" {
		t.Fatalf("expanded customer object not resolved: %q", event.Subscription.CustomerID)
	}
	if event.Subscription.PriceID != "price_basic" {
		t.Fatalf("price id want price_basic got %q", event.Subscription.PriceID)
	}
	if event.DistributorID != 7 {
		t.Fatalf("distributor id want 7 got %d", event.DistributorID)
	}
	if event.Subscription.CurrentPeriodEnd == nil || event.Subscription.CurrentPeriodEnd.Unix() != periodEnd {
		t.Fatalf("period end not parsed: %+v", event.Subscription.CurrentPeriodEnd)
	}
}

func TestVerifyAndParseWebhookRejectsBadSignature(t *testing.T) {
	body := []byte(`{"id":"evt_3","type":"invoice.paid","data":{"object":{"object":"invoice"}}}`)
	now := time.Now()
	headers := signedHeaders(t, "whsec_other", body, now)
	if _, err := VerifyAndParseWebhook(webhookConfig(), headers, body, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid got %v", err)
	}
}

func TestVerifyAndParseWebhookRejectsStaleTimestamp(t *testing.T) {
	body := []byte(`{"id":"evt_4","type":"invoice.paid","data":{"object":{"object":"invoice"}}}`)
	signedAt := time.Now().Add(-10 * time.Minute) // default tolerance is 300s
	headers := signedHeaders(t, "whsec_test", body, signedAt)
	if _, err := VerifyAndParseWebhook(webhookConfig(), headers, body, time.Now()); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid got %v", err)
	}
}

func TestVerifyAndParseWebhookRejectsMissingHeader(t *testing.T) {
	body := []byte(`{"id":"evt_5","type":"invoice.paid","data":{"object":{"object":"invoice"}}}`)
	if _, err := VerifyAndParseWebhook(webhookConfig(), map[string]string{}, body, time.Now()); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid got %v", err)
	}
}

func TestParseSignatureHeader(t *testing.T) {
	timestamp, signatures, err := parseSignatureHeader("t=1700000000, v1=ABCDEF, v1=123456, v0=ignored")
	if err != nil {
		t.Fatalf("parse signature header failed: %v", err)
	}
	if timestamp != 1700000000 {
		t.Fatalf("timestamp want 1700000000 got %d", timestamp)
	}
	if len(signatures) != 2 || signatures[0] != "abcdef" {
		t.Fatalf("unexpected signatures: %v", signatures)
	}

	if _, _, err := parseSignatureHeader("v1=abcdef"); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("missing timestamp: want ErrSignatureInvalid got %v", err)
	}
	if _, _, err := parseSignatureHeader("t=1700000000"); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("missing v1: want ErrSignatureInvalid got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{SecretKey: "sk_test"}
	cfg.Normalize()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := ValidateConfig(&Config{APIBaseURL: defaultAPIBaseURL}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("missing secret: want ErrConfigInvalid got %v", err)
	}
	if err := ValidateConfig(nil); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("nil config: want ErrConfigInvalid got %v", err)
	}
}
