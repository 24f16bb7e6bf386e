package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("stripe config invalid")
	ErrRequestFailed    = errors.New("stripe request failed")
	ErrResponseInvalid  = errors.New("stripe response invalid")
	ErrSignatureInvalid = errors.New("stripe signature invalid")
)

const (
	defaultAPIBaseURL        = "https://api.stripe.com"
	defaultTimeout           = 12 * time.Second
	defaultWebhookToleranceS = 300
)

// Config Stripe billing configuration.
type Config struct {
	SecretKey               string `json:"secret_key"`
	WebhookSecret           string `json:"webhook_secret"`
	SuccessURL              string `json:"success_url"`
	CancelURL               string `json:"cancel_url"`
	PortalReturnURL         string `json:"portal_return_url"`
	APIBaseURL              string `json:"api_base_url"`
	WebhookToleranceSeconds int64  `json:"webhook_tolerance_seconds"`
	TrialPeriodDays         int    `json:"trial_period_days"`
	AllowPromotionCodes     bool   `json:"allow_promotion_codes"`
}

// CheckoutInput subscription checkout session input.
type CheckoutInput struct {
	PriceID       string
	DistributorID uint
	CustomerID    string // existing Stripe customer, optional
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutResult subscription checkout session output.
type CheckoutResult struct {
	SessionID  string
	URL        string
	CustomerID string
	Raw        map[string]interface{}
}

// PortalResult billing portal session output.
type PortalResult struct {
	URL string
	Raw map[string]interface{}
}

// SubscriptionState remote subscription snapshot.
type SubscriptionState struct {
	SubscriptionID   string
	CustomerID       string
	Status           string
	PriceID          string
	StartedAt        *time.Time
	CurrentPeriodEnd *time.Time
	CanceledAt       *time.Time
	Raw              map[string]interface{}
}

// WebhookEvent verified subscription webhook event.
type WebhookEvent struct {
	EventID        string
	EventType      string
	SubscriptionID string
	CustomerID     string
	DistributorID  uint
	Subscription   *SubscriptionState
	Raw            map[string]interface{}
}

// Normalize fills defaults and trims the config.
func (c *Config) Normalize() {
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.SuccessURL = strings.TrimSpace(c.SuccessURL)
	c.CancelURL = strings.TrimSpace(c.CancelURL)
	c.PortalReturnURL = strings.TrimSpace(c.PortalReturnURL)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.WebhookToleranceSeconds <= 0 {
		c.WebhookToleranceSeconds = defaultWebhookToleranceS
	}
}

// ValidateConfig validates the config.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return fmt.Errorf("%w: api_base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.APIBaseURL)); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// CreateSubscriptionCheckout creates a subscription-mode Checkout Session.
func CreateSubscriptionCheckout(ctx context.Context, cfg *Config, input CheckoutInput) (*CheckoutResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	priceID := strings.TrimSpace(input.PriceID)
	if priceID == "" {
		return nil, fmt.Errorf("%w: price_id is required", ErrConfigInvalid)
	}
	if input.DistributorID == 0 {
		return nil, fmt.Errorf("%w: distributor_id is required", ErrConfigInvalid)
	}
	successURL := strings.TrimSpace(input.SuccessURL)
	if successURL == "" {
		successURL = cfg.SuccessURL
	}
	cancelURL := strings.TrimSpace(input.CancelURL)
	if cancelURL == "" {
		cancelURL = cfg.CancelURL
	}
	if successURL == "" || cancelURL == "" {
		return nil, fmt.Errorf("%w: success_url and cancel_url are required", ErrConfigInvalid)
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("client_reference_id", strconv.FormatUint(uint64(input.DistributorID), 10))
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[distributor_id]", strconv.FormatUint(uint64(input.DistributorID), 10))
	form.Set("subscription_data[metadata][distributor_id]", strconv.FormatUint(uint64(input.DistributorID), 10))
	if cfg.TrialPeriodDays > 0 {
		form.Set("subscription_data[trial_period_days]", strconv.Itoa(cfg.TrialPeriodDays))
	}
	if cfg.AllowPromotionCodes {
		form.Set("allow_promotion_codes", "true")
	}
	if customer := strings.TrimSpace(input.CustomerID); customer != "" {
		form.Set("customer", customer)
	} else if email := strings.TrimSpace(input.CustomerEmail); email != "" {
		form.Set("customer_email", email)
	}

	respBody, statusCode, err := doFormRequest(ctx, cfg, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create checkout session status %d", ErrResponseInvalid, statusCode)
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	result := &CheckoutResult{Raw: raw}
	result.SessionID = strings.TrimSpace(readString(raw, "id"))
	result.URL = strings.TrimSpace(readString(raw, "url"))
	result.CustomerID = strings.TrimSpace(readString(raw, "customer"))
	if result.SessionID == "" || result.URL == "" {
		return nil, fmt.Errorf("%w: missing session id or url", ErrResponseInvalid)
	}
	return result, nil
}

// CreatePortalSession creates a billing portal session for a customer.
func CreatePortalSession(ctx context.Context, cfg *Config, customerID string) (*PortalResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer is required", ErrConfigInvalid)
	}

	form := url.Values{}
	form.Set("customer", customerID)
	if cfg.PortalReturnURL != "" {
		form.Set("return_url", cfg.PortalReturnURL)
	}

	respBody, statusCode, err := doFormRequest(ctx, cfg, http.MethodPost, "/v1/billing_portal/sessions", form)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create portal session status %d", ErrResponseInvalid, statusCode)
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	result := &PortalResult{Raw: raw}
	result.URL = strings.TrimSpace(readString(raw, "url"))
	if result.URL == "" {
		return nil, fmt.Errorf("%w: missing portal url", ErrResponseInvalid)
	}
	return result, nil
}

// GetSubscription fetches the remote state of a subscription.
func GetSubscription(ctx context.Context, cfg *Config, subscriptionID string) (*SubscriptionState, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription id is required", ErrConfigInvalid)
	}

	path := fmt.Sprintf("/v1/subscriptions/%s", url.PathEscape(subscriptionID))
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: query subscription status %d", ErrResponseInvalid, statusCode)
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	state := parseSubscriptionObject(raw)
	if state.SubscriptionID == "" {
		return nil, fmt.Errorf("%w: missing subscription id", ErrResponseInvalid)
	}
	return state, nil
}

// VerifyAndParseWebhook verifies the signature and parses a webhook event.
func VerifyAndParseWebhook(cfg *Config, headers map[string]string, body []byte, now time.Time) (*WebhookEvent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrResponseInvalid)
	}
	if now.IsZero() {
		now = time.Now()
	}

	signatureHeader := getHeaderValue(headers, "Stripe-Signature")
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, fmt.Errorf("%w: Stripe-Signature is required", ErrSignatureInvalid)
	}
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}
	tolerance := cfg.WebhookToleranceSeconds
	if tolerance <= 0 {
		tolerance = defaultWebhookToleranceS
	}
	if delta := math.Abs(float64(now.Unix() - timestamp)); delta > float64(tolerance) {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	expected := computeSignature(cfg.WebhookSecret, timestamp, body)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(strings.ToLower(sig)), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}

	eventRaw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	eventType := strings.TrimSpace(readString(eventRaw, "type"))
	if eventType == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrResponseInvalid)
	}
	dataRaw, ok := eventRaw["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: missing data object", ErrResponseInvalid)
	}
	objectRaw, ok := dataRaw["object"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: missing event object", ErrResponseInvalid)
	}

	event := &WebhookEvent{
		EventID:   strings.TrimSpace(readString(eventRaw, "id")),
		EventType: eventType,
		Raw:       eventRaw,
	}
	fillWebhookEvent(event, objectRaw)
	return event, nil
}

func fillWebhookEvent(event *WebhookEvent, objectRaw map[string]interface{}) {
	objectType := strings.TrimSpace(readString(objectRaw, "object"))
	metadata := readMap(objectRaw, "metadata")
	event.DistributorID = parseDistributorID(metadata)

	switch objectType {
	case "subscription":
		state := parseSubscriptionObject(objectRaw)
		event.Subscription = state
		event.SubscriptionID = state.SubscriptionID
		event.CustomerID = state.CustomerID
		if event.DistributorID == 0 {
			event.DistributorID = parseDistributorID(readMap(objectRaw, "metadata"))
		}
	case "checkout.session":
		event.CustomerID = strings.TrimSpace(readString(objectRaw, "customer"))
		event.SubscriptionID = readObjectID(objectRaw, "subscription")
		if event.DistributorID == 0 {
			if ref := strings.TrimSpace(readString(objectRaw, "client_reference_id")); ref != "" {
				if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
					event.DistributorID = uint(id)
				}
			}
		}
	case "invoice":
		event.CustomerID = strings.TrimSpace(readString(objectRaw, "customer"))
		event.SubscriptionID = readObjectID(objectRaw, "subscription")
	}
}

func parseSubscriptionObject(raw map[string]interface{}) *SubscriptionState {
	state := &SubscriptionState{Raw: raw}
	state.SubscriptionID = strings.TrimSpace(readString(raw, "id"))
	state.CustomerID = readObjectID(raw, "customer")
	state.Status = strings.ToLower(strings.TrimSpace(readString(raw, "status")))
	if items := readMap(raw, "items"); items != nil {
		if data, ok := items["data"].([]interface{}); ok && len(data) > 0 {
			if first, ok := data[0].(map[string]interface{}); ok {
				if price := readMap(first, "price"); price != nil {
					state.PriceID = strings.TrimSpace(readString(price, "id"))
				}
			}
		}
	}
	if start := readInt64(raw, "start_date"); start > 0 {
		startedAt := time.Unix(start, 0)
		state.StartedAt = &startedAt
	}
	if end := readInt64(raw, "current_period_end"); end > 0 {
		periodEnd := time.Unix(end, 0)
		state.CurrentPeriodEnd = &periodEnd
	}
	if canceled := readInt64(raw, "canceled_at"); canceled > 0 {
		canceledAt := time.Unix(canceled, 0)
		state.CanceledAt = &canceledAt
	}
	return state
}

func parseDistributorID(metadata map[string]interface{}) uint {
	if len(metadata) == 0 {
		return 0
	}
	raw := strings.TrimSpace(readString(metadata, "distributor_id"))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0
	}
	return uint(id)
}

// readObjectID reads a field that may be an ID string or an expanded object
func readObjectID(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]interface{}:
		return strings.TrimSpace(readString(typed, "id"))
	default:
		return ""
	}
}

func doFormRequest(ctx context.Context, cfg *Config, method, path string, form url.Values) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := (&http.Client{Timeout: defaultTimeout}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, path string) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.SecretKey)

	resp, err := (&http.Client{Timeout: defaultTimeout}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	payload := strconv.FormatInt(timestamp, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}

func parseSignatureHeader(signatureHeader string) (int64, []string, error) {
	timestamp := int64(0)
	signatures := make([]string, 0)
	parts := strings.Split(signatureHeader, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil || parsed <= 0 {
				return 0, nil, fmt.Errorf("%w: invalid timestamp", ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			if value != "" {
				signatures = append(signatures, strings.ToLower(value))
			}
		}
	}
	if timestamp <= 0 {
		return 0, nil, fmt.Errorf("%w: timestamp is missing", ErrSignatureInvalid)
	}
	if len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: v1 signature is missing", ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

func getHeaderValue(headers map[string]string, key string) string {
	if len(headers) == 0 || strings.TrimSpace(key) == "" {
		return ""
	}
	for h, value := range headers {
		if strings.EqualFold(strings.TrimSpace(h), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strings.TrimSpace(strconv.FormatInt(int64(typed), 10))
	case int64:
		return strings.TrimSpace(strconv.FormatInt(typed, 10))
	case int:
		return strings.TrimSpace(strconv.Itoa(typed))
	default:
		return ""
	}
}

func readMap(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	mapped, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return mapped
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || strings.TrimSpace(key) == "" {
		return 0
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
