package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/logger"
)

var (
	ErrDisabled      = errors.New("whatsapp: gateway disabled")
	ErrConfigInvalid = errors.New("whatsapp: config invalid")
	ErrInvalidNumber = errors.New("whatsapp: invalid number")
	ErrSendFailed    = errors.New("whatsapp: send failed")
)

const (
	defaultTimeout = 5 * time.Second
	maxRetries     = 2
)

// Config WhatsApp gateway configuration
type Config struct {
	Enabled      bool
	APIBaseURL   string
	APIToken     string
	SenderNumber string
	Timeout      time.Duration
	MaxRetries   int
}

// Client text message sender backed by a WhatsApp business API gateway
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a WhatsApp client
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = maxRetries
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether sending is configured and turned on
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.APIBaseURL != "" && c.cfg.APIToken != ""
}

type sendPayload struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText delivers a text message to a 55-prefixed number. Transient
// failures (5xx, network) are retried with a short backoff.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	to = strings.TrimSpace(to)
	if len(to) < 12 || len(to) > 13 || !strings.HasPrefix(to, "55") {
		return ErrInvalidNumber
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("%w: empty message", ErrSendFailed)
	}

	payload := sendPayload{To: to, From: c.cfg.SenderNumber, Type: "text"}
	payload.Text.Body = body
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode payload failed", ErrSendFailed)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		retryable, err := c.send(ctx, encoded)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
		logger.Warnw("whatsapp_send_retry",
			"attempt", attempt+1,
			"error", err,
		)
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, encoded []byte) (retryable bool, err error) {
	endpoint := c.cfg.APIBaseURL + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return false, fmt.Errorf("%w: build request failed", ErrSendFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}
	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
	}
	return false, fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
}
