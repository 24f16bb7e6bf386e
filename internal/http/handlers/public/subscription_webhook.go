package public

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aquaponto/aquaponto/internal/payment/stripe"

	"github.com/gin-gonic/gin"
)

// StripeWebhook receives Stripe subscription lifecycle events. The signature
// is verified against the raw body before anything is applied. Unlike the
// browser API this endpoint reports failures through the HTTP status line:
// Stripe only redelivers on non-2xx, so a failed apply must not answer 200.
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		c.String(http.StatusBadRequest, "requisição inválida")
		return
	}
	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}
	log.Infow("stripe_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
	)

	if err := h.SubscriptionService.HandleWebhook(headers, body, time.Now()); err != nil {
		switch {
		case errors.Is(err, stripe.ErrSignatureInvalid):
			log.Warnw("stripe_webhook_signature_invalid", "client_ip", c.ClientIP())
			c.String(http.StatusUnauthorized, "assinatura do webhook inválida")
		case errors.Is(err, stripe.ErrResponseInvalid):
			c.String(http.StatusBadRequest, "payload do webhook inválido")
		default:
			log.Warnw("stripe_webhook_handle_failed", "error", err)
			c.String(http.StatusInternalServerError, "falha ao processar o webhook")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}
