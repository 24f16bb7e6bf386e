package distributor

import (
	"time"

	"github.com/aquaponto/aquaponto/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SubscriptionStatus returns the gate decision and the local subscription row
func (h *Handler) SubscriptionStatus(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	decision, err := h.SubscriptionService.Evaluate(distributor.ID, time.Now())
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao consultar a assinatura", err)
		return
	}
	response.Success(c, decision)
}

// checkoutRequest checkout body; plan defaults to monthly when omitted
type checkoutRequest struct {
	Plan string `json:"plan"`
}

// SubscriptionCheckout starts a Stripe checkout for the chosen plan
func (h *Handler) SubscriptionCheckout(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	ownerEmail := ""
	if user, err := h.UserAuthService.GetByID(userID); err == nil && user != nil {
		ownerEmail = user.Email
	}
	var req checkoutRequest
	_ = c.ShouldBindJSON(&req)

	url, err := h.SubscriptionService.CreateCheckout(c.Request.Context(), distributor.ID, ownerEmail, req.Plan)
	if err != nil {
		respondWithMappedError(c, err, subscriptionErrorRules, response.CodeInternal, "falha ao iniciar o checkout")
		return
	}
	requestLog(c).Infow("subscription_checkout_started",
		"distributor_id", distributor.ID,
		"plan", req.Plan,
	)
	response.Success(c, gin.H{"checkout_url": url})
}

// SubscriptionPortal opens the Stripe billing portal
func (h *Handler) SubscriptionPortal(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	url, err := h.SubscriptionService.CustomerPortal(c.Request.Context(), distributor.ID)
	if err != nil {
		respondWithMappedError(c, err, subscriptionErrorRules, response.CodeInternal, "falha ao abrir o portal de cobrança")
		return
	}
	response.Success(c, gin.H{"portal_url": url})
}
