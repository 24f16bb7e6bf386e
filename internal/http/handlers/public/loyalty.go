package public

import (
	"github.com/aquaponto/aquaponto/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoyaltyBalances lists the logged-in customer's points per distributor
func (h *Handler) LoyaltyBalances(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	balances, err := h.LoyaltyService.ListBalances(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao carregar os pontos", err)
		return
	}
	response.Success(c, balances)
}

// LoyaltyRedeemRequest redemption request
type LoyaltyRedeemRequest struct {
	DistributorID uint `json:"distributor_id" binding:"required"`
	Points        int  `json:"points" binding:"required"`
}

// LoyaltyRedeem burns points for the distributor's reward
func (h *Handler) LoyaltyRedeem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req LoyaltyRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	redemption, err := h.LoyaltyService.Redeem(userID, req.DistributorID, req.Points)
	if err != nil {
		respondWithMappedError(c, err, loyaltyRedeemErrorRules, response.CodeInternal, "falha ao resgatar os pontos")
		return
	}
	requestLog(c).Infow("loyalty_redeemed",
		"customer_id", userID,
		"distributor_id", req.DistributorID,
		"points", req.Points,
		"reference", redemption.Reference,
	)
	response.Success(c, redemption)
}
