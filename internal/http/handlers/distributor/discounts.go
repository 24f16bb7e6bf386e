package distributor

import (
	"strconv"

	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DiscountRuleRequest quantity tier request
type DiscountRuleRequest struct {
	MinQuantity int             `json:"min_quantity" binding:"required"`
	MaxQuantity *int            `json:"max_quantity"`
	Percent     decimal.Decimal `json:"percent" binding:"required"`
	IsActive    bool            `json:"is_active"`
}

func (r *DiscountRuleRequest) toModel() *models.DiscountRule {
	return &models.DiscountRule{
		MinQuantity: r.MinQuantity,
		MaxQuantity: r.MaxQuantity,
		Percent:     r.Percent,
		IsActive:    r.IsActive,
	}
}

// ListDiscountRules lists the quantity tiers
func (h *Handler) ListDiscountRules(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	rules, err := h.DistributorService.ListDiscountRules(distributor.ID, false)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar os descontos", err)
		return
	}
	response.Success(c, rules)
}

// CreateDiscountRule adds a quantity tier
func (h *Handler) CreateDiscountRule(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	var req DiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	rule := req.toModel()
	if err := h.DistributorService.CreateDiscountRule(distributor.ID, rule); err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "falha ao criar o desconto")
		return
	}
	response.Success(c, rule)
}

// UpdateDiscountRule updates a quantity tier
func (h *Handler) UpdateDiscountRule(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	ruleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || ruleID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	var req DiscountRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	rule, err := h.DistributorService.UpdateDiscountRule(uint(ruleID), distributor.ID, req.toModel())
	if err != nil {
		respondWithMappedError(c, err, discountErrorRules, response.CodeInternal, "falha ao atualizar o desconto")
		return
	}
	response.Success(c, rule)
}

// DeleteDiscountRule removes a quantity tier
func (h *Handler) DeleteDiscountRule(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	ruleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || ruleID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	if err := h.DistributorService.DeleteDiscountRule(uint(ruleID), distributor.ID); err != nil {
		respondError(c, response.CodeInternal, "falha ao remover o desconto", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
