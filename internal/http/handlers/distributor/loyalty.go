package distributor

import (
	"strconv"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetLoyaltyProgram returns the loyalty program configuration
func (h *Handler) GetLoyaltyProgram(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	program, err := h.LoyaltyService.GetProgram(distributor.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao carregar o programa de fidelidade", err)
		return
	}
	if program == nil {
		program = &models.LoyaltyProgram{DistributorID: distributor.ID}
	}
	response.Success(c, program)
}

// LoyaltyProgramRequest loyalty program configuration request
type LoyaltyProgramRequest struct {
	IsEnabled         bool          `json:"is_enabled"`
	PointsPerOrder    int           `json:"points_per_order" binding:"required"`
	RewardThreshold   int           `json:"reward_threshold" binding:"required"`
	RewardDescription string        `json:"reward_description"`
	MinOrderValue     *models.Money `json:"min_order_value"`
}

// UpsertLoyaltyProgram saves the loyalty program configuration
func (h *Handler) UpsertLoyaltyProgram(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	var req LoyaltyProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	program := &models.LoyaltyProgram{
		DistributorID:     distributor.ID,
		IsEnabled:         req.IsEnabled,
		PointsPerOrder:    req.PointsPerOrder,
		RewardThreshold:   req.RewardThreshold,
		RewardDescription: req.RewardDescription,
		MinOrderValue:     req.MinOrderValue,
	}
	if err := h.LoyaltyService.UpsertProgram(program); err != nil {
		respondWithMappedError(c, err, loyaltyProgramErrorRules, response.CodeInternal, "falha ao salvar o programa de fidelidade")
		return
	}
	response.Success(c, program)
}

// ListRedemptions lists loyalty redemptions of the distributor
func (h *Handler) ListRedemptions(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	redemptions, total, err := h.LoyaltyService.ListRedemptions(repository.RedemptionListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: distributor.ID,
		Status:        c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar os resgates", err)
		return
	}
	response.SuccessWithPage(c, redemptions, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}
