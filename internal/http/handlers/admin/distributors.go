package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListDistributors paginated distributor listing
func (h *Handler) ListDistributors(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	distributors, total, err := h.DistributorService.List(repository.DistributorListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(c.Query("search")),
		City:       strings.TrimSpace(c.Query("city")),
		UF:         strings.ToUpper(strings.TrimSpace(c.Query("uf"))),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar as distribuidoras", err)
		return
	}
	response.SuccessWithPage(c, distributors, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}

// GetDistributor fetches one distributor with its subscription state
func (h *Handler) GetDistributor(c *gin.Context) {
	distributorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || distributorID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	distributor, err := h.DistributorService.GetByID(uint(distributorID))
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao carregar a distribuidora", err)
		return
	}
	if distributor == nil {
		respondError(c, response.CodeNotFound, "distribuidora não encontrada", nil)
		return
	}
	subscription, err := h.SubscriptionService.GetByDistributor(distributor.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao carregar a assinatura", err)
		return
	}
	response.Success(c, gin.H{
		"distributor":  distributor,
		"subscription": subscription,
	})
}

// DistributorActiveRequest visibility toggle request
type DistributorActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetDistributorActive enables or disables a distributor storefront
func (h *Handler) SetDistributorActive(c *gin.Context) {
	distributorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || distributorID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	var req DistributorActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}
	if err := h.DistributorService.SetActive(uint(distributorID), *req.IsActive); err != nil {
		respondError(c, response.CodeInternal, "falha ao atualizar a distribuidora", err)
		return
	}
	requestLog(c).Infow("admin_distributor_active_toggled",
		"distributor_id", distributorID,
		"is_active", *req.IsActive,
	)
	response.Success(c, gin.H{"is_active": *req.IsActive})
}

// SubscriptionCounts subscription totals per status
func (h *Handler) SubscriptionCounts(c *gin.Context) {
	counts, err := h.SubscriptionService.CountByStatus()
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao contar as assinaturas", err)
		return
	}
	response.Success(c, counts)
}
