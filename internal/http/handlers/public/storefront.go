package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

// StorefrontList lists open-for-business distributors. Only active and
// fully onboarded distributors appear, so the listing never links to a
// storefront that GetStorefront would hide.
func (h *Handler) StorefrontList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	distributors, total, err := h.DistributorService.List(repository.DistributorListFilter{
		Page:          page,
		PageSize:      pageSize,
		Search:        strings.TrimSpace(c.Query("search")),
		City:          strings.TrimSpace(c.Query("city")),
		UF:            strings.ToUpper(strings.TrimSpace(c.Query("uf"))),
		OnlyActive:    true,
		OnlyOnboarded: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar as distribuidoras", err)
		return
	}
	distributors = h.dropLapsedTenants(distributors)
	response.SuccessWithPage(c, distributors, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}

// dropLapsedTenants removes distributors whose subscription no longer
// grants access, so a lapsed tenant disappears from the listing the same
// way its slug stops resolving.
func (h *Handler) dropLapsedTenants(distributors []models.Distributor) []models.Distributor {
	if h.SubscriptionService == nil || !h.SubscriptionService.Enforced() {
		return distributors
	}
	now := time.Now()
	visible := distributors[:0]
	for _, distributor := range distributors {
		active, err := h.SubscriptionService.HasActiveSubscription(distributor.ID, now)
		if err != nil || !active {
			continue
		}
		visible = append(visible, distributor)
	}
	return visible
}

// resolveVisibleStorefront resolves a slug to a storefront the public may
// see: active, onboarded and with a subscription in good standing.
func (h *Handler) resolveVisibleStorefront(c *gin.Context, slug string) (*service.Storefront, bool) {
	storefront, err := h.DistributorService.GetStorefront(slug, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "distribuidora não encontrada", nil)
			return nil, false
		}
		respondError(c, response.CodeInternal, "falha ao carregar a loja", err)
		return nil, false
	}
	if h.SubscriptionService != nil && h.SubscriptionService.Enforced() {
		active, err := h.SubscriptionService.HasActiveSubscription(storefront.Distributor.ID, time.Now())
		if err != nil {
			respondError(c, response.CodeInternal, "falha ao carregar a loja", err)
			return nil, false
		}
		if !active {
			respondError(c, response.CodeNotFound, "distribuidora não encontrada", nil)
			return nil, false
		}
	}
	return storefront, true
}

// Storefront resolves a public storefront by slug
func (h *Handler) Storefront(c *gin.Context) {
	storefront, ok := h.resolveVisibleStorefront(c, c.Param("slug"))
	if !ok {
		return
	}
	response.Success(c, storefront)
}

// StorefrontSlots lists delivery slots of a storefront on a date
func (h *Handler) StorefrontSlots(c *gin.Context) {
	storefront, ok := h.resolveVisibleStorefront(c, c.Param("slug"))
	if !ok {
		return
	}

	slots, err := h.OrderService.Slots(storefront.Distributor.ID, c.Query("date"), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrInvalidScheduleDate) {
			respondError(c, response.CodeBadRequest, service.ErrInvalidScheduleDate.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "falha ao listar horários", err)
		return
	}
	response.Success(c, gin.H{
		"date":  c.Query("date"),
		"slots": slots,
	})
}
