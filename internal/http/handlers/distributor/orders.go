package distributor

import (
	"strconv"
	"strings"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders paginated order listing for the dashboard
func (h *Handler) ListOrders(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		DistributorID: distributor.ID,
		Status:        strings.TrimSpace(c.Query("status")),
		OrderType:     strings.TrimSpace(c.Query("order_type")),
	}
	if number, err := strconv.ParseInt(strings.TrimSpace(c.Query("order_number")), 10, 64); err == nil && number > 0 {
		filter.OrderNumber = number
	}

	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar os pedidos", err)
		return
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}

// GetOrder fetches one order of the distributor
func (h *Handler) GetOrder(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	order, err := h.OrderService.GetForDistributor(uint(orderID), distributor.ID)
	if err != nil {
		respondWithMappedError(c, err, orderStatusErrorRules, response.CodeInternal, "falha ao carregar o pedido")
		return
	}
	response.Success(c, order)
}

// OrderStatusRequest status transition request
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order through the status machine
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	distributor, ok := h.requireDistributor(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}

	order, err := h.OrderService.UpdateStatus(uint(orderID), distributor.ID, strings.TrimSpace(req.Status))
	if err != nil {
		respondWithMappedError(c, err, orderStatusErrorRules, response.CodeInternal, "falha ao atualizar o pedido")
		return
	}
	requestLog(c).Infow("order_status_updated",
		"order_id", order.ID,
		"distributor_id", distributor.ID,
		"status", order.Status,
	)
	response.Success(c, order)
}
