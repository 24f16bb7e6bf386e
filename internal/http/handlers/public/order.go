package public

import (
	"strconv"
	"strings"

	handlershared "github.com/aquaponto/aquaponto/internal/http/handlers/shared"
	"github.com/aquaponto/aquaponto/internal/http/response"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest one cart line
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// OrderCreateRequest order submission request
type OrderCreateRequest struct {
	DistributorID  uint               `json:"distributor_id" binding:"required"`
	GuestName      string             `json:"guest_name"`
	GuestPhone     string             `json:"guest_phone"`
	Items          []OrderItemRequest `json:"items" binding:"required"`
	OrderType      string             `json:"order_type"`
	ScheduledDate  string             `json:"scheduled_date"`
	DeliveryPeriod string             `json:"delivery_period"`
	CEP            string             `json:"cep"`
	Street         string             `json:"street"`
	Number         string             `json:"number"`
	Complement     string             `json:"complement"`
	Neighborhood   string             `json:"neighborhood"`
	City           string             `json:"city"`
	UF             string             `json:"uf"`
	PaymentMethod  string             `json:"payment_method" binding:"required"`
	ChangeFor      *models.Money      `json:"change_for"`
	Notes          string             `json:"notes"`
}

func (r *OrderCreateRequest) toSubmitInput(customerID uint) service.SubmitOrderInput {
	items := make([]service.SubmitOrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.SubmitOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return service.SubmitOrderInput{
		DistributorID:  r.DistributorID,
		CustomerID:     customerID,
		GuestName:      r.GuestName,
		GuestPhone:     r.GuestPhone,
		Items:          items,
		OrderType:      r.OrderType,
		ScheduledDate:  r.ScheduledDate,
		DeliveryPeriod: r.DeliveryPeriod,
		CEP:            r.CEP,
		Street:         r.Street,
		Number:         r.Number,
		Complement:     r.Complement,
		Neighborhood:   r.Neighborhood,
		City:           r.City,
		UF:             r.UF,
		PaymentMethod:  r.PaymentMethod,
		ChangeFor:      r.ChangeFor,
		Notes:          r.Notes,
	}
}

// GuestOrderCreate submits a guest order (immediate delivery only)
func (h *Handler) GuestOrderCreate(c *gin.Context) {
	var req OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}

	order, err := h.OrderService.Submit(req.toSubmitInput(0))
	if err != nil {
		respondOrderSubmitError(c, err)
		return
	}
	requestLog(c).Infow("guest_order_created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"distributor_id", order.DistributorID,
	)
	response.Success(c, order)
}

// GuestOrderTrack looks up a guest order by number and phone
func (h *Handler) GuestOrderTrack(c *gin.Context) {
	orderNumber, err := strconv.ParseInt(strings.TrimSpace(c.Query("order_number")), 10, 64)
	if err != nil || orderNumber <= 0 {
		respondError(c, response.CodeBadRequest, "número do pedido inválido", nil)
		return
	}
	order, err := h.OrderService.TrackGuestOrder(orderNumber, c.Query("phone"))
	if err != nil {
		respondOrderTrackError(c, err)
		return
	}
	response.Success(c, order)
}

// CustomerOrderCreate submits an order on behalf of the logged-in customer
func (h *Handler) CustomerOrderCreate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "requisição inválida", err)
		return
	}

	order, err := h.OrderService.Submit(req.toSubmitInput(userID))
	if err != nil {
		respondOrderSubmitError(c, err)
		return
	}
	requestLog(c).Infow("customer_order_created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"customer_id", userID,
	)
	response.Success(c, order)
}

// CustomerOrderList lists the logged-in customer's orders
func (h *Handler) CustomerOrderList(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.List(repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: userID,
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "falha ao listar pedidos", err)
		return
	}
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.BuildTotalPages(total, pageSize),
	})
}

// CustomerOrderGet fetches one order owned by the logged-in customer
func (h *Handler) CustomerOrderGet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "identificador inválido", nil)
		return
	}
	order, err := h.OrderService.GetForCustomer(uint(orderID), userID)
	if err != nil {
		respondOrderTrackError(c, err)
		return
	}
	response.Success(c, order)
}
