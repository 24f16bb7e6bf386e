package service

import (
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/queue"
	"github.com/aquaponto/aquaponto/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedTransitions order status machine. Cancelado is reachable from any
// non-terminal status; entregue and cancelado are terminal.
var allowedTransitions = map[string][]string{
	constants.OrderStatusNovo:            {constants.OrderStatusConfirmado, constants.OrderStatusCancelado},
	constants.OrderStatusConfirmado:      {constants.OrderStatusPreparando, constants.OrderStatusCancelado},
	constants.OrderStatusPreparando:      {constants.OrderStatusSaiuParaEntrega, constants.OrderStatusCancelado},
	constants.OrderStatusSaiuParaEntrega: {constants.OrderStatusEntregue, constants.OrderStatusCancelado},
	constants.OrderStatusEntregue:        {},
	constants.OrderStatusCancelado:       {},
}

// CanTransition reports whether from -> to is a legal status change
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService order submission workflow and status machine
type OrderService struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	distributorRepo repository.DistributorRepository
	discountRepo    repository.DiscountRuleRepository
	hoursService    *HoursService
	pricingService  *PricingService
	subscriptionSvc *SubscriptionService
	queueClient     *queue.Client
	schedulingConf  config.OrderConfig
}

// NewOrderService creates the order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	distributorRepo repository.DistributorRepository,
	discountRepo repository.DiscountRuleRepository,
	hoursService *HoursService,
	pricingService *PricingService,
	subscriptionSvc *SubscriptionService,
	queueClient *queue.Client,
	schedulingConf config.OrderConfig,
) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		distributorRepo: distributorRepo,
		discountRepo:    discountRepo,
		hoursService:    hoursService,
		pricingService:  pricingService,
		subscriptionSvc: subscriptionSvc,
		queueClient:     queueClient,
		schedulingConf:  schedulingConf,
	}
}

// SubmitOrderItem one cart line of a submission
type SubmitOrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// SubmitOrderInput order submission input. CustomerID zero means guest.
type SubmitOrderInput struct {
	DistributorID  uint
	CustomerID     uint
	GuestName      string
	GuestPhone     string
	Items          []SubmitOrderItem
	OrderType      string
	ScheduledDate  string // "2006-01-02", scheduled orders only
	DeliveryPeriod string // "HH:MM-HH:MM" slot label, scheduled orders only
	CEP            string
	Street         string
	Number         string
	Complement     string
	Neighborhood   string
	City           string
	UF             string
	PaymentMethod  string
	ChangeFor      *models.Money
	Notes          string
}

// Submit runs the order submission workflow: availability gate, scheduling
// rules, server-side repricing, then one transaction for the counter, the
// order row and its items. Client-sent prices are never trusted.
func (s *OrderService) Submit(input SubmitOrderInput) (*models.Order, error) {
	now := time.Now()

	distributor, err := s.distributorRepo.GetByID(input.DistributorID)
	if err != nil {
		return nil, err
	}
	if distributor == nil || !distributor.IsActive || !distributor.OnboardingComplete() {
		return nil, ErrDistributorUnavailable
	}
	subscribed, err := s.subscriptionSvc.HasActiveSubscription(distributor.ID, now)
	if err != nil {
		return nil, err
	}
	if !subscribed {
		return nil, ErrDistributorUnavailable
	}

	hours, err := s.distributorRepo.GetHours(distributor.ID)
	if err != nil {
		return nil, err
	}

	orderType := strings.TrimSpace(input.OrderType)
	if orderType == "" {
		orderType = constants.OrderTypeImediato
	}
	var scheduledDate *time.Time
	deliveryPeriod := ""

	switch orderType {
	case constants.OrderTypeImediato:
		if !s.hoursService.IsOpenAt(hours, now) {
			if s.hoursService.HasAnyFutureSlot(hours) {
				return nil, ErrSchedulingRequired
			}
			return nil, ErrDistributorUnavailable
		}
	case constants.OrderTypeAgendado:
		// scheduled orders are always authenticated; the order must be
		// reachable later by its owner, not by a throwaway phone number
		if input.CustomerID == 0 {
			return nil, ErrAuthRequired
		}
		scheduledDate, deliveryPeriod, err = s.validateSchedule(hours, input.ScheduledDate, input.DeliveryPeriod, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidOrderItem
	}

	if input.CustomerID == 0 {
		guestPhone, err := NormalizePhone(input.GuestPhone)
		if err != nil {
			return nil, err
		}
		input.GuestPhone = guestPhone
		if strings.TrimSpace(input.GuestName) == "" {
			return nil, ErrInvalidOrderItem
		}
	}

	items, quote, err := s.priceItems(distributor.ID, input.Items)
	if err != nil {
		return nil, err
	}

	if err := s.validatePayment(input.PaymentMethod, input.ChangeFor, quote.Total); err != nil {
		return nil, err
	}

	order := &models.Order{
		DistributorID:  distributor.ID,
		Status:         constants.OrderStatusNovo,
		OrderType:      orderType,
		ScheduledDate:  scheduledDate,
		DeliveryPeriod: deliveryPeriod,
		GuestName:      strings.TrimSpace(input.GuestName),
		GuestPhone:     input.GuestPhone,
		CEP:            strings.TrimSpace(input.CEP),
		Street:         strings.TrimSpace(input.Street),
		Number:         strings.TrimSpace(input.Number),
		Complement:     strings.TrimSpace(input.Complement),
		Neighborhood:   strings.TrimSpace(input.Neighborhood),
		City:           strings.TrimSpace(input.City),
		UF:             strings.ToUpper(strings.TrimSpace(input.UF)),
		PaymentMethod:  input.PaymentMethod,
		ChangeFor:      input.ChangeFor,
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		Total:          quote.Total,
		Notes:          strings.TrimSpace(input.Notes),
	}
	if input.CustomerID != 0 {
		customerID := input.CustomerID
		order.CustomerID = &customerID
		order.GuestName = ""
		order.GuestPhone = ""
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderTx := s.orderRepo.WithTx(tx)
		number, err := orderTx.NextOrderNumber()
		if err != nil {
			return err
		}
		order.OrderNumber = number
		return orderTx.Create(order, items)
	})
	if err != nil {
		return nil, err
	}
	order.Items = items

	// notification is best effort; a dropped task never fails the order
	if err := s.queueClient.EnqueueOrderNotify(queue.OrderNotifyPayload{
		OrderID: order.ID,
		Status:  order.Status,
	}); err != nil {
		logger.Warnw("order_notify_enqueue_failed",
			"order_id", order.ID,
			"error", err,
		)
	}

	return order, nil
}

// validateSchedule checks a scheduled order's date and slot against the
// distributor's hours and the scheduling horizon.
func (s *OrderService) validateSchedule(hours []models.BusinessHour, rawDate, rawPeriod string, now time.Time) (*time.Time, string, error) {
	rawDate = strings.TrimSpace(rawDate)
	rawPeriod = strings.TrimSpace(rawPeriod)
	if rawDate == "" || rawPeriod == "" {
		return nil, "", ErrInvalidScheduleDate
	}
	date, err := time.ParseInLocation("2006-01-02", rawDate, now.Location())
	if err != nil {
		return nil, "", ErrInvalidScheduleDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today.AddDate(0, 0, 1)) {
		return nil, "", ErrInvalidScheduleDate
	}
	horizon := s.schedulingConf.SchedulingHorizonDays
	if horizon <= 0 {
		horizon = 7
	}
	if date.After(today.AddDate(0, 0, horizon)) {
		return nil, "", ErrInvalidScheduleDate
	}

	slots := s.hoursService.AvailableSlots(hours, date)
	for _, slot := range slots {
		if slot.Label() == rawPeriod {
			return &date, rawPeriod, nil
		}
	}
	return nil, "", ErrInvalidScheduleSlot
}

// priceItems loads the products, snapshots them into order items and
// reprices the cart server side.
func (s *OrderService) priceItems(distributorID uint, lines []SubmitOrderItem) ([]models.OrderItem, PriceQuote, error) {
	if len(lines) == 0 {
		return nil, PriceQuote{}, ErrInvalidOrderItem
	}
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 {
			return nil, PriceQuote{}, ErrInvalidOrderItem
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, PriceQuote{}, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]models.OrderItem, 0, len(lines))
	priceLines := make([]PriceItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok || product.DistributorID != distributorID {
			return nil, PriceQuote{}, ErrInvalidOrderItem
		}
		if !product.IsAvailable {
			return nil, PriceQuote{}, ErrProductUnavailable
		}
		brandName := ""
		if product.Brand != nil {
			brandName = product.Brand.Name
		}
		lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			BrandName:   brandName,
			Liters:      product.Liters,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		})
		priceLines = append(priceLines, PriceItem{
			UnitPrice: product.Price.Decimal,
			Quantity:  line.Quantity,
		})
	}

	rules, err := s.discountRepo.ListByDistributor(distributorID, true)
	if err != nil {
		return nil, PriceQuote{}, err
	}
	quote := s.pricingService.Quote(priceLines, rules)
	return items, quote, nil
}

func (s *OrderService) validatePayment(method string, changeFor *models.Money, total models.Money) error {
	switch method {
	case constants.PaymentMethodDinheiro:
		if changeFor != nil && changeFor.Decimal.LessThan(total.Decimal) {
			return ErrInvalidPaymentMethod
		}
		return nil
	case constants.PaymentMethodPix, constants.PaymentMethodCartao:
		if changeFor != nil {
			return ErrInvalidPaymentMethod
		}
		return nil
	default:
		return ErrInvalidPaymentMethod
	}
}

// UpdateStatus moves an order through the status machine on behalf of its
// distributor. Delivery enqueues the loyalty accrual task.
func (s *OrderService) UpdateStatus(orderID, distributorID uint, newStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndDistributor(orderID, distributorID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransition(order.Status, newStatus) {
		return nil, ErrInvalidStatusChange
	}

	now := time.Now()
	updates := map[string]interface{}{}
	switch newStatus {
	case constants.OrderStatusConfirmado:
		updates["confirmed_at"] = now
		order.ConfirmedAt = &now
	case constants.OrderStatusEntregue:
		updates["delivered_at"] = now
		order.DeliveredAt = &now
	case constants.OrderStatusCancelado:
		updates["canceled_at"] = now
		order.CanceledAt = &now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, newStatus, updates); err != nil {
		return nil, err
	}
	order.Status = newStatus

	if err := s.queueClient.EnqueueOrderNotify(queue.OrderNotifyPayload{
		OrderID: order.ID,
		Status:  newStatus,
	}); err != nil {
		logger.Warnw("order_notify_enqueue_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
	if newStatus == constants.OrderStatusEntregue {
		if err := s.queueClient.EnqueueLoyaltyAccrue(queue.LoyaltyAccruePayload{OrderID: order.ID}); err != nil {
			logger.Warnw("loyalty_accrue_enqueue_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}
	return order, nil
}

// GetForDistributor fetches one order scoped to its distributor
func (s *OrderService) GetForDistributor(orderID, distributorID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndDistributor(orderID, distributorID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetForCustomer fetches one order owned by a customer
func (s *OrderService) GetForCustomer(orderID, customerID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndCustomer(orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// TrackGuestOrder fetches a guest order by number + normalized phone
func (s *OrderService) TrackGuestOrder(orderNumber int64, guestPhone string) (*models.Order, error) {
	normalized, err := NormalizePhone(guestPhone)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByNumberAndGuest(orderNumber, normalized)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List paginated order listing
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// staleScheduledBatch caps how many stale orders one housekeeping pass
// cancels; the next pass picks up the rest.
const staleScheduledBatch = 200

// CancelStaleScheduled cancels scheduled orders whose delivery date passed
// without the distributor ever confirming them. Returns how many orders
// were canceled.
func (s *OrderService) CancelStaleScheduled(now time.Time) (int, error) {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stale, err := s.orderRepo.ListStaleScheduled(cutoff, staleScheduledBatch)
	if err != nil {
		return 0, err
	}

	canceled := 0
	for i := range stale {
		order := &stale[i]
		if !CanTransition(order.Status, constants.OrderStatusCancelado) {
			continue
		}
		if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelado, map[string]interface{}{
			"canceled_at": now,
		}); err != nil {
			logger.Warnw("order_housekeeping_cancel_failed",
				"order_id", order.ID,
				"error", err,
			)
			continue
		}
		canceled++
		if err := s.queueClient.EnqueueOrderNotify(queue.OrderNotifyPayload{
			OrderID: order.ID,
			Status:  constants.OrderStatusCancelado,
		}); err != nil {
			logger.Warnw("order_notify_enqueue_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}
	return canceled, nil
}

// Slots lists the scheduling slots of a distributor on a date. The date is
// held to the same window as submission: strictly future, inside the horizon.
func (s *OrderService) Slots(distributorID uint, rawDate string, now time.Time) ([]TimeSlot, error) {
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(rawDate), now.Location())
	if err != nil {
		return nil, ErrInvalidScheduleDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today.AddDate(0, 0, 1)) {
		return nil, ErrInvalidScheduleDate
	}
	horizon := s.schedulingConf.SchedulingHorizonDays
	if horizon <= 0 {
		horizon = 7
	}
	if date.After(today.AddDate(0, 0, horizon)) {
		return nil, ErrInvalidScheduleDate
	}
	hours, err := s.distributorRepo.GetHours(distributorID)
	if err != nil {
		return nil, err
	}
	return s.hoursService.AvailableSlots(hours, date), nil
}
