package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/gateway/whatsapp"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"
)

// statusMessages customer-facing Portuguese status lines
var statusMessages = map[string]string{
	constants.OrderStatusNovo:            "Recebemos seu pedido!",
	constants.OrderStatusConfirmado:      "Seu pedido foi confirmado.",
	constants.OrderStatusPreparando:      "Seu pedido está sendo preparado.",
	constants.OrderStatusSaiuParaEntrega: "Seu pedido saiu para entrega!",
	constants.OrderStatusEntregue:        "Pedido entregue. Obrigado!",
	constants.OrderStatusCancelado:       "Seu pedido foi cancelado.",
}

// NotificationService WhatsApp order notifications
type NotificationService struct {
	orderRepo       repository.OrderRepository
	distributorRepo repository.DistributorRepository
	userRepo        repository.UserRepository
	whatsappClient  *whatsapp.Client
}

// NewNotificationService creates the notification service
func NewNotificationService(
	orderRepo repository.OrderRepository,
	distributorRepo repository.DistributorRepository,
	userRepo repository.UserRepository,
	whatsappClient *whatsapp.Client,
) *NotificationService {
	return &NotificationService{
		orderRepo:       orderRepo,
		distributorRepo: distributorRepo,
		userRepo:        userRepo,
		whatsappClient:  whatsappClient,
	}
}

// NotifyOrderStatus sends the order status message to both sides: the
// customer (or guest) and the distributor. Missing numbers are skipped.
func (s *NotificationService) NotifyOrderStatus(ctx context.Context, orderID uint, status string) error {
	if !s.whatsappClient.Enabled() {
		return nil
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	distributor, err := s.distributorRepo.GetByID(order.DistributorID)
	if err != nil {
		return err
	}
	if distributor == nil {
		return ErrNotFound
	}

	customerPhone := order.GuestPhone
	if order.CustomerID != nil && *order.CustomerID != 0 {
		customer, err := s.userRepo.GetByID(*order.CustomerID)
		if err != nil {
			return err
		}
		if customer != nil {
			customerPhone = customer.Phone
		}
	}

	if customerPhone != "" {
		body := s.buildCustomerMessage(order, distributor, status)
		if err := s.whatsappClient.SendText(ctx, customerPhone, body); err != nil {
			logger.Warnw("whatsapp_customer_notify_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}

	// the distributor only hears about new orders; status changes are theirs
	if status == constants.OrderStatusNovo && distributor.WhatsApp != "" {
		body := s.buildDistributorMessage(order)
		if err := s.whatsappClient.SendText(ctx, distributor.WhatsApp, body); err != nil {
			logger.Warnw("whatsapp_distributor_notify_failed",
				"order_id", order.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *NotificationService) buildCustomerMessage(order *models.Order, distributor *models.Distributor, status string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", distributor.TradeName)
	fmt.Fprintf(&b, "Pedido #%d\n", order.OrderNumber)
	if line, ok := statusMessages[status]; ok {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if order.OrderType == constants.OrderTypeAgendado && order.ScheduledDate != nil {
		fmt.Fprintf(&b, "Entrega agendada: %s %s\n",
			order.ScheduledDate.Format("02/01/2006"), order.DeliveryPeriod)
	}
	fmt.Fprintf(&b, "Total: R$ %s", order.Total.String())
	return b.String()
}

func (s *NotificationService) buildDistributorMessage(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Novo pedido #%d*\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%dx %s\n", item.Quantity, item.ProductName)
	}
	fmt.Fprintf(&b, "Endereço: %s, %s - %s\n", order.Street, order.Number, order.Neighborhood)
	fmt.Fprintf(&b, "Pagamento: %s\n", order.PaymentMethod)
	if order.PaymentMethod == constants.PaymentMethodDinheiro && order.ChangeFor != nil {
		fmt.Fprintf(&b, "Troco para: R$ %s\n", order.ChangeFor.String())
	}
	fmt.Fprintf(&b, "Total: R$ %s", order.Total.String())
	return b.String()
}
