package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/provider"
	"github.com/aquaponto/aquaponto/internal/queue"
	"github.com/aquaponto/aquaponto/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers the task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderNotify, c.handleOrderNotify)
	mux.HandleFunc(queue.TaskLoyaltyAccrue, c.handleLoyaltyAccrue)
	mux.HandleFunc(queue.TaskSubscriptionRefresh, c.handleSubscriptionRefresh)
}

func (c *Consumer) handleOrderNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_order_notify_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.NotificationService.NotifyOrderStatus(ctx, payload.OrderID, payload.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_order_notify_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_order_notify_skip_distributor_not_found", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_order_notify_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleLoyaltyAccrue(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_loyalty_accrue_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LoyaltyAccruePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_loyalty_accrue_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_loyalty_accrue_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.LoyaltyService == nil {
		logger.Warnw("worker_loyalty_accrue_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.LoyaltyService.AccrueForOrder(payload.OrderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_loyalty_accrue_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_loyalty_accrue_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleSubscriptionRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_subscription_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SubscriptionRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_subscription_refresh_unmarshal_failed", "error", err)
		return err
	}
	if payload.DistributorID == 0 {
		logger.Debugw("worker_subscription_refresh_skip_invalid_payload", "distributor_id", payload.DistributorID)
		return nil
	}
	if c.SubscriptionService == nil {
		logger.Warnw("worker_subscription_refresh_skip_service_nil", "distributor_id", payload.DistributorID)
		return nil
	}
	if err := c.SubscriptionService.RefreshSubscription(ctx, payload.DistributorID); err != nil {
		switch {
		case errors.Is(err, service.ErrStripeNotConfigured):
			logger.Debugw("worker_subscription_refresh_skip_not_configured", "distributor_id", payload.DistributorID)
			return nil
		default:
			logger.Warnw("worker_subscription_refresh_failed", "distributor_id", payload.DistributorID, "error", err)
			return err
		}
	}
	return nil
}
