package queue

import (
	"encoding/json"

	"github.com/aquaponto/aquaponto/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderNotify WhatsApp order notification task
	TaskOrderNotify = constants.TaskOrderNotify
	// TaskLoyaltyAccrue loyalty accrual task for delivered orders
	TaskLoyaltyAccrue = constants.TaskLoyaltyAccrue
	// TaskSubscriptionRefresh remote subscription state refresh task
	TaskSubscriptionRefresh = constants.TaskSubscriptionRefresh
)

// OrderNotifyPayload order notification task payload
type OrderNotifyPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// LoyaltyAccruePayload loyalty accrual task payload
type LoyaltyAccruePayload struct {
	OrderID uint `json:"order_id"`
}

// SubscriptionRefreshPayload subscription refresh task payload
type SubscriptionRefreshPayload struct {
	DistributorID uint `json:"distributor_id"`
}

// NewOrderNotifyTask creates an order notification task
func NewOrderNotifyTask(payload OrderNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotify, body), nil
}

// NewLoyaltyAccrueTask creates a loyalty accrual task
func NewLoyaltyAccrueTask(payload LoyaltyAccruePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoyaltyAccrue, body), nil
}

// NewSubscriptionRefreshTask creates a subscription refresh task
func NewSubscriptionRefreshTask(payload SubscriptionRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSubscriptionRefresh, body), nil
}
