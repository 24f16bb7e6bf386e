package worker

import (
	"context"
	"errors"
	"time"

	"github.com/aquaponto/aquaponto/internal/config"
	"github.com/aquaponto/aquaponto/internal/logger"
	"github.com/aquaponto/aquaponto/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultRefreshInterval      = time.Hour
	defaultHousekeepingInterval = time.Hour
)

// Service async queue service
type Service struct {
	name                 string
	server               *asynq.Server
	mux                  *asynq.ServeMux
	consumer             *Consumer
	refreshInterval      time.Duration
	housekeepingInterval time.Duration
}

// NewService creates the async queue service
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	refreshInterval := defaultRefreshInterval
	if cfg.Subscription.RefreshIntervalMin > 0 {
		refreshInterval = time.Duration(cfg.Subscription.RefreshIntervalMin) * time.Minute
	}
	housekeepingInterval := defaultHousekeepingInterval
	if cfg.Order.HousekeepingIntervalMin > 0 {
		housekeepingInterval = time.Duration(cfg.Order.HousekeepingIntervalMin) * time.Minute
	}
	return &Service{
		name:                 "worker",
		server:               server,
		mux:                  mux,
		consumer:             consumer,
		refreshInterval:      refreshInterval,
		housekeepingInterval: housekeepingInterval,
	}, nil
}

// Name returns the service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start starts the worker and the subscription refresh loop
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.SubscriptionService != nil {
		go s.runSubscriptionRefreshLoop(ctx)
	}
	if s.consumer != nil && s.consumer.OrderService != nil {
		go s.runOrderHousekeepingLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop stops the worker
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runSubscriptionRefreshLoop periodically fans out refresh tasks for every
// subscription that could go stale. Webhooks are the primary signal; this
// loop catches the ones that never arrived.
func (s *Service) runSubscriptionRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.SubscriptionService == nil {
		return
	}
	runOnce := func() {
		ids, err := s.consumer.SubscriptionService.ListRefreshCandidates()
		if err != nil {
			logger.Warnw("worker_subscription_refresh_list_failed", "error", err)
			return
		}
		for _, id := range ids {
			if err := s.consumer.QueueClient.EnqueueSubscriptionRefresh(queue.SubscriptionRefreshPayload{
				DistributorID: id,
			}, 0); err != nil {
				logger.Warnw("worker_subscription_refresh_enqueue_failed", "distributor_id", id, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runOrderHousekeepingLoop cancels scheduled orders whose date passed
// with nobody confirming them, so storefront order lists do not pile up
// undeliverable rows.
func (s *Service) runOrderHousekeepingLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		canceled, err := s.consumer.OrderService.CancelStaleScheduled(time.Now())
		if err != nil {
			logger.Warnw("worker_order_housekeeping_failed", "error", err)
			return
		}
		if canceled > 0 {
			logger.Infow("worker_order_housekeeping_canceled", "orders", canceled)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.housekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
