package service

import (
	"time"

	"github.com/aquaponto/aquaponto/internal/models"
	"github.com/aquaponto/aquaponto/internal/repository"
)

// DashboardService admin metrics aggregation
type DashboardService struct {
	dashboardRepo    repository.DashboardRepository
	subscriptionRepo repository.SubscriptionRepository
}

// NewDashboardService creates the dashboard service
func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	subscriptionRepo repository.SubscriptionRepository,
) *DashboardService {
	return &DashboardService{
		dashboardRepo:    dashboardRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// Overview admin dashboard aggregates
type Overview struct {
	TotalDistributors  int64                           `json:"total_distributors"`
	ActiveDistributors int64                           `json:"active_distributors"`
	OrdersInWindow     int64                           `json:"orders_in_window"`
	Revenue            models.Money                    `json:"revenue"`
	OrdersByStatus     map[string]int64                `json:"orders_by_status"`
	Subscriptions      map[string]int64                `json:"subscriptions"`
	TopDistributors    []repository.DistributorRevenue `json:"top_distributors"`
}

// GetOverview builds the dashboard for a time window
func (s *DashboardService) GetOverview(from, to time.Time) (*Overview, error) {
	total, err := s.dashboardRepo.CountDistributors(false)
	if err != nil {
		return nil, err
	}
	active, err := s.dashboardRepo.CountDistributors(true)
	if err != nil {
		return nil, err
	}
	orders, err := s.dashboardRepo.CountOrders(from, to)
	if err != nil {
		return nil, err
	}
	revenue, err := s.dashboardRepo.SumOrderRevenue(from, to)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.dashboardRepo.CountOrdersByStatus(from, to)
	if err != nil {
		return nil, err
	}
	subscriptions, err := s.subscriptionRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	top, err := s.dashboardRepo.TopDistributors(from, to, 5)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalDistributors:  total,
		ActiveDistributors: active,
		OrdersInWindow:     orders,
		Revenue:            models.NewMoneyFromDecimal(revenue),
		OrdersByStatus:     byStatus,
		Subscriptions:      subscriptions,
		TopDistributors:    top,
	}, nil
}
