package repository

import (
	"time"

	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository admin metrics aggregates
type DashboardRepository interface {
	CountDistributors(onlyActive bool) (int64, error)
	CountOrders(from, to time.Time) (int64, error)
	SumOrderRevenue(from, to time.Time) (decimal.Decimal, error)
	CountOrdersByStatus(from, to time.Time) (map[string]int64, error)
	TopDistributors(from, to time.Time, limit int) ([]DistributorRevenue, error)
}

// DistributorRevenue revenue aggregate per distributor
type DistributorRevenue struct {
	DistributorID uint            `json:"distributor_id"`
	TradeName     string          `json:"trade_name"`
	OrderCount    int64           `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
}

// GormDashboardRepository GORM implementation
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates the dashboard repository
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// CountDistributors counts distributors, optionally active only
func (r *GormDashboardRepository) CountDistributors(onlyActive bool) (int64, error) {
	query := r.db.Model(&models.Distributor{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountOrders counts orders created in the window
func (r *GormDashboardRepository) CountOrders(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// SumOrderRevenue sums delivered order totals in the window
func (r *GormDashboardRepository) SumOrderRevenue(from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Revenue decimal.Decimal
	}
	err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) as revenue").
		Where("status = ? AND created_at >= ? AND created_at < ?", "entregue", from, to).
		Scan(&row).Error
	return row.Revenue, err
}

// CountOrdersByStatus aggregates order counts per status in the window
func (r *GormDashboardRepository) CountOrdersByStatus(from, to time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TopDistributors ranks distributors by delivered revenue in the window
func (r *GormDashboardRepository) TopDistributors(from, to time.Time, limit int) ([]DistributorRevenue, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []DistributorRevenue
	err := r.db.Model(&models.Order{}).
		Select("orders.distributor_id, distributors.trade_name, count(*) as order_count, COALESCE(SUM(orders.total), 0) as revenue").
		Joins("JOIN distributors ON distributors.id = orders.distributor_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at < ?", "entregue", from, to).
		Group("orders.distributor_id, distributors.trade_name").
		Order("revenue desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
