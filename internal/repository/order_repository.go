package repository

import (
	"errors"
	"time"

	"github.com/aquaponto/aquaponto/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository order data access interface
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	NextOrderNumber() (int64, error)
	GetByID(id uint) (*models.Order, error)
	GetByIDAndDistributor(id, distributorID uint) (*models.Order, error)
	GetByIDAndCustomer(id, customerID uint) (*models.Order, error)
	GetByNumberAndGuest(orderNumber int64, guestPhone string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	MarkLoyaltyAwarded(id uint) (bool, error)
	ListStaleScheduled(before time.Time, limit int) ([]models.Order, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM implementation
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the order repository
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds a transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create creates an order with its items
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// NextOrderNumber increments the counter row under a row lock and returns
// the next number. Must run inside the order creation transaction so a
// rolled-back order never leaves a gap observable as a committed number.
func (r *GormOrderRepository) NextOrderNumber() (int64, error) {
	var counter models.OrderCounter
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.OrderCounter{LastNumber: 0}
		if err := r.db.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}
	counter.LastNumber++
	if err := r.db.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}

// GetByID fetches an order by ID
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndDistributor fetches an order scoped to its distributor
func (r *GormOrderRepository) GetByIDAndDistributor(id, distributorID uint) (*models.Order, error) {
	if id == 0 || distributorID == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").
		Where("id = ? AND distributor_id = ?", id, distributorID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndCustomer fetches an order owned by a customer
func (r *GormOrderRepository) GetByIDAndCustomer(id, customerID uint) (*models.Order, error) {
	if id == 0 || customerID == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByNumberAndGuest fetches a guest order by number + phone
func (r *GormOrderRepository) GetByNumberAndGuest(orderNumber int64, guestPhone string) (*models.Order, error) {
	if orderNumber == 0 || guestPhone == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").
		Where("order_number = ? AND customer_id IS NULL AND guest_phone = ?", orderNumber, guestPhone).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List paginated order list
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.DistributorID != 0 {
		query = query.Where("distributor_id = ?", filter.DistributorID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderType != "" {
		query = query.Where("order_type = ?", filter.OrderType)
	}
	if filter.OrderNumber != 0 {
		query = query.Where("order_number = ?", filter.OrderNumber)
	}
	if filter.GuestPhone != "" {
		query = query.Where("guest_phone = ?", filter.GuestPhone)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus updates the order status plus extra columns
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// MarkLoyaltyAwarded flips the accrual flag exactly once.
// Returns false when the flag was already set (idempotent replay).
func (r *GormOrderRepository) MarkLoyaltyAwarded(id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND loyalty_points_awarded = ?", id, false).
		Update("loyalty_points_awarded", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListStaleScheduled lists scheduled orders never confirmed whose
// scheduled date already passed
func (r *GormOrderRepository) ListStaleScheduled(before time.Time, limit int) ([]models.Order, error) {
	query := r.db.
		Where("order_type = ?", "agendado").
		Where("status = ?", "novo").
		Where("scheduled_date < ?", before).
		Order("scheduled_date asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
