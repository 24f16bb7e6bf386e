package repository

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository loyalty program, balance and redemption data access interface
type LoyaltyRepository interface {
	GetProgram(distributorID uint) (*models.LoyaltyProgram, error)
	UpsertProgram(program *models.LoyaltyProgram) error
	GetBalance(customerID, distributorID uint) (*models.CustomerLoyaltyPoints, error)
	GetBalanceForUpdate(customerID, distributorID uint) (*models.CustomerLoyaltyPoints, error)
	ListBalancesByCustomer(customerID uint) ([]models.CustomerLoyaltyPoints, error)
	CreateBalance(balance *models.CustomerLoyaltyPoints) error
	UpdateBalance(balance *models.CustomerLoyaltyPoints) error
	CreateRedemption(redemption *models.LoyaltyRedemption) error
	GetRedemptionByID(id uint) (*models.LoyaltyRedemption, error)
	GetRedemptionByReference(reference string) (*models.LoyaltyRedemption, error)
	UpdateRedemption(redemption *models.LoyaltyRedemption) error
	ListRedemptions(filter RedemptionListFilter) ([]models.LoyaltyRedemption, int64, error)
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository GORM implementation
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository creates the loyalty repository
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx binds a transaction
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// GetProgram fetches the loyalty program of a distributor
func (r *GormLoyaltyRepository) GetProgram(distributorID uint) (*models.LoyaltyProgram, error) {
	if distributorID == 0 {
		return nil, nil
	}
	var program models.LoyaltyProgram
	if err := r.db.Where("distributor_id = ?", distributorID).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &program, nil
}

// UpsertProgram creates or updates the single program row of a distributor
func (r *GormLoyaltyRepository) UpsertProgram(program *models.LoyaltyProgram) error {
	if program == nil || program.DistributorID == 0 {
		return nil
	}
	existing, err := r.GetProgram(program.DistributorID)
	if err != nil {
		return err
	}
	if existing != nil {
		program.ID = existing.ID
		program.CreatedAt = existing.CreatedAt
	}
	return r.db.Save(program).Error
}

// GetBalance fetches a points balance row
func (r *GormLoyaltyRepository) GetBalance(customerID, distributorID uint) (*models.CustomerLoyaltyPoints, error) {
	if customerID == 0 || distributorID == 0 {
		return nil, nil
	}
	var balance models.CustomerLoyaltyPoints
	if err := r.db.Where("customer_id = ? AND distributor_id = ?", customerID, distributorID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// GetBalanceForUpdate fetches a points balance row under a row lock
func (r *GormLoyaltyRepository) GetBalanceForUpdate(customerID, distributorID uint) (*models.CustomerLoyaltyPoints, error) {
	if customerID == 0 || distributorID == 0 {
		return nil, nil
	}
	var balance models.CustomerLoyaltyPoints
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND distributor_id = ?", customerID, distributorID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// ListBalancesByCustomer lists all balances of a customer
func (r *GormLoyaltyRepository) ListBalancesByCustomer(customerID uint) ([]models.CustomerLoyaltyPoints, error) {
	var balances []models.CustomerLoyaltyPoints
	if customerID == 0 {
		return balances, nil
	}
	if err := r.db.Where("customer_id = ?", customerID).Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// CreateBalance creates a points balance row
func (r *GormLoyaltyRepository) CreateBalance(balance *models.CustomerLoyaltyPoints) error {
	return r.db.Create(balance).Error
}

// UpdateBalance saves the full balance row
func (r *GormLoyaltyRepository) UpdateBalance(balance *models.CustomerLoyaltyPoints) error {
	return r.db.Save(balance).Error
}

// CreateRedemption creates a redemption audit row
func (r *GormLoyaltyRepository) CreateRedemption(redemption *models.LoyaltyRedemption) error {
	return r.db.Create(redemption).Error
}

// GetRedemptionByID fetches a redemption by ID
func (r *GormLoyaltyRepository) GetRedemptionByID(id uint) (*models.LoyaltyRedemption, error) {
	if id == 0 {
		return nil, nil
	}
	var redemption models.LoyaltyRedemption
	if err := r.db.First(&redemption, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// GetRedemptionByReference fetches a redemption by its reference code
func (r *GormLoyaltyRepository) GetRedemptionByReference(reference string) (*models.LoyaltyRedemption, error) {
	if reference == "" {
		return nil, nil
	}
	var redemption models.LoyaltyRedemption
	if err := r.db.Where("reference = ?", reference).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redemption, nil
}

// UpdateRedemption saves the full redemption row
func (r *GormLoyaltyRepository) UpdateRedemption(redemption *models.LoyaltyRedemption) error {
	return r.db.Save(redemption).Error
}

// ListRedemptions paginated redemption list
func (r *GormLoyaltyRepository) ListRedemptions(filter RedemptionListFilter) ([]models.LoyaltyRedemption, int64, error) {
	query := r.db.Model(&models.LoyaltyRedemption{})
	if filter.DistributorID != 0 {
		query = query.Where("distributor_id = ?", filter.DistributorID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var redemptions []models.LoyaltyRedemption
	if err := query.Order("id desc").Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}
