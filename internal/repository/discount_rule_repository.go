package repository

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/models"

	"gorm.io/gorm"
)

// DiscountRuleRepository discount tier data access interface
type DiscountRuleRepository interface {
	Create(rule *models.DiscountRule) error
	GetByIDAndDistributor(id, distributorID uint) (*models.DiscountRule, error)
	Update(rule *models.DiscountRule) error
	Delete(id, distributorID uint) error
	ListByDistributor(distributorID uint, onlyActive bool) ([]models.DiscountRule, error)
	WithTx(tx *gorm.DB) *GormDiscountRuleRepository
}

// GormDiscountRuleRepository GORM implementation
type GormDiscountRuleRepository struct {
	db *gorm.DB
}

// NewDiscountRuleRepository creates the discount rule repository
func NewDiscountRuleRepository(db *gorm.DB) *GormDiscountRuleRepository {
	return &GormDiscountRuleRepository{db: db}
}

// WithTx binds a transaction
func (r *GormDiscountRuleRepository) WithTx(tx *gorm.DB) *GormDiscountRuleRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRuleRepository{db: tx}
}

// Create creates a discount rule
func (r *GormDiscountRuleRepository) Create(rule *models.DiscountRule) error {
	return r.db.Create(rule).Error
}

// GetByIDAndDistributor fetches a rule scoped to its distributor
func (r *GormDiscountRuleRepository) GetByIDAndDistributor(id, distributorID uint) (*models.DiscountRule, error) {
	if id == 0 || distributorID == 0 {
		return nil, nil
	}
	var rule models.DiscountRule
	if err := r.db.Where("id = ? AND distributor_id = ?", id, distributorID).
		First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// Update saves the full rule row
func (r *GormDiscountRuleRepository) Update(rule *models.DiscountRule) error {
	return r.db.Save(rule).Error
}

// Delete soft-deletes a rule scoped to its distributor
func (r *GormDiscountRuleRepository) Delete(id, distributorID uint) error {
	if id == 0 || distributorID == 0 {
		return nil
	}
	return r.db.Where("id = ? AND distributor_id = ?", id, distributorID).
		Delete(&models.DiscountRule{}).Error
}

// ListByDistributor lists the tiers of a distributor ordered by min quantity
func (r *GormDiscountRuleRepository) ListByDistributor(distributorID uint, onlyActive bool) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	if distributorID == 0 {
		return rules, nil
	}
	query := r.db.Where("distributor_id = ?", distributorID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("min_quantity asc, id asc").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
