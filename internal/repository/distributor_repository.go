package repository

import (
	"errors"
	"strings"

	"github.com/aquaponto/aquaponto/internal/models"

	"gorm.io/gorm"
)

// DistributorRepository distributor data access interface
type DistributorRepository interface {
	Create(distributor *models.Distributor) error
	GetByID(id uint) (*models.Distributor, error)
	GetByUserID(userID uint) (*models.Distributor, error)
	GetBySlug(slug string) (*models.Distributor, error)
	GetByCNPJ(cnpj string) (*models.Distributor, error)
	Update(distributor *models.Distributor) error
	UpdateFields(id uint, updates map[string]interface{}) error
	List(filter DistributorListFilter) ([]models.Distributor, int64, error)
	ListActiveIDs() ([]uint, error)
	GetHours(distributorID uint) ([]models.BusinessHour, error)
	ReplaceHours(distributorID uint, hours []models.BusinessHour) error
	WithTx(tx *gorm.DB) *GormDistributorRepository
}

// GormDistributorRepository GORM implementation
type GormDistributorRepository struct {
	db *gorm.DB
}

// NewDistributorRepository creates the distributor repository
func NewDistributorRepository(db *gorm.DB) *GormDistributorRepository {
	return &GormDistributorRepository{db: db}
}

// WithTx binds a transaction
func (r *GormDistributorRepository) WithTx(tx *gorm.DB) *GormDistributorRepository {
	if tx == nil {
		return r
	}
	return &GormDistributorRepository{db: tx}
}

// Create creates a distributor
func (r *GormDistributorRepository) Create(distributor *models.Distributor) error {
	return r.db.Create(distributor).Error
}

// GetByID fetches a distributor by ID
func (r *GormDistributorRepository) GetByID(id uint) (*models.Distributor, error) {
	if id == 0 {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.First(&distributor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// GetByUserID fetches the distributor owned by a user
func (r *GormDistributorRepository) GetByUserID(userID uint) (*models.Distributor, error) {
	if userID == 0 {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.Where("user_id = ?", userID).First(&distributor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// GetBySlug fetches a distributor by slug
func (r *GormDistributorRepository) GetBySlug(slug string) (*models.Distributor, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.Where("slug = ?", slug).First(&distributor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// GetByCNPJ fetches a distributor by CNPJ digits
func (r *GormDistributorRepository) GetByCNPJ(cnpj string) (*models.Distributor, error) {
	cnpj = strings.TrimSpace(cnpj)
	if cnpj == "" {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.Where("cnpj = ?", cnpj).First(&distributor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// Update saves the full distributor row
func (r *GormDistributorRepository) Update(distributor *models.Distributor) error {
	return r.db.Save(distributor).Error
}

// UpdateFields updates selected columns
func (r *GormDistributorRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Distributor{}).Where("id = ?", id).Updates(updates).Error
}

// List paginated distributor list
func (r *GormDistributorRepository) List(filter DistributorListFilter) ([]models.Distributor, int64, error) {
	query := r.db.Model(&models.Distributor{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.OnlyOnboarded {
		query = query.Where("onboarding_completed_at IS NOT NULL")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("trade_name LIKE ? OR city LIKE ?", like, like)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.UF != "" {
		query = query.Where("uf = ?", strings.ToUpper(filter.UF))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var distributors []models.Distributor
	if err := query.Order("trade_name asc").Find(&distributors).Error; err != nil {
		return nil, 0, err
	}
	return distributors, total, nil
}

// ListActiveIDs returns the IDs of all active distributors
func (r *GormDistributorRepository) ListActiveIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Distributor{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// GetHours fetches the weekly hours of a distributor ordered by weekday
func (r *GormDistributorRepository) GetHours(distributorID uint) ([]models.BusinessHour, error) {
	var hours []models.BusinessHour
	if distributorID == 0 {
		return hours, nil
	}
	if err := r.db.Where("distributor_id = ?", distributorID).
		Order("weekday asc").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

// ReplaceHours replaces the full weekly schedule in one transaction
func (r *GormDistributorRepository) ReplaceHours(distributorID uint, hours []models.BusinessHour) error {
	if distributorID == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("distributor_id = ?", distributorID).
			Delete(&models.BusinessHour{}).Error; err != nil {
			return err
		}
		for i := range hours {
			hours[i].ID = 0
			hours[i].DistributorID = distributorID
		}
		if len(hours) > 0 {
			if err := tx.Create(&hours).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
