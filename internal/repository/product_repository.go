package repository

import (
	"errors"

	"github.com/aquaponto/aquaponto/internal/models"

	"gorm.io/gorm"
)

// ProductRepository product data access interface
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByIDAndDistributor(id, distributorID uint) (*models.Product, error)
	GetByIDs(ids []uint) ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id, distributorID uint) error
	List(filter ProductListFilter) ([]models.Product, int64, error)
	ListBrands() ([]models.Brand, error)
	GetBrandByID(id uint) (*models.Brand, error)
	GetOrCreateBrand(name string) (*models.Brand, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM implementation
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates the product repository
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx binds a transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Create creates a product
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID fetches a product by ID
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Preload("Brand").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDAndDistributor fetches a product scoped to its distributor
func (r *GormProductRepository) GetByIDAndDistributor(id, distributorID uint) (*models.Product, error) {
	if id == 0 || distributorID == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Preload("Brand").
		Where("id = ? AND distributor_id = ?", id, distributorID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs batch fetches products
func (r *GormProductRepository) GetByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Preload("Brand").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update saves the full product row
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete soft-deletes a product scoped to its distributor
func (r *GormProductRepository) Delete(id, distributorID uint) error {
	if id == 0 || distributorID == 0 {
		return nil
	}
	return r.db.Where("id = ? AND distributor_id = ?", id, distributorID).
		Delete(&models.Product{}).Error
}

// List paginated product list
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.DistributorID != 0 {
		query = query.Where("distributor_id = ?", filter.DistributorID)
	}
	if filter.BrandID != 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.OnlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var products []models.Product
	if err := query.Preload("Brand").
		Order("sort_order asc, id asc").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListBrands lists all brands
func (r *GormProductRepository) ListBrands() ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// GetBrandByID fetches a brand by ID
func (r *GormProductRepository) GetBrandByID(id uint) (*models.Brand, error) {
	if id == 0 {
		return nil, nil
	}
	var brand models.Brand
	if err := r.db.First(&brand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

// GetOrCreateBrand finds a brand by name, creating it when missing
func (r *GormProductRepository) GetOrCreateBrand(name string) (*models.Brand, error) {
	if name == "" {
		return nil, nil
	}
	var brand models.Brand
	err := r.db.Where("name = ?", name).First(&brand).Error
	if err == nil {
		return &brand, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	brand = models.Brand{Name: name}
	if err := r.db.Create(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}
